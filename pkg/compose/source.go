package compose

import "fmt"

// Source is one contributor to a composition: a *Type (behavior bundle), a
// *Bag (property bag), a bare *Initializer, or an existing *Object.
type Source interface {
	source()
}

func (*Type) source()        {}
func (*Bag) source()         {}
func (*Initializer) source() {}
func (*Object) source()      {}

// InitFunc is the body of an initializer. A non-nil result is either an
// instance of the type under construction, which replaces the instance, or a
// property source (*Object, *Bag, map[string]any) whose own properties are
// copied onto the instance.
type InitFunc func(self *Object, args ...any) (any, error)

// Initializer is a constructor body run once per instantiation of every
// composite type that includes it. Initializers are deduplicated by pointer
// identity.
type Initializer struct {
	id   string
	name string
	fn   InitFunc
}

// Init wraps fn as an initializer.
func Init(fn InitFunc) *Initializer {
	return NamedInit("", fn)
}

// NamedInit wraps fn as an initializer labelled name.
func NamedInit(name string, fn InitFunc) *Initializer {
	return &Initializer{id: newID(), name: name, fn: fn}
}

// ID returns the initializer's UUID v7.
func (i *Initializer) ID() string { return i.id }

// Name returns the initializer's label.
func (i *Initializer) Name() string { return i.name }

func (i *Initializer) run(self *Object, args []any) (any, error) {
	if i.fn == nil {
		return nil, nil
	}
	return i.fn(self, args...)
}

// validSource rejects nil sources, including typed nil pointers.
func validSource(s Source, pos int) error {
	if isNil(s) {
		return fmt.Errorf("%w: source %d is nil", ErrInvalidArgument, pos)
	}
	return nil
}

func isNil(s Source) bool {
	switch v := s.(type) {
	case nil:
		return true
	case *Type:
		return v == nil
	case *Bag:
		return v == nil
	case *Initializer:
		return v == nil
	case *Object:
		return v == nil
	}
	return false
}

// Delegate returns a fresh object whose reads fall back to base's property
// set. No initializer runs.
func Delegate(base Source) (*Object, error) {
	if err := validSource(base, 0); err != nil {
		return nil, err
	}
	return NewObject(propertySet(base)), nil
}

// propertySet returns the object a source contributes as a delegation parent.
func propertySet(s Source) *Object {
	switch v := s.(type) {
	case *Type:
		return v.proto
	case *Object:
		return v
	case *Bag:
		return v.object()
	}
	return NewObject(nil)
}
