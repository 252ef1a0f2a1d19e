package compose

import "fmt"

// Type is a composite type: a merged prototype plus the flattened,
// deduplicated initializers of every source it was composed from.
type Type struct {
	id    string
	proto *Object
	inits []*Initializer
}

// ID returns the type's UUID v7.
func (t *Type) ID() string { return t.id }

// Prototype returns the merged property set instances delegate to.
func (t *Type) Prototype() *Object { return t.proto }

// Initializers returns the initializers New runs, in order.
func (t *Type) Initializers() []*Initializer {
	return append([]*Initializer(nil), t.inits...)
}

// Alloc returns a blank instance delegating to the prototype. No initializer
// runs; pass the result to Construct.
func (t *Type) Alloc() *Object {
	return NewObject(t.proto)
}

// New allocates an instance and runs every initializer against it with args.
func (t *Type) New(args ...any) (*Object, error) {
	return t.Construct(nil, args...)
}

// Construct runs every initializer against self with args and returns the
// resulting instance. A nil self is allocated first, so Construct(nil, ...)
// and New behave identically.
func (t *Type) Construct(self *Object, args ...any) (*Object, error) {
	if self == nil {
		self = t.Alloc()
	}
	for _, fn := range t.inits {
		result, err := fn.run(self, args)
		if err != nil {
			return nil, fmt.Errorf("initializer %s: %w", initLabel(fn), err)
		}
		if o, ok := result.(*Object); ok && o != nil && t.IsInstance(o) {
			self = o
			continue
		}
		self.assign(result)
	}
	return self, nil
}

// IsInstance reports whether o delegates, directly or transitively, to the
// type's prototype.
func (t *Type) IsInstance(o *Object) bool {
	if o == nil {
		return false
	}
	for cur := o.parent; cur != nil; cur = cur.parent {
		if cur == t.proto {
			return true
		}
	}
	return false
}

// Extend composes a new type from t followed by sources.
func (t *Type) Extend(sources ...Source) (*Type, error) {
	return Compose(append([]Source{t}, sources...)...)
}

func initLabel(i *Initializer) string {
	if i.name != "" {
		return i.name
	}
	return i.id
}
