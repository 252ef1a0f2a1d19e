package compose

import "fmt"

// Func is the body of a method. self is the object the method was invoked on.
type Func func(self *Object, args ...any) (any, error)

// Callable is a value the merge engine treats as behavior rather than data:
// a *Method or a *Decorator. Callables form override lineages through
// Overrides.
type Callable interface {
	// ID returns the UUID v7 assigned when the callable was created.
	ID() string
	// Name returns the diagnostic label, which may be empty.
	Name() string
	// Overrides returns the callable this one supersedes, or nil.
	Overrides() Callable
	// Call invokes the callable with self as the receiver.
	Call(self *Object, args ...any) (any, error)

	link(prior Callable) bool
}

// Method is a callable property value carrying an optional back-reference to
// the method it supersedes. The reference belongs to the value itself, so
// every type that reuses the same *Method shares its lineage.
type Method struct {
	id         string
	name       string
	fn         Func
	overrides  Callable
	conflicted bool
}

// Fn wraps fn as a method with an empty name.
func Fn(fn Func) *Method {
	return Named("", fn)
}

// Named wraps fn as a method labelled name. The label only shows up in
// diagnostics and lineage reports.
func Named(name string, fn Func) *Method {
	return &Method{id: newID(), name: name, fn: fn}
}

// ID implements Callable.
func (m *Method) ID() string { return m.id }

// Name implements Callable.
func (m *Method) Name() string { return m.name }

// Overrides implements Callable.
func (m *Method) Overrides() Callable {
	if m == nil {
		return nil
	}
	return m.overrides
}

// Conflicted reports whether m is the placeholder bound to a key that two
// unrelated sources both supplied.
func (m *Method) Conflicted() bool {
	return m != nil && m.conflicted
}

// Call invokes the method. A nil method reports ErrMethodNotFound so advice
// wrapped around a key that was never defined fails when it reaches the base.
func (m *Method) Call(self *Object, args ...any) (any, error) {
	if m == nil || m.fn == nil {
		return nil, ErrMethodNotFound
	}
	return m.fn(self, args...)
}

// link records prior as the method m supersedes. The link is set once and
// never replaced. Required neither carries nor becomes a link.
func (m *Method) link(prior Callable) bool {
	if m == nil || m == Required || m.overrides != nil || prior == nil || prior == Callable(Required) {
		return false
	}
	if c, ok := prior.(*Method); ok && c == m {
		return false
	}
	m.overrides = prior
	return true
}

// Required marks a key that a later composition step must implement. It is
// satisfied as soon as any concrete value occupies the key; calling it while
// still unsatisfied fails with ErrRequiredUnimplemented.
var Required = &Method{
	id:   newID(),
	name: "required",
	fn: func(*Object, ...any) (any, error) {
		return nil, ErrRequiredUnimplemented
	},
}

// conflictMethod builds the placeholder for a key two unrelated sources
// supplied with no provable ancestry.
func conflictMethod(key string, candidate, existing Callable) *Method {
	return &Method{
		id:         newID(),
		name:       "conflict:" + key,
		conflicted: true,
		fn: func(*Object, ...any) (any, error) {
			return nil, fmt.Errorf("%w: %q (%s vs %s)", ErrConflictedMethod, key, label(candidate), label(existing))
		},
	}
}

// label renders a callable for error messages.
func label(c Callable) string {
	if c == nil {
		return "<nil>"
	}
	if c.Name() != "" {
		return c.Name()
	}
	return c.ID()
}

// callableOf returns v as a Callable, treating typed nil pointers as absent.
func callableOf(v any) (Callable, bool) {
	switch c := v.(type) {
	case *Method:
		return c, c != nil
	case *Decorator:
		return c, c != nil
	}
	return nil, false
}

// methodOf returns v as a *Method, or nil when v holds anything else.
func methodOf(v any) *Method {
	m, _ := v.(*Method)
	return m
}
