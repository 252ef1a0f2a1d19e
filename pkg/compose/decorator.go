package compose

import "go.uber.org/zap"

// InstallFunc runs in place of an assignment: when the merge engine would
// store a decorator at key on target, it calls the install routine instead.
type InstallFunc func(target *Object, key string) error

// Decorator is a deferred instruction for the merge engine rather than a
// storable value. A decorator that is still sitting in a property when the
// property is called fails with ErrDecoratorNotApplied.
type Decorator struct {
	id        string
	name      string
	install   InstallFunc
	overrides Callable
}

// NewDecorator returns a decorator whose install routine is install.
func NewDecorator(install InstallFunc) *Decorator {
	return &Decorator{id: newID(), install: install}
}

// ID implements Callable.
func (d *Decorator) ID() string { return d.id }

// Name implements Callable.
func (d *Decorator) Name() string { return d.name }

// Overrides implements Callable.
func (d *Decorator) Overrides() Callable {
	if d == nil {
		return nil
	}
	return d.overrides
}

// Call always fails: decorators only take effect when installed.
func (d *Decorator) Call(*Object, ...any) (any, error) {
	return nil, ErrDecoratorNotApplied
}

// Install runs the install routine against target for key.
func (d *Decorator) Install(target *Object, key string) error {
	if d.install == nil {
		return nil
	}
	logger.Debug("install decorator", zap.String("key", key), zap.String("decorator", d.id))
	return d.install(target, key)
}

func (d *Decorator) link(prior Callable) bool {
	if d == nil || d.overrides != nil || prior == nil || prior == Callable(Required) {
		return false
	}
	if c, ok := prior.(*Decorator); ok && c == d {
		return false
	}
	d.overrides = prior
	return true
}
