package compose

import "fmt"

// FromKey returns the value src holds at key, for binding a specific
// implementation under another name:
//
//	compose.NewBag().Set("baseRender", compose.FromKey(Widget, "render"))
//
// A missing key yields nil.
func FromKey(src Source, key string) any {
	if isNil(src) {
		return nil
	}
	return propertySet(src).Get(key)
}

// From returns a decorator that binds the key it is installed at to src's
// same-named value. Installing it over a key src lacks fails with
// ErrSourceMethodUnavailable. Binding a key to one source's implementation
// excludes every other contributor's.
func From(src Source) *Decorator {
	return NewDecorator(func(target *Object, key string) error {
		var v any
		if !isNil(src) {
			v = propertySet(src).Get(key)
		}
		if v == nil {
			return fmt.Errorf("%w: %q", ErrSourceMethodUnavailable, key)
		}
		target.put(key, v)
		return nil
	})
}

// Alias returns a decorator that binds the key it is installed at to the
// value the target holds at name when the decorator is installed. It fails
// with ErrSourceMethodUnavailable if name is unset at that point.
func Alias(name string) *Decorator {
	return NewDecorator(func(target *Object, key string) error {
		v := target.Get(name)
		if v == nil {
			return fmt.Errorf("%w: %q to %q", ErrSourceMethodUnavailable, name, key)
		}
		target.put(key, v)
		return nil
	})
}
