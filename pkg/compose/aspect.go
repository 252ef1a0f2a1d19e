package compose

import (
	"errors"
	"fmt"
)

// Stop is returned by before-advice to skip the advised method. The call then
// returns (nil, nil).
var Stop = errors.New("compose: stop")

// AroundFunc receives the method currently at the key and returns its
// replacement. base may be nil when the key was never defined.
type AroundFunc func(base *Method) Func

// BeforeFunc runs ahead of the advised method. Returning Stop skips the
// method; a non-nil slice replaces the arguments; nil keeps the originals.
type BeforeFunc func(self *Object, args ...any) ([]any, error)

// AfterFunc runs once the advised method returns, with the original
// arguments. A non-nil result replaces the method's result.
type AfterFunc func(self *Object, args ...any) (any, error)

// wrapper builds the advised method from the method at the key.
type wrapper func(target *Object, base *Method) (*Method, error)

// aspect turns a wrapper into a decorator. Over a concrete value the key is
// rewrapped immediately. Over a pending decorator, or nothing at all, the key
// gets a new pending decorator that replays the older install first and wraps
// whatever that leaves behind once a concrete method is present.
func aspect(wrap wrapper) *Decorator {
	return NewDecorator(func(target *Object, key string) error {
		base, found := target.Lookup(key)
		prior, pending := base.(*Decorator)
		if found && base != nil && !pending {
			m, err := wrap(target, methodOf(base))
			if err != nil {
				return err
			}
			target.put(key, m)
			return nil
		}
		target.put(key, aspect(func(t *Object, _ *Method) (*Method, error) {
			if prior != nil {
				if err := prior.Install(t, key); err != nil {
					return nil, err
				}
			}
			return wrap(t, methodOf(t.Get(key)))
		}))
		return nil
	})
}

// nilAdvice is the decorator handed out for a nil advice function. It fails
// when installed.
func nilAdvice(kind string) *Decorator {
	return NewDecorator(func(*Object, string) error {
		return fmt.Errorf("%w: nil %s advice", ErrInvalidArgument, kind)
	})
}

// Around wraps the method at the key with the function advice builds from it.
// Calling base from inside the replacement is an explicit super call.
func Around(advice AroundFunc) *Decorator {
	if advice == nil {
		return nilAdvice("around")
	}
	return aspect(func(_ *Object, base *Method) (*Method, error) {
		fn := advice(base)
		if fn == nil {
			return nil, fmt.Errorf("%w: around advice returned no method", ErrInvalidArgument)
		}
		return Named(adviceName("around", base), fn), nil
	})
}

// Before runs advice ahead of the method at the key.
func Before(advice BeforeFunc) *Decorator {
	if advice == nil {
		return nilAdvice("before")
	}
	return aspect(func(_ *Object, base *Method) (*Method, error) {
		return Named(adviceName("before", base), func(self *Object, args ...any) (any, error) {
			replaced, err := advice(self, args...)
			if errors.Is(err, Stop) {
				return nil, nil
			}
			if err != nil {
				return nil, err
			}
			if replaced != nil {
				args = replaced
			}
			return base.Call(self, args...)
		}), nil
	})
}

// After runs advice once the method at the key returns.
func After(advice AfterFunc) *Decorator {
	if advice == nil {
		return nilAdvice("after")
	}
	return aspect(func(_ *Object, base *Method) (*Method, error) {
		return Named(adviceName("after", base), func(self *Object, args ...any) (any, error) {
			result, err := base.Call(self, args...)
			if err != nil {
				return nil, err
			}
			adviceResult, err := advice(self, args...)
			if err != nil {
				return nil, err
			}
			if adviceResult != nil {
				return adviceResult, nil
			}
			return result, nil
		}), nil
	})
}

func adviceName(kind string, base *Method) string {
	if base == nil || base.name == "" {
		return kind
	}
	return kind + "(" + base.name + ")"
}
