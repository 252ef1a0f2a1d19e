package compose

import (
	"fmt"

	"go.uber.org/zap"
)

// Apply merges sources into target in order and returns target. It is the
// merge step of Compose without a delegation base or initializers.
func Apply(target *Object, sources ...Source) (*Object, error) {
	if target == nil {
		return nil, fmt.Errorf("%w: nil target", ErrInvalidArgument)
	}
	for i, s := range sources {
		if err := validSource(s, i); err != nil {
			return nil, err
		}
	}
	if err := mixin(target, sources); err != nil {
		return nil, err
	}
	return target, nil
}

// mixin copies every source's properties onto target, resolving callable
// collisions and installing decorators.
func mixin(target *Object, sources []Source) error {
	for i, s := range sources {
		var err error
		switch src := s.(type) {
		case *Type:
			err = mixinBundle(target, src.proto)
		case *Bag:
			err = mixinEntries(target, src.entries)
		case *Object:
			err = mixinEntries(target, entriesOf(src))
		case *Initializer:
			// bare initializers carry an empty property set
		default:
			err = fmt.Errorf("%w: source %d has unsupported type %T", ErrInvalidArgument, i, s)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// mixinBundle merges a composite type's prototype. Keys inherited by the
// prototype from its own chain are included but count as not own.
func mixinBundle(target, proto *Object) error {
	for _, key := range proto.Keys() {
		value := proto.Get(key)
		if c, ok := callableOf(value); ok {
			if existing, found := target.Lookup(key); found && !same(value, existing) {
				value = resolve(c, key, existing, proto.HasOwn(key), target)
			}
		}
		if d, ok := value.(*Decorator); ok && d != nil {
			if err := d.Install(target, key); err != nil {
				return fmt.Errorf("install %q: %w", key, err)
			}
			continue
		}
		target.put(key, value)
	}
	return nil
}

// mixinEntries merges a property bag. Collisions are last-write-wins; the
// only bookkeeping is recording what the incoming method replaced.
func mixinEntries(target *Object, entries []Entry) error {
	for _, e := range entries {
		key, value := e.Key, e.Value
		if c, ok := callableOf(value); ok {
			if d, ok := c.(*Decorator); ok {
				if err := d.Install(target, key); err != nil {
					return fmt.Errorf("install %q: %w", key, err)
				}
				continue
			}
			if existing, found := target.Lookup(key); found {
				if c == Callable(Required) || same(value, existing) {
					continue
				}
				if prior, ok := callableOf(existing); ok && c.link(prior) {
					logger.Debug("recorded override",
						zap.String("key", key),
						zap.String("method", c.ID()),
						zap.String("overrides", prior.ID()))
				}
			}
		}
		target.put(key, value)
	}
	return nil
}

// entriesOf lists an object's enumerable properties, inherited ones included.
func entriesOf(o *Object) []Entry {
	keys := o.Keys()
	entries := make([]Entry, len(keys))
	for i, k := range keys {
		entries[i] = Entry{Key: k, Value: o.Get(k)}
	}
	return entries
}

// same reports whether two property values are the same callable.
func same(a, b any) bool {
	ca, ok := callableOf(a)
	if !ok {
		return false
	}
	cb, ok := callableOf(b)
	return ok && ca == cb
}
