package compose

import (
	"fmt"

	"go.uber.org/zap"
)

// Compose builds a composite type from sources. The first source is the
// delegation base; the rest are merged on top of it in order. A lone property
// bag or object becomes the prototype itself.
//
// Initializers are collected left to right. A composite type contributes its
// already flattened list, and an initializer reached through more than one
// path runs only once, at its first position.
func Compose(sources ...Source) (*Type, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("%w: no sources", ErrInvalidArgument)
	}
	for i, s := range sources {
		if err := validSource(s, i); err != nil {
			return nil, err
		}
	}

	var proto *Object
	if len(sources) == 1 {
		switch s := sources[0].(type) {
		case *Bag:
			proto = s.object()
		case *Object:
			proto = s
		}
	}
	if proto == nil {
		proto = NewObject(propertySet(sources[0]))
		if err := mixin(proto, sources[1:]); err != nil {
			return nil, err
		}
	}

	t := &Type{
		id:    newID(),
		proto: proto,
		inits: flattenInitializers(sources),
	}
	logger.Debug("composed type",
		zap.String("type", t.id),
		zap.Int("sources", len(sources)),
		zap.Int("initializers", len(t.inits)))
	return t, nil
}

// MustCompose is like Compose but panics on error. It is meant for
// package-level type definitions.
func MustCompose(sources ...Source) *Type {
	t, err := Compose(sources...)
	if err != nil {
		panic(err)
	}
	return t
}

// Create composes sources and instantiates the result with no arguments, for
// one-off objects.
func Create(sources ...Source) (*Object, error) {
	t, err := Compose(sources...)
	if err != nil {
		return nil, err
	}
	return t.New()
}

// flattenInitializers collects initializers in source order, splicing in the
// pre-flattened lists of composite types and dropping repeats.
func flattenInitializers(sources []Source) []*Initializer {
	var inits []*Initializer
	seen := make(map[*Initializer]bool)
	add := func(i *Initializer) {
		if seen[i] {
			return
		}
		seen[i] = true
		inits = append(inits, i)
	}
	for _, s := range sources {
		switch v := s.(type) {
		case *Type:
			for _, i := range v.inits {
				add(i)
			}
		case *Initializer:
			add(v)
		}
	}
	return inits
}
