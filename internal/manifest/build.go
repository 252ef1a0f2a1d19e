package manifest

import (
	"fmt"
	"sync"

	"github.com/mesh-intelligence/compose/pkg/compose"
)

// Trace records the labels of initializers, methods, and advice in the
// order they run.
type Trace struct {
	mu    sync.Mutex
	steps []string
}

// Add appends label.
func (t *Trace) Add(label string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.steps = append(t.steps, label)
}

// Steps returns a copy of the recorded labels.
func (t *Trace) Steps() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.steps...)
}

// Reset clears the trace.
func (t *Trace) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.steps = nil
}

// Registry holds the types built from a manifest, by name and in declaration
// order.
type Registry struct {
	names []string
	types map[string]*compose.Type
}

// Names returns the type names in declaration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Get returns the named type or ErrUnknownType.
func (r *Registry) Get(name string) (*compose.Type, error) {
	t, ok := r.types[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, name)
	}
	return t, nil
}

// Build composes every type in declaration order. A type may only reference
// types declared before it. Every method, advice, and initializer records
// its label on trace when it runs; methods return their label.
func (m *Manifest) Build(trace *Trace) (*Registry, error) {
	if trace == nil {
		trace = &Trace{}
	}
	r := &Registry{types: make(map[string]*compose.Type)}
	for _, spec := range m.Types {
		sources := make([]compose.Source, 0, len(spec.Sources))
		for _, s := range spec.Sources {
			src, err := r.source(s, trace)
			if err != nil {
				return nil, fmt.Errorf("type %s: %w", spec.Name, err)
			}
			sources = append(sources, src)
		}
		t, err := compose.Compose(sources...)
		if err != nil {
			return nil, fmt.Errorf("type %s: %w", spec.Name, err)
		}
		r.names = append(r.names, spec.Name)
		r.types[spec.Name] = t
	}
	return r, nil
}

func (r *Registry) source(s SourceSpec, trace *Trace) (compose.Source, error) {
	switch {
	case s.Init != "":
		label := s.Init
		return compose.NamedInit(label, func(*compose.Object, ...any) (any, error) {
			trace.Add(label)
			return nil, nil
		}), nil
	case s.Type != "":
		return r.Get(s.Type)
	}
	bag := compose.NewBag()
	for _, e := range s.Bag {
		v, err := r.value(e, trace)
		if err != nil {
			return nil, err
		}
		bag.Set(e.Key, v)
	}
	return bag, nil
}

// value turns an entry into the property value the merge engine receives.
func (r *Registry) value(e EntrySpec, trace *Trace) (any, error) {
	label := e.Label
	switch e.Kind {
	case KindValue:
		return e.Value, nil
	case KindHidden:
		return compose.DontEnum(e.Value), nil
	case KindReadOnly:
		return compose.ReadOnly(e.Value), nil
	case KindRequired:
		return compose.Required, nil
	case KindMethod:
		return compose.Named(label, func(*compose.Object, ...any) (any, error) {
			trace.Add(label)
			return label, nil
		}), nil
	case KindBefore:
		return compose.Before(func(*compose.Object, ...any) ([]any, error) {
			trace.Add(label)
			return nil, nil
		}), nil
	case KindStop:
		return compose.Before(func(*compose.Object, ...any) ([]any, error) {
			trace.Add(label)
			return nil, compose.Stop
		}), nil
	case KindAfter:
		return compose.After(func(*compose.Object, ...any) (any, error) {
			trace.Add(label)
			return nil, nil
		}), nil
	case KindAround:
		return compose.Around(func(base *compose.Method) compose.Func {
			return func(self *compose.Object, args ...any) (any, error) {
				result, err := base.Call(self, args...)
				if err != nil {
					return nil, err
				}
				trace.Add(label)
				return result, nil
			}
		}), nil
	case KindAlias:
		return compose.Alias(label), nil
	case KindFrom:
		src, err := r.Get(label)
		if err != nil {
			return nil, fmt.Errorf("line %d: %s: %w", e.Line, e.Key, err)
		}
		if e.FromKey != "" {
			v := compose.FromKey(src, e.FromKey)
			if v == nil {
				return nil, fmt.Errorf("%w: line %d: %s: %s has no %q", ErrInvalidEntry, e.Line, e.Key, label, e.FromKey)
			}
			return v, nil
		}
		return compose.From(src), nil
	}
	return nil, fmt.Errorf("%w: line %d: %s: unknown kind %q", ErrInvalidEntry, e.Line, e.Key, e.Kind)
}
