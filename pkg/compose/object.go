package compose

import (
	"fmt"
	"sort"
)

// Descriptor describes one own property slot. The zero value is a hidden,
// read-only slot, mirroring how property definitions default elsewhere; the
// merge engine always defines enumerable, writable slots.
type Descriptor struct {
	Value      any
	Enumerable bool
	Writable   bool
}

// Object is a property set with an optional parent it falls back to for
// reads. Composite type prototypes and their instances are both Objects.
type Object struct {
	parent *Object
	slots  map[string]*Descriptor
	keys   []string
}

// NewObject returns an empty object delegating reads to parent, which may be
// nil.
func NewObject(parent *Object) *Object {
	return &Object{
		parent: parent,
		slots:  make(map[string]*Descriptor),
	}
}

// Parent returns the object o delegates to.
func (o *Object) Parent() *Object {
	return o.parent
}

// lookup finds the nearest slot for key along the parent chain.
func (o *Object) lookup(key string) (*Descriptor, bool) {
	for cur := o; cur != nil; cur = cur.parent {
		if d, ok := cur.slots[key]; ok {
			return d, true
		}
	}
	return nil, false
}

// Get returns the value for key, consulting the parent chain. Missing keys
// yield nil.
func (o *Object) Get(key string) any {
	v, _ := o.Lookup(key)
	return v
}

// Lookup returns the value for key and whether any object on the chain
// defines it.
func (o *Object) Lookup(key string) (any, bool) {
	d, ok := o.lookup(key)
	if !ok {
		return nil, false
	}
	return d.Value, true
}

// Has reports whether key is defined on o or on its parent chain.
func (o *Object) Has(key string) bool {
	_, ok := o.lookup(key)
	return ok
}

// HasOwn reports whether key is defined directly on o.
func (o *Object) HasOwn(key string) bool {
	_, ok := o.slots[key]
	return ok
}

// Set assigns value to key as an own property. It fails with ErrReadOnly if
// the nearest definition of key is not writable.
func (o *Object) Set(key string, value any) error {
	if d, ok := o.lookup(key); ok && !d.Writable {
		return fmt.Errorf("%w: %q", ErrReadOnly, key)
	}
	if d, ok := o.slots[key]; ok {
		d.Value = value
		return nil
	}
	o.Define(key, Descriptor{Value: value, Enumerable: true, Writable: true})
	return nil
}

// Define creates or replaces the own slot for key regardless of its current
// writability. A replaced key keeps its original enumeration position.
func (o *Object) Define(key string, d Descriptor) {
	if _, ok := o.slots[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.slots[key] = &d
}

// put stores value as an enumerable, writable own property.
func (o *Object) put(key string, value any) {
	o.Define(key, Descriptor{Value: value, Enumerable: true, Writable: true})
}

// Delete removes the own property key. Inherited definitions become visible
// again.
func (o *Object) Delete(key string) {
	if _, ok := o.slots[key]; !ok {
		return
	}
	delete(o.slots, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
}

// Descriptor returns a copy of the own slot for key.
func (o *Object) Descriptor(key string) (Descriptor, bool) {
	d, ok := o.slots[key]
	if !ok {
		return Descriptor{}, false
	}
	return *d, true
}

// OwnKeys returns the enumerable own keys in insertion order.
func (o *Object) OwnKeys() []string {
	keys := make([]string, 0, len(o.keys))
	for _, k := range o.keys {
		if o.slots[k].Enumerable {
			keys = append(keys, k)
		}
	}
	return keys
}

// Keys returns every enumerable key visible through o: own keys first, then
// each ancestor's keys that are not shadowed by a nearer definition.
func (o *Object) Keys() []string {
	var keys []string
	seen := make(map[string]bool)
	for cur := o; cur != nil; cur = cur.parent {
		for _, k := range cur.keys {
			if seen[k] {
				continue
			}
			seen[k] = true
			if cur.slots[k].Enumerable {
				keys = append(keys, k)
			}
		}
	}
	return keys
}

// Method returns the *Method stored at key, or nil.
func (o *Object) Method(key string) *Method {
	return methodOf(o.Get(key))
}

// Call invokes the callable stored at key with o as the receiver.
func (o *Object) Call(key string, args ...any) (any, error) {
	v, ok := o.Lookup(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMethodNotFound, key)
	}
	c, ok := callableOf(v)
	if !ok {
		if v == nil {
			return nil, fmt.Errorf("%w: %q", ErrMethodNotFound, key)
		}
		return nil, fmt.Errorf("%w: %q holds %T", ErrNotCallable, key, v)
	}
	return c.Call(o, args...)
}

// assign copies the own enumerable properties of an initializer result onto o.
func (o *Object) assign(v any) {
	switch src := v.(type) {
	case *Object:
		if src == nil {
			return
		}
		for _, k := range src.OwnKeys() {
			o.put(k, src.slots[k].Value)
		}
	case *Bag:
		if src == nil {
			return
		}
		for _, e := range src.entries {
			o.put(e.Key, e.Value)
		}
	case map[string]any:
		keys := make([]string, 0, len(src))
		for k := range src {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			o.put(k, src[k])
		}
	}
}
