package compose

// Entry is one key/value pair of a Bag.
type Entry struct {
	Key   string
	Value any
}

// Bag is an ordered property bag: plain data, methods, or decorators keyed by
// name. Keys are merged in insertion order.
type Bag struct {
	entries []Entry
	index   map[string]int
}

// NewBag returns an empty bag.
func NewBag() *Bag {
	return &Bag{index: make(map[string]int)}
}

// Set adds or replaces key and returns the bag for chaining. Replacing a key
// keeps its original position.
func (b *Bag) Set(key string, value any) *Bag {
	if b.index == nil {
		b.index = make(map[string]int)
	}
	if i, ok := b.index[key]; ok {
		b.entries[i].Value = value
		return b
	}
	b.index[key] = len(b.entries)
	b.entries = append(b.entries, Entry{Key: key, Value: value})
	return b
}

// Get returns the value stored at key.
func (b *Bag) Get(key string) (any, bool) {
	i, ok := b.index[key]
	if !ok {
		return nil, false
	}
	return b.entries[i].Value, true
}

// Keys returns the bag's keys in insertion order.
func (b *Bag) Keys() []string {
	keys := make([]string, len(b.entries))
	for i, e := range b.entries {
		keys[i] = e.Key
	}
	return keys
}

// Entries returns a copy of the bag's entries in insertion order.
func (b *Bag) Entries() []Entry {
	return append([]Entry(nil), b.entries...)
}

// Len returns the number of entries.
func (b *Bag) Len() int {
	return len(b.entries)
}

// object materializes the bag as an object holding its entries verbatim;
// decorators stay pending.
func (b *Bag) object() *Object {
	o := NewObject(nil)
	for _, e := range b.entries {
		o.put(e.Key, e.Value)
	}
	return o
}
