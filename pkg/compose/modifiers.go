package compose

// DontEnum installs value as a hidden property: writable, but skipped by Keys
// and OwnKeys and therefore by later merges of the type.
func DontEnum(value any) *Decorator {
	return NewDecorator(func(target *Object, key string) error {
		target.Define(key, Descriptor{Value: value, Enumerable: false, Writable: true})
		return nil
	})
}

// ReadOnly installs value as an enumerable property that Object.Set refuses
// to overwrite. Later compositions may still redefine it.
func ReadOnly(value any) *Decorator {
	return NewDecorator(func(target *Object, key string) error {
		target.Define(key, Descriptor{Value: value, Enumerable: true, Writable: false})
		return nil
	})
}
