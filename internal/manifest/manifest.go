// Package manifest loads composition manifests: YAML documents that declare
// composite types as ordered lists of initializers, earlier types, and
// property bags, so a composition can be described, built, and called
// without writing Go.
package manifest

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest errors.
var (
	ErrUnknownType   = errors.New("unknown type")
	ErrDuplicateType = errors.New("duplicate type")
	ErrInvalidEntry  = errors.New("invalid manifest entry")
)

// Kind identifies how a bag entry is turned into a property value.
type Kind string

// Entry kinds.
const (
	KindValue    Kind = "value"
	KindMethod   Kind = "method"
	KindRequired Kind = "required"
	KindBefore   Kind = "before"
	KindAfter    Kind = "after"
	KindAround   Kind = "around"
	KindStop     Kind = "stop"
	KindAlias    Kind = "alias"
	KindFrom     Kind = "from"
	KindHidden   Kind = "hidden"
	KindReadOnly Kind = "readonly"
)

// Manifest is a parsed composition manifest.
type Manifest struct {
	Path  string     `yaml:"-"`
	Types []TypeSpec `yaml:"types"`
}

// TypeSpec declares one composite type.
type TypeSpec struct {
	Name    string       `yaml:"name"`
	Sources []SourceSpec `yaml:"sources"`
}

// SourceSpec is one source of a type. Exactly one of Init, Type, or Bag is
// set.
type SourceSpec struct {
	Init string
	Type string
	Bag  []EntrySpec
}

// EntrySpec is one bag entry, kept in document order.
type EntrySpec struct {
	Key  string
	Kind Kind
	// Label names a method or advice, the alias target for KindAlias, or the
	// source type for KindFrom.
	Label string
	// FromKey is the member to take from the source type; empty means the
	// entry's own key.
	FromKey string
	// Value is the payload of KindValue, KindHidden, and KindReadOnly.
	Value any
	Line  int
}

// Load reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.Path = path
	return m, nil
}

// Parse parses a manifest document and validates type names.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	for i, t := range m.Types {
		if t.Name == "" {
			return nil, fmt.Errorf("%w: type %d has no name", ErrInvalidEntry, i)
		}
		if seen[t.Name] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateType, t.Name)
		}
		seen[t.Name] = true
		if len(t.Sources) == 0 {
			return nil, fmt.Errorf("%w: type %s has no sources", ErrInvalidEntry, t.Name)
		}
	}
	return &m, nil
}

// UnmarshalYAML decodes a single-key mapping: init, type, or bag. Bag keys
// keep their document order.
func (s *SourceSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode || len(node.Content) != 2 {
		return fmt.Errorf("%w: line %d: source must have exactly one of init, type, bag", ErrInvalidEntry, node.Line)
	}
	key, value := node.Content[0], node.Content[1]
	switch key.Value {
	case "init", "type":
		var name string
		if err := value.Decode(&name); err != nil {
			return err
		}
		if name == "" {
			return fmt.Errorf("%w: line %d: %s needs a name", ErrInvalidEntry, value.Line, key.Value)
		}
		if key.Value == "init" {
			s.Init = name
		} else {
			s.Type = name
		}
		return nil
	case "bag":
		entries, err := decodeBag(value)
		if err != nil {
			return err
		}
		s.Bag = entries
		return nil
	}
	return fmt.Errorf("%w: line %d: unknown source %q", ErrInvalidEntry, key.Line, key.Value)
}

func decodeBag(node *yaml.Node) ([]EntrySpec, error) {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: line %d: bag must be a mapping", ErrInvalidEntry, node.Line)
	}
	entries := make([]EntrySpec, 0, len(node.Content)/2)
	for i := 0; i < len(node.Content); i += 2 {
		e, err := decodeEntry(node.Content[i].Value, node.Content[i+1])
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// decodeEntry reads one bag entry. A mapping names its kind; any other node
// is shorthand for a plain value.
func decodeEntry(key string, node *yaml.Node) (EntrySpec, error) {
	e := EntrySpec{Key: key, Kind: KindValue, Line: node.Line}
	if node.Kind != yaml.MappingNode {
		return e, node.Decode(&e.Value)
	}

	var kinds []string
	for i := 0; i < len(node.Content); i += 2 {
		k, v := node.Content[i].Value, node.Content[i+1]
		var err error
		switch Kind(k) {
		case KindValue, KindHidden, KindReadOnly:
			e.Kind = Kind(k)
			err = v.Decode(&e.Value)
		case KindMethod, KindBefore, KindAfter, KindAround, KindStop, KindAlias, KindFrom:
			e.Kind = Kind(k)
			err = v.Decode(&e.Label)
		case KindRequired:
			var on bool
			err = v.Decode(&on)
			if err == nil && !on {
				err = fmt.Errorf("%w: line %d: %s: required must be true", ErrInvalidEntry, v.Line, key)
			}
			e.Kind = KindRequired
		case "key":
			if err := v.Decode(&e.FromKey); err != nil {
				return e, err
			}
			continue
		default:
			return e, fmt.Errorf("%w: line %d: %s: unknown kind %q", ErrInvalidEntry, node.Content[i].Line, key, k)
		}
		if err != nil {
			return e, err
		}
		kinds = append(kinds, k)
	}

	switch {
	case len(kinds) != 1:
		return e, fmt.Errorf("%w: line %d: %s: expected one kind, got %d", ErrInvalidEntry, node.Line, key, len(kinds))
	case e.FromKey != "" && e.Kind != KindFrom:
		return e, fmt.Errorf("%w: line %d: %s: key is only valid with from", ErrInvalidEntry, node.Line, key)
	case e.Kind != KindValue && e.Kind != KindHidden && e.Kind != KindReadOnly && e.Kind != KindRequired && e.Label == "":
		return e, fmt.Errorf("%w: line %d: %s: %s needs a name", ErrInvalidEntry, node.Line, key, e.Kind)
	}
	return e, nil
}
