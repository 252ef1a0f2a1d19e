// Package inspect reports how a composite type resolved its properties:
// which value won each key, what it overrides, and which keys ended up
// conflicted or still required.
package inspect

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/mesh-intelligence/compose/pkg/compose"
)

// Kind classifies a resolved property.
type Kind string

// Property kinds.
const (
	KindData      Kind = "data"
	KindMethod    Kind = "method"
	KindRequired  Kind = "required"
	KindConflict  Kind = "conflict"
	KindDecorator Kind = "decorator"
)

// Property is the resolution of one prototype key.
type Property struct {
	Key  string `json:"key"`
	Kind Kind   `json:"kind"`
	// Own is true when the key is defined on the prototype itself rather
	// than inherited from the delegation base.
	Own bool `json:"own"`
	// Winner names the callable occupying the key, or renders the data value.
	Winner   string   `json:"winner"`
	WinnerID string   `json:"winner_id,omitempty"`
	Lineage  []string `json:"lineage,omitempty"`
}

// Report describes one composite type.
type Report struct {
	Type         string     `json:"type"`
	TypeID       string     `json:"type_id"`
	Initializers []string   `json:"initializers"`
	Properties   []Property `json:"properties"`
}

// Describe builds the report for t, listing keys in enumeration order.
func Describe(name string, t *compose.Type) Report {
	r := Report{
		Type:         name,
		TypeID:       t.ID(),
		Initializers: []string{},
		Properties:   []Property{},
	}
	for _, fn := range t.Initializers() {
		r.Initializers = append(r.Initializers, nameOr(fn.Name(), fn.ID()))
	}

	proto := t.Prototype()
	for _, key := range proto.Keys() {
		r.Properties = append(r.Properties, describe(key, proto.Get(key), proto.HasOwn(key)))
	}
	return r
}

func describe(key string, v any, own bool) Property {
	p := Property{Key: key, Own: own}
	var c compose.Callable
	switch val := v.(type) {
	case *compose.Method:
		switch {
		case val == compose.Required:
			p.Kind = KindRequired
		case val.Conflicted():
			p.Kind = KindConflict
		default:
			p.Kind = KindMethod
		}
		c = val
	case *compose.Decorator:
		p.Kind = KindDecorator
		c = val
	default:
		p.Kind = KindData
		p.Winner = fmt.Sprintf("%v", v)
		return p
	}

	p.Winner = nameOr(c.Name(), c.ID())
	p.WinnerID = c.ID()
	for _, prior := range compose.Lineage(c)[1:] {
		p.Lineage = append(p.Lineage, nameOr(prior.Name(), prior.ID()))
	}
	return p
}

// Conflicts returns the keys resolved to a conflict placeholder.
func (r Report) Conflicts() []string {
	return r.keysOf(KindConflict)
}

// Unsatisfied returns the keys still holding the required marker.
func (r Report) Unsatisfied() []string {
	return r.keysOf(KindRequired)
}

func (r Report) keysOf(kind Kind) []string {
	var keys []string
	for _, p := range r.Properties {
		if p.Kind == kind {
			keys = append(keys, p.Key)
		}
	}
	return keys
}

// WriteText renders reports as aligned tables.
func WriteText(w io.Writer, reports []Report) error {
	for i, r := range reports {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%s (%s)\ninitializers: %s\n", r.Type, r.TypeID, strings.Join(r.Initializers, ", ")); err != nil {
			return err
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "KEY\tKIND\tOWN\tWINNER\tOVERRIDES")
		for _, p := range r.Properties {
			fmt.Fprintf(tw, "%s\t%s\t%t\t%s\t%s\n", p.Key, p.Kind, p.Own, p.Winner, strings.Join(p.Lineage, " > "))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}

// WriteJSON renders reports as an indented JSON array.
func WriteJSON(w io.Writer, reports []Report) error {
	data, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal reports: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func nameOr(name, id string) string {
	if name != "" {
		return name
	}
	return id
}
