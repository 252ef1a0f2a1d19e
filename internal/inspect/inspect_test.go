package inspect

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/compose/pkg/compose"
)

func method(name string) *compose.Method {
	return compose.Named(name, func(*compose.Object, ...any) (any, error) { return nil, nil })
}

func fixture(t *testing.T) *compose.Type {
	t.Helper()
	p := compose.MustCompose(compose.NewBag().Set("render", method("p.render")))
	q := compose.MustCompose(compose.NewBag().Set("render", method("q.render")))
	base := compose.MustCompose(
		compose.NamedInit("base", func(*compose.Object, ...any) (any, error) { return nil, nil }),
		compose.NewBag().
			Set("greet", method("base.greet")).
			Set("draw", compose.Required).
			Set("color", "red"),
	)
	typ, err := compose.Compose(base,
		compose.MustCompose(p, compose.NewBag()),
		compose.MustCompose(q, compose.NewBag()),
		compose.NewBag().
			Set("greet", method("derived.greet")).
			Set("later", compose.After(func(*compose.Object, ...any) (any, error) { return nil, nil })),
	)
	require.NoError(t, err)
	return typ
}

func TestDescribe(t *testing.T) {
	typ := fixture(t)
	r := Describe("Derived", typ)

	assert.Equal(t, "Derived", r.Type)
	assert.Equal(t, typ.ID(), r.TypeID)
	assert.Equal(t, []string{"base"}, r.Initializers)

	got := make(map[string]Property)
	var keys []string
	for _, p := range r.Properties {
		got[p.Key] = p
		keys = append(keys, p.Key)
	}
	if diff := cmp.Diff([]string{"render", "greet", "later", "draw", "color"}, keys); diff != "" {
		t.Errorf("key order mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, KindConflict, got["render"].Kind)
	assert.Equal(t, "conflict:render", got["render"].Winner)
	assert.Equal(t, KindMethod, got["greet"].Kind)
	assert.Equal(t, "derived.greet", got["greet"].Winner)
	assert.Equal(t, []string{"base.greet"}, got["greet"].Lineage)
	assert.True(t, got["greet"].Own)
	assert.Equal(t, KindDecorator, got["later"].Kind)
	assert.Equal(t, KindRequired, got["draw"].Kind)
	assert.False(t, got["draw"].Own)
	assert.Equal(t, Property{Key: "color", Kind: KindData, Winner: "red"}, got["color"])

	assert.Equal(t, []string{"render"}, r.Conflicts())
	assert.Equal(t, []string{"draw"}, r.Unsatisfied())
}

func TestWriteText(t *testing.T) {
	r := Describe("Derived", fixture(t))

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, []Report{r, r}))
	out := buf.String()
	assert.Contains(t, out, "Derived ("+r.TypeID+")")
	assert.Contains(t, out, "initializers: base")
	assert.Contains(t, out, "KEY")
	assert.Contains(t, out, "derived.greet")
	assert.Contains(t, out, "base.greet")
}

func TestWriteJSON(t *testing.T) {
	r := Describe("Derived", fixture(t))

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, []Report{r}))

	var decoded []Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	if diff := cmp.Diff(r, decoded[0]); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
