package deepcopy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClone_Primitives(t *testing.T) {
	assert.Equal(t, "a", Clone("a"))
	assert.Equal(t, 42, Clone(42))
	assert.Equal(t, 1.5, Clone(1.5))
	assert.Equal(t, true, Clone(true))
	assert.Nil(t, Clone(nil))
}

func TestClone_NestedMap(t *testing.T) {
	src := map[string]any{
		"name": "a",
		"tags": []any{"x", "y"},
		"meta": map[string]any{"depth": 2},
	}

	got, ok := Clone(src).(map[string]any)
	require.True(t, ok)
	assert.Equal(t, src, got)

	// Mutating the copy must not leak back.
	got["name"] = "mutated"
	got["tags"].([]any)[0] = "mutated"
	got["meta"].(map[string]any)["depth"] = 99

	assert.Equal(t, "a", src["name"])
	assert.Equal(t, "x", src["tags"].([]any)[0])
	assert.Equal(t, 2, src["meta"].(map[string]any)["depth"])
}

func TestClone_SelfReferentialMap(t *testing.T) {
	src := map[string]any{"v": 1}
	src["self"] = src

	got, ok := Clone(src).(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 1, got["v"])

	inner, ok := got["self"].(map[string]any)
	require.True(t, ok, "cycle should be preserved in the copy")
	// The inner map must be the copy itself, not the source.
	inner["v"] = 2
	assert.Equal(t, 2, got["v"], "copy should share its own cycle")
	assert.Equal(t, 1, src["v"], "source must stay untouched")
}

func TestClone_SelfReferentialSlice(t *testing.T) {
	src := make([]any, 2)
	src[0] = "head"
	src[1] = src

	got, ok := Clone(src).([]any)
	require.True(t, ok)
	assert.Equal(t, "head", got[0])

	inner, ok := got[1].([]any)
	require.True(t, ok)
	assert.Equal(t, "head", inner[0])
}

type selfCloning struct {
	n int
}

func (s *selfCloning) CloneValue() any {
	return &selfCloning{n: s.n + 100}
}

func TestClone_DelegatesToCloner(t *testing.T) {
	src := map[string]any{"v": &selfCloning{n: 1}}

	got := Clone(src).(map[string]any)
	cloned, ok := got["v"].(*selfCloning)
	require.True(t, ok)
	assert.Equal(t, 101, cloned.n, "Cloner implementations copy themselves")
}

func TestCloneWith_ConvertHook(t *testing.T) {
	type opaque struct{ id int }

	calls := 0
	convert := func(v any) any {
		if o, ok := v.(opaque); ok {
			calls++
			return o.id
		}
		return v
	}

	src := map[string]any{"a": opaque{id: 7}, "b": "plain"}
	got := CloneWith(src, convert).(map[string]any)

	assert.Equal(t, 7, got["a"], "opaque values go through the hook")
	assert.Equal(t, "plain", got["b"], "primitives bypass the hook")
	assert.Equal(t, 1, calls)
}

func TestClone_OpaqueWithoutHookPassesThrough(t *testing.T) {
	ch := make(chan int)
	got := Clone(map[string]any{"ch": ch}).(map[string]any)
	assert.Equal(t, (chan int)(ch), got["ch"])
}
