package remap

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, s string) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(s), &m))
	return m
}

const ordersJSON = `{
	"orders": {
		"items": [
			{"id": 1, "items": [{"name": "a"}, {"name": "b"}]},
			{"id": 2, "items": []},
			{"id": 3},
			{"id": 4, "items": [{"name": "c"}, {"sku": "no-name"}, 7]}
		]
	},
	"total": 10,
	"nothing": null
}`

func TestResolve(t *testing.T) {
	doc := decode(t, ordersJSON)

	tests := []struct {
		path string
		want []any
	}{
		{path: "total", want: []any{10.0}},
		{path: "nothing", want: []any{nil}},
		{path: "missing", want: []any{}},
		{path: "nothing.deeper", want: []any{}},
		{path: "orders.items[].id", want: []any{1.0, 2.0, 3.0, 4.0}},
		{path: "orders.items[].items[].name", want: []any{"a", "b", "c"}},
		{path: "orders.items[].missing[].name", want: []any{}},
		{path: "total.x", want: []any{}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := Resolve(doc, tt.path, Values)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveFanOutValues(t *testing.T) {
	doc := decode(t, ordersJSON)
	got := Resolve(doc, "orders.items[].items[]", Values)
	require.Len(t, got, 5)
	assert.Equal(t, map[string]any{"name": "a"}, got[0])
	assert.Equal(t, 7.0, got[4])
}

func TestResolveEmptyPath(t *testing.T) {
	doc := decode(t, ordersJSON)
	for _, mode := range []Mode{Values, Parents} {
		got := Resolve(doc, "", mode)
		require.Len(t, got, 1)
		assert.Equal(t, doc, got[0])
	}
}

func TestResolveParentsAlignment(t *testing.T) {
	doc := decode(t, ordersJSON)
	paths := []string{
		"total",
		"nothing",
		"missing",
		"orders.items",
		"orders.items[]",
		"orders.items[].id",
		"orders.items[].items",
		"orders.items[].items[]",
		"orders.items[].items[].name",
		"orders.items[].items[].sku",
	}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			values := Resolve(doc, path, Values)
			parents := Resolve(doc, path, Parents)
			require.Equal(t, len(values), len(parents))

			nodes := ResolveNodes(doc, path)
			require.Len(t, nodes, len(values))
			for i, n := range nodes {
				assert.Equal(t, values[i], n.Value)
				parent, ok := parents[i].(map[string]any)
				require.True(t, ok)
				assert.Equal(t, n.Parent, parent)
			}
		})
	}
}

func TestResolveParentsOfFanOutAreOwners(t *testing.T) {
	doc := decode(t, ordersJSON)
	parents := Resolve(doc, "orders.items[].items[]", Parents)
	require.Len(t, parents, 5)
	ids := make([]any, len(parents))
	for i, p := range parents {
		ids[i] = p.(map[string]any)["id"]
	}
	assert.Equal(t, []any{1.0, 1.0, 4.0, 4.0, 4.0}, ids)
}

func TestResolveParentsOfPlainSegment(t *testing.T) {
	doc := decode(t, ordersJSON)
	parents := Resolve(doc, "orders.items[].items[].name", Parents)
	require.Len(t, parents, 3)
	assert.Equal(t, map[string]any{"name": "c"}, parents[2])
}

func TestResolveSingleValuedPaths(t *testing.T) {
	doc := decode(t, `{"a": {"b": {"c": [1, 2]}}, "x": 1}`)
	for _, path := range []string{"a", "a.b", "a.b.c", "a.b.d", "x", "x.y", "q.r.s"} {
		assert.LessOrEqual(t, len(Resolve(doc, path, Values)), 1, path)
	}
}

func TestResolveLoneValueFansOutOnce(t *testing.T) {
	doc := decode(t, `{"item": {"p": 1}}`)
	assert.Equal(t, []any{1.0}, Resolve(doc, "item[].p", Values))
}

func TestResolveEmptyLoneValueAtFanOut(t *testing.T) {
	doc := decode(t, `{"a": "", "b": false, "c": null, "d": 0, "e": "x"}`)
	tests := []struct {
		path string
		want []any
	}{
		{path: "a[]", want: nil},
		{path: "b[]", want: nil},
		{path: "c[]", want: nil},
		{path: "d[]", want: []any{0.0}},
		{path: "e[]", want: []any{"x"}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := Resolve(doc, tt.path, Values)
			if tt.want == nil {
				assert.Empty(t, got)
				assert.Empty(t, Resolve(doc, tt.path, Parents))
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveNonObjectRoot(t *testing.T) {
	assert.Empty(t, Resolve([]any{1, 2}, "a", Values))
	assert.Empty(t, Resolve(nil, "a.b[]", Parents))
	assert.Empty(t, Resolve("scalar", "a", Values))
}

func TestParsePathCached(t *testing.T) {
	first := parsePath("a.b[].c")
	second := parsePath("a.b[].c")
	require.Len(t, first, 3)
	assert.Equal(t, segment{key: "b", fanOut: true}, first[1])
	assert.Same(t, &first[0], &second[0])
}
