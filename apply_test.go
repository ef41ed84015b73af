package remap_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/Gobd/remap"
	"github.com/Gobd/remap/currency"
	"github.com/Gobd/remap/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, s string) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(s), &m))
	return m
}

func newEngine(t *testing.T, opts ...remap.Option) (*remap.Engine, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return remap.New(append([]remap.Option{remap.WithLogger(logger)}, opts...)...), &logs
}

func TestApplyMoveAndRemove(t *testing.T) {
	e, _ := newEngine(t)
	doc := decode(t, `{"items":[{"p":1},{"p":2}]}`)

	out, err := e.ApplyMappings(context.Background(), doc, []remap.Rule{
		{SourceKey: "items[].p", TargetKey: "q", RemoveSourceKey: true},
	}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, decode(t, `{"items":[{"q":1},{"q":2}]}`), out)
}

func TestApplyMissingSourceIsNoop(t *testing.T) {
	e, logs := newEngine(t)
	doc := decode(t, `{"items":[{"p":1}]}`)
	want := decode(t, `{"items":[{"p":1}]}`)

	out, err := e.ApplyMappings(context.Background(), doc, []remap.Rule{
		{SourceKey: "items[].missing", TargetKey: "q", TransformFunction: "toUpperCase", RemoveSourceKey: true},
		{SourceKey: "nope.deeper[].x", TargetKey: "q"},
	}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, want, out)
	assert.Contains(t, logs.String(), "Source path not present")
}

func TestApplyIdempotentAfterRemoval(t *testing.T) {
	e, _ := newEngine(t)
	rules := []remap.Rule{
		{SourceKey: "data.products[].priceUom", TargetKey: "formattedPriceUom", TransformFunction: "toUpperCase", RemoveSourceKey: true},
	}
	doc := decode(t, `{"data":{"products":[{"priceUom":"ea"},{"priceUom":"box"}]}}`)

	once, err := e.ApplyMappings(context.Background(), doc, rules, nil, nil)
	require.NoError(t, err)
	want := decode(t, `{"data":{"products":[{"formattedPriceUom":"EA"},{"formattedPriceUom":"BOX"}]}}`)
	assert.Equal(t, want, once)

	twice, err := e.ApplyMappings(context.Background(), once, rules, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, want, twice)
}

func TestApplyUnknownTransformIsPassThrough(t *testing.T) {
	e, logs := newEngine(t)
	payload := `{"a":{"b":"keep"},"list":[{"v":1},{"v":"x"}]}`

	withUnknown := decode(t, payload)
	_, err := e.ApplyMappings(context.Background(), withUnknown, []remap.Rule{
		{SourceKey: "a.b", TargetKey: "c", TransformFunction: "noSuchTransform"},
		{SourceKey: "list[].v", TargetKey: "w", TransformFunction: "noSuchTransform", RemoveSourceKey: true},
	}, nil, nil)
	require.NoError(t, err)

	without := decode(t, payload)
	_, err = e.ApplyMappings(context.Background(), without, []remap.Rule{
		{SourceKey: "a.b", TargetKey: "c"},
		{SourceKey: "list[].v", TargetKey: "w", RemoveSourceKey: true},
	}, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, without, withUnknown)
	assert.Contains(t, logs.String(), "Unknown transform")
}

func TestApplySameTargetAndSourceKey(t *testing.T) {
	e, _ := newEngine(t)
	doc := decode(t, `{"rows":[{"name":"a"},{"name":"b"}]}`)
	_, err := e.ApplyMappings(context.Background(), doc, []remap.Rule{
		{SourceKey: "rows[].name", TargetKey: "name", TransformFunction: "toUpperCase", RemoveSourceKey: true},
	}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, decode(t, `{"rows":[{"name":"A"},{"name":"B"}]}`), doc)
}

func TestApplyTopLevelKey(t *testing.T) {
	e, _ := newEngine(t)
	doc := decode(t, `{"status":"open"}`)
	_, err := e.ApplyMappings(context.Background(), doc, []remap.Rule{
		{SourceKey: "status", TargetKey: "STATUS", TransformFunction: "toUpperCase", RemoveSourceKey: true},
	}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"STATUS": "OPEN"}, doc)
}

func TestApplyFanOutFinalSegment(t *testing.T) {
	e, _ := newEngine(t)
	doc := decode(t, `{"order":{"tags":["a","b"]}}`)
	_, err := e.ApplyMappings(context.Background(), doc, []remap.Rule{
		{SourceKey: "order.tags[]", TargetKey: "lastTag", TransformFunction: "toUpperCase", RemoveSourceKey: true},
	}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, decode(t, `{"order":{"lastTag":"B"}}`), doc)
}

func TestApplyParamPrecedence(t *testing.T) {
	var seen []transform.Params
	record := func(_ context.Context, v any, p transform.Params) (any, error) {
		seen = append(seen, p)
		return v, nil
	}
	e, _ := newEngine(t, remap.WithRegistry(transform.NewRegistry(transform.WithFunc("record", record))))

	doc := decode(t, `{"x":1}`)
	defaults := transform.Params{"a": "default", "b": "default", "c": "default"}
	rule := remap.Rule{SourceKey: "x", TargetKey: "y", TransformFunction: "record",
		TransformParams: transform.Params{"b": "rule", "c": "rule"}}
	overrides := map[string]transform.Params{
		"record": {"c": "override"},
		"other":  {"a": "ignored"},
	}
	require.NoError(t, e.Apply(context.Background(), doc, rule, defaults, overrides))
	require.Len(t, seen, 1)
	assert.Equal(t, transform.Params{"a": "default", "b": "rule", "c": "override"}, seen[0])
	assert.Equal(t, "default", defaults["b"], "defaults must not be mutated")
}

func TestApplyTransformDiagnostics(t *testing.T) {
	e, logs := newEngine(t)
	doc := decode(t, `{"rows":[
		{"name":"a","date":"2024-01-02T10:00:00Z"},
		{"name":5,"date":"garbage"}
	]}`)
	_, err := e.ApplyMappings(context.Background(), doc, []remap.Rule{
		{SourceKey: "rows[].name", TargetKey: "upper", TransformFunction: "toUpperCase"},
		{SourceKey: "rows[].date", TargetKey: "day", TransformFunction: "formatDate", RemoveSourceKey: true},
		{SourceKey: "rows[].name", TargetKey: "swapped", TransformFunction: "replaceString"},
	}, nil, nil)
	require.NoError(t, err)

	want := decode(t, `{"rows":[
		{"name":"a","upper":"A","day":"2024-01-02","swapped":"a"},
		{"name":5,"upper":5,"date":"garbage","swapped":5}
	]}`)
	assert.Equal(t, want, doc)
	assert.Contains(t, logs.String(), "Transform reported a problem")
	assert.Contains(t, logs.String(), transform.ErrInvalidDate.Error())
	assert.Contains(t, logs.String(), transform.ErrMissingParam.Error())
}

func TestApplyNoValueSkipsWrite(t *testing.T) {
	drop := func(context.Context, any, transform.Params) (any, error) {
		return transform.NoValue, nil
	}
	e, _ := newEngine(t, remap.WithRegistry(transform.NewRegistry(transform.WithFunc("drop", drop))))
	doc := decode(t, `{"a":1,"b":2}`)
	_, err := e.ApplyMappings(context.Background(), doc, []remap.Rule{
		{SourceKey: "a", TargetKey: "c", TransformFunction: "drop", RemoveSourceKey: true},
		{SourceKey: "b", TargetKey: "d", TransformFunction: "drop"},
	}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"b": 2.0}, doc)
}

func TestApplyPanicStopsBatch(t *testing.T) {
	boom := func(context.Context, any, transform.Params) (any, error) {
		panic("boom")
	}
	e, _ := newEngine(t, remap.WithRegistry(transform.NewRegistry(transform.WithFunc("boom", boom))))
	doc := decode(t, `{"a":"x","b":"y","c":"z"}`)

	_, err := e.ApplyMappings(context.Background(), doc, []remap.Rule{
		{SourceKey: "a", TargetKey: "A", TransformFunction: "toUpperCase"},
		{SourceKey: "b", TargetKey: "B", TransformFunction: "boom"},
		{SourceKey: "c", TargetKey: "C", TransformFunction: "toUpperCase"},
	}, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, remap.ErrInternal))
	assert.Contains(t, err.Error(), "rule 1 (b)")
	assert.Equal(t, map[string]any{"a": "x", "A": "X", "b": "y", "c": "z"}, doc)
}

func TestApplyRulesInOrder(t *testing.T) {
	e, _ := newEngine(t)
	doc := decode(t, `{"v":"first","w":"second"}`)
	_, err := e.ApplyMappings(context.Background(), doc, []remap.Rule{
		{SourceKey: "v", TargetKey: "out"},
		{SourceKey: "w", TargetKey: "out"},
		{SourceKey: "out", TargetKey: "final", TransformFunction: "toUpperCase"},
	}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "second", doc["out"])
	assert.Equal(t, "SECOND", doc["final"])
}

func TestApplyCurrencyWithDefaults(t *testing.T) {
	e, _ := newEngine(t)
	ctx := currency.WithAuthorizer(context.Background(), currency.AllowAll)
	doc := decode(t, `{"data":{"products":[{"unitSellPrice":1234.5},{"unitSellPrice":"0.1234"}]}}`)

	defaults := transform.Params{"currencyCode": "CAD", "decimalPlaces": 4}
	_, err := e.ApplyMappings(ctx, doc, []remap.Rule{
		remap.CurrencyRule("data.products[].unitSellPrice", "formattedUnitSellPrice", "USD", 4, true),
	}, defaults, nil)
	require.NoError(t, err)
	assert.Equal(t, decode(t, `{"data":{"products":[
		{"formattedUnitSellPrice":"$1,234.50"},
		{"formattedUnitSellPrice":"$0.1234"}
	]}}`), doc)
}

func TestApplyCurrencyDenied(t *testing.T) {
	e, _ := newEngine(t)
	ctx := currency.WithAuthorizer(context.Background(), currency.DenyAll)
	doc := decode(t, `{"price":10}`)
	_, err := e.ApplyMappings(ctx, doc, []remap.Rule{
		remap.CurrencyRule("price", "formattedPrice", "USD", 2, false),
	}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "-", doc["formattedPrice"])
}

func TestApplyAPI(t *testing.T) {
	catalog := remap.NewCatalog()
	catalog.MustRegister("orderDetailsApi", []remap.Rule{
		{SourceKey: "orders.items[].customer_email", TargetKey: "formattedCustomerEmail",
			TransformFunction: "redactString", RemoveSourceKey: true},
	})
	e, logs := newEngine(t, remap.WithCatalog(catalog))

	doc := decode(t, `{"orders":{"items":[{"customer_email":"a@b.c"}]}}`)
	out, err := e.ApplyAPI(context.Background(), "orderDetailsApi", doc, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, decode(t, `{"orders":{"items":[{"formattedCustomerEmail":"{REDACTED}"}]}}`), out)

	untouched := decode(t, `{"x":1}`)
	out, err = e.ApplyAPI(context.Background(), "unknownApi", untouched, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"x": 1.0}, out)
	assert.Contains(t, logs.String(), "No mappings found")
}

func TestApplyIncompleteRuleSkipped(t *testing.T) {
	e, _ := newEngine(t)
	doc := decode(t, `{"a":1}`)
	_, err := e.ApplyMappings(context.Background(), doc, []remap.Rule{{SourceKey: "a"}, {TargetKey: "b"}}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 1.0}, doc)
}

func TestApplyMappingsPackageFunc(t *testing.T) {
	doc := decode(t, `{"a":"x"}`)
	out, err := remap.ApplyMappings(doc, remap.Rule{SourceKey: "a", TargetKey: "b", TransformFunction: "toUpperCase"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": "x", "b": "X"}, out)
}
