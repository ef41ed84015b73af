// Package remap rewrites decoded JSON payloads according to declarative
// mapping rules.
//
// A [Rule] names a source path, a target field and optionally a transform:
//
//	rules := []remap.Rule{
//	    remap.CurrencyRule("data.products[].unitSellPrice", "formattedUnitSellPrice", "USD", 2, true),
//	    {SourceKey: "data.products[].baseUom", TargetKey: "formattedBaseUom", TransformFunction: "toUpperCase"},
//	}
//
// Paths are dot separated; a segment ending in "[]" continues into every
// element of that array. The target field is written on the object holding
// the last source segment, so each product above gains its own formatted price.
//
// Apply rules with an [Engine]:
//
//	e := remap.New(remap.WithLogger(logger))
//	doc, err := e.ApplyMappings(ctx, doc, rules, defaults, overrides)
//
// Rules run in list order and mutate doc in place. Missing paths, unknown
// transforms and values a transform cannot handle are logged and skipped;
// only a failure inside a transform aborts the document.
//
// Sub-packages:
//   - transform – the named transforms and their parameter bag
//   - currency – locale aware currency formatting
//   - openapi – OpenAPI document for the HTTP service
//   - config – YAML configuration for remapd
//   - server – the HTTP boundary used by cmd/remapd
package remap
