// Package openapi builds OpenAPI 3 documents for the remap HTTP boundary and
// serves them as JSON.
//
// Use [DocBase] to create a base document, register endpoints with [Get] or
// [Post], then mount [HandlerMust]:
//
//	doc := openapi.DocBase("remapd", "Payload remapping", "1.0")
//	openapi.Post(doc, "/pricing", "remapPricingApi", openapi.Endpoint{
//	    Request:  map[string]any{},
//	    Response: map[string]any{},
//	})
//	http.Handle("/openapi.json", openapi.HandlerMust(doc))
package openapi
