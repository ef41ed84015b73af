package server

import (
	"fmt"
	"strings"

	"github.com/Gobd/remap/config"
	"github.com/Gobd/remap/openapi"
	"github.com/getkin/kin-openapi/openapi3"
)

func buildDoc(cfg *config.Config) (*openapi3.T, error) {
	doc := openapi.DocBase("remapd", "Declarative JSON payload remapping.", Version)

	for _, api := range cfg.APIs {
		err := openapi.Post(doc, api.Route, "remap"+upperFirst(api.Name), openapi.Endpoint{
			Summary:     "Remap a " + api.Name + " payload",
			Description: describeRules(api),
			Tags:        []string{"remap"},
			Request:     map[string]any{},
			Responses: map[string]openapi.Response{
				"200": {Desc: "Remapped payload", Bodies: []any{map[string]any{}}},
				"400": {Desc: "Payload is empty or not JSON", Bodies: []any{ErrorResponse{}}},
				"413": {Desc: "Payload too large", Bodies: []any{ErrorResponse{}}},
				"500": {Desc: "Remapping failed", Bodies: []any{ErrorResponse{}}},
			},
		})
		if err != nil {
			return nil, err
		}
	}

	endpoints := []struct {
		path, id string
		ep       openapi.Endpoint
	}{
		{"/healthz", "healthz", openapi.Endpoint{Summary: "Liveness probe", Response: map[string]string{}}},
		{"/apis", "listAPIs", openapi.Endpoint{Summary: "List configured APIs and their rules", Response: []APIInfo{}}},
		{"/metrics", "metrics", openapi.Endpoint{Summary: "Prometheus metrics"}},
	}
	for _, e := range endpoints {
		if err := openapi.Get(doc, e.path, e.id, e.ep); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

func describeRules(api config.APIConfig) string {
	var b strings.Builder
	for _, r := range api.Rules {
		fmt.Fprintf(&b, "- `%s` -> `%s`", r.SourceKey, r.TargetKey)
		if r.TransformFunction != "" {
			fmt.Fprintf(&b, " (%s)", r.TransformFunction)
		}
		if r.RemoveSourceKey {
			b.WriteString(", source removed")
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
