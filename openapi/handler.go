package openapi

import (
	"context"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
)

// Handler returns an http.Handler that serves s as JSON. The document is
// validated and encoded once.
func Handler(s *openapi3.T) (http.Handler, error) {
	if err := s.Validate(context.Background()); err != nil {
		return nil, err
	}

	docJSON, err := s.MarshalJSON()
	if err != nil {
		return nil, err
	}

	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", jsonContent)
		_, _ = w.Write(docJSON)
	}), nil
}

// HandlerMust is like Handler but panics on error.
func HandlerMust(s *openapi3.T) http.Handler {
	h, err := Handler(s)
	if err != nil {
		panic(err)
	}
	return h
}
