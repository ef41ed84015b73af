package openapi

import (
	"errors"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
)

const jsonContent = "application/json"

// Response describes an HTTP response with a description and body types for schema generation.
type Response struct {
	Desc   string
	Bodies []any
}

// Endpoint describes a single API operation for [Get] and [Post].
type Endpoint struct {
	Summary     string
	Description string
	Tags        []string
	Request     any                 // request body type
	Response    any                 // single 200 response type (convenience)
	Responses   map[string]Response // full response map (overrides Response if both set)
}

// NewRequest generates an OpenAPI request body from the given value types.
// More than one value produces a oneOf schema.
func NewRequest(vs ...any) (*openapi3.RequestBodyRef, error) {
	if len(vs) == 0 {
		return nil, errors.New("no values given")
	}

	refs, err := schemaRefs(vs)
	if err != nil {
		return nil, err
	}

	body := openapi3.NewRequestBody().
		WithRequired(true).
		WithContent(openapi3.Content{jsonContent: &openapi3.MediaType{Schema: oneOf(refs)}})
	return &openapi3.RequestBodyRef{Value: body}, nil
}

// NewResponse creates an OpenAPI responses object.
// Map key is status code (e.g. "200", "4xx").
func NewResponse(vs map[string]Response) (*openapi3.Responses, error) {
	if len(vs) == 0 {
		return nil, errors.New("no values given")
	}

	opts := make([]openapi3.NewResponsesOption, 0, len(vs))
	for status, r := range vs {
		desc := r.Desc
		resp := &openapi3.Response{Description: &desc}

		if len(r.Bodies) > 0 {
			refs, err := schemaRefs(r.Bodies)
			if err != nil {
				return nil, err
			}
			resp.Content = openapi3.Content{jsonContent: &openapi3.MediaType{Schema: oneOf(refs)}}
		}

		opts = append(opts, openapi3.WithName(status, resp))
	}

	return openapi3.NewResponses(opts...), nil
}

func schemaRefs(vs []any) (openapi3.SchemaRefs, error) {
	refs := make(openapi3.SchemaRefs, 0, len(vs))
	for _, v := range vs {
		ref, err := NewSchemaRefForValue(v)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func oneOf(refs openapi3.SchemaRefs) *openapi3.SchemaRef {
	if len(refs) == 1 {
		return refs[0]
	}
	return &openapi3.SchemaRef{Value: &openapi3.Schema{OneOf: refs}}
}

// DocBase returns a basic OpenAPI 3.0.3 document structure.
func DocBase(serviceName, description, version string) *openapi3.T {
	return &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       serviceName,
			Description: description,
			Version:     version,
		},
		Paths: &openapi3.Paths{},
	}
}

// AddPath adds an operation to the document at the given path and method.
func AddPath(path, method string, s *openapi3.T, op *openapi3.Operation) {
	p := s.Paths.Value(path)
	if p == nil {
		p = &openapi3.PathItem{}
	}
	p.SetOperation(method, op)
	s.Paths.Set(path, p)
}

func addEndpoint(doc *openapi3.T, path, method, operationID string, ep Endpoint) error {
	op := &openapi3.Operation{
		OperationID: operationID,
		Summary:     ep.Summary,
		Description: ep.Description,
		Tags:        ep.Tags,
	}

	if ep.Request != nil {
		body, err := NewRequest(ep.Request)
		if err != nil {
			return err
		}
		op.RequestBody = body
	}

	responses := ep.Responses
	if responses == nil {
		responses = map[string]Response{"200": {Desc: "OK"}}
		if ep.Response != nil {
			responses["200"] = Response{Desc: "OK", Bodies: []any{ep.Response}}
		}
	}
	rs, err := NewResponse(responses)
	if err != nil {
		return err
	}
	op.Responses = rs

	AddPath(path, method, doc, op)
	return nil
}

// Get registers a GET endpoint on doc.
func Get(doc *openapi3.T, path, operationID string, ep Endpoint) error {
	return addEndpoint(doc, path, http.MethodGet, operationID, ep)
}

// Post registers a POST endpoint on doc.
func Post(doc *openapi3.T, path, operationID string, ep Endpoint) error {
	return addEndpoint(doc, path, http.MethodPost, operationID, ep)
}
