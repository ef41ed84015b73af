package openapi

import (
	"reflect"

	"github.com/Gobd/remap"
	"github.com/Gobd/remap/transform"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3gen"
)

var ruleType = reflect.TypeOf(remap.Rule{})

// describeRule mirrors Rule.Validate in the schema.
func describeRule(schema *openapi3.Schema) {
	schema.Required = []string{"sourceKey", "targetKey"}

	if p := schema.Properties["sourceKey"]; p != nil && p.Value != nil {
		p.Value.Description = `Dotted path; a segment ending in "[]" fans out over an array.`
		p.Value.MinLength = 1
		p.Value.Example = "data.products[].unitSellPrice"
	}
	if p := schema.Properties["targetKey"]; p != nil && p.Value != nil {
		p.Value.Description = "Field written beside the last source segment."
		p.Value.MinLength = 1
		p.Value.Pattern = `^[^.\[\]]+$`
	}
	if p := schema.Properties["transformFunction"]; p != nil && p.Value != nil {
		p.Value.Description = "Built-in transform. Unknown names pass values through."
		for _, k := range transform.Kinds() {
			p.Value.Enum = append(p.Value.Enum, k.String())
		}
	}
}

func schemaDoc(_ string, t reflect.Type, _ reflect.StructTag, schema *openapi3.Schema) error {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == ruleType {
		describeRule(schema)
	}
	return nil
}

// NewSchemaRefForValue generates an OpenAPI schema for the given value.
// Rules embedded anywhere in value get their constraints documented.
func NewSchemaRefForValue(value any) (*openapi3.SchemaRef, error) {
	g := openapi3gen.NewGenerator(openapi3gen.SchemaCustomizer(schemaDoc))
	return g.NewSchemaRefForValue(value, nil)
}
