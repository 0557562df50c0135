package confdec

import (
	"github.com/invopop/jsonschema"
)

// JSONSchemaFor projects an element type into a JSON Schema, for editor
// tooling and documentation of hand-authored configuration files. Required
// fields follow the `conf:"required"` markers rather than jsonschema's own
// tag conventions.
func JSONSchemaFor[T any]() *jsonschema.Schema {
	r := &jsonschema.Reflector{DoNotReference: true}
	s := r.Reflect(new(T))
	if desc := DescribeType(typeOf[T]()); desc != nil {
		s.Required = append([]string(nil), desc.Required...)
	}
	return s
}
