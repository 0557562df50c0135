package confdec

import (
	"reflect"
	"strings"
	"sync"
)

// PrimaryExpressionKey is the reserved field key that marks an element's main
// expression. Any other expression-tagged field is secondary.
const PrimaryExpressionKey = "expression"

// FieldDesc describes one declared field of a target element type.
type FieldDesc struct {
	Key      string // resolved document key
	GoName   string
	Index    []int // reflect field index within the struct
	Expr     bool  // carries an expression string for downstream validation
	Required bool
}

// TypeDesc is the per-type field descriptor table. It is built once per
// target type and cached; the decoder and the tag extractor only query it.
type TypeDesc struct {
	Fields   []FieldDesc
	Required []string    // resolved keys of required fields
	Expr     []FieldDesc // expression-tagged fields in declared order
}

var descCache sync.Map // reflect.Type -> *TypeDesc

func typeOf[T any]() reflect.Type { return reflect.TypeOf((*T)(nil)).Elem() }

// DescribeType returns the descriptor table for t, building and caching it on
// first use. Non-struct targets (maps, slices) have no declared fields and
// yield nil; such types simply produce zero expression records.
func DescribeType(t reflect.Type) *TypeDesc {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	if d, ok := descCache.Load(t); ok {
		return d.(*TypeDesc)
	}
	d := describeStruct(t)
	actual, _ := descCache.LoadOrStore(t, d)
	return actual.(*TypeDesc)
}

func describeStruct(t reflect.Type) *TypeDesc {
	d := &TypeDesc{}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		key := ResolveStructKey(sf)
		if key == "" || key == "-" {
			continue
		}
		fd := FieldDesc{Key: key, GoName: sf.Name, Index: sf.Index}
		for _, opt := range confTagOptions(sf) {
			switch opt {
			case "expr":
				fd.Expr = true
			case "required":
				fd.Required = true
			}
		}
		if fd.Expr && !isExpressionField(sf.Type) {
			// expression markers only make sense on string-shaped fields
			fd.Expr = false
		}
		d.Fields = append(d.Fields, fd)
		if fd.Required {
			d.Required = append(d.Required, fd.Key)
		}
		if fd.Expr {
			d.Expr = append(d.Expr, fd)
		}
	}
	return d
}

// ResolveStructKey applies the repository-wide rule to resolve a struct
// field's external key. Binding, required checks, and primary classification
// all use the same key.
// Priority: json tag name > field name; "-" disables the field.
func ResolveStructKey(sf reflect.StructField) string {
	if jt := sf.Tag.Get("json"); jt != "" {
		if jt == "-" {
			return "-"
		}
		if i := strings.IndexByte(jt, ','); i >= 0 {
			jt = jt[:i]
		}
		if jt != "" {
			return jt
		}
	}
	return sf.Name
}

func confTagOptions(sf reflect.StructField) []string {
	ct := sf.Tag.Get("conf")
	if ct == "" {
		return nil
	}
	parts := strings.Split(ct, ",")
	out := parts[:0]
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isExpressionField(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.String
}

// extractExpressions reads the expression-tagged fields of a decoded element.
// Optional fields (*string) that are nil are absent and skipped rather than
// recorded as empty. Results follow the type's declared field order.
func extractExpressions(v reflect.Value, desc *TypeDesc, line, col int) []Expression {
	if desc == nil || len(desc.Expr) == 0 {
		return nil
	}
	for v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	var out []Expression
	for _, fd := range desc.Expr {
		fv := v.FieldByIndex(fd.Index)
		if fv.Kind() == reflect.Pointer {
			if fv.IsNil() {
				continue
			}
			fv = fv.Elem()
		}
		out = append(out, Expression{
			Text:    fv.String(),
			Primary: fd.Key == PrimaryExpressionKey,
			Line:    line,
			Column:  col,
		})
	}
	return out
}
