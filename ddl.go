package confdec

import (
	"errors"
	"fmt"
	"io"
	"strings"

	eng "github.com/pipegen/confdec/internal/engine"
)

// Entry is one key/value pair of a simple schema document, in document order.
type Entry struct {
	Key   string
	Value string
}

// DecodeEntries decodes a flat object of string values, preserving document
// order. This is the simpler single-object decode path used for schema
// documents; unlike DecodeList it is fail-fast, since a schema document with
// any malformed entry is unusable as a whole.
func DecodeEntries(src Source) ([]Entry, error) {
	if src == nil {
		return nil, nil
	}
	es := EngineTokenSource(src)
	first, err := es.NextToken()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	if first.Kind != eng.KindBeginObject {
		return nil, fmt.Errorf("confdec: invalid schema definition at %d:%d", first.Line, first.Col)
	}
	var out []Entry
	for {
		t, err := es.NextToken()
		if err != nil {
			return nil, err
		}
		if t.Kind == eng.KindEndObject {
			return out, nil
		}
		if t.Kind != eng.KindKey {
			return nil, fmt.Errorf("confdec: invalid schema definition at %d:%d", t.Line, t.Col)
		}
		vt, err := es.NextToken()
		if err != nil {
			return nil, err
		}
		if vt.Kind != eng.KindString {
			return nil, fmt.Errorf("confdec: schema key %q: expected string value at %d:%d", t.String, vt.Line, vt.Col)
		}
		out = append(out, Entry{Key: t.String, Value: vt.String})
	}
}

// DDLString joins schema entries into a flat type-description string, e.g.
// "name string, age int".
func DDLString(entries []Entry) string {
	b := &strings.Builder{}
	for i, e := range entries {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(e.Key)
		b.WriteByte(' ')
		b.WriteString(e.Value)
	}
	return b.String()
}
