// Package yaml provides a gopkg.in/yaml.v3-backed token source. The document
// is parsed into a node tree first; yaml.Node carries exact 1-based
// line/column information, which the emitted tokens inherit.
package yaml

import (
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	eng "github.com/pipegen/confdec/internal/engine"
)

type yamlSource struct {
	toks []eng.Token
	err  error
	i    int
}

// NewBytes parses b and wraps the resulting node tree as an
// engine.TokenSource. Parse errors surface on the first NextToken call so
// the source keeps the same construction shape as the JSON one.
func NewBytes(b []byte) eng.TokenSource {
	var root yaml.Node
	if err := yaml.Unmarshal(b, &root); err != nil {
		return &yamlSource{err: err}
	}
	s := &yamlSource{}
	s.emit(&root)
	return s
}

// NewReader buffers r entirely and parses it as YAML.
func NewReader(r io.Reader) eng.TokenSource {
	b, err := io.ReadAll(r)
	if err != nil {
		return &yamlSource{err: err}
	}
	return NewBytes(b)
}

func (s *yamlSource) NextToken() (eng.Token, error) {
	if s.err != nil {
		return eng.Token{}, s.err
	}
	if s.i >= len(s.toks) {
		return eng.Token{}, io.EOF
	}
	t := s.toks[s.i]
	s.i++
	return t, nil
}

func (s *yamlSource) Location() int64 { return -1 }

func (s *yamlSource) emit(n *yaml.Node) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) > 0 {
			s.emit(n.Content[0])
		}
	case yaml.MappingNode:
		s.push(eng.Token{Kind: eng.KindBeginObject, Offset: -1, Line: n.Line, Col: n.Column})
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			s.push(eng.Token{Kind: eng.KindKey, String: k.Value, Offset: -1, Line: k.Line, Col: k.Column})
			s.emit(v)
		}
		s.push(eng.Token{Kind: eng.KindEndObject, Offset: -1})
	case yaml.SequenceNode:
		s.push(eng.Token{Kind: eng.KindBeginArray, Offset: -1, Line: n.Line, Col: n.Column})
		for _, c := range n.Content {
			s.emit(c)
		}
		s.push(eng.Token{Kind: eng.KindEndArray, Offset: -1})
	case yaml.ScalarNode:
		s.push(scalarToken(n))
	case yaml.AliasNode:
		if n.Alias != nil {
			s.emit(n.Alias)
		}
	}
}

func (s *yamlSource) push(t eng.Token) { s.toks = append(s.toks, t) }

func scalarToken(n *yaml.Node) eng.Token {
	t := eng.Token{Offset: -1, Line: n.Line, Col: n.Column}
	switch n.Tag {
	case "!!int", "!!float":
		t.Kind = eng.KindNumber
		t.Number = n.Value
	case "!!bool":
		t.Kind = eng.KindBool
		t.Bool = strings.EqualFold(n.Value, "true") || n.Value == "on" || n.Value == "yes"
	case "!!null":
		t.Kind = eng.KindNull
	default:
		t.Kind = eng.KindString
		t.String = n.Value
	}
	return t
}
