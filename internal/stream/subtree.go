package stream

import (
	"io"

	eng "github.com/pipegen/confdec/internal/engine"
)

// PreloadedSource is a subtree source that first returns a preloaded token
// (typically the first token of an array element) and then continues to
// stream the remaining tokens of the same subtree from the underlying source.
// It stops after the subtree end is reached, returning io.EOF afterwards.
// The underlying source is left positioned exactly past the subtree, so the
// enclosing array loop stays in sync.
type PreloadedSource struct {
	inner       eng.TokenSource
	preloaded   *eng.Token
	depth       int
	done        bool
	firstServed bool
}

// NewPreloadedSource constructs a subtree source that will return the
// provided first token before consuming further tokens from inner. The
// subtree boundary is determined by matching container begin/end pairs
// starting from the first token.
func NewPreloadedSource(inner eng.TokenSource, first eng.Token) *PreloadedSource {
	return &PreloadedSource{inner: inner, preloaded: &first}
}

func (p *PreloadedSource) NextToken() (eng.Token, error) {
	if p.done {
		return eng.Token{}, io.EOF
	}
	if p.preloaded != nil && !p.firstServed {
		t := *p.preloaded
		p.firstServed = true
		switch t.Kind {
		case eng.KindBeginObject, eng.KindBeginArray:
			p.depth++
		case eng.KindEndObject, eng.KindEndArray:
			if p.depth > 0 {
				p.depth--
				if p.depth == 0 {
					p.done = true
				}
			}
		default:
			// primitives: single-token subtree
			p.done = true
		}
		return t, nil
	}

	tok, err := p.inner.NextToken()
	if err != nil {
		return eng.Token{}, err
	}
	switch tok.Kind {
	case eng.KindBeginObject, eng.KindBeginArray:
		p.depth++
	case eng.KindEndObject, eng.KindEndArray:
		if p.depth > 0 {
			p.depth--
			if p.depth == 0 {
				p.done = true
				return tok, nil
			}
		}
	}
	if p.depth == 0 && p.firstServed {
		p.done = true
	}
	return tok, nil
}

func (p *PreloadedSource) Location() int64 { return p.inner.Location() }
