// Package json provides an encoding/json-backed token source. The input is
// fully buffered so that every token can be stamped with a 1-based
// line/column, which element-level diagnostics report to users.
package json

import (
	"bytes"
	"encoding/json"
	"io"
	"sort"
	"strconv"

	eng "github.com/pipegen/confdec/internal/engine"
)

type containerKind int

const (
	kindObject containerKind = iota
	kindArray
)

type frame struct {
	kind         containerKind
	expectingKey bool
}

type jsonSource struct {
	dec        *json.Decoder
	data       []byte
	lineStarts []int
	stack      []frame
	lastOffset int64
}

// NewBytes wraps a byte slice into an engine.TokenSource for JSON.
func NewBytes(b []byte) eng.TokenSource {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	return &jsonSource{dec: dec, data: b, lineStarts: indexLines(b), lastOffset: -1}
}

// NewReader buffers r entirely and wraps it as an engine.TokenSource.
// Buffering is required for position reporting; configuration documents are
// small by nature.
func NewReader(r io.Reader) eng.TokenSource {
	b, err := io.ReadAll(r)
	if err != nil {
		return &errSource{err: err}
	}
	return NewBytes(b)
}

type errSource struct{ err error }

func (s *errSource) NextToken() (eng.Token, error) { return eng.Token{}, s.err }
func (s *errSource) Location() int64               { return -1 }

func indexLines(b []byte) []int {
	starts := []int{0}
	for i, c := range b {
		if c == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// lineCol converts a byte offset into a 1-based line/column pair.
func (s *jsonSource) lineCol(off int) (int, int) {
	if off < 0 {
		return 0, 0
	}
	i := sort.SearchInts(s.lineStarts, off+1) - 1
	return i + 1, off - s.lineStarts[i] + 1
}

// tokenStart locates the first byte of the token that ended at end, given
// that the previous token ended at begin. Whitespace and structural
// separators in between belong to neither token.
func (s *jsonSource) tokenStart(begin, end int64) int {
	if begin < 0 {
		begin = 0
	}
	if end > int64(len(s.data)) {
		end = int64(len(s.data))
	}
	for i := begin; i < end; i++ {
		switch s.data[i] {
		case ' ', '\t', '\r', '\n', ',', ':':
			continue
		}
		return int(i)
	}
	return int(begin)
}

func (s *jsonSource) NextToken() (eng.Token, error) {
	prev := s.dec.InputOffset()
	tok, err := s.dec.Token()
	if err != nil {
		if err == io.EOF {
			return eng.Token{}, io.EOF
		}
		return eng.Token{}, err
	}
	s.lastOffset = s.dec.InputOffset()
	start := s.tokenStart(prev, s.lastOffset)
	line, col := s.lineCol(start)

	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			s.stack = append(s.stack, frame{kind: kindObject, expectingKey: true})
			return eng.Token{Kind: eng.KindBeginObject, Offset: s.lastOffset, Line: line, Col: col}, nil
		case '}':
			s.pop()
			return eng.Token{Kind: eng.KindEndObject, Offset: s.lastOffset, Line: line, Col: col}, nil
		case '[':
			s.stack = append(s.stack, frame{kind: kindArray})
			return eng.Token{Kind: eng.KindBeginArray, Offset: s.lastOffset, Line: line, Col: col}, nil
		case ']':
			s.pop()
			return eng.Token{Kind: eng.KindEndArray, Offset: s.lastOffset, Line: line, Col: col}, nil
		}
	case string:
		if n := len(s.stack); n > 0 {
			top := &s.stack[n-1]
			if top.kind == kindObject && top.expectingKey {
				top.expectingKey = false
				return eng.Token{Kind: eng.KindKey, String: v, Offset: s.lastOffset, Line: line, Col: col}, nil
			}
		}
		s.valueDone()
		return eng.Token{Kind: eng.KindString, String: v, Offset: s.lastOffset, Line: line, Col: col}, nil
	case bool:
		s.valueDone()
		return eng.Token{Kind: eng.KindBool, Bool: v, Offset: s.lastOffset, Line: line, Col: col}, nil
	case json.Number:
		s.valueDone()
		return eng.Token{Kind: eng.KindNumber, Number: string(v), Offset: s.lastOffset, Line: line, Col: col}, nil
	case float64:
		s.valueDone()
		return eng.Token{Kind: eng.KindNumber, Number: strconv.FormatFloat(v, 'g', -1, 64), Offset: s.lastOffset, Line: line, Col: col}, nil
	case nil:
		s.valueDone()
		return eng.Token{Kind: eng.KindNull, Offset: s.lastOffset, Line: line, Col: col}, nil
	}
	s.valueDone()
	return eng.Token{Kind: eng.KindNull, Offset: s.lastOffset, Line: line, Col: col}, nil
}

func (s *jsonSource) pop() {
	if n := len(s.stack); n > 0 {
		s.stack = s.stack[:n-1]
	}
	s.valueDone()
}

func (s *jsonSource) valueDone() {
	if n := len(s.stack); n > 0 {
		top := &s.stack[n-1]
		if top.kind == kindObject && !top.expectingKey {
			top.expectingKey = true
		}
	}
}

func (s *jsonSource) Location() int64 { return s.lastOffset }
