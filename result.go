package confdec

import (
	"errors"
	"fmt"
	"strings"
)

// Failure codes (exported consts for IDE completion and type safety by convention)
const (
	CodeInvalidList  = "invalid_list"
	CodeDecode       = "decode_error"
	CodeRequired     = "required"
	CodeDuplicateKey = "duplicate_key"
	CodeParseError   = "parse_error"
	CodeTruncated    = "truncated"
)

// Failure records one element that could not be decoded. Line/Column point at
// the start of the element in the source document, not at the internal cause.
// Failures are immutable once produced; they are never merged or deduplicated.
type Failure struct {
	Code    string
	Message string
	Line    int // 1-based; 0 when the source has no position information
	Column  int
	Cause   error // Optional: underlying decode error.
}

// Failures is a collection of decode failures that implements error, for
// callers that treat any failure as fatal downstream.
type Failures []Failure

// Error summarizes the first few failures.
func (fs Failures) Error() string {
	if len(fs) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(fs)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		f := fs[i]
		fmt.Fprintf(b, "%s at %d:%d", f.Code, f.Line, f.Column)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AsFailures extracts Failures from an error using errors.As internally.
func AsFailures(err error) (Failures, bool) {
	if err == nil {
		return nil, false
	}
	var fs Failures
	if errors.As(err, &fs) {
		return fs, true
	}
	return nil, false
}

// Expression is one tagged expression string lifted out of a successfully
// decoded element, packaged for a downstream validator. Line/Column are the
// containing element's, matching the granularity of Failure.
type Expression struct {
	Text    string
	Primary bool // resolved field key equals PrimaryExpressionKey
	Line    int
	Column  int
}

// Result aggregates the three parallel outputs of DecodeList, each in
// document order. Items plus Failures account for every decodable element
// slot; skipped stray fragments contribute to neither.
type Result[T any] struct {
	Items       []T
	Failures    Failures
	Expressions []Expression
}

// Err returns the failures as an error, or nil when decoding was clean.
func (r Result[T]) Err() error {
	if len(r.Failures) > 0 {
		return r.Failures
	}
	return nil
}
