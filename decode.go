package confdec

import (
	"bytes"
	"errors"
	"io"
	"reflect"

	gojson "github.com/goccy/go-json"

	"github.com/pipegen/confdec/i18n"
	eng "github.com/pipegen/confdec/internal/engine"
	str "github.com/pipegen/confdec/internal/stream"
)

// DecodeList consumes a token stream positioned at the start of an array and
// decodes as many elements into T as possible. Decoding is best-effort: a
// malformed element records a Failure at the element's position and the loop
// continues; the only fail-fast case is a document that does not start with
// an array at all. Expression-tagged fields of each decoded element are
// collected into Result.Expressions for later validation.
//
// A nil src means no document was bound; absence is not an error and yields
// the empty Result. The stream is advanced past the array's closing token as
// a side effect.
func DecodeList[T any](src Source, opts ...DecodeOpt) Result[T] {
	var res Result[T]
	if src == nil {
		return res
	}
	opt := pickOpt(opts)
	es := enforce(EngineTokenSource(src), opt)

	first, err := es.NextToken()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return res
		}
		res.Failures = append(res.Failures, failureFromStream(err))
		return res
	}
	if first.Kind != eng.KindBeginArray {
		res.Failures = append(res.Failures, Failure{
			Code:    CodeInvalidList,
			Message: i18n.T(CodeInvalidList, nil),
			Line:    first.Line,
			Column:  first.Col,
		})
		return res
	}

	desc := DescribeType(typeOf[T]())

	// A text-level syntax error inside an element makes the underlying
	// decoder sticky: every later NextToken returns the same error. The
	// element Failure already covers it, so the repeat is suppressed.
	var lastElemErr error

loop:
	for {
		t, err := es.NextToken()
		if err != nil {
			// An unterminated array is the stream reader's condition to
			// surface; fatal enforcement findings are recorded here.
			if !errors.Is(err, io.EOF) && (lastElemErr == nil || !errors.Is(err, lastElemErr)) {
				res.Failures = append(res.Failures, failureFromStream(err))
			}
			break
		}
		switch t.Kind {
		case eng.KindEndArray:
			break loop
		case eng.KindBeginObject:
			// the expected element shape; capture the position first so
			// failures point at the element start, not the inner cause
			line, col := t.Line, t.Col
			raw, derr := eng.DecodeAnyFromSource(str.NewPreloadedSource(es, t))
			if derr != nil {
				var fe eng.FindingError
				if errors.As(derr, &fe) {
					// fatal enforcement finding; the stream is no longer
					// positioned at an element boundary
					res.Failures = append(res.Failures, Failure{Code: fe.Code, Message: fe.Message, Line: line, Column: col, Cause: derr})
					break loop
				}
				res.Failures = append(res.Failures, Failure{Code: CodeDecode, Message: derr.Error(), Line: line, Column: col, Cause: derr})
				lastElemErr = derr
				continue
			}
			var v T
			if berr := bindValue(raw, &v, desc, opt); berr != nil {
				res.Failures = append(res.Failures, Failure{Code: failureCode(berr), Message: berr.Error(), Line: line, Column: col, Cause: berr})
				continue
			}
			res.Expressions = append(res.Expressions, extractExpressions(reflect.ValueOf(&v), desc, line, col)...)
			res.Items = append(res.Items, v)
		case eng.KindKey:
			// debris from a prior failed parse resynchronizing at a nested
			// level: a named value is not an element slot
			nt, nerr := es.NextToken()
			if nerr != nil {
				if !errors.Is(nerr, io.EOF) {
					res.Failures = append(res.Failures, failureFromStream(nerr))
				}
				break loop
			}
			if serr := eng.SkipValue(es, nt); serr != nil && !errors.Is(serr, io.EOF) {
				res.Failures = append(res.Failures, failureFromStream(serr))
				break loop
			}
			if opt.OnSkip != nil {
				opt.OnSkip(SkipEvent{Key: t.String, Line: t.Line, Column: t.Col})
			}
		case eng.KindBeginArray:
			// stray nested array fragment; skip it wholesale to keep the
			// enclosing array's boundary tracking intact
			if serr := eng.SkipValue(es, t); serr != nil && !errors.Is(serr, io.EOF) {
				res.Failures = append(res.Failures, failureFromStream(serr))
				break loop
			}
			if opt.OnSkip != nil {
				opt.OnSkip(SkipEvent{Line: t.Line, Column: t.Col})
			}
		default:
			// stray scalar or separator noise; tolerated without action
		}
	}
	return res
}

func enforce(es eng.TokenSource, opt DecodeOpt) eng.TokenSource {
	var sink func(eng.Finding)
	if opt.OnFinding != nil {
		fwd := opt.OnFinding
		sink = func(f eng.Finding) {
			fwd(Finding{Code: f.Code, Message: f.Message, Line: f.Line, Column: f.Col})
		}
	}
	return eng.WrapWithEnforcement(es, eng.EnforceOptions{
		OnDuplicate: toEngineDup(opt.Strictness.OnDuplicateKey),
		MaxDepth:    opt.MaxDepth,
		MaxBytes:    opt.MaxBytes,
		Sink:        sink,
	})
}

func toEngineDup(s Severity) eng.DuplicateStrictness {
	switch s {
	case Warn:
		return eng.DupWarn
	case Error:
		return eng.DupError
	default:
		return eng.DupIgnore
	}
}

// bindValue converts the element's any-tree into the target type. Required
// keys are checked against the raw document object so that a missing key is
// reported even though the Go zero value would otherwise hide it.
func bindValue(raw any, out any, desc *TypeDesc, opt DecodeOpt) error {
	if desc != nil {
		if m, ok := raw.(map[string]any); ok {
			for _, key := range desc.Required {
				if _, present := m[key]; !present {
					return &requiredKeyError{key: key}
				}
			}
		}
	}
	b, err := gojson.Marshal(raw)
	if err != nil {
		return err
	}
	dec := gojson.NewDecoder(bytes.NewReader(b))
	if opt.DisallowUnknownKeys {
		dec.DisallowUnknownFields()
	}
	return dec.Decode(out)
}

type requiredKeyError struct{ key string }

func (e *requiredKeyError) Error() string {
	return i18n.T(CodeRequired, map[string]string{"key": e.key})
}

func failureCode(err error) string {
	var rk *requiredKeyError
	if errors.As(err, &rk) {
		return CodeRequired
	}
	return CodeDecode
}

func failureFromStream(err error) Failure {
	var fe eng.FindingError
	if errors.As(err, &fe) {
		return Failure{Code: fe.Code, Message: fe.Message, Line: fe.Line, Column: fe.Col, Cause: err}
	}
	return Failure{Code: CodeParseError, Message: err.Error(), Cause: err}
}
