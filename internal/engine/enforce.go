package engine

// Enforcement wrapper for TokenSource to apply duplicate key handling,
// max depth checks, and max bytes truncation in a streaming fashion.

// DuplicateStrictness controls how duplicate object keys are treated.
type DuplicateStrictness int

const (
	DupIgnore DuplicateStrictness = iota
	DupWarn
	DupError
)

// Finding is a lightweight observation produced by the enforcement layer.
// Line/Col refer to the token that triggered it.
type Finding struct {
	Code    string
	Message string
	Line    int
	Col     int
}

// FindingError is an error carrying a Finding.
type FindingError struct{ Finding }

func (e FindingError) Error() string { return e.Finding.Message }

// EnforceOptions controls runtime enforcement behavior.
type EnforceOptions struct {
	OnDuplicate DuplicateStrictness
	MaxDepth    int
	MaxBytes    int64
	// Sink is an optional callback receiving non-fatal findings. Fatal
	// findings (DupError, depth, bytes) are returned as FindingError instead.
	Sink func(Finding)
}

// WrapWithEnforcement returns a TokenSource that enforces duplicate key
// policy, maximum nesting depth, and maximum consumed bytes. Options at their
// zero values disable the corresponding check.
func WrapWithEnforcement(inner TokenSource, opt EnforceOptions) TokenSource {
	if opt.OnDuplicate == DupIgnore && opt.MaxDepth == 0 && opt.MaxBytes == 0 {
		return inner
	}
	return &enforcingTokenSource{inner: inner, opt: opt}
}

type enfFrame struct {
	object       bool
	keys         map[string]struct{}
	expectingKey bool
}

type enforcingTokenSource struct {
	inner TokenSource
	opt   EnforceOptions
	stack []enfFrame
	depth int
}

func (e *enforcingTokenSource) NextToken() (Token, error) {
	tok, err := e.inner.NextToken()
	if err != nil {
		return Token{}, err
	}

	switch tok.Kind {
	case KindBeginObject:
		e.stack = append(e.stack, enfFrame{object: true, keys: make(map[string]struct{}), expectingKey: true})
		e.depth++
		if e.opt.MaxDepth > 0 && e.depth > e.opt.MaxDepth {
			return Token{}, FindingError{Finding{Code: "parse_error", Message: "max depth exceeded", Line: tok.Line, Col: tok.Col}}
		}
	case KindBeginArray:
		e.stack = append(e.stack, enfFrame{})
		e.depth++
		if e.opt.MaxDepth > 0 && e.depth > e.opt.MaxDepth {
			return Token{}, FindingError{Finding{Code: "parse_error", Message: "max depth exceeded", Line: tok.Line, Col: tok.Col}}
		}
	case KindEndObject, KindEndArray:
		if n := len(e.stack); n > 0 {
			e.stack = e.stack[:n-1]
		}
		if e.depth > 0 {
			e.depth--
		}
		e.valueDone()
	case KindKey:
		if n := len(e.stack); n > 0 {
			top := &e.stack[n-1]
			if top.object && top.expectingKey {
				if e.opt.OnDuplicate != DupIgnore {
					if _, ok := top.keys[tok.String]; ok {
						f := Finding{Code: "duplicate_key", Message: "key '" + tok.String + "' duplicated", Line: tok.Line, Col: tok.Col}
						if e.opt.OnDuplicate == DupError {
							return Token{}, FindingError{f}
						}
						if e.opt.Sink != nil {
							e.opt.Sink(f)
						}
					}
				}
				top.keys[tok.String] = struct{}{}
				top.expectingKey = false
			}
		}
	case KindString, KindNumber, KindBool, KindNull:
		e.valueDone()
	}

	if e.opt.MaxBytes > 0 {
		if off := e.Location(); off >= 0 && off > e.opt.MaxBytes {
			return Token{}, FindingError{Finding{Code: "truncated", Message: "max bytes exceeded", Line: tok.Line, Col: tok.Col}}
		}
	}

	return tok, nil
}

// valueDone flips the enclosing object frame back to expecting a key once a
// value has been fully consumed at its level.
func (e *enforcingTokenSource) valueDone() {
	if n := len(e.stack); n > 0 {
		top := &e.stack[n-1]
		if top.object && !top.expectingKey {
			top.expectingKey = true
		}
	}
}

func (e *enforcingTokenSource) Location() int64 { return e.inner.Location() }
