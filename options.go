package confdec

// Severity expresses the severity level for enforcement findings.
type Severity int

const (
	Ignore Severity = iota
	Warn
	Error
)

// Strictness configures enforcement for duplicate object keys.
type Strictness struct {
	OnDuplicateKey Severity // Warn routes to OnFinding; Error aborts the decode.
}

// Finding is a non-fatal observation from the enforcement layer (for example
// a duplicated key under Warn strictness). Findings never become Failures so
// the items/failures slot accounting stays intact.
type Finding struct {
	Code    string
	Message string
	Line    int
	Column  int
}

// SkipEvent describes a stray nested fragment that was skipped to keep the
// enclosing array in sync. Skips are resynchronization noise, not user-facing
// mistakes; the hook exists for debug tracing only.
type SkipEvent struct {
	Key    string // field name when the fragment appeared as a named value
	Line   int
	Column int
}

// DecodeOpt bundles decoding options. The zero value enables nothing beyond
// the core best-effort semantics.
type DecodeOpt struct {
	Strictness          Strictness
	MaxDepth            int
	MaxBytes            int64
	DisallowUnknownKeys bool
	OnFinding           func(Finding)
	OnSkip              func(SkipEvent)
}

func pickOpt(opts []DecodeOpt) DecodeOpt {
	if len(opts) > 0 {
		return opts[len(opts)-1]
	}
	return DecodeOpt{}
}
