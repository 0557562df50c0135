package confdec_test

import (
	"io"
	"testing"

	confdec "github.com/pipegen/confdec"
)

type step struct {
	Name  string `json:"name"`
	Value string `json:"value" conf:"required"`
}

type queryStep struct {
	Name       string  `json:"name"`
	Expression *string `json:"expression" conf:"expr,required"`
	Where      *string `json:"where" conf:"expr"`
}

func TestDecodeList_CollectsFailuresAndContinues(t *testing.T) {
	doc := []byte(`[{"name":"a","value":"x"},{"name":5},{"name":"c","value":"y"}]`)
	res := confdec.DecodeList[step](confdec.JSONBytes(doc))
	if len(res.Items) != 2 {
		t.Fatalf("want 2 items, got %d (%v)", len(res.Items), res.Items)
	}
	if res.Items[0] != (step{Name: "a", Value: "x"}) || res.Items[1] != (step{Name: "c", Value: "y"}) {
		t.Fatalf("unexpected items: %v", res.Items)
	}
	if len(res.Failures) != 1 {
		t.Fatalf("want 1 failure, got %d (%v)", len(res.Failures), res.Failures)
	}
	if res.Failures[0].Message == "" {
		t.Fatalf("failure message must carry the underlying cause")
	}
	if res.Err() == nil {
		t.Fatalf("Err should surface failures")
	}
}

func TestDecodeList_FailurePointsAtElementStart(t *testing.T) {
	doc := []byte("[\n  {\"name\": \"a\", \"value\": \"x\"},\n  {\"name\": 5},\n  {\"name\": \"c\", \"value\": \"y\"}\n]\n")
	res := confdec.DecodeList[step](confdec.JSONBytes(doc))
	if len(res.Failures) != 1 {
		t.Fatalf("want 1 failure, got %v", res.Failures)
	}
	f := res.Failures[0]
	if f.Line != 3 || f.Column != 3 {
		t.Fatalf("want failure at 3:3 (element start), got %d:%d", f.Line, f.Column)
	}
}

func TestDecodeList_OrderPreserved(t *testing.T) {
	doc := []byte(`[{"name":"a","value":"1"},{"name":2},{"name":"b","value":"2"},{"name":3},{"name":"c","value":"3"}]`)
	res := confdec.DecodeList[step](confdec.JSONBytes(doc))
	if got := len(res.Items) + len(res.Failures); got != 5 {
		t.Fatalf("items+failures must account for all slots, got %d", got)
	}
	for i, want := range []string{"a", "b", "c"} {
		if res.Items[i].Name != want {
			t.Fatalf("items out of order: %v", res.Items)
		}
	}
	if res.Failures[0].Column >= res.Failures[1].Column {
		// single-line doc: later elements start at larger columns
		t.Fatalf("failures out of document order: %v", res.Failures)
	}
}

func TestDecodeList_NotAList(t *testing.T) {
	res := confdec.DecodeList[step](confdec.JSONBytes([]byte(`{"name":"a"}`)))
	if len(res.Items) != 0 || len(res.Expressions) != 0 {
		t.Fatalf("structural failure must not produce items or expressions: %+v", res)
	}
	if len(res.Failures) != 1 {
		t.Fatalf("want exactly 1 failure, got %v", res.Failures)
	}
	f := res.Failures[0]
	if f.Code != confdec.CodeInvalidList || f.Message != "invalid list definition" {
		t.Fatalf("want invalid_list failure, got %+v", f)
	}
	if f.Line != 1 || f.Column != 1 {
		t.Fatalf("want position 1:1, got %d:%d", f.Line, f.Column)
	}
}

func TestDecodeList_ScalarInput(t *testing.T) {
	res := confdec.DecodeList[step](confdec.JSONBytes([]byte(`42`)))
	if len(res.Failures) != 1 || res.Failures[0].Code != confdec.CodeInvalidList {
		t.Fatalf("want single invalid_list failure, got %v", res.Failures)
	}
}

func TestDecodeList_NilSource(t *testing.T) {
	res := confdec.DecodeList[step](nil)
	if len(res.Items) != 0 || len(res.Failures) != 0 || len(res.Expressions) != 0 {
		t.Fatalf("nil source must yield the empty result, got %+v", res)
	}
	if res.Err() != nil {
		t.Fatalf("empty result is not an error")
	}
}

func TestDecodeList_EmptyInput(t *testing.T) {
	res := confdec.DecodeList[step](confdec.JSONBytes(nil))
	if len(res.Items) != 0 || len(res.Failures) != 0 {
		t.Fatalf("absent document is not an error, got %+v", res)
	}
}

func TestDecodeList_RequiredKeyMissing(t *testing.T) {
	res := confdec.DecodeList[step](confdec.JSONBytes([]byte(`[{"name":"a"}]`)))
	if len(res.Failures) != 1 {
		t.Fatalf("want 1 failure, got %v", res.Failures)
	}
	f := res.Failures[0]
	if f.Code != confdec.CodeRequired {
		t.Fatalf("want required, got %s", f.Code)
	}
	if f.Message != "required key 'value' missing" {
		t.Fatalf("unexpected message: %q", f.Message)
	}
}

func TestDecodeList_Expressions(t *testing.T) {
	doc := []byte("[\n  {\"name\": \"q1\", \"expression\": \"a > 1\"},\n  {\"name\": \"q2\", \"expression\": \"b > 2\", \"where\": \"c = 3\"}\n]\n")
	res := confdec.DecodeList[queryStep](confdec.JSONBytes(doc))
	if len(res.Failures) != 0 {
		t.Fatalf("unexpected failures: %v", res.Failures)
	}
	if len(res.Expressions) != 3 {
		t.Fatalf("want 3 expression records, got %v", res.Expressions)
	}
	e0 := res.Expressions[0]
	if e0.Text != "a > 1" || !e0.Primary {
		t.Fatalf("unexpected first record: %+v", e0)
	}
	if e0.Line != 2 || e0.Column != 3 {
		t.Fatalf("expression must carry the element position, got %d:%d", e0.Line, e0.Column)
	}
	// declared order within the second element: expression before where
	if !res.Expressions[1].Primary || res.Expressions[2].Primary {
		t.Fatalf("primary classification wrong: %+v", res.Expressions[1:])
	}
	if res.Expressions[2].Text != "c = 3" {
		t.Fatalf("unexpected secondary record: %+v", res.Expressions[2])
	}
}

func TestDecodeList_NoExpressionsForFailedElements(t *testing.T) {
	doc := []byte(`[{"name":"q1"},{"name":"q2","expression":"ok"}]`)
	res := confdec.DecodeList[queryStep](confdec.JSONBytes(doc))
	if len(res.Failures) != 1 {
		t.Fatalf("want 1 failure, got %v", res.Failures)
	}
	if len(res.Expressions) != 1 || res.Expressions[0].Text != "ok" {
		t.Fatalf("failed elements must not contribute expressions: %v", res.Expressions)
	}
}

func TestDecodeList_ResyncPastStrayFragment(t *testing.T) {
	doc := []byte(`[{"name":"a","value":"x"},["stray","fragment"],{"name":"c","value":"y"}]`)
	var skips []confdec.SkipEvent
	res := confdec.DecodeList[step](confdec.JSONBytes(doc), confdec.DecodeOpt{
		OnSkip: func(e confdec.SkipEvent) { skips = append(skips, e) },
	})
	if len(res.Items) != 2 {
		t.Fatalf("element after the fragment must still decode, got %v", res.Items)
	}
	if len(res.Failures) != 0 {
		t.Fatalf("stray fragments are not failures: %v", res.Failures)
	}
	if len(skips) != 1 {
		t.Fatalf("want 1 skip event, got %v", skips)
	}
}

func TestDecodeList_MalformedTextSingleFailure(t *testing.T) {
	// missing colon inside the first element; the underlying decoder turns
	// sticky, so the rest of the document is unreadable
	doc := []byte("[\n  {\"name\": \"a\" \"value\"},\n  {\"name\": \"c\", \"value\": \"y\"}\n]\n")
	res := confdec.DecodeList[step](confdec.JSONBytes(doc))
	if len(res.Failures) != 1 {
		t.Fatalf("one authoring mistake must yield one failure, got %v", res.Failures)
	}
	f := res.Failures[0]
	if f.Code != confdec.CodeDecode {
		t.Fatalf("want decode_error, got %+v", f)
	}
	if f.Line != 2 || f.Column != 3 {
		t.Fatalf("want failure at the element start 2:3, got %d:%d", f.Line, f.Column)
	}
}

func TestDecodeList_StrayScalarsTolerated(t *testing.T) {
	doc := []byte(`[1,"x",null,{"name":"a","value":"x"}]`)
	res := confdec.DecodeList[step](confdec.JSONBytes(doc))
	if len(res.Items) != 1 || len(res.Failures) != 0 {
		t.Fatalf("stray scalars must be advanced past, got %+v", res)
	}
}

func TestDecodeList_DuplicateKeyWarn(t *testing.T) {
	doc := []byte(`[{"name":"a","name":"b","value":"x"}]`)
	var findings []confdec.Finding
	res := confdec.DecodeList[step](confdec.JSONBytes(doc), confdec.DecodeOpt{
		Strictness: confdec.Strictness{OnDuplicateKey: confdec.Warn},
		OnFinding:  func(f confdec.Finding) { findings = append(findings, f) },
	})
	if len(res.Items) != 1 || len(res.Failures) != 0 {
		t.Fatalf("warn must not fail the element, got %+v", res)
	}
	if len(findings) != 1 || findings[0].Code != confdec.CodeDuplicateKey {
		t.Fatalf("want duplicate_key finding, got %v", findings)
	}
}

func TestDecodeList_DuplicateKeyError(t *testing.T) {
	doc := []byte(`[{"name":"a","name":"b","value":"x"}]`)
	res := confdec.DecodeList[step](confdec.JSONBytes(doc), confdec.DecodeOpt{
		Strictness: confdec.Strictness{OnDuplicateKey: confdec.Error},
	})
	if len(res.Failures) == 0 {
		t.Fatalf("error strictness must surface a failure")
	}
	if res.Failures[0].Code != confdec.CodeDuplicateKey {
		t.Fatalf("want duplicate_key, got %+v", res.Failures[0])
	}
}

func TestDecodeList_UnknownKeysStrippedByDefault(t *testing.T) {
	doc := []byte(`[{"name":"a","value":"x","extra":true}]`)
	res := confdec.DecodeList[step](confdec.JSONBytes(doc))
	if len(res.Items) != 1 || len(res.Failures) != 0 {
		t.Fatalf("unknown keys are tolerated by default, got %+v", res)
	}
	strict := confdec.DecodeList[step](confdec.JSONBytes(doc), confdec.DecodeOpt{DisallowUnknownKeys: true})
	if len(strict.Failures) != 1 {
		t.Fatalf("DisallowUnknownKeys must fail the element, got %+v", strict)
	}
}

// fakeSource replays a fixed token script through the public Source
// interface. It stands in for a stream left mid-structure by an upstream
// parser, which the byte-backed sources never produce on their own.
type fakeSource struct {
	toks []confdec.Token
	i    int
}

func (s *fakeSource) NextToken() (confdec.Token, error) {
	if s.i >= len(s.toks) {
		return confdec.Token{}, io.EOF
	}
	t := s.toks[s.i]
	s.i++
	return t, nil
}

func (s *fakeSource) Location() int64 { return -1 }

func TestDecodeList_NamedFragmentSkipped(t *testing.T) {
	src := &fakeSource{toks: []confdec.Token{
		{Kind: confdec.TokenBeginArray, Line: 1, Column: 1},
		// debris: a named object appearing where an element should start
		{Kind: confdec.TokenKey, String: "frag", Line: 2, Column: 3},
		{Kind: confdec.TokenBeginObject, Line: 2, Column: 9},
		{Kind: confdec.TokenKey, String: "a"},
		{Kind: confdec.TokenString, String: "b"},
		{Kind: confdec.TokenEndObject},
		// a valid element follows and must still decode
		{Kind: confdec.TokenBeginObject, Line: 3, Column: 3},
		{Kind: confdec.TokenKey, String: "name"},
		{Kind: confdec.TokenString, String: "a"},
		{Kind: confdec.TokenKey, String: "value"},
		{Kind: confdec.TokenString, String: "x"},
		{Kind: confdec.TokenEndObject},
		{Kind: confdec.TokenEndArray},
	}}
	var skips []confdec.SkipEvent
	res := confdec.DecodeList[step](src, confdec.DecodeOpt{
		OnSkip: func(e confdec.SkipEvent) { skips = append(skips, e) },
	})
	if len(res.Items) != 1 || res.Items[0].Name != "a" {
		t.Fatalf("valid element after debris must decode, got %+v", res)
	}
	if len(res.Failures) != 0 {
		t.Fatalf("debris is not a failure: %v", res.Failures)
	}
	if len(skips) != 1 || skips[0].Key != "frag" || skips[0].Line != 2 {
		t.Fatalf("want skip event for 'frag' at line 2, got %v", skips)
	}
}
