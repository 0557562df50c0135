//go:build !gojson

package gojson

import (
	"io"

	confdec "github.com/pipegen/confdec"
	jsonsrc "github.com/pipegen/confdec/source/json"
)

// Driver returns a stub driver when the gojson tag is not enabled. It
// delegates to the encoding/json-based source directly to avoid recursion.
func Driver() confdec.JSONDriver { return stub{} }

type stub struct{}

func (stub) NewReader(r io.Reader) confdec.Source {
	return confdec.SourceFromEngine(jsonsrc.NewReader(r))
}
func (stub) NewBytes(b []byte) confdec.Source {
	return confdec.SourceFromEngine(jsonsrc.NewBytes(b))
}
func (stub) Name() string { return "encoding/json (gojson stub)" }
