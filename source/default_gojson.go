// Package source selects go-json as the process-wide JSON driver via a blank
// import:
//
//	import _ "github.com/pipegen/confdec/source"
//
// Without the gojson build tag this resolves to the encoding/json stub, so
// the import is always safe.
package source

import (
	confdec "github.com/pipegen/confdec"
	drvgojson "github.com/pipegen/confdec/source/gojson"
)

// init in a separate package to avoid an import cycle in root.
func init() { confdec.SetJSONDriver(drvgojson.Driver()) }
