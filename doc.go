// Package confdec decodes heterogeneous, annotated configuration sequences:
//
// - Best-effort list decoding via DecodeList (one malformed element never
//   aborts the rest; every failure carries a 1-based line/column)
// - Expression extraction from decoded elements driven by `conf` struct tags
// - Token sources for JSON and YAML via Source, with a pluggable JSON driver
// - A simple key/value schema path (DecodeEntries) and DDL projection
//
// Design policy:
// - Keep only public APIs in the root package; put detailed implementations
//   under internal/.
// - Place token sources under source/, and the CLI under cmd/confdec.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	data, err := confdec.LoadFile("steps.yaml")
//	res := confdec.DecodeList[FilterStep](confdec.YAMLBytes(data))
//	for _, f := range res.Failures { report(f) }
//	for _, e := range res.Expressions { validateLater(e) }
package confdec
