package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	confdec "github.com/pipegen/confdec"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	sub := os.Args[1]
	switch sub {
	case "check":
		checkCmd(os.Args[2:])
	case "ddl":
		ddlCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "confdec CLI\n\nUsage:\n  confdec check [-skips] file.yaml [file2.json ...]\n  confdec ddl schema.yaml\n\nNotes:\n  - check decodes each document's top-level list best-effort and reports every failure with its position, plus the extracted expressions.\n  - ddl projects a flat key/type schema document into a DDL string.")
}

// checkStep is the element shape the check command decodes against. Only the
// expression-tagged fields matter here; unknown keys are tolerated by the
// default binding, so arbitrary step documents still decode.
type checkStep struct {
	Expression *string `json:"expression" conf:"expr"`
	Where      *string `json:"where" conf:"expr"`
}

func checkCmd(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	var showSkips bool
	fs.BoolVar(&showSkips, "skips", false, "trace skipped stray fragments")
	_ = fs.Parse(args)
	if fs.NArg() == 0 {
		fs.Usage()
		os.Exit(2)
	}

	bad := false
	for _, path := range fs.Args() {
		data, err := confdec.LoadFile(path)
		if err != nil {
			fatalf("%v", err)
		}
		if !checkFile(os.Stdout, path, data, showSkips) {
			bad = true
		}
	}
	if bad {
		os.Exit(1)
	}
}

// checkFile decodes one document and writes the report to w. It returns false
// when the document had failures.
func checkFile(w io.Writer, path string, data []byte, showSkips bool) bool {
	opt := confdec.DecodeOpt{
		Strictness: confdec.Strictness{OnDuplicateKey: confdec.Warn},
		OnFinding: func(f confdec.Finding) {
			fmt.Fprintf(w, "%s:%d:%d: warning: %s\n", path, f.Line, f.Column, f.Message)
		},
	}
	if showSkips {
		opt.OnSkip = func(e confdec.SkipEvent) {
			fmt.Fprintf(w, "%s:%d:%d: skipped stray fragment\n", path, e.Line, e.Column)
		}
	}
	res := confdec.DecodeList[checkStep](sourceFor(path, data), opt)
	for _, f := range res.Failures {
		fmt.Fprintf(w, "%s:%d:%d: %s: %s\n", path, f.Line, f.Column, f.Code, f.Message)
	}
	for _, e := range res.Expressions {
		kind := "expression"
		if !e.Primary {
			kind = "secondary expression"
		}
		fmt.Fprintf(w, "%s:%d:%d: %s: %s\n", path, e.Line, e.Column, kind, e.Text)
	}
	fmt.Fprintf(w, "%s: %d elements ok, %d failed\n", path, len(res.Items), len(res.Failures))
	return len(res.Failures) == 0
}

func ddlCmd(args []string) {
	fs := flag.NewFlagSet("ddl", flag.ExitOnError)
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(2)
	}
	path := fs.Arg(0)
	data, err := confdec.LoadFile(path)
	if err != nil {
		fatalf("%v", err)
	}
	entries, err := confdec.DecodeEntries(sourceFor(path, data))
	if err != nil {
		fatalf("%v", err)
	}
	fmt.Println(confdec.DDLString(entries))
}

func sourceFor(path string, data []byte) confdec.Source {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return confdec.YAMLBytes(data)
	default:
		return confdec.JSONBytes(data)
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
