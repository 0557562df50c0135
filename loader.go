package confdec

import (
	"fmt"
	"io/fs"
	"os"
)

// LoadFile reads a configuration document from disk. A missing file is an
// ordinary error returned before any decoding happens; it never becomes a
// decode Failure.
func LoadFile(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("confdec: load %s: %w", path, err)
	}
	return b, nil
}

// LoadFS reads a configuration document from an fs.FS, for embedded or
// test resources.
func LoadFS(fsys fs.FS, name string) ([]byte, error) {
	b, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("confdec: load %s: %w", name, err)
	}
	return b, nil
}
