// Package fs provides file system adapters for enumerating and publishing files.
package fs

import (
	"io/fs"
	"iter"
	"path/filepath"
)

// skipDirs are directories that never contain sources worth compiling.
var skipDirs = map[string]bool{
	".git":         true,
	".jj":          true,
	"node_modules": true,
}

// Walker provides file walking functionality.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// WalkFiles yields all regular files below root in lexical order,
// skipping version control and dependency directories.
// Yielded paths include root as a prefix. A walk error is yielded once
// with an empty path and ends the sequence.
func (w *Walker) WalkFiles(root string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		stopped := false
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if d.IsDir() {
				if path != root && skipDirs[d.Name()] {
					return filepath.SkipDir
				}
				return nil
			}

			if !d.Type().IsRegular() {
				return nil
			}

			if !yield(path, nil) {
				stopped = true
				return filepath.SkipAll
			}

			return nil
		})
		if err != nil && !stopped {
			yield("", err)
		}
	}
}
