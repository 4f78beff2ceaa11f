package fs

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"go.trai.ch/roast/internal/core/domain"
	"go.trai.ch/roast/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.SourceResolver = (*Resolver)(nil)

// Resolver implements ports.SourceResolver by walking each file set's directory.
type Resolver struct {
	walker *Walker
}

// NewResolver creates a new Resolver.
func NewResolver(walker *Walker) *Resolver {
	return &Resolver{walker: walker}
}

// ResolveSources expands sets into source paths. Sets are processed in order;
// matches inside a set are sorted and a path selected by an earlier set is not repeated.
func (r *Resolver) ResolveSources(sets []domain.FileSet) ([]string, error) {
	seen := make(map[string]bool)
	var result []string

	for _, set := range sets {
		matches, err := r.resolveSet(set)
		if err != nil {
			return nil, err
		}
		for _, match := range matches {
			if seen[match] {
				continue
			}
			seen[match] = true
			result = append(result, match)
		}
	}

	return result, nil
}

func (r *Resolver) resolveSet(set domain.FileSet) ([]string, error) {
	dir := set.Dir
	if dir == "" {
		dir = "."
	}

	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, zerr.With(domain.ErrFileSetDirNotFound, "path", dir)
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrSourceStatFailed.Error()), "path", dir)
	}
	if !info.IsDir() {
		return nil, zerr.With(domain.ErrFileSetDirNotFound, "path", dir)
	}

	includes := set.Includes
	if len(includes) == 0 {
		includes = []string{domain.DefaultInclude}
	}
	for _, pattern := range slices.Concat(includes, set.Excludes) {
		if err := validatePattern(pattern); err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrInvalidPattern.Error()), "pattern", pattern)
		}
	}

	var matches []string
	for path, err := range r.walker.WalkFiles(dir) {
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrSourceStatFailed.Error()), "path", dir)
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			continue
		}
		rel = filepath.ToSlash(rel)

		if matchAny(includes, rel) && !matchAny(set.Excludes, rel) {
			matches = append(matches, path)
		}
	}

	slices.Sort(matches)
	return matches, nil
}

func matchAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if matchPattern(pattern, rel) {
			return true
		}
	}
	return false
}
