package batch

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/roast/internal/core/domain"
	"go.trai.ch/zerr"
)

// ResolveDestination returns the output path for source.
// An explicit destination wins verbatim. Otherwise the output is named by
// OutputFileName and placed in layout.DestDir, which is created with its
// parents when missing, or next to the source.
func ResolveDestination(source, explicit string, layout domain.Layout) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	name := OutputFileName(source, layout.Suffix, layout.SuffixValue)

	if layout.DestDir == "" {
		return filepath.Join(filepath.Dir(source), name), nil
	}

	if err := os.MkdirAll(layout.DestDir, domain.DirPerm); err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrDirectoryCreationFailed.Error()), "path", layout.DestDir)
	}
	return filepath.Join(layout.DestDir, name), nil
}

// OutputFileName derives the output file name from source: the base name up to
// its last dot, then suffixValue when suffix is set, then the .js extension.
func OutputFileName(source string, suffix bool, suffixValue string) string {
	name := filepath.Base(source)
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[:i]
	}
	if suffix {
		name += suffixValue
	}
	return name + domain.OutputExt
}

// ShouldSkip reports whether destination is up-to-date with respect to source.
// Equal modification times count as up-to-date. force always yields false.
func ShouldSkip(source, destination string, force bool) (bool, error) {
	if force {
		return false, nil
	}

	destInfo, err := os.Stat(destination)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, zerr.With(zerr.Wrap(err, domain.ErrSourceStatFailed.Error()), "path", destination)
	}

	srcInfo, err := os.Stat(source)
	if err != nil {
		return false, zerr.With(zerr.Wrap(err, domain.ErrSourceStatFailed.Error()), "path", source)
	}

	return !destInfo.ModTime().Before(srcInfo.ModTime()), nil
}
