package fs

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/roast/internal/core/domain"
	"go.trai.ch/roast/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Publisher = (*Publisher)(nil)

// Publisher implements ports.Publisher with a temp-file-then-rename protocol.
//
// Content is staged in the temp directory and renamed over the destination.
// When the rename crosses filesystems the staged file is copied next to the
// destination and renamed from there. If no sibling can be created the
// destination is overwritten by a verified in-place copy.
type Publisher struct {
	logger  ports.Logger
	tempDir string

	rename     func(oldpath, newpath string) error
	createTemp func(dir, pattern string) (*os.File, error)
}

// NewPublisher creates a new Publisher staging files in os.TempDir.
func NewPublisher(logger ports.Logger) *Publisher {
	return &Publisher{
		logger:     logger,
		rename:     os.Rename,
		createTemp: os.CreateTemp,
	}
}

// WithTempDir sets the staging directory. An empty dir means os.TempDir.
func (p *Publisher) WithTempDir(dir string) *Publisher {
	p.tempDir = dir
	return p
}

// Publish replaces destination with content and returns the content digest.
func (p *Publisher) Publish(destination string, content []byte) (string, error) {
	digest := xxhash.Sum64(content)
	mode := targetMode(destination)

	tmpName, err := p.stage(p.tempDir, mode, func(w io.Writer) error {
		_, err := w.Write(content)
		return err
	})
	if err != nil {
		return "", err
	}
	defer p.remove(tmpName)

	if err := p.replace(tmpName, destination, mode, digest); err != nil {
		return "", err
	}

	return formatDigest(digest), nil
}

// replace moves the staged file over destination.
func (p *Publisher) replace(tmpName, destination string, mode os.FileMode, digest uint64) error {
	err := p.rename(tmpName, destination)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return zerr.With(zerr.Wrap(err, domain.ErrPublishFailed.Error()), "path", destination)
	}

	sibling, err := p.stage(filepath.Dir(destination), mode, func(w io.Writer) error {
		return copyFrom(w, tmpName)
	})
	if err != nil {
		return p.copyInPlace(tmpName, destination, digest)
	}

	if err := p.rename(sibling, destination); err != nil {
		p.remove(sibling)
		return zerr.With(zerr.Wrap(err, domain.ErrPublishFailed.Error()), "path", destination)
	}
	return nil
}

// copyInPlace overwrites destination with the staged file and verifies the result.
func (p *Publisher) copyInPlace(tmpName, destination string, digest uint64) error {
	//nolint:gosec // destination is resolved from the user's configuration
	f, err := os.OpenFile(destination, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, domain.FilePerm)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrPublishFailed.Error()), "path", destination)
	}

	if err := copyFrom(f, tmpName); err != nil {
		_ = f.Close()
		return zerr.With(zerr.Wrap(err, domain.ErrPublishFailed.Error()), "path", destination)
	}
	if err := f.Close(); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrPublishFailed.Error()), "path", destination)
	}

	got, err := fileDigest(destination)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrPublishFailed.Error()), "path", destination)
	}
	if got != digest {
		return zerr.With(
			zerr.With(domain.ErrPublishVerifyFailed, "path", destination),
			"digest", formatDigest(got),
		)
	}
	return nil
}

// stage creates a temp file in dir, fills it with write and closes it.
// On failure the partial file is removed.
func (p *Publisher) stage(dir string, mode os.FileMode, write func(io.Writer) error) (string, error) {
	tmpFile, err := p.createTemp(dir, domain.TempPattern)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrTempWriteFailed.Error()), "dir", dir)
	}
	tmpName := tmpFile.Name()

	if err := write(tmpFile); err != nil {
		_ = tmpFile.Close()
		p.remove(tmpName)
		return "", zerr.With(zerr.Wrap(err, domain.ErrTempWriteFailed.Error()), "path", tmpName)
	}

	if err := tmpFile.Close(); err != nil {
		p.remove(tmpName)
		return "", zerr.With(zerr.Wrap(err, domain.ErrTempWriteFailed.Error()), "path", tmpName)
	}

	if err := os.Chmod(tmpName, mode); err != nil {
		p.remove(tmpName)
		return "", zerr.With(zerr.Wrap(err, domain.ErrTempWriteFailed.Error()), "path", tmpName)
	}

	return tmpName, nil
}

// remove deletes a staged file. A file that is already gone is not an error;
// any other failure is logged and otherwise ignored.
func (p *Publisher) remove(name string) {
	err := os.Remove(name)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return
	}
	p.logger.Warn("failed to delete temp file", "path", name, "error", err)
}

// targetMode keeps the permissions of an existing destination.
func targetMode(destination string) os.FileMode {
	if info, err := os.Stat(destination); err == nil && info.Mode().IsRegular() {
		return info.Mode().Perm()
	}
	return domain.FilePerm
}

func copyFrom(w io.Writer, path string) error {
	//nolint:gosec // path is a temp file created by this package
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close() //nolint:errcheck // read-only handle

	_, err = io.Copy(w, src)
	return err
}

func fileDigest(path string) (uint64, error) {
	h := xxhash.New()
	if err := copyFrom(h, path); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}

func formatDigest(d uint64) string {
	return fmt.Sprintf("%016x", d)
}
