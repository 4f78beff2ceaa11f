// export_test.go exposes internals for white-box testing.
package fs

import "os"

// SetRename replaces the rename primitive used by the publisher.
func (p *Publisher) SetRename(fn func(oldpath, newpath string) error) {
	p.rename = fn
}

// SetCreateTemp replaces the temp file factory used by the publisher.
func (p *Publisher) SetCreateTemp(fn func(dir, pattern string) (*os.File, error)) {
	p.createTemp = fn
}

// MatchPattern exposes the file set pattern matcher.
var MatchPattern = matchPattern
