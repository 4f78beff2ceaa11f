package domain

import "fmt"

// CompileOptions are forwarded verbatim to the compiler.
type CompileOptions struct {
	// Bare suppresses the top-level function safety wrapper.
	Bare bool
	// Command is the compiler executable followed by leading arguments.
	// An empty command means "coffee" resolved from PATH.
	Command []string
}

// CompileJob is a single unit of work for the batch compiler.
type CompileJob struct {
	// Source is the path of the CoffeeScript file.
	Source string
	// Destination is the output path. When empty it is derived from Source and the Layout.
	Destination string
	// Options are the compiler options shared by every job of a batch.
	Options CompileOptions
}

// Layout is the output naming policy used when a job carries no destination.
type Layout struct {
	// DestDir overrides the output directory. Empty means next to the source.
	DestDir string
	// Suffix enables appending SuffixValue to the output base name.
	Suffix bool
	// SuffixValue is inserted between the base name and the extension.
	SuffixValue string
}

// Report lists what a batch run did, in job order.
type Report struct {
	Compiled []string
	Skipped  []string
}

// Total returns the number of jobs accounted for by the report.
func (r Report) Total() int {
	return len(r.Compiled) + len(r.Skipped)
}

// String renders the report as a one-line summary.
func (r Report) String() string {
	return fmt.Sprintf("compiled %d, up-to-date %d", len(r.Compiled), len(r.Skipped))
}
