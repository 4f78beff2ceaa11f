package domain

import "slices"

// FileSet selects source files below a base directory.
type FileSet struct {
	Dir      string
	Includes []string
	Excludes []string
}

// Settings is the complete configuration of a run.
type Settings struct {
	SrcFile     string
	DestFile    string
	DestDir     string
	Force       bool
	Suffix      bool
	SuffixValue string
	Bare        bool
	Compiler    []string
	FileSets    []FileSet
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		SuffixValue: DefaultSuffixValue,
	}
}

// Overrides are settings given on the command line.
// A nil boolean leaves the configured value untouched.
type Overrides struct {
	SrcFile     string
	DestFile    string
	DestDir     string
	Force       *bool
	Suffix      *bool
	SuffixValue string
	Bare        *bool
	Compiler    []string
	FileSets    []FileSet
}

// Merge returns s overlaid with the values set in o.
// Strings and lists override when non-empty, booleans when non-nil.
// File sets from o are appended after those of s.
func (s Settings) Merge(o Overrides) Settings {
	if o.SrcFile != "" {
		s.SrcFile = o.SrcFile
	}
	if o.DestFile != "" {
		s.DestFile = o.DestFile
	}
	if o.DestDir != "" {
		s.DestDir = o.DestDir
	}
	if o.SuffixValue != "" {
		s.SuffixValue = o.SuffixValue
	}
	if len(o.Compiler) > 0 {
		s.Compiler = slices.Clone(o.Compiler)
	}
	if o.Force != nil {
		s.Force = *o.Force
	}
	if o.Suffix != nil {
		s.Suffix = *o.Suffix
	}
	if o.Bare != nil {
		s.Bare = *o.Bare
	}
	s.FileSets = append(slices.Clone(s.FileSets), o.FileSets...)
	return s
}

// Layout returns the output naming policy for the settings.
func (s Settings) Layout() Layout {
	return Layout{
		DestDir:     s.DestDir,
		Suffix:      s.Suffix,
		SuffixValue: s.SuffixValue,
	}
}

// CompileOptions returns the compiler options for the settings.
func (s Settings) CompileOptions() CompileOptions {
	return CompileOptions{
		Bare:    s.Bare,
		Command: slices.Clone(s.Compiler),
	}
}

// HasWork reports whether the settings name a source file or a file set.
func (s Settings) HasWork() bool {
	return s.SrcFile != "" || len(s.FileSets) > 0
}
