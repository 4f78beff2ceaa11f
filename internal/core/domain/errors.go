package domain

import "go.trai.ch/zerr"

var (
	// ErrNoWorkSpecified is returned when neither a source file nor a file set is configured.
	ErrNoWorkSpecified = zerr.New("you must specify a source file or at least one file set")

	// ErrDirectoryCreationFailed is returned when the output directory cannot be created.
	ErrDirectoryCreationFailed = zerr.New("failed to create output directory")

	// ErrCompilationFailed is returned when the external compiler rejects a source.
	ErrCompilationFailed = zerr.New("compilation failed")

	// ErrCompilerNotFound is returned when the compiler executable cannot be located.
	ErrCompilerNotFound = zerr.New("compiler executable not found")

	// ErrSourceStatFailed is returned when a source or destination cannot be stat'ed.
	ErrSourceStatFailed = zerr.New("failed to stat file")

	// ErrSourceReadFailed is returned when a source file cannot be read.
	ErrSourceReadFailed = zerr.New("failed to read source file")

	// ErrTempWriteFailed is returned when the compiled output cannot be staged in a temp file.
	ErrTempWriteFailed = zerr.New("failed to write temp file")

	// ErrPublishFailed is returned when the staged output cannot replace the destination.
	ErrPublishFailed = zerr.New("failed to publish output")

	// ErrPublishVerifyFailed is returned when a copied destination does not match the staged output.
	ErrPublishVerifyFailed = zerr.New("published output does not match staged output")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrFileSetDirNotFound is returned when a file set points at a missing directory.
	ErrFileSetDirNotFound = zerr.New("file set directory not found")

	// ErrInvalidPattern is returned when a file set pattern is malformed.
	ErrInvalidPattern = zerr.New("invalid file set pattern")

	// ErrJobFailed is returned when a single compile job fails.
	ErrJobFailed = zerr.New("compile job failed")

	// ErrBuildFailed is returned when the batch run fails.
	ErrBuildFailed = zerr.New("build failed")

	// ErrWatchFailed is returned when watch mode cannot start watching sources.
	ErrWatchFailed = zerr.New("failed to watch sources")
)

// JobError reports the failure of a single compile job.
// It satisfies errors.Is for ErrJobFailed and unwraps to the underlying cause.
type JobError struct {
	Source string
	Err    error
}

// Error implements the error interface.
func (e *JobError) Error() string {
	return e.Message() + ": " + e.Err.Error()
}

// Message returns the job-level message without the cause.
func (e *JobError) Message() string {
	return ErrJobFailed.Error() + " for " + e.Source
}

// Unwrap returns the underlying cause.
func (e *JobError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrJobFailed.
func (e *JobError) Is(target error) bool {
	return target == ErrJobFailed
}
