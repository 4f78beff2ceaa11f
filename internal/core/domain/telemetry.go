package domain

// JobOutcome is the terminal state of a compile job.
type JobOutcome string

const (
	// OutcomeCompiled indicates the destination was (re)written.
	OutcomeCompiled JobOutcome = "compiled"
	// OutcomeSkipped indicates the destination was already up-to-date.
	OutcomeSkipped JobOutcome = "skipped"
	// OutcomeFailed indicates the job aborted the batch.
	OutcomeFailed JobOutcome = "failed"
)

// Span attribute keys shared by the batch engine and the telemetry adapters.
const (
	AttrSource      = "roast.source"
	AttrDestination = "roast.destination"
	AttrOutcome     = "roast.outcome"
	AttrDigest      = "roast.digest"
	AttrJobs        = "roast.jobs"
)

// IsTerminal reports whether the outcome ends a job.
func (o JobOutcome) IsTerminal() bool {
	switch o {
	case OutcomeCompiled, OutcomeSkipped, OutcomeFailed:
		return true
	default:
		return false
	}
}
