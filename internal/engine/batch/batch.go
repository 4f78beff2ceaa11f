// Package batch implements the incremental batch compiler.
package batch

import (
	"context"
	"os"
	"path/filepath"

	"go.trai.ch/roast/internal/core/domain"
	"go.trai.ch/roast/internal/core/ports"
	"go.trai.ch/zerr"
)

// Options controls a batch run.
type Options struct {
	// Layout names outputs for jobs without an explicit destination.
	Layout domain.Layout
	// Force bypasses the staleness check.
	Force bool
}

// Result describes what CompileOne did with a job.
type Result struct {
	Destination string
	Outcome     domain.JobOutcome
	Digest      string
}

// Compiler compiles jobs one at a time and publishes their outputs.
type Compiler struct {
	compiler  ports.Compiler
	publisher ports.Publisher
	logger    ports.Logger
	tracer    ports.Tracer
}

// NewCompiler creates a new batch Compiler.
func NewCompiler(
	compiler ports.Compiler,
	publisher ports.Publisher,
	logger ports.Logger,
	tracer ports.Tracer,
) *Compiler {
	return &Compiler{
		compiler:  compiler,
		publisher: publisher,
		logger:    logger,
		tracer:    tracer,
	}
}

// CompileAll runs jobs strictly in order. The first failing job aborts the
// batch; its error is returned as a *domain.JobError naming the source.
func (c *Compiler) CompileAll(ctx context.Context, jobs []domain.CompileJob, opts Options) (domain.Report, error) {
	var report domain.Report

	if len(jobs) == 0 {
		return report, domain.ErrNoWorkSpecified
	}

	ctx, span := c.tracer.Start(ctx, "batch")
	defer span.End()
	span.SetAttribute(domain.AttrJobs, len(jobs))

	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			jobErr := &domain.JobError{Source: job.Source, Err: err}
			span.RecordError(jobErr)
			return report, jobErr
		}

		res, err := c.CompileOne(ctx, job, opts)
		if err != nil {
			jobErr := &domain.JobError{Source: job.Source, Err: err}
			span.RecordError(jobErr)
			return report, jobErr
		}

		switch res.Outcome {
		case domain.OutcomeCompiled:
			report.Compiled = append(report.Compiled, res.Destination)
		case domain.OutcomeSkipped:
			report.Skipped = append(report.Skipped, res.Destination)
		}
	}

	return report, nil
}

// CompileOne compiles a single job unless its destination is up-to-date.
// On failure the destination is left untouched.
func (c *Compiler) CompileOne(ctx context.Context, job domain.CompileJob, opts Options) (Result, error) {
	ctx, span := c.tracer.Start(ctx, "compile "+job.Source)
	defer span.End()
	span.SetAttribute(domain.AttrSource, job.Source)

	res, err := c.compileOne(ctx, job, opts)
	if err != nil {
		span.SetAttribute(domain.AttrOutcome, string(domain.OutcomeFailed))
		span.RecordError(err)
		return res, err
	}

	span.SetAttribute(domain.AttrDestination, res.Destination)
	span.SetAttribute(domain.AttrOutcome, string(res.Outcome))
	if res.Digest != "" {
		span.SetAttribute(domain.AttrDigest, res.Digest)
	}
	return res, nil
}

func (c *Compiler) compileOne(ctx context.Context, job domain.CompileJob, opts Options) (Result, error) {
	dest, err := ResolveDestination(job.Source, job.Destination, opts.Layout)
	if err != nil {
		return Result{Outcome: domain.OutcomeFailed}, err
	}
	res := Result{Destination: dest, Outcome: domain.OutcomeFailed}

	skip, err := ShouldSkip(job.Source, dest, opts.Force)
	if err != nil {
		return res, err
	}
	if skip {
		c.logger.Info("up-to-date, not compiling", "destination", absPath(dest))
		res.Outcome = domain.OutcomeSkipped
		return res, nil
	}

	//nolint:gosec // source paths come from the user's configuration
	source, err := os.ReadFile(job.Source)
	if err != nil {
		return res, zerr.With(zerr.Wrap(err, domain.ErrSourceReadFailed.Error()), "path", job.Source)
	}

	output, err := c.compiler.Compile(ctx, string(source), job.Options)
	if err != nil {
		return res, zerr.Wrap(err, domain.ErrCompilationFailed.Error())
	}

	digest, err := c.publisher.Publish(dest, []byte(output))
	if err != nil {
		return res, err
	}

	c.logger.Info("compiled", "destination", absPath(dest), "source", job.Source)
	res.Outcome = domain.OutcomeCompiled
	res.Digest = digest
	return res, nil
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
