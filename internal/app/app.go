// Package app implements the application layer for roast.
package app

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"go.trai.ch/roast/internal/adapters/detector"
	"go.trai.ch/roast/internal/adapters/telemetry"
	"go.trai.ch/roast/internal/adapters/watcher"
	"go.trai.ch/roast/internal/core/domain"
	"go.trai.ch/roast/internal/core/ports"
	"go.trai.ch/roast/internal/engine/batch"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	resolver     ports.SourceResolver
	compiler     ports.Compiler
	publisher    ports.Publisher
	logger       ports.Logger
	tracer       ports.Tracer
	summary      *telemetry.Summary
	watcher      ports.Watcher

	debounceWindow time.Duration

	// mu serializes builds so watch iterations never overlap.
	mu sync.Mutex
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	resolver ports.SourceResolver,
	compiler ports.Compiler,
	publisher ports.Publisher,
	log ports.Logger,
	tracer ports.Tracer,
	summary *telemetry.Summary,
	w ports.Watcher,
) *App {
	return &App{
		configLoader:   loader,
		resolver:       resolver,
		compiler:       compiler,
		publisher:      publisher,
		logger:         log,
		tracer:         tracer,
		summary:        summary,
		watcher:        w,
		debounceWindow: watcher.DefaultDebounceWindow,
	}
}

// WithDebounceWindow sets how long watch mode waits for changes to settle.
func (a *App) WithDebounceWindow(d time.Duration) *App {
	a.debounceWindow = d
	return a
}

// RunOptions configuration for the Run and Watch methods.
type RunOptions struct {
	// ConfigPath is the roast.yaml to read. Empty means roast.yaml in the working directory.
	ConfigPath string
	// ConfigRequired makes a missing config file an error.
	ConfigRequired bool
	// Overrides are settings given on the command line.
	Overrides domain.Overrides
	// LogFormat is one of "auto", "pretty" or "json".
	LogFormat string
}

// Run compiles every configured source once.
func (a *App) Run(ctx context.Context, opts RunOptions) error {
	a.configureLogger(opts.LogFormat)

	settings, err := a.loadSettings(opts)
	if err != nil {
		return err
	}

	return a.build(ctx, settings)
}

// Watch compiles once, then recompiles whenever a source or the config file
// changes. Failed iterations are logged. It returns when ctx is cancelled.
func (a *App) Watch(ctx context.Context, opts RunOptions) error {
	a.configureLogger(opts.LogFormat)

	settings, err := a.loadSettings(opts)
	if err != nil {
		return err
	}

	a.summary.Reset()
	if err := a.build(ctx, settings); err != nil {
		a.logger.Error(err)
	}

	configPath := configPathOrDefault(opts.ConfigPath)
	roots := watchRoots(configPath, settings)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := a.watcher.Start(ctx, roots); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrWatchFailed.Error()), "roots", roots)
	}
	defer func() { _ = a.watcher.Stop() }()

	a.logger.Info("watching for changes, press Ctrl+C to stop")
	defer func() { a.logger.Info("stopped watching: " + a.summary.String()) }()

	trigger := make(chan struct{}, 1)
	debouncer := watcher.NewDebouncer(a.debounceWindow, func([]string) {
		select {
		case trigger <- struct{}{}:
		default:
		}
	})
	defer debouncer.Stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		for event := range a.watcher.Events() {
			if isRelevant(event.Path, configPath) {
				debouncer.Add(event.Path)
			}
		}
		// The stream ended without cancellation: build changes still inside the window.
		if pending := debouncer.Flush(); len(pending) > 0 && ctx.Err() == nil {
			a.rebuild(ctx, opts)
		}
		return nil
	})

	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-trigger:
				a.rebuild(ctx, opts)
			}
		}
	})

	return g.Wait()
}

// rebuild reloads the settings and runs a build, logging any failure.
func (a *App) rebuild(ctx context.Context, opts RunOptions) {
	settings, err := a.loadSettings(opts)
	if err != nil {
		a.logger.Error(err)
		return
	}
	if err := a.build(ctx, settings); err != nil && ctx.Err() == nil {
		a.logger.Error(err)
	}
}

func (a *App) loadSettings(opts RunOptions) (domain.Settings, error) {
	loaded, err := a.configLoader.Load(opts.ConfigPath, opts.ConfigRequired)
	if err != nil {
		return domain.Settings{}, err
	}
	return loaded.Merge(opts.Overrides), nil
}

// build enumerates the jobs for settings and runs them as one batch.
func (a *App) build(ctx context.Context, settings domain.Settings) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	jobs, err := a.planJobs(settings)
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		a.logger.Warn("file sets matched no sources, nothing to compile")
		return nil
	}

	ctx, span := a.tracer.Start(ctx, "run")
	defer span.End()

	engine := batch.NewCompiler(a.compiler, a.publisher, a.logger, a.tracer)
	report, err := engine.CompileAll(ctx, jobs, batch.Options{
		Layout: settings.Layout(),
		Force:  settings.Force,
	})
	if err != nil {
		span.RecordError(err)
		return errors.Join(domain.ErrBuildFailed, err)
	}

	a.logger.Info(report.String(), "jobs", report.Total())
	return nil
}

// planJobs turns settings into compile jobs. A source file yields a single
// job; otherwise every file set is expanded.
func (a *App) planJobs(settings domain.Settings) ([]domain.CompileJob, error) {
	if !settings.HasWork() {
		return nil, domain.ErrNoWorkSpecified
	}

	opts := settings.CompileOptions()

	if settings.SrcFile != "" {
		return []domain.CompileJob{{
			Source:      settings.SrcFile,
			Destination: settings.DestFile,
			Options:     opts,
		}}, nil
	}

	if settings.DestFile != "" {
		a.logger.Warn("destfile is ignored when compiling file sets")
	}

	sources, err := a.resolver.ResolveSources(settings.FileSets)
	if err != nil {
		return nil, err
	}

	jobs := make([]domain.CompileJob, 0, len(sources))
	for _, src := range sources {
		jobs = append(jobs, domain.CompileJob{Source: src, Options: opts})
	}
	return jobs, nil
}

// configureLogger switches the logger to JSON when requested or detected.
func (a *App) configureLogger(format string) {
	type jsonSwitcher interface {
		SetJSON(enable bool)
	}
	if sw, ok := a.logger.(jsonSwitcher); ok {
		sw.SetJSON(detector.ResolveFormat(detector.DetectEnvironment(), format) == detector.FormatJSON)
	}
}

func configPathOrDefault(path string) string {
	if path == "" {
		return domain.ConfigFileName
	}
	return path
}

// watchRoots lists the directories holding sources and the config file.
func watchRoots(configPath string, settings domain.Settings) []string {
	var roots []string
	add := func(dir string) {
		if abs, err := filepath.Abs(dir); err == nil {
			dir = abs
		}
		if !slices.Contains(roots, dir) {
			roots = append(roots, dir)
		}
	}

	add(filepath.Dir(configPath))
	if settings.SrcFile != "" {
		add(filepath.Dir(settings.SrcFile))
		return roots
	}
	for _, set := range settings.FileSets {
		if set.Dir == "" {
			add(".")
			continue
		}
		add(set.Dir)
	}
	return roots
}

// isRelevant reports whether a change to path should trigger a rebuild.
func isRelevant(path, configPath string) bool {
	if filepath.Ext(path) == domain.SourceExt {
		return true
	}
	a, errA := filepath.Abs(path)
	b, errB := filepath.Abs(configPath)
	return errA == nil && errB == nil && a == b
}
