package batch_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/roast/internal/adapters/fs"
	"go.trai.ch/roast/internal/core/domain"
	"go.trai.ch/roast/internal/core/ports"
	"go.trai.ch/roast/internal/core/ports/mocks"
	"go.trai.ch/roast/internal/engine/batch"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	compiler *mocks.MockCompiler
	logger   *mocks.MockLogger
	tracer   *mocks.MockTracer
	span     *mocks.MockSpan
	batch    *batch.Compiler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &fixture{
		compiler: mocks.NewMockCompiler(ctrl),
		logger:   mocks.NewMockLogger(ctrl),
		tracer:   mocks.NewMockTracer(ctrl),
		span:     mocks.NewMockSpan(ctrl),
	}

	f.tracer.EXPECT().Start(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ string) (context.Context, ports.Span) {
			return ctx, f.span
		},
	).AnyTimes()
	f.span.EXPECT().End().AnyTimes()
	f.span.EXPECT().SetAttribute(gomock.Any(), gomock.Any()).AnyTimes()
	f.span.EXPECT().RecordError(gomock.Any()).AnyTimes()

	publisher := fs.NewPublisher(f.logger).WithTempDir(t.TempDir())
	f.batch = batch.NewCompiler(f.compiler, publisher, f.logger, f.tracer)
	return f
}

// upperCompile is a stand-in compiler that upper-cases its input.
func upperCompile(_ context.Context, source string, _ domain.CompileOptions) (string, error) {
	return strings.ToUpper(source), nil
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestCompileAll_WritesCompilerOutput(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "foo.coffee")
	writeFile(t, src, "square = (x) -> x * x")
	dest := filepath.Join(dir, "foo.js")

	opts := domain.CompileOptions{Bare: true}
	f.compiler.EXPECT().Compile(gomock.Any(), "square = (x) -> x * x", opts).Return("var square;\n", nil)
	f.logger.EXPECT().Info("compiled", "destination", dest, "source", src)

	report, err := f.batch.CompileAll(context.Background(), []domain.CompileJob{{Source: src, Options: opts}}, batch.Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{dest}, report.Compiled)
	assert.Empty(t, report.Skipped)
	assert.Equal(t, "var square;\n", readFile(t, dest))
}

func TestCompileAll_SkipsUpToDate(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "foo.coffee")
	dest := filepath.Join(dir, "foo.js")
	writeFile(t, src, "a = 1")
	writeFile(t, dest, "previous")

	now := time.Now()
	require.NoError(t, os.Chtimes(src, now.Add(-time.Hour), now.Add(-time.Hour)))
	require.NoError(t, os.Chtimes(dest, now, now))

	// Compiler must not be invoked.
	f.logger.EXPECT().Info("up-to-date, not compiling", "destination", dest)

	report, err := f.batch.CompileAll(context.Background(), []domain.CompileJob{{Source: src}}, batch.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{dest}, report.Skipped)
	assert.Empty(t, report.Compiled)
	assert.Equal(t, "previous", readFile(t, dest))
}

func TestCompileAll_EqualTimestampsAreUpToDate(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "foo.coffee")
	dest := filepath.Join(dir, "foo.js")
	writeFile(t, src, "a = 1")
	writeFile(t, dest, "previous")

	stamp := time.Now().Add(-time.Minute).Truncate(time.Second)
	require.NoError(t, os.Chtimes(src, stamp, stamp))
	require.NoError(t, os.Chtimes(dest, stamp, stamp))

	f.logger.EXPECT().Info(gomock.Any(), gomock.Any())

	report, err := f.batch.CompileAll(context.Background(), []domain.CompileJob{{Source: src}}, batch.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{dest}, report.Skipped)
}

func TestCompileAll_ForceRecompiles(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "foo.coffee")
	dest := filepath.Join(dir, "foo.js")
	writeFile(t, src, "a = 1")
	writeFile(t, dest, "previous")

	now := time.Now()
	require.NoError(t, os.Chtimes(src, now.Add(-time.Hour), now.Add(-time.Hour)))
	require.NoError(t, os.Chtimes(dest, now, now))

	f.compiler.EXPECT().Compile(gomock.Any(), "a = 1", gomock.Any()).DoAndReturn(upperCompile)
	f.logger.EXPECT().Info(gomock.Any(), gomock.Any())

	report, err := f.batch.CompileAll(context.Background(), []domain.CompileJob{{Source: src}}, batch.Options{Force: true})
	require.NoError(t, err)
	assert.Equal(t, []string{dest}, report.Compiled)
	assert.Equal(t, "A = 1", readFile(t, dest))
}

func TestCompileAll_StaleDestinationIsRecompiled(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "foo.coffee")
	dest := filepath.Join(dir, "foo.js")
	writeFile(t, src, "b = 2")
	writeFile(t, dest, "previous")

	now := time.Now()
	require.NoError(t, os.Chtimes(dest, now.Add(-time.Hour), now.Add(-time.Hour)))
	require.NoError(t, os.Chtimes(src, now, now))

	f.compiler.EXPECT().Compile(gomock.Any(), "b = 2", gomock.Any()).DoAndReturn(upperCompile)
	f.logger.EXPECT().Info(gomock.Any(), gomock.Any())

	_, err := f.batch.CompileAll(context.Background(), []domain.CompileJob{{Source: src}}, batch.Options{})
	require.NoError(t, err)
	assert.Equal(t, "B = 2", readFile(t, dest))
}

func TestCompileAll_SuffixAndDestDir(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "foo.coffee")
	writeFile(t, src, "c = 3")
	outDir := filepath.Join(t.TempDir(), "out", "js")

	f.compiler.EXPECT().Compile(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(upperCompile)
	f.logger.EXPECT().Info(gomock.Any(), gomock.Any())

	report, err := f.batch.CompileAll(context.Background(), []domain.CompileJob{{Source: src}}, batch.Options{
		Layout: domain.Layout{DestDir: outDir, Suffix: true, SuffixValue: ".min"},
	})
	require.NoError(t, err)

	dest := filepath.Join(outDir, "foo.min.js")
	assert.Equal(t, []string{dest}, report.Compiled)
	assert.Equal(t, "C = 3", readFile(t, dest))
}

func TestCompileAll_ExplicitDestination(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "foo.coffee")
	dest := filepath.Join(dir, "bundle.js")
	writeFile(t, src, "d = 4")

	f.compiler.EXPECT().Compile(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(upperCompile)
	f.logger.EXPECT().Info(gomock.Any(), gomock.Any())

	report, err := f.batch.CompileAll(context.Background(), []domain.CompileJob{{Source: src, Destination: dest}}, batch.Options{
		Layout: domain.Layout{DestDir: filepath.Join(dir, "ignored"), Suffix: true, SuffixValue: ".x"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{dest}, report.Compiled)
	assert.NoDirExists(t, filepath.Join(dir, "ignored"))
}

func TestCompileAll_FailFastKeepsEarlierOutputs(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	a := filepath.Join(dir, "a.coffee")
	b := filepath.Join(dir, "b.coffee")
	c := filepath.Join(dir, "c.coffee")
	writeFile(t, a, "a")
	writeFile(t, b, "b")
	writeFile(t, c, "c")

	gomock.InOrder(
		f.compiler.EXPECT().Compile(gomock.Any(), "a", gomock.Any()).Return("A", nil),
		f.compiler.EXPECT().Compile(gomock.Any(), "b", gomock.Any()).Return("", errors.New("unexpected indentation")),
	)
	f.logger.EXPECT().Info(gomock.Any(), gomock.Any())

	jobs := []domain.CompileJob{{Source: a}, {Source: b}, {Source: c}}
	report, err := f.batch.CompileAll(context.Background(), jobs, batch.Options{})
	require.Error(t, err)

	assert.ErrorIs(t, err, domain.ErrJobFailed)
	assert.ErrorContains(t, err, b)
	assert.ErrorContains(t, err, domain.ErrCompilationFailed.Error())
	assert.ErrorContains(t, err, "unexpected indentation")

	var jobErr *domain.JobError
	require.ErrorAs(t, err, &jobErr)
	assert.Equal(t, b, jobErr.Source)

	assert.Equal(t, []string{filepath.Join(dir, "a.js")}, report.Compiled)
	assert.Equal(t, "A", readFile(t, filepath.Join(dir, "a.js")))
	assert.NoFileExists(t, filepath.Join(dir, "b.js"))
	assert.NoFileExists(t, filepath.Join(dir, "c.js"))
}

func TestCompileAll_FailedCompileLeavesDestinationUntouched(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "foo.coffee")
	dest := filepath.Join(dir, "foo.js")
	writeFile(t, dest, "previous")
	writeFile(t, src, "broken")

	now := time.Now()
	require.NoError(t, os.Chtimes(dest, now.Add(-time.Hour), now.Add(-time.Hour)))

	f.compiler.EXPECT().Compile(gomock.Any(), gomock.Any(), gomock.Any()).Return("", errors.New("syntax error"))

	_, err := f.batch.CompileAll(context.Background(), []domain.CompileJob{{Source: src}}, batch.Options{})
	require.Error(t, err)
	assert.Equal(t, "previous", readFile(t, dest))
}

func TestCompileAll_Idempotent(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "foo.coffee")
	writeFile(t, src, "e = 5")
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(src, past, past))

	f.compiler.EXPECT().Compile(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(upperCompile).Times(1)
	f.logger.EXPECT().Info(gomock.Any(), gomock.Any()).Times(2)

	jobs := []domain.CompileJob{{Source: src}}
	first, err := f.batch.CompileAll(context.Background(), jobs, batch.Options{})
	require.NoError(t, err)
	second, err := f.batch.CompileAll(context.Background(), jobs, batch.Options{})
	require.NoError(t, err)

	assert.Len(t, first.Compiled, 1)
	assert.Empty(t, second.Compiled)
	assert.Equal(t, first.Compiled, second.Skipped)
}

func TestCompileAll_NoJobs(t *testing.T) {
	f := newFixture(t)

	_, err := f.batch.CompileAll(context.Background(), nil, batch.Options{})
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrNoWorkSpecified.Error())
}

func TestCompileAll_MissingSource(t *testing.T) {
	f := newFixture(t)
	src := filepath.Join(t.TempDir(), "missing.coffee")

	_, err := f.batch.CompileAll(context.Background(), []domain.CompileJob{{Source: src}}, batch.Options{})
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrSourceReadFailed.Error())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCompileAll_DestDirCreationFailure(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "foo.coffee")
	writeFile(t, src, "x")
	blocker := filepath.Join(dir, "blocker")
	writeFile(t, blocker, "not a directory")

	_, err := f.batch.CompileAll(context.Background(), []domain.CompileJob{{Source: src}}, batch.Options{
		Layout: domain.Layout{DestDir: filepath.Join(blocker, "out")},
	})
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrDirectoryCreationFailed.Error())
}

func TestCompileAll_CancelledContext(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "foo.coffee")
	writeFile(t, src, "x")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.batch.CompileAll(ctx, []domain.CompileJob{{Source: src}}, batch.Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, filepath.Join(dir, "foo.js"))
}
