package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/roast/internal/adapters/logger"
	"go.trai.ch/roast/internal/core/domain"
	"go.trai.ch/zerr"
)

// newTestLogger creates a logger writing to a buffer with NO_COLOR set, so
// output is free of escape codes.
func newTestLogger(t *testing.T) (*logger.Logger, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	lg := logger.New().(*logger.Logger)
	lg.SetOutput(buf)
	return lg, buf
}

func TestLogger_Info(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Info("compiled", "destination", "/work/src/app.js", "source", "/work/src/app.coffee")

	g := goldie.New(t)
	g.Assert(t, "info_basic", buf.Bytes())
}

func TestLogger_Warn(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Warn("failed to delete temp file", "path", "/tmp/roast-1", "error", errors.New("permission denied"))

	g := goldie.New(t)
	g.Assert(t, "warn_basic", buf.Bytes())
}

func TestLogger_Error(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		goldenName string
	}{
		{
			name:       "standard error",
			err:        errors.New("something went wrong"),
			goldenName: "error_standard",
		},
		{
			name: "zerr chain",
			err: zerr.Wrap(
				zerr.Wrap(errors.New("unexpected indentation"), domain.ErrCompilationFailed.Error()),
				domain.ErrBuildFailed.Error(),
			),
			goldenName: "error_zerr_chain",
		},
		{
			name: "job error",
			err: &domain.JobError{
				Source: "src/b.coffee",
				Err:    zerr.Wrap(errors.New("[stdin]:1:1: error: unexpected ->"), domain.ErrCompilationFailed.Error()),
			},
			goldenName: "error_job",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lg, buf := newTestLogger(t)
			lg.Error(tt.err)

			g := goldie.New(t)
			g.Assert(t, tt.goldenName, buf.Bytes())
		})
	}
}

func TestLogger_Error_Nil(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Error(nil)
	assert.Empty(t, buf.String())
}

func TestLogger_SetJSON(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.SetJSON(true)

	lg.Info("compiled", "destination", "out.js")
	lg.Error(errors.New("boom"))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var info map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &info))
	assert.Equal(t, "INFO", info["level"])
	assert.Equal(t, "compiled", info["msg"])
	assert.Equal(t, "out.js", info["destination"])

	var failure map[string]any
	require.NoError(t, json.Unmarshal(lines[1], &failure))
	assert.Equal(t, "ERROR", failure["level"])
	assert.Equal(t, "operation failed", failure["msg"])
	assert.Equal(t, "boom", failure["error"])
}

func TestLogger_FormatSwitching(t *testing.T) {
	lg, buf := newTestLogger(t)

	lg.SetJSON(true)
	lg.SetJSON(false)
	lg.Info("pretty again")

	assert.Equal(t, "pretty again\n", buf.String())
}

func TestLogger_SetOutput(t *testing.T) {
	lg, first := newTestLogger(t)
	lg.SetJSON(true)

	second := &bytes.Buffer{}
	lg.SetOutput(second)
	lg.Info("moved")

	assert.Empty(t, first.String())
	assert.Contains(t, second.String(), `"msg":"moved"`)
}

func TestLogger_ConcurrentAccess(t *testing.T) {
	lg, _ := newTestLogger(t)

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			lg.Info(fmt.Sprintf("message %d", n))
			lg.SetJSON(n%2 == 0)
		}(i)
	}
	wg.Wait()
}
