package commands_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/roast/cmd/roast/commands"
	"go.trai.ch/roast/internal/app"
	"go.trai.ch/roast/internal/build"
	"go.trai.ch/roast/internal/core/domain"
)

type mockApp struct {
	runFunc   func(ctx context.Context, opts app.RunOptions) error
	watchFunc func(ctx context.Context, opts app.RunOptions) error
}

func (m *mockApp) Run(ctx context.Context, opts app.RunOptions) error {
	if m.runFunc != nil {
		return m.runFunc(ctx, opts)
	}
	return nil
}

func (m *mockApp) Watch(ctx context.Context, opts app.RunOptions) error {
	if m.watchFunc != nil {
		return m.watchFunc(ctx, opts)
	}
	return nil
}

func TestCommands_Compile(t *testing.T) {
	t.Run("wires flags correctly", func(t *testing.T) {
		var captured app.RunOptions
		mock := &mockApp{
			runFunc: func(_ context.Context, opts app.RunOptions) error {
				captured = opts
				return nil
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{
			"compile",
			"--srcfile", "src/app.coffee",
			"--destfile", "out/app.js",
			"--destdir", "out",
			"-f",
			"--suffix",
			"--suffix-value", ".min",
			"-b",
			"--compiler", "npx coffee",
			"--log-format", "json",
		})

		require.NoError(t, cli.Execute(context.Background()))
		assert.Equal(t, app.RunOptions{
			ConfigPath:     domain.ConfigFileName,
			ConfigRequired: false,
			LogFormat:      "json",
			Overrides: domain.Overrides{
				SrcFile:     "src/app.coffee",
				DestFile:    "out/app.js",
				DestDir:     "out",
				Force:       boolPtr(true),
				Suffix:      boolPtr(true),
				SuffixValue: ".min",
				Bare:        boolPtr(true),
				Compiler:    []string{"npx", "coffee"},
			},
		}, captured)
	})

	t.Run("positional patterns form a file set", func(t *testing.T) {
		var captured app.RunOptions
		mock := &mockApp{
			runFunc: func(_ context.Context, opts app.RunOptions) error {
				captured = opts
				return nil
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"compile", "-C", "assets", "**/*.coffee", "main.coffee"})

		require.NoError(t, cli.Execute(context.Background()))
		assert.Equal(t, []domain.FileSet{{
			Dir:      "assets",
			Includes: []string{"**/*.coffee", "main.coffee"},
		}}, captured.Overrides.FileSets)
		assert.Empty(t, captured.Overrides.Compiler)
	})

	t.Run("unset booleans leave the config alone", func(t *testing.T) {
		var captured app.RunOptions
		mock := &mockApp{
			runFunc: func(_ context.Context, opts app.RunOptions) error {
				captured = opts
				return nil
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"compile"})

		require.NoError(t, cli.Execute(context.Background()))
		assert.Nil(t, captured.Overrides.Force)
		assert.Nil(t, captured.Overrides.Suffix)
		assert.Nil(t, captured.Overrides.Bare)
	})

	t.Run("explicit false booleans are carried", func(t *testing.T) {
		var captured app.RunOptions
		mock := &mockApp{
			runFunc: func(_ context.Context, opts app.RunOptions) error {
				captured = opts
				return nil
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"compile", "--force=false", "--bare=false", "--suffix=false"})

		require.NoError(t, cli.Execute(context.Background()))
		assert.Equal(t, boolPtr(false), captured.Overrides.Force)
		assert.Equal(t, boolPtr(false), captured.Overrides.Suffix)
		assert.Equal(t, boolPtr(false), captured.Overrides.Bare)
	})

	t.Run("explicit config is required", func(t *testing.T) {
		var captured app.RunOptions
		mock := &mockApp{
			runFunc: func(_ context.Context, opts app.RunOptions) error {
				captured = opts
				return nil
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"compile", "-c", "build/roast.yaml"})

		require.NoError(t, cli.Execute(context.Background()))
		assert.Equal(t, "build/roast.yaml", captured.ConfigPath)
		assert.True(t, captured.ConfigRequired)
	})

	t.Run("returns error on run failure", func(t *testing.T) {
		mock := &mockApp{
			runFunc: func(_ context.Context, _ app.RunOptions) error {
				return errors.New("simulated error")
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"compile"})
		cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))

		err := cli.Execute(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "simulated error")
	})
}

func TestCommands_Watch(t *testing.T) {
	var captured app.RunOptions
	watched := false
	mock := &mockApp{
		watchFunc: func(_ context.Context, opts app.RunOptions) error {
			watched = true
			captured = opts
			return nil
		},
	}

	cli := commands.New(mock)
	cli.SetArgs([]string{"watch", "--destdir", "out", "src/*.coffee"})

	require.NoError(t, cli.Execute(context.Background()))
	assert.True(t, watched)
	assert.Equal(t, "out", captured.Overrides.DestDir)
	assert.Equal(t, []domain.FileSet{{Dir: ".", Includes: []string{"src/*.coffee"}}}, captured.Overrides.FileSets)
}

func TestCommands_Version(t *testing.T) {
	want := fmt.Sprintf("roast version %s (commit: %s, date: %s)\n", build.Version, build.Commit, build.Date)

	t.Run("subcommand", func(t *testing.T) {
		cli := commands.New(&mockApp{})
		out := new(bytes.Buffer)
		cli.SetArgs([]string{"version"})
		cli.SetOutput(out, new(bytes.Buffer))

		require.NoError(t, cli.Execute(context.Background()))
		assert.Equal(t, want, out.String())
	})

	t.Run("flag", func(t *testing.T) {
		cli := commands.New(&mockApp{})
		out := new(bytes.Buffer)
		cli.SetArgs([]string{"--version"})
		cli.SetOutput(out, new(bytes.Buffer))

		require.NoError(t, cli.Execute(context.Background()))
		assert.Equal(t, want, out.String())
	})
}

func boolPtr(v bool) *bool { return &v }
