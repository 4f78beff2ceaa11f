// Package coffee provides the CoffeeScript compiler adapter.
package coffee

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.trai.ch/roast/internal/core/domain"
	"go.trai.ch/roast/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	// DefaultCommand is the compiler executable used when none is configured.
	DefaultCommand = "coffee"

	// waitDelay bounds how long a cancelled compiler may hold its pipes open.
	waitDelay = 2 * time.Second
)

var _ ports.Compiler = (*Compiler)(nil)

// Compiler implements ports.Compiler by running the coffee executable over
// stdin and stdout.
type Compiler struct {
	env []string
}

// NewCompiler creates a new Compiler using the process environment.
func NewCompiler() *Compiler {
	return &Compiler{env: os.Environ()}
}

// WithEnv replaces the environment used to resolve and run the compiler.
func (c *Compiler) WithEnv(env []string) *Compiler {
	c.env = env
	return c
}

// Compile feeds source to the compiler and returns its JavaScript output.
func (c *Compiler) Compile(ctx context.Context, source string, opts domain.CompileOptions) (string, error) {
	command := opts.Command
	if len(command) == 0 {
		command = []string{DefaultCommand}
	}

	name := command[0]
	executable, err := c.resolve(name)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrCompilerNotFound.Error()), "command", name)
	}

	args := append(append([]string{}, command[1:]...), compileArgs(opts)...)

	cmd := exec.CommandContext(ctx, executable, args...) //nolint:gosec // user provided command
	if len(cmd.Args) > 0 {
		cmd.Args[0] = name
	}
	cmd.Env = c.env
	cmd.WaitDelay = waitDelay
	cmd.Stdin = strings.NewReader(source)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}

		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}

		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", zerr.With(zerr.New(msg), "exit_code", exitCode)
	}

	return stdout.String(), nil
}

// compileArgs maps the options onto coffee command line flags.
func compileArgs(opts domain.CompileOptions) []string {
	args := []string{"--compile", "--stdio"}
	if opts.Bare {
		args = append(args, "--bare")
	}
	return args
}

// resolve locates the executable. Names containing a separator are used as
// given; bare names are searched on the adapter's PATH.
func (c *Compiler) resolve(name string) (string, error) {
	if strings.ContainsRune(name, filepath.Separator) || strings.ContainsRune(name, '/') {
		if err := findExecutable(name); err != nil {
			return "", err
		}
		return name, nil
	}
	return lookPath(name, c.env)
}

// lookPath searches for an executable in the directories named by the PATH environment variable.
func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if v, ok := strings.CutPrefix(e, "PATH="); ok {
			path = v
		}
	}

	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		candidate := filepath.Join(dir, file)
		if err := findExecutable(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}
