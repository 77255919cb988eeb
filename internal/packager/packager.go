// Package packager runs the application packaging toolchain that follows
// version synchronization, such as `cargo tauri build`.
package packager

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	osexec "os/exec"
	"slices"
	"strings"

	"github.com/jmgilman/versync/internal/exec"
	"github.com/jmgilman/versync/internal/slogger"
)

// Sentinel errors for packager operations.
var (
	ErrNoCommand = errors.New("no packager command configured")
	ErrNotFound  = errors.New("packager command not found")
	ErrFailed    = errors.New("packager failed")
)

// ExitError describes a packager run that exited with a non-zero status.
type ExitError struct {
	Command string
	Code    int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Command, e.Code)
}

func (e *ExitError) Unwrap() error {
	return ErrFailed
}

// Options configures a packager run.
type Options struct {
	Command string            // Executable name or path (required)
	Args    []string          // Arguments, including any passed through from the CLI
	Dir     string            // Working directory (empty = current)
	Env     map[string]string // Extra environment variables
	Stdin   io.Reader         // nil leaves stdin detached
	Stdout  io.Writer
	Stderr  io.Writer
}

// Packager runs the packaging command through an Executor.
type Packager struct {
	exec exec.Executor
}

// New creates a Packager.
func New(e exec.Executor) *Packager {
	return &Packager{exec: e}
}

// Run executes the packaging command and streams its output. A non-zero
// exit status is returned as *ExitError.
func (p *Packager) Run(ctx context.Context, opts Options) error {
	if opts.Command == "" {
		return ErrNoCommand
	}

	if _, err := p.exec.LookPath(opts.Command); err != nil {
		return fmt.Errorf("%w: %s", ErrNotFound, opts.Command)
	}

	logger := slogger.L(ctx)
	logger.Debug("running packager", "command", opts.Command, "args", strings.Join(opts.Args, " "))

	result, err := p.exec.Run(ctx, &exec.RunOptions{
		Name:   opts.Command,
		Args:   opts.Args,
		Dir:    opts.Dir,
		Env:    envList(opts.Env),
		Stdin:  opts.Stdin,
		Stdout: opts.Stdout,
		Stderr: opts.Stderr,
	})
	if result != nil {
		logger.Debug("packager finished", "command", opts.Command, "exit_code", result.ExitCode, "duration", result.Duration)
	}
	if err == nil {
		return nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("run %s: %w", opts.Command, ctxErr)
	}

	var exitErr *osexec.ExitError
	if errors.As(err, &exitErr) && result != nil {
		return &ExitError{Command: opts.Command, Code: result.ExitCode}
	}
	return fmt.Errorf("run %s: %w", opts.Command, err)
}

// envList converts env to sorted KEY=VALUE pairs.
func envList(env map[string]string) []string {
	if len(env) == 0 {
		return nil
	}

	list := make([]string, 0, len(env))
	for _, key := range slices.Sorted(maps.Keys(env)) {
		list = append(list, key+"="+env[key])
	}
	return list
}
