// Package exec runs external processes with their output streamed to the
// caller, such as the packaging toolchain that follows version
// synchronization or the user's editor.
package exec

import (
	"context"
	"io"
	"time"
)

// Result describes a finished process.
type Result struct {
	// ExitCode is the process exit status, or -1 if it never started or
	// was killed by a signal.
	ExitCode int
	// Duration is the wall time from start to exit.
	Duration time.Duration
}

// RunOptions configures a process.
type RunOptions struct {
	Name   string    // Executable name or path (required)
	Args   []string  // Arguments
	Dir    string    // Working directory (empty = current)
	Env    []string  // KEY=VALUE entries layered over the current environment
	Stdin  io.Reader // nil = no input
	Stdout io.Writer // nil = discarded
	Stderr io.Writer // nil = discarded
}

// Executor runs external commands.
//
//go:generate go run github.com/matryer/moq@latest -pkg mocks -out mocks/executor.go . Executor
type Executor interface {
	// Run starts the process and waits for it to exit. The returned Result
	// is non-nil even when err is set. A non-zero exit status is reported
	// as *os/exec.ExitError.
	Run(ctx context.Context, opts *RunOptions) (*Result, error)

	// LookPath resolves name the way Run would.
	LookPath(name string) (string, error)
}
