package exec

import (
	"context"
	"os"
	"os/exec"
	"time"
)

type executor struct{}

// New returns an Executor backed by os/exec.
func New() Executor {
	return &executor{}
}

func (e *executor) Run(ctx context.Context, opts *RunOptions) (*Result, error) {
	cmd := exec.CommandContext(ctx, opts.Name, opts.Args...) //nolint:gosec // command comes from project configuration
	cmd.Dir = opts.Dir
	cmd.Stdin = opts.Stdin
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr
	if len(opts.Env) > 0 {
		cmd.Env = append(os.Environ(), opts.Env...)
	}

	start := time.Now()
	err := cmd.Run()

	return &Result{
		ExitCode: cmd.ProcessState.ExitCode(),
		Duration: time.Since(start),
	}, err
}

func (e *executor) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}
