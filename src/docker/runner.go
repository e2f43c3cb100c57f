// Package docker invokes the docker CLI. Every call goes through the Runner
// interface so the exit status of each process is captured explicitly and
// tests can substitute a scripted runner.
package docker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultBinary is the docker CLI looked up on PATH.
const DefaultBinary = "docker"

// Cmd is a single docker CLI invocation.
type Cmd struct {
	Args   []string
	Stdout io.Writer
	Stderr io.Writer
}

// Result is the captured outcome of a finished process.
type Result struct {
	ExitCode int
	Duration time.Duration
}

// Success reports whether the process exited with status 0.
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// Runner executes docker CLI commands. A non-zero exit status is reported
// through Result, not as an error; the error return is reserved for
// processes that could not be started at all.
type Runner interface {
	Run(ctx context.Context, c Cmd) (Result, error)
}

// ExecRunner runs the docker binary as a child process.
type ExecRunner struct {
	Binary string
	Env    []string // nil inherits the current environment
	Log    logrus.FieldLogger
}

// NewExecRunner creates an ExecRunner for the given binary.
func NewExecRunner(binary string, log logrus.FieldLogger) *ExecRunner {
	if binary == "" {
		binary = DefaultBinary
	}
	return &ExecRunner{Binary: binary, Log: log}
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, c Cmd) (Result, error) {
	bin := r.Binary
	if bin == "" {
		bin = DefaultBinary
	}
	if r.Log != nil {
		r.Log.Debugf("exec: %s %s", bin, strings.Join(RedactArgs(c.Args), " "))
	}

	cmd := exec.CommandContext(ctx, bin, c.Args...)
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr
	if r.Env != nil {
		cmd.Env = r.Env
	}

	start := time.Now()
	err := cmd.Run()
	res := Result{Duration: time.Since(start)}
	if err == nil {
		return res, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}

	res.ExitCode = -1
	if errors.Is(err, exec.ErrNotFound) {
		return res, fmt.Errorf("%s binary not found: %w", bin, err)
	}
	return res, fmt.Errorf("starting %s: %w", bin, err)
}

// RedactArgs returns a copy of args with --build-arg values masked.
// Only the argument name survives so secrets passed as build args never
// reach the log.
func RedactArgs(args []string) []string {
	out := make([]string, len(args))
	copy(out, args)
	for i := 0; i < len(out); i++ {
		a := out[i]
		switch {
		case a == "--build-arg" && i+1 < len(out):
			out[i+1] = redactPair(out[i+1])
			i++
		case strings.HasPrefix(a, "--build-arg="):
			out[i] = "--build-arg=" + redactPair(strings.TrimPrefix(a, "--build-arg="))
		}
	}
	return out
}

func redactPair(kv string) string {
	name, _, found := strings.Cut(kv, "=")
	if !found {
		return kv
	}
	return name + "=[REDACTED]"
}
