package docker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// ErrDaemonUnreachable is returned when the docker daemon does not answer.
var ErrDaemonUnreachable = errors.New("docker daemon is not reachable")

// squashConstraint is the first engine release that accepts `build --squash`.
var squashConstraint = mustConstraint(">= 1.13.0-0")

func mustConstraint(s string) *semver.Constraints {
	c, err := semver.NewConstraint(s)
	if err != nil {
		panic(err)
	}
	return c
}

// DaemonInfo is the subset of `docker info` this tool relies on.
type DaemonInfo struct {
	ServerVersion     string   `json:"ServerVersion"`
	ExperimentalBuild bool     `json:"ExperimentalBuild"`
	ServerErrors      []string `json:"ServerErrors,omitempty"`
}

// Client issues the daemon-facing docker commands used by a build.
type Client struct {
	Runner Runner
}

// NewClient wraps a Runner.
func NewClient(r Runner) *Client {
	return &Client{Runner: r}
}

// Info queries the daemon. Any failure to get an answer wraps
// ErrDaemonUnreachable.
func (c *Client) Info(ctx context.Context) (*DaemonInfo, error) {
	var stdout, stderr bytes.Buffer
	res, err := c.Runner.Run(ctx, Cmd{
		Args:   []string{"info", "--format", "{{json .}}"},
		Stdout: &stdout,
		Stderr: &stderr,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDaemonUnreachable, err)
	}
	if !res.Success() {
		return nil, fmt.Errorf("%w: %s", ErrDaemonUnreachable, firstLine(stderr.String(), res))
	}

	var info DaemonInfo
	if err := json.Unmarshal(bytes.TrimSpace(stdout.Bytes()), &info); err != nil {
		return nil, fmt.Errorf("%w: decoding docker info: %v", ErrDaemonUnreachable, err)
	}
	if len(info.ServerErrors) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrDaemonUnreachable, info.ServerErrors[0])
	}
	return &info, nil
}

// SupportsSquash reports whether `docker build --squash` can be used against
// this daemon. When it cannot, reason says why.
func (c *Client) SupportsSquash(ctx context.Context, info *DaemonInfo) (ok bool, reason string) {
	if info == nil || !info.ExperimentalBuild {
		return false, "daemon is not running with experimental features"
	}
	if v, err := semver.NewVersion(info.ServerVersion); err == nil && !squashConstraint.Check(v) {
		return false, fmt.Sprintf("daemon version %s does not support --squash", info.ServerVersion)
	}

	var stdout bytes.Buffer
	res, err := c.Runner.Run(ctx, Cmd{
		Args:   []string{"build", "--help"},
		Stdout: &stdout,
		Stderr: io.Discard,
	})
	if err != nil || !res.Success() {
		return false, "could not read docker build options"
	}
	if !strings.Contains(stdout.String(), "--squash") {
		return false, "docker build has no --squash option"
	}
	return true, ""
}

// Pull fetches ref into the local image store.
func (c *Client) Pull(ctx context.Context, ref string, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	var stderr bytes.Buffer
	res, err := c.Runner.Run(ctx, Cmd{
		Args:   []string{"pull", ref},
		Stdout: out,
		Stderr: io.MultiWriter(out, &stderr),
	})
	if err != nil {
		return fmt.Errorf("pulling %s: %w", ref, err)
	}
	if !res.Success() {
		return fmt.Errorf("pulling %s: %s", ref, firstLine(stderr.String(), res))
	}
	return nil
}

// Build runs `docker <args>` with the given output streams and returns the
// captured result. args must start with "build".
func (c *Client) Build(ctx context.Context, args []string, stdout, stderr io.Writer) (Result, error) {
	return c.Runner.Run(ctx, Cmd{Args: args, Stdout: stdout, Stderr: stderr})
}

// firstLine returns the first non-empty line of s, or the exit status when s
// has nothing useful.
func firstLine(s string, res Result) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return fmt.Sprintf("exit status %d", res.ExitCode)
}
