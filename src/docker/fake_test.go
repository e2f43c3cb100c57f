package docker

import (
	"context"
	"io"
	"strings"
)

// scriptedRunner answers each command from a table keyed by the joined args.
type scriptedRunner struct {
	responses map[string]scripted
	calls     [][]string
}

type scripted struct {
	stdout string
	stderr string
	code   int
	err    error
}

func (s *scriptedRunner) Run(_ context.Context, c Cmd) (Result, error) {
	s.calls = append(s.calls, c.Args)
	r, ok := s.responses[strings.Join(c.Args, " ")]
	if !ok {
		return Result{ExitCode: 127}, nil
	}
	if c.Stdout != nil {
		io.WriteString(c.Stdout, r.stdout)
	}
	if c.Stderr != nil {
		io.WriteString(c.Stderr, r.stderr)
	}
	return Result{ExitCode: r.code}, r.err
}
