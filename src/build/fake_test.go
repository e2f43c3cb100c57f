package build

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/sofmeright/docker-build/src/docker"
)

// fakeDocker scripts docker CLI responses by subcommand.
type fakeDocker struct {
	mu           sync.Mutex
	info         string
	infoCode     int
	buildHelp    string
	pullOK       map[string]bool
	buildOutput  string
	buildCode    int
	calls        [][]string
	pullsStarted []string
}

func (f *fakeDocker) Run(_ context.Context, c docker.Cmd) (docker.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, c.Args)
	f.mu.Unlock()

	write := func(w io.Writer, s string) {
		if w != nil {
			io.WriteString(w, s)
		}
	}

	switch {
	case len(c.Args) > 0 && c.Args[0] == "info":
		write(c.Stdout, f.info)
		return docker.Result{ExitCode: f.infoCode}, nil
	case strings.Join(c.Args, " ") == "build --help":
		write(c.Stdout, f.buildHelp)
		return docker.Result{}, nil
	case len(c.Args) == 2 && c.Args[0] == "pull":
		f.mu.Lock()
		f.pullsStarted = append(f.pullsStarted, c.Args[1])
		f.mu.Unlock()
		if f.pullOK[c.Args[1]] {
			return docker.Result{}, nil
		}
		write(c.Stderr, "Error response from daemon: manifest unknown\n")
		return docker.Result{ExitCode: 1}, nil
	case len(c.Args) > 0 && c.Args[0] == "build":
		write(c.Stdout, f.buildOutput)
		return docker.Result{ExitCode: f.buildCode}, nil
	}
	return docker.Result{ExitCode: 127}, nil
}

// buildCall returns the args of the docker build invocation, if any.
func (f *fakeDocker) buildCall() []string {
	for _, c := range f.calls {
		if len(c) > 1 && c[0] == "build" && c[1] != "--help" {
			return c
		}
	}
	return nil
}

const (
	experimentalInfo = `{"ServerVersion":"24.0.7","ExperimentalBuild":true}`
	stableInfo       = `{"ServerVersion":"24.0.7","ExperimentalBuild":false}`
	squashHelp       = "      --squash    Squash newly built layers into a single new layer\n"
)
