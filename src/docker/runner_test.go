package docker

import (
	"bytes"
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedactArgs(t *testing.T) {
	args := []string{"build", "--build-arg", "TOKEN=s3cr3t", "--build-arg=USER=bob", "--build-arg", "NOVALUE", "-t", "app"}
	got := RedactArgs(args)

	assert.Equal(t, []string{
		"build", "--build-arg", "TOKEN=[REDACTED]", "--build-arg=USER=[REDACTED]",
		"--build-arg", "NOVALUE", "-t", "app",
	}, got)
	assert.Equal(t, "TOKEN=s3cr3t", args[2], "input must not be modified")
}

func TestExecRunnerCapturesExitStatus(t *testing.T) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	r := &ExecRunner{Binary: "sh", Log: log}
	var out bytes.Buffer
	res, err := r.Run(context.Background(), Cmd{Args: []string{"-c", "echo hello; exit 3"}, Stdout: &out})
	require.NoError(t, err)
	assert.Equal(t, 3, res.ExitCode)
	assert.False(t, res.Success())
	assert.Equal(t, "hello\n", out.String())

	require.NotEmpty(t, hook.Entries)
	assert.Contains(t, hook.LastEntry().Message, "exec: sh -c")
}

func TestExecRunnerSuccess(t *testing.T) {
	r := NewExecRunner("true", nil)
	res, err := r.Run(context.Background(), Cmd{})
	require.NoError(t, err)
	assert.True(t, res.Success())
}

func TestExecRunnerMissingBinary(t *testing.T) {
	r := NewExecRunner("docker-build-definitely-missing", nil)
	res, err := r.Run(context.Background(), Cmd{Args: []string{"info"}})
	require.Error(t, err)
	assert.Equal(t, -1, res.ExitCode)
	assert.Contains(t, err.Error(), "binary not found")
}
