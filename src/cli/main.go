package main

import (
	"os"

	"github.com/sofmeright/docker-build/src/build"
	"github.com/sofmeright/docker-build/src/cli/cmd"
)

func main() {
	os.Exit(build.ExitCode(cmd.Execute()))
}
