package build

import (
	"time"

	"github.com/sofmeright/docker-build/src/docker"
)

// Result captures the outcome of one pipeline run.
type Result struct {
	Plan         Plan
	Args         []string
	Daemon       *docker.DaemonInfo
	SquashReason string        // why squash was dropped, empty if not
	Warmup       *WarmupResult // nil when cache mode was off
	Layers       []LayerEvent
	Build        docker.Result
	Duration     time.Duration
}
