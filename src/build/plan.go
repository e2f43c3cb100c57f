package build

import (
	"path/filepath"
)

// Label is one --label key=value pair.
type Label struct {
	Key   string
	Value string
}

// Plan is the resolved build: flags reconciled with what the daemon
// supports and what the cache warm-up produced.
type Plan struct {
	Tag        string
	Dockerfile string
	ContextDir string
	Squash     bool
	Quiet      bool
	CacheFrom  []string // empty disables the layer cache entirely
	BuildArgs  []BuildArg
	Labels     []Label
}

// NewPlan resolves opts into a Plan. cacheFrom is ignored unless opts.Cache
// is still set after warm-up.
func NewPlan(opts Options, cacheFrom []string, args []BuildArg, labels []Label) Plan {
	p := Plan{
		Tag:        opts.Tag,
		Dockerfile: opts.Dockerfile,
		ContextDir: ContextDir(opts.Dockerfile),
		Squash:     opts.Squash,
		Quiet:      opts.Quiet,
		BuildArgs:  args,
		Labels:     labels,
	}
	if opts.Cache {
		p.CacheFrom = cacheFrom
	}
	return p
}

// ContextDir returns the build context for a Dockerfile: its parent directory.
func ContextDir(dockerfile string) string {
	return filepath.Dir(dockerfile)
}

// CacheEnabled reports whether the build will use warmed images as cache.
func (p Plan) CacheEnabled() bool {
	return len(p.CacheFrom) > 0
}
