package build

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sofmeright/docker-build/src/docker"
	"github.com/sofmeright/docker-build/src/output"
)

// Pipeline runs one build end to end: validate, check the daemon, resolve
// squash, warm the cache, run docker build.
type Pipeline struct {
	Docker    *docker.Client
	Out       io.Writer // sections and build stdout
	Err       io.Writer // build stderr
	Log       logrus.FieldLogger
	Color     bool
	Environ   []string                     // source of build args
	LookupEnv func(string) (string, bool) // source of cache candidates
}

// Run executes the pipeline. Failures are returned as *ExitError.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()
	p.defaults()
	res := &Result{}

	if err := opts.Validate(); err != nil {
		return res, exitErr(ExitUsage, err)
	}
	if st, err := os.Stat(opts.Dockerfile); err != nil || st.IsDir() {
		return res, exitErr(ExitUsage, fmt.Errorf("build definition %q not found or not a file", opts.Dockerfile))
	}

	// --- Preflight ---
	output.SectionStartCollapsed(p.Out, "db_preflight", "Preflight")
	preStart := time.Now()
	info, err := p.Docker.Info(ctx)
	if err != nil {
		output.SectionEnd(p.Out, "db_preflight")
		return res, exitErr(ExitDaemonUnreachable, err)
	}
	res.Daemon = info

	if opts.Squash {
		if ok, reason := p.Docker.SupportsSquash(ctx, info); !ok {
			p.Log.Debugf("squash disabled: %s", reason)
			opts.Squash = false
			res.SquashReason = reason
		}
	}

	pre := output.NewSection(p.Out, "Preflight", time.Since(preStart), p.Color)
	pre.KV("daemon", info.ServerVersion)
	pre.KV("experimental", fmt.Sprintf("%t", info.ExperimentalBuild))
	switch {
	case opts.Squash:
		pre.KV("squash", "enabled")
	case res.SquashReason != "":
		pre.KV("squash", "disabled ("+res.SquashReason+")")
	default:
		pre.KV("squash", "off")
	}
	pre.Close()
	output.SectionEnd(p.Out, "db_preflight")

	// --- Cache warm-up ---
	var sources []string
	if opts.Cache {
		warm := p.warmup(ctx, opts)
		res.Warmup = &warm
		sources = warm.Sources
		if len(sources) == 0 {
			p.Log.Debugf("cache disabled: no cache source could be pulled")
			opts.Cache = false
		}
	}

	// --- Plan ---
	args := BuildArgsFromEnv(p.Environ, opts.ArgPrefix)
	var labels []Label
	if opts.RevisionLabel {
		l, err := RevisionLabels(ContextDir(opts.Dockerfile))
		if err != nil {
			p.Log.Warnf("revision label skipped: %v", err)
		}
		labels = l
	}
	plan := NewPlan(opts, sources, args, labels)
	res.Plan = plan
	res.Args = plan.Args()
	p.renderPlan(plan, opts.Dockerfile)

	// --- Build ---
	output.SectionStart(p.Out, "db_build", "Build")
	var captured lockedBuffer
	stdout := io.MultiWriter(p.Out, &captured)
	stderr := io.MultiWriter(p.Err, &captured)

	buildRes, err := p.Docker.Build(ctx, res.Args, stdout, stderr)
	res.Build = buildRes
	res.Layers = ParseBuildOutput(captured.String())
	output.SectionEnd(p.Out, "db_build")
	res.Duration = time.Since(start)

	switch {
	case err != nil:
		p.renderBuild(res, output.StatusFailed)
		return res, exitErr(ExitBuildFailed, fmt.Errorf("docker build: %w", err))
	case !buildRes.Success():
		p.renderBuild(res, output.StatusFailed)
		return res, exitErr(ExitBuildFailed, fmt.Errorf("docker build failed with exit status %d", buildRes.ExitCode))
	}

	p.renderBuild(res, output.StatusSuccess)
	return res, nil
}

func (p *Pipeline) defaults() {
	if p.Out == nil {
		p.Out = io.Discard
	}
	if p.Err == nil {
		p.Err = io.Discard
	}
	if p.Log == nil {
		p.Log = logrus.StandardLogger()
	}
	if p.LookupEnv == nil {
		p.LookupEnv = os.LookupEnv
	}
	if p.Environ == nil {
		p.Environ = os.Environ()
	}
}

func (p *Pipeline) warmup(ctx context.Context, opts Options) WarmupResult {
	output.SectionStartCollapsed(p.Out, "db_cache", "Cache warm-up")
	defer output.SectionEnd(p.Out, "db_cache")

	w := &Warmer{Puller: p.Docker, Concurrency: opts.CacheConcurrency, Log: p.Log}
	warm := w.Warmup(ctx, CacheCandidates(p.LookupEnv, opts.CacheVariables))

	sec := output.NewSection(p.Out, "Cache", warm.Duration, p.Color)
	if len(warm.Outcomes) == 0 {
		sec.Row("no cache repositories set (%s)", strings.Join(opts.CacheVariables, ", "))
	}
	for _, o := range warm.Outcomes {
		ref := o.Ref
		if ref == "" {
			ref = o.Candidate.Value
		}
		status := output.StatusSkipped
		switch o.Status {
		case PullSucceeded:
			status = output.StatusSuccess
		case PullFailed:
			status = output.StatusFailed
		}
		sec.Row("%-26s%-30s %s %s", o.Candidate.Variable, ref, output.StatusIcon(status, p.Color), output.Dimmed(string(o.Status), p.Color))
	}
	if len(warm.Sources) == 0 {
		sec.Separator()
		sec.Row("no usable cache source, building with --no-cache")
	}
	sec.Close()
	return warm
}

func (p *Pipeline) renderPlan(plan Plan, dockerfile string) {
	sec := output.NewSection(p.Out, "Plan", 0, p.Color)
	sec.KV("tag", plan.Tag)
	sec.KV("dockerfile", plan.Dockerfile)
	sec.KV("context", plan.ContextDir)

	if info, err := ParseDockerfile(dockerfile); err == nil {
		for _, st := range info.Stages {
			name := st.BaseImage
			if st.Name != "" {
				name += " (" + st.Name + ")"
			}
			sec.KV("base", name)
		}
		if undeclared := info.UndeclaredArgs(plan.BuildArgs); len(undeclared) > 0 {
			p.Log.Warnf("build args not declared by any ARG instruction: %s", strings.Join(undeclared, ", "))
		}
	}

	// Names only; values may be secrets.
	for _, a := range plan.BuildArgs {
		sec.KV("build-arg", a.Name)
	}
	for _, l := range plan.Labels {
		sec.KV("label", l.Key+"="+l.Value)
	}
	if plan.CacheEnabled() {
		for _, ref := range plan.CacheFrom {
			sec.KV("cache-from", ref)
		}
	} else {
		sec.KV("cache", "disabled (--no-cache)")
	}
	sec.Close()
}

func (p *Pipeline) renderBuild(res *Result, status string) {
	sec := output.NewSection(p.Out, "Build", res.Build.Duration, p.Color)
	for _, l := range res.Layers {
		timing := FormatLayerTiming(l)
		if l.Cached {
			timing = output.Dimmed(timing, p.Color)
		}
		sec.Row("%-8s%-42s %s", fmt.Sprintf("%d", l.Step), FormatLayerInstruction(l), timing)
	}
	if len(res.Layers) > 0 {
		sec.Separator()
		sec.Row("%d step(s), %d cached", len(res.Layers), CountCached(res.Layers))
	}
	detail := res.Plan.Tag
	if status == output.StatusFailed {
		detail = fmt.Sprintf("exit status %d", res.Build.ExitCode)
	}
	sec.Row("%s %s", output.StatusIcon(status, p.Color), detail)
	sec.Close()
}

// lockedBuffer collects stdout and stderr, which exec copies concurrently.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
