package build

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/sofmeright/docker-build/src/imageref"
)

// Puller fetches an image into the local store.
type Puller interface {
	Pull(ctx context.Context, ref string, out io.Writer) error
}

// PullStatus is the outcome of one warm-up candidate.
type PullStatus string

const (
	PullSucceeded PullStatus = "pulled"
	PullFailed    PullStatus = "failed"
	PullInvalid   PullStatus = "invalid"
	PullDuplicate PullStatus = "duplicate"
)

// PullOutcome records what happened to one candidate.
type PullOutcome struct {
	Candidate Candidate
	Ref       string // repository:latest, empty when the candidate was invalid
	Status    PullStatus
	Err       error
	Duration  time.Duration
}

// WarmupResult holds the refs usable as --cache-from, in candidate order.
type WarmupResult struct {
	Sources  []string
	Outcomes []PullOutcome
	Duration time.Duration
}

// Warmer pulls the :latest image of every valid cache candidate.
type Warmer struct {
	Puller      Puller
	Concurrency int // <= 1 pulls sequentially
	Log         logrus.FieldLogger
	Output      io.Writer // pull progress; nil discards
}

// Warmup validates, de-duplicates and pulls the candidates. Failures are
// never fatal: a failed pull is recorded and skipped.
func (w *Warmer) Warmup(ctx context.Context, candidates []Candidate) WarmupResult {
	start := time.Now()
	outcomes := make([]PullOutcome, len(candidates))
	seen := make(map[string]bool)
	var toPull []int

	for i, c := range candidates {
		outcomes[i].Candidate = c
		ref, err := imageref.WithTag(c.Value, imageref.LatestTag)
		if err != nil {
			outcomes[i].Status = PullInvalid
			outcomes[i].Err = err
			w.log().Debugf("cache: skipping %s: %v", c.Variable, err)
			continue
		}
		outcomes[i].Ref = ref
		if seen[ref] {
			outcomes[i].Status = PullDuplicate
			continue
		}
		seen[ref] = true
		toPull = append(toPull, i)
	}

	limit := int64(w.Concurrency)
	if limit < 1 {
		limit = 1
	}
	sem := semaphore.NewWeighted(limit)
	var (
		wg sync.WaitGroup
		mu sync.Mutex // serializes pull output
	)

	for _, idx := range toPull {
		if err := sem.Acquire(ctx, 1); err != nil {
			outcomes[idx].Status = PullFailed
			outcomes[idx].Err = err
			continue
		}
		wg.Add(1)
		go func(o *PullOutcome) {
			defer wg.Done()
			defer sem.Release(1)

			pullStart := time.Now()
			out := w.Output
			if out == nil {
				out = io.Discard
			}
			err := w.Puller.Pull(ctx, o.Ref, &lockedWriter{mu: &mu, w: out})
			o.Duration = time.Since(pullStart)
			if err != nil {
				o.Status = PullFailed
				o.Err = err
				w.log().Debugf("cache: %v", err)
				return
			}
			o.Status = PullSucceeded
		}(&outcomes[idx])
	}
	wg.Wait()

	res := WarmupResult{Outcomes: outcomes, Duration: time.Since(start)}
	for _, o := range outcomes {
		if o.Status == PullSucceeded {
			res.Sources = append(res.Sources, o.Ref)
		}
	}
	return res
}

func (w *Warmer) log() logrus.FieldLogger {
	if w.Log == nil {
		return logrus.StandardLogger()
	}
	return w.Log
}

type lockedWriter struct {
	mu *sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
