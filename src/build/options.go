package build

import (
	"errors"

	"github.com/sofmeright/docker-build/src/imageref"
)

// Options is everything one build needs. The CLI fills it from flags and
// config; the pipeline resolves Squash and Cache against the daemon and the
// warm-up result before assembling the command.
type Options struct {
	Tag        string // -t
	Dockerfile string // -f
	Squash     bool   // -s
	Cache      bool   // -c
	Quiet      bool   // -q

	ArgPrefix        string   // environment prefix forwarded as build args
	CacheVariables   []string // environment variables naming cache repositories
	CacheConcurrency int
	RevisionLabel    bool
}

// Validate checks the required flags and the tag grammar. Every missing
// flag is reported.
func (o Options) Validate() error {
	var errs []error
	if o.Tag == "" {
		errs = append(errs, errors.New("-t <tag> is required"))
	}
	if o.Dockerfile == "" {
		errs = append(errs, errors.New("-f <file> is required"))
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return imageref.ValidateTag(o.Tag)
}
