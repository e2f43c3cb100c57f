// Package imageref holds the one image-reference grammar used by both tag
// validation and cache warm-up. The grammar is the distribution reference
// grammar: an optional registry host (with optional port), one or more
// lowercase path components, and an optional tag.
package imageref

import (
	"fmt"
	"strings"

	"github.com/distribution/reference"
)

// LatestTag is the tag pulled when warming the build cache.
const LatestTag = "latest"

// ValidateTag checks that s can be passed to `docker build -t`.
// Digest references are rejected since a build cannot produce a digest.
func ValidateTag(s string) error {
	ref, err := parse(s)
	if err != nil {
		return fmt.Errorf("invalid image tag %q: %w", s, err)
	}
	if _, ok := ref.(reference.Digested); ok {
		return fmt.Errorf("invalid image tag %q: digest references cannot be build tags", s)
	}
	return nil
}

// Repository parses s as a bare repository name, without tag or digest,
// and returns its canonical string form.
func Repository(s string) (string, error) {
	ref, err := parse(strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("invalid repository %q: %w", s, err)
	}
	if _, ok := ref.(reference.Tagged); ok {
		return "", fmt.Errorf("invalid repository %q: must not carry a tag", s)
	}
	if _, ok := ref.(reference.Digested); ok {
		return "", fmt.Errorf("invalid repository %q: must not carry a digest", s)
	}
	return ref.Name(), nil
}

// WithTag returns repo:tag after checking both halves against the grammar.
func WithTag(repo, tag string) (string, error) {
	name, err := Repository(repo)
	if err != nil {
		return "", err
	}
	named, err := reference.WithName(name)
	if err != nil {
		return "", fmt.Errorf("invalid repository %q: %w", repo, err)
	}
	tagged, err := reference.WithTag(named, tag)
	if err != nil {
		return "", fmt.Errorf("invalid tag %q: %w", tag, err)
	}
	return tagged.String(), nil
}

// parse returns the reference as a Named value. Anonymous references
// (a bare digest) do not name a repository and are rejected.
func parse(s string) (reference.Named, error) {
	ref, err := reference.Parse(s)
	if err != nil {
		return nil, err
	}
	named, ok := ref.(reference.Named)
	if !ok {
		return nil, fmt.Errorf("reference has no repository name")
	}
	return named, nil
}
