package build

import (
	"fmt"

	"github.com/go-git/go-git/v5"
)

// RevisionLabelKey is the OCI annotation carrying the source commit.
const RevisionLabelKey = "org.opencontainers.image.revision"

// DetectRevision returns the full commit hash at HEAD of the repository
// containing dir. Parent directories are searched for .git.
func DetectRevision(dir string) (string, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("opening git repository at %s: %w", dir, err)
	}
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolving HEAD: %w", err)
	}
	return head.Hash().String(), nil
}

// RevisionLabels returns the revision label for dir, or nil when dir is not
// inside a git repository with at least one commit.
func RevisionLabels(dir string) ([]Label, error) {
	sha, err := DetectRevision(dir)
	if err != nil {
		return nil, err
	}
	return []Label{{Key: RevisionLabelKey, Value: sha}}, nil
}
