package build

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sofmeright/docker-build/src/docker"
)

func TestWarmupCollectsSuccessesInCandidateOrder(t *testing.T) {
	for _, concurrency := range []int{1, 4} {
		fake := &fakeDocker{pullOK: map[string]bool{
			"registry.example.com/team/app:latest": true,
			"mirror.example.com/app:latest":        true,
		}}
		w := &Warmer{Puller: docker.NewClient(fake), Concurrency: concurrency}

		res := w.Warmup(context.Background(), []Candidate{
			{Variable: "CI_REGISTRY_IMAGE", Value: "registry.example.com/team/app"},
			{Variable: "CI_APPLICATION_REPOSITORY", Value: "registry.example.com/team/missing"},
			{Variable: "DOCKER_CACHE_REPOSITORY", Value: "mirror.example.com/app"},
			{Variable: "DOCKER_REPOSITORY", Value: "registry.example.com/team/app"},
		})

		assert.Equal(t, []string{"registry.example.com/team/app:latest", "mirror.example.com/app:latest"}, res.Sources)
		require.Len(t, res.Outcomes, 4)
		assert.Equal(t, PullSucceeded, res.Outcomes[0].Status)
		assert.Equal(t, PullFailed, res.Outcomes[1].Status)
		assert.Error(t, res.Outcomes[1].Err)
		assert.Equal(t, PullSucceeded, res.Outcomes[2].Status)
		assert.Equal(t, PullDuplicate, res.Outcomes[3].Status)
		assert.Len(t, fake.pullsStarted, 3, "duplicates are pulled once")
	}
}

func TestWarmupSkipsInvalidCandidates(t *testing.T) {
	fake := &fakeDocker{pullOK: map[string]bool{}}
	w := &Warmer{Puller: docker.NewClient(fake)}

	res := w.Warmup(context.Background(), []Candidate{
		{Variable: "CI_REGISTRY_IMAGE", Value: "Registry/Upper"},
		{Variable: "DOCKER_REPOSITORY", Value: "team/app:1.0"},
	})

	assert.Empty(t, res.Sources)
	assert.Empty(t, fake.pullsStarted, "invalid candidates are never pulled")
	for _, o := range res.Outcomes {
		assert.Equal(t, PullInvalid, o.Status)
		assert.Empty(t, o.Ref)
	}
}

func TestWarmupNoCandidates(t *testing.T) {
	w := &Warmer{Puller: docker.NewClient(&fakeDocker{})}
	res := w.Warmup(context.Background(), nil)
	assert.Empty(t, res.Sources)
	assert.Empty(t, res.Outcomes)
}
