package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraphRunsDependenciesFirst(t *testing.T) {
	var mu sync.Mutex
	var order []string
	record := func(name string) func(context.Context) error {
		return func(context.Context) error {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			return nil
		}
	}

	g := NewGraph()
	require.NoError(t, g.Add(&Task{Name: "build", Run: record("build")}))
	require.NoError(t, g.Add(&Task{
		Name: "test",
		Deps: []Dep{{Task: "build", Type: DepRequire}},
		Run:  record("test"),
	}))
	require.NoError(t, g.Add(&Task{
		Name: "report",
		Deps: []Dep{{Task: "test", Type: DepRequire}},
		Run:  record("report"),
	}))

	require.NoError(t, g.Run(context.Background()))
	assert.Equal(t, []string{"build", "test", "report"}, order)
}

func TestGraphRequireFailureSkipsDownstream(t *testing.T) {
	boom := errors.New("boom")
	ran := false

	g := NewGraph()
	require.NoError(t, g.Add(&Task{Name: "gate", Run: func(context.Context) error { return boom }}))
	require.NoError(t, g.Add(&Task{
		Name: "slice",
		Deps: []Dep{{Task: "gate", Type: DepRequire}},
		Run: func(context.Context) error {
			ran = true
			return nil
		},
	}))

	err := g.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.False(t, ran, "slice must not run after its gate failed")
	assert.Error(t, g.Err("slice"))
	assert.Contains(t, g.Err("slice").Error(), "skipped")
}

func TestGraphBarrierDepReleasesDespiteFailure(t *testing.T) {
	ran := false

	g := NewGraph()
	require.NoError(t, g.Add(&Task{Name: "slice", Run: func(context.Context) error { return errors.New("slice failed") }}))
	require.NoError(t, g.Add(&Task{
		Name: "aggregate",
		Deps: []Dep{{Task: "slice", Type: DepBarrier}},
		Run: func(context.Context) error {
			ran = true
			return nil
		},
	}))

	err := g.Run(context.Background())
	require.Error(t, err)
	assert.True(t, ran, "a barrier dependency must release on any terminal state")
	assert.NoError(t, g.Err("aggregate"))
}

func TestGraphRejectsCycle(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.Add(&Task{Name: "a", Deps: []Dep{{Task: "b", Type: DepRequire}}, Run: func(context.Context) error { return nil }}))
	require.NoError(t, g.Add(&Task{Name: "b", Deps: []Dep{{Task: "a", Type: DepRequire}}, Run: func(context.Context) error { return nil }}))

	err := g.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}

func TestGraphRejectsUnknownDependency(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.Add(&Task{Name: "a", Deps: []Dep{{Task: "ghost", Type: DepRequire}}, Run: func(context.Context) error { return nil }}))

	err := g.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown task")
}

func TestGraphRejectsDuplicateTask(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.Add(&Task{Name: "a", Run: func(context.Context) error { return nil }}))
	assert.Error(t, g.Add(&Task{Name: "a", Run: func(context.Context) error { return nil }}))
}

func TestBarrierCollectsArtifacts(t *testing.T) {
	b := NewBarrier(3)
	b.Arrive("one.results")
	b.Arrive()
	b.Arrive("two.results")

	artifacts, err := b.Wait(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"one.results", "two.results"}, artifacts)
}

func TestBarrierWaitHonorsContext(t *testing.T) {
	b := NewBarrier(1)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := b.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBarrierZeroParticipants(t *testing.T) {
	b := NewBarrier(0)
	artifacts, err := b.Wait(context.Background())
	require.NoError(t, err)
	assert.Empty(t, artifacts)
}
