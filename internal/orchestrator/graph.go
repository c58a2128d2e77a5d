// Package orchestrator runs the gate/fan-out/fan-in shape locally: an
// explicit graph of tasks with typed dependencies and a barrier, instead of
// relying on an external CI executor's implicit semantics. Each slice task
// is independent of its siblings; the aggregate task sits behind a barrier
// that waits for every slice to reach a terminal state, succeeded or not.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// DepType distinguishes the two dependency semantics in the graph.
type DepType int

const (
	// DepRequire means the upstream task must succeed; if it fails or is
	// skipped, this task is skipped with an error.
	DepRequire DepType = iota
	// DepBarrier means the upstream task must merely reach a terminal
	// state. Used by the fan-in: a failed slice still releases the
	// aggregate step, and its environments surface as missing there.
	DepBarrier
)

// Dep is a typed edge to an upstream task.
type Dep struct {
	Task string
	Type DepType
}

// Task is one node of the execution graph.
type Task struct {
	Name string
	Deps []Dep
	Run  func(ctx context.Context) error
	// OnTerminal runs when the task reaches a terminal state, including
	// skipped and cancelled. Barrier arrivals hang off this hook so a task
	// that never ran still releases its fan-in.
	OnTerminal func()

	done chan struct{}
	err  error
}

// Graph is a directed acyclic graph of tasks.
type Graph struct {
	tasks map[string]*Task
	order []string
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{tasks: make(map[string]*Task)}
}

// Add registers a task. Task names must be unique.
func (g *Graph) Add(t *Task) error {
	if t.Name == "" {
		return errors.New("task must have a name")
	}
	if _, exists := g.tasks[t.Name]; exists {
		return fmt.Errorf("duplicate task %q", t.Name)
	}
	t.done = make(chan struct{})
	g.tasks[t.Name] = t
	g.order = append(g.order, t.Name)
	return nil
}

// validate checks that every dependency exists and the graph is acyclic.
func (g *Graph) validate() error {
	const (
		unvisited = iota
		visiting
		visited
	)
	state := make(map[string]int, len(g.tasks))

	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case visiting:
			return fmt.Errorf("dependency cycle through task %q", name)
		case visited:
			return nil
		}
		state[name] = visiting
		for _, dep := range g.tasks[name].Deps {
			if _, ok := g.tasks[dep.Task]; !ok {
				return fmt.Errorf("task %q depends on unknown task %q", name, dep.Task)
			}
			if err := visit(dep.Task); err != nil {
				return err
			}
		}
		state[name] = visited
		return nil
	}

	for _, name := range g.order {
		if err := visit(name); err != nil {
			return err
		}
	}
	return nil
}

// Run executes the graph. Every task starts in its own goroutine and blocks
// until its dependencies reach the required state. Run returns the joined
// errors of all failed tasks; tasks skipped because a required dependency
// failed contribute a skip error.
func (g *Graph) Run(ctx context.Context) error {
	if err := g.validate(); err != nil {
		return err
	}

	eg, ctx := errgroup.WithContext(ctx)
	var mu sync.Mutex
	var failures []error

	for _, name := range g.order {
		task := g.tasks[name]
		eg.Go(func() error {
			defer func() {
				if task.OnTerminal != nil {
					task.OnTerminal()
				}
				close(task.done)
			}()

			for _, dep := range task.Deps {
				upstream := g.tasks[dep.Task]
				select {
				case <-upstream.done:
				case <-ctx.Done():
					task.err = fmt.Errorf("task %q cancelled: %w", task.Name, ctx.Err())
					mu.Lock()
					failures = append(failures, task.err)
					mu.Unlock()
					return nil
				}
				if dep.Type == DepRequire && upstream.err != nil {
					task.err = fmt.Errorf("task %q skipped: dependency %q failed", task.Name, dep.Task)
					mu.Lock()
					failures = append(failures, task.err)
					mu.Unlock()
					return nil
				}
			}

			if err := task.Run(ctx); err != nil {
				task.err = fmt.Errorf("task %q: %w", task.Name, err)
				mu.Lock()
				failures = append(failures, task.err)
				mu.Unlock()
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return err
	}
	return errors.Join(failures...)
}

// Err returns the terminal error of a task after Run, nil if it succeeded.
func (g *Graph) Err(name string) error {
	t, ok := g.tasks[name]
	if !ok {
		return fmt.Errorf("unknown task %q", name)
	}
	return t.err
}

// Barrier waits for a fixed number of arrivals and collects the artifact
// names they hand over.
type Barrier struct {
	mu        sync.Mutex
	remaining int
	artifacts []string
	released  chan struct{}
}

// NewBarrier creates a barrier expecting n arrivals.
func NewBarrier(n int) *Barrier {
	b := &Barrier{remaining: n, released: make(chan struct{})}
	if n <= 0 {
		close(b.released)
	}
	return b
}

// Arrive marks one participant terminal, optionally contributing artifacts.
func (b *Barrier) Arrive(artifacts ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.remaining == 0 {
		return
	}
	b.artifacts = append(b.artifacts, artifacts...)
	b.remaining--
	if b.remaining == 0 {
		close(b.released)
	}
}

// Wait blocks until every participant arrived or ctx is done, then returns
// the collected artifacts.
func (b *Barrier) Wait(ctx context.Context) ([]string, error) {
	select {
	case <-b.released:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.artifacts))
	copy(out, b.artifacts)
	return out, nil
}
