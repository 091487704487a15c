package workflow

import (
	"context"
	"fmt"
	"sort"
	"time"

	qcerrors "github.com/chemtools/qcflow/internal/errors"
	"github.com/chemtools/qcflow/internal/logger"
)

// Results maps task names to their computed results.
type Results map[string]interface{}

// Workflow is a dependency graph over tasks, built from an explicit set of
// root tasks. The graph is whatever the roots reach through their
// requirements.
type Workflow struct {
	roots []Task
}

// New builds a workflow from root tasks. Dependencies are picked up through
// each task's Requirements; they do not need to be listed as roots.
func New(roots ...Task) *Workflow {
	return &Workflow{roots: roots}
}

// Compute resolves the transitive requirement closure of the roots, runs
// every reachable task exactly once in dependency order, and returns the
// results keyed by task name.
//
// The declared graph must be acyclic and task names must be unique and
// non-empty; violations fail fast with a diagnostic before anything runs.
// The first task, handler, or context error aborts the computation and
// propagates; no partial results are returned.
func (w *Workflow) Compute(ctx context.Context) (Results, error) {
	tasks := w.collect()
	if len(tasks) == 0 {
		return Results{}, nil
	}

	byName, err := indexByName(tasks)
	if err != nil {
		return nil, err
	}

	graph := newDAG()
	for _, t := range tasks {
		graph.addNode(t.Name())
		for _, dep := range orderedDeps(t.Requirements()) {
			graph.addEdge(t.Name(), dep.Name())
		}
	}

	order, err := graph.topologicalSort()
	if err != nil {
		return nil, err
	}

	logger.Op.WithFields(map[string]interface{}{
		"tasks": len(order),
	}).Debug("Workflow execution order resolved")

	start := time.Now()
	results := make(Results, len(order))

	for _, name := range order {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		task := byName[name]
		if err := w.runTask(ctx, task, results); err != nil {
			return nil, err
		}
	}

	logger.Op.WithFields(map[string]interface{}{
		"tasks":   len(order),
		"elapsed": time.Since(start).Round(time.Millisecond),
	}).Debug("Workflow computed")

	return results, nil
}

// runTask resolves a task's inputs from already-computed results, fires its
// handlers around Run, and stores the result.
func (w *Workflow) runTask(ctx context.Context, task Task, results Results) error {
	reqs := task.Requirements()

	in := Inputs{Named: make(map[string]interface{}, len(reqs.Named))}
	for _, dep := range reqs.Positional {
		in.Positional = append(in.Positional, results[dep.Name()])
	}
	for key, dep := range reqs.Named {
		in.Named[key] = results[dep.Name()]
	}

	for _, h := range task.Handlers() {
		if err := h.OnStart(task); err != nil {
			return fmt.Errorf("task %s start handler failed: %w", task.Name(), err)
		}
	}

	logger.Op.WithFields(map[string]interface{}{
		"task": task.Name(),
	}).Debug("Running task")

	result, runErr := task.Run(ctx, in)

	for _, h := range task.Handlers() {
		if err := h.OnFinish(task, result, runErr); err != nil {
			return fmt.Errorf("task %s finish handler failed: %w", task.Name(), err)
		}
	}

	if runErr != nil {
		return fmt.Errorf("task %s failed: %w", task.Name(), runErr)
	}

	results[task.Name()] = result
	return nil
}

// collect returns every task reachable from the roots, each exactly once.
// Identity is object identity, so a shared dependency appears once however
// many dependents reference it.
func (w *Workflow) collect() []Task {
	seen := make(map[Task]bool)
	var all []Task

	var visit func(t Task)
	visit = func(t Task) {
		if t == nil || seen[t] {
			return
		}
		seen[t] = true
		all = append(all, t)
		for _, dep := range orderedDeps(t.Requirements()) {
			visit(dep)
		}
	}

	for _, root := range w.roots {
		visit(root)
	}

	return all
}

// orderedDeps flattens a requirement set: positional dependencies in
// declaration order, then named ones sorted by requirement name.
func orderedDeps(reqs Requirements) []Task {
	deps := make([]Task, 0, len(reqs.Positional)+len(reqs.Named))
	deps = append(deps, reqs.Positional...)

	keys := make([]string, 0, len(reqs.Named))
	for k := range reqs.Named {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		deps = append(deps, reqs.Named[k])
	}

	return deps
}

// indexByName maps tasks by name, rejecting empty and duplicate names.
// Keying results by name is only sound because of this check; it is a
// deliberate departure from silently letting same-named tasks overwrite
// each other's results.
func indexByName(tasks []Task) (map[string]Task, error) {
	byName := make(map[string]Task, len(tasks))
	for _, t := range tasks {
		name := t.Name()
		if name == "" {
			return nil, qcerrors.NewDuplicateNameError("")
		}
		if _, exists := byName[name]; exists {
			return nil, qcerrors.NewDuplicateNameError(name)
		}
		byName[name] = t
	}
	return byName, nil
}
