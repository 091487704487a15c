package workflow

import (
	"sort"

	qcerrors "github.com/chemtools/qcflow/internal/errors"
)

// dag is a directed acyclic graph of task names used to resolve execution
// order.
type dag struct {
	nodes    map[string]bool
	edges    map[string][]string // node -> list of nodes it depends on
	inDegree map[string]int      // node -> number of dependencies
}

func newDAG() *dag {
	return &dag{
		nodes:    make(map[string]bool),
		edges:    make(map[string][]string),
		inDegree: make(map[string]int),
	}
}

func (d *dag) addNode(id string) {
	if !d.nodes[id] {
		d.nodes[id] = true
		d.inDegree[id] = 0
	}
}

// addEdge records that from depends on to.
func (d *dag) addEdge(from, to string) {
	d.addNode(from)
	d.addNode(to)

	d.edges[from] = append(d.edges[from], to)
	d.inDegree[from]++
}

// topologicalSort returns the nodes in execution order: dependencies before
// dependents, ties broken lexicographically so the order is deterministic.
// A cycle yields a diagnostic error rather than non-termination.
func (d *dag) topologicalSort() ([]string, error) {
	inDegree := make(map[string]int, len(d.inDegree))
	for node, degree := range d.inDegree {
		inDegree[node] = degree
	}

	var ready []string
	for node, degree := range inDegree {
		if degree == 0 {
			ready = append(ready, node)
		}
	}

	var result []string
	for len(ready) > 0 {
		sort.Strings(ready)
		current := ready[0]
		ready = ready[1:]
		result = append(result, current)

		// Release every node waiting on the current one.
		for node, deps := range d.edges {
			for _, depID := range deps {
				if depID == current {
					inDegree[node]--
					if inDegree[node] == 0 {
						ready = append(ready, node)
					}
				}
			}
		}
	}

	if len(result) != len(d.nodes) {
		return nil, qcerrors.NewCycleError("")
	}

	return result, nil
}
