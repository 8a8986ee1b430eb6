// SPDX-License-Identifier: MPL-2.0

// Package dag provides the module dependency graph built while computing a
// bundle's closure, with deterministic topological ordering and cycle
// detection. Nodes are module keys rendered as `lib::a::b`.
package dag

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrCycle is the sentinel error wrapped by CycleError.
var ErrCycle = errors.New("dependency cycle")

type (
	// CycleError indicates that the graph contains a cycle, preventing topological ordering.
	CycleError struct {
		// Cycle lists the nodes left with unresolved dependencies, sorted.
		// It is a superset of at least one cycle.
		Cycle []string
	}

	// Graph is a directed graph of module dependencies.
	// An edge from A to B means A must be ordered before B, that is, B depends on A.
	Graph struct {
		// adjacency maps each node to its outgoing neighbors (nodes that depend on it).
		adjacency map[string][]string
		// deps maps each node to the nodes it depends on.
		deps    map[string][]string
		nodeSet map[string]bool
		edges   map[[2]string]bool
	}
)

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected among: %s", strings.Join(e.Cycle, ", "))
}

// Unwrap returns ErrCycle for errors.Is() compatibility.
func (e *CycleError) Unwrap() error { return ErrCycle }

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		adjacency: make(map[string][]string),
		deps:      make(map[string][]string),
		nodeSet:   make(map[string]bool),
		edges:     make(map[[2]string]bool),
	}
}

// AddNode adds a node to the graph. If the node already exists, this is a no-op.
func (g *Graph) AddNode(name string) {
	g.nodeSet[name] = true
}

// AddEdge adds a directed edge from -> to, meaning "from" is ordered before "to".
// Both nodes are implicitly added. Duplicate edges and self-loops are ignored.
func (g *Graph) AddEdge(from, to string) {
	g.AddNode(from)
	g.AddNode(to)
	if from == to || g.edges[[2]string{from, to}] {
		return
	}
	g.edges[[2]string{from, to}] = true
	g.adjacency[from] = append(g.adjacency[from], to)
	g.deps[to] = append(g.deps[to], from)
}

// AddDependency records that module depends on dep.
func (g *Graph) AddDependency(module, dep string) {
	g.AddEdge(dep, module)
}

// Has reports whether name is a node of the graph.
func (g *Graph) Has(name string) bool { return g.nodeSet[name] }

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodeSet) }

// Nodes returns every node in sorted order.
func (g *Graph) Nodes() []string {
	out := make([]string, 0, len(g.nodeSet))
	for n := range g.nodeSet {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// Dependencies returns the nodes that name depends on, sorted.
func (g *Graph) Dependencies(name string) []string {
	out := slices.Clone(g.deps[name])
	slices.Sort(out)
	return out
}

// Dependents returns the nodes that depend on name, sorted.
func (g *Graph) Dependents(name string) []string {
	out := slices.Clone(g.adjacency[name])
	slices.Sort(out)
	return out
}

// TopologicalSort returns an order in which every node follows the nodes it
// depends on, using Kahn's algorithm. Among ready nodes the smallest name is
// taken first, so the order does not depend on insertion order.
// Returns CycleError if the graph contains a cycle.
func (g *Graph) TopologicalSort() ([]string, error) {
	if len(g.nodeSet) == 0 {
		return nil, nil
	}

	inDegree := make(map[string]int, len(g.nodeSet))
	for node := range g.nodeSet {
		inDegree[node] = len(g.deps[node])
	}

	var ready []string
	for node, d := range inDegree {
		if d == 0 {
			ready = append(ready, node)
		}
	}
	slices.Sort(ready)

	result := make([]string, 0, len(g.nodeSet))
	for len(ready) > 0 {
		node := ready[0]
		ready = ready[1:]
		result = append(result, node)

		for _, neighbor := range g.adjacency[node] {
			inDegree[neighbor]--
			if inDegree[neighbor] == 0 {
				i, _ := slices.BinarySearch(ready, neighbor)
				ready = slices.Insert(ready, i, neighbor)
			}
		}
	}

	if len(result) != len(g.nodeSet) {
		var cycleNodes []string
		for node, d := range inDegree {
			if d > 0 {
				cycleNodes = append(cycleNodes, node)
			}
		}
		slices.Sort(cycleNodes)
		return nil, &CycleError{Cycle: cycleNodes}
	}

	return result, nil
}
