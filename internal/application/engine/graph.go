// Package engine implements the graph transformation pipeline and the two
// job execution backends: local and cluster.
package engine

import (
	"fmt"

	"github.com/flowkit/flowkit/internal/domain"
	domainerrors "github.com/flowkit/flowkit/internal/domain/errors"
)

// Direction selects which edge set Walk/Cycles follows.
type Direction int

const (
	// Backward follows parent edges (dependencies), the direction the
	// scheduler and pruner traverse in.
	Backward Direction = iota
	// Forward follows child edges (dependents).
	Forward
)

func neighbors(j *domain.Job, dir Direction) map[*domain.Job]domain.EdgeStatus {
	var edges map[domain.JobID]domain.EdgeStatus
	if dir == Backward {
		edges = j.Parents()
	} else {
		edges = j.Children()
	}
	out := make(map[*domain.Job]domain.EdgeStatus, len(edges))
	for id, status := range edges {
		if nb, ok := j.ByID(id); ok {
			out[nb] = status
		}
	}
	return out
}

// Walk returns every job reachable from roots by following dir, each
// exactly once, including the roots themselves.
func Walk(dir Direction, roots ...*domain.Job) []*domain.Job {
	seen := make(map[domain.JobID]bool)
	var order []*domain.Job
	var visit func(j *domain.Job)
	visit = func(j *domain.Job) {
		if seen[j.ID] {
			return
		}
		seen[j.ID] = true
		order = append(order, j)
		for nb := range neighbors(j, dir) {
			visit(nb)
		}
	}
	for _, r := range roots {
		visit(r)
	}
	return order
}

// TerminalSet returns the jobs reachable forward from roots that have no
// children.
func TerminalSet(roots ...*domain.Job) []*domain.Job {
	var terminals []*domain.Job
	for _, j := range Walk(Forward, roots...) {
		if len(j.Children()) == 0 {
			terminals = append(terminals, j)
		}
	}
	return terminals
}

// Cycles performs a DFS from roots along dir and returns every simple
// cycle found, as the list of job names along the back edge's path. It
// visits both directions depending on dir, since the pruner and
// scheduler both need to detect cycles looking backward from the jobs
// they were handed.
func Cycles(dir Direction, roots ...*domain.Job) [][]string {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[domain.JobID]int)
	var path []*domain.Job
	var cycles [][]string

	var visit func(j *domain.Job)
	visit = func(j *domain.Job) {
		color[j.ID] = gray
		path = append(path, j)

		for nb := range neighbors(j, dir) {
			switch color[nb.ID] {
			case white:
				visit(nb)
			case gray:
				// Found a back edge: nb is an ancestor on the current path.
				start := 0
				for i, p := range path {
					if p.ID == nb.ID {
						start = i
						break
					}
				}
				cyclePath := path[start:]
				names := make([]string, 0, len(cyclePath)+1)
				for _, p := range cyclePath {
					names = append(names, p.Name())
				}
				names = append(names, nb.Name())
				cycles = append(cycles, names)
			case black:
				// already fully explored, no cycle through here
			}
		}

		path = path[:len(path)-1]
		color[j.ID] = black
	}

	for _, r := range roots {
		if color[r.ID] == white {
			visit(r)
		}
	}
	return cycles
}

// CheckAcyclic returns a CyclicGraphError naming the first cycle found
// looking backward from roots, or nil if the graph is acyclic.
func CheckAcyclic(roots ...*domain.Job) error {
	cycles := Cycles(Backward, roots...)
	if len(cycles) == 0 {
		return nil
	}
	return &domainerrors.CyclicGraphError{Cycle: cycles[0]}
}

// TopologicalOrder returns roots' full backward-reachable set ordered so
// every job precedes its dependents (parents before children), the order
// the cluster driver submits in. Assumes the graph is acyclic; call
// CheckAcyclic first.
func TopologicalOrder(roots ...*domain.Job) ([]*domain.Job, error) {
	all := Walk(Backward, roots...)

	indegree := make(map[domain.JobID]int, len(all))
	for _, j := range all {
		if _, ok := indegree[j.ID]; !ok {
			indegree[j.ID] = 0
		}
	}
	for _, j := range all {
		for child := range neighbors(j, Forward) {
			// Children outside the backward-reachable set are not ordered.
			if _, in := indegree[child.ID]; in {
				indegree[child.ID]++
			}
		}
	}

	var queue []*domain.Job
	for _, j := range all {
		if indegree[j.ID] == 0 {
			queue = append(queue, j)
		}
	}

	byID := make(map[domain.JobID]*domain.Job, len(all))
	for _, j := range all {
		byID[j.ID] = j
	}

	var order []*domain.Job
	for len(queue) > 0 {
		j := queue[0]
		queue = queue[1:]
		order = append(order, j)
		for child := range neighbors(j, Forward) {
			indegree[child.ID]--
			if indegree[child.ID] == 0 {
				queue = append(queue, byID[child.ID])
			}
		}
	}

	if len(order) != len(all) {
		return nil, fmt.Errorf("topological sort: graph contains a cycle not caught by CheckAcyclic")
	}
	return order, nil
}
