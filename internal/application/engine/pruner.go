package engine

import "github.com/flowkit/flowkit/internal/domain"

// Prune rewrites the graph reachable backward from entry in place, in a
// single backward DFS so each job is visited once, after its
// dependencies. It returns entry filtered down to the jobs that are not
// Done() after rewriting.
//
// Prune is idempotent: a job already visited this call is skipped, and
// none of the rewrites make a Done() job un-Done, or a resolved/detached
// edge reappear.
func Prune(entry ...*domain.Job) []*domain.Job {
	visited := make(map[domain.JobID]bool)
	var visit func(j *domain.Job)

	visit = func(j *domain.Job) {
		if visited[j.ID] {
			return
		}
		visited[j.ID] = true

		// Disabled bypass: re-home each disabled parent's own
		// parents directly onto j, preserving the grandparent's edge
		// status, then detach the disabled parent. Looped to a fixpoint
		// so a chain of disabled jobs collapses in one visit, not one
		// per chain link.
		for {
			bypassed := false
			for parent := range j.ParentJobs() {
				if parent.Disabled {
					bypassDisabled(j, parent)
					bypassed = true
				}
			}
			if !bypassed {
				break
			}
		}

		// Visit remaining parents first (postorder: dependencies before
		// dependents), so narrowing/elision has already happened below
		// us in the graph by the time we evaluate wait-mode trimming.
		for parent := range j.ParentJobs() {
			visit(parent)
		}

		// Array narrowing, evaluated before wait-mode trimming so a job
		// narrowed to "done" this round is treated as resolved by the
		// trim in the same pass.
		narrowArray(j)

		trimByWaitMode(j)
	}

	for _, j := range entry {
		visit(j)
	}

	var remaining []*domain.Job
	for _, j := range entry {
		if !j.Done() {
			remaining = append(remaining, j)
		}
	}
	return remaining
}

// bypassDisabled detaches the edge j -> disabled, and re-attaches every
// grandparent of disabled as a parent of j, preserving the grandparent's
// original edge status. disabled itself is left untouched so other
// dependents of it are bypassed identically.
func bypassDisabled(j, disabled *domain.Job) {
	j.RemoveParent(disabled)
	for grandparent, status := range disabled.ParentJobs() {
		j.ReattachParent(grandparent, status)
	}
}

// narrowArray replaces j's array with the pending subset when that's a
// proper non-empty subset, or leaves it untouched (letting Done() pick
// up full completion) when every index is pending or none is.
func narrowArray(j *domain.Job) {
	if !j.IsArray() || !j.HasPostconditions() {
		return
	}

	full := j.Array().Indices()
	var pending []int
	for _, i := range full {
		if !j.DoneAt(i) {
			pending = append(pending, i)
		}
	}

	if len(pending) == len(full) || len(pending) == 0 {
		return
	}
	j.SetArray(domain.NewArraySet(pending))
}

// trimByWaitMode detaches parents already satisfied under j's wait mode.
// "Satisfied" means done and not gated on failure (a done-successfully
// parent never satisfies a `failure` edge).
func trimByWaitMode(j *domain.Job) {
	resolved := map[*domain.Job]bool{}
	for parent, status := range j.ParentJobs() {
		if parent.Done() && status != domain.StatusFailure {
			resolved[parent] = true
		}
	}

	if len(resolved) == 0 {
		return
	}

	if j.WaitMode == domain.WaitAny {
		for parent := range j.ParentJobs() {
			j.RemoveParent(parent)
		}
		return
	}

	for parent := range resolved {
		j.RemoveParent(parent)
	}
}
