package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// EdgeStatus gates a dependency edge on the parent's outcome.
type EdgeStatus string

const (
	StatusSuccess EdgeStatus = "success"
	StatusFailure EdgeStatus = "failure"
	StatusAny     EdgeStatus = "any"
)

// WaitMode combines a job's dependency-edge outcomes.
type WaitMode string

const (
	WaitAll WaitMode = "all"
	WaitAny WaitMode = "any"
)

// JobID is a Job's stable identity, assigned once at construction. Go
// function values aren't comparable, so identity here is a UUID that
// NewJob/NewArrayJob assign; every constructed Job gets a fresh one, even
// when it reuses another Job's token.
type JobID uuid.UUID

func (id JobID) String() string { return uuid.UUID(id).String() }

func NewJobID() JobID { return JobID(uuid.New()) }

// Condition is a 0-arg or 1-arg predicate. Exactly one of fn0/fn1 is
// set; Arity reports which.
type Condition struct {
	fn0 func() bool
	fn1 func(int) bool
}

// Cond0 builds a 0-arg condition.
func Cond0(f func() bool) Condition { return Condition{fn0: f} }

// Cond1 builds a 1-arg (array-index) condition.
func Cond1(f func(int) bool) Condition { return Condition{fn1: f} }

// Arity returns 0 or 1.
func (c Condition) Arity() int {
	if c.fn1 != nil {
		return 1
	}
	return 0
}

// Eval evaluates a 0-arg condition. Panics if Arity() != 0: callers
// must check arity before building the Job.
func (c Condition) Eval() bool {
	return c.fn0()
}

// EvalAt evaluates a condition at array index i, dispatching to the 1-arg
// form if present, else ignoring i.
func (c Condition) EvalAt(i int) bool {
	if c.fn1 != nil {
		return c.fn1(i)
	}
	return c.fn0()
}

// Callable0 is a non-array job body.
type Callable0 func() (any, error)

// Callable1 is an array job body, invoked once per declared index.
type Callable1 func(int) (any, error)

// Job is a node in the workflow graph: a callable plus its resource,
// array, condition, and dependency annotations.
type Job struct {
	ID    JobID
	Token string // stable registry symbol

	name string

	fn0 Callable0
	fn1 Callable1

	array Array // nil for non-array jobs

	Settings *Settings
	Env      []string

	preconditions  []Condition
	postconditions []Condition

	WaitMode WaitMode
	Disabled bool

	// parents/children are kept mutually consistent by After,
	// ReattachParent and removeParent only.
	parents  map[JobID]EdgeStatus
	children map[JobID]EdgeStatus
	byID     map[JobID]*Job // shared lookup table, same map instance across a connected graph
}

// NewJob constructs a non-array job wrapping a 0-arg callable.
func NewJob(token string, fn Callable0) *Job {
	return newJob(token, fn, nil, nil)
}

// NewArrayJob constructs an array job wrapping a 1-arg callable over the
// given domain.
func NewArrayJob(token string, fn Callable1, array Array) *Job {
	return newJob(token, nil, fn, array)
}

func newJob(token string, fn0 Callable0, fn1 Callable1, array Array) *Job {
	return &Job{
		ID:       NewJobID(),
		Token:    token,
		name:     token,
		fn0:      fn0,
		fn1:      fn1,
		array:    array,
		Settings: NewSettings(),
		WaitMode: WaitAll,
		parents:  make(map[JobID]EdgeStatus),
		children: make(map[JobID]EdgeStatus),
		byID:     make(map[JobID]*Job),
	}
}

// IsArray reports whether the job has an array domain.
func (j *Job) IsArray() bool { return j.array != nil }

// Array returns the job's index domain, or nil for non-array jobs.
func (j *Job) Array() Array { return j.array }

// SetArray narrows or replaces the job's array domain (used by the
// pruner's array-narrowing rewrite). Calling this on a non-array job is a
// programming error.
func (j *Job) SetArray(a Array) {
	if j.array == nil {
		panic(fmt.Sprintf("job %q: SetArray on non-array job", j.name))
	}
	j.array = a
}

// Name returns the job's display name, defaulting to its registry token.
func (j *Job) Name() string { return j.name }

// SetName overrides the display name.
func (j *Job) SetName(name string) { j.name = name }

// Fn0 returns the non-array body, or nil.
func (j *Job) Fn0() Callable0 { return j.fn0 }

// Fn1 returns the array body, or nil.
func (j *Job) Fn1() Callable1 { return j.fn1 }

// AddPrecondition appends a precondition, validating its arity against
// whether the job is an array job.
func (j *Job) AddPrecondition(c Condition) error {
	if err := j.checkArity(c); err != nil {
		return err
	}
	j.preconditions = append(j.preconditions, c)
	return nil
}

// AddPostcondition appends a postcondition, validating arity the same way.
func (j *Job) AddPostcondition(c Condition) error {
	if err := j.checkArity(c); err != nil {
		return err
	}
	j.postconditions = append(j.postconditions, c)
	return nil
}

func (j *Job) checkArity(c Condition) error {
	if !j.IsArray() && c.Arity() == 1 {
		return fmt.Errorf("job %q: a non-array job cannot take an indexed condition", j.name)
	}
	return nil
}

// Preconditions returns the job's preconditions in declaration order.
func (j *Job) Preconditions() []Condition { return j.preconditions }

// Postconditions returns the job's postconditions in declaration order.
func (j *Job) Postconditions() []Condition { return j.postconditions }

// HasPostconditions reports whether the job has at least one
// postcondition. A job with zero postconditions is never "done".
func (j *Job) HasPostconditions() bool { return len(j.postconditions) > 0 }

// Done reports whether a non-array job's postconditions are all satisfied,
// or (for an array job) whether every index in the current array
// satisfies them.
func (j *Job) Done() bool {
	if len(j.postconditions) == 0 {
		return false
	}
	if !j.IsArray() {
		for _, c := range j.postconditions {
			if !c.Eval() {
				return false
			}
		}
		return true
	}
	for _, i := range j.array.Indices() {
		for _, c := range j.postconditions {
			if !c.EvalAt(i) {
				return false
			}
		}
	}
	return true
}

// DoneAt reports whether a single array index's postconditions hold.
func (j *Job) DoneAt(i int) bool {
	if len(j.postconditions) == 0 {
		return false
	}
	for _, c := range j.postconditions {
		if !c.EvalAt(i) {
			return false
		}
	}
	return true
}

// Parents returns the job's parent edges: JobID -> gating status.
func (j *Job) Parents() map[JobID]EdgeStatus {
	out := make(map[JobID]EdgeStatus, len(j.parents))
	for k, v := range j.parents {
		out[k] = v
	}
	return out
}

// Children returns the job's child edges: JobID -> gating status.
func (j *Job) Children() map[JobID]EdgeStatus {
	out := make(map[JobID]EdgeStatus, len(j.children))
	for k, v := range j.children {
		out[k] = v
	}
	return out
}

// ParentJobs resolves Parents() against the shared lookup table.
func (j *Job) ParentJobs() map[*Job]EdgeStatus {
	out := make(map[*Job]EdgeStatus, len(j.parents))
	for id, status := range j.parents {
		out[j.byID[id]] = status
	}
	return out
}

// ChildJobs resolves Children() against the shared lookup table.
func (j *Job) ChildJobs() map[*Job]EdgeStatus {
	out := make(map[*Job]EdgeStatus, len(j.children))
	for id, status := range j.children {
		out[j.byID[id]] = status
	}
	return out
}

// After declares that j depends on each of deps, gated by status. It
// rejects a self-loop immediately; cycles spanning more than one edge
// are caught later by Cycles.
func (j *Job) After(status EdgeStatus, deps ...*Job) error {
	for _, dep := range deps {
		if dep == j {
			return fmt.Errorf("job %q: a job cannot depend on itself", j.name)
		}
		j.adopt(dep)
		j.parents[dep.ID] = status
		dep.children[j.ID] = status
	}
	return nil
}

// adopt merges two jobs' lookup tables so both share one table,
// implicitly linking two previously-unconnected subgraphs.
func (j *Job) adopt(other *Job) {
	if j.byID[other.ID] == other {
		return
	}
	// Merge the smaller table into the larger, then repoint every job in
	// the merged set at the combined table.
	src, dst := other.byID, j.byID
	if len(src) > len(dst) {
		src, dst = dst, src
	}
	for id, job := range src {
		dst[id] = job
	}
	dst[j.ID] = j
	dst[other.ID] = other
	for _, job := range dst {
		job.byID = dst
	}
}

// removeParent detaches the edge j -> parent in both directions,
// preserving the parent/child consistency invariant.
func (j *Job) removeParent(parent *Job) {
	delete(j.parents, parent.ID)
	delete(parent.children, j.ID)
}

// ReattachParent attaches parent as a direct parent of j with the given
// status, used by the pruner's disabled-bypass rewrite.
func (j *Job) ReattachParent(parent *Job, status EdgeStatus) {
	j.adopt(parent)
	j.parents[parent.ID] = status
	parent.children[j.ID] = status
}

// RemoveParent is the exported form of removeParent, used by the pruner.
func (j *Job) RemoveParent(parent *Job) { j.removeParent(parent) }

// ByID resolves a JobID against j's shared lookup table.
func (j *Job) ByID(id JobID) (*Job, bool) {
	job, ok := j.byID[id]
	return job, ok
}

func (j *Job) String() string { return j.name }
