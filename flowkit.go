// Package flowkit declares directed acyclic graphs of computational
// jobs and runs them either locally with bounded concurrency or by
// emitting dependency-aware submission scripts to a Slurm-family
// cluster scheduler.
package flowkit

import (
	"context"

	"github.com/flowkit/flowkit/internal/application/engine"
	"github.com/flowkit/flowkit/internal/domain"
)

// Job is a node in the workflow graph: a callable plus its resource,
// array, condition, and dependency annotations.
type Job = domain.Job

// JobID is a Job's stable identity.
type JobID = domain.JobID

// Callable0 is a non-array job body.
type Callable0 = domain.Callable0

// Callable1 is an array job body, invoked once per declared index.
type Callable1 = domain.Callable1

// EdgeStatus gates a dependency edge on the parent's outcome.
type EdgeStatus = domain.EdgeStatus

const (
	StatusSuccess = domain.StatusSuccess
	StatusFailure = domain.StatusFailure
	StatusAny     = domain.StatusAny
)

// WaitMode combines a job's dependency-edge outcomes.
type WaitMode = domain.WaitMode

const (
	WaitAll = domain.WaitAll
	WaitAny = domain.WaitAny
)

// Array is a job's index domain.
type Array = domain.Array

// NewJob registers fn under token and wraps it in a non-array Job named
// token. Panics are never involved: a duplicate token simply overwrites
// the previous registration, since re-declaring a job under the same
// token across repeated runs of the same program is the common case.
func NewJob(token string, fn Callable0) *Job {
	Register(token, fn)
	return domain.NewJob(token, fn)
}

// NewArrayJob is NewJob for an array job body, evaluated once per index
// in array.
func NewArrayJob(token string, fn Callable1, array Array) *Job {
	RegisterArray(token, fn)
	return domain.NewArrayJob(token, fn, array)
}

// Range builds a contiguous array domain [start, stop) advancing by
// step; step defaults to 1 when omitted.
func Range(start, stop int, step ...int) ArrayRange {
	s := 0
	if len(step) > 0 {
		s = step[0]
	}
	return domain.NewArrayRange(start, stop, s)
}

// ArrayRange is a contiguous array index domain.
type ArrayRange = domain.ArrayRange

// Set builds an enumerated array domain from explicit values, preserving
// order and dropping duplicates.
func Set(values ...int) ArraySet {
	return domain.NewArraySet(values)
}

// ArraySet is an enumerated array index domain.
type ArraySet = domain.ArraySet

// ScheduleLocal runs jobs cooperatively in-process, together with every
// job they depend on, and waits for the given jobs' results; pass
// TerminalSet(...) to run a whole graph. Like ScheduleCluster, it checks jobs for cycles and prunes
// already-done work before dispatch. It returns one Result per pruned
// job, in the pruned order — not necessarily one per argument, since a
// job already satisfied by its postconditions is skipped entirely.
func ScheduleLocal(ctx context.Context, cfg LocalConfig, jobs ...*Job) ([]Result, error) {
	if err := engine.CheckAcyclic(jobs...); err != nil {
		return nil, err
	}
	jobs = engine.Prune(jobs...)
	sched := engine.NewLocalScheduler(cfg)
	return sched.Gather(ctx, jobs...), nil
}

// Result is what a job's future resolves to.
type Result = engine.Result

// LocalConfig configures ScheduleLocal's backend.
type LocalConfig = engine.LocalConfig

// ScheduleCluster prunes jobs' graph, orders it topologically, and
// submits one script per remaining job to the cluster scheduler named by
// cfg.SubmitCommand, chaining dependency directives as parents are
// submitted. It returns the cluster-assigned id of every submitted job,
// keyed by job name.
func ScheduleCluster(ctx context.Context, cfg ClusterConfig, args []string, pipeline, version string, jobs ...*Job) (map[string]string, error) {
	sched, err := engine.NewClusterScheduler(cfg, args, pipeline, version)
	if err != nil {
		return nil, err
	}
	return sched.Run(ctx, jobs...)
}

// ClusterConfig configures ScheduleCluster's backend.
type ClusterConfig = engine.ClusterConfig

// Prune rewrites the graph reachable backward from jobs in place,
// collapsing disabled jobs, narrowing finished array jobs down to their
// pending indices, and trimming edges already satisfied under each
// job's wait mode. It returns jobs filtered down to those not already
// done.
func Prune(jobs ...*Job) []*Job {
	return engine.Prune(jobs...)
}

// CheckAcyclic reports a cyclic dependency reachable backward from jobs,
// or nil if there is none.
func CheckAcyclic(jobs ...*Job) error {
	return engine.CheckAcyclic(jobs...)
}

// TerminalSet returns the jobs reachable forward from jobs that have no
// children, i.e. the jobs a caller typically hands to ScheduleLocal or
// ScheduleCluster.
func TerminalSet(jobs ...*Job) []*Job {
	return engine.TerminalSet(jobs...)
}
