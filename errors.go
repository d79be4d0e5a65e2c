package flowkit

import domainerrors "github.com/flowkit/flowkit/internal/domain/errors"

// CyclicGraphError is returned when a workflow's dependency graph
// contains a cycle.
type CyclicGraphError = domainerrors.CyclicGraphError

// DependencyNeverSatisfiedError means a job could not run because its
// gating predicate over its parents' edges could never hold.
type DependencyNeverSatisfiedError = domainerrors.DependencyNeverSatisfiedError

// JobNotFailedError is returned by a `failure`-status edge whose parent
// completed successfully.
type JobNotFailedError = domainerrors.JobNotFailedError

// PreconditionViolatedError means a job's preconditions did not hold
// before its body ran.
type PreconditionViolatedError = domainerrors.PreconditionViolatedError

// PostconditionViolatedError means a job's postconditions did not hold
// after its body ran.
type PostconditionViolatedError = domainerrors.PostconditionViolatedError

// SubmissionFailedError means the cluster backend's submission command
// returned a non-zero exit status.
type SubmissionFailedError = domainerrors.SubmissionFailedError
