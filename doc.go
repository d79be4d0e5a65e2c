// Package flowkit declares directed acyclic graphs of jobs — arbitrary
// Go callables plus resource settings, array domains, and
// success/failure/any-gated dependency edges — and runs them either
// in-process (ScheduleLocal) or by emitting one submission script per
// job to a Slurm-family cluster scheduler (ScheduleCluster).
//
// A minimal pipeline:
//
//	a := flowkit.NewJob("a", func() (any, error) { return 1, nil })
//	b := flowkit.NewJob("b", func() (any, error) { return 2, nil })
//	c := flowkit.NewJob("c", func() (any, error) { return nil, nil })
//	flowkit.After(c, flowkit.StatusSuccess, a, b)
//
//	results, err := flowkit.ScheduleLocal(ctx, flowkit.LocalConfig{}, flowkit.TerminalSet(a, b, c)...)
//
// Submitting the same graph to a cluster instead requires every job
// body to be registered under a stable token (NewJob/NewArrayJob do
// this automatically) so the subordinate processor built from
// cmd/processor can resolve it back to a callable after submission.
package flowkit
