package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowkit/flowkit/internal/domain"
	domainerrors "github.com/flowkit/flowkit/internal/domain/errors"
)

func TestLocalScheduler_DiamondDependencyRunsOnceEach(t *testing.T) {
	var aRuns, bRuns, cRuns int32

	a := domain.NewJob("a", func() (any, error) {
		atomic.AddInt32(&aRuns, 1)
		return 1, nil
	})
	b := domain.NewJob("b", func() (any, error) {
		atomic.AddInt32(&bRuns, 1)
		return 2, nil
	})
	c := domain.NewJob("c", func() (any, error) {
		atomic.AddInt32(&cRuns, 1)
		return 3, nil
	})
	d := domain.NewJob("d", func() (any, error) { return 4, nil })

	require.NoError(t, b.After(domain.StatusSuccess, a))
	require.NoError(t, c.After(domain.StatusSuccess, a))
	require.NoError(t, d.After(domain.StatusSuccess, b, c))

	sched := NewLocalScheduler(LocalConfig{})
	results := sched.Gather(context.Background(), d)

	require.Len(t, results, 1)
	assert.NoError(t, results[0].Err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&aRuns))
	assert.EqualValues(t, 1, atomic.LoadInt32(&bRuns))
	assert.EqualValues(t, 1, atomic.LoadInt32(&cRuns))
}

func TestLocalScheduler_FailureEdgeRunsOnlyWhenParentFailed(t *testing.T) {
	failing := domain.NewJob("failing", func() (any, error) {
		return nil, errors.New("boom")
	})
	cleanup := domain.NewJob("cleanup", func() (any, error) { return "cleaned", nil })
	require.NoError(t, cleanup.After(domain.StatusFailure, failing))

	sched := NewLocalScheduler(LocalConfig{})
	result := sched.Submit(context.Background(), cleanup)

	assert.NoError(t, result.Err)
	assert.Equal(t, "cleaned", result.Value)
}

func TestLocalScheduler_FailureEdgeFailsWhenParentSucceeds(t *testing.T) {
	succeeds := domain.NewJob("succeeds", func() (any, error) { return "ok", nil })
	cleanup := domain.NewJob("cleanup", func() (any, error) { return "cleaned", nil })
	require.NoError(t, cleanup.After(domain.StatusFailure, succeeds))

	sched := NewLocalScheduler(LocalConfig{})
	result := sched.Submit(context.Background(), cleanup)

	require.Error(t, result.Err)
	var depErr *domainerrors.DependencyNeverSatisfiedError
	assert.ErrorAs(t, result.Err, &depErr)
	var notFailed *domainerrors.JobNotFailedError
	assert.ErrorAs(t, result.Err, &notFailed)
}

func TestLocalScheduler_WaitAnySucceedsOnFirstResolvedParent(t *testing.T) {
	slow := domain.NewJob("slow", func() (any, error) {
		return nil, errors.New("never finishes in time")
	})
	fast := domain.NewJob("fast", func() (any, error) { return "fast-value", nil })

	child := domain.NewJob("child", func() (any, error) { return "child-ran", nil })
	child.WaitMode = domain.WaitAny
	require.NoError(t, child.After(domain.StatusSuccess, slow, fast))

	sched := NewLocalScheduler(LocalConfig{})
	result := sched.Submit(context.Background(), child)

	assert.NoError(t, result.Err)
	assert.Equal(t, "child-ran", result.Value)
}

func TestLocalScheduler_WaitAnyFailsWhenAllParentsFail(t *testing.T) {
	a := domain.NewJob("a", func() (any, error) { return nil, errors.New("a failed") })
	b := domain.NewJob("b", func() (any, error) { return nil, errors.New("b failed") })

	child := domain.NewJob("child", func() (any, error) { return nil, nil })
	child.WaitMode = domain.WaitAny
	require.NoError(t, child.After(domain.StatusSuccess, a, b))

	sched := NewLocalScheduler(LocalConfig{})
	result := sched.Submit(context.Background(), child)

	assert.Error(t, result.Err)
}

func TestLocalScheduler_ArrayJobRunsEveryIndex(t *testing.T) {
	var seen atomic.Int64
	job := domain.NewArrayJob("arr", func(i int) (any, error) {
		seen.Add(1)
		return i * i, nil
	}, domain.NewArrayRange(0, 4, 1))

	sched := NewLocalScheduler(LocalConfig{})
	result := sched.Submit(context.Background(), job)

	require.NoError(t, result.Err)
	assert.Equal(t, []any{0, 1, 4, 9}, result.Value)
	assert.EqualValues(t, 4, seen.Load())
}

func TestLocalScheduler_PreconditionViolationFailsWithoutRunningBody(t *testing.T) {
	ran := false
	job := domain.NewJob("guarded", func() (any, error) {
		ran = true
		return nil, nil
	})
	require.NoError(t, job.AddPrecondition(domain.Cond0(func() bool { return false })))

	sched := NewLocalScheduler(LocalConfig{})
	result := sched.Submit(context.Background(), job)

	assert.Error(t, result.Err)
	assert.False(t, ran)
	var precErr *domainerrors.PreconditionViolatedError
	assert.ErrorAs(t, result.Err, &precErr)
}

func TestLocalScheduler_PanicInBodySurfacesAsError(t *testing.T) {
	job := domain.NewJob("panics", func() (any, error) {
		panic("kaboom")
	})

	sched := NewLocalScheduler(LocalConfig{})
	result := sched.Submit(context.Background(), job)

	assert.Error(t, result.Err)
}

func TestLocalScheduler_SharedDependencyOutlivesSiblingResolvedByWaitAny(t *testing.T) {
	dStarted := make(chan struct{})
	dRelease := make(chan struct{})
	d := domain.NewJob("d", func() (any, error) {
		close(dStarted)
		<-dRelease
		return "d-value", nil
	})
	e := domain.NewJob("e", func() (any, error) { return "e-value", nil })

	b := domain.NewJob("b", func() (any, error) { return "b-ran", nil })
	b.WaitMode = domain.WaitAny
	require.NoError(t, b.After(domain.StatusSuccess, d, e))

	c := domain.NewJob("c", func() (any, error) { return "c-ran", nil })
	require.NoError(t, c.After(domain.StatusSuccess, d))

	sched := NewLocalScheduler(LocalConfig{})

	bDone := make(chan Result, 1)
	cDone := make(chan Result, 1)
	go func() { bDone <- sched.Submit(context.Background(), b) }()
	go func() { cDone <- sched.Submit(context.Background(), c) }()

	<-dStarted
	// Give b's WaitAny time to resolve via e and return, which used to
	// cancel d's still-running goroutine out from under c.
	time.Sleep(20 * time.Millisecond)
	close(dRelease)

	bResult := <-bDone
	cResult := <-cDone
	require.NoError(t, bResult.Err)
	require.NoError(t, cResult.Err)
	assert.Equal(t, "c-ran", cResult.Value)

	dResult := sched.Submit(context.Background(), d)
	require.NoError(t, dResult.Err)
	assert.Equal(t, "d-value", dResult.Value)
}

func TestLocalScheduler_GatherPreservesArgumentOrder(t *testing.T) {
	a := domain.NewJob("a", func() (any, error) { return "a", nil })
	b := domain.NewJob("b", func() (any, error) { return "b", nil })

	sched := NewLocalScheduler(LocalConfig{})
	results := sched.Gather(context.Background(), b, a)

	require.Len(t, results, 2)
	assert.Equal(t, "b", results[0].Value)
	assert.Equal(t, "a", results[1].Value)
}
