package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJob_AfterRejectsSelfLoop(t *testing.T) {
	a := NewJob("a", func() (any, error) { return nil, nil })
	err := a.After(StatusSuccess, a)
	assert.Error(t, err)
}

func TestJob_AfterMergesLookupTables(t *testing.T) {
	a := NewJob("a", func() (any, error) { return nil, nil })
	b := NewJob("b", func() (any, error) { return nil, nil })

	require.NoError(t, b.After(StatusSuccess, a))

	parent, ok := b.ByID(a.ID)
	assert.True(t, ok)
	assert.Same(t, a, parent)

	children := a.ChildJobs()
	assert.Len(t, children, 1)
	assert.Contains(t, children, b)
}

func TestJob_AdoptMergesThreeSeparateSubgraphs(t *testing.T) {
	a := NewJob("a", func() (any, error) { return nil, nil })
	b := NewJob("b", func() (any, error) { return nil, nil })
	c := NewJob("c", func() (any, error) { return nil, nil })

	require.NoError(t, b.After(StatusSuccess, a))
	require.NoError(t, c.After(StatusSuccess, b))

	_, ok := c.ByID(a.ID)
	assert.True(t, ok, "c should resolve a transitively once both edges merge the lookup table")
}

func TestJob_CheckArityRejectsIndexedConditionOnNonArrayJob(t *testing.T) {
	a := NewJob("a", func() (any, error) { return nil, nil })
	err := a.AddPrecondition(Cond1(func(int) bool { return true }))
	assert.Error(t, err)
}

func TestJob_DoneRequiresAtLeastOnePostcondition(t *testing.T) {
	a := NewJob("a", func() (any, error) { return nil, nil })
	assert.False(t, a.Done())
}

func TestJob_DoneEvaluatesAllPostconditions(t *testing.T) {
	a := NewJob("a", func() (any, error) { return nil, nil })
	calls := 0
	require.NoError(t, a.AddPostcondition(Cond0(func() bool { calls++; return true })))
	require.NoError(t, a.AddPostcondition(Cond0(func() bool { calls++; return false })))

	assert.False(t, a.Done())
	assert.Equal(t, 2, calls)
}

func TestJob_ArrayDoneRequiresEveryIndex(t *testing.T) {
	done := map[int]bool{0: true, 1: false, 2: true}
	job := NewArrayJob("arr", func(int) (any, error) { return nil, nil }, NewArrayRange(0, 3, 1))
	require.NoError(t, job.AddPostcondition(Cond1(func(i int) bool { return done[i] })))

	assert.False(t, job.Done())
	assert.True(t, job.DoneAt(0))
	assert.False(t, job.DoneAt(1))
}

func TestJob_ReattachParentPreservesStatus(t *testing.T) {
	a := NewJob("a", func() (any, error) { return nil, nil })
	b := NewJob("b", func() (any, error) { return nil, nil })

	b.ReattachParent(a, StatusFailure)

	parents := b.Parents()
	assert.Equal(t, StatusFailure, parents[a.ID])
}

func TestJob_RemoveParentIsMutual(t *testing.T) {
	a := NewJob("a", func() (any, error) { return nil, nil })
	b := NewJob("b", func() (any, error) { return nil, nil })
	require.NoError(t, b.After(StatusSuccess, a))

	b.RemoveParent(a)

	assert.Empty(t, b.Parents())
	assert.Empty(t, a.Children())
}

func TestJob_SetArrayPanicsOnNonArrayJob(t *testing.T) {
	a := NewJob("a", func() (any, error) { return nil, nil })
	assert.Panics(t, func() { a.SetArray(NewArraySet([]int{0})) })
}
