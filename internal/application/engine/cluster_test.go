package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowkit/flowkit/internal/domain"
)

func TestClusterScheduler_RunSubmitsInTopologicalOrderAndWritesArtifacts(t *testing.T) {
	base := t.TempDir()

	a := newJob("a")
	b := newJob("b")
	require.NoError(t, b.After(domain.StatusSuccess, a))

	sched, err := NewClusterScheduler(ClusterConfig{
		BaseDir:       base,
		RunName:       "run1",
		SubmitCommand: "echo",
	}, []string{"pipeline"}, "demo", "1.0.0")
	require.NoError(t, err)

	ids, err := sched.Run(context.Background(), b)
	require.NoError(t, err)

	assert.Contains(t, ids, "a")
	assert.Contains(t, ids, "b")

	runDir := sched.RunDir()
	assert.FileExists(t, filepath.Join(runDir, "metadata.json"))
	assert.FileExists(t, filepath.Join(runDir, "job_identifiers"))
	assert.FileExists(t, filepath.Join(runDir, "postconditions"))
	assert.FileExists(t, filepath.Join(runDir, "a.sh"))
	assert.FileExists(t, filepath.Join(runDir, "a.pkl"))
	assert.FileExists(t, filepath.Join(runDir, "b.sh"))

	bScript, err := os.ReadFile(filepath.Join(runDir, "b.sh"))
	require.NoError(t, err)
	assert.Contains(t, string(bScript), "--dependency=afterok:"+ids["a"])
}

func TestClusterScheduler_SubmissionFailureStopsRun(t *testing.T) {
	base := t.TempDir()
	a := newJob("a")

	sched, err := NewClusterScheduler(ClusterConfig{
		BaseDir:       base,
		RunName:       "run1",
		SubmitCommand: "false",
	}, nil, "demo", "1.0.0")
	require.NoError(t, err)

	_, err = sched.Run(context.Background(), a)
	assert.Error(t, err)
}
