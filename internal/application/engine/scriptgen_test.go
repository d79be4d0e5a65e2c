package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowkit/flowkit/internal/domain"
)

func TestGenerateScript_NonArrayJobDirectives(t *testing.T) {
	job := domain.NewJob("train", func() (any, error) { return nil, nil })
	job.Settings.Set(domain.SettingCPUs, 4)
	job.Settings.Set(domain.SettingMemory, "8G")

	cfg := ClusterConfig{Shell: "/bin/bash", ProcessorCommand: "./processor"}.withDefaults()

	script, err := generateScript(job, cfg, "0", "/runs/logs", map[domain.JobID]string{})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(script, "#!/bin/bash\n"))
	assert.Contains(t, script, "#SBATCH --job-name=train")
	assert.Contains(t, script, "#SBATCH --cpus-per-task=4")
	assert.Contains(t, script, "#SBATCH --mem=8G")
	assert.Contains(t, script, "#SBATCH --output=/runs/logs/0_%j.log")
	assert.Contains(t, script, "./processor 0.pkl")
}

func TestGenerateScript_ArrayJobUsesArrayDirectiveAndIndexVar(t *testing.T) {
	job := domain.NewArrayJob("shard", func(int) (any, error) { return nil, nil }, domain.NewArrayRange(0, 10, 2))
	cfg := ClusterConfig{}.withDefaults()

	script, err := generateScript(job, cfg, "1", "/runs/logs", map[domain.JobID]string{})
	require.NoError(t, err)

	assert.Contains(t, script, "#SBATCH --array=0-8:2")
	assert.Contains(t, script, "/runs/logs/1_%j_%a.log")
	assert.Contains(t, script, "./processor 1.pkl $SLURM_ARRAY_TASK_ID")
}

func TestGenerateScript_DependencyDirectiveJoinsByWaitMode(t *testing.T) {
	a := domain.NewJob("a", func() (any, error) { return nil, nil })
	b := domain.NewJob("b", func() (any, error) { return nil, nil })
	child := domain.NewJob("child", func() (any, error) { return nil, nil })
	child.WaitMode = domain.WaitAny
	require.NoError(t, child.After(domain.StatusSuccess, a, b))
	require.NoError(t, a.AddPostcondition(domain.Cond0(func() bool { return false })))

	cfg := ClusterConfig{}.withDefaults()
	clusterIDs := map[domain.JobID]string{a.ID: "100", b.ID: "101"}

	script, err := generateScript(child, cfg, "2", "/runs/logs", clusterIDs)
	require.NoError(t, err)

	assert.Contains(t, script, "--dependency=afterok:100?afterok:101")
}

func TestGenerateScript_SkipsUnsubmittedParentsInDependencyDirective(t *testing.T) {
	a := domain.NewJob("a", func() (any, error) { return nil, nil })
	b := domain.NewJob("b", func() (any, error) { return nil, nil })
	child := domain.NewJob("child", func() (any, error) { return nil, nil })
	require.NoError(t, child.After(domain.StatusSuccess, a, b))

	cfg := ClusterConfig{}.withDefaults()
	clusterIDs := map[domain.JobID]string{a.ID: "100"}

	script, err := generateScript(child, cfg, "2", "/runs/logs", clusterIDs)
	require.NoError(t, err)

	assert.Contains(t, script, "--dependency=afterok:100")
	assert.NotContains(t, script, "?")
}

func TestArrayDirectiveValue_RangeAndSet(t *testing.T) {
	rangeVal, err := arrayDirectiveValue(domain.NewArrayRange(0, 6, 2))
	require.NoError(t, err)
	assert.Equal(t, "0-4:2", rangeVal)

	setVal, err := arrayDirectiveValue(domain.NewArraySet([]int{3, 1, 4}))
	require.NoError(t, err)
	assert.Equal(t, "3,1,4", setVal)
}

func TestAutoCondaActivation_PrefersJobSettingOverEnv(t *testing.T) {
	t.Setenv("CONDA_DEFAULT_ENV", "base")
	job := domain.NewJob("j", func() (any, error) { return nil, nil })
	job.Settings.Set(domain.SettingConda, "myenv")

	assert.Equal(t, "conda activate myenv", autoCondaActivation(job))
}

func TestAutoCondaActivation_FallsBackToEnvVar(t *testing.T) {
	t.Setenv("CONDA_DEFAULT_ENV", "base")
	job := domain.NewJob("j", func() (any, error) { return nil, nil })

	assert.Equal(t, "conda activate base", autoCondaActivation(job))
}
