package engine

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/flowkit/flowkit/internal/domain"
)

// ClusterConfig configures the cluster emitter.
type ClusterConfig struct {
	// BaseDir is the base directory under which run directories are
	// created. Defaults to ".workflows".
	BaseDir string
	// RunName defaults to a YYMMDD_HHMMSS timestamp.
	RunName string
	// Shell is the shebang interpreter. Defaults to $SHELL, then /bin/sh.
	Shell string
	// DirectiveMarker prefixes directive lines. Defaults to "#SBATCH ".
	DirectiveMarker string
	// GlobalSettings are scheduler-wide directives, overridden per-job.
	GlobalSettings *domain.Settings
	// GlobalEnv is scheduler-wide preamble, used when a job sets none.
	GlobalEnv []string
	// SubmitCommand is the executable invoked to submit a script.
	// Defaults to "sbatch".
	SubmitCommand string
	// ArrayIndexVar is the shell variable expanded to the current array
	// task id, appended to the processor invocation line. Defaults to
	// "$SLURM_ARRAY_TASK_ID".
	ArrayIndexVar string
	// ProcessorCommand is the subordinate-processor invocation prefix,
	// e.g. "./processor" or "python -m myapp.processor".
	ProcessorCommand string

	Observer Observer
}

func (c ClusterConfig) withDefaults() ClusterConfig {
	if c.BaseDir == "" {
		c.BaseDir = ".workflows"
	}
	if c.Shell == "" {
		if sh := os.Getenv("SHELL"); sh != "" {
			c.Shell = sh
		} else {
			c.Shell = "/bin/sh"
		}
	}
	if c.DirectiveMarker == "" {
		c.DirectiveMarker = "#SBATCH "
	}
	if c.SubmitCommand == "" {
		c.SubmitCommand = ClusterSubmitExecutable
	}
	if c.ArrayIndexVar == "" {
		c.ArrayIndexVar = "$SLURM_ARRAY_TASK_ID"
	}
	if c.ProcessorCommand == "" {
		c.ProcessorCommand = "./processor"
	}
	if c.Observer == nil {
		c.Observer = NopObserver{}
	}
	return c
}

// jobDependencyKeyword maps an edge status to the cluster's dependency
// token keyword.
var jobDependencyKeyword = map[domain.EdgeStatus]string{
	domain.StatusSuccess: "afterok",
	domain.StatusFailure: "afternotok",
	domain.StatusAny:     "afterany",
}

// generateScript renders a job's submission script. clusterIDs
// holds the already-submitted cluster-assigned ids of job's parents,
// keyed by JobID; generateScript is only ever called on a job whose
// parents have already been submitted (topological order).
func generateScript(job *domain.Job, cfg ClusterConfig, displayID string, logDir string, clusterIDs map[domain.JobID]string) (string, error) {
	var lines []string

	lines = append(lines, "#!"+cfg.Shell)
	lines = append(lines, strings.TrimRight(cfg.DirectiveMarker, " "))
	lines = append(lines, cfg.DirectiveMarker+"--job-name="+job.Name())

	var logFile string
	if job.IsArray() {
		arrayDirective, err := arrayDirectiveValue(job.Array())
		if err != nil {
			return "", err
		}
		lines = append(lines, cfg.DirectiveMarker+"--array="+arrayDirective)
		logFile = fmt.Sprintf("%s/%s_%%j_%%a.log", logDir, displayID)
	} else {
		logFile = fmt.Sprintf("%s/%s_%%j.log", logDir, displayID)
	}
	lines = append(lines, cfg.DirectiveMarker+"--output="+logFile)
	lines = append(lines, strings.TrimRight(cfg.DirectiveMarker, " "))

	settings := cfg.GlobalSettings.Merge(job.Settings)
	var settingLines []string
	for _, key := range settings.Keys() {
		value, _ := settings.Get(key)
		directive := domain.DirectiveKey(key)
		if value == nil {
			settingLines = append(settingLines, cfg.DirectiveMarker+"--"+directive)
			continue
		}
		settingLines = append(settingLines, fmt.Sprintf("%s--%s=%v", cfg.DirectiveMarker, directive, value))
	}
	if len(settingLines) > 0 {
		lines = append(lines, settingLines...)
		lines = append(lines, strings.TrimRight(cfg.DirectiveMarker, " "))
	}

	if depLine := dependencyDirective(job, cfg, clusterIDs); depLine != "" {
		lines = append(lines, depLine, strings.TrimRight(cfg.DirectiveMarker, " "))
	}

	lines = append(lines,
		cfg.DirectiveMarker+"--export=ALL",
		cfg.DirectiveMarker+"--parsable",
		cfg.DirectiveMarker+"--requeue",
		"",
	)

	env := job.Env
	if len(env) == 0 {
		env = cfg.GlobalEnv
	}
	if env == nil {
		if condaLine := autoCondaActivation(job); condaLine != "" {
			env = []string{condaLine}
		}
	}
	if len(env) > 0 {
		lines = append(lines, env...)
		lines = append(lines, "")
	}

	lines = append(lines, invocationLine(job, cfg, displayID), "")

	return strings.Join(lines, "\n"), nil
}

// arrayDirectiveValue renders "start-last:step" for a contiguous range,
// where last is the range's final index, and "i1,i2,…" for an
// enumerated set.
func arrayDirectiveValue(array domain.Array) (string, error) {
	switch a := array.(type) {
	case domain.ArrayRange:
		last := a.Start + (a.Len()-1)*a.Step
		return fmt.Sprintf("%d-%d:%d", a.Start, last, a.Step), nil
	case domain.ArraySet:
		parts := make([]string, len(a.Values))
		for i, v := range a.Values {
			parts[i] = strconv.Itoa(v)
		}
		return strings.Join(parts, ","), nil
	default:
		return "", fmt.Errorf("unsupported array domain %T", array)
	}
}

// dependencyDirective renders one dependency directive line joining
// per-parent keyword:id tokens with "," for wait_mode all, "?" for
// wait_mode any.
func dependencyDirective(job *domain.Job, cfg ClusterConfig, clusterIDs map[domain.JobID]string) string {
	parents := job.ParentJobs()
	if len(parents) == 0 {
		return ""
	}

	type submittedParent struct {
		id     string
		status domain.EdgeStatus
	}
	var submitted []submittedParent
	for parent, status := range parents {
		id, ok := clusterIDs[parent.ID]
		if !ok {
			continue
		}
		submitted = append(submitted, submittedParent{id: id, status: status})
	}
	if len(submitted) == 0 {
		return ""
	}
	sort.Slice(submitted, func(i, j int) bool { return submitted[i].id < submitted[j].id })

	tokens := make([]string, len(submitted))
	for i, p := range submitted {
		tokens[i] = fmt.Sprintf("%s:%s", jobDependencyKeyword[p.status], p.id)
	}

	separator := ","
	if job.WaitMode == domain.WaitAny {
		separator = "?"
	}
	return cfg.DirectiveMarker + "--dependency=" + strings.Join(tokens, separator)
}

// invocationLine builds the subordinate-processor command that loads
// and runs job's serialized callable, appending the array index
// variable for array jobs.
func invocationLine(job *domain.Job, cfg ClusterConfig, displayID string) string {
	pklPath := displayID + ".pkl"
	if !job.IsArray() {
		return fmt.Sprintf("%s %s", cfg.ProcessorCommand, pklPath)
	}
	return fmt.Sprintf("%s %s %s", cfg.ProcessorCommand, pklPath, cfg.ArrayIndexVar)
}

// autoCondaActivation falls back to the currently-active conda/venv
// environment when a job declares none of its own: when a job declares
// no conda environment and no explicit env lines, the currently-active
// environment (read from the process environment) is injected as an
// activation line rather than a scheduler directive, since there is no
// native Slurm flag for it.
func autoCondaActivation(job *domain.Job) string {
	if v, ok := job.Settings.Get(domain.SettingConda); ok {
		return fmt.Sprintf("conda activate %v", v)
	}
	if env := os.Getenv("CONDA_DEFAULT_ENV"); env != "" {
		return "conda activate " + env
	}
	if venv := os.Getenv("VIRTUAL_ENV"); venv != "" {
		return "source " + venv + "/bin/activate"
	}
	return ""
}
