package flowkit

import "github.com/flowkit/flowkit/internal/domain"

// After declares that job depends on each of deps, gated by status. It
// is an error for a job to depend on itself.
func After(job *Job, status EdgeStatus, deps ...*Job) error {
	return job.After(status, deps...)
}

// Require adds a precondition job's body won't run without. cond takes
// no argument; on an array job it is evaluated once per index without
// seeing the index. Use RequireAt for an indexed predicate.
func Require(job *Job, cond func() bool) error {
	return job.AddPrecondition(domain.Cond0(cond))
}

// RequireAt adds an indexed precondition to an array job.
func RequireAt(job *Job, cond func(int) bool) error {
	return job.AddPrecondition(domain.Cond1(cond))
}

// Ensure adds a postcondition that marks job done once satisfied,
// letting a later invocation of the same program skip it.
func Ensure(job *Job, cond func() bool) error {
	return job.AddPostcondition(domain.Cond0(cond))
}

// EnsureAt adds an indexed postcondition to an array job.
func EnsureAt(job *Job, cond func(int) bool) error {
	return job.AddPostcondition(domain.Cond1(cond))
}

// RequireCond adds a precondition already built as a domain.Condition,
// e.g. by Expr/ExprAt.
func RequireCond(job *Job, cond domain.Condition) error {
	return job.AddPrecondition(cond)
}

// EnsureCond adds a postcondition already built as a domain.Condition,
// e.g. by Expr/ExprAt.
func EnsureCond(job *Job, cond domain.Condition) error {
	return job.AddPostcondition(cond)
}

// Disable marks job disabled: the pruner bypasses it, re-homing its
// dependents directly onto its own parents.
func Disable(job *Job) {
	job.Disabled = true
}

// SetWaitMode overrides job's dependency combination mode. Jobs default
// to WaitAll.
func SetWaitMode(job *Job, mode WaitMode) {
	job.WaitMode = mode
}

// Name overrides job's display name, used as its cluster script/log
// filename stem when unique within a run.
func Name(job *Job, name string) {
	job.SetName(name)
}

// Env sets job's environment preamble lines, emitted verbatim before its
// invocation line in a generated cluster script.
func Env(job *Job, lines ...string) {
	job.Env = lines
}

// Cpus sets the per-task CPU count directive.
func Cpus(job *Job, n int) {
	job.Settings.Set(domain.SettingCPUs, n)
}

// Gpus sets the per-task GPU count directive.
func Gpus(job *Job, n int) {
	job.Settings.Set(domain.SettingGPUs, n)
}

// Memory sets the memory directive, e.g. "4G".
func Memory(job *Job, amount string) {
	job.Settings.Set(domain.SettingMemory, amount)
}

// Timelimit sets the wall-clock time limit directive, e.g. "01:00:00".
func Timelimit(job *Job, limit string) {
	job.Settings.Set(domain.SettingTimeLimit, limit)
}

// Partition sets the scheduler partition/queue directive.
func Partition(job *Job, partition string) {
	job.Settings.Set(domain.SettingPartition, partition)
}

// Chdir sets the working directory directive.
func Chdir(job *Job, dir string) {
	job.Settings.Set(domain.SettingChdir, dir)
}

// Conda sets the conda environment a generated cluster script activates
// before invoking job's processor command. The activation line is only
// added when neither job.Env nor the cluster config's GlobalEnv supplies
// preamble lines.
func Conda(job *Job, env string) {
	job.Settings.Set(domain.SettingConda, env)
}

// Setting sets an arbitrary passthrough scheduler directive, rewritten
// as `--<key>[=<value>]` verbatim if key has no dedicated rewrite.
func Setting(job *Job, key string, value any) {
	job.Settings.Set(key, value)
}
