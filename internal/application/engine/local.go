package engine

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog"

	"github.com/flowkit/flowkit/internal/domain"
	domainerrors "github.com/flowkit/flowkit/internal/domain/errors"
)

// Result is what a job's future resolves to. Err is non-nil exactly when
// the job's condition chain could not be satisfied, a pre/postcondition
// failed, or the user body returned an error — the local backend never
// propagates these as a panic out of the dispatcher; they are the
// future's value, so downstream failure/any edges can observe them.
type Result struct {
	Value any
	Err   error
}

// LocalConfig configures the local scheduler.
type LocalConfig struct {
	// MaxWorkers bounds the worker pool blocking user bodies run on.
	// Defaults to runtime.GOMAXPROCS(0)*4.
	MaxWorkers int
	Logger     zerolog.Logger
	Observer   Observer
}

func (c LocalConfig) withDefaults() LocalConfig {
	if c.MaxWorkers <= 0 {
		c.MaxWorkers = runtime.GOMAXPROCS(0) * 4
	}
	if c.Observer == nil {
		c.Observer = NopObserver{}
	}
	return c
}

// jobFuture memoizes a single job's eventual Result behind a channel
// closed exactly once, so every caller of submit for the same job shares
// one in-flight computation.
type jobFuture struct {
	once   sync.Once
	done   chan struct{}
	result Result
}

func newJobFuture() *jobFuture {
	return &jobFuture{done: make(chan struct{})}
}

func (f *jobFuture) resolve(r Result) {
	f.once.Do(func() {
		f.result = r
		close(f.done)
	})
}

// LocalScheduler is the cooperative local execution backend. A single
// LocalScheduler instance corresponds to one schedule() call: its
// futures table is not meant to be reused across runs.
type LocalScheduler struct {
	cfg         LocalConfig
	submissions *xsync.MapOf[domain.JobID, *jobFuture]
	workers     chan struct{}

	rootOnce sync.Once
	rootCtx  context.Context
}

// NewLocalScheduler builds a LocalScheduler.
func NewLocalScheduler(cfg LocalConfig) *LocalScheduler {
	cfg = cfg.withDefaults()
	return &LocalScheduler{
		cfg:         cfg,
		submissions: xsync.NewMapOf[domain.JobID, *jobFuture](),
		workers:     make(chan struct{}, cfg.MaxWorkers),
	}
}

// Gather concurrently submits every job and returns their Results in
// argument order.
func (s *LocalScheduler) Gather(ctx context.Context, jobs ...*domain.Job) []Result {
	results := make([]Result, len(jobs))
	var wg sync.WaitGroup
	wg.Add(len(jobs))
	for i, j := range jobs {
		go func(i int, j *domain.Job) {
			defer wg.Done()
			results[i] = s.Submit(ctx, j)
		}(i, j)
	}
	wg.Wait()
	return results
}

// Submit runs (or awaits, if already in flight) job's future and returns
// its Result. Safe to call concurrently and repeatedly for the same job;
// the body runs at most once.
//
// ctx only governs how long this particular call is willing to wait for
// the result — the job's own execution runs under the scheduler's root
// context (fixed by whichever call reaches the scheduler first), so a
// job shared by several dependents keeps running for the others even
// after one caller's wait is cancelled.
func (s *LocalScheduler) Submit(ctx context.Context, job *domain.Job) Result {
	root := s.ensureRootCtx(ctx)
	future, loaded := s.submissions.LoadOrStore(job.ID, newJobFuture())
	if !loaded {
		go s.run(root, job, future)
	}
	select {
	case <-future.done:
		return future.result
	case <-ctx.Done():
		return Result{Err: ctx.Err()}
	}
}

// ensureRootCtx fixes the scheduler's root context to whichever ctx the
// first caller (Gather or a direct Submit) passed in.
func (s *LocalScheduler) ensureRootCtx(ctx context.Context) context.Context {
	s.rootOnce.Do(func() { s.rootCtx = ctx })
	return s.rootCtx
}

func (s *LocalScheduler) run(ctx context.Context, job *domain.Job, future *jobFuture) {
	future.resolve(s.execute(ctx, job))
}

// condition awaits a single parent under a gating status, resolving it
// per the parent's edge status.
func (s *LocalScheduler) condition(ctx context.Context, parent *domain.Job, status domain.EdgeStatus) (any, error) {
	result := s.Submit(ctx, parent)

	if result.Err != nil {
		if status == domain.StatusSuccess {
			return nil, result.Err
		}
		return nil, nil
	}

	if status == domain.StatusFailure {
		return nil, &domainerrors.JobNotFailedError{Parent: parent.Name()}
	}
	return result.Value, nil
}

type conditionOutcome struct {
	err error
}

// execute runs job's full lifecycle: wait on dependency conditions per
// its wait mode, then its body.
func (s *LocalScheduler) execute(parentCtx context.Context, job *domain.Job) Result {
	parents := job.ParentJobs()

	condCtx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	outcomes := make(chan conditionOutcome, len(parents))
	for parent, status := range parents {
		parent, status := parent, status
		go func() {
			_, err := s.condition(condCtx, parent, status)
			select {
			case outcomes <- conditionOutcome{err: err}:
			case <-condCtx.Done():
			}
		}()
	}

	if err := s.awaitConditions(condCtx, job, outcomes, len(parents)); err != nil {
		s.cfg.Observer.OnJobFailed(job, err)
		return Result{Err: err}
	}

	return s.runBody(parentCtx, job)
}

// awaitConditions blocks until job's wait mode is satisfied (or proven
// unsatisfiable). For WaitAny it cancels the remaining condition
// goroutines as soon as the first succeeds.
func (s *LocalScheduler) awaitConditions(ctx context.Context, job *domain.Job, outcomes <-chan conditionOutcome, n int) error {
	if n == 0 {
		return nil
	}

	var lastErr error
	received := 0

	for received < n {
		select {
		case o := <-outcomes:
			received++
			if o.err == nil {
				if job.WaitMode == domain.WaitAny {
					return nil
				}
				continue
			}
			lastErr = o.err
			if job.WaitMode == domain.WaitAll {
				return &domainerrors.DependencyNeverSatisfiedError{Job: job.Name(), Cause: lastErr}
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	// All conditions observed; for WaitAny that means every one raised.
	if job.WaitMode == domain.WaitAny {
		return &domainerrors.DependencyNeverSatisfiedError{Job: job.Name(), Cause: lastErr}
	}
	return nil
}

// runBody executes the job's preconditions, body, and postconditions,
// running the user callable on the bounded worker pool.
func (s *LocalScheduler) runBody(ctx context.Context, job *domain.Job) Result {
	s.cfg.Observer.OnJobStarted(job)

	if job.IsArray() {
		return s.runArrayBody(ctx, job)
	}

	if err := checkPreconditions(job, nil); err != nil {
		s.cfg.Observer.OnJobFailed(job, err)
		return Result{Err: err}
	}

	value, err := s.runOnWorker(ctx, func() (any, error) {
		return job.Fn0()()
	})
	if err != nil {
		s.cfg.Observer.OnJobFailed(job, err)
		return Result{Err: err}
	}

	if err := checkPostconditions(job, nil); err != nil {
		s.cfg.Observer.OnJobFailed(job, err)
		return Result{Err: err}
	}

	s.cfg.Observer.OnJobCompleted(job, value)
	return Result{Value: value}
}

func (s *LocalScheduler) runArrayBody(ctx context.Context, job *domain.Job) Result {
	indices := job.Array().Indices()
	values := make([]any, len(indices))
	errs := make([]error, len(indices))

	var wg sync.WaitGroup
	wg.Add(len(indices))
	for pos, i := range indices {
		pos, i := pos, i
		go func() {
			defer wg.Done()
			if err := checkPreconditions(job, &i); err != nil {
				errs[pos] = err
				return
			}
			v, err := s.runOnWorker(ctx, func() (any, error) {
				return job.Fn1()(i)
			})
			if err != nil {
				errs[pos] = err
				return
			}
			if err := checkPostconditions(job, &i); err != nil {
				errs[pos] = err
				return
			}
			values[pos] = v
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			s.cfg.Observer.OnJobFailed(job, err)
			return Result{Err: err}
		}
	}

	s.cfg.Observer.OnJobCompleted(job, values)
	return Result{Value: values}
}

// runOnWorker runs fn on the bounded worker pool, so blocking user code
// doesn't stall the dispatcher's goroutines.
func (s *LocalScheduler) runOnWorker(ctx context.Context, fn func() (any, error)) (any, error) {
	select {
	case s.workers <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-s.workers }()

	type outcome struct {
		value any
		err   error
	}
	out := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				out <- outcome{err: fmt.Errorf("job body panicked: %v", r)}
			}
		}()
		v, err := fn()
		out <- outcome{value: v, err: err}
	}()

	select {
	case o := <-out:
		return o.value, o.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func checkPreconditions(job *domain.Job, index *int) error {
	for _, c := range job.Preconditions() {
		ok := conditionHolds(c, index)
		if !ok {
			return &domainerrors.PreconditionViolatedError{Job: job.Name(), Index: index}
		}
	}
	return nil
}

func checkPostconditions(job *domain.Job, index *int) error {
	for _, c := range job.Postconditions() {
		if !conditionHolds(c, index) {
			return &domainerrors.PostconditionViolatedError{Job: job.Name(), Index: index}
		}
	}
	return nil
}

func conditionHolds(c domain.Condition, index *int) bool {
	if index != nil {
		return c.EvalAt(*index)
	}
	return c.Eval()
}
