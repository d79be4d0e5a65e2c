// Package monitoring provides zerolog-backed implementations of
// engine.Observer and a fan-out manager for combining several of them
// over a single run.
package monitoring

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/flowkit/flowkit/internal/domain"
)

// ObserverManager fans a single notification out to every registered
// observer. Safe for concurrent use and concurrent registration.
type ObserverManager struct {
	mu        sync.RWMutex
	observers []Observer
}

// Observer mirrors engine.Observer; defined again here rather than
// imported so this package does not depend on application/engine.
// Implementations satisfy engine.Observer as well, since the method sets
// are identical.
type Observer interface {
	OnJobStarted(job *domain.Job)
	OnJobCompleted(job *domain.Job, value any)
	OnJobFailed(job *domain.Job, err error)
	OnJobPruned(job *domain.Job)
	OnJobSubmitted(job *domain.Job, clusterID string)
}

// NewObserverManager returns an empty ObserverManager.
func NewObserverManager() *ObserverManager {
	return &ObserverManager{}
}

// Add registers an observer.
func (m *ObserverManager) Add(o Observer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, o)
}

func (m *ObserverManager) snapshot() []Observer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Observer, len(m.observers))
	copy(out, m.observers)
	return out
}

func (m *ObserverManager) OnJobStarted(job *domain.Job) {
	for _, o := range m.snapshot() {
		o.OnJobStarted(job)
	}
}

func (m *ObserverManager) OnJobCompleted(job *domain.Job, value any) {
	for _, o := range m.snapshot() {
		o.OnJobCompleted(job, value)
	}
}

func (m *ObserverManager) OnJobFailed(job *domain.Job, err error) {
	for _, o := range m.snapshot() {
		o.OnJobFailed(job, err)
	}
}

func (m *ObserverManager) OnJobPruned(job *domain.Job) {
	for _, o := range m.snapshot() {
		o.OnJobPruned(job)
	}
}

func (m *ObserverManager) OnJobSubmitted(job *domain.Job, clusterID string) {
	for _, o := range m.snapshot() {
		o.OnJobSubmitted(job, clusterID)
	}
}

// ZerologObserver logs every job lifecycle event through a zerolog.Logger.
type ZerologObserver struct {
	log zerolog.Logger
}

// NewZerologObserver wraps an existing zerolog.Logger.
func NewZerologObserver(logger zerolog.Logger) *ZerologObserver {
	return &ZerologObserver{log: logger}
}

func (z *ZerologObserver) OnJobStarted(job *domain.Job) {
	z.log.Info().Str("job", job.Name()).Bool("array", job.IsArray()).Msg("job started")
}

func (z *ZerologObserver) OnJobCompleted(job *domain.Job, value any) {
	z.log.Info().Str("job", job.Name()).Msg("job completed")
}

func (z *ZerologObserver) OnJobFailed(job *domain.Job, err error) {
	z.log.Error().Str("job", job.Name()).Err(err).Msg("job failed")
}

func (z *ZerologObserver) OnJobPruned(job *domain.Job) {
	z.log.Debug().Str("job", job.Name()).Msg("job pruned")
}

func (z *ZerologObserver) OnJobSubmitted(job *domain.Job, clusterID string) {
	z.log.Info().Str("job", job.Name()).Str("cluster_id", clusterID).Msg("job submitted")
}
