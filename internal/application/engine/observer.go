package engine

import "github.com/flowkit/flowkit/internal/domain"

// Observer receives job lifecycle notifications from the local scheduler
// and the cluster emitter. Implementations must be safe for concurrent
// use: the local scheduler calls these from multiple job goroutines at
// once.
type Observer interface {
	OnJobStarted(job *domain.Job)
	OnJobCompleted(job *domain.Job, value any)
	OnJobFailed(job *domain.Job, err error)
	OnJobPruned(job *domain.Job)
	OnJobSubmitted(job *domain.Job, clusterID string)
}

// NopObserver discards every notification. The zero value is ready to use.
type NopObserver struct{}

func (NopObserver) OnJobStarted(*domain.Job)          {}
func (NopObserver) OnJobCompleted(*domain.Job, any)   {}
func (NopObserver) OnJobFailed(*domain.Job, error)    {}
func (NopObserver) OnJobPruned(*domain.Job)           {}
func (NopObserver) OnJobSubmitted(*domain.Job, string) {}
