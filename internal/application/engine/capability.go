package engine

import (
	"os/exec"
	"sync"
)

// BackendLocal and BackendCluster are the two execution backends
// AvailableBackends can report.
const (
	BackendLocal   = "local"
	BackendCluster = "cluster"
)

// ClusterSubmitExecutable is the cluster submission command whose
// presence on PATH gates advertising the cluster backend. Sbatch is the
// Slurm family's submission command; a different cluster family's
// emitter would override this.
var ClusterSubmitExecutable = "sbatch"

var (
	backendsOnce   sync.Once
	backendsCached []string
)

// AvailableBackends returns "local" always, plus "cluster" iff the
// cluster submission executable is discoverable on PATH. Cached for the
// process lifetime.
func AvailableBackends() []string {
	backendsOnce.Do(func() {
		backendsCached = []string{BackendLocal}
		if _, err := exec.LookPath(ClusterSubmitExecutable); err == nil {
			backendsCached = append(backendsCached, BackendCluster)
		}
	})
	return backendsCached
}
