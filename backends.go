package flowkit

import "github.com/flowkit/flowkit/internal/application/engine"

// Backend names a schedule() execution strategy.
const (
	BackendLocal   = engine.BackendLocal
	BackendCluster = engine.BackendCluster
)

// AvailableBackends returns "local" always, plus "cluster" iff a cluster
// submission executable (sbatch, by default) is discoverable on PATH.
func AvailableBackends() []string {
	return engine.AvailableBackends()
}
