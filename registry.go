package flowkit

import (
	"fmt"
	"sync"
)

// registeredCallable is whichever of the two callable shapes a token was
// registered under.
type registeredCallable struct {
	fn0     Callable0
	fn1     Callable1
	isArray bool
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]registeredCallable)
)

// Register associates a stable token with a 0-arg callable so the
// subordinate processor (cmd/processor) can look it up after the
// cluster backend serializes only the token, never the closure itself —
// Go function values aren't serializable. NewJob calls this for callers,
// so Register only needs calling directly when building a Job by some
// other means.
func Register(token string, fn Callable0) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[token] = registeredCallable{fn0: fn}
}

// RegisterArray is Register for an array job body.
func RegisterArray(token string, fn Callable1) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[token] = registeredCallable{fn1: fn, isArray: true}
}

// Resolve looks a token up against the registry built by Register and
// RegisterArray. Used by cmd/processor after decoding a job's .pkl
// payload.
func Resolve(token string) (Callable0, Callable1, bool, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	c, ok := registry[token]
	if !ok {
		return nil, nil, false, fmt.Errorf("flowkit: no callable registered for token %q", token)
	}
	return c.fn0, c.fn1, c.isArray, nil
}
