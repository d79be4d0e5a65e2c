package domain

// Recognized setting keys. Any other key is a passthrough directive,
// rewritten by the cluster emitter as `--<key>[=<value>]` verbatim.
const (
	SettingCPUs      = "cpus"
	SettingGPUs      = "gpus"
	SettingMemory    = "memory"
	SettingTimeLimit = "timelimit"
	SettingPartition = "partition"
	SettingChdir     = "chdir"
	SettingConda     = "conda"
)

// directiveRewrite is the cluster emitter's key translation table: memory
// maps to mem, not ram.
var directiveRewrite = map[string]string{
	SettingCPUs:      "cpus-per-task",
	SettingGPUs:      "gpus-per-task",
	SettingMemory:    "mem",
	SettingTimeLimit: "time",
}

// DirectiveKey returns the cluster directive name for a setting key,
// applying the rewrite table when one exists.
func DirectiveKey(key string) string {
	if rewritten, ok := directiveRewrite[key]; ok {
		return rewritten
	}
	return key
}

// Settings is an insertion-ordered map of resource/scheduler directives.
// Ordering matters: the cluster emitter writes directives in the order
// settings were declared, which keeps generated scripts stable across
// runs for identical job declarations.
type Settings struct {
	keys   []string
	values map[string]any
}

// NewSettings returns an empty Settings map.
func NewSettings() *Settings {
	return &Settings{values: make(map[string]any)}
}

// Set assigns key to value, appending key to the insertion order the
// first time it's seen.
func (s *Settings) Set(key string, value any) {
	if _, exists := s.values[key]; !exists {
		s.keys = append(s.keys, key)
	}
	s.values[key] = value
}

// Get returns the value for key and whether it was set.
func (s *Settings) Get(key string) (any, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Keys returns setting keys in insertion order.
func (s *Settings) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

// Merge overlays other on top of s, returning a new Settings whose order
// is s's keys followed by any new keys introduced by other. Used by the
// cluster emitter to combine scheduler-wide defaults with per-job
// settings (per-job wins).
func (s *Settings) Merge(other *Settings) *Settings {
	merged := NewSettings()
	if s != nil {
		for _, k := range s.keys {
			merged.Set(k, s.values[k])
		}
	}
	if other != nil {
		for _, k := range other.keys {
			merged.Set(k, other.values[k])
		}
	}
	return merged
}
