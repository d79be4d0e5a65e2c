package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDirectiveKey_RewritesKnownKeys(t *testing.T) {
	assert.Equal(t, "cpus-per-task", DirectiveKey(SettingCPUs))
	assert.Equal(t, "mem", DirectiveKey(SettingMemory))
	assert.Equal(t, "time", DirectiveKey(SettingTimeLimit))
}

func TestDirectiveKey_PassesThroughUnknownKeys(t *testing.T) {
	assert.Equal(t, "exclusive", DirectiveKey("exclusive"))
}

func TestSettings_KeysPreserveInsertionOrder(t *testing.T) {
	s := NewSettings()
	s.Set("b", 1)
	s.Set("a", 2)
	s.Set("b", 3)

	assert.Equal(t, []string{"b", "a"}, s.Keys())
	v, ok := s.Get("b")
	assert.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestSettings_MergePerJobWinsOnOverlap(t *testing.T) {
	global := NewSettings()
	global.Set("partition", "default")
	global.Set("cpus", 2)

	job := NewSettings()
	job.Set("cpus", 8)
	job.Set("gpus", 1)

	merged := global.Merge(job)

	assert.Equal(t, []string{"partition", "cpus", "gpus"}, merged.Keys())
	v, _ := merged.Get("cpus")
	assert.Equal(t, 8, v)
}

func TestSettings_MergeToleratesNilReceiver(t *testing.T) {
	var s *Settings
	job := NewSettings()
	job.Set("cpus", 4)

	merged := s.Merge(job)
	v, ok := merged.Get("cpus")
	assert.True(t, ok)
	assert.Equal(t, 4, v)
}
