// Package config loads flowkit's ambient configuration from the process
// environment at startup.
package config

import "os"

// Config is flowkit's process-wide configuration, read once at startup.
type Config struct {
	// BaseDir is where cluster run directories are created, overriding
	// ClusterConfig.BaseDir's "./.workflows" default.
	BaseDir string
	// Backend preselects "local" or "cluster"; empty means the caller
	// decides, typically from engine.AvailableBackends().
	Backend string
	// LogLevel is a zerolog level name ("debug", "info", "warn", "error").
	LogLevel string
	// RunRegistryDSN, if set, enables the optional Postgres-backed
	// registry.RunStore indexing past cluster runs.
	RunRegistryDSN string
	// Shell overrides the shebang interpreter cluster scripts are
	// generated with, defaulting to $SHELL.
	Shell string
}

// Load reads Config from the environment.
func Load() Config {
	return Config{
		BaseDir:        os.Getenv("FLOWKIT_BASE_DIR"),
		Backend:        os.Getenv("FLOWKIT_BACKEND"),
		LogLevel:       getEnv("FLOWKIT_LOG_LEVEL", "info"),
		RunRegistryDSN: os.Getenv("FLOWKIT_RUN_REGISTRY_DSN"),
		Shell:          os.Getenv("SHELL"),
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}
