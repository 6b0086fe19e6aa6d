// Package config defines the configuration structure for the offload agent.
//
// Configuration is organized into logical sections (Server, Pool, Store).
// Defaults come from `default` struct tags applied with creasty/defaults.
// The command layer binds flags to the fields and fills unset flags from
// OFFLOAD_* environment variables.
//
// # Configuration Structure
//
//	Configuration
//	├── Server         - HTTP server settings
//	├── Pool           - Worker pool sizing
//	├── Store          - Call journal location
//	├── LogFormat      - Logging format
//	└── LogLevel       - Logging verbosity
//
// # Server Configuration
//
//	┌──────────────────┬─────────┬────────────────────────────────────────┐
//	│ Field            │ Default │ Description                            │
//	├──────────────────┼─────────┼────────────────────────────────────────┤
//	│ ServerMode       │ "dev"   │ Server mode: "prod" or "dev"           │
//	│ HTTPPort         │ 8000    │ HTTP server listen port                │
//	└──────────────────┴─────────┴────────────────────────────────────────┘
//
// # Pool Configuration
//
//	┌─────────────────┬─────────┬──────────────────────────────────────────┐
//	│ Field           │ Default │ Description                              │
//	├─────────────────┼─────────┼──────────────────────────────────────────┤
//	│ Size            │ 2       │ Number of worker units started at boot   │
//	│ MaxQueueSize    │ 0       │ Queue bound, 0 means unbounded           │
//	│ SpawnAttempts   │ 1       │ Tries per unit before Start fails        │
//	└─────────────────┴─────────┴──────────────────────────────────────────┘
//
// # Store Configuration
//
//	┌─────────────┬─────────┬────────────────────────────────────────────┐
//	│ Field       │ Default │ Description                                │
//	├─────────────┼─────────┼────────────────────────────────────────────┤
//	│ DataFolder  │ ""      │ DuckDB folder, empty keeps it in memory    │
//	└─────────────┴─────────┴────────────────────────────────────────────┘
//
// # Code Generation
//
// Option helpers are generated by optgen:
//
//	//go:generate go run github.com/ecordell/optgen -output zz_generated.configuration.go . Configuration Server Pool Store
//
// Generated helpers include:
//
//   - NewConfigurationWithOptionsAndDefaults(...ConfigurationOption)
//   - WithServer(Server), WithPool(Pool), WithLogLevel(string), etc.
//   - DebugMap() - map for debug logging, honours debugmap tags
//
// # Usage Example
//
//	cfg := config.NewConfigurationWithOptionsAndDefaults(
//	    config.WithPool(*config.NewPoolWithOptionsAndDefaults(
//	        config.WithSize(4),
//	    )),
//	    config.WithLogLevel("debug"),
//	)
//
//	zap.S().Infow("configuration loaded", "config", cfg.DebugMap())
package config
