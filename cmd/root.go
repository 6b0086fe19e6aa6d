package cmd

import (
	"fmt"

	"github.com/jzelinskie/cobrautil/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kubev2v/offload-agent/internal/config"
)

const envPrefix = "OFFLOAD"

// NewRootCommand builds the offload-agent command tree.
func NewRootCommand() *cobra.Command {
	cfg := config.NewConfigurationWithOptionsAndDefaults()

	root := &cobra.Command{
		Use:           "offload-agent",
		Short:         "Run functions on a fixed pool of worker units",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: cobrautil.CommandStack(
			cobrautil.SyncViperPreRunE(envPrefix),
			func(cmd *cobra.Command, args []string) error {
				logger, err := newLogger(cfg.LogFormat, cfg.LogLevel)
				if err != nil {
					return err
				}
				zap.ReplaceGlobals(logger)
				return nil
			},
		),
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = zap.L().Sync()
		},
	}

	registerFlags(root.PersistentFlags(), cfg)
	root.AddCommand(newServeCommand(cfg), newRunCommand(cfg))
	return root
}

// registerFlags binds the flags shared by every command to cfg. Unset flags
// are filled from OFFLOAD_<FLAG_NAME> before any command runs.
func registerFlags(flags *pflag.FlagSet, cfg *config.Configuration) {
	flags.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: console or json")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn or error")
	flags.IntVar(&cfg.Pool.Size, "pool-size", cfg.Pool.Size, "Number of worker units")
	flags.IntVar(&cfg.Pool.MaxQueueSize, "max-queue-size", cfg.Pool.MaxQueueSize, "Maximum queued calls, 0 for unbounded")
	flags.UintVar(&cfg.Pool.SpawnAttempts, "spawn-attempts", cfg.Pool.SpawnAttempts, "Attempts to spawn each worker unit")
}

func newLogger(format, level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var zc zap.Config
	switch format {
	case "json":
		zc = zap.NewProductionConfig()
	case "console":
		zc = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)

	return zc.Build()
}
