package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kubev2v/offload-agent/internal/config"
	"github.com/kubev2v/offload-agent/internal/handlers"
	"github.com/kubev2v/offload-agent/internal/server"
	"github.com/kubev2v/offload-agent/internal/services"
	"github.com/kubev2v/offload-agent/internal/store"
	"github.com/kubev2v/offload-agent/pkg/scheduler"
	"github.com/kubev2v/offload-agent/pkg/worker"
)

func newServeCommand(cfg *config.Configuration) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the pool and the call journal over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return serve(ctx, cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.Server.ServerMode, "server-mode", cfg.Server.ServerMode, "Server mode: dev or prod")
	flags.IntVar(&cfg.Server.HTTPPort, "http-port", cfg.Server.HTTPPort, "HTTP listen port")
	flags.StringVar(&cfg.Store.DataFolder, "data-folder", cfg.Store.DataFolder, "Folder for the call journal, empty for in-memory")

	return cmd
}

func serve(ctx context.Context, cfg *config.Configuration) error {
	log := zap.S().Named("serve")
	log.Infow("configuration loaded", "config", cfg.DebugMap())

	db, err := store.NewDB(store.DBPath(cfg.Store.DataFolder))
	if err != nil {
		return err
	}
	defer db.Close()

	st := store.NewStore(db)
	if err := st.Migrate(ctx); err != nil {
		return err
	}

	srv := services.NewOffloadService(st, worker.NewLocalSpawner(worker.DefaultRegistry()), poolOptions(cfg)...)
	defer srv.Close()

	if err := srv.Start(ctx, cfg.Pool.Size); err != nil {
		return err
	}
	log.Infow("worker pool started", "size", cfg.Pool.Size)

	h := handlers.New(srv)
	httpSrv, err := server.NewServer(cfg, func(router *gin.RouterGroup) {
		handlers.RegisterHandlers(router, h)
	})
	if err != nil {
		return err
	}

	return httpSrv.Start(ctx)
}

func poolOptions(cfg *config.Configuration) []scheduler.Option {
	return []scheduler.Option{
		scheduler.WithMaxQueueSize(cfg.Pool.MaxQueueSize),
		scheduler.WithSpawnAttempts(cfg.Pool.SpawnAttempts),
	}
}
