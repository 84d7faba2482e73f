package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"clinic-scheduler/internal/clinic"
	"clinic-scheduler/internal/config"
	"clinic-scheduler/internal/export"
	"clinic-scheduler/internal/gateway"
	gweb "clinic-scheduler/internal/grpcweb"
	"clinic-scheduler/internal/handler"
	"clinic-scheduler/internal/middleware"
	"clinic-scheduler/internal/snapshot"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinic",
		Short: "Clinic scheduling server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the gRPC server and the HTTP gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func exportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write appointment letters for every active appointment",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)
			ctx := context.Background()

			repo, closeRepo, err := openRepo(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer closeRepo()

			svc, err := clinic.Open(ctx, repo, logger)
			if err != nil {
				return err
			}
			if out == "" {
				out = cfg.ExportPath
			}
			appts := svc.Appointments()
			if err := export.WriteFile(out, cfg.ClinicName, appts); err != nil {
				return err
			}
			logger.Info().Str("path", out).Int("appointments", len(appts)).Msg("schedule exported")
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default EXPORT_PATH)")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the snapshot table in Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.SnapshotBackend != config.BackendPostgres {
				return fmt.Errorf("migrate needs SNAPSHOT_BACKEND=%s", config.BackendPostgres)
			}
			logger := newLogger(cfg)
			ctx := context.Background()

			pool, err := snapshot.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()
			if err := snapshot.NewPostgresRepo(pool).Migrate(ctx); err != nil {
				return err
			}
			logger.Info().Msg("migration applied")
			return nil
		},
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return logger.Level(level)
}

// openRepo picks the snapshot backend. The returned func releases it.
func openRepo(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (snapshot.Repository, func(), error) {
	switch cfg.SnapshotBackend {
	case config.BackendPostgres:
		pool, err := snapshot.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return nil, nil, err
		}
		repo := snapshot.NewPostgresRepo(pool)
		if err := repo.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		logger.Info().Msg("connected to postgres")
		return repo, pool.Close, nil
	default:
		logger.Info().Str("path", cfg.SnapshotPath).Msg("using snapshot file")
		return snapshot.NewFileRepo(cfg.SnapshotPath), func() {}, nil
	}
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := openRepo(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeRepo()

	svc, err := clinic.Open(ctx, repo, logger)
	if err != nil {
		return err
	}

	// grpc server
	rl := middleware.NewRateLimiter(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst)
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			middleware.UnaryRecovery(logger),
			middleware.UnaryLogging(logger),
			middleware.RateLimit(rl),
		),
	)
	handler.Register(srv, handler.New(svc))

	lis, err := net.Listen("tcp", ":"+cfg.Port)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	go func() {
		logger.Info().Str("port", cfg.Port).Msg("grpc listening")
		if err := srv.Serve(lis); err != nil {
			logger.Error().Err(err).Msg("grpc")
		}
	}()

	// grpc-web bridge -> forwards browser requests to grpc on localhost
	bridge, err := gweb.New("localhost:"+cfg.Port, logger)
	if err != nil {
		return err
	}
	defer bridge.Close()

	e := gateway.NewServer(gateway.NewHandler(svc, cfg.ClinicName), bridge.Handler(), rl, logger)
	go func() {
		logger.Info().Str("port", cfg.WebPort).Msg("http listening")
		if err := e.Start(":" + cfg.WebPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	srv.GracefulStop()
	return nil
}
