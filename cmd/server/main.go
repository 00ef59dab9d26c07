package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rumahkopi/api/internal/cache"
	"github.com/rumahkopi/api/internal/config"
	"github.com/rumahkopi/api/internal/database"
	"github.com/rumahkopi/api/internal/events"
	"github.com/rumahkopi/api/internal/logger"
	"github.com/rumahkopi/api/internal/middleware"
	"github.com/rumahkopi/api/internal/router"
	"github.com/rumahkopi/api/internal/ws"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "server",
		Short:         "Rumah Kopi API server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(), migrateCmd(), versionCmd())
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), router.Version)
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync()

			if err := database.Migrate(cmd.Context(), cfg.DatabaseURL); err != nil {
				return err
			}
			version, err := database.MigrationVersion(cmd.Context(), cfg.DatabaseURL)
			if err != nil {
				return err
			}
			log.Info("migrations applied", zap.Int64("version", version))
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync()
			return serve(cfg, log, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply pending migrations before serving")
	return cmd
}

func setup() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	logger.SetGlobal(log)
	return cfg, log, nil
}

func serve(cfg *config.Config, log *logger.Logger, migrate bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if migrate {
		if err := database.Migrate(ctx, cfg.DatabaseURL); err != nil {
			return err
		}
	}

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()
	log.Info("connected to database")

	queries := database.New(pool)

	// Menu cache: redis is optional.
	var menu *cache.MenuCache
	if cfg.RedisAddr != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisAddr)
		if err != nil {
			return err
		}
		defer rdb.Close()
		menu = cache.NewMenuCache(queries, rdb, cfg.MenuCacheTTL)
		log.Info("menu cache enabled", zap.String("redis", cfg.RedisAddr))
	} else {
		menu = cache.NewMenuCache(queries, nil, 0)
	}

	hub := ws.NewHub()
	go hub.Run(ctx)

	publishers := events.Fanout{events.NewHubPublisher(hub)}
	if cfg.AMQPURL != "" {
		conn, err := events.Dial(cfg.AMQPURL)
		if err != nil {
			return err
		}
		amqpPub := events.NewAMQPPublisher(conn, cfg.AMQPExchange)
		defer amqpPub.Close()
		publishers = append(publishers, amqpPub)
		log.Info("publishing events to broker", zap.String("exchange", cfg.AMQPExchange))
	}

	r := router.New(cfg, router.Deps{
		Queries: queries,
		Pool:    pool,
		Hub:     hub,
		Menu:    menu,
		Events:  events.NewLogged(publishers, log),
		Metrics: middleware.NewMetrics(),
		Logger:  log,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("addr", srv.Addr), zap.String("version", router.Version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
