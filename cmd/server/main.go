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

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/polsek-portal/api/internal/backend"
	"github.com/polsek-portal/api/internal/codestore"
	"github.com/polsek-portal/api/internal/config"
	"github.com/polsek-portal/api/internal/router"
	"github.com/polsek-portal/api/internal/ws"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const sweepInterval = 10 * time.Minute

var rootCmd = &cobra.Command{
	Use:          "server",
	Short:        "Status-check API for the precinct website",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		log, err := newLogger(cfg.LogLevel)
		if err != nil {
			return err
		}
		defer log.Sync() //nolint:errcheck
		zap.ReplaceGlobals(log)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return run(ctx, cfg, log)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	log, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return log, nil
}

// sweeper is implemented by backends whose expired sessions need removing.
type sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	sessions, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	if s, ok := sessions.(sweeper); ok {
		go sweepLoop(ctx, s, log)
	}

	hub := ws.NewHub(log)
	go hub.Run(ctx)

	client := backend.NewClient(cfg.BackendURL, cfg.BackendTimeout)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.New(cfg, sessions, client, hub, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openStore builds the session code store backend selected by cfg.
func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (codestore.Backend, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverRedis:
		client := codestore.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		b := codestore.NewRedisBackend(client, cfg.SessionTTL)
		if err := b.Ping(ctx); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		log.Info("code store: redis", zap.String("addr", cfg.RedisAddr))
		return b, func() { client.Close() }, nil

	case config.DriverPostgres:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("ping postgres: %w", err)
		}
		b := codestore.NewPostgresBackend(pool, cfg.SessionTTL)
		if err := b.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		log.Info("code store: postgres")
		return b, pool.Close, nil

	default:
		log.Info("code store: memory")
		return codestore.NewMemoryBackend(cfg.SessionTTL), func() {}, nil
	}
}

func sweepLoop(ctx context.Context, s sweeper, log *zap.Logger) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.Sweep(ctx)
			if err != nil {
				log.Warn("sweep expired sessions", zap.Error(err))
				continue
			}
			if n > 0 {
				log.Debug("swept expired sessions", zap.Int("removed", n))
			}
		}
	}
}
