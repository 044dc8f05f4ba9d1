package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/geocoder89/docvault/internal/auth"
	"github.com/geocoder89/docvault/internal/config"
	"github.com/geocoder89/docvault/internal/db"
	httpx "github.com/geocoder89/docvault/internal/http"
	"github.com/geocoder89/docvault/internal/http/handlers"
	"github.com/geocoder89/docvault/internal/observability"
	"github.com/geocoder89/docvault/internal/redisclient"
	"github.com/geocoder89/docvault/internal/security"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// a missing secret is fatal, nothing else is
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server failed", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := observability.InitTracer(ctx, cfg.Env, cfg.OTLPEndpoint)
	if err != nil {
		// tracing is optional; keep serving without it
		log.Warn("tracer init failed", "err", err)
	}
	defer func() { _ = shutdownTracer(context.Background()) }()

	tokens, err := auth.NewManager(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	deps := httpx.Deps{
		Tokens:   tokens,
		Hasher:   security.NewHasher(cfg.BcryptCost),
		Checks:   map[string]handlers.Check{},
		Registry: reg,
		Prom:     prom,
	}

	var pool *pgxpool.Pool

	switch cfg.StoreDriver {
	case config.StoreMemory:
		log.Warn("using in-memory store; data is lost on exit")
		deps.Users, deps.Documents = httpx.MemoryStores()
	default:
		pool, err = db.NewPool(ctx, cfg.DBURL)
		if err != nil {
			return fmt.Errorf("db connect: %w", err)
		}

		if err := db.Migrate(ctx, pool); err != nil {
			pool.Close()
			return fmt.Errorf("db migrate: %w", err)
		}

		deps.Users, deps.Documents = httpx.PostgresStores(pool, prom)
		deps.Checks["postgres"] = httpx.PoolCheck(pool)
	}

	// released after the server has drained
	defer func() {
		if pool != nil {
			pool.Close()
			log.Info("db pool closed")
		}
	}()

	if cfg.RedisAddr != "" {
		rdb, err := newRedis(cfg.RedisAddr)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer rdb.Close()

		deps.Checks["redis"] = rdb.Ping
	}

	router := httpx.NewRouter(log, cfg, deps)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env, "store", cfg.StoreDriver, "auth_required", cfg.AuthRequired)
		err := srv.ListenAndServe()

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err, ok := <-serveErr:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "err", err)
		return nil
	}

	log.Info("shutdown complete")
	return nil
}

func newRedis(addr string) (*redisclient.Client, error) {
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		return redisclient.NewFromURL(addr)
	}
	return redisclient.New(redisclient.Config{Addr: addr}), nil
}
