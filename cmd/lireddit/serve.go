// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LiReddit Contributors

package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/lireddit/lireddit/internal/auth"
	"github.com/lireddit/lireddit/internal/auth/memory"
	authpg "github.com/lireddit/lireddit/internal/auth/postgres"
	authredis "github.com/lireddit/lireddit/internal/auth/redis"
	"github.com/lireddit/lireddit/internal/config"
	"github.com/lireddit/lireddit/internal/logging"
	"github.com/lireddit/lireddit/internal/observability"
	"github.com/lireddit/lireddit/internal/post"
	postpg "github.com/lireddit/lireddit/internal/post/postgres"
	"github.com/lireddit/lireddit/internal/store"
	"github.com/lireddit/lireddit/internal/web"
	"github.com/lireddit/lireddit/pkg/errutil"
)

const (
	serviceName     = "lireddit"
	shutdownTimeout = 10 * time.Second
	readinessProbe  = 2 * time.Second
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long: `Start the HTTP API server. Pending database migrations are applied
first unless --auto-migrate=false. Sessions are kept in Redis when
--redis-addr is set and in process memory otherwise.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := config.ResolvePath(configFile, os.Getenv)
			if err != nil {
				return err
			}
			cfg, err := config.Load(path, cmd.Flags(), os.Getenv)
			if err != nil {
				return err
			}
			return runServeWithDeps(cmd.Context(), cfg, cmd, nil)
		},
	}

	config.RegisterFlags(cmd.Flags())

	return cmd
}

// runServeWithDeps runs the server until ctx ends, a termination signal
// arrives, or a listener fails. If deps is nil, default implementations are
// used.
func runServeWithDeps(ctx context.Context, cfg *config.Config, cmd *cobra.Command, deps *ServeDeps) error {
	deps = deps.withDefaults()

	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger := logging.Setup(logging.Options{
		Service: serviceName,
		Version: version,
		Format:  cfg.LogFormat,
		Level:   level,
	}, deps.LogWriter)
	slog.SetDefault(logger)

	logger.Info("starting server",
		"http_addr", cfg.HTTPAddr,
		"env", cfg.Env,
		"auto_migrate", cfg.AutoMigrate,
	)

	if cfg.AutoMigrate {
		if err := autoMigrate(deps, cfg.DatabaseURL, logger); err != nil {
			return err
		}
	}

	db, err := deps.DatabaseOpener(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}
	defer db.Close()
	logger.Info("connected to database")

	probes := []store.Pinger{db}

	sessions, closeSessions, sessionProbe, err := openSessions(ctx, cfg, deps, logger)
	if err != nil {
		return err
	}
	defer closeSessions()
	if sessionProbe != nil {
		probes = append(probes, sessionProbe)
	}

	var (
		obsServer ObservabilityServer
		metrics   *observability.Metrics
	)
	if cfg.MetricsAddr != "" {
		obsServer = deps.ObservabilityServerFactory(cfg.MetricsAddr, readiness(probes...))
		metrics = obsServer.Metrics()
	} else {
		metrics = observability.NewMetrics(prometheus.NewRegistry())
	}

	authSvc, err := auth.NewAuthService(
		authpg.NewUserRepository(db),
		sessions,
		auth.NewArgon2idHasher(),
		auth.WithLogger(logger),
		auth.WithRecorder(metrics),
		auth.WithHashWorkers(cfg.HashWorkers),
	)
	if err != nil {
		return err
	}

	postSvc, err := post.NewService(postpg.NewRepository(db))
	if err != nil {
		return err
	}

	api, err := web.NewServer(authSvc, postSvc, web.Options{
		Addr:          cfg.HTTPAddr,
		CORSOrigin:    cfg.CORSOrigin,
		SecureCookies: cfg.Production(),
		SessionTTL:    cfg.SessionTTL,
		Logger:        logger,
		Recorder:      metrics,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	apiErrCh, err := api.Start()
	if err != nil {
		return err
	}

	var obsErrCh <-chan error
	if obsServer != nil {
		obsErrCh, err = obsServer.Start()
		if err != nil {
			stopServer(logger, "api", api.Stop)
			return oops.Code("OBSERVABILITY_START_FAILED").Wrap(err)
		}
	}

	cmd.Println("lireddit listening on", api.Addr())
	if deps.Ready != nil {
		deps.Ready(api.Addr())
	}

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down", "reason", context.Cause(ctx))
	case err, ok := <-apiErrCh:
		if ok && err != nil {
			runErr = oops.Code("API_SERVER_FAILED").Wrap(err)
		}
	case err, ok := <-obsErrCh:
		if ok && err != nil {
			runErr = oops.Code("OBSERVABILITY_SERVER_FAILED").Wrap(err)
		}
	}

	stopServer(logger, "api", api.Stop)
	if obsServer != nil {
		stopServer(logger, "observability", obsServer.Stop)
	}

	if runErr != nil {
		errutil.LogError(logger, "server failed", runErr)
		return runErr
	}
	logger.Info("shutdown complete")
	return nil
}

func autoMigrate(deps *ServeDeps, databaseURL string, logger *slog.Logger) error {
	migrator, err := deps.MigratorFactory(databaseURL)
	if err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "create migrator").Wrap(err)
	}
	defer func() {
		if closeErr := migrator.Close(); closeErr != nil {
			errutil.LogError(logger, "failed to close migrator", closeErr)
		}
	}()

	if err := migrator.Up(); err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "apply migrations").Wrap(err)
	}
	logger.Info("database migrations applied")
	return nil
}

// openSessions selects the session store. The returned closer is always
// non-nil; the probe is nil for the in-process store.
func openSessions(ctx context.Context, cfg *config.Config, deps *ServeDeps, logger *slog.Logger) (auth.SessionStore, func(), store.Pinger, error) {
	if cfg.RedisAddr == "" {
		logger.Warn("redis_addr not set, sessions are kept in process memory and lost on restart")
		return memory.NewSessionStore(cfg.SessionTTL), func() {}, nil, nil
	}

	client, err := deps.RedisOpener(ctx, authredis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, logger)
	if err != nil {
		return nil, nil, nil, oops.Code("REDIS_CONNECT_FAILED").With("addr", cfg.RedisAddr).Wrap(err)
	}
	logger.Info("connected to redis", "addr", cfg.RedisAddr)

	closer := func() {
		if err := client.Close(); err != nil {
			errutil.LogError(logger, "failed to close redis client", err)
		}
	}
	probe := store.PingFunc(func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
	return authredis.NewSessionStore(client, cfg.SessionTTL), closer, probe, nil
}

// readiness reports ready while every probe answers within readinessProbe.
func readiness(probes ...store.Pinger) observability.ReadinessChecker {
	return func() bool {
		ctx, cancel := context.WithTimeout(context.Background(), readinessProbe)
		defer cancel()
		for _, p := range probes {
			if err := p.Ping(ctx); err != nil {
				return false
			}
		}
		return true
	}
}

func stopServer(logger *slog.Logger, name string, stop func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := stop(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn("error stopping server", "server", name, "error", err)
	}
}
