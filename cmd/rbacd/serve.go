// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 RBAC-Project Contributors

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Chandrateja1212/RBAC-Project/internal/auth"
	"github.com/Chandrateja1212/RBAC-Project/internal/auth/postgres"
	"github.com/Chandrateja1212/RBAC-Project/internal/config"
	"github.com/Chandrateja1212/RBAC-Project/internal/logging"
	"github.com/Chandrateja1212/RBAC-Project/internal/observability"
	"github.com/Chandrateja1212/RBAC-Project/internal/server"
	"github.com/Chandrateja1212/RBAC-Project/internal/store"
)

const shutdownTimeout = 5 * time.Second

// newServeCmd creates the serve subcommand with all flags configured.
func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the auth HTTP server",
		Long: `Start the HTTP server exposing registration, login, logout, and the
role-gated routes, plus a separate metrics/health endpoint.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cmd)
		},
	}

	// Flags mirror the config file keys; flags win over the file.
	cmd.Flags().String("listen_addr", config.DefaultListenAddr, "HTTP listen address")
	cmd.Flags().String("metrics_addr", config.DefaultMetricsAddr, "metrics/health HTTP address (empty = disabled)")
	cmd.Flags().String("log_format", config.DefaultLogFormat, "log format (json or text)")
	cmd.Flags().Duration("token_ttl", config.DefaultTokenTTL, "bearer token lifetime")
	cmd.Flags().Duration("throttle_window", config.DefaultThrottleWindow, "login throttle window")
	cmd.Flags().Int("throttle_max_attempts", config.DefaultThrottleMaxAttempts, "login attempts allowed per identity per window")

	return cmd
}

// runServe wires the service together and blocks until shutdown.
func runServe(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logging.SetDefault("rbacd", version, cfg.LogFormat)
	logger := slog.Default()

	logger.Info("starting auth service",
		"listen_addr", cfg.ListenAddr,
		"metrics_addr", cfg.MetricsAddr,
		"token_ttl", cfg.TokenTTL.String(),
		"throttle_window", cfg.ThrottleWindow.String(),
		"throttle_max_attempts", cfg.ThrottleMaxAttempts,
	)

	pool, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	logger.Info("database connected")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Observability server first so the throttle gauge has a registry.
	var obsServer *observability.Server
	var metrics *observability.Metrics
	if cfg.MetricsAddr != "" {
		obsServer = observability.NewServer(cfg.MetricsAddr, func() bool {
			pingCtx, pingCancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer pingCancel()
			return pool.Ping(pingCtx) == nil
		})
		metrics = obsServer.Metrics()
	}

	tokens, err := auth.NewTokenService([]byte(cfg.TokenSecret), cfg.TokenTTL)
	if err != nil {
		return fmt.Errorf("failed to create token service: %w", err)
	}

	throttleCfg := auth.ThrottleConfig{
		Window:      cfg.ThrottleWindow,
		MaxAttempts: cfg.ThrottleMaxAttempts,
	}
	var throttle *auth.LoginThrottle
	if obsServer != nil {
		throttle = auth.NewLoginThrottleWithRegistry(throttleCfg, obsServer.Registry())
	} else {
		throttle = auth.NewLoginThrottle(throttleCfg)
	}
	defer throttle.Close()

	users := postgres.NewUserRepository(pool)
	hasher := auth.NewBcryptHasher()

	authService, err := auth.NewServiceWithLogger(users, hasher, tokens, throttle, logger)
	if err != nil {
		return fmt.Errorf("failed to create auth service: %w", err)
	}

	guard, err := auth.NewGuard(tokens)
	if err != nil {
		return fmt.Errorf("failed to create guard: %w", err)
	}

	httpServer, err := server.New(server.Config{
		Addr:    cfg.ListenAddr,
		Auth:    authService,
		Guard:   guard,
		Logger:  logger,
		Metrics: metrics,
	})
	if err != nil {
		return fmt.Errorf("failed to create http server: %w", err)
	}

	if obsServer != nil {
		obsErrCh, obsErr := obsServer.Start()
		if obsErr != nil {
			return fmt.Errorf("failed to start observability server: %w", obsErr)
		}
		go func() {
			if e := <-obsErrCh; e != nil {
				slog.Error("observability server error", "error", e)
				cancel()
			}
		}()
	}

	srvErrCh, err := httpServer.Start()
	if err != nil {
		if obsServer != nil {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer stopCancel()
			_ = obsServer.Stop(stopCtx)
		}
		return fmt.Errorf("failed to start http server: %w", err)
	}
	go func() {
		if e := <-srvErrCh; e != nil {
			slog.Error("http server error", "error", e)
			cancel()
		}
	}()

	// Block until a signal or a server failure.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Warn("error stopping http server", "error", err)
	}
	if obsServer != nil {
		if err := obsServer.Stop(shutdownCtx); err != nil {
			logger.Warn("error stopping observability server", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return nil
}
