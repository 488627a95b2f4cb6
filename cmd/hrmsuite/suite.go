package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/testforge/hrm-e2e/internal/api"
	"github.com/testforge/hrm-e2e/internal/browser"
	"github.com/testforge/hrm-e2e/internal/fixtures"
	rediscache "github.com/testforge/hrm-e2e/internal/repository/redis"
	"github.com/testforge/hrm-e2e/internal/resilience"
	"github.com/testforge/hrm-e2e/internal/runner"
	"github.com/testforge/hrm-e2e/internal/storage"
)

// suite is a runner together with the connections it holds open
type suite struct {
	runner  *runner.Runner
	checks  map[string]api.HealthChecker
	closers []func() error
}

func (s *suite) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		_ = s.closers[i]()
	}
}

// buildSuite wires the runner from configuration. Redis and MinIO are
// optional; a failing optional dependency is an error only when enabled.
func (a *app) buildSuite(ctx context.Context, extra ...runner.Option) (*suite, error) {
	cfg, logger := a.cfg, a.logger
	s := &suite{checks: make(map[string]api.HealthChecker)}

	artifacts, err := storage.FromConfig(ctx, cfg.Storage, logger, a.metrics)
	if err != nil {
		return nil, fmt.Errorf("connecting to storage: %w", err)
	}
	if artifacts.Remote() {
		logger.Info("Uploading artifacts to MinIO",
			zap.String("endpoint", cfg.Storage.Endpoint),
			zap.String("bucket", cfg.Storage.Bucket),
		)
		s.checks["storage"] = artifacts
	}

	var registry fixtures.Registry = fixtures.NewMemoryRegistry()
	registryName := "memory"
	if cfg.Redis.Enabled {
		names, err := rediscache.New(ctx, cfg.Redis, owner())
		if err != nil {
			return nil, err
		}
		logger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr()))
		registry, registryName = names, "redis"
		s.checks["redis"] = names
		s.closers = append(s.closers, names.Close)
	}

	opts, err := runner.OptionsFrom(cfg, logger, a.metrics)
	if err != nil {
		s.Close()
		return nil, err
	}

	breakerCfg := resilience.DefaultConfig(cfg.App.BaseURL)
	breakerCfg.OnStateChange = func(name string, from, to resilience.State) {
		logger.Warn("Target breaker changed state",
			zap.String("target", name),
			zap.Stringer("from", from),
			zap.Stringer("to", to),
		)
	}

	options := []runner.Option{
		runner.WithLogger(logger),
		runner.WithMetrics(a.metrics),
		runner.WithArtifacts(artifacts),
		runner.WithGenerator(fixtures.New(fixtures.WithRegistry(fixtures.Instrument(registry, registryName, a.metrics)))),
		runner.WithBreaker(resilience.New(breakerCfg)),
	}
	s.runner = runner.New(runner.FactoryLauncher{Factory: browser.NewFactory(logger)}, opts, append(options, extra...)...)
	return s, nil
}

// owner identifies this process in the name registry
func owner() string {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	return fmt.Sprintf("%s-%d", host, os.Getpid())
}
