// Package runner executes scenarios against fresh browser sessions with
// retries, bounded parallelism and a start rate, and assembles the run
// report.
package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/testforge/hrm-e2e/internal/auth"
	"github.com/testforge/hrm-e2e/internal/browser"
	"github.com/testforge/hrm-e2e/internal/config"
	"github.com/testforge/hrm-e2e/internal/domain"
	"github.com/testforge/hrm-e2e/internal/facade"
	"github.com/testforge/hrm-e2e/internal/fixtures"
	"github.com/testforge/hrm-e2e/internal/observability"
	"github.com/testforge/hrm-e2e/internal/pages"
	"github.com/testforge/hrm-e2e/internal/resilience"
	"github.com/testforge/hrm-e2e/internal/storage"
)

// Session is one isolated browser page
type Session interface {
	Driver() browser.Driver
	Close() error
}

// Launcher opens sessions
type Launcher interface {
	Launch(ctx context.Context, engine browser.Engine, cfg browser.SessionConfig) (Session, error)
}

// FactoryLauncher launches real playwright sessions
type FactoryLauncher struct {
	Factory *browser.Factory
}

func (l FactoryLauncher) Launch(ctx context.Context, engine browser.Engine, cfg browser.SessionConfig) (Session, error) {
	s, err := l.Factory.Launch(ctx, engine, cfg)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Options configures a Runner
type Options struct {
	Engine      browser.Engine
	Session     browser.SessionConfig
	Pages       pages.Options
	AuthKind    auth.Kind
	AuthTimeout time.Duration

	// Retries is the number of extra attempts after a failure
	Retries int
	// Parallel bounds concurrently running scenarios
	Parallel int
	// StartsPerSec bounds attempt starts; zero or less is unlimited
	StartsPerSec float64

	ReportFile  string
	MetricsFile string
}

// OptionsFrom builds runner options from loaded configuration
func OptionsFrom(cfg *config.Config, logger *zap.Logger, metrics *observability.Metrics) (Options, error) {
	engine, err := browser.ParseEngine(cfg.Browser.Engine)
	if err != nil {
		return Options{}, err
	}
	return Options{
		Engine:       engine,
		Session:      browser.SessionConfigFrom(cfg),
		Pages:        pages.OptionsFrom(cfg, logger, metrics),
		AuthKind:     auth.KindStandard,
		AuthTimeout:  cfg.Timeouts.Auth,
		Retries:      cfg.Runner.Retries,
		Parallel:     cfg.Runner.Parallel,
		StartsPerSec: cfg.Runner.StartsPerSec,
		ReportFile:   cfg.Runner.ReportFile,
		MetricsFile:  cfg.Runner.MetricsFile,
	}, nil
}

// Option configures optional collaborators of a Runner
type Option func(*Runner)

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithMetrics sets the metrics set
func WithMetrics(m *observability.Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// WithArtifacts sets where failure screenshots and reports are published
func WithArtifacts(a *storage.Artifacts) Option {
	return func(r *Runner) { r.artifacts = a }
}

// WithGenerator sets the test data generator handed to scenarios
func WithGenerator(g *fixtures.Generator) Option {
	return func(r *Runner) { r.data = g }
}

// WithBreaker sets the breaker guarding the target
func WithBreaker(b *resilience.Breaker) Option {
	return func(r *Runner) { r.breaker = b }
}

// WithProgress registers a callback invoked after every scenario
func WithProgress(fn func(domain.ScenarioResult)) Option {
	return func(r *Runner) { r.progress = fn }
}

// Runner runs scenarios
type Runner struct {
	launcher  Launcher
	opts      Options
	logger    *zap.Logger
	metrics   *observability.Metrics
	artifacts *storage.Artifacts
	data      *fixtures.Generator
	breaker   *resilience.Breaker
	progress  func(domain.ScenarioResult)

	mu     sync.Mutex
	latest *domain.RunReport
}

// New creates a runner. Parallel below one runs scenarios one at a time.
func New(launcher Launcher, opts Options, options ...Option) *Runner {
	if opts.Parallel < 1 {
		opts.Parallel = 1
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	if opts.AuthKind == "" {
		opts.AuthKind = auth.KindStandard
	}
	r := &Runner{launcher: launcher, opts: opts}
	for _, o := range options {
		o(r)
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	r.logger = r.logger.Named("runner")
	if r.artifacts == nil {
		r.artifacts = storage.NewArtifacts(nil, "", r.logger, r.metrics)
	}
	if r.data == nil {
		r.data = fixtures.New()
	}
	if r.breaker == nil {
		r.breaker = resilience.New(resilience.DefaultConfig(opts.Pages.BaseURL))
	}
	if r.opts.Pages.Metrics == nil {
		r.opts.Pages.Metrics = r.metrics
	}
	if r.opts.Pages.Logger == nil {
		r.opts.Pages.Logger = r.logger
	}
	return r
}

// Latest returns the most recent finished report, or nil
func (r *Runner) Latest() *domain.RunReport {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.latest
}

func (r *Runner) limiter() *rate.Limiter {
	if r.opts.StartsPerSec <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(r.opts.StartsPerSec), 1)
}

// Run executes every scenario and returns the report. A scenario failure
// is recorded in the report, not returned; the error is reserved for a
// cancelled context and for failures writing the report.
func (r *Runner) Run(ctx context.Context, scenarios []Scenario) (*domain.RunReport, error) {
	report := &domain.RunReport{
		ID:        uuid.New(),
		Engine:    r.opts.Engine.String(),
		BaseURL:   r.opts.Pages.BaseURL,
		StartedAt: time.Now().UTC(),
		Results:   make([]domain.ScenarioResult, len(scenarios)),
	}
	runID := report.ID.String()
	logger := r.logger.With(zap.String("run_id", runID))
	logger.Info("run started",
		zap.Int("scenarios", len(scenarios)),
		zap.String("engine", report.Engine),
		zap.Int("parallel", r.opts.Parallel),
	)

	limiter := r.limiter()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Parallel)
	for i, sc := range scenarios {
		i, sc := i, sc
		g.Go(func() error {
			res := r.runScenario(gctx, runID, sc, limiter)
			report.Results[i] = res
			r.metrics.RecordScenario(res)
			if r.progress != nil {
				r.progress(res)
			}
			return gctx.Err()
		})
	}
	waitErr := g.Wait()

	report.FinishedAt = time.Now().UTC()
	r.metrics.RecordRun(report.Engine, report.Succeeded())

	summary := report.Summary()
	logger.Info("run finished",
		zap.Int("passed", summary.Passed),
		zap.Int("flaky", summary.Flaky),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped),
		zap.Duration("duration", report.Duration()),
	)

	r.mu.Lock()
	r.latest = report
	r.mu.Unlock()

	if err := r.persist(context.WithoutCancel(ctx), report); err != nil {
		return report, err
	}
	if waitErr != nil {
		return report, waitErr
	}
	return report, nil
}

func (r *Runner) persist(ctx context.Context, report *domain.RunReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return domain.ErrInternal("encoding report", err)
	}
	if r.opts.ReportFile != "" {
		if err := os.MkdirAll(filepath.Dir(r.opts.ReportFile), 0o755); err != nil {
			return domain.ErrInternal("creating report directory", err)
		}
		if err := os.WriteFile(r.opts.ReportFile, data, 0o644); err != nil {
			return domain.ErrInternal("writing report", err)
		}
	}
	if uri, err := r.artifacts.PublishReport(ctx, report.ID.String(), data); err != nil {
		r.logger.Warn("report upload failed", zap.Error(err))
	} else if uri != "" {
		r.logger.Info("report uploaded", zap.String("uri", uri))
	}
	if r.opts.MetricsFile != "" && r.metrics != nil {
		if err := r.metrics.WriteTextfile(r.opts.MetricsFile); err != nil {
			return domain.ErrInternal("writing metrics", err)
		}
	}
	return nil
}

func (r *Runner) runScenario(ctx context.Context, runID string, sc Scenario, limiter *rate.Limiter) (res domain.ScenarioResult) {
	res = domain.ScenarioResult{Name: sc.Name, Status: domain.ScenarioFailed}
	logger := r.logger.With(zap.String("run_id", runID), zap.String("scenario", sc.Name))
	start := time.Now()
	defer func() { res.Duration = time.Since(start) }()

	if ctx.Err() != nil {
		res.Status = domain.ScenarioSkipped
		res.Error = "run cancelled before the scenario started"
		return res
	}

	var lastErr error
	for attempt := 1; attempt <= r.opts.Retries+1; attempt++ {
		if err := r.breaker.Allow(); err != nil {
			if lastErr == nil {
				res.Status = domain.ScenarioSkipped
				res.Error = "target unreachable, scenario skipped"
				logger.Warn("skipping scenario", zap.Error(err))
				return res
			}
			break
		}
		if err := limiter.Wait(ctx); err != nil {
			r.breaker.Release()
			lastErr = err
			break
		}

		res.Attempts = attempt
		shot, err := r.attempt(ctx, runID, sc, attempt, logger)
		r.breaker.Record(err)
		if err == nil {
			res.Status = domain.ScenarioPassed
			if attempt > 1 {
				res.Status = domain.ScenarioFlaky
			}
			res.ErrorCode, res.Error, res.Screenshot = "", "", ""
			logger.Info("scenario finished", zap.String("status", string(res.Status)), zap.Int("attempts", attempt))
			return res
		}

		lastErr = err
		if shot != "" {
			res.Screenshot = shot
		}
		logger.Warn("attempt failed",
			zap.Int("attempt", attempt),
			zap.String("code", domain.GetErrorCode(err)),
			zap.Error(err),
		)
		if ctx.Err() != nil || !retryable(err) {
			break
		}
	}

	res.Status = domain.ScenarioFailed
	if lastErr != nil {
		res.ErrorCode = domain.GetErrorCode(lastErr)
		res.Error = lastErr.Error()
	}
	logger.Error("scenario failed", zap.Int("attempts", res.Attempts), zap.String("code", res.ErrorCode))
	return res
}

// retryable is false for errors another attempt cannot fix
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	switch domain.GetErrorCode(err) {
	case domain.ErrCodeValidation, domain.ErrCodeUnsupportedEngine, domain.ErrCodeUnsupportedStrategy:
		return false
	}
	return true
}

// attempt runs sc once in a fresh session. On failure it returns the
// published screenshot location, if one could be taken.
func (r *Runner) attempt(ctx context.Context, runID string, sc Scenario, n int, logger *zap.Logger) (string, error) {
	session, err := r.launcher.Launch(ctx, r.opts.Engine, r.opts.Session)
	r.metrics.RecordBrowserLaunch(r.opts.Engine.String(), err)
	if err != nil {
		return "", err
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			logger.Warn("closing session", zap.Error(cerr))
		}
	}()

	strategy, err := auth.New(r.opts.AuthKind, auth.Config{Pages: r.opts.Pages, Timeout: r.opts.AuthTimeout})
	if err != nil {
		return "", err
	}
	app := facade.New(session.Driver(), r.opts.Pages, strategy)
	env := &Env{App: app, Data: r.data, Logger: logger.With(zap.Int("attempt", n))}

	if err := sc.Run(ctx, env); err != nil {
		return r.capture(context.WithoutCancel(ctx), runID, app, sc.Name, n, logger), err
	}
	return "", nil
}

func (r *Runner) capture(ctx context.Context, runID string, app *facade.Application, name string, n int, logger *zap.Logger) string {
	file := fmt.Sprintf("%s-attempt%d-%s", Slug(name), n, r.data.Timestamp())
	local, err := app.Screenshot(ctx, file)
	if err != nil {
		logger.Warn("failure screenshot", zap.Error(err))
		return ""
	}
	uri, err := r.artifacts.PublishScreenshot(ctx, runID, local)
	if err != nil {
		logger.Warn("publishing screenshot", zap.Error(err))
		return local
	}
	return uri
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slug turns a scenario name into a file-name-safe string
func Slug(name string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(name), "-"), "-")
}
