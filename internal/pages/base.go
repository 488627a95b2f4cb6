// Package pages holds the page objects for the HR application and the
// shared Base they are built on.
//
// Page objects do not embed one another. Each holds its own locator table
// and a *Base whose primitives it calls; every primitive waits for its
// target with a bounded timeout and reports failures as *domain.AppError.
package pages

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/testforge/hrm-e2e/internal/browser"
	"github.com/testforge/hrm-e2e/internal/config"
	"github.com/testforge/hrm-e2e/internal/domain"
	"github.com/testforge/hrm-e2e/internal/observability"
)

// Page is the capability every page object implements
type Page interface {
	Descriptor() domain.PageDescriptor
	Navigate(ctx context.Context) error
	VerifyLoaded(ctx context.Context) error
}

// Timeouts bounds every wait performed by Base
type Timeouts struct {
	Interaction time.Duration
	Assert      time.Duration
	Navigation  time.Duration
	SteadyState time.Duration
	Probe       time.Duration
	Poll        time.Duration
	// NetworkIdle is the best-effort network quiet wait before the
	// steady-state poll
	NetworkIdle time.Duration
}

// DefaultTimeouts mirrors the configuration defaults
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Interaction: 5 * time.Second,
		Assert:      5 * time.Second,
		Navigation:  30 * time.Second,
		SteadyState: 15 * time.Second,
		Probe:       time.Second,
		Poll:        100 * time.Millisecond,
		NetworkIdle: time.Second,
	}
}

// Options configures a Base
type Options struct {
	BaseURL       string
	Credentials   domain.Credentials
	Timeouts      Timeouts
	ScreenshotDir string
	Logger        *zap.Logger
	Metrics       *observability.Metrics
}

// OptionsFrom builds page options from loaded configuration
func OptionsFrom(cfg *config.Config, logger *zap.Logger, metrics *observability.Metrics) Options {
	return Options{
		BaseURL:     cfg.App.BaseURL,
		Credentials: cfg.App.Credentials(),
		Timeouts: Timeouts{
			Interaction: cfg.Timeouts.Interaction,
			Assert:      cfg.Timeouts.Assert,
			Navigation:  cfg.Timeouts.Navigation,
			SteadyState: cfg.Timeouts.SteadyState,
			Probe:       cfg.Timeouts.Probe,
			Poll:        cfg.Timeouts.Poll,
			NetworkIdle: time.Second,
		},
		ScreenshotDir: cfg.Runner.ScreenshotDir,
		Logger:        logger,
		Metrics:       metrics,
	}
}

// Base provides the shared navigation, interaction, query and assertion
// primitives. It is cheap to copy; WithTimeout returns a copy.
type Base struct {
	driver        browser.Driver
	desc          domain.PageDescriptor
	baseURL       string
	creds         domain.Credentials
	timeouts      Timeouts
	screenshotDir string
	logger        *zap.Logger
	metrics       *observability.Metrics
}

// NewBase binds a page descriptor to a driver
func NewBase(driver browser.Driver, desc domain.PageDescriptor, opts Options) *Base {
	def := DefaultTimeouts()
	t := opts.Timeouts
	if t.Interaction <= 0 {
		t.Interaction = def.Interaction
	}
	if t.Assert <= 0 {
		t.Assert = def.Assert
	}
	if t.Navigation <= 0 {
		t.Navigation = def.Navigation
	}
	if t.SteadyState <= 0 {
		t.SteadyState = def.SteadyState
	}
	if t.Probe <= 0 {
		t.Probe = def.Probe
	}
	if t.Poll <= 0 {
		t.Poll = def.Poll
	}
	if t.NetworkIdle <= 0 {
		t.NetworkIdle = def.NetworkIdle
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	dir := opts.ScreenshotDir
	if dir == "" {
		dir = "screenshots"
	}

	return &Base{
		driver:        driver,
		desc:          desc,
		baseURL:       opts.BaseURL,
		creds:         opts.Credentials,
		timeouts:      t,
		screenshotDir: dir,
		logger:        logger.With(zap.String("page", desc.Name)),
		metrics:       opts.Metrics,
	}
}

// WithTimeout returns a copy of b whose interaction timeout is d
func (b *Base) WithTimeout(d time.Duration) *Base {
	c := *b
	c.timeouts.Interaction = d
	return &c
}

// WithAssertTimeout returns a copy of b whose assertion timeout is d
func (b *Base) WithAssertTimeout(d time.Duration) *Base {
	c := *b
	c.timeouts.Assert = d
	return &c
}

// Descriptor returns the page descriptor
func (b *Base) Descriptor() domain.PageDescriptor { return b.desc }

// Driver returns the underlying driver
func (b *Base) Driver() browser.Driver { return b.driver }

// Timeouts returns the effective timeouts
func (b *Base) Timeouts() Timeouts { return b.timeouts }

// Credentials returns the configured default credentials
func (b *Base) Credentials() domain.Credentials { return b.creds }

// Logger returns the page-scoped logger
func (b *Base) Logger() *zap.Logger { return b.logger }

// URL returns the canonical URL of the page
func (b *Base) URL() string {
	return b.desc.URL(b.baseURL)
}

// ResolveURL joins path onto the base URL
func (b *Base) ResolveURL(path string) string {
	return domain.PageDescriptor{Path: path}.URL(b.baseURL)
}

// Navigate loads the canonical URL and waits for DOMContentLoaded
func (b *Base) Navigate(ctx context.Context) error {
	return b.NavigateTo(ctx, b.URL())
}

// NavigateTo loads url and waits for DOMContentLoaded
func (b *Base) NavigateTo(ctx context.Context, url string) error {
	start := time.Now()
	err := b.driver.Goto(ctx, url, b.timeouts.Navigation)
	if err != nil {
		err = domain.ErrNavigation(url, err)
	}
	b.metrics.RecordPrimitive("navigate", err, time.Since(start))
	if err != nil {
		b.logger.Debug("navigation failed", zap.String("url", url), zap.Error(err))
		return err
	}
	b.logger.Debug("navigated", zap.String("url", url), zap.Duration("took", time.Since(start)))
	return nil
}

// steadyStateScript is true once no animation or transition is running,
// no loading indicator is present and a main content marker exists.
const steadyStateScript = `() => {
  const animated = Array.from(document.querySelectorAll('[style*="animation"], [style*="transition"]'));
  for (const el of animated) {
    const style = window.getComputedStyle(el);
    if (style.animationName !== 'none' && style.animationPlayState === 'running') {
      return false;
    }
    if (style.transitionProperty && style.transitionProperty !== 'none' && parseFloat(style.transitionDuration) > 0) {
      return false;
    }
  }
  if (document.querySelectorAll('.oxd-loading-spinner, .loading, [data-testid*="loading"]').length > 0) {
    return false;
  }
  return document.querySelector('.oxd-main-menu, .oxd-topbar, .oxd-table, .orangehrm-login-panel') !== null;
}`

// WaitForSteadyState waits briefly for network idle, then polls the page
// until it is quiescent. Failure is a non-fatal STEADY_STATE_TIMEOUT;
// callers may continue and let a later assertion decide.
func (b *Base) WaitForSteadyState(ctx context.Context) error {
	start := time.Now()

	// Best effort: long-polling pages never reach network idle
	if err := b.driver.WaitForNetworkIdle(ctx, b.timeouts.NetworkIdle); err != nil {
		b.logger.Debug("network did not go idle", zap.Error(err))
	}

	remaining := b.timeouts.SteadyState - time.Since(start)
	if remaining < b.timeouts.Poll {
		remaining = b.timeouts.Poll
	}

	var lastErr error
	err := browser.Poll(ctx, b.timeouts.Poll, remaining, func(ctx context.Context) (bool, error) {
		v, err := b.driver.Evaluate(ctx, steadyStateScript)
		if err != nil {
			// Navigation in progress destroys the execution context; retry
			lastErr = err
			return false, nil
		}
		ok, _ := v.(bool)
		return ok, nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if lastErr != nil {
			err = fmt.Errorf("%w (last evaluation error: %v)", err, lastErr)
		}
		b.metrics.RecordSteadyStateTimeout()
		b.logger.Warn("page did not reach steady state",
			zap.Duration("timeout", b.timeouts.SteadyState),
			zap.Error(err),
		)
		return domain.ErrSteadyStateTimeout(b.timeouts.SteadyState, err)
	}
	return nil
}

// Screenshot writes <screenshot dir>/<name>.png and returns the path
func (b *Base) Screenshot(ctx context.Context, name string) (string, error) {
	if err := os.MkdirAll(b.screenshotDir, 0o755); err != nil {
		return "", domain.ErrInternal("creating screenshot directory", err)
	}
	path := filepath.Join(b.screenshotDir, name+".png")
	err := b.driver.Screenshot(ctx, path)
	b.metrics.RecordScreenshot("local", err)
	if err != nil {
		return "", domain.ErrInternal("capturing screenshot", err)
	}
	return path, nil
}

// Reload reloads the current page
func (b *Base) Reload(ctx context.Context) error {
	if err := b.driver.Reload(ctx, b.timeouts.Navigation); err != nil {
		return domain.ErrNavigation(b.driver.URL(), err)
	}
	return nil
}

// GoBack navigates one entry back in history
func (b *Base) GoBack(ctx context.Context) error {
	if err := b.driver.GoBack(ctx, b.timeouts.Navigation); err != nil {
		return domain.ErrNavigation(b.driver.URL(), err)
	}
	return nil
}

// GoForward navigates one entry forward in history
func (b *Base) GoForward(ctx context.Context) error {
	if err := b.driver.GoForward(ctx, b.timeouts.Navigation); err != nil {
		return domain.ErrNavigation(b.driver.URL(), err)
	}
	return nil
}

// CurrentURL returns the current location
func (b *Base) CurrentURL() string {
	return b.driver.URL()
}

// Title returns the document title
func (b *Base) Title(ctx context.Context) (string, error) {
	return b.driver.Title(ctx)
}

// Sleep pauses for d or until ctx is done. Prefer a wait on a condition.
func (b *Base) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
