package browser

import (
	"context"
	"fmt"
	"sync"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"
)

// Factory launches isolated browser sessions
type Factory struct {
	logger *zap.Logger
	start  func() (*playwright.Playwright, error)
}

// NewFactory creates a factory that starts a playwright driver per session
func NewFactory(logger *zap.Logger) *Factory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Factory{
		logger: logger,
		start:  func() (*playwright.Playwright, error) { return playwright.Run() },
	}
}

// Session owns one browser, one context and one page
type Session struct {
	Engine Engine
	Config SessionConfig

	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
	driver  Driver
	logger  *zap.Logger

	closeOnce sync.Once
	closeErr  error
}

// Launch validates engine, then starts playwright, launches the browser and
// opens a context and page. An unsupported engine fails before any process
// is started.
func (f *Factory) Launch(ctx context.Context, engine Engine, cfg SessionConfig) (*Session, error) {
	if err := engine.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	pw, err := f.start()
	if err != nil {
		return nil, fmt.Errorf("starting playwright: %w", err)
	}

	var browserType playwright.BrowserType
	switch engine {
	case EngineChromium:
		browserType = pw.Chromium
	case EngineFirefox:
		browserType = pw.Firefox
	case EngineWebKit:
		browserType = pw.WebKit
	}

	opts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Headless),
		SlowMo:   playwright.Float(float64(cfg.SlowMo.Milliseconds())),
	}
	if args := cfg.launchArgs(engine); len(args) > 0 {
		opts.Args = args
	}

	browser, err := browserType.Launch(opts)
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("launching %s: %w", engine, err)
	}

	browserCtx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  cfg.Viewport.Width,
			Height: cfg.Viewport.Height,
		},
		IgnoreHttpsErrors: playwright.Bool(cfg.IgnoreHTTPSErrors),
	})
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("creating browser context: %w", err)
	}
	browserCtx.SetDefaultTimeout(float64(cfg.DefaultTimeout.Milliseconds()))
	browserCtx.SetDefaultNavigationTimeout(float64(cfg.NavigationTimeout.Milliseconds()))

	page, err := browserCtx.NewPage()
	if err != nil {
		browserCtx.Close()
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("creating page: %w", err)
	}

	f.logger.Debug("browser session launched",
		zap.String("engine", engine.String()),
		zap.Bool("headless", cfg.Headless),
		zap.Duration("slow_mo", cfg.SlowMo),
	)

	return &Session{
		Engine:  engine,
		Config:  cfg,
		pw:      pw,
		browser: browser,
		context: browserCtx,
		page:    page,
		driver:  NewPlaywrightDriver(page),
		logger:  f.logger,
	}, nil
}

// Driver returns the page driver
func (s *Session) Driver() Driver {
	return s.driver
}

// Close tears down page, context, browser and the playwright driver.
// It is safe to call more than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		if s.context != nil {
			if err := s.context.Close(); err != nil {
				s.logger.Warn("closing browser context", zap.Error(err))
			}
		}
		if s.browser != nil {
			if err := s.browser.Close(); err != nil {
				s.logger.Warn("closing browser", zap.Error(err))
			}
		}
		if s.pw != nil {
			s.closeErr = s.pw.Stop()
		}
	})
	return s.closeErr
}
