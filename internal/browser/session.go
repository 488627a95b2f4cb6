package browser

import (
	"errors"
	"time"

	"github.com/testforge/hrm-e2e/internal/config"
)

// ErrPollTimeout is returned by Poll when the condition never held
var ErrPollTimeout = errors.New("condition not met before timeout")

// Default viewport for every engine
const (
	DefaultViewportWidth  = 1920
	DefaultViewportHeight = 1080
)

// Viewport is the page size in CSS pixels
type Viewport struct {
	Width  int
	Height int
}

// SessionConfig is the launch options bag consumed by Factory.Launch
type SessionConfig struct {
	Headless          bool
	SlowMo            time.Duration
	Args              []string
	Viewport          Viewport
	IgnoreHTTPSErrors bool
	// DefaultTimeout bounds every playwright call that has no explicit timeout
	DefaultTimeout    time.Duration
	NavigationTimeout time.Duration
}

// DefaultSessionConfig returns headless settings with the fixed viewport
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		Headless:          true,
		Viewport:          Viewport{Width: DefaultViewportWidth, Height: DefaultViewportHeight},
		IgnoreHTTPSErrors: true,
		DefaultTimeout:    5 * time.Second,
		NavigationTimeout: 30 * time.Second,
	}
}

// SessionConfigFrom builds a SessionConfig from loaded configuration
func SessionConfigFrom(cfg *config.Config) SessionConfig {
	sc := SessionConfig{
		Headless:          cfg.Browser.Headless,
		SlowMo:            cfg.Browser.SlowMo,
		Args:              append([]string(nil), cfg.Browser.Args...),
		Viewport:          Viewport{Width: cfg.Browser.ViewportWidth, Height: cfg.Browser.ViewportHeight},
		IgnoreHTTPSErrors: cfg.Browser.IgnoreHTTPSErrors,
		DefaultTimeout:    cfg.Timeouts.Interaction,
		NavigationTimeout: cfg.Timeouts.Navigation,
	}
	return sc.withDefaults()
}

func (c SessionConfig) withDefaults() SessionConfig {
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		c.Viewport = Viewport{Width: DefaultViewportWidth, Height: DefaultViewportHeight}
	}
	if c.DefaultTimeout <= 0 {
		c.DefaultTimeout = 5 * time.Second
	}
	if c.NavigationTimeout <= 0 {
		c.NavigationTimeout = 30 * time.Second
	}
	return c
}

// launchArgs returns the extra arguments for engine. Only chromium accepts
// command-line switches from the configuration.
func (c SessionConfig) launchArgs(engine Engine) []string {
	switch engine {
	case EngineChromium:
		return c.Args
	case EngineFirefox, EngineWebKit:
		return nil
	default:
		return nil
	}
}
