// Package auth holds the interchangeable login flows of the HR application.
//
// Every flow is a form: open an entry URL, fill two fields, submit, then
// wait for the dashboard route and a flow-specific success marker. The
// set of flows is closed; New dispatches over Kind exhaustively.
package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/testforge/hrm-e2e/internal/browser"
	"github.com/testforge/hrm-e2e/internal/config"
	"github.com/testforge/hrm-e2e/internal/domain"
	"github.com/testforge/hrm-e2e/internal/locator"
	"github.com/testforge/hrm-e2e/internal/observability"
	"github.com/testforge/hrm-e2e/internal/pages"
)

// DashboardGlob matches the post-login route of every flow
const DashboardGlob = "**/index.php/dashboard/index"

// minMarkerWait is the least time left for the success marker once the
// dashboard route has loaded.
const minMarkerWait = 100 * time.Millisecond

// Kind selects a login flow
type Kind string

const (
	KindStandard Kind = "standard"
	KindSSO      Kind = "sso"
	KindLDAP     Kind = "ldap"
)

// Kinds lists every supported flow
func Kinds() []Kind {
	return []Kind{KindStandard, KindSSO, KindLDAP}
}

// ParseKind converts user input to a Kind
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case KindStandard, KindSSO, KindLDAP:
		return k, nil
	default:
		return "", domain.ErrUnsupportedStrategy(s)
	}
}

// Strategy is one login flow
type Strategy interface {
	Name() string
	// Authenticate signs in and blocks until the success marker appears or
	// the auth timeout elapses (AUTHENTICATION_TIMEOUT).
	Authenticate(ctx context.Context, driver browser.Driver, creds domain.Credentials) error
	// IsAuthenticated probes for the flow's signed-in marker. It never errors.
	IsAuthenticated(ctx context.Context, driver browser.Driver) bool
}

// Config configures every strategy
type Config struct {
	// Page primitives used by the flows
	Pages pages.Options
	// Timeout bounds the wait for the post-login route and marker
	Timeout time.Duration
}

// ConfigFrom builds strategy configuration from loaded configuration
func ConfigFrom(cfg *config.Config, logger *zap.Logger, metrics *observability.Metrics) Config {
	return Config{
		Pages:   pages.OptionsFrom(cfg, logger, metrics),
		Timeout: cfg.Timeouts.Auth,
	}
}

// New returns the strategy for kind
func New(kind Kind, cfg Config) (Strategy, error) {
	switch kind {
	case KindStandard:
		return NewStandard(cfg), nil
	case KindSSO:
		return NewSSO(cfg), nil
	case KindLDAP:
		return NewLDAP(cfg), nil
	default:
		return nil, domain.ErrUnsupportedStrategy(string(kind))
	}
}

// FormStrategy is a login flow driven through an HTML form
type FormStrategy struct {
	kind     Kind
	desc     domain.PageDescriptor
	username locator.Locator
	password locator.Locator
	submit   locator.Locator
	// marker must be visible after the dashboard route is reached; optional
	marker locator.Locator
	// probes are tried in order by IsAuthenticated
	probes []locator.Locator

	cfg    Config
	logger *zap.Logger
}

var submitButton = locator.CSS(`[type="submit"]`)

// NewStandard is the application's own login form at the base URL
func NewStandard(cfg Config) *FormStrategy {
	return newForm(KindStandard, cfg, "/", FormStrategy{
		username: pages.LoginUsername,
		password: pages.LoginPassword,
		submit:   pages.LoginSubmit,
		marker:   locator.CSS(".oxd-layout-container"),
		probes:   []locator.Locator{locator.TestID("user-dropdown"), pages.UserDropdown},
	})
}

// NewSSO is the single sign-on form at /auth/sso
func NewSSO(cfg Config) *FormStrategy {
	return newForm(KindSSO, cfg, "/auth/sso", FormStrategy{
		username: locator.CSS(`[name="sso-username"]`),
		password: locator.CSS(`[name="sso-password"]`),
		submit:   submitButton,
		probes:   []locator.Locator{locator.TestID("sso-user-info")},
	})
}

// NewLDAP is the directory login form at /auth/ldap
func NewLDAP(cfg Config) *FormStrategy {
	return newForm(KindLDAP, cfg, "/auth/ldap", FormStrategy{
		username: locator.CSS(`[name="ldap-username"]`),
		password: locator.CSS(`[name="ldap-password"]`),
		submit:   submitButton,
		probes:   []locator.Locator{locator.TestID("ldap-user-info")},
	})
}

func newForm(kind Kind, cfg Config, path string, s FormStrategy) *FormStrategy {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	logger := cfg.Pages.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s.kind = kind
	s.desc = domain.PageDescriptor{Name: string(kind) + "-login", Path: path}
	s.cfg = cfg
	s.logger = logger.With(zap.String("strategy", string(kind)))
	return &s
}

func (s *FormStrategy) Name() string { return string(s.kind) }

// Kind returns the flow this strategy drives
func (s *FormStrategy) Kind() Kind { return s.kind }

func (s *FormStrategy) Authenticate(ctx context.Context, driver browser.Driver, creds domain.Credentials) error {
	if creds.IsZero() {
		creds = s.cfg.Pages.Credentials
	}
	b := pages.NewBase(driver, s.desc, s.cfg.Pages)
	s.logger.Debug("authenticating", zap.String("username", creds.Username))

	if err := b.Navigate(ctx); err != nil {
		return err
	}
	if err := b.Fill(ctx, s.username, creds.Username); err != nil {
		return err
	}
	if err := b.Fill(ctx, s.password, creds.Password); err != nil {
		return err
	}
	if err := b.Click(ctx, s.submit); err != nil {
		return err
	}

	deadline := time.Now().Add(s.cfg.Timeout)
	if err := driver.WaitForURL(ctx, DashboardGlob, s.cfg.Timeout); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return domain.ErrAuthTimeout(s.Name(), err).WithMetadata(domain.MetaURL, driver.URL())
	}

	if s.marker.Validate() == nil {
		if err := driver.Locate(s.marker).WaitVisible(ctx, remaining(deadline, minMarkerWait)); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return domain.ErrAuthTimeout(s.Name(), err).WithMetadata(domain.MetaLocator, s.marker.String())
		}
	}

	s.logger.Info("authenticated", zap.String("username", creds.Username))
	return nil
}

func (s *FormStrategy) IsAuthenticated(ctx context.Context, driver browser.Driver) bool {
	b := pages.NewBase(driver, s.desc, s.cfg.Pages)
	for _, p := range s.probes {
		if b.IsVisible(ctx, p) {
			return true
		}
	}
	return false
}

// Context holds the active strategy and lets callers swap it at runtime
type Context struct {
	mu       sync.RWMutex
	strategy Strategy
}

// NewContext creates a holder for strategy
func NewContext(strategy Strategy) *Context {
	return &Context{strategy: strategy}
}

// SetStrategy replaces the active strategy
func (c *Context) SetStrategy(strategy Strategy) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.strategy = strategy
}

// Strategy returns the active strategy
func (c *Context) Strategy() Strategy {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.strategy
}

func (c *Context) Authenticate(ctx context.Context, driver browser.Driver, creds domain.Credentials) error {
	s := c.Strategy()
	if s == nil {
		return domain.ErrValidation("no authentication strategy set")
	}
	return s.Authenticate(ctx, driver, creds)
}

func (c *Context) IsAuthenticated(ctx context.Context, driver browser.Driver) bool {
	s := c.Strategy()
	if s == nil {
		return false
	}
	return s.IsAuthenticated(ctx, driver)
}

// remaining is the time left until deadline, never less than floor
func remaining(deadline time.Time, floor time.Duration) time.Duration {
	if d := time.Until(deadline); d > floor {
		return d
	}
	return floor
}
