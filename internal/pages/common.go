package pages

import (
	"context"

	"github.com/testforge/hrm-e2e/internal/browser"
	"github.com/testforge/hrm-e2e/internal/domain"
	"github.com/testforge/hrm-e2e/internal/locator"
)

// LogoutPath ends the session server-side and redirects to the login screen
const LogoutPath = "/web/index.php/auth/logout"

// CommonDescriptor has no canonical URL of its own; it navigates to the root
var CommonDescriptor = domain.PageDescriptor{Name: "common", Path: "/", Title: "OrangeHRM"}

// CommonPage holds session helpers that are not tied to one screen
type CommonPage struct {
	base  *Base
	login *LoginPage
}

// NewCommonPage creates the common page object
func NewCommonPage(driver browser.Driver, opts Options) *CommonPage {
	return &CommonPage{
		base:  NewBase(driver, CommonDescriptor, opts),
		login: NewLoginPage(driver, opts),
	}
}

// Base exposes the shared primitives
func (p *CommonPage) Base() *Base { return p.base }

func (p *CommonPage) Descriptor() domain.PageDescriptor { return p.base.Descriptor() }

func (p *CommonPage) Navigate(ctx context.Context) error {
	return p.base.Navigate(ctx)
}

// VerifyLoaded asserts the document title
func (p *CommonPage) VerifyLoaded(ctx context.Context) error {
	return p.base.ExpectTitle(ctx, p.base.desc.Title)
}

// LoginToApplication signs in through the login form. A nil creds uses
// the configured default account.
func (p *CommonPage) LoginToApplication(ctx context.Context, creds *domain.Credentials) error {
	c := p.base.Credentials()
	if creds != nil {
		c = *creds
	}

	if err := p.login.Navigate(ctx); err != nil {
		return err
	}
	if err := p.login.Login(ctx, c); err != nil {
		return err
	}
	if err := p.base.ExpectURLContains(ctx, DashboardDescriptor.Path); err != nil {
		return err
	}
	return p.login.VerifyLoginSuccessful(ctx)
}

// Logout ends the session through the logout endpoint
func (p *CommonPage) Logout(ctx context.Context) error {
	if err := p.base.NavigateTo(ctx, p.base.ResolveURL(LogoutPath)); err != nil {
		return err
	}
	return p.base.ExpectVisible(ctx, LoginUsername)
}

// IsLoggedIn probes for the user dropdown of the authenticated layout
func (p *CommonPage) IsLoggedIn(ctx context.Context) bool {
	return p.base.IsVisible(ctx, UserDropdown)
}

// IsLoggedOut probes for the login form
func (p *CommonPage) IsLoggedOut(ctx context.Context) bool {
	return p.base.IsVisible(ctx, LoginUsername)
}

// ContainsText probes for visible text anywhere on the page
func (p *CommonPage) ContainsText(ctx context.Context, text string) bool {
	return p.base.IsVisible(ctx, locator.Text(text).First())
}

func (p *CommonPage) CurrentURL() string {
	return p.base.CurrentURL()
}

func (p *CommonPage) Title(ctx context.Context) (string, error) {
	return p.base.Title(ctx)
}
