package pages

import (
	"context"

	"github.com/testforge/hrm-e2e/internal/browser"
	"github.com/testforge/hrm-e2e/internal/domain"
	"github.com/testforge/hrm-e2e/internal/locator"
)

// LoginDescriptor is the login screen at the application root
var LoginDescriptor = domain.PageDescriptor{Name: "login", Path: "/", Title: "OrangeHRM"}

// Login screen locators
var (
	LoginUsername   = locator.CSS(`[name="username"]`)
	LoginPassword   = locator.CSS(`[name="password"]`)
	LoginSubmit     = locator.CSS(`[type="submit"]`)
	LoginPanel      = locator.CSS(".orangehrm-login-panel")
	LoginError      = locator.CSS(".oxd-alert-content-text")
	LoginBranding   = locator.Role("img").Named("company-branding")
	LoginForgotLink = locator.Text("Forgot your password?")

	// Present once the dashboard layout has rendered
	TopbarBreadcrumb = locator.CSS(".oxd-topbar-header-breadcrumb")
	ProfilePicture   = locator.Role("img").Named("profile picture").Within(locator.Role("banner"))
)

// LoginPage drives the login form
type LoginPage struct {
	base *Base
}

// NewLoginPage creates the login page object
func NewLoginPage(driver browser.Driver, opts Options) *LoginPage {
	return &LoginPage{base: NewBase(driver, LoginDescriptor, opts)}
}

// Base exposes the shared primitives
func (p *LoginPage) Base() *Base { return p.base }

func (p *LoginPage) Descriptor() domain.PageDescriptor { return p.base.Descriptor() }

// Navigate opens the login screen
func (p *LoginPage) Navigate(ctx context.Context) error {
	return p.base.Navigate(ctx)
}

// VerifyLoaded waits for the branding image, falling back to the login panel
func (p *LoginPage) VerifyLoaded(ctx context.Context) error {
	if _, err := p.base.FirstResolvable(ctx, LoginBranding, LoginPanel); err != nil {
		return err
	}
	return p.base.ExpectVisible(ctx, LoginUsername)
}

// Login fills both fields and submits
func (p *LoginPage) Login(ctx context.Context, creds domain.Credentials) error {
	if err := p.EnterUsername(ctx, creds.Username); err != nil {
		return err
	}
	if err := p.EnterPassword(ctx, creds.Password); err != nil {
		return err
	}
	return p.ClickLogin(ctx)
}

// EnterUsername fills the username field
func (p *LoginPage) EnterUsername(ctx context.Context, username string) error {
	return p.base.Fill(ctx, LoginUsername, username)
}

// EnterPassword fills the password field
func (p *LoginPage) EnterPassword(ctx context.Context, password string) error {
	return p.base.Fill(ctx, LoginPassword, password)
}

// ClickLogin submits the form
func (p *LoginPage) ClickLogin(ctx context.Context) error {
	return p.base.Click(ctx, LoginSubmit)
}

// ClickForgotPassword follows the password reset link
func (p *LoginPage) ClickForgotPassword(ctx context.Context) error {
	return p.base.Click(ctx, LoginForgotLink)
}

// ClearUsername empties the username field
func (p *LoginPage) ClearUsername(ctx context.Context) error {
	return p.base.Clear(ctx, LoginUsername)
}

// ClearPassword empties the password field
func (p *LoginPage) ClearPassword(ctx context.Context) error {
	return p.base.Clear(ctx, LoginPassword)
}

// ClearAll empties both fields
func (p *LoginPage) ClearAll(ctx context.Context) error {
	if err := p.ClearUsername(ctx); err != nil {
		return err
	}
	return p.ClearPassword(ctx)
}

// PressTabInUsername moves focus out of the username field
func (p *LoginPage) PressTabInUsername(ctx context.Context) error {
	return p.base.Press(ctx, LoginUsername, "Tab")
}

// PressEnterInUsername submits from the username field
func (p *LoginPage) PressEnterInUsername(ctx context.Context) error {
	return p.base.Press(ctx, LoginUsername, "Enter")
}

// PressEnterInPassword submits from the password field
func (p *LoginPage) PressEnterInPassword(ctx context.Context) error {
	return p.base.Press(ctx, LoginPassword, "Enter")
}

// VerifyLoginSuccessful asserts the dashboard header is shown
func (p *LoginPage) VerifyLoginSuccessful(ctx context.Context) error {
	return p.base.ExpectVisible(ctx, TopbarBreadcrumb)
}

// VerifyLoginFailed asserts the error alert is shown
func (p *LoginPage) VerifyLoginFailed(ctx context.Context) error {
	return p.base.ExpectVisible(ctx, LoginError)
}

// VerifyErrorMessage asserts the error alert contains msg
func (p *LoginPage) VerifyErrorMessage(ctx context.Context, msg string) error {
	return p.base.ExpectContainsText(ctx, LoginError, msg)
}

// VerifyUsernameValue asserts the username field holds value
func (p *LoginPage) VerifyUsernameValue(ctx context.Context, value string) error {
	return p.base.ExpectValue(ctx, LoginUsername, value)
}

// VerifyPasswordValue asserts the password field holds value
func (p *LoginPage) VerifyPasswordValue(ctx context.Context, value string) error {
	return p.base.ExpectValue(ctx, LoginPassword, value)
}

// VerifyFieldsEmpty asserts both fields are empty
func (p *LoginPage) VerifyFieldsEmpty(ctx context.Context) error {
	if err := p.VerifyUsernameValue(ctx, ""); err != nil {
		return err
	}
	return p.VerifyPasswordValue(ctx, "")
}

// VerifyUsernameFieldAccessibility asserts the username input attributes
func (p *LoginPage) VerifyUsernameFieldAccessibility(ctx context.Context) error {
	if err := p.base.ExpectAttribute(ctx, LoginUsername, "name", "username"); err != nil {
		return err
	}
	return p.base.ExpectAttribute(ctx, LoginUsername, "type", "text")
}

// VerifyPasswordFieldAccessibility asserts the password input masks its value
func (p *LoginPage) VerifyPasswordFieldAccessibility(ctx context.Context) error {
	if err := p.base.ExpectAttribute(ctx, LoginPassword, "name", "password"); err != nil {
		return err
	}
	return p.base.ExpectAttribute(ctx, LoginPassword, "type", "password")
}

// VerifyLoginButtonAccessibility asserts the submit button type
func (p *LoginPage) VerifyLoginButtonAccessibility(ctx context.Context) error {
	return p.base.ExpectAttribute(ctx, LoginSubmit, "type", "submit")
}

func (p *LoginPage) IsLoginButtonEnabled(ctx context.Context) bool {
	return p.base.IsEnabled(ctx, LoginSubmit)
}

func (p *LoginPage) IsUsernameFieldVisible(ctx context.Context) bool {
	return p.base.IsVisible(ctx, LoginUsername)
}

func (p *LoginPage) IsPasswordFieldVisible(ctx context.Context) bool {
	return p.base.IsVisible(ctx, LoginPassword)
}

func (p *LoginPage) IsErrorVisible(ctx context.Context) bool {
	return p.base.IsVisible(ctx, LoginError)
}

// ErrorMessage returns the text of the error alert
func (p *LoginPage) ErrorMessage(ctx context.Context) (string, error) {
	return p.base.Text(ctx, LoginError)
}

// UsernameValue returns the current username field value
func (p *LoginPage) UsernameValue(ctx context.Context) (string, error) {
	return p.base.Value(ctx, LoginUsername)
}

// PasswordValue returns the current password field value
func (p *LoginPage) PasswordValue(ctx context.Context) (string, error) {
	return p.base.Value(ctx, LoginPassword)
}
