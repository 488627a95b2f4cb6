package pages

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testforge/hrm-e2e/internal/browser/browsertest"
	"github.com/testforge/hrm-e2e/internal/domain"
	"github.com/testforge/hrm-e2e/internal/locator"
)

// loginFixture renders the login form. A click on submit with the right
// password lands on the dashboard; anything else shows the error alert.
func loginFixture(t *testing.T) (*browsertest.Driver, *browsertest.Node, *browsertest.Node) {
	t.Helper()
	d := browsertest.New()
	d.SetTitle("OrangeHRM")

	username := d.Add(LoginUsername, &browsertest.Node{Attrs: map[string]string{"name": "username", "type": "text"}})
	password := d.Add(LoginPassword, &browsertest.Node{Attrs: map[string]string{"name": "password", "type": "password"}})
	d.Add(LoginPanel, &browsertest.Node{})
	d.Add(LoginForgotLink, &browsertest.Node{})
	d.Add(LoginSubmit, &browsertest.Node{
		Attrs: map[string]string{"type": "submit"},
		OnClick: func() {
			if username.Value == "Admin" && password.Value == "admin123" {
				d.SetURL(testBaseURL + DashboardDescriptor.Path)
				d.Add(TopbarBreadcrumb, &browsertest.Node{Text: "Dashboard"})
				d.Add(UserDropdown, &browsertest.Node{})
				return
			}
			d.Add(LoginError, &browsertest.Node{Text: "Invalid credentials"})
		},
	})
	return d, username, password
}

func TestLoginPage_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials", func(t *testing.T) {
		d, _, _ := loginFixture(t)
		p := NewLoginPage(d, testOptions(t))

		require.NoError(t, p.Navigate(ctx))
		require.NoError(t, p.VerifyLoaded(ctx))
		require.NoError(t, p.Login(ctx, domain.Credentials{Username: "Admin", Password: "admin123"}))
		require.NoError(t, p.VerifyLoginSuccessful(ctx))
		assert.False(t, p.IsErrorVisible(ctx))
	})

	t.Run("invalid credentials", func(t *testing.T) {
		d, _, _ := loginFixture(t)
		p := NewLoginPage(d, testOptions(t))

		require.NoError(t, p.Login(ctx, domain.Credentials{Username: "Admin", Password: "nope"}))
		require.NoError(t, p.VerifyLoginFailed(ctx))
		require.NoError(t, p.VerifyErrorMessage(ctx, "Invalid credentials"))
		assert.True(t, p.IsErrorVisible(ctx))

		msg, err := p.ErrorMessage(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Invalid credentials", msg)

		requireCode(t, p.VerifyLoginSuccessful(ctx), domain.ErrCodeAssertion)
	})
}

func TestLoginPage_Fields(t *testing.T) {
	ctx := context.Background()
	d, _, _ := loginFixture(t)
	p := NewLoginPage(d, testOptions(t))

	require.NoError(t, p.EnterUsername(ctx, "Admin"))
	require.NoError(t, p.EnterPassword(ctx, "secret"))
	require.NoError(t, p.VerifyUsernameValue(ctx, "Admin"))
	require.NoError(t, p.VerifyPasswordValue(ctx, "secret"))

	v, err := p.UsernameValue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Admin", v)
	v, err = p.PasswordValue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "secret", v)

	require.NoError(t, p.ClearAll(ctx))
	require.NoError(t, p.VerifyFieldsEmpty(ctx))

	require.NoError(t, p.PressTabInUsername(ctx))
	require.NoError(t, p.PressEnterInUsername(ctx))
	require.NoError(t, p.PressEnterInPassword(ctx))
	assert.Equal(t, []string{"fill:Admin", "clear:", "press:Tab", "press:Enter"}, kinds(d.ActionsOn(LoginUsername)))

	require.NoError(t, p.ClickForgotPassword(ctx))
	assert.Len(t, d.ActionsOn(LoginForgotLink), 1)

	assert.True(t, p.IsUsernameFieldVisible(ctx))
	assert.True(t, p.IsPasswordFieldVisible(ctx))
	assert.True(t, p.IsLoginButtonEnabled(ctx))
}

func TestLoginPage_Accessibility(t *testing.T) {
	ctx := context.Background()
	d, _, password := loginFixture(t)
	p := NewLoginPage(d, testOptions(t))

	require.NoError(t, p.VerifyUsernameFieldAccessibility(ctx))
	require.NoError(t, p.VerifyPasswordFieldAccessibility(ctx))
	require.NoError(t, p.VerifyLoginButtonAccessibility(ctx))

	password.Attrs["type"] = "text"
	appErr := requireCode(t, p.VerifyPasswordFieldAccessibility(ctx), domain.ErrCodeAssertion)
	assert.Equal(t, "password", appErr.Metadata[domain.MetaExpected])
	assert.Equal(t, "text", appErr.Metadata[domain.MetaActual])
}

func TestLoginPage_VerifyLoadedWithoutForm(t *testing.T) {
	p := NewLoginPage(browsertest.New(), testOptions(t))
	requireCode(t, p.VerifyLoaded(context.Background()), domain.ErrCodeElementNotFound)
}

func TestSection(t *testing.T) {
	assert.Len(t, Sections(), 12)
	assert.Len(t, CoreSections(), 7)
	for _, s := range Sections() {
		assert.NoError(t, s.Validate(), s)
	}
	requireCode(t, Section("Payroll").Validate(), domain.ErrCodeValidation)
	assert.Equal(t, `role=link[name="My Info"][exact]`, SectionMyInfo.Link().String())
}

func dashboardFixture(t *testing.T, sections ...Section) (*DashboardPage, *browsertest.Driver) {
	t.Helper()
	d := browsertest.New()
	d.SetTitle("OrangeHRM")
	d.Add(TopbarBreadcrumb, &browsertest.Node{Text: "Dashboard"})
	d.Add(MainMenu, &browsertest.Node{})
	d.Add(locator.CSS(".oxd-text--h6"), &browsertest.Node{Text: "Dashboard"})
	for _, s := range sections {
		d.Add(s.Link(), &browsertest.Node{Text: string(s)})
	}
	return NewDashboardPage(d, testOptions(t)), d
}

func TestDashboardPage_Navigation(t *testing.T) {
	ctx := context.Background()

	t.Run("accessible link", func(t *testing.T) {
		p, d := dashboardFixture(t, CoreSections()...)
		require.NoError(t, p.NavigateTo(ctx, SectionAdmin))
		assert.Len(t, d.ActionsOn(SectionAdmin.Link()), 1)
	})

	t.Run("falls back to the menu item", func(t *testing.T) {
		p, d := dashboardFixture(t)
		d.Add(locator.CSS(".oxd-main-menu-item"), &browsertest.Node{Text: "PIM"}, &browsertest.Node{Text: "Buzz"})
		require.NoError(t, p.NavigateTo(ctx, SectionBuzz))
		assert.Len(t, d.ActionsOn(SectionBuzz.menuItem()), 1)
	})

	t.Run("unknown section", func(t *testing.T) {
		p, d := dashboardFixture(t)
		requireCode(t, p.NavigateTo(ctx, Section("Payroll")), domain.ErrCodeValidation)
		assert.Empty(t, d.Actions())
	})
}

func TestDashboardPage_Menu(t *testing.T) {
	ctx := context.Background()
	p, d := dashboardFixture(t, CoreSections()...)

	require.NoError(t, p.Navigate(ctx))
	require.NoError(t, p.VerifyLoaded(ctx))
	require.NoError(t, p.VerifyMenuItemsVisible(ctx))
	requireCode(t, p.VerifyMenuItemsVisible(ctx, SectionBuzz), domain.ErrCodeAssertion)

	assert.Equal(t, CoreSections(), p.VisibleSections(ctx))
	assert.True(t, p.IsSectionVisible(ctx, SectionPIM))
	assert.False(t, p.IsSectionVisible(ctx, SectionClaim))

	d.Add(menuSearchFallback, &browsertest.Node{})
	require.NoError(t, p.SearchMenu(ctx, "adm"))
	require.NoError(t, p.ClearSearch(ctx))
	assert.Equal(t, []string{"fill:adm", "fill:"}, kinds(d.ActionsOn(menuSearchFallback)))

	d.Add(UserDropdown, &browsertest.Node{})
	d.Add(LogoutMenuItem, &browsertest.Node{})
	require.NoError(t, p.Logout(ctx))
	assert.Len(t, d.ActionsOn(LogoutMenuItem), 1)

	require.NoError(t, p.Refresh(ctx))
}

func TestCommonPage(t *testing.T) {
	ctx := context.Background()

	t.Run("nil credentials use the configured account", func(t *testing.T) {
		d, _, _ := loginFixture(t)
		p := NewCommonPage(d, testOptions(t))

		assert.False(t, p.IsLoggedIn(ctx))
		assert.True(t, p.IsLoggedOut(ctx))

		require.NoError(t, p.LoginToApplication(ctx, nil))
		assert.Equal(t, []string{"fill:Admin"}, kinds(d.ActionsOn(LoginUsername)))
		assert.Equal(t, []string{"fill:admin123"}, kinds(d.ActionsOn(LoginPassword)))
		assert.True(t, p.IsLoggedIn(ctx))
		assert.Contains(t, p.CurrentURL(), DashboardDescriptor.Path)
	})

	t.Run("explicit credentials", func(t *testing.T) {
		d, _, _ := loginFixture(t)
		p := NewCommonPage(d, testOptions(t))

		err := p.LoginToApplication(ctx, &domain.Credentials{Username: "Admin", Password: "wrong"})
		requireCode(t, err, domain.ErrCodeAssertion)
		assert.Equal(t, []string{"fill:wrong"}, kinds(d.ActionsOn(LoginPassword)))
		assert.True(t, p.Base().IsVisible(ctx, LoginError))

		assert.False(t, p.ContainsText(ctx, "Invalid credentials"))
		d.Add(locator.Text("Invalid credentials"), &browsertest.Node{Text: "Invalid credentials"})
		assert.True(t, p.ContainsText(ctx, "Invalid credentials"))
	})

	t.Run("logout goes through the endpoint", func(t *testing.T) {
		d, _, _ := loginFixture(t)
		p := NewCommonPage(d, testOptions(t))

		require.NoError(t, p.Logout(ctx))
		assert.Equal(t, testBaseURL+LogoutPath, p.CurrentURL())

		title, err := p.Title(ctx)
		require.NoError(t, err)
		assert.Equal(t, "OrangeHRM", title)
		require.NoError(t, p.VerifyLoaded(ctx))
	})
}
