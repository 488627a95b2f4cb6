package pages

import (
	"context"

	"github.com/testforge/hrm-e2e/internal/browser"
	"github.com/testforge/hrm-e2e/internal/domain"
	"github.com/testforge/hrm-e2e/internal/locator"
)

// DashboardDescriptor is the landing page after login
var DashboardDescriptor = domain.PageDescriptor{
	Name:  "dashboard",
	Path:  "/web/index.php/dashboard/index",
	Title: "OrangeHRM",
}

// Section is a main menu entry
type Section string

const (
	SectionAdmin       Section = "Admin"
	SectionPIM         Section = "PIM"
	SectionLeave       Section = "Leave"
	SectionTime        Section = "Time"
	SectionRecruitment Section = "Recruitment"
	SectionMyInfo      Section = "My Info"
	SectionPerformance Section = "Performance"
	SectionDashboard   Section = "Dashboard"
	SectionDirectory   Section = "Directory"
	SectionMaintenance Section = "Maintenance"
	SectionClaim       Section = "Claim"
	SectionBuzz        Section = "Buzz"
)

// Sections lists every main menu entry in menu order
func Sections() []Section {
	return []Section{
		SectionAdmin, SectionPIM, SectionLeave, SectionTime, SectionRecruitment,
		SectionMyInfo, SectionPerformance, SectionDashboard, SectionDirectory,
		SectionMaintenance, SectionClaim, SectionBuzz,
	}
}

// CoreSections are the modules every admin account sees
func CoreSections() []Section {
	return []Section{
		SectionAdmin, SectionPIM, SectionLeave, SectionTime,
		SectionRecruitment, SectionMyInfo, SectionPerformance,
	}
}

// Validate rejects names outside the menu
func (s Section) Validate() error {
	switch s {
	case SectionAdmin, SectionPIM, SectionLeave, SectionTime, SectionRecruitment,
		SectionMyInfo, SectionPerformance, SectionDashboard, SectionDirectory,
		SectionMaintenance, SectionClaim, SectionBuzz:
		return nil
	default:
		return domain.ErrValidationField("section", "unknown menu section "+string(s))
	}
}

// Link is the menu link for s
func (s Section) Link() locator.Locator {
	return locator.Role("link").Named(string(s)).Exact()
}

// menuItem is the CSS fallback for s
func (s Section) menuItem() locator.Locator {
	return locator.CSS(".oxd-main-menu-item").Filter(string(s))
}

// Dashboard locators
var (
	UserDropdown   = locator.CSS(".oxd-userdropdown-tab")
	LogoutMenuItem = locator.Role("menuitem").Named("Logout")
	MainMenu       = locator.CSS(".oxd-main-menu")
	WelcomeHeading = locator.CSS(".oxd-text--h6").First()

	menuSearch         = locator.Placeholder("Search").Within(MainMenu)
	menuSearchFallback = locator.CSS(".oxd-main-menu-search input")
)

// DashboardPage drives the main menu and user dropdown
type DashboardPage struct {
	base *Base
}

// NewDashboardPage creates the dashboard page object
func NewDashboardPage(driver browser.Driver, opts Options) *DashboardPage {
	return &DashboardPage{base: NewBase(driver, DashboardDescriptor, opts)}
}

// Base exposes the shared primitives
func (p *DashboardPage) Base() *Base { return p.base }

func (p *DashboardPage) Descriptor() domain.PageDescriptor { return p.base.Descriptor() }

// Navigate opens the dashboard
func (p *DashboardPage) Navigate(ctx context.Context) error {
	return p.base.Navigate(ctx)
}

// VerifyLoaded asserts title, URL, header, menu and welcome heading
func (p *DashboardPage) VerifyLoaded(ctx context.Context) error {
	if err := p.base.VerifyPageLoaded(ctx); err != nil {
		return err
	}
	for _, loc := range []locator.Locator{TopbarBreadcrumb, MainMenu, WelcomeHeading} {
		if err := p.base.ExpectVisible(ctx, loc); err != nil {
			return err
		}
	}
	return nil
}

// NavigateTo opens a main menu section, preferring the accessible link
func (p *DashboardPage) NavigateTo(ctx context.Context, s Section) error {
	if err := s.Validate(); err != nil {
		return err
	}
	return p.base.ClickFirst(ctx, s.Link(), s.menuItem())
}

// OpenUserDropdown opens the user menu in the top bar
func (p *DashboardPage) OpenUserDropdown(ctx context.Context) error {
	return p.base.Click(ctx, UserDropdown)
}

// Logout signs out through the user menu
func (p *DashboardPage) Logout(ctx context.Context) error {
	if err := p.OpenUserDropdown(ctx); err != nil {
		return err
	}
	return p.base.Click(ctx, LogoutMenuItem)
}

// SearchMenu filters the main menu
func (p *DashboardPage) SearchMenu(ctx context.Context, term string) error {
	return p.base.FillFirst(ctx, term, menuSearch, menuSearchFallback)
}

// ClearSearch empties the menu filter
func (p *DashboardPage) ClearSearch(ctx context.Context) error {
	return p.base.FillFirst(ctx, "", menuSearch, menuSearchFallback)
}

// IsSectionVisible probes for a main menu link
func (p *DashboardPage) IsSectionVisible(ctx context.Context, s Section) bool {
	return p.base.IsVisible(ctx, s.Link())
}

// VisibleSections returns the sections whose link is currently visible
func (p *DashboardPage) VisibleSections(ctx context.Context) []Section {
	var out []Section
	for _, s := range Sections() {
		if ok, _ := p.base.Driver().Locate(s.Link()).IsVisible(ctx); ok {
			out = append(out, s)
		}
	}
	return out
}

// VerifyMenuItemsVisible asserts every given section is in the menu;
// with no arguments it checks CoreSections.
func (p *DashboardPage) VerifyMenuItemsVisible(ctx context.Context, sections ...Section) error {
	if len(sections) == 0 {
		sections = CoreSections()
	}
	for _, s := range sections {
		if err := p.base.ExpectVisible(ctx, s.Link()); err != nil {
			return err
		}
	}
	return nil
}

// Refresh reloads the dashboard
func (p *DashboardPage) Refresh(ctx context.Context) error {
	return p.base.Reload(ctx)
}
