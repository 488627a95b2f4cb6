package pages

import (
	"context"
	"strings"
	"time"

	"github.com/testforge/hrm-e2e/internal/browser"
	"github.com/testforge/hrm-e2e/internal/domain"
	"github.com/testforge/hrm-e2e/internal/locator"
)

// AdminDescriptor is the system users list of the Admin module
var AdminDescriptor = domain.PageDescriptor{
	Name:  "admin",
	Path:  "/web/index.php/admin/viewSystemUsers",
	Title: "OrangeHRM",
}

// Admin module locators
var (
	AdminHeader = locator.Role("heading").Named("/ User Management")

	UserManagementMenu        = navItem("User Management")
	UsersSubmenu              = locator.Role("listitem").FilterPattern("^Users$").First()
	JobMenu                   = navItem("Job")
	JobTitlesSubmenu          = locator.Role("listitem").FilterPattern("^Job Titles$").First()
	WorkShiftsSubmenu         = locator.Role("listitem").FilterPattern("^Work Shifts$").First()
	OrganizationMenu          = navItem("Organization")
	GeneralInformationSubmenu = locator.Role("menuitem").Named("General Information")
	LocationsSubmenu          = locator.Role("menuitem").Named("Locations")
	StructureSubmenu          = locator.Role("menuitem").Named("Structure")
	QualificationsMenu        = navItem("Qualifications")
	NationalitiesMenu         = navItem("Nationalities")
	CorporateBrandingMenu     = navItem("Corporate Branding")
	ConfigurationMenu         = navItem("Configuration")

	AddButton           = locator.Role("button").NamedMatching("(?i)add")
	SaveButton          = locator.Role("button").Named("Save")
	CancelButton        = locator.Role("button").Named("Cancel")
	ConfirmDeleteButton = locator.Role("button").NamedMatching("Yes, Delete")
	SearchButton        = locator.Role("button").NamedMatching("(?i)search")

	UserSearchInput         = locator.Role("textbox").Named("Search")
	userSearchInputFallback = locator.CSS(".oxd-table-filter input.oxd-input").First()

	// The first textbox on admin forms is the menu search; the form's
	// own name field is the second one.
	FormNameInput       = locator.Role("textbox").Nth(1)
	JobDescriptionInput = locator.Role("textbox").Named("Type description here")
	JobSpecInput        = locator.LabelMatching("(?i)job specification")
	JobNoteInput        = locator.Role("textbox").Named("Add note")
	HoursFromInput      = locator.Role("textbox").Named("hh:mm").First()
	HoursToInput        = locator.Role("textbox").Named("hh:mm").Nth(1)
	EmployeeInput       = locator.Placeholder("Type for hints...")

	RecordsContainer        = locator.CSS(".orangehrm-container")
	RecordsTable            = locator.CSS(".oxd-table")
	GeneralInformationTitle = locator.Role("heading").Named("General Information")

	TableRow = locator.Role("row")
)

func navItem(name string) locator.Locator {
	return locator.Role("listitem").Filter(name).First()
}

// RowFor is the first table row whose text contains name
func RowFor(name string) locator.Locator {
	return TableRow.Filter(name).First()
}

// adminMenus is the top navigation of the Admin module in display order
var adminMenus = []struct {
	Name string
	Loc  locator.Locator
}{
	{"User Management", UserManagementMenu},
	{"Job", JobMenu},
	{"Organization", OrganizationMenu},
	{"Qualifications", QualificationsMenu},
	{"Nationalities", NationalitiesMenu},
	{"Corporate Branding", CorporateBrandingMenu},
	{"Configuration", ConfigurationMenu},
}

// AdminMenus returns the names of the Admin module's top navigation
func AdminMenus() []string {
	names := make([]string, len(adminMenus))
	for i, m := range adminMenus {
		names[i] = m.Name
	}
	return names
}

// AdminPage drives the Admin module
type AdminPage struct {
	base *Base
}

// NewAdminPage creates the admin page object
func NewAdminPage(driver browser.Driver, opts Options) *AdminPage {
	return &AdminPage{base: NewBase(driver, AdminDescriptor, opts)}
}

// Base exposes the shared primitives
func (p *AdminPage) Base() *Base { return p.base }

func (p *AdminPage) Descriptor() domain.PageDescriptor { return p.base.Descriptor() }

// Navigate opens the system users list
func (p *AdminPage) Navigate(ctx context.Context) error {
	return p.base.Navigate(ctx)
}

// VerifyLoaded asserts title, URL and the module header
func (p *AdminPage) VerifyLoaded(ctx context.Context) error {
	if err := p.base.VerifyPageLoaded(ctx); err != nil {
		return err
	}
	_, err := p.base.FirstResolvable(ctx, AdminHeader, TopbarBreadcrumb.Filter("Admin"))
	return err
}

func (p *AdminPage) openMenu(ctx context.Context, menu, item locator.Locator) error {
	if err := p.base.Click(ctx, menu); err != nil {
		return err
	}
	return p.base.Click(ctx, item)
}

func (p *AdminPage) NavigateToUserManagement(ctx context.Context) error {
	return p.openMenu(ctx, UserManagementMenu, UsersSubmenu)
}

func (p *AdminPage) NavigateToJobTitles(ctx context.Context) error {
	return p.openMenu(ctx, JobMenu, JobTitlesSubmenu)
}

func (p *AdminPage) NavigateToWorkShifts(ctx context.Context) error {
	return p.openMenu(ctx, JobMenu, WorkShiftsSubmenu)
}

func (p *AdminPage) NavigateToGeneralInformation(ctx context.Context) error {
	return p.openMenu(ctx, OrganizationMenu, GeneralInformationSubmenu)
}

func (p *AdminPage) NavigateToLocations(ctx context.Context) error {
	return p.openMenu(ctx, OrganizationMenu, LocationsSubmenu)
}

func (p *AdminPage) NavigateToStructure(ctx context.Context) error {
	return p.openMenu(ctx, OrganizationMenu, StructureSubmenu)
}

func (p *AdminPage) NavigateToQualifications(ctx context.Context) error {
	return p.base.Click(ctx, QualificationsMenu)
}

func (p *AdminPage) NavigateToNationalities(ctx context.Context) error {
	return p.base.Click(ctx, NationalitiesMenu)
}

func (p *AdminPage) NavigateToCorporateBranding(ctx context.Context) error {
	return p.base.Click(ctx, CorporateBrandingMenu)
}

func (p *AdminPage) NavigateToConfiguration(ctx context.Context) error {
	return p.base.Click(ctx, ConfigurationMenu)
}

// AddJobTitle opens the job title form, fills it and saves. Specification
// and note are only touched when set.
func (p *AdminPage) AddJobTitle(ctx context.Context, jt domain.JobTitle) error {
	if err := jt.Validate(); err != nil {
		return err
	}
	if err := p.NavigateToJobTitles(ctx); err != nil {
		return err
	}
	if err := p.base.Click(ctx, AddButton); err != nil {
		return err
	}
	if err := p.base.Fill(ctx, FormNameInput, jt.Title); err != nil {
		return err
	}
	if err := p.base.Fill(ctx, JobDescriptionInput, jt.Description); err != nil {
		return err
	}

	if jt.Specification != "" {
		if err := p.base.Fill(ctx, JobSpecInput, jt.Specification); err != nil {
			return err
		}
	}

	if jt.Note != "" {
		if err := p.base.Fill(ctx, JobNoteInput, jt.Note); err != nil {
			return err
		}
	}

	return p.base.Click(ctx, SaveButton)
}

// AddWorkShift opens the work shift form, fills it and saves. Hours and
// employees are only touched when set.
func (p *AdminPage) AddWorkShift(ctx context.Context, ws domain.WorkShift) error {
	if err := ws.Validate(); err != nil {
		return err
	}
	if err := p.NavigateToWorkShifts(ctx); err != nil {
		return err
	}
	if err := p.base.Click(ctx, AddButton); err != nil {
		return err
	}
	if err := p.base.Fill(ctx, FormNameInput, ws.Name); err != nil {
		return err
	}

	if ws.HoursFrom != "" {
		if err := p.base.Fill(ctx, HoursFromInput, ws.HoursFrom); err != nil {
			return err
		}
	}
	if ws.HoursTo != "" {
		if err := p.base.Fill(ctx, HoursToInput, ws.HoursTo); err != nil {
			return err
		}
	}

	for _, employee := range ws.Employees {
		if err := p.assignEmployee(ctx, employee); err != nil {
			return err
		}
	}

	return p.base.Click(ctx, SaveButton)
}

// assignEmployee types into the autocomplete and picks the first suggestion
func (p *AdminPage) assignEmployee(ctx context.Context, name string) error {
	if err := p.base.Type(ctx, EmployeeInput, name); err != nil {
		return err
	}
	return p.base.Click(ctx, locator.Role("option").Filter(name).First())
}

// SearchUser filters the system users list by username
func (p *AdminPage) SearchUser(ctx context.Context, username string) error {
	if err := p.NavigateToUserManagement(ctx); err != nil {
		return err
	}
	if err := p.base.FillFirst(ctx, username, UserSearchInput, userSearchInputFallback); err != nil {
		return err
	}
	return p.base.Click(ctx, SearchButton)
}

// WaitForRow waits up to timeout for a row containing name
func (p *AdminPage) WaitForRow(ctx context.Context, name string, timeout time.Duration) error {
	return p.base.WaitVisible(ctx, RowFor(name), timeout)
}

// RemoveJobTitle clicks the delete control of the first row containing name
func (p *AdminPage) RemoveJobTitle(ctx context.Context, name string) error {
	if err := p.base.WaitVisible(ctx, RecordsContainer, p.base.timeouts.Interaction); err != nil {
		return err
	}
	return p.removeRow(ctx, name)
}

// RemoveWorkShift clicks the delete control of the first row containing name
func (p *AdminPage) RemoveWorkShift(ctx context.Context, name string) error {
	if err := p.base.WaitVisible(ctx, RecordsTable, p.base.timeouts.Interaction); err != nil {
		return err
	}
	return p.removeRow(ctx, name)
}

// removeRow targets the first row in document order whose text contains
// name, then clicks the first button inside it. Zero matches is
// ELEMENT_NOT_FOUND.
func (p *AdminPage) removeRow(ctx context.Context, name string) error {
	row := RowFor(name)
	if err := p.base.WaitVisible(ctx, row, p.base.timeouts.Interaction); err != nil {
		return err
	}
	return p.base.Click(ctx, locator.Role("button").First().Within(row))
}

// ConfirmRemoval accepts the delete confirmation dialog
func (p *AdminPage) ConfirmRemoval(ctx context.Context) error {
	return p.base.Click(ctx, ConfirmDeleteButton)
}

// AllRowText returns the text of every table row in document order
func (p *AdminPage) AllRowText(ctx context.Context) ([]string, error) {
	return p.base.AllTexts(ctx, TableRow)
}

// FindFirstOccurrenceOfName reports whether any row contains name
func (p *AdminPage) FindFirstOccurrenceOfName(ctx context.Context, name string) (bool, error) {
	rows, err := p.AllRowText(ctx)
	if err != nil {
		return false, err
	}
	for _, r := range rows {
		if strings.Contains(r, name) {
			return true, nil
		}
	}
	return false, nil
}

// RowCount returns the number of rows in the records container, header included
func (p *AdminPage) RowCount(ctx context.Context) (int, error) {
	return p.base.Count(ctx, TableRow.Within(RecordsContainer))
}

// VerifyRowAbsent asserts no row contains name
func (p *AdminPage) VerifyRowAbsent(ctx context.Context, name string) error {
	return p.base.ExpectCount(ctx, TableRow.Filter(name), 0)
}

func (p *AdminPage) VerifyJobTitlesLoaded(ctx context.Context) error {
	if err := p.base.ExpectVisible(ctx, RecordsContainer); err != nil {
		return err
	}
	return p.base.ExpectVisible(ctx, AddButton)
}

func (p *AdminPage) VerifyWorkShiftsLoaded(ctx context.Context) error {
	if err := p.base.ExpectVisible(ctx, RecordsTable); err != nil {
		return err
	}
	return p.base.ExpectVisible(ctx, AddButton)
}

func (p *AdminPage) VerifyUserManagementLoaded(ctx context.Context) error {
	if err := p.base.ExpectVisible(ctx, RecordsContainer); err != nil {
		return err
	}
	return p.base.ExpectVisible(ctx, AddButton)
}

func (p *AdminPage) VerifyGeneralInformationLoaded(ctx context.Context) error {
	return p.base.ExpectVisible(ctx, GeneralInformationTitle)
}

// VerifyAllMenusVisible asserts the whole top navigation is present
func (p *AdminPage) VerifyAllMenusVisible(ctx context.Context) error {
	for _, m := range adminMenus {
		if err := p.base.ExpectVisible(ctx, m.Loc); err != nil {
			return err
		}
	}
	return nil
}

// IsMenuVisible probes for a top navigation entry by name
func (p *AdminPage) IsMenuVisible(ctx context.Context, name string) bool {
	for _, m := range adminMenus {
		if m.Name == name {
			return p.base.IsVisible(ctx, m.Loc)
		}
	}
	return false
}

// HeaderText returns the module header
func (p *AdminPage) HeaderText(ctx context.Context) (string, error) {
	return p.base.Text(ctx, AdminHeader)
}

// Refresh reloads the current admin view
func (p *AdminPage) Refresh(ctx context.Context) error {
	return p.base.Reload(ctx)
}
