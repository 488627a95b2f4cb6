package browser

import (
	"context"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/testforge/hrm-e2e/internal/locator"
)

// pwDriver adapts a playwright page to Driver
type pwDriver struct {
	page playwright.Page
}

// NewPlaywrightDriver wraps an existing playwright page
func NewPlaywrightDriver(page playwright.Page) Driver {
	return &pwDriver{page: page}
}

func (d *pwDriver) Goto(ctx context.Context, url string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := d.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   millis(timeout),
	})
	return err
}

func (d *pwDriver) WaitForNetworkIdle(ctx context.Context, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return d.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: millis(timeout),
	})
}

func (d *pwDriver) WaitForURL(ctx context.Context, pattern string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return d.page.WaitForURL(pattern, playwright.PageWaitForURLOptions{
		Timeout: millis(timeout),
	})
}

func (d *pwDriver) Evaluate(ctx context.Context, expression string) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return d.page.Evaluate(expression)
}

func (d *pwDriver) Locate(loc locator.Locator) Element {
	return &pwElement{page: d.page, loc: loc}
}

func (d *pwDriver) URL() string {
	return d.page.URL()
}

func (d *pwDriver) Title(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return d.page.Title()
}

func (d *pwDriver) Screenshot(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := d.page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	return err
}

func (d *pwDriver) Reload(ctx context.Context, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := d.page.Reload(playwright.PageReloadOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   millis(timeout),
	})
	return err
}

func (d *pwDriver) GoBack(ctx context.Context, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := d.page.GoBack(playwright.PageGoBackOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   millis(timeout),
	})
	return err
}

func (d *pwDriver) GoForward(ctx context.Context, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := d.page.GoForward(playwright.PageGoForwardOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   millis(timeout),
	})
	return err
}

// pwElement resolves its locator against the page on every call
type pwElement struct {
	page playwright.Page
	loc  locator.Locator
}

func (e *pwElement) Locator() locator.Locator {
	return e.loc
}

func (e *pwElement) resolve() playwright.Locator {
	return resolve(e.page, e.loc)
}

func (e *pwElement) WaitVisible(ctx context.Context, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.resolve().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: millis(timeout),
	})
}

func (e *pwElement) WaitHidden(ctx context.Context, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.resolve().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateHidden,
		Timeout: millis(timeout),
	})
}

func (e *pwElement) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return e.resolve().Count()
}

func (e *pwElement) Click(ctx context.Context, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.resolve().Click(playwright.LocatorClickOptions{Timeout: millis(timeout)})
}

func (e *pwElement) Fill(ctx context.Context, value string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.resolve().Fill(value, playwright.LocatorFillOptions{Timeout: millis(timeout)})
}

func (e *pwElement) Type(ctx context.Context, text string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.resolve().PressSequentially(text, playwright.LocatorPressSequentiallyOptions{Timeout: millis(timeout)})
}

func (e *pwElement) SelectOption(ctx context.Context, values []string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := e.resolve().SelectOption(
		playwright.SelectOptionValues{Values: &values},
		playwright.LocatorSelectOptionOptions{Timeout: millis(timeout)},
	)
	return err
}

func (e *pwElement) Check(ctx context.Context, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.resolve().Check(playwright.LocatorCheckOptions{Timeout: millis(timeout)})
}

func (e *pwElement) Uncheck(ctx context.Context, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.resolve().Uncheck(playwright.LocatorUncheckOptions{Timeout: millis(timeout)})
}

func (e *pwElement) Press(ctx context.Context, key string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.resolve().Press(key, playwright.LocatorPressOptions{Timeout: millis(timeout)})
}

func (e *pwElement) Clear(ctx context.Context, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.resolve().Clear(playwright.LocatorClearOptions{Timeout: millis(timeout)})
}

func (e *pwElement) IsVisible(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return e.resolve().IsVisible()
}

func (e *pwElement) IsEnabled(ctx context.Context, timeout time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return e.resolve().IsEnabled(playwright.LocatorIsEnabledOptions{Timeout: millis(timeout)})
}

func (e *pwElement) IsChecked(ctx context.Context, timeout time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return e.resolve().IsChecked(playwright.LocatorIsCheckedOptions{Timeout: millis(timeout)})
}

func (e *pwElement) Text(ctx context.Context, timeout time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return e.resolve().TextContent(playwright.LocatorTextContentOptions{Timeout: millis(timeout)})
}

func (e *pwElement) Value(ctx context.Context, timeout time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return e.resolve().InputValue(playwright.LocatorInputValueOptions{Timeout: millis(timeout)})
}

func (e *pwElement) Attribute(ctx context.Context, name string, timeout time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return e.resolve().GetAttribute(name, playwright.LocatorGetAttributeOptions{Timeout: millis(timeout)})
}

func (e *pwElement) AllTexts(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.resolve().AllInnerTexts()
}

// resolve turns a descriptor into a playwright locator. Top-level locators
// are scoped to the document root so the parent and root cases share the
// Locator method set.
func resolve(page playwright.Page, l locator.Locator) playwright.Locator {
	scope := page.Locator(":root")
	if parent, ok := l.Parent(); ok {
		scope = resolve(page, parent)
	}

	value := l.Value()
	exact := playwright.Bool(l.IsExact())

	var pl playwright.Locator
	switch l.Strategy() {
	case locator.StrategyCSS:
		pl = scope.Locator(value.Text)
	case locator.StrategyRole:
		opts := playwright.LocatorGetByRoleOptions{Exact: exact}
		if name := l.Name(); !name.IsZero() {
			opts.Name = matchArg(name)
		}
		pl = scope.GetByRole(playwright.AriaRole(value.Text), opts)
	case locator.StrategyText:
		pl = scope.GetByText(matchArg(value), playwright.LocatorGetByTextOptions{Exact: exact})
	case locator.StrategyTestID:
		pl = scope.GetByTestId(matchArg(value))
	case locator.StrategyLabel:
		pl = scope.GetByLabel(matchArg(value), playwright.LocatorGetByLabelOptions{Exact: exact})
	case locator.StrategyPlaceholder:
		pl = scope.GetByPlaceholder(matchArg(value), playwright.LocatorGetByPlaceholderOptions{Exact: exact})
	case locator.StrategyXPath:
		pl = scope.Locator("xpath=" + value.Text)
	default:
		// Validate rejects these before they reach the driver
		pl = scope.Locator(l.String())
	}

	if hasText := l.HasText(); !hasText.IsZero() {
		pl = pl.Filter(playwright.LocatorFilterOptions{HasText: matchArg(hasText)})
	}

	switch pos, idx := l.Position(); pos {
	case locator.Index:
		pl = pl.Nth(idx)
	case locator.Last:
		pl = pl.Last()
	case locator.All:
	}
	return pl
}

// matchArg converts a Match into the string-or-regexp argument playwright expects
func matchArg(m locator.Match) interface{} {
	if m.Pattern != nil {
		return m.Pattern
	}
	return m.Text
}

func millis(d time.Duration) *float64 {
	if d <= 0 {
		return nil
	}
	return playwright.Float(float64(d.Milliseconds()))
}
