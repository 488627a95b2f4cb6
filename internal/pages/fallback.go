package pages

import (
	"context"
	"strings"
	"time"

	"github.com/testforge/hrm-e2e/internal/browser"
	"github.com/testforge/hrm-e2e/internal/domain"
	"github.com/testforge/hrm-e2e/internal/locator"
)

// Alternative resolution helpers. Each builds a locator from a semantic
// query and funnels into the primitives, so a page can swap a brittle CSS
// selector for a role, label or text query without changing its callers.

func byRole(role, name string) locator.Locator {
	loc := locator.Role(role)
	if name != "" {
		loc = loc.Named(name)
	}
	return loc
}

func byText(text string, exact bool) locator.Locator {
	loc := locator.Text(text)
	if exact {
		loc = loc.Exact()
	}
	return loc
}

// ClickByRole clicks the element with role and optional accessible name
func (b *Base) ClickByRole(ctx context.Context, role, name string) error {
	return b.Click(ctx, byRole(role, name))
}

// ClickByText clicks the element with visible text
func (b *Base) ClickByText(ctx context.Context, text string, exact bool) error {
	return b.Click(ctx, byText(text, exact))
}

// ClickByLabel clicks the control labelled label
func (b *Base) ClickByLabel(ctx context.Context, label string) error {
	return b.Click(ctx, locator.Label(label))
}

// ClickByTestID clicks the element with data-testid id
func (b *Base) ClickByTestID(ctx context.Context, id string) error {
	return b.Click(ctx, locator.TestID(id))
}

// ClickByXPath clicks the element matched by expr
func (b *Base) ClickByXPath(ctx context.Context, expr string) error {
	return b.Click(ctx, locator.XPath(expr))
}

// ClickRelative clicks child inside parent
func (b *Base) ClickRelative(ctx context.Context, parent, child locator.Locator) error {
	return b.Click(ctx, child.Within(parent))
}

// ClickFiltered clicks the first match of base that contains hasText
func (b *Base) ClickFiltered(ctx context.Context, base locator.Locator, hasText string) error {
	loc := base
	if hasText != "" {
		loc = loc.Filter(hasText)
	}
	return b.Click(ctx, loc.First())
}

// FillByRole fills the element with role and optional accessible name
func (b *Base) FillByRole(ctx context.Context, role, name, value string) error {
	return b.Fill(ctx, byRole(role, name), value)
}

// FillByLabel fills the control labelled label
func (b *Base) FillByLabel(ctx context.Context, label, value string) error {
	return b.Fill(ctx, locator.Label(label), value)
}

// FillByPlaceholder fills the input with placeholder text
func (b *Base) FillByPlaceholder(ctx context.Context, placeholder, value string) error {
	return b.Fill(ctx, locator.Placeholder(placeholder), value)
}

// FillByTestID fills the element with data-testid id
func (b *Base) FillByTestID(ctx context.Context, id, value string) error {
	return b.Fill(ctx, locator.TestID(id), value)
}

// IsVisibleByRole probes for the element with role and optional name
func (b *Base) IsVisibleByRole(ctx context.Context, role, name string) bool {
	return b.IsVisible(ctx, byRole(role, name))
}

// IsVisibleByText probes for the element with visible text
func (b *Base) IsVisibleByText(ctx context.Context, text string, exact bool) bool {
	return b.IsVisible(ctx, byText(text, exact))
}

// IsVisibleByTestID probes for the element with data-testid id
func (b *Base) IsVisibleByTestID(ctx context.Context, id string) bool {
	return b.IsVisible(ctx, locator.TestID(id))
}

// WaitForRole waits for the element with role and optional name
func (b *Base) WaitForRole(ctx context.Context, role, name string, timeout time.Duration) error {
	return b.WaitVisible(ctx, byRole(role, name), timeout)
}

// WaitForText waits for the element with visible text
func (b *Base) WaitForText(ctx context.Context, text string, exact bool, timeout time.Duration) error {
	return b.WaitVisible(ctx, byText(text, exact), timeout)
}

// WaitForTestID waits for the element with data-testid id
func (b *Base) WaitForTestID(ctx context.Context, id string, timeout time.Duration) error {
	return b.WaitVisible(ctx, locator.TestID(id), timeout)
}

// FirstResolvable returns the first candidate, in the order given, that is
// visible. Candidates are re-checked until the interaction timeout elapses.
func (b *Base) FirstResolvable(ctx context.Context, candidates ...locator.Locator) (locator.Locator, error) {
	if len(candidates) == 0 {
		return locator.Locator{}, domain.ErrValidation("no candidate locators")
	}

	var found locator.Locator
	err := browser.Poll(ctx, b.timeouts.Poll, b.timeouts.Interaction, func(ctx context.Context) (bool, error) {
		for _, c := range candidates {
			if c.Validate() != nil {
				continue
			}
			if ok, _ := b.driver.Locate(c).IsVisible(ctx); ok {
				found = c
				return true, nil
			}
		}
		return false, nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return locator.Locator{}, ctx.Err()
		}
		names := make([]string, len(candidates))
		for i, c := range candidates {
			names[i] = c.String()
		}
		return locator.Locator{}, domain.ErrElementNotFound(strings.Join(names, " | "), b.timeouts.Interaction, err)
	}
	return found, nil
}

// ClickFirst clicks the first resolvable candidate
func (b *Base) ClickFirst(ctx context.Context, candidates ...locator.Locator) error {
	loc, err := b.FirstResolvable(ctx, candidates...)
	if err != nil {
		return err
	}
	return b.Click(ctx, loc)
}

// FillFirst fills the first resolvable candidate
func (b *Base) FillFirst(ctx context.Context, value string, candidates ...locator.Locator) error {
	loc, err := b.FirstResolvable(ctx, candidates...)
	if err != nil {
		return err
	}
	return b.Fill(ctx, loc, value)
}
