package pages

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/testforge/hrm-e2e/internal/browser"
	"github.com/testforge/hrm-e2e/internal/domain"
	"github.com/testforge/hrm-e2e/internal/locator"
)

// act resolves loc, waits for it to be visible and runs fn. A resolution
// timeout is ELEMENT_NOT_FOUND; a failure of fn is ELEMENT_NOT_INTERACTABLE.
func (b *Base) act(ctx context.Context, action string, loc locator.Locator, fn func(el browser.Element, timeout time.Duration) error) error {
	start := time.Now()
	timeout := b.timeouts.Interaction

	err := b.resolveVisible(ctx, loc, timeout)
	if err == nil {
		if actErr := fn(b.driver.Locate(loc), timeout); actErr != nil {
			err = domain.ErrNotInteractable(loc.String(), action, actErr)
		}
	}

	b.metrics.RecordPrimitive(action, err, time.Since(start))
	if err != nil {
		b.logger.Debug("primitive failed",
			zap.String("action", action),
			zap.Stringer("locator", loc),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// resolveVisible validates loc and waits for it to become visible
func (b *Base) resolveVisible(ctx context.Context, loc locator.Locator, timeout time.Duration) error {
	if err := loc.Validate(); err != nil {
		return domain.ErrValidationField("locator", err.Error())
	}
	if err := b.driver.Locate(loc).WaitVisible(ctx, timeout); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return domain.ErrElementNotFound(loc.String(), timeout, err)
	}
	return nil
}

// Click clicks loc once it is visible
func (b *Base) Click(ctx context.Context, loc locator.Locator) error {
	return b.act(ctx, "click", loc, func(el browser.Element, t time.Duration) error {
		return el.Click(ctx, t)
	})
}

// Fill replaces the value of loc
func (b *Base) Fill(ctx context.Context, loc locator.Locator, value string) error {
	return b.act(ctx, "fill", loc, func(el browser.Element, t time.Duration) error {
		return el.Fill(ctx, value, t)
	})
}

// Type types text into loc key by key
func (b *Base) Type(ctx context.Context, loc locator.Locator, text string) error {
	return b.act(ctx, "type", loc, func(el browser.Element, t time.Duration) error {
		return el.Type(ctx, text, t)
	})
}

// SelectOption selects values in a <select>
func (b *Base) SelectOption(ctx context.Context, loc locator.Locator, values ...string) error {
	return b.act(ctx, "select", loc, func(el browser.Element, t time.Duration) error {
		return el.SelectOption(ctx, values, t)
	})
}

// Check ticks a checkbox or radio
func (b *Base) Check(ctx context.Context, loc locator.Locator) error {
	return b.act(ctx, "check", loc, func(el browser.Element, t time.Duration) error {
		return el.Check(ctx, t)
	})
}

// Uncheck clears a checkbox
func (b *Base) Uncheck(ctx context.Context, loc locator.Locator) error {
	return b.act(ctx, "uncheck", loc, func(el browser.Element, t time.Duration) error {
		return el.Uncheck(ctx, t)
	})
}

// Press sends a key such as "Enter" or "Tab" to loc
func (b *Base) Press(ctx context.Context, loc locator.Locator, key string) error {
	return b.act(ctx, "press", loc, func(el browser.Element, t time.Duration) error {
		return el.Press(ctx, key, t)
	})
}

// Clear empties an input
func (b *Base) Clear(ctx context.Context, loc locator.Locator) error {
	return b.act(ctx, "clear", loc, func(el browser.Element, t time.Duration) error {
		return el.Clear(ctx, t)
	})
}

// Text returns the text content of loc
func (b *Base) Text(ctx context.Context, loc locator.Locator) (string, error) {
	var out string
	err := b.act(ctx, "text", loc, func(el browser.Element, t time.Duration) error {
		var err error
		out, err = el.Text(ctx, t)
		return err
	})
	return out, err
}

// Value returns the input value of loc
func (b *Base) Value(ctx context.Context, loc locator.Locator) (string, error) {
	var out string
	err := b.act(ctx, "value", loc, func(el browser.Element, t time.Duration) error {
		var err error
		out, err = el.Value(ctx, t)
		return err
	})
	return out, err
}

// Attribute returns an attribute of loc
func (b *Base) Attribute(ctx context.Context, loc locator.Locator, name string) (string, error) {
	var out string
	err := b.act(ctx, "attribute", loc, func(el browser.Element, t time.Duration) error {
		var err error
		out, err = el.Attribute(ctx, name, t)
		return err
	})
	return out, err
}

// Count returns how many elements loc matches right now
func (b *Base) Count(ctx context.Context, loc locator.Locator) (int, error) {
	n, err := b.driver.Locate(loc).Count(ctx)
	if err != nil {
		return 0, domain.ErrInternal("counting "+loc.String(), err)
	}
	return n, nil
}

// AllTexts returns the inner text of every match of loc in document order
func (b *Base) AllTexts(ctx context.Context, loc locator.Locator) ([]string, error) {
	texts, err := b.driver.Locate(loc).AllTexts(ctx)
	if err != nil {
		return nil, domain.ErrInternal("reading "+loc.String(), err)
	}
	return texts, nil
}

// WaitVisible waits up to timeout for loc to become visible
func (b *Base) WaitVisible(ctx context.Context, loc locator.Locator, timeout time.Duration) error {
	return b.resolveVisible(ctx, loc, timeout)
}

// WaitHidden waits up to timeout for loc to be hidden or detached
func (b *Base) WaitHidden(ctx context.Context, loc locator.Locator, timeout time.Duration) error {
	if err := b.driver.Locate(loc).WaitHidden(ctx, timeout); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return domain.ErrAssertion("to be hidden", loc.String(), "hidden", "visible").WithCause(err)
	}
	return nil
}

// IsVisible reports whether loc becomes visible within the probe timeout.
// It never returns an error.
func (b *Base) IsVisible(ctx context.Context, loc locator.Locator) bool {
	if loc.Validate() != nil {
		return false
	}
	return b.driver.Locate(loc).WaitVisible(ctx, b.timeouts.Probe) == nil
}

// IsEnabled reports whether loc is enabled. Any failure reads as false.
func (b *Base) IsEnabled(ctx context.Context, loc locator.Locator) bool {
	if loc.Validate() != nil {
		return false
	}
	ok, err := b.driver.Locate(loc).IsEnabled(ctx, b.timeouts.Probe)
	return err == nil && ok
}

// IsChecked reports whether loc is checked. Any failure reads as false.
func (b *Base) IsChecked(ctx context.Context, loc locator.Locator) bool {
	if loc.Validate() != nil {
		return false
	}
	ok, err := b.driver.Locate(loc).IsChecked(ctx, b.timeouts.Probe)
	return err == nil && ok
}
