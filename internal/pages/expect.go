package pages

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/testforge/hrm-e2e/internal/browser"
	"github.com/testforge/hrm-e2e/internal/domain"
	"github.com/testforge/hrm-e2e/internal/locator"
)

// probe reads the current state and reports whether it is the expected one
type probe func(ctx context.Context) (actual interface{}, ok bool)

// expect polls p until it holds or the assertion timeout elapses. The last
// observed state is reported as the actual value.
func (b *Base) expect(ctx context.Context, condition, target string, expected interface{}, p probe) error {
	var actual interface{}
	err := browser.Poll(ctx, b.timeouts.Poll, b.timeouts.Assert, func(ctx context.Context) (bool, error) {
		var ok bool
		actual, ok = p(ctx)
		return ok, nil
	})

	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		aerr := domain.ErrAssertion(condition, target, expected, actual).
			WithMetadata(domain.MetaTimeout, b.timeouts.Assert.String())
		b.metrics.RecordAssertion(condition, aerr)
		b.logger.Debug("assertion failed", zap.Error(aerr))
		return aerr
	}

	b.metrics.RecordAssertion(condition, nil)
	return nil
}

// read returns a short-timeout read of loc, or "" when it is absent
func (b *Base) read(ctx context.Context, loc locator.Locator, fn func(el browser.Element, t time.Duration) (string, error)) (string, bool) {
	s, err := fn(b.driver.Locate(loc), b.timeouts.Poll)
	if err != nil {
		return "", false
	}
	return s, true
}

func visibility(v bool) string {
	if v {
		return "visible"
	}
	return "hidden"
}

// ExpectVisible asserts loc becomes visible
func (b *Base) ExpectVisible(ctx context.Context, loc locator.Locator) error {
	return b.expect(ctx, "to be visible", loc.String(), "visible", func(ctx context.Context) (interface{}, bool) {
		v, _ := b.driver.Locate(loc).IsVisible(ctx)
		return visibility(v), v
	})
}

// ExpectHidden asserts loc becomes hidden or detached
func (b *Base) ExpectHidden(ctx context.Context, loc locator.Locator) error {
	return b.expect(ctx, "to be hidden", loc.String(), "hidden", func(ctx context.Context) (interface{}, bool) {
		v, _ := b.driver.Locate(loc).IsVisible(ctx)
		return visibility(v), !v
	})
}

// ExpectText asserts the trimmed text of loc equals text
func (b *Base) ExpectText(ctx context.Context, loc locator.Locator, text string) error {
	return b.expect(ctx, "to have text", loc.String(), text, func(ctx context.Context) (interface{}, bool) {
		got, ok := b.read(ctx, loc, func(el browser.Element, t time.Duration) (string, error) {
			return el.Text(ctx, t)
		})
		got = strings.TrimSpace(got)
		return got, ok && got == text
	})
}

// ExpectContainsText asserts the text of loc contains text
func (b *Base) ExpectContainsText(ctx context.Context, loc locator.Locator, text string) error {
	return b.expect(ctx, "to contain text", loc.String(), text, func(ctx context.Context) (interface{}, bool) {
		got, ok := b.read(ctx, loc, func(el browser.Element, t time.Duration) (string, error) {
			return el.Text(ctx, t)
		})
		return got, ok && strings.Contains(got, text)
	})
}

// ExpectValue asserts the input value of loc equals value
func (b *Base) ExpectValue(ctx context.Context, loc locator.Locator, value string) error {
	return b.expect(ctx, "to have value", loc.String(), value, func(ctx context.Context) (interface{}, bool) {
		got, ok := b.read(ctx, loc, func(el browser.Element, t time.Duration) (string, error) {
			return el.Value(ctx, t)
		})
		return got, ok && got == value
	})
}

// ExpectAttribute asserts attribute name of loc equals value
func (b *Base) ExpectAttribute(ctx context.Context, loc locator.Locator, name, value string) error {
	return b.expect(ctx, "to have attribute "+name, loc.String(), value, func(ctx context.Context) (interface{}, bool) {
		got, ok := b.read(ctx, loc, func(el browser.Element, t time.Duration) (string, error) {
			return el.Attribute(ctx, name, t)
		})
		return got, ok && got == value
	})
}

func (b *Base) expectFlag(ctx context.Context, condition string, loc locator.Locator, want bool, expected, otherwise string,
	get func(el browser.Element, t time.Duration) (bool, error)) error {
	return b.expect(ctx, condition, loc.String(), expected, func(ctx context.Context) (interface{}, bool) {
		v, err := get(b.driver.Locate(loc), b.timeouts.Poll)
		if err != nil {
			return "absent", false
		}
		if v == want {
			return expected, true
		}
		return otherwise, false
	})
}

// ExpectEnabled asserts loc is enabled
func (b *Base) ExpectEnabled(ctx context.Context, loc locator.Locator) error {
	return b.expectFlag(ctx, "to be enabled", loc, true, "enabled", "disabled",
		func(el browser.Element, t time.Duration) (bool, error) { return el.IsEnabled(ctx, t) })
}

// ExpectDisabled asserts loc is disabled
func (b *Base) ExpectDisabled(ctx context.Context, loc locator.Locator) error {
	return b.expectFlag(ctx, "to be disabled", loc, false, "disabled", "enabled",
		func(el browser.Element, t time.Duration) (bool, error) { return el.IsEnabled(ctx, t) })
}

// ExpectChecked asserts loc is checked
func (b *Base) ExpectChecked(ctx context.Context, loc locator.Locator) error {
	return b.expectFlag(ctx, "to be checked", loc, true, "checked", "unchecked",
		func(el browser.Element, t time.Duration) (bool, error) { return el.IsChecked(ctx, t) })
}

// ExpectUnchecked asserts loc is not checked
func (b *Base) ExpectUnchecked(ctx context.Context, loc locator.Locator) error {
	return b.expectFlag(ctx, "to be unchecked", loc, false, "unchecked", "checked",
		func(el browser.Element, t time.Duration) (bool, error) { return el.IsChecked(ctx, t) })
}

// ExpectCount asserts loc matches exactly n elements
func (b *Base) ExpectCount(ctx context.Context, loc locator.Locator, n int) error {
	return b.expect(ctx, "to have count", loc.String(), n, func(ctx context.Context) (interface{}, bool) {
		got, err := b.driver.Locate(loc).Count(ctx)
		if err != nil {
			return -1, false
		}
		return got, got == n
	})
}

// ExpectTitle asserts the document title equals title
func (b *Base) ExpectTitle(ctx context.Context, title string) error {
	return b.expect(ctx, "to have title", "page", title, func(ctx context.Context) (interface{}, bool) {
		got, err := b.driver.Title(ctx)
		return got, err == nil && got == title
	})
}

// ExpectURL asserts the current location equals want, ignoring a
// trailing slash, or for a path ends with it
func (b *Base) ExpectURL(ctx context.Context, want string) error {
	norm := strings.TrimSuffix(want, "/")
	return b.expect(ctx, "to have URL", "page", want, func(ctx context.Context) (interface{}, bool) {
		got := b.driver.URL()
		g := strings.TrimSuffix(got, "/")
		if strings.HasPrefix(want, "/") {
			return got, strings.HasSuffix(g, norm)
		}
		return got, g == norm
	})
}

// ExpectURLContains asserts the current location contains fragment
func (b *Base) ExpectURLContains(ctx context.Context, fragment string) error {
	return b.expect(ctx, "to have URL containing", "page", fragment, func(ctx context.Context) (interface{}, bool) {
		got := b.driver.URL()
		return got, strings.Contains(got, fragment)
	})
}

// VerifyPageLoaded asserts the descriptor title and canonical URL
func (b *Base) VerifyPageLoaded(ctx context.Context) error {
	if b.desc.Title != "" {
		if err := b.ExpectTitle(ctx, b.desc.Title); err != nil {
			return err
		}
	}
	return b.ExpectURL(ctx, b.URL())
}
