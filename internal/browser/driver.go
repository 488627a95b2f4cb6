// Package browser is the boundary between page objects and the automation
// library. Page objects only see Driver and Element; the playwright-go
// adapter and the in-memory fake in browsertest both satisfy them.
package browser

import (
	"context"
	"time"

	"github.com/testforge/hrm-e2e/internal/locator"
)

// Driver is one open page.
type Driver interface {
	// Goto loads url and waits for DOMContentLoaded
	Goto(ctx context.Context, url string, timeout time.Duration) error
	// WaitForNetworkIdle waits until no requests are in flight
	WaitForNetworkIdle(ctx context.Context, timeout time.Duration) error
	// WaitForURL waits until the location matches a glob such as "**/dashboard/index"
	WaitForURL(ctx context.Context, pattern string, timeout time.Duration) error
	// Evaluate runs a JavaScript expression in the page
	Evaluate(ctx context.Context, expression string) (interface{}, error)

	Locate(loc locator.Locator) Element

	URL() string
	Title(ctx context.Context) (string, error)
	Screenshot(ctx context.Context, path string) error

	Reload(ctx context.Context, timeout time.Duration) error
	GoBack(ctx context.Context, timeout time.Duration) error
	GoForward(ctx context.Context, timeout time.Duration) error
}

// Element is a lazily resolved locator bound to a page. Nothing is looked
// up until a method is called, and every lookup starts from scratch.
type Element interface {
	Locator() locator.Locator

	WaitVisible(ctx context.Context, timeout time.Duration) error
	WaitHidden(ctx context.Context, timeout time.Duration) error
	Count(ctx context.Context) (int, error)

	Click(ctx context.Context, timeout time.Duration) error
	Fill(ctx context.Context, value string, timeout time.Duration) error
	Type(ctx context.Context, text string, timeout time.Duration) error
	SelectOption(ctx context.Context, values []string, timeout time.Duration) error
	Check(ctx context.Context, timeout time.Duration) error
	Uncheck(ctx context.Context, timeout time.Duration) error
	Press(ctx context.Context, key string, timeout time.Duration) error
	Clear(ctx context.Context, timeout time.Duration) error

	IsVisible(ctx context.Context) (bool, error)
	IsEnabled(ctx context.Context, timeout time.Duration) (bool, error)
	IsChecked(ctx context.Context, timeout time.Duration) (bool, error)

	Text(ctx context.Context, timeout time.Duration) (string, error)
	Value(ctx context.Context, timeout time.Duration) (string, error)
	Attribute(ctx context.Context, name string, timeout time.Duration) (string, error)
	// AllTexts returns the inner text of every match in document order
	AllTexts(ctx context.Context) ([]string, error)
}
