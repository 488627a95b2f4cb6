// Package browsertest provides an in-memory browser.Driver for unit tests.
//
// The fake holds a tiny DOM: nodes are registered under a locator's base
// key (strategy, value and accessible name) and the fake applies the
// locator's text filter, position and parent scoping itself, so page
// objects can be tested without a browser.
package browsertest

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/testforge/hrm-e2e/internal/browser"
	"github.com/testforge/hrm-e2e/internal/locator"
)

// ErrTimeout is returned by every bounded wait that expires
var ErrTimeout = errors.New("browsertest: timeout exceeded")

// ErrNotEnabled is returned by actions on a disabled node
var ErrNotEnabled = errors.New("browsertest: element is not enabled")

const tick = 5 * time.Millisecond

// Node is one fake element
type Node struct {
	Text     string
	Value    string
	Attrs    map[string]string
	Hidden   bool
	Disabled bool
	Checked  bool
	// AppearAt keeps the node invisible until the given time
	AppearAt time.Time
	// ActionErr fails every action on the node
	ActionErr error
	// OnClick runs after a successful click, with the driver lock released
	OnClick func()

	children map[string][]*Node
}

// Add registers children of n under loc's base key
func (n *Node) Add(loc locator.Locator, children ...*Node) *Node {
	if n.children == nil {
		n.children = make(map[string][]*Node)
	}
	k := Key(loc)
	n.children[k] = append(n.children[k], children...)
	return n
}

func (n *Node) visible(now time.Time) bool {
	if n.Hidden {
		return false
	}
	return n.AppearAt.IsZero() || !now.Before(n.AppearAt)
}

// Action records one interaction for assertions in tests
type Action struct {
	Kind    string
	Locator string
	Value   string
}

// Driver is a fake browser.Driver
type Driver struct {
	mu sync.Mutex

	nodes   map[string][]*Node
	actions []Action

	url     string
	title   string
	history []string
	pos     int

	// GotoErr fails every Goto
	GotoErr error
	// NetworkIdleErr fails every WaitForNetworkIdle
	NetworkIdleErr error
	// OnGoto runs after navigation, with the driver lock released
	OnGoto func(url string)
	// EvaluateFunc answers Evaluate; nil returns true
	EvaluateFunc func(expression string) (interface{}, error)
	// TitleFunc answers Title; nil returns the title set with SetTitle
	TitleFunc func(url string) string

	screenshots []string
}

// New creates an empty fake page at about:blank
func New() *Driver {
	return &Driver{
		nodes: make(map[string][]*Node),
		url:   "about:blank",
	}
}

var _ browser.Driver = (*Driver)(nil)

// Key is the registration key of loc: strategy, value and accessible name
func Key(loc locator.Locator) string {
	k := loc.Strategy().String() + "=" + loc.Value().String()
	if name := loc.Name(); !name.IsZero() {
		k += "[name=" + name.String() + "]"
	}
	return k
}

// Add registers top-level nodes under loc's base key, appending to any
// nodes already present, and returns the first one.
func (d *Driver) Add(loc locator.Locator, nodes ...*Node) *Node {
	d.mu.Lock()
	defer d.mu.Unlock()
	k := Key(loc)
	d.nodes[k] = append(d.nodes[k], nodes...)
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

// Remove deletes node n from every top-level key
func (d *Driver) Remove(n *Node) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for k, list := range d.nodes {
		out := list[:0]
		for _, c := range list {
			if c != n {
				out = append(out, c)
			}
		}
		d.nodes[k] = out
	}
}

// Reset removes every node
func (d *Driver) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nodes = make(map[string][]*Node)
}

// SetURL sets the current location without recording history
func (d *Driver) SetURL(url string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.url = url
}

// SetTitle sets the document title
func (d *Driver) SetTitle(title string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.title = title
}

// Actions returns a copy of every recorded interaction
func (d *Driver) Actions() []Action {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Action(nil), d.actions...)
}

// ActionsOn returns the recorded interactions on loc
func (d *Driver) ActionsOn(loc locator.Locator) []Action {
	want := loc.String()
	var out []Action
	for _, a := range d.Actions() {
		if a.Locator == want {
			out = append(out, a)
		}
	}
	return out
}

// Screenshots returns the paths passed to Screenshot
func (d *Driver) Screenshots() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.screenshots...)
}

func (d *Driver) record(kind string, loc locator.Locator, value string) {
	d.actions = append(d.actions, Action{Kind: kind, Locator: loc.String(), Value: value})
}

func (d *Driver) Goto(ctx context.Context, url string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	if d.GotoErr != nil {
		err := d.GotoErr
		d.mu.Unlock()
		return err
	}
	d.url = url
	d.history = append(d.history[:d.pos], url)
	d.pos = len(d.history)
	d.actions = append(d.actions, Action{Kind: "goto", Value: url})
	hook := d.OnGoto
	d.mu.Unlock()

	if hook != nil {
		hook(url)
	}
	return nil
}

func (d *Driver) WaitForNetworkIdle(ctx context.Context, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.NetworkIdleErr
}

func (d *Driver) WaitForURL(ctx context.Context, pattern string, timeout time.Duration) error {
	re := globToRegexp(pattern)
	return waitUntil(ctx, timeout, func() bool {
		return re.MatchString(d.URL())
	})
}

func (d *Driver) Evaluate(ctx context.Context, expression string) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	fn := d.EvaluateFunc
	d.mu.Unlock()
	if fn == nil {
		return true, nil
	}
	return fn(expression)
}

func (d *Driver) Locate(loc locator.Locator) browser.Element {
	return &Element{d: d, loc: loc}
}

func (d *Driver) URL() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.url
}

func (d *Driver) Title(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.TitleFunc != nil {
		return d.TitleFunc(d.url), nil
	}
	return d.title, nil
}

func (d *Driver) Screenshot(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.screenshots = append(d.screenshots, path)
	return nil
}

func (d *Driver) Reload(ctx context.Context, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.actions = append(d.actions, Action{Kind: "reload", Value: d.url})
	return nil
}

func (d *Driver) GoBack(ctx context.Context, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pos > 1 {
		d.pos--
		d.url = d.history[d.pos-1]
	}
	return nil
}

func (d *Driver) GoForward(ctx context.Context, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pos < len(d.history) {
		d.pos++
		d.url = d.history[d.pos-1]
	}
	return nil
}

// match returns the nodes loc currently resolves to, in registration order.
// Callers must hold d.mu.
func (d *Driver) match(loc locator.Locator) []*Node {
	var candidates []*Node
	if parent, ok := loc.Parent(); ok {
		for _, p := range d.match(parent) {
			candidates = append(candidates, p.children[Key(loc)]...)
		}
	} else {
		candidates = d.nodes[Key(loc)]
	}

	if f := loc.HasText(); !f.IsZero() {
		var filtered []*Node
		for _, n := range candidates {
			if f.Matches(n.Text, false) {
				filtered = append(filtered, n)
			}
		}
		candidates = filtered
	}

	if loc.Strategy() == locator.StrategyText && loc.IsExact() {
		var exact []*Node
		for _, n := range candidates {
			if loc.Value().Matches(n.Text, true) {
				exact = append(exact, n)
			}
		}
		candidates = exact
	}

	switch pos, idx := loc.Position(); pos {
	case locator.Index:
		if idx >= len(candidates) {
			return nil
		}
		return candidates[idx : idx+1]
	case locator.Last:
		if len(candidates) == 0 {
			return nil
		}
		return candidates[len(candidates)-1:]
	}
	return candidates
}

// Element is a fake browser.Element
type Element struct {
	d   *Driver
	loc locator.Locator
}

var _ browser.Element = (*Element)(nil)

func (e *Element) Locator() locator.Locator { return e.loc }

func (e *Element) first() *Node {
	e.d.mu.Lock()
	defer e.d.mu.Unlock()
	nodes := e.d.match(e.loc)
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

func (e *Element) WaitVisible(ctx context.Context, timeout time.Duration) error {
	return waitUntil(ctx, timeout, func() bool {
		n := e.first()
		return n != nil && n.visible(time.Now())
	})
}

func (e *Element) WaitHidden(ctx context.Context, timeout time.Duration) error {
	return waitUntil(ctx, timeout, func() bool {
		n := e.first()
		return n == nil || !n.visible(time.Now())
	})
}

func (e *Element) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	e.d.mu.Lock()
	defer e.d.mu.Unlock()
	return len(e.d.match(e.loc)), nil
}

// act waits for an actionable node, applies fn under the lock and records kind
func (e *Element) act(ctx context.Context, timeout time.Duration, kind, value string, fn func(n *Node)) error {
	if err := e.WaitVisible(ctx, timeout); err != nil {
		return fmt.Errorf("%s %s: %w", kind, e.loc, err)
	}

	e.d.mu.Lock()
	nodes := e.d.match(e.loc)
	if len(nodes) == 0 {
		e.d.mu.Unlock()
		return fmt.Errorf("%s %s: element detached", kind, e.loc)
	}
	n := nodes[0]
	if n.ActionErr != nil {
		e.d.mu.Unlock()
		return n.ActionErr
	}
	if n.Disabled {
		e.d.mu.Unlock()
		return fmt.Errorf("%s %s: %w", kind, e.loc, ErrNotEnabled)
	}
	if fn != nil {
		fn(n)
	}
	e.d.record(kind, e.loc, value)
	hook := n.OnClick
	e.d.mu.Unlock()

	if kind == "click" && hook != nil {
		hook()
	}
	return nil
}

func (e *Element) Click(ctx context.Context, timeout time.Duration) error {
	return e.act(ctx, timeout, "click", "", nil)
}

func (e *Element) Fill(ctx context.Context, value string, timeout time.Duration) error {
	return e.act(ctx, timeout, "fill", value, func(n *Node) { n.Value = value })
}

func (e *Element) Type(ctx context.Context, text string, timeout time.Duration) error {
	return e.act(ctx, timeout, "type", text, func(n *Node) { n.Value += text })
}

func (e *Element) SelectOption(ctx context.Context, values []string, timeout time.Duration) error {
	joined := strings.Join(values, ",")
	return e.act(ctx, timeout, "select", joined, func(n *Node) { n.Value = joined })
}

func (e *Element) Check(ctx context.Context, timeout time.Duration) error {
	return e.act(ctx, timeout, "check", "", func(n *Node) { n.Checked = true })
}

func (e *Element) Uncheck(ctx context.Context, timeout time.Duration) error {
	return e.act(ctx, timeout, "uncheck", "", func(n *Node) { n.Checked = false })
}

func (e *Element) Press(ctx context.Context, key string, timeout time.Duration) error {
	return e.act(ctx, timeout, "press", key, nil)
}

func (e *Element) Clear(ctx context.Context, timeout time.Duration) error {
	return e.act(ctx, timeout, "clear", "", func(n *Node) { n.Value = "" })
}

func (e *Element) IsVisible(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	n := e.first()
	return n != nil && n.visible(time.Now()), nil
}

func (e *Element) IsEnabled(ctx context.Context, timeout time.Duration) (bool, error) {
	n, err := e.attached(ctx, timeout)
	if err != nil {
		return false, err
	}
	return !n.Disabled, nil
}

func (e *Element) IsChecked(ctx context.Context, timeout time.Duration) (bool, error) {
	n, err := e.attached(ctx, timeout)
	if err != nil {
		return false, err
	}
	return n.Checked, nil
}

func (e *Element) Text(ctx context.Context, timeout time.Duration) (string, error) {
	n, err := e.attached(ctx, timeout)
	if err != nil {
		return "", err
	}
	return n.Text, nil
}

func (e *Element) Value(ctx context.Context, timeout time.Duration) (string, error) {
	n, err := e.attached(ctx, timeout)
	if err != nil {
		return "", err
	}
	return n.Value, nil
}

func (e *Element) Attribute(ctx context.Context, name string, timeout time.Duration) (string, error) {
	n, err := e.attached(ctx, timeout)
	if err != nil {
		return "", err
	}
	return n.Attrs[name], nil
}

func (e *Element) AllTexts(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.d.mu.Lock()
	defer e.d.mu.Unlock()
	nodes := e.d.match(e.loc)
	texts := make([]string, 0, len(nodes))
	for _, n := range nodes {
		texts = append(texts, n.Text)
	}
	return texts, nil
}

// attached waits for the node to exist, regardless of visibility
func (e *Element) attached(ctx context.Context, timeout time.Duration) (*Node, error) {
	var found *Node
	err := waitUntil(ctx, timeout, func() bool {
		found = e.first()
		return found != nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", e.loc, err)
	}
	return found, nil
}

func waitUntil(ctx context.Context, timeout time.Duration, cond func() bool) error {
	deadline := time.Now().Add(timeout)
	for {
		if cond() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !time.Now().Before(deadline) {
			return ErrTimeout
		}
		time.Sleep(tick)
	}
}

// globToRegexp converts a URL glob where ** spans path segments and *
// does not.
func globToRegexp(glob string) *regexp.Regexp {
	var b strings.Builder
	b.WriteString("^")
	for i := 0; i < len(glob); i++ {
		switch {
		case strings.HasPrefix(glob[i:], "**"):
			b.WriteString(".*")
			i++
		case glob[i] == '*':
			b.WriteString("[^/]*")
		default:
			b.WriteString(regexp.QuoteMeta(string(glob[i])))
		}
	}
	b.WriteString("$")
	return regexp.MustCompile(b.String())
}
