// Package locator describes how to find one element on a page.
//
// A Locator is an immutable value: exactly one Strategy is active, and every
// modifier (Within, Filter, Nth, ...) returns a new value. Page objects keep
// tables of locators and hand them to the browser layer for resolution, so a
// brittle CSS selector can be swapped for a role, label or text query without
// touching call sites.
package locator

import (
	"fmt"
	"regexp"
	"strings"
)

// Strategy selects how the element is found
type Strategy int

const (
	StrategyCSS Strategy = iota + 1
	StrategyRole
	StrategyText
	StrategyTestID
	StrategyLabel
	StrategyPlaceholder
	StrategyXPath
)

func (s Strategy) String() string {
	switch s {
	case StrategyCSS:
		return "css"
	case StrategyRole:
		return "role"
	case StrategyText:
		return "text"
	case StrategyTestID:
		return "testid"
	case StrategyLabel:
		return "label"
	case StrategyPlaceholder:
		return "placeholder"
	case StrategyXPath:
		return "xpath"
	default:
		return "unknown"
	}
}

// Match is either a literal string or a regular expression.
type Match struct {
	Text    string
	Pattern *regexp.Regexp
}

// IsZero reports whether neither text nor pattern is set
func (m Match) IsZero() bool {
	return m.Text == "" && m.Pattern == nil
}

// Matches applies the match to s. Literal text is a substring check
// unless exact is set.
func (m Match) Matches(s string, exact bool) bool {
	if m.Pattern != nil {
		return m.Pattern.MatchString(s)
	}
	if exact {
		return strings.TrimSpace(s) == m.Text
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(m.Text))
}

func (m Match) String() string {
	if m.Pattern != nil {
		return "/" + m.Pattern.String() + "/"
	}
	return fmt.Sprintf("%q", m.Text)
}

// Literal wraps a plain string
func Literal(s string) Match { return Match{Text: s} }

// Pattern compiles expr; it panics on an invalid expression, like
// regexp.MustCompile, since locator tables are static.
func Pattern(expr string) Match { return Match{Pattern: regexp.MustCompile(expr)} }

// Position picks one element out of several matches
type Position int

const (
	// All leaves the match set untouched
	All Position = iota
	// Index selects Locator.Index (0-based)
	Index
	// Last selects the final match
	Last
)

// Locator is an immutable description of one element.
type Locator struct {
	strategy Strategy
	value    Match // selector, role, text, test id, label, placeholder or xpath
	name     Match // accessible name, role strategy only
	exact    bool  // exact name/text match
	hasText  Match // filter: descendant text containment
	position Position
	index    int
	parent   *Locator
}

// CSS finds elements by CSS selector
func CSS(selector string) Locator {
	return Locator{strategy: StrategyCSS, value: Literal(selector)}
}

// Role finds elements by ARIA role and optional accessible name
func Role(role string) Locator {
	return Locator{strategy: StrategyRole, value: Literal(role)}
}

// Text finds elements by visible text
func Text(text string) Locator {
	return Locator{strategy: StrategyText, value: Literal(text)}
}

// TextMatching finds elements whose visible text matches expr
func TextMatching(expr string) Locator {
	return Locator{strategy: StrategyText, value: Pattern(expr)}
}

// TestID finds elements by their data-testid attribute
func TestID(id string) Locator {
	return Locator{strategy: StrategyTestID, value: Literal(id)}
}

// Label finds form controls by associated label text
func Label(text string) Locator {
	return Locator{strategy: StrategyLabel, value: Literal(text)}
}

// LabelMatching finds form controls whose label matches expr
func LabelMatching(expr string) Locator {
	return Locator{strategy: StrategyLabel, value: Pattern(expr)}
}

// Placeholder finds inputs by placeholder text
func Placeholder(text string) Locator {
	return Locator{strategy: StrategyPlaceholder, value: Literal(text)}
}

// XPath finds elements by XPath expression
func XPath(expr string) Locator {
	return Locator{strategy: StrategyXPath, value: Literal(expr)}
}

// Named sets the accessible name of a role locator
func (l Locator) Named(name string) Locator {
	l.name = Literal(name)
	return l
}

// NamedMatching sets an accessible-name pattern on a role locator
func (l Locator) NamedMatching(expr string) Locator {
	l.name = Pattern(expr)
	return l
}

// Exact requires an exact name or text match
func (l Locator) Exact() Locator {
	l.exact = true
	return l
}

// Filter narrows matches to elements containing text
func (l Locator) Filter(text string) Locator {
	l.hasText = Literal(text)
	return l
}

// FilterPattern narrows matches to elements whose text matches expr
func (l Locator) FilterPattern(expr string) Locator {
	l.hasText = Pattern(expr)
	return l
}

// Nth selects the i-th match (0-based)
func (l Locator) Nth(i int) Locator {
	l.position = Index
	l.index = i
	return l
}

// First selects the first match in document order
func (l Locator) First() Locator {
	return l.Nth(0)
}

// Last selects the last match in document order
func (l Locator) Last() Locator {
	l.position = Last
	l.index = 0
	return l
}

// Within scopes the locator to descendants of parent
func (l Locator) Within(parent Locator) Locator {
	p := parent
	l.parent = &p
	return l
}

// Strategy returns the active strategy
func (l Locator) Strategy() Strategy { return l.strategy }

// Value returns the strategy argument
func (l Locator) Value() Match { return l.value }

// Name returns the accessible name (role strategy)
func (l Locator) Name() Match { return l.name }

// IsExact reports whether exact matching is requested
func (l Locator) IsExact() bool { return l.exact }

// HasText returns the text filter
func (l Locator) HasText() Match { return l.hasText }

// Position returns the positional selector and index
func (l Locator) Position() (Position, int) { return l.position, l.index }

// Parent returns the scoping parent, if any
func (l Locator) Parent() (Locator, bool) {
	if l.parent == nil {
		return Locator{}, false
	}
	return *l.parent, true
}

// Validate checks that exactly one strategy is set with a usable argument.
func (l Locator) Validate() error {
	if l.strategy < StrategyCSS || l.strategy > StrategyXPath {
		return fmt.Errorf("locator has no strategy")
	}
	if l.value.IsZero() {
		return fmt.Errorf("%s locator has an empty value", l.strategy)
	}
	if !l.name.IsZero() && l.strategy != StrategyRole {
		return fmt.Errorf("accessible name is only valid on role locators, got %s", l.strategy)
	}
	if l.position == Index && l.index < 0 {
		return fmt.Errorf("negative index %d", l.index)
	}
	if l.parent != nil {
		if err := l.parent.Validate(); err != nil {
			return fmt.Errorf("parent: %w", err)
		}
	}
	return nil
}

// String renders a readable description used in logs and errors,
// e.g. `css=.oxd-table >> role=row[has-text="QA"] >> nth=0`.
func (l Locator) String() string {
	var b strings.Builder
	if l.parent != nil {
		b.WriteString(l.parent.String())
		b.WriteString(" >> ")
	}

	b.WriteString(l.strategy.String())
	b.WriteString("=")
	if l.value.Pattern != nil {
		b.WriteString(l.value.String())
	} else {
		b.WriteString(l.value.Text)
	}

	if !l.name.IsZero() {
		fmt.Fprintf(&b, "[name=%s]", l.name)
	}
	if l.exact {
		b.WriteString("[exact]")
	}
	if !l.hasText.IsZero() {
		fmt.Fprintf(&b, "[has-text=%s]", l.hasText)
	}

	switch l.position {
	case Index:
		fmt.Fprintf(&b, " >> nth=%d", l.index)
	case Last:
		b.WriteString(" >> nth=-1")
	}
	return b.String()
}
