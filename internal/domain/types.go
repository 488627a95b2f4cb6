package domain

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Credentials is a username/password pair for one login attempt.
// Never persisted.
type Credentials struct {
	Username string
	Password string
}

// String redacts the password so credentials are safe to log.
func (c Credentials) String() string {
	return fmt.Sprintf("%s:***", c.Username)
}

// IsZero reports whether neither field is set
func (c Credentials) IsZero() bool {
	return c.Username == "" && c.Password == ""
}

// PageDescriptor associates a page with its canonical URL and expected title
type PageDescriptor struct {
	Name  string
	Path  string
	Title string
}

// URL resolves the descriptor path against base.
func (d PageDescriptor) URL(base string) string {
	base = strings.TrimRight(base, "/")
	if d.Path == "" {
		return base + "/"
	}
	if u, err := url.Parse(d.Path); err == nil && u.IsAbs() {
		return d.Path
	}
	return base + "/" + strings.TrimLeft(d.Path, "/")
}

// JobTitle is the input record for the admin job title form
type JobTitle struct {
	Title         string
	Description   string
	Specification string // optional, path of a file to attach
	Note          string // optional
}

// Validate checks the required fields
func (j JobTitle) Validate() error {
	if strings.TrimSpace(j.Title) == "" {
		return ErrValidationField("title", "job title is required")
	}
	return nil
}

var clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// WorkShift is the input record for the admin work shift form
type WorkShift struct {
	Name      string
	HoursFrom string // hh:mm, 24h clock
	HoursTo   string // hh:mm, 24h clock
	Employees []string
}

// Validate checks the name and, when set, the clock format of both hours
func (w WorkShift) Validate() error {
	if strings.TrimSpace(w.Name) == "" {
		return ErrValidationField("name", "work shift name is required")
	}
	hours := []struct{ field, value string }{
		{"hours_from", w.HoursFrom},
		{"hours_to", w.HoursTo},
	}
	for _, h := range hours {
		if h.value != "" && !clockPattern.MatchString(h.value) {
			return ErrValidationField(h.field, fmt.Sprintf("%q is not an hh:mm time", h.value))
		}
	}
	return nil
}

// ScenarioStatus is the outcome of one scenario run
type ScenarioStatus string

const (
	ScenarioPassed  ScenarioStatus = "passed"
	ScenarioFailed  ScenarioStatus = "failed"
	ScenarioFlaky   ScenarioStatus = "flaky"
	ScenarioSkipped ScenarioStatus = "skipped"
)

// IsSuccess reports whether the scenario eventually passed
func (s ScenarioStatus) IsSuccess() bool {
	return s == ScenarioPassed || s == ScenarioFlaky
}

// ScenarioResult records one scenario execution, including retries
type ScenarioResult struct {
	Name       string         `json:"name"`
	Status     ScenarioStatus `json:"status"`
	Attempts   int            `json:"attempts"`
	Duration   time.Duration  `json:"duration"`
	ErrorCode  string         `json:"error_code,omitempty"`
	Error      string         `json:"error,omitempty"`
	Screenshot string         `json:"screenshot,omitempty"`
}

// RunReport aggregates every scenario of a run
type RunReport struct {
	ID         uuid.UUID        `json:"id"`
	Engine     string           `json:"engine"`
	BaseURL    string           `json:"base_url"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Results    []ScenarioResult `json:"results"`
}

// Summary counts results by status
type Summary struct {
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Flaky   int `json:"flaky"`
	Skipped int `json:"skipped"`
}

// Summary computes the counts for the report
func (r *RunReport) Summary() Summary {
	var s Summary
	for _, res := range r.Results {
		s.Total++
		switch res.Status {
		case ScenarioPassed:
			s.Passed++
		case ScenarioFailed:
			s.Failed++
		case ScenarioFlaky:
			s.Flaky++
		case ScenarioSkipped:
			s.Skipped++
		}
	}
	return s
}

// Succeeded reports whether no scenario failed
func (r *RunReport) Succeeded() bool {
	return r.Summary().Failed == 0
}

// Duration returns the wall-clock run duration
func (r *RunReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
