package runner

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testforge/hrm-e2e/internal/domain"
)

func names(scenarios []Scenario) []string {
	out := make([]string, len(scenarios))
	for i, sc := range scenarios {
		out[i] = sc.Name
	}
	return out
}

func TestCatalog(t *testing.T) {
	all := Catalog()
	got := names(all)
	assert.True(t, sort.StringsAreSorted(got))

	seen := make(map[string]bool)
	for _, sc := range all {
		assert.False(t, seen[sc.Name], "duplicate %s", sc.Name)
		seen[sc.Name] = true
		assert.NotEmpty(t, sc.Description, sc.Name)
		assert.NotNil(t, sc.Run, sc.Name)
	}
	assert.Contains(t, got, "admin/job-title-lifecycle")
	assert.Contains(t, got, "admin/work-shift-lifecycle")
}

func TestSelect(t *testing.T) {
	all := Catalog()

	tests := []struct {
		name     string
		patterns []string
		want     []string
		wantErr  bool
	}{
		{name: "everything", want: names(all)},
		{name: "exact", patterns: []string{"login/logout"}, want: []string{"login/logout"}},
		{name: "glob", patterns: []string{"admin/*-lifecycle"}, want: []string{"admin/job-title-lifecycle", "admin/work-shift-lifecycle"}},
		{name: "several", patterns: []string{"dashboard/*", "login/valid-credentials"}, want: []string{"dashboard/core-sections", "login/valid-credentials"}},
		{name: "no match", patterns: []string{"payroll/*"}, wantErr: true},
		{name: "bad pattern", patterns: []string{"admin/["}, wantErr: true},
		{name: "bad pattern after a matching one", patterns: []string{"*/*", "["}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Select(all, tt.patterns...)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, domain.ErrCodeValidation, domain.GetErrorCode(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"admin/job-title-lifecycle": "admin-job-title-lifecycle",
		"Login / Valid Credentials": "login-valid-credentials",
		"--weird__name--":           "weird-name",
		"":                          "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slug(in), in)
	}
}
