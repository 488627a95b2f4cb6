package locator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocator_String(t *testing.T) {
	tests := []struct {
		name string
		loc  Locator
		want string
	}{
		{
			name: "css",
			loc:  CSS(".oxd-button"),
			want: "css=.oxd-button",
		},
		{
			name: "role with name",
			loc:  Role("button").Named("Save"),
			want: `role=button[name="Save"]`,
		},
		{
			name: "exact text",
			loc:  Text("Job Titles").Exact(),
			want: "text=Job Titles[exact]",
		},
		{
			name: "text pattern",
			loc:  TextMatching("^Work Shifts?$"),
			want: "text=/^Work Shifts?$/",
		},
		{
			name: "filtered first row",
			loc:  Role("row").Filter("QA").First(),
			want: `role=row[has-text="QA"] >> nth=0`,
		},
		{
			name: "last",
			loc:  CSS(".oxd-table-row").Last(),
			want: "css=.oxd-table-row >> nth=-1",
		},
		{
			name: "within parent",
			loc:  Role("button").First().Within(Role("row").Filter("QA").First()),
			want: `role=row[has-text="QA"] >> nth=0 >> role=button >> nth=0`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.loc.String())
		})
	}
}

func TestLocator_ModifiersDoNotMutateReceiver(t *testing.T) {
	base := Role("row")

	filtered := base.Filter("QA Engineer")
	indexed := filtered.Nth(2)
	scoped := indexed.Within(CSS(".oxd-table"))

	assert.True(t, base.HasText().IsZero())
	pos, _ := base.Position()
	assert.Equal(t, All, pos)

	pos, idx := filtered.Position()
	assert.Equal(t, All, pos)
	assert.Equal(t, 0, idx)

	_, ok := indexed.Parent()
	assert.False(t, ok)

	parent, ok := scoped.Parent()
	require.True(t, ok)
	assert.Equal(t, StrategyCSS, parent.Strategy())
}

func TestLocator_WithinCopiesParent(t *testing.T) {
	parent := Role("row")
	child := Role("button").Within(parent)

	// Changing the caller's variable afterwards must not leak into child.
	parent = parent.Filter("changed")

	got, ok := child.Parent()
	require.True(t, ok)
	assert.True(t, got.HasText().IsZero())
}

func TestLocator_Validate(t *testing.T) {
	tests := []struct {
		name    string
		loc     Locator
		wantErr bool
	}{
		{"css", CSS("#app"), false},
		{"role named", Role("button").Named("Login"), false},
		{"zero value", Locator{}, true},
		{"empty css", CSS(""), true},
		{"name on text locator", Text("x").Named("y"), true},
		{"negative index", CSS(".row").Nth(-1), true},
		{"invalid parent", CSS(".cell").Within(Label("")), true},
		{"pattern only", LabelMatching("(?i)username"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.loc.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMatch_Matches(t *testing.T) {
	tests := []struct {
		name  string
		match Match
		input string
		exact bool
		want  bool
	}{
		{"substring", Literal("QA"), "QA Engineer 7x9K2p", false, true},
		{"case insensitive substring", Literal("qa engineer"), "QA Engineer", false, true},
		{"exact ignores padding", Literal("Admin"), "  Admin ", true, true},
		{"exact rejects superset", Literal("Admin"), "Administrator", true, false},
		{"pattern", Pattern(`^\d{2}:\d{2}$`), "09:30", false, true},
		{"pattern mismatch", Pattern(`^\d{2}:\d{2}$`), "9:30", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.match.Matches(tt.input, tt.exact))
		})
	}
}

func TestStrategy_String(t *testing.T) {
	assert.Equal(t, "placeholder", StrategyPlaceholder.String())
	assert.Equal(t, "unknown", Strategy(0).String())
}
