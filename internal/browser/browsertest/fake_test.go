package browsertest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testforge/hrm-e2e/internal/locator"
)

func TestDriver_FilterAndPosition(t *testing.T) {
	d := New()
	row := locator.Role("row")
	d.Add(row,
		&Node{Text: "Accountant"},
		&Node{Text: "QA Engineer 1"},
		&Node{Text: "QA Engineer 2"},
	)
	ctx := context.Background()

	texts, err := d.Locate(row.Filter("QA Engineer")).AllTexts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"QA Engineer 1", "QA Engineer 2"}, texts)

	first, err := d.Locate(row.Filter("QA Engineer").First()).Text(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "QA Engineer 1", first)

	last, err := d.Locate(row.Last()).Text(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "QA Engineer 2", last)

	n, err := d.Locate(row.Nth(5)).Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDriver_ParentScoping(t *testing.T) {
	d := New()
	button := locator.Role("button")

	a := (&Node{Text: "Alpha"}).Add(button, &Node{Text: "delete alpha"})
	b := (&Node{Text: "Beta"}).Add(button, &Node{Text: "delete beta"})
	d.Add(locator.Role("row"), a, b)

	ctx := context.Background()
	target := button.First().Within(locator.Role("row").Filter("Beta").First())

	require.NoError(t, d.Locate(target).Click(ctx, time.Second))

	actions := d.ActionsOn(target)
	require.Len(t, actions, 1)
	assert.Equal(t, "click", actions[0].Kind)
}

func TestElement_WaitVisibleHonoursTimeout(t *testing.T) {
	d := New()
	loc := locator.CSS(".never")
	start := time.Now()

	err := d.Locate(loc).WaitVisible(context.Background(), 40*time.Millisecond)

	assert.ErrorIs(t, err, ErrTimeout)
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestElement_AppearsLater(t *testing.T) {
	d := New()
	loc := locator.CSS(".toast")
	d.Add(loc, &Node{AppearAt: time.Now().Add(20 * time.Millisecond)})

	visible, err := d.Locate(loc).IsVisible(context.Background())
	require.NoError(t, err)
	assert.False(t, visible)

	require.NoError(t, d.Locate(loc).WaitVisible(context.Background(), time.Second))
}

func TestElement_DisabledRejectsActions(t *testing.T) {
	d := New()
	loc := locator.CSS("button[type=submit]")
	d.Add(loc, &Node{Disabled: true})

	err := d.Locate(loc).Click(context.Background(), 50*time.Millisecond)
	assert.ErrorIs(t, err, ErrNotEnabled)
	assert.Empty(t, d.Actions())
}

func TestDriver_History(t *testing.T) {
	d := New()
	ctx := context.Background()

	require.NoError(t, d.Goto(ctx, "https://hr.example.com/a", time.Second))
	require.NoError(t, d.Goto(ctx, "https://hr.example.com/b", time.Second))

	require.NoError(t, d.GoBack(ctx, time.Second))
	assert.Equal(t, "https://hr.example.com/a", d.URL())

	require.NoError(t, d.GoForward(ctx, time.Second))
	assert.Equal(t, "https://hr.example.com/b", d.URL())
}

func TestGlobToRegexp(t *testing.T) {
	tests := []struct {
		glob  string
		url   string
		match bool
	}{
		{"**/dashboard/index", "https://hr.example.com/web/index.php/dashboard/index", true},
		{"**/dashboard/index", "https://hr.example.com/web/index.php/auth/login", false},
		{"https://hr.example.com/*", "https://hr.example.com/login", true},
		{"https://hr.example.com/*", "https://hr.example.com/web/login", false},
	}

	for _, tt := range tests {
		t.Run(tt.glob+" "+tt.url, func(t *testing.T) {
			assert.Equal(t, tt.match, globToRegexp(tt.glob).MatchString(tt.url))
		})
	}
}
