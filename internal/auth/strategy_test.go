package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/testforge/hrm-e2e/internal/browser/browsertest"
	"github.com/testforge/hrm-e2e/internal/domain"
	"github.com/testforge/hrm-e2e/internal/locator"
	"github.com/testforge/hrm-e2e/internal/pages"
)

const baseURL = "https://hrm.example.test"

func testConfig(t *testing.T) Config {
	t.Helper()
	return Config{
		Pages: pages.Options{
			BaseURL:     baseURL,
			Credentials: domain.Credentials{Username: "Admin", Password: "admin123"},
			Timeouts: pages.Timeouts{
				Interaction: 50 * time.Millisecond,
				Assert:      50 * time.Millisecond,
				Navigation:  time.Second,
				SteadyState: 50 * time.Millisecond,
				Probe:       20 * time.Millisecond,
				Poll:        5 * time.Millisecond,
				NetworkIdle: 5 * time.Millisecond,
			},
			Logger: zaptest.NewLogger(t),
		},
		Timeout: 80 * time.Millisecond,
	}
}

// loginForm renders a form whose submit lands on the dashboard when
// accept returns true.
func loginForm(d *browsertest.Driver, user, pass string, accept func(u, p *browsertest.Node) bool, onSuccess func()) {
	u := d.Add(locator.CSS(`[name="`+user+`"]`), &browsertest.Node{})
	p := d.Add(locator.CSS(`[name="`+pass+`"]`), &browsertest.Node{})
	d.Add(locator.CSS(`[type="submit"]`), &browsertest.Node{OnClick: func() {
		if accept(u, p) {
			d.SetURL(baseURL + "/web/index.php/dashboard/index")
			if onSuccess != nil {
				onSuccess()
			}
		}
	}})
}

func adminOnly(u, p *browsertest.Node) bool {
	return u.Value == "Admin" && p.Value == "admin123"
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		input   string
		want    Kind
		wantErr bool
	}{
		{"standard", KindStandard, false},
		{" SSO ", KindSSO, false},
		{"Ldap", KindLDAP, false},
		{"saml", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseKind(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, domain.ErrCodeUnsupportedStrategy, domain.GetErrorCode(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew(t *testing.T) {
	cfg := testConfig(t)
	for _, k := range Kinds() {
		s, err := New(k, cfg)
		require.NoError(t, err)
		assert.Equal(t, string(k), s.Name())
	}

	_, err := New(Kind("kerberos"), cfg)
	require.Error(t, err)
	assert.Equal(t, domain.ErrCodeUnsupportedStrategy, domain.GetErrorCode(err))
}

func TestStandard_Authenticate(t *testing.T) {
	ctx := context.Background()

	t.Run("reaches the dashboard and the layout marker", func(t *testing.T) {
		d := browsertest.New()
		loginForm(d, "username", "password", adminOnly, func() {
			d.Add(locator.CSS(".oxd-layout-container"), &browsertest.Node{})
			d.Add(pages.UserDropdown, &browsertest.Node{})
		})
		s := NewStandard(testConfig(t))

		assert.False(t, s.IsAuthenticated(ctx, d))
		require.NoError(t, s.Authenticate(ctx, d, domain.Credentials{Username: "Admin", Password: "admin123"}))
		assert.True(t, s.IsAuthenticated(ctx, d))
		assert.Equal(t, baseURL+"/web/index.php/dashboard/index", d.URL())
		assert.Equal(t, baseURL+"/", d.Actions()[0].Value)
	})

	t.Run("zero credentials fall back to the configured account", func(t *testing.T) {
		d := browsertest.New()
		loginForm(d, "username", "password", adminOnly, func() {
			d.Add(locator.CSS(".oxd-layout-container"), &browsertest.Node{})
		})
		require.NoError(t, NewStandard(testConfig(t)).Authenticate(ctx, d, domain.Credentials{}))
	})

	t.Run("rejected credentials time out", func(t *testing.T) {
		d := browsertest.New()
		loginForm(d, "username", "password", adminOnly, nil)
		cfg := testConfig(t)

		start := time.Now()
		err := NewStandard(cfg).Authenticate(ctx, d, domain.Credentials{Username: "Admin", Password: "bad"})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrAuthTimeoutSentinel)
		assert.GreaterOrEqual(t, time.Since(start), cfg.Timeout)
	})

	t.Run("missing layout marker times out", func(t *testing.T) {
		d := browsertest.New()
		loginForm(d, "username", "password", adminOnly, nil)
		err := NewStandard(testConfig(t)).Authenticate(ctx, d, domain.Credentials{Username: "Admin", Password: "admin123"})
		appErr, ok := domain.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, domain.ErrCodeAuthTimeout, appErr.Code)
		assert.Equal(t, "css=.oxd-layout-container", appErr.Metadata[domain.MetaLocator])
	})

	t.Run("missing form is not found", func(t *testing.T) {
		d := browsertest.New()
		err := NewStandard(testConfig(t)).Authenticate(ctx, d, domain.Credentials{Username: "Admin", Password: "admin123"})
		assert.Equal(t, domain.ErrCodeElementNotFound, domain.GetErrorCode(err))
	})
}

func TestAlternativeFlows(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		kind   Kind
		path   string
		fields [2]string
		probe  string
	}{
		{KindSSO, "/auth/sso", [2]string{"sso-username", "sso-password"}, "sso-user-info"},
		{KindLDAP, "/auth/ldap", [2]string{"ldap-username", "ldap-password"}, "ldap-user-info"},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			d := browsertest.New()
			loginForm(d, tt.fields[0], tt.fields[1], adminOnly, func() {
				d.Add(locator.TestID(tt.probe), &browsertest.Node{})
			})
			s, err := New(tt.kind, testConfig(t))
			require.NoError(t, err)

			require.NoError(t, s.Authenticate(ctx, d, domain.Credentials{Username: "Admin", Password: "admin123"}))
			assert.Equal(t, baseURL+tt.path, d.Actions()[0].Value)
			assert.True(t, s.IsAuthenticated(ctx, d))
		})
	}
}

func TestContext_SwapsStrategy(t *testing.T) {
	ctx := context.Background()
	d := browsertest.New()
	d.Add(locator.TestID("ldap-user-info"), &browsertest.Node{})

	holder := NewContext(NewSSO(testConfig(t)))
	assert.False(t, holder.IsAuthenticated(ctx, d))

	holder.SetStrategy(NewLDAP(testConfig(t)))
	assert.Equal(t, "ldap", holder.Strategy().Name())
	assert.True(t, holder.IsAuthenticated(ctx, d))

	empty := NewContext(nil)
	assert.False(t, empty.IsAuthenticated(ctx, d))
	assert.Equal(t, domain.ErrCodeValidation, domain.GetErrorCode(empty.Authenticate(ctx, d, domain.Credentials{})))
}

func TestContext_CancelledAuthenticate(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewStandard(testConfig(t)).Authenticate(ctx, browsertest.New(), domain.Credentials{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRemaining(t *testing.T) {
	tests := []struct {
		name     string
		deadline time.Time
		floor    time.Duration
		atLeast  time.Duration
		atMost   time.Duration
	}{
		{"passed deadline uses floor", time.Now().Add(-time.Second), minMarkerWait, minMarkerWait, minMarkerWait},
		{"deadline now uses floor", time.Now(), minMarkerWait, minMarkerWait, minMarkerWait},
		{"distant deadline", time.Now().Add(time.Minute), minMarkerWait, 50 * time.Second, time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := remaining(tt.deadline, tt.floor)
			assert.GreaterOrEqual(t, got, tt.atLeast)
			assert.LessOrEqual(t, got, tt.atMost)
		})
	}
}
