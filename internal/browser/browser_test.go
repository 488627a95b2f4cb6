package browser

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/testforge/hrm-e2e/internal/config"
	"github.com/testforge/hrm-e2e/internal/domain"
)

func TestParseEngine(t *testing.T) {
	tests := []struct {
		input   string
		want    Engine
		wantErr bool
	}{
		{"chromium", EngineChromium, false},
		{"Firefox", EngineFirefox, false},
		{" webkit ", EngineWebKit, false},
		{"opera", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseEngine(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, domain.ErrUnsupportedEngineSentinel))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEngines_AllValid(t *testing.T) {
	for _, e := range Engines() {
		assert.NoError(t, e.Validate(), e)
	}
}

func TestFactory_UnsupportedEngineStartsNothing(t *testing.T) {
	var starts int32
	f := NewFactory(zaptest.NewLogger(t))
	f.start = func() (*playwright.Playwright, error) {
		atomic.AddInt32(&starts, 1)
		return nil, errors.New("must not be called")
	}

	sess, err := f.Launch(context.Background(), Engine("netscape"), DefaultSessionConfig())

	require.Error(t, err)
	assert.Nil(t, sess)
	assert.Equal(t, domain.ErrCodeUnsupportedEngine, domain.GetErrorCode(err))
	assert.Equal(t, int32(0), atomic.LoadInt32(&starts))
}

func TestFactory_StartFailure(t *testing.T) {
	f := NewFactory(nil)
	f.start = func() (*playwright.Playwright, error) {
		return nil, errors.New("driver missing")
	}

	_, err := f.Launch(context.Background(), EngineFirefox, DefaultSessionConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "starting playwright")
}

func TestFactory_CancelledContext(t *testing.T) {
	f := NewFactory(nil)
	f.start = func() (*playwright.Playwright, error) {
		t.Fatal("start called with a cancelled context")
		return nil, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.Launch(ctx, EngineChromium, DefaultSessionConfig())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSessionConfigFrom(t *testing.T) {
	cfg := config.Default()
	cfg.Browser.Headless = false
	cfg.Browser.SlowMo = 100 * time.Millisecond
	cfg.Browser.Args = []string{"--disable-gpu"}
	cfg.Browser.ViewportWidth = 0

	sc := SessionConfigFrom(cfg)

	assert.False(t, sc.Headless)
	assert.Equal(t, 100*time.Millisecond, sc.SlowMo)
	assert.Equal(t, Viewport{Width: DefaultViewportWidth, Height: DefaultViewportHeight}, sc.Viewport)
	assert.Equal(t, cfg.Timeouts.Interaction, sc.DefaultTimeout)

	// The session owns its own copy of the args
	sc.Args[0] = "--changed"
	assert.Equal(t, "--disable-gpu", cfg.Browser.Args[0])
}

func TestSessionConfig_LaunchArgs(t *testing.T) {
	sc := DefaultSessionConfig()
	sc.Args = []string{"--no-sandbox"}

	assert.Equal(t, []string{"--no-sandbox"}, sc.launchArgs(EngineChromium))
	assert.Nil(t, sc.launchArgs(EngineFirefox))
	assert.Nil(t, sc.launchArgs(EngineWebKit))
}

func TestPoll(t *testing.T) {
	t.Run("succeeds once condition holds", func(t *testing.T) {
		var calls int32
		err := Poll(context.Background(), 5*time.Millisecond, time.Second, func(context.Context) (bool, error) {
			return atomic.AddInt32(&calls, 1) >= 3, nil
		})
		require.NoError(t, err)
		assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	})

	t.Run("times out no earlier than the bound", func(t *testing.T) {
		start := time.Now()
		err := Poll(context.Background(), 5*time.Millisecond, 60*time.Millisecond, func(context.Context) (bool, error) {
			return false, nil
		})
		assert.ErrorIs(t, err, ErrPollTimeout)
		assert.GreaterOrEqual(t, time.Since(start), 60*time.Millisecond)
	})

	t.Run("condition error aborts", func(t *testing.T) {
		boom := errors.New("page crashed")
		err := Poll(context.Background(), 5*time.Millisecond, time.Second, func(context.Context) (bool, error) {
			return false, boom
		})
		assert.ErrorIs(t, err, boom)
	})

	t.Run("cancelled parent context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := Poll(ctx, 5*time.Millisecond, time.Second, func(context.Context) (bool, error) {
			return false, nil
		})
		assert.ErrorIs(t, err, context.Canceled)
	})
}
