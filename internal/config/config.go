package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/testforge/hrm-e2e/internal/domain"
)

// Config holds all suite configuration
type Config struct {
	LogLevel string `envconfig:"HRM_LOG_LEVEL" default:"info"`
	Debug    bool   `envconfig:"HRM_DEBUG" default:"false"`

	// Target application
	App AppConfig

	// Browser session
	Browser BrowserConfig

	// Wait bounds
	Timeouts TimeoutConfig

	// Scenario runner
	Runner RunnerConfig

	// Screenshot upload (MinIO/S3)
	Storage StorageConfig

	// Unique-name registry
	Redis RedisConfig

	// Report server
	Server ServerConfig
}

// AppConfig holds the target application settings
type AppConfig struct {
	BaseURL  string `envconfig:"HRM_BASE_URL" default:"https://opensource-demo.orangehrmlive.com"`
	Username string `envconfig:"HRM_USERNAME" default:"Admin"`
	Password string `envconfig:"HRM_PASSWORD" default:"admin123"`
}

// Credentials returns the configured default login
func (c AppConfig) Credentials() domain.Credentials {
	return domain.Credentials{Username: c.Username, Password: c.Password}
}

// BrowserConfig holds browser launch settings
type BrowserConfig struct {
	Engine            string        `envconfig:"HRM_BROWSER" default:"chromium"`
	Headless          bool          `envconfig:"HRM_HEADLESS" default:"true"`
	SlowMo            time.Duration `envconfig:"HRM_SLOW_MO" default:"0s"`
	Args              []string      `envconfig:"HRM_BROWSER_ARGS" default:""`
	ViewportWidth     int           `envconfig:"HRM_VIEWPORT_WIDTH" default:"1920"`
	ViewportHeight    int           `envconfig:"HRM_VIEWPORT_HEIGHT" default:"1080"`
	IgnoreHTTPSErrors bool          `envconfig:"HRM_IGNORE_HTTPS_ERRORS" default:"true"`
}

// TimeoutConfig holds the bounds of every blocking wait
type TimeoutConfig struct {
	Interaction time.Duration `envconfig:"HRM_TIMEOUT" default:"5s"`
	Assert      time.Duration `envconfig:"HRM_ASSERT_TIMEOUT" default:"5s"`
	Navigation  time.Duration `envconfig:"HRM_NAVIGATION_TIMEOUT" default:"30s"`
	SteadyState time.Duration `envconfig:"HRM_STEADY_STATE_TIMEOUT" default:"15s"`
	Auth        time.Duration `envconfig:"HRM_AUTH_TIMEOUT" default:"15s"`
	Probe       time.Duration `envconfig:"HRM_PROBE_TIMEOUT" default:"1s"`
	Poll        time.Duration `envconfig:"HRM_POLL_INTERVAL" default:"100ms"`
}

// RunnerConfig holds scenario runner settings
type RunnerConfig struct {
	Retries       int     `envconfig:"HRM_RETRIES" default:"2"`
	Parallel      int     `envconfig:"HRM_PARALLEL" default:"1"`
	StartsPerSec  float64 `envconfig:"HRM_STARTS_PER_SECOND" default:"2"`
	ScreenshotDir string  `envconfig:"HRM_SCREENSHOT_DIR" default:"screenshots"`
	ReportFile    string  `envconfig:"HRM_REPORT_FILE" default:""`
	MetricsFile   string  `envconfig:"HRM_METRICS_FILE" default:""`
}

// StorageConfig holds MinIO settings for screenshot upload
type StorageConfig struct {
	Enabled   bool   `envconfig:"HRM_STORAGE_ENABLED" default:"false"`
	Endpoint  string `envconfig:"HRM_STORAGE_ENDPOINT" default:"localhost:9000"`
	AccessKey string `envconfig:"HRM_STORAGE_ACCESS_KEY" default:"minioadmin"`
	SecretKey string `envconfig:"HRM_STORAGE_SECRET_KEY" default:"minioadmin"`
	Bucket    string `envconfig:"HRM_STORAGE_BUCKET" default:"hrm-e2e"`
	UseSSL    bool   `envconfig:"HRM_STORAGE_USE_SSL" default:"false"`
	Prefix    string `envconfig:"HRM_STORAGE_PREFIX" default:"screenshots"`
}

// RedisConfig holds Redis settings for the unique-name registry
type RedisConfig struct {
	Enabled     bool          `envconfig:"HRM_REDIS_ENABLED" default:"false"`
	Host        string        `envconfig:"HRM_REDIS_HOST" default:"localhost"`
	Port        int           `envconfig:"HRM_REDIS_PORT" default:"6379"`
	Password    string        `envconfig:"HRM_REDIS_PASSWORD" default:""`
	DB          int           `envconfig:"HRM_REDIS_DB" default:"0"`
	DialTimeout time.Duration `envconfig:"HRM_REDIS_DIAL_TIMEOUT" default:"5s"`
	ClaimTTL    time.Duration `envconfig:"HRM_REDIS_CLAIM_TTL" default:"24h"`
}

// Addr returns Redis address
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ServerConfig holds the report server settings
type ServerConfig struct {
	Addr            string        `envconfig:"HRM_SERVER_ADDR" default:":9464"`
	ShutdownTimeout time.Duration `envconfig:"HRM_SERVER_SHUTDOWN_TIMEOUT" default:"10s"`
	// Token guards run triggers; empty leaves them open
	Token         string   `envconfig:"HRM_SERVER_TOKEN" default:""`
	CORSOrigins   []string `envconfig:"HRM_SERVER_CORS_ORIGINS" default:""`
	RunsPerMinute int      `envconfig:"HRM_SERVER_RUNS_PER_MINUTE" default:"6"`
}

// Load reads an optional .env file, then the environment.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil {
			return nil, fmt.Errorf("loading env file: %w", err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading env file: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("processing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration with every default applied and no
// environment lookups.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		App: AppConfig{
			BaseURL:  "https://opensource-demo.orangehrmlive.com",
			Username: "Admin",
			Password: "admin123",
		},
		Browser: BrowserConfig{
			Engine:            "chromium",
			Headless:          true,
			ViewportWidth:     1920,
			ViewportHeight:    1080,
			IgnoreHTTPSErrors: true,
		},
		Timeouts: TimeoutConfig{
			Interaction: 5 * time.Second,
			Assert:      5 * time.Second,
			Navigation:  30 * time.Second,
			SteadyState: 15 * time.Second,
			Auth:        15 * time.Second,
			Probe:       time.Second,
			Poll:        100 * time.Millisecond,
		},
		Runner: RunnerConfig{
			Retries:       2,
			Parallel:      1,
			StartsPerSec:  2,
			ScreenshotDir: "screenshots",
		},
		Storage: StorageConfig{
			Endpoint:  "localhost:9000",
			AccessKey: "minioadmin",
			SecretKey: "minioadmin",
			Bucket:    "hrm-e2e",
			Prefix:    "screenshots",
		},
		Redis: RedisConfig{
			Host:        "localhost",
			Port:        6379,
			DialTimeout: 5 * time.Second,
			ClaimTTL:    24 * time.Hour,
		},
		Server: ServerConfig{
			Addr:            ":9464",
			ShutdownTimeout: 10 * time.Second,
			RunsPerMinute:   6,
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	var errors []string

	u, err := url.Parse(c.App.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		errors = append(errors, fmt.Sprintf("HRM_BASE_URL %q is not an absolute URL", c.App.BaseURL))
	}

	switch strings.ToLower(c.Browser.Engine) {
	case "chromium", "firefox", "webkit":
	default:
		errors = append(errors, fmt.Sprintf("HRM_BROWSER %q must be chromium, firefox or webkit", c.Browser.Engine))
	}

	if c.Timeouts.Interaction <= 0 {
		errors = append(errors, "HRM_TIMEOUT must be positive")
	}
	if c.Timeouts.Assert <= 0 {
		errors = append(errors, "HRM_ASSERT_TIMEOUT must be positive")
	}
	if c.Timeouts.Probe <= 0 {
		errors = append(errors, "HRM_PROBE_TIMEOUT must be positive")
	}
	if c.Timeouts.SteadyState < c.Timeouts.Interaction {
		errors = append(errors, "HRM_STEADY_STATE_TIMEOUT must not be shorter than HRM_TIMEOUT")
	}
	if c.Runner.Retries < 0 {
		errors = append(errors, "HRM_RETRIES must not be negative")
	}
	if c.Runner.Parallel < 1 {
		errors = append(errors, "HRM_PARALLEL must be at least 1")
	}

	if c.Storage.Enabled && c.Storage.Bucket == "" {
		errors = append(errors, "HRM_STORAGE_BUCKET is required when storage is enabled")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

// GetLogLevel returns the appropriate zap log level
func (c *Config) GetLogLevel() string {
	if c.Debug {
		return "debug"
	}
	return c.LogLevel
}
