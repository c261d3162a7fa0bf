// Package config assembles runtime settings from defaults, an optional YAML
// file and the environment, in increasing order of precedence.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"dom-engine/internal/domain/entity"
	"dom-engine/internal/infrastructure/env"
)

// FileEnv names the variable holding the YAML config path.
const FileEnv = "DOMENGINE_CONFIG"

type Config struct {
	HTTP       HTTPConfig               `yaml:"http"`
	Browser    BrowserConfig            `yaml:"browser"`
	Engine     EngineConfig             `yaml:"engine"`
	Screenshot entity.ScreenshotOptions `yaml:"screenshot"`
	Cache      CacheConfig              `yaml:"cache"`
	Log        LogConfig                `yaml:"log"`
}

type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type BrowserConfig struct {
	Bin               string          `yaml:"bin"`
	Headless          bool            `yaml:"headless"`
	NoSandbox         bool            `yaml:"no_sandbox"`
	MaxSessions       int64           `yaml:"max_sessions"`
	Viewport          entity.Viewport `yaml:"viewport"`
	NavigationTimeout time.Duration   `yaml:"navigation_timeout"`
}

type EngineConfig struct {
	OperationTimeout time.Duration `yaml:"operation_timeout"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Path    string        `yaml:"path"`
	TTL     time.Duration `yaml:"ttl"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Defaults() Config {
	return Config{
		HTTP: HTTPConfig{
			Addr:            ":8001",
			MaxBodyBytes:    50 << 20,
			ShutdownTimeout: 15 * time.Second,
		},
		Browser: BrowserConfig{
			Headless:          true,
			MaxSessions:       4,
			Viewport:          entity.Viewport{Width: 1280, Height: 800},
			NavigationTimeout: 30 * time.Second,
		},
		Engine: EngineConfig{
			OperationTimeout: 90 * time.Second,
		},
		Screenshot: entity.ScreenshotOptions{
			Format:   "png",
			Quality:  80,
			MaxWidth: 1920,
		},
		Cache: CacheConfig{
			Enabled: true,
			Path:    "domengine-cache.db",
			TTL:     10 * time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads the file named by DOMENGINE_CONFIG, if any, over the defaults
// and then applies environment overrides.
func Load(e *env.EnvService) (Config, error) {
	cfg := Defaults()

	if path := e.Get(FileEnv); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}
	cfg.applyEnv(e)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(e *env.EnvService) {
	c.HTTP.Addr = e.GetWithDefault("HTTP_ADDR", c.HTTP.Addr)
	c.HTTP.MaxBodyBytes = e.GetInt64("MAX_BODY_BYTES", c.HTTP.MaxBodyBytes)
	c.HTTP.ShutdownTimeout = e.GetDuration("SHUTDOWN_TIMEOUT", c.HTTP.ShutdownTimeout)

	c.Browser.Bin = e.GetWithDefault("BROWSER_BIN", c.Browser.Bin)
	c.Browser.Headless = e.GetBool("BROWSER_HEADLESS", c.Browser.Headless)
	c.Browser.NoSandbox = e.GetBool("BROWSER_NO_SANDBOX", c.Browser.NoSandbox)
	c.Browser.MaxSessions = e.GetInt64("MAX_SESSIONS", c.Browser.MaxSessions)
	c.Browser.Viewport.Width = e.GetInt("VIEWPORT_WIDTH", c.Browser.Viewport.Width)
	c.Browser.Viewport.Height = e.GetInt("VIEWPORT_HEIGHT", c.Browser.Viewport.Height)
	c.Browser.NavigationTimeout = e.GetDuration("NAVIGATION_TIMEOUT", c.Browser.NavigationTimeout)

	c.Engine.OperationTimeout = e.GetDuration("OPERATION_TIMEOUT", c.Engine.OperationTimeout)

	c.Screenshot.Format = strings.ToLower(e.GetWithDefault("SCREENSHOT_FORMAT", c.Screenshot.Format))
	c.Screenshot.Quality = e.GetInt("SCREENSHOT_QUALITY", c.Screenshot.Quality)
	c.Screenshot.MaxWidth = e.GetInt("SCREENSHOT_MAX_WIDTH", c.Screenshot.MaxWidth)

	c.Cache.Enabled = e.GetBool("CACHE_ENABLED", c.Cache.Enabled)
	c.Cache.Path = e.GetWithDefault("CACHE_PATH", c.Cache.Path)
	c.Cache.TTL = e.GetDuration("CACHE_TTL", c.Cache.TTL)

	c.Log.Level = e.GetWithDefault("LOG_LEVEL", c.Log.Level)
	c.Log.Format = e.GetWithDefault("LOG_FORMAT", c.Log.Format)
}

func (c Config) Validate() error {
	switch {
	case c.HTTP.MaxBodyBytes <= 0:
		return fmt.Errorf("max body bytes must be positive")
	case c.Browser.MaxSessions <= 0:
		return fmt.Errorf("max sessions must be positive")
	case c.Browser.Viewport.Width <= 0 || c.Browser.Viewport.Height <= 0:
		return fmt.Errorf("viewport must be positive, got %dx%d", c.Browser.Viewport.Width, c.Browser.Viewport.Height)
	case c.Engine.OperationTimeout <= 0 || c.Browser.NavigationTimeout <= 0:
		return fmt.Errorf("timeouts must be positive")
	case c.Screenshot.Format != "png" && c.Screenshot.Format != "jpeg":
		return fmt.Errorf("screenshot format must be png or jpeg, got %q", c.Screenshot.Format)
	}
	return nil
}
