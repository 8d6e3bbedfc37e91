package config

import (
	"fmt"
	"net/url"
	"time"
)

// CurrentVersion is the config file schema version
const CurrentVersion = 1

// Defaults
const (
	DefaultBaseURL        = "https://blink-functions.azurewebsites.net/api/govee"
	DefaultRequestTimeout = 10 * time.Second
	DefaultPollMode       = PollModeInterval
	DefaultPollInterval   = 5 * time.Second
	DefaultFeedAddr       = "127.0.0.1:8765"
)

// Poll modes
const (
	PollModeOneShot  = "oneshot"
	PollModeInterval = "interval"
)

// Config is the user preference file.
type Config struct {
	Version        int           `yaml:"version"`
	BaseURL        string        `yaml:"base_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	Poll           PollConfig    `yaml:"poll"`
	Log            LogConfig     `yaml:"log"`
	Feed           FeedConfig    `yaml:"feed"`
}

// PollConfig selects how device state is refreshed
type PollConfig struct {
	Mode     string        `yaml:"mode"`     // "oneshot" or "interval"
	Interval time.Duration `yaml:"interval"` // only used in interval mode
}

// LogConfig controls the diagnostic log
type LogConfig struct {
	Level string `yaml:"level,omitempty"` // empty = silent
	File  string `yaml:"file,omitempty"`  // empty = stderr
}

// FeedConfig configures the local websocket feed
type FeedConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns a configuration populated with defaults
func Default() *Config {
	return &Config{
		Version:        CurrentVersion,
		BaseURL:        DefaultBaseURL,
		RequestTimeout: DefaultRequestTimeout,
		Poll: PollConfig{
			Mode:     DefaultPollMode,
			Interval: DefaultPollInterval,
		},
		Feed: FeedConfig{
			Addr: DefaultFeedAddr,
		},
	}
}

func (c *Config) fillDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.Poll.Mode == "" {
		c.Poll.Mode = DefaultPollMode
	}
	if c.Poll.Interval <= 0 {
		c.Poll.Interval = DefaultPollInterval
	}
	if c.Feed.Addr == "" {
		c.Feed.Addr = DefaultFeedAddr
	}
}

// Validate checks that the configuration can drive a session
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid base_url %q", c.BaseURL)
	}

	switch c.Poll.Mode {
	case PollModeOneShot, PollModeInterval:
	default:
		return fmt.Errorf("invalid poll mode %q (expected %q or %q)", c.Poll.Mode, PollModeOneShot, PollModeInterval)
	}

	if c.Poll.Mode == PollModeInterval && c.Poll.Interval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.Poll.Interval)
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout)
	}

	return nil
}
