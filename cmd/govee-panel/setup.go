package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/govee-panel/internal/config"
	"github.com/muurk/govee-panel/internal/credential"
	"github.com/muurk/govee-panel/internal/logging"
	"github.com/muurk/govee-panel/internal/panel"
	"github.com/muurk/govee-panel/internal/relay"
	"github.com/muurk/govee-panel/internal/ui"
)

// Global flags
var (
	configPath   string
	envFile      string
	baseURL      string
	pollMode     string
	pollInterval time.Duration
	timeout      time.Duration
	retries      int
	logLevel     string
	logFile      string
	ephemeral    bool
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Config file (default: <config dir>/config.yaml)")
	flags.StringVar(&envFile, "env-file", ".env", "Dotenv file with GOVEE_PANEL_* overrides")
	flags.StringVar(&baseURL, "base-url", "", "Relay API base URL")
	flags.StringVar(&pollMode, "mode", "", "State polling mode (oneshot, interval)")
	flags.DurationVar(&pollInterval, "interval", 0, "Polling interval in interval mode")
	flags.DurationVar(&timeout, "timeout", 0, "Relay request timeout")
	flags.IntVar(&retries, "retries", 0, "Retries for relay reads (commands are never retried)")
	flags.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); silent when empty")
	flags.StringVar(&logFile, "log-file", "", "Write logs to this file instead of stderr")
	flags.BoolVar(&ephemeral, "ephemeral", false, "Keep the API key in memory only")
}

// appEnv holds what every command needs once flags are resolved
type appEnv struct {
	cfg         *config.Config
	configPath  string
	configFound bool
	store       credential.Store
	storePath   string
	creds       *credential.Adapter
	client      *relay.Client
}

var env *appEnv

// setup resolves configuration in order defaults < file < env < flags,
// then initializes logging, the credential store and the relay client
func setup(cmd *cobra.Command, args []string) error {
	if err := config.LoadEnvFile(envFile); err != nil {
		return err
	}

	path := configPath
	if path == "" {
		p, err := config.GetConfigPath()
		if err != nil {
			return err
		}
		path = p
	}
	_, statErr := os.Stat(path)

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return err
	}
	applyFlags(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := logging.Initialize(logging.Options{Level: cfg.Log.Level, OutputPath: cfg.Log.File}); err != nil {
		return err
	}

	e := &appEnv{
		cfg:         cfg,
		configPath:  path,
		configFound: statErr == nil,
	}

	if ephemeral {
		e.store = credential.NewMemoryStore()
		e.storePath = "(memory)"
	} else {
		fs, err := credential.DefaultFileStore()
		if err != nil {
			return err
		}
		e.store = fs
		e.storePath = fs.Path()
	}
	e.creds = credential.NewAdapter(e.store)

	e.client = relay.NewClient(cfg.BaseURL, e.creds)
	e.client.SetTimeout(cfg.RequestTimeout)
	if retries > 0 {
		e.client.SetRetry(retries, relay.DefaultRetryDelay)
	}

	logging.Debug("Configuration resolved",
		zap.String("config", path),
		zap.String("base_url", cfg.BaseURL),
		zap.String("poll_mode", cfg.Poll.Mode),
		zap.Duration("poll_interval", cfg.Poll.Interval),
		zap.Bool("ephemeral", ephemeral),
	)

	env = e
	return nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("base-url") {
		cfg.BaseURL = baseURL
	}
	if flags.Changed("mode") {
		cfg.Poll.Mode = normalizeMode(pollMode)
	}
	if flags.Changed("interval") {
		cfg.Poll.Interval = pollInterval
	}
	if flags.Changed("timeout") {
		cfg.RequestTimeout = timeout
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("log-file") {
		cfg.Log.File = logFile
	}
}

// normalizeMode maps the accepted spellings onto the config values
func normalizeMode(s string) string {
	mode, err := panel.ParseMode(s)
	if err != nil {
		// Left as-is so Validate reports it
		return strings.ToLower(s)
	}
	if mode == panel.ModeOneShot {
		return config.PollModeOneShot
	}
	return config.PollModeInterval
}

// newSession builds a panel session from the resolved configuration
func newSession() *panel.Session {
	mode, _ := panel.ParseMode(env.cfg.Poll.Mode)
	return panel.NewSession(env.creds, env.client, panel.Options{
		Mode:           mode,
		Interval:       env.cfg.Poll.Interval,
		CommandTimeout: env.cfg.RequestTimeout,
	})
}

// troubleshooting turns a relay hint into box bullet points
func troubleshooting(err error) []string {
	var tips []string
	for _, line := range strings.Split(relay.TroubleshootingHint(err), "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "•") {
			continue
		}
		tips = append(tips, strings.TrimSpace(strings.TrimPrefix(line, "•")))
	}
	return tips
}

// fail prints an error box and returns errReported
func fail(p *ui.Printer, title string, err error) error {
	var re *relay.RelayError
	if errors.As(err, &re) {
		p.PrintError(title, errors.New(relay.ShortMessage(err)), troubleshooting(err))
	} else {
		p.PrintError(title, err, nil)
	}
	return errReported
}
