// Package config manages govee-panel preferences.
//
// Preferences live in a YAML file in the platform configuration directory:
//   - Linux: $XDG_CONFIG_HOME/govee-panel/config.yaml or $HOME/.config/govee-panel/config.yaml
//   - macOS: $HOME/.config/govee-panel/config.yaml
//   - Windows: %LOCALAPPDATA%\govee-panel\config.yaml
//
// Values are resolved in this order, later wins:
//
//  1. built-in defaults (Default)
//  2. config.yaml (Load)
//  3. GOVEE_PANEL_* environment variables, optionally seeded from a .env file
//     (LoadEnvFile, ApplyEnv)
//  4. command-line flags (applied by the CLI)
//
// # Security
//
// The relay API key is never written to config.yaml. It is held by the
// credential store (storage.yaml), which mirrors the browser extension's
// local key-value storage.
//
// # Usage Example
//
//	_ = config.LoadEnvFile("")
//	cfg, err := config.LoadDefault()
//	if err != nil {
//	    return err
//	}
//	if err := cfg.ApplyEnv(); err != nil {
//	    return err
//	}
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
package config
