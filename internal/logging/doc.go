// Package logging provides structured logging for govee-panel.
//
// This package wraps a zap logger with convenience functions for the
// patterns used throughout the panel. It is the diagnostic channel for
// failures that are deliberately not shown to the user: failed polls,
// failed commands, malformed color fields.
//
// # Log Levels
//
//   - Debug: relay requests/responses, applied state, absent colors
//   - Info: commands sent, feed connections, session lifecycle
//   - Warn: failed requests and commands, unreadable credentials
//   - Error: startup failures
//
// # Configuration
//
// Logging is silent unless a level is given, either explicitly or through
// GOVEE_PANEL_LOG_LEVEL. The interactive panel owns stdout, so entries go to
// stderr or to a file:
//
//	if err := logging.Initialize(logging.Options{Level: "debug", OutputPath: "/tmp/govee-panel.log"}); err != nil {
//	    return err
//	}
//	defer logging.Sync()
//
// # Relay Logging
//
// Each outbound relay call carries a request id that ties the request and
// response entries together:
//
//	logging.LogRelayRequest(id, "GET", "/devices")
//	logging.LogRelayResponse(id, "/devices", 200, elapsed, nil)
//
// The API key is never logged.
package logging
