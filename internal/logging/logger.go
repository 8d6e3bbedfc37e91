package logging

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger = zap.NewNop()

// LogLevelEnvVar is the environment variable that controls logging verbosity.
// When unset or empty, logging is silent (no zap output).
// Valid values: "debug", "info", "warn", "error"
const LogLevelEnvVar = "GOVEE_PANEL_LOG_LEVEL"

// Options configure Initialize
type Options struct {
	// Level is the minimum level. Empty falls back to GOVEE_PANEL_LOG_LEVEL,
	// and when that is empty too logging is disabled.
	Level string

	// OutputPath is where entries are written. Empty means stderr, since the
	// interactive panel owns stdout.
	OutputPath string
}

// Initialize creates the global logger
func Initialize(opts Options) error {
	level := opts.Level
	if level == "" {
		level = os.Getenv(LogLevelEnvVar)
	}

	if level == "" {
		logger = zap.NewNop()
		return nil
	}

	output := opts.OutputPath
	if output == "" {
		output = "stderr"
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(parseLevel(level)),
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{output},
		ErrorOutputPaths: []string{"stderr"},
	}

	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	if output == "stderr" || output == "stdout" {
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	built, err := config.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger = built

	return nil
}

// InitializeFromEnv initializes the logger from GOVEE_PANEL_LOG_LEVEL only
func InitializeFromEnv() error {
	return Initialize(Options{})
}

// SetLogger replaces the global logger (tests use zaptest/observer cores)
func SetLogger(l *zap.Logger) {
	logger = l
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		// Unknown level - use info as default when explicitly set to something
		return zapcore.InfoLevel
	}
}

// GetLogger returns the global logger instance
func GetLogger() *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return logger
}

// Info logs an info message
func Info(msg string, fields ...zap.Field) {
	GetLogger().Info(msg, fields...)
}

// Debug logs a debug message
func Debug(msg string, fields ...zap.Field) {
	GetLogger().Debug(msg, fields...)
}

// Warn logs a warning message
func Warn(msg string, fields ...zap.Field) {
	GetLogger().Warn(msg, fields...)
}

// Error logs an error message
func Error(msg string, fields ...zap.Field) {
	GetLogger().Error(msg, fields...)
}

// LogRelayRequest logs an outbound relay call. The API key is never logged.
func LogRelayRequest(requestID, method, path string) {
	Debug("Relay request",
		zap.String("request_id", requestID),
		zap.String("method", method),
		zap.String("path", path),
	)
}

// LogRelayResponse logs the outcome of a relay call
func LogRelayResponse(requestID, path string, statusCode int, elapsed time.Duration, err error) {
	fields := []zap.Field{
		zap.String("request_id", requestID),
		zap.String("path", path),
		zap.Int("status_code", statusCode),
		zap.Duration("elapsed", elapsed),
	}
	if err != nil {
		Warn("Relay request failed", append(fields, zap.Error(err))...)
		return
	}
	Debug("Relay response", fields...)
}

// LogStateUpdate logs a device state applied from a poll
func LogStateUpdate(deviceID, mac string, on bool, color string) {
	Debug("Device state updated",
		zap.String("device_id", deviceID),
		zap.String("mac", mac),
		zap.Bool("on", on),
		zap.String("color", color),
	)
}

// LogCommand logs a control command sent on behalf of the user
func LogCommand(deviceID, command, value string, err error) {
	fields := []zap.Field{
		zap.String("device_id", deviceID),
		zap.String("command", command),
		zap.String("value", value),
	}
	if err != nil {
		Warn("Device command failed", append(fields, zap.Error(err))...)
		return
	}
	Info("Device command sent", fields...)
}

// LogFeedConnection logs a feed client connect/disconnect
func LogFeedConnection(remoteAddr, event string) {
	Info("Feed connection event",
		zap.String("remote_addr", remoteAddr),
		zap.String("event", event),
	)
}

// LogFeedMessage logs a message exchanged with a feed client
func LogFeedMessage(remoteAddr, direction string, data []byte) {
	Debug("Feed message",
		zap.String("remote_addr", remoteAddr),
		zap.String("direction", direction),
		zap.Int("length", len(data)),
		zap.String("content", truncate(string(data), 256)),
	)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Sync flushes any buffered log entries
func Sync() {
	if logger != nil {
		_ = logger.Sync()
	}
}
