package relay

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"syscall"
)

// ErrorType represents the category of error that occurred
type ErrorType int

const (
	// ErrTypeNetwork indicates a network-level error (reset, unreachable, etc.)
	ErrTypeNetwork ErrorType = iota
	// ErrTypeTimeout indicates a request timeout
	ErrTypeTimeout
	// ErrTypeConnectionRefused indicates the relay refused the connection
	ErrTypeConnectionRefused
	// ErrTypeDNS indicates the relay host could not be resolved
	ErrTypeDNS
	// ErrTypeAuth indicates the relay rejected the API key
	ErrTypeAuth
	// ErrTypeHTTP indicates any other non-2xx status
	ErrTypeHTTP
	// ErrTypeParse indicates a body that was not the expected JSON
	ErrTypeParse
	// ErrTypeMissingCredential indicates no API key is configured
	ErrTypeMissingCredential
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeNetwork:
		return "Network Error"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeConnectionRefused:
		return "Connection Refused"
	case ErrTypeDNS:
		return "DNS Error"
	case ErrTypeAuth:
		return "Authentication Error"
	case ErrTypeHTTP:
		return "HTTP Error"
	case ErrTypeParse:
		return "Parse Error"
	case ErrTypeMissingCredential:
		return "Missing Credential"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// RelayError represents a failed relay call
type RelayError struct {
	Type       ErrorType // Category of error
	Message    string    // Human-readable error message
	Path       string    // Relay path, relative to the base URL
	StatusCode int       // HTTP status code (if applicable)
	Err        error     // Underlying error (if any)
	Retryable  bool      // Whether the call may succeed if repeated
}

// Error implements the error interface
func (e *RelayError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Type, e.Message)
	if e.Path != "" {
		msg += " [" + e.Path + "]"
	}
	if e.Err != nil {
		msg += fmt.Sprintf(" (caused by: %v)", e.Err)
	}
	return msg
}

// Unwrap returns the underlying error for error chain inspection
func (e *RelayError) Unwrap() error {
	return e.Err
}

// classifyNetworkError maps a transport error to a RelayError
func classifyNetworkError(err error) *RelayError {
	if err == nil {
		return nil
	}

	if os.IsTimeout(err) {
		return &RelayError{Type: ErrTypeTimeout, Message: "request timed out", Err: err, Retryable: true}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &RelayError{
			Type:    ErrTypeDNS,
			Message: fmt.Sprintf("DNS resolution failed for %s", dnsErr.Name),
			Err:     err,
		}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && errors.Is(opErr.Err, syscall.ECONNREFUSED) {
		return &RelayError{Type: ErrTypeConnectionRefused, Message: "relay refused connection", Err: err, Retryable: true}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		classified := classifyNetworkError(urlErr.Err)
		classified.Err = err
		return classified
	}

	return &RelayError{Type: ErrTypeNetwork, Message: "network error occurred", Err: err, Retryable: true}
}

// NewNetworkError creates a network-level error with automatic classification
func NewNetworkError(message string, err error) *RelayError {
	classified := classifyNetworkError(err)
	if classified == nil {
		return &RelayError{Type: ErrTypeNetwork, Message: message, Retryable: true}
	}
	classified.Message = message + ": " + classified.Message
	return classified
}

// NewAuthError creates an authentication error
func NewAuthError(statusCode int) *RelayError {
	return &RelayError{
		Type:       ErrTypeAuth,
		Message:    "relay rejected the API key",
		StatusCode: statusCode,
	}
}

// NewHTTPError creates an HTTP-level error
func NewHTTPError(statusCode int, message string) *RelayError {
	return &RelayError{
		Type:       ErrTypeHTTP,
		Message:    message,
		StatusCode: statusCode,
		Retryable:  statusCode >= 500 || statusCode == 429,
	}
}

// NewParseError creates a parsing error
func NewParseError(message string, err error) *RelayError {
	return &RelayError{Type: ErrTypeParse, Message: message, Err: err}
}

// NewMissingCredentialError is returned when no API key is configured
func NewMissingCredentialError() *RelayError {
	return &RelayError{Type: ErrTypeMissingCredential, Message: "no API key configured"}
}

func asRelayError(err error) (*RelayError, bool) {
	var re *RelayError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// IsNetworkError checks if an error is a network error (including timeout, connection refused, DNS)
func IsNetworkError(err error) bool {
	if re, ok := asRelayError(err); ok {
		switch re.Type {
		case ErrTypeNetwork, ErrTypeTimeout, ErrTypeConnectionRefused, ErrTypeDNS:
			return true
		}
	}
	return false
}

// IsAuthError checks if an error is an authentication error
func IsAuthError(err error) bool {
	re, ok := asRelayError(err)
	return ok && re.Type == ErrTypeAuth
}

// IsHTTPError checks if an error is an HTTP error
func IsHTTPError(err error) bool {
	re, ok := asRelayError(err)
	return ok && re.Type == ErrTypeHTTP
}

// IsParseError checks if an error is a parse error
func IsParseError(err error) bool {
	re, ok := asRelayError(err)
	return ok && re.Type == ErrTypeParse
}

// IsMissingCredential checks if an error reports an absent API key
func IsMissingCredential(err error) bool {
	re, ok := asRelayError(err)
	return ok && re.Type == ErrTypeMissingCredential
}

// IsRetryable checks if an error should be retried
func IsRetryable(err error) bool {
	re, ok := asRelayError(err)
	return ok && re.Retryable
}

// ShortMessage returns a concise, user-friendly error message
func ShortMessage(err error) string {
	re, ok := asRelayError(err)
	if !ok {
		return err.Error()
	}

	switch re.Type {
	case ErrTypeTimeout:
		return "Relay not responding (timeout)"
	case ErrTypeConnectionRefused:
		return "Relay refused connection"
	case ErrTypeDNS:
		return "Cannot resolve relay host"
	case ErrTypeAuth:
		return "API key rejected - check the key"
	case ErrTypeMissingCredential:
		return "No API key set"
	case ErrTypeNetwork:
		return "Network error - check connection"
	case ErrTypeHTTP:
		return fmt.Sprintf("Relay error (HTTP %d)", re.StatusCode)
	case ErrTypeParse:
		return "Unexpected response from relay"
	default:
		return re.Message
	}
}

// TroubleshootingHint returns user-facing advice for an error
func TroubleshootingHint(err error) string {
	re, ok := asRelayError(err)
	if !ok {
		return "An unexpected error occurred. Please try again."
	}

	switch re.Type {
	case ErrTypeAuth, ErrTypeMissingCredential:
		return strings.Join([]string{
			"The relay needs a valid API key.",
			"Troubleshooting:",
			"  • Press k and paste your function key",
			"  • Or run: govee-panel key set",
		}, "\n")

	case ErrTypeTimeout, ErrTypeConnectionRefused, ErrTypeNetwork:
		return strings.Join([]string{
			"The relay could not be reached.",
			"Troubleshooting:",
			"  • Check your internet connection",
			"  • Verify --base-url points at the relay",
			"  • Try increasing --timeout",
		}, "\n")

	case ErrTypeDNS:
		return strings.Join([]string{
			"The relay host name did not resolve.",
			"Troubleshooting:",
			"  • Check the host in --base-url or GOVEE_PANEL_BASE_URL",
			"  • Check your DNS settings",
		}, "\n")

	case ErrTypeHTTP:
		if re.StatusCode >= 500 {
			return fmt.Sprintf("The relay failed (HTTP %d). The vendor cloud may be down; try again later.", re.StatusCode)
		}
		return fmt.Sprintf("The relay returned HTTP %d. Check the device id and base URL.", re.StatusCode)

	case ErrTypeParse:
		return "The relay answered with something other than the expected JSON. Check --base-url."

	default:
		return "An error occurred. Please check the error message for details."
	}
}
