// Package credential holds the relay API key in local key-value storage.
//
// The Adapter is read on every outbound request (it implements
// relay.KeySource), so a key edited in the panel applies to the next call
// without restarting anything.
package credential

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/muurk/govee-panel/internal/logging"
)

// StorageKey is the single key under which the API key is stored
const StorageKey = "key"

// StoreError wraps a failure of the underlying key-value store
type StoreError struct {
	Op  string // "read", "write" or "clear"
	Err error
}

// Error implements the error interface
func (e *StoreError) Error() string {
	return fmt.Sprintf("credential %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the store error
func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsStoreError reports whether err is a StoreError
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}

// Adapter reads and writes the API key
type Adapter struct {
	store Store
}

// NewAdapter wraps store
func NewAdapter(store Store) *Adapter {
	return &Adapter{store: store}
}

// Read returns the stored key. A key that was never written yields an error
// matching ErrNotFound.
func (a *Adapter) Read() (string, error) {
	key, err := a.store.Get(StorageKey)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", err
		}
		return "", &StoreError{Op: "read", Err: err}
	}
	return key, nil
}

// Write replaces the stored key
func (a *Adapter) Write(key string) error {
	if err := a.store.Set(StorageKey, key); err != nil {
		return &StoreError{Op: "write", Err: err}
	}
	logging.Debug("API key updated", zap.Bool("empty", key == ""))
	return nil
}

// Clear removes the stored key
func (a *Adapter) Clear() error {
	if err := a.store.Remove(StorageKey); err != nil {
		return &StoreError{Op: "clear", Err: err}
	}
	logging.Debug("API key cleared")
	return nil
}

// Init is the panel-load read. A missing key is normalized to an empty
// string, which is also written back so the store never lacks the entry.
func (a *Adapter) Init() (string, error) {
	key, err := a.Read()
	if err == nil {
		return key, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return "", err
	}

	logging.Debug("No API key stored, defaulting to empty")
	if err := a.Write(""); err != nil {
		return "", err
	}
	return "", nil
}

// Key returns the current key, re-reading storage on every call.
// Failures degrade to an empty key; the relay then answers 401.
func (a *Adapter) Key() string {
	key, err := a.Read()
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logging.Warn("Failed to read API key", zap.Error(err))
		}
		return ""
	}
	return key
}
