package domain

import (
	"errors"
	"fmt"
)

// ErrConversationNotFound is returned when a conversation ID cannot be found in the store.
var ErrConversationNotFound = errors.New("conversation not found")

// ErrStorageUnavailable is returned when the backing store fails during a turn.
// The turn is aborted and nothing is committed.
var ErrStorageUnavailable = errors.New("storage unavailable")

// ErrMalformedFrame is returned when the persisted stack references an unknown
// dialog or a step index outside the dialog's step list.
var ErrMalformedFrame = errors.New("malformed dialog frame")

// ErrMalformedState is returned when a persisted slot cannot be decoded into its type.
var ErrMalformedState = errors.New("malformed conversation state")

// ErrConfiguration is returned at construction time when a required collaborator is missing.
var ErrConfiguration = errors.New("invalid configuration")

// ErrUnknownIntent is returned when the routing table has no entry for an intent.
var ErrUnknownIntent = errors.New("unknown intent")

// MalformedFrameError describes which frame could not be resumed.
type MalformedFrameError struct {
	DialogID string
	Cursor   int
	Reason   string
}

func (e *MalformedFrameError) Error() string {
	return fmt.Sprintf("dialog '%s' at cursor %d: %s", e.DialogID, e.Cursor, e.Reason)
}

func (e *MalformedFrameError) Unwrap() error {
	return ErrMalformedFrame
}

// ConfigurationError names the collaborator that is missing or invalid.
type ConfigurationError struct {
	Component string
	Reason    string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Component, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

// StorageError wraps a backing store failure so callers can match ErrStorageUnavailable.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, ErrStorageUnavailable, e.Err)
}

func (e *StorageError) Unwrap() []error {
	return []error{ErrStorageUnavailable, e.Err}
}
