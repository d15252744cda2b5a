package storage

import "errors"

var (
	// ErrAuthNotFound means there is no session for the requested server
	ErrAuthNotFound = errors.New("session not found")

	// ErrStorageClosed is returned by every call after Close
	ErrStorageClosed = errors.New("session storage is closed")

	// ErrNoServerURL is returned when a session has no server URL to be keyed by
	ErrNoServerURL = errors.New("session has no server url")
)
