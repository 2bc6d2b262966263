package client

import "errors"

var (
	// ErrDaemonNotRunning is returned when the status socket does not exist,
	// either because the daemon is down or the status API is disabled.
	ErrDaemonNotRunning = errors.New("daemon not running")

	// ErrPermissionDenied is returned when the socket cannot be opened.
	ErrPermissionDenied = errors.New("permission denied")

	ErrNotFound = errors.New("404 not found")
)
