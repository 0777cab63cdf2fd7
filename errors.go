package plainspeak

import "errors"

// Exported errors for library consumers.
var (
	// ErrNoProvider indicates no completion provider was configured.
	ErrNoProvider = errors.New("plainspeak: no completion provider configured")

	// ErrClientClosed indicates the client has been closed.
	ErrClientClosed = errors.New("plainspeak: client is closed")
)
