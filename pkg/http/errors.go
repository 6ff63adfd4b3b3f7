package http

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports that the remote file does not exist.
	ErrNotFound = errors.New("remote file not found")
	// ErrTransport reports that every retrieval attempt failed.
	ErrTransport = errors.New("transport failure")
)

// TransportError describes a failed request against a single URL.
type TransportError struct {
	Op     string
	URL    string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %s: status %d: %v", e.Op, e.URL, e.Status, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
