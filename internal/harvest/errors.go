// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harvest

import (
	"errors"
	"fmt"
)

// NetworkError is any HTTP or transport failure, on the index fetch or a
// file download. StatusCode is 0 when no response was received.
type NetworkError struct {
	URL        string
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("HTTP %d from %s", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("request %s: %v", e.URL, e.Err)
}

// Unwrap returns the transport error, if any.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Is allows for error checking with errors.Is().
func (e *NetworkError) Is(target error) bool {
	_, ok := target.(*NetworkError)
	return ok
}

// IOError is a local filesystem failure while writing a download.
type IOError struct {
	Op   string
	Path string
	Err  error
}

// Error implements the error interface.
func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying filesystem error.
func (e *IOError) Unwrap() error {
	return e.Err
}

// Is allows for error checking with errors.Is().
func (e *IOError) Is(target error) bool {
	_, ok := target.(*IOError)
	return ok
}

// IndexError marks a failed index fetch. The run stops without downloading
// anything.
type IndexError struct {
	URL string
	Err error
}

// Error implements the error interface.
func (e *IndexError) Error() string {
	return fmt.Sprintf("fetching index %s: %v", e.URL, e.Err)
}

// Unwrap returns the cause, normally a *NetworkError.
func (e *IndexError) Unwrap() error {
	return e.Err
}

// Is allows for error checking with errors.Is().
func (e *IndexError) Is(target error) bool {
	_, ok := target.(*IndexError)
	return ok
}

// IsIndexFailure reports whether err came from the index fetch.
func IsIndexFailure(err error) bool {
	var ie *IndexError
	return errors.As(err, &ie)
}
