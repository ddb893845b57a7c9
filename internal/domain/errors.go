package domain

import (
	"fmt"
	"net/http"
)

// NetworkError is a transport or connectivity failure talking to a data
// source.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// InvalidResponseError is a non-success status or a payload that could not
// be decoded. StatusCode is zero when the status was fine but the body was
// not.
type InvalidResponseError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *InvalidResponseError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *InvalidResponseError) Unwrap() error { return e.Err }
