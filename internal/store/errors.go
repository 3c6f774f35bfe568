package store

import (
	"errors"
	"fmt"
)

// TransportError is returned when the store could not be reached or did not
// answer in time. It is recoverable; the caller decides whether to retry.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolError is returned when the store answered with a response whose
// shape cannot be interpreted. Field names the offending part of the response.
// Partial is set when the records decoded fine and only the total count is
// unusable; its TotalCount is zero.
type ProtocolError struct {
	Op      string
	Field   string
	Reason  string
	Partial *ListResult
}

func (e *ProtocolError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("protocol error during %s: %s", e.Op, e.Reason)
	}
	return fmt.Sprintf("protocol error during %s: %s: %s", e.Op, e.Field, e.Reason)
}

// IsTransport reports whether err is or wraps a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsProtocol reports whether err is or wraps a ProtocolError.
func IsProtocol(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe)
}
