package loader

import (
	"errors"
	"fmt"
)

// Kinds of ConsistencyError.
var (
	ErrDuplicatePage    = errors.New("duplicate page")
	ErrOutOfOrderPage   = errors.New("out-of-order page")
	ErrIdentityMismatch = errors.New("page belongs to another query identity")
)

// ErrUnstablePages is reported when page 1 breaks consistency again right
// after a consistency reset. The loader stops and waits for Retry.
var ErrUnstablePages = errors.New("pages stayed inconsistent after a reset")

// ConsistencyError means the loaded pages would stop being contiguous and
// unique. It points at a sequencing bug, never at user input; the loader
// handles it by resetting the load sequence.
type ConsistencyError struct {
	Kind     error
	Identity QueryIdentity
	Page     int
	Expected int
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("consistency error: %v (identity %s, page %d, expected %d)",
		e.Kind, e.Identity, e.Page, e.Expected)
}

func (e *ConsistencyError) Unwrap() error { return e.Kind }
