package catalog

import (
	"errors"
	"fmt"

	"recipebrowser"
)

// Sentinel errors for catalog operations. Lookups that match nothing return
// recipebrowser.ErrNotFound.
var (
	ErrRateLimited = errors.New("catalog: rate limited by server")
	ErrServer      = errors.New("catalog: server error")
	ErrBadStatus   = errors.New("catalog: unexpected status")
	ErrNotFound    = recipebrowser.ErrNotFound
)

// Error wraps an underlying error with operation context.
type Error struct {
	Op  string // "categories", "filter", "search", "lookup"
	Key string // category, query or id, if applicable
	Err error
}

func (e *Error) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("catalog %s [%s]: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("catalog %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrapError(op, key string, err error) error {
	return &Error{Op: op, Key: key, Err: err}
}
