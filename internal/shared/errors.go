package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate indicates a uniqueness conflict on insert.
	ErrDuplicate = errors.New("duplicate entry")
)
