package repository

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrConflict indicates a uniqueness constraint rejected the write,
	// e.g. a duplicate email or a second open shift for one worker.
	ErrConflict = errors.New("repository: conflict")
)
