package models

import "errors"

// Storage level errors shared by repositories
var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
	// ErrMissingReference is returned when a row references a missing parent row
	ErrMissingReference = errors.New("referenced record does not exist")
)
