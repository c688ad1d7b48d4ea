package core

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when the acting user does not own the
	// entity's company and is not an admin.
	ErrForbidden = errors.New("forbidden")
)
