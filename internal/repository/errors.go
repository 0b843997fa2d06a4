package repository

import "errors"

// Store-level failures. Drivers translate their native errors into these.
var (
	ErrNotFound   = errors.New("record not found")
	ErrEmailTaken = errors.New("email already taken")
	ErrLastAdmin  = errors.New("cannot delete the last admin")
)
