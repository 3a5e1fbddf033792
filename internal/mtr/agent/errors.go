package agent

import "errors"

var (
	// ErrNotFound is returned when a uuid has no history.
	ErrNotFound = errors.New("agent not found")
	// ErrLengthMismatch is returned when parallel inputs differ in length.
	ErrLengthMismatch = errors.New("length mismatch")
	// ErrShape is returned when a trajectory tensor violates its layout.
	ErrShape = errors.New("invalid trajectory shape")
)
