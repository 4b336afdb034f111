package model

import "errors"

var (
	// ErrNotFound is returned when no clip with the requested output
	// filename exists.
	ErrNotFound = errors.New("clip not found")

	// ErrDuplicate is returned when an insert or rename would produce a
	// second live record with the same output filename.
	ErrDuplicate = errors.New("duplicate output filename")

	// ErrNothingPlaying is returned by the player when a position or
	// metadata read is attempted while no media is playing.
	ErrNothingPlaying = errors.New("nothing playing")
)
