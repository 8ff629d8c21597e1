package cache

import "errors"

var (
	// ErrInvalidOptions is returned by New when a required option is missing or out of range.
	ErrInvalidOptions = errors.New("cache: invalid options")

	// ErrClosed is returned by Registry.Flush after Close.
	ErrClosed = errors.New("cache: registry closed")
)
