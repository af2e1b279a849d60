package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound      = errors.New("record not found")
	ErrQuery         = errors.New("store query failed")
	ErrInvalidData   = errors.New("invalid chart data")
	ErrUnknownDriver = errors.New("unknown database driver")
	ErrUnavailable   = errors.New("store unavailable")
)
