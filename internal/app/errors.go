package service

import "errors"

// Error kinds returned by Service operations. The wrapped cause of an
// InvalidArgument or NotFound error is a message safe to show to callers;
// Internal errors carry no cause, the detail is only logged.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	ErrInternal        = errors.New("internal error")
)
