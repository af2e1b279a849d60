package chartcheck

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for this package.
var (
	ErrUnhealthy    = errors.New("service unhealthy")
	ErrChecksFailed = errors.New("consistency checks failed")
	ErrRequest      = errors.New("request failed")
)

// StatusError is a non-200 answer from the API.
type StatusError struct {
	Path    string
	Status  int
	Code    string
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: %d %s: %s", e.Path, e.Status, e.Code, e.Message)
}
