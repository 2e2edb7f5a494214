package api

import (
	"errors"
	"fmt"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotSignedIn  = errors.New("not signed in")
)

// StatusError is a non-2xx response carrying the server's message.
type StatusError struct {
	Status  int
	Message string
	Fields  []string
}

func (e *StatusError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("%d: %s %v", e.Status, e.Message, e.Fields)
	}
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}
