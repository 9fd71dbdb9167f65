package api

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrUnauthorized = errors.New("api: unauthorized")
	ErrNotFound     = errors.New("api: not found")
	ErrTimeout      = errors.New("api: request timed out")
)

// BackendError is any non-2xx response that carried the backend's error
// envelope ({error, message}).
type BackendError struct {
	Status  int
	Code    string
	Message string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("api: backend %d %s: %s", e.Status, e.Code, e.Message)
}

// BlockedError is returned by login when the account is flagged blocked.
// It is distinct from plain invalid credentials so the UI can say
// "contact support" instead of "try again".
type BlockedError struct {
	Message   string
	Reason    string
	BlockedAt time.Time
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("api: account blocked (%s): %s", e.Reason, e.Message)
}
