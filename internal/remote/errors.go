package remote

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound            = errors.New("remote: path not found")
	ErrConflict            = errors.New("remote: parent folder missing")
	ErrLocalFileUnreadable = errors.New("remote: local file unreadable")
	ErrSubtreeNotEmptied   = errors.New("remote: folder subtree could not be emptied")
)

// APIError is the error document the disk API returns with any non-2xx
// status. StatusCode, Operation and Path are filled in by the client.
type APIError struct {
	StatusCode  int    `json:"-"`
	Operation   string `json:"-"`
	Path        string `json:"-"`
	Code        string `json:"error"`
	Message     string `json:"message"`
	Description string `json:"description"`
}

func (e *APIError) Error() string {
	msg := e.Description
	if msg == "" {
		msg = e.Message
	}

	return fmt.Sprintf("%s %s: status %d %s: %s", e.Operation, e.Path, e.StatusCode, e.Code, msg)
}

// Is maps the two self-healing statuses onto their sentinels so callers can
// use errors.Is without looking at status codes.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrConflict:
		return e.StatusCode == http.StatusConflict
	default:
		return false
	}
}
