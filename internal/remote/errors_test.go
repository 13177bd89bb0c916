package remote

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func asAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}

func TestAPIErrorIs(t *testing.T) {
	notFound := &APIError{StatusCode: http.StatusNotFound, Code: "DiskNotFoundError"}
	conflict := &APIError{StatusCode: http.StatusConflict, Code: "DiskPathDoesntExistsError"}

	assert.ErrorIs(t, fmt.Errorf("wrapped: %w", notFound), ErrNotFound)
	assert.NotErrorIs(t, notFound, ErrConflict)
	assert.ErrorIs(t, conflict, ErrConflict)
	assert.NotErrorIs(t, &APIError{StatusCode: http.StatusInternalServerError}, ErrNotFound)
}

func TestAPIErrorMessage(t *testing.T) {
	err := &APIError{
		StatusCode:  http.StatusNotFound,
		Operation:   "list",
		Path:        "/Backup",
		Code:        "DiskNotFoundError",
		Message:     "Not Found",
		Description: "Resource not found.",
	}

	assert.Equal(t, "list /Backup: status 404 DiskNotFoundError: Resource not found.", err.Error())
}
