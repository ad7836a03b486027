package client

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is the service's JSON error body.
type APIError struct {
	Status  string `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("http %d: %s", e.Code, e.Status)
	}
	return fmt.Sprintf("http %d: %s", e.Code, e.Message)
}

// IsNotFound reports whether err is a 404 from the service.
func IsNotFound(err error) bool { return hasCode(err, http.StatusNotFound) }

// IsConflict reports whether err is a 409, e.g. an analysis superseded by a regenerate.
func IsConflict(err error) bool { return hasCode(err, http.StatusConflict) }

func hasCode(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}
