package domopult

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusError reports a non-2xx upstream response with its body preserved,
// so flows can surface the status and message to the user.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("domopult: unexpected status %d: %s", e.StatusCode, e.Body)
}

// Code implements the error-code contract used by handler summary logs.
func (e *StatusError) Code() string {
	return fmt.Sprintf("UPSTREAM_%d", e.StatusCode)
}

// IsUnauthorized reports whether err is an upstream 401, which means the
// stored tenant token has expired.
func IsUnauthorized(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusUnauthorized
}

// StatusOf extracts the upstream status code from err, or 0 for transport errors.
func StatusOf(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// BodyOf extracts the upstream response body from err, if any.
func BodyOf(err error) string {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Body
	}
	return ""
}
