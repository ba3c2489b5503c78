package roomsdk

import "fmt"

// APIError is returned for any non-2xx response with a decodable error
// body.
type APIError struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *APIError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("roomsdk: %s (%s, http %d)", e.Description, e.Code, e.StatusCode)
	}
	return fmt.Sprintf("roomsdk: %s (http %d)", e.Code, e.StatusCode)
}

// IsStatus reports whether err is an APIError with the given HTTP
// status.
func IsStatus(err error, status int) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.StatusCode == status
}
