package linkin_errors

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrAuthRejected     = errors.New("authentication rejected")
	ErrNotConnected     = errors.New("not connected")
	ErrRetriesExhausted = errors.New("reconnect retries exhausted")
	ErrNoActiveChat     = errors.New("no active chat")
)

// APIError carries a non-zero response code and the server's displayable
// message. It is never retried automatically.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d", e.Code)
}

// AsAPIError unwraps err into an *APIError if one is in the chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
