package fetchax

import (
	"errors"
	"fmt"
)

// StatusError is the error a request fails with when ThrowError is set and
// the server responds with a status of 300 or more.  Response holds the
// parsed response.
//
// Before it is returned, a StatusError is passed through the Config's
// ResponseRejectedInterceptor, which may replace it.
type StatusError struct {
	StatusCode int
	Response   *Response
}

func (e *StatusError) Error() string {
	if e.Response != nil && e.Response.StatusText != "" {
		return fmt.Sprintf("server returned an unsuccessful status code: %d %s", e.StatusCode, e.Response.StatusText)
	}
	return fmt.Sprintf("server returned an unsuccessful status code: %d", e.StatusCode)
}

// AsStatusError finds the first *StatusError in err's chain.
func AsStatusError(err error) (*StatusError, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// StatusCode returns the status code of the *StatusError in err's chain, or
// 0 if there is none.
func StatusCode(err error) int {
	if se, ok := AsStatusError(err); ok {
		return se.StatusCode
	}
	return 0
}
