package tracker

import "fmt"

// TransportError is a failed push to a destination: a network error or a
// non-2xx response.
type TransportError struct {
	Destination string
	Code        int // 0 when no response was received
	Err         error
}

func (e *TransportError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s: http %d: %v", e.Destination, e.Code, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Destination, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusCode returns the HTTP status of the failed response, if any.
func (e *TransportError) StatusCode() int { return e.Code }
