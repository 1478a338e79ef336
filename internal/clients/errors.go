package clients

import "fmt"

// RequestError reports a failed call to the order or payment API: a non-2xx
// status, a malformed body, or a transport failure (Status == 0).
type RequestError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *RequestError) Error() string {
	if e.Status == 0 {
		if e.Err != nil {
			return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
		}
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("%s: %s (status %d)", e.Op, e.Message, e.Status)
}

func (e *RequestError) Unwrap() error { return e.Err }

// Network reports whether the request never got an HTTP response.
func (e *RequestError) Network() bool { return e.Status == 0 }
