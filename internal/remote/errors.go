package remote

import "fmt"

// APIError is a transport-level failure from a remote endpoint: a non-2xx
// response or a body that could not be decoded. The upstream status line is
// preserved verbatim so callers can show exactly what the server said.
type APIError struct {
	StatusCode int    // Numeric HTTP status, 0 for transport failures
	Status     string // Status line as received, e.g. "401 Unauthorized"
	Message    string // Upstream error message body, when available
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("HTTP %s: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("HTTP %s", e.Status)
}
