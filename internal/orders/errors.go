package orders

import (
	"errors"
	"fmt"
)

var ErrUnavailable = errors.New("order service unavailable")

// SubmissionError is a non-2xx response. Message is the server's own reason
// when the body carried one.
type SubmissionError struct {
	StatusCode int
	Message    string
}

func (e *SubmissionError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("order endpoint returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("order endpoint returned status %d: %s", e.StatusCode, e.Message)
}

// UserMessage is the server-provided reason, empty when there was none.
func (e *SubmissionError) UserMessage() string {
	return e.Message
}

// Temporary reports whether the failure is on the server side.
func (e *SubmissionError) Temporary() bool {
	return e.StatusCode >= 500
}
