package checkout

import (
	"errors"
	"strings"

	"github.com/fjod/go_checkout/internal/domain"
)

var (
	ErrEmptyResolvedOrder   = errors.New("none of the cart items could be resolved")
	ErrSubmissionInProgress = errors.New("an order submission is already in progress")
	ErrNotAtReview          = errors.New("orders can only be submitted from the review step")
	ErrSubmissionFailed     = errors.New("order submission failed")
	ErrSessionNotFound      = errors.New("checkout session not found")
)

// ValidationError lists every message for the step that failed validation.
type ValidationError struct {
	Step     domain.CheckoutStep
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, " ")
}

// SubmissionError wraps a failed submit. Cause is whatever the order client
// returned.
type SubmissionError struct {
	Cause error
}

func (e *SubmissionError) Error() string {
	return ErrSubmissionFailed.Error() + ": " + e.Cause.Error()
}

func (e *SubmissionError) Is(target error) bool {
	return target == ErrSubmissionFailed
}

func (e *SubmissionError) Unwrap() error {
	return e.Cause
}

// userMessager is implemented by collaborator errors that carry text meant for
// the shopper, e.g. a server-provided rejection reason.
type userMessager interface {
	UserMessage() string
}
