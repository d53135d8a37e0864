package checkout

import (
	"errors"
	"fmt"

	"github.com/fjod/go_checkout/internal/cart"
)

type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeSuccess NoticeLevel = "success"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is a message for the shopper, shown once.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

const (
	msgEmptyResolvedOrder = "None of the items in your cart are available anymore. Please refresh the page and try again."
	msgSubmissionFailed   = "We couldn't place your order. Please try again."
	msgInProgress         = "Your order is already being submitted."
	msgNotAtReview        = "Please review your order before submitting."
	msgOrderPlaced        = "Your order has been placed."
	msgInvalidQuantity    = "Quantity must be at least 1."
	msgLineNotFound       = "That item is no longer in your cart."
	msgSessionNotFound    = "Your checkout session has expired. Please start again."
	msgUnexpected         = "Something went wrong. Please try again."
)

func prunedMessage(n int) string {
	return fmt.Sprintf("%d item(s) removed — no longer available", n)
}

// Message converts any error raised by a session into the text shown to the
// shopper.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var validation *ValidationError
	if errors.As(err, &validation) {
		return validation.Error()
	}
	var stock *cart.StockError
	if errors.As(err, &stock) {
		return fmt.Sprintf("Only %d available.", stock.Available)
	}
	if errors.Is(err, ErrSubmissionFailed) {
		var um userMessager
		if errors.As(err, &um) {
			if msg := um.UserMessage(); msg != "" {
				return msg
			}
		}
		return msgSubmissionFailed
	}

	switch {
	case errors.Is(err, ErrEmptyResolvedOrder):
		return msgEmptyResolvedOrder
	case errors.Is(err, ErrSubmissionInProgress):
		return msgInProgress
	case errors.Is(err, ErrNotAtReview):
		return msgNotAtReview
	case errors.Is(err, cart.ErrInvalidQuantity):
		return msgInvalidQuantity
	case errors.Is(err, cart.ErrLineNotFound):
		return msgLineNotFound
	case errors.Is(err, ErrSessionNotFound):
		return msgSessionNotFound
	}
	return msgUnexpected
}
