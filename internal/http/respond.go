package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fjod/go_checkout/internal/cart"
	"github.com/fjod/go_checkout/internal/checkout"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error    string   `json:"error"`
	Code     string   `json:"code,omitempty"`
	Messages []string `json:"messages,omitempty"`
}

func respondJSON(logger *zap.Logger, w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Warn("failed to encode response", zap.Int("status", status), zap.Error(err))
	}
}

func respondError(logger *zap.Logger, w http.ResponseWriter, status int, code, message string) {
	respondJSON(logger, w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleCheckoutError maps a session error to a status code. The body always
// carries the shopper-facing text.
func handleCheckoutError(logger *zap.Logger, w http.ResponseWriter, err error) {
	var httpStatus int
	var code string

	var validation *checkout.ValidationError
	switch {
	case errors.As(err, &validation):
		respondJSON(logger, w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:    checkout.Message(err),
			Code:     "validation_failed",
			Messages: validation.Messages,
		})
		return
	case errors.Is(err, cart.ErrExceedsStock):
		httpStatus = http.StatusConflict
		code = "exceeds_stock"
	case errors.Is(err, cart.ErrInvalidQuantity):
		httpStatus = http.StatusBadRequest
		code = "invalid_quantity"
	case errors.Is(err, cart.ErrLineNotFound):
		httpStatus = http.StatusNotFound
		code = "line_not_found"
	case errors.Is(err, checkout.ErrSessionNotFound):
		httpStatus = http.StatusNotFound
		code = "session_not_found"
	case errors.Is(err, checkout.ErrSubmissionInProgress):
		httpStatus = http.StatusConflict
		code = "submission_in_progress"
	case errors.Is(err, checkout.ErrNotAtReview):
		httpStatus = http.StatusConflict
		code = "not_at_review"
	case errors.Is(err, checkout.ErrEmptyResolvedOrder):
		httpStatus = http.StatusUnprocessableEntity
		code = "empty_order"
	case errors.Is(err, checkout.ErrSubmissionFailed):
		httpStatus = http.StatusBadGateway
		code = "submission_failed"
	default:
		httpStatus = http.StatusInternalServerError
		code = "internal_error"
		logger.Error("unexpected checkout error", zap.Error(err))
	}

	respondError(logger, w, httpStatus, code, checkout.Message(err))
}
