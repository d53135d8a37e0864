package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/fjod/go_checkout/internal/checkout"
	"github.com/fjod/go_checkout/internal/domain"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type CheckoutHandler struct {
	registry *checkout.Registry
	timeout  time.Duration
	logger   *zap.Logger
}

func NewCheckoutHandler(registry *checkout.Registry, timeout time.Duration, logger *zap.Logger) *CheckoutHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckoutHandler{
		registry: registry,
		timeout:  timeout,
		logger:   logger,
	}
}

// POST /api/v1/checkout/sessions
func (h *CheckoutHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	identity := getIdentityFromContext(r.Context())
	if identity.ClientID == "" {
		respondError(h.logger, w, http.StatusBadRequest, "missing_client", "missing "+HeaderClientID+" header")
		return
	}

	var req CreateSessionRequestDTO
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(h.logger, w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
			return
		}
	}

	s, err := h.registry.Create(ctx, identity, toContact(req.Contact))
	if err != nil {
		h.logger.Error("failed to create checkout session", zap.String("client_id", identity.ClientID), zap.Error(err))
		respondError(h.logger, w, http.StatusServiceUnavailable, "catalog_unavailable", "checkout is temporarily unavailable")
		return
	}

	respondJSON(h.logger, w, http.StatusCreated, toSessionResponse(s.View()))
}

// GET /api/v1/checkout/sessions/{id}
func (h *CheckoutHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	respondJSON(h.logger, w, http.StatusOK, toSessionResponse(s.View()))
}

// POST /api/v1/checkout/sessions/{id}/next
func (h *CheckoutHandler) Next(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if _, err := s.Next(ctx); err != nil {
		handleCheckoutError(h.logger, w, err)
		return
	}
	respondJSON(h.logger, w, http.StatusOK, toSessionResponse(s.View()))
}

// POST /api/v1/checkout/sessions/{id}/previous
func (h *CheckoutHandler) Previous(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.Previous()
	respondJSON(h.logger, w, http.StatusOK, toSessionResponse(s.View()))
}

// PATCH /api/v1/checkout/sessions/{id}/form
func (h *CheckoutHandler) UpdateForm(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var patch domain.FormPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(h.logger, w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	s.UpdateForm(patch)
	respondJSON(h.logger, w, http.StatusOK, toSessionResponse(s.View()))
}

// POST /api/v1/checkout/sessions/{id}/items
func (h *CheckoutHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	h.mutateItem(w, r, http.StatusCreated, func(ctx context.Context, s *checkout.Session, req ItemRequestDTO) error {
		return s.AddItem(ctx, req.ProductID, req.VariantID, req.Quantity)
	})
}

// PUT /api/v1/checkout/sessions/{id}/items
func (h *CheckoutHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	h.mutateItem(w, r, http.StatusOK, func(ctx context.Context, s *checkout.Session, req ItemRequestDTO) error {
		return s.SetQuantity(ctx, req.ProductID, req.VariantID, req.Quantity)
	})
}

// DELETE /api/v1/checkout/sessions/{id}/items
func (h *CheckoutHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	h.mutateItem(w, r, http.StatusOK, func(ctx context.Context, s *checkout.Session, req ItemRequestDTO) error {
		return s.RemoveItem(ctx, req.ProductID, req.VariantID)
	})
}

// DELETE /api/v1/checkout/sessions/{id}/cart
func (h *CheckoutHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := s.ClearCart(ctx); err != nil {
		handleCheckoutError(h.logger, w, err)
		return
	}
	respondJSON(h.logger, w, http.StatusOK, toSessionResponse(s.View()))
}

// POST /api/v1/checkout/sessions/{id}/submit
//
// The submit outlives the request: a client that disconnects still gets its
// order placed, and the outcome is visible on the next GET.
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if _, err := s.Submit(r.Context()); err != nil {
		handleCheckoutError(h.logger, w, err)
		return
	}
	respondJSON(h.logger, w, http.StatusCreated, toSessionResponse(s.View()))
}

// DELETE /api/v1/checkout/sessions/{id}
func (h *CheckoutHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	if err := h.registry.Abandon(chi.URLParam(r, "id")); err != nil {
		handleCheckoutError(h.logger, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CheckoutHandler) session(w http.ResponseWriter, r *http.Request) (*checkout.Session, bool) {
	s, err := h.registry.Get(chi.URLParam(r, "id"))
	if err != nil {
		handleCheckoutError(h.logger, w, err)
		return nil, false
	}
	return s, true
}

func (h *CheckoutHandler) mutateItem(w http.ResponseWriter, r *http.Request, status int, fn func(context.Context, *checkout.Session, ItemRequestDTO) error) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req ItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(h.logger, w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID.IsZero() {
		respondError(h.logger, w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	if err := fn(ctx, s, req); err != nil {
		handleCheckoutError(h.logger, w, err)
		return
	}
	respondJSON(h.logger, w, status, toSessionResponse(s.View()))
}
