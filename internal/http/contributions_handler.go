package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/fjod/go_checkout/internal/bulk"
	"github.com/fjod/go_checkout/internal/checkout"
	"github.com/fjod/go_checkout/internal/orders"
	"go.uber.org/zap"
)

const maxBulkContributions = 500

type ContributionSubmitter interface {
	SubmitContribution(ctx context.Context, clientID string, contribution orders.Contribution, csrfToken string) (*orders.ContributionReceipt, error)
}

type ContributionHandler struct {
	client ContributionSubmitter
	logger *zap.Logger
}

func NewContributionHandler(client ContributionSubmitter, logger *zap.Logger) *ContributionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContributionHandler{client: client, logger: logger}
}

type BulkContributionRequestDTO struct {
	Contributions []orders.Contribution `json:"contributions"`
}

type BulkContributionResponseDTO struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
	bulk.Summary
}

// POST /api/v1/contributions/bulk
//
// Contributions are sent one at a time in request order; a rejected one is
// reported and the rest still go out.
func (h *ContributionHandler) SubmitBulk(w http.ResponseWriter, r *http.Request) {
	identity := getIdentityFromContext(r.Context())
	if identity.ClientID == "" {
		respondError(h.logger, w, http.StatusBadRequest, "missing_client", "missing "+HeaderClientID+" header")
		return
	}

	var req BulkContributionRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(h.logger, w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if len(req.Contributions) == 0 {
		respondError(h.logger, w, http.StatusBadRequest, "empty_batch", "contributions must not be empty")
		return
	}
	if len(req.Contributions) > maxBulkContributions {
		respondError(h.logger, w, http.StatusBadRequest, "batch_too_large",
			fmt.Sprintf("at most %d contributions per batch", maxBulkContributions))
		return
	}

	tasks := make([]bulk.Task[orders.Contribution], len(req.Contributions))
	for i, c := range req.Contributions {
		id := c.MemberID
		if id == "" {
			id = fmt.Sprintf("#%d", i+1)
		}
		tasks[i] = bulk.Task[orders.Contribution]{ID: id, Payload: c}
	}

	token := checkout.TokenFromContext(r.Context())
	q := bulk.Run(r.Context(), tasks, func(ctx context.Context, task bulk.Task[orders.Contribution]) error {
		_, err := h.client.SubmitContribution(ctx, identity.ClientID, task.Payload, token)
		return err
	}, func(q bulk.Queue[orders.Contribution]) {
		completed, total := q.Progress()
		h.logger.Debug("bulk contribution progress",
			zap.String("client_id", identity.ClientID),
			zap.Int("completed", completed),
			zap.Int("total", total))
	})

	summary := q.Summary()
	h.logger.Info("bulk contributions submitted",
		zap.String("client_id", identity.ClientID),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed))

	completed, total := q.Progress()
	respondJSON(h.logger, w, http.StatusOK, BulkContributionResponseDTO{
		Completed: completed,
		Total:     total,
		Summary:   summary,
	})
}
