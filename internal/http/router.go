package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

func NewRouter(checkoutHandler *CheckoutHandler, contributionHandler *ContributionHandler, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(RequestIDHeader)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(IdentityMiddleware)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(logger, w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/checkout/sessions", func(r chi.Router) {
			r.Post("/", checkoutHandler.CreateSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", checkoutHandler.GetSession)
				r.Delete("/", checkoutHandler.Abandon)
				r.Post("/next", checkoutHandler.Next)
				r.Post("/previous", checkoutHandler.Previous)
				r.Patch("/form", checkoutHandler.UpdateForm)
				r.Post("/items", checkoutHandler.AddItem)
				r.Put("/items", checkoutHandler.UpdateQuantity)
				r.Delete("/items", checkoutHandler.RemoveItem)
				r.Delete("/cart", checkoutHandler.ClearCart)
				r.Post("/submit", checkoutHandler.Submit)
			})
		})
		if contributionHandler != nil {
			r.Post("/contributions/bulk", contributionHandler.SubmitBulk)
		}
	})

	return otelhttp.NewHandler(r, "checkout-api")
}
