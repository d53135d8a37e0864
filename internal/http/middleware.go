package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_checkout/internal/checkout"
	"github.com/fjod/go_checkout/pkg/logger"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const (
	HeaderTenantID  = "X-Tenant-ID"
	HeaderOwnerID   = "X-Owner-ID"
	HeaderUserID    = "X-User-ID"
	HeaderClientID  = "X-Client-ID"
	HeaderContactID = "X-Contact-ID"
	HeaderCSRFToken = "X-CSRF-TOKEN"
)

type identityKey struct{}

// IdentityMiddleware reads who the shopper is from headers set by the fronting
// application, and the anti-forgery token the order endpoint expects.
func IdentityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := checkout.Identity{
			TenantID:  r.Header.Get(HeaderTenantID),
			OwnerID:   r.Header.Get(HeaderOwnerID),
			UserID:    r.Header.Get(HeaderUserID),
			ClientID:  r.Header.Get(HeaderClientID),
			ContactID: r.Header.Get(HeaderContactID),
		}
		ctx := context.WithValue(r.Context(), identityKey{}, id)
		ctx = checkout.ContextWithToken(ctx, r.Header.Get(HeaderCSRFToken))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func getIdentityFromContext(ctx context.Context) checkout.Identity {
	id, _ := ctx.Value(identityKey{}).(checkout.Identity)
	return id
}

// RequestIDHeader echoes chi's request id back to the caller.
func RequestIDHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			w.Header().Set(middleware.RequestIDHeader, id)
		}
		next.ServeHTTP(w, r)
	})
}

// RequestLogger logs one line per request with the trace it belongs to.
func RequestLogger(base *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logger.FromContext(r.Context(), base).Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}
