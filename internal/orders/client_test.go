package orders

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fjod/go_checkout/internal/domain"
	"github.com/fjod/go_checkout/internal/routes"
	"github.com/fjod/go_checkout/pkg/circuitbreaker"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(srv.URL, routes.Defaults(), zap.NewNop(), opts...)
	require.NoError(t, err)
	return c
}

func TestSubmitOrder_Success(t *testing.T) {
	var got domain.OrderSubmission
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/m/acme/orders", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "tok-1", r.Header.Get(CSRFHeader))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 1001, "order_number": "ORD-1001"}`))
	})

	receipt, err := c.SubmitOrder(context.Background(), "acme", domain.OrderSubmission{
		CustomerName: "Juan Dela Cruz",
		TotalAmount:  294,
		Items:        []domain.OrderItem{{ProductID: "42", Quantity: 2, Price: 100}},
	}, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, domain.ID("1001"), receipt.ID)
	assert.Equal(t, "ORD-1001", receipt.OrderNumber)
	assert.Equal(t, "Juan Dela Cruz", got.CustomerName)
	assert.Equal(t, 294.0, got.TotalAmount)
	require.Len(t, got.Items, 1)
	assert.Equal(t, domain.ID("42"), got.Items[0].ProductID)
}

func TestSubmitOrder_EmptyBodyIsEmptyReceipt(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	receipt, err := c.SubmitOrder(context.Background(), "acme", domain.OrderSubmission{}, "")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderReceipt{}, *receipt)
}

func TestSubmitOrder_UnreadableSuccessBodyIsAccepted(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`<html>Order created</html>`))
	})

	receipt, err := c.SubmitOrder(context.Background(), "acme", domain.OrderSubmission{}, "tok")
	require.NoError(t, err)
	require.NotNil(t, receipt)
	assert.Equal(t, domain.OrderReceipt{}, *receipt)
}

func TestSubmitOrder_SendsIdempotencyKey(t *testing.T) {
	var keys []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		keys = append(keys, r.Header.Get(IdempotencyKey))
		w.WriteHeader(http.StatusCreated)
	})

	for range 2 {
		_, err := c.SubmitOrder(context.Background(), "acme", domain.OrderSubmission{}, "")
		require.NoError(t, err)
	}
	require.Len(t, keys, 2)
	for _, k := range keys {
		_, err := uuid.Parse(k)
		assert.NoError(t, err)
	}
	assert.NotEqual(t, keys[0], keys[1])
}

func TestSubmitOrder_NoTokenOmitsHeader(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, present := r.Header[http.CanonicalHeaderKey(CSRFHeader)]
		assert.False(t, present)
		w.WriteHeader(http.StatusOK)
	})

	_, err := c.SubmitOrder(context.Background(), "acme", domain.OrderSubmission{}, "")
	require.NoError(t, err)
}

func TestSubmitOrder_ServerMessage(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"error field", http.StatusUnprocessableEntity, `{"error": "Product 42 is out of stock"}`, "Product 42 is out of stock"},
		{"message field", http.StatusBadRequest, `{"message": "Invalid address"}`, "Invalid address"},
		{"error preferred", http.StatusBadRequest, `{"error": "A", "message": "B"}`, "A"},
		{"html body", http.StatusBadGateway, `<html>bad gateway</html>`, ""},
		{"empty body", http.StatusInternalServerError, ``, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := c.SubmitOrder(context.Background(), "acme", domain.OrderSubmission{}, "tok")
			var se *SubmissionError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.status, se.StatusCode)
			assert.Equal(t, tt.message, se.UserMessage())
		})
	}
}

func TestSubmitOrder_SingleAttempt(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := c.SubmitOrder(context.Background(), "acme", domain.OrderSubmission{}, "tok")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestSubmitOrder_BreakerOpensOnServerErrors(t *testing.T) {
	var calls atomic.Int32
	cfg := circuitbreaker.DefaultConfig("orders-test")
	cfg.ConsecutiveFailures = 2
	cfg.Timeout = time.Hour
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}, WithBreaker(cfg))

	for i := 0; i < 2; i++ {
		_, err := c.SubmitOrder(context.Background(), "acme", domain.OrderSubmission{}, "tok")
		require.Error(t, err)
	}

	_, err := c.SubmitOrder(context.Background(), "acme", domain.OrderSubmission{}, "tok")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(2), calls.Load())
}

func TestSubmitOrder_ClientErrorsDoNotTripBreaker(t *testing.T) {
	var calls atomic.Int32
	cfg := circuitbreaker.DefaultConfig("orders-test")
	cfg.ConsecutiveFailures = 1
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
	}, WithBreaker(cfg))

	for i := 0; i < 3; i++ {
		_, err := c.SubmitOrder(context.Background(), "acme", domain.OrderSubmission{}, "tok")
		var se *SubmissionError
		require.ErrorAs(t, err, &se)
	}
	assert.Equal(t, int32(3), calls.Load())
}

func TestSubmitOrder_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	c, err := NewClient(srv.URL, nil, nil)
	require.NoError(t, err)

	_, err = c.SubmitOrder(context.Background(), "acme", domain.OrderSubmission{}, "tok")
	require.Error(t, err)
	var se *SubmissionError
	assert.False(t, errors.As(err, &se))
}

func TestSubmitOrder_UnknownRoute(t *testing.T) {
	c, err := NewClient("http://orders.invalid", routes.Table{}, nil)
	require.NoError(t, err)

	_, err = c.SubmitOrder(context.Background(), "acme", domain.OrderSubmission{}, "tok")
	assert.ErrorIs(t, err, routes.ErrUnknownRoute)
}

func TestSubmitContribution(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/kiosk/community/acme/contributions", r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"member_id":"m1","member_name":"Ana","amount":150.5,"payment_method":"cash"}`, string(raw))
		_, _ = w.Write([]byte(`{"id":"c-9","message":"Recorded"}`))
	})

	receipt, err := c.SubmitContribution(context.Background(), "acme", Contribution{
		MemberID:      "m1",
		MemberName:    "Ana",
		Amount:        150.5,
		PaymentMethod: "cash",
	}, "tok")
	require.NoError(t, err)
	assert.Equal(t, domain.ID("c-9"), receipt.ID)
	assert.Equal(t, "Recorded", receipt.Message)
}

func TestNewClient_InvalidBaseURL(t *testing.T) {
	_, err := NewClient("not a url", nil, nil)
	assert.Error(t, err)
	_, err = NewClient("://x", nil, nil)
	assert.Error(t, err)
}
