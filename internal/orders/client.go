package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/fjod/go_checkout/internal/domain"
	"github.com/fjod/go_checkout/internal/routes"
	"github.com/fjod/go_checkout/pkg/circuitbreaker"
	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const (
	CSRFHeader     = "X-CSRF-TOKEN"
	IdempotencyKey = "Idempotency-Key"

	// maxErrorBody bounds how much of a failed response is read for its message.
	maxErrorBody = 64 << 10
)

// Client talks to the order-creation and contribution endpoints. Every call is
// a single attempt; the breaker only short-circuits while the service keeps
// failing with 5xx or transport errors.
type Client struct {
	baseURL *url.URL
	routes  routes.Table
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	logger  *zap.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the default otelhttp-instrumented client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.http = c
	}
}

func WithBreaker(cfg circuitbreaker.Config) Option {
	return func(cl *Client) {
		cl.breaker = circuitbreaker.New[[]byte](cfg, cl.logger, isSuccessful)
	}
}

func NewClient(baseURL string, table routes.Table, logger *zap.Logger, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid orders base url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid orders base url %q: scheme and host are required", baseURL)
	}
	if table == nil {
		table = routes.Defaults()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{
		baseURL: u,
		routes:  table,
		http:    &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		logger:  logger,
	}
	c.breaker = circuitbreaker.New[[]byte](circuitbreaker.DefaultConfig("orders"), logger, isSuccessful)
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// isSuccessful keeps client-side rejections (4xx) from tripping the breaker.
func isSuccessful(err error) bool {
	if err == nil {
		return true
	}
	var se *SubmissionError
	if errors.As(err, &se) {
		return !se.Temporary()
	}
	return false
}

func (c *Client) SubmitOrder(ctx context.Context, clientID string, submission domain.OrderSubmission, csrfToken string) (*domain.OrderReceipt, error) {
	body, err := c.post(ctx, routes.OrderCreate, clientID, submission, csrfToken)
	if err != nil {
		return nil, err
	}
	var receipt domain.OrderReceipt
	if err := decodeOptional(body, &receipt); err != nil {
		// any 2xx means the order exists; an unreadable body must not turn into a failure
		c.logger.Warn("order accepted with unreadable receipt", zap.String("client_id", clientID), zap.Error(err))
		return &domain.OrderReceipt{}, nil
	}
	return &receipt, nil
}

func (c *Client) SubmitContribution(ctx context.Context, clientID string, contribution Contribution, csrfToken string) (*ContributionReceipt, error) {
	body, err := c.post(ctx, routes.ContributionCreate, clientID, contribution, csrfToken)
	if err != nil {
		return nil, err
	}
	var receipt ContributionReceipt
	if err := decodeOptional(body, &receipt); err != nil {
		c.logger.Warn("contribution accepted with unreadable receipt", zap.String("client_id", clientID), zap.Error(err))
		return &ContributionReceipt{}, nil
	}
	return &receipt, nil
}

func (c *Client) post(ctx context.Context, route, clientID string, payload any, csrfToken string) ([]byte, error) {
	path, err := c.routes.URL(route, map[string]string{"client": clientID})
	if err != nil {
		return nil, err
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}

	key := uuid.NewString()
	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.do(ctx, path, encoded, csrfToken, key)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return body, err
}

func (c *Client) do(ctx context.Context, path string, payload []byte, csrfToken, idempotencyKey string) ([]byte, error) {
	target := c.baseURL.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(IdempotencyKey, idempotencyKey)
	if csrfToken != "" {
		req.Header.Set(CSRFHeader, csrfToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		se := &SubmissionError{StatusCode: resp.StatusCode, Message: errorMessage(raw)}
		c.logger.Error("order endpoint rejected request",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("idempotency_key", idempotencyKey),
			zap.String("message", se.Message))
		return nil, se
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return raw, nil
}

// errorMessage extracts {"error": "..."} or {"message": "..."} from a failed
// response body, preferring error.
func errorMessage(raw []byte) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	if msg := strings.TrimSpace(body.Error); msg != "" {
		return msg
	}
	return strings.TrimSpace(body.Message)
}

// decodeOptional accepts an empty body; every receipt field is optional.
func decodeOptional(raw []byte, v any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	return json.Unmarshal(raw, v)
}
