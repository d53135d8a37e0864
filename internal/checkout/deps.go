package checkout

import (
	"context"
	"errors"
	"time"

	"github.com/fjod/go_checkout/internal/cart"
	"github.com/fjod/go_checkout/internal/catalog"
	"github.com/fjod/go_checkout/internal/domain"
	"github.com/fjod/go_checkout/internal/events"
	"github.com/fjod/go_checkout/internal/pricing"
	"go.uber.org/zap"
)

const DefaultCountry = "Philippines"

// OrderSubmitter sends an order to the order-creation endpoint. It makes a
// single attempt.
type OrderSubmitter interface {
	SubmitOrder(ctx context.Context, clientID string, submission domain.OrderSubmission, csrfToken string) (*domain.OrderReceipt, error)
}

// TokenProvider returns the current anti-forgery token.
type TokenProvider func(ctx context.Context) string

type tokenKey struct{}

// ContextWithToken attaches the anti-forgery token a request arrived with.
func ContextWithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext is the default TokenProvider.
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

type Deps struct {
	Carts          *cart.Store
	Catalog        catalog.Source
	Calculator     *pricing.Calculator
	Orders         OrderSubmitter
	Token          TokenProvider
	Events         events.Publisher
	Logger         *zap.Logger
	DefaultCountry string
	Now            func() time.Time
}

func (d Deps) withDefaults() (Deps, error) {
	if d.Carts == nil || d.Catalog == nil || d.Orders == nil {
		return d, errors.New("checkout: cart store, catalog and order submitter are required")
	}
	if d.Calculator == nil {
		d.Calculator = pricing.NewCalculator(nil)
	}
	if d.Token == nil {
		d.Token = TokenFromContext
	}
	if d.Events == nil {
		d.Events = events.NopPublisher{}
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.DefaultCountry == "" {
		d.DefaultCountry = DefaultCountry
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d, nil
}
