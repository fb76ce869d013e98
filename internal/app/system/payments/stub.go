// internal/app/system/payments/stub.go
package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Stub is a development provider: it fabricates a session reference and a
// redirect URL under the configured checkout base URL. Payments are
// "confirmed" by posting the session's metadata back to the confirm
// endpoint, which is exactly what a real provider's webhook would do.
type Stub struct {
	baseURL string
	log     *zap.Logger
}

func NewStub(baseURL string, log *zap.Logger) *Stub {
	return &Stub{baseURL: baseURL, log: log}
}

func (s *Stub) CreateCheckoutSession(_ context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	sess := &CheckoutSession{
		ID:        "cs_" + uuid.NewString(),
		ExpiresAt: time.Now().UTC().Add(30 * time.Minute),
	}
	sess.RedirectURL = fmt.Sprintf("%s/checkout/%s", s.baseURL, sess.ID)
	s.log.Info("stub payments: created checkout session",
		zap.String("session_id", sess.ID),
		zap.String("person_id", req.PersonID),
		zap.Int64("amount", req.Amount),
		zap.String("currency", req.Currency))
	return sess, nil
}

// FromConfig resolves a provider from the payment_provider config value.
// "none" (or empty) returns nil: paid enrollments then fail with
// ErrPaymentSetupMissing until a provider is configured.
func FromConfig(provider, checkoutBaseURL string, log *zap.Logger) (Provider, error) {
	switch provider {
	case "", "none":
		return nil, nil
	case "stub":
		return NewStub(checkoutBaseURL, log), nil
	default:
		return nil, fmt.Errorf("unknown payment provider %q", provider)
	}
}
