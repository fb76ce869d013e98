package payments_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dalemusser/coachhub/internal/app/system/payments"
	"go.uber.org/zap"
)

func TestMetadataRoundTrip(t *testing.T) {
	meta := payments.CheckoutMetadata{
		PersonID:       "64f000000000000000000001",
		ProgramID:      "64f000000000000000000002",
		CohortID:       "64f000000000000000000003",
		DiscountCodeID: "64f000000000000000000004",
		DiscountCode:   "SAVE20",
		AmountOff:      2000,
		AmountDue:      8000,
		CommunityOptIn: true,
	}

	got, err := payments.DecodeMetadata(meta.Encode())
	if err != nil {
		t.Fatalf("DecodeMetadata: %v", err)
	}
	if got != meta {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, meta)
	}
}

func TestMetadataOptionalFieldsOmitted(t *testing.T) {
	// Individual free-of-discount checkout: no cohort, no code.
	meta := payments.CheckoutMetadata{
		PersonID:  "64f000000000000000000001",
		ProgramID: "64f000000000000000000002",
		AmountDue: 5000,
	}

	got, err := payments.DecodeMetadata(meta.Encode())
	if err != nil {
		t.Fatalf("DecodeMetadata: %v", err)
	}
	if got.CohortID != "" || got.DiscountCodeID != "" || got.AmountOff != 0 {
		t.Errorf("expected optional fields empty, got %+v", got)
	}
}

func TestDecodeMetadata_MissingRequired(t *testing.T) {
	_, err := payments.DecodeMetadata(map[string]string{"program_id": "x"})
	if !errors.Is(err, payments.ErrBadMetadata) {
		t.Errorf("missing person_id: got %v, want ErrBadMetadata", err)
	}

	_, err = payments.DecodeMetadata(map[string]string{
		"person_id":  "64f000000000000000000001",
		"program_id": "64f000000000000000000002",
		"amount_due": "not-a-number",
	})
	if !errors.Is(err, payments.ErrBadMetadata) {
		t.Errorf("bad amount: got %v, want ErrBadMetadata", err)
	}
}

func TestStubCreatesSession(t *testing.T) {
	stub := payments.NewStub("https://pay.example.test", zap.NewNop())

	sess, err := stub.CreateCheckoutSession(context.Background(), payments.CheckoutRequest{
		Amount:         8000,
		Currency:       "usd",
		Description:    "Leadership",
		PersonID:       "64f000000000000000000001",
		IdempotencyKey: "key-1",
	})
	if err != nil {
		t.Fatalf("CreateCheckoutSession: %v", err)
	}
	if sess.ID == "" {
		t.Error("expected a session id")
	}
	if !strings.HasPrefix(sess.RedirectURL, "https://pay.example.test/checkout/") {
		t.Errorf("redirect url: got %q", sess.RedirectURL)
	}
}

func TestFromConfig(t *testing.T) {
	p, err := payments.FromConfig("none", "", zap.NewNop())
	if err != nil {
		t.Fatalf("FromConfig(none): %v", err)
	}
	if p != nil {
		t.Error("provider 'none' should yield nil")
	}

	p, err = payments.FromConfig("stub", "http://localhost", zap.NewNop())
	if err != nil {
		t.Fatalf("FromConfig(stub): %v", err)
	}
	if p == nil {
		t.Error("provider 'stub' should yield a provider")
	}

	if _, err := payments.FromConfig("bogus", "", zap.NewNop()); err == nil {
		t.Error("unknown provider should error")
	}
}
