// internal/app/system/payments/payments.go

// Package payments abstracts the external payment collaborator. The engine
// only ever creates checkout sessions; capture, refunds, and webhook
// signature verification belong to the provider. A confirmed payment comes
// back as CheckoutMetadata, which carries everything needed to replay the
// free-path enrollment creation.
package payments

import (
	"context"
	"errors"
	"strconv"
	"time"
)

// CheckoutRequest describes the session to create.
type CheckoutRequest struct {
	Amount         int64 // minor units
	Currency       string
	Description    string
	PersonID       string
	IdempotencyKey string
	Metadata       map[string]string
	ReturnURL      string
}

// CheckoutSession is the provider's handle for a pending payment.
type CheckoutSession struct {
	ID          string
	RedirectURL string
	ExpiresAt   time.Time
}

// Provider creates checkout sessions with an external payment service.
type Provider interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
}

// Metadata keys for the enrollment replay payload.
const (
	metaPersonID       = "person_id"
	metaProgramID      = "program_id"
	metaCohortID       = "cohort_id"
	metaDiscountCodeID = "discount_code_id"
	metaDiscountCode   = "discount_code"
	metaAmountOff      = "amount_off"
	metaAmountDue      = "amount_due"
	metaCommunityOptIn = "community_opt_in"
)

// ErrBadMetadata is returned when a confirmation payload is missing the
// fields needed to replay enrollment creation.
var ErrBadMetadata = errors.New("checkout metadata is missing required fields")

// CheckoutMetadata is the enrollment snapshot attached to a checkout
// session and replayed on payment confirmation. IDs are ObjectID hex.
type CheckoutMetadata struct {
	PersonID       string
	ProgramID      string
	CohortID       string // empty for individual programs
	DiscountCodeID string // empty when no code was applied
	DiscountCode   string
	AmountOff      int64
	AmountDue      int64
	CommunityOptIn bool
}

// Encode flattens the snapshot into provider metadata.
func (m CheckoutMetadata) Encode() map[string]string {
	out := map[string]string{
		metaPersonID:       m.PersonID,
		metaProgramID:      m.ProgramID,
		metaAmountDue:      strconv.FormatInt(m.AmountDue, 10),
		metaCommunityOptIn: strconv.FormatBool(m.CommunityOptIn),
	}
	if m.CohortID != "" {
		out[metaCohortID] = m.CohortID
	}
	if m.DiscountCodeID != "" {
		out[metaDiscountCodeID] = m.DiscountCodeID
		out[metaDiscountCode] = m.DiscountCode
		out[metaAmountOff] = strconv.FormatInt(m.AmountOff, 10)
	}
	return out
}

// DecodeMetadata rebuilds the snapshot from provider metadata.
func DecodeMetadata(raw map[string]string) (CheckoutMetadata, error) {
	m := CheckoutMetadata{
		PersonID:       raw[metaPersonID],
		ProgramID:      raw[metaProgramID],
		CohortID:       raw[metaCohortID],
		DiscountCodeID: raw[metaDiscountCodeID],
		DiscountCode:   raw[metaDiscountCode],
	}
	if m.PersonID == "" || m.ProgramID == "" {
		return CheckoutMetadata{}, ErrBadMetadata
	}
	if v := raw[metaAmountDue]; v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return CheckoutMetadata{}, ErrBadMetadata
		}
		m.AmountDue = n
	}
	if v := raw[metaAmountOff]; v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return CheckoutMetadata{}, ErrBadMetadata
		}
		m.AmountOff = n
	}
	m.CommunityOptIn = raw[metaCommunityOptIn] == "true"
	return m, nil
}
