// internal/app/system/discount/resolver.go

// Package discount resolves discount codes against a target price. The
// resolver never writes anything: usage is recorded separately (and only)
// after the discounted enrollment has been committed, so a resolution whose
// enrollment fails never consumes a usage.
package discount

import (
	"context"
	"time"

	discountstore "github.com/dalemusser/coachhub/internal/app/store/discounts"
	"github.com/dalemusser/coachhub/internal/app/system/normalize"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Target kinds a code can apply to.
const (
	TargetProgram = "program"
	TargetSquad   = "squad"
)

// Rejection reasons. The ALUMNI code is implicit/auto-applied, so callers
// may ignore its rejections; explicit codes surface them to the user.
const (
	ReasonNotFound      = "not_found"
	ReasonInactive      = "inactive"
	ReasonNotStarted    = "not_started"
	ReasonExpired       = "expired"
	ReasonExhausted     = "exhausted"
	ReasonPersonCapMet  = "person_cap_met"
	ReasonNotApplicable = "not_applicable"
	ReasonNotAlumni     = "not_alumni"
)

// ResolveInput is everything the rule engine needs. Organization settings
// and actor flags are passed in explicitly so resolution is a pure function
// of its inputs plus two store reads.
type ResolveInput struct {
	Code           string
	Actor          models.User
	Org            models.Organization
	TargetID       primitive.ObjectID
	TargetKind     string
	OriginalAmount int64
}

// Resolution is the outcome of resolving one code.
type Resolution struct {
	Valid          bool
	Reason         string // set when !Valid
	AppliedCode    string
	Code           *models.DiscountCode // nil for the implicit ALUMNI code
	DiscountAmount int64
	FinalAmount    int64
}

type Resolver struct {
	discounts *discountstore.Store
	log       *zap.Logger
}

func New(discounts *discountstore.Store, log *zap.Logger) *Resolver {
	return &Resolver{discounts: discounts, log: log}
}

// Resolve validates a code for an actor against a target price.
// Infrastructure failures return an error; rule failures return a
// Resolution with Valid=false and a Reason.
func (r *Resolver) Resolve(ctx context.Context, in ResolveInput) (Resolution, error) {
	code := normalize.Code(in.Code)

	// Reserved implicit code: no lookup, gated by org + actor flags.
	if code == models.AlumniCode {
		return resolveAlumni(in), nil
	}

	dc, err := r.discounts.GetByCode(ctx, in.Org.ID, code)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return Resolution{Reason: ReasonNotFound}, nil
		}
		return Resolution{}, err
	}

	var personUses int64
	if dc.MaxUsesPerPerson > 0 {
		personUses, err = r.discounts.CountUsagesByPerson(ctx, dc.ID, in.Actor.ID)
		if err != nil {
			return Resolution{}, err
		}
	}

	return Evaluate(dc, in, time.Now().UTC(), personUses), nil
}

// Evaluate applies the code's rules in order, short-circuiting on the first
// failure. Pure: all state (code document, per-person usage count, clock)
// comes in as arguments.
func Evaluate(dc models.DiscountCode, in ResolveInput, now time.Time, personUses int64) Resolution {
	if !dc.Active {
		return Resolution{Reason: ReasonInactive}
	}
	if dc.ValidFrom != nil && now.Before(*dc.ValidFrom) {
		return Resolution{Reason: ReasonNotStarted}
	}
	if dc.ValidTo != nil && now.After(*dc.ValidTo) {
		return Resolution{Reason: ReasonExpired}
	}
	if dc.MaxUses > 0 && dc.Uses >= dc.MaxUses {
		return Resolution{Reason: ReasonExhausted}
	}
	if dc.MaxUsesPerPerson > 0 && personUses >= int64(dc.MaxUsesPerPerson) {
		return Resolution{Reason: ReasonPersonCapMet}
	}
	if !scopeAdmits(dc.Scope, in.TargetKind) {
		return Resolution{Reason: ReasonNotApplicable}
	}
	if len(dc.TargetIDs) > 0 && !containsID(dc.TargetIDs, in.TargetID) {
		return Resolution{Reason: ReasonNotApplicable}
	}

	off, final := Amounts(dc.Type, dc.Value, in.OriginalAmount)
	return Resolution{
		Valid:          true,
		AppliedCode:    dc.Code,
		Code:           &dc,
		DiscountAmount: off,
		FinalAmount:    final,
	}
}

// Amounts computes the discount and final amounts for a code type.
// Percentage: round(original * value / 100). Fixed: min(value, original).
// The final amount is clamped at zero.
func Amounts(codeType string, value, original int64) (off, final int64) {
	switch codeType {
	case models.DiscountPercentage:
		off = (original*value + 50) / 100 // round half up
	case models.DiscountFixed:
		off = value
		if off > original {
			off = original
		}
	}
	final = original - off
	if final < 0 {
		final = 0
	}
	return off, final
}

func resolveAlumni(in ResolveInput) Resolution {
	if !in.Org.AlumniDiscountEnabled || !in.Actor.Alumni {
		return Resolution{Reason: ReasonNotAlumni}
	}
	off, final := Amounts(models.DiscountPercentage, in.Org.AlumniDiscountPercent, in.OriginalAmount)
	return Resolution{
		Valid:          true,
		AppliedCode:    models.AlumniCode,
		DiscountAmount: off,
		FinalAmount:    final,
	}
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func scopeAdmits(scope, targetKind string) bool {
	switch scope {
	case models.DiscountScopeAll:
		return targetKind == TargetProgram || targetKind == TargetSquad
	case models.DiscountScopePrograms:
		return targetKind == TargetProgram
	case models.DiscountScopeSquads:
		return targetKind == TargetSquad
	default:
		return false
	}
}
