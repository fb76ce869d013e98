package discount_test

import (
	"testing"
	"time"

	"github.com/dalemusser/coachhub/internal/app/system/discount"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAmounts(t *testing.T) {
	tests := []struct {
		name      string
		codeType  string
		value     int64
		original  int64
		wantOff   int64
		wantFinal int64
	}{
		{"twenty percent", models.DiscountPercentage, 20, 10000, 2000, 8000},
		{"rounds half up", models.DiscountPercentage, 15, 990, 149, 841},
		{"hundred percent", models.DiscountPercentage, 100, 5000, 5000, 0},
		{"zero percent", models.DiscountPercentage, 0, 5000, 0, 5000},
		{"fixed under price", models.DiscountFixed, 500, 10000, 500, 9500},
		{"fixed over price clamps", models.DiscountFixed, 20000, 10000, 10000, 0},
		{"fixed equals price", models.DiscountFixed, 10000, 10000, 10000, 0},
		{"unknown type is no-op", "bogus", 50, 10000, 0, 10000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			off, final := discount.Amounts(tt.codeType, tt.value, tt.original)
			if off != tt.wantOff || final != tt.wantFinal {
				t.Errorf("Amounts(%s, %d, %d) = (%d, %d), want (%d, %d)",
					tt.codeType, tt.value, tt.original, off, final, tt.wantOff, tt.wantFinal)
			}
		})
	}
}

func baseCode() models.DiscountCode {
	return models.DiscountCode{
		ID:     primitive.NewObjectID(),
		Code:   "SAVE20",
		CodeCI: "SAVE20",
		Type:   models.DiscountPercentage,
		Value:  20,
		Active: true,
		Scope:  models.DiscountScopeAll,
	}
}

func baseInput(target primitive.ObjectID) discount.ResolveInput {
	return discount.ResolveInput{
		Code:           "SAVE20",
		TargetID:       target,
		TargetKind:     discount.TargetProgram,
		OriginalAmount: 10000,
	}
}

func TestEvaluate_Valid(t *testing.T) {
	target := primitive.NewObjectID()
	res := discount.Evaluate(baseCode(), baseInput(target), time.Now().UTC(), 0)

	if !res.Valid {
		t.Fatalf("expected valid, got reason %q", res.Reason)
	}
	if res.DiscountAmount != 2000 || res.FinalAmount != 8000 {
		t.Errorf("amounts: got (%d, %d), want (2000, 8000)", res.DiscountAmount, res.FinalAmount)
	}
	if res.AppliedCode != "SAVE20" {
		t.Errorf("applied code: got %q", res.AppliedCode)
	}
	if res.Code == nil {
		t.Error("expected the code document on a valid resolution")
	}
}

func TestEvaluate_Rejections(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	target := primitive.NewObjectID()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name       string
		mutate     func(*models.DiscountCode)
		input      func(*discount.ResolveInput)
		personUses int64
		wantReason string
	}{
		{
			name:       "inactive",
			mutate:     func(dc *models.DiscountCode) { dc.Active = false },
			wantReason: discount.ReasonInactive,
		},
		{
			name:       "not started",
			mutate:     func(dc *models.DiscountCode) { dc.ValidFrom = &future },
			wantReason: discount.ReasonNotStarted,
		},
		{
			name:       "expired",
			mutate:     func(dc *models.DiscountCode) { dc.ValidTo = &past },
			wantReason: discount.ReasonExpired,
		},
		{
			name: "global cap exhausted",
			mutate: func(dc *models.DiscountCode) {
				dc.MaxUses = 5
				dc.Uses = 5
			},
			wantReason: discount.ReasonExhausted,
		},
		{
			name:       "per-person cap met",
			mutate:     func(dc *models.DiscountCode) { dc.MaxUsesPerPerson = 1 },
			personUses: 1,
			wantReason: discount.ReasonPersonCapMet,
		},
		{
			name:       "scope excludes target kind",
			mutate:     func(dc *models.DiscountCode) { dc.Scope = models.DiscountScopeSquads },
			wantReason: discount.ReasonNotApplicable,
		},
		{
			name: "target list excludes target",
			mutate: func(dc *models.DiscountCode) {
				dc.TargetIDs = []primitive.ObjectID{primitive.NewObjectID()}
			},
			wantReason: discount.ReasonNotApplicable,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dc := baseCode()
			if tt.mutate != nil {
				tt.mutate(&dc)
			}
			in := baseInput(target)
			if tt.input != nil {
				tt.input(&in)
			}
			res := discount.Evaluate(dc, in, now, tt.personUses)
			if res.Valid {
				t.Fatal("expected rejection")
			}
			if res.Reason != tt.wantReason {
				t.Errorf("reason: got %q, want %q", res.Reason, tt.wantReason)
			}
		})
	}
}

func TestEvaluate_TargetListAdmitsListedTarget(t *testing.T) {
	target := primitive.NewObjectID()
	dc := baseCode()
	dc.TargetIDs = []primitive.ObjectID{primitive.NewObjectID(), target}

	res := discount.Evaluate(dc, baseInput(target), time.Now().UTC(), 0)
	if !res.Valid {
		t.Errorf("expected valid for listed target, got reason %q", res.Reason)
	}
}

func TestEvaluate_CapsAtBoundary(t *testing.T) {
	// Uses just under the cap still works.
	dc := baseCode()
	dc.MaxUses = 5
	dc.Uses = 4
	res := discount.Evaluate(dc, baseInput(primitive.NewObjectID()), time.Now().UTC(), 0)
	if !res.Valid {
		t.Errorf("uses under cap: expected valid, got %q", res.Reason)
	}
}
