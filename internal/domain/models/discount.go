// internal/domain/models/discount.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Discount code types and applicability scopes.
const (
	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed"

	DiscountScopePrograms = "programs"
	DiscountScopeSquads   = "squads"
	DiscountScopeAll      = "all"
)

// AlumniCode is the reserved implicit code: it bypasses the code lookup and
// is valid only when the organization has alumni discounting enabled and
// the actor is flagged as an alumnus.
const AlumniCode = "ALUMNI"

// DiscountCode is an organization-scoped discount rule.
//
// Value is a percent (0–100) for percentage codes and a minor-unit amount
// for fixed codes. MaxUses == 0 and MaxUsesPerPerson == 0 mean uncapped.
// An empty TargetIDs list means the code applies to every target its Scope
// admits.
type DiscountCode struct {
	ID             primitive.ObjectID `bson:"_id" json:"id"`
	OrganizationID primitive.ObjectID `bson:"organization_id" json:"organization_id"`
	Code           string             `bson:"code" json:"code"`
	CodeCI         string             `bson:"code_ci" json:"code_ci"`
	Type           string             `bson:"type" json:"type"` // "percentage" | "fixed"
	Value          int64              `bson:"value" json:"value"`

	Active    bool       `bson:"active" json:"active"`
	ValidFrom *time.Time `bson:"valid_from,omitempty" json:"valid_from,omitempty"`
	ValidTo   *time.Time `bson:"valid_to,omitempty" json:"valid_to,omitempty"`

	MaxUses          int `bson:"max_uses" json:"max_uses"`
	MaxUsesPerPerson int `bson:"max_uses_per_person" json:"max_uses_per_person"`
	Uses             int `bson:"uses" json:"uses"`

	Scope     string               `bson:"scope" json:"scope"` // "programs" | "squads" | "all"
	TargetIDs []primitive.ObjectID `bson:"target_ids,omitempty" json:"target_ids,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// DiscountUsage is the audit record written once a discount has actually
// been applied to a committed enrollment. The per-person cap counts these.
type DiscountUsage struct {
	ID             primitive.ObjectID `bson:"_id" json:"id"`
	CodeID         primitive.ObjectID `bson:"code_id" json:"code_id"`
	Code           string             `bson:"code" json:"code"`
	OrganizationID primitive.ObjectID `bson:"organization_id" json:"organization_id"`
	PersonID       primitive.ObjectID `bson:"person_id" json:"person_id"`
	TargetID       primitive.ObjectID `bson:"target_id" json:"target_id"`
	TargetKind     string             `bson:"target_kind" json:"target_kind"`
	AmountOff      int64              `bson:"amount_off" json:"amount_off"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
}
