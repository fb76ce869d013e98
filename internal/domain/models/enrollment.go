// internal/domain/models/enrollment.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Enrollment statuses.
const (
	EnrollmentUpcoming  = "upcoming"
	EnrollmentActive    = "active"
	EnrollmentCompleted = "completed"
	EnrollmentCancelled = "cancelled"
)

// Enrollment records a person's participation in a program.
//
// Invariant: a person holds at most one enrollment with status "active" per
// program *type* ("group"/"individual") at a time. CohortID and SquadID are
// nil for individual programs.
type Enrollment struct {
	ID             primitive.ObjectID  `bson:"_id" json:"id"`
	PersonID       primitive.ObjectID  `bson:"person_id" json:"person_id"`
	ProgramID      primitive.ObjectID  `bson:"program_id" json:"program_id"`
	ProgramType    string              `bson:"program_type" json:"program_type"`
	OrganizationID primitive.ObjectID  `bson:"organization_id" json:"organization_id"`
	CohortID       *primitive.ObjectID `bson:"cohort_id,omitempty" json:"cohort_id,omitempty"`
	SquadID        *primitive.ObjectID `bson:"squad_id,omitempty" json:"squad_id,omitempty"`

	AmountPaid int64      `bson:"amount_paid" json:"amount_paid"` // minor units
	PaidAt     *time.Time `bson:"paid_at,omitempty" json:"paid_at,omitempty"`

	Status    string    `bson:"status" json:"status"`
	StartDate time.Time `bson:"start_date" json:"start_date"`

	// LastAssignedDay is the progress cursor advanced by the content
	// delivery collaborators, not by this engine.
	LastAssignedDay int  `bson:"last_assigned_day" json:"last_assigned_day"`
	CommunityJoined bool `bson:"community_joined" json:"community_joined"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
