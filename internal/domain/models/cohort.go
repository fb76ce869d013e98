// internal/domain/models/cohort.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Cohort is a scheduled offering window for a group program.
//
// MaxEnrollment == 0 means unlimited. CurrentEnrollment is the aggregate
// counter across all squads in the cohort; per-squad capacity is tracked on
// the squad documents themselves.
type Cohort struct {
	ID             primitive.ObjectID `bson:"_id" json:"id"`
	ProgramID      primitive.ObjectID `bson:"program_id" json:"program_id"`
	OrganizationID primitive.ObjectID `bson:"organization_id" json:"organization_id"`
	Name           string             `bson:"name" json:"name"`

	StartDate         time.Time `bson:"start_date" json:"start_date"`
	EnrollmentOpen    bool      `bson:"enrollment_open" json:"enrollment_open"`
	MaxEnrollment     int       `bson:"max_enrollment" json:"max_enrollment"`
	CurrentEnrollment int       `bson:"current_enrollment" json:"current_enrollment"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// HasRoom reports whether the cohort's aggregate cap still has space.
func (c Cohort) HasRoom() bool {
	return c.MaxEnrollment == 0 || c.CurrentEnrollment < c.MaxEnrollment
}
