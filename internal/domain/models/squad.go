// internal/domain/models/squad.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Squad is a bounded-capacity group inside a cohort.
//
// Invariant: len(MemberIDs) <= Capacity. The squads store enforces this
// with a guarded conditional write; MemberIDs is a set (no duplicates,
// $addToSet only).
//
// Number is the 1-based creation ordinal within the cohort; coach round
// robin is keyed off it, not off live coach load.
type Squad struct {
	ID             primitive.ObjectID   `bson:"_id" json:"id"`
	OrganizationID primitive.ObjectID   `bson:"organization_id" json:"organization_id"`
	ProgramID      primitive.ObjectID   `bson:"program_id" json:"program_id"`
	CohortID       *primitive.ObjectID  `bson:"cohort_id,omitempty" json:"cohort_id,omitempty"`
	Name           string               `bson:"name" json:"name"`
	Number         int                  `bson:"number" json:"number"`
	Capacity       int                  `bson:"capacity" json:"capacity"`
	MemberIDs      []primitive.ObjectID `bson:"member_ids" json:"member_ids"`
	CoachID        *primitive.ObjectID  `bson:"coach_id,omitempty" json:"coach_id,omitempty"`
	AutoCreated    bool                 `bson:"auto_created" json:"auto_created"`
	ChannelID      string               `bson:"channel_id,omitempty" json:"channel_id,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// HasMember reports whether the person is already in the member set.
func (s Squad) HasMember(personID primitive.ObjectID) bool {
	for _, id := range s.MemberIDs {
		if id == personID {
			return true
		}
	}
	return false
}
