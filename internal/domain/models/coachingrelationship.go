// internal/domain/models/coachingrelationship.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CoachingRelationship is the one-to-one coach/client pairing created for
// individual-program enrollments.
//
// History containers start empty and are appended to by the session and
// check-in collaborators; the engine only creates the record.
type CoachingRelationship struct {
	ID             primitive.ObjectID `bson:"_id" json:"id"`
	OrganizationID primitive.ObjectID `bson:"organization_id" json:"organization_id"`
	ProgramID      primitive.ObjectID `bson:"program_id" json:"program_id"`
	CoachID        primitive.ObjectID `bson:"coach_id" json:"coach_id"`
	ClientID       primitive.ObjectID `bson:"client_id" json:"client_id"`

	PlanName       string `bson:"plan_name" json:"plan_name"`
	CheckInCadence string `bson:"check_in_cadence" json:"check_in_cadence"` // e.g. "weekly"

	SessionIDs []primitive.ObjectID `bson:"session_ids" json:"session_ids"`
	NoteIDs    []primitive.ObjectID `bson:"note_ids" json:"note_ids"`

	Status    string    `bson:"status" json:"status"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
