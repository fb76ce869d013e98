// internal/domain/models/program.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Program types.
const (
	ProgramTypeGroup      = "group"
	ProgramTypeIndividual = "individual"
)

// Program is a purchasable coaching offering.
//
// NOTE:
//   - Price is stored in minor currency units (cents); no floats anywhere.
//   - AssignedCoachIDs drives round-robin coach assignment for new squads.
//     If CoachInSquads is set, the organization administrator is used
//     instead of the round robin.
//   - CommunitySquadID, when set on an individual program, is the standing
//     "client community" squad that enrollees can opt into.
type Program struct {
	ID             primitive.ObjectID `bson:"_id" json:"id"`
	Name           string             `bson:"name" json:"name"`
	NameCI         string             `bson:"name_ci" json:"name_ci"`
	Description    string             `bson:"description" json:"description"`
	Type           string             `bson:"type" json:"type"` // "group" | "individual"
	OrganizationID primitive.ObjectID `bson:"organization_id" json:"organization_id"`

	Price    int64  `bson:"price" json:"price"` // minor units
	Currency string `bson:"currency" json:"currency"`

	SquadCapacity    int                  `bson:"squad_capacity" json:"squad_capacity"`
	AssignedCoachIDs []primitive.ObjectID `bson:"assigned_coach_ids,omitempty" json:"assigned_coach_ids,omitempty"`
	CoachInSquads    bool                 `bson:"coach_in_squads" json:"coach_in_squads"`
	CommunitySquadID *primitive.ObjectID  `bson:"community_squad_id,omitempty" json:"community_squad_id,omitempty"`

	Active    bool `bson:"active" json:"active"`
	Published bool `bson:"published" json:"published"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Available reports whether the program can accept enrollments.
func (p Program) Available() bool {
	return p.Active && p.Published
}
