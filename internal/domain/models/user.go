// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents admins, coaches, and members.
type User struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	FullName       string              `bson:"full_name" json:"full_name"`
	FullNameCI     string              `bson:"full_name_ci" json:"full_name_ci"` // lowercase, diacritics-stripped
	Email          string              `bson:"email" json:"email"`
	PasswordHash   string              `bson:"password_hash,omitempty" json:"-"`
	AvatarURL      string              `bson:"avatar_url,omitempty" json:"avatar_url,omitempty"`
	Role           string              `bson:"role" json:"role"` // admin | coach | member
	Status         string              `bson:"status,omitempty" json:"status,omitempty"`
	OrganizationID *primitive.ObjectID `bson:"organization_id,omitempty" json:"organization_id,omitempty"`

	// Alumni gates the reserved ALUMNI discount code for this person.
	Alumni bool `bson:"alumni" json:"alumni"`

	// AssignedCoachID is written back when an individual-program coaching
	// relationship is provisioned.
	AssignedCoachID *primitive.ObjectID `bson:"assigned_coach_id,omitempty" json:"assigned_coach_id,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
