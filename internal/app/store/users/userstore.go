// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/coachhub/internal/app/system/normalize"
	"github.com/dalemusser/coachhub/internal/app/system/status"
	"github.com/dalemusser/coachhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

var (
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	// ErrNoAdministrator is returned when an organization has no active admin user.
	ErrNoAdministrator = errors.New("organization has no active administrator")

	errBadRole   = errors.New(`role must be "admin"|"coach"|"member"`)
	errBadStatus = errors.New(`status must be "active"|"disabled"`)
	errOrgNeeded = errors.New("coach/member must have organization_id")
)

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by case-insensitive email. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetOrganizationAdministrator returns the organization's designated
// administrator: the first active admin-role user in the org, ordered by
// creation. This is the directory lookup behind coach-in-squad mode and
// individual-program coach resolution.
func (s *Store) GetOrganizationAdministrator(ctx context.Context, orgID primitive.ObjectID) (*models.User, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: 1}})
	var u models.User
	err := s.c.FindOne(ctx, bson.M{
		"role":            "admin",
		"organization_id": orgID,
		"status":          status.Active,
	}, opts).Decode(&u)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNoAdministrator
		}
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user after normalizing & validating fields.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.FullName = normalize.Name(u.FullName)
	u.FullNameCI = text.Fold(u.FullName)
	u.Email = normalize.Email(u.Email)
	if u.Status == "" {
		u.Status = status.Active
	}

	switch u.Role {
	case "admin", "coach", "member":
		// ok
	default:
		return models.User{}, errBadRole
	}

	if !status.IsValid(u.Status) {
		return models.User{}, errBadStatus
	}

	// Coaches/members must be scoped to an org
	if (u.Role == "coach" || u.Role == "member") && u.OrganizationID == nil {
		return models.User{}, errOrgNeeded
	}

	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// SetAssignedCoach writes the assigned coach id onto the person's profile.
func (s *Store) SetAssignedCoach(ctx context.Context, personID, coachID primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": personID}, bson.M{"$set": bson.M{
		"assigned_coach_id": coachID,
		"updated_at":        time.Now().UTC(),
	}})
	return err
}
