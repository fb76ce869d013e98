// internal/app/store/coaching/coachingstore.go
package coachingstore

import (
	"context"
	"time"

	"github.com/dalemusser/coachhub/internal/app/system/status"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("coaching_relationships")}
}

func (s *Store) Create(ctx context.Context, r models.CoachingRelationship) (models.CoachingRelationship, error) {
	now := time.Now().UTC()
	r.ID = primitive.NewObjectID()
	if r.Status == "" {
		r.Status = status.Active
	}
	if r.SessionIDs == nil {
		r.SessionIDs = []primitive.ObjectID{}
	}
	if r.NoteIDs == nil {
		r.NoteIDs = []primitive.ObjectID{}
	}
	r.CreatedAt = now
	r.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, r); err != nil {
		return models.CoachingRelationship{}, err
	}
	return r, nil
}

// GetActiveByClient returns the client's active coaching relationship, if any.
func (s *Store) GetActiveByClient(ctx context.Context, clientID primitive.ObjectID) (models.CoachingRelationship, error) {
	var r models.CoachingRelationship
	err := s.c.FindOne(ctx, bson.M{
		"client_id": clientID,
		"status":    status.Active,
	}).Decode(&r)
	if err != nil {
		return models.CoachingRelationship{}, err
	}
	return r, nil
}
