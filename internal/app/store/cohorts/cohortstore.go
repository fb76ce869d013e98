// internal/app/store/cohorts/cohortstore.go
package cohortstore

import (
	"context"
	"time"

	"github.com/dalemusser/coachhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("cohorts")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Cohort, error) {
	var c models.Cohort
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return models.Cohort{}, err
	}
	return c, nil
}

func (s *Store) Create(ctx context.Context, c models.Cohort) (models.Cohort, error) {
	now := time.Now().UTC()
	c.ID = primitive.NewObjectID()
	c.CreatedAt = now
	c.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, c); err != nil {
		return models.Cohort{}, err
	}
	return c, nil
}

// ListByProgram returns a program's cohorts in start-date order.
func (s *Store) ListByProgram(ctx context.Context, programID primitive.ObjectID) ([]models.Cohort, error) {
	opts := options.Find().SetSort(bson.D{{Key: "start_date", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"program_id": programID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var cohorts []models.Cohort
	if err := cur.All(ctx, &cohorts); err != nil {
		return nil, err
	}
	return cohorts, nil
}

// IncrementEnrollment bumps the cohort's aggregate enrollment counter.
// Called after the enrollment row is committed, so a crash in between
// undercounts rather than overcounts.
func (s *Store) IncrementEnrollment(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$inc": bson.M{"current_enrollment": 1},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	})
	return err
}
