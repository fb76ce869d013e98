// internal/app/store/enrollments/enrollmentstore.go
package enrollmentstore

import (
	"context"
	"time"

	"github.com/dalemusser/coachhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("enrollments")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Enrollment, error) {
	var e models.Enrollment
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		return models.Enrollment{}, err
	}
	return e, nil
}

func (s *Store) Create(ctx context.Context, e models.Enrollment) (models.Enrollment, error) {
	now := time.Now().UTC()
	e.ID = primitive.NewObjectID()
	e.CreatedAt = now
	e.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, e); err != nil {
		return models.Enrollment{}, err
	}
	return e, nil
}

// ExistsForProgram reports whether the person holds an enrollment in the
// exact program with any of the given statuses.
func (s *Store) ExistsForProgram(ctx context.Context, personID, programID primitive.ObjectID, statuses ...string) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{
		"person_id":  personID,
		"program_id": programID,
		"status":     bson.M{"$in": statuses},
	}).Err()
	if err == nil {
		return true, nil
	}
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	return false, err
}

// HasActiveOfType reports whether the person holds an active enrollment in
// any program of the given type ("group"/"individual").
func (s *Store) HasActiveOfType(ctx context.Context, personID primitive.ObjectID, programType string) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{
		"person_id":    personID,
		"program_type": programType,
		"status":       models.EnrollmentActive,
	}).Err()
	if err == nil {
		return true, nil
	}
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	return false, err
}

// SetSquad stores the allocated squad id on the enrollment.
func (s *Store) SetSquad(ctx context.Context, id, squadID primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"squad_id":   squadID,
		"updated_at": time.Now().UTC(),
	}})
	return err
}

// ActivateDue flips upcoming enrollments whose start date has arrived to
// active. Returns the number of enrollments activated.
func (s *Store) ActivateDue(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.c.UpdateMany(ctx, bson.M{
		"status":     models.EnrollmentUpcoming,
		"start_date": bson.M{"$lte": now},
	}, bson.M{"$set": bson.M{
		"status":     models.EnrollmentActive,
		"updated_at": now,
	}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
