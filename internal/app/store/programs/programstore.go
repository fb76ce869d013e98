// internal/app/store/programs/programstore.go
package programstore

import (
	"context"
	"errors"
	"time"

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

var (
	ErrDuplicateProgramName = errors.New("a program with this name already exists in the organization")

	errBadType     = errors.New(`type must be "group" or "individual"`)
	errBadCapacity = errors.New("group programs need a positive squad capacity")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("programs")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Program, error) {
	var p models.Program
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return models.Program{}, err
	}
	return p, nil
}

func (s *Store) Create(ctx context.Context, p models.Program) (models.Program, error) {
	switch p.Type {
	case models.ProgramTypeGroup, models.ProgramTypeIndividual:
		// ok
	default:
		return models.Program{}, errBadType
	}
	if p.Type == models.ProgramTypeGroup && p.SquadCapacity <= 0 {
		return models.Program{}, errBadCapacity
	}

	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	p.NameCI = text.Fold(p.Name)
	p.CreatedAt = now
	p.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, p); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Program{}, ErrDuplicateProgramName
		}
		return models.Program{}, err
	}
	return p, nil
}

// ListPublished returns the active, published programs for an organization,
// name order.
func (s *Store) ListPublished(ctx context.Context, orgID primitive.ObjectID) ([]models.Program, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{
		"organization_id": orgID,
		"active":          true,
		"published":       true,
	}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var programs []models.Program
	if err := cur.All(ctx, &programs); err != nil {
		return nil, err
	}
	return programs, nil
}
