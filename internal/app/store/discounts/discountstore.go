// internal/app/store/discounts/discountstore.go
package discountstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/coachhub/internal/app/system/normalize"
	"github.com/dalemusser/coachhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	codes  *mongo.Collection
	usages *mongo.Collection
}

var ErrDuplicateCode = errors.New("a discount code with this name already exists in the organization")

func New(db *mongo.Database) *Store {
	return &Store{
		codes:  db.Collection("discount_codes"),
		usages: db.Collection("discount_usages"),
	}
}

// GetByCode looks a code up case-insensitively within the organization.
// Returns mongo.ErrNoDocuments when there is no such code.
func (s *Store) GetByCode(ctx context.Context, orgID primitive.ObjectID, code string) (models.DiscountCode, error) {
	var dc models.DiscountCode
	err := s.codes.FindOne(ctx, bson.M{
		"organization_id": orgID,
		"code_ci":         normalize.Code(code),
	}).Decode(&dc)
	if err != nil {
		return models.DiscountCode{}, err
	}
	return dc, nil
}

func (s *Store) Create(ctx context.Context, dc models.DiscountCode) (models.DiscountCode, error) {
	now := time.Now().UTC()
	dc.ID = primitive.NewObjectID()
	dc.CodeCI = normalize.Code(dc.Code)
	dc.CreatedAt = now
	dc.UpdatedAt = now
	if _, err := s.codes.InsertOne(ctx, dc); err != nil {
		if wafflemongo.IsDup(err) {
			return models.DiscountCode{}, ErrDuplicateCode
		}
		return models.DiscountCode{}, err
	}
	return dc, nil
}

// CountUsagesByPerson counts audit records for a (code, person) pair; the
// per-person usage cap is enforced against this.
func (s *Store) CountUsagesByPerson(ctx context.Context, codeID, personID primitive.ObjectID) (int64, error) {
	return s.usages.CountDocuments(ctx, bson.M{
		"code_id":   codeID,
		"person_id": personID,
	})
}

// RecordUsage writes the usage audit record and bumps the code's usage
// counter. Called only after the discounted enrollment has been committed,
// so a resolution whose enrollment fails never consumes a usage.
//
// The two writes are not transactional; the increment is last-write-wins,
// which matches the documented cap-race tolerance.
func (s *Store) RecordUsage(ctx context.Context, u models.DiscountUsage) error {
	u.ID = primitive.NewObjectID()
	u.CreatedAt = time.Now().UTC()
	if _, err := s.usages.InsertOne(ctx, u); err != nil {
		return err
	}
	_, err := s.codes.UpdateOne(ctx, bson.M{"_id": u.CodeID}, bson.M{
		"$inc": bson.M{"uses": 1},
		"$set": bson.M{"updated_at": u.CreatedAt},
	})
	return err
}
