// internal/app/store/squads/squadstore.go
package squadstore

import (
	"context"
	"fmt"
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
	return &Store{c: db.Collection("squads")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Squad, error) {
	var sq models.Squad
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&sq); err != nil {
		return models.Squad{}, err
	}
	return sq, nil
}

func (s *Store) Create(ctx context.Context, sq models.Squad) (models.Squad, error) {
	now := time.Now().UTC()
	sq.ID = primitive.NewObjectID()
	if sq.MemberIDs == nil {
		sq.MemberIDs = []primitive.ObjectID{}
	}
	sq.CreatedAt = now
	sq.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, sq); err != nil {
		return models.Squad{}, err
	}
	return sq, nil
}

// ListByCohort returns the cohort's squads in creation-ordinal order, which
// is the scan order for first-fit allocation.
func (s *Store) ListByCohort(ctx context.Context, cohortID primitive.ObjectID) ([]models.Squad, error) {
	opts := options.Find().SetSort(bson.D{{Key: "number", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"cohort_id": cohortID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var squads []models.Squad
	if err := cur.All(ctx, &squads); err != nil {
		return nil, err
	}
	return squads, nil
}

// CountByCohort returns how many squads the cohort has; new squads get
// ordinal count+1.
func (s *Store) CountByCohort(ctx context.Context, cohortID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"cohort_id": cohortID})
}

// AddMemberGuarded appends the person to the squad's member set only if the
// person is already a member or the squad still has spare capacity. The
// capacity check and the append happen in one conditional update, so the
// len(member_ids) <= capacity invariant holds even under concurrent
// allocations; $addToSet keeps the membership a set, making retries
// harmless.
//
// Returns false (and no error) when the update matched nothing because the
// squad filled up between the caller's scan and this write; the caller
// rescans or creates a new squad.
func (s *Store) AddMemberGuarded(ctx context.Context, squadID, personID primitive.ObjectID) (bool, error) {
	res, err := s.c.UpdateOne(ctx, bson.M{
		"_id": squadID,
		"$or": bson.A{
			bson.M{"member_ids": personID},
			bson.M{"$expr": bson.M{"$lt": bson.A{
				bson.M{"$size": "$member_ids"},
				"$capacity",
			}}},
		},
	}, bson.M{
		"$addToSet": bson.M{"member_ids": personID},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}

// AddMemberUnchecked appends the person to the member set without a
// capacity guard. Used only for standing community squads, which are not
// bin-packed (documented broadening; see the coaching provisioner).
func (s *Store) AddMemberUnchecked(ctx context.Context, squadID, personID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": squadID}, bson.M{
		"$addToSet": bson.M{"member_ids": personID},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SetChannel records the communication channel provisioned for the squad.
func (s *Store) SetChannel(ctx context.Context, squadID primitive.ObjectID, channelID string) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": squadID}, bson.M{"$set": bson.M{
		"channel_id": channelID,
		"updated_at": time.Now().UTC(),
	}})
	return err
}

// SquadName builds the display name for an auto-created squad.
func SquadName(programName string, number int) string {
	return fmt.Sprintf("%s Squad %d", programName, number)
}
