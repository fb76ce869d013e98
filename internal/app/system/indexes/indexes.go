// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureUsers(ctx, db); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := ensureOrganizations(ctx, db); err != nil {
		problems = append(problems, "organizations: "+err.Error())
	}
	if err := ensurePrograms(ctx, db); err != nil {
		problems = append(problems, "programs: "+err.Error())
	}
	if err := ensureCohorts(ctx, db); err != nil {
		problems = append(problems, "cohorts: "+err.Error())
	}
	if err := ensureSquads(ctx, db); err != nil {
		problems = append(problems, "squads: "+err.Error())
	}
	if err := ensureEnrollments(ctx, db); err != nil {
		problems = append(problems, "enrollments: "+err.Error())
	}
	if err := ensureDiscountCodes(ctx, db); err != nil {
		problems = append(problems, "discount_codes: "+err.Error())
	}
	if err := ensureDiscountUsages(ctx, db); err != nil {
		problems = append(problems, "discount_usages: "+err.Error())
	}
	if err := ensureCoachingRelationships(ctx, db); err != nil {
		problems = append(problems, "coaching_relationships: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func uniqueOf(u *bool) bool {
	return u != nil && *u
}

// ensureIndexSet reconciles the desired indexes against what the collection
// already has: an index with the same keys and options is reused, one with
// the same keys but different options is dropped and recreated.
func ensureIndexSet(ctx context.Context, coll *mongo.Collection, desired []mongo.IndexModel) error {
	existing := map[string]existingIndex{} // key signature -> index
	cur, err := coll.Indexes().List(ctx)
	if err == nil {
		defer cur.Close(ctx)
		for cur.Next(ctx) {
			var idx existingIndex
			if err := cur.Decode(&idx); err != nil {
				zap.L().Warn("failed to decode existing index",
					zap.String("collection", coll.Name()),
					zap.Error(err))
				continue
			}
			existing[keySig(idx.Key)] = idx
		}
	}

	var errs []string
	for _, m := range desired {
		var name string
		var unique *bool
		if m.Options != nil {
			if m.Options.Name != nil {
				name = *m.Options.Name
			}
			unique = m.Options.Unique
		}
		sig := keySig(m.Keys.(bson.D))
		start := time.Now()

		if ex, ok := existing[sig]; ok {
			if uniqueOf(unique) == uniqueOf(ex.Unique) {
				continue
			}
			// Options changed (e.g. upgrading to unique). Drop and recreate.
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), name, err))
				continue
			}
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if strings.Contains(err.Error(), "IndexOptionsConflict") {
				// Same keys exist under a different name; leave them be.
				zap.L().Warn("index options conflict, keeping existing",
					zap.String("collection", coll.Name()),
					zap.String("name", name),
					zap.String("keys", sig))
				continue
			}
			errs = append(errs, fmt.Sprintf("%s(%s): create failed: %v", coll.Name(), name, err))
			continue
		}
		zap.L().Info("created index",
			zap.String("collection", coll.Name()),
			zap.String("name", name),
			zap.String("keys", sig),
			zap.Bool("unique", uniqueOf(unique)),
			zap.String("took", time.Since(start).String()))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("users"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("uniq_email").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "organization_id", Value: 1}, {Key: "role", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("org_role_status"),
		},
	})
}

func ensureOrganizations(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("organizations"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}},
			Options: options.Index().SetName("uniq_name_ci").SetUnique(true),
		},
	})
}

func ensurePrograms(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("programs"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "organization_id", Value: 1}, {Key: "published", Value: 1}, {Key: "active", Value: 1}},
			Options: options.Index().SetName("org_published_active"),
		},
	})
}

func ensureCohorts(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("cohorts"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "program_id", Value: 1}, {Key: "start_date", Value: 1}},
			Options: options.Index().SetName("program_start"),
		},
	})
}

func ensureSquads(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("squads"), []mongo.IndexModel{
		{
			// The unique ordinal is what makes concurrent auto-creation safe:
			// two racers creating "cohort X squad N" collide here and one
			// falls back to rescanning.
			Keys:    bson.D{{Key: "cohort_id", Value: 1}, {Key: "number", Value: 1}},
			Options: options.Index().SetName("uniq_cohort_number").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "member_ids", Value: 1}},
			Options: options.Index().SetName("member_ids"),
		},
	})
}

func ensureEnrollments(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("enrollments"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "person_id", Value: 1}, {Key: "program_id", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("person_program_status"),
		},
		{
			Keys:    bson.D{{Key: "person_id", Value: 1}, {Key: "program_type", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("person_type_status"),
		},
		{
			// The activation sweep scans upcoming rows by start date.
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "start_date", Value: 1}},
			Options: options.Index().SetName("status_start"),
		},
	})
}

func ensureDiscountCodes(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("discount_codes"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "organization_id", Value: 1}, {Key: "code_ci", Value: 1}},
			Options: options.Index().SetName("uniq_org_code_ci").SetUnique(true),
		},
	})
}

func ensureDiscountUsages(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("discount_usages"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "code_id", Value: 1}, {Key: "person_id", Value: 1}},
			Options: options.Index().SetName("code_person"),
		},
	})
}

func ensureCoachingRelationships(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("coaching_relationships"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "client_id", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("client_status"),
		},
		{
			Keys:    bson.D{{Key: "coach_id", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("coach_status"),
		},
	})
}
