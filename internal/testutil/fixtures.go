// internal/testutil/fixtures.go
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/coachhub/internal/app/system/normalize"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data. Documents are
// inserted directly so store-level validation does not get in the way of
// setting up edge cases.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

func (f *Fixtures) insert(ctx context.Context, coll string, doc any) {
	f.t.Helper()
	if _, err := f.db.Collection(coll).InsertOne(ctx, doc); err != nil {
		f.t.Fatalf("insert into %s: %v", coll, err)
	}
}

// CreateOrganization creates a test organization with the given name.
func (f *Fixtures) CreateOrganization(ctx context.Context, name string) models.Organization {
	f.t.Helper()

	now := time.Now().UTC()
	org := models.Organization{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		TimeZone:  "America/New_York",
		Status:    "active",
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "organizations", org)
	return org
}

// CreateUser creates a test user with the given role and organization.
func (f *Fixtures) CreateUser(ctx context.Context, name, email, role string, orgID primitive.ObjectID) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:             primitive.NewObjectID(),
		FullName:       name,
		FullNameCI:     text.Fold(name),
		Email:          email,
		Role:           role,
		Status:         "active",
		OrganizationID: &orgID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	f.insert(ctx, "users", u)
	return u
}

// CreateProgram creates a published, active program.
func (f *Fixtures) CreateProgram(ctx context.Context, orgID primitive.ObjectID, name, programType string, price int64, squadCapacity int) models.Program {
	f.t.Helper()

	now := time.Now().UTC()
	p := models.Program{
		ID:             primitive.NewObjectID(),
		Name:           name,
		NameCI:         text.Fold(name),
		Type:           programType,
		OrganizationID: orgID,
		Price:          price,
		Currency:       "usd",
		SquadCapacity:  squadCapacity,
		Active:         true,
		Published:      true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	f.insert(ctx, "programs", p)
	return p
}

// CreateCohort creates an open cohort for the program.
func (f *Fixtures) CreateCohort(ctx context.Context, program models.Program, name string, startDate time.Time, maxEnrollment int) models.Cohort {
	f.t.Helper()

	now := time.Now().UTC()
	c := models.Cohort{
		ID:             primitive.NewObjectID(),
		ProgramID:      program.ID,
		OrganizationID: program.OrganizationID,
		Name:           name,
		StartDate:      startDate,
		EnrollmentOpen: true,
		MaxEnrollment:  maxEnrollment,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	f.insert(ctx, "cohorts", c)
	return c
}

// CreateSquad creates a squad with the given ordinal and members.
func (f *Fixtures) CreateSquad(ctx context.Context, program models.Program, cohortID primitive.ObjectID, number, capacity int, memberIDs ...primitive.ObjectID) models.Squad {
	f.t.Helper()

	if memberIDs == nil {
		memberIDs = []primitive.ObjectID{}
	}
	now := time.Now().UTC()
	sq := models.Squad{
		ID:             primitive.NewObjectID(),
		OrganizationID: program.OrganizationID,
		ProgramID:      program.ID,
		CohortID:       &cohortID,
		Name:           program.Name,
		Number:         number,
		Capacity:       capacity,
		MemberIDs:      memberIDs,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	f.insert(ctx, "squads", sq)
	return sq
}

// CreateDiscountCode creates an active discount code for the organization.
func (f *Fixtures) CreateDiscountCode(ctx context.Context, orgID primitive.ObjectID, code, codeType string, value int64) models.DiscountCode {
	f.t.Helper()

	now := time.Now().UTC()
	dc := models.DiscountCode{
		ID:             primitive.NewObjectID(),
		OrganizationID: orgID,
		Code:           code,
		CodeCI:         normalize.Code(code),
		Type:           codeType,
		Value:          value,
		Active:         true,
		Scope:          models.DiscountScopeAll,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	f.insert(ctx, "discount_codes", dc)
	return dc
}
