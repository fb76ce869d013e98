package enrollmentstore_test

import (
	"testing"
	"time"

	enrollmentstore "github.com/dalemusser/coachhub/internal/app/store/enrollments"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"github.com/dalemusser/coachhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func seedEnrollment(t *testing.T, store *enrollmentstore.Store, personID, programID primitive.ObjectID, programType, status string, start time.Time) models.Enrollment {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	e, err := store.Create(ctx, models.Enrollment{
		PersonID:       personID,
		ProgramID:      programID,
		ProgramType:    programType,
		OrganizationID: primitive.NewObjectID(),
		Status:         status,
		StartDate:      start,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return e
}

func TestExistsForProgram(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := enrollmentstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	person := primitive.NewObjectID()
	program := primitive.NewObjectID()
	seedEnrollment(t, store, person, program, models.ProgramTypeGroup, models.EnrollmentUpcoming, time.Now().UTC())

	got, err := store.ExistsForProgram(ctx, person, program, models.EnrollmentActive, models.EnrollmentUpcoming)
	if err != nil {
		t.Fatalf("ExistsForProgram: %v", err)
	}
	if !got {
		t.Error("expected upcoming enrollment to count")
	}

	// Cancelled rows never block re-enrollment.
	got, err = store.ExistsForProgram(ctx, person, program, models.EnrollmentCancelled)
	if err != nil {
		t.Fatalf("ExistsForProgram: %v", err)
	}
	if got {
		t.Error("no cancelled enrollment exists")
	}

	got, err = store.ExistsForProgram(ctx, person, primitive.NewObjectID(), models.EnrollmentActive, models.EnrollmentUpcoming)
	if err != nil {
		t.Fatalf("ExistsForProgram: %v", err)
	}
	if got {
		t.Error("other programs should not match")
	}
}

func TestHasActiveOfType(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := enrollmentstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	person := primitive.NewObjectID()
	seedEnrollment(t, store, person, primitive.NewObjectID(), models.ProgramTypeGroup, models.EnrollmentActive, time.Now().UTC())
	seedEnrollment(t, store, person, primitive.NewObjectID(), models.ProgramTypeIndividual, models.EnrollmentCompleted, time.Now().UTC())

	got, err := store.HasActiveOfType(ctx, person, models.ProgramTypeGroup)
	if err != nil {
		t.Fatalf("HasActiveOfType: %v", err)
	}
	if !got {
		t.Error("expected active group enrollment")
	}

	// Completed individual enrollment does not conflict.
	got, err = store.HasActiveOfType(ctx, person, models.ProgramTypeIndividual)
	if err != nil {
		t.Fatalf("HasActiveOfType: %v", err)
	}
	if got {
		t.Error("completed enrollments are not active")
	}
}

func TestSetSquad(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := enrollmentstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	e := seedEnrollment(t, store, primitive.NewObjectID(), primitive.NewObjectID(),
		models.ProgramTypeGroup, models.EnrollmentActive, time.Now().UTC())

	squadID := primitive.NewObjectID()
	if err := store.SetSquad(ctx, e.ID, squadID); err != nil {
		t.Fatalf("SetSquad: %v", err)
	}

	got, err := store.GetByID(ctx, e.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.SquadID == nil || *got.SquadID != squadID {
		t.Errorf("squad id: got %v, want %s", got.SquadID, squadID.Hex())
	}
}

func TestActivateDue(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := enrollmentstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Now().UTC()
	due := seedEnrollment(t, store, primitive.NewObjectID(), primitive.NewObjectID(),
		models.ProgramTypeGroup, models.EnrollmentUpcoming, now.AddDate(0, 0, -1))
	notDue := seedEnrollment(t, store, primitive.NewObjectID(), primitive.NewObjectID(),
		models.ProgramTypeGroup, models.EnrollmentUpcoming, now.AddDate(0, 0, 3))
	alreadyActive := seedEnrollment(t, store, primitive.NewObjectID(), primitive.NewObjectID(),
		models.ProgramTypeGroup, models.EnrollmentActive, now.AddDate(0, 0, -1))

	count, err := store.ActivateDue(ctx, now)
	if err != nil {
		t.Fatalf("ActivateDue: %v", err)
	}
	if count != 1 {
		t.Errorf("activated: got %d, want 1", count)
	}

	for _, tc := range []struct {
		name string
		id   primitive.ObjectID
		want string
	}{
		{"due flips to active", due.ID, models.EnrollmentActive},
		{"future stays upcoming", notDue.ID, models.EnrollmentUpcoming},
		{"active untouched", alreadyActive.ID, models.EnrollmentActive},
	} {
		got, err := store.GetByID(ctx, tc.id)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if got.Status != tc.want {
			t.Errorf("%s: got %q, want %q", tc.name, got.Status, tc.want)
		}
	}
}
