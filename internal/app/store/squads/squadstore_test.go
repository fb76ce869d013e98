package squadstore_test

import (
	"sync"
	"testing"
	"time"

	squadstore "github.com/dalemusser/coachhub/internal/app/store/squads"
	"github.com/dalemusser/coachhub/internal/app/system/indexes"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"github.com/dalemusser/coachhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func nowPlusDays(d int) time.Time {
	return time.Now().UTC().AddDate(0, 0, d)
}

func TestAddMemberGuarded_RespectsCapacity(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := squadstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fx.CreateOrganization(ctx, "Acme Coaching")
	program := fx.CreateProgram(ctx, org.ID, "Leadership", models.ProgramTypeGroup, 10000, 2)
	cohort := fx.CreateCohort(ctx, program, "Spring", nowPlusDays(7), 0)
	sq := fx.CreateSquad(ctx, program, cohort.ID, 1, 2)

	a := primitive.NewObjectID()
	b := primitive.NewObjectID()
	c := primitive.NewObjectID()

	for _, id := range []primitive.ObjectID{a, b} {
		ok, err := store.AddMemberGuarded(ctx, sq.ID, id)
		if err != nil {
			t.Fatalf("AddMemberGuarded: %v", err)
		}
		if !ok {
			t.Fatal("expected add to succeed with room")
		}
	}

	ok, err := store.AddMemberGuarded(ctx, sq.ID, c)
	if err != nil {
		t.Fatalf("AddMemberGuarded: %v", err)
	}
	if ok {
		t.Error("add into a full squad should report no match")
	}

	got, err := store.GetByID(ctx, sq.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(got.MemberIDs) != 2 {
		t.Errorf("member count: got %d, want 2", len(got.MemberIDs))
	}
}

func TestAddMemberGuarded_IdempotentWhenFull(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := squadstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fx.CreateOrganization(ctx, "Acme Coaching")
	program := fx.CreateProgram(ctx, org.ID, "Leadership", models.ProgramTypeGroup, 10000, 1)
	cohort := fx.CreateCohort(ctx, program, "Spring", nowPlusDays(7), 0)

	member := primitive.NewObjectID()
	sq := fx.CreateSquad(ctx, program, cohort.ID, 1, 1, member)

	// Re-adding an existing member must succeed even at capacity, and must
	// not duplicate the entry.
	ok, err := store.AddMemberGuarded(ctx, sq.ID, member)
	if err != nil {
		t.Fatalf("AddMemberGuarded: %v", err)
	}
	if !ok {
		t.Error("re-add of an existing member should match")
	}

	got, err := store.GetByID(ctx, sq.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(got.MemberIDs) != 1 {
		t.Errorf("member count: got %d, want 1", len(got.MemberIDs))
	}
}

func TestAddMemberGuarded_ConcurrentSingleSlot(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := squadstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fx.CreateOrganization(ctx, "Acme Coaching")
	program := fx.CreateProgram(ctx, org.ID, "Leadership", models.ProgramTypeGroup, 10000, 3)
	cohort := fx.CreateCohort(ctx, program, "Spring", nowPlusDays(7), 0)
	sq := fx.CreateSquad(ctx, program, cohort.ID, 1, 3,
		primitive.NewObjectID(), primitive.NewObjectID())

	// Ten racers for the last slot: exactly one wins.
	const racers = 10
	var wg sync.WaitGroup
	wins := make(chan bool, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := store.AddMemberGuarded(ctx, sq.ID, primitive.NewObjectID())
			if err != nil {
				t.Errorf("AddMemberGuarded: %v", err)
				return
			}
			wins <- ok
		}()
	}
	wg.Wait()
	close(wins)

	won := 0
	for ok := range wins {
		if ok {
			won++
		}
	}
	if won != 1 {
		t.Errorf("winners: got %d, want 1", won)
	}

	got, err := store.GetByID(ctx, sq.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(got.MemberIDs) != 3 {
		t.Errorf("member count: got %d, want 3", len(got.MemberIDs))
	}
}

func TestCreate_DuplicateOrdinalRejected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := squadstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}

	org := fx.CreateOrganization(ctx, "Acme Coaching")
	program := fx.CreateProgram(ctx, org.ID, "Leadership", models.ProgramTypeGroup, 10000, 3)
	cohort := fx.CreateCohort(ctx, program, "Spring", nowPlusDays(7), 0)
	fx.CreateSquad(ctx, program, cohort.ID, 1, 3)

	_, err := store.Create(ctx, models.Squad{
		OrganizationID: org.ID,
		ProgramID:      program.ID,
		CohortID:       &cohort.ID,
		Name:           squadstore.SquadName(program.Name, 1),
		Number:         1,
		Capacity:       3,
	})
	if err == nil {
		t.Error("expected duplicate ordinal to be rejected")
	}
}

func TestSquadName(t *testing.T) {
	if got := squadstore.SquadName("Leadership", 3); got != "Leadership Squad 3" {
		t.Errorf("SquadName: got %q", got)
	}
}
