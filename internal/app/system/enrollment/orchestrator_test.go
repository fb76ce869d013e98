package enrollment_test

import (
	"errors"
	"testing"
	"time"

	coachingstore "github.com/dalemusser/coachhub/internal/app/store/coaching"
	cohortstore "github.com/dalemusser/coachhub/internal/app/store/cohorts"
	discountstore "github.com/dalemusser/coachhub/internal/app/store/discounts"
	enrollmentstore "github.com/dalemusser/coachhub/internal/app/store/enrollments"
	organizationstore "github.com/dalemusser/coachhub/internal/app/store/organizations"
	programstore "github.com/dalemusser/coachhub/internal/app/store/programs"
	squadstore "github.com/dalemusser/coachhub/internal/app/store/squads"
	userstore "github.com/dalemusser/coachhub/internal/app/store/users"
	"github.com/dalemusser/coachhub/internal/app/system/allocation"
	"github.com/dalemusser/coachhub/internal/app/system/coaching"
	"github.com/dalemusser/coachhub/internal/app/system/comms"
	"github.com/dalemusser/coachhub/internal/app/system/discount"
	"github.com/dalemusser/coachhub/internal/app/system/enrollment"
	"github.com/dalemusser/coachhub/internal/app/system/payments"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"github.com/dalemusser/coachhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type env struct {
	fx           *testutil.Fixtures
	orchestrator *enrollment.Orchestrator
	enrollments  *enrollmentstore.Store
	squads       *squadstore.Store
	cohorts      *cohortstore.Store
	coaching     *coachingstore.Store
	users        *userstore.Store
}

func newEnv(t *testing.T, provider payments.Provider) *env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	log := zap.NewNop()

	users := userstore.New(db)
	squads := squadstore.New(db)
	cohorts := cohortstore.New(db)
	enrollments := enrollmentstore.New(db)
	discounts := discountstore.New(db)
	relationships := coachingstore.New(db)

	allocator := allocation.New(squads, users, comms.Noop{}, log)
	provisioner := coaching.New(users, relationships, squads, comms.Noop{}, log)
	lifecycle := enrollment.NewLifecycle(enrollments, cohorts, allocator, provisioner, log)
	orch := enrollment.NewOrchestrator(enrollment.OrchestratorDeps{
		Programs:    programstore.New(db),
		Cohorts:     cohorts,
		Enrollments: enrollments,
		Discounts:   discounts,
		Orgs:        organizationstore.New(db),
		Users:       users,
		Resolver:    discount.New(discounts, log),
		Lifecycle:   lifecycle,
		Payments:    provider,
		ReturnURL:   "http://localhost/enrolled",
	}, log)

	return &env{
		fx:           testutil.NewFixtures(t, db),
		orchestrator: orch,
		enrollments:  enrollments,
		squads:       squads,
		cohorts:      cohorts,
		coaching:     relationships,
		users:        users,
	}
}

func TestEnroll_FreeGroupProgram(t *testing.T) {
	e := newEnv(t, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := e.fx.CreateOrganization(ctx, "Acme Coaching")
	person := e.fx.CreateUser(ctx, "Pat Member", "pat@test.com", "member", org.ID)
	program := e.fx.CreateProgram(ctx, org.ID, "Leadership", models.ProgramTypeGroup, 0, 3)
	cohort := e.fx.CreateCohort(ctx, program, "Spring", time.Now().UTC().AddDate(0, 0, 14), 0)

	outcome, err := e.orchestrator.Enroll(ctx, enrollment.EnrollParams{
		Person:    person,
		ProgramID: program.ID,
		CohortID:  &cohort.ID,
	})
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if len(outcome.Warnings) != 0 {
		t.Errorf("warnings: %v", outcome.Warnings)
	}
	if outcome.CheckoutURL != "" {
		t.Error("free enrollment should not redirect to checkout")
	}
	if outcome.Enrollment == nil {
		t.Fatal("expected an enrollment")
	}
	if outcome.Enrollment.Status != models.EnrollmentUpcoming {
		t.Errorf("status: got %q, want upcoming", outcome.Enrollment.Status)
	}
	if outcome.Enrollment.SquadID == nil {
		t.Fatal("expected a squad allocation")
	}

	sq, err := e.squads.GetByID(ctx, *outcome.Enrollment.SquadID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !sq.HasMember(person.ID) {
		t.Error("person missing from allocated squad")
	}

	updated, err := e.cohorts.GetByID(ctx, cohort.ID)
	if err != nil {
		t.Fatalf("cohort GetByID: %v", err)
	}
	if updated.CurrentEnrollment != 1 {
		t.Errorf("cohort counter: got %d, want 1", updated.CurrentEnrollment)
	}
}

func TestEnroll_FreeIndividualProvisionsCoaching(t *testing.T) {
	e := newEnv(t, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := e.fx.CreateOrganization(ctx, "Acme Coaching")
	admin := e.fx.CreateUser(ctx, "Alex Admin", "alex@test.com", "admin", org.ID)
	person := e.fx.CreateUser(ctx, "Pat Member", "pat@test.com", "member", org.ID)
	program := e.fx.CreateProgram(ctx, org.ID, "One on One", models.ProgramTypeIndividual, 0, 0)

	outcome, err := e.orchestrator.Enroll(ctx, enrollment.EnrollParams{
		Person:    person,
		ProgramID: program.ID,
	})
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if outcome.Enrollment.Status != models.EnrollmentActive {
		t.Errorf("status: got %q, want active", outcome.Enrollment.Status)
	}

	rel, err := e.coaching.GetActiveByClient(ctx, person.ID)
	if err != nil {
		t.Fatalf("GetActiveByClient: %v", err)
	}
	if rel.CoachID != admin.ID {
		t.Errorf("coach: got %s, want the org admin %s", rel.CoachID.Hex(), admin.ID.Hex())
	}

	got, err := e.users.GetByID(ctx, person.ID)
	if err != nil {
		t.Fatalf("user GetByID: %v", err)
	}
	if got.AssignedCoachID == nil || *got.AssignedCoachID != admin.ID {
		t.Error("assigned coach not written back to the profile")
	}
}

func TestEnroll_PaidReturnsCheckout(t *testing.T) {
	e := newEnv(t, payments.NewStub("http://pay.test", zap.NewNop()))
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := e.fx.CreateOrganization(ctx, "Acme Coaching")
	person := e.fx.CreateUser(ctx, "Pat Member", "pat@test.com", "member", org.ID)
	program := e.fx.CreateProgram(ctx, org.ID, "Leadership", models.ProgramTypeGroup, 10000, 3)
	cohort := e.fx.CreateCohort(ctx, program, "Spring", time.Now().UTC().AddDate(0, 0, 14), 0)
	e.fx.CreateDiscountCode(ctx, org.ID, "SAVE20", models.DiscountPercentage, 20)

	outcome, err := e.orchestrator.Enroll(ctx, enrollment.EnrollParams{
		Person:       person,
		ProgramID:    program.ID,
		CohortID:     &cohort.ID,
		DiscountCode: "save20",
	})
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if outcome.Enrollment != nil {
		t.Error("paid enrollment must not create a row before payment")
	}
	if outcome.CheckoutURL == "" {
		t.Fatal("expected a checkout url")
	}

	exists, err := e.enrollments.ExistsForProgram(ctx, person.ID, program.ID,
		models.EnrollmentActive, models.EnrollmentUpcoming)
	if err != nil {
		t.Fatalf("ExistsForProgram: %v", err)
	}
	if exists {
		t.Error("no enrollment should exist until the payment confirms")
	}
}

func TestEnroll_PaidWithoutProviderFails(t *testing.T) {
	e := newEnv(t, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := e.fx.CreateOrganization(ctx, "Acme Coaching")
	person := e.fx.CreateUser(ctx, "Pat Member", "pat@test.com", "member", org.ID)
	program := e.fx.CreateProgram(ctx, org.ID, "Leadership", models.ProgramTypeGroup, 10000, 3)
	cohort := e.fx.CreateCohort(ctx, program, "Spring", time.Now().UTC().AddDate(0, 0, 14), 0)

	_, err := e.orchestrator.Enroll(ctx, enrollment.EnrollParams{
		Person:    person,
		ProgramID: program.ID,
		CohortID:  &cohort.ID,
	})
	if !errors.Is(err, enrollment.ErrPaymentSetupMissing) {
		t.Errorf("got %v, want ErrPaymentSetupMissing", err)
	}
}

func TestEnroll_FullDiscountSkipsCheckout(t *testing.T) {
	e := newEnv(t, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := e.fx.CreateOrganization(ctx, "Acme Coaching")
	person := e.fx.CreateUser(ctx, "Pat Member", "pat@test.com", "member", org.ID)
	program := e.fx.CreateProgram(ctx, org.ID, "Leadership", models.ProgramTypeGroup, 10000, 3)
	cohort := e.fx.CreateCohort(ctx, program, "Spring", time.Now().UTC().AddDate(0, 0, 14), 0)
	e.fx.CreateDiscountCode(ctx, org.ID, "COMP100", models.DiscountPercentage, 100)

	// With the price discounted to zero, no provider is needed at all.
	outcome, err := e.orchestrator.Enroll(ctx, enrollment.EnrollParams{
		Person:       person,
		ProgramID:    program.ID,
		CohortID:     &cohort.ID,
		DiscountCode: "COMP100",
	})
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if outcome.Enrollment == nil {
		t.Fatal("expected an immediate enrollment")
	}
	if outcome.Enrollment.AmountPaid != 0 {
		t.Errorf("amount paid: got %d, want 0", outcome.Enrollment.AmountPaid)
	}
}

func TestEnroll_InvalidExplicitCode(t *testing.T) {
	e := newEnv(t, payments.NewStub("http://pay.test", zap.NewNop()))
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := e.fx.CreateOrganization(ctx, "Acme Coaching")
	person := e.fx.CreateUser(ctx, "Pat Member", "pat@test.com", "member", org.ID)
	program := e.fx.CreateProgram(ctx, org.ID, "Leadership", models.ProgramTypeGroup, 10000, 3)
	cohort := e.fx.CreateCohort(ctx, program, "Spring", time.Now().UTC().AddDate(0, 0, 14), 0)

	_, err := e.orchestrator.Enroll(ctx, enrollment.EnrollParams{
		Person:       person,
		ProgramID:    program.ID,
		CohortID:     &cohort.ID,
		DiscountCode: "NOPE",
	})
	if !errors.Is(err, enrollment.ErrInvalidDiscount) {
		t.Errorf("got %v, want ErrInvalidDiscount", err)
	}
}

func TestEnroll_DuplicateRejected(t *testing.T) {
	e := newEnv(t, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := e.fx.CreateOrganization(ctx, "Acme Coaching")
	person := e.fx.CreateUser(ctx, "Pat Member", "pat@test.com", "member", org.ID)
	program := e.fx.CreateProgram(ctx, org.ID, "Leadership", models.ProgramTypeGroup, 0, 3)
	cohort := e.fx.CreateCohort(ctx, program, "Spring", time.Now().UTC().AddDate(0, 0, 14), 0)

	params := enrollment.EnrollParams{
		Person:    person,
		ProgramID: program.ID,
		CohortID:  &cohort.ID,
	}
	if _, err := e.orchestrator.Enroll(ctx, params); err != nil {
		t.Fatalf("first enroll: %v", err)
	}
	_, err := e.orchestrator.Enroll(ctx, params)
	if !errors.Is(err, enrollment.ErrAlreadyEnrolled) {
		t.Errorf("got %v, want ErrAlreadyEnrolled", err)
	}
}

func TestEnroll_ConflictingActiveTypeRejected(t *testing.T) {
	e := newEnv(t, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := e.fx.CreateOrganization(ctx, "Acme Coaching")
	person := e.fx.CreateUser(ctx, "Pat Member", "pat@test.com", "member", org.ID)

	// A cohort that already started makes the first enrollment active.
	first := e.fx.CreateProgram(ctx, org.ID, "Leadership", models.ProgramTypeGroup, 0, 3)
	started := e.fx.CreateCohort(ctx, first, "Winter", time.Now().UTC().AddDate(0, 0, -7), 0)
	outcome, err := e.orchestrator.Enroll(ctx, enrollment.EnrollParams{
		Person:    person,
		ProgramID: first.ID,
		CohortID:  &started.ID,
	})
	if err != nil {
		t.Fatalf("first enroll: %v", err)
	}
	if outcome.Enrollment.Status != models.EnrollmentActive {
		t.Fatalf("first enrollment status: got %q, want active", outcome.Enrollment.Status)
	}

	// One active group enrollment at a time: a second group program is
	// rejected even though the person never enrolled in it.
	second := e.fx.CreateProgram(ctx, org.ID, "Strategy", models.ProgramTypeGroup, 0, 3)
	cohort := e.fx.CreateCohort(ctx, second, "Spring", time.Now().UTC().AddDate(0, 0, 14), 0)
	_, err = e.orchestrator.Enroll(ctx, enrollment.EnrollParams{
		Person:    person,
		ProgramID: second.ID,
		CohortID:  &cohort.ID,
	})
	if !errors.Is(err, enrollment.ErrConflictingActiveEnrollment) {
		t.Errorf("got %v, want ErrConflictingActiveEnrollment", err)
	}
}

func TestEnroll_InvalidCodeOnFreeProgram(t *testing.T) {
	e := newEnv(t, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := e.fx.CreateOrganization(ctx, "Acme Coaching")
	e.fx.CreateUser(ctx, "Alex Admin", "alex@test.com", "admin", org.ID)
	person := e.fx.CreateUser(ctx, "Pat Member", "pat@test.com", "member", org.ID)
	program := e.fx.CreateProgram(ctx, org.ID, "One on One", models.ProgramTypeIndividual, 0, 0)

	// A zero list price does not excuse a bad user-entered code.
	_, err := e.orchestrator.Enroll(ctx, enrollment.EnrollParams{
		Person:       person,
		ProgramID:    program.ID,
		DiscountCode: "NOPE",
	})
	if !errors.Is(err, enrollment.ErrInvalidDiscount) {
		t.Errorf("got %v, want ErrInvalidDiscount", err)
	}
}

func TestEnroll_CohortGuards(t *testing.T) {
	e := newEnv(t, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := e.fx.CreateOrganization(ctx, "Acme Coaching")
	person := e.fx.CreateUser(ctx, "Pat Member", "pat@test.com", "member", org.ID)
	program := e.fx.CreateProgram(ctx, org.ID, "Leadership", models.ProgramTypeGroup, 0, 3)

	// Group program without a cohort.
	_, err := e.orchestrator.Enroll(ctx, enrollment.EnrollParams{
		Person:    person,
		ProgramID: program.ID,
	})
	if !errors.Is(err, enrollment.ErrCohortClosed) {
		t.Errorf("missing cohort: got %v, want ErrCohortClosed", err)
	}

	// Cohort at its aggregate cap.
	fullCohort := e.fx.CreateCohort(ctx, program, "Full", time.Now().UTC().AddDate(0, 0, 14), 1)
	if err := e.cohorts.IncrementEnrollment(ctx, fullCohort.ID); err != nil {
		t.Fatalf("IncrementEnrollment: %v", err)
	}
	_, err = e.orchestrator.Enroll(ctx, enrollment.EnrollParams{
		Person:    person,
		ProgramID: program.ID,
		CohortID:  &fullCohort.ID,
	})
	if !errors.Is(err, enrollment.ErrCohortFull) {
		t.Errorf("full cohort: got %v, want ErrCohortFull", err)
	}
}

func TestConfirmPayment_CreatesEnrollment(t *testing.T) {
	e := newEnv(t, payments.NewStub("http://pay.test", zap.NewNop()))
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := e.fx.CreateOrganization(ctx, "Acme Coaching")
	person := e.fx.CreateUser(ctx, "Pat Member", "pat@test.com", "member", org.ID)
	program := e.fx.CreateProgram(ctx, org.ID, "Leadership", models.ProgramTypeGroup, 10000, 3)
	cohort := e.fx.CreateCohort(ctx, program, "Spring", time.Now().UTC().AddDate(0, 0, 14), 0)
	code := e.fx.CreateDiscountCode(ctx, org.ID, "SAVE20", models.DiscountPercentage, 20)

	result, err := e.orchestrator.ConfirmPayment(ctx, payments.CheckoutMetadata{
		PersonID:       person.ID.Hex(),
		ProgramID:      program.ID.Hex(),
		CohortID:       cohort.ID.Hex(),
		DiscountCodeID: code.ID.Hex(),
		DiscountCode:   code.Code,
		AmountOff:      2000,
		AmountDue:      8000,
	})
	if err != nil {
		t.Fatalf("ConfirmPayment: %v", err)
	}
	if result.Enrollment.AmountPaid != 8000 {
		t.Errorf("amount paid: got %d, want 8000", result.Enrollment.AmountPaid)
	}
	if result.Enrollment.PaidAt == nil {
		t.Error("expected paid_at to be set")
	}
	if result.Enrollment.SquadID == nil {
		t.Error("expected a squad allocation")
	}
}

func TestConfirmPayment_BadMetadata(t *testing.T) {
	e := newEnv(t, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := e.orchestrator.ConfirmPayment(ctx, payments.CheckoutMetadata{
		PersonID:  "not-hex",
		ProgramID: primitive.NewObjectID().Hex(),
	})
	if !errors.Is(err, payments.ErrBadMetadata) {
		t.Errorf("got %v, want ErrBadMetadata", err)
	}
}

func TestEnroll_AlumniAutoApplied(t *testing.T) {
	e := newEnv(t, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := e.fx.CreateOrganization(ctx, "Acme Coaching")
	org.AlumniDiscountEnabled = true
	org.AlumniDiscountPercent = 100
	if _, err := e.fx.DB().Collection("organizations").UpdateByID(ctx, org.ID,
		map[string]any{"$set": map[string]any{
			"alumni_discount_enabled": true,
			"alumni_discount_percent": int64(100),
		}}); err != nil {
		t.Fatalf("update org: %v", err)
	}

	person := e.fx.CreateUser(ctx, "Pat Alum", "pat@test.com", "member", org.ID)
	if _, err := e.fx.DB().Collection("users").UpdateByID(ctx, person.ID,
		map[string]any{"$set": map[string]any{"alumni": true}}); err != nil {
		t.Fatalf("update user: %v", err)
	}
	person.Alumni = true

	program := e.fx.CreateProgram(ctx, org.ID, "Leadership", models.ProgramTypeGroup, 10000, 3)
	cohort := e.fx.CreateCohort(ctx, program, "Spring", time.Now().UTC().AddDate(0, 0, 14), 0)

	// 100% alumni discount: no code entered, enrollment is immediate.
	outcome, err := e.orchestrator.Enroll(ctx, enrollment.EnrollParams{
		Person:    person,
		ProgramID: program.ID,
		CohortID:  &cohort.ID,
	})
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if outcome.Enrollment == nil {
		t.Fatal("expected an immediate enrollment under the alumni discount")
	}
}
