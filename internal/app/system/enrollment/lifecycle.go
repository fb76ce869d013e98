// internal/app/system/enrollment/lifecycle.go

// Package enrollment holds the lifecycle controller and the orchestrator:
// the decision logic for what enrollment state should exist once a person
// enrolls (free path) or once the payment collaborator confirms payment
// (paid path).
package enrollment

import (
	"context"
	"time"

	cohortstore "github.com/dalemusser/coachhub/internal/app/store/cohorts"
	enrollmentstore "github.com/dalemusser/coachhub/internal/app/store/enrollments"
	"github.com/dalemusser/coachhub/internal/app/system/allocation"
	"github.com/dalemusser/coachhub/internal/app/system/coaching"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"go.uber.org/zap"
)

// Lifecycle creates enrollment records and their side effects. It is called
// only once price resolution yields zero, or once the payment collaborator
// has confirmed payment.
type Lifecycle struct {
	enrollments *enrollmentstore.Store
	cohorts     *cohortstore.Store
	allocator   *allocation.Allocator
	coaching    *coaching.Provisioner
	log         *zap.Logger
}

func NewLifecycle(enrollments *enrollmentstore.Store, cohorts *cohortstore.Store, allocator *allocation.Allocator, provisioner *coaching.Provisioner, log *zap.Logger) *Lifecycle {
	return &Lifecycle{
		enrollments: enrollments,
		cohorts:     cohorts,
		allocator:   allocator,
		coaching:    provisioner,
		log:         log,
	}
}

// CreateParams carries a fully loaded enrollment request: the orchestrator
// (or the payment-confirmation path) has already fetched the documents.
type CreateParams struct {
	Person             models.User
	Program            models.Program
	Cohort             *models.Cohort // nil for individual programs
	Org                models.Organization
	AmountPaid         int64
	PaidAt             *time.Time
	OptedIntoCommunity bool
}

// CreateResult is the committed enrollment plus any non-fatal side-effect
// failures. The enrollment row is the source of truth: it exists and is
// valid even when Warnings is non-empty.
type CreateResult struct {
	Enrollment models.Enrollment
	Warnings   []string
}

// Create enforces the conflict preconditions, computes status and start
// date, and runs the write sequence: enrollment row first, then squad
// allocation / cohort counter / coaching provisioning. Everything after the
// row write degrades to a warning so a crash or side-effect failure leaves
// a valid, partially provisioned enrollment rather than an orphaned squad
// membership.
//
// The precondition checks are read-then-write (no transaction); a true
// concurrent double-enroll can slip through. Documented limitation, not
// defended against here.
func (l *Lifecycle) Create(ctx context.Context, p CreateParams) (CreateResult, error) {
	exists, err := l.enrollments.ExistsForProgram(ctx, p.Person.ID, p.Program.ID,
		models.EnrollmentActive, models.EnrollmentUpcoming)
	if err != nil {
		return CreateResult{}, err
	}
	if exists {
		return CreateResult{}, ErrAlreadyEnrolled
	}

	conflicting, err := l.enrollments.HasActiveOfType(ctx, p.Person.ID, p.Program.Type)
	if err != nil {
		return CreateResult{}, err
	}
	if conflicting {
		return CreateResult{}, ErrConflictingActiveEnrollment
	}

	loc := locationFor(p.Org.TimeZone)
	now := time.Now()

	e := models.Enrollment{
		PersonID:        p.Person.ID,
		ProgramID:       p.Program.ID,
		ProgramType:     p.Program.Type,
		OrganizationID:  p.Program.OrganizationID,
		AmountPaid:      p.AmountPaid,
		PaidAt:          p.PaidAt,
		CommunityJoined: p.OptedIntoCommunity,
	}

	if p.Program.Type == models.ProgramTypeGroup && p.Cohort != nil {
		e.CohortID = &p.Cohort.ID
		e.Status, e.StartDate = GroupStart(p.Cohort.StartDate, now, loc)
	} else {
		e.Status = models.EnrollmentActive
		e.StartDate = IndividualStart(now, loc)
	}

	created, err := l.enrollments.Create(ctx, e)
	if err != nil {
		return CreateResult{}, err
	}

	result := CreateResult{Enrollment: created}

	if p.Program.Type == models.ProgramTypeGroup && p.Cohort != nil {
		squadID, err := l.allocator.AllocateSquad(ctx, p.Program, *p.Cohort, p.Person.ID)
		if err != nil {
			l.log.Error("squad allocation failed after enrollment commit",
				zap.String("enrollment_id", created.ID.Hex()),
				zap.Error(err))
			result.Warnings = append(result.Warnings, "squad allocation failed")
		} else {
			if err := l.enrollments.SetSquad(ctx, created.ID, squadID); err != nil {
				l.log.Warn("storing squad id on enrollment failed",
					zap.String("enrollment_id", created.ID.Hex()),
					zap.Error(err))
				result.Warnings = append(result.Warnings, "squad link not stored")
			} else {
				result.Enrollment.SquadID = &squadID
			}
		}

		if err := l.cohorts.IncrementEnrollment(ctx, p.Cohort.ID); err != nil {
			l.log.Warn("cohort enrollment counter increment failed",
				zap.String("cohort_id", p.Cohort.ID.Hex()),
				zap.Error(err))
			result.Warnings = append(result.Warnings, "cohort counter not updated")
		}
	}

	if p.Program.Type == models.ProgramTypeIndividual {
		warnings, err := l.coaching.Provision(ctx, p.Program, p.Person, p.OptedIntoCommunity)
		if err != nil {
			l.log.Error("coaching provisioning failed after enrollment commit",
				zap.String("enrollment_id", created.ID.Hex()),
				zap.Error(err))
			result.Warnings = append(result.Warnings, "coaching provisioning failed")
		}
		result.Warnings = append(result.Warnings, warnings...)
	}

	l.log.Info("enrollment created",
		zap.String("enrollment_id", created.ID.Hex()),
		zap.String("person_id", p.Person.ID.Hex()),
		zap.String("program_id", p.Program.ID.Hex()),
		zap.String("status", created.Status),
		zap.Int("warnings", len(result.Warnings)))

	return result, nil
}
