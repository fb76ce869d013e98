// internal/app/system/enrollment/orchestrator.go
package enrollment

import (
	"context"
	"fmt"
	"time"

	cohortstore "github.com/dalemusser/coachhub/internal/app/store/cohorts"
	discountstore "github.com/dalemusser/coachhub/internal/app/store/discounts"
	enrollmentstore "github.com/dalemusser/coachhub/internal/app/store/enrollments"
	organizationstore "github.com/dalemusser/coachhub/internal/app/store/organizations"
	programstore "github.com/dalemusser/coachhub/internal/app/store/programs"
	userstore "github.com/dalemusser/coachhub/internal/app/store/users"
	"github.com/dalemusser/coachhub/internal/app/system/discount"
	"github.com/dalemusser/coachhub/internal/app/system/payments"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Orchestrator is the single entry point for enrollment: it validates,
// resolves the price, and either creates the enrollment synchronously
// (free) or hands off to the payment collaborator (paid). The collaborator
// later calls ConfirmPayment, which replays the same lifecycle path.
type Orchestrator struct {
	programs    *programstore.Store
	cohorts     *cohortstore.Store
	enrollments *enrollmentstore.Store
	discounts   *discountstore.Store
	orgs        *organizationstore.Store
	users       *userstore.Store
	resolver    *discount.Resolver
	lifecycle   *Lifecycle
	payments    payments.Provider // nil when no provider is configured
	returnURL   string
	log         *zap.Logger
}

type OrchestratorDeps struct {
	Programs    *programstore.Store
	Cohorts     *cohortstore.Store
	Enrollments *enrollmentstore.Store
	Discounts   *discountstore.Store
	Orgs        *organizationstore.Store
	Users       *userstore.Store
	Resolver    *discount.Resolver
	Lifecycle   *Lifecycle
	Payments    payments.Provider
	ReturnURL   string
}

func NewOrchestrator(d OrchestratorDeps, log *zap.Logger) *Orchestrator {
	return &Orchestrator{
		programs:    d.Programs,
		cohorts:     d.Cohorts,
		enrollments: d.Enrollments,
		discounts:   d.Discounts,
		orgs:        d.Orgs,
		users:       d.Users,
		resolver:    d.Resolver,
		lifecycle:   d.Lifecycle,
		payments:    d.Payments,
		returnURL:   d.ReturnURL,
		log:         log,
	}
}

// EnrollParams is the caller's enrollment request.
type EnrollParams struct {
	Person             models.User
	ProgramID          primitive.ObjectID
	CohortID           *primitive.ObjectID // required for group programs
	DiscountCode       string              // optional, user-entered
	OptedIntoCommunity bool
}

// EnrollOutcome is either a created enrollment (free path) or a checkout
// redirect (paid path).
type EnrollOutcome struct {
	Enrollment  *models.Enrollment
	Warnings    []string
	CheckoutURL string
}

// Enroll validates the request, resolves the final price, and branches on
// it. Paid enrollments write nothing: all state needed to create the
// enrollment later travels as checkout-session metadata.
func (o *Orchestrator) Enroll(ctx context.Context, p EnrollParams) (EnrollOutcome, error) {
	program, err := o.programs.GetByID(ctx, p.ProgramID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return EnrollOutcome{}, ErrProgramUnavailable
		}
		return EnrollOutcome{}, err
	}
	if !program.Available() {
		return EnrollOutcome{}, ErrProgramUnavailable
	}

	var cohort *models.Cohort
	if program.Type == models.ProgramTypeGroup {
		cohort, err = o.validateCohort(ctx, program, p.CohortID)
		if err != nil {
			return EnrollOutcome{}, err
		}
	}

	exists, err := o.enrollments.ExistsForProgram(ctx, p.Person.ID, program.ID,
		models.EnrollmentActive, models.EnrollmentUpcoming)
	if err != nil {
		return EnrollOutcome{}, err
	}
	if exists {
		return EnrollOutcome{}, ErrAlreadyEnrolled
	}
	conflicting, err := o.enrollments.HasActiveOfType(ctx, p.Person.ID, program.Type)
	if err != nil {
		return EnrollOutcome{}, err
	}
	if conflicting {
		return EnrollOutcome{}, ErrConflictingActiveEnrollment
	}

	org, err := o.orgs.GetByID(ctx, program.OrganizationID)
	if err != nil {
		return EnrollOutcome{}, err
	}

	res, err := o.resolvePrice(ctx, p, program, org)
	if err != nil {
		return EnrollOutcome{}, err
	}

	finalAmount := program.Price
	if res.Valid {
		finalAmount = res.FinalAmount
	}

	if finalAmount == 0 {
		return o.enrollFree(ctx, p, program, cohort, org, res)
	}
	return o.startCheckout(ctx, p, program, cohort, res, finalAmount)
}

// resolvePrice applies the user-entered code, or auto-applies the implicit
// ALUMNI code when none was entered. Rejections of an explicit code surface
// as ErrInvalidDiscount, even when the list price is already zero; rejections
// of the auto-applied ALUMNI code are silently ignored (it was never asked
// for).
func (o *Orchestrator) resolvePrice(ctx context.Context, p EnrollParams, program models.Program, org models.Organization) (discount.Resolution, error) {
	if program.Price == 0 && p.DiscountCode == "" {
		return discount.Resolution{}, nil
	}

	in := discount.ResolveInput{
		Actor:          p.Person,
		Org:            org,
		TargetID:       program.ID,
		TargetKind:     discount.TargetProgram,
		OriginalAmount: program.Price,
	}

	if p.DiscountCode != "" {
		in.Code = p.DiscountCode
		res, err := o.resolver.Resolve(ctx, in)
		if err != nil {
			return discount.Resolution{}, err
		}
		if !res.Valid {
			o.log.Info("discount code rejected",
				zap.String("code", p.DiscountCode),
				zap.String("reason", res.Reason),
				zap.String("person_id", p.Person.ID.Hex()))
			return discount.Resolution{}, fmt.Errorf("%w: %s", ErrInvalidDiscount, res.Reason)
		}
		return res, nil
	}

	if p.Person.Alumni && org.AlumniDiscountEnabled {
		in.Code = models.AlumniCode
		res, err := o.resolver.Resolve(ctx, in)
		if err != nil {
			return discount.Resolution{}, err
		}
		if res.Valid {
			return res, nil
		}
		// Implicit code: rejection is not the user's problem.
	}
	return discount.Resolution{}, nil
}

func (o *Orchestrator) validateCohort(ctx context.Context, program models.Program, cohortID *primitive.ObjectID) (*models.Cohort, error) {
	if cohortID == nil {
		return nil, ErrCohortClosed
	}
	cohort, err := o.cohorts.GetByID(ctx, *cohortID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrCohortClosed
		}
		return nil, err
	}
	if cohort.ProgramID != program.ID || !cohort.EnrollmentOpen {
		return nil, ErrCohortClosed
	}
	if !cohort.HasRoom() {
		return nil, ErrCohortFull
	}
	return &cohort, nil
}

func (o *Orchestrator) enrollFree(ctx context.Context, p EnrollParams, program models.Program, cohort *models.Cohort, org models.Organization, res discount.Resolution) (EnrollOutcome, error) {
	result, err := o.lifecycle.Create(ctx, CreateParams{
		Person:             p.Person,
		Program:            program,
		Cohort:             cohort,
		Org:                org,
		AmountPaid:         0,
		OptedIntoCommunity: p.OptedIntoCommunity,
	})
	if err != nil {
		return EnrollOutcome{}, err
	}

	warnings := result.Warnings
	if res.Valid && res.Code != nil {
		if err := o.discounts.RecordUsage(ctx, models.DiscountUsage{
			CodeID:         res.Code.ID,
			Code:           res.Code.Code,
			OrganizationID: org.ID,
			PersonID:       p.Person.ID,
			TargetID:       program.ID,
			TargetKind:     discount.TargetProgram,
			AmountOff:      res.DiscountAmount,
		}); err != nil {
			o.log.Warn("recording discount usage failed",
				zap.String("code", res.Code.Code),
				zap.Error(err))
			warnings = append(warnings, "discount usage not recorded")
		}
	}

	return EnrollOutcome{Enrollment: &result.Enrollment, Warnings: warnings}, nil
}

func (o *Orchestrator) startCheckout(ctx context.Context, p EnrollParams, program models.Program, cohort *models.Cohort, res discount.Resolution, amount int64) (EnrollOutcome, error) {
	if o.payments == nil {
		return EnrollOutcome{}, ErrPaymentSetupMissing
	}

	meta := payments.CheckoutMetadata{
		PersonID:       p.Person.ID.Hex(),
		ProgramID:      program.ID.Hex(),
		AmountDue:      amount,
		CommunityOptIn: p.OptedIntoCommunity,
	}
	if cohort != nil {
		meta.CohortID = cohort.ID.Hex()
	}
	if res.Valid && res.Code != nil {
		meta.DiscountCodeID = res.Code.ID.Hex()
		meta.DiscountCode = res.Code.Code
		meta.AmountOff = res.DiscountAmount
	}

	sess, err := o.payments.CreateCheckoutSession(ctx, payments.CheckoutRequest{
		Amount:         amount,
		Currency:       program.Currency,
		Description:    program.Name,
		PersonID:       p.Person.ID.Hex(),
		IdempotencyKey: uuid.NewString(),
		Metadata:       meta.Encode(),
		ReturnURL:      o.returnURL,
	})
	if err != nil {
		return EnrollOutcome{}, fmt.Errorf("create checkout session: %w", err)
	}

	o.log.Info("checkout session created",
		zap.String("session_id", sess.ID),
		zap.String("person_id", p.Person.ID.Hex()),
		zap.String("program_id", program.ID.Hex()),
		zap.Int64("amount", amount))

	return EnrollOutcome{CheckoutURL: sess.RedirectURL}, nil
}

// ConfirmPayment replays the free-path creation once the payment
// collaborator reports success. The metadata snapshot taken at checkout
// time is authoritative for amount and discount; the documents themselves
// are re-read.
func (o *Orchestrator) ConfirmPayment(ctx context.Context, meta payments.CheckoutMetadata) (CreateResult, error) {
	personID, err := primitive.ObjectIDFromHex(meta.PersonID)
	if err != nil {
		return CreateResult{}, payments.ErrBadMetadata
	}
	programID, err := primitive.ObjectIDFromHex(meta.ProgramID)
	if err != nil {
		return CreateResult{}, payments.ErrBadMetadata
	}

	person, err := o.users.GetByID(ctx, personID)
	if err != nil {
		return CreateResult{}, err
	}
	program, err := o.programs.GetByID(ctx, programID)
	if err != nil {
		return CreateResult{}, err
	}
	org, err := o.orgs.GetByID(ctx, program.OrganizationID)
	if err != nil {
		return CreateResult{}, err
	}

	var cohort *models.Cohort
	if meta.CohortID != "" {
		cohortID, err := primitive.ObjectIDFromHex(meta.CohortID)
		if err != nil {
			return CreateResult{}, payments.ErrBadMetadata
		}
		c, err := o.cohorts.GetByID(ctx, cohortID)
		if err != nil {
			return CreateResult{}, err
		}
		cohort = &c
	}

	paidAt := time.Now().UTC()
	result, err := o.lifecycle.Create(ctx, CreateParams{
		Person:             *person,
		Program:            program,
		Cohort:             cohort,
		Org:                org,
		AmountPaid:         meta.AmountDue,
		PaidAt:             &paidAt,
		OptedIntoCommunity: meta.CommunityOptIn,
	})
	if err != nil {
		return CreateResult{}, err
	}

	if meta.DiscountCodeID != "" {
		codeID, err := primitive.ObjectIDFromHex(meta.DiscountCodeID)
		if err == nil {
			if err := o.discounts.RecordUsage(ctx, models.DiscountUsage{
				CodeID:         codeID,
				Code:           meta.DiscountCode,
				OrganizationID: org.ID,
				PersonID:       personID,
				TargetID:       programID,
				TargetKind:     discount.TargetProgram,
				AmountOff:      meta.AmountOff,
			}); err != nil {
				o.log.Warn("recording discount usage failed",
					zap.String("code", meta.DiscountCode),
					zap.Error(err))
				result.Warnings = append(result.Warnings, "discount usage not recorded")
			}
		}
	}

	return result, nil
}
