// internal/app/system/allocation/allocator.go

// Package allocation places enrollees into squads: first-fit over the
// cohort's existing squads, with a new auto-created squad as the fallback.
// The capacity check and the membership append happen in one guarded write
// (squadstore.AddMemberGuarded), so capacity is never exceeded; losing that
// race just moves the scan along.
package allocation

import (
	"context"
	"errors"

	squadstore "github.com/dalemusser/coachhub/internal/app/store/squads"
	userstore "github.com/dalemusser/coachhub/internal/app/store/users"
	"github.com/dalemusser/coachhub/internal/app/system/comms"
	"github.com/dalemusser/coachhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ErrContended is returned when every attempt lost the capacity race. The
// whole request is safe to retry: membership adds are idempotent.
var ErrContended = errors.New("squad allocation contended; retry")

// maxAttempts bounds the rescan loop. Each attempt re-reads the squad list,
// so contention has to persist across several round trips to exhaust it.
const maxAttempts = 3

type Allocator struct {
	squads *squadstore.Store
	users  *userstore.Store
	comms  comms.Provisioner
	log    *zap.Logger
}

func New(squads *squadstore.Store, users *userstore.Store, provisioner comms.Provisioner, log *zap.Logger) *Allocator {
	return &Allocator{squads: squads, users: users, comms: provisioner, log: log}
}

// AllocateSquad returns the id of the squad the person now belongs to,
// creating one if every existing squad is full. Idempotent: allocating the
// same person twice lands them in the same squad with a single membership.
func (a *Allocator) AllocateSquad(ctx context.Context, program models.Program, cohort models.Cohort, personID primitive.ObjectID) (primitive.ObjectID, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		squads, err := a.squads.ListByCohort(ctx, cohort.ID)
		if err != nil {
			return primitive.NilObjectID, err
		}

		// Retry no-op: if the person already landed somewhere, that squad
		// wins regardless of fit order.
		for _, sq := range squads {
			if sq.HasMember(personID) {
				return sq.ID, nil
			}
		}

		// First fit in ordinal order. The guarded write re-checks capacity
		// at commit time, so a stale scan can only cost us a rescan, never
		// an over-full squad.
		for _, sq := range squads {
			if len(sq.MemberIDs) >= sq.Capacity {
				continue
			}
			ok, err := a.squads.AddMemberGuarded(ctx, sq.ID, personID)
			if err != nil {
				return primitive.NilObjectID, err
			}
			if ok {
				return sq.ID, nil
			}
			// Filled up since the scan; try the next one.
		}

		created, err := a.createSquad(ctx, program, cohort, len(squads)+1)
		if err != nil {
			if wafflemongo.IsDup(err) {
				// Another allocator claimed this ordinal; rescan.
				continue
			}
			return primitive.NilObjectID, err
		}

		ok, err := a.squads.AddMemberGuarded(ctx, created.ID, personID)
		if err != nil {
			return primitive.NilObjectID, err
		}
		if ok {
			return created.ID, nil
		}
		// A brand-new squad filled before we could join it; rescan.
	}
	return primitive.NilObjectID, ErrContended
}

func (a *Allocator) createSquad(ctx context.Context, program models.Program, cohort models.Cohort, number int) (models.Squad, error) {
	sq := models.Squad{
		OrganizationID: program.OrganizationID,
		ProgramID:      program.ID,
		CohortID:       &cohort.ID,
		Name:           squadstore.SquadName(program.Name, number),
		Number:         number,
		Capacity:       program.SquadCapacity,
		CoachID:        a.coachFor(ctx, program, number),
		AutoCreated:    true,
	}

	created, err := a.squads.Create(ctx, sq)
	if err != nil {
		return models.Squad{}, err
	}

	a.log.Info("created squad",
		zap.String("squad_id", created.ID.Hex()),
		zap.String("cohort_id", cohort.ID.Hex()),
		zap.Int("number", created.Number),
		zap.Int("capacity", created.Capacity))

	a.provisionChannel(ctx, &created)
	return created, nil
}

// coachFor picks the coach for a new squad. Coach-in-squad mode resolves
// the organization's administrator; a fixed coach pool is assigned round
// robin keyed by the squad ordinal. Round robin by ordinal is deterministic
// and needs no counters; it does not rebalance if the pool changes later
// (known trade-off).
func (a *Allocator) coachFor(ctx context.Context, program models.Program, number int) *primitive.ObjectID {
	if program.CoachInSquads {
		admin, err := a.users.GetOrganizationAdministrator(ctx, program.OrganizationID)
		if err != nil {
			a.log.Warn("coach-in-squad admin lookup failed; creating peer-only squad",
				zap.String("program_id", program.ID.Hex()),
				zap.Error(err))
			return nil
		}
		return &admin.ID
	}
	return CoachForOrdinal(program.AssignedCoachIDs, number)
}

// CoachForOrdinal returns coaches[(ordinal-1) mod len], or nil for an empty
// pool. Squads 1..6 over coaches [A,B,C] get A,B,C,A,B,C.
func CoachForOrdinal(coaches []primitive.ObjectID, ordinal int) *primitive.ObjectID {
	if len(coaches) == 0 || ordinal < 1 {
		return nil
	}
	id := coaches[(ordinal-1)%len(coaches)]
	return &id
}

// provisionChannel is best-effort: a squad without a chat channel is still
// a valid squad.
func (a *Allocator) provisionChannel(ctx context.Context, sq *models.Squad) {
	var participants []string
	if sq.CoachID != nil {
		participants = append(participants, sq.CoachID.Hex())
	}
	channelID, err := a.comms.CreateChannel(ctx, comms.KindSquad, participants, sq.Name)
	if err != nil {
		a.log.Warn("squad channel provisioning failed",
			zap.String("squad_id", sq.ID.Hex()),
			zap.Error(err))
		return
	}
	if channelID == "" {
		return
	}
	if err := a.squads.SetChannel(ctx, sq.ID, channelID); err != nil {
		a.log.Warn("storing squad channel id failed",
			zap.String("squad_id", sq.ID.Hex()),
			zap.String("channel_id", channelID),
			zap.Error(err))
		return
	}
	sq.ChannelID = channelID
}
