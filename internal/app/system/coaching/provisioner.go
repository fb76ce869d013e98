// internal/app/system/coaching/provisioner.go

// Package coaching establishes the one-to-one coach/client pairing for
// individual-program enrollments.
package coaching

import (
	"context"
	"fmt"

	coachingstore "github.com/dalemusser/coachhub/internal/app/store/coaching"
	squadstore "github.com/dalemusser/coachhub/internal/app/store/squads"
	userstore "github.com/dalemusser/coachhub/internal/app/store/users"
	"github.com/dalemusser/coachhub/internal/app/system/comms"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"go.uber.org/zap"
)

// Default plan metadata for freshly provisioned relationships. The coach
// adjusts these after the intake session.
const (
	defaultPlanName       = "standard"
	defaultCheckInCadence = "weekly"
)

type Provisioner struct {
	users    *userstore.Store
	coaching *coachingstore.Store
	squads   *squadstore.Store
	comms    comms.Provisioner
	log      *zap.Logger
}

func New(users *userstore.Store, relationships *coachingstore.Store, squads *squadstore.Store, provisioner comms.Provisioner, log *zap.Logger) *Provisioner {
	return &Provisioner{
		users:    users,
		coaching: relationships,
		squads:   squads,
		comms:    provisioner,
		log:      log,
	}
}

// Provision resolves the organization's designated coach, creates the
// relationship record, and writes the coach back onto the client's profile.
// When the program designates a standing client-community squad and the
// enrollee opted in, they are also added to that squad without a capacity
// check, since community squads are a single shared squad, not bin-packed.
//
// Optional steps (community join, chat channel) degrade to returned
// warnings; the relationship itself is the hard part.
func (p *Provisioner) Provision(ctx context.Context, program models.Program, client models.User, optedIntoCommunity bool) ([]string, error) {
	coach, err := p.users.GetOrganizationAdministrator(ctx, program.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("resolve coach: %w", err)
	}

	rel, err := p.coaching.Create(ctx, models.CoachingRelationship{
		OrganizationID: program.OrganizationID,
		ProgramID:      program.ID,
		CoachID:        coach.ID,
		ClientID:       client.ID,
		PlanName:       defaultPlanName,
		CheckInCadence: defaultCheckInCadence,
	})
	if err != nil {
		return nil, fmt.Errorf("create coaching relationship: %w", err)
	}

	if err := p.users.SetAssignedCoach(ctx, client.ID, coach.ID); err != nil {
		return nil, fmt.Errorf("assign coach on profile: %w", err)
	}

	p.log.Info("provisioned coaching relationship",
		zap.String("relationship_id", rel.ID.Hex()),
		zap.String("coach_id", coach.ID.Hex()),
		zap.String("client_id", client.ID.Hex()))

	var warnings []string

	if channelID, err := p.comms.CreateChannel(ctx, comms.KindCoaching,
		[]string{coach.ID.Hex(), client.ID.Hex()}, client.FullName); err != nil {
		p.log.Warn("coaching channel provisioning failed",
			zap.String("relationship_id", rel.ID.Hex()),
			zap.Error(err))
		warnings = append(warnings, "coaching channel provisioning failed")
	} else if channelID != "" {
		p.log.Info("provisioned coaching channel",
			zap.String("relationship_id", rel.ID.Hex()),
			zap.String("channel_id", channelID))
	}

	if program.CommunitySquadID != nil && optedIntoCommunity {
		if err := p.squads.AddMemberUnchecked(ctx, *program.CommunitySquadID, client.ID); err != nil {
			p.log.Warn("community squad join failed",
				zap.String("squad_id", program.CommunitySquadID.Hex()),
				zap.String("client_id", client.ID.Hex()),
				zap.Error(err))
			warnings = append(warnings, "community squad join failed")
		}
	}

	return warnings, nil
}
