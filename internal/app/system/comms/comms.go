// internal/app/system/comms/comms.go

// Package comms abstracts the external chat/communication collaborator.
// Channel provisioning is always best-effort: a squad or coaching
// relationship is valid without a channel, so callers log failures and
// continue.
package comms

import "context"

// Channel kinds.
const (
	KindSquad    = "squad"
	KindCoaching = "coaching"
)

// Provisioner creates chat channels and manages their participants.
type Provisioner interface {
	// CreateChannel provisions a channel and returns its id. An empty id
	// with a nil error means provisioning is disabled.
	CreateChannel(ctx context.Context, kind string, participantIDs []string, displayName string) (string, error)
	AddParticipants(ctx context.Context, channelID string, participantIDs []string) error
}
