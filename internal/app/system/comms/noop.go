// internal/app/system/comms/noop.go
package comms

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Noop is the disabled provisioner: every channel request succeeds with an
// empty id, which callers treat as "no channel".
type Noop struct{}

func (Noop) CreateChannel(context.Context, string, []string, string) (string, error) {
	return "", nil
}

func (Noop) AddParticipants(context.Context, string, []string) error {
	return nil
}

// Dev is a development provisioner that fabricates channel ids and logs
// what a real chat backend would have done.
type Dev struct {
	Log *zap.Logger
}

func NewDev(log *zap.Logger) *Dev {
	return &Dev{Log: log}
}

func (d *Dev) CreateChannel(_ context.Context, kind string, participantIDs []string, displayName string) (string, error) {
	id := "chan_" + uuid.NewString()
	d.Log.Info("dev comms: created channel",
		zap.String("channel_id", id),
		zap.String("kind", kind),
		zap.String("display_name", displayName),
		zap.Int("participants", len(participantIDs)))
	return id, nil
}

func (d *Dev) AddParticipants(_ context.Context, channelID string, participantIDs []string) error {
	d.Log.Info("dev comms: added participants",
		zap.String("channel_id", channelID),
		zap.Int("participants", len(participantIDs)))
	return nil
}

// FromConfig resolves a provisioner from the comms_mode config value.
func FromConfig(mode string, log *zap.Logger) Provisioner {
	if mode == "dev" {
		return NewDev(log)
	}
	return Noop{}
}
