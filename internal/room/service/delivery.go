package service

import (
	"context"

	"github.com/tetherchat/tether/internal/room/domain"
	"github.com/tetherchat/tether/pkg/slogx"
)

// CodeDelivery hands the raw join code to an out-of-band channel. The
// code exists only in this call and the issuing response path; it is
// never persisted, so a failed delivery cannot be replayed.
type CodeDelivery interface {
	Deliver(ctx context.Context, room domain.Room, rawCode string) error
}

// LogDelivery writes the code to the structured log. It is the default
// collaborator until a real messaging channel is wired in.
type LogDelivery struct{}

func (LogDelivery) Deliver(ctx context.Context, room domain.Room, rawCode string) error {
	slogx.FromContext(ctx).Info("room join code issued",
		"room_id", room.ID,
		"invitee_email", room.InviteeEmail,
		"code", rawCode,
		"expires_at", room.CodeExpiresAt,
	)
	return nil
}
