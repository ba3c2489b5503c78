package domain

import "time"

// RoomStatus is the room's protocol state.
type RoomStatus string

const (
	// RoomPending is the initial state: the invitation is outstanding.
	RoomPending RoomStatus = "PENDING"
	// RoomActive is reached exactly once, when the invitee joins.
	RoomActive RoomStatus = "ACTIVE"
)

// Room is the two-party invitation unit. HostID is set at creation and
// immutable; GuestID stays empty until a successful join and never
// changes afterwards. CodeHash is the SHA-256 fingerprint of the
// single-use join code; the raw code is never persisted.
type Room struct {
	ID            string
	Name          string
	HostID        string
	InviteeEmail  string // normalized lowercase
	GuestID       string // empty until joined
	Status        RoomStatus
	CodeHash      string
	CodeExpiresAt time.Time
	Consumed      bool
	Disabled      bool

	// Reserved for a future archival flow; no operation sets it yet.
	DeletionRequestedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
