package roomsdk

import "time"

// CreateRoomRequest is the body for POST /api/room/create-room.
type CreateRoomRequest struct {
	Name         string `json:"name"`
	InviteeEmail string `json:"inviteeEmail"`
}

// JoinRoomRequest is the body for POST /api/room/join-room.
type JoinRoomRequest struct {
	RoomKeyCode string `json:"roomKeyCode"`
}

// RoomResponse is the API shape of a room. The raw join code is never
// part of it; the code travels out-of-band.
type RoomResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	HostID        string    `json:"hostId"`
	InviteeEmail  string    `json:"inviteeEmail"`
	GuestID       string    `json:"guestId,omitempty"`
	Status        string    `json:"status"`
	CodeExpiresAt time.Time `json:"codeExpiresAt"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// UserResponse is the API shape of a user record.
type UserResponse struct {
	ID          string    `json:"id"`
	UID         string    `json:"uid"`
	Email       string    `json:"email"`
	Disabled    bool      `json:"disabled"`
	CreatedAt   time.Time `json:"createdAt"`
	LastLoginAt time.Time `json:"lastLoginAt"`
}

// HealthResponse is reported by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks carries per-dependency readiness detail.
type HealthChecks struct {
	Database string `json:"database"`
}

// ErrorResponse is the uniform error body. Error is a stable machine
// code; ErrorDescription is a stable human-readable reason.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}
