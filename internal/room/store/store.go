package store

import (
	"context"
	"errors"
	"time"

	"github.com/tetherchat/tether/internal/room/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for
// now) implement this. Sub-repositories keep the surface tidy and make
// it obvious which tables an operation touches.
type Store interface {
	Users() Users
	Rooms() Rooms

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error
	// the transaction is rolled back, otherwise it is committed. This is
	// the recommended way to run multi-step operations that must be
	// atomic (e.g. the validate-then-activate join sequence).
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases the underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It exposes the same repos plus
// Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by its opaque id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByUID returns a user by its external identity reference.
	GetUserByUID(ctx context.Context, uid string) (domain.User, error)

	// GetUserByEmail returns a user by normalized email.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by the app via ULID).
	CreateUser(ctx context.Context, u domain.User) error

	// TouchUser clears disabled/deletion_requested_at and bumps
	// last_login_at for an existing user.
	TouchUser(ctx context.Context, id string, lastLoginAt time.Time) error

	// MarkUserDisabled sets disabled and records when deletion was
	// requested. This is the durable record of intent if the hard
	// delete below fails.
	MarkUserDisabled(ctx context.Context, id string, requestedAt time.Time) error

	// DeleteUser removes the row. Returns ErrNotFound if absent.
	DeleteUser(ctx context.Context, id string) error

	// ListDeletionRequested returns users whose hard delete is still
	// outstanding, for the housekeeping reconciliation pass.
	ListDeletionRequested(ctx context.Context) ([]domain.User, error)
}

type Rooms interface {
	// CreateRoom inserts a new room. Unique constraints on code_hash and
	// the open-room-per-host partial index surface as ErrAlreadyExists.
	CreateRoom(ctx context.Context, r domain.Room) error

	// GetRoomByID returns a room by its opaque id.
	GetRoomByID(ctx context.Context, id string) (domain.Room, error)

	// GetRoomByCodeHash looks a room up by the join code fingerprint.
	GetRoomByCodeHash(ctx context.Context, hash string) (domain.Room, error)

	// HostHasOpenRoom reports whether hostID hosts a PENDING or ACTIVE
	// room. This is the fast-path check; the partial unique index is the
	// authoritative guard.
	HostHasOpenRoom(ctx context.Context, hostID string) (bool, error)

	// GuestHasActiveRoom reports whether guestID is guest in an ACTIVE
	// room.
	GuestHasActiveRoom(ctx context.Context, guestID string) (bool, error)

	// ActivateRoom performs the one-shot PENDING→ACTIVE transition:
	// binds the guest, marks the code consumed and bumps updated_at. The
	// update is conditional on status=PENDING, consumed=false and
	// disabled=false; if no row matches (a racing join got there first,
	// or the room moved on) it returns ErrNotFound.
	ActivateRoom(ctx context.Context, roomID, guestID string, now time.Time) error

	// DeleteStalePendingRooms removes PENDING rooms whose code expired
	// before the cutoff. Housekeeping only.
	DeleteStalePendingRooms(ctx context.Context, cutoff time.Time) error
}
