package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tetherchat/tether/internal/room/domain"
	"github.com/tetherchat/tether/internal/room/store"
	"github.com/tetherchat/tether/pkg/cryptox"
	"github.com/tetherchat/tether/pkg/idx"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func seedUser(t *testing.T, s *Store, email string) domain.User {
	t.Helper()

	now := time.Now().UTC()
	u := domain.User{
		ID:          idx.New().String(),
		UID:         "uid-" + idx.New().String(),
		Email:       email,
		CreatedAt:   now,
		LastLoginAt: now,
	}
	require.NoError(t, s.Users().CreateUser(context.Background(), u))
	return u
}

func pendingRoom(host domain.User, inviteeEmail string) domain.Room {
	now := time.Now().UTC()
	return domain.Room{
		ID:            idx.New().String(),
		Name:          "test room",
		HostID:        host.ID,
		InviteeEmail:  inviteeEmail,
		Status:        domain.RoomPending,
		CodeHash:      cryptox.FingerprintCode(cryptox.GenerateCode()),
		CodeExpiresAt: now.Add(15 * time.Minute),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestUserUniqueness(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	u := seedUser(t, s, "a@example.com")

	dupEmail := u
	dupEmail.ID = idx.New().String()
	dupEmail.UID = "uid-other"
	require.ErrorIs(t, s.Users().CreateUser(ctx, dupEmail), store.ErrAlreadyExists)

	dupUID := u
	dupUID.ID = idx.New().String()
	dupUID.Email = "other@example.com"
	require.ErrorIs(t, s.Users().CreateUser(ctx, dupUID), store.ErrAlreadyExists)
}

func TestUserLifecycle(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	u := seedUser(t, s, "a@example.com")

	got, err := s.Users().GetUserByUID(ctx, u.UID)
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)
	require.False(t, got.Disabled)
	require.Nil(t, got.DeletionRequestedAt)

	require.NoError(t, s.Users().MarkUserDisabled(ctx, u.ID, time.Now()))
	got, err = s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, got.Disabled)
	require.NotNil(t, got.DeletionRequestedAt)

	pending, err := s.Users().ListDeletionRequested(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	touch := time.Now().Add(time.Minute)
	require.NoError(t, s.Users().TouchUser(ctx, u.ID, touch))
	got, err = s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.False(t, got.Disabled)
	require.Nil(t, got.DeletionRequestedAt)
	require.WithinDuration(t, touch, got.LastLoginAt, time.Millisecond)

	require.NoError(t, s.Users().DeleteUser(ctx, u.ID))
	_, err = s.Users().GetUserByID(ctx, u.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	require.ErrorIs(t, s.Users().DeleteUser(ctx, u.ID), store.ErrNotFound)
}

func TestRoomRoundTrip(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	host := seedUser(t, s, "host@example.com")
	rm := pendingRoom(host, "guest@example.com")
	require.NoError(t, s.Rooms().CreateRoom(ctx, rm))

	got, err := s.Rooms().GetRoomByCodeHash(ctx, rm.CodeHash)
	require.NoError(t, err)
	require.Equal(t, rm.ID, got.ID)
	require.Equal(t, domain.RoomPending, got.Status)
	require.Empty(t, got.GuestID)
	require.False(t, got.Consumed)
	require.WithinDuration(t, rm.CodeExpiresAt, got.CodeExpiresAt, time.Millisecond)

	_, err = s.Rooms().GetRoomByCodeHash(ctx, "no-such-hash")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestHostOpenRoomIndexIsAuthoritative(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	host := seedUser(t, s, "host@example.com")
	require.NoError(t, s.Rooms().CreateRoom(ctx, pendingRoom(host, "g1@example.com")))

	hosting, err := s.Rooms().HostHasOpenRoom(ctx, host.ID)
	require.NoError(t, err)
	require.True(t, hosting)

	// A second open room for the same host is rejected by the partial
	// unique index even though the application check is bypassed here.
	err = s.Rooms().CreateRoom(ctx, pendingRoom(host, "g2@example.com"))
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestActivateRoomIsOneShot(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	host := seedUser(t, s, "host@example.com")
	guest := seedUser(t, s, "guest@example.com")

	rm := pendingRoom(host, guest.Email)
	require.NoError(t, s.Rooms().CreateRoom(ctx, rm))

	require.NoError(t, s.Rooms().ActivateRoom(ctx, rm.ID, guest.ID, time.Now()))

	got, err := s.Rooms().GetRoomByID(ctx, rm.ID)
	require.NoError(t, err)
	require.Equal(t, domain.RoomActive, got.Status)
	require.Equal(t, guest.ID, got.GuestID)
	require.True(t, got.Consumed)

	active, err := s.Rooms().GuestHasActiveRoom(ctx, guest.ID)
	require.NoError(t, err)
	require.True(t, active)

	// The conditional update already consumed the transition.
	err = s.Rooms().ActivateRoom(ctx, rm.ID, guest.ID, time.Now())
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestGuestActiveIndexBlocksSecondActivation(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	hostA := seedUser(t, s, "hosta@example.com")
	hostB := seedUser(t, s, "hostb@example.com")
	guest := seedUser(t, s, "guest@example.com")

	roomA := pendingRoom(hostA, guest.Email)
	roomB := pendingRoom(hostB, guest.Email)
	require.NoError(t, s.Rooms().CreateRoom(ctx, roomA))
	require.NoError(t, s.Rooms().CreateRoom(ctx, roomB))

	require.NoError(t, s.Rooms().ActivateRoom(ctx, roomA.ID, guest.ID, time.Now()))

	// Same guest activating a second room trips the partial unique
	// index on (guest_id) WHERE status = 'ACTIVE'.
	err := s.Rooms().ActivateRoom(ctx, roomB.ID, guest.ID, time.Now())
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	host := seedUser(t, s, "host@example.com")
	rm := pendingRoom(host, "guest@example.com")

	sentinel := context.Canceled
	err := s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Rooms().CreateRoom(ctx, rm); err != nil {
			return err
		}
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	_, err = s.Rooms().GetRoomByID(ctx, rm.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteStalePendingRooms(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	host := seedUser(t, s, "host@example.com")
	rm := pendingRoom(host, "guest@example.com")
	rm.CodeExpiresAt = time.Now().Add(-10 * 24 * time.Hour)
	require.NoError(t, s.Rooms().CreateRoom(ctx, rm))

	require.NoError(t, s.Rooms().DeleteStalePendingRooms(ctx, time.Now().Add(-7*24*time.Hour)))

	_, err := s.Rooms().GetRoomByID(ctx, rm.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}
