package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/tetherchat/tether/internal/room/domain"
	"github.com/tetherchat/tether/internal/room/store"
	"github.com/tetherchat/tether/pkg/cryptox"
	"github.com/tetherchat/tether/pkg/identity"
	"github.com/tetherchat/tether/pkg/idx"
	"github.com/tetherchat/tether/pkg/slogx"
)

// DefaultCodeTTL is how long a freshly minted join code stays valid.
const DefaultCodeTTL = 15 * time.Minute

var (
	ErrInvalidRoomRequest = errors.New("invalid room request")
	ErrSelfInvite         = errors.New("cannot invite yourself")
	ErrSelfJoin           = errors.New("cannot join your own room")
	ErrAlreadyHosting     = errors.New("already hosting a room")
	ErrAlreadyInRoom      = errors.New("already participating in a room")
	ErrInviteeNotFound    = errors.New("invitee not found")
	ErrCodeNotFound       = errors.New("room code not found")
	ErrCodeExpired        = errors.New("room code expired")
	ErrCodeAlreadyUsed    = errors.New("room code already used")
	ErrRoomUnavailable    = errors.New("room unavailable")
	ErrNotInvitee         = errors.New("code was issued for someone else")
)

// RoomService owns the invitation state machine: code issuance at room
// creation and the one-shot PENDING→ACTIVE transition at join.
type RoomService struct {
	Store    store.Store
	Delivery CodeDelivery

	// CodeTTL overrides DefaultCodeTTL when positive.
	CodeTTL time.Duration
}

func (s *RoomService) codeTTL() time.Duration {
	if s.CodeTTL > 0 {
		return s.CodeTTL
	}
	return DefaultCodeTTL
}

// normalizeEmail applies the write-time normalization every email in the
// system goes through: trim and lowercase.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create validates the caller and invitee, mints a single-use join code
// and persists a new PENDING room. The raw code is handed to the
// delivery collaborator exactly once and never stored; only its SHA-256
// fingerprint lands in the database.
func (s *RoomService) Create(
	ctx context.Context,
	principal identity.Principal,
	name string,
	inviteeEmail string,
) (domain.Room, error) {
	log := slogx.FromContext(ctx)

	name = strings.TrimSpace(name)
	invitee := normalizeEmail(inviteeEmail)
	caller := normalizeEmail(principal.Email)

	if name == "" || invitee == "" {
		log.Warn("room creation with blank name or invitee email")
		return domain.Room{}, ErrInvalidRoomRequest
	}

	if caller == invitee {
		log.Warn("user attempted to invite themselves", slog.String("email", caller))
		return domain.Room{}, ErrSelfInvite
	}

	// Mint the secret up front; it is pure and keeps the transaction
	// short. 122 bits of entropy rendered as a UUID.
	rawCode := cryptox.GenerateCode()
	now := time.Now().UTC()

	newRoom := domain.Room{
		ID:            idx.New().String(),
		Name:          name,
		InviteeEmail:  invitee,
		Status:        domain.RoomPending,
		CodeHash:      cryptox.FingerprintCode(rawCode),
		CodeExpiresAt: now.Add(s.codeTTL()),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		host, err := activeUserByUID(ctx, tx, principal.UID)
		if err != nil {
			return err
		}
		newRoom.HostID = host.ID

		if _, err := tx.Users().GetUserByEmail(ctx, invitee); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				log.Warn("invitee not registered", slog.String("invitee_email", invitee))
				return ErrInviteeNotFound
			}
			return err
		}

		// Fast-path exclusivity checks; the partial unique indexes are
		// the authoritative guard under concurrency.
		hosting, err := tx.Rooms().HostHasOpenRoom(ctx, host.ID)
		if err != nil {
			return err
		}
		if hosting {
			log.Warn("user already hosting a room", slog.String("user_id", host.ID))
			return ErrAlreadyHosting
		}

		inRoom, err := tx.Rooms().GuestHasActiveRoom(ctx, host.ID)
		if err != nil {
			return err
		}
		if inRoom {
			log.Warn("user already guest in an active room", slog.String("user_id", host.ID))
			return ErrAlreadyInRoom
		}

		if err := tx.Rooms().CreateRoom(ctx, newRoom); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				// A concurrent create won the host-open index race.
				return ErrAlreadyHosting
			}
			return err
		}
		return nil
	})
	if err != nil {
		return domain.Room{}, err
	}

	log.Info("room created",
		slog.String("room_id", newRoom.ID),
		slog.String("host_id", newRoom.HostID),
		slog.Time("code_expires_at", newRoom.CodeExpiresAt),
	)

	// Out-of-band delivery happens after commit; a delivery failure
	// leaves a valid room whose code simply never arrived.
	if s.Delivery != nil {
		if err := s.Delivery.Deliver(ctx, newRoom, rawCode); err != nil {
			log.Error("join code delivery failed",
				slog.String("room_id", newRoom.ID),
				slog.Any("error", err),
			)
		}
	}

	return newRoom, nil
}

// Join redeems a raw join code. Every check runs inside one transaction
// and the activation itself is a conditional update, so two racing joins
// on the same code cannot both consume it.
func (s *RoomService) Join(
	ctx context.Context,
	principal identity.Principal,
	rawCode string,
) (domain.Room, error) {
	log := slogx.FromContext(ctx)

	rawCode = strings.TrimSpace(rawCode)
	if rawCode == "" {
		return domain.Room{}, ErrInvalidRoomRequest
	}

	hash := cryptox.FingerprintCode(rawCode)
	now := time.Now().UTC()

	var joined domain.Room
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		caller, err := activeUserByUID(ctx, tx, principal.UID)
		if err != nil {
			return err
		}

		rm, err := tx.Rooms().GetRoomByCodeHash(ctx, hash)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				log.Warn("join attempted with unknown code", slog.String("user_id", caller.ID))
				return ErrCodeNotFound
			}
			return err
		}

		switch {
		case now.After(rm.CodeExpiresAt):
			log.Warn("join attempted with expired code", slog.String("room_id", rm.ID))
			return ErrCodeExpired
		case rm.Consumed:
			log.Warn("join attempted with consumed code", slog.String("room_id", rm.ID))
			return ErrCodeAlreadyUsed
		case rm.Disabled || rm.Status != domain.RoomPending:
			log.Warn("join attempted on unavailable room",
				slog.String("room_id", rm.ID),
				slog.String("status", string(rm.Status)),
			)
			return ErrRoomUnavailable
		case caller.ID == rm.HostID:
			log.Warn("host attempted to join own room", slog.String("room_id", rm.ID))
			return ErrSelfJoin
		case normalizeEmail(caller.Email) != rm.InviteeEmail:
			log.Warn("join attempted by non-invitee",
				slog.String("room_id", rm.ID),
				slog.String("user_id", caller.ID),
			)
			return ErrNotInvitee
		}

		hosting, err := tx.Rooms().HostHasOpenRoom(ctx, caller.ID)
		if err != nil {
			return err
		}
		if hosting {
			return ErrAlreadyHosting
		}

		inRoom, err := tx.Rooms().GuestHasActiveRoom(ctx, caller.ID)
		if err != nil {
			return err
		}
		if inRoom {
			return ErrAlreadyInRoom
		}

		if err := tx.Rooms().ActivateRoom(ctx, rm.ID, caller.ID, now); err != nil {
			switch {
			case errors.Is(err, store.ErrNotFound):
				// The conditional update found no PENDING unconsumed
				// row: a concurrent join got there first.
				return ErrCodeAlreadyUsed
			case errors.Is(err, store.ErrAlreadyExists):
				// guest-active index: caller activated elsewhere.
				return ErrAlreadyInRoom
			}
			return err
		}

		joined, err = tx.Rooms().GetRoomByID(ctx, rm.ID)
		return err
	})
	if err != nil {
		return domain.Room{}, err
	}

	log.Info("room joined",
		slog.String("room_id", joined.ID),
		slog.String("guest_id", joined.GuestID),
	)
	return joined, nil
}

// activeUserByUID resolves a principal to a non-disabled user record.
// Disabled accounts look the same as missing ones to callers.
func activeUserByUID(ctx context.Context, tx store.Tx, uid string) (domain.User, error) {
	u, err := tx.Users().GetUserByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	if u.Disabled {
		return domain.User{}, ErrUserNotFound
	}
	return u, nil
}
