package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tetherchat/tether/internal/room/domain"
	"github.com/tetherchat/tether/internal/room/store"
	"github.com/tetherchat/tether/pkg/identity"
	"github.com/tetherchat/tether/pkg/idx"
	"github.com/tetherchat/tether/pkg/slogx"
)

var ErrUserNotFound = errors.New("user not found")

// UserService is the user directory: it maps authenticated principals
// to durable user records and owns the account detach flow.
type UserService struct {
	Store    store.Store
	Identity identity.Provider
}

// Enter creates the user record on first authentication and refreshes
// it on every later one: clears any pending disable/deletion flags and
// bumps the last-login timestamp.
func (s *UserService) Enter(ctx context.Context, principal identity.Principal) (domain.User, error) {
	log := slogx.FromContext(ctx)
	now := time.Now().UTC()
	email := normalizeEmail(principal.Email)

	var entered domain.User
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		existing, err := tx.Users().GetUserByUID(ctx, principal.UID)
		if err == nil {
			if err := tx.Users().TouchUser(ctx, existing.ID, now); err != nil {
				return err
			}
			entered, err = tx.Users().GetUserByID(ctx, existing.ID)
			return err
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		log.Info("creating user", slog.String("uid", principal.UID))
		entered = domain.User{
			ID:          idx.New().String(),
			UID:         principal.UID,
			Email:       email,
			CreatedAt:   now,
			LastLoginAt: now,
		}
		return tx.Users().CreateUser(ctx, entered)
	})
	if err != nil {
		return domain.User{}, err
	}
	return entered, nil
}

// Retrieve looks the caller up by external identity reference.
func (s *UserService) Retrieve(ctx context.Context, principal identity.Principal) (domain.User, error) {
	u, err := s.Store.Users().GetUserByUID(ctx, principal.UID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return u, nil
}

// Remove detaches the caller's account in three phases:
//  1. revoke credentials at the identity provider; failure aborts the
//     whole operation,
//  2. mark the record disabled with a deletion-requested timestamp;
//     this must commit durably,
//  3. attempt the hard delete; failure here is logged and swallowed,
//     leaving the phase-2 flags for the housekeeping pass to retry.
//
// Removing an account with no local record is an idempotent no-op.
func (s *UserService) Remove(ctx context.Context, principal identity.Principal) error {
	log := slogx.FromContext(ctx)
	uid := principal.UID

	log.Info("revoking credentials", slog.String("uid", uid))
	if err := s.Identity.Revoke(ctx, uid); err != nil {
		log.Error("credential revocation failed", slog.String("uid", uid), slog.Any("error", err))
		return fmt.Errorf("revoking credentials for %s: %w", uid, err)
	}

	u, err := s.Store.Users().GetUserByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Info("no local user record, skipping deletion", slog.String("uid", uid))
			return nil
		}
		return err
	}

	if err := s.Store.Users().MarkUserDisabled(ctx, u.ID, time.Now().UTC()); err != nil {
		return fmt.Errorf("soft-deleting user %s: %w", u.ID, err)
	}

	if err := s.Store.Users().DeleteUser(ctx, u.ID); err != nil {
		// Rooms still referencing the user block the delete; the
		// soft-delete flags are the durable record of intent and
		// housekeeping retries later.
		log.Warn("hard delete deferred, soft-delete persisted",
			slog.String("user_id", u.ID),
			slog.Any("error", err),
		)
		return nil
	}

	log.Info("user deleted", slog.String("user_id", u.ID))
	return nil
}
