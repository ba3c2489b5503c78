package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/tetherchat/tether/internal/room/domain"
)

type roomsRepo struct {
	db dbtx
}

const roomColumns = `id, name, host_id, invitee_email, guest_id, status,
	code_hash, code_expires_at, consumed, disabled, deletion_requested_at,
	created_at, updated_at`

func scanRoom(row *sql.Row) (domain.Room, error) {
	var (
		rm         domain.Room
		guestID    sql.NullString
		status     string
		expiresAt  int64
		consumed   int64
		disabled   int64
		deletionAt sql.NullInt64
		createdAt  int64
		updatedAt  int64
	)
	err := row.Scan(
		&rm.ID, &rm.Name, &rm.HostID, &rm.InviteeEmail, &guestID, &status,
		&rm.CodeHash, &expiresAt, &consumed, &disabled, &deletionAt,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return domain.Room{}, mapNotFound(err)
	}
	rm.GuestID = fromNullString(guestID)
	rm.Status = domain.RoomStatus(status)
	rm.CodeExpiresAt = fromMillis(expiresAt)
	rm.Consumed = consumed != 0
	rm.Disabled = disabled != 0
	rm.DeletionRequestedAt = fromNullMillis(deletionAt)
	rm.CreatedAt = fromMillis(createdAt)
	rm.UpdatedAt = fromMillis(updatedAt)
	return rm, nil
}

func (r *roomsRepo) CreateRoom(ctx context.Context, rm domain.Room) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO rooms (id, name, host_id, invitee_email, guest_id, status,
		    code_hash, code_expires_at, consumed, disabled, deletion_requested_at,
		    created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rm.ID, rm.Name, rm.HostID, rm.InviteeEmail, toNullString(rm.GuestID),
		string(rm.Status), rm.CodeHash, toMillis(rm.CodeExpiresAt),
		boolToInt(rm.Consumed), boolToInt(rm.Disabled),
		toNullMillis(rm.DeletionRequestedAt),
		toMillis(rm.CreatedAt), toMillis(rm.UpdatedAt),
	)
	return mapConstraint(err)
}

func (r *roomsRepo) GetRoomByID(ctx context.Context, id string) (domain.Room, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+roomColumns+` FROM rooms WHERE id = ?`, id)
	return scanRoom(row)
}

func (r *roomsRepo) GetRoomByCodeHash(ctx context.Context, hash string) (domain.Room, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+roomColumns+` FROM rooms WHERE code_hash = ?`, hash)
	return scanRoom(row)
}

func (r *roomsRepo) HostHasOpenRoom(ctx context.Context, hostID string) (bool, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM rooms
		 WHERE host_id = ? AND status IN ('PENDING', 'ACTIVE')`, hostID).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *roomsRepo) GuestHasActiveRoom(ctx context.Context, guestID string) (bool, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM rooms
		 WHERE guest_id = ? AND status = 'ACTIVE'`, guestID).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *roomsRepo) ActivateRoom(ctx context.Context, roomID, guestID string, now time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE rooms
		 SET guest_id = ?, status = 'ACTIVE', consumed = 1, updated_at = ?
		 WHERE id = ? AND status = 'PENDING' AND consumed = 0 AND disabled = 0`,
		guestID, toMillis(now), roomID,
	)
	if err != nil {
		return mapConstraint(err)
	}
	// Zero rows means a concurrent join won the race or the room left
	// PENDING; either way the transition is gone.
	return requireAffected(res)
}

func (r *roomsRepo) DeleteStalePendingRooms(ctx context.Context, cutoff time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM rooms
		 WHERE status = 'PENDING' AND code_expires_at < ?`,
		toMillis(cutoff),
	)
	return err
}
