package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/tetherchat/tether/internal/room/domain"
	"github.com/tetherchat/tether/internal/room/store"
)

type usersRepo struct {
	db dbtx
}

const userColumns = `id, uid, email, disabled, deletion_requested_at, created_at, last_login_at`

func scanUser(row *sql.Row) (domain.User, error) {
	var (
		u          domain.User
		disabled   int64
		deletionAt sql.NullInt64
		createdAt  int64
		lastLogin  int64
	)
	err := row.Scan(&u.ID, &u.UID, &u.Email, &disabled, &deletionAt, &createdAt, &lastLogin)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	u.Disabled = disabled != 0
	u.DeletionRequestedAt = fromNullMillis(deletionAt)
	u.CreatedAt = fromMillis(createdAt)
	u.LastLoginAt = fromMillis(lastLogin)
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *usersRepo) GetUserByUID(ctx context.Context, uid string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE uid = ?`, uid)
	return scanUser(row)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, uid, email, disabled, deletion_requested_at, created_at, last_login_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.UID, u.Email, boolToInt(u.Disabled),
		toNullMillis(u.DeletionRequestedAt),
		toMillis(u.CreatedAt), toMillis(u.LastLoginAt),
	)
	return mapConstraint(err)
}

func (r *usersRepo) TouchUser(ctx context.Context, id string, lastLoginAt time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users
		 SET disabled = 0, deletion_requested_at = NULL, last_login_at = ?
		 WHERE id = ?`,
		toMillis(lastLoginAt), id,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *usersRepo) MarkUserDisabled(ctx context.Context, id string, requestedAt time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET disabled = 1, deletion_requested_at = ? WHERE id = ?`,
		toMillis(requestedAt), id,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *usersRepo) DeleteUser(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return mapConstraint(err)
	}
	return requireAffected(res)
}

func (r *usersRepo) ListDeletionRequested(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE deletion_requested_at IS NOT NULL
		 ORDER BY deletion_requested_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var (
			u          domain.User
			disabled   int64
			deletionAt sql.NullInt64
			createdAt  int64
			lastLogin  int64
		)
		if err := rows.Scan(&u.ID, &u.UID, &u.Email, &disabled, &deletionAt, &createdAt, &lastLogin); err != nil {
			return nil, err
		}
		u.Disabled = disabled != 0
		u.DeletionRequestedAt = fromNullMillis(deletionAt)
		u.CreatedAt = fromMillis(createdAt)
		u.LastLoginAt = fromMillis(lastLogin)
		users = append(users, u)
	}
	return users, rows.Err()
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// requireAffected turns a zero-row update/delete into ErrNotFound.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
