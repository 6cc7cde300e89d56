package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/jms1308/kitobim/internal/domain"
)

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = `id, username, phone, password_hash, created_at`

// Create inserts u. A taken phone number yields ErrDuplicate.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	if u.CreatedAt == "" {
		u.CreatedAt = domain.Now()
	}
	_, err := r.DB.ExecContext(ctx, r.DB.Rebind(`
		INSERT INTO users(id, username, phone, password_hash, created_at)
		VALUES(?, ?, ?, ?, ?)
	`), u.ID, u.Username, u.Phone, u.Hash, u.CreatedAt)
	return translate(err, "users.create")
}

func (r *UserRepo) ByPhone(ctx context.Context, phone string) (*domain.User, error) {
	var u domain.User
	err := r.DB.GetContext(ctx, &u, r.DB.Rebind(`SELECT `+userColumns+` FROM users WHERE phone = ?`), phone)
	if err != nil {
		return nil, translate(err, "users.by_phone")
	}
	return &u, nil
}

func (r *UserRepo) ByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := r.DB.GetContext(ctx, &u, r.DB.Rebind(`SELECT `+userColumns+` FROM users WHERE id = ?`), id)
	if err != nil {
		return nil, translate(err, "users.by_id")
	}
	return &u, nil
}

func (r *UserRepo) BindSession(ctx context.Context, sid, userID string) error {
	now := domain.Now()
	_, err := r.DB.ExecContext(ctx, r.DB.Rebind(`
		INSERT INTO sessions(id, user_id, created_at, last_seen)
		VALUES(?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET user_id = excluded.user_id, last_seen = excluded.last_seen
	`), sid, userID, now, now)
	return translate(err, "sessions.bind")
}

// SessionUser resolves the user bound to sid, ErrNotFound when none is.
func (r *UserRepo) SessionUser(ctx context.Context, sid string) (*domain.User, error) {
	var u domain.User
	err := r.DB.GetContext(ctx, &u, r.DB.Rebind(`
		SELECT u.id, u.username, u.phone, u.password_hash, u.created_at
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.id = ?
	`), sid)
	if err != nil {
		return nil, translate(err, "sessions.user")
	}
	return &u, nil
}

// TouchSession records activity so the janitor keeps the row.
func (r *UserRepo) TouchSession(ctx context.Context, sid string) error {
	_, err := r.DB.ExecContext(ctx, r.DB.Rebind(`UPDATE sessions SET last_seen = ? WHERE id = ?`), domain.Now(), sid)
	return translate(err, "sessions.touch")
}

func (r *UserRepo) UnbindSession(ctx context.Context, sid string) error {
	_, err := r.DB.ExecContext(ctx, r.DB.Rebind(`UPDATE sessions SET user_id = NULL, last_seen = ? WHERE id = ?`), domain.Now(), sid)
	return translate(err, "sessions.unbind")
}

// PruneSessions deletes sessions that are logged out or idle since before.
func (r *UserRepo) PruneSessions(ctx context.Context, before string) (int64, error) {
	res, err := r.DB.ExecContext(ctx, r.DB.Rebind(`DELETE FROM sessions WHERE user_id IS NULL OR last_seen < ?`), before)
	if err != nil {
		return 0, translate(err, "sessions.prune")
	}
	return res.RowsAffected()
}
