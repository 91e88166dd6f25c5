package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/fekuna/superfume-sync/internal/apperr"
	"github.com/fekuna/superfume-sync/internal/live"
	"github.com/fekuna/superfume-sync/internal/model"
	"github.com/fekuna/superfume-sync/internal/schema"
)

const userColumns = `id, email, password_hash, first_name, last_name, phone, address,
	profile_image_uri, role, updated_at`

type SQLiteRepository struct {
	DB  *sqlx.DB
	hub *live.Hub
}

func NewSQLiteRepository(db *sqlx.DB, hub *live.Hub) *SQLiteRepository {
	return &SQLiteRepository{DB: db, hub: hub}
}

func (r *SQLiteRepository) Upsert(ctx context.Context, u *model.User) (int64, error) {
	if u.ID == 0 {
		return 0, apperr.Validation("id", "required")
	}
	u.Email = strings.TrimSpace(u.Email)
	if u.Role == "" {
		u.Role = model.RoleCustomer
	}
	if u.UpdatedAt == 0 {
		u.UpdatedAt = time.Now().UnixMilli()
	}

	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return 0, apperr.Storage("upsert user", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM users WHERE email = ? AND id <> ?`, u.Email, u.ID); err != nil {
		return 0, apperr.Storage("upsert user", err)
	}

	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES (
			:id, :email, :password_hash, :first_name, :last_name, :phone, :address,
			:profile_image_uri, :role, :updated_at
		)
		ON CONFLICT (id) DO UPDATE SET
			email = excluded.email,
			password_hash = CASE WHEN excluded.password_hash = '' THEN users.password_hash ELSE excluded.password_hash END,
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			phone = excluded.phone,
			address = excluded.address,
			profile_image_uri = excluded.profile_image_uri,
			role = excluded.role,
			updated_at = excluded.updated_at
	`
	if _, err := tx.NamedExecContext(ctx, query, u); err != nil {
		return 0, apperr.Storage("upsert user", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, apperr.Storage("upsert user", err)
	}

	r.hub.Notify(schema.TableUsers)
	return u.ID, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return r.getOne(ctx, "get user", `SELECT `+userColumns+` FROM users WHERE id = ? LIMIT 1`, id)
}

// GetByEmail matches case-insensitively.
func (r *SQLiteRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx, "get user by email", `SELECT `+userColumns+` FROM users WHERE email = ? LIMIT 1`, strings.TrimSpace(email))
}

func (r *SQLiteRepository) getOne(ctx context.Context, op, query string, arg interface{}) (*model.User, error) {
	var u model.User
	if err := r.DB.GetContext(ctx, &u, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperr.Storage(op, err)
	}
	return &u, nil
}

func (r *SQLiteRepository) FindAll(ctx context.Context) ([]model.User, error) {
	users := []model.User{}
	query := `SELECT ` + userColumns + ` FROM users ORDER BY first_name COLLATE NOCASE, last_name COLLATE NOCASE, id`
	if err := r.DB.SelectContext(ctx, &users, query); err != nil {
		return nil, apperr.Storage("list users", err)
	}
	return users, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return apperr.Storage("delete user", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		r.hub.Notify(schema.TableUsers)
	}
	return nil
}

func (r *SQLiteRepository) WatchAll(ctx context.Context) (*live.Subscription[[]model.User], error) {
	return live.Watch(ctx, r.hub, []string{schema.TableUsers}, r.FindAll)
}
