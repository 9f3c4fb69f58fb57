package postgres

import (
	"context"
	"database/sql"
	"errors"

	appauth "stock-alerts/internal/application/auth"
	"stock-alerts/internal/domain/auth"
)

// AuthRepo 提供使用者帳號的 Postgres 存取。
type AuthRepo struct {
	db *sql.DB
}

// NewAuthRepo 建立使用者 repo。
func NewAuthRepo(db *sql.DB) *AuthRepo {
	return &AuthRepo{db: db}
}

// Create 建立使用者；username 或 email 已存在時回傳 ErrUserExists。
func (r *AuthRepo) Create(ctx context.Context, user auth.User) (int64, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 OR email = $2);`,
		user.Username, user.Email,
	).Scan(&exists)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, appauth.ErrUserExists
	}

	var id int64
	err = r.db.QueryRowContext(ctx,
		`INSERT INTO users (username, email, password_hash, created_at) VALUES ($1, $2, $3, NOW()) RETURNING id;`,
		user.Username, user.Email, user.PasswordHash,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// FindByUsername 依 username 查詢使用者。
func (r *AuthRepo) FindByUsername(ctx context.Context, username string) (auth.User, error) {
	const q = `SELECT id, username, email, password_hash, created_at FROM users WHERE username = $1;`
	return r.scanUser(r.db.QueryRowContext(ctx, q, username))
}

// FindByID 依 ID 查詢使用者。
func (r *AuthRepo) FindByID(ctx context.Context, id int64) (auth.User, error) {
	const q = `SELECT id, username, email, password_hash, created_at FROM users WHERE id = $1;`
	return r.scanUser(r.db.QueryRowContext(ctx, q, id))
}

// UpdateEmail 更新 email；新 email 已被他人使用時回傳 ErrUserExists。
func (r *AuthRepo) UpdateEmail(ctx context.Context, userID int64, email string) error {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 AND id <> $2);`,
		email, userID,
	).Scan(&exists)
	if err != nil {
		return err
	}
	if exists {
		return appauth.ErrUserExists
	}

	_, err = r.db.ExecContext(ctx, `UPDATE users SET email = $1 WHERE id = $2;`, email, userID)
	return err
}

func (r *AuthRepo) scanUser(row *sql.Row) (auth.User, error) {
	var user auth.User
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.User{}, errors.New("user not found")
	}
	if err != nil {
		return auth.User{}, err
	}
	return user, nil
}
