package notes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"example.com/notes-api/internal/auth"
	"example.com/notes-api/internal/model"
)

const uniqueViolation = "23505"

// AccountRepository stores users and login sessions in Postgres.
type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) ByEmail(ctx context.Context, email string) (auth.Account, error) {
	var a auth.Account
	err := r.db.QueryRowContext(ctx, `
		SELECT id, email, full_name, created_at, password_hash
		FROM users
		WHERE email = $1
	`, email).Scan(&a.User.ID, &a.User.Email, &a.User.FullName, &a.User.CreatedAt, &a.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.Account{}, model.ErrNotFound
	}
	return a, err
}

func (r *AccountRepository) ByID(ctx context.Context, id string) (model.User, error) {
	var u model.User
	err := r.db.QueryRowContext(ctx, `
		SELECT id, email, full_name, created_at
		FROM users
		WHERE id = $1
	`, id).Scan(&u.ID, &u.Email, &u.FullName, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, model.ErrNotFound
	}
	return u, err
}

func (r *AccountRepository) Create(ctx context.Context, a auth.Account) (auth.Account, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, full_name, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, a.User.ID, a.User.Email, a.User.FullName, a.PasswordHash, a.User.CreatedAt)
	if isUniqueViolation(err) {
		return auth.Account{}, auth.ErrAlreadyExists
	}
	if err != nil {
		return auth.Account{}, fmt.Errorf("insert user: %w", err)
	}
	return a, nil
}

func (r *AccountRepository) CreateSession(ctx context.Context, s auth.Session) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (token_hash, user_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
	`, s.TokenHash, s.UserID, s.CreatedAt, s.ExpiresAt)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *AccountRepository) SessionByHash(ctx context.Context, hash string) (auth.Session, error) {
	var s auth.Session
	err := r.db.QueryRowContext(ctx, `
		SELECT token_hash, user_id, created_at, expires_at
		FROM sessions
		WHERE token_hash = $1
	`, hash).Scan(&s.TokenHash, &s.UserID, &s.CreatedAt, &s.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.Session{}, model.ErrNotFound
	}
	return s, err
}

func (r *AccountRepository) DeleteSession(ctx context.Context, hash string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE token_hash = $1`, hash)
	if err != nil {
		return err
	}
	a, _ := res.RowsAffected()
	if a == 0 {
		return model.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
