package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"example.com/notes-api/internal/model"
)

const minPasswordLength = 6

var (
	ErrInvalidEmail       = errors.New("invalid email")
	ErrAlreadyExists      = errors.New("already exists")
	ErrWeakPassword       = fmt.Errorf("password must be at least %d characters", minPasswordLength)
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthenticated    = errors.New("unauthenticated")
)

// Account is a user together with the stored password hash.
type Account struct {
	User         model.User
	PasswordHash string
}

type Session struct {
	TokenHash string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// UserRepo returns model.ErrNotFound for unknown users and ErrAlreadyExists
// when creating a duplicate email.
type UserRepo interface {
	ByEmail(ctx context.Context, email string) (Account, error)
	ByID(ctx context.Context, id string) (model.User, error)
	Create(ctx context.Context, a Account) (Account, error)
}

type SessionRepo interface {
	CreateSession(ctx context.Context, s Session) error
	SessionByHash(ctx context.Context, tokenHash string) (Session, error)
	DeleteSession(ctx context.Context, tokenHash string) error
}

// Service handles signup, login and session lookup.
type Service struct {
	users    UserRepo
	sessions SessionRepo
	ttl      time.Duration

	now func() time.Time
}

func New(users UserRepo, sessions SessionRepo, ttl time.Duration) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		ttl:      ttl,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

type RegisterInput struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	FullName        string `json:"full_name"`
}

// Register creates a new user if the email is not taken.
func (s *Service) Register(ctx context.Context, in RegisterInput) (model.User, error) {
	email := normalizeEmail(in.Email)
	if !isEmailLike(email) {
		return model.User{}, ErrInvalidEmail
	}
	if len(in.Password) < minPasswordLength {
		return model.User{}, ErrWeakPassword
	}
	if in.Password != in.ConfirmPassword {
		return model.User{}, ErrPasswordMismatch
	}

	if _, err := s.users.ByEmail(ctx, email); err == nil {
		return model.User{}, ErrAlreadyExists
	} else if !errors.Is(err, model.ErrNotFound) {
		return model.User{}, err
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return model.User{}, err
	}
	a, err := s.users.Create(ctx, Account{
		User: model.User{
			ID:        uuid.NewString(),
			Email:     email,
			FullName:  strings.TrimSpace(in.FullName),
			CreatedAt: s.now(),
		},
		PasswordHash: hash,
	})
	if err != nil {
		return model.User{}, err
	}
	return a.User, nil
}

// Login verifies credentials and opens a session. The returned token is
// only ever stored hashed.
func (s *Service) Login(ctx context.Context, email, password string) (string, model.User, error) {
	a, err := s.users.ByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, model.ErrNotFound) {
		return "", model.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return "", model.User{}, err
	}
	ok, err := VerifyPassword(a.PasswordHash, password)
	if err != nil {
		return "", model.User{}, err
	}
	if !ok {
		return "", model.User{}, ErrInvalidCredentials
	}

	token, err := newToken()
	if err != nil {
		return "", model.User{}, err
	}
	now := s.now()
	err = s.sessions.CreateSession(ctx, Session{
		TokenHash: hashToken(token),
		UserID:    a.User.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	})
	if err != nil {
		return "", model.User{}, err
	}
	return token, a.User, nil
}

// CurrentUser resolves a session token. Missing, unknown and expired tokens
// all yield ErrUnauthenticated.
func (s *Service) CurrentUser(ctx context.Context, token string) (model.User, error) {
	if token == "" {
		return model.User{}, ErrUnauthenticated
	}
	hash := hashToken(token)
	sess, err := s.sessions.SessionByHash(ctx, hash)
	if errors.Is(err, model.ErrNotFound) {
		return model.User{}, ErrUnauthenticated
	}
	if err != nil {
		return model.User{}, err
	}
	if !s.now().Before(sess.ExpiresAt) {
		_ = s.sessions.DeleteSession(ctx, hash)
		return model.User{}, ErrUnauthenticated
	}
	u, err := s.users.ByID(ctx, sess.UserID)
	if errors.Is(err, model.ErrNotFound) {
		return model.User{}, ErrUnauthenticated
	}
	return u, err
}

func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	err := s.sessions.DeleteSession(ctx, hashToken(token))
	if errors.Is(err, model.ErrNotFound) {
		return nil
	}
	return err
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func isEmailLike(s string) bool {
	if len(s) < 3 {
		return false
	}
	at := strings.IndexByte(s, '@')
	if at <= 0 || at == len(s)-1 {
		return false
	}
	return !strings.ContainsAny(s, " \t\n")
}

func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
