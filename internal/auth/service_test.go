package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/notes-api/internal/model"
)

type stubUsers struct {
	byEmailFn func(context.Context, string) (Account, error)
	byIDFn    func(context.Context, string) (model.User, error)
	createFn  func(context.Context, Account) (Account, error)
}

func (s stubUsers) ByEmail(ctx context.Context, email string) (Account, error) {
	return s.byEmailFn(ctx, email)
}
func (s stubUsers) ByID(ctx context.Context, id string) (model.User, error) { return s.byIDFn(ctx, id) }
func (s stubUsers) Create(ctx context.Context, a Account) (Account, error) {
	return s.createFn(ctx, a)
}

type mapSessions map[string]Session

func (m mapSessions) CreateSession(_ context.Context, s Session) error {
	m[s.TokenHash] = s
	return nil
}
func (m mapSessions) SessionByHash(_ context.Context, h string) (Session, error) {
	s, ok := m[h]
	if !ok {
		return Session{}, model.ErrNotFound
	}
	return s, nil
}
func (m mapSessions) DeleteSession(_ context.Context, h string) error {
	delete(m, h)
	return nil
}

func notFoundUsers() stubUsers {
	return stubUsers{
		byEmailFn: func(context.Context, string) (Account, error) { return Account{}, model.ErrNotFound },
		byIDFn:    func(context.Context, string) (model.User, error) { return model.User{}, model.ErrNotFound },
		createFn:  func(_ context.Context, a Account) (Account, error) { return a, nil },
	}
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()
	valid := RegisterInput{Email: " X@Y.io ", Password: "secret1", ConfirmPassword: "secret1", FullName: " Ada "}

	t.Run("invalid email", func(t *testing.T) {
		svc := New(notFoundUsers(), mapSessions{}, time.Hour)
		in := valid
		in.Email = "bad"
		_, err := svc.Register(ctx, in)
		require.ErrorIs(t, err, ErrInvalidEmail)
	})

	t.Run("short password", func(t *testing.T) {
		svc := New(notFoundUsers(), mapSessions{}, time.Hour)
		in := valid
		in.Password, in.ConfirmPassword = "abc", "abc"
		_, err := svc.Register(ctx, in)
		require.ErrorIs(t, err, ErrWeakPassword)
	})

	t.Run("confirmation mismatch", func(t *testing.T) {
		svc := New(notFoundUsers(), mapSessions{}, time.Hour)
		in := valid
		in.ConfirmPassword = "other12"
		_, err := svc.Register(ctx, in)
		require.ErrorIs(t, err, ErrPasswordMismatch)
	})

	t.Run("already exists", func(t *testing.T) {
		users := notFoundUsers()
		users.byEmailFn = func(_ context.Context, email string) (Account, error) {
			return Account{User: model.User{ID: "7", Email: email}}, nil
		}
		_, err := New(users, mapSessions{}, time.Hour).Register(ctx, valid)
		require.ErrorIs(t, err, ErrAlreadyExists)
	})

	t.Run("repo error on lookup", func(t *testing.T) {
		boom := errors.New("boom")
		users := notFoundUsers()
		users.byEmailFn = func(context.Context, string) (Account, error) { return Account{}, boom }
		_, err := New(users, mapSessions{}, time.Hour).Register(ctx, valid)
		require.ErrorIs(t, err, boom)
	})

	t.Run("create success after not found", func(t *testing.T) {
		var stored Account
		users := notFoundUsers()
		users.createFn = func(_ context.Context, a Account) (Account, error) {
			stored = a
			return a, nil
		}
		u, err := New(users, mapSessions{}, time.Hour).Register(ctx, valid)
		require.NoError(t, err)
		require.Equal(t, "x@y.io", u.Email)
		require.Equal(t, "Ada", u.FullName)
		require.NotEmpty(t, u.ID)

		ok, err := VerifyPassword(stored.PasswordHash, "secret1")
		require.NoError(t, err)
		require.True(t, ok)
	})
}

func registeredUsers(t *testing.T) stubUsers {
	hash, err := HashPassword("secret1")
	require.NoError(t, err)
	acct := Account{User: model.User{ID: "u1", Email: "a@b.c"}, PasswordHash: hash}
	return stubUsers{
		byEmailFn: func(_ context.Context, email string) (Account, error) {
			if email != acct.User.Email {
				return Account{}, model.ErrNotFound
			}
			return acct, nil
		},
		byIDFn: func(_ context.Context, id string) (model.User, error) {
			if id != acct.User.ID {
				return model.User{}, model.ErrNotFound
			}
			return acct.User, nil
		},
		createFn: func(_ context.Context, a Account) (Account, error) { return a, nil },
	}
}

func TestService_LoginAndCurrentUser(t *testing.T) {
	ctx := context.Background()
	sessions := mapSessions{}
	svc := New(registeredUsers(t), sessions, time.Hour)

	_, _, err := svc.Login(ctx, "a@b.c", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.Login(ctx, "nobody@b.c", "secret1")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	token, u, err := svc.Login(ctx, " A@B.C ", "secret1")
	require.NoError(t, err)
	require.Equal(t, "u1", u.ID)
	require.NotEmpty(t, token)
	require.NotContains(t, sessions, token, "tokens are stored hashed")

	got, err := svc.CurrentUser(ctx, token)
	require.NoError(t, err)
	require.Equal(t, "u1", got.ID)

	_, err = svc.CurrentUser(ctx, "")
	require.ErrorIs(t, err, ErrUnauthenticated)
	_, err = svc.CurrentUser(ctx, "forged")
	require.ErrorIs(t, err, ErrUnauthenticated)

	require.NoError(t, svc.Logout(ctx, token))
	_, err = svc.CurrentUser(ctx, token)
	require.ErrorIs(t, err, ErrUnauthenticated)
	require.NoError(t, svc.Logout(ctx, token))
}

func TestService_ExpiredSession(t *testing.T) {
	ctx := context.Background()
	sessions := mapSessions{}
	svc := New(registeredUsers(t), sessions, time.Minute)
	start := time.Unix(1000, 0).UTC()
	svc.now = func() time.Time { return start }

	token, _, err := svc.Login(ctx, "a@b.c", "secret1")
	require.NoError(t, err)

	svc.now = func() time.Time { return start.Add(time.Minute) }
	_, err = svc.CurrentUser(ctx, token)
	require.ErrorIs(t, err, ErrUnauthenticated)
	require.Empty(t, sessions)
}

func TestMiddleware_AttachesUser(t *testing.T) {
	svc := New(registeredUsers(t), mapSessions{}, time.Hour)
	token, _, err := svc.Login(context.Background(), "a@b.c", "secret1")
	require.NoError(t, err)

	var seen model.User
	h := Middleware(svc, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserFrom(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.Equal(t, "u1", seen.ID)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.Equal(t, "u1", seen.ID)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer nope")
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.False(t, seen.Authenticated())
}

func TestPassword_HashAndVerify(t *testing.T) {
	_, err := HashPassword("")
	require.Error(t, err)

	h1, err := HashPassword("pw")
	require.NoError(t, err)
	h2, err := HashPassword("pw")
	require.NoError(t, err)
	require.NotEqual(t, h1, h2, "salted")

	ok, err := VerifyPassword(h1, "pw")
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = VerifyPassword(h1, "px")
	require.NoError(t, err)
	require.False(t, ok)

	for _, bad := range []string{"", "$bcrypt$x", "$argon2id$v=1$m=1,t=1,p=1$AA$AA", "$argon2id$v=19$m=x$AA$AA"} {
		_, err := VerifyPassword(bad, "pw")
		require.Error(t, err, bad)
	}
}
