package memstore

import (
	"context"

	"example.com/notes-api/internal/auth"
	"example.com/notes-api/internal/model"
)

func (s *Store) ByEmail(_ context.Context, email string) (auth.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.users {
		if a.User.Email == email {
			return a, nil
		}
	}
	return auth.Account{}, model.ErrNotFound
}

func (s *Store) ByID(_ context.Context, id string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.users[id]
	if !ok {
		return model.User{}, model.ErrNotFound
	}
	return a.User, nil
}

func (s *Store) Create(_ context.Context, a auth.Account) (auth.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.User.Email == a.User.Email {
			return auth.Account{}, auth.ErrAlreadyExists
		}
	}
	s.users[a.User.ID] = a
	return a, nil
}

func (s *Store) CreateSession(_ context.Context, sess auth.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.TokenHash] = sess
	return nil
}

func (s *Store) SessionByHash(_ context.Context, hash string) (auth.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[hash]
	if !ok {
		return auth.Session{}, model.ErrNotFound
	}
	return sess, nil
}

func (s *Store) DeleteSession(_ context.Context, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[hash]; !ok {
		return model.ErrNotFound
	}
	delete(s.sessions, hash)
	return nil
}
