// Package memory is an in-process implementation of the store ports, used
// for development and tests.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"spendwise/internal/core"
	"spendwise/internal/store"
)

type Store struct {
	mu       sync.Mutex
	now      func() time.Time
	expenses map[string]core.Expense
	users    map[string]core.User
	sessions map[string]core.Session
}

var _ store.Backend = (*Store)(nil)

func New() *Store {
	return &Store{
		now:      time.Now,
		expenses: make(map[string]core.Expense),
		users:    make(map[string]core.User),
		sessions: make(map[string]core.Session),
	}
}

// WithClock replaces the timestamp source. Intended for tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) List(_ context.Context, userID string) ([]core.Expense, error) {
	if userID == "" {
		return []core.Expense{}, nil
	}
	s.mu.Lock()
	out := make([]core.Expense, 0)
	for _, e := range s.expenses {
		if e.UserID == userID {
			out = append(out, copyExpense(e))
		}
	}
	s.mu.Unlock()

	store.SortExpenses(out)
	return out, nil
}

func (s *Store) Get(_ context.Context, userID, id string) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.expenses[id]
	if !ok || userID == "" || e.UserID != userID {
		return core.Expense{}, core.ErrNotFound
	}
	return copyExpense(e), nil
}

func (s *Store) Create(_ context.Context, userID string, data core.CreateExpenseData) (core.Expense, error) {
	if userID == "" {
		return core.Expense{}, core.ErrNotAuthenticated
	}
	if err := data.Validate(); err != nil {
		return core.Expense{}, err
	}

	now := s.now().UTC()
	e := core.Expense{
		ID:          uuid.NewString(),
		UserID:      userID,
		Amount:      data.Amount,
		Category:    data.Category,
		ExpenseDate: data.ExpenseDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if data.Note != nil && *data.Note != "" {
		n := *data.Note
		e.Note = &n
	}

	s.mu.Lock()
	s.expenses[e.ID] = e
	s.mu.Unlock()
	return copyExpense(e), nil
}

func (s *Store) Update(_ context.Context, userID string, data core.UpdateExpenseData) (core.Expense, error) {
	if userID == "" {
		return core.Expense{}, core.ErrNotAuthenticated
	}
	if err := data.Validate(); err != nil {
		return core.Expense{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.expenses[data.ID]
	if !ok || e.UserID != userID {
		return core.Expense{}, core.ErrNotFound
	}
	data.Apply(&e)
	e.UpdatedAt = s.now().UTC()
	s.expenses[e.ID] = e
	return copyExpense(e), nil
}

func (s *Store) Delete(_ context.Context, userID, id string) error {
	if userID == "" {
		return core.ErrNotAuthenticated
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.expenses[id]
	if !ok || e.UserID != userID {
		return core.ErrNotFound
	}
	delete(s.expenses, id)
	return nil
}

func (s *Store) CreateUser(_ context.Context, username, passwordHash string) (core.User, error) {
	username = strings.TrimSpace(username)
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == username {
			return core.User{}, store.ErrUserExists
		}
	}
	u := core.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    s.now().UTC(),
	}
	s.users[u.ID] = u
	return u, nil
}

func (s *Store) UserByUsername(_ context.Context, username string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return core.User{}, store.ErrUserNotFound
}

func (s *Store) UserByID(_ context.Context, id string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return core.User{}, store.ErrUserNotFound
}

func (s *Store) UserCount(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users), nil
}

func (s *Store) CreateSession(_ context.Context, sess core.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.Token] = sess
	return nil
}

func (s *Store) Session(_ context.Context, token string) (core.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[token]; ok {
		return sess, nil
	}
	return core.Session{}, store.ErrSessionNotFound
}

func (s *Store) RenewSession(_ context.Context, token string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		return store.ErrSessionNotFound
	}
	sess.ExpiresAt = expiresAt
	s.sessions[token] = sess
	return nil
}

func (s *Store) DeleteSession(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

func (s *Store) CleanExpiredSessions(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for token, sess := range s.sessions {
		if !sess.ExpiresAt.After(now) {
			delete(s.sessions, token)
			removed++
		}
	}
	return removed, nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

func copyExpense(e core.Expense) core.Expense {
	if e.Note != nil {
		n := *e.Note
		e.Note = &n
	}
	return e
}
