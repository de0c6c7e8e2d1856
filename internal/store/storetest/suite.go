// Package storetest holds a behavioural test suite shared by every
// store.Backend implementation.
package storetest

import (
	"context"
	"errors"
	"time"

	"github.com/stretchr/testify/suite"

	"spendwise/internal/core"
	"spendwise/internal/store"
)

// BackendSuite runs against a fresh backend for every test.
type BackendSuite struct {
	suite.Suite
	NewBackend func() store.Backend

	ctx     context.Context
	backend store.Backend
	alice   core.User
	bob     core.User
}

func (s *BackendSuite) SetupTest() {
	s.ctx = context.Background()
	s.backend = s.NewBackend()

	var err error
	s.alice, err = s.backend.CreateUser(s.ctx, "alice", "hash-a")
	s.Require().NoError(err)
	s.bob, err = s.backend.CreateUser(s.ctx, "bob", "hash-b")
	s.Require().NoError(err)
}

func (s *BackendSuite) TearDownTest() {
	if s.backend != nil {
		s.Require().NoError(s.backend.Close())
	}
}

func (s *BackendSuite) create(userID string, amount float64, category, date string, note *string) core.Expense {
	d, err := core.ParseDate(date)
	s.Require().NoError(err)
	e, err := s.backend.Create(s.ctx, userID, core.CreateExpenseData{
		Amount: amount, Category: category, ExpenseDate: d, Note: note,
	})
	s.Require().NoError(err)
	return e
}

func (s *BackendSuite) TestCreateAssignsIdentity() {
	note := "groceries"
	e := s.create(s.alice.ID, 12.5, "food", "2024-01-05", &note)

	s.NotEmpty(e.ID)
	s.Equal(s.alice.ID, e.UserID)
	s.Equal(12.5, e.Amount)
	s.Equal("food", e.Category)
	s.Equal("2024-01-05", e.ExpenseDate.String())
	s.Require().NotNil(e.Note)
	s.Equal("groceries", *e.Note)
	s.False(e.CreatedAt.IsZero())
	s.False(e.UpdatedAt.IsZero())

	got, err := s.backend.Get(s.ctx, s.alice.ID, e.ID)
	s.Require().NoError(err)
	s.Equal(e.ID, got.ID)
	s.Equal(12.5, got.Amount)
}

func (s *BackendSuite) TestCreateWithoutNote() {
	e := s.create(s.alice.ID, 3, "bills", "2024-01-05", nil)
	s.Nil(e.Note)
}

func (s *BackendSuite) TestCreateRequiresUser() {
	_, err := s.backend.Create(s.ctx, "", core.CreateExpenseData{
		Amount: 1, Category: "food", ExpenseDate: core.NewDate(2024, 1, 1),
	})
	s.True(errors.Is(err, core.ErrNotAuthenticated))
}

func (s *BackendSuite) TestListOrderAndScope() {
	first := s.create(s.alice.ID, 1, "food", "2024-01-05", nil)
	s.create(s.alice.ID, 2, "food", "2024-01-20", nil)
	time.Sleep(2 * time.Millisecond)
	third := s.create(s.alice.ID, 3, "bills", "2024-01-05", nil)
	s.create(s.bob.ID, 99, "food", "2024-01-10", nil)

	list, err := s.backend.List(s.ctx, s.alice.ID)
	s.Require().NoError(err)
	s.Require().Len(list, 3)
	s.Equal(2.0, list[0].Amount)
	s.Equal(third.ID, list[1].ID, "same date: newest created first")
	s.Equal(first.ID, list[2].ID)

	empty, err := s.backend.List(s.ctx, "")
	s.Require().NoError(err)
	s.Empty(empty)
}

func (s *BackendSuite) TestUpdatePartial() {
	note := "old"
	e := s.create(s.alice.ID, 10, "food", "2024-01-05", &note)

	amount := 25.75
	updated, err := s.backend.Update(s.ctx, s.alice.ID, core.UpdateExpenseData{ID: e.ID, Amount: &amount})
	s.Require().NoError(err)
	s.Equal(25.75, updated.Amount)
	s.Equal("food", updated.Category)
	s.Equal("2024-01-05", updated.ExpenseDate.String())
	s.Require().NotNil(updated.Note)
	s.Equal("old", *updated.Note)
	s.Equal(e.CreatedAt.Unix(), updated.CreatedAt.Unix())

	got, err := s.backend.Get(s.ctx, s.alice.ID, e.ID)
	s.Require().NoError(err)
	s.Equal(25.75, got.Amount)
}

func (s *BackendSuite) TestUpdateOtherUsersRow() {
	e := s.create(s.alice.ID, 10, "food", "2024-01-05", nil)
	amount := 1.0
	_, err := s.backend.Update(s.ctx, s.bob.ID, core.UpdateExpenseData{ID: e.ID, Amount: &amount})
	s.True(errors.Is(err, core.ErrNotFound))

	_, err = s.backend.Update(s.ctx, s.alice.ID, core.UpdateExpenseData{ID: "missing", Amount: &amount})
	s.True(errors.Is(err, core.ErrNotFound))
}

func (s *BackendSuite) TestDelete() {
	e := s.create(s.alice.ID, 10, "food", "2024-01-05", nil)

	s.True(errors.Is(s.backend.Delete(s.ctx, s.bob.ID, e.ID), core.ErrNotFound))
	s.Require().NoError(s.backend.Delete(s.ctx, s.alice.ID, e.ID))
	s.True(errors.Is(s.backend.Delete(s.ctx, s.alice.ID, e.ID), core.ErrNotFound))

	_, err := s.backend.Get(s.ctx, s.alice.ID, e.ID)
	s.True(errors.Is(err, core.ErrNotFound))
}

func (s *BackendSuite) TestUsers() {
	_, err := s.backend.CreateUser(s.ctx, "alice", "other")
	s.True(errors.Is(err, store.ErrUserExists))

	u, err := s.backend.UserByUsername(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(s.alice.ID, u.ID)
	s.Equal("hash-a", u.PasswordHash)

	byID, err := s.backend.UserByID(s.ctx, s.bob.ID)
	s.Require().NoError(err)
	s.Equal("bob", byID.Username)

	_, err = s.backend.UserByUsername(s.ctx, "carol")
	s.True(errors.Is(err, store.ErrUserNotFound))

	n, err := s.backend.UserCount(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, n)
}

func (s *BackendSuite) TestSessions() {
	now := time.Now().UTC().Truncate(time.Second)
	live := core.Session{Token: "live", UserID: s.alice.ID, ExpiresAt: now.Add(time.Hour)}
	stale := core.Session{Token: "stale", UserID: s.bob.ID, ExpiresAt: now.Add(-time.Hour)}
	s.Require().NoError(s.backend.CreateSession(s.ctx, live))
	s.Require().NoError(s.backend.CreateSession(s.ctx, stale))

	got, err := s.backend.Session(s.ctx, "live")
	s.Require().NoError(err)
	s.Equal(s.alice.ID, got.UserID)
	s.True(got.ExpiresAt.Equal(live.ExpiresAt))

	renewed := now.Add(48 * time.Hour)
	s.Require().NoError(s.backend.RenewSession(s.ctx, "live", renewed))
	got, err = s.backend.Session(s.ctx, "live")
	s.Require().NoError(err)
	s.True(got.ExpiresAt.Equal(renewed))

	removed, err := s.backend.CleanExpiredSessions(s.ctx, now)
	s.Require().NoError(err)
	s.Equal(1, removed)
	_, err = s.backend.Session(s.ctx, "stale")
	s.True(errors.Is(err, store.ErrSessionNotFound))

	s.Require().NoError(s.backend.DeleteSession(s.ctx, "live"))
	_, err = s.backend.Session(s.ctx, "live")
	s.True(errors.Is(err, store.ErrSessionNotFound))
}
