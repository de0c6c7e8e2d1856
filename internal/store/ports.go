// Package store defines the persistence ports of the dashboard. Every
// expense operation is scoped to one user.
package store

import (
	"context"
	"errors"
	"slices"
	"time"

	"spendwise/internal/core"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrUserExists      = errors.New("username already taken")
	ErrSessionNotFound = errors.New("session not found")
)

// Ports for outbound adapters.
type (
	// ExpenseStore is the system of record for expenses. An empty user id
	// yields an empty list on reads and core.ErrNotAuthenticated on writes.
	ExpenseStore interface {
		// List returns the user's expenses ordered by expense date
		// descending, ties broken by creation time descending.
		List(ctx context.Context, userID string) ([]core.Expense, error)
		// Get returns one expense or core.ErrNotFound.
		Get(ctx context.Context, userID, id string) (core.Expense, error)
		Create(ctx context.Context, userID string, data core.CreateExpenseData) (core.Expense, error)
		// Update replaces the set fields of the row keyed by data.ID.
		Update(ctx context.Context, userID string, data core.UpdateExpenseData) (core.Expense, error)
		Delete(ctx context.Context, userID, id string) error
	}

	UserStore interface {
		CreateUser(ctx context.Context, username, passwordHash string) (core.User, error)
		UserByUsername(ctx context.Context, username string) (core.User, error)
		UserByID(ctx context.Context, id string) (core.User, error)
		UserCount(ctx context.Context) (int, error)
	}

	// SessionStore persists login sessions. Expiry is enforced by callers.
	SessionStore interface {
		CreateSession(ctx context.Context, s core.Session) error
		Session(ctx context.Context, token string) (core.Session, error)
		RenewSession(ctx context.Context, token string, expiresAt time.Time) error
		DeleteSession(ctx context.Context, token string) error
		CleanExpiredSessions(ctx context.Context, now time.Time) (int, error)
	}

	// Backend bundles the stores a running server needs.
	Backend interface {
		ExpenseStore
		UserStore
		SessionStore
		Ping(ctx context.Context) error
		Close() error
	}
)

// SortExpenses orders expenses newest first by expense date, then by
// creation time.
func SortExpenses(expenses []core.Expense) {
	slices.SortStableFunc(expenses, func(a, b core.Expense) int {
		if c := b.ExpenseDate.Compare(a.ExpenseDate.Time); c != 0 {
			return c
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
}
