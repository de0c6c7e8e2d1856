package services

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"spendwise/internal/amqp"
	"spendwise/internal/cache"
	"spendwise/internal/core"
	"spendwise/internal/log"
	"spendwise/internal/presenter"
	"spendwise/internal/store"
)

// Publisher announces committed mutations.
type Publisher interface {
	PublishExpenseChanged(ctx context.Context, ev amqp.ExpenseChanged) error
}

// ExpenseService fronts the expense store with a per-user list cache.
// Every successful mutation drops the user's cached list so the next read
// reloads it in full.
type ExpenseService struct {
	store     store.ExpenseStore
	lists     cache.Cache[[]core.Expense]
	publisher Publisher
	logger    *log.Logger
	timeout   time.Duration

	loads singleflight.Group

	mu          sync.Mutex
	generations map[string]uint64
}

// NewExpenseService wires the service. publisher may be nil, in which case
// no events are emitted.
func NewExpenseService(st store.ExpenseStore, lists cache.Cache[[]core.Expense], publisher Publisher, logger *log.Logger) *ExpenseService {
	if logger == nil {
		logger = log.Discard()
	}
	return &ExpenseService{
		store:       st,
		lists:       lists,
		publisher:   publisher,
		logger:      logger.WithComponent(log.ComponentExpense),
		timeout:     7 * time.Second,
		generations: make(map[string]uint64),
	}
}

// SetTimeout bounds every store call.
func (s *ExpenseService) SetTimeout(d time.Duration) {
	if d > 0 {
		s.timeout = d
	}
}

// List returns the user's expenses in store order. Concurrent cache misses
// for one user share a single store load.
func (s *ExpenseService) List(ctx context.Context, userID string) ([]core.Expense, error) {
	if userID == "" {
		return []core.Expense{}, nil
	}
	if cached, ok := s.lists.Get(userID); ok {
		return slices.Clone(cached), nil
	}

	gen := s.generation(userID)
	v, err, _ := s.loads.Do(userID, func() (any, error) {
		// The shared load outlives any single caller's cancellation.
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()

		rows, err := s.store.List(loadCtx, userID)
		if err != nil {
			return nil, err
		}
		s.cacheIfCurrent(userID, gen, rows)
		return rows, nil
	})
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return slices.Clone(v.([]core.Expense)), nil
}

// Get returns one expense of the user.
func (s *ExpenseService) Get(ctx context.Context, userID, id string) (core.Expense, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.store.Get(ctx, userID, id)
}

func (s *ExpenseService) Create(ctx context.Context, userID string, data core.CreateExpenseData) (core.Expense, error) {
	if userID == "" {
		return core.Expense{}, core.ErrNotAuthenticated
	}
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	e, err := s.store.Create(callCtx, userID, data)
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}
	s.committed(ctx, amqp.OpCreated, e.ID, userID)

	s.logger.InfoContext(ctx, "Expense created",
		log.NewFields().WithOperation(log.OpCreate).WithExpense(e.ID, userID, e.Category, e.Amount).ToSlice()...)
	return e, nil
}

func (s *ExpenseService) Update(ctx context.Context, userID string, data core.UpdateExpenseData) (core.Expense, error) {
	if userID == "" {
		return core.Expense{}, core.ErrNotAuthenticated
	}
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	e, err := s.store.Update(callCtx, userID, data)
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}
	s.committed(ctx, amqp.OpUpdated, e.ID, userID)

	s.logger.InfoContext(ctx, "Expense updated",
		log.NewFields().WithOperation(log.OpUpdate).WithExpense(e.ID, userID, e.Category, e.Amount).ToSlice()...)
	return e, nil
}

func (s *ExpenseService) Delete(ctx context.Context, userID, id string) error {
	if userID == "" {
		return core.ErrNotAuthenticated
	}
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.store.Delete(callCtx, userID, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	s.committed(ctx, amqp.OpDeleted, id, userID)

	s.logger.InfoContext(ctx, "Expense deleted",
		log.FieldOperation, log.OpDelete, log.FieldExpenseID, id, log.FieldUserID, userID)
	return nil
}

// Dashboard loads the user's expenses and builds the dashboard view.
func (s *ExpenseService) Dashboard(ctx context.Context, userID string, now time.Time) (presenter.Dashboard, error) {
	expenses, err := s.List(ctx, userID)
	if err != nil {
		return presenter.Dashboard{}, err
	}
	return presenter.NewDashboard(expenses, now), nil
}

// Invalidate drops the cached list of userID.
func (s *ExpenseService) Invalidate(userID string) {
	s.mu.Lock()
	s.generations[userID]++
	s.lists.Delete(userID)
	s.mu.Unlock()

	s.loads.Forget(userID)
}

// cacheIfCurrent stores rows unless userID was invalidated after gen was
// read. The check and the write share s.mu with Invalidate.
func (s *ExpenseService) cacheIfCurrent(userID string, gen uint64, rows []core.Expense) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generations[userID] == gen {
		s.lists.Set(userID, rows)
	}
}

func (s *ExpenseService) generation(userID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generations[userID]
}

// committed invalidates and publishes after a successful mutation. Publish
// failures are logged only.
func (s *ExpenseService) committed(ctx context.Context, op amqp.Op, id, userID string) {
	s.Invalidate(userID)

	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishExpenseChanged(ctx, amqp.NewExpenseChanged(op, id, userID)); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish expense event",
			log.FieldOperation, log.OpPublish,
			log.FieldEventOp, op,
			log.FieldExpenseID, id,
			log.FieldError, err)
	}
}
