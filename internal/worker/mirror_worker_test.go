package worker

import (
	"context"
	"errors"
	"testing"

	"spendwise/internal/amqp"
	"spendwise/internal/core"
	"spendwise/internal/log"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	rows map[string]core.Expense
	err  error
}

func (s *fakeStore) Get(_ context.Context, userID, id string) (core.Expense, error) {
	if s.err != nil {
		return core.Expense{}, s.err
	}
	e, ok := s.rows[id]
	if !ok || e.UserID != userID {
		return core.Expense{}, core.ErrNotFound
	}
	return e, nil
}

type fakeMirror struct {
	rows    map[string]core.Expense
	deletes []string
	err     error
}

func newFakeMirror() *fakeMirror {
	return &fakeMirror{rows: map[string]core.Expense{}}
}

func (m *fakeMirror) UpsertExpense(_ context.Context, e core.Expense) error {
	if m.err != nil {
		return m.err
	}
	m.rows[e.ID] = e
	return nil
}

func (m *fakeMirror) DeleteExpense(_ context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	m.deletes = append(m.deletes, id)
	delete(m.rows, id)
	return nil
}

func TestHandleCreatedAndUpdated(t *testing.T) {
	store := &fakeStore{rows: map[string]core.Expense{
		"e1": {ID: "e1", UserID: "u1", Amount: 12, Category: "food"},
	}}
	mirror := newFakeMirror()
	w := NewMirrorWorker(store, mirror, log.Discard())
	ctx := context.Background()

	require.NoError(t, w.Handle(ctx, amqp.NewExpenseChanged(amqp.OpCreated, "e1", "u1")))
	assert.Equal(t, 12.0, mirror.rows["e1"].Amount)

	store.rows["e1"] = core.Expense{ID: "e1", UserID: "u1", Amount: 15, Category: "food"}
	require.NoError(t, w.Handle(ctx, amqp.NewExpenseChanged(amqp.OpUpdated, "e1", "u1")))
	assert.Equal(t, 15.0, mirror.rows["e1"].Amount)

	processed, failed := w.Stats()
	assert.Equal(t, int64(2), processed)
	assert.Zero(t, failed)
}

func TestHandleDeleted(t *testing.T) {
	mirror := newFakeMirror()
	mirror.rows["e1"] = core.Expense{ID: "e1"}
	w := NewMirrorWorker(&fakeStore{}, mirror, log.Discard())

	require.NoError(t, w.Handle(context.Background(), amqp.NewExpenseChanged(amqp.OpDeleted, "e1", "u1")))
	assert.NotContains(t, mirror.rows, "e1")
}

func TestHandleMissingRowRemovesMirror(t *testing.T) {
	mirror := newFakeMirror()
	mirror.rows["e1"] = core.Expense{ID: "e1"}
	w := NewMirrorWorker(&fakeStore{rows: map[string]core.Expense{}}, mirror, log.Discard())

	require.NoError(t, w.Handle(context.Background(), amqp.NewExpenseChanged(amqp.OpUpdated, "e1", "u1")))
	assert.Equal(t, []string{"e1"}, mirror.deletes)
}

func TestHandleFailuresAreReturned(t *testing.T) {
	boom := errors.New("sheets down")

	t.Run("store", func(t *testing.T) {
		w := NewMirrorWorker(&fakeStore{err: boom}, newFakeMirror(), log.Discard())
		err := w.Handle(context.Background(), amqp.NewExpenseChanged(amqp.OpCreated, "e1", "u1"))
		require.ErrorIs(t, err, boom)
		_, failed := w.Stats()
		assert.Equal(t, int64(1), failed)
	})

	t.Run("mirror", func(t *testing.T) {
		mirror := newFakeMirror()
		mirror.err = boom
		store := &fakeStore{rows: map[string]core.Expense{"e1": {ID: "e1", UserID: "u1"}}}
		w := NewMirrorWorker(store, mirror, log.Discard())
		err := w.Handle(context.Background(), amqp.NewExpenseChanged(amqp.OpCreated, "e1", "u1"))
		assert.ErrorIs(t, err, boom)
	})

	t.Run("unknown op", func(t *testing.T) {
		w := NewMirrorWorker(&fakeStore{}, newFakeMirror(), log.Discard())
		err := w.Handle(context.Background(), amqp.ExpenseChanged{Op: "archived", ID: "e1", UserID: "u1"})
		assert.ErrorContains(t, err, "unknown op")
	})
}

func TestHandleSatisfiesAMQPHandler(t *testing.T) {
	var _ amqp.Handler = NewMirrorWorker(&fakeStore{}, newFakeMirror(), log.Discard()).Handle
}
