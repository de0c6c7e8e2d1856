package presenter

import (
	"context"
	"errors"
	"sync"
)

// ErrNotStaged is returned by ConfirmID when the id is not the staged one.
var ErrNotStaged = errors.New("deletion was not confirmed")

// DeleteFunc removes the expense with the given id.
type DeleteFunc func(ctx context.Context, id string) error

// DeleteFlow is the two-step delete confirmation. Staging an id never
// deletes anything; only Confirm calls the delete function.
type DeleteFlow struct {
	mu     sync.Mutex
	staged string
}

// Stage remembers id as the pending deletion, replacing any previous one.
func (f *DeleteFlow) Stage(id string) {
	f.mu.Lock()
	f.staged = id
	f.mu.Unlock()
}

// Staged returns the pending id, or "" when nothing is staged.
func (f *DeleteFlow) Staged() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.staged
}

// Dismiss clears the pending id without side effects.
func (f *DeleteFlow) Dismiss() {
	f.Stage("")
}

// Confirm deletes the staged id and clears it whatever the outcome. With
// nothing staged it is a no-op and returns "".
func (f *DeleteFlow) Confirm(ctx context.Context, del DeleteFunc) (string, error) {
	f.mu.Lock()
	id := f.staged
	f.staged = ""
	f.mu.Unlock()

	if id == "" {
		return "", nil
	}
	return id, del(ctx, id)
}

// ConfirmID is Confirm for a specific id. The staged id is compared and
// cleared in one step; when another id is staged it stays staged, nothing is
// deleted and ErrNotStaged is returned.
func (f *DeleteFlow) ConfirmID(ctx context.Context, id string, del DeleteFunc) (string, error) {
	f.mu.Lock()
	staged := f.staged
	switch {
	case staged == "":
		f.mu.Unlock()
		return "", nil
	case staged != id:
		f.mu.Unlock()
		return "", ErrNotStaged
	}
	f.staged = ""
	f.mu.Unlock()

	return id, del(ctx, id)
}
