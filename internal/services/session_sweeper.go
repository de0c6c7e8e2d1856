package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"spendwise/internal/log"
)

// SessionCleaner removes sessions that expired before now.
type SessionCleaner interface {
	CleanExpiredSessions(ctx context.Context, now time.Time) (int, error)
}

// SessionSweeper periodically deletes expired login sessions.
type SessionSweeper struct {
	sessions SessionCleaner
	interval time.Duration
	logger   *log.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewSessionSweeper(sessions SessionCleaner, interval time.Duration, logger *log.Logger) *SessionSweeper {
	if logger == nil {
		logger = log.Discard()
	}
	if interval <= 0 {
		interval = time.Hour
	}
	return &SessionSweeper{
		sessions: sessions,
		interval: interval,
		logger:   logger.WithComponent(log.ComponentAuth),
	}
}

// Start begins the sweep loop. Returns an error if already running.
func (p *SessionSweeper) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return fmt.Errorf("session sweeper is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})

	go p.runLoop(ctx)
	return nil
}

// Stop halts the loop and waits for it, or for ctx to end.
func (p *SessionSweeper) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	close(p.stopCh)
	done := p.doneCh
	p.mu.Unlock()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()
	return nil
}

func (p *SessionSweeper) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *SessionSweeper) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.Sweep(ctx)
	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Sweep(ctx)
		}
	}
}

// Sweep runs one cleanup pass.
func (p *SessionSweeper) Sweep(ctx context.Context) {
	n, err := p.sessions.CleanExpiredSessions(ctx, time.Now())
	if err != nil {
		p.logger.ErrorContext(ctx, "Failed to clean expired sessions", log.FieldError, err)
		return
	}
	if n > 0 {
		p.logger.InfoContext(ctx, "Expired sessions removed", log.FieldCount, n)
	}
}
