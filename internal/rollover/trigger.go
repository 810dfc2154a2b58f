package rollover

import (
	"context"
	"time"

	"github.com/dailyflow/dailyreset/internal/logger"
)

// SessionSource lists users with a live session, i.e. the sessions whose
// owners the trigger should keep fresh.
type SessionSource interface {
	ActiveUserIDs(ctx context.Context) ([]string, error)
}

// Trigger periodically runs the rollover check for every user with an
// active session. This is a liveness nicety, not a guarantee: a user
// whose client is closed across the day boundary still gets exactly one
// rollover on their next activation, because the engine handles arbitrary
// elapsed time.
type Trigger struct {
	engine   *Engine
	sessions SessionSource
	interval time.Duration
	stopCh   chan struct{}
}

// NewTrigger creates a trigger sweeping at the given interval.
// An interval of 0 defaults to one hour.
func NewTrigger(engine *Engine, sessions SessionSource, interval time.Duration) *Trigger {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Trigger{
		engine:   engine,
		sessions: sessions,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start launches the background sweep loop
func (t *Trigger) Start() {
	go t.loop()
}

func (t *Trigger) loop() {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			t.Sweep(context.Background())
		case <-t.stopCh:
			return
		}
	}
}

// Sweep runs one rollover check for every active user. Failures are
// logged and skipped; the next sweep retries them.
func (t *Trigger) Sweep(ctx context.Context) {
	userIDs, err := t.sessions.ActiveUserIDs(ctx)
	if err != nil {
		logger.Error("Rollover sweep failed to list active users", logger.F("error", err))
		return
	}

	for _, userID := range userIDs {
		outcome, err := t.engine.EnsureFresh(ctx, userID, time.Now())
		if err != nil {
			continue // already logged by the engine
		}
		if outcome.Status == StatusRolledOver {
			logger.Info("Sweep rolled over user",
				logger.F("user", userID), logger.F("day", outcome.Day))
		}
	}
}

// Stop stops the background loop
func (t *Trigger) Stop() {
	close(t.stopCh)
}
