package rollover

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSessions struct {
	ids []string
}

func (s *staticSessions) ActiveUserIDs(ctx context.Context) ([]string, error) {
	return s.ids, nil
}

func TestSweepRollsOverActiveUsers(t *testing.T) {
	store := newFakeStore()
	store.tasks[yesterday] = tasksWith(true, false)

	trigger := NewTrigger(New(store), &staticSessions{ids: []string{"u1"}}, time.Hour)
	trigger.Sweep(context.Background())

	require.Contains(t, store.history, yesterday)
	assert.Equal(t, PhaseDone, store.statePhase)

	// A second sweep the same day is a no-op.
	writes := store.writes()
	trigger.Sweep(context.Background())
	assert.Equal(t, writes, store.writes())
}

func TestTriggerStartStop(t *testing.T) {
	store := newFakeStore()
	trigger := NewTrigger(New(store), &staticSessions{}, 10*time.Millisecond)
	trigger.Start()
	time.Sleep(30 * time.Millisecond)
	trigger.Stop()
}
