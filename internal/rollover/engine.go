// Package rollover implements the once-daily transition that archives the
// previous day's task completion into history and clears stale tasks.
//
// The checkpoint is a server-side row per user (rollover_state) claimed
// with a conditional update, so correctness does not depend on any one
// client's local storage. The rollover body is a two-phase operation with
// a durable phase marker (archiving -> purging -> done): a run that dies
// partway resumes from the recorded phase on the next invocation instead
// of re-running blindly. Re-running the archive is still safe because the
// history write is an upsert keyed by (user, day).
package rollover

import (
	"context"
	"time"

	"github.com/dailyflow/dailyreset/internal/logger"
	"github.com/dailyflow/dailyreset/internal/model"
)

// Phase is the durable marker of how far a rollover got
type Phase string

const (
	PhaseArchiving Phase = "archiving"
	PhasePurging   Phase = "purging"
	PhaseDone      Phase = "done"
)

// Status is the outcome kind of an EnsureFresh call
type Status int

const (
	StatusNoAction Status = iota
	StatusRolledOver
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusNoAction:
		return "no-action-needed"
	case StatusRolledOver:
		return "rolled-over"
	default:
		return "failed"
	}
}

// Outcome reports what a rollover check did
type Outcome struct {
	Status Status    `json:"status"`
	Day    model.Day `json:"day,omitempty"`
	Reason string    `json:"reason,omitempty"`
}

// Claim is the result of trying to take ownership of today's rollover.
// When Acquired is false the checkpoint already reads done-for-today.
// Phase tells a resumed run where to pick up.
type Claim struct {
	Acquired bool
	Phase    Phase
}

// Store is the persistence the engine needs. All writes must be
// idempotent under retry: UpsertHistory replaces, DeleteTasksBefore is
// naturally re-runnable, and the phase marks survive a crash.
type Store interface {
	UserLocation(ctx context.Context, userID string) (*time.Location, error)
	ClaimRollover(ctx context.Context, userID string, today model.Day) (Claim, error)
	TasksForDay(ctx context.Context, userID string, day model.Day) ([]model.Task, error)
	UpsertHistory(ctx context.Context, h model.DayHistory) error
	MarkPurging(ctx context.Context, userID string, today model.Day) error
	CountTasksBefore(ctx context.Context, userID string, day model.Day) (int, error)
	DeleteTasksBefore(ctx context.Context, userID string, day model.Day) (int64, error)
	MarkDone(ctx context.Context, userID string, today model.Day) error
}

// Engine decides whether a rollover is due and performs it
type Engine struct {
	store Store
}

// New creates a rollover engine backed by store
func New(store Store) *Engine {
	return &Engine{store: store}
}

// EnsureFresh performs at most one rollover for the user's current day.
// Any store failure aborts the remaining steps and leaves the phase
// marker where it was, so the next check retries from there
// (at-least-once, not exactly-once).
func (e *Engine) EnsureFresh(ctx context.Context, userID string, now time.Time) (Outcome, error) {
	loc, err := e.store.UserLocation(ctx, userID)
	if err != nil {
		return e.failed("resolving user timezone", userID, err)
	}

	today := model.DayOf(now, loc)

	claim, err := e.store.ClaimRollover(ctx, userID, today)
	if err != nil {
		return e.failed("claiming rollover", userID, err)
	}
	if !claim.Acquired {
		return Outcome{Status: StatusNoAction, Day: today}, nil
	}

	target := today.Prev()

	if claim.Phase == PhaseArchiving {
		if err := e.archive(ctx, userID, target); err != nil {
			return e.failed("archiving "+target.String(), userID, err)
		}
		if err := e.store.MarkPurging(ctx, userID, today); err != nil {
			return e.failed("advancing to purge phase", userID, err)
		}
	}

	if err := e.purge(ctx, userID, today, target); err != nil {
		return e.failed("purging stale tasks", userID, err)
	}

	if err := e.store.MarkDone(ctx, userID, today); err != nil {
		return e.failed("completing rollover", userID, err)
	}

	logger.Info("Rollover complete", logger.F("user", userID), logger.F("day", today))
	return Outcome{Status: StatusRolledOver, Day: today}, nil
}

// archive writes yesterday's completion summary. Days with no tasks are
// never archived; only the single immediately-preceding day is considered
// even after a multi-day gap.
func (e *Engine) archive(ctx context.Context, userID string, target model.Day) error {
	tasks, err := e.store.TasksForDay(ctx, userID, target)
	if err != nil {
		return err
	}

	h, ok := model.Summarize(userID, target, tasks)
	if !ok {
		logger.Debug("No tasks to archive", logger.F("user", userID), logger.F("day", target))
		return nil
	}

	return e.store.UpsertHistory(ctx, h)
}

// purge deletes every task strictly older than today. Tasks older than
// the archived day were never summarized; their loss is logged so the
// gap is visible rather than silent.
func (e *Engine) purge(ctx context.Context, userID string, today, target model.Day) error {
	older, err := e.store.CountTasksBefore(ctx, userID, target)
	if err != nil {
		return err
	}

	deleted, err := e.store.DeleteTasksBefore(ctx, userID, today)
	if err != nil {
		return err
	}

	if older > 0 {
		logger.Warn("Purged tasks from days that were never archived",
			logger.F("user", userID),
			logger.F("unarchived", older),
			logger.F("deleted", deleted))
	}

	return nil
}

func (e *Engine) failed(step, userID string, err error) (Outcome, error) {
	logger.Error("Rollover failed",
		logger.F("user", userID),
		logger.F("step", step),
		logger.F("error", err))
	return Outcome{Status: StatusFailed, Reason: step + ": " + err.Error()}, err
}
