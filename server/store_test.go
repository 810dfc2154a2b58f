package server

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dailyflow/dailyreset/internal/model"
	"github.com/dailyflow/dailyreset/internal/rollover"
)

const (
	testUser  = "6f1b0a48-9e1a-4a4e-8f0f-0d7a4f1c2b11"
	testToday = model.Day("2026-03-15")
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return NewStore(db), mock, func() { db.Close() }
}

func TestClaimRolloverFirstEver(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT reset_date::text, phase FROM rollover_state WHERE user_id = \$1 FOR UPDATE`).
		WithArgs(testUser).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(`INSERT INTO rollover_state`).
		WithArgs(testUser, testToday.String(), "archiving").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	claim, err := store.ClaimRollover(context.Background(), testUser, testToday)
	require.NoError(t, err)
	assert.True(t, claim.Acquired)
	assert.Equal(t, rollover.PhaseArchiving, claim.Phase)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimRolloverAlreadyDoneToday(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT reset_date::text, phase FROM rollover_state`).
		WithArgs(testUser).
		WillReturnRows(sqlmock.NewRows([]string{"reset_date", "phase"}).
			AddRow(testToday.String(), "done"))
	mock.ExpectCommit()

	claim, err := store.ClaimRollover(context.Background(), testUser, testToday)
	require.NoError(t, err)
	assert.False(t, claim.Acquired, "second claim the same day must not acquire")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimRolloverResumesPurging(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT reset_date::text, phase FROM rollover_state`).
		WithArgs(testUser).
		WillReturnRows(sqlmock.NewRows([]string{"reset_date", "phase"}).
			AddRow(testToday.String(), "purging"))
	mock.ExpectCommit()

	claim, err := store.ClaimRollover(context.Background(), testUser, testToday)
	require.NoError(t, err)
	assert.True(t, claim.Acquired)
	assert.Equal(t, rollover.PhasePurging, claim.Phase)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimRolloverStaleDate(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT reset_date::text, phase FROM rollover_state`).
		WithArgs(testUser).
		WillReturnRows(sqlmock.NewRows([]string{"reset_date", "phase"}).
			AddRow("2026-03-10", "done"))
	mock.ExpectExec(`UPDATE rollover_state SET reset_date = \$2::date, phase = \$3`).
		WithArgs(testUser, testToday.String(), "archiving").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	claim, err := store.ClaimRollover(context.Background(), testUser, testToday)
	require.NoError(t, err)
	assert.True(t, claim.Acquired)
	assert.Equal(t, rollover.PhaseArchiving, claim.Phase)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertHistory(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()

	h := model.DayHistory{
		UserID:     testUser,
		Day:        model.Day("2026-03-14"),
		Total:      3,
		Completed:  2,
		Percentage: 67,
		Color:      model.ColorMid,
	}

	mock.ExpectExec(`INSERT INTO completion_history .* ON CONFLICT \(user_id, day\) DO UPDATE`).
		WithArgs(testUser, "2026-03-14", 3, 2, 67, model.ColorMid).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.UpsertHistory(context.Background(), h))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteTasksBefore(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()

	mock.ExpectExec(`DELETE FROM daily_tasks WHERE user_id = \$1 AND task_date < \$2::date`).
		WithArgs(testUser, testToday.String()).
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := store.DeleteTasksBefore(context.Background(), testUser, testToday)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTasksForDay(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()

	now := time.Now()
	mock.ExpectQuery(`SELECT id, user_id, task_date::text, task_text, done, position, created_at\s+FROM daily_tasks`).
		WithArgs(testUser, testToday.String()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "task_date", "task_text", "done", "position", "created_at"}).
			AddRow("t1", testUser, testToday.String(), "write report", true, 1, now).
			AddRow("t2", testUser, testToday.String(), "review PRs", false, 2, now))

	tasks, err := store.TasksForDay(context.Background(), testUser, testToday)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "write report", tasks[0].Text)
	assert.True(t, tasks[0].Done)
	assert.Equal(t, testToday, tasks[1].Day)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTaskAppendsAtEnd(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO daily_tasks \(id, user_id, task_date, task_text, position\).*COALESCE\(MAX\(position\), 0\) \+ 1.*RETURNING position, created_at`).
		WithArgs(sqlmock.AnyArg(), testUser, testToday.String(), "buy milk").
		WillReturnRows(sqlmock.NewRows([]string{"position", "created_at"}).
			AddRow(4, now))

	task, err := store.CreateTask(context.Background(), testUser, testToday, "buy milk")
	require.NoError(t, err)
	assert.Equal(t, 4, task.Position)
	assert.False(t, task.Done)

	// The id is minted in Go, not by the column default.
	_, err = uuid.Parse(task.ID)
	assert.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSessionMintsID(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()

	expiresAt := time.Now().Add(30 * 24 * time.Hour)
	mock.ExpectExec(`INSERT INTO sessions \(id, user_id, token, expires_at\)`).
		WithArgs(sqlmock.AnyArg(), testUser, "tok-1", expiresAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.CreateSession(context.Background(), testUser, "tok-1", expiresAt))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserLocation(t *testing.T) {
	userRows := func(tz string) *sqlmock.Rows {
		return sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "timezone"}).
			AddRow(testUser, "ann", "ann@example.com", "hash", tz)
	}

	t.Run("known zone", func(t *testing.T) {
		store, mock, done := newMockStore(t)
		defer done()

		mock.ExpectQuery(`SELECT id, username, email, password_hash, timezone FROM users WHERE id = \$1`).
			WithArgs(testUser).
			WillReturnRows(userRows("UTC"))

		loc, err := store.UserLocation(context.Background(), testUser)
		require.NoError(t, err)
		assert.Equal(t, time.UTC, loc)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("bad zone falls back to UTC", func(t *testing.T) {
		store, mock, done := newMockStore(t)
		defer done()

		mock.ExpectQuery(`SELECT id, username, email, password_hash, timezone FROM users WHERE id = \$1`).
			WithArgs(testUser).
			WillReturnRows(userRows("not/a/zone"))

		loc, err := store.UserLocation(context.Background(), testUser)
		require.NoError(t, err)
		assert.Equal(t, time.UTC, loc)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestReorderTasksCommitsAllOrNothing(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()

	orders := []TaskOrder{{ID: "t1", Position: 2}, {ID: "t2", Position: 1}}

	t.Run("commit", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE daily_tasks SET position = \$1`).
			WithArgs(2, "t1", testUser).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE daily_tasks SET position = \$1`).
			WithArgs(1, "t2", testUser).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, store.ReorderTasks(context.Background(), testUser, orders))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rollback on unknown task", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE daily_tasks SET position = \$1`).
			WithArgs(2, "t1", testUser).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := store.ReorderTasks(context.Background(), testUser, orders)
		require.Error(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestHistoryRange(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()

	mock.ExpectQuery(`SELECT user_id, day::text, total_tasks, completed_tasks, completion_percentage, color\s+FROM completion_history`).
		WithArgs(testUser, "2026-03-01", "2026-03-31").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "day", "total_tasks", "completed_tasks", "completion_percentage", "color"}).
			AddRow(testUser, "2026-03-14", 3, 2, 67, model.ColorMid).
			AddRow(testUser, "2026-03-15", 1, 0, 0, model.ColorNoCompletion))

	days, err := store.HistoryRange(context.Background(), testUser, model.Day("2026-03-01"), model.Day("2026-03-31"))
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, model.Day("2026-03-14"), days[0].Day)
	assert.Equal(t, 67, days[0].Percentage)
	assert.Equal(t, model.ColorNoCompletion, days[1].Color)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetPhaseRequiresClaimedRow(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()

	mock.ExpectExec(`UPDATE rollover_state SET phase = \$1`).
		WithArgs("done", testUser, testToday.String()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.MarkDone(context.Background(), testUser, testToday)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}
