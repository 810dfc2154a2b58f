package server

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dailyflow/dailyreset/internal/model"
	"github.com/dailyflow/dailyreset/internal/rollover"
)

// Store runs all SQL against the task database. It implements
// rollover.Store and rollover.SessionSource on top of the same pool the
// HTTP handlers use.
type Store struct {
	db *sql.DB
}

// NewStore creates a store on an open database
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// --- users ---

// CreateUser inserts a user and returns the generated id
func (s *Store) CreateUser(ctx context.Context, username, email, passwordHash string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id`,
		username, email, passwordHash,
	).Scan(&id)
	return id, err
}

// GetUserByUsername looks a user up for login
func (s *Store) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	var u model.User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, timezone FROM users WHERE username = $1`,
		username,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Timezone)
	return u, err
}

// GetUserByEmail looks a user up for magic-link login
func (s *Store) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	var u model.User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, timezone FROM users WHERE email = $1`,
		email,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Timezone)
	return u, err
}

// GetUser returns a user by id
func (s *Store) GetUser(ctx context.Context, userID string) (model.User, error) {
	var u model.User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, timezone FROM users WHERE id = $1`,
		userID,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Timezone)
	return u, err
}

// SetUserTimezone updates the user's fixed IANA zone
func (s *Store) SetUserTimezone(ctx context.Context, userID, timezone string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users SET timezone = $1, updated_at = NOW() WHERE id = $2`,
		timezone, userID,
	)
	return err
}

// UserLocation resolves the user's timezone for day computations
func (s *Store) UserLocation(ctx context.Context, userID string) (*time.Location, error) {
	u, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading user timezone: %w", err)
	}
	return u.Location(), nil
}

// --- sessions ---

// CreateSession stores a new session token
func (s *Store) CreateSession(ctx context.Context, userID, token string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, token, expires_at)
		VALUES ($1, $2, $3, $4)`,
		uuid.New().String(), userID, token, expiresAt,
	)
	return err
}

// GetSession returns the session for a token
func (s *Store) GetSession(ctx context.Context, token string) (model.Session, error) {
	var sess model.Session
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, token, expires_at FROM sessions WHERE token = $1`,
		token,
	).Scan(&sess.ID, &sess.UserID, &sess.Token, &sess.ExpiresAt)
	return sess, err
}

// DeleteSession revokes a session token
func (s *Store) DeleteSession(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	return err
}

// ActiveUserIDs lists users with at least one unexpired session
func (s *Store) ActiveUserIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT user_id FROM sessions WHERE expires_at > NOW()`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// --- magic links ---

// CreateMagicLink stores a passwordless login token
func (s *Store) CreateMagicLink(ctx context.Context, email, token string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO magic_links (id, email, token, expires_at)
		VALUES ($1, $2, $3, $4)`,
		uuid.New().String(), email, token, expiresAt,
	)
	return err
}

// GetMagicLink returns a magic link by token
func (s *Store) GetMagicLink(ctx context.Context, token string) (model.MagicLink, error) {
	var m model.MagicLink
	err := s.db.QueryRowContext(ctx, `
		SELECT email, expires_at, used FROM magic_links WHERE token = $1`,
		token,
	).Scan(&m.Email, &m.ExpiresAt, &m.Used)
	m.Token = token
	return m, err
}

// MarkMagicLinkUsed burns a magic link token
func (s *Store) MarkMagicLinkUsed(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE magic_links SET used = TRUE WHERE token = $1`, token)
	return err
}

// --- tasks ---

// CreateTask inserts a task at the end of the day's list and returns it.
// The id is minted here rather than by the column default. Position is
// max+1 for the (user, day) pair, so gaps left by deletes are tolerated.
func (s *Store) CreateTask(ctx context.Context, userID string, day model.Day, text string) (model.Task, error) {
	t := model.NewTask(uuid.New().String(), userID, day, text, 0)
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO daily_tasks (id, user_id, task_date, task_text, position)
		VALUES ($1, $2, $3::date, $4,
			(SELECT COALESCE(MAX(position), 0) + 1 FROM daily_tasks
			 WHERE user_id = $2 AND task_date = $3::date))
		RETURNING position, created_at`,
		t.ID, userID, day.String(), text,
	).Scan(&t.Position, &t.CreatedAt)
	return t, err
}

// TasksForDay returns a user's tasks for one day, in display order
func (s *Store) TasksForDay(ctx context.Context, userID string, day model.Day) ([]model.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, task_date::text, task_text, done, position, created_at
		FROM daily_tasks
		WHERE user_id = $1 AND task_date = $2::date
		ORDER BY position ASC`,
		userID, day.String(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		var t model.Task
		var date string
		if err := rows.Scan(&t.ID, &t.UserID, &date, &t.Text, &t.Done, &t.Position, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.Day = model.Day(date)
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// SetTaskDone flips the completion flag
func (s *Store) SetTaskDone(ctx context.Context, taskID, userID string, done bool) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE daily_tasks SET done = $1 WHERE id = $2 AND user_id = $3`,
		done, taskID, userID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// SetTaskText edits a task's content
func (s *Store) SetTaskText(ctx context.Context, taskID, userID, text string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE daily_tasks SET task_text = $1 WHERE id = $2 AND user_id = $3`,
		text, taskID, userID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// GetTask returns one task scoped to its owner
func (s *Store) GetTask(ctx context.Context, taskID, userID string) (model.Task, error) {
	var t model.Task
	var date string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, task_date::text, task_text, done, position, created_at
		FROM daily_tasks WHERE id = $1 AND user_id = $2`,
		taskID, userID,
	).Scan(&t.ID, &t.UserID, &date, &t.Text, &t.Done, &t.Position, &t.CreatedAt)
	t.Day = model.Day(date)
	return t, err
}

// DeleteTask removes a single task
func (s *Store) DeleteTask(ctx context.Context, taskID, userID string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM daily_tasks WHERE id = $1 AND user_id = $2`,
		taskID, userID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// TaskOrder pairs a task with its new position
type TaskOrder struct {
	ID       string `json:"id"`
	Position int    `json:"position"`
}

// ReorderTasks applies a whole reorder in one transaction, so readers
// never observe a half-applied ordering.
func (s *Store) ReorderTasks(ctx context.Context, userID string, orders []TaskOrder) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, o := range orders {
		res, err := tx.ExecContext(ctx, `
			UPDATE daily_tasks SET position = $1 WHERE id = $2 AND user_id = $3`,
			o.Position, o.ID, userID,
		)
		if err != nil {
			return err
		}
		if err := requireRow(res); err != nil {
			return fmt.Errorf("task %s: %w", o.ID, err)
		}
	}

	return tx.Commit()
}

// CountTasksBefore counts tasks strictly older than day
func (s *Store) CountTasksBefore(ctx context.Context, userID string, day model.Day) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM daily_tasks WHERE user_id = $1 AND task_date < $2::date`,
		userID, day.String(),
	).Scan(&n)
	return n, err
}

// DeleteTasksBefore purges all tasks strictly older than day
func (s *Store) DeleteTasksBefore(ctx context.Context, userID string, day model.Day) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM daily_tasks WHERE user_id = $1 AND task_date < $2::date`,
		userID, day.String(),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// --- history ---

// UpsertHistory writes one day's summary, replacing any earlier attempt
// for the same (user, day)
func (s *Store) UpsertHistory(ctx context.Context, h model.DayHistory) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO completion_history (user_id, day, total_tasks, completed_tasks, completion_percentage, color)
		VALUES ($1, $2::date, $3, $4, $5, $6)
		ON CONFLICT (user_id, day) DO UPDATE SET
			total_tasks = EXCLUDED.total_tasks,
			completed_tasks = EXCLUDED.completed_tasks,
			completion_percentage = EXCLUDED.completion_percentage,
			color = EXCLUDED.color`,
		h.UserID, h.Day.String(), h.Total, h.Completed, h.Percentage, h.Color,
	)
	return err
}

// HistoryRange returns history rows for an inclusive date range
func (s *Store) HistoryRange(ctx context.Context, userID string, from, to model.Day) ([]model.DayHistory, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, day::text, total_tasks, completed_tasks, completion_percentage, color
		FROM completion_history
		WHERE user_id = $1 AND day >= $2::date AND day <= $3::date
		ORDER BY day ASC`,
		userID, from.String(), to.String(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []model.DayHistory
	for rows.Next() {
		var h model.DayHistory
		var day string
		if err := rows.Scan(&h.UserID, &day, &h.Total, &h.Completed, &h.Percentage, &h.Color); err != nil {
			return nil, err
		}
		h.Day = model.Day(day)
		history = append(history, h)
	}
	return history, rows.Err()
}

// --- rollover checkpoint ---

// ClaimRollover takes ownership of today's rollover under a row lock.
// Exactly one caller per user per day acquires the claim; a claim against
// a half-finished run returns the recorded phase so the engine resumes.
func (s *Store) ClaimRollover(ctx context.Context, userID string, today model.Day) (rollover.Claim, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return rollover.Claim{}, err
	}
	defer tx.Rollback()

	var date, phase string
	err = tx.QueryRowContext(ctx, `
		SELECT reset_date::text, phase FROM rollover_state WHERE user_id = $1 FOR UPDATE`,
		userID,
	).Scan(&date, &phase)

	switch {
	case err == sql.ErrNoRows:
		// First rollover ever for this user.
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO rollover_state (user_id, reset_date, phase, updated_at)
			VALUES ($1, $2::date, $3, NOW())`,
			userID, today.String(), string(rollover.PhaseArchiving),
		); err != nil {
			return rollover.Claim{}, err
		}
	case err != nil:
		return rollover.Claim{}, err
	case date == today.String() && phase == string(rollover.PhaseDone):
		return rollover.Claim{Acquired: false}, tx.Commit()
	case date == today.String() && phase == string(rollover.PhasePurging):
		// A previous run archived but never finished purging.
		return rollover.Claim{Acquired: true, Phase: rollover.PhasePurging}, tx.Commit()
	default:
		if _, err := tx.ExecContext(ctx, `
			UPDATE rollover_state SET reset_date = $2::date, phase = $3, updated_at = NOW()
			WHERE user_id = $1`,
			userID, today.String(), string(rollover.PhaseArchiving),
		); err != nil {
			return rollover.Claim{}, err
		}
	}

	return rollover.Claim{Acquired: true, Phase: rollover.PhaseArchiving}, tx.Commit()
}

// MarkPurging records that archival finished
func (s *Store) MarkPurging(ctx context.Context, userID string, today model.Day) error {
	return s.setPhase(ctx, userID, today, rollover.PhasePurging)
}

// MarkDone records a completed rollover
func (s *Store) MarkDone(ctx context.Context, userID string, today model.Day) error {
	return s.setPhase(ctx, userID, today, rollover.PhaseDone)
}

func (s *Store) setPhase(ctx context.Context, userID string, today model.Day, phase rollover.Phase) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE rollover_state SET phase = $1, updated_at = NOW()
		WHERE user_id = $2 AND reset_date = $3::date`,
		string(phase), userID, today.String(),
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// requireRow turns a zero-row update into an error
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
