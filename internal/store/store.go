// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/tuimath/internal/model"
	"github.com/verte-zerg/tuimath/internal/session"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for users, settings, and session data.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			token TEXT NOT NULL UNIQUE,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS settings (
			id INTEGER PRIMARY KEY,
			user_id INTEGER UNIQUE,
			addition_enabled INTEGER NOT NULL,
			addition_min1 INTEGER NOT NULL,
			addition_max1 INTEGER NOT NULL,
			addition_min2 INTEGER NOT NULL,
			addition_max2 INTEGER NOT NULL,
			subtraction_enabled INTEGER NOT NULL,
			subtraction_min1 INTEGER NOT NULL,
			subtraction_max1 INTEGER NOT NULL,
			subtraction_min2 INTEGER NOT NULL,
			subtraction_max2 INTEGER NOT NULL,
			multiplication_enabled INTEGER NOT NULL,
			multiplication_min1 INTEGER NOT NULL,
			multiplication_max1 INTEGER NOT NULL,
			multiplication_min2 INTEGER NOT NULL,
			multiplication_max2 INTEGER NOT NULL,
			division_enabled INTEGER NOT NULL,
			division_min1 INTEGER NOT NULL,
			division_max1 INTEGER NOT NULL,
			division_min2 INTEGER NOT NULL,
			division_max2 INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY,
			user_id INTEGER,
			anonymous_name TEXT NOT NULL DEFAULT '',
			score INTEGER NOT NULL DEFAULT 0,
			duration_sec INTEGER NOT NULL,
			is_default_settings INTEGER NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS problems (
			id INTEGER PRIMARY KEY,
			session_id INTEGER NOT NULL,
			question TEXT NOT NULL,
			answer INTEGER NOT NULL,
			user_answer INTEGER NOT NULL,
			time_spent_ms INTEGER NOT NULL,
			typo_count INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_score ON sessions(score);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at);`,
		`CREATE INDEX IF NOT EXISTS idx_problems_session_id ON problems(session_id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

var anonymousAdjectives = []string{
	"Swift", "Clever", "Quick", "Sharp", "Brilliant",
	"Fast", "Smart", "Rapid", "Nimble", "Speedy",
	"Bright", "Keen", "Alert", "Agile", "Deft",
}

var anonymousNouns = []string{
	"Calculator", "Mathematician", "Scholar", "Genius", "Wizard",
	"Master", "Expert", "Champion", "Ace", "Pro",
	"Ninja", "Samurai", "Knight", "Hero", "Legend",
}

func anonymousName() string {
	adjective := anonymousAdjectives[rand.Intn(len(anonymousAdjectives))]
	noun := anonymousNouns[rand.Intn(len(anonymousNouns))]
	return fmt.Sprintf("%s %s %d", adjective, noun, rand.Intn(9999)+1)
}

// CreateSession inserts a new session row. Unattributed sessions get a
// generated anonymous name for the leaderboard.
func (s *Store) CreateSession(ctx context.Context, isDefault bool, userID *int64) (model.SessionInfo, error) {
	startedAt := time.Now()
	name := ""
	if userID == nil {
		name = anonymousName()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (user_id, anonymous_name, score, duration_sec, is_default_settings, started_at)
		 VALUES (?, ?, 0, ?, ?, ?)`,
		userID, name, int(session.Duration/time.Second), boolInt(isDefault), startedAt.Format(time.RFC3339Nano))
	if err != nil {
		return model.SessionInfo{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.SessionInfo{}, err
	}
	return model.SessionInfo{SessionID: id, StartedAt: startedAt}, nil
}

// SubmitProblem appends one completed-problem record to a session.
func (s *Store) SubmitProblem(ctx context.Context, sessionID int64, record model.ProblemRecord) error {
	var exists int64
	if err := s.db.QueryRowContext(ctx, `SELECT id FROM sessions WHERE id = ?`, sessionID).Scan(&exists); err != nil {
		return fmt.Errorf("session %d not found: %w", sessionID, err)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO problems (session_id, question, answer, user_answer, time_spent_ms, typo_count)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sessionID, record.Question, record.Answer, record.UserAnswer, record.TimeSpentMs, record.TypoCount)
	return err
}

// CompleteSession records the final score and the end timestamp.
func (s *Store) CompleteSession(ctx context.Context, sessionID int64, finalScore int) (model.Session, error) {
	endedAt := time.Now()
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET score = ?, ended_at = ? WHERE id = ?`,
		finalScore, endedAt.Format(time.RFC3339Nano), sessionID)
	if err != nil {
		return model.Session{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return model.Session{}, err
	}
	if affected == 0 {
		return model.Session{}, fmt.Errorf("session %d not found", sessionID)
	}
	return s.GetSession(ctx, sessionID)
}

// GetSession loads one session with its problems in completion order.
func (s *Store) GetSession(ctx context.Context, sessionID int64) (model.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT s.id, s.user_id, COALESCE(u.username, ''), s.anonymous_name, s.score, s.duration_sec,
			s.is_default_settings, s.started_at, s.ended_at
		 FROM sessions s LEFT JOIN users u ON u.id = s.user_id
		 WHERE s.id = ?`, sessionID)
	sess, err := scanSession(row)
	if err != nil {
		return model.Session{}, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT question, answer, user_answer, time_spent_ms, typo_count
		 FROM problems WHERE session_id = ? ORDER BY id ASC`, sessionID)
	if err != nil {
		return model.Session{}, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()
	for rows.Next() {
		var rec model.ProblemRecord
		if err := rows.Scan(&rec.Question, &rec.Answer, &rec.UserAnswer, &rec.TimeSpentMs, &rec.TypoCount); err != nil {
			return model.Session{}, err
		}
		sess.Problems = append(sess.Problems, rec)
	}
	if err := rows.Err(); err != nil {
		return model.Session{}, err
	}
	return sess, nil
}

// ListSessions returns session summaries for one attribution, newest first.
// A nil userID selects anonymous sessions.
func (s *Store) ListSessions(ctx context.Context, userID *int64, page, limit int) ([]model.SessionSummary, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	clause := "user_id IS NULL"
	args := []any{}
	if userID != nil {
		clause = "user_id = ?"
		args = append(args, *userID)
	}
	args = append(args, limit, (page-1)*limit)
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT id, score, duration_sec, is_default_settings, started_at, ended_at
		 FROM sessions WHERE %s AND ended_at IS NOT NULL
		 ORDER BY started_at DESC LIMIT ? OFFSET ?`, clause), args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var summaries []model.SessionSummary
	for rows.Next() {
		var sum model.SessionSummary
		var isDefault int
		var startedAt, endedAt string
		if err := rows.Scan(&sum.ID, &sum.Score, &sum.DurationSec, &isDefault, &startedAt, &endedAt); err != nil {
			return nil, err
		}
		sum.IsDefaultSettings = isDefault != 0
		if sum.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, err
		}
		if sum.EndedAt, err = time.Parse(time.RFC3339Nano, endedAt); err != nil {
			return nil, err
		}
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return summaries, nil
}

// DeleteSession removes a session and its problems.
func (s *Store) DeleteSession(ctx context.Context, sessionID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()
	if _, err = tx.ExecContext(ctx, `DELETE FROM problems WHERE session_id = ?`, sessionID); err != nil {
		return err
	}
	var res sql.Result
	if res, err = tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, sessionID); err != nil {
		return err
	}
	var affected int64
	if affected, err = res.RowsAffected(); err != nil {
		return err
	}
	if affected == 0 {
		err = fmt.Errorf("session %d not found", sessionID)
		return err
	}
	return tx.Commit()
}

// TopSessions returns the highest-scoring finished sessions played with the
// default settings, ordered for ranking: score descending, then earlier
// start, then lower id.
func (s *Store) TopSessions(ctx context.Context, n int) ([]model.LeaderboardEntry, error) {
	if n <= 0 {
		n = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT s.id, COALESCE(u.username, ''), s.anonymous_name, s.score, s.duration_sec, s.started_at
		 FROM sessions s LEFT JOIN users u ON u.id = s.user_id
		 WHERE s.is_default_settings = 1 AND s.ended_at IS NOT NULL
		 ORDER BY s.score DESC, s.started_at ASC, s.id ASC
		 LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var entries []model.LeaderboardEntry
	for rows.Next() {
		var entry model.LeaderboardEntry
		var username, anonymous, startedAt string
		if err := rows.Scan(&entry.SessionID, &username, &anonymous, &entry.Score, &entry.DurationSec, &startedAt); err != nil {
			return nil, err
		}
		if username != "" {
			entry.Username = username
		} else {
			entry.Username = anonymous
			if entry.Username == "" {
				entry.Username = fmt.Sprintf("Anonymous Player #%d", entry.SessionID)
			}
			entry.IsAnonymous = true
		}
		if entry.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// ListFinished returns finished sessions matching a history filter, oldest
// first, for stats reporting.
func (s *Store) ListFinished(ctx context.Context, filter model.HistoryFilter) ([]model.SessionSummary, error) {
	clauses := []string{"ended_at IS NOT NULL"}
	args := []any{}
	if filter.UserID != nil {
		clauses = append(clauses, "user_id = ?")
		args = append(args, *filter.UserID)
	} else {
		clauses = append(clauses, "user_id IS NULL")
	}
	if filter.Since != nil {
		clauses = append(clauses, "started_at >= ?")
		args = append(args, filter.Since.Format(time.RFC3339Nano))
	}
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT id, score, duration_sec, is_default_settings, started_at, ended_at
		 FROM sessions WHERE %s ORDER BY started_at ASC`, strings.Join(clauses, " AND ")), args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var sessions []model.SessionSummary
	for rows.Next() {
		var sum model.SessionSummary
		var isDefault int
		var startedAt, endedAt string
		if err := rows.Scan(&sum.ID, &sum.Score, &sum.DurationSec, &isDefault, &startedAt, &endedAt); err != nil {
			return nil, err
		}
		sum.IsDefaultSettings = isDefault != 0
		if sum.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, err
		}
		if sum.EndedAt, err = time.Parse(time.RFC3339Nano, endedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if filter.Last > 0 && len(sessions) > filter.Last {
		sessions = sessions[len(sessions)-filter.Last:]
	}
	return sessions, nil
}

// ProblemAggregate sums per-problem metadata over a set of sessions.
type ProblemAggregate struct {
	Problems    int
	TimeSpentMs int64
	Typos       int
}

// AggregateProblems sums time and typo metadata over the given sessions.
func (s *Store) AggregateProblems(ctx context.Context, sessionIDs []int64) (ProblemAggregate, error) {
	if len(sessionIDs) == 0 {
		return ProblemAggregate{}, nil
	}
	placeholders := make([]string, len(sessionIDs))
	args := make([]any, len(sessionIDs))
	for i, id := range sessionIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(
		`SELECT COUNT(*), COALESCE(SUM(time_spent_ms), 0), COALESCE(SUM(typo_count), 0)
		 FROM problems WHERE session_id IN (%s)`, strings.Join(placeholders, ",")), args...)
	var agg ProblemAggregate
	if err := row.Scan(&agg.Problems, &agg.TimeSpentMs, &agg.Typos); err != nil {
		return ProblemAggregate{}, err
	}
	return agg, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (model.Session, error) {
	var session model.Session
	var userID sql.NullInt64
	var isDefault int
	var startedAt string
	var endedAt sql.NullString
	if err := row.Scan(&session.ID, &userID, &session.Username, &session.AnonymousName,
		&session.Score, &session.DurationSec, &isDefault, &startedAt, &endedAt); err != nil {
		return model.Session{}, err
	}
	if userID.Valid {
		id := userID.Int64
		session.UserID = &id
	}
	session.IsDefaultSettings = isDefault != 0
	parsed, err := time.Parse(time.RFC3339Nano, startedAt)
	if err != nil {
		return model.Session{}, err
	}
	session.StartedAt = parsed
	if endedAt.Valid {
		ended, err := time.Parse(time.RFC3339Nano, endedAt.String)
		if err != nil {
			return model.Session{}, err
		}
		session.EndedAt = &ended
	}
	return session, nil
}
