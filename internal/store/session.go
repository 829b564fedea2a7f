package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned when no session exists for the given id.
// Callers must treat it as terminal: a submission can never be recorded
// against a session that was not persisted first.
var ErrSessionNotFound = errors.New("problem session not found")

// Session is one generated problem awaiting or having received judgment.
// Sessions are created once and never mutated or deleted.
type Session struct {
	ID            string
	ProblemText   string
	CorrectAnswer float64
	CreatedAt     time.Time
}

// Submission is one judged attempt against a session. Submissions are
// additive audit records; many may reference the same session.
type Submission struct {
	ID           int64
	SessionID    string
	UserAnswer   float64
	IsCorrect    bool
	FeedbackText string
	CreatedAt    time.Time
}

// SessionRepo provides access to problem sessions and their submissions.
type SessionRepo interface {
	// InsertSession persists a new problem and returns its opaque id.
	InsertSession(ctx context.Context, problemText string, correctAnswer float64) (string, error)

	// GetSession loads a session by id. Returns ErrSessionNotFound when no
	// row exists; any other error is a storage failure.
	GetSession(ctx context.Context, id string) (*Session, error)

	// InsertSubmission records a judged attempt.
	InsertSubmission(ctx context.Context, sub *Submission) error
}

// sessionRepo implements SessionRepo over database/sql.
type sessionRepo struct {
	db *sql.DB
}

func (r *sessionRepo) InsertSession(ctx context.Context, problemText string, correctAnswer float64) (string, error) {
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO problem_sessions (id, problem_text, correct_answer) VALUES (?, ?, ?)`,
		id, problemText, correctAnswer,
	)
	if err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}
	return id, nil
}

func (r *sessionRepo) GetSession(ctx context.Context, id string) (*Session, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, problem_text, correct_answer, created_at FROM problem_sessions WHERE id = ?`,
		id,
	)

	var s Session
	err := row.Scan(&s.ID, &s.ProblemText, &s.CorrectAnswer, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &s, nil
}

func (r *sessionRepo) InsertSubmission(ctx context.Context, sub *Submission) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO problem_submissions (session_id, user_answer, is_correct, feedback_text) VALUES (?, ?, ?, ?)`,
		sub.SessionID, sub.UserAnswer, sub.IsCorrect, sub.FeedbackText,
	)
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		sub.ID = id
	}
	return nil
}
