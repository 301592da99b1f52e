package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"taskrouter/internal/models"
)

// SessionRepository persists conversation sessions keyed by the
// (user_id, thread_kind, thread_key) triple. The table carries a unique
// constraint on the triple, so Upsert can never create a duplicate row
// even under concurrent calls.
type SessionRepository interface {
	// Upsert inserts the session or, when the triple already exists,
	// refreshes last_activity_at. It fills in the stored row and reports
	// whether the row was newly created.
	Upsert(ctx context.Context, session *models.Session) (created bool, err error)
	GetByTriple(ctx context.Context, userID, threadKind, threadKey string) (*models.Session, error)
	UpdateTitle(ctx context.Context, id, title string) error
}

type sessionRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewSessionRepository(db *sqlx.DB, logger *zap.Logger) SessionRepository {
	return &sessionRepository{db: db, logger: logger}
}

func (r *sessionRepository) Upsert(ctx context.Context, session *models.Session) (bool, error) {
	now := time.Now().UTC()
	query := `
INSERT INTO sessions (id, user_id, thread_kind, thread_key, title, created_at, last_activity_at)
VALUES ($1, $2, $3, $4, $5, $6, $6)
ON CONFLICT (user_id, thread_kind, thread_key)
DO UPDATE SET last_activity_at = EXCLUDED.last_activity_at
RETURNING id, user_id, thread_kind, thread_key, title, created_at, last_activity_at`

	var stored models.Session
	err := r.db.QueryRowxContext(ctx, query,
		session.ID, session.UserID, session.ThreadKind, session.ThreadKey, session.Title, now,
	).StructScan(&stored)
	if err != nil {
		r.logger.Error("Failed to upsert session",
			zap.String("user_id", session.UserID),
			zap.String("thread_kind", session.ThreadKind),
			zap.String("thread_key", session.ThreadKey),
			zap.Error(err))
		return false, fmt.Errorf("failed to upsert session: %w", err)
	}

	// A fresh insert stores the same timestamp in both columns; a conflict
	// only moves last_activity_at forward.
	created := stored.CreatedAt.Equal(stored.LastActivityAt)
	*session = stored
	return created, nil
}

func (r *sessionRepository) GetByTriple(ctx context.Context, userID, threadKind, threadKey string) (*models.Session, error) {
	var session models.Session
	query := `SELECT id, user_id, thread_kind, thread_key, title, created_at, last_activity_at
	          FROM sessions WHERE user_id = $1 AND thread_kind = $2 AND thread_key = $3`
	err := r.db.GetContext(ctx, &session, query, userID, threadKind, threadKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) UpdateTitle(ctx context.Context, id, title string) error {
	query := `UPDATE sessions SET title = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, title, id)
	return err
}
