package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskrouter/internal/models"
	"taskrouter/internal/repository"
)

// TitlePrefix is the canonical prefix applied to task-thread session titles.
const TitlePrefix = "Task: "

// Resolver maps a (user, thread-kind, thread-key) triple to exactly one
// conversation session. Lookup always goes through the full triple; there
// is no "most recently touched session for this user" fallback, which
// silently merges unrelated conversations.
type Resolver struct {
	repo   repository.SessionRepository
	logger *zap.Logger
}

func NewResolver(repo repository.SessionRepository, logger *zap.Logger) *Resolver {
	return &Resolver{repo: repo, logger: logger}
}

// GetOrCreate resolves the session for the triple, creating it on first
// access. The underlying upsert is keyed by a uniqueness constraint on the
// triple, so concurrent calls for the same triple converge on one row.
func (r *Resolver) GetOrCreate(ctx context.Context, userID, threadKind, threadKey string) (*models.Session, models.SessionState, error) {
	if userID == "" || threadKind == "" || threadKey == "" {
		return nil, "", fmt.Errorf("session triple requires user_id, thread_kind and thread_key")
	}

	candidate := &models.Session{
		ID:         uuid.NewString(),
		UserID:     userID,
		ThreadKind: threadKind,
		ThreadKey:  threadKey,
	}

	created, err := r.repo.Upsert(ctx, candidate)
	if err != nil {
		return nil, "", err
	}

	state := models.SessionFound
	if created {
		state = models.SessionCreated
		r.logger.Info("conversation session created",
			zap.String("session_id", candidate.ID),
			zap.String("user_id", userID),
			zap.String("thread_kind", threadKind),
			zap.String("thread_key", threadKey))
	}

	return candidate, state, nil
}

// SetTaskTitle assigns the session title from a base title, applying the
// canonical prefix idempotently: calling it any number of times with the
// same base yields the prefix exactly once.
func (r *Resolver) SetTaskTitle(ctx context.Context, session *models.Session, baseTitle string) error {
	title := EnsureTitlePrefix(baseTitle)
	if session.Title == title {
		return nil
	}
	if err := r.repo.UpdateTitle(ctx, session.ID, title); err != nil {
		return fmt.Errorf("failed to update session title: %w", err)
	}
	session.Title = title
	return nil
}

// EnsureTitlePrefix prepends TitlePrefix unless it is already present.
func EnsureTitlePrefix(title string) string {
	if strings.HasPrefix(title, TitlePrefix) {
		return title
	}
	return TitlePrefix + title
}
