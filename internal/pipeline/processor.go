package pipeline

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskrouter/internal/assignment"
	"taskrouter/internal/events"
	"taskrouter/internal/intent"
	"taskrouter/internal/mentions"
	"taskrouter/internal/models"
	"taskrouter/internal/repository"
	"taskrouter/internal/routing"
	"taskrouter/internal/session"
	"taskrouter/internal/store"
)

const (
	// taskThreadKind is the thread kind under which per-task conversation
	// sessions are resolved.
	taskThreadKind = "task"

	maxTitleLen     = 80
	defaultPriority = 2
)

// RoleDirectory resolves a sender's role for team-queue routing.
type RoleDirectory interface {
	RoleOf(ctx context.Context, userID string) models.Role
}

// RepoRoleDirectory looks roles up in the users table, defaulting to
// generalist for senders without an account.
type RepoRoleDirectory struct {
	repo   repository.AuthRepository
	logger *zap.Logger
}

func NewRepoRoleDirectory(repo repository.AuthRepository, logger *zap.Logger) *RepoRoleDirectory {
	return &RepoRoleDirectory{repo: repo, logger: logger}
}

func (d *RepoRoleDirectory) RoleOf(ctx context.Context, userID string) models.Role {
	user, err := d.repo.GetUserByUsername(ctx, userID)
	if err != nil {
		d.logger.Debug("sender has no account, assuming generalist", zap.String("user_id", userID))
		return models.RoleGeneralist
	}
	return user.Role
}

// Processor runs the sequential message pipeline:
// extraction → classification → resolution → routing → persistence.
// Runs for different messages share no mutable state and may execute in
// parallel; the only same-resource hazard, session find-or-create, is
// handled inside the session resolver.
type Processor struct {
	rules    *intent.RuleBased
	detector intent.Detector
	router   *routing.Router
	store    *store.TaskStore
	sessions *session.Resolver
	roles    RoleDirectory
	events   events.Publisher
	logger   *zap.Logger
}

func NewProcessor(
	rules *intent.RuleBased,
	detector intent.Detector,
	router *routing.Router,
	taskStore *store.TaskStore,
	sessions *session.Resolver,
	roles RoleDirectory,
	publisher events.Publisher,
	logger *zap.Logger,
) *Processor {
	return &Processor{
		rules:    rules,
		detector: detector,
		router:   router,
		store:    taskStore,
		sessions: sessions,
		roles:    roles,
		events:   publisher,
		logger:   logger,
	}
}

// Process turns one inbound message into at most one task. A nil task with
// a nil error means the message was processed but is not a work request.
// A persistence error is returned to the caller (who may retry) and never
// aborts the surrounding ingestion loop.
func (p *Processor) Process(ctx context.Context, msg models.InboundMessage) (*models.Task, error) {
	addressed := mentions.Extract(msg.RawText)
	result := p.detector.Detect(ctx, msg.RawText, addressed)

	if !result.IsWorkRequest {
		// Common near-miss worth observing: imperative phrasing with
		// nobody addressed.
		if len(addressed) == 0 && p.rules.HasActionVerb(msg.RawText) {
			p.logger.Info("work-request-like message with no addressed users, no task produced",
				zap.String("sender_id", msg.SenderID),
				zap.String("channel_id", msg.ChannelID))
		}
		return nil, nil
	}

	assigned, ok := assignment.Resolve(msg.SenderID, addressed, result)
	if !ok {
		return nil, nil
	}

	senderRole := p.roles.RoleOf(ctx, msg.SenderID)
	route := p.router.Route(result.Category, len(addressed), senderRole)

	task := &models.Task{
		ID:               uuid.NewString(),
		Title:            taskTitle(msg.RawText),
		AssignorID:       assigned.AssignorID,
		AssigneeID:       assigned.AssigneeID,
		AddressedUserIDs: addressed,
		Source:           models.SourceChat,
		RouteTo:          route,
		Priority:         defaultPriority,
		Status:           models.StatusTodo,
		ChannelID:        msg.ChannelID,
		RawText:          msg.RawText,
	}

	if err := p.store.CreateTask(ctx, task); err != nil {
		p.logger.Error("Failed to persist task", zap.String("sender_id", msg.SenderID), zap.Error(err))
		return nil, err
	}

	// The task row is final at this point; session and event failures are
	// observability problems, not pipeline failures.
	sess, _, err := p.sessions.GetOrCreate(ctx, task.AssignorID, taskThreadKind, task.ID)
	if err != nil {
		p.logger.Error("Failed to resolve task session", zap.String("task_id", task.ID), zap.Error(err))
	} else if err := p.sessions.SetTaskTitle(ctx, sess, task.Title); err != nil {
		p.logger.Error("Failed to set session title", zap.String("session_id", sess.ID), zap.Error(err))
	}

	_ = p.events.PublishTaskCreated(ctx, models.TaskCreatedEvent{
		TaskID:     task.ID,
		RouteTo:    task.RouteTo,
		AssigneeID: task.AssigneeID,
	})

	return task, nil
}

// taskTitle derives a short task title from the message text with leading
// mention tokens removed.
func taskTitle(rawText string) string {
	title := strings.TrimSpace(mentions.StripLeading(rawText))
	if title == "" {
		title = "Untitled task"
	}
	if len(title) > maxTitleLen {
		title = title[:maxTitleLen]
	}
	return title
}
