package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"taskrouter/internal/crypto"
	"taskrouter/internal/models"
	"taskrouter/internal/policy"
	"taskrouter/internal/repository"
)

// TaskStore is the access-scoped task store. Writes encrypt the raw message
// context at rest; reads are filtered through the caller's role policy, so
// the returned set is always a subset of what an admin would see for the
// same filters.
type TaskStore struct {
	repo     repository.TaskRepository
	policies *policy.Selector
	cipher   *crypto.Cipher
	logger   *zap.Logger
}

func NewTaskStore(repo repository.TaskRepository, policies *policy.Selector, cipher *crypto.Cipher, logger *zap.Logger) *TaskStore {
	return &TaskStore{
		repo:     repo,
		policies: policies,
		cipher:   cipher,
		logger:   logger,
	}
}

// CreateTask encrypts the task's raw context and persists it. Once the row
// is written the task is final for this core; failures are surfaced to the
// caller, who may retry, without corrupting the upstream ingestion loop.
func (s *TaskStore) CreateTask(ctx context.Context, task *models.Task) error {
	if task.AssignorID == "" {
		return fmt.Errorf("assignor_id is required")
	}

	encrypted, err := s.cipher.Encrypt(task.RawText)
	if err != nil {
		return fmt.Errorf("failed to encrypt raw context: %w", err)
	}
	task.RawTextEncrypted = encrypted

	if err := s.repo.CreateTask(ctx, task); err != nil {
		return err
	}

	s.logger.Info("task created",
		zap.String("task_id", task.ID),
		zap.String("assignor_id", task.AssignorID),
		zap.String("route_to", string(task.RouteTo)),
		zap.String("source", string(task.Source)))
	return nil
}

// GetTasks answers a query scoped by the caller's role. Unknown roles fail
// closed and produce an empty result set, never partial data.
func (s *TaskStore) GetTasks(ctx context.Context, callerID string, callerRole models.Role, filters models.TaskFilters) ([]models.Task, error) {
	all, err := s.repo.ListTasks(ctx, filters)
	if err != nil {
		return nil, err
	}

	pol := s.policies.ForRole(callerRole)

	visible := make([]models.Task, 0, len(all))
	for _, task := range all {
		if !pol.Permits(task, callerID) {
			continue
		}
		if task.RawTextEncrypted != "" {
			plaintext, err := s.cipher.Decrypt(task.RawTextEncrypted)
			if err != nil {
				s.logger.Warn("failed to decrypt task raw context, omitting it",
					zap.String("task_id", task.ID), zap.Error(err))
			} else {
				task.RawText = plaintext
			}
		}
		visible = append(visible, task)
	}

	s.logger.Debug("task query answered",
		zap.String("caller_id", callerID),
		zap.String("policy", pol.Name()),
		zap.Int("matched", len(all)),
		zap.Int("visible", len(visible)))

	return visible, nil
}
