package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"taskrouter/internal/models"
)

type TaskRepository interface {
	CreateTask(ctx context.Context, task *models.Task) error
	GetTaskByID(ctx context.Context, id string) (*models.Task, error)
	ListTasks(ctx context.Context, filters models.TaskFilters) ([]models.Task, error)
}

type taskRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewTaskRepository(db *sqlx.DB, logger *zap.Logger) TaskRepository {
	return &taskRepository{db: db, logger: logger}
}

// CreateTask persists a task. route_to is written here and never updated
// afterwards; there is deliberately no UpdateRoute method on this interface.
func (r *taskRepository) CreateTask(ctx context.Context, task *models.Task) error {
	query := `INSERT INTO tasks (id, title, assignor_id, assignee_id, addressed_user_ids, source, route_to, priority, status, channel_id, raw_text_encrypted)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING created_at`
	err := r.db.QueryRowxContext(ctx, query,
		task.ID, task.Title, task.AssignorID, task.AssigneeID, task.AddressedUserIDs,
		task.Source, task.RouteTo, task.Priority, task.Status, task.ChannelID, task.RawTextEncrypted,
	).Scan(&task.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to insert task", zap.String("task_id", task.ID), zap.Error(err))
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

func (r *taskRepository) GetTaskByID(ctx context.Context, id string) (*models.Task, error) {
	var task models.Task
	query := `SELECT id, title, assignor_id, assignee_id, addressed_user_ids, source, route_to, priority, status, created_at, channel_id, raw_text_encrypted
	          FROM tasks WHERE id = $1`
	err := r.db.GetContext(ctx, &task, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) ListTasks(ctx context.Context, filters models.TaskFilters) ([]models.Task, error) {
	query := `SELECT id, title, assignor_id, assignee_id, addressed_user_ids, source, route_to, priority, status, created_at, channel_id, raw_text_encrypted
	          FROM tasks`

	var (
		conditions []string
		args       []interface{}
	)
	if filters.Status != "" {
		args = append(args, filters.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filters.RouteTo != "" {
		args = append(args, filters.RouteTo)
		conditions = append(conditions, fmt.Sprintf("route_to = $%d", len(args)))
	}
	if filters.Source != "" {
		args = append(args, filters.Source)
		conditions = append(conditions, fmt.Sprintf("source = $%d", len(args)))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"

	var tasks []models.Task
	if err := r.db.SelectContext(ctx, &tasks, query, args...); err != nil {
		return nil, err
	}
	return tasks, nil
}
