package events

import (
	"context"

	"go.uber.org/zap"

	"taskrouter/internal/models"
)

// Publisher receives task-created events for downstream notification
// collaborators. Publish failures are logged and never propagate into the
// ingestion pipeline.
type Publisher interface {
	PublishTaskCreated(ctx context.Context, event models.TaskCreatedEvent) error
}

// LogPublisher writes every event to the structured log. It is always
// registered so task creation leaves an audit trail even with no external
// notifier configured.
type LogPublisher struct {
	logger *zap.Logger
}

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) PublishTaskCreated(_ context.Context, event models.TaskCreatedEvent) error {
	assignee := ""
	if event.AssigneeID != nil {
		assignee = *event.AssigneeID
	}
	p.logger.Info("task created event",
		zap.String("task_id", event.TaskID),
		zap.String("route_to", string(event.RouteTo)),
		zap.String("assignee_id", assignee))
	return nil
}

// Fanout publishes to every registered publisher, logging failures
// individually instead of aborting the remaining publishers.
type Fanout struct {
	publishers []Publisher
	logger     *zap.Logger
}

func NewFanout(logger *zap.Logger, publishers ...Publisher) *Fanout {
	return &Fanout{publishers: publishers, logger: logger}
}

// Add registers another publisher. Used at startup for publishers whose
// construction depends on the pipeline itself (the telegram adapter).
func (f *Fanout) Add(p Publisher) {
	f.publishers = append(f.publishers, p)
}

func (f *Fanout) PublishTaskCreated(ctx context.Context, event models.TaskCreatedEvent) error {
	for _, p := range f.publishers {
		if err := p.PublishTaskCreated(ctx, event); err != nil {
			f.logger.Error("Failed to publish task created event",
				zap.String("task_id", event.TaskID), zap.Error(err))
		}
	}
	return nil
}
