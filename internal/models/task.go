package models

import (
	"time"

	"github.com/lib/pq"
)

// TaskSource identifies which collaborator created a task.
type TaskSource string

const (
	SourceChat         TaskSource = "chat"
	SourceIssueTracker TaskSource = "issue_tracker"
	SourceCalendar     TaskSource = "calendar"
	SourceManual       TaskSource = "manual"
)

// Route is the destination queue a task is placed into at creation time.
// It is computed exactly once and never recomputed.
type Route string

const (
	RoutePersonalQueue Route = "personal_queue"
	RouteTeamQueueA    Route = "team_queue_a"
	RouteTeamQueueB    Route = "team_queue_b"
)

// TaskStatus is the task lifecycle state.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in_progress"
	StatusDone       TaskStatus = "done"
)

// Task represents a row in the 'tasks' table. RawTextEncrypted holds the
// AES-GCM encrypted original message text for audit/chat continuity; the
// store decrypts it into RawText before returning tasks to callers.
type Task struct {
	ID               string         `db:"id" json:"task_id"`
	Title            string         `db:"title" json:"title"`
	AssignorID       string         `db:"assignor_id" json:"assignor_id"`
	AssigneeID       *string        `db:"assignee_id" json:"assignee_id,omitempty"`
	AddressedUserIDs pq.StringArray `db:"addressed_user_ids" json:"addressed_user_ids"`
	Source           TaskSource     `db:"source" json:"source"`
	RouteTo          Route          `db:"route_to" json:"route_to"`
	Priority         int            `db:"priority" json:"priority"`
	Status           TaskStatus     `db:"status" json:"status"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
	ChannelID        string         `db:"channel_id" json:"channel_id"`
	RawTextEncrypted string         `db:"raw_text_encrypted" json:"-"`
	RawText          string         `db:"-" json:"raw_text,omitempty"`
}

// TaskCreatedEvent is emitted to downstream notification collaborators
// after a task has been persisted.
type TaskCreatedEvent struct {
	TaskID     string  `json:"task_id"`
	RouteTo    Route   `json:"route_to"`
	AssigneeID *string `json:"assignee_id"`
}

// TaskFilters narrows a task query. Zero values mean "no filter".
type TaskFilters struct {
	Status  TaskStatus
	RouteTo Route
	Source  TaskSource
}
