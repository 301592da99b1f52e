package models

import "time"

// SessionState reports whether a resolve call found an existing session
// or created a new one.
type SessionState string

const (
	SessionFound   SessionState = "found"
	SessionCreated SessionState = "created"
)

// Session represents a row in the 'sessions' table. Exactly one session
// exists per (user_id, thread_kind, thread_key) triple; the table carries
// a unique constraint on the triple.
type Session struct {
	ID             string    `db:"id" json:"session_id"`
	UserID         string    `db:"user_id" json:"user_id"`
	ThreadKind     string    `db:"thread_kind" json:"thread_kind"`
	ThreadKey      string    `db:"thread_key" json:"thread_key"`
	Title          string    `db:"title" json:"title"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	LastActivityAt time.Time `db:"last_activity_at" json:"last_activity_at"`
}
