package query

import "github.com/i474232898/taskmaster/internal/tasks"

// TaskSource supplies the current task collection.
type TaskSource interface {
	Snapshot() []tasks.Task
}

// UserSource supplies the username of the active session, or "" when
// nobody is logged in.
type UserSource interface {
	Username() string
}

// Engine recomputes views from live stores on every call.
type Engine struct {
	tasks TaskSource
	users UserSource
}

// NewEngine creates an Engine reading from the given sources.
func NewEngine(tasks TaskSource, users UserSource) *Engine {
	return &Engine{tasks: tasks, users: users}
}

// Visible returns the ordered view for the current session.
func (e *Engine) Visible(f Filter) []tasks.Task {
	return Visible(e.tasks.Snapshot(), e.users.Username(), f)
}

// Group returns the priority groups for the current session.
func (e *Engine) Group(f Filter) Groups {
	return Group(e.tasks.Snapshot(), e.users.Username(), f)
}
