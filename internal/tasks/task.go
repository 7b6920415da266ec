// Package tasks owns the task collection and its write-through persistence.
package tasks

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/i474232898/taskmaster/internal/validation"
)

// Priority is the ordinal classification used for filtering and ordering.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// AnonymousUser owns tasks created without an active session.
const AnonymousUser = "anonymous"

var (
	// ErrDuplicateID is returned when a task id is already taken.
	ErrDuplicateID = errors.New("task id already exists")

	// ErrInvalidPriority is returned for a priority outside low/medium/high.
	ErrInvalidPriority = errors.New("invalid priority")
)

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ParsePriority accepts low, medium or high in any case.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPriority, s)
	}
	return p, nil
}

// Task is a unit of work owned by a user.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Completed   bool      `json:"completed"`
	Priority    Priority  `json:"priority"`
	Location    string    `json:"location,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UserID      string    `json:"userId"`
}

// Draft is user input for a new task, before id and timestamp exist.
type Draft struct {
	Title       string `json:"title" validate:"notblank"`
	Description string `json:"description"`
	Priority    string `json:"priority" validate:"omitempty,oneof=low medium high"`
	Location    string `json:"location"`
}

// Task validates the draft and returns a normalized task owned by userID.
// Text fields are trimmed, priority defaults to medium and an empty userID
// becomes AnonymousUser. ID and CreatedAt are left for the store to assign.
func (d Draft) Task(userID string) (Task, error) {
	if err := validation.Struct(d); err != nil {
		return Task{}, err
	}

	priority := PriorityMedium
	if d.Priority != "" {
		priority = Priority(d.Priority)
	}
	if userID == "" {
		userID = AnonymousUser
	}

	return Task{
		Title:       strings.TrimSpace(d.Title),
		Description: strings.TrimSpace(d.Description),
		Priority:    priority,
		Location:    strings.TrimSpace(d.Location),
		UserID:      userID,
	}, nil
}
