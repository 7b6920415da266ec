// Package query derives the visible, filtered and priority-ordered task
// list for a user. It never mutates its input.
package query

import (
	"fmt"
	"strings"

	"github.com/i474232898/taskmaster/internal/common"
	"github.com/i474232898/taskmaster/internal/tasks"
	"github.com/i474232898/taskmaster/internal/validation"
)

// All is the pass-through value for the priority and status filters.
const All = "all"

// Status selects tasks by completion.
type Status string

const (
	StatusAll       Status = All
	StatusCompleted Status = "completed"
	StatusActive    Status = "active"
)

// Filter holds the user-controlled view criteria. The zero value matches
// everything.
type Filter struct {
	Search   string `json:"search"`
	Priority string `json:"priority" validate:"omitempty,oneof=all low medium high"`
	Status   Status `json:"status" validate:"omitempty,oneof=all completed active"`
}

// ParseFilter builds a validated Filter from raw inputs. Empty priority and
// status mean "all".
func ParseFilter(search, priority, status string) (Filter, error) {
	f := Filter{
		Search:   search,
		Priority: strings.ToLower(strings.TrimSpace(priority)),
		Status:   Status(strings.ToLower(strings.TrimSpace(status))),
	}
	if err := validation.Struct(f); err != nil {
		return Filter{}, err
	}
	if f.Priority == "" {
		f.Priority = All
	}
	if f.Status == "" {
		f.Status = StatusAll
	}
	return f, nil
}

// Active reports whether any criterion narrows the result.
func (f Filter) Active() bool {
	return f.Search != "" ||
		(f.Priority != "" && f.Priority != All) ||
		(f.Status != "" && f.Status != StatusAll)
}

func (f Filter) String() string {
	return fmt.Sprintf("search=%q priority=%s status=%s", f.Search, orAll(f.Priority), orAll(string(f.Status)))
}

func orAll(s string) string {
	if s == "" {
		return All
	}
	return s
}

// Match reports whether t passes the search, priority and status criteria.
// Ownership is not checked here.
func (f Filter) Match(t tasks.Task) bool {
	if f.Search != "" && !common.ContainsFold(t.Title, f.Search) && !common.ContainsFold(t.Description, f.Search) {
		return false
	}
	if f.Priority != "" && f.Priority != All && string(t.Priority) != f.Priority {
		return false
	}
	switch f.Status {
	case StatusCompleted:
		return t.Completed
	case StatusActive:
		return !t.Completed
	}
	return true
}

// Groups holds the filtered tasks partitioned by priority, each in
// collection order.
type Groups struct {
	High   []tasks.Task `json:"high"`
	Medium []tasks.Task `json:"medium"`
	Low    []tasks.Task `json:"low"`
}

// Ordered concatenates the groups high, medium, low.
func (g Groups) Ordered() []tasks.Task {
	out := make([]tasks.Task, 0, len(g.High)+len(g.Medium)+len(g.Low))
	out = append(out, g.High...)
	out = append(out, g.Medium...)
	return append(out, g.Low...)
}

// Group filters all for username and partitions the result by priority.
// An empty username means no session and yields empty groups.
func Group(all []tasks.Task, username string, f Filter) Groups {
	var g Groups
	if username == "" {
		return g
	}
	for _, t := range all {
		if t.UserID != username || !f.Match(t) {
			continue
		}
		switch t.Priority {
		case tasks.PriorityHigh:
			g.High = append(g.High, t)
		case tasks.PriorityMedium:
			g.Medium = append(g.Medium, t)
		case tasks.PriorityLow:
			g.Low = append(g.Low, t)
		}
	}
	return g
}

// Visible returns the tasks of username that pass f, high priority first.
func Visible(all []tasks.Task, username string, f Filter) []tasks.Task {
	return Group(all, username, f).Ordered()
}
