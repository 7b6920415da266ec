package tasks

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/taskmaster/internal/store"
	"github.com/i474232898/taskmaster/internal/validation"
)

// Listener is notified after every state change with the new collection.
type Listener func(tasks []Task)

// Store owns the ordered task collection. Every mutation is written through
// to the KV under store.KeyTasks before listeners run.
type Store struct {
	mu    sync.Mutex
	kv    store.KV
	tasks []Task

	listeners map[int]Listener
	nextSub   int

	now   func() time.Time
	newID func() string
}

// NewStore seeds a Store from kv. A missing or unreadable document yields
// an empty collection.
func NewStore(kv store.KV) *Store {
	s := &Store{
		kv:        kv,
		listeners: make(map[int]Listener),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}

	var loaded []Task
	err := store.LoadJSON(kv, store.KeyTasks, &loaded)
	switch {
	case err == nil:
		s.tasks = loaded
		log.Printf("INFO: tasks: loaded %d tasks from storage", len(loaded))
	case errors.Is(err, store.ErrNotFound):
	default:
		log.Printf("WARN: tasks: ignoring stored tasks: %v", err)
	}
	return s
}

// Snapshot returns a copy of the collection in insertion order.
func (s *Store) Snapshot() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLocked()
}

// Get returns the task with the given id.
func (s *Store) Get(id string) (Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexLocked(id); i >= 0 {
		return s.tasks[i], true
	}
	return Task{}, false
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store) Subscribe(fn Listener) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.listeners[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// SetAll replaces the whole collection. Task ids must be unique.
func (s *Store) SetAll(tasks []Task) error {
	seen := make(map[string]struct{}, len(tasks))
	for _, t := range tasks {
		if _, dup := seen[t.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateID, t.ID)
		}
		seen[t.ID] = struct{}{}
	}

	s.mutate(func() bool {
		s.tasks = append([]Task(nil), tasks...)
		return true
	}, true)
	return nil
}

// Add appends t, assigning an id and creation time when they are unset.
// The title must be non-blank and a caller-supplied id must be unused.
func (s *Store) Add(t Task) (Task, error) {
	t.Title = strings.TrimSpace(t.Title)
	if t.Title == "" {
		return Task{}, validation.New("title", "is required")
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	if !t.Priority.Valid() {
		return Task{}, fmt.Errorf("%w: %q", ErrInvalidPriority, t.Priority)
	}

	var err error
	s.mutate(func() bool {
		if t.ID == "" {
			t.ID = s.newID()
		} else if s.indexLocked(t.ID) >= 0 {
			err = fmt.Errorf("%w: %s", ErrDuplicateID, t.ID)
			return false
		}
		if t.CreatedAt.IsZero() {
			t.CreatedAt = s.now()
		}
		s.tasks = append(s.tasks, t)
		return true
	}, false)
	if err != nil {
		return Task{}, err
	}
	return t, nil
}

// Remove deletes the task with id. It reports whether a task was removed;
// the collection is persisted either way.
func (s *Store) Remove(id string) bool {
	var removed bool
	s.mutate(func() bool {
		i := s.indexLocked(id)
		if i < 0 {
			return false
		}
		s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)
		removed = true
		return true
	}, true)
	return removed
}

// ToggleCompletion flips the completed flag of the task with id.
func (s *Store) ToggleCompletion(id string) (Task, bool) {
	var (
		out   Task
		found bool
	)
	s.mutate(func() bool {
		i := s.indexLocked(id)
		if i < 0 {
			return false
		}
		s.tasks[i].Completed = !s.tasks[i].Completed
		out, found = s.tasks[i], true
		return true
	}, false)
	return out, found
}

// UpdatePriority sets the priority of the task with id.
func (s *Store) UpdatePriority(id string, p Priority) (Task, bool, error) {
	if !p.Valid() {
		return Task{}, false, fmt.Errorf("%w: %q", ErrInvalidPriority, p)
	}

	var (
		out   Task
		found bool
	)
	s.mutate(func() bool {
		i := s.indexLocked(id)
		if i < 0 {
			return false
		}
		s.tasks[i].Priority = p
		out, found = s.tasks[i], true
		return true
	}, false)
	return out, found, nil
}

// mutate runs fn under the lock. When fn reports a change, or always is
// set, the collection is persisted; listeners run only on change, after
// the lock is released.
func (s *Store) mutate(fn func() bool, always bool) {
	s.mu.Lock()
	changed := fn()
	var (
		snap      []Task
		listeners []Listener
	)
	if changed || always {
		snap = s.copyLocked()
		if err := store.SaveJSON(s.kv, store.KeyTasks, snap); err != nil {
			log.Printf("WARN: tasks: persist failed: %v", err)
		}
	}
	if changed {
		listeners = make([]Listener, 0, len(s.listeners))
		for _, l := range s.listeners {
			listeners = append(listeners, l)
		}
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(snap)
	}
}

func (s *Store) indexLocked(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) copyLocked() []Task {
	out := make([]Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}
