package tasks

import (
	"errors"
	"testing"

	"github.com/i474232898/taskmaster/internal/store"
	"github.com/i474232898/taskmaster/internal/validation"
)

func mustAdd(t *testing.T, s *Store, task Task) Task {
	t.Helper()
	out, err := s.Add(task)
	if err != nil {
		t.Fatalf("add %q: %v", task.Title, err)
	}
	return out
}

func persisted(t *testing.T, kv store.KV) []Task {
	t.Helper()
	var out []Task
	if err := store.LoadJSON(kv, store.KeyTasks, &out); err != nil {
		t.Fatalf("load persisted tasks: %v", err)
	}
	return out
}

func TestAddAssignsUniqueIDs(t *testing.T) {
	s := NewStore(store.NewMemoryStore())

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		task := mustAdd(t, s, Task{Title: "task", UserID: "alice"})
		if task.ID == "" {
			t.Fatal("expected id to be assigned")
		}
		if seen[task.ID] {
			t.Fatalf("duplicate id %s", task.ID)
		}
		seen[task.ID] = true
		if task.CreatedAt.IsZero() {
			t.Fatal("expected createdAt to be assigned")
		}
	}
}

func TestAddKeepsCallerIDAndRejectsDuplicates(t *testing.T) {
	s := NewStore(store.NewMemoryStore())

	task := mustAdd(t, s, Task{ID: "fixed", Title: "one"})
	if task.ID != "fixed" {
		t.Fatalf("expected caller id to be kept, got %s", task.ID)
	}
	if _, err := s.Add(Task{ID: "fixed", Title: "two"}); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
	if n := len(s.Snapshot()); n != 1 {
		t.Fatalf("expected rejected add to leave 1 task, got %d", n)
	}
}

func TestAddRejectsBlankTitle(t *testing.T) {
	kv := store.NewMemoryStore()
	s := NewStore(kv)

	_, err := s.Add(Task{Title: "   "})
	if !validation.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(s.Snapshot()) != 0 {
		t.Fatal("expected no state change")
	}
	if _, err := kv.Get(store.KeyTasks); !errors.Is(err, store.ErrNotFound) {
		t.Fatal("expected nothing persisted")
	}
}

func TestAddPreservesInsertionOrderAndPersists(t *testing.T) {
	kv := store.NewMemoryStore()
	s := NewStore(kv)

	mustAdd(t, s, Task{Title: "a"})
	mustAdd(t, s, Task{Title: "b"})
	mustAdd(t, s, Task{Title: "c"})

	got := persisted(t, kv)
	if len(got) != 3 || got[0].Title != "a" || got[1].Title != "b" || got[2].Title != "c" {
		t.Fatalf("unexpected persisted order: %+v", got)
	}
}

func TestRemove(t *testing.T) {
	kv := store.NewMemoryStore()
	s := NewStore(kv)

	a := mustAdd(t, s, Task{Title: "a"})
	mustAdd(t, s, Task{Title: "b"})

	if s.Remove("missing") {
		t.Fatal("expected remove of missing id to report false")
	}
	if n := len(s.Snapshot()); n != 2 {
		t.Fatalf("expected unchanged collection, got %d tasks", n)
	}

	if !s.Remove(a.ID) {
		t.Fatal("expected remove to report true")
	}
	if _, ok := s.Get(a.ID); ok {
		t.Fatal("expected task to be gone")
	}
	if got := persisted(t, kv); len(got) != 1 || got[0].Title != "b" {
		t.Fatalf("unexpected persisted state: %+v", got)
	}
}

func TestToggleCompletionIsItsOwnInverse(t *testing.T) {
	s := NewStore(store.NewMemoryStore())
	task := mustAdd(t, s, Task{Title: "a"})

	first, ok := s.ToggleCompletion(task.ID)
	if !ok || !first.Completed {
		t.Fatalf("expected completed after first toggle, got %+v", first)
	}
	second, _ := s.ToggleCompletion(task.ID)
	if second.Completed != task.Completed {
		t.Fatal("expected second toggle to restore original value")
	}

	if _, ok := s.ToggleCompletion("missing"); ok {
		t.Fatal("expected toggle of missing id to report false")
	}
}

func TestUpdatePriority(t *testing.T) {
	kv := store.NewMemoryStore()
	s := NewStore(kv)
	task := mustAdd(t, s, Task{Title: "a", Priority: PriorityLow})

	updated, ok, err := s.UpdatePriority(task.ID, PriorityHigh)
	if err != nil || !ok {
		t.Fatalf("update: ok=%v err=%v", ok, err)
	}
	if updated.Priority != PriorityHigh {
		t.Fatalf("expected high, got %s", updated.Priority)
	}
	if got := persisted(t, kv); got[0].Priority != PriorityHigh {
		t.Fatal("expected priority change to be persisted")
	}

	if _, _, err := s.UpdatePriority(task.ID, "urgent"); !errors.Is(err, ErrInvalidPriority) {
		t.Fatalf("expected ErrInvalidPriority, got %v", err)
	}
	if _, ok, _ := s.UpdatePriority("missing", PriorityLow); ok {
		t.Fatal("expected update of missing id to report false")
	}
}

func TestSetAll(t *testing.T) {
	kv := store.NewMemoryStore()
	s := NewStore(kv)
	mustAdd(t, s, Task{Title: "old"})

	err := s.SetAll([]Task{{ID: "1", Title: "x"}, {ID: "2", Title: "y"}})
	if err != nil {
		t.Fatalf("set all: %v", err)
	}
	if got := persisted(t, kv); len(got) != 2 || got[0].ID != "1" {
		t.Fatalf("unexpected persisted state: %+v", got)
	}

	err = s.SetAll([]Task{{ID: "1", Title: "x"}, {ID: "1", Title: "y"}})
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
	if n := len(s.Snapshot()); n != 2 {
		t.Fatalf("expected rejected SetAll to keep state, got %d", n)
	}
}

func TestNewStoreSeedsFromStorage(t *testing.T) {
	kv := store.NewMemoryStore()
	first := NewStore(kv)
	task := mustAdd(t, first, Task{Title: "persisted", UserID: "alice"})

	second := NewStore(kv)
	got, ok := second.Get(task.ID)
	if !ok || got.Title != "persisted" || got.UserID != "alice" {
		t.Fatalf("expected task to be reloaded, got %+v ok=%v", got, ok)
	}
}

func TestSubscribersSeeMutations(t *testing.T) {
	s := NewStore(store.NewMemoryStore())

	var calls int
	var last []Task
	cancel := s.Subscribe(func(tasks []Task) {
		calls++
		last = tasks
	})

	task := mustAdd(t, s, Task{Title: "a"})
	if calls != 1 || len(last) != 1 {
		t.Fatalf("expected one notification with one task, got calls=%d len=%d", calls, len(last))
	}

	s.ToggleCompletion("missing")
	if calls != 1 {
		t.Fatal("expected no notification for a no-op")
	}

	cancel()
	s.Remove(task.ID)
	if calls != 1 {
		t.Fatal("expected no notification after cancel")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s := NewStore(store.NewMemoryStore())
	task := mustAdd(t, s, Task{Title: "a"})

	snap := s.Snapshot()
	snap[0].Title = "mutated"

	got, _ := s.Get(task.ID)
	if got.Title != "a" {
		t.Fatal("snapshot aliased store state")
	}
}
