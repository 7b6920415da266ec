package main

import (
	"bytes"
	"testing"

	"github.com/i474232898/taskmaster/internal/query"
	"github.com/i474232898/taskmaster/internal/tasks"
)

func TestPrintTasks(t *testing.T) {
	var buf bytes.Buffer
	printTasks(&buf, []tasks.Task{
		{Title: "File taxes", Priority: tasks.PriorityHigh},
		{Title: "Buy milk", Priority: tasks.PriorityLow, Completed: true, Location: "Paris"},
	}, query.Filter{})

	want := "[ ] high   File taxes\n[x] low    Buy milk (Paris)\n"
	if buf.String() != want {
		t.Fatalf("expected %q, got %q", want, buf.String())
	}
}

func TestPrintTasksEmpty(t *testing.T) {
	var buf bytes.Buffer
	printTasks(&buf, nil, query.Filter{Search: "x"})

	want := "No tasks found\nTry adjusting your filters\n"
	if buf.String() != want {
		t.Fatalf("expected %q, got %q", want, buf.String())
	}
}
