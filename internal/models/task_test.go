package models

import "testing"

func TestParseTaskStatus(t *testing.T) {
	tests := []struct {
		in   string
		want TaskStatus
	}{
		{"TODO", TaskTodo},
		{"todo", TaskTodo},
		{"PLANNED", TaskTodo},
		{"planned", TaskTodo},
		{"IN_PROGRESS", TaskInProgress},
		{"DONE", TaskDone},
		{"done", TaskDone},
		{"COMPLETED", TaskDone},
		{"completed", TaskDone},
		{"BLOCKED", TaskBlocked},
		{"  done  ", TaskDone},
		{"REVIEW", TaskStatus("REVIEW")},
	}
	for _, tt := range tests {
		if got := ParseTaskStatus(tt.in); got != tt.want {
			t.Errorf("ParseTaskStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTaskStatusPredicates(t *testing.T) {
	if !TaskDone.Done() {
		t.Error("TaskDone.Done() = false, want true")
	}
	if TaskTodo.Done() {
		t.Error("TaskTodo.Done() = true, want false")
	}
	if !TaskBlocked.Blocked() {
		t.Error("TaskBlocked.Blocked() = false, want true")
	}
	if TaskDone.Blocked() {
		t.Error("TaskDone.Blocked() = true, want false")
	}
}
