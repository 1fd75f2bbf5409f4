package queue

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle of a task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

var allStatuses = []Status{
	StatusPending,
	StatusProcessing,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// ParseStatus validates a raw string and returns the canonical status value.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether no further transitions occur from the status.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Statuses returns every known status in lifecycle order.
func Statuses() []Status {
	out := make([]Status, len(allStatuses))
	copy(out, allStatuses)
	return out
}

// Task is one input file travelling through the pipeline. It is produced by
// the watcher, owned by the queue until claimed, then owned by exactly one
// worker for its lifetime.
type Task struct {
	ID         string
	Path       string
	EnqueuedAt time.Time
}

// NewTask builds a Task for the given input path with a fresh identifier.
func NewTask(path string) Task {
	return Task{
		ID:         uuid.NewString(),
		Path:       path,
		EnqueuedAt: time.Now().UTC(),
	}
}

// BaseName returns the file name component of the task path.
func (t Task) BaseName() string {
	return filepath.Base(t.Path)
}
