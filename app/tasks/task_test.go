package tasks

import (
	"testing"
	"time"
)

func TestNewTask(t *testing.T) {
	task := NewTask(TaskTypeIngestSource, "test-source")

	if task.ID == "" {
		t.Error("Expected task to have a generated ID")
	}
	if task.Type != TaskTypeIngestSource {
		t.Errorf("Expected type %s, got: %s", TaskTypeIngestSource, task.Type)
	}
	if task.SourceName != "test-source" {
		t.Errorf("Expected source name 'test-source', got: %s", task.SourceName)
	}
	if task.RetryCount != 0 {
		t.Errorf("Expected retry count 0, got: %d", task.RetryCount)
	}
	if task.MaxRetries != DefaultMaxRetries {
		t.Errorf("Expected max retries %d, got: %d", DefaultMaxRetries, task.MaxRetries)
	}
}

func TestNewTaskUniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	for range 50 {
		task := NewTask(TaskTypeExtractContent, "test-source")
		if seen[task.ID] {
			t.Fatalf("Duplicate task ID generated: %s", task.ID)
		}
		seen[task.ID] = true
	}
}

func TestTaskRetryBoundary(t *testing.T) {
	task := NewTask(TaskTypeIngestSource, "test-source")

	for i := 0; i < DefaultMaxRetries; i++ {
		if !task.CanRetry() {
			t.Fatalf("Expected CanRetry true at retry count %d", task.RetryCount)
		}
		task.IncrementRetryCount()
	}

	if task.CanRetry() {
		t.Errorf("Expected CanRetry false at retry count %d", task.RetryCount)
	}
	if task.GetRetryCount() != DefaultMaxRetries {
		t.Errorf("Expected retry count %d, got: %d", DefaultMaxRetries, task.GetRetryCount())
	}
}

func TestTaskDuration(t *testing.T) {
	task := NewTask(TaskTypeIngestSource, "test-source")

	if task.GetDuration() != 0 {
		t.Error("Expected zero duration before Start")
	}

	task.Start()
	time.Sleep(time.Millisecond)

	if task.GetDuration() <= 0 {
		t.Error("Expected positive duration after Start")
	}
}
