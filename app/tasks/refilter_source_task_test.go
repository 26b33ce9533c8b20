package tasks

import (
	"context"
	"testing"

	"github.com/jthora/feedgate/app/database"
	"github.com/jthora/feedgate/app/feed"
)

func TestRefilterSourceTaskUpdatesChangedRecords(t *testing.T) {
	recordRepo := &fakeRecordRepo{
		records: []database.Record{
			{
				ID:       "row-1",
				RecordID: "https://example.com/feed.xml-0",
				Title:    "Sponsored post",
			},
			{
				ID:           "row-2",
				RecordID:     "https://example.com/feed.xml-1",
				Title:        "Real news",
				IsFiltered:   true,
				FilterReason: "excluded by title filter: old rule",
			},
		},
	}

	config := testSourceConfig()
	config.Filters = []feed.ConfigFilter{
		{Field: "title", Excludes: []string{"sponsored"}},
	}

	task := NewRefilterSourceTask("test-source", config, feed.NewFilterer(), &fakeSourceRepo{}, recordRepo)

	if err := task.Execute(context.Background()); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	// Both records changed status under the new rules
	if len(recordRepo.filterCalls) != 2 {
		t.Fatalf("Expected 2 filter status updates, got: %d", len(recordRepo.filterCalls))
	}
	if !recordRepo.filterCalls["row-1"] {
		t.Error("Expected newly matched record to be filtered")
	}
	if recordRepo.filterCalls["row-2"] {
		t.Error("Expected previously filtered record to become visible")
	}
}

func TestRefilterSourceTaskNoChanges(t *testing.T) {
	recordRepo := &fakeRecordRepo{
		records: []database.Record{
			{ID: "row-1", RecordID: "https://example.com/feed.xml-0", Title: "Plain record"},
		},
	}

	task := NewRefilterSourceTask("test-source", testSourceConfig(), feed.NewFilterer(), &fakeSourceRepo{}, recordRepo)

	if err := task.Execute(context.Background()); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(recordRepo.filterCalls) != 0 {
		t.Errorf("Expected no filter status updates, got: %d", len(recordRepo.filterCalls))
	}
}
