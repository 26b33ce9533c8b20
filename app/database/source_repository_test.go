package database

import (
	"path/filepath"
	"testing"
	"time"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewConnection(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return db
}

func TestSourceRepositoryUpsertAndGet(t *testing.T) {
	repo := NewSourceRepository(setupTestDB(t))

	err := repo.UpsertSource("test-source", "https://example.com/feed.xml", "1", "Test Source")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	source, err := repo.GetSource("test-source")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if source == nil {
		t.Fatal("Expected source, got nil")
	}

	if source.Name != "test-source" {
		t.Errorf("Expected name 'test-source', got: %s", source.Name)
	}
	if source.URL != "https://example.com/feed.xml" {
		t.Errorf("Expected URL 'https://example.com/feed.xml', got: %s", source.URL)
	}
	if source.FeedListID != "1" {
		t.Errorf("Expected feed list id '1', got: %s", source.FeedListID)
	}
	if source.DisplayName != "Test Source" {
		t.Errorf("Expected display name 'Test Source', got: %s", source.DisplayName)
	}
	if source.ID == "" {
		t.Error("Expected generated source id")
	}
}

func TestSourceRepositoryUpsertUpdatesExisting(t *testing.T) {
	repo := NewSourceRepository(setupTestDB(t))

	if err := repo.UpsertSource("test-source", "https://example.com/old.xml", "1", "Old Name"); err != nil {
		t.Fatal(err)
	}
	first, err := repo.GetSource("test-source")
	if err != nil {
		t.Fatal(err)
	}

	if err := repo.UpsertSource("test-source", "https://example.com/new.xml", "2", "New Name"); err != nil {
		t.Fatal(err)
	}
	second, err := repo.GetSource("test-source")
	if err != nil {
		t.Fatal(err)
	}

	if second.ID != first.ID {
		t.Error("Upsert should keep the original source id")
	}
	if second.URL != "https://example.com/new.xml" {
		t.Errorf("Expected updated URL, got: %s", second.URL)
	}
	if second.FeedListID != "2" {
		t.Errorf("Expected updated feed list id, got: %s", second.FeedListID)
	}
	if second.DisplayName != "New Name" {
		t.Errorf("Expected updated display name, got: %s", second.DisplayName)
	}

	count, err := repo.GetSourceCount()
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("Expected 1 source after upsert, got: %d", count)
	}
}

func TestSourceRepositoryGetMissing(t *testing.T) {
	repo := NewSourceRepository(setupTestDB(t))

	source, err := repo.GetSource("missing")
	if err != nil {
		t.Fatalf("Expected no error for missing source, got: %v", err)
	}
	if source != nil {
		t.Error("Expected nil for missing source")
	}
}

func TestSourceRepositoryUpdateSourceFetched(t *testing.T) {
	repo := NewSourceRepository(setupTestDB(t))

	if err := repo.UpsertSource("test-source", "https://example.com/feed.xml", "1", ""); err != nil {
		t.Fatal(err)
	}

	nextFetch := time.Now().UTC().Add(time.Hour).Truncate(time.Second)
	if err := repo.UpdateSourceFetched("test-source", nextFetch); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	source, err := repo.GetSource("test-source")
	if err != nil {
		t.Fatal(err)
	}

	if source.LastFetchedAt == nil {
		t.Error("Expected last_fetched_at to be set")
	}
	if source.NextFetchAt == nil {
		t.Fatal("Expected next_fetch_at to be set")
	}
	if !source.NextFetchAt.UTC().Equal(nextFetch) {
		t.Errorf("Expected next fetch %v, got: %v", nextFetch, source.NextFetchAt.UTC())
	}
}
