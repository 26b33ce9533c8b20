package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var _ SourceRepository = (*SourceRepositoryImpl)(nil)

type SourceRepositoryImpl struct {
	db *DB
}

func NewSourceRepository(db *DB) *SourceRepositoryImpl {
	return &SourceRepositoryImpl{db: db}
}

func (r *SourceRepositoryImpl) GetSource(sourceName string) (*Source, error) {
	var source Source
	err := r.db.QueryRow(`
		SELECT id, name, url, feed_list_id, display_name,
		       last_fetched_at, next_fetch_at, created_at, updated_at
		FROM sources
		WHERE name = ?
	`, sourceName).Scan(
		&source.ID, &source.Name, &source.URL, &source.FeedListID, &source.DisplayName,
		&source.LastFetchedAt, &source.NextFetchAt, &source.CreatedAt, &source.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get source: %w", err)
	}

	return &source, nil
}

func (r *SourceRepositoryImpl) GetSourceCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM sources").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get source count: %w", err)
	}
	return count, nil
}

func (r *SourceRepositoryImpl) UpsertSource(sourceName, sourceURL, feedListID, displayName string) error {
	_, err := r.db.Exec(`
		INSERT INTO sources (id, name, url, feed_list_id, display_name)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET
			url = excluded.url,
			feed_list_id = excluded.feed_list_id,
			display_name = excluded.display_name,
			updated_at = CURRENT_TIMESTAMP
	`, uuid.NewString(), sourceName, sourceURL, feedListID, displayName)

	if err != nil {
		return fmt.Errorf("failed to upsert source: %w", err)
	}

	return nil
}

func (r *SourceRepositoryImpl) UpdateSourceFetched(sourceName string, nextFetch time.Time) error {
	_, err := r.db.Exec(`
		UPDATE sources
		SET last_fetched_at = CURRENT_TIMESTAMP, next_fetch_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE name = ?
	`, nextFetch.UTC(), sourceName)

	if err != nil {
		return fmt.Errorf("failed to update source fetch times: %w", err)
	}

	return nil
}
