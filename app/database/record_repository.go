package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var _ RecordRepository = (*RecordRepositoryImpl)(nil)

type RecordRepositoryImpl struct {
	db *DB
}

func NewRecordRepository(db *DB) *RecordRepositoryImpl {
	return &RecordRepositoryImpl{db: db}
}

const recordColumns = `id, source_name, record_id, title, link, pub_date, description, content,
	feed_list_id, author, categories, media, content_hash, is_filtered, filter_reason,
	extraction_status, extracted_at, extraction_error, created_at`

func (r *RecordRepositoryImpl) UpsertRecord(sourceName string, rec Record) error {
	categories, err := json.Marshal(rec.Categories)
	if err != nil {
		return fmt.Errorf("failed to encode categories: %w", err)
	}
	media, err := json.Marshal(rec.Media)
	if err != nil {
		return fmt.Errorf("failed to encode media: %w", err)
	}

	_, err = r.db.Exec(`
		INSERT INTO records (
			id, source_name, record_id, title, link, pub_date, description, content,
			feed_list_id, author, categories, media, content_hash, is_filtered, filter_reason
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (source_name, record_id) DO UPDATE SET
			title = excluded.title,
			link = excluded.link,
			pub_date = excluded.pub_date,
			description = excluded.description,
			content = excluded.content,
			feed_list_id = excluded.feed_list_id,
			author = excluded.author,
			categories = excluded.categories,
			media = excluded.media,
			content_hash = excluded.content_hash,
			is_filtered = excluded.is_filtered,
			filter_reason = excluded.filter_reason
	`, uuid.NewString(), sourceName, rec.RecordID, rec.Title, rec.Link, rec.PubDate,
		rec.Description, rec.Content, rec.FeedListID, rec.Author, string(categories),
		string(media), rec.ContentHash, rec.IsFiltered, rec.FilterReason)

	if err != nil {
		return fmt.Errorf("failed to upsert record: %w", err)
	}

	return nil
}

func (r *RecordRepositoryImpl) GetVisibleRecords(sourceName string, limit int) ([]Record, error) {
	rows, err := r.db.Query(`
		SELECT `+recordColumns+`
		FROM records
		WHERE source_name = ?
		  AND is_filtered = 0
		ORDER BY pub_date DESC
		LIMIT ?
	`, sourceName, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get visible records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

func (r *RecordRepositoryImpl) GetAllRecords(sourceName string) ([]Record, error) {
	rows, err := r.db.Query(`
		SELECT `+recordColumns+`
		FROM records
		WHERE source_name = ?
		ORDER BY pub_date DESC
	`, sourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to get all records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

func (r *RecordRepositoryImpl) GetRecordCount(sourceName string) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM records WHERE source_name = ?", sourceName).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get record count: %w", err)
	}
	return count, nil
}

func (r *RecordRepositoryImpl) GetRecordStats(sourceName string) (total, visible, filtered int, err error) {
	err = r.db.QueryRow(`
		SELECT
			COUNT(*) as total,
			COALESCE(SUM(CASE WHEN is_filtered = 0 THEN 1 ELSE 0 END), 0) as visible,
			COALESCE(SUM(CASE WHEN is_filtered = 1 THEN 1 ELSE 0 END), 0) as filtered
		FROM records
		WHERE source_name = ?
	`, sourceName).Scan(&total, &visible, &filtered)

	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to get record stats: %w", err)
	}

	return total, visible, filtered, nil
}

func (r *RecordRepositoryImpl) UpdateRecordFilterStatus(recordID string, isFiltered bool, reason string) error {
	_, err := r.db.Exec(`
		UPDATE records
		SET is_filtered = ?, filter_reason = ?
		WHERE id = ?
	`, isFiltered, reason, recordID)

	if err != nil {
		return fmt.Errorf("failed to update record filter status: %w", err)
	}

	return nil
}

func (r *RecordRepositoryImpl) CheckDuplicate(sourceName, contentHash string) (bool, error) {
	var id string
	err := r.db.QueryRow(`
		SELECT id FROM records WHERE source_name = ? AND content_hash = ? LIMIT 1
	`, sourceName, contentHash).Scan(&id)

	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check duplicate: %w", err)
	}

	return true, nil
}

func (r *RecordRepositoryImpl) GetRecordsForExtraction(sourceName string, limit int) ([]RecordForExtraction, error) {
	rows, err := r.db.Query(`
		SELECT id, link
		FROM records
		WHERE source_name = ?
		  AND is_filtered = 0
		  AND extraction_status = 'pending'
		  AND link != ''
		ORDER BY pub_date DESC
		LIMIT ?
	`, sourceName, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get records for extraction: %w", err)
	}
	defer rows.Close()

	var records []RecordForExtraction
	for rows.Next() {
		var rec RecordForExtraction
		if err := rows.Scan(&rec.ID, &rec.Link); err != nil {
			return nil, fmt.Errorf("failed to scan extraction row: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating extraction rows: %w", err)
	}

	return records, nil
}

func (r *RecordRepositoryImpl) UpdateExtractedContent(recordID, content string, extractedAt time.Time) error {
	_, err := r.db.Exec(`
		UPDATE records
		SET content = ?, extraction_status = 'success', extracted_at = ?, extraction_error = ''
		WHERE id = ?
	`, content, extractedAt.UTC(), recordID)

	if err != nil {
		return fmt.Errorf("failed to update extracted content: %w", err)
	}

	return nil
}

func (r *RecordRepositoryImpl) UpdateExtractionError(recordID, message string, extractedAt time.Time) error {
	_, err := r.db.Exec(`
		UPDATE records
		SET extraction_status = 'failed', extracted_at = ?, extraction_error = ?
		WHERE id = ?
	`, extractedAt.UTC(), message, recordID)

	if err != nil {
		return fmt.Errorf("failed to update extraction status: %w", err)
	}

	return nil
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var records []Record
	for rows.Next() {
		var rec Record
		var categories, media string
		err := rows.Scan(
			&rec.ID, &rec.SourceName, &rec.RecordID, &rec.Title, &rec.Link, &rec.PubDate,
			&rec.Description, &rec.Content, &rec.FeedListID, &rec.Author, &categories,
			&media, &rec.ContentHash, &rec.IsFiltered, &rec.FilterReason,
			&rec.ExtractionStatus, &rec.ExtractedAt, &rec.ExtractionError, &rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record row: %w", err)
		}

		if err := json.Unmarshal([]byte(categories), &rec.Categories); err != nil {
			return nil, fmt.Errorf("failed to decode categories: %w", err)
		}
		if err := json.Unmarshal([]byte(media), &rec.Media); err != nil {
			return nil, fmt.Errorf("failed to decode media: %w", err)
		}

		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating record rows: %w", err)
	}

	return records, nil
}
