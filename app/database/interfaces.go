package database

import (
	"time"
)

type SourceRepository interface {
	GetSource(sourceName string) (*Source, error)
	GetSourceCount() (int, error)

	UpsertSource(sourceName, sourceURL, feedListID, displayName string) error
	UpdateSourceFetched(sourceName string, nextFetch time.Time) error
}

type RecordForExtraction struct {
	ID   string
	Link string
}

type RecordRepository interface {
	GetVisibleRecords(sourceName string, limit int) ([]Record, error)
	GetAllRecords(sourceName string) ([]Record, error)
	GetRecordCount(sourceName string) (int, error)
	GetRecordStats(sourceName string) (total, visible, filtered int, err error)

	UpsertRecord(sourceName string, rec Record) error
	UpdateRecordFilterStatus(recordID string, isFiltered bool, reason string) error

	CheckDuplicate(sourceName, contentHash string) (bool, error)

	GetRecordsForExtraction(sourceName string, limit int) ([]RecordForExtraction, error)
	UpdateExtractedContent(recordID, content string, extractedAt time.Time) error
	UpdateExtractionError(recordID, message string, extractedAt time.Time) error
}
