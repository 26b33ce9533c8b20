package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jthora/feedgate/app/database"
	"github.com/jthora/feedgate/app/feed"
)

type RefilterSourceTask struct {
	Task
	SourceConfig *feed.Config
	filterer     *feed.Filterer
	sourceRepo   database.SourceRepository
	recordRepo   database.RecordRepository
}

func NewRefilterSourceTask(sourceName string, sourceConfig *feed.Config, filterer *feed.Filterer, sourceRepo database.SourceRepository, recordRepo database.RecordRepository) *RefilterSourceTask {
	return &RefilterSourceTask{
		Task:         NewTask(TaskTypeRefilterSource, sourceName),
		SourceConfig: sourceConfig,
		filterer:     filterer,
		sourceRepo:   sourceRepo,
		recordRepo:   recordRepo,
	}
}

func (t *RefilterSourceTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	records, err := t.recordRepo.GetAllRecords(t.SourceName)
	if err != nil {
		return fmt.Errorf("failed to get source records: %w", err)
	}

	feedRecords := make([]feed.Record, len(records))
	for i, rec := range records {
		media := make([]feed.Media, len(rec.Media))
		for j, m := range rec.Media {
			media[j] = feed.Media{URL: m.URL, Type: m.Type}
		}

		feedRecords[i] = feed.Record{
			ID:          rec.RecordID,
			Title:       rec.Title,
			Link:        rec.Link,
			PubDate:     rec.PubDate,
			Description: rec.Description,
			Content:     rec.Content,
			FeedListID:  rec.FeedListID,
			Author:      rec.Author,
			Categories:  rec.Categories,
			Media:       media,
			ContentHash: rec.ContentHash,
		}
	}

	filteredRecords := t.filterer.Run(feedRecords, t.SourceConfig)

	updatedCount := 0
	errorCount := 0

	for i, filteredRecord := range filteredRecords {
		originalRecord := records[i]

		if originalRecord.IsFiltered != filteredRecord.IsFiltered || originalRecord.FilterReason != filteredRecord.FilterReason {
			err := t.recordRepo.UpdateRecordFilterStatus(originalRecord.ID, filteredRecord.IsFiltered, filteredRecord.FilterReason)
			if err != nil {
				slog.Error("Failed to update record filter status", "record_id", originalRecord.ID, "error", err)
				errorCount++
			} else {
				updatedCount++
			}
		}
	}

	slog.Info("Task completed",
		"type", "RefilterSource",
		"source", t.SourceName,
		"duration", t.GetDuration(),
		"success", updatedCount,
		"errors", errorCount)

	return nil
}
