package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jthora/feedgate/app/database"
	"github.com/jthora/feedgate/app/feed"
)

type IngestSourceTask struct {
	Task
	SourceConfig *feed.Config
	pipeline     IngestPipeline
	filterer     *feed.Filterer
	sourceRepo   database.SourceRepository
	recordRepo   database.RecordRepository
}

func NewIngestSourceTask(sourceName string, sourceConfig *feed.Config, pipeline IngestPipeline, filterer *feed.Filterer, sourceRepo database.SourceRepository, recordRepo database.RecordRepository) *IngestSourceTask {
	return &IngestSourceTask{
		Task:         NewTask(TaskTypeIngestSource, sourceName),
		SourceConfig: sourceConfig,
		pipeline:     pipeline,
		filterer:     filterer,
		sourceRepo:   sourceRepo,
		recordRepo:   recordRepo,
	}
}

func (t *IngestSourceTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.SourceConfig.Settings.Enabled {
		slog.Debug("Source disabled, skipping", "source", t.SourceName)
		return nil
	}

	records, err := t.pipeline.Ingest(ctx, t.SourceConfig.URL, t.SourceConfig.Context())
	if err != nil {
		return fmt.Errorf("failed to ingest source: %w", err)
	}

	duplicateCount := 0
	filteredCount := 0
	newCount := 0

	if len(records) > 0 {
		var nonDuplicateRecords []feed.Record
		for _, rec := range records {
			isDuplicate, err := t.recordRepo.CheckDuplicate(t.SourceName, rec.ContentHash)
			if err != nil {
				return fmt.Errorf("failed to check for duplicates: %w", err)
			}

			if isDuplicate {
				duplicateCount++
			} else {
				nonDuplicateRecords = append(nonDuplicateRecords, rec)
			}
		}

		if len(nonDuplicateRecords) > 0 {
			filteredRecords := t.filterer.Run(nonDuplicateRecords, t.SourceConfig)

			for _, rec := range filteredRecords {
				if rec.IsFiltered {
					filteredCount++
				} else {
					newCount++
				}
			}

			err = t.storeFilteredRecords(ctx, filteredRecords)
			if err != nil {
				return fmt.Errorf("failed to store records: %w", err)
			}
		}
	}

	err = t.updateFetchTimes()
	if err != nil {
		return fmt.Errorf("failed to update source fetch times: %w", err)
	}

	slog.Info("Task completed",
		"type", "IngestSource",
		"source", t.SourceName,
		"duration", t.GetDuration(),
		"total", len(records),
		"duplicates", duplicateCount,
		"filtered", filteredCount,
		"new", newCount)

	return nil
}

func (t *IngestSourceTask) updateFetchTimes() error {
	now := time.Now().UTC()
	nextFetch := now.Add(time.Duration(t.SourceConfig.Settings.RefreshInterval) * time.Second)

	return t.sourceRepo.UpdateSourceFetched(t.SourceName, nextFetch)
}

func (t *IngestSourceTask) storeFilteredRecords(ctx context.Context, records []feed.Record) error {
	for _, rec := range records {
		media := make([]database.Media, len(rec.Media))
		for i, m := range rec.Media {
			media[i] = database.Media{URL: m.URL, Type: m.Type}
		}

		dbRecord := database.Record{
			RecordID:     rec.ID,
			Title:        rec.Title,
			Link:         rec.Link,
			PubDate:      rec.PubDate,
			Description:  rec.Description,
			Content:      rec.Content,
			FeedListID:   rec.FeedListID,
			Author:       rec.Author,
			Categories:   rec.Categories,
			Media:        media,
			ContentHash:  rec.ContentHash,
			IsFiltered:   rec.IsFiltered,
			FilterReason: rec.FilterReason,
		}

		err := t.recordRepo.UpsertRecord(t.SourceName, dbRecord)
		if err != nil {
			return fmt.Errorf("failed to upsert record: %w", err)
		}
	}

	return nil
}
