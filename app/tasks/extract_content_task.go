package tasks

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jthora/feedgate/app/database"
	"github.com/jthora/feedgate/app/feed"
)

type ExtractContentTask struct {
	Task
	SourceConfig     *feed.Config
	httpClient       *http.Client
	contentExtractor *feed.ContentExtractor
	recordRepo       database.RecordRepository
	userAgent        string
}

func NewExtractContentTask(sourceName string, sourceConfig *feed.Config, httpClient *http.Client, contentExtractor *feed.ContentExtractor, recordRepo database.RecordRepository, userAgent string) *ExtractContentTask {
	return &ExtractContentTask{
		Task:             NewTask(TaskTypeExtractContent, sourceName),
		SourceConfig:     sourceConfig,
		httpClient:       httpClient,
		contentExtractor: contentExtractor,
		recordRepo:       recordRepo,
		userAgent:        userAgent,
	}
}

func (t *ExtractContentTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.SourceConfig.Settings.ExtractContent {
		slog.Debug("Content extraction disabled for source", "source", t.SourceName)
		return nil
	}

	records, err := t.recordRepo.GetRecordsForExtraction(t.SourceName, t.SourceConfig.Settings.MaxItems)
	if err != nil {
		return fmt.Errorf("failed to get records for content extraction: %w", err)
	}

	if len(records) == 0 {
		slog.Debug("No records need content extraction", "source", t.SourceName)
		return nil
	}

	successCount := 0
	errorCount := 0

	for _, rec := range records {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		extractCtx, cancel := context.WithTimeout(ctx, time.Duration(t.SourceConfig.Settings.Timeout)*time.Second)

		err := t.extractContentForRecord(extractCtx, rec)
		cancel()

		if err != nil {
			slog.Error("Failed to extract content for record", "record_id", rec.ID, "url", rec.Link, "error", err)
			errorCount++

			now := time.Now().UTC()
			err = t.recordRepo.UpdateExtractionError(rec.ID, err.Error(), now)
			if err != nil {
				slog.Error("Failed to update content extraction status", "record_id", rec.ID, "error", err)
			}
		} else {
			successCount++
		}
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"source", t.SourceName,
		"duration", t.GetDuration(),
		"success", successCount,
		"errors", errorCount)

	return nil
}

func (t *ExtractContentTask) extractContentForRecord(ctx context.Context, rec database.RecordForExtraction) error {
	if rec.Link == "" {
		return fmt.Errorf("record has no link")
	}

	data, err := t.fetchArticleContent(ctx, rec.Link)
	if err != nil {
		return fmt.Errorf("failed to fetch article content: %w", err)
	}

	extractedContent, err := t.contentExtractor.Run(data)
	if err != nil {
		return fmt.Errorf("failed to extract content: %w", err)
	}

	now := time.Now().UTC()
	err = t.recordRepo.UpdateExtractedContent(rec.ID, extractedContent, now)
	if err != nil {
		return fmt.Errorf("failed to update extracted content: %w", err)
	}

	slog.Debug("Content extracted successfully", "record_id", rec.ID, "url", rec.Link, "content_length", len(extractedContent))
	return nil
}

func (t *ExtractContentTask) fetchArticleContent(ctx context.Context, url string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, time.Duration(t.SourceConfig.Settings.Timeout)*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", t.userAgent)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(strings.ToLower(contentType), "text/html") {
		return nil, fmt.Errorf("content type is not HTML: %s", contentType)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
