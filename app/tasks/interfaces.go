package tasks

import (
	"context"

	"github.com/jthora/feedgate/app/feed"
)

// TaskSchedulerInterface defines the interface for background task
// scheduling. Used by the main application and the API layer to manage
// the worker pool and enqueue work on demand.
// Example usage:
//
//	scheduler := NewScheduler(sourceCache, sourceRepo, recordRepo, httpClient, pipeline, filterer, contentExtractor)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueTask(NewIngestSourceTask(...))
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}

// IngestPipeline is the slice of the feed pipeline the ingest task needs.
type IngestPipeline interface {
	Ingest(ctx context.Context, sourceURL string, sctx feed.SourceContext) ([]feed.Record, error)
}
