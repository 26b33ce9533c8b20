package api

import (
	"context"

	"github.com/jthora/feedgate/app/database"
	"github.com/jthora/feedgate/app/feed"
	"github.com/jthora/feedgate/app/tasks"
)

type GeneratorInterface interface {
	Run(source database.Source, records []database.Record) (string, error)
}

var _ GeneratorInterface = (*feed.Generator)(nil)

// PipelineInterface is the slice of the ingestion pipeline the API uses
// for on-demand ingestion.
type PipelineInterface interface {
	Ingest(ctx context.Context, sourceURL string, sctx feed.SourceContext) ([]feed.Record, error)
}

var _ PipelineInterface = (*feed.Pipeline)(nil)

type Handler struct {
	sourceRepo  database.SourceRepository
	recordRepo  database.RecordRepository
	generator   GeneratorInterface
	sourceCache *feed.SourceCache
	filterer    *feed.Filterer
	scheduler   tasks.TaskSchedulerInterface
	pipeline    PipelineInterface
	fetcher     feed.Fetcher
}
