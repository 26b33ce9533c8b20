package feed

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/jthora/feedgate/app/fetch"
)

// Stage names the pipeline step an ingestion failed in.
type Stage string

const (
	StageFetching  Stage = "fetching"
	StageDetecting Stage = "detecting"
	StageParsing   Stage = "parsing"
)

// IngestionFailure is the terminal error for one source URL. Fetcher
// retries stay internal to the fetcher; only exhaustion or a
// whole-payload failure surfaces here. A failure for one source never
// affects ingestion of another.
type IngestionFailure struct {
	Stage     Stage
	SourceURL string
	Cause     error
}

func (e *IngestionFailure) Error() string {
	return fmt.Sprintf("ingestion failed at %s for %s: %v", e.Stage, e.SourceURL, e.Cause)
}

func (e *IngestionFailure) Unwrap() error {
	return e.Cause
}

// Fetcher retrieves the raw payload for a source URL.
type Fetcher interface {
	Run(ctx context.Context, sourceURL string) (*fetch.Result, error)
}

// Pipeline runs fetch, detect and parse for one source URL. Each call is
// independent and reentrant; all state is call-local, so callers may
// ingest different URLs concurrently.
type Pipeline struct {
	fetcher  Fetcher
	detector *Detector
	now      func() time.Time
}

func NewPipeline(fetcher Fetcher, now func() time.Time) *Pipeline {
	if now == nil {
		now = time.Now
	}
	return &Pipeline{
		fetcher:  fetcher,
		detector: NewDetector(now),
		now:      now,
	}
}

// Ingest returns the normalized batch for a source URL or an
// *IngestionFailure naming the stage that failed. The result is
// all-or-nothing: a cancelled context yields an error, never a partial
// batch. Record order matches item order in the payload.
func (p *Pipeline) Ingest(ctx context.Context, sourceURL string, sctx SourceContext) ([]Record, error) {
	result, err := p.fetcher.Run(ctx, sourceURL)
	if err != nil {
		return nil, &IngestionFailure{Stage: StageFetching, SourceURL: sourceURL, Cause: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, &IngestionFailure{Stage: StageFetching, SourceURL: sourceURL, Cause: err}
	}

	parser, err := p.detector.Run(result.Body, result.ContentType)
	if err != nil {
		return nil, &IngestionFailure{Stage: StageDetecting, SourceURL: sourceURL, Cause: err}
	}

	records, err := parser.Parse(result.Body, sourceURL, sctx)
	if err != nil {
		return nil, &IngestionFailure{Stage: StageParsing, SourceURL: sourceURL, Cause: err}
	}

	for i := range records {
		records[i].ContentHash = contentHash(records[i])
	}

	slog.Debug("Ingestion completed",
		"url", sourceURL,
		"format", string(parser.Format()),
		"records", len(records),
		"via", result.Via)

	return records, nil
}

func contentHash(rec Record) string {
	content := fmt.Sprintf("%s|%s", rec.Title, rec.Link)

	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}
