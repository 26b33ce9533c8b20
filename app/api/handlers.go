package api

import (
	"cmp"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jthora/feedgate/app/database"
	"github.com/jthora/feedgate/app/feed"
	"github.com/jthora/feedgate/app/tasks"
)

func NewHandler(sourceCache *feed.SourceCache, sourceRepo database.SourceRepository,
	recordRepo database.RecordRepository, filterer *feed.Filterer,
	scheduler tasks.TaskSchedulerInterface, pipeline PipelineInterface, fetcher feed.Fetcher) *Handler {
	return &Handler{
		sourceRepo:  sourceRepo,
		recordRepo:  recordRepo,
		generator:   feed.NewGenerator(),
		sourceCache: sourceCache,
		filterer:    filterer,
		scheduler:   scheduler,
		pipeline:    pipeline,
		fetcher:     fetcher,
	}
}

func (h *Handler) GetFeed(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	sourceConfig, err := h.sourceCache.GetConfig(name)
	if err != nil {
		slog.Error("Source configuration not found", "source", name, "error", err)
		c.Status(http.StatusNotFound)
		return
	}

	source, err := h.sourceRepo.GetSource(name)
	if err != nil {
		slog.Error("Database error", "operation", "get_source", "source", name, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	if source == nil {
		slog.Error("Source not found in database", "source", name)
		c.Status(http.StatusNotFound)
		return
	}

	records, err := h.recordRepo.GetVisibleRecords(name, sourceConfig.Settings.MaxItems)
	if err != nil {
		slog.Error("Database error", "operation", "get_records", "source", name, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	rss, err := h.generator.Run(*source, records)
	if err != nil {
		slog.Error("RSS generation error", "source", name, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.Header("X-Feed-Records", strconv.Itoa(len(records)))
	c.Header("X-Feed-Name", name)
	c.Header("X-Last-Updated", source.UpdatedAt.Format(time.RFC3339))

	c.String(http.StatusOK, rss)
}

func (h *Handler) GetFeedRecords(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing source name parameter"})
		return
	}

	sourceConfig, err := h.sourceCache.GetConfig(name)
	if err != nil {
		slog.Error("Source configuration not found", "source", name, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Source configuration not found"})
		return
	}

	records, err := h.recordRepo.GetVisibleRecords(name, sourceConfig.Settings.MaxItems)
	if err != nil {
		slog.Error("Database error", "operation", "get_records", "source", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	out := make([]feed.Record, 0, len(records))
	for _, rec := range records {
		media := make([]feed.Media, len(rec.Media))
		for i, m := range rec.Media {
			media[i] = feed.Media{URL: m.URL, Type: m.Type}
		}

		out = append(out, feed.Record{
			ID:          rec.RecordID,
			Name:        cmp.Or(sourceConfig.DisplayName, name),
			URL:         sourceConfig.URL,
			Title:       rec.Title,
			Link:        rec.Link,
			PubDate:     rec.PubDate,
			Description: rec.Description,
			Content:     rec.Content,
			FeedListID:  rec.FeedListID,
			Author:      rec.Author,
			Categories:  rec.Categories,
			Media:       media,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"records": out,
		"total":   len(out),
	})
}

// ProxyFeed retrieves an arbitrary feed URL through the fetcher chain and
// returns the raw payload untouched.
func (h *Handler) ProxyFeed(c *gin.Context) {
	rawURL := c.Query("url")
	if rawURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing url parameter"})
		return
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || !parsed.IsAbs() || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid url parameter"})
		return
	}

	result, err := h.fetcher.Run(c.Request.Context(), rawURL)
	if err != nil {
		slog.Error("Proxy fetch failed", "url", rawURL, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch feed", "details": err.Error()})
		return
	}

	c.Header("X-Fetched-Via", result.Via)
	c.Data(http.StatusOK, cmp.Or(result.ContentType, "text/plain; charset=utf-8"), []byte(result.Body))
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if sourceCount, err := h.sourceRepo.GetSourceCount(); err == nil {
		health["sources"] = sourceCount
	}

	health["loaded_configurations"] = h.sourceCache.GetConfigCount()

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	configs := h.sourceCache.GetConfigs()

	stats := make([]map[string]interface{}, 0, len(configs))

	for _, sourceConfig := range configs {
		total, visible, filtered, err := h.recordRepo.GetRecordStats(sourceConfig.Name)
		if err != nil {
			slog.Error("Database error", "operation", "get_record_stats", "source", sourceConfig.Name, "error", err)
			continue
		}

		stats = append(stats, map[string]interface{}{
			"name":     sourceConfig.Name,
			"total":    total,
			"visible":  visible,
			"filtered": filtered,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"sources": stats,
		"total":   len(stats),
	})
}

func (h *Handler) APIListFeeds(c *gin.Context) {
	configs := h.sourceCache.GetConfigs()

	feeds := make([]map[string]interface{}, 0, len(configs))

	for _, sourceConfig := range configs {
		feedInfo := map[string]interface{}{
			"name":             sourceConfig.Name,
			"url":              sourceConfig.URL,
			"display_name":     sourceConfig.DisplayName,
			"feed_list_id":     cmp.Or(sourceConfig.FeedListID, feed.DefaultFeedListID),
			"enabled":          sourceConfig.Settings.Enabled,
			"max_items":        sourceConfig.Settings.MaxItems,
			"refresh_interval": (time.Duration(sourceConfig.Settings.RefreshInterval) * time.Second).String(),
			"filters":          len(sourceConfig.Filters),
		}

		if source, err := h.sourceRepo.GetSource(sourceConfig.Name); err == nil && source != nil {
			feedInfo["last_fetched_at"] = source.LastFetchedAt
			feedInfo["next_fetch_at"] = source.NextFetchAt
			feedInfo["updated_at"] = source.UpdatedAt
		}

		if recordCount, err := h.recordRepo.GetRecordCount(sourceConfig.Name); err == nil {
			feedInfo["record_count"] = recordCount
		}

		feeds = append(feeds, feedInfo)
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"feeds": feeds,
		"total": len(feeds),
	})
}

func (h *Handler) APIGetFeedDetails(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing source name parameter"})
		return
	}

	sourceConfig, err := h.sourceCache.GetConfig(name)
	if err != nil {
		slog.Error("Source configuration not found", "source", name, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Source configuration not found"})
		return
	}

	source, err := h.sourceRepo.GetSource(name)
	if err != nil {
		slog.Error("Database error", "operation", "get_source", "source", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if source == nil {
		slog.Error("Source not found in database", "source", name)
		c.JSON(http.StatusNotFound, gin.H{"error": "Source not found in database"})
		return
	}

	details := map[string]interface{}{
		"name":             name,
		"url":              sourceConfig.URL,
		"display_name":     sourceConfig.DisplayName,
		"feed_list_id":     cmp.Or(sourceConfig.FeedListID, feed.DefaultFeedListID),
		"enabled":          sourceConfig.Settings.Enabled,
		"max_items":        sourceConfig.Settings.MaxItems,
		"refresh_interval": (time.Duration(sourceConfig.Settings.RefreshInterval) * time.Second).String(),
		"timeout":          (time.Duration(sourceConfig.Settings.Timeout) * time.Second).String(),
		"filters":          sourceConfig.Filters,
	}

	details["database"] = map[string]interface{}{
		"id":              source.ID,
		"name":            source.Name,
		"last_fetched_at": source.LastFetchedAt,
		"next_fetch_at":   source.NextFetchAt,
		"created_at":      source.CreatedAt,
		"updated_at":      source.UpdatedAt,
	}

	if total, visible, filtered, err := h.recordRepo.GetRecordStats(name); err == nil {
		details["records"] = map[string]interface{}{
			"total":    total,
			"visible":  visible,
			"filtered": filtered,
		}
	}

	c.JSON(http.StatusOK, details)
}

func (h *Handler) APIReloadFeed(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing source name parameter"})
		return
	}

	_, err := h.sourceCache.GetConfig(name)
	if err != nil {
		slog.Error("Source configuration not found", "source", name, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Source configuration not found"})
		return
	}

	source, err := h.sourceRepo.GetSource(name)
	if err != nil {
		slog.Error("Database error", "operation", "get_source", "source", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if source == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Source not found in database"})
		return
	}

	sourceConfig, err := h.sourceCache.LoadConfig(name)
	if err != nil {
		slog.Error("Error reloading configuration", "source", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to reload configuration",
			"details": err.Error(),
		})
		return
	}

	syncTask := tasks.NewSyncSourceConfigTask(name, sourceConfig, h.sourceRepo)
	err = h.scheduler.EnqueueTask(syncTask)
	if err != nil {
		slog.Error("Error enqueueing sync task", "source", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue sync task",
			"details": err.Error(),
		})
		return
	}

	refilterTask := tasks.NewRefilterSourceTask(name, sourceConfig, h.filterer, h.sourceRepo, h.recordRepo)
	err = h.scheduler.EnqueueTask(refilterTask)
	if err != nil {
		slog.Error("Error enqueueing refilter task", "source", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue refilter task",
			"details": err.Error(),
		})
		return
	}

	response := gin.H{
		"success": true,
		"message": "Configuration reloaded and tasks enqueued successfully",
		"source": gin.H{
			"name": name,
			"url":  sourceConfig.URL,
		},
		"tasks": []gin.H{
			{
				"id":   syncTask.ID,
				"type": syncTask.Type,
			},
			{
				"id":   refilterTask.ID,
				"type": refilterTask.Type,
			},
		},
	}

	c.JSON(http.StatusOK, response)
}

type ingestRequest struct {
	URL        string `json:"url" binding:"required"`
	FeedListID string `json:"feedListId"`
	Name       string `json:"name"`
}

// APIIngest runs the full fetch/detect/parse pipeline for an arbitrary
// URL and returns the normalized records without storing them.
func (h *Handler) APIIngest(c *gin.Context) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	parsed, err := url.Parse(req.URL)
	if err != nil || !parsed.IsAbs() || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid url parameter"})
		return
	}

	sctx := feed.SourceContext{
		FeedListID:  cmp.Or(req.FeedListID, feed.DefaultFeedListID),
		DisplayName: req.Name,
	}

	records, err := h.pipeline.Ingest(c.Request.Context(), req.URL, sctx)
	if err != nil {
		var failure *feed.IngestionFailure
		if errors.As(err, &failure) {
			status := http.StatusUnprocessableEntity
			if failure.Stage == feed.StageFetching {
				status = http.StatusBadGateway
			}
			c.JSON(status, gin.H{
				"error":     "Ingestion failed",
				"stage":     failure.Stage,
				"sourceUrl": failure.SourceURL,
				"details":   failure.Cause.Error(),
			})
			return
		}

		slog.Error("Ingestion error", "url", req.URL, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ingestion failed", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"records": records,
		"total":   len(records),
	})
}
