package database

import (
	"time"
)

// Source is a configured feed source registered in the database.
type Source struct {
	ID            string // Database UUID
	Name          string // Configuration source identifier derived from filename
	URL           string
	FeedListID    string
	DisplayName   string
	LastFetchedAt *time.Time
	NextFetchAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Record is a stored normalized feed record. PubDate stays the RFC 3339
// string the pipeline produced; categories and media persist as JSON
// text columns.
type Record struct {
	ID               string // Database UUID
	SourceName       string
	RecordID         string // Positional pipeline id ({sourceURL}-{index})
	Title            string
	Link             string
	PubDate          string
	Description      string
	Content          string
	FeedListID       string
	Author           string
	Categories       []string
	Media            []Media
	ContentHash      string
	IsFiltered       bool
	FilterReason     string
	ExtractionStatus string // pending, success, failed
	ExtractedAt      *time.Time
	ExtractionError  string
	CreatedAt        time.Time
}

type Media struct {
	URL  string `json:"url"`
	Type string `json:"type"`
}
