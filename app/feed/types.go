package feed

import "cmp"

// Format tags the payload formats the detector can assign.
type Format string

const (
	FormatJSON Format = "json"
	FormatXML  Format = "xml"
	FormatTXT  Format = "txt"
)

// DefaultFeedListID is assigned when no caller context names a list.
const DefaultFeedListID = "1"

// Media is an attachment carried by a record (RSS enclosure, JSON Feed
// attachment).
type Media struct {
	URL  string `json:"url"`
	Type string `json:"type"`
}

// Record is the canonical normalized feed item every parser produces.
// A record is built once per ingestion call and never mutated afterwards;
// the caller owns it. ID is positional ({sourceURL}-{index}) and unique
// within a batch, not stable across refreshes unless item order is.
type Record struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Link        string   `json:"link"`
	PubDate     string   `json:"pubDate"`
	Description string   `json:"description,omitempty"`
	Content     string   `json:"content,omitempty"`
	FeedListID  string   `json:"feedListId"`
	Author      string   `json:"author,omitempty"`
	Categories  []string `json:"categories,omitempty"`
	Media       []Media  `json:"media,omitempty"`

	ContentHash  string `json:"-"`
	IsFiltered   bool   `json:"-"`
	FilterReason string `json:"-"`
}

// SourceContext carries caller-supplied attribution into the parsers.
// DisplayName falls back to a format label ("JSON Feed", "RSS Feed",
// "Text Feed") when empty.
type SourceContext struct {
	FeedListID  string
	DisplayName string
}

// Configuration types (one YAML file per source)

type Config struct {
	Name        string         `yaml:"-"` // Derived from filename (without .yml extension)
	URL         string         `yaml:"url"`
	DisplayName string         `yaml:"name"`
	FeedListID  string         `yaml:"feed_list_id"`
	Settings    ConfigSettings `yaml:"settings"`
	Filters     []ConfigFilter `yaml:"filters"`
}

type ConfigSettings struct {
	Enabled         bool `yaml:"enabled"`
	RefreshInterval int  `yaml:"refresh_interval"` // seconds
	MaxItems        int  `yaml:"max_items"`
	Timeout         int  `yaml:"timeout"`         // seconds
	ExtractContent  bool `yaml:"extract_content"` // enable content extraction
}

type ConfigFilter struct {
	Field    string   `yaml:"field"`
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}

// Context builds the SourceContext handed to the parsers for this source.
func (c *Config) Context() SourceContext {
	return SourceContext{
		FeedListID:  cmp.Or(c.FeedListID, DefaultFeedListID),
		DisplayName: c.DisplayName,
	}
}
