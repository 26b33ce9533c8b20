package feed

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSourceCacheLoadValidConfig(t *testing.T) {
	tempDir := t.TempDir()

	content := `
url: "https://example.com/feed.xml"
name: "Example Feed"
feed_list_id: "7"

settings:
  enabled: true
  refresh_interval: 1800
  max_items: 25
  timeout: 15

filters:
  - field: "title"
    includes:
      - "technology"
    excludes:
      - "spam"
`

	err := os.WriteFile(filepath.Join(tempDir, "test.yml"), []byte(content), 0644)
	if err != nil {
		t.Fatal(err)
	}

	sourceCache := NewSourceCache(tempDir)
	err = sourceCache.Run()
	if err != nil {
		t.Fatal(err)
	}

	if sourceCache.GetConfigCount() != 1 {
		t.Errorf("Expected 1 config, got %d", sourceCache.GetConfigCount())
	}

	sourceConfig, err := sourceCache.GetConfig("test")
	if err != nil {
		t.Fatal(err)
	}

	if sourceConfig.Name != "test" {
		t.Errorf("Expected name 'test', got '%s'", sourceConfig.Name)
	}
	if sourceConfig.URL != "https://example.com/feed.xml" {
		t.Errorf("Expected URL 'https://example.com/feed.xml', got '%s'", sourceConfig.URL)
	}
	if sourceConfig.DisplayName != "Example Feed" {
		t.Errorf("Expected display name 'Example Feed', got '%s'", sourceConfig.DisplayName)
	}
	if sourceConfig.FeedListID != "7" {
		t.Errorf("Expected feed list id '7', got '%s'", sourceConfig.FeedListID)
	}
	if sourceConfig.Settings.RefreshInterval != 1800 {
		t.Errorf("Expected refresh interval 1800, got %d", sourceConfig.Settings.RefreshInterval)
	}
	if sourceConfig.Settings.MaxItems != 25 {
		t.Errorf("Expected max items 25, got %d", sourceConfig.Settings.MaxItems)
	}
	if len(sourceConfig.Filters) != 1 {
		t.Errorf("Expected 1 filter, got %d", len(sourceConfig.Filters))
	}
}

func TestSourceCacheConfigContext(t *testing.T) {
	config := &Config{
		Name:        "test",
		URL:         "https://example.com/feed.xml",
		DisplayName: "Example Feed",
		FeedListID:  "7",
	}

	sctx := config.Context()
	if sctx.DisplayName != "Example Feed" {
		t.Errorf("Expected display name 'Example Feed', got '%s'", sctx.DisplayName)
	}
	if sctx.FeedListID != "7" {
		t.Errorf("Expected feed list id '7', got '%s'", sctx.FeedListID)
	}

	// Unset feed list falls back to the default
	config.FeedListID = ""
	if got := config.Context().FeedListID; got != DefaultFeedListID {
		t.Errorf("Expected default feed list id '%s', got '%s'", DefaultFeedListID, got)
	}
}

func TestSourceCacheLoadConfigWithDefaults(t *testing.T) {
	tempDir := t.TempDir()

	content := `
url: "https://example.com/feed.xml"

settings:
  enabled: true
`

	err := os.WriteFile(filepath.Join(tempDir, "test.yml"), []byte(content), 0644)
	if err != nil {
		t.Fatal(err)
	}

	sourceCache := NewSourceCache(tempDir)
	err = sourceCache.Run()
	if err != nil {
		t.Fatal(err)
	}

	sourceConfig, err := sourceCache.GetConfig("test")
	if err != nil {
		t.Fatal(err)
	}

	if sourceConfig.Settings.RefreshInterval != 3600 {
		t.Errorf("Expected default refresh interval 3600, got %d", sourceConfig.Settings.RefreshInterval)
	}
	if sourceConfig.Settings.MaxItems != 100 {
		t.Errorf("Expected default max items 100, got %d", sourceConfig.Settings.MaxItems)
	}
	if sourceConfig.Settings.Timeout != 30 {
		t.Errorf("Expected default timeout 30, got %d", sourceConfig.Settings.Timeout)
	}
}

func TestSourceCacheInvalidConfig(t *testing.T) {
	tempDir := t.TempDir()

	// Missing source URL
	content := `
settings:
  enabled: true
`

	err := os.WriteFile(filepath.Join(tempDir, "invalid.yml"), []byte(content), 0644)
	if err != nil {
		t.Fatal(err)
	}

	sourceCache := NewSourceCache(tempDir)
	err = sourceCache.Run()
	if err == nil {
		t.Error("Expected error for invalid config")
	}
}

func TestSourceCacheEmptyDirectory(t *testing.T) {
	sourceCache := NewSourceCache(t.TempDir())
	err := sourceCache.Run()
	if err != nil {
		t.Fatal(err)
	}

	if sourceCache.GetConfigCount() != 0 {
		t.Errorf("Expected 0 configs from empty directory, got %d", sourceCache.GetConfigCount())
	}
}

func TestSourceCacheMissingDirectory(t *testing.T) {
	sourceCache := NewSourceCache("/nonexistent/sources/dir")
	if err := sourceCache.Run(); err != nil {
		t.Errorf("Expected no error for missing sources directory, got: %v", err)
	}
}

func TestSourceCacheReloadConfig(t *testing.T) {
	tempDir := t.TempDir()

	configFile := filepath.Join(tempDir, "test.yml")
	err := os.WriteFile(configFile, []byte(`
url: "https://example.com/feed.xml"

settings:
  enabled: true
`), 0644)
	if err != nil {
		t.Fatal(err)
	}

	sourceCache := NewSourceCache(tempDir)
	err = sourceCache.Run()
	if err != nil {
		t.Fatal(err)
	}

	err = os.WriteFile(configFile, []byte(`
url: "https://example.com/new-feed.xml"

settings:
  enabled: true
  max_items: 50
`), 0644)
	if err != nil {
		t.Fatal(err)
	}

	reloadedConfig, err := sourceCache.LoadConfig("test")
	if err != nil {
		t.Fatal(err)
	}

	if reloadedConfig.URL != "https://example.com/new-feed.xml" {
		t.Errorf("Expected updated URL, got '%s'", reloadedConfig.URL)
	}
	if reloadedConfig.Settings.MaxItems != 50 {
		t.Errorf("Expected updated max_items 50, got %d", reloadedConfig.Settings.MaxItems)
	}

	_, err = sourceCache.LoadConfig("nonexistent")
	if err == nil {
		t.Error("Expected error for non-existent config")
	}
}

func TestSourceCacheGetEnabledConfigs(t *testing.T) {
	tempDir := t.TempDir()

	files := map[string]string{
		"enabled.yml": `
url: "https://example.com/enabled.xml"
settings:
  enabled: true
`,
		"disabled.yml": `
url: "https://example.com/disabled.xml"
settings:
  enabled: false
`,
	}

	for name, content := range files {
		if err := os.WriteFile(filepath.Join(tempDir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	sourceCache := NewSourceCache(tempDir)
	if err := sourceCache.Run(); err != nil {
		t.Fatal(err)
	}

	enabled := sourceCache.GetEnabledConfigs()
	if len(enabled) != 1 {
		t.Fatalf("Expected 1 enabled config, got %d", len(enabled))
	}
	if _, ok := enabled["enabled"]; !ok {
		t.Error("Expected 'enabled' config in enabled set")
	}

	// GetConfigs returns a copy
	all := sourceCache.GetConfigs()
	delete(all, "enabled")
	if sourceCache.GetConfigCount() != 2 {
		t.Error("Modifying returned configs map affected the cache")
	}
}

func TestSourceCacheValidateConfigFilters(t *testing.T) {
	sourceCache := NewSourceCache("")

	sourceConfig := &Config{
		Name: "test-source",
		URL:  "https://example.com/feed.xml",
		Settings: ConfigSettings{
			RefreshInterval: 3600,
			MaxItems:        100,
			Timeout:         30,
		},
	}

	validFields := []string{"title", "description", "content", "author", "link", "categories"}
	for _, field := range validFields {
		sourceConfig.Filters = []ConfigFilter{{Field: field, Includes: []string{"test"}}}
		if err := sourceCache.validateConfig(sourceConfig); err != nil {
			t.Errorf("Expected no error for valid filter field '%s', got: %v", field, err)
		}
	}

	sourceConfig.Filters = []ConfigFilter{{Field: "invalid_field", Includes: []string{"test"}}}
	if err := sourceCache.validateConfig(sourceConfig); err == nil {
		t.Error("Expected error for invalid filter field, got none")
	}

	sourceConfig.Filters = []ConfigFilter{{Field: "title"}}
	if err := sourceCache.validateConfig(sourceConfig); err == nil {
		t.Error("Expected error for filter with no includes or excludes, got none")
	}
}

func TestSourceCacheGetConfigNotFound(t *testing.T) {
	sourceCache := NewSourceCache(t.TempDir())
	if err := sourceCache.Run(); err != nil {
		t.Fatal(err)
	}

	_, err := sourceCache.GetConfig("missing")
	if err == nil {
		t.Error("Expected error for missing source name, got none")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("Expected error message to contain 'not found', got: %v", err)
	}
}
