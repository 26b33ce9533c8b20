package cfg

import (
	"os"
	"testing"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}
}

func TestLoadDefaults(t *testing.T) {
	oldArgs := os.Args
	os.Args = []string{"test"}
	defer func() { os.Args = oldArgs }()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if cfg == nil {
		t.Fatal("Expected config, got nil")
	}

	if cfg.DBPath == "" {
		t.Error("Expected default DB path")
	}
	if cfg.ProxyURL == "" {
		t.Error("Expected default primary proxy prefix")
	}
	if cfg.ProxyFallbackURL == "" {
		t.Error("Expected default fallback proxy prefix")
	}
	if cfg.FetchTimeout <= 0 {
		t.Errorf("Expected positive fetch timeout, got %d", cfg.FetchTimeout)
	}
	if cfg.WorkerCount <= 0 {
		t.Errorf("Expected positive worker count, got %d", cfg.WorkerCount)
	}

	// Get should return the loaded config
	if Get() != cfg {
		t.Error("Get should return the loaded config")
	}
}

func TestLoadFlags(t *testing.T) {
	oldArgs := os.Args
	os.Args = []string{"test",
		"--port", "9090",
		"--proxy-url", "https://proxy.example.com/get?url=",
		"--fetch-timeout", "20",
		"--debug",
	}
	defer func() { os.Args = oldArgs }()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Expected port '9090', got '%s'", cfg.Port)
	}
	if cfg.ProxyURL != "https://proxy.example.com/get?url=" {
		t.Errorf("Expected overridden proxy URL, got '%s'", cfg.ProxyURL)
	}
	if cfg.FetchTimeout != 20 {
		t.Errorf("Expected fetch timeout 20, got %d", cfg.FetchTimeout)
	}
	if !cfg.Debug {
		t.Error("Expected debug to be enabled")
	}
}

func TestConfigFields(t *testing.T) {
	cfg := &Cfg{
		DBPath:            "./test.db",
		SourcesDir:        "./sources",
		Port:              "8080",
		BaseUrl:           "https://feeds.example.com",
		WorkerCount:       5,
		SchedulerInterval: 30,
		APIAccessKey:      "test-key",
		ProxyURL:          "https://proxy.example.com/get?url=",
		ProxyFallbackURL:  "https://fallback.example.com/proxy?quest=",
		FetchTimeout:      10,
		UserAgent:         "Test Agent",
		Timezone:          "UTC",
		Debug:             true,
		Version:           "test-version",
	}

	if cfg.DBPath != "./test.db" {
		t.Errorf("Expected DB path './test.db', got '%s'", cfg.DBPath)
	}
	if cfg.BaseUrl != "https://feeds.example.com" {
		t.Errorf("Expected base URL 'https://feeds.example.com', got '%s'", cfg.BaseUrl)
	}
	if cfg.ProxyURL != "https://proxy.example.com/get?url=" {
		t.Errorf("Expected proxy URL, got '%s'", cfg.ProxyURL)
	}
	if cfg.WorkerCount != 5 {
		t.Errorf("Expected worker count 5, got %d", cfg.WorkerCount)
	}
	if !cfg.Debug {
		t.Error("Expected debug to be enabled")
	}
}
