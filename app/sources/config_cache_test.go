package sources

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name+".yml"), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
}

func TestConfigCache_LoadAndDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "support-inbox", `
platform: gmail
gmail:
  token: test-token
settings:
  enabled: true
`)

	cache := NewConfigCache(dir)
	if err := cache.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	config, err := cache.GetConfig("support-inbox")
	if err != nil {
		t.Fatalf("GetConfig failed: %v", err)
	}

	if config.Name != "support-inbox" {
		t.Errorf("Name should derive from filename, got %q", config.Name)
	}
	if config.Settings.SyncInterval != 300 {
		t.Errorf("Expected default sync interval 300, got %d", config.Settings.SyncInterval)
	}
	if config.Settings.MaxItems != 50 {
		t.Errorf("Expected default item cap 50, got %d", config.Settings.MaxItems)
	}
	if config.Settings.WindowHours != 24 {
		t.Errorf("Expected default window of 24 hours, got %d", config.Settings.WindowHours)
	}
	if config.Settings.Timeout != 30 {
		t.Errorf("Expected default timeout 30, got %d", config.Settings.Timeout)
	}
}

func TestConfigCache_EnabledConfigs(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "enabled-source", `
platform: rss
rss:
  url: https://forum.example.com/feed.xml
settings:
  enabled: true
`)
	writeConfig(t, dir, "disabled-source", `
platform: rss
rss:
  url: https://other.example.com/feed.xml
settings:
  enabled: false
`)

	cache := NewConfigCache(dir)
	if err := cache.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if cache.GetConfigCount() != 2 {
		t.Errorf("Expected 2 configs loaded, got %d", cache.GetConfigCount())
	}

	enabled := cache.GetEnabledConfigs()
	if len(enabled) != 1 {
		t.Fatalf("Expected 1 enabled config, got %d", len(enabled))
	}
	if _, ok := enabled["enabled-source"]; !ok {
		t.Error("Expected 'enabled-source' in enabled configs")
	}
}

func TestConfigCache_Validation(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"missing platform", "settings:\n  enabled: true\n"},
		{"unsupported platform", "platform: carrier-pigeon\n"},
		{"gmail without token", "platform: gmail\n"},
		{"rss without url", "platform: rss\n"},
		{"negative timeout", "platform: rss\nrss:\n  url: https://x.example/feed\nsettings:\n  timeout: -1\n"},
	}

	for _, tc := range cases {
		dir := t.TempDir()
		writeConfig(t, dir, "bad", tc.content)

		cache := NewConfigCache(dir)
		if err := cache.Run(); err == nil {
			t.Errorf("Case %q should fail validation", tc.name)
		}
	}
}

func TestConfigCache_MissingDirectory(t *testing.T) {
	cache := NewConfigCache("/nonexistent/path")
	if err := cache.Run(); err != nil {
		t.Errorf("Missing sources directory should not be an error, got: %v", err)
	}
	if cache.GetConfigCount() != 0 {
		t.Errorf("Expected empty cache, got %d configs", cache.GetConfigCount())
	}
}

func TestConfigCache_UnknownSource(t *testing.T) {
	cache := NewConfigCache(t.TempDir())
	if _, err := cache.GetConfig("nope"); err == nil {
		t.Error("Unknown source name should return an error")
	}
}
