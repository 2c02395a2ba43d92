package common

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewDefaultConfig(t *testing.T) {
	config := NewDefaultConfig()

	if config.Server.Port != 8090 {
		t.Errorf("default port = %d, want 8090", config.Server.Port)
	}
	if config.Pipeline.ViewportWidth != 1280 || config.Pipeline.ViewportHeight != 720 {
		t.Errorf("default viewport = %gx%g, want 1280x720",
			config.Pipeline.ViewportWidth, config.Pipeline.ViewportHeight)
	}
	if config.Pipeline.Origin != "top-left" {
		t.Errorf("default origin = %q, want top-left", config.Pipeline.Origin)
	}
	if config.Retention.Enabled {
		t.Error("retention must be opt-in")
	}

	if err := config.Validate(); err != nil {
		t.Errorf("default config fails validation: %v", err)
	}
}

func TestLoadFromFilesOverrides(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.toml")
	override := filepath.Join(dir, "override.toml")

	os.WriteFile(base, []byte(`
[server]
port = 9000
host = "0.0.0.0"

[pipeline]
viewport_width = 1920.0
viewport_height = 1080.0
`), 0644)
	os.WriteFile(override, []byte(`
[server]
port = 9100
`), 0644)

	config, err := LoadFromFiles(base, override)
	if err != nil {
		t.Fatalf("LoadFromFiles() error: %v", err)
	}

	// Later files override earlier ones; untouched keys survive.
	if config.Server.Port != 9100 {
		t.Errorf("port = %d, want 9100 from override file", config.Server.Port)
	}
	if config.Server.Host != "0.0.0.0" {
		t.Errorf("host = %q, want value from base file", config.Server.Host)
	}
	if config.Pipeline.ViewportWidth != 1920 {
		t.Errorf("viewport width = %g, want 1920 from base file", config.Pipeline.ViewportWidth)
	}
	// Defaults fill everything neither file mentions.
	if config.Pipeline.FPS != 30 {
		t.Errorf("fps = %d, want default 30", config.Pipeline.FPS)
	}
}

func TestLoadFromFilesEnvOverrides(t *testing.T) {
	t.Setenv("SCAENA_SERVER_PORT", "9200")
	t.Setenv("SCAENA_PIPELINE_ORIGIN", "bottom-left")
	t.Setenv("SCAENA_SIMILARITY_THRESHOLD", "0.65")

	config, err := LoadFromFiles()
	if err != nil {
		t.Fatalf("LoadFromFiles() error: %v", err)
	}

	if config.Server.Port != 9200 {
		t.Errorf("port = %d, want env override 9200", config.Server.Port)
	}
	if config.Pipeline.Origin != "bottom-left" {
		t.Errorf("origin = %q, want env override bottom-left", config.Pipeline.Origin)
	}
	if config.Pipeline.SimilarityThreshold != 0.65 {
		t.Errorf("similarity threshold = %g, want env override 0.65", config.Pipeline.SimilarityThreshold)
	}
}

func TestLoadFromFilesMissingFile(t *testing.T) {
	if _, err := LoadFromFiles("/nonexistent/scaena.toml"); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults valid", func(c *Config) {}, false},
		{"bad origin", func(c *Config) { c.Pipeline.Origin = "center" }, true},
		{"zero viewport", func(c *Config) { c.Pipeline.ViewportWidth = 0 }, true},
		{"inverted zoom range", func(c *Config) { c.Pipeline.MinZoom = 4; c.Pipeline.MaxZoom = 2 }, true},
		{"zero fps", func(c *Config) { c.Pipeline.FPS = 0 }, true},
		{"bad retention schedule", func(c *Config) {
			c.Retention.Enabled = true
			c.Retention.Schedule = "not a cron"
		}, true},
		{"bad retention max_age", func(c *Config) {
			c.Retention.Enabled = true
			c.Retention.MaxAge = "one week"
		}, true},
		{"valid retention", func(c *Config) {
			c.Retention.Enabled = true
			c.Retention.Schedule = "0 3 * * *"
			c.Retention.MaxAge = "72h"
		}, false},
		{"disabled retention skips checks", func(c *Config) {
			c.Retention.Schedule = "garbage"
			c.Retention.MaxAge = "garbage"
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := NewDefaultConfig()
			tt.mutate(config)
			err := config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyFlagOverrides(t *testing.T) {
	config := NewDefaultConfig()

	ApplyFlagOverrides(config, 9300, "127.0.0.1")
	if config.Server.Port != 9300 || config.Server.Host != "127.0.0.1" {
		t.Errorf("flag overrides not applied: %d %s", config.Server.Port, config.Server.Host)
	}

	// Zero values leave config untouched.
	ApplyFlagOverrides(config, 0, "")
	if config.Server.Port != 9300 || config.Server.Host != "127.0.0.1" {
		t.Error("zero-value flags must not reset config")
	}
}

func TestIsProduction(t *testing.T) {
	config := NewDefaultConfig()
	if config.IsProduction() {
		t.Error("default environment must not be production")
	}

	for _, env := range []string{"production", "PROD", " Production "} {
		config.Environment = env
		if !config.IsProduction() {
			t.Errorf("IsProduction() = false for %q", env)
		}
	}
}

func TestDeepCloneConfig(t *testing.T) {
	config := NewDefaultConfig()
	clone := DeepCloneConfig(config)

	clone.Server.Port = 1
	clone.Logging.Output[0] = "changed"
	clone.WebSocket.ThrottleIntervals["stage_completed"] = "5s"

	if config.Server.Port == 1 {
		t.Error("clone shares scalar state with original")
	}
	if config.Logging.Output[0] == "changed" {
		t.Error("clone shares output slice with original")
	}
	if config.WebSocket.ThrottleIntervals["stage_completed"] == "5s" {
		t.Error("clone shares throttle map with original")
	}
}
