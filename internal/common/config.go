package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Logging     LoggingConfig   `toml:"logging"`
	Pipeline    PipelineConfig  `toml:"pipeline"`
	Taxonomy    TaxonomyConfig  `toml:"taxonomy"`
	WebSocket   WebSocketConfig `toml:"websocket"`
	Retention   RetentionConfig `toml:"retention"`
}

type ServerConfig struct {
	Port      int     `toml:"port"`
	Host      string  `toml:"host"`
	RateLimit float64 `toml:"rate_limit"` // API requests per second per server (0 = unlimited)
	RateBurst int     `toml:"rate_burst"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs
}

// PipelineConfig carries every tunable of the geometry/grouping/alignment/timeline
// pipeline. Stages read these at construction time; none of them hard-code
// their thresholds.
type PipelineConfig struct {
	ViewportWidth  float64 `toml:"viewport_width"`  // pixels
	ViewportHeight float64 `toml:"viewport_height"` // pixels
	Scale          float64 `toml:"scale"`           // points -> pixels multiplier
	FPS            int     `toml:"fps"`
	MinZoom        float64 `toml:"min_zoom"`
	MaxZoom        float64 `toml:"max_zoom"`
	InterStepPause float64 `toml:"inter_step_pause"` // seconds between timeline entries
	FocusLeadIn    float64 `toml:"focus_lead_in"`    // seconds from enter to focus keyframe

	// Origin convention of the analysis service ("top-left" or "bottom-left").
	// The upstream convention was reverse-engineered, so this is a validated
	// config flag rather than a hard assumption.
	Origin string `toml:"origin"`

	// Section grouping
	KeywordScoreThreshold float64 `toml:"keyword_score_threshold"` // section match acceptance
	ProximityThreshold    float64 `toml:"proximity_threshold"`     // px, vertical sub-clustering gap

	// Narration alignment
	SimilarityThreshold float64 `toml:"similarity_threshold"` // candidate acceptance
	MergeSimilarity     float64 `toml:"merge_similarity"`     // bar for merging neighbors
	MergeCap            int     `toml:"merge_cap"`            // max fragments merged into one box
}

// TaxonomyConfig points at the directory of taxonomy YAML files.
type TaxonomyConfig struct {
	Dir string `toml:"dir"` // Directory containing taxonomy files (*.yaml); empty = built-in default
}

// WebSocketConfig contains configuration for WebSocket event streaming
type WebSocketConfig struct {
	MinLevel string `toml:"min_level"` // Minimum log level to broadcast
	// Whitelist of event types to broadcast. Empty list allows all events.
	AllowedEvents []string `toml:"allowed_events"`
	// Throttle intervals for high-frequency events, event type -> duration string.
	ThrottleIntervals map[string]string `toml:"throttle_intervals"`
}

// RetentionConfig controls scheduled cleanup of persisted runs.
type RetentionConfig struct {
	Enabled  bool   `toml:"enabled"`
	Schedule string `toml:"schedule"` // Cron schedule format
	MaxAge   string `toml:"max_age"`  // e.g. "168h" - runs older than this are purged
}

// NewDefaultConfig creates a configuration with default values.
// Only user-facing settings should be exposed in scaena.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port:      8090,
			Host:      "localhost",
			RateLimit: 20,
			RateBurst: 40,
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout", "file"},
		},
		Pipeline: PipelineConfig{
			ViewportWidth:         1280,
			ViewportHeight:        720,
			Scale:                 1.0,
			FPS:                   30,
			MinZoom:               1.0,
			MaxZoom:               3.0,
			InterStepPause:        0.5,
			FocusLeadIn:           0.5,
			Origin:                "top-left", // the analysis service used emits top-left coordinates
			KeywordScoreThreshold: 0.3,
			ProximityThreshold:    72, // 1 inch equivalent at scale 1.0
			SimilarityThreshold:   0.5,
			MergeSimilarity:       0.7,
			MergeCap:              5,
		},
		Taxonomy: TaxonomyConfig{
			Dir: "./taxonomy",
		},
		WebSocket: WebSocketConfig{
			MinLevel:      "info",
			AllowedEvents: []string{},
			ThrottleIntervals: map[string]string{
				"stage_completed": "250ms",
			},
		},
		Retention: RetentionConfig{
			Enabled:  false, // user must explicitly opt-in
			Schedule: "0 0 * * *",
			MaxAge:   "168h",
		},
	}
}

// LoadFromFiles loads configuration from files with priority:
// defaults -> file1 -> file2 -> ... -> env -> CLI.
// Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks config invariants that would otherwise surface as silently
// wrong pipeline output.
func (c *Config) Validate() error {
	switch c.Pipeline.Origin {
	case "top-left", "bottom-left":
	default:
		return fmt.Errorf("invalid pipeline origin %q (expected top-left or bottom-left)", c.Pipeline.Origin)
	}
	if c.Pipeline.ViewportWidth <= 0 || c.Pipeline.ViewportHeight <= 0 {
		return fmt.Errorf("viewport dimensions must be positive, got %gx%g", c.Pipeline.ViewportWidth, c.Pipeline.ViewportHeight)
	}
	if c.Pipeline.MinZoom <= 0 || c.Pipeline.MaxZoom < c.Pipeline.MinZoom {
		return fmt.Errorf("invalid zoom range [%g, %g]", c.Pipeline.MinZoom, c.Pipeline.MaxZoom)
	}
	if c.Pipeline.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %d", c.Pipeline.FPS)
	}
	if c.Retention.Enabled {
		if err := ValidateRetentionSchedule(c.Retention.Schedule); err != nil {
			return err
		}
		if _, err := time.ParseDuration(c.Retention.MaxAge); err != nil {
			return fmt.Errorf("invalid retention max_age %q: %w", c.Retention.MaxAge, err)
		}
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("SCAENA_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("SCAENA_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("SCAENA_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Storage configuration
	if badgerPath := os.Getenv("SCAENA_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	// Logging configuration
	if level := os.Getenv("SCAENA_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("SCAENA_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// Pipeline configuration
	if vw := os.Getenv("SCAENA_VIEWPORT_WIDTH"); vw != "" {
		if v, err := strconv.ParseFloat(vw, 64); err == nil {
			config.Pipeline.ViewportWidth = v
		}
	}
	if vh := os.Getenv("SCAENA_VIEWPORT_HEIGHT"); vh != "" {
		if v, err := strconv.ParseFloat(vh, 64); err == nil {
			config.Pipeline.ViewportHeight = v
		}
	}
	if scale := os.Getenv("SCAENA_PIPELINE_SCALE"); scale != "" {
		if v, err := strconv.ParseFloat(scale, 64); err == nil {
			config.Pipeline.Scale = v
		}
	}
	if fps := os.Getenv("SCAENA_PIPELINE_FPS"); fps != "" {
		if v, err := strconv.Atoi(fps); err == nil {
			config.Pipeline.FPS = v
		}
	}
	if origin := os.Getenv("SCAENA_PIPELINE_ORIGIN"); origin != "" {
		config.Pipeline.Origin = origin
	}
	if threshold := os.Getenv("SCAENA_SIMILARITY_THRESHOLD"); threshold != "" {
		if v, err := strconv.ParseFloat(threshold, 64); err == nil {
			config.Pipeline.SimilarityThreshold = v
		}
	}

	// Taxonomy configuration
	if dir := os.Getenv("SCAENA_TAXONOMY_DIR"); dir != "" {
		config.Taxonomy.Dir = dir
	}

	// Retention configuration
	if enabled := os.Getenv("SCAENA_RETENTION_ENABLED"); enabled != "" {
		if e, err := strconv.ParseBool(enabled); err == nil {
			config.Retention.Enabled = e
		}
	}
	if schedule := os.Getenv("SCAENA_RETENTION_SCHEDULE"); schedule != "" {
		config.Retention.Schedule = schedule
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, port int, host string) {
	// Command-line flags have highest priority
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// ValidateRetentionSchedule validates a cron schedule expression
func ValidateRetentionSchedule(schedule string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}
	return nil
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// DeepCloneConfig creates a deep copy of the Config struct so callers can
// mutate their view without touching the loaded configuration.
func DeepCloneConfig(c *Config) *Config {
	if c == nil {
		return nil
	}

	clone := *c

	if len(c.Logging.Output) > 0 {
		clone.Logging.Output = make([]string, len(c.Logging.Output))
		copy(clone.Logging.Output, c.Logging.Output)
	}

	if len(c.WebSocket.AllowedEvents) > 0 {
		clone.WebSocket.AllowedEvents = make([]string, len(c.WebSocket.AllowedEvents))
		copy(clone.WebSocket.AllowedEvents, c.WebSocket.AllowedEvents)
	}

	if len(c.WebSocket.ThrottleIntervals) > 0 {
		clone.WebSocket.ThrottleIntervals = make(map[string]string, len(c.WebSocket.ThrottleIntervals))
		for k, v := range c.WebSocket.ThrottleIntervals {
			clone.WebSocket.ThrottleIntervals[k] = v
		}
	}

	return &clone
}
