package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Database configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./newspulse.db" description:"Path to the SQLite database file"`

	// Application configuration
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	DataFile     string `long:"data-file" env:"DATA_FILE" default:"./data.json" description:"JSON dataset of articles ingested at startup"`
	VocabFile    string `long:"vocab-file" env:"VOCAB_FILE" description:"YAML file overriding the query classifier vocabulary (optional)"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for admin endpoints (optional)"`

	// LLM configuration
	LLMAPIKey         string `long:"llm-api-key" env:"LLM_API_KEY" description:"OpenAI-compatible API key; rule-based fallback is used when unset"`
	LLMModel          string `long:"llm-model" env:"LLM_MODEL" default:"gpt-4o-mini" description:"Model used for query classification and summaries"`
	LLMTimeoutSeconds int    `long:"llm-timeout" env:"LLM_TIMEOUT" default:"5" description:"LLM call timeout in seconds before falling back"`

	// Trending configuration
	TrendingWindowHours  int     `long:"trending-window" env:"TRENDING_WINDOW_HOURS" default:"24" description:"Interaction aggregation window in hours"`
	TrendingHalfLife     float64 `long:"trending-half-life" env:"TRENDING_HALF_LIFE" default:"6" description:"Interaction decay half-life in hours"`
	TrendingPrecision    float64 `long:"trending-precision" env:"TRENDING_PRECISION" default:"0.5" description:"Geospatial bucket cell size in degrees for the trending cache"`
	TrendingTTLSeconds   int     `long:"trending-ttl" env:"TRENDING_TTL" default:"300" description:"Trending cache entry TTL in seconds"`
	TrendingCacheEntries int     `long:"trending-cache-entries" env:"TRENDING_CACHE_ENTRIES" default:"128" description:"Maximum number of trending cache entries before LRU eviction"`

	// Background processing
	WorkerCount       int `long:"worker-count" env:"WORKER_COUNT" default:"3" description:"Number of background workers for task processing"`
	SchedulerInterval int `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"60" description:"Scheduler interval in seconds"`

	// Application metadata
	Timezone string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:               raw.DBPath,
		Port:                 raw.Port,
		DataFile:             raw.DataFile,
		VocabFile:            raw.VocabFile,
		APIAccessKey:         raw.APIAccessKey,
		LLMAPIKey:            raw.LLMAPIKey,
		LLMModel:             raw.LLMModel,
		LLMTimeoutSeconds:    raw.LLMTimeoutSeconds,
		TrendingWindowHours:  raw.TrendingWindowHours,
		TrendingHalfLife:     raw.TrendingHalfLife,
		TrendingPrecision:    raw.TrendingPrecision,
		TrendingTTLSeconds:   raw.TrendingTTLSeconds,
		TrendingCacheEntries: raw.TrendingCacheEntries,
		WorkerCount:          raw.WorkerCount,
		SchedulerInterval:    raw.SchedulerInterval,
		Timezone:             raw.Timezone,
		Debug:                raw.Debug,
		Version:              GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
