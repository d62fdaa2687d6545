package config

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Database  DatabaseConfig   `json:"database"`
	LogConfig logger.LogConfig `json:"log_config"`
	Fetch     FetchConfig      `json:"fetch"`
	Extract   ExtractConfig    `json:"extract"`
	Chunk     ChunkConfig      `json:"chunk"`
	AI        AIConfig         `json:"ai"`
	Retrieval RetrievalConfig  `json:"retrieval"`
	Jobs      JobsConfig       `json:"jobs"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	SSLMode  string `json:"sslmode"`
}

type FetchConfig struct {
	TmpDir         string      `json:"tmp_dir"`
	TimeoutSeconds int         `json:"timeout_seconds"`
	S3             interface{} `json:"s3"`
}

type ExtractConfig struct {
	ToolTimeoutSeconds int  `json:"tool_timeout_seconds"`
	LargePDFPages      int  `json:"large_pdf_pages"`
	Workers            int  `json:"workers"`
	AllowEstimation    bool `json:"allow_estimation"`
}

type ChunkConfig struct {
	MaxChars int `json:"max_chars"`
}

// AIProviderConfig is one fallback entry tried when the primary provider
// fails.
type AIProviderConfig struct {
	Provider string      `json:"provider"`
	Model    string      `json:"model"`
	Data     interface{} `json:"data"`
}

type AIConfig struct {
	Provider       string             `json:"provider"`
	Model          string             `json:"model"`
	Data           interface{}        `json:"data"`
	Fallbacks      []AIProviderConfig `json:"fallbacks"`
	MaxConcurrency int                `json:"max_concurrency"`
	LRUSize        int                `json:"lru_size"`
	LRUTTLMinutes  int                `json:"lru_ttl_minutes"`
}

type RetrievalConfig struct {
	TopK      int     `json:"top_k"`
	Threshold float32 `json:"threshold"`
}

type JobsConfig struct {
	TempCleanupSpec    string `json:"temp_cleanup_spec"`
	TempMaxAgeHours    int    `json:"temp_max_age_hours"`
	CacheCleanupSpec   string `json:"cache_cleanup_spec"`
	CacheMaxAgeDays    int    `json:"cache_max_age_days"`
	EnableCacheCleanup bool   `json:"enable_cache_cleanup"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Database.DSN == "" && cfg.Database.Host == "" {
		return nil, fmt.Errorf("database.dsn or database.host is required")
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.Fetch.TmpDir == "" {
		cfg.Fetch.TmpDir = os.TempDir()
	}
	if cfg.Fetch.TimeoutSeconds <= 0 {
		cfg.Fetch.TimeoutSeconds = 60
	}
	if cfg.Extract.ToolTimeoutSeconds <= 0 {
		cfg.Extract.ToolTimeoutSeconds = 120
	}
	if cfg.Extract.LargePDFPages <= 0 {
		cfg.Extract.LargePDFPages = 16
	}
	if cfg.Extract.Workers <= 0 || cfg.Extract.Workers > runtime.NumCPU() {
		cfg.Extract.Workers = runtime.NumCPU()
	}
	if cfg.Chunk.MaxChars <= 0 {
		cfg.Chunk.MaxChars = 33000
	}
	if cfg.AI.Provider == "" {
		return nil, fmt.Errorf("ai.provider is required")
	}
	if cfg.AI.Model == "" {
		return nil, fmt.Errorf("ai.model is required")
	}
	for i, fb := range cfg.AI.Fallbacks {
		if fb.Provider == "" || fb.Model == "" {
			return nil, fmt.Errorf("ai.fallbacks[%d]: provider and model are required", i)
		}
	}
	if cfg.AI.MaxConcurrency <= 0 || cfg.AI.MaxConcurrency > 50 {
		cfg.AI.MaxConcurrency = 50
	}
	if cfg.Retrieval.TopK <= 0 {
		cfg.Retrieval.TopK = 10
	}
	if cfg.Retrieval.Threshold <= 0 {
		cfg.Retrieval.Threshold = 0.5
	}
	if cfg.Jobs.TempCleanupSpec == "" {
		cfg.Jobs.TempCleanupSpec = "0 * * * *"
	}
	if cfg.Jobs.TempMaxAgeHours <= 0 {
		cfg.Jobs.TempMaxAgeHours = 6
	}
	if cfg.Jobs.CacheCleanupSpec == "" {
		cfg.Jobs.CacheCleanupSpec = "30 3 * * *"
	}
	if cfg.Jobs.CacheMaxAgeDays <= 0 {
		cfg.Jobs.CacheMaxAgeDays = 180
	}
	return &cfg, nil
}
