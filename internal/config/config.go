package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime settings for the assistant. Values come from
// defaults, then a .env file, then process environment variables.
type Config struct {
	ProjectDir   string `json:"project_dir"`
	DataDir      string `json:"data_dir"`
	DataCacheDir string `json:"data_cache_dir"`
	ResultsDir   string `json:"results_dir"`

	// LLM settings
	LLMProvider string  `json:"llm_provider"` // openai, openrouter, deepseek
	LLMModel    string  `json:"llm_model"`
	Temperature float32 `json:"temperature"`
	BackendURL  string  `json:"backend_url"`

	// API keys
	OpenAIAPIKey    string `json:"openai_api_key"`
	DeepSeekAPIKey  string `json:"deepseek_api_key"`
	FinnhubAPIKey   string `json:"finnhub_api_key"`
	MarketauxAPIKey string `json:"marketaux_api_key"`
	GoogleAPIKey    string `json:"google_api_key"`

	// Portfolio document store
	PineconeAPIKey  string `json:"pinecone_api_key"`
	PineconeHost    string `json:"pinecone_host"`
	PortfolioDBPath string `json:"portfolio_db_path"`

	// Fetch behavior
	HistoryDays      int           `json:"history_days"`
	EarningsPeriods  int           `json:"earnings_periods"`
	FetchParallelism int           `json:"fetch_parallelism"`
	FetchTimeout     time.Duration `json:"fetch_timeout"`

	CacheEnabled   bool          `json:"cache_enabled"`
	ResultCacheTTL time.Duration `json:"result_cache_ttl"`

	VoiceEnabled bool `json:"voice_enabled"`
	Debug        bool `json:"debug"`
}

// DefaultConfig returns a config populated with defaults, .env values and
// environment overrides, in that order.
func DefaultConfig() *Config {
	currentDir, _ := os.Getwd()

	cfg := &Config{
		ProjectDir:   currentDir,
		DataDir:      filepath.Join(currentDir, "data"),
		DataCacheDir: filepath.Join(currentDir, "data", "cache"),
		ResultsDir:   filepath.Join(currentDir, "results"),

		LLMProvider: "openrouter",
		LLMModel:    "openai/gpt-4o-mini",
		Temperature: 0.3,
		BackendURL:  "https://openrouter.ai/api/v1",

		PortfolioDBPath: filepath.Join(currentDir, "data", "portfolio.db"),

		HistoryDays:      30,
		EarningsPeriods:  4,
		FetchParallelism: 4,
		FetchTimeout:     15 * time.Second,

		CacheEnabled:   true,
		ResultCacheTTL: time.Hour,

		VoiceEnabled: false,
		Debug:        false,
	}

	_ = godotenv.Load()
	cfg.loadFromEnv()

	return cfg
}

func (c *Config) loadFromEnv() {
	if val := os.Getenv("PROJECT_DIR"); val != "" {
		c.ProjectDir = val
	}
	if val := os.Getenv("DATA_DIR"); val != "" {
		c.DataDir = val
	}
	if val := os.Getenv("DATA_CACHE_DIR"); val != "" {
		c.DataCacheDir = val
	}
	if val := os.Getenv("RESULTS_DIR"); val != "" {
		c.ResultsDir = val
	}

	if val := os.Getenv("LLM_PROVIDER"); val != "" {
		c.LLMProvider = val
	}
	if val := os.Getenv("LLM_MODEL"); val != "" {
		c.LLMModel = val
	}
	if val := os.Getenv("LLM_TEMPERATURE"); val != "" {
		if t, err := strconv.ParseFloat(val, 32); err == nil {
			c.Temperature = float32(t)
		}
	}
	if val := os.Getenv("BACKEND_URL"); val != "" {
		c.BackendURL = val
	}

	if val := os.Getenv("OPENROUTER_API_KEY"); val != "" {
		c.OpenAIAPIKey = val
	}
	if val := os.Getenv("OPENAI_API_KEY"); val != "" {
		c.OpenAIAPIKey = val
	}
	if val := os.Getenv("DEEPSEEK_API_KEY"); val != "" {
		c.DeepSeekAPIKey = val
	}
	if val := os.Getenv("FINNHUB_API_KEY"); val != "" {
		c.FinnhubAPIKey = val
	}
	if val := os.Getenv("MARKETAUX_API_KEY"); val != "" {
		c.MarketauxAPIKey = val
	}
	if val := os.Getenv("GOOGLE_API_KEY"); val != "" {
		c.GoogleAPIKey = val
	}

	if val := os.Getenv("PINECONE_API_KEY"); val != "" {
		c.PineconeAPIKey = val
	}
	if val := os.Getenv("PINECONE_HOST"); val != "" {
		c.PineconeHost = val
	}
	if val := os.Getenv("PORTFOLIO_DB_PATH"); val != "" {
		c.PortfolioDBPath = val
	}

	if val := os.Getenv("HISTORY_DAYS"); val != "" {
		if v, err := strconv.Atoi(val); err == nil && v > 0 {
			c.HistoryDays = v
		}
	}
	if val := os.Getenv("EARNINGS_PERIODS"); val != "" {
		if v, err := strconv.Atoi(val); err == nil && v > 0 {
			c.EarningsPeriods = v
		}
	}
	if val := os.Getenv("FETCH_PARALLELISM"); val != "" {
		if v, err := strconv.Atoi(val); err == nil && v > 0 {
			c.FetchParallelism = v
		}
	}
	if val := os.Getenv("FETCH_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil && d > 0 {
			c.FetchTimeout = d
		}
	}

	if val := os.Getenv("CACHE_ENABLED"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.CacheEnabled = enabled
		}
	}
	if val := os.Getenv("RESULT_CACHE_TTL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil && d > 0 {
			c.ResultCacheTTL = d
		}
	}

	if val := os.Getenv("VOICE_ENABLED"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.VoiceEnabled = enabled
		}
	}
	if val := os.Getenv("FINBRIEF_DEBUG"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.Debug = enabled
		}
	}
}

// Validate reports configuration problems that make the assistant unusable.
func (c *Config) Validate() error {
	switch c.LLMProvider {
	case "openai", "openrouter":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("LLM provider %q requires OPENROUTER_API_KEY or OPENAI_API_KEY", c.LLMProvider)
		}
	case "deepseek":
		if c.DeepSeekAPIKey == "" {
			return fmt.Errorf("LLM provider deepseek requires DEEPSEEK_API_KEY")
		}
	default:
		return fmt.Errorf("unknown LLM provider: %s", c.LLMProvider)
	}
	if c.LLMModel == "" {
		return fmt.Errorf("LLM model is required")
	}
	return nil
}

func (c *Config) EnsureDirectories() error {
	dirs := []string{c.DataDir, c.DataCacheDir, c.ResultsDir}
	for _, dir := range dirs {
		path := strings.TrimSpace(dir)
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", path, err)
		}
	}
	return nil
}
