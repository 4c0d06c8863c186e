// Package config handles configuration loading for nivesh.
// It supports YAML config files, a .env file and environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. NIVESH_API_PORT.
const EnvPrefix = "NIVESH"

// Config represents the complete application configuration.
type Config struct {
	LLM      LLMConfig      `mapstructure:"llm"      yaml:"llm"`
	Data     DataConfig     `mapstructure:"data"     yaml:"data"`
	Search   SearchConfig   `mapstructure:"search"   yaml:"search"`
	Analysis AnalysisConfig `mapstructure:"analysis" yaml:"analysis"`
	Storage  StorageConfig  `mapstructure:"storage"  yaml:"storage"`
	API      APIConfig      `mapstructure:"api"      yaml:"api"`
	Logging  LoggingConfig  `mapstructure:"logging"  yaml:"logging"`
}

// LLMConfig holds LLM provider configuration.
type LLMConfig struct {
	Provider          string  `mapstructure:"provider"            yaml:"provider"` // "ollama"
	OllamaURL         string  `mapstructure:"ollama_url"          yaml:"ollama_url"`
	Model             string  `mapstructure:"model"               yaml:"model"`
	Temperature       float64 `mapstructure:"temperature"         yaml:"temperature"`
	MaxTokens         int     `mapstructure:"max_tokens"          yaml:"max_tokens"`
	MaxToolIterations int     `mapstructure:"max_tool_iterations" yaml:"max_tool_iterations"`
}

// DataConfig holds market data endpoints and HTTP behaviour.
type DataConfig struct {
	YahooURL          string        `mapstructure:"yahoo_url"           yaml:"yahoo_url"`
	MFAPIURL          string        `mapstructure:"mfapi_url"           yaml:"mfapi_url"`
	NAVAllURL         string        `mapstructure:"navall_url"          yaml:"navall_url"`
	ScreenerURL       string        `mapstructure:"screener_url"        yaml:"screener_url"`
	Timeout           time.Duration `mapstructure:"timeout"             yaml:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second" yaml:"requests_per_second"`
	SchemeListTTL     time.Duration `mapstructure:"scheme_list_ttl"     yaml:"scheme_list_ttl"`
}

// SearchConfig holds web search credentials.
type SearchConfig struct {
	TavilyKey string `mapstructure:"tavily_key" yaml:"tavily_key"`
	TavilyURL string `mapstructure:"tavily_url" yaml:"tavily_url"`
}

// AnalysisConfig holds investment analysis settings.
type AnalysisConfig struct {
	HorizonYears int           `mapstructure:"horizon_years"  yaml:"horizon_years"`
	RiskFreeRate float64       `mapstructure:"risk_free_rate" yaml:"risk_free_rate"` // annual, as a fraction
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"  yaml:"fetch_timeout"`
}

// StorageConfig holds report history settings. An empty path disables it.
type StorageConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host           string        `mapstructure:"host"            yaml:"host"`
	Port           int           `mapstructure:"port"            yaml:"port"`
	CORSOrigins    []string      `mapstructure:"cors_origins"    yaml:"cors_origins"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
	Output string `mapstructure:"output" yaml:"output"` // "stderr", "stdout" or a file path
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.nivesh/config.yaml (home directory)
//  3. /etc/nivesh/config.yaml (system)
//
// A .env file in the working directory is loaded first. Environment
// variables override config file values.
// Format: NIVESH_<SECTION>_<KEY>, e.g., NIVESH_ANALYSIS_HORIZON_YEARS
func Load() (*Config, error) {
	_ = godotenv.Load() // optional

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".nivesh"))
	v.AddConfigPath("/etc/nivesh")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return unmarshal(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	_ = godotenv.Load()

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return unmarshal(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	overrideFromEnv(&cfg)
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("llm.provider", "ollama")
	v.SetDefault("llm.ollama_url", "http://localhost:11434")
	v.SetDefault("llm.model", "ministral-3:8b")
	v.SetDefault("llm.temperature", 0.1)
	v.SetDefault("llm.max_tokens", 4096)
	v.SetDefault("llm.max_tool_iterations", 8)

	v.SetDefault("data.yahoo_url", "https://query1.finance.yahoo.com")
	v.SetDefault("data.mfapi_url", "https://api.mfapi.in")
	v.SetDefault("data.navall_url", "https://www.amfiindia.com/spages/NAVAll.txt")
	v.SetDefault("data.screener_url", "https://www.screener.in")
	v.SetDefault("data.timeout", "30s")
	v.SetDefault("data.requests_per_second", 5.0)
	v.SetDefault("data.scheme_list_ttl", "12h")

	v.SetDefault("search.tavily_url", "https://api.tavily.com")

	v.SetDefault("analysis.horizon_years", 5)
	v.SetDefault("analysis.risk_free_rate", 0.07) // ~ Indian 10Y G-sec
	v.SetDefault("analysis.fetch_timeout", "60s")

	v.SetDefault("storage.path", filepath.Join(homeDir(), ".nivesh", "reports.db"))

	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})
	v.SetDefault("api.request_timeout", "90s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.output", "stderr")
}

// overrideFromEnv explicitly reads sensitive keys from environment variables.
// TAVILY_API_KEY is honoured when the prefixed variable is absent.
func overrideFromEnv(cfg *Config) {
	if key := os.Getenv("TAVILY_API_KEY"); key != "" && cfg.Search.TavilyKey == "" {
		cfg.Search.TavilyKey = key
	}
	if key := os.Getenv(EnvPrefix + "_SEARCH_TAVILY_KEY"); key != "" {
		cfg.Search.TavilyKey = key
	}
}

// Validate rejects settings the application cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Analysis.HorizonYears <= 0 {
		errs = append(errs, fmt.Errorf("analysis.horizon_years must be positive, got %d", c.Analysis.HorizonYears))
	}
	if c.Analysis.FetchTimeout < 0 {
		errs = append(errs, fmt.Errorf("analysis.fetch_timeout must not be negative"))
	}
	if c.Data.Timeout < 0 {
		errs = append(errs, fmt.Errorf("data.timeout must not be negative"))
	}
	if c.Data.RequestsPerSecond < 0 {
		errs = append(errs, fmt.Errorf("data.requests_per_second must not be negative"))
	}
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic":
	default:
		errs = append(errs, fmt.Errorf("logging.level %q is not a known level", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format))
	}
	if c.LLM.Provider != "ollama" {
		errs = append(errs, fmt.Errorf("llm.provider %q is not supported", c.LLM.Provider))
	}
	if c.API.Port < 0 || c.API.Port > 65535 {
		errs = append(errs, fmt.Errorf("api.port %d out of range", c.API.Port))
	}
	return errors.Join(errs...)
}

// Addr returns the API listen address.
func (c APIConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
