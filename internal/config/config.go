package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Search     SearchConfig     `yaml:"search" mapstructure:"search"`
	LLM        LLMConfig        `yaml:"llm" mapstructure:"llm"`
	Anthropic  ProviderConfig   `yaml:"anthropic" mapstructure:"anthropic"`
	Gemini     ProviderConfig   `yaml:"gemini" mapstructure:"gemini"`
	OpenAI     ProviderConfig   `yaml:"openai" mapstructure:"openai"`
	Classify   ClassifyConfig   `yaml:"classify" mapstructure:"classify"`
	Enrich     EnrichConfig     `yaml:"enrich" mapstructure:"enrich"`
	ICP        ICPConfig        `yaml:"icp" mapstructure:"icp"`
	Resilience ResilienceConfig `yaml:"resilience" mapstructure:"resilience"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// SearchConfig configures the web search provider. An empty key leaves
// search unconfigured.
type SearchConfig struct {
	Provider      string `yaml:"provider" mapstructure:"provider"`
	Key           string `yaml:"key" mapstructure:"key"`
	BaseURL       string `yaml:"base_url" mapstructure:"base_url"`
	MaxResults    int    `yaml:"max_results" mapstructure:"max_results"`
	Depth         string `yaml:"depth" mapstructure:"depth"`
	ProfileDomain string `yaml:"profile_domain" mapstructure:"profile_domain"`
	TimeoutSecs   int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// LLMConfig selects the text-generation provider.
type LLMConfig struct {
	Provider string `yaml:"provider" mapstructure:"provider"`
}

// ProviderConfig holds credentials and model for one text-generation API.
type ProviderConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	Model   string `yaml:"model" mapstructure:"model"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// ClassifyConfig configures the classification cascade.
type ClassifyConfig struct {
	BatchSize                int     `yaml:"batch_size" mapstructure:"batch_size"`
	ModelConfidenceThreshold float64 `yaml:"model_confidence_threshold" mapstructure:"model_confidence_threshold"`
	SimilarityThreshold      float64 `yaml:"similarity_threshold" mapstructure:"similarity_threshold"`
	MinResultScore           float64 `yaml:"min_result_score" mapstructure:"min_result_score"`
	SearchIntervalMs         int     `yaml:"search_interval_ms" mapstructure:"search_interval_ms"`
	BatchIntervalMs          int     `yaml:"batch_interval_ms" mapstructure:"batch_interval_ms"`
	DualSearch               bool    `yaml:"dual_search" mapstructure:"dual_search"`
}

// EnrichConfig configures the enrichment engine.
type EnrichConfig struct {
	MaxContextChars int     `yaml:"max_context_chars" mapstructure:"max_context_chars"`
	MinContextChars int     `yaml:"min_context_chars" mapstructure:"min_context_chars"`
	MinResultScore  float64 `yaml:"min_result_score" mapstructure:"min_result_score"`
	StaleAfterDays  int     `yaml:"stale_after_days" mapstructure:"stale_after_days"`
	IntervalMs      int     `yaml:"interval_ms" mapstructure:"interval_ms"`
}

// ICPConfig configures the ICP scorer. Per-run ICP criteria live in a
// separate settings file.
type ICPConfig struct {
	EmployeeWeight                   float64 `yaml:"employee_weight" mapstructure:"employee_weight"`
	IndustryWeight                   float64 `yaml:"industry_weight" mapstructure:"industry_weight"`
	SpecialtyWeight                  float64 `yaml:"specialty_weight" mapstructure:"specialty_weight"`
	DefaultQuantitativeWeightPercent float64 `yaml:"default_quantitative_weight_percent" mapstructure:"default_quantitative_weight_percent"`
	SettingsPath                     string  `yaml:"settings_path" mapstructure:"settings_path"`
}

// ResilienceConfig configures retries and circuit breaking for provider calls.
type ResilienceConfig struct {
	MaxAttempts      int `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs int `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMs     int `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
	FailureThreshold int `yaml:"failure_threshold" mapstructure:"failure_threshold"`
	ResetTimeoutSecs int `yaml:"reset_timeout_secs" mapstructure:"reset_timeout_secs"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PROSPECT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Every key gets one so that env-only values unmarshal.
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "prospect.db")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 2)
	v.SetDefault("search.provider", "tavily")
	v.SetDefault("search.key", "")
	v.SetDefault("search.base_url", "https://api.tavily.com")
	v.SetDefault("search.max_results", 5)
	v.SetDefault("search.depth", "basic")
	v.SetDefault("search.profile_domain", "linkedin.com")
	v.SetDefault("search.timeout_secs", 30)
	v.SetDefault("llm.provider", "anthropic")
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.base_url", "")
	v.SetDefault("gemini.key", "")
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("gemini.base_url", "")
	v.SetDefault("openai.key", "")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("classify.batch_size", 15)
	v.SetDefault("classify.model_confidence_threshold", 0.7)
	v.SetDefault("classify.similarity_threshold", 0.6)
	v.SetDefault("classify.min_result_score", 0.5)
	v.SetDefault("classify.search_interval_ms", 500)
	v.SetDefault("classify.batch_interval_ms", 1000)
	v.SetDefault("classify.dual_search", true)
	v.SetDefault("enrich.max_context_chars", 4000)
	v.SetDefault("enrich.min_context_chars", 200)
	v.SetDefault("enrich.min_result_score", 0.5)
	v.SetDefault("enrich.stale_after_days", 30)
	v.SetDefault("enrich.interval_ms", 500)
	v.SetDefault("icp.employee_weight", 0.40)
	v.SetDefault("icp.industry_weight", 0.35)
	v.SetDefault("icp.specialty_weight", 0.25)
	v.SetDefault("icp.default_quantitative_weight_percent", 60)
	v.SetDefault("icp.settings_path", "icp.yaml")
	v.SetDefault("resilience.max_attempts", 3)
	v.SetDefault("resilience.initial_backoff_ms", 500)
	v.SetDefault("resilience.max_backoff_ms", 10000)
	v.SetDefault("resilience.failure_threshold", 5)
	v.SetDefault("resilience.reset_timeout_secs", 30)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// LLMProvider returns the credentials for the selected text-generation
// provider.
func (c *Config) LLMProvider() (name string, pc ProviderConfig) {
	name = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	switch name {
	case "gemini":
		return name, c.Gemini
	case "openai":
		return name, c.OpenAI
	default:
		return "anthropic", c.Anthropic
	}
}

// Validate checks the settings a command mode depends on.
func (c *Config) Validate(mode string) error {
	var errs []string

	needsLLM := false
	switch mode {
	case "classify", "score":
	case "enrich", "run":
		needsLLM = true
	case "serve":
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if needsLLM {
		if name, pc := c.LLMProvider(); pc.Key == "" {
			errs = append(errs, fmt.Sprintf("%s.key is required", name))
		}
	}
	if mode != "serve" {
		switch c.Store.Driver {
		case "sqlite", "postgres":
		default:
			errs = append(errs, fmt.Sprintf("store.driver must be sqlite or postgres, got %q", c.Store.Driver))
		}
		if c.Store.DatabaseURL == "" {
			errs = append(errs, "store.database_url is required")
		}
	}

	if c.Classify.BatchSize < 1 || c.Classify.BatchSize > 100 {
		errs = append(errs, "classify.batch_size must be between 1 and 100")
	}
	for key, val := range map[string]float64{
		"classify.model_confidence_threshold": c.Classify.ModelConfidenceThreshold,
		"classify.similarity_threshold":       c.Classify.SimilarityThreshold,
		"classify.min_result_score":           c.Classify.MinResultScore,
		"enrich.min_result_score":             c.Enrich.MinResultScore,
	} {
		if val < 0 || val > 1 {
			errs = append(errs, fmt.Sprintf("%s must be between 0 and 1", key))
		}
	}
	if c.ICP.EmployeeWeight < 0 || c.ICP.IndustryWeight < 0 || c.ICP.SpecialtyWeight < 0 {
		errs = append(errs, "icp weights must be >= 0")
	}
	if w := c.ICP.DefaultQuantitativeWeightPercent; w < 0 || w > 100 {
		errs = append(errs, "icp.default_quantitative_weight_percent must be between 0 and 100")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
