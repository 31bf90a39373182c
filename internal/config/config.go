package config

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/Veraticus/finshare-ai/internal/common"
	"github.com/Veraticus/finshare-ai/internal/llm"
	"github.com/Veraticus/finshare-ai/internal/redisstore"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. FINSHARE_SERVER_ADDR.
const EnvPrefix = "FINSHARE"

// Storage backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Config is the fully resolved application configuration.
type Config struct {
	Server          ServerConfig
	Storage         StorageConfig
	Redis           RedisConfig
	LLM             LLMConfig
	Logging         LoggingConfig
	Lexicon         LexiconConfig
	Analytics       AnalyticsConfig
	Personalization PersonalizationConfig
	Categorizer     CategorizerConfig
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr         string
	CORSOrigins  []string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CertDir      string
	TLS          bool
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Backend      string
	DatabasePath string
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	Addr     string
	Password string
	Prefix   string
	DB       int
}

// LLMConfig configures the optional generative provider.
type LLMConfig struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	MaxRetries  int
	RetryDelay  time.Duration
	CacheTTL    time.Duration
	Timeout     time.Duration
	RateLimit   int
	Temperature float64
	MaxTokens   int
	RefineBelow float64
}

// LoggingConfig configures slog output.
type LoggingConfig struct {
	Level  string
	Format string
}

// LexiconConfig points at an optional YAML keyword file.
type LexiconConfig struct {
	Path string
}

// AnalyticsConfig locates the spending analytics service.
type AnalyticsConfig struct {
	URL string
}

// PersonalizationConfig controls when and how much the lexicon adapts.
type PersonalizationConfig struct {
	BatchSize    int
	MinExamples  int
	MaxNewTokens int
}

// CategorizerConfig tunes categorization output.
type CategorizerConfig struct {
	Alternatives int
}

// DefaultDatabasePath is where the SQLite database lives unless configured.
func DefaultDatabasePath() string {
	return filepath.Join(DataDir(), AppName+".db")
}

// SetDefaults registers every known key with its default value so env
// overrides resolve even without a config file.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.tls", false)
	v.SetDefault("server.cert_dir", filepath.Join(ConfigDir(), "certs"))

	v.SetDefault("storage.backend", BackendSQLite)
	v.SetDefault("database.path", "")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "finshare")

	v.SetDefault("lexicon.path", "")

	v.SetDefault("personalization.batch_size", 10)
	v.SetDefault("personalization.min_examples", 5)
	v.SetDefault("personalization.max_new_tokens", 3)

	v.SetDefault("categorizer.alternatives", 3)

	v.SetDefault("llm.provider", "")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.temperature", 0.3)
	v.SetDefault("llm.max_tokens", 1024)
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.retry_delay", 2*time.Second)
	v.SetDefault("llm.cache_ttl", 15*time.Minute)
	v.SetDefault("llm.rate_limit", 60)
	v.SetDefault("llm.timeout", 10*time.Second)
	v.SetDefault("llm.refine_below", 0.6)

	v.SetDefault("analytics.url", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// BindEnv makes FINSHARE_SECTION_KEY override section.key.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load resolves the configuration from v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Addr:         v.GetString("server.addr"),
			CORSOrigins:  v.GetStringSlice("server.cors_origins"),
			ReadTimeout:  v.GetDuration("server.read_timeout"),
			WriteTimeout: v.GetDuration("server.write_timeout"),
			CertDir:      ExpandPath(v.GetString("server.cert_dir")),
			TLS:          v.GetBool("server.tls"),
		},
		Storage: StorageConfig{
			Backend:      strings.ToLower(strings.TrimSpace(v.GetString("storage.backend"))),
			DatabasePath: ExpandPath(v.GetString("database.path")),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			Prefix:   v.GetString("redis.prefix"),
		},
		LLM: LLMConfig{
			Provider:    strings.ToLower(strings.TrimSpace(v.GetString("llm.provider"))),
			Model:       v.GetString("llm.model"),
			APIKey:      v.GetString("llm.api_key"),
			BaseURL:     v.GetString("llm.base_url"),
			Temperature: v.GetFloat64("llm.temperature"),
			MaxTokens:   v.GetInt("llm.max_tokens"),
			MaxRetries:  v.GetInt("llm.max_retries"),
			RetryDelay:  v.GetDuration("llm.retry_delay"),
			CacheTTL:    v.GetDuration("llm.cache_ttl"),
			RateLimit:   v.GetInt("llm.rate_limit"),
			Timeout:     v.GetDuration("llm.timeout"),
			RefineBelow: v.GetFloat64("llm.refine_below"),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
		Lexicon:   LexiconConfig{Path: ExpandPath(v.GetString("lexicon.path"))},
		Analytics: AnalyticsConfig{URL: v.GetString("analytics.url")},
		Personalization: PersonalizationConfig{
			BatchSize:    v.GetInt("personalization.batch_size"),
			MinExamples:  v.GetInt("personalization.min_examples"),
			MaxNewTokens: v.GetInt("personalization.max_new_tokens"),
		},
		Categorizer: CategorizerConfig{Alternatives: v.GetInt("categorizer.alternatives")},
	}

	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = DefaultDatabasePath()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the components cannot run with.
func (c *Config) Validate() error {
	backends := []string{BackendMemory, BackendSQLite, BackendRedis}
	if !slices.Contains(backends, c.Storage.Backend) {
		return fmt.Errorf("%w: storage.backend must be one of %s, got %q",
			common.ErrInvalidConfig, strings.Join(backends, ", "), c.Storage.Backend)
	}
	if c.Storage.Backend == BackendRedis && c.Redis.Addr == "" {
		return fmt.Errorf("%w: redis.addr is required for the redis backend", common.ErrMissingConfig)
	}
	if c.Personalization.BatchSize <= 0 {
		return fmt.Errorf("%w: personalization.batch_size must be positive", common.ErrInvalidConfig)
	}
	if c.Personalization.MinExamples <= 0 {
		return fmt.Errorf("%w: personalization.min_examples must be positive", common.ErrInvalidConfig)
	}
	if c.Personalization.MaxNewTokens <= 0 {
		return fmt.Errorf("%w: personalization.max_new_tokens must be positive", common.ErrInvalidConfig)
	}
	if c.Categorizer.Alternatives < 0 {
		return fmt.Errorf("%w: categorizer.alternatives must not be negative", common.ErrInvalidConfig)
	}
	if c.LLM.RefineBelow < 0 || c.LLM.RefineBelow > 1 {
		return fmt.Errorf("%w: llm.refine_below must be within [0, 1]", common.ErrInvalidConfig)
	}
	return nil
}

// Generator converts the LLM section into the generator's configuration.
func (c LLMConfig) Generator() llm.Config {
	return llm.Config{
		Provider:    c.Provider,
		APIKey:      c.APIKey,
		Model:       c.Model,
		BaseURL:     c.BaseURL,
		MaxRetries:  c.MaxRetries,
		RetryDelay:  c.RetryDelay,
		CacheTTL:    c.CacheTTL,
		Timeout:     c.Timeout,
		RateLimit:   c.RateLimit,
		Temperature: c.Temperature,
		MaxTokens:   c.MaxTokens,
	}
}

// Store converts the redis section into the store's configuration.
func (c RedisConfig) Store() redisstore.Config {
	return redisstore.Config{
		Addr:     c.Addr,
		Password: c.Password,
		DB:       c.DB,
		Prefix:   c.Prefix,
	}
}
