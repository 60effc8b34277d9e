package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	MockMode  bool            `yaml:"mockMode"`
	LLM       LLMConfig       `yaml:"llm"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	LinkCheck LinkCheckConfig `yaml:"linkCheck"`
	Session   SessionConfig   `yaml:"session"`
	Checkout  CheckoutConfig  `yaml:"checkout"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	CORSOrigins    []string        `yaml:"corsOrigins"`
	MaxInputLength int             `yaml:"maxInputLength"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
	Retry          RetryConfig     `yaml:"retry"`
}

// RateLimitConfig drives the per-client request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// RetryConfig configures best-effort retries for POST requests.
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
	Exclude     []string      `yaml:"exclude"`
}

// LLMConfig contains ChatGPT/OpenAI settings.
type LLMConfig struct {
	APIKey          string  `yaml:"apiKey"`
	BaseURL         string  `yaml:"baseUrl"`
	Model           string  `yaml:"model"`
	ClassifierModel string  `yaml:"classifierModel"`
	VisionModel     string  `yaml:"visionModel"`
	Temperature     float32 `yaml:"temperature"`
	MaxTokens       int     `yaml:"maxTokens"`
	ExplainTokens   int     `yaml:"explainTokens"`
}

// DiscoveryConfig controls product search.
type DiscoveryConfig struct {
	SerpAPIKey        string  `yaml:"serpApiKey"`
	BaseURL           string  `yaml:"baseUrl"`
	MaxResults        int     `yaml:"maxResults"`
	RequestsPerSecond float64 `yaml:"requestsPerSecond"`
	Burst             int     `yaml:"burst"`
	Concurrency       int     `yaml:"concurrency"`
}

// LinkCheckConfig controls product URL liveness validation.
type LinkCheckConfig struct {
	ValidTTL       time.Duration `yaml:"validTtl"`
	InvalidTTL     time.Duration `yaml:"invalidTtl"`
	DomainBackoff  time.Duration `yaml:"domainBackoff"`
	RequestTimeout time.Duration `yaml:"requestTimeout"`
	PurgeInterval  time.Duration `yaml:"purgeInterval"`
	MaxBodyBytes   int64         `yaml:"maxBodyBytes"`
	UserAgent      string        `yaml:"userAgent"`
	TextClassifier bool          `yaml:"textClassifier"`
	Vision         VisionConfig  `yaml:"vision"`
	Redis          RedisConfig   `yaml:"redis"`
}

// VisionConfig controls screenshot based verification.
type VisionConfig struct {
	Enabled        bool          `yaml:"enabled"`
	BrowserBin     string        `yaml:"browserBin"`
	ViewportWidth  int           `yaml:"viewportWidth"`
	ViewportHeight int           `yaml:"viewportHeight"`
	SettleDelay    time.Duration `yaml:"settleDelay"`
}

// SessionConfig controls where shopper sessions live.
type SessionConfig struct {
	// TTL expires idle sessions in Valkey. Zero keeps them forever.
	TTL   time.Duration `yaml:"ttl"`
	Redis RedisConfig   `yaml:"redis"`
}

// CheckoutConfig controls the simulated checkout.
type CheckoutConfig struct {
	StepDelay time.Duration `yaml:"stepDelay"`
}

// RedisConfig contains connection information for cache storage.
type RedisConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// Load reads configuration from .env, a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.HTTP.CORSOrigins = splitList(v)
	}
	if v := os.Getenv("MAX_INPUT_LENGTH"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.MaxInputLength = parsed
		}
	}
	if v := os.Getenv("MOCK_MODE"); v != "" {
		cfg.MockMode = parseBool(v)
	}

	for _, key := range []string{"OPENAI_API_KEY", "LLM_API_KEY"} {
		if v := os.Getenv(key); v != "" {
			cfg.LLM.APIKey = v
		}
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LLM_CLASSIFIER_MODEL"); v != "" {
		cfg.LLM.ClassifierModel = v
	}
	if v := os.Getenv("LLM_VISION_MODEL"); v != "" {
		cfg.LLM.VisionModel = v
	}
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.LLM.Temperature = float32(parsed)
		}
	}

	if v := os.Getenv("SERPAPI_KEY"); v != "" {
		cfg.Discovery.SerpAPIKey = v
	}
	if v := os.Getenv("DISCOVERY_MAX_RESULTS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Discovery.MaxResults = parsed
		}
	}
	if v := os.Getenv("DISCOVERY_CONCURRENCY"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Discovery.Concurrency = parsed
		}
	}

	if v := os.Getenv("LINKCHECK_VALID_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.LinkCheck.ValidTTL = parsed
		}
	}
	if v := os.Getenv("LINKCHECK_INVALID_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.LinkCheck.InvalidTTL = parsed
		}
	}
	if v := os.Getenv("LINKCHECK_TEXT_CLASSIFIER"); v != "" {
		cfg.LinkCheck.TextClassifier = parseBool(v)
	}
	if v := os.Getenv("LINKCHECK_VISION_ENABLED"); v != "" {
		cfg.LinkCheck.Vision.Enabled = parseBool(v)
	}
	if v := os.Getenv("LINKCHECK_BROWSER_BIN"); v != "" {
		cfg.LinkCheck.Vision.BrowserBin = v
	}
	if v := os.Getenv("LINKCHECK_REDIS_ENABLED"); v != "" {
		cfg.LinkCheck.Redis.Enabled = parseBool(v)
	}
	if v := os.Getenv("LINKCHECK_REDIS_ADDR"); v != "" {
		cfg.LinkCheck.Redis.Addr = v
	}
	if v := os.Getenv("SESSION_REDIS_ENABLED"); v != "" {
		cfg.Session.Redis.Enabled = parseBool(v)
	}
	if v := os.Getenv("SESSION_REDIS_ADDR"); v != "" {
		cfg.Session.Redis.Addr = v
	}
	if v := os.Getenv("CHECKOUT_STEP_DELAY"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Checkout.StepDelay = parsed
		}
	}

	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = parseBool(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_ENABLED"); v != "" {
		cfg.HTTP.Retry.Enabled = parseBool(v)
	}
	if v := os.Getenv("HTTP_RETRY_MAX_ATTEMPTS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.Retry.MaxAttempts = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_BASE_BACKOFF"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.HTTP.Retry.BaseBackoff = parsed
		}
	}
}

func parseBool(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:        ":8080",
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   60 * time.Second,
			CORSOrigins:    []string{"http://localhost:3000", "http://localhost:5173"},
			MaxInputLength: 500,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
			Retry: RetryConfig{
				Enabled:     true,
				MaxAttempts: 3,
				BaseBackoff: 150 * time.Millisecond,
				Exclude: []string{
					"/api/v1/checkout/execute",
				},
			},
		},
		LLM: LLMConfig{
			Model:           "gpt-4o",
			ClassifierModel: "gpt-4o-mini",
			VisionModel:     "gpt-4o",
			Temperature:     0.3,
			MaxTokens:       1024,
			ExplainTokens:   200,
		},
		Discovery: DiscoveryConfig{
			BaseURL:           "https://serpapi.com",
			MaxResults:        10,
			RequestsPerSecond: 5,
			Burst:             5,
			Concurrency:       4,
		},
		LinkCheck: LinkCheckConfig{
			ValidTTL:       6 * time.Hour,
			InvalidTTL:     time.Hour,
			DomainBackoff:  time.Hour,
			RequestTimeout: 8 * time.Second,
			PurgeInterval:  10 * time.Minute,
			MaxBodyBytes:   50_000,
			TextClassifier: true,
			Vision: VisionConfig{
				ViewportWidth:  1280,
				ViewportHeight: 800,
				SettleDelay:    1500 * time.Millisecond,
			},
		},
		Checkout: CheckoutConfig{
			StepDelay: time.Second,
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.MaxInputLength <= 0 {
		return errors.New("http.maxInputLength must be positive")
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		return errors.New("llm.model cannot be empty")
	}
	if c.Discovery.MaxResults <= 0 {
		return errors.New("discovery.maxResults must be positive")
	}
	if c.Discovery.Concurrency <= 0 {
		return errors.New("discovery.concurrency must be positive")
	}
	if c.Discovery.RequestsPerSecond <= 0 {
		return errors.New("discovery.requestsPerSecond must be positive")
	}
	if c.LinkCheck.ValidTTL <= 0 || c.LinkCheck.InvalidTTL <= 0 {
		return errors.New("linkCheck ttls must be positive")
	}
	if c.LinkCheck.DomainBackoff < 0 {
		return errors.New("linkCheck.domainBackoff cannot be negative")
	}
	if c.LinkCheck.RequestTimeout <= 0 {
		return errors.New("linkCheck.requestTimeout must be positive")
	}
	if c.LinkCheck.MaxBodyBytes <= 0 {
		return errors.New("linkCheck.maxBodyBytes must be positive")
	}
	if c.LinkCheck.Redis.Enabled && strings.TrimSpace(c.LinkCheck.Redis.Addr) == "" {
		return errors.New("linkCheck.redis.addr cannot be empty when redis is enabled")
	}
	if c.Session.Redis.Enabled && strings.TrimSpace(c.Session.Redis.Addr) == "" {
		return errors.New("session.redis.addr cannot be empty when redis is enabled")
	}
	if c.Checkout.StepDelay < 0 {
		return errors.New("checkout.stepDelay cannot be negative")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.HTTP.Retry.Enabled {
		if c.HTTP.Retry.MaxAttempts <= 0 {
			return errors.New("http.retry.maxAttempts must be positive")
		}
		if c.HTTP.Retry.BaseBackoff <= 0 {
			return errors.New("http.retry.baseBackoff must be positive")
		}
	}
	return nil
}
