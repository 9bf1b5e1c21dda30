package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Ebay       EbayConfig
	Etsy       EtsyConfig
	AliExpress AliExpressConfig
	Cache      CacheConfig
	Upstream   UpstreamConfig
	RateLimit  RateLimitConfig
	Client     ClientConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Environment     string        `mapstructure:"environment"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// IsProduction reports whether the server runs with production settings
func (s ServerConfig) IsProduction() bool {
	return s.Environment == "production"
}

// EbayConfig holds eBay Browse API credentials
type EbayConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	Environment  string `mapstructure:"environment"` // "sandbox" or "production"
	Scope        string `mapstructure:"scope"`
	IdentityURL  string `mapstructure:"identity_url"`
	APIURL       string `mapstructure:"api_url"`
}

// EtsyConfig holds Etsy Open API configuration
type EtsyConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// AliExpressConfig holds the RapidAPI gateway configuration
type AliExpressConfig struct {
	RapidAPIKey string `mapstructure:"rapidapi_key"`
	Host        string `mapstructure:"host"`
	BaseURL     string `mapstructure:"base_url"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type          string        `mapstructure:"type"` // "memory" or "redis"
	RedisURL      string        `mapstructure:"redis_url"`
	TTL           time.Duration `mapstructure:"ttl"`
	FallbackTTL   time.Duration `mapstructure:"fallback_ttl"`
	TokenTTL      time.Duration `mapstructure:"token_ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// UpstreamConfig tunes outbound marketplace requests
type UpstreamConfig struct {
	Timeout       time.Duration `mapstructure:"timeout"`
	MaxAttempts   int           `mapstructure:"max_attempts"`
	Backoff       time.Duration `mapstructure:"backoff"`
	RatePerSecond float64       `mapstructure:"rate_per_second"`
}

// RateLimitConfig holds inbound rate limiting configuration
type RateLimitConfig struct {
	PerIP  int           `mapstructure:"per_ip"`
	Window time.Duration `mapstructure:"window"`
}

// ClientConfig configures the comparison CLI
type ClientConfig struct {
	ServerURL string        `mapstructure:"server_url"`
	PageSize  int           `mapstructure:"page_size"`
	CacheTTL  time.Duration `mapstructure:"cache_ttl"`
}

// envAliases maps config keys to the unprefixed variable names deployments
// already use. The prefixed PRICECOMPARE_* name is always accepted too.
var envAliases = map[string]string{
	"ebay.client_id":          "EBAY_CLIENT_ID",
	"ebay.client_secret":      "EBAY_CLIENT_SECRET",
	"ebay.environment":        "EBAY_ENV",
	"etsy.api_key":            "ETSY_API_KEY",
	"aliexpress.rapidapi_key": "RAPIDAPI_KEY",
	"server.port":             "PORT",
	"server.environment":      "NODE_ENV",
	"cache.redis_url":         "REDIS_URL",
}

// Load loads configuration from an optional .env file, environment variables
// and config files
func Load() (*Config, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// LoadClient loads only the client section. It does not require server or
// marketplace settings to be valid.
func LoadClient() (*ClientConfig, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}

	var client ClientConfig
	if err := v.UnmarshalKey("client", &client); err != nil {
		return nil, fmt.Errorf("unable to decode client config: %w", err)
	}
	if err := client.validate(); err != nil {
		return nil, fmt.Errorf("invalid client configuration: %w", err)
	}
	return &client, nil
}

func newViper() (*viper.Viper, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/pricecompare/")

	// Environment variable settings
	v.SetEnvPrefix("PRICECOMPARE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindEnvAliases(v); err != nil {
		return nil, err
	}

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return v, nil
}

// loadEnvFile loads .env from the working directory when present. Variables
// already set in the environment win.
func loadEnvFile() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error reading .env file: %w", err)
	}
	return nil
}

func bindEnvAliases(v *viper.Viper) error {
	for key, alias := range envAliases {
		prefixed := "PRICECOMPARE_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, alias); err != nil {
			return fmt.Errorf("binding %s: %w", key, err)
		}
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "3000")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000", "chrome-extension://*"})
	v.SetDefault("server.shutdown_timeout", "10s")

	// Marketplace defaults
	v.SetDefault("ebay.environment", "sandbox")
	v.SetDefault("ebay.scope", "")
	v.SetDefault("ebay.identity_url", "")
	v.SetDefault("ebay.api_url", "")
	v.SetDefault("etsy.base_url", "https://openapi.etsy.com")
	v.SetDefault("aliexpress.host", "aliexpress-datahub.p.rapidapi.com")
	v.SetDefault("aliexpress.base_url", "")

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.ttl", "5m")
	v.SetDefault("cache.fallback_ttl", "1m")
	v.SetDefault("cache.token_ttl", "1h")
	v.SetDefault("cache.sweep_interval", "60s")

	// Upstream defaults
	v.SetDefault("upstream.timeout", "10s")
	v.SetDefault("upstream.max_attempts", 2)
	v.SetDefault("upstream.backoff", "1s")
	v.SetDefault("upstream.rate_per_second", 0)

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)
	v.SetDefault("ratelimit.window", "15m")

	// Client defaults
	v.SetDefault("client.server_url", "http://localhost:3000")
	v.SetDefault("client.page_size", 18)
	v.SetDefault("client.cache_ttl", "5m")
}

// validate validates the configuration. Missing marketplace credentials are
// only fatal in production; elsewhere they surface through Warnings.
func validate(config *Config) error {
	if config.Ebay.Environment != "sandbox" && config.Ebay.Environment != "production" {
		return fmt.Errorf("ebay environment must be 'sandbox' or 'production', got: %s", config.Ebay.Environment)
	}

	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("redis URL is required when cache type is 'redis'")
	}

	if config.Cache.TTL <= 0 || config.Cache.FallbackTTL <= 0 {
		return fmt.Errorf("cache TTLs must be positive")
	}

	if config.RateLimit.PerIP <= 0 || config.RateLimit.Window <= 0 {
		return fmt.Errorf("rate limit must allow at least one request per window")
	}

	if err := config.Client.validate(); err != nil {
		return err
	}

	if missing := config.MissingCredentials(); len(missing) > 0 && config.Server.IsProduction() {
		return fmt.Errorf("missing credentials: %s", strings.Join(missing, ", "))
	}

	return nil
}

func (c ClientConfig) validate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("client server URL is required")
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("client page size must be positive, got: %d", c.PageSize)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("client cache TTL must be positive")
	}
	return nil
}

// MissingCredentials lists the unset credentials by their environment names
func (c *Config) MissingCredentials() []string {
	var missing []string
	if c.Ebay.ClientID == "" {
		missing = append(missing, "EBAY_CLIENT_ID")
	}
	if c.Ebay.ClientSecret == "" {
		missing = append(missing, "EBAY_CLIENT_SECRET")
	}
	if c.AliExpress.RapidAPIKey == "" {
		missing = append(missing, "RAPIDAPI_KEY")
	}
	return missing
}

// Warnings returns configuration problems that do not stop the server
func (c *Config) Warnings() []string {
	var warnings []string
	if missing := c.MissingCredentials(); len(missing) > 0 {
		warnings = append(warnings, "missing credentials: "+strings.Join(missing, ", "))
	}
	if c.Etsy.APIKey == "" {
		warnings = append(warnings, "ETSY_API_KEY not set; Etsy results will use fallback data")
	}
	if c.Server.Environment == "development" && c.Ebay.Environment == "production" {
		warnings = append(warnings, "using production eBay keys in development; consider sandbox keys for testing")
	}
	return warnings
}
