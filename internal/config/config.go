package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// envPrefix is prepended to every environment variable, e.g. MERIDIAN_UPSTREAM_API_KEY.
const envPrefix = "MERIDIAN"

// ErrMissingAPIKey is returned when no upstream credential is configured.
var ErrMissingAPIKey = errors.New("upstream.api_key is required (set MERIDIAN_UPSTREAM_API_KEY)")

// Config holds the configuration settings for the routing proxy.
//
// Fields:
// - Env: The current environment (local, development, production).
// - Port: The port the proxy listens on.
// - StaticDir: Optional directory with the map UI served at "/".
// - Upstream: Settings of the third-party routing API.
// - Geocoder: Which provider answers the geocode endpoint.
type Config struct {
	Env       string         `mapstructure:"env"`        // Env is the current environment: local, development, production.
	Port      int            `mapstructure:"port"`       // Port is the HTTP port of the proxy.
	StaticDir string         `mapstructure:"static_dir"` // StaticDir holds the map UI files, empty disables static serving.
	Upstream  UpstreamConfig `mapstructure:"upstream"`   // Upstream holds the routing API configuration.
	Geocoder  GeocoderConfig `mapstructure:"geocoder"`   // Geocoder selects the geocoding provider.
}

// UpstreamConfig describes the third-party routing/geocoding API.
type UpstreamConfig struct {
	BaseURL   string        `mapstructure:"base_url"`   // BaseURL of the API, without trailing slash.
	APIKey    string        `mapstructure:"api_key"`    // APIKey is the secret credential, never sent to clients.
	Country   string        `mapstructure:"country"`    // Country scopes geocoding lookups.
	Profile   string        `mapstructure:"profile"`    // Profile is the routing profile, e.g. driving-car.
	RateLimit int           `mapstructure:"rate_limit"` // RateLimit in requests per second, 0 means unlimited.
	Timeout   time.Duration `mapstructure:"timeout"`    // Timeout of a single upstream call, 0 means none.
}

// GeocoderConfig selects the provider used by the geocode endpoint.
type GeocoderConfig struct {
	Type   string `mapstructure:"type"`    // Type is one of ors, google, nominatim.
	APIKey string `mapstructure:"api_key"` // APIKey for the google provider.
}

// Load reads configuration from an optional .env file, an optional config.yaml and
// MERIDIAN_* environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	vpr := viper.New()

	vpr.SetDefault("env", "production")
	vpr.SetDefault("port", 3000)
	vpr.SetDefault("static_dir", "")
	vpr.SetDefault("upstream.base_url", "https://api.openrouteservice.org")
	vpr.SetDefault("upstream.api_key", "")
	vpr.SetDefault("upstream.country", "US")
	vpr.SetDefault("upstream.profile", "driving-car")
	vpr.SetDefault("upstream.rate_limit", 0)
	vpr.SetDefault("upstream.timeout", "0s")
	vpr.SetDefault("geocoder.type", "ors")
	vpr.SetDefault("geocoder.api_key", "")

	vpr.SetConfigName("config")
	vpr.SetConfigType("yaml")
	vpr.AddConfigPath(".")
	vpr.AddConfigPath("./configs")
	_ = vpr.ReadInConfig() // the file is optional

	vpr.SetEnvPrefix(envPrefix)
	vpr.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vpr.AutomaticEnv()

	var cfg Config
	if err := vpr.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// MustLoad loads the configuration and panics if it is invalid.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	return cfg
}

// Validate checks that required fields are present and sane.
func (c *Config) Validate() error {
	var errs []error

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port must be 1-65535, got %d", c.Port))
	}
	if c.Upstream.APIKey == "" {
		errs = append(errs, ErrMissingAPIKey)
	}
	if c.Upstream.BaseURL == "" {
		errs = append(errs, errors.New("upstream.base_url is required"))
	}
	if c.Upstream.Profile == "" {
		errs = append(errs, errors.New("upstream.profile is required"))
	}
	if c.Upstream.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("upstream.rate_limit must not be negative, got %d", c.Upstream.RateLimit))
	}
	if c.Upstream.Timeout < 0 {
		errs = append(errs, fmt.Errorf("upstream.timeout must not be negative, got %s", c.Upstream.Timeout))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %w", errors.Join(errs...))
	}

	return nil
}
