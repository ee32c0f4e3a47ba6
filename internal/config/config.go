// Package config loads service settings from an optional YAML or JSON file, a
// .env file and the process environment, in that order of precedence (lowest
// first).
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/dynamits/go-delivery-order/pkg/geo"
	"github.com/dynamits/go-delivery-order/pkg/geocode"
	"github.com/dynamits/go-delivery-order/pkg/mapview"
)

// Environment variables read by Load.
const (
	EnvAPIKey         = "MAPS_API_KEY"
	EnvAddr           = "DELIVERY_ADDR"
	EnvJaegerEndpoint = "JAEGER_ENDPOINT"
	EnvLogLevel       = "LOG_LEVEL"
	EnvLogFormat      = "LOG_FORMAT"
	EnvGeocodeURL     = "GEOCODE_BASE_URL"
	EnvGeocodeTimeout = "GEOCODE_TIMEOUT"
)

// ErrMissingAPIKey is returned by Validate when no maps API key is configured.
var ErrMissingAPIKey = errors.New("config: maps API key is required (set " + EnvAPIKey + ")")

type Config struct {
	Maps     MapsConfig     `yaml:"maps" json:"maps"`
	Server   ServerConfig   `yaml:"server" json:"server"`
	Log      LogConfig      `yaml:"log" json:"log"`
	Tracing  TracingConfig  `yaml:"tracing" json:"tracing"`
	Defaults DefaultsConfig `yaml:"defaults" json:"defaults"`
}

type MapsConfig struct {
	APIKey  string `yaml:"api_key" json:"api_key"`
	BaseURL string `yaml:"base_url" json:"base_url"`
	// Timeout of zero leaves lookups unbounded.
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
	MapID   string        `yaml:"map_id" json:"map_id"`
	// ScriptURL is the map widget script the order page loads, if any.
	ScriptURL string `yaml:"script_url" json:"script_url"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr" json:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" json:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
	SessionIdle     time.Duration `yaml:"session_idle" json:"session_idle"`
	SweepInterval   time.Duration `yaml:"sweep_interval" json:"sweep_interval"`
	SecureCookie    bool          `yaml:"secure_cookie" json:"secure_cookie"`
}

type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

type TracingConfig struct {
	JaegerEndpoint string  `yaml:"jaeger_endpoint" json:"jaeger_endpoint"`
	ServiceName    string  `yaml:"service_name" json:"service_name"`
	SampleRatio    float64 `yaml:"sample_ratio" json:"sample_ratio"`
}

// DefaultsConfig is where both markers and the display start.
type DefaultsConfig struct {
	Latitude  float64 `yaml:"latitude" json:"latitude"`
	Longitude float64 `yaml:"longitude" json:"longitude"`
	Address   string  `yaml:"address" json:"address"`
}

// Location returns the configured starting location.
func (d DefaultsConfig) Location() geo.ResolvedLocation {
	return geo.ResolvedLocation{Latitude: d.Latitude, Longitude: d.Longitude, Address: d.Address}
}

// Default returns settings that need only an API key.
func Default() Config {
	return Config{
		Maps: MapsConfig{
			BaseURL: geocode.DefaultBaseURL,
			MapID:   mapview.DefaultMapID,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			SessionIdle:     30 * time.Minute,
			SweepInterval:   time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: TracingConfig{
			ServiceName: "delivery-order",
			SampleRatio: 1,
		},
		Defaults: DefaultsConfig{
			Latitude:  geo.DefaultLocation.Latitude,
			Longitude: geo.DefaultLocation.Longitude,
			Address:   geo.DefaultLocation.Address,
		},
	}
}

// Load builds a Config from defaults, then path (if non-empty), then the .env
// files given (".env" when none), then the environment. A missing .env file is
// not an error; a missing config file is.
func Load(path string, envFiles ...string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := parse(data, path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config: load %s: %w", file, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// parse tries JSON first and falls back to YAML, so JSON files that use
// duration strings ("5s") still load through the YAML decoder.
func parse(data []byte, source string, cfg *Config) error {
	if len(strings.TrimSpace(string(data))) == 0 {
		return fmt.Errorf("config: file %s is empty", source)
	}
	next := *cfg
	if err := json.Unmarshal(data, &next); err == nil {
		*cfg = next
		return nil
	}
	next = *cfg
	if err := yaml.Unmarshal(data, &next); err != nil {
		return fmt.Errorf("config: parse %s: %w", source, err)
	}
	*cfg = next
	return nil
}

func applyEnv(cfg *Config) error {
	cfg.Maps.APIKey = getEnv(EnvAPIKey, cfg.Maps.APIKey)
	cfg.Maps.BaseURL = getEnv(EnvGeocodeURL, cfg.Maps.BaseURL)
	cfg.Server.Addr = getEnv(EnvAddr, cfg.Server.Addr)
	cfg.Tracing.JaegerEndpoint = getEnv(EnvJaegerEndpoint, cfg.Tracing.JaegerEndpoint)
	cfg.Log.Level = getEnv(EnvLogLevel, cfg.Log.Level)
	cfg.Log.Format = getEnv(EnvLogFormat, cfg.Log.Format)

	if raw := os.Getenv(EnvGeocodeTimeout); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvGeocodeTimeout, err)
		}
		cfg.Maps.Timeout = d
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// Validate reports the first setting that prevents startup.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Maps.APIKey) == "" {
		return ErrMissingAPIKey
	}
	if c.Server.Addr == "" {
		return errors.New("config: server address is required")
	}
	if c.Maps.Timeout < 0 {
		return errors.New("config: maps timeout must not be negative")
	}
	if c.Defaults.Latitude < -90 || c.Defaults.Latitude > 90 {
		return fmt.Errorf("config: default latitude %s out of range", strconv.FormatFloat(c.Defaults.Latitude, 'f', -1, 64))
	}
	if c.Defaults.Longitude < -180 || c.Defaults.Longitude > 180 {
		return fmt.Errorf("config: default longitude %s out of range", strconv.FormatFloat(c.Defaults.Longitude, 'f', -1, 64))
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return errors.New("config: tracing sample ratio must be within [0, 1]")
	}
	return nil
}
