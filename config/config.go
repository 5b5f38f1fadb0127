package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/apex/log"
	"gopkg.in/yaml.v3"
)

const (
	configPathEnv     = "PLATEFINDER_CONFIG"
	apiBaseURLEnv     = "API_BASE_URL"
	databaseURLEnv    = "DATABASE_URL"
	portEnv           = "PORT"
	allowedOriginsEnv = "ALLOWED_ORIGINS"
	classifierURLEnv  = "CLASSIFIER_URL"
	geocodingKeyEnv   = "GOOGLE_MAPS_API_KEY"
	geocodingURLEnv   = "GEOCODING_URL"
	locationEnv       = "LOCATION_PROVIDER"
	locationLatEnv    = "LOCATION_LAT"
	locationLngEnv    = "LOCATION_LNG"
	ipLocatorURLEnv   = "IP_LOCATOR_URL"
	logLevelEnv       = "LOG_LEVEL"
)

// Location provider names.
const (
	LocationStatic = "static"
	LocationIP     = "ip"
	LocationNone   = "none"
)

// Config holds settings for the client and the directory server.
type Config struct {
	API        APIConfig        `yaml:"api"`
	Location   LocationConfig   `yaml:"location"`
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Geocoding  GeocodingConfig  `yaml:"geocoding"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// APIConfig points the client at the directory.
type APIConfig struct {
	BaseURL string `yaml:"baseUrl"`
}

// LocationConfig selects the geolocation provider used for nearby search.
type LocationConfig struct {
	Provider     string   `yaml:"provider"`
	Latitude     *float64 `yaml:"latitude"`
	Longitude    *float64 `yaml:"longitude"`
	IPLocatorURL string   `yaml:"ipLocatorUrl"`
}

// ServerConfig configures the directory HTTP server.
type ServerConfig struct {
	Port           string   `yaml:"port"`
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

// DatabaseConfig holds the store URL: postgres:// or sqlite:/file path.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// ClassifierConfig points at the image label prediction service.
type ClassifierConfig struct {
	URL string `yaml:"url"`
}

// GeocodingConfig configures the coordinate resolution worker.
// The worker stays off without an API key; an empty URL uses Google's endpoint.
type GeocodingConfig struct {
	APIKey string `yaml:"apiKey"`
	URL    string `yaml:"url"`
}

// LoggingConfig sets the log level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads the YAML file named by $PLATEFINDER_CONFIG (if any) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Warnf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else if fileCfg, err := Parse(raw); err != nil {
			log.Warnf("config: cannot parse %s: %v (falling back to defaults)", path, err)
		} else {
			cfg = mergeConfig(cfg, fileCfg)
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

// Parse decodes a YAML document without applying defaults.
func Parse(raw []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(apiBaseURLEnv); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv(databaseURLEnv); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv(portEnv); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv(allowedOriginsEnv); v != "" {
		c.Server.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv(classifierURLEnv); v != "" {
		c.Classifier.URL = v
	}
	if v := os.Getenv(geocodingKeyEnv); v != "" {
		c.Geocoding.APIKey = v
	}
	if v := os.Getenv(geocodingURLEnv); v != "" {
		c.Geocoding.URL = v
	}
	if v := os.Getenv(locationEnv); v != "" {
		c.Location.Provider = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := envFloat(locationLatEnv); ok {
		c.Location.Latitude = &v
	}
	if v, ok := envFloat(locationLngEnv); ok {
		c.Location.Longitude = &v
	}
	if v := os.Getenv(ipLocatorURLEnv); v != "" {
		c.Location.IPLocatorURL = v
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.API.BaseURL != "" {
		base.API.BaseURL = override.API.BaseURL
	}

	if override.Location.Provider != "" {
		base.Location.Provider = strings.ToLower(override.Location.Provider)
	}
	if override.Location.Latitude != nil {
		base.Location.Latitude = override.Location.Latitude
	}
	if override.Location.Longitude != nil {
		base.Location.Longitude = override.Location.Longitude
	}
	if override.Location.IPLocatorURL != "" {
		base.Location.IPLocatorURL = override.Location.IPLocatorURL
	}

	if override.Server.Port != "" {
		base.Server.Port = override.Server.Port
	}
	if len(override.Server.AllowedOrigins) > 0 {
		base.Server.AllowedOrigins = override.Server.AllowedOrigins
	}

	if override.Database.URL != "" {
		base.Database = override.Database
	}
	if override.Classifier.URL != "" {
		base.Classifier = override.Classifier
	}
	if override.Geocoding.APIKey != "" {
		base.Geocoding.APIKey = override.Geocoding.APIKey
	}
	if override.Geocoding.URL != "" {
		base.Geocoding.URL = override.Geocoding.URL
	}
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	return base
}

func defaultConfig() Config {
	return Config{
		API:      APIConfig{BaseURL: "http://localhost:8000/api"},
		Location: LocationConfig{Provider: LocationIP, IPLocatorURL: "http://ip-api.com/json/"},
		Server: ServerConfig{
			Port:           "8000",
			AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Database:   DatabaseConfig{URL: "sqlite:platefinder.db"},
		Classifier: ClassifierConfig{URL: "http://localhost:8501"},
		Logging:    LoggingConfig{Level: "info"},
	}
}

func envFloat(key string) (float64, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		log.Warnf("config: ignoring %s=%q: %v", key, raw, err)
		return 0, false
	}
	return v, true
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
