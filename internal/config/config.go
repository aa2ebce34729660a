package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Digital-Shane/libby/internal/media"
	"github.com/spf13/cast"
)

const (
	appDir     = ".libby"
	envPrefix  = "LIBBY_"
	maskedText = "********"
)

// ProviderConfig holds the connection settings for one library manager.
type ProviderConfig struct {
	URL            string `json:"url"`
	APIKey         string `json:"api_key"`
	Quality        string `json:"quality,omitempty"`
	URLBase        string `json:"url_base,omitempty"`
	Username       string `json:"username,omitempty"`
	Password       string `json:"password,omitempty"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// Configured reports whether the minimum connection settings are present.
func (p ProviderConfig) Configured() bool {
	return strings.TrimSpace(p.URL) != "" && strings.TrimSpace(p.APIKey) != ""
}

// BaseURL joins URL and URLBase without doubled slashes.
func (p ProviderConfig) BaseURL() string {
	base := strings.TrimRight(strings.TrimSpace(p.URL), "/")
	prefix := strings.Trim(strings.TrimSpace(p.URLBase), "/")
	if prefix == "" {
		return base
	}
	return base + "/" + prefix
}

// ArtworkConfig holds the optional metadata services used for card images.
type ArtworkConfig struct {
	TMDBAPIKey   string `json:"tmdb_api_key,omitempty"`
	TMDBLanguage string `json:"tmdb_language"`
	OMDBAPIKey   string `json:"omdb_api_key,omitempty"`
	TVDBAPIKey   string `json:"tvdb_api_key,omitempty"`
	TimeoutMS    int    `json:"timeout_ms"`
	CacheHours   int    `json:"cache_hours"`
}

// ServerConfig controls the webhook listener.
type ServerConfig struct {
	Listen          string  `json:"listen"`
	SharedSecret    string  `json:"shared_secret,omitempty"`
	RateLimit       float64 `json:"rate_limit"`
	RateBurst       int     `json:"rate_burst"`
	ShutdownSeconds int     `json:"shutdown_seconds"`
	SessionTTLMins  int     `json:"session_ttl_minutes"`
}

// LoggingConfig controls the process logger and the conversation journal.
type LoggingConfig struct {
	Level            string `json:"level"`
	Format           string `json:"format"`
	File             string `json:"file,omitempty"`
	MaxSizeMB        int    `json:"max_size_mb"`
	MaxBackups       int    `json:"max_backups"`
	EnableJournal    bool   `json:"enable_journal"`
	JournalRetention int    `json:"journal_retention_days"`
}

// UIConfig controls the terminal views.
type UIConfig struct {
	Icons string `json:"icons"`
}

// Config is the full libby configuration persisted at ~/.libby/config.json.
type Config struct {
	Movies        ProviderConfig `json:"movies"`
	Shows         ProviderConfig `json:"shows"`
	Artwork       ArtworkConfig  `json:"artwork"`
	Server        ServerConfig   `json:"server"`
	Logging       LoggingConfig  `json:"logging"`
	UI            UIConfig       `json:"ui"`
	ResponsesFile string         `json:"responses_file,omitempty"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Movies: ProviderConfig{Quality: "Any", TimeoutSeconds: 10},
		Shows:  ProviderConfig{Quality: "Any", TimeoutSeconds: 10},
		Artwork: ArtworkConfig{
			TMDBLanguage: "en-US",
			TimeoutMS:    1500,
			CacheHours:   168,
		},
		Server: ServerConfig{
			Listen:          ":8085",
			RateLimit:       5,
			RateBurst:       10,
			ShutdownSeconds: 10,
			SessionTTLMins:  10,
		},
		Logging: LoggingConfig{
			Level:            "info",
			Format:           "auto",
			MaxSizeMB:        10,
			MaxBackups:       3,
			EnableJournal:    true,
			JournalRetention: 30,
		},
		UI: UIConfig{Icons: "auto"},
	}
}

// Dir returns the libby home directory.
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, appDir), nil
}

// ConfigPath returns the path to the config file
func ConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the configuration from disk and applies LIBBY_* environment overrides.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFrom reads the configuration at path, returning defaults when it does not exist.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.fillDefaults()
	return &cfg, nil
}

// fillDefaults fills in any missing fields with defaults
func (cfg *Config) fillDefaults() {
	defaults := DefaultConfig()

	for _, pair := range []struct{ got, def *ProviderConfig }{
		{&cfg.Movies, &defaults.Movies},
		{&cfg.Shows, &defaults.Shows},
	} {
		if pair.got.Quality == "" {
			pair.got.Quality = pair.def.Quality
		}
		if pair.got.TimeoutSeconds <= 0 {
			pair.got.TimeoutSeconds = pair.def.TimeoutSeconds
		}
	}

	if cfg.Artwork.TMDBLanguage == "" {
		cfg.Artwork.TMDBLanguage = defaults.Artwork.TMDBLanguage
	}
	if cfg.Artwork.TimeoutMS <= 0 {
		cfg.Artwork.TimeoutMS = defaults.Artwork.TimeoutMS
	}
	if cfg.Artwork.CacheHours <= 0 {
		cfg.Artwork.CacheHours = defaults.Artwork.CacheHours
	}

	if cfg.Server.Listen == "" {
		cfg.Server.Listen = defaults.Server.Listen
	}
	if cfg.Server.RateLimit <= 0 {
		cfg.Server.RateLimit = defaults.Server.RateLimit
	}
	if cfg.Server.RateBurst <= 0 {
		cfg.Server.RateBurst = defaults.Server.RateBurst
	}
	if cfg.Server.ShutdownSeconds <= 0 {
		cfg.Server.ShutdownSeconds = defaults.Server.ShutdownSeconds
	}
	if cfg.Server.SessionTTLMins <= 0 {
		cfg.Server.SessionTTLMins = defaults.Server.SessionTTLMins
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = defaults.Logging.Level
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = defaults.Logging.Format
	}
	if cfg.Logging.MaxSizeMB <= 0 {
		cfg.Logging.MaxSizeMB = defaults.Logging.MaxSizeMB
	}
	if cfg.Logging.MaxBackups <= 0 {
		cfg.Logging.MaxBackups = defaults.Logging.MaxBackups
	}
	if cfg.Logging.JournalRetention <= 0 {
		cfg.Logging.JournalRetention = defaults.Logging.JournalRetention
	}

	if cfg.UI.Icons == "" {
		cfg.UI.Icons = defaults.UI.Icons
	}
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides settings from LIBBY_* environment variables.
func (cfg *Config) ApplyEnv(lookup LookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(envPrefix + key); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(envPrefix + key)
		if !ok {
			return nil
		}
		n, err := cast.ToIntE(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s%s: %w", envPrefix, key, err)
		}
		*dst = n
		return nil
	}

	for _, p := range []struct {
		prefix string
		cfg    *ProviderConfig
	}{
		{"MOVIES_", &cfg.Movies},
		{"SHOWS_", &cfg.Shows},
	} {
		str(p.prefix+"URL", &p.cfg.URL)
		str(p.prefix+"API_KEY", &p.cfg.APIKey)
		str(p.prefix+"QUALITY", &p.cfg.Quality)
		str(p.prefix+"URL_BASE", &p.cfg.URLBase)
		str(p.prefix+"USERNAME", &p.cfg.Username)
		str(p.prefix+"PASSWORD", &p.cfg.Password)
		if err := num(p.prefix+"TIMEOUT_SECONDS", &p.cfg.TimeoutSeconds); err != nil {
			return err
		}
	}

	str("TMDB_API_KEY", &cfg.Artwork.TMDBAPIKey)
	str("OMDB_API_KEY", &cfg.Artwork.OMDBAPIKey)
	str("TVDB_API_KEY", &cfg.Artwork.TVDBAPIKey)
	if err := num("ARTWORK_TIMEOUT_MS", &cfg.Artwork.TimeoutMS); err != nil {
		return err
	}

	str("LISTEN", &cfg.Server.Listen)
	str("SHARED_SECRET", &cfg.Server.SharedSecret)
	if v, ok := lookup(envPrefix + "RATE_LIMIT"); ok {
		f, err := cast.ToFloat64E(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %sRATE_LIMIT: %w", envPrefix, err)
		}
		cfg.Server.RateLimit = f
	}

	str("LOG_LEVEL", &cfg.Logging.Level)
	str("LOG_FORMAT", &cfg.Logging.Format)
	str("LOG_FILE", &cfg.Logging.File)
	if v, ok := lookup(envPrefix + "JOURNAL"); ok {
		b, err := cast.ToBoolE(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %sJOURNAL: %w", envPrefix, err)
		}
		cfg.Logging.EnableJournal = b
	}

	str("RESPONSES_FILE", &cfg.ResponsesFile)
	str("ICONS", &cfg.UI.Icons)
	return nil
}

// Provider returns the connection settings for kind.
func (cfg *Config) Provider(kind media.Kind) (ProviderConfig, bool) {
	switch kind {
	case media.Movies:
		return cfg.Movies, true
	case media.Shows:
		return cfg.Shows, true
	default:
		return ProviderConfig{}, false
	}
}

// Masked returns a copy with secrets replaced, for display.
func (cfg *Config) Masked() *Config {
	out := *cfg
	mask := func(s *string) {
		if *s != "" {
			*s = maskedText
		}
	}
	mask(&out.Movies.APIKey)
	mask(&out.Movies.Password)
	mask(&out.Shows.APIKey)
	mask(&out.Shows.Password)
	mask(&out.Artwork.TMDBAPIKey)
	mask(&out.Artwork.OMDBAPIKey)
	mask(&out.Artwork.TVDBAPIKey)
	mask(&out.Server.SharedSecret)
	return &out
}

// Save writes the configuration to disk
func (cfg *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return cfg.SaveTo(path)
}

// SaveTo writes the configuration to path, creating parent directories.
func (cfg *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
