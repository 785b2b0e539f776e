package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	defaultCallbackPort  = 8089
	defaultAfterDays     = 7
	defaultCoachModel    = "gemini-2.5-pro"
	defaultCoachTimeout  = 60 * time.Second
	defaultLogLevel      = "info"
	defaultLogFormat     = "console"
	defaultLogFilename   = "runanalyzer.log"
	defaultLogMaxSizeMB  = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAgeDays = 28

	// Environment variable prefix
	envPrefix = "RUNANALYZER"

	placeholderClientID     = "YOUR_CLIENT_ID"
	placeholderClientSecret = "YOUR_CLIENT_SECRET"
)

// Config represents the application configuration
type Config struct {
	Strava   StravaConfig  `mapstructure:"strava" yaml:"strava"`
	Fetch    FetchConfig   `mapstructure:"fetch" yaml:"fetch"`
	Coach    CoachConfig   `mapstructure:"coach" yaml:"coach"`
	Log      LogConfig     `mapstructure:"log" yaml:"log"`
	Metrics  MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
	DataPath string        `mapstructure:"data_path" yaml:"data_path"` // SQLite file, empty for the default
}

// StravaConfig holds Strava API credentials
type StravaConfig struct {
	ClientID     string `mapstructure:"client_id" yaml:"client_id"`
	ClientSecret string `mapstructure:"client_secret" yaml:"client_secret"`
	CallbackPort int    `mapstructure:"callback_port" yaml:"callback_port"`
}

// FetchConfig controls which runs are listed
type FetchConfig struct {
	AfterDays  int  `mapstructure:"after_days" yaml:"after_days"`
	LatestOnly bool `mapstructure:"latest_only" yaml:"latest_only"`
}

// CoachConfig configures the AI coach. An empty APIKey disables it.
type CoachConfig struct {
	APIKey  string        `mapstructure:"api_key" yaml:"api_key"`
	Model   string        `mapstructure:"model" yaml:"model"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// LogConfig configures the zap logger and its rotating file
type LogConfig struct {
	Level              string `mapstructure:"level" yaml:"level"`
	Format             string `mapstructure:"format" yaml:"format"` // console or json
	FileLoggingEnabled bool   `mapstructure:"file_logging_enabled" yaml:"file_logging_enabled"`
	Directory          string `mapstructure:"directory" yaml:"directory"`
	Filename           string `mapstructure:"filename" yaml:"filename"`
	MaxSize            int    `mapstructure:"max_size" yaml:"max_size"`       // Max size in MB
	MaxBackups         int    `mapstructure:"max_backups" yaml:"max_backups"` // Max backup files
	MaxAge             int    `mapstructure:"max_age" yaml:"max_age"`         // Max days to retain
	Compress           bool   `mapstructure:"compress" yaml:"compress"`
}

// MetricsConfig controls the Prometheus endpoint. Empty Addr disables it.
type MetricsConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	dir, _ := GetConfigDir()
	return Config{
		Strava: StravaConfig{CallbackPort: defaultCallbackPort},
		Fetch:  FetchConfig{AfterDays: defaultAfterDays},
		Coach: CoachConfig{
			Model:   defaultCoachModel,
			Timeout: defaultCoachTimeout,
		},
		Log: LogConfig{
			Level:      defaultLogLevel,
			Format:     defaultLogFormat,
			Directory:  filepath.Join(dir, "logs"),
			Filename:   defaultLogFilename,
			MaxSize:    defaultLogMaxSizeMB,
			MaxBackups: defaultLogMaxBackups,
			MaxAge:     defaultLogMaxAgeDays,
		},
	}
}

// Load reads the configuration from path (or ~/.runanalyzer/config.yaml),
// layering environment variables on top. RUNANALYZER_STRAVA_CLIENT_ID style
// names are honoured, as are the bare CLIENT_ID, CLIENT_SECRET and
// GOOGLE_API_KEY variables. A missing file is only an error when the
// environment doesn't provide Strava credentials.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := getConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	v := viper.New()
	configureViper(v, path)
	setDefaults(v)

	if err := readConfigFile(v); err != nil {
		if !errors.Is(err, ErrNoConfig) || !credentialsFromEnv(v) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnmarshallingConfig, err)
	}
	return &cfg, nil
}

// configureViper sets up viper for the config file and environment variables
func configureViper(v *viper.Viper, path string) {
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	// Names used by the original .env setup
	_ = v.BindEnv("strava.client_id", envPrefix+"_STRAVA_CLIENT_ID", "CLIENT_ID")
	_ = v.BindEnv("strava.client_secret", envPrefix+"_STRAVA_CLIENT_SECRET", "CLIENT_SECRET")
	_ = v.BindEnv("coach.api_key", envPrefix+"_COACH_API_KEY", "GOOGLE_API_KEY")
}

// setDefaults applies default configuration values
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("strava.client_id", "")
	v.SetDefault("strava.client_secret", "")
	v.SetDefault("strava.callback_port", d.Strava.CallbackPort)
	v.SetDefault("fetch.after_days", d.Fetch.AfterDays)
	v.SetDefault("fetch.latest_only", d.Fetch.LatestOnly)
	v.SetDefault("coach.api_key", "")
	v.SetDefault("coach.model", d.Coach.Model)
	v.SetDefault("coach.timeout", d.Coach.Timeout)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.file_logging_enabled", d.Log.FileLoggingEnabled)
	v.SetDefault("log.directory", d.Log.Directory)
	v.SetDefault("log.filename", d.Log.Filename)
	v.SetDefault("log.max_size", d.Log.MaxSize)
	v.SetDefault("log.max_backups", d.Log.MaxBackups)
	v.SetDefault("log.max_age", d.Log.MaxAge)
	v.SetDefault("log.compress", d.Log.Compress)
	v.SetDefault("metrics.addr", "")
	v.SetDefault("data_path", "")
}

// readConfigFile reads the file set on v. An absent file maps to ErrNoConfig.
func readConfigFile(v *viper.Viper) error {
	err := v.ReadInConfig()
	if err == nil {
		return nil
	}
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
		return ErrNoConfig
	}
	return fmt.Errorf("%w: %w", ErrReadingConfigFile, err)
}

func credentialsFromEnv(v *viper.Viper) bool {
	return v.GetString("strava.client_id") != "" && v.GetString("strava.client_secret") != ""
}

// Save writes the configuration as YAML to path
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// CreateExample writes an example config file if none exists and returns its path
func CreateExample(path string) (string, error) {
	if path == "" {
		p, err := getConfigPath()
		if err != nil {
			return "", err
		}
		path = p
	}

	if _, err := os.Stat(path); err == nil {
		return path, nil // Config exists, don't overwrite
	}

	example := DefaultConfig()
	example.Strava.ClientID = placeholderClientID
	example.Strava.ClientSecret = placeholderClientSecret

	return path, Save(&example, path)
}

// Validate checks the Strava credentials and the general settings
func (c *Config) Validate() error {
	if err := c.ValidateStrava(); err != nil {
		return err
	}
	return c.ValidateGeneral()
}

// ValidateStrava checks the settings needed to talk to Strava
func (c *Config) ValidateStrava() error {
	if c.Strava.ClientID == "" || c.Strava.ClientID == placeholderClientID {
		return ErrMissingClientID
	}
	if c.Strava.ClientSecret == "" || c.Strava.ClientSecret == placeholderClientSecret {
		return ErrMissingClientSecret
	}
	if c.Strava.CallbackPort < 1 || c.Strava.CallbackPort > 65535 {
		return fmt.Errorf("%w, got %d", ErrInvalidCallbackPort, c.Strava.CallbackPort)
	}
	return nil
}

// ValidateGeneral checks settings that apply with or without Strava
func (c *Config) ValidateGeneral() error {
	if c.Fetch.AfterDays <= 0 {
		return fmt.Errorf("%w, got %d", ErrInvalidAfterDays, c.Fetch.AfterDays)
	}
	if c.Coach.Timeout <= 0 {
		return fmt.Errorf("%w, got %v", ErrInvalidCoachTimeout, c.Coach.Timeout)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w, got %q", ErrInvalidLogLevel, c.Log.Level)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("%w, got %q", ErrInvalidLogFormat, c.Log.Format)
	}
	return nil
}

// CoachEnabled reports whether an API key is configured
func (c *Config) CoachEnabled() bool {
	return c.Coach.APIKey != ""
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// GetConfigDir returns the path to the config directory
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".runanalyzer"), nil
}
