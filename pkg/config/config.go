package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	// DefaultLogLevel is the default logging level.
	DefaultLogLevel = "info"

	// DefaultOutputDir is the default directory for snapshot files.
	DefaultOutputDir = "./data"

	// DefaultRootFolderName is the default Drive archive root folder.
	DefaultRootFolderName = "energyDataHub"

	// DefaultMaxAttempts is the default upload retry budget.
	DefaultMaxAttempts = 3

	// DefaultRequestsPerSecond is the default Drive API request pacing.
	DefaultRequestsPerSecond = 5

	// DefaultFetchIntervalMinutes is the default scheduled fetch interval.
	DefaultFetchIntervalMinutes = 60

	// envPrefix namespaces automatic environment overrides, e.g.
	// ENERHUB_GLOBAL_LOG_LEVEL overrides global.log_level.
	envPrefix = "ENERHUB"
)

// Environment variables recognized for Drive settings, kept compatible with
// the pre-existing deployment scripts. The inline JSON takes precedence over
// the path when both are set.
const (
	EnvCredentialsPath = "GDRIVE_CREDENTIALS_PATH"
	EnvCredentialsJSON = "GDRIVE_SERVICE_ACCOUNT_JSON"
	EnvRootFolderID    = "GDRIVE_ROOT_FOLDER_ID"
)

// ErrNoCredentials indicates that neither a credential file path nor inline
// credential JSON was supplied.
var ErrNoCredentials = errors.New("no Drive credential source configured: set drive.credentials_path, drive.credentials_json, or the GDRIVE_* environment variables")

// Config is the root configuration for enerhub.
type Config struct {
	Global GlobalConfig `yaml:"global" mapstructure:"global"`
	Fetch  FetchConfig  `yaml:"fetch" mapstructure:"fetch"`
	Drive  DriveConfig  `yaml:"drive" mapstructure:"drive"`
}

// GlobalConfig contains global application settings.
type GlobalConfig struct {
	LogLevel string `yaml:"log_level" mapstructure:"log_level"`
}

// FetchConfig contains data collection settings.
type FetchConfig struct {
	OutputDir         string  `yaml:"output_dir" mapstructure:"output_dir"`
	Latitude          float64 `yaml:"latitude" mapstructure:"latitude"`
	Longitude         float64 `yaml:"longitude" mapstructure:"longitude"`
	IntervalMinutes   int     `yaml:"interval_minutes" mapstructure:"interval_minutes"`
	ArchiveAfterFetch bool    `yaml:"archive_after_fetch" mapstructure:"archive_after_fetch"`
}

// DriveConfig contains Google Drive archival settings. Exactly one credential
// source is required for archival; when both are set the inline JSON wins.
type DriveConfig struct {
	CredentialsPath   string `yaml:"credentials_path" mapstructure:"credentials_path"`
	CredentialsJSON   string `yaml:"credentials_json" mapstructure:"credentials_json"`
	RootFolderID      string `yaml:"root_folder_id" mapstructure:"root_folder_id"`
	RootFolderName    string `yaml:"root_folder_name" mapstructure:"root_folder_name"`
	MaxAttempts       int    `yaml:"max_attempts" mapstructure:"max_attempts"`
	RequestsPerSecond int    `yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// HasCredentials reports whether any Drive credential source is configured.
func (d *DriveConfig) HasCredentials() bool {
	return d.CredentialsJSON != "" || d.CredentialsPath != ""
}

// Load reads and merges the given configuration files in order (later files
// win), applies ENERHUB_* environment overrides, then the GDRIVE_* legacy
// overrides, then defaults. Zero paths is valid: configuration may come
// entirely from the environment.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Register every key so AutomaticEnv picks up overrides even when no
	// config file mentions them.
	bindDefaults(v)

	for _, path := range paths {
		v.SetConfigFile(path)

		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.applyEnvOverrides()
	cfg.applyDefaults()

	return &cfg, nil
}

func bindDefaults(v *viper.Viper) {
	v.SetDefault("global.log_level", "")
	v.SetDefault("fetch.output_dir", "")
	v.SetDefault("fetch.latitude", 0.0)
	v.SetDefault("fetch.longitude", 0.0)
	v.SetDefault("fetch.interval_minutes", 0)
	v.SetDefault("fetch.archive_after_fetch", false)
	v.SetDefault("drive.credentials_path", "")
	v.SetDefault("drive.credentials_json", "")
	v.SetDefault("drive.root_folder_id", "")
	v.SetDefault("drive.root_folder_name", "")
	v.SetDefault("drive.max_attempts", 0)
	v.SetDefault("drive.requests_per_second", 0)
}

// applyEnvOverrides applies the legacy GDRIVE_* variables. They win over
// file and ENERHUB_* values so existing deployments keep working unchanged.
func (c *Config) applyEnvOverrides() {
	if path := os.Getenv(EnvCredentialsPath); path != "" {
		c.Drive.CredentialsPath = path
	}

	if inline := os.Getenv(EnvCredentialsJSON); inline != "" {
		c.Drive.CredentialsJSON = inline
	}

	if id := os.Getenv(EnvRootFolderID); id != "" {
		c.Drive.RootFolderID = id
	}
}

// applyDefaults sets default values for unspecified configuration options.
func (c *Config) applyDefaults() {
	if c.Global.LogLevel == "" {
		c.Global.LogLevel = DefaultLogLevel
	}

	if c.Fetch.OutputDir == "" {
		c.Fetch.OutputDir = DefaultOutputDir
	}

	if c.Fetch.IntervalMinutes <= 0 {
		c.Fetch.IntervalMinutes = DefaultFetchIntervalMinutes
	}

	if c.Drive.RootFolderName == "" {
		c.Drive.RootFolderName = DefaultRootFolderName
	}

	if c.Drive.MaxAttempts <= 0 {
		c.Drive.MaxAttempts = DefaultMaxAttempts
	}

	if c.Drive.RequestsPerSecond <= 0 {
		c.Drive.RequestsPerSecond = DefaultRequestsPerSecond
	}
}

// Validate checks the configuration for errors. requireDrive must be true
// for commands that touch the remote store: a missing credential source is
// then a startup error, raised before any upload is attempted.
func (c *Config) Validate(requireDrive bool) error {
	if requireDrive && !c.Drive.HasCredentials() {
		return ErrNoCredentials
	}

	if c.Fetch.Latitude < -90 || c.Fetch.Latitude > 90 {
		return fmt.Errorf("fetch.latitude %v out of range", c.Fetch.Latitude)
	}

	if c.Fetch.Longitude < -180 || c.Fetch.Longitude > 180 {
		return fmt.Errorf("fetch.longitude %v out of range", c.Fetch.Longitude)
	}

	return nil
}
