package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	FileName   = "config.toml"
	EnvPrefix  = "RECIPES"
	defaultAPI = "https://www.themealdb.com/api/json/v1/1"
)

// Config holds every setting the app reads at startup.
type Config struct {
	APIURL          string   `mapstructure:"api_url" toml:"api_url"`
	DBPath          string   `mapstructure:"db_path" toml:"db_path"`
	DebounceMS      int      `mapstructure:"debounce_ms" toml:"debounce_ms"`
	HTTPTimeoutS    int      `mapstructure:"http_timeout_s" toml:"http_timeout_s"`
	Suggestions     []string `mapstructure:"suggestions" toml:"suggestions"`
	SuggestionLimit int      `mapstructure:"suggestion_limit" toml:"suggestion_limit"`
	ExportDir       string   `mapstructure:"export_dir" toml:"export_dir"`
	LogFile         string   `mapstructure:"log_file" toml:"log_file"`
}

// Dir returns the directory holding the config file, database and log.
func Dir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		// Fallback to home directory
		configDir, err = os.UserHomeDir()
		if err != nil {
			configDir = "."
		}
		configDir = filepath.Join(configDir, ".config")
	}
	return filepath.Join(configDir, "recipes")
}

func DefaultPath() string {
	return filepath.Join(Dir(), FileName)
}

func Default() Config {
	dir := Dir()

	exportDir := dir
	if home, err := os.UserHomeDir(); err == nil {
		exportDir = filepath.Join(home, "Downloads")
	}

	return Config{
		APIURL:          defaultAPI,
		DBPath:          filepath.Join(dir, "recipes.db"),
		DebounceMS:      500,
		HTTPTimeoutS:    10,
		Suggestions:     []string{"vegetable", "salad", "pasta"},
		SuggestionLimit: 3,
		ExportDir:       exportDir,
		LogFile:         filepath.Join(dir, "recipes.log"),
	}
}

func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("api_url", cfg.APIURL)
	v.SetDefault("db_path", cfg.DBPath)
	v.SetDefault("debounce_ms", cfg.DebounceMS)
	v.SetDefault("http_timeout_s", cfg.HTTPTimeoutS)
	v.SetDefault("suggestions", cfg.Suggestions)
	v.SetDefault("suggestion_limit", cfg.SuggestionLimit)
	v.SetDefault("export_dir", cfg.ExportDir)
	v.SetDefault("log_file", cfg.LogFile)
}

// Load resolves the configuration from defaults, the TOML file at path (or
// the default location when path is empty), RECIPES_* environment variables
// and any flags already bound to v. A missing file is not an error.
func Load(v *viper.Viper, path string) (Config, error) {
	if v == nil {
		v = viper.New()
	}
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetConfigType("toml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
		v.AddConfigPath(Dir())
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var issues []string

	if u, err := url.Parse(c.APIURL); c.APIURL == "" || err != nil || u.Scheme == "" || u.Host == "" {
		issues = append(issues, fmt.Sprintf("api_url: %q is not an absolute URL", c.APIURL))
	}
	if c.DBPath == "" {
		issues = append(issues, "db_path: must not be empty")
	}
	if c.DebounceMS <= 0 {
		issues = append(issues, fmt.Sprintf("debounce_ms: %d must be positive", c.DebounceMS))
	}
	if c.HTTPTimeoutS <= 0 {
		issues = append(issues, fmt.Sprintf("http_timeout_s: %d must be positive", c.HTTPTimeoutS))
	}
	if c.SuggestionLimit <= 0 {
		issues = append(issues, fmt.Sprintf("suggestion_limit: %d must be positive", c.SuggestionLimit))
	}

	if len(issues) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(issues, "; "))
	}
	return nil
}

// WriteDefault writes cfg as TOML to path, creating parent directories.
// An existing file is left untouched unless force is set.
func WriteDefault(path string, cfg Config, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists at %s", path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	b, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, b, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Encode renders cfg as TOML.
func Encode(cfg Config) (string, error) {
	b, err := toml.Marshal(cfg)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
