// Package config resolves settings from flags, SHELF_* environment variables,
// .env files, and an optional shelf.yaml, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"shelf/src/internal/logging"
	"shelf/src/internal/store"
)

const EnvPrefix = "SHELF"

// Config is the resolved configuration.
type Config struct {
	Catalog  Catalog
	Google   Google
	HTTP     HTTP
	Log      logging.Config
	Feedback Feedback
}

type Catalog struct {
	Path    string
	Backend string
	// Commit records every save as a git commit; Push also pushes it.
	Commit bool
	Push   bool
}

type Google struct {
	APIKey     string
	APIKeyFile string
}

type HTTP struct {
	Timeout time.Duration
	RPS     float64
	Retries int
}

type Feedback struct {
	Sound bool
}

// SetDefaults registers every key so environment overrides are seen even
// without a config file.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("catalog.path", "books.csv")
	v.SetDefault("catalog.backend", store.BackendCSV)
	v.SetDefault("catalog.commit", false)
	v.SetDefault("catalog.push", false)
	v.SetDefault("google.api_key", "")
	v.SetDefault("google.api_key_file", "googleapi.key")
	v.SetDefault("http.timeout", 10*time.Second)
	v.SetDefault("http.rps", 2.0)
	v.SetDefault("http.retries", 2)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "auto")
	v.SetDefault("log.no_color", false)
	v.SetDefault("feedback.sound", false)
}

// LoadEnv loads the given .env files into the process environment. Missing
// files are skipped; variables already set are kept.
func LoadEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env", ".env.local"}
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

// NewViper returns a viper instance with defaults and environment binding.
// When file is empty, shelf.yaml is looked up in the working directory and
// the home directory, and its absence is not an error.
func NewViper(file string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
		return v, nil
	}
	v.SetConfigName("shelf")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

// Load reads and validates the configuration held by v. An empty Google API
// key is filled from google.api_key_file when that file exists.
func Load(v *viper.Viper) (Config, error) {
	c := Config{
		Catalog: Catalog{
			Path:    v.GetString("catalog.path"),
			Backend: strings.ToLower(strings.TrimSpace(v.GetString("catalog.backend"))),
			Commit:  v.GetBool("catalog.commit"),
			Push:    v.GetBool("catalog.push"),
		},
		Google: Google{
			APIKey:     strings.TrimSpace(v.GetString("google.api_key")),
			APIKeyFile: v.GetString("google.api_key_file"),
		},
		HTTP: HTTP{
			Timeout: v.GetDuration("http.timeout"),
			RPS:     v.GetFloat64("http.rps"),
			Retries: v.GetInt("http.retries"),
		},
		Log: logging.Config{
			Level:   v.GetString("log.level"),
			Format:  v.GetString("log.format"),
			NoColor: v.GetBool("log.no_color"),
		},
		Feedback: Feedback{Sound: v.GetBool("feedback.sound")},
	}

	if c.Google.APIKey == "" && c.Google.APIKeyFile != "" {
		b, err := os.ReadFile(c.Google.APIKeyFile)
		switch {
		case err == nil:
			c.Google.APIKey = strings.TrimSpace(string(b))
		case !errors.Is(err, os.ErrNotExist):
			return Config{}, fmt.Errorf("read google api key: %w", err)
		}
	}
	return c, c.Validate()
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Catalog.Path) == "" {
		return errors.New("catalog.path must not be empty")
	}
	switch c.Catalog.Backend {
	case store.BackendCSV, store.BackendSQLite:
	default:
		return fmt.Errorf("catalog.backend: unknown backend %q", c.Catalog.Backend)
	}
	if c.Catalog.Push && !c.Catalog.Commit {
		return errors.New("catalog.push requires catalog.commit")
	}
	if c.HTTP.Timeout <= 0 {
		return fmt.Errorf("http.timeout must be positive, got %s", c.HTTP.Timeout)
	}
	if c.HTTP.RPS < 0 {
		return fmt.Errorf("http.rps must not be negative, got %v", c.HTTP.RPS)
	}
	if c.HTTP.Retries < 0 {
		return fmt.Errorf("http.retries must not be negative, got %d", c.HTTP.Retries)
	}
	return nil
}
