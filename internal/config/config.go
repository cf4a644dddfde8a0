// Package config loads process configuration from the environment, an
// optional .env file and an optional YAML property-name mapping.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/vthunder/taskdesk/internal/tasks"
)

// Config holds application configuration
type Config struct {
	Notion NotionConfig `ignored:"true"`
	Groq   GroqConfig   `ignored:"true"`

	CurrentUser     string        `envconfig:"TASKDESK_CURRENT_USER" default:"taskdesk"`
	DefaultAssignee string        `envconfig:"TASKDESK_DEFAULT_ASSIGNEE"` // for tasks created from email
	HTTPTimeout     time.Duration `envconfig:"TASKDESK_HTTP_TIMEOUT" default:"30s"`
	UserCacheSize   int           `envconfig:"TASKDESK_USER_CACHE_SIZE" default:"256"`
	UserCacheTTL    time.Duration `envconfig:"TASKDESK_USER_CACHE_TTL" default:"10m"`
	SchemaFile      string        `envconfig:"TASKDESK_SCHEMA_FILE"`
	MetricsAddr     string        `envconfig:"TASKDESK_METRICS_ADDR"`
	Debug           bool          `envconfig:"DEBUG"`

	// Schema is read from SchemaFile, or the defaults when unset.
	Schema tasks.Schema `ignored:"true"`
}

// NotionConfig holds the task store settings
type NotionConfig struct {
	APIKey     string `envconfig:"NOTION_API_KEY"`
	DatabaseID string `envconfig:"NOTION_DATABASE_ID"`
	BaseURL    string `envconfig:"NOTION_BASE_URL"`
}

// GroqConfig holds the completion endpoint settings
type GroqConfig struct {
	APIKey  string `envconfig:"GROQ_API_KEY"`
	BaseURL string `envconfig:"GROQ_BASE_URL" default:"https://api.groq.com/openai/v1"`
	Model   string `envconfig:"GROQ_MODEL" default:"llama-3.3-70b-versatile"`
}

// Load reads .env files (missing files are fine), decodes the environment
// and loads the schema file. It does not validate; call Validate.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, p := range envFiles {
		if _, err := os.Stat(p); err == nil {
			if err := godotenv.Load(p); err != nil {
				return nil, fmt.Errorf("load %s: %w", p, err)
			}
		}
	}

	// sections are decoded separately so their keys carry no prefix
	var cfg Config
	for _, spec := range []any{&cfg, &cfg.Notion, &cfg.Groq} {
		if err := envconfig.Process("", spec); err != nil {
			return nil, fmt.Errorf("decode environment: %w", err)
		}
	}

	cfg.Schema = tasks.DefaultSchema()
	if cfg.SchemaFile != "" {
		s, err := LoadSchema(cfg.SchemaFile)
		if err != nil {
			return nil, err
		}
		cfg.Schema = s
	}
	return &cfg, nil
}

// LoadSchema reads a YAML property-name mapping. Fields left out keep their
// default names.
func LoadSchema(path string) (tasks.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return tasks.Schema{}, fmt.Errorf("read schema file: %w", err)
	}
	var s tasks.Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return tasks.Schema{}, fmt.Errorf("parse schema file %s: %w", path, err)
	}
	return s.WithDefaults(), nil
}

// Validate checks the values the task tools cannot run without.
func (c *Config) Validate() error {
	var missing []string
	if c.Notion.APIKey == "" {
		missing = append(missing, "NOTION_API_KEY")
	}
	if c.Notion.DatabaseID == "" {
		missing = append(missing, "NOTION_DATABASE_ID")
	}
	var errs []error
	if len(missing) > 0 {
		errs = append(errs, fmt.Errorf("missing required settings: %s", strings.Join(missing, ", ")))
	}
	if c.HTTPTimeout <= 0 {
		errs = append(errs, fmt.Errorf("TASKDESK_HTTP_TIMEOUT must be positive, got %s", c.HTTPTimeout))
	}
	if c.UserCacheSize <= 0 {
		errs = append(errs, fmt.Errorf("TASKDESK_USER_CACHE_SIZE must be positive, got %d", c.UserCacheSize))
	}
	return errors.Join(errs...)
}

// EmailEnabled reports whether the extraction tools can be offered.
func (c *Config) EmailEnabled() bool { return c.Groq.APIKey != "" }
