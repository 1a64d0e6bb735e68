package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/AngelCh415/meta-dashboard-go/internal/metrics"
)

const (
	SourceGraph   = "graph"
	SourceWebhook = "webhook"
)

type Config struct {
	Port        string
	HTTPTimeout time.Duration
	LogLevel    slog.Level

	Source        string
	GraphURL      string
	APIVersion    string
	PageLimit     int
	MaxPages      int
	MaxRetries    int
	WebhookURL    string
	WebhookSecret string

	DefaultTimezone string
	CORSOrigins     []string

	Estimates metrics.Estimates
}

// fileConfig is the optional YAML overlay named by CONFIG_FILE.
type fileConfig struct {
	Graph struct {
		URL       string `yaml:"url"`
		Version   string `yaml:"version"`
		PageLimit int    `yaml:"page_limit"`
		MaxPages  int    `yaml:"max_pages"`
	} `yaml:"graph"`
	Webhook struct {
		URL string `yaml:"url"`
	} `yaml:"webhook"`
	Estimates *metrics.Estimates `yaml:"estimates"`
}

func defaults() Config {
	return Config{
		Port:            "8080",
		HTTPTimeout:     15 * time.Second,
		LogLevel:        slog.LevelInfo,
		Source:          SourceGraph,
		GraphURL:        "https://graph.facebook.com",
		APIVersion:      "v21.0",
		PageLimit:       500,
		MaxPages:        50,
		MaxRetries:      3,
		DefaultTimezone: "America/Sao_Paulo",
		CORSOrigins:     []string{"*"},
		Estimates:       metrics.DefaultEstimates,
	}
}

// Load reads .env when present, then CONFIG_FILE, then the environment.
// Environment variables win.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}
	applyEnv(&cfg)
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromEnv builds the config from defaults and environment variables only.
func FromEnv() Config {
	cfg := defaults()
	applyEnv(&cfg)
	return cfg
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("config file %s: %w", path, err)
	}
	if fc.Graph.URL != "" {
		cfg.GraphURL = fc.Graph.URL
	}
	if fc.Graph.Version != "" {
		cfg.APIVersion = fc.Graph.Version
	}
	if fc.Graph.PageLimit > 0 {
		cfg.PageLimit = fc.Graph.PageLimit
	}
	if fc.Graph.MaxPages > 0 {
		cfg.MaxPages = fc.Graph.MaxPages
	}
	if fc.Webhook.URL != "" {
		cfg.WebhookURL = fc.Webhook.URL
	}
	if fc.Estimates != nil {
		cfg.Estimates = *fc.Estimates
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("HTTP_TIMEOUT_SECONDS"); v != "" {
		if d, err := time.ParseDuration(v + "s"); err == nil {
			cfg.HTTPTimeout = d
		}
	}
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		cfg.LogLevel = slog.LevelDebug
	case "warn":
		cfg.LogLevel = slog.LevelWarn
	case "error":
		cfg.LogLevel = slog.LevelError
	}
	cfg.Port = envOr("PORT", cfg.Port)
	cfg.Source = strings.ToLower(envOr("METRICS_SOURCE", cfg.Source))
	cfg.GraphURL = envOr("META_GRAPH_URL", cfg.GraphURL)
	cfg.APIVersion = envOr("META_API_VERSION", cfg.APIVersion)
	cfg.PageLimit = envInt("META_PAGE_LIMIT", cfg.PageLimit)
	cfg.MaxPages = envInt("META_MAX_PAGES", cfg.MaxPages)
	cfg.MaxRetries = envInt("FETCH_MAX_RETRIES", cfg.MaxRetries)
	cfg.WebhookURL = envOr("WEBHOOK_URL", cfg.WebhookURL)
	cfg.WebhookSecret = envOr("WEBHOOK_SECRET", cfg.WebhookSecret)
	cfg.DefaultTimezone = envOr("DEFAULT_TIMEZONE", cfg.DefaultTimezone)
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.CORSOrigins = splitCSV(v)
	}
}

func (c Config) validate() error {
	switch c.Source {
	case SourceGraph:
	case SourceWebhook:
		if c.WebhookURL == "" {
			return fmt.Errorf("config: METRICS_SOURCE=webhook needs WEBHOOK_URL")
		}
	default:
		return fmt.Errorf("config: unknown METRICS_SOURCE %q", c.Source)
	}
	return nil
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envInt(k string, def int) int {
	n, err := strconv.Atoi(os.Getenv(k))
	if err != nil {
		return def
	}
	return n
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
