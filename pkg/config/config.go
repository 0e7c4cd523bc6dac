// Package config loads detector settings from a YAML file and the
// environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/nostalgicskinco/plagiarism-detector/pkg/analysis"
	"github.com/nostalgicskinco/plagiarism-detector/pkg/similarity"
	"github.com/nostalgicskinco/plagiarism-detector/pkg/tokenize"
)

// Config holds every detector setting.
type Config struct {
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Documents DocumentsConfig `yaml:"documents"`
	Storage   StorageConfig   `yaml:"storage"`
	Server    ServerConfig    `yaml:"server"`
	Recorder  RecorderConfig  `yaml:"recorder"`
	Audit     AuditConfig     `yaml:"audit"`
	Tracing   TracingConfig   `yaml:"tracing"`
	Alerts    AlertsConfig    `yaml:"alerts"`
}

// AnalysisConfig holds the comparison policy.
type AnalysisConfig struct {
	Threshold     float64 `yaml:"threshold"`
	MinWordLength int     `yaml:"min_word_length"`
}

// DocumentsConfig controls how raw documents are read.
type DocumentsConfig struct {
	Format   string `yaml:"format"` // auto, text or html
	MaxBytes int64  `yaml:"max_bytes"`
}

// StorageConfig points at an S3-compatible bucket. An empty endpoint
// disables object storage.
type StorageConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr           string  `yaml:"addr"`
	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`
}

// RecorderConfig controls where comparison reports are written.
type RecorderConfig struct {
	Dir string `yaml:"dir"`
}

// AuditConfig holds the report audit chain signing key. Empty disables
// the chain.
type AuditConfig struct {
	Secret string `yaml:"secret"`
}

// TracingConfig holds the OTLP/gRPC collector endpoint. Empty disables
// tracing.
type TracingConfig struct {
	OTLPEndpoint string `yaml:"otlp_endpoint"`
}

// AlertsConfig controls where flagged comparisons are announced.
type AlertsConfig struct {
	WebhookURL string `yaml:"webhook_url"`
}

// Default returns a config with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads a YAML config file over the defaults, then applies
// environment overrides. Keys missing from the file keep their defaults.
// An empty path yields the defaults plus environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings no comparison can run with.
func (c *Config) Validate() error {
	if t := c.Analysis.Threshold; !(t >= 0 && t <= 100) {
		return fmt.Errorf("config: analysis.threshold %.2f outside [0,100]", c.Analysis.Threshold)
	}
	if c.Analysis.MinWordLength < 1 {
		return fmt.Errorf("config: analysis.min_word_length must be at least 1")
	}
	switch c.Documents.Format {
	case "auto", "text", "html":
	default:
		return fmt.Errorf("config: documents.format %q not one of auto, text, html", c.Documents.Format)
	}
	return nil
}

// Options returns the analysis options described by c.
func (c *Config) Options() analysis.Options {
	return analysis.Options{
		Threshold:     c.Analysis.Threshold,
		MinWordLength: c.Analysis.MinWordLength,
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Analysis.Threshold == 0 {
		cfg.Analysis.Threshold = similarity.DefaultThreshold
	}
	if cfg.Analysis.MinWordLength == 0 {
		cfg.Analysis.MinWordLength = tokenize.DefaultMinLength
	}
	if cfg.Documents.Format == "" {
		cfg.Documents.Format = "auto"
	}
	if cfg.Documents.MaxBytes == 0 {
		cfg.Documents.MaxBytes = 10 << 20
	}
	if cfg.Storage.Bucket == "" {
		cfg.Storage.Bucket = "plagiarism-documents"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.RateLimitRPS == 0 {
		cfg.Server.RateLimitRPS = 20
	}
	if cfg.Server.RateLimitBurst == 0 {
		cfg.Server.RateLimitBurst = 40
	}
	if cfg.Recorder.Dir == "" {
		cfg.Recorder.Dir = "./reports"
	}
}

func applyEnv(cfg *Config) {
	if v, ok := envFloat("PLAG_THRESHOLD"); ok {
		cfg.Analysis.Threshold = v
	}
	if v, ok := envInt("PLAG_MIN_WORD_LENGTH"); ok {
		cfg.Analysis.MinWordLength = v
	}
	setString(&cfg.Documents.Format, "PLAG_DOCUMENT_FORMAT")
	setString(&cfg.Storage.Endpoint, "VAULT_ENDPOINT")
	setString(&cfg.Storage.AccessKey, "VAULT_ACCESS_KEY")
	setString(&cfg.Storage.SecretKey, "VAULT_SECRET_KEY")
	setString(&cfg.Storage.Bucket, "VAULT_BUCKET")
	if v := os.Getenv("VAULT_USE_SSL"); v != "" {
		cfg.Storage.UseSSL = v == "true"
	}
	setString(&cfg.Server.Addr, "LISTEN_ADDR")
	setString(&cfg.Recorder.Dir, "REPORTS_DIR")
	setString(&cfg.Audit.Secret, "AUDIT_SECRET")
	setString(&cfg.Tracing.OTLPEndpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	setString(&cfg.Alerts.WebhookURL, "ALERT_WEBHOOK_URL")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envFloat(key string) (float64, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
