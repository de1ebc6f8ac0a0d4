package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// DefaultAPIVersion is the Azure OpenAI API version used when none is configured.
	DefaultAPIVersion = "2024-02-15-preview"
	// DefaultDeployment is the model or deployment name used when none is configured.
	DefaultDeployment = "gpt-4o"
)

// envFiles lists the .env locations tried in order; the first one found wins.
var envFiles = []string{".env", "../.env", "../../.env"}

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	Log     LogConfig
	CORS    CORSConfig
	Upload  UploadConfig
	Parser  ParserConfig
	S3      S3Config
	Storage StorageConfig
	Metrics MetricsConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// UploadConfig holds limits and scratch locations for uploaded documents.
type UploadConfig struct {
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
	MinTextChars  int    `mapstructure:"min_text_chars"`
	WorkDir       string `mapstructure:"work_dir"`
	OutputDir     string `mapstructure:"output_dir"`
}

// MaxBytes returns the upload size limit in bytes.
func (u *UploadConfig) MaxBytes() int64 {
	return u.MaxFileSizeMB * 1024 * 1024
}

// ParserProviderConfig holds settings for a single structured-extraction provider.
type ParserProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	Endpoint     string `mapstructure:"endpoint"`
	APIVersion   string `mapstructure:"api_version"`
	DefaultModel string `mapstructure:"default_model"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// Timeout returns the provider call timeout, defaulting to 120s.
func (p *ParserProviderConfig) Timeout() time.Duration {
	if p.TimeoutSecs <= 0 {
		return 120 * time.Second
	}
	return time.Duration(p.TimeoutSecs) * time.Second
}

// ParserConfig holds structured-extraction settings with multi-provider support.
type ParserConfig struct {
	// Legacy flat fields, also fed by the AZURE_* variables.
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	Endpoint     string `mapstructure:"endpoint"`
	APIVersion   string `mapstructure:"api_version"`
	DefaultModel string `mapstructure:"default_model"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`

	// Multi-provider fields
	Primary   ParserProviderConfig `mapstructure:"primary"`
	Secondary ParserProviderConfig `mapstructure:"secondary"`
	Tertiary  ParserProviderConfig `mapstructure:"tertiary"`
}

// PrimaryConfig returns the primary provider config, falling back to legacy flat fields.
func (p *ParserConfig) PrimaryConfig() *ParserProviderConfig {
	if p.Primary.Provider != "" {
		return &p.Primary
	}
	return &ParserProviderConfig{
		Provider:     p.Provider,
		APIKey:       p.APIKey,
		Endpoint:     p.Endpoint,
		APIVersion:   p.APIVersion,
		DefaultModel: p.DefaultModel,
		TimeoutSecs:  p.TimeoutSecs,
	}
}

// SecondaryConfig returns the secondary provider config, or nil if not configured.
func (p *ParserConfig) SecondaryConfig() *ParserProviderConfig {
	if p.Secondary.Provider != "" {
		return &p.Secondary
	}
	return nil
}

// TertiaryConfig returns the tertiary provider config, or nil if not configured.
func (p *ParserConfig) TertiaryConfig() *ParserProviderConfig {
	if p.Tertiary.Provider != "" {
		return &p.Tertiary
	}
	return nil
}

// Chain returns the configured providers in fallback order.
func (p *ParserConfig) Chain() []*ParserProviderConfig {
	chain := []*ParserProviderConfig{p.PrimaryConfig()}
	if s := p.SecondaryConfig(); s != nil {
		chain = append(chain, s)
	}
	if t := p.TertiaryConfig(); t != nil {
		chain = append(chain, t)
	}
	return chain
}

// S3Config holds AWS S3 settings for sheet archival.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// StorageConfig selects where generated sheets are archived.
type StorageConfig struct {
	Provider string `mapstructure:"provider"`
}

// MetricsConfig holds prometheus exposition settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Validate checks the settings the service cannot start without.
func (c *Config) Validate() error {
	for i, p := range c.Parser.Chain() {
		if p.Provider == "" {
			return fmt.Errorf("parser provider %d: provider name is required", i)
		}
		if p.APIKey == "" {
			return fmt.Errorf("parser provider %s: api key is required", p.Provider)
		}
		if p.Provider == "azure" && p.Endpoint == "" {
			return errors.New("parser provider azure: endpoint is required")
		}
	}
	if c.Upload.MinTextChars < 0 {
		return errors.New("upload.min_text_chars must not be negative")
	}
	if c.Storage.Provider == "s3" && c.S3.Bucket == "" {
		return errors.New("storage provider s3: bucket is required")
	}
	return nil
}

// loadDotEnv loads the first .env file found. Missing files are not an error;
// variables already set in the environment are never overridden.
func loadDotEnv() string {
	for _, path := range envFiles {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err == nil {
			return path
		}
	}
	return ""
}

// Load reads configuration from an optional .env file and environment
// variables with the DEALSHEET_ prefix.
func Load() (*Config, error) {
	loadDotEnv()

	v := viper.New()
	v.SetEnvPrefix("DEALSHEET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8000")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "180s")
	v.SetDefault("server.environment", "development")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// CORS defaults (fully open)
	v.SetDefault("cors.allowed_origins", "*")

	// Upload defaults
	v.SetDefault("upload.max_file_size_mb", 20)
	v.SetDefault("upload.min_text_chars", 50)
	v.SetDefault("upload.work_dir", os.TempDir())
	v.SetDefault("upload.output_dir", os.TempDir())

	// Parser defaults (legacy flat)
	v.SetDefault("parser.provider", "azure")
	v.SetDefault("parser.api_key", "")
	v.SetDefault("parser.endpoint", "")
	v.SetDefault("parser.api_version", DefaultAPIVersion)
	v.SetDefault("parser.default_model", DefaultDeployment)
	v.SetDefault("parser.timeout_secs", 120)

	// Parser primary/secondary/tertiary defaults
	for _, tier := range []string{"primary", "secondary", "tertiary"} {
		v.SetDefault("parser."+tier+".provider", "")
		v.SetDefault("parser."+tier+".api_key", "")
		v.SetDefault("parser."+tier+".endpoint", "")
		v.SetDefault("parser."+tier+".api_version", DefaultAPIVersion)
		v.SetDefault("parser."+tier+".default_model", "")
		v.SetDefault("parser."+tier+".timeout_secs", 120)
	}

	// S3 / storage defaults
	v.SetDefault("s3.region", "ap-south-1")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.prefix", "deal-sheets")
	v.SetDefault("storage.provider", "noop")

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	// Bind environment variables explicitly for nested keys. The AZURE_* names
	// are accepted as fallbacks for the flat parser settings.
	envBindings := map[string][]string{
		"server.port":                    {"DEALSHEET_SERVER_PORT"},
		"server.read_timeout":            {"DEALSHEET_SERVER_READ_TIMEOUT"},
		"server.write_timeout":           {"DEALSHEET_SERVER_WRITE_TIMEOUT"},
		"server.environment":             {"DEALSHEET_SERVER_ENVIRONMENT"},
		"log.level":                      {"DEALSHEET_LOG_LEVEL"},
		"log.format":                     {"DEALSHEET_LOG_FORMAT"},
		"cors.allowed_origins":           {"DEALSHEET_CORS_ALLOWED_ORIGINS"},
		"upload.max_file_size_mb":        {"DEALSHEET_UPLOAD_MAX_FILE_SIZE_MB"},
		"upload.min_text_chars":          {"DEALSHEET_UPLOAD_MIN_TEXT_CHARS"},
		"upload.work_dir":                {"DEALSHEET_UPLOAD_WORK_DIR"},
		"upload.output_dir":              {"DEALSHEET_UPLOAD_OUTPUT_DIR"},
		"parser.provider":                {"DEALSHEET_PARSER_PROVIDER"},
		"parser.api_key":                 {"DEALSHEET_PARSER_API_KEY", "AZURE_OPENAI_API_KEY"},
		"parser.endpoint":                {"DEALSHEET_PARSER_ENDPOINT", "AZURE_OPENAI_ENDPOINT"},
		"parser.api_version":             {"DEALSHEET_PARSER_API_VERSION", "AZURE_API_VERSION"},
		"parser.default_model":           {"DEALSHEET_PARSER_DEFAULT_MODEL", "AZURE_DEPLOYMENT_NAME"},
		"parser.timeout_secs":            {"DEALSHEET_PARSER_TIMEOUT_SECS"},
		"parser.primary.provider":        {"DEALSHEET_PARSER_PRIMARY_PROVIDER"},
		"parser.primary.api_key":         {"DEALSHEET_PARSER_PRIMARY_API_KEY"},
		"parser.primary.endpoint":        {"DEALSHEET_PARSER_PRIMARY_ENDPOINT"},
		"parser.primary.api_version":     {"DEALSHEET_PARSER_PRIMARY_API_VERSION"},
		"parser.primary.default_model":   {"DEALSHEET_PARSER_PRIMARY_DEFAULT_MODEL"},
		"parser.primary.timeout_secs":    {"DEALSHEET_PARSER_PRIMARY_TIMEOUT_SECS"},
		"parser.secondary.provider":      {"DEALSHEET_PARSER_SECONDARY_PROVIDER"},
		"parser.secondary.api_key":       {"DEALSHEET_PARSER_SECONDARY_API_KEY"},
		"parser.secondary.endpoint":      {"DEALSHEET_PARSER_SECONDARY_ENDPOINT"},
		"parser.secondary.api_version":   {"DEALSHEET_PARSER_SECONDARY_API_VERSION"},
		"parser.secondary.default_model": {"DEALSHEET_PARSER_SECONDARY_DEFAULT_MODEL"},
		"parser.secondary.timeout_secs":  {"DEALSHEET_PARSER_SECONDARY_TIMEOUT_SECS"},
		"parser.tertiary.provider":       {"DEALSHEET_PARSER_TERTIARY_PROVIDER"},
		"parser.tertiary.api_key":        {"DEALSHEET_PARSER_TERTIARY_API_KEY"},
		"parser.tertiary.endpoint":       {"DEALSHEET_PARSER_TERTIARY_ENDPOINT"},
		"parser.tertiary.api_version":    {"DEALSHEET_PARSER_TERTIARY_API_VERSION"},
		"parser.tertiary.default_model":  {"DEALSHEET_PARSER_TERTIARY_DEFAULT_MODEL"},
		"parser.tertiary.timeout_secs":   {"DEALSHEET_PARSER_TERTIARY_TIMEOUT_SECS"},
		"s3.region":                      {"DEALSHEET_S3_REGION"},
		"s3.bucket":                      {"DEALSHEET_S3_BUCKET"},
		"s3.endpoint":                    {"DEALSHEET_S3_ENDPOINT"},
		"s3.access_key":                  {"DEALSHEET_S3_ACCESS_KEY"},
		"s3.secret_key":                  {"DEALSHEET_S3_SECRET_KEY"},
		"s3.prefix":                      {"DEALSHEET_S3_PREFIX"},
		"storage.provider":               {"DEALSHEET_STORAGE_PROVIDER"},
		"metrics.enabled":                {"DEALSHEET_METRICS_ENABLED"},
		"metrics.path":                   {"DEALSHEET_METRICS_PATH"},
	}
	for key, envs := range envBindings {
		_ = v.BindEnv(append([]string{key}, envs...)...)
	}

	cfg := &Config{}

	// Hosting platforms set a PORT env var. Use it if DEALSHEET_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("DEALSHEET_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitList(v.GetString("cors.allowed_origins")),
	}
	cfg.Upload = UploadConfig{
		MaxFileSizeMB: v.GetInt64("upload.max_file_size_mb"),
		MinTextChars:  v.GetInt("upload.min_text_chars"),
		WorkDir:       v.GetString("upload.work_dir"),
		OutputDir:     v.GetString("upload.output_dir"),
	}

	cfg.Parser = ParserConfig{
		Provider:     v.GetString("parser.provider"),
		APIKey:       v.GetString("parser.api_key"),
		Endpoint:     v.GetString("parser.endpoint"),
		APIVersion:   v.GetString("parser.api_version"),
		DefaultModel: v.GetString("parser.default_model"),
		TimeoutSecs:  v.GetInt("parser.timeout_secs"),
		Primary:      providerConfig(v, "parser.primary"),
		Secondary:    providerConfig(v, "parser.secondary"),
		Tertiary:     providerConfig(v, "parser.tertiary"),
	}

	cfg.S3 = S3Config{
		Region:    v.GetString("s3.region"),
		Bucket:    v.GetString("s3.bucket"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
		Prefix:    v.GetString("s3.prefix"),
	}
	cfg.Storage = StorageConfig{
		Provider: v.GetString("storage.provider"),
	}
	cfg.Metrics = MetricsConfig{
		Enabled: v.GetBool("metrics.enabled"),
		Path:    v.GetString("metrics.path"),
	}

	return cfg, nil
}

func providerConfig(v *viper.Viper, prefix string) ParserProviderConfig {
	return ParserProviderConfig{
		Provider:     v.GetString(prefix + ".provider"),
		APIKey:       v.GetString(prefix + ".api_key"),
		Endpoint:     v.GetString(prefix + ".endpoint"),
		APIVersion:   v.GetString(prefix + ".api_version"),
		DefaultModel: v.GetString(prefix + ".default_model"),
		TimeoutSecs:  v.GetInt(prefix + ".timeout_secs"),
	}
}

// splitList parses a comma-separated setting, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
