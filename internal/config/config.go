package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	ErrMissingEnvironmentVariables = errors.New("missing required environment variables")
	ErrInvalidConfig               = errors.New("invalid configuration")
)

// Content source kinds.
const (
	SourceHTTP = "http"
	SourceS3   = "s3"
)

// Transcription providers.
const (
	ProviderOpenAI = "openai"
	ProviderGoogle = "google"
)

// Config holds application configuration loaded from files and environment variables.
// It is built once at startup and passed by value to the components that need it.
type Config struct {
	Env              string        `mapstructure:"env"` // current application environment (local, dev, production etc)
	TelegramAPIToken string        `mapstructure:"-"`   // Telegram API token loaded from environment
	Telegram         Telegram      `mapstructure:"telegram"`
	DB               DB            `mapstructure:"database"`
	Lessons          Lessons       `mapstructure:"lessons"`
	Content          Content       `mapstructure:"content"`
	Redis            Redis         `mapstructure:"redis"`
	Transcription    Transcription `mapstructure:"transcription"`
	Audio            Audio         `mapstructure:"audio"`
	Log              Log           `mapstructure:"log"`
	Ops              Ops           `mapstructure:"ops"`
}

// Telegram contains bot transport options.
type Telegram struct {
	Debug       bool `mapstructure:"debug"`
	PollTimeout int  `mapstructure:"poll_timeout"` // long polling timeout in seconds
}

// DB contains database-related configuration parameters.
type DB struct {
	URL             string        `mapstructure:"-"`                 // database connection string loaded from environment
	MaxConnections  int           `mapstructure:"max_connections"`   // maximum number of open connections in the pool
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"` // maximum lifetime of a single connection
}

// DSN returns the database connection string if it is configured.
func (db DB) DSN() (string, error) {
	if db.URL == "" {
		return "", ErrMissingEnvironmentVariables
	}
	return db.URL, nil
}

// Lessons controls the lesson sequence and grading.
type Lessons struct {
	PerLevel      int     `mapstructure:"per_level"`      // number of lessons in every level
	PassThreshold float64 `mapstructure:"pass_threshold"` // minimal similarity score accepted as correct
}

// Content describes where lesson texts and audio are read from.
type Content struct {
	Source   string        `mapstructure:"source"`    // "http" or "s3"
	BaseURL  string        `mapstructure:"base_url"`  // HTTP base address, empty disables the source
	Timeout  time.Duration `mapstructure:"timeout"`   // bound for a single fetch
	CacheTTL time.Duration `mapstructure:"cache_ttl"` // lifetime of cached lesson texts
	S3       S3            `mapstructure:"s3"`
}

// S3 holds S3-compatible bucket settings.
type S3 struct {
	Endpoint  string        `mapstructure:"endpoint"`
	Bucket    string        `mapstructure:"bucket"`
	AccessKey string        `mapstructure:"-"`
	SecretKey string        `mapstructure:"-"`
	UseSSL    bool          `mapstructure:"use_ssl"`
	URLExpiry time.Duration `mapstructure:"url_expiry"` // lifetime of presigned audio links
}

// Redis holds the optional cache connection.
type Redis struct {
	Addr     string `mapstructure:"-"`
	Password string `mapstructure:"-"`
	DB       int    `mapstructure:"db"`
}

// Transcription configures the speech-to-text provider.
type Transcription struct {
	Provider          string        `mapstructure:"provider"` // "openai" or "google"
	OpenAIAPIKey      string        `mapstructure:"-"`
	OpenAIBaseURL     string        `mapstructure:"openai_base_url"`
	GoogleCredentials string        `mapstructure:"-"` // path to a service account file
	Model             string        `mapstructure:"model"`
	Language          string        `mapstructure:"language"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RatePerMinute     int           `mapstructure:"rate_per_minute"`
}

// Enabled reports whether a credential for the selected provider is present.
func (t Transcription) Enabled() bool {
	switch t.Provider {
	case ProviderGoogle:
		return t.GoogleCredentials != ""
	default:
		return t.OpenAIAPIKey != ""
	}
}

// Audio configures temporary storage of downloaded voice messages.
type Audio struct {
	TempDir       string        `mapstructure:"temp_dir"`
	MaxFileSize   int64         `mapstructure:"max_file_size"`
	SweepSchedule string        `mapstructure:"sweep_schedule"`
	MaxAge        time.Duration `mapstructure:"max_age"`
}

// Log configures the log sinks.
type Log struct {
	File       string `mapstructure:"file"` // rotating JSON log file, empty disables it
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// Ops configures the health and metrics HTTP server.
type Ops struct {
	Addr string `mapstructure:"addr"` // empty disables the server
}

// Load reads configuration from config files and environment variables.
func Load() (*Config, error) {
	// Pick up a local .env file if there is one; real environment wins.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	// Initialize Viper instance and base config options.
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	setDefaults(v)

	// Configure environment variable handling and key mapping.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // map nested keys to ENV style names
	v.AutomaticEnv()

	// Bind explicit environment variables to configuration keys.
	_ = v.BindEnv("env", "APP_ENV")
	_ = v.BindEnv("telegram_api_token", "TELEGRAM_API_TOKEN", "TELEGRAM_TOKEN")
	_ = v.BindEnv("telegram.debug", "TELEGRAM_DEBUG")
	_ = v.BindEnv("database_url", "DATABASE_URL")
	_ = v.BindEnv("lessons.per_level", "LESSONS_PER_LEVEL")
	_ = v.BindEnv("content.source", "CONTENT_SOURCE")
	_ = v.BindEnv("content.base_url", "BASE_URL")
	_ = v.BindEnv("content.s3.endpoint", "S3_ENDPOINT")
	_ = v.BindEnv("content.s3.bucket", "S3_BUCKET")
	_ = v.BindEnv("content.s3.use_ssl", "S3_USE_SSL")
	_ = v.BindEnv("s3_access_key", "S3_ACCESS_KEY")
	_ = v.BindEnv("s3_secret_key", "S3_SECRET_KEY")
	_ = v.BindEnv("redis_addr", "REDIS_ADDR")
	_ = v.BindEnv("redis_password", "REDIS_PASSWORD")
	_ = v.BindEnv("transcription.provider", "TRANSCRIPTION_PROVIDER")
	_ = v.BindEnv("openai_api_key", "OPENAI_API_KEY")
	_ = v.BindEnv("google_credentials", "GOOGLE_APPLICATION_CREDENTIALS")
	_ = v.BindEnv("log.file", "LOG_FILE")
	_ = v.BindEnv("ops.addr", "OPS_ADDR")

	// Try to read configuration file if present.
	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	// Unmarshal configuration into strongly typed struct.
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// Load sensitive values from environment variables.
	cfg.TelegramAPIToken = v.GetString("telegram_api_token")
	if cfg.TelegramAPIToken == "" {
		return nil, ErrMissingEnvironmentVariables
	}

	cfg.DB.URL = v.GetString("database_url")
	cfg.Content.S3.AccessKey = v.GetString("s3_access_key")
	cfg.Content.S3.SecretKey = v.GetString("s3_secret_key")
	cfg.Redis.Addr = v.GetString("redis_addr")
	cfg.Redis.Password = v.GetString("redis_password")
	cfg.Transcription.OpenAIAPIKey = v.GetString("openai_api_key")
	cfg.Transcription.GoogleCredentials = v.GetString("google_credentials")

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "local")
	v.SetDefault("telegram.debug", false)
	v.SetDefault("telegram.poll_timeout", 60)
	v.SetDefault("database.max_connections", 20)
	v.SetDefault("database.max_conn_lifetime", "30s")
	v.SetDefault("lessons.per_level", 25)
	v.SetDefault("lessons.pass_threshold", 0.75)
	v.SetDefault("content.source", SourceHTTP)
	v.SetDefault("content.base_url", "")
	v.SetDefault("content.timeout", "10s")
	v.SetDefault("content.cache_ttl", "1h")
	v.SetDefault("content.s3.use_ssl", true)
	v.SetDefault("content.s3.url_expiry", "1h")
	v.SetDefault("redis.db", 0)
	v.SetDefault("transcription.provider", ProviderOpenAI)
	v.SetDefault("transcription.openai_base_url", "https://api.openai.com")
	v.SetDefault("transcription.model", "whisper-1")
	v.SetDefault("transcription.language", "ru")
	v.SetDefault("transcription.timeout", "120s")
	v.SetDefault("transcription.rate_per_minute", 60)
	v.SetDefault("audio.temp_dir", filepath.Join(os.TempDir(), "talaffuz"))
	v.SetDefault("audio.max_file_size", 20<<20)
	v.SetDefault("audio.sweep_schedule", "@every 30m")
	v.SetDefault("audio.max_age", "1h")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("ops.addr", "")
}

func (c *Config) normalize() {
	c.Content.Source = strings.ToLower(strings.TrimSpace(c.Content.Source))
	c.Content.BaseURL = strings.TrimRight(strings.TrimSpace(c.Content.BaseURL), "/")
	c.Transcription.Provider = strings.ToLower(strings.TrimSpace(c.Transcription.Provider))
	c.Transcription.OpenAIBaseURL = strings.TrimRight(c.Transcription.OpenAIBaseURL, "/")
}

// Validate checks value ranges that viper cannot express.
func (c *Config) Validate() error {
	if c.Lessons.PerLevel < 1 {
		return fmt.Errorf("%w: lessons.per_level must be >= 1, got %d", ErrInvalidConfig, c.Lessons.PerLevel)
	}
	if c.Lessons.PassThreshold <= 0 || c.Lessons.PassThreshold > 1 {
		return fmt.Errorf("%w: lessons.pass_threshold must be in (0, 1], got %v", ErrInvalidConfig, c.Lessons.PassThreshold)
	}
	switch c.Content.Source {
	case SourceHTTP, SourceS3:
	default:
		return fmt.Errorf("%w: unknown content.source %q", ErrInvalidConfig, c.Content.Source)
	}
	switch c.Transcription.Provider {
	case ProviderOpenAI, ProviderGoogle:
	default:
		return fmt.Errorf("%w: unknown transcription.provider %q", ErrInvalidConfig, c.Transcription.Provider)
	}
	return nil
}
