package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

const (
	// SamplesSourceEmbedded serves the sample assets compiled into the binary.
	SamplesSourceEmbedded = "embedded"
	// SamplesSourceMinIO serves the sample assets from an S3-compatible bucket.
	SamplesSourceMinIO = "minio"
)

// DatabaseConfig holds PostgreSQL settings for the optional generation audit log.
// An empty Host disables the audit log.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// Enabled reports whether a database was configured.
func (c DatabaseConfig) Enabled() bool {
	return c.Host != ""
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level  string
	Format string
}

// SamplesConfig selects where sample templates and data fixtures are read from.
type SamplesConfig struct {
	Source string
	// Prefix is prepended to object keys when Source is minio.
	Prefix string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost        string
	Port           string
	Timezone       string
	MaxUploadBytes int
	Log            LogConfig
	Samples        SamplesConfig
	Database       DatabaseConfig
	MinIO          MinIOConfig
}

// Location resolves Timezone, falling back to UTC when it is unknown.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Validate checks settings that depend on each other.
func (c *AppConfig) Validate() error {
	switch c.Samples.Source {
	case SamplesSourceEmbedded:
	case SamplesSourceMinIO:
		if c.MinIO.Endpoint == "" || c.MinIO.Bucket == "" {
			return fmt.Errorf("samples source %q requires MINIO_ENDPOINT and MINIO_BUCKET", c.Samples.Source)
		}
	default:
		return fmt.Errorf("unknown samples source %q", c.Samples.Source)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	return nil
}

// Load reads configuration from environment variables.
// A .env file is auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// When CONFIG_FILE names a YAML file its keys (e.g. "port", "db_host") are read too;
// real environment variables take precedence over the file.
func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	return &AppConfig{
		AppHost:        v.GetString("APP_HOST"),
		Port:           v.GetString("PORT"),
		Timezone:       v.GetString("APP_TIMEZONE"),
		MaxUploadBytes: v.GetInt("MAX_UPLOAD_BYTES"),
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Samples: SamplesConfig{
			Source: strings.ToLower(v.GetString("SAMPLES_SOURCE")),
			Prefix: v.GetString("SAMPLES_PREFIX"),
		},
		Database: DatabaseConfig{
			Host:               v.GetString("DB_HOST"),
			Port:               v.GetString("DB_PORT"),
			User:               v.GetString("DB_USER"),
			Password:           v.GetString("DB_PASSWORD"),
			Name:               v.GetString("DB_NAME"),
			SSLMode:            v.GetString("DB_SSLMODE"),
			MaxOpenConns:       v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:       v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetimeSec: v.GetInt("DB_CONN_MAX_LIFETIME_SEC"),
		},
		MinIO: MinIOConfig{
			Endpoint:  v.GetString("MINIO_ENDPOINT"),
			AccessKey: v.GetString("MINIO_ACCESS_KEY"),
			SecretKey: v.GetString("MINIO_SECRET_KEY"),
			Bucket:    v.GetString("MINIO_BUCKET"),
			UseSSL:    v.GetBool("MINIO_USE_SSL"),
		},
	}, nil
}

// defaults only for non-sensitive values
func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_HOST", "localhost:8080")
	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_TIMEZONE", "UTC")
	v.SetDefault("MAX_UPLOAD_BYTES", 10*1024*1024)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("SAMPLES_SOURCE", SamplesSourceEmbedded)
	v.SetDefault("SAMPLES_PREFIX", "samples")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME_SEC", 300)
	v.SetDefault("MINIO_USE_SSL", false)
}
