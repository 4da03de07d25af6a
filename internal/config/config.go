package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the service
type AppConfig struct {
	Port        string
	Environment string
	LogLevel    string

	Database DatabaseConfig
	Export   ExportConfig
	Storage  StorageConfig
	Mail     MailConfig

	JWTSecret           string
	CORSOrigins         []string
	CronSpecProgressRun string
}

// DatabaseConfig describes how to reach PostgreSQL. URL wins over the individual parts.
type DatabaseConfig struct {
	URL      string
	Host     string
	User     string
	Password string
	Name     string
	Port     string
	SSLMode  string
}

// DSN builds the connection string for the postgres driver
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC connect_timeout=10",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode)
}

// ExportConfig is injected into the CSV export service
type ExportConfig struct {
	APIBase       string
	TempDir       string
	PageSize      int
	DefaultName   string
	SenderEmail   string
	SenderName    string
	SenderID      string
	RunTimeout    time.Duration
	TableNameFR   string
	TableNameEN   string
	DownloadRoute string
}

// StorageConfig selects and configures the object store used for exports
type StorageConfig struct {
	Driver string // "cloudinary" or "s3"

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CloudinaryFolder    string

	S3Region         string
	S3Bucket         string
	S3Endpoint       string
	S3ForcePathStyle bool
	S3Prefix         string
}

// MailConfig configures SendGrid and the asynchronous dispatcher
type MailConfig struct {
	SendGridAPIKey string
	QueueSize      int
	Workers        int
	MaxRetries     int
	RetryInterval  time.Duration
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load does not override variables that are already set
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.Port = getEnv("PORT", "8080")
	cfg.Environment = strings.ToLower(getEnv("ENVIRONMENT", "development"))
	cfg.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", "info"))

	cfg.Database = DatabaseConfig{
		URL:      os.Getenv("DATABASE_URL"),
		Host:     os.Getenv("DB_HOST"),
		User:     os.Getenv("DB_USER"),
		Password: os.Getenv("DB_PASSWORD"),
		Name:     os.Getenv("DB_NAME"),
		Port:     getEnv("DB_PORT", "5432"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}
	if cfg.Database.URL == "" && (cfg.Database.Host == "" || cfg.Database.User == "" || cfg.Database.Name == "") {
		return nil, fmt.Errorf("DATABASE_URL or DB_HOST, DB_USER and DB_NAME must be set")
	}

	cfg.Export.APIBase = strings.TrimRight(os.Getenv("API_BASE"), "/")
	if cfg.Export.APIBase == "" {
		return nil, fmt.Errorf("API_BASE is not set")
	}
	cfg.Export.TempDir = getEnv("EXPORT_TEMP_DIR", "public/fileuploads")
	cfg.Export.DefaultName = getEnv("EXPORT_DEFAULT_FILE_NAME", "history-reminder")
	cfg.Export.SenderEmail = os.Getenv("SENDGRID_NOTIFICATIONS_FROM_EMAIL")
	cfg.Export.SenderName = os.Getenv("SENDGRID_FROM_NAME")
	cfg.Export.SenderID = os.Getenv("PLATFORM_USER_ID")
	cfg.Export.TableNameFR = "Historique du tableau de rappel"
	cfg.Export.TableNameEN = "History Of Reminder Table"
	cfg.Export.DownloadRoute = "fileuploads"
	if cfg.Export.PageSize, err = getEnvInt("EXPORT_PAGE_SIZE", 100); err != nil {
		return nil, err
	}
	if cfg.Export.RunTimeout, err = getEnvDuration("EXPORT_TIMEOUT", 30*time.Minute); err != nil {
		return nil, err
	}

	cfg.Storage.Driver = strings.ToLower(getEnv("STORAGE_DRIVER", "s3"))
	switch cfg.Storage.Driver {
	case "cloudinary":
		cfg.Storage.CloudinaryCloudName = os.Getenv("CLOUDINARY_CLOUD_NAME")
		cfg.Storage.CloudinaryAPIKey = os.Getenv("CLOUDINARY_API_KEY")
		cfg.Storage.CloudinaryAPISecret = os.Getenv("CLOUDINARY_API_SECRET")
		cfg.Storage.CloudinaryFolder = getEnv("CLOUDINARY_FOLDER", "fileuploads")
	case "s3":
		cfg.Storage.S3Region = getEnv("AWS_REGION", "eu-west-3")
		cfg.Storage.S3Bucket = os.Getenv("S3_BUCKET")
		cfg.Storage.S3Endpoint = os.Getenv("S3_ENDPOINT")
		cfg.Storage.S3Prefix = os.Getenv("S3_PREFIX")
		cfg.Storage.S3ForcePathStyle, _ = strconv.ParseBool(os.Getenv("S3_FORCE_PATH_STYLE"))
		if cfg.Storage.S3Bucket == "" {
			return nil, fmt.Errorf("S3_BUCKET is not set")
		}
	default:
		return nil, fmt.Errorf("invalid STORAGE_DRIVER %q: expected s3 or cloudinary", cfg.Storage.Driver)
	}

	cfg.Mail.SendGridAPIKey = os.Getenv("SENDGRID_API_KEY")
	if cfg.Mail.QueueSize, err = getEnvInt("MAIL_QUEUE_SIZE", 64); err != nil {
		return nil, err
	}
	if cfg.Mail.QueueSize < 0 {
		return nil, fmt.Errorf("invalid MAIL_QUEUE_SIZE: must not be negative")
	}
	if cfg.Mail.Workers, err = getEnvInt("MAIL_WORKERS", 2); err != nil {
		return nil, err
	}
	if cfg.Mail.MaxRetries, err = getEnvInt("MAIL_MAX_RETRIES", 3); err != nil {
		return nil, err
	}
	if cfg.Mail.RetryInterval, err = getEnvDuration("MAIL_RETRY_INTERVAL", 2*time.Second); err != nil {
		return nil, err
	}

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}

	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}

	cfg.CronSpecProgressRun = getEnv("CRON_SPEC_PROGRESS_REFRESH", "0 3 * * *")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s format: %w", key, err)
	}
	return value, nil
}
