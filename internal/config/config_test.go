package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/history")
	t.Setenv("API_BASE", "https://api.example.com/")
	t.Setenv("S3_BUCKET", "exports")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "https://api.example.com", cfg.Export.APIBase)
	assert.Equal(t, 100, cfg.Export.PageSize)
	assert.Equal(t, "s3", cfg.Storage.Driver)
	assert.Equal(t, 3, cfg.Mail.MaxRetries)
	assert.Equal(t, 2*time.Second, cfg.Mail.RetryInterval)
	assert.Equal(t, "0 3 * * *", cfg.CronSpecProgressRun)
	assert.Equal(t, "postgres://localhost/history", cfg.Database.DSN())
}

func TestLoadMissingJWTSecret(t *testing.T) {
	setRequired(t)
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.EqualError(t, err, "JWT_SECRET is not set")
}

func TestLoadRejectsUnknownStorageDriver(t *testing.T) {
	setRequired(t)
	t.Setenv("STORAGE_DRIVER", "ftp")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadParsesOriginsAndInts(t *testing.T) {
	setRequired(t)
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com,")
	t.Setenv("MAIL_WORKERS", "x")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("MAIL_WORKERS", "4")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Mail.Workers)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins)
}

func TestDSNFromParts(t *testing.T) {
	d := DatabaseConfig{Host: "db", User: "u", Password: "p", Name: "n", Port: "5432", SSLMode: "disable"}
	assert.Equal(t, "host=db user=u password=p dbname=n port=5432 sslmode=disable TimeZone=UTC connect_timeout=10", d.DSN())
}

func TestLoadRejectsNegativeQueueSize(t *testing.T) {
	setRequired(t)
	t.Setenv("MAIL_QUEUE_SIZE", "-1")

	_, err := Load()
	assert.EqualError(t, err, "invalid MAIL_QUEUE_SIZE: must not be negative")
}
