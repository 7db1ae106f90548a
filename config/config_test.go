package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("BASE_URL", "https://rsvp.test/")
	t.Setenv("CRAWLER_PATTERNS", "")

	cfg := Load()

	assert.Equal(t, "postgres", cfg.StoreDriver)
	assert.Equal(t, "https://rsvp.test", cfg.BaseURL)
	assert.Equal(t, 5*time.Minute, cfg.RecentLoginWindow)
	assert.Nil(t, cfg.CrawlerPatterns)
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("RECENT_LOGIN_WINDOW", "90")
	t.Setenv("BOOTSTRAP_ADMIN_EMAILS", " boss@example.com, ,ops@example.com ")
	t.Setenv("CRAWLER_PATTERNS", "Discordbot,WhatsApp")
	t.Setenv("EXPORT_TIMEZONE", "America/Mexico_City")

	cfg := Load()

	assert.Equal(t, 2*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 90*time.Second, cfg.RecentLoginWindow)
	assert.Equal(t, []string{"boss@example.com", "ops@example.com"}, cfg.BootstrapAdmins)
	assert.Equal(t, []string{"Discordbot", "WhatsApp"}, cfg.CrawlerPatterns)
	assert.Equal(t, "America/Mexico_City", cfg.Location().String())
}

func TestLoad_BadDurationFallsBack(t *testing.T) {
	t.Setenv("JWT_TTL", "soon")

	assert.Equal(t, 7*24*time.Hour, Load().JWTTTL)
}

func TestValidate_DefaultSecretOutsideDevelopment(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	cfg := Load()

	assert.True(t, cfg.UsesDefaultSecret())
	assert.ErrorIs(t, cfg.Validate(), ErrDefaultJWTSecret)
}

func TestValidate_DefaultSecretAllowedInDevelopment(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("JWT_SECRET", "")

	cfg := Load()

	assert.Equal(t, "development", cfg.Env)
	assert.True(t, cfg.UsesDefaultSecret())
	assert.NoError(t, cfg.Validate())
}

func TestValidate_ExplicitSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg := Load()

	assert.False(t, cfg.UsesDefaultSecret())
	assert.NoError(t, cfg.Validate())
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBHost: "db", DBPort: "5432", DBUser: "u", DBPassword: "p", DBName: "n"}

	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable TimeZone=UTC", cfg.DSN())
}
