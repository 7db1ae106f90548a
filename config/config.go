package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

type Config struct {
	Env        string
	ServerPort string
	BaseURL    string

	StoreDriver string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	MongoURI    string
	MongoDB     string

	RabbitURL string

	JWTSecret         string
	JWTTTL            time.Duration
	RecentLoginWindow time.Duration
	BootstrapAdmins   []string

	ExportTimezone string

	HostingDir          string
	UploadDir           string
	CrawlerPatterns     []string
	DefaultPreviewTitle string
	DefaultPreviewDesc  string
	DefaultPreviewImage string
}

// DefaultJWTSecret is the signing key used when JWT_SECRET is unset. It is
// only accepted in development.
const DefaultJWTSecret = "change-me"

var ErrDefaultJWTSecret = errors.New("JWT_SECRET must be set outside development")

// Load reads a .env file when present and then the process environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Env:        getEnv("APP_ENV", "development"),
		ServerPort: getEnv("SERVER_PORT", "8080"),
		BaseURL:    strings.TrimRight(getEnv("BASE_URL", "http://localhost:8080"), "/"),

		StoreDriver: getEnv("STORE_DRIVER", "postgres"),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPassword:  getEnv("DB_PASSWORD", "postgres"),
		DBName:      getEnv("DB_NAME", "reservations_db"),
		MongoURI:    getEnv("MONGO_URI", "mongodb://127.0.0.1:27017"),
		MongoDB:     getEnv("MONGO_DB", "reservations"),

		RabbitURL: os.Getenv("RABBITMQ_URL"),

		JWTSecret:         getEnv("JWT_SECRET", DefaultJWTSecret),
		JWTTTL:            getDuration("JWT_TTL", 7*24*time.Hour),
		RecentLoginWindow: getDuration("RECENT_LOGIN_WINDOW", 5*time.Minute),
		BootstrapAdmins:   getList("BOOTSTRAP_ADMIN_EMAILS", nil),

		ExportTimezone: getEnv("EXPORT_TIMEZONE", "UTC"),

		HostingDir:          getEnv("HOSTING_DIR", "hosting"),
		UploadDir:           getEnv("UPLOAD_DIR", "uploads"),
		CrawlerPatterns:     getList("CRAWLER_PATTERNS", nil),
		DefaultPreviewTitle: getEnv("PREVIEW_DEFAULT_TITLE", "Reservaciones"),
		DefaultPreviewDesc:  getEnv("PREVIEW_DEFAULT_DESCRIPTION", "Create reservations for your favorite events"),
		DefaultPreviewImage: getEnv("PREVIEW_DEFAULT_IMAGE", "https://reservacion-48a62.web.app/logo512-v2.png"),
	}
}

// Validate rejects settings that are unsafe for the configured environment.
func (c *Config) Validate() error {
	if c.JWTSecret == DefaultJWTSecret && c.Env != "development" {
		return ErrDefaultJWTSecret
	}
	return nil
}

// UsesDefaultSecret reports whether tokens are signed with the built-in key.
func (c *Config) UsesDefaultSecret() bool {
	return c.JWTSecret == DefaultJWTSecret
}

func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName,
	)
}

// Location resolves ExportTimezone, falling back to UTC for unknown zones.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.ExportTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

func getList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
