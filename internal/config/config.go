package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures the runtime configuration for both the web client and the
// reference recipe service. Each binary reads the sections it needs.
type Config struct {
	Server    ServerConfig
	Logging   LoggingConfig
	RecipeAPI RecipeAPIConfig
	Auth      AuthConfig
	Forms     FormsConfig
	API       APIConfig
	Database  DatabaseConfig
	Scrape    ScrapeConfig
}

// ServerConfig configures the web client HTTP server.
type ServerConfig struct {
	Addr string
}

// LoggingConfig controls the global logger.
type LoggingConfig struct {
	Level  string
	Format string
}

// RecipeAPIConfig tells the web client where the recipe service lives.
type RecipeAPIConfig struct {
	URL     string
	Token   string
	Timeout time.Duration
}

// AuthConfig groups browser session settings.
type AuthConfig struct {
	Session SessionConfig
}

// SessionConfig configures the scs session manager.
type SessionConfig struct {
	Lifetime     time.Duration
	CookieName   string
	CookieDomain string
	CookieSecure bool
}

// FormsConfig configures the form session registry.
type FormsConfig struct {
	IdleTTL time.Duration
}

// APIConfig configures the reference recipe service.
type APIConfig struct {
	Addr           string
	TokenHash      string
	AllowedOrigins []string
}

// DatabaseConfig contains the database connection settings.
type DatabaseConfig struct {
	URL             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	UseMock         bool
}

// ScrapeConfig bounds page fetches made by the extractor.
type ScrapeConfig struct {
	Timeout  time.Duration
	MaxBytes int
}

// Load inspects the environment and builds a Config value.
func Load() (Config, error) {
	cfg := Config{}

	cfg.Server = ServerConfig{
		Addr: firstNonEmpty(
			os.Getenv("SERVER_ADDR"),
			os.Getenv("ADDR"),
			":8080",
		),
	}

	cfg.Logging = LoggingConfig{
		Level:  firstNonEmpty(os.Getenv("LOG_LEVEL"), "info"),
		Format: firstNonEmpty(os.Getenv("LOG_FORMAT"), "text"),
	}

	cfg.RecipeAPI = RecipeAPIConfig{
		URL:     firstNonEmpty(os.Getenv("RECIPE_API_URL"), "http://localhost:26740/api"),
		Token:   strings.TrimSpace(os.Getenv("RECIPE_API_TOKEN")),
		Timeout: parseDurationWithDefault(os.Getenv("RECIPE_API_TIMEOUT"), 30*time.Second),
	}

	cfg.Auth = AuthConfig{
		Session: SessionConfig{
			Lifetime:     parseDurationWithDefault(os.Getenv("SESSION_LIFETIME"), 12*time.Hour),
			CookieName:   firstNonEmpty(os.Getenv("SESSION_COOKIE_NAME"), "cookbook_session"),
			CookieDomain: strings.TrimSpace(os.Getenv("SESSION_COOKIE_DOMAIN")),
			CookieSecure: parseBoolWithDefault(os.Getenv("SESSION_COOKIE_SECURE"), false),
		},
	}

	cfg.Forms = FormsConfig{
		IdleTTL: parseDurationWithDefault(os.Getenv("FORM_IDLE_TTL"), 2*time.Hour),
	}

	cfg.API = APIConfig{
		Addr:           firstNonEmpty(os.Getenv("API_ADDR"), ":26740"),
		TokenHash:      strings.TrimSpace(os.Getenv("API_TOKEN_HASH")),
		AllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
	}

	cfg.Database = DatabaseConfig{
		URL: firstNonEmpty(
			os.Getenv("DATABASE_URL"),
			os.Getenv("DB_URL"),
			"",
		),
		MaxIdleConns:    parseIntWithDefault(os.Getenv("DATABASE_MAX_IDLE_CONNS"), 5),
		MaxOpenConns:    parseIntWithDefault(os.Getenv("DATABASE_MAX_OPEN_CONNS"), 20),
		ConnMaxLifetime: parseDurationWithDefault(os.Getenv("DATABASE_CONN_MAX_LIFETIME"), time.Hour),
		ConnMaxIdleTime: parseDurationWithDefault(os.Getenv("DATABASE_CONN_MAX_IDLE_TIME"), 15*time.Minute),
		UseMock:         parseBoolWithDefault(os.Getenv("DATABASE_USE_MOCK"), false),
	}

	cfg.Scrape = ScrapeConfig{
		Timeout:  parseDurationWithDefault(os.Getenv("SCRAPE_TIMEOUT"), 20*time.Second),
		MaxBytes: parseIntWithDefault(os.Getenv("SCRAPE_MAX_BYTES"), 10<<20),
	}

	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return Config{}, fmt.Errorf("server address must not be empty")
	}
	if cfg.Scrape.MaxBytes <= 0 {
		return Config{}, fmt.Errorf("scrape max bytes must be positive, got %d", cfg.Scrape.MaxBytes)
	}

	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

func parseIntWithDefault(value string, def int) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func parseDurationWithDefault(value string, def time.Duration) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return parsed
}

func parseBoolWithDefault(value string, def bool) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return def
	}
	return parsed
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
