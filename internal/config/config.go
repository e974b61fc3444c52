package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// Load .env file if it exists (silent fail if not)
	_ = godotenv.Load()
}

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Server   ServerConfig
	App      AppConfig
	Cache    CacheConfig
	QuoteDB  QuoteDBConfig
	Pricing  PricingConfig
	Dispatch DispatchConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `envconfig:"APP_NAME" default:"refab-api"`
	Environment string `envconfig:"APP_ENV" default:"development"`
	Debug       bool   `envconfig:"APP_DEBUG" default:"false"`
	Version     string `envconfig:"APP_VERSION" default:"1.0.0"`
	BaseURL     string `envconfig:"APP_BASE_URL" default:"http://localhost:8080"`
}

// CacheConfig holds cache settings. The cache backs wizard sessions and the
// order idempotency guard.
type CacheConfig struct {
	Type string `envconfig:"CACHE_TYPE" default:"memory"` // memory or redis

	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
}

// QuoteDBConfig holds quote database settings.
type QuoteDBConfig struct {
	Type string `envconfig:"QUOTE_DB_TYPE" default:"sqlite"` // sqlite, mysql, or postgres
	Path string `envconfig:"QUOTE_DB_PATH" default:"./data/quotes.db"`

	Host     string `envconfig:"QUOTE_DB_HOST" default:"localhost"`
	Port     int    `envconfig:"QUOTE_DB_PORT" default:"0"`
	Name     string `envconfig:"QUOTE_DB_NAME" default:"refab"`
	User     string `envconfig:"QUOTE_DB_USER" default:""`
	Password string `envconfig:"QUOTE_DB_PASS" default:""`
	SSLMode  string `envconfig:"QUOTE_DB_SSLMODE" default:"disable"`
}

// PricingConfig holds pricing engine settings.
type PricingConfig struct {
	// Tolerance is the accepted absolute gap between the declared and the
	// server-computed buyback price, in whole currency units.
	Tolerance int `envconfig:"PRICE_TOLERANCE" default:"5"`

	// CatalogPath overrides the embedded catalog snapshot when set.
	CatalogPath string `envconfig:"CATALOG_PATH" default:""`
}

// DispatchConfig holds post-persistence dispatch settings.
type DispatchConfig struct {
	InvoiceDir string `envconfig:"DISPATCH_INVOICE_DIR" default:"./data/invoices"`
	LabelDir   string `envconfig:"DISPATCH_LABEL_DIR" default:"./data/labels"`
}

// Address returns the server address in host:port format.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RedisAddress returns the Redis address in host:port format.
func (c *CacheConfig) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// MySQLDSN returns the MySQL data source name.
func (d *QuoteDBConfig) MySQLDSN() string {
	port := d.Port
	if port == 0 {
		port = 3306
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		d.User, d.Password, d.Host, port, d.Name)
}

// PostgresDSN returns the PostgreSQL connection string.
func (d *QuoteDBConfig) PostgresDSN() string {
	port := d.Port
	if port == 0 {
		port = 5432
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, port, d.Name, d.SSLMode)
}

// IsDevelopment returns true if running in development mode.
func (a *AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

// IsProduction returns true if running in production mode.
func (a *AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration or panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
