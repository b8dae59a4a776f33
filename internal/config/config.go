package config

import (
	"errors"
	"fmt"
	"log"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"primetrade-server/internal/utils"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const minSecretLength = 32

// Config holds the application configuration. It is built once by LoadConfig
// and passed down explicitly.
type Config struct {
	Env         string `envconfig:"ENV" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding string `envconfig:"LOG_ENCODING" default:"json"`
	ServerPort  string `envconfig:"SERVER_PORT" default:"8000"`

	// Database. DatabaseURL wins over the DB_* parts when set.
	DatabaseURL    string        `envconfig:"DATABASE_URL"`
	DBHost         string        `envconfig:"DB_HOST" default:"localhost"`
	DBPort         string        `envconfig:"DB_PORT" default:"5432"`
	DBUser         string        `envconfig:"DB_USER" default:"postgres"`
	DBName         string        `envconfig:"DB_NAME" default:"primetrade"`
	DBSSLMode      string        `envconfig:"DB_SSL_MODE" default:"disable"`
	DBPassword     string        `envconfig:"DB_PASSWORD"`
	DBMaxConns     int32         `envconfig:"DB_MAX_CONNS" default:"10"`
	DBIdleTimeout  time.Duration `envconfig:"DB_IDLE_TIMEOUT" default:"5m"`
	MigrateOnStart bool          `envconfig:"MIGRATE_ON_START" default:"true"`

	// Tokens & passwords. Secrets may come from env or from SecretsDir.
	JWTSecret                string `envconfig:"JWT_SECRET"`
	JWTAlgorithm             string `envconfig:"JWT_ALGORITHM" default:"HS256"`
	AccessTokenExpireMinutes int    `envconfig:"ACCESS_TOKEN_EXPIRE_MINUTES" default:"60"`
	PasswordPepper           string `envconfig:"PASSWORD_PEPPER"`
	BcryptCost               int    `envconfig:"BCRYPT_COST" default:"10"`

	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`

	// Activity events. Empty URL disables publishing.
	RabbitMQURL   string `envconfig:"RABBITMQ_URL"`
	ActivityQueue string `envconfig:"ACTIVITY_QUEUE" default:"auth_activity_events"`

	// Admin bootstrap, skipped when AdminEmail is empty.
	AdminEmail    string `envconfig:"ADMIN_EMAIL"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD"`

	SecretsDir string `envconfig:"SECRETS_DIR" default:"/run/secrets"`
}

// GetAllowedOrigins splits the CORSAllowedOrigins string into a slice.
func (c *Config) GetAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}
	var origins []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// AccessTokenTTL is the access token lifetime.
func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenExpireMinutes) * time.Minute
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// DSN returns the Postgres connection URL.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	u := url.URL{
		Scheme:   "postgres",
		Host:     net.JoinHostPort(c.DBHost, c.DBPort),
		Path:     "/" + c.DBName,
		RawQuery: url.Values{"sslmode": []string{c.DBSSLMode}}.Encode(),
	}
	if c.DBPassword != "" {
		u.User = url.UserPassword(c.DBUser, c.DBPassword)
	} else {
		u.User = url.User(c.DBUser)
	}
	return u.String()
}

// Validate checks values that would otherwise fail deep inside a component.
// Warnings are returned for the caller to log once a logger exists.
func (c *Config) Validate() (warnings []string, err error) {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET (or secret jwt_secret) is required"))
	} else if len(c.JWTSecret) < minSecretLength {
		warnings = append(warnings, fmt.Sprintf("JWT secret is shorter than %d bytes", minSecretLength))
	}
	switch c.JWTAlgorithm {
	case "HS256", "HS384", "HS512":
	default:
		errs = append(errs, fmt.Errorf("JWT_ALGORITHM %q is not supported, use HS256, HS384 or HS512", c.JWTAlgorithm))
	}
	if c.AccessTokenExpireMinutes <= 0 {
		errs = append(errs, fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be positive, got %d", c.AccessTokenExpireMinutes))
	}
	if c.ServerPort == "" {
		errs = append(errs, errors.New("SERVER_PORT must not be empty"))
	}
	if c.PasswordPepper == "" {
		warnings = append(warnings, "PASSWORD_PEPPER is empty, passwords are hashed without a pepper")
	}
	if c.AdminEmail != "" && c.AdminPassword == "" {
		warnings = append(warnings, "ADMIN_EMAIL is set without an admin password, a new admin account cannot be created")
	}
	return warnings, errors.Join(errs...)
}

// secretField binds a config field to its Docker secret file name.
type secretField struct {
	name  string
	value *string
}

// loadSecrets fills empty secret fields from SecretsDir. Env values win.
func (c *Config) loadSecrets() {
	for _, s := range []secretField{
		{"db_password", &c.DBPassword},
		{"jwt_secret", &c.JWTSecret},
		{"password_pepper", &c.PasswordPepper},
		{"rabbitmq_url", &c.RabbitMQURL},
		{"admin_password", &c.AdminPassword},
	} {
		if *s.value != "" {
			continue
		}
		if v, err := utils.ReadSecretFrom(c.SecretsDir, s.name); err == nil {
			*s.value = v
		}
	}
}

// LoadConfig loads configuration from an optional .env file, environment variables and secrets.
func LoadConfig(envFilePath string) (*Config, error) {
	if envFilePath != "" {
		if _, err := os.Stat(envFilePath); err == nil {
			if err := godotenv.Load(envFilePath); err != nil {
				log.Printf("Warning: Could not load %s file: %v", envFilePath, err)
			}
		} else if !os.IsNotExist(err) {
			log.Printf("Warning: Error checking %s file: %v", envFilePath, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("error processing env vars: %w", err)
	}
	cfg.loadSecrets()
	cfg.JWTAlgorithm = strings.ToUpper(strings.TrimSpace(cfg.JWTAlgorithm))

	if _, err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}
