package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

// Driver names accepted in DB_DRIVER.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Port     string `envconfig:"PORT" default:"8080"`
	DBDriver string `envconfig:"DB_DRIVER" default:"sqlite"`
	DBDSN    string `envconfig:"DB_DSN" default:"kitobim.db"` // sqlite file in project root
	Seed     bool   `envconfig:"SEED" default:"true"`

	LogFile  string `envconfig:"LOG_FILE"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	JWTSecret     string        `envconfig:"JWT_SECRET" default:"dev-secret-change-me"`
	TokenTTL      time.Duration `envconfig:"TOKEN_TTL" default:"72h"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"720h"`
	SecureCookies bool          `envconfig:"SECURE_COOKIES" default:"false"` // set true behind HTTPS
}

// Load reads an optional .env file and then the process environment.
func Load(envFiles ...string) (Config, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load(envFiles...)

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, errors.Wrap(err, "config")
	}
	switch cfg.DBDriver {
	case DriverSQLite, DriverPostgres:
	default:
		return Config{}, errors.Errorf("config: unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("config: JWT_SECRET must not be empty")
	}
	return cfg, nil
}

// Addr is the listen address for fiber.
func (c Config) Addr() string { return ":" + c.Port }
