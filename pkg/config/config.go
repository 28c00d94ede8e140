package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix namespaces every environment variable the studio reads.
	EnvPrefix = "EMBRO"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv     = "EMBRO_APP_ENV"
	EnvAPIBaseURL = "EMBRO_API_BASE_URL"
)

type Config struct {
	App       AppConfig
	API       APIConfig
	Session   SessionConfig
	Checkout  CheckoutConfig
	Defaults  DefaultsConfig
	DevServer DevServerConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Session.ensurePath(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"EMBRO_APP_ENV" default:"dev"`
	LogLevel     string `envconfig:"EMBRO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"EMBRO_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type APIConfig struct {
	// BaseURL points at the embroidery backend, including the /api root.
	BaseURL string `envconfig:"EMBRO_API_BASE_URL" default:"http://localhost:8000/api"`

	// Timeout applies to ordinary calls; AI generation carries its own, longer
	// deadline because image synthesis regularly runs over a minute.
	Timeout         time.Duration `envconfig:"EMBRO_API_TIMEOUT" default:"120s"`
	GenerateTimeout time.Duration `envconfig:"EMBRO_API_GENERATE_TIMEOUT" default:"180s"`
	UserAgent       string        `envconfig:"EMBRO_API_USER_AGENT" default:"embroidery-studio"`
}

type SessionConfig struct {
	// DBPath locates the local session database. Empty means a per-user
	// default under the home directory.
	DBPath string `envconfig:"EMBRO_SESSION_DB_PATH"`
}

type CheckoutConfig struct {
	// OrdersRedirectDelay is the pause between a successful checkout and the
	// switch to the orders view, long enough for the confirmation to be seen.
	OrdersRedirectDelay time.Duration `envconfig:"EMBRO_CHECKOUT_REDIRECT_DELAY" default:"1500ms"`
}

type DefaultsConfig struct {
	MachineBrand     string `envconfig:"EMBRO_DEFAULT_MACHINE_BRAND" default:"Brother"`
	Format           string `envconfig:"EMBRO_DEFAULT_FORMAT" default:"pes"`
	EmbroiderySizeCm int    `envconfig:"EMBRO_DEFAULT_SIZE_CM" default:"10"`
}

type DevServerConfig struct {
	// Addr is where the stub backend listens.
	Addr string `envconfig:"EMBRO_DEV_SERVER_ADDR" default:":8000"`
}

func (s *SessionConfig) ensurePath() error {
	if s.DBPath != "" {
		return nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("resolving session db path: %w", err)
	}
	s.DBPath = filepath.Join(home, ".embroidery-studio", "session.db")
	return nil
}
