package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "FLOWCANVAS_"

// Settings is the resolved configuration of a flowcanvas server.
type Settings struct {
	StoreBackend string        `validate:"required,oneof=memory sqlite redis"`
	SQLitePath   string        `validate:"required_if=StoreBackend sqlite"`
	RedisURL     string        `validate:"required_if=StoreBackend redis,omitempty,url"`
	RedisPrefix  string        `validate:"max=64"`
	FlowKey      string        `validate:"required,max=256"`
	StoreTimeout time.Duration `validate:"gte=0"`

	ListenAddr      string        `validate:"required"`
	ShutdownTimeout time.Duration `validate:"gt=0"`

	LogLevel  string `validate:"oneof=debug info warn error"`
	LogFormat string `validate:"oneof=json console"`

	Metrics bool
	Tracing bool
}

// Default returns the settings used when nothing else is configured.
func Default() Settings {
	return Settings{
		StoreBackend:    "sqlite",
		SQLitePath:      "flowcanvas.db",
		RedisPrefix:     "flowcanvas:",
		FlowKey:         "flow-key",
		StoreTimeout:    5 * time.Second,
		ListenAddr:      ":8080",
		ShutdownTimeout: 10 * time.Second,
		LogLevel:        "info",
		LogFormat:       "json",
	}
}

// FromConfig overlays values found in cfg on top of base.
//
// Recognized layout:
//
//	store:
//	  backend: sqlite
//	  sqlite_path: flow.db
//	  redis_url: redis://localhost:6379/0
//	  redis_prefix: "flowcanvas:"
//	  flow_key: flow-key
//	  timeout: 5s
//	server:
//	  listen: ":8080"
//	  shutdown_timeout: 10s
//	log:
//	  level: info
//	  format: json
//	telemetry:
//	  metrics: false
//	  tracing: false
func FromConfig(cfg Config, base Settings) Settings {
	s := base
	st := cfg.Section("store")
	s.StoreBackend = st.String("backend", s.StoreBackend)
	s.SQLitePath = st.String("sqlite_path", s.SQLitePath)
	s.RedisURL = st.String("redis_url", s.RedisURL)
	s.RedisPrefix = st.String("redis_prefix", s.RedisPrefix)
	s.FlowKey = st.String("flow_key", s.FlowKey)
	s.StoreTimeout = st.Duration("timeout", s.StoreTimeout)

	s.ListenAddr = cfg.String("server.listen", s.ListenAddr)
	s.ShutdownTimeout = cfg.Duration("server.shutdown_timeout", s.ShutdownTimeout)

	s.LogLevel = cfg.String("log.level", s.LogLevel)
	s.LogFormat = cfg.String("log.format", s.LogFormat)

	s.Metrics = cfg.Bool("telemetry.metrics", s.Metrics)
	s.Tracing = cfg.Bool("telemetry.tracing", s.Tracing)
	return s
}

// ApplyEnv overrides fields from FLOWCANVAS_* environment variables.
// Unparsable numbers and booleans are ignored.
func (s *Settings) ApplyEnv() {
	applyString("STORE_BACKEND", &s.StoreBackend)
	applyString("SQLITE_PATH", &s.SQLitePath)
	applyString("REDIS_URL", &s.RedisURL)
	applyString("REDIS_PREFIX", &s.RedisPrefix)
	applyString("FLOW_KEY", &s.FlowKey)
	applyDuration("STORE_TIMEOUT", &s.StoreTimeout)
	applyString("LISTEN_ADDR", &s.ListenAddr)
	applyDuration("SHUTDOWN_TIMEOUT", &s.ShutdownTimeout)
	applyString("LOG_LEVEL", &s.LogLevel)
	applyString("LOG_FORMAT", &s.LogFormat)
	applyBool("METRICS", &s.Metrics)
	applyBool("TRACING", &s.Tracing)
}

var settingsValidator = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the settings and reports every problem at once.
func (s Settings) Validate() error {
	err := settingsValidator.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("invalid settings: %s", strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return fe.Field() + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "url":
		return fe.Field() + " must be a URL"
	default:
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}

// Load resolves settings: defaults, then the optional file, then the
// environment (including an optional .env file in the working directory).
func Load(path string) (Settings, error) {
	// .env is optional.
	_ = godotenv.Load()

	s := Default()
	if path != "" {
		var err error
		if s, err = LoadFile(path, s); err != nil {
			return Settings{}, err
		}
	}
	s.ApplyEnv()

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func applyString(key string, target *string) {
	if v := os.Getenv(EnvPrefix + key); v != "" {
		*target = v
	}
}

func applyDuration(key string, target *time.Duration) {
	if v := os.Getenv(EnvPrefix + key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*target = d
		}
	}
}

func applyBool(key string, target *bool) {
	if v := os.Getenv(EnvPrefix + key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*target = b
		}
	}
}
