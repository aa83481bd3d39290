package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// SMTP describes the outgoing mail relay. An empty Host switches email to the log.
type SMTP struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress             string
	DatabaseURI            string
	RedisAddress           string
	RedisPassword          string
	RedisDB                int
	KafkaBrokers           []string
	EventsTopic            string
	JWTSecret              string
	TokenTTL               time.Duration
	FXRatesAddress         string
	SMTP                   SMTP
	ConfirmationBaseURL    string
	OTPTTL                 time.Duration
	ConfirmationTTL        time.Duration
	PaymentMethods         []string
	CORSAllowedOrigins     []string
	OutboxPollInterval     time.Duration
	OutboxBatchSize        int
	WorkerPoolSize         int
	ShutdownTimeout        time.Duration
	BootstrapAdminLogin    string
	BootstrapAdminPassword string
	LogLevel               string
}

const (
	defaultRunAddress          = ":8080"
	defaultRedisAddress        = "localhost:6379"
	defaultKafkaBrokers        = "localhost:9092"
	defaultEventsTopic         = "orderdesk.events"
	defaultJWTSecret           = "change-me-in-production"
	defaultTokenTTL            = 24 * time.Hour
	defaultSMTPPort            = 587
	defaultSMTPFrom            = "orderdesk@localhost"
	defaultConfirmationBaseURL = "http://localhost:3000"
	defaultOTPTTL              = 5 * time.Minute
	defaultConfirmationTTL     = 48 * time.Hour
	defaultPaymentMethods      = "bank_transfer,cash,card,wallet"
	defaultOutboxPollInterval  = 2 * time.Second
	defaultOutboxBatchSize     = 32
	defaultWorkerPoolSize      = 4
	defaultShutdownTimeout     = 10 * time.Second
	defaultEnvFile             = ".env"
	defaultLogLevel            = "info"
)

// Load parses configuration from flags, environment variables and an optional .env file.
// Process environment takes precedence over the file.
func Load() (*Config, error) {
	path := defaultEnvFile
	if v, ok := os.LookupEnv("ENV_FILE"); ok && v != "" {
		path = v
	}
	dotenv, err := readDotenv(path)
	if err != nil {
		return nil, err
	}
	return load(os.Args[1:], chain(os.LookupEnv, mapLookup(dotenv)))
}

type envLookup func(string) (string, bool)

func readDotenv(path string) (map[string]string, error) {
	values, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return values, nil
}

func mapLookup(m map[string]string) envLookup {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func chain(lookups ...envLookup) envLookup {
	return func(key string) (string, bool) {
		for _, l := range lookups {
			if v, ok := l(key); ok && v != "" {
				return v, true
			}
		}
		return "", false
	}
}

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:     getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:    getString(lookup, "DATABASE_URI", ""),
		RedisAddress:   getString(lookup, "REDIS_ADDRESS", defaultRedisAddress),
		RedisPassword:  getString(lookup, "REDIS_PASSWORD", ""),
		RedisDB:        getInt(lookup, "REDIS_DB", 0),
		EventsTopic:    getString(lookup, "EVENTS_TOPIC", defaultEventsTopic),
		JWTSecret:      getString(lookup, "JWT_SECRET", defaultJWTSecret),
		TokenTTL:       getDuration(lookup, "TOKEN_TTL", defaultTokenTTL),
		FXRatesAddress: getString(lookup, "FX_RATES_ADDRESS", ""),
		SMTP: SMTP{
			Host:     getString(lookup, "SMTP_HOST", ""),
			Port:     getInt(lookup, "SMTP_PORT", defaultSMTPPort),
			Username: getString(lookup, "SMTP_USERNAME", ""),
			Password: getString(lookup, "SMTP_PASSWORD", ""),
			From:     getString(lookup, "SMTP_FROM", defaultSMTPFrom),
		},
		ConfirmationBaseURL:    getString(lookup, "CONFIRMATION_BASE_URL", defaultConfirmationBaseURL),
		OTPTTL:                 getDuration(lookup, "OTP_TTL", defaultOTPTTL),
		ConfirmationTTL:        getDuration(lookup, "CONFIRMATION_TTL", defaultConfirmationTTL),
		PaymentMethods:         getList(lookup, "PAYMENT_METHODS", defaultPaymentMethods),
		CORSAllowedOrigins:     getList(lookup, "CORS_ALLOWED_ORIGINS", ""),
		OutboxPollInterval:     getDuration(lookup, "OUTBOX_POLL_INTERVAL", defaultOutboxPollInterval),
		OutboxBatchSize:        getInt(lookup, "OUTBOX_BATCH_SIZE", defaultOutboxBatchSize),
		WorkerPoolSize:         getInt(lookup, "WORKER_POOL_SIZE", defaultWorkerPoolSize),
		ShutdownTimeout:        getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		BootstrapAdminLogin:    getString(lookup, "BOOTSTRAP_ADMIN_LOGIN", ""),
		BootstrapAdminPassword: getString(lookup, "BOOTSTRAP_ADMIN_PASSWORD", ""),
		LogLevel:               getString(lookup, "LOG_LEVEL", defaultLogLevel),
	}

	fset := flag.NewFlagSet("orderdesk", flag.ContinueOnError)
	fset.SetOutput(io.Discard)

	var (
		brokers            = getString(lookup, "KAFKA_BROKERS", defaultKafkaBrokers)
		pollIntervalStr    = cfg.OutboxPollInterval.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
	)

	fset.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fset.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fset.StringVar(&cfg.RedisAddress, "redis", cfg.RedisAddress, "Redis address for one-time codes")
	fset.StringVar(&brokers, "kafka", brokers, "Comma separated Kafka brokers")
	fset.StringVar(&cfg.EventsTopic, "topic", cfg.EventsTopic, "Kafka topic for domain events")
	fset.StringVar(&cfg.FXRatesAddress, "fx", cfg.FXRatesAddress, "FX rate service base URL")
	fset.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "Secret for signing auth tokens")
	fset.IntVar(&cfg.WorkerPoolSize, "worker-pool", cfg.WorkerPoolSize, "Number of concurrent outbox workers")
	fset.StringVar(&pollIntervalStr, "outbox-poll", pollIntervalStr, "Interval between outbox polls")
	fset.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fset.IntVar(&cfg.OutboxBatchSize, "outbox-batch", cfg.OutboxBatchSize, "Maximum events per outbox batch")
	fset.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn or error")

	if err := fset.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.OutboxPollInterval, err = time.ParseDuration(pollIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid outbox poll interval: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	cfg.KafkaBrokers = splitList(brokers)

	if cfg.JWTSecret, err = readSecretFile(lookup, "JWT_SECRET_FILE", cfg.JWTSecret); err != nil {
		return nil, fmt.Errorf("read jwt secret file: %w", err)
	}

	if cfg.SMTP.Password, err = readSecretFile(lookup, "SMTP_PASSWORD_FILE", cfg.SMTP.Password); err != nil {
		return nil, fmt.Errorf("read smtp password file: %w", err)
	}

	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = defaultWorkerPoolSize
	}

	if cfg.OutboxBatchSize <= 0 {
		cfg.OutboxBatchSize = defaultOutboxBatchSize
	}

	if cfg.OutboxPollInterval <= 0 {
		cfg.OutboxPollInterval = defaultOutboxPollInterval
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.OTPTTL <= 0 {
		cfg.OTPTTL = defaultOTPTTL
	}

	if cfg.ConfirmationTTL <= 0 {
		cfg.ConfirmationTTL = defaultConfirmationTTL
	}

	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, fmt.Errorf("at least one kafka broker must be provided")
	}

	if len(cfg.PaymentMethods) == 0 {
		return nil, fmt.Errorf("at least one payment method must be configured")
	}

	if (cfg.BootstrapAdminLogin == "") != (cfg.BootstrapAdminPassword == "") {
		return nil, fmt.Errorf("bootstrap admin login and password must be set together")
	}

	return cfg, nil
}

func readSecretFile(lookup envLookup, key, current string) (string, error) {
	path, ok := lookup(key)
	if !ok || path == "" {
		return current, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(content)), nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getList(lookup envLookup, key, def string) []string {
	return splitList(getString(lookup, key, def))
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
