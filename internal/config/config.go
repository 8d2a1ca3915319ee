package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/AntonStoeckl/library-circulation/circulation/core"
)

// EnvPrefix is the prefix of all environment variables, e.g. CIRCULATION_STORE_DRIVER.
const EnvPrefix = "CIRCULATION"

// Keys of the configuration. Nested keys map to environment variables with "_" for ".", e.g. STORE_DSN.
const (
	KeyStoreDriver          = "store.driver"
	KeyStoreDSN             = "store.dsn"
	KeyStoreReplicaDSN      = "store.replica_dsn"
	KeyStoreAdapter         = "store.adapter"
	KeyStoreTable           = "store.table"
	KeyHTTPListen           = "http.listen"
	KeyHTTPCORSOrigins      = "http.cors_origins"
	KeyMetricsListen        = "metrics.listen"
	KeyOTLPEndpoint         = "otlp.endpoint"
	KeyServiceName          = "service.name"
	KeyRedisAddr            = "redis.addr"
	KeyRedisPassword        = "redis.password"
	KeyRedisDB              = "redis.db"
	KeyRedisChannelPrefix   = "redis.channel_prefix"
	KeyLogLevel             = "log.level"
	KeyLogFormat            = "log.format"
	KeyRetryMaxAttempts     = "retry.max_attempts"
	KeyRetryBaseDelay       = "retry.base_delay"
	KeyLoanDefaultDays      = "loan.default_days"
	KeyLoanDurations        = "loan.durations"
	KeySignalsBufferSize    = "signals.buffer_size"
	KeySignalsDeliveryLimit = "signals.delivery_timeout"
	KeyShutdownTimeout      = "shutdown.timeout"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	AdapterPGX  = "pgx"
	AdapterSQL  = "sql"
	AdapterSQLX = "sqlx"
)

var (
	ErrLoadingEnvFileFailed = errors.New("loading env file failed")
	ErrReadingConfigFailed  = errors.New("reading config file failed")
	ErrInvalidConfig        = errors.New("invalid configuration")
)

// Config is the resolved configuration of the circulation service.
type Config struct {
	StoreDriver     string
	StoreDSN        string
	StoreReplicaDSN string
	StoreAdapter    string
	StoreTable      string

	HTTPListen      string
	HTTPCORSOrigins []string
	MetricsListen   string
	OTLPEndpoint    string
	ServiceName     string

	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	RedisChannelPrefix string

	LogLevel  string
	LogFormat string

	RetryMaxAttempts int
	RetryBaseDelay   time.Duration

	LoanDefaultDays int
	LoanDurations   map[core.ItemTypeString]int

	SignalsBufferSize      int
	SignalsDeliveryTimeout time.Duration

	ShutdownTimeout time.Duration
}

// NewViper returns a viper instance with defaults and environment binding.
//
// envFile is loaded with godotenv first when it exists, variables already set
// in the environment win. configFile is an optional YAML file.
func NewViper(envFile string, configFile string) (*viper.Viper, error) {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err = godotenv.Load(envFile); err != nil {
				return nil, errors.Join(ErrLoadingEnvFileFailed, err)
			}
		}
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Join(ErrReadingConfigFailed, err)
		}
	}

	return v, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyStoreDriver, DriverSQLite)
	v.SetDefault(KeyStoreDSN, "circulation.db")
	v.SetDefault(KeyStoreAdapter, AdapterPGX)
	v.SetDefault(KeyStoreTable, "events")
	v.SetDefault(KeyHTTPListen, ":8080")
	v.SetDefault(KeyMetricsListen, ":9464")
	v.SetDefault(KeyServiceName, "library-circulation")
	v.SetDefault(KeyRedisChannelPrefix, "circulation")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "json")
	v.SetDefault(KeyRetryMaxAttempts, 6)
	v.SetDefault(KeyRetryBaseDelay, 10*time.Millisecond)
	v.SetDefault(KeyLoanDefaultDays, core.DefaultLoanDays)
	v.SetDefault(KeySignalsBufferSize, 1024)
	v.SetDefault(KeySignalsDeliveryLimit, 5*time.Second)
	v.SetDefault(KeyShutdownTimeout, 10*time.Second)
}

// Load resolves and validates the configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	durations, err := parseLoanDurations(v.Get(KeyLoanDurations))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		StoreDriver:            strings.ToLower(strings.TrimSpace(v.GetString(KeyStoreDriver))),
		StoreDSN:               strings.TrimSpace(v.GetString(KeyStoreDSN)),
		StoreReplicaDSN:        strings.TrimSpace(v.GetString(KeyStoreReplicaDSN)),
		StoreAdapter:           strings.ToLower(strings.TrimSpace(v.GetString(KeyStoreAdapter))),
		StoreTable:             strings.TrimSpace(v.GetString(KeyStoreTable)),
		HTTPListen:             v.GetString(KeyHTTPListen),
		HTTPCORSOrigins:        splitList(v.GetString(KeyHTTPCORSOrigins)),
		MetricsListen:          v.GetString(KeyMetricsListen),
		OTLPEndpoint:           strings.TrimSpace(v.GetString(KeyOTLPEndpoint)),
		ServiceName:            v.GetString(KeyServiceName),
		RedisAddr:              strings.TrimSpace(v.GetString(KeyRedisAddr)),
		RedisPassword:          v.GetString(KeyRedisPassword),
		RedisDB:                v.GetInt(KeyRedisDB),
		RedisChannelPrefix:     v.GetString(KeyRedisChannelPrefix),
		LogLevel:               strings.ToLower(v.GetString(KeyLogLevel)),
		LogFormat:              strings.ToLower(v.GetString(KeyLogFormat)),
		RetryMaxAttempts:       v.GetInt(KeyRetryMaxAttempts),
		RetryBaseDelay:         v.GetDuration(KeyRetryBaseDelay),
		LoanDefaultDays:        v.GetInt(KeyLoanDefaultDays),
		LoanDurations:          durations,
		SignalsBufferSize:      v.GetInt(KeySignalsBufferSize),
		SignalsDeliveryTimeout: v.GetDuration(KeySignalsDeliveryLimit),
		ShutdownTimeout:        v.GetDuration(KeyShutdownTimeout),
	}

	if err = cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.StoreDriver {
	case DriverSQLite, DriverPostgres:
	default:
		return invalid("%s must be %q or %q, got %q", KeyStoreDriver, DriverSQLite, DriverPostgres, c.StoreDriver)
	}

	if c.StoreDSN == "" {
		return invalid("%s must not be empty", KeyStoreDSN)
	}

	if c.StoreDriver == DriverPostgres {
		switch c.StoreAdapter {
		case AdapterPGX, AdapterSQL, AdapterSQLX:
		default:
			return invalid("%s must be one of pgx, sql, sqlx, got %q", KeyStoreAdapter, c.StoreAdapter)
		}
	}

	if c.StoreReplicaDSN != "" && (c.StoreDriver != DriverPostgres || c.StoreAdapter != AdapterPGX) {
		return invalid("%s needs the postgres driver with the pgx adapter", KeyStoreReplicaDSN)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return invalid("%s must be one of debug, info, warn, error, got %q", KeyLogLevel, c.LogLevel)
	}

	switch c.LogFormat {
	case "json", "text":
	default:
		return invalid("%s must be json or text, got %q", KeyLogFormat, c.LogFormat)
	}

	if c.RetryMaxAttempts < 1 {
		return invalid("%s must be at least 1", KeyRetryMaxAttempts)
	}

	if c.RetryBaseDelay < 0 {
		return invalid("%s must not be negative", KeyRetryBaseDelay)
	}

	if c.SignalsBufferSize < 0 {
		return invalid("%s must not be negative", KeySignalsBufferSize)
	}

	if c.SignalsDeliveryTimeout <= 0 {
		return invalid("%s must be positive", KeySignalsDeliveryLimit)
	}

	return nil
}

// LoanDurationsTable builds the core lookup table.
func (c Config) LoanDurationsTable() core.LoanDurations {
	return core.BuildLoanDurations(c.LoanDefaultDays, c.LoanDurations)
}

// parseLoanDurations accepts a map from a config file or "book=28,dvd=7" from the environment.
func parseLoanDurations(raw any) (map[core.ItemTypeString]int, error) {
	durations := make(map[core.ItemTypeString]int)

	switch value := raw.(type) {
	case nil:
		return durations, nil

	case map[string]any:
		for itemType, days := range value {
			n, err := strconv.Atoi(strings.TrimSpace(fmt.Sprint(days)))
			if err != nil {
				return nil, invalid("%s: days of %q: %v", KeyLoanDurations, itemType, err)
			}
			durations[itemType] = n
		}

		return durations, nil

	case string:
		for _, pair := range splitList(value) {
			itemType, days, ok := strings.Cut(pair, "=")
			if !ok {
				return nil, invalid("%s: %q is not type=days", KeyLoanDurations, pair)
			}

			n, err := strconv.Atoi(strings.TrimSpace(days))
			if err != nil {
				return nil, invalid("%s: days of %q: %v", KeyLoanDurations, itemType, err)
			}
			durations[strings.TrimSpace(itemType)] = n
		}

		return durations, nil

	default:
		return nil, invalid("%s has unsupported type %T", KeyLoanDurations, raw)
	}
}

func splitList(raw string) []string {
	var items []string

	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}

	return items
}

func invalid(format string, args ...any) error {
	return errors.Join(ErrInvalidConfig, fmt.Errorf(format, args...))
}
