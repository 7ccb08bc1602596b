package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// MaxWriters bounds the writer partition space. Snowflake node IDs are
// 10 bits, so writer IDs above 1023 cannot be encoded into event IDs.
const MaxWriters = 1024

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	LogLevel    string

	// Writer partition. WriterID must be unique per producer process;
	// it is embedded in every sequence number and export event ID.
	WriterID    int
	WriterCount int
	PrefixYear  int

	// Atomic unit retry budget before the writer halts.
	RetryBudget int

	// Export pipeline tuning.
	ExportBatchSize     int
	ExportFlushInterval int // seconds

	OTLPEndpoint string
	OtelEnabled  bool

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
}

// Load loads configuration from environment variables and .env file.
// Writer partition misconfiguration is reported here, before any data
// is produced, never per-call.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		AppName:             getenv("APP_SERVICE", "healthcore"),
		AppVersion:          getenv("APP_VERSION", "0.1.0"),
		Environment:         getenv("ENVIRONMENT", "development"),
		LogLevel:            getenv("LOG_LEVEL", "info"),
		WriterID:            getenvInt("WRITER_ID", 0),
		WriterCount:         getenvInt("WRITER_COUNT", 1),
		PrefixYear:          getenvInt("PREFIX_YEAR", 2024),
		RetryBudget:         getenvInt("RETRY_BUDGET", 3),
		ExportBatchSize:     getenvInt("EXPORT_BATCH_SIZE", 100),
		ExportFlushInterval: getenvInt("EXPORT_FLUSH_INTERVAL", 1),
		OTLPEndpoint:        getenv("OTLP_ENDPOINT", "localhost:4317"),
		OtelEnabled:         getenvBool("OTEL_ENABLED", false),
		DBType:              getenv("DATABASE_TYPE", "postgres"),
		DBHost:              getenv("DATABASE_HOST", "localhost"),
		DBPort:              getenv("DATABASE_PORT", "5432"),
		DBName:              getenv("DATABASE_NAME", "healthcore"),
		DBUser:              getenv("DATABASE_USER", "postgres"),
		DBPassword:          getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:           getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:       getenvInt("DATABASE_MAX_IDLE_CONN", 4),
		DBMaxOpenConn:       getenvInt("DATABASE_MAX_OPEN_CONN", 16),
		DBConnMaxLifetime:   getenvInt("DATABASE_CONN_MAX_LIFETIME", 3600),
	}

	if err := cfg.ValidatePartition(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ValidatePartition checks the writer partition settings. Overlapping or
// out-of-range partitions cannot be repaired at runtime, so any violation
// is fatal at startup.
func (c Config) ValidatePartition() error {
	if c.WriterCount < 1 || c.WriterCount > MaxWriters {
		return fmt.Errorf("WRITER_COUNT %d outside 1..%d", c.WriterCount, MaxWriters)
	}
	if c.WriterID < 0 || c.WriterID >= c.WriterCount {
		return fmt.Errorf("WRITER_ID %d outside partition range 0..%d", c.WriterID, c.WriterCount-1)
	}
	return nil
}

func (c Config) IsDevelopment() bool {
	switch strings.ToLower(strings.TrimSpace(c.Environment)) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}
