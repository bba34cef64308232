package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ReferenceDateLayout is the layout of REFERENCE_DATE.
const ReferenceDateLayout = "2006-01-02"

type Config struct {
	Database  DatabaseConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	HTTP      HTTPConfig
	Data      DataConfig
	Metrics   MetricsConfig
	Live      LiveConfig
	Sessions  SessionConfig
	Telemetry TelemetryConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func (d DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// RedisConfig is optional; an empty Addr disables the latest-reading mirror.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// KafkaConfig is optional; no brokers disables reading fan-out.
type KafkaConfig struct {
	Brokers       []string
	TopicReadings string
}

type HTTPConfig struct {
	Addr           string
	AllowedOrigins []string
	RateLimit      int
	RequestTimeout time.Duration
}

type DataConfig struct {
	// Source is "mock" or "postgres".
	Source        string
	Seed          uint64
	ReferenceDate time.Time
	MigrationsDir string
}

// Windows are the recency windows (entry counts or days) used by the
// aggregation layer.
type Windows struct {
	SummaryYield int `yaml:"summary_yield"`
	OEE          int `yaml:"oee"`
	Line         int `yaml:"line"`
	LowYield     int `yaml:"low_yield"`
	TrendDays    int `yaml:"trend_days"`
	MachineYield int `yaml:"machine_yield"`
	MachineChart int `yaml:"machine_chart"`
}

// AlertThresholds holds the values the alert rules compare against.
type AlertThresholds struct {
	MaxTemperature float64 `yaml:"max_temperature"`
	MinYield       float64 `yaml:"min_yield"`
}

type MetricsConfig struct {
	ConfigFile string
	Windows    Windows         `yaml:"windows"`
	Alerts     AlertThresholds `yaml:"alerts"`
}

type LiveConfig struct {
	Interval  time.Duration
	Workers   int
	LatestTTL time.Duration
}

type SessionConfig struct {
	MaxSessions int
}

type TelemetryConfig struct {
	ServiceName  string
	OTLPEndpoint string
	LogLevel     string
	LogFormat    string
}

// DefaultWindows returns the window sizes the dashboard has always used.
func DefaultWindows() Windows {
	return Windows{
		SummaryYield: 100,
		OEE:          100,
		Line:         30,
		LowYield:     50,
		TrendDays:    7,
		MachineYield: 14,
		MachineChart: 60,
	}
}

func DefaultAlertThresholds() AlertThresholds {
	return AlertThresholds{
		MaxTemperature: 70,
		MinYield:       88,
	}
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not present)
	_ = godotenv.Load()

	refDate, err := time.Parse(ReferenceDateLayout, getEnv("REFERENCE_DATE", "2026-02-08"))
	if err != nil {
		return nil, fmt.Errorf("invalid REFERENCE_DATE: %w", err)
	}

	config := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "factory_user"),
			Password: getEnv("DB_PASSWORD", "factory_pass"),
			DBName:   getEnv("DB_NAME", "factory_db"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers:       getEnvAsList("KAFKA_BROKERS"),
			TopicReadings: getEnv("KAFKA_TOPIC_READINGS", "factory.sensors.live"),
		},
		HTTP: HTTPConfig{
			Addr:           getEnv("HTTP_ADDR", ":8080"),
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),
			RateLimit:      getEnvAsInt("HTTP_RATE_LIMIT", 300),
			RequestTimeout: getEnvAsDuration("HTTP_REQUEST_TIMEOUT", 30*time.Second),
		},
		Data: DataConfig{
			Source:        getEnv("DATA_SOURCE", "mock"),
			Seed:          uint64(getEnvAsInt("MOCK_SEED", 12345)),
			ReferenceDate: refDate,
			MigrationsDir: getEnv("MIGRATIONS_DIR", "migrations"),
		},
		Metrics: MetricsConfig{
			ConfigFile: getEnv("METRICS_CONFIG", ""),
			Windows:    DefaultWindows(),
			Alerts:     DefaultAlertThresholds(),
		},
		Live: LiveConfig{
			Interval:  getEnvAsDuration("LIVE_INTERVAL", 5*time.Second),
			Workers:   getEnvAsInt("LIVE_WORKERS", 4),
			LatestTTL: getEnvAsDuration("LIVE_LATEST_TTL", 24*time.Hour),
		},
		Sessions: SessionConfig{
			MaxSessions: getEnvAsInt("MAX_SESSIONS", 1000),
		},
		Telemetry: TelemetryConfig{
			ServiceName:  getEnv("SERVICE_NAME", "factory-monitor"),
			OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			LogLevel:     getEnv("LOG_LEVEL", "info"),
			LogFormat:    getEnv("LOG_FORMAT", "console"),
		},
	}

	if config.Metrics.ConfigFile != "" {
		if err := config.Metrics.LoadFile(config.Metrics.ConfigFile); err != nil {
			return nil, err
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate rejects settings the live hub and session manager cannot run
// with.
func (c *Config) Validate() error {
	if c.Live.Interval <= 0 {
		return fmt.Errorf("LIVE_INTERVAL must be positive, got %s", c.Live.Interval)
	}
	if c.Live.Workers <= 0 {
		return fmt.Errorf("LIVE_WORKERS must be positive, got %d", c.Live.Workers)
	}
	if c.Sessions.MaxSessions <= 0 {
		return fmt.Errorf("MAX_SESSIONS must be positive, got %d", c.Sessions.MaxSessions)
	}
	return c.Metrics.Windows.Validate()
}

// LoadFile overlays windows and alert thresholds from a YAML file. Keys
// missing from the file keep their current values.
func (m *MetricsConfig) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read metrics config %s: %w", path, err)
	}

	overlay := struct {
		Windows Windows         `yaml:"windows"`
		Alerts  AlertThresholds `yaml:"alerts"`
	}{
		Windows: m.Windows,
		Alerts:  m.Alerts,
	}
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("failed to parse metrics config %s: %w", path, err)
	}

	if err := overlay.Windows.Validate(); err != nil {
		return fmt.Errorf("metrics config %s: %w", path, err)
	}

	m.Windows = overlay.Windows
	m.Alerts = overlay.Alerts
	return nil
}

// Validate rejects non-positive window sizes.
func (w Windows) Validate() error {
	checks := []struct {
		name  string
		value int
	}{
		{"summary_yield", w.SummaryYield},
		{"oee", w.OEE},
		{"line", w.Line},
		{"low_yield", w.LowYield},
		{"trend_days", w.TrendDays},
		{"machine_yield", w.MachineYield},
		{"machine_chart", w.MachineChart},
	}
	for _, c := range checks {
		if c.value <= 0 {
			return fmt.Errorf("window %s must be positive, got %d", c.name, c.value)
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return nil
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
