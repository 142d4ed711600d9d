package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, etc.)
// - default: Values common across all environments (timezone, timeout, hold TTL, etc.)
// -----------------------------------------------------------------------------

type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	DB      DBConfig
	Redis   RedisConfig
	Kafka   KafkaConfig
	CORS    CORSConfig
	Log     LogConfig
	Booking BookingConfig
	Payment PaymentConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

type StorageConfig struct {
	Backend         string `envconfig:"STORAGE_BACKEND" default:"memory"`
	CatalogFixtures string `envconfig:"CATALOG_FIXTURES" default:"fixtures/catalog.json"`
	Migrate         bool   `envconfig:"STORAGE_MIGRATE" default:"true"`
	// Seed upserts CatalogFixtures into PostgreSQL on startup.
	Seed bool `envconfig:"STORAGE_SEED" default:"false"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER"`
	Password string `envconfig:"DB_PASSWORD"`
	DBName   string `envconfig:"DB_NAME"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone string `envconfig:"DB_TIMEZONE" default:"UTC"`
	MaxConns int32  `envconfig:"DB_MAX_CONNS" default:"20"`
}

// Empty Addr disables the distributed site lock.
type RedisConfig struct {
	Addr     string        `envconfig:"REDIS_ADDR"`
	Password string        `envconfig:"REDIS_PASSWORD"`
	DB       int           `envconfig:"REDIS_DB" default:"0"`
	LockTTL  time.Duration `envconfig:"REDIS_LOCK_TTL" default:"5s"`
}

// Empty Brokers routes booking events to the log instead of Kafka.
type KafkaConfig struct {
	Brokers  []string `envconfig:"KAFKA_BROKERS"`
	Topic    string   `envconfig:"KAFKA_BOOKING_TOPIC" default:"campbook.booking-events"`
	ClientID string   `envconfig:"KAFKA_CLIENT_ID" default:"campbook"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"UTC"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"0"`
}

type BookingConfig struct {
	HoldTTL       time.Duration `envconfig:"BOOKING_HOLD_TTL" default:"15m"`
	MaxHoldTTL    time.Duration `envconfig:"BOOKING_MAX_HOLD_TTL" default:"1h"`
	MaxStayNights int           `envconfig:"BOOKING_MAX_STAY_NIGHTS" default:"28"`
	SweepInterval time.Duration `envconfig:"BOOKING_SWEEP_INTERVAL" default:"1m"`
	SweepBatch    int           `envconfig:"BOOKING_SWEEP_BATCH" default:"100"`
	Currency      string        `envconfig:"BOOKING_CURRENCY" default:"USD"`
}

type PaymentConfig struct {
	IntentPrefix string `envconfig:"PAYMENT_INTENT_PREFIX" default:"pi_"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

func (c Config) Validate() error {
	switch c.Storage.Backend {
	case StorageMemory:
	case StoragePostgres:
		if c.DB.User == "" || c.DB.DBName == "" {
			return fmt.Errorf("DB_USER and DB_NAME are required for the %s backend", StoragePostgres)
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.Storage.Backend)
	}
	if c.Booking.HoldTTL <= 0 {
		return fmt.Errorf("BOOKING_HOLD_TTL must be positive, got %s", c.Booking.HoldTTL)
	}
	if c.Booking.MaxHoldTTL < c.Booking.HoldTTL {
		return fmt.Errorf("BOOKING_MAX_HOLD_TTL (%s) is shorter than BOOKING_HOLD_TTL (%s)", c.Booking.MaxHoldTTL, c.Booking.HoldTTL)
	}
	if len(c.Booking.Currency) != 3 {
		return fmt.Errorf("BOOKING_CURRENCY must be an ISO 4217 code, got %q", c.Booking.Currency)
	}
	if c.Booking.MaxStayNights <= 0 {
		return fmt.Errorf("BOOKING_MAX_STAY_NIGHTS must be positive, got %d", c.Booking.MaxStayNights)
	}
	return nil
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		Storage: StorageConfig{
			Backend: StorageMemory,
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
			TimeZone: "UTC",
			MaxConns: 10,
		},
		Redis: RedisConfig{
			LockTTL: 5 * time.Second,
		},
		Kafka: KafkaConfig{
			Topic:    "campbook.booking-events.test",
			ClientID: "campbook-test",
		},
		Log: LogConfig{
			Level:      "error", // Error level only for tests
			TimeZone:   "UTC",
			TimeFormat: "2006-01-02 15:04:05.000",
		},
		Booking: BookingConfig{
			HoldTTL:       15 * time.Minute,
			MaxHoldTTL:    time.Hour,
			MaxStayNights: 28,
			SweepInterval: time.Minute,
			SweepBatch:    100,
			Currency:      "USD",
		},
		Payment: PaymentConfig{
			IntentPrefix: "pi_",
		},
	}
}
