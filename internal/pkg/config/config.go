package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection,
//   mailer credentials), security settings
// - default: Values common across all environments (windows, retry tuning)
// -----------------------------------------------------------------------------

type Config struct {
	Server   ServerConfig
	DB       DBConfig
	CORS     CORSConfig
	Log      LogConfig
	Auth     AuthConfig
	Mailer   MailerConfig
	Booking  BookingConfig
	Dispatch DispatchConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone string `envconfig:"DB_TIMEZONE" default:"Europe/London"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"Europe/London"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"0"`
}

// AuthConfig verifies tokens issued by the external identity provider.
// This service never issues tokens itself; it only reads the verified
// admin claim as a fact.
type AuthConfig struct {
	JWTSecret string `envconfig:"AUTH_JWT_SECRET" required:"true"`
}

type MailerConfig struct {
	Enabled              bool   `envconfig:"MAILER_ENABLED" default:"true"`
	PostmarkServerToken  string `envconfig:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `envconfig:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `envconfig:"MAILER_SENDER_EMAIL" default:"noreply@volunteer-slots.local"`
	AdminEmail           string `envconfig:"MAILER_ADMIN_EMAIL" required:"true"`
}

type BookingConfig struct {
	DefaultMaxPerDay       int           `envconfig:"BOOKING_DEFAULT_MAX_PER_DAY" default:"6"`
	DefaultNotifyLeadHours int           `envconfig:"BOOKING_DEFAULT_NOTIFY_LEAD_HOURS" default:"24"`
	ServiceStart           time.Time     `envconfig:"BOOKING_SERVICE_START" default:"2026-01-01T00:00:00Z"`
	PolicyCacheTTL         time.Duration `envconfig:"BOOKING_POLICY_CACHE_TTL" default:"30s"`
}

type DispatchConfig struct {
	MaxAttempts   int           `envconfig:"DISPATCH_MAX_ATTEMPTS" default:"3"`
	BaseDelay     time.Duration `envconfig:"DISPATCH_BASE_DELAY" default:"1s"`
	DedupWindow   time.Duration `envconfig:"DISPATCH_DEDUP_WINDOW" default:"5m"`
	QueueSize     int           `envconfig:"DISPATCH_QUEUE_SIZE" default:"256"`
	AlertInterval time.Duration `envconfig:"DISPATCH_ALERT_INTERVAL" default:"1h"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
			TimeZone: "Europe/London",
		},
		Log: LogConfig{
			Level:          "error", // Error level only for tests
			TimeZone:       "Europe/London",
			TimeFormat:     "2006-01-02 15:04:05.000",
			TimeZoneOffset: 0,
		},
		Auth: AuthConfig{
			JWTSecret: "test-secret",
		},
		Mailer: MailerConfig{
			Enabled:     false,
			SenderEmail: "noreply@volunteer-slots.test",
			AdminEmail:  "admin@volunteer-slots.test",
		},
		Booking: BookingConfig{
			DefaultMaxPerDay:       6,
			DefaultNotifyLeadHours: 24,
			ServiceStart:           time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			PolicyCacheTTL:         time.Second,
		},
		Dispatch: DispatchConfig{
			MaxAttempts:   3,
			BaseDelay:     time.Millisecond, // keep retry tests fast
			DedupWindow:   5 * time.Minute,
			QueueSize:     16,
			AlertInterval: time.Hour,
		},
	}
}
