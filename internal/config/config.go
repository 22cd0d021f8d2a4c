package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Mail drivers.
const (
	MailDriverSendGrid = "sendgrid"
	MailDriverSMTP     = "smtp"
	MailDriverLog      = "log"
)

// OTP store backends.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreDynamo = "dynamo"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort        string
	AppEnv         string
	LogLevel       string
	AllowedOrigins []string // CORS allowed origins

	MailDriver     string
	FromEmail      string
	FromName       string
	SendGridAPIKey string
	SMTPHost       string
	SMTPPort       int
	SMTPUsername   string
	SMTPPassword   string
	SMTPAuthMethod string

	OTPStore       string
	OTPMaxEntries  int
	OTPSweepEvery  time.Duration
	RedisURL       string
	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoOTPTable string

	SNSRegion        string
	SNSAlertTopicARN string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:        getEnv("PORT", "5000"),
		AppEnv:         getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "*")),

		MailDriver:     strings.ToLower(getEnv("MAIL_DRIVER", MailDriverSendGrid)),
		FromEmail:      getEnv("FROM_EMAIL", ""),
		FromName:       getEnv("FROM_NAME", ""),
		SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
		SMTPHost:       getEnv("SMTP_HOST", "localhost"),
		SMTPPort:       getEnvInt("SMTP_PORT", 1025),
		SMTPUsername:   getEnv("SMTP_USERNAME", ""),
		SMTPPassword:   getEnv("SMTP_PASSWORD", ""),
		SMTPAuthMethod: strings.ToUpper(getEnv("SMTP_AUTH_METHOD", "PLAIN")),

		OTPStore:       strings.ToLower(getEnv("OTP_STORE", StoreMemory)),
		OTPMaxEntries:  getEnvInt("OTP_STORE_MAX_ENTRIES", 0),
		OTPSweepEvery:  getEnvDuration("OTP_SWEEP_INTERVAL", time.Minute),
		RedisURL:       getEnv("REDIS_URL", "redis://localhost:6379/0"),
		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoOTPTable: getEnv("DYNAMO_TABLE_OTPS", "pending_otps"),

		SNSRegion:        getEnv("SNS_REGION", "us-east-1"),
		SNSAlertTopicARN: getEnv("SNS_ALERT_TOPIC_ARN", ""),
	}
}

// Validate reports configuration that would leave the service unable to
// deliver codes. main treats any error here as fatal.
func (c *Config) Validate() error {
	var errs []error
	switch c.MailDriver {
	case MailDriverSendGrid:
		if c.SendGridAPIKey == "" {
			errs = append(errs, errors.New("SENDGRID_API_KEY is required for the sendgrid mail driver"))
		}
	case MailDriverSMTP:
		if c.SMTPHost == "" || c.SMTPPort <= 0 {
			errs = append(errs, errors.New("SMTP_HOST and SMTP_PORT are required for the smtp mail driver"))
		}
	case MailDriverLog:
	default:
		errs = append(errs, fmt.Errorf("unknown MAIL_DRIVER %q", c.MailDriver))
	}
	if c.MailDriver != MailDriverLog && c.FromEmail == "" {
		errs = append(errs, errors.New("FROM_EMAIL is required"))
	}
	switch c.OTPStore {
	case StoreMemory, StoreRedis, StoreDynamo:
	default:
		errs = append(errs, fmt.Errorf("unknown OTP_STORE %q", c.OTPStore))
	}
	if c.OTPMaxEntries < 0 {
		errs = append(errs, errors.New("OTP_STORE_MAX_ENTRIES must not be negative"))
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
