package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type RegistrationMode string

const (
	ModeVerifyLink        RegistrationMode = "verify_link"
	ModeGeneratedPassword RegistrationMode = "generated_password"
	ModeOpen              RegistrationMode = "open"
)

type Config struct {
	DatabaseURL string
	HTTPAddr    string

	JWTSecret    []byte
	JWTAlgorithm string
	JWTIssuer    string
	SessionTTL   time.Duration
	BcryptCost   int

	RegistrationMode   RegistrationMode
	LoginRequireActive bool
	AppBaseURL         string

	NotifySink      string
	NotifyWorkers   int
	NotifyQueueSize int
	KafkaBrokers    []string
	KafkaTopic      string
	KafkaGroupID    string

	Mailer         string
	ResendAPIKey   string
	MailFrom       string
	SMTPHost       string
	SMTPUser       string
	SMTPPassword   string
	SMTPSkipVerify bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration
}

// Load reads .env (when present) and the process environment once.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.LookupEnv)
}

func FromEnv(lookup func(string) (string, bool)) (*Config, error) {
	r := reader{lookup: lookup}
	cfg := &Config{
		DatabaseURL:        r.str("DATABASE_URL", ""),
		HTTPAddr:           r.str("HTTP_ADDR", ":8080"),
		JWTSecret:          []byte(r.str("JWT_SECRET", "")),
		JWTAlgorithm:       strings.ToUpper(r.str("JWT_ALGORITHM", "HS256")),
		JWTIssuer:          r.str("JWT_ISSUER", ""),
		SessionTTL:         r.duration("SESSION_TTL", 20*time.Minute),
		BcryptCost:         r.integer("BCRYPT_COST", 0),
		RegistrationMode:   RegistrationMode(r.str("REGISTRATION_MODE", string(ModeVerifyLink))),
		LoginRequireActive: r.boolean("LOGIN_REQUIRE_ACTIVE", true),
		AppBaseURL:         strings.TrimRight(r.str("APP_BASE_URL", "http://localhost:8080"), "/"),
		NotifySink:         r.str("NOTIFY_SINK", "mail"),
		NotifyWorkers:      r.integer("NOTIFY_WORKERS", 2),
		NotifyQueueSize:    r.integer("NOTIFY_QUEUE_SIZE", 64),
		KafkaBrokers:       r.list("KAFKA_BROKERS", []string{"localhost:9092"}),
		KafkaTopic:         r.str("KAFKA_TOPIC", "notifications"),
		KafkaGroupID:       r.str("KAFKA_GROUP_ID", "notifier"),
		Mailer:             r.str("MAILER", "resend"),
		ResendAPIKey:       r.str("RESEND_API_KEY", ""),
		MailFrom:           r.str("MAIL_FROM", ""),
		SMTPHost:           r.str("SMTP_HOST", ""),
		SMTPUser:           r.str("SMTP_USER", ""),
		SMTPPassword:       r.str("SMTP_PASSWORD", ""),
		SMTPSkipVerify:     r.boolean("SMTP_SKIP_VERIFY", false),
		RedisAddr:          r.str("REDIS_ADDR", ""),
		RedisPassword:      r.str("REDIS_PASSWORD", ""),
		RedisDB:            r.integer("REDIS_DB", 0),
		CacheTTL:           r.duration("CACHE_TTL", 60*time.Second),
	}
	if len(r.errs) > 0 {
		return nil, errors.Join(r.errs...)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings shared by every process. Process specific
// requirements are checked by ValidateServer and ValidateNotifier.
func (c *Config) Validate() error {
	switch c.JWTAlgorithm {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("JWT_ALGORITHM %q is not supported", c.JWTAlgorithm)
	}
	switch c.RegistrationMode {
	case ModeVerifyLink, ModeGeneratedPassword, ModeOpen:
	default:
		return fmt.Errorf("REGISTRATION_MODE %q is not supported", c.RegistrationMode)
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	if c.NotifyWorkers <= 0 {
		c.NotifyWorkers = 1
	}
	if c.NotifyQueueSize <= 0 {
		c.NotifyQueueSize = 1
	}
	return nil
}

// ValidateServer checks what the API process needs on top of Validate.
func (c *Config) ValidateServer() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if len(c.JWTSecret) == 0 {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	return errors.Join(errs...)
}

// ValidateNotifier checks what the notification consumer needs on top of
// Validate.
func (c *Config) ValidateNotifier() error {
	var errs []error
	if len(c.KafkaBrokers) == 0 {
		errs = append(errs, errors.New("KAFKA_BROKERS is required"))
	}
	if c.KafkaTopic == "" {
		errs = append(errs, errors.New("KAFKA_TOPIC is required"))
	}
	if c.KafkaGroupID == "" {
		errs = append(errs, errors.New("KAFKA_GROUP_ID is required"))
	}
	return errors.Join(errs...)
}

type reader struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (r *reader) str(key, fallback string) string {
	value, ok := r.lookup(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	return strings.TrimSpace(value)
}

func (r *reader) duration(key string, fallback time.Duration) time.Duration {
	raw := r.str(key, "")
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return value
}

func (r *reader) integer(key string, fallback int) int {
	raw := r.str(key, "")
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return value
}

func (r *reader) boolean(key string, fallback bool) bool {
	raw := r.str(key, "")
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return value
}

func (r *reader) list(key string, fallback []string) []string {
	raw := r.str(key, "")
	if raw == "" {
		return fallback
	}
	var values []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	if len(values) == 0 {
		return fallback
	}
	return values
}
