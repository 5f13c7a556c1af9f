package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

// ErrCredentialsNotDSN reports a credentials file that holds something other
// than a Postgres connection string, such as a service-account JSON key.
var ErrCredentialsNotDSN = errors.New("audit credentials file is not a postgres dsn")

type Config struct {
	APIPort  string
	LogLevel string

	GroqAPIKey  string
	GroqModel   string
	GroqBaseURL string
	GroqTimeout time.Duration

	VisionURL          string
	VisionModel        string
	VisionMaxImageSide int

	AuditCredPath          string
	AuditPostgresDSN       string
	AuditNATSURL           string
	AuditNATSSubjectPrefix string
	AuditTimeout           time.Duration

	UploadMaxBytes int64
	TempDir        string

	APIRateLimitRPS     float64
	APIRateLimitBurst   int
	APIMaxInFlight      int
	APIBackpressureWait time.Duration

	LLMBreakerEnabled bool

	WorkerMetricsPort string
}

func Load() Config {
	return Config{
		APIPort:  mustEnv("PORT", "10000"),
		LogLevel: mustEnv("LOG_LEVEL", "info"),

		GroqAPIKey:  mustEnvAny([]string{"GROQ_API_KEY", "groq_key"}, ""),
		GroqModel:   mustEnvAny([]string{"GROQ_MODEL", "groq_model"}, "llama-3.1-8b-instant"),
		GroqBaseURL: mustEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		GroqTimeout: mustEnvSeconds("GROQ_TIMEOUT_SECONDS", 60*time.Second),

		VisionURL:          mustEnv("VISION_URL", "http://localhost:11434"),
		VisionModel:        mustEnv("VISION_MODEL", "llava:7b"),
		VisionMaxImageSide: mustEnvInt("VISION_MAX_IMAGE_SIDE", 1024),

		AuditCredPath:          mustEnvAny([]string{"FIREBASE_CRED_PATH", "AUDIT_CRED_PATH"}, "firebase-key.json"),
		AuditPostgresDSN:       mustEnv("AUDIT_POSTGRES_DSN", ""),
		AuditNATSURL:           mustEnv("AUDIT_NATS_URL", ""),
		AuditNATSSubjectPrefix: mustEnv("AUDIT_NATS_SUBJECT_PREFIX", "tutor.audit"),
		AuditTimeout:           mustEnvSeconds("AUDIT_TIMEOUT_SECONDS", 10*time.Second),

		UploadMaxBytes: int64(mustEnvInt("UPLOAD_MAX_BYTES", 32<<20)),
		TempDir:        mustEnv("TEMP_DIR", os.TempDir()),

		APIRateLimitRPS:     mustEnvFloat("API_RATE_LIMIT_RPS", 0),
		APIRateLimitBurst:   mustEnvInt("API_RATE_LIMIT_BURST", 0),
		APIMaxInFlight:      mustEnvInt("API_MAX_IN_FLIGHT", 0),
		APIBackpressureWait: time.Duration(mustEnvInt("API_BACKPRESSURE_WAIT_MS", 250)) * time.Millisecond,

		LLMBreakerEnabled: mustEnvBool("LLM_BREAKER_ENABLED", false),

		WorkerMetricsPort: mustEnv("WORKER_METRICS_PORT", "9090"),
	}
}

// AuditDSN returns the Postgres DSN for the audit store. An explicit
// AUDIT_POSTGRES_DSN wins; otherwise the credentials file is read. A missing
// credentials file yields an empty DSN, which disables auditing. A file that
// does not parse as a DSN yields ErrCredentialsNotDSN; the error never carries
// the file contents.
func (c Config) AuditDSN() (string, error) {
	if dsn := strings.TrimSpace(c.AuditPostgresDSN); dsn != "" {
		return dsn, nil
	}
	if strings.TrimSpace(c.AuditCredPath) == "" {
		return "", nil
	}
	raw, err := os.ReadFile(c.AuditCredPath)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read audit credentials %s: %w", c.AuditCredPath, err)
	}
	dsn := strings.TrimSpace(string(raw))
	if dsn == "" {
		return "", nil
	}
	if strings.HasPrefix(dsn, "{") {
		return "", fmt.Errorf("%s: %w", c.AuditCredPath, ErrCredentialsNotDSN)
	}
	if _, err := pgx.ParseConfig(dsn); err != nil {
		return "", fmt.Errorf("%s: %w", c.AuditCredPath, ErrCredentialsNotDSN)
	}
	return dsn, nil
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvAny(keys []string, fallback string) string {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return fallback
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvSeconds(key string, fallback time.Duration) time.Duration {
	n := mustEnvInt(key, -1)
	if n <= 0 {
		return fallback
	}
	return time.Duration(n) * time.Second
}

func mustEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}
