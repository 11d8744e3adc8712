package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServiceName string
	HTTPPort    string
	GRPCPort    string
	MetricsPort string

	MongoURI string
	MongoDB  string

	RedisAddress  string
	RedisPassword string
	RedisDB       int

	NATSURL string

	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
	MinIOUseSSL    bool

	JWTSecret string

	GeminiAPIKey string
	GeminiModel  string

	SMTPHost     string
	SMTPPort     int
	SMTPEmail    string
	SMTPPassword string

	OTelEndpoint string

	DraftAutosaveDelay time.Duration
	DraftTTL           time.Duration
	ListingCacheTTL    time.Duration
	SessionIdleTTL     time.Duration
	MaxUploadBytes     int64
}

func Load() (*Config, error) {
	// .env is optional, real deployments pass environment variables.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading .env, relying on environment variables")
	}

	cfg := &Config{
		ServiceName: getEnv("SERVICE_NAME", "adpost-service"),
		HTTPPort:    getEnv("HTTP_PORT", "8082"),
		GRPCPort:    getEnv("GRPC_PORT", "50052"),
		MetricsPort: getEnv("METRICS_PORT", "9092"),

		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:  getEnv("MONGO_DATABASE", "classifieds"),

		RedisAddress:  getEnv("REDIS_ADDRESS", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		NATSURL: getEnv("NATS_URL", "nats://localhost:4222"),

		MinIOEndpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"), // no scheme for MinIO
		MinIOAccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		MinIOSecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
		MinIOBucket:    getEnv("MINIO_BUCKET", "listings-photos"),
		MinIOUseSSL:    getEnvAsBool("MINIO_USE_SSL", false),

		JWTSecret: getEnv("JWT_SECRET", "your-secret-key"),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),

		SMTPHost:     getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:     getEnvAsInt("SMTP_PORT", 587),
		SMTPEmail:    getEnv("SMTP_EMAIL", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		OTelEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),

		DraftAutosaveDelay: getEnvAsDuration("DRAFT_AUTOSAVE_DELAY", 2*time.Second),
		DraftTTL:           getEnvAsDuration("DRAFT_TTL", 30*24*time.Hour),
		ListingCacheTTL:    getEnvAsDuration("LISTING_CACHE_TTL", time.Hour),
		SessionIdleTTL:     getEnvAsDuration("SESSION_IDLE_TTL", 2*time.Hour),
		MaxUploadBytes:     int64(getEnvAsInt("MAX_UPLOAD_BYTES", 64<<20)),
	}

	if cfg.JWTSecret == "your-secret-key" {
		log.Println("Warning: JWT_SECRET is set to its default insecure value. Please set a strong secret in your environment or .env file.")
	}
	if cfg.JWTSecret == "" {
		return nil, errMissing("JWT_SECRET")
	}
	if cfg.DraftAutosaveDelay <= 0 {
		return nil, errInvalid("DRAFT_AUTOSAVE_DELAY")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Warning: Invalid %s value '%s', defaulting to %d. Error: %v", key, raw, fallback, err)
		return fallback
	}
	return value
}

func getEnvAsBool(key string, fallback bool) bool {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("Warning: Invalid %s value '%s', defaulting to %t. Error: %v", key, raw, fallback, err)
		return fallback
	}
	return value
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Warning: Invalid %s value '%s', defaulting to %s. Error: %v", key, raw, fallback, err)
		return fallback
	}
	return value
}

type configError struct {
	key    string
	reason string
}

func (e *configError) Error() string {
	return "config: " + e.key + " " + e.reason
}

func errMissing(key string) error { return &configError{key: key, reason: "is not set"} }
func errInvalid(key string) error { return &configError{key: key, reason: "is invalid"} }
