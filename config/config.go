package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds every tunable the server reads from the environment.
type Config struct {
	HTTPPort string `envconfig:"HTTP_PORT" default:"8080"`

	// Bcrypt hash of the API key clients must send in X-API-Key.
	// Empty disables authentication (local development).
	APIKeyHash string `envconfig:"API_KEY_HASH"`

	GeminiAPIKey       string        `envconfig:"GEMINI_API_KEY"`
	AnalysisModel      string        `envconfig:"ANALYSIS_MODEL" default:"gemini-3-pro-preview"`
	SearchModel        string        `envconfig:"SEARCH_MODEL" default:"gemini-3-flash-preview"`
	AnalysisTimeout    time.Duration `envconfig:"ANALYSIS_TIMEOUT" default:"5m"`
	SearchTimeout      time.Duration `envconfig:"SEARCH_TIMEOUT" default:"60s"`

	MaxUploadBytes int64 `envconfig:"MAX_UPLOAD_BYTES" default:"20971520"` // 20MB per file

	// Session store retention, swept on a cron schedule.
	StoreMaxCases     int           `envconfig:"STORE_MAX_CASES" default:"200"`
	StoreMaxAge       time.Duration `envconfig:"STORE_MAX_AGE" default:"72h"`
	StoreSweepSpec    string        `envconfig:"STORE_SWEEP_SPEC" default:"@every 30m"`

	// File storage backend: "local" or "s3".
	StorageType      string `envconfig:"STORAGE_TYPE" default:"local"`
	StorageLocalPath string `envconfig:"STORAGE_LOCAL_PATH" default:"./storage/files"`
	S3Bucket         string `envconfig:"AWS_S3_BUCKET"`
	S3Region         string `envconfig:"AWS_REGION" default:"us-east-1"`
	AWSAccessKey     string `envconfig:"AWS_ACCESS_KEY_ID"`
	AWSSecretKey     string `envconfig:"AWS_SECRET_ACCESS_KEY"`

	// Optional Postgres archive of completed analyses. Empty disables it.
	DatabaseURL string `envconfig:"DATABASE_URL"`
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	err := envconfig.Process("", &c)
	return &c, err
}
