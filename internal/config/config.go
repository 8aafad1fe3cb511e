package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Log      LogConfig
	Gemini   GeminiConfig
	Upload   UploadConfig
	Dataset  DatasetConfig
	Database DatabaseConfig
	Qdrant   QdrantConfig
}

type ServerConfig struct {
	Port string `validate:"required,numeric"`
	Env  string `validate:"oneof=development production test"`
}

type LogConfig struct {
	Level  string `validate:"oneof=debug info warn error"`
	Format string `validate:"oneof=json console"`
}

type GeminiConfig struct {
	// APIKey is only a fallback; users may supply their own key per request.
	APIKey     string
	BaseURL    string        `validate:"required,url"`
	Model      string        `validate:"required"`
	EmbedModel string        `validate:"required"`
	Backend    string        `validate:"oneof=rest genai"`
	Timeout    time.Duration `validate:"gt=0"`
}

type UploadConfig struct {
	MaxFileSize int64 `validate:"gt=0"`
}

type DatasetConfig struct {
	Source string `validate:"oneof=file s3 postgres"`
	// Path is a local path for "file" and an s3://bucket/key URI for "s3".
	Path      string
	AWSRegion string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
	TopK       int `validate:"gte=0"`
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "3000"),
			Env:  getEnv("ENV", "development"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
		Gemini: GeminiConfig{
			APIKey:     getEnv("GEMINI_API_KEY", ""),
			BaseURL:    getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
			Model:      getEnv("GEMINI_MODEL", "gemini-1.5-flash-latest"),
			EmbedModel: getEnv("EMBED_MODEL", "text-embedding-004"),
			Backend:    getEnv("LLM_BACKEND", "rest"),
			Timeout:    getEnvAsDuration("LLM_TIMEOUT", "60s"),
		},
		Upload: UploadConfig{
			MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 10485760),
		},
		Dataset: DatasetConfig{
			Source:    getEnv("DATASET_SOURCE", "file"),
			Path:      getEnv("DATASET_PATH", "us_salaries.csv"),
			AWSRegion: getEnv("AWS_REGION", "us-east-1"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "job_companion"),
		},
		Qdrant: QdrantConfig{
			URL:        getEnv("QDRANT_URL", ""),
			APIKey:     getEnv("QDRANT_API_KEY", ""),
			Collection: getEnv("QDRANT_COLLECTION", "resume_guidelines"),
			TopK:       getEnvAsInt("QDRANT_TOP_K", 3),
		},
	}
}

// Validate checks the loaded values against their struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

// GuidanceEnabled reports whether a Qdrant instance is configured.
func (c *Config) GuidanceEnabled() bool {
	return c.Qdrant.URL != "" && c.Qdrant.TopK > 0
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

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
