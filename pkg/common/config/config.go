package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Server
	ServerPort     string
	ServerHost     string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxRequestBody int64

	// Database
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Latest-patient cache
	LatestCacheTTL     time.Duration
	LatestCacheEnabled bool

	// Kafka
	KafkaBrokers []string
	KafkaTopic   string

	// Validation bounds
	BoundsConfigPath string

	// Model artifact + bootstrap
	ModelArtifactPath string
	DatasetURL        string
	TrainEpochs       int
	TrainLearningRate float64

	// Prediction runner
	PatientAPIBaseURL string
	APIRequestTimeout time.Duration
}

func Load() *Config {
	return &Config{
		ServerPort:     getEnv("SERVER_PORT", "8000"),
		ServerHost:     getEnv("SERVER_HOST", "0.0.0.0"),
		ReadTimeout:    getDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:   getDuration("WRITE_TIMEOUT", 30*time.Second),
		MaxRequestBody: int64(getIntEnv("MAX_REQUEST_BODY_BYTES", 1*1024*1024)),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "cardiosense"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "cardiosense123"),
		PostgresDB:       getEnv("POSTGRES_DB", "heart_disease"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),

		LatestCacheTTL:     getDuration("LATEST_CACHE_TTL", 30*time.Second),
		LatestCacheEnabled: getBoolEnv("LATEST_CACHE_ENABLED", true),

		KafkaBrokers: getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "cardiosense.events"),

		BoundsConfigPath: getEnv("BOUNDS_CONFIG_PATH", ""),

		ModelArtifactPath: getEnv("MODEL_ARTIFACT_PATH", "artifacts/heart_disease_v1.json"),
		DatasetURL:        getEnv("DATASET_URL", "https://archive.ics.uci.edu/ml/machine-learning-databases/heart-disease/processed.cleveland.data"),
		TrainEpochs:       getIntEnv("TRAIN_EPOCHS", 1000),
		TrainLearningRate: getFloatEnv("TRAIN_LEARNING_RATE", 0.1),

		PatientAPIBaseURL: getEnv("PATIENT_API_BASE_URL", "http://localhost:8000"),
		APIRequestTimeout: getDuration("API_REQUEST_TIMEOUT", 10*time.Second),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getStringSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return []string{value}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
