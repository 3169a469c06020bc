package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DatabaseURL string

	// Kafka
	KafkaBrokers       string
	KafkaSnapshotTopic string
	KafkaEventsTopic   string
	KafkaGroupID       string

	// API Configuration
	APIPort string
	APIHost string

	// JWT
	JWTSecret string
	JWTIssuer string

	// Site
	SiteRoot  string
	UploadDir string

	// Image sizes
	ImageSizesFile string
	BuiltinSizes   map[string]SizeOption

	// Products
	ProductImportEnabled bool

	// Environment
	Env      string
	LogLevel string
}

// SizeOption mirrors the "<size>_size_w", "<size>_size_h" and "<size>_crop" site options.
type SizeOption struct {
	Width  int
	Height int
	Crop   bool
}

func Load() (*Config, error) {
	// Load .env file
	godotenv.Load()

	return &Config{
		DatabaseURL:          getEnv("DATABASE_URL", "sqlite://extmedia.db"),
		KafkaBrokers:         getEnv("KAFKA_BROKERS", ""),
		KafkaSnapshotTopic:   getEnv("KAFKA_SNAPSHOT_TOPIC", "media-snapshots"),
		KafkaEventsTopic:     getEnv("KAFKA_EVENTS_TOPIC", "media-sync-events"),
		KafkaGroupID:         getEnv("KAFKA_GROUP_ID", "extmedia-worker"),
		APIPort:              getEnv("API_PORT", "8080"),
		APIHost:              getEnv("API_HOST", "0.0.0.0"),
		JWTSecret:            getEnv("JWT_SECRET", ""),
		JWTIssuer:            getEnv("JWT_ISSUER", "extmedia"),
		SiteRoot:             getEnv("SITE_ROOT", "."),
		UploadDir:            getEnv("UPLOAD_DIR", os.TempDir()),
		ImageSizesFile:       getEnv("IMAGE_SIZES_FILE", ""),
		BuiltinSizes:         loadBuiltinSizes(),
		ProductImportEnabled: getEnvAsBool("PRODUCT_IMPORT_ENABLED", true),
		Env:                  getEnv("ENV", "development"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
	}, nil
}

// Brokers splits KafkaBrokers on commas. An empty result means Kafka is disabled.
func (c *Config) Brokers() []string {
	var brokers []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func loadBuiltinSizes() map[string]SizeOption {
	return map[string]SizeOption{
		"thumbnail": {
			Width:  getEnvAsInt("THUMBNAIL_SIZE_W", 150),
			Height: getEnvAsInt("THUMBNAIL_SIZE_H", 150),
			Crop:   getEnvAsBool("THUMBNAIL_CROP", true),
		},
		"medium": {
			Width:  getEnvAsInt("MEDIUM_SIZE_W", 300),
			Height: getEnvAsInt("MEDIUM_SIZE_H", 300),
		},
		"medium_large": {
			Width:  getEnvAsInt("MEDIUM_LARGE_SIZE_W", 768),
			Height: getEnvAsInt("MEDIUM_LARGE_SIZE_H", 0),
		},
		"large": {
			Width:  getEnvAsInt("LARGE_SIZE_W", 1024),
			Height: getEnvAsInt("LARGE_SIZE_H", 1024),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
