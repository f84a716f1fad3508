package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AssetHostKind selects the asset hosting backend.
type AssetHostKind string

const (
	AssetHostImageKit AssetHostKind = "imagekit"
	AssetHostAzure    AssetHostKind = "azure"
	AssetHostNone     AssetHostKind = "none"
)

type Config struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	ImageFetchTimeout  time.Duration
	AnalysisTimeout    time.Duration
	UploadTimeout      time.Duration
	MaxRequestBodySize int64
	MaxWorkers         int

	// Vision model
	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string

	// Asset hosting
	AssetHost             AssetHostKind
	ImageKitPrivateKey    string
	ImageKitUploadURL     string
	ImageKitFolder        string
	AzureStorageAccount   string
	AzureStorageKey       string
	AzureStorageContainer string

	// History store
	OutputDir string
}

func (c *Config) ServerAddress() string {
	// Trim any whitespace from host and port
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

func LoadFromEnv() (*Config, error) {
	// Pick up a local .env if present; real env vars take precedence
	_ = godotenv.Load()

	cfg := &Config{
		Host:               getEnvOrDefault("HOST", "0.0.0.0"),
		Port:               getEnvOrDefault("PORT", "8080"),
		RequestTimeout:     parseDurationOrDefault("REQUEST_TIMEOUT", 120*time.Second),
		ImageFetchTimeout:  parseDurationOrDefault("IMAGE_FETCH_TIMEOUT", 15*time.Second),
		AnalysisTimeout:    parseDurationOrDefault("ANALYSIS_TIMEOUT", 60*time.Second),
		UploadTimeout:      parseDurationOrDefault("UPLOAD_TIMEOUT", 30*time.Second),
		MaxRequestBodySize: parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 25*1024*1024), // 25MB
		MaxWorkers:         int(parseIntOrDefault("MAX_WORKERS", 0)),

		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiModel:   getEnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash-exp"),
		GeminiBaseURL: getEnvOrDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),

		AssetHost:             AssetHostKind(getEnvOrDefault("ASSET_HOST", string(AssetHostImageKit))),
		ImageKitPrivateKey:    os.Getenv("IMAGEKIT_PRIVATE_KEY"),
		ImageKitUploadURL:     getEnvOrDefault("IMAGEKIT_UPLOAD_URL", "https://upload.imagekit.io/api/v1/files/upload"),
		ImageKitFolder:        getEnvOrDefault("IMAGEKIT_FOLDER", "photo-context"),
		AzureStorageAccount:   os.Getenv("AZURE_STORAGE_ACCOUNT"),
		AzureStorageKey:       os.Getenv("AZURE_STORAGE_KEY"),
		AzureStorageContainer: getEnvOrDefault("AZURE_STORAGE_CONTAINER", "photo-context"),

		OutputDir: getEnvOrDefault("OUTPUT_DIR", "processed_images"),
	}

	// Validate port is numeric and in range
	p, err := strconv.Atoi(strings.TrimSpace(cfg.Port))
	if err != nil || p < 1 || p > 65535 {
		return nil, fmt.Errorf("invalid PORT: %q", cfg.Port)
	}
	if cfg.MaxRequestBodySize <= 0 {
		return nil, fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", cfg.MaxRequestBodySize)
	}
	if cfg.RequestTimeout <= 0 || cfg.ImageFetchTimeout <= 0 || cfg.AnalysisTimeout <= 0 || cfg.UploadTimeout <= 0 {
		return nil, fmt.Errorf("timeouts must be > 0 (got request=%s, fetch=%s, analysis=%s, upload=%s)",
			cfg.RequestTimeout, cfg.ImageFetchTimeout, cfg.AnalysisTimeout, cfg.UploadTimeout)
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	switch cfg.AssetHost {
	case AssetHostImageKit:
		if cfg.ImageKitPrivateKey == "" {
			return nil, fmt.Errorf("IMAGEKIT_PRIVATE_KEY is required when ASSET_HOST=imagekit")
		}
	case AssetHostAzure:
		if cfg.AzureStorageAccount == "" || cfg.AzureStorageKey == "" {
			return nil, fmt.Errorf("AZURE_STORAGE_ACCOUNT and AZURE_STORAGE_KEY are required when ASSET_HOST=azure")
		}
	case AssetHostNone:
	default:
		return nil, fmt.Errorf("invalid ASSET_HOST: %q (want imagekit, azure or none)", cfg.AssetHost)
	}
	if cfg.OutputDir == "" {
		return nil, fmt.Errorf("OUTPUT_DIR must not be empty")
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
