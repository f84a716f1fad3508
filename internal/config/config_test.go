package config

import (
	"strings"
	"testing"
	"time"
)

// setRequiredEnv provides the minimum environment for LoadFromEnv to pass.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("GEMINI_API_KEY", "test-gemini-key")
	t.Setenv("ASSET_HOST", "none")
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.Host != "0.0.0.0" {
		t.Errorf("Expected default host, got %q", cfg.Host)
	}
	if cfg.Port != "8080" {
		t.Errorf("Expected default port, got %q", cfg.Port)
	}
	if cfg.GeminiModel != "gemini-2.0-flash-exp" {
		t.Errorf("Expected default model, got %q", cfg.GeminiModel)
	}
	if cfg.GeminiBaseURL != "https://generativelanguage.googleapis.com" {
		t.Errorf("Expected default base URL, got %q", cfg.GeminiBaseURL)
	}
	if cfg.OutputDir != "processed_images" {
		t.Errorf("Expected default output dir, got %q", cfg.OutputDir)
	}
	if cfg.AnalysisTimeout != 60*time.Second {
		t.Errorf("Expected default analysis timeout, got %s", cfg.AnalysisTimeout)
	}
	if cfg.MaxRequestBodySize != 25*1024*1024 {
		t.Errorf("Expected 25MB default body size, got %d", cfg.MaxRequestBodySize)
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("GEMINI_MODEL", "gemini-1.5-pro")
	t.Setenv("ANALYSIS_TIMEOUT", "90s")
	t.Setenv("OUTPUT_DIR", "history")
	t.Setenv("MAX_WORKERS", "6")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("Expected port override, got %q", cfg.Port)
	}
	if cfg.GeminiModel != "gemini-1.5-pro" {
		t.Errorf("Expected model override, got %q", cfg.GeminiModel)
	}
	if cfg.AnalysisTimeout != 90*time.Second {
		t.Errorf("Expected timeout override, got %s", cfg.AnalysisTimeout)
	}
	if cfg.OutputDir != "history" {
		t.Errorf("Expected output dir override, got %q", cfg.OutputDir)
	}
	if cfg.MaxWorkers != 6 {
		t.Errorf("Expected 6 workers, got %d", cfg.MaxWorkers)
	}
}

func TestLoadFromEnv_Validation(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		expectedMsg string
	}{
		{
			name:        "Missing API key",
			env:         map[string]string{"GEMINI_API_KEY": "", "ASSET_HOST": "none"},
			expectedMsg: "GEMINI_API_KEY",
		},
		{
			name:        "Invalid port",
			env:         map[string]string{"GEMINI_API_KEY": "k", "ASSET_HOST": "none", "PORT": "not-a-port"},
			expectedMsg: "invalid PORT",
		},
		{
			name:        "Port out of range",
			env:         map[string]string{"GEMINI_API_KEY": "k", "ASSET_HOST": "none", "PORT": "70000"},
			expectedMsg: "invalid PORT",
		},
		{
			name:        "Unknown asset host",
			env:         map[string]string{"GEMINI_API_KEY": "k", "ASSET_HOST": "s3"},
			expectedMsg: "invalid ASSET_HOST",
		},
		{
			name:        "ImageKit without key",
			env:         map[string]string{"GEMINI_API_KEY": "k", "ASSET_HOST": "imagekit", "IMAGEKIT_PRIVATE_KEY": ""},
			expectedMsg: "IMAGEKIT_PRIVATE_KEY",
		},
		{
			name:        "Azure without credentials",
			env:         map[string]string{"GEMINI_API_KEY": "k", "ASSET_HOST": "azure", "AZURE_STORAGE_ACCOUNT": "", "AZURE_STORAGE_KEY": ""},
			expectedMsg: "AZURE_STORAGE_ACCOUNT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			_, err := LoadFromEnv()
			if err == nil {
				t.Fatal("Expected a validation error")
			}
			if !strings.Contains(err.Error(), tt.expectedMsg) {
				t.Errorf("Expected error mentioning %q, got: %v", tt.expectedMsg, err)
			}
		})
	}
}

func TestLoadFromEnv_BackendCredentials(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "k")
	t.Setenv("ASSET_HOST", "imagekit")
	t.Setenv("IMAGEKIT_PRIVATE_KEY", "private_key")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if cfg.AssetHost != AssetHostImageKit {
		t.Errorf("Expected imagekit backend, got %s", cfg.AssetHost)
	}
	if cfg.ImageKitUploadURL == "" {
		t.Error("Expected default ImageKit upload URL")
	}
}

func TestServerAddress(t *testing.T) {
	tests := []struct {
		name     string
		host     string
		port     string
		expected string
	}{
		{name: "Plain", host: "0.0.0.0", port: "8080", expected: "0.0.0.0:8080"},
		{name: "Whitespace trimmed", host: " localhost ", port: " 9090 ", expected: "localhost:9090"},
		{name: "IPv6 bracketed", host: "::1", port: "8080", expected: "[::1]:8080"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Host: tt.host, Port: tt.port}
			if got := cfg.ServerAddress(); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestParseDurationOrDefault(t *testing.T) {
	t.Setenv("TEST_DURATION", "45s")
	if got := parseDurationOrDefault("TEST_DURATION", time.Second); got != 45*time.Second {
		t.Errorf("Expected 45s, got %s", got)
	}

	t.Setenv("TEST_DURATION", "garbage")
	if got := parseDurationOrDefault("TEST_DURATION", time.Second); got != time.Second {
		t.Errorf("Expected fallback to default, got %s", got)
	}

	t.Setenv("TEST_DURATION", "-5s")
	if got := parseDurationOrDefault("TEST_DURATION", time.Second); got != time.Second {
		t.Errorf("Expected negative value rejected, got %s", got)
	}
}
