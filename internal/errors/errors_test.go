package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name:     "Without cause",
			err:      NewValidationError("no images provided", nil),
			expected: "validation: no images provided",
		},
		{
			name:     "With cause",
			err:      NewAnalysisError("model unavailable", errors.New("connection refused")),
			expected: "analysis: model unavailable (caused by: connection refused)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := NewStoreWriteError("failed to write history", cause)

	if !errors.Is(err, cause) {
		t.Error("Expected errors.Is to find the cause")
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name           string
		err            *AppError
		expectedType   ErrorType
		expectedStatus int
	}{
		{"Validation", NewValidationError("m", nil), ErrorTypeValidation, http.StatusBadRequest},
		{"Network", NewNetworkError("m", nil), ErrorTypeNetwork, http.StatusBadGateway},
		{"Timeout", NewTimeoutError("m", nil), ErrorTypeTimeout, http.StatusGatewayTimeout},
		{"NotFound", NewNotFoundError("m", nil), ErrorTypeNotFound, http.StatusNotFound},
		{"Internal", NewInternalError("m", nil), ErrorTypeInternal, http.StatusInternalServerError},
		{"Analysis", NewAnalysisError("m", nil), ErrorTypeAnalysis, http.StatusBadGateway},
		{"Upload", NewUploadError("m", nil), ErrorTypeUpload, http.StatusBadGateway},
		{"StoreRead", NewStoreReadError("m", nil), ErrorTypeStoreRead, http.StatusInternalServerError},
		{"StoreWrite", NewStoreWriteError("m", nil), ErrorTypeStoreWrite, http.StatusInternalServerError},
		{"RankParse", NewRankParseError("m", nil), ErrorTypeRankParse, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Type != tt.expectedType {
				t.Errorf("Expected type %s, got %s", tt.expectedType, tt.err.Type)
			}
			if tt.err.StatusCode != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, tt.err.StatusCode)
			}
		})
	}
}

func TestIsType(t *testing.T) {
	appErr := NewUploadError("host rejected the asset", nil)

	if !IsType(appErr, ErrorTypeUpload) {
		t.Error("Expected upload error to match its own type")
	}
	if IsType(appErr, ErrorTypeAnalysis) {
		t.Error("Expected upload error not to match analysis type")
	}
	if IsType(errors.New("plain"), ErrorTypeUpload) {
		t.Error("Expected plain error not to match any type")
	}
}

func TestGetStatusCode(t *testing.T) {
	if got := GetStatusCode(NewValidationError("m", nil)); got != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", got)
	}
	if got := GetStatusCode(errors.New("plain")); got != http.StatusInternalServerError {
		t.Errorf("Expected 500 for plain errors, got %d", got)
	}
}
