package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "go-photo-context/internal/errors"
	"go-photo-context/internal/logger"

	"github.com/sirupsen/logrus"
)

// GeminiConfig holds the configuration for the Gemini generateContent endpoint.
type GeminiConfig struct {
	BaseURL string // e.g. https://generativelanguage.googleapis.com
	Model   string // e.g. gemini-2.0-flash-exp
	APIKey  string
	Timeout time.Duration
}

// GeminiClient implements ImageAnalyzer against the Gemini REST API.
type GeminiClient struct {
	cfg        GeminiConfig
	httpClient *http.Client
}

// NewGeminiClient creates a Gemini-backed image analyzer.
func NewGeminiClient(cfg GeminiConfig) *GeminiClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &GeminiClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// inlineData is one candidate wire representation of the image.
type inlineData struct {
	mimeType string
	data     []byte
}

// Analyze sends the prompt plus the image to the model. The normalized PNG
// representation is tried first; if that call fails, the raw bytes are sent
// once as-is. This is a representation-format fallback, not a resilience
// policy, so there is no third attempt.
func (g *GeminiClient) Analyze(ctx context.Context, payload ImagePayload, prompt string) (string, error) {
	if prompt == "" {
		prompt = DefaultPrompt
	}

	attempts := make([]inlineData, 0, 2)
	if len(payload.PNG) > 0 {
		attempts = append(attempts, inlineData{mimeType: "image/png", data: payload.PNG})
	}
	if len(payload.Raw) > 0 {
		attempts = append(attempts, inlineData{mimeType: payload.RawMIME, data: payload.Raw})
	}
	if len(attempts) == 0 {
		return "", apperrors.NewValidationError("image payload is empty", nil)
	}

	var lastErr error
	for i, att := range attempts {
		parts := []map[string]interface{}{
			{"text": prompt},
			{"inline_data": map[string]interface{}{
				"mime_type": att.mimeType,
				"data":      base64.StdEncoding.EncodeToString(att.data),
			}},
		}
		text, err := g.generateContent(ctx, parts)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if i < len(attempts)-1 {
			logger.WithError(err).WithFields(logrus.Fields{
				"mime_type": att.mimeType,
				"model":     g.cfg.Model,
			}).Warn("Model rejected image representation, retrying with raw bytes")
		}
	}
	return "", apperrors.NewAnalysisError(lastErr.Error(), lastErr)
}

// Generate performs a text-only model call with no image attached.
func (g *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	text, err := g.generateContent(ctx, []map[string]interface{}{{"text": prompt}})
	if err != nil {
		return "", apperrors.NewAnalysisError(err.Error(), err)
	}
	return text, nil
}

// generateContent performs one generateContent call for the given parts,
// retrying transient failures (transport errors and 5xx) up to 3 attempts
// with linear backoff. 4xx responses are not retried.
func (g *GeminiClient) generateContent(ctx context.Context, parts []map[string]interface{}) (string, error) {
	payload := map[string]interface{}{
		"contents": []map[string]interface{}{
			{"parts": parts},
		},
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.cfg.BaseURL, g.cfg.Model)

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payloadBytes))
		if err != nil {
			return "", fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-goog-api-key", g.cfg.APIKey)

		resp, err := g.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		if resp.StatusCode == http.StatusOK {
			return decodeGeneratedText(body)
		}

		lastErr = fmt.Errorf("gemini API error (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return "", lastErr
		}
	}
	return "", lastErr
}

// decodeGeneratedText extracts the concatenated candidate text from a
// generateContent response body.
func decodeGeneratedText(body []byte) (string, error) {
	var resp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("gemini decode: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("gemini: empty response")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("gemini: response contained no text parts")
	}
	return sb.String(), nil
}
