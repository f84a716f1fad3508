package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go-photo-context/internal/config"
	apperrors "go-photo-context/internal/errors"
	"go-photo-context/internal/logger"
	"go-photo-context/internal/search"
	"go-photo-context/internal/service"
	"go-photo-context/internal/storage"
	"go-photo-context/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func validateImageURL(imageURL string) error {
	parsedURL, err := url.Parse(imageURL)
	if err != nil {
		return apperrors.NewValidationError("Invalid URL format", err)
	}
	if parsedURL.Host == "" {
		return apperrors.NewValidationError("URL must have a valid host", nil)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return apperrors.NewValidationError("URL scheme must be http or https", nil)
	}
	return nil
}

// ProcessURLRequest is the JSON body for processing an image by URL.
type ProcessURLRequest struct {
	URL      string `json:"url" binding:"required,url"`
	Prompt   string `json:"prompt,omitempty"`
	Parallel bool   `json:"parallel,omitempty"`
}

// SearchRequest is the JSON body for a history search.
type SearchRequest struct {
	Query      string `json:"query" binding:"required"`
	MaxResults int    `json:"max_results,omitempty"`
	UseAIRank  bool   `json:"use_ai_rank,omitempty"`
	Explain    bool   `json:"explain,omitempty"`
}

// SaveSingleRequest is the JSON body for persisting one record.
type SaveSingleRequest struct {
	Record   models.AnalysisRecord `json:"record" binding:"required"`
	Filename string                `json:"filename,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// NewHandler wires the processing service into the HTTP surface.
func NewHandler(svc service.ProcessingService, fetcher storage.ImageFetcher, cfg *config.Config) http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())

	// Add middleware
	r.Use(
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	// Configure routes
	r.GET("/health", healthCheck)
	r.POST("/process-image", processImage(svc, fetcher, cfg))
	r.POST("/search", searchHistory(svc, cfg))
	r.GET("/history", listHistory(svc))
	r.POST("/save-single", saveSingle(svc))

	return r
}

// processImage handles both multipart uploads (field "images", one or more
// files) and a JSON body naming an image URL to fetch.
func processImage(svc service.ProcessingService, fetcher storage.ImageFetcher, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		logger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"user_agent": c.Request.UserAgent(),
			"ip":         c.ClientIP(),
		}).Info("Processing image analysis request")

		var (
			inputs []service.ImageInput
			opts   = service.DefaultProcessOptions()
		)
		opts.UploadFolder = cfg.ImageKitFolder

		if strings.HasPrefix(c.ContentType(), "multipart/") {
			form, err := c.MultipartForm()
			if err != nil {
				respondError(c, http.StatusBadRequest, "invalid multipart form", err)
				return
			}
			files := form.File["images"]
			if len(files) == 0 {
				respondError(c, http.StatusBadRequest, "no images provided",
					apperrors.NewValidationError("multipart field 'images' is required", nil))
				return
			}
			if prompt := c.PostForm("prompt"); prompt != "" {
				opts = opts.WithPrompt(prompt)
			}
			if c.PostForm("parallel") == "true" {
				opts = opts.WithParallel(0)
			}

			for _, fh := range files {
				f, err := fh.Open()
				if err != nil {
					respondError(c, http.StatusBadRequest, "could not read uploaded file", err)
					return
				}
				data, err := io.ReadAll(f)
				f.Close()
				if err != nil {
					respondError(c, http.StatusBadRequest, "could not read uploaded file", err)
					return
				}
				inputs = append(inputs, service.ImageInput{
					Data:        data,
					DisplayName: fh.Filename,
					SourcePath:  fh.Filename,
				})
			}
		} else {
			var req ProcessURLRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				respondError(c, http.StatusBadRequest, "invalid request format", err)
				return
			}
			if err := validateImageURL(req.URL); err != nil {
				respondError(c, apperrors.GetStatusCode(err), "invalid image URL", err)
				return
			}
			if req.Prompt != "" {
				opts = opts.WithPrompt(req.Prompt)
			}
			if req.Parallel {
				opts = opts.WithParallel(0)
			}

			fetchCtx, fetchCancel := context.WithTimeout(ctx, cfg.ImageFetchTimeout)
			data, err := fetcher.FetchImage(fetchCtx, req.URL)
			fetchCancel()
			if err != nil {
				var fetchErr *apperrors.AppError
				if errors.Is(err, context.DeadlineExceeded) {
					fetchErr = apperrors.NewTimeoutError("Image fetch timeout", err)
				} else {
					fetchErr = apperrors.NewNetworkError("Failed to fetch image", err)
				}
				respondError(c, fetchErr.StatusCode, "failed to fetch image", fetchErr)
				return
			}
			inputs = append(inputs, service.ImageInput{
				Data:        data,
				DisplayName: displayNameFromURL(req.URL),
				SourcePath:  req.URL,
			})
		}

		batch, path, err := svc.ProcessBatch(ctx, inputs, opts)
		if err != nil {
			if batch != nil && apperrors.IsType(err, apperrors.ErrorTypeStoreWrite) {
				// Processed but not saved; surface both facts.
				c.JSON(http.StatusInternalServerError, gin.H{
					"error":   "batch processed but not saved",
					"message": err.Error(),
					"batch":   batch,
				})
				return
			}
			respondError(c, apperrors.GetStatusCode(err), "batch processing failed", err)
			return
		}

		logger.WithFields(logrus.Fields{
			"images":             batch.Total,
			"succeeded":          batch.Succeeded,
			"failed":             batch.Failed,
			"history_file":       path,
			"processing_time_ms": time.Since(startTime).Milliseconds(),
		}).Info("Batch processing completed")

		c.JSON(http.StatusOK, gin.H{
			"batch":        batch,
			"history_file": path,
		})
	}
}

func searchHistory(svc service.ProcessingService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		var req SearchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}
		if req.MaxResults <= 0 {
			req.MaxResults = 5
		}

		result, err := svc.Search(ctx, req.Query, search.Options{
			MaxResults: req.MaxResults,
			UseAIRank:  req.UseAIRank,
			Explain:    req.Explain,
		})
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "search failed", err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func listHistory(svc service.ProcessingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		records, err := svc.History()
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "could not read history", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"total":   len(records),
			"records": records,
		})
	}
}

func saveSingle(svc service.ProcessingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SaveSingleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}
		path, err := svc.SaveSingle(req.Record, req.Filename)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "could not save record", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"path": path})
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": "1.0.0",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// displayNameFromURL falls back to the last path segment of the URL.
func displayNameFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Path == "" || parsed.Path == "/" {
		return "remote-image"
	}
	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	return segments[len(segments)-1]
}

// Middleware and helper functions
func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()
			respondError(c, determineStatusCode(err), "request processing failed", err)
		}
	}
}

func determineStatusCode(err error) int {
	// Check if it's a custom app error first
	if appErr, ok := err.(*apperrors.AppError); ok {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, code int, message string, err error) {
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	c.AbortWithStatusJSON(code, ErrorResponse{
		Error:   http.StatusText(code),
		Message: fmt.Sprintf("%s: %v", message, err),
	})
}
