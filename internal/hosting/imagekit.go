package hosting

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	apperrors "go-photo-context/internal/errors"
	"go-photo-context/pkg/models"
)

// ImageKitConfig holds the configuration for the ImageKit upload API.
type ImageKitConfig struct {
	PrivateKey string
	UploadURL  string // e.g. https://upload.imagekit.io/api/v1/files/upload
	Timeout    time.Duration
}

// ImageKitUploader implements AssetUploader against the ImageKit REST upload API.
type ImageKitUploader struct {
	cfg        ImageKitConfig
	httpClient *http.Client
}

// NewImageKitUploader creates an ImageKit-backed asset uploader.
func NewImageKitUploader(cfg ImageKitConfig) *ImageKitUploader {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ImageKitUploader{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Upload sends the image to ImageKit as a multipart form with a
// base64-encoded file field and returns the hosted URL and metadata.
func (u *ImageKitUploader) Upload(ctx context.Context, data []byte, fileName string, folder string) (*models.UploadResult, error) {
	if len(data) == 0 {
		return nil, apperrors.NewValidationError("image data is empty", nil)
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	fields := map[string]string{
		"file":     base64.StdEncoding.EncodeToString(data),
		"fileName": fileName,
		"folder":   "/" + strings.TrimPrefix(folder, "/"),
		"tags":     "photo-context,ai-analysis",
	}
	for key, value := range fields {
		if err := form.WriteField(key, value); err != nil {
			return nil, apperrors.NewInternalError("failed to build upload form", err)
		}
	}
	if err := form.Close(); err != nil {
		return nil, apperrors.NewInternalError("failed to build upload form", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.cfg.UploadURL, &body)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to create upload request", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.SetBasicAuth(u.cfg.PrivateKey, "")

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewUploadError(err.Error(), err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewUploadError("failed to read upload response", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := fmt.Sprintf("imagekit upload failed (%d): %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
		return nil, apperrors.NewUploadError(msg, nil)
	}

	var decoded struct {
		FileID   string   `json:"fileId"`
		Name     string   `json:"name"`
		URL      string   `json:"url"`
		Size     int64    `json:"size"`
		FileType string   `json:"fileType"`
		FilePath string   `json:"filePath"`
		Tags     []string `json:"tags"`
	}
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return nil, apperrors.NewUploadError("failed to decode upload response", err)
	}

	size := decoded.Size
	if size == 0 {
		size = int64(len(data))
	}
	return &models.UploadResult{
		Success:  true,
		URL:      decoded.URL,
		AssetID:  decoded.FileID,
		FileName: decoded.Name,
		FileType: decoded.FileType,
		Size:     size,
		Folder:   folder,
		Tags:     decoded.Tags,
	}, nil
}
