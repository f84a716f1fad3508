package hosting

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"go-photo-context/pkg/models"

	"github.com/google/uuid"
)

// AssetUploader pushes an image to the external asset host. Upload failures
// are reported, not fatal: the caller persists the record without hosting
// fields and the item status keeps reflecting the analysis outcome.
type AssetUploader interface {
	Upload(ctx context.Context, data []byte, fileName string, folder string) (*models.UploadResult, error)
}

// UniqueFileName derives a collision-free hosted name from the original
// display name, keeping the extension recognizable.
func UniqueFileName(original string) string {
	base := path.Base(original)
	ext := path.Ext(base)
	name := strings.TrimSuffix(base, ext)
	if name == "" {
		name = "image"
	}
	stamp := time.Now().UTC().Format("20060102_150405")
	return fmt.Sprintf("%s_%s_%s%s", name, stamp, uuid.NewString()[:8], ext)
}
