package hosting

import (
	"fmt"

	"go-photo-context/internal/config"
)

// UploaderFactory creates asset uploaders for a configured backend.
type UploaderFactory interface {
	CreateUploader(kind config.AssetHostKind) (AssetUploader, error)
}

// uploaderFactory implements UploaderFactory
type uploaderFactory struct {
	cfg *config.Config
}

// NewUploaderFactory creates a new uploader factory
func NewUploaderFactory(cfg *config.Config) UploaderFactory {
	return &uploaderFactory{cfg: cfg}
}

// CreateUploader creates an uploader based on the specified backend kind.
// The "none" kind returns a nil uploader; callers skip hosting entirely.
func (f *uploaderFactory) CreateUploader(kind config.AssetHostKind) (AssetUploader, error) {
	switch kind {
	case config.AssetHostImageKit:
		return NewImageKitUploader(ImageKitConfig{
			PrivateKey: f.cfg.ImageKitPrivateKey,
			UploadURL:  f.cfg.ImageKitUploadURL,
			Timeout:    f.cfg.UploadTimeout,
		}), nil
	case config.AssetHostAzure:
		return NewAzureUploader(f.cfg.AzureStorageAccount, f.cfg.AzureStorageKey, f.cfg.AzureStorageContainer)
	case config.AssetHostNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported asset host: %s", kind)
	}
}
