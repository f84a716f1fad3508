package hosting

import (
	"context"
	"fmt"
	"strings"

	apperrors "go-photo-context/internal/errors"
	"go-photo-context/pkg/models"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// AzureUploader implements AssetUploader on top of Azure Blob Storage.
type AzureUploader struct {
	client    *azblob.Client
	account   string
	container string
}

// NewAzureUploader creates an Azure Blob backed asset uploader.
func NewAzureUploader(accountName, accountKey, container string) (*AzureUploader, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, err
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, err
	}

	return &AzureUploader{
		client:    client,
		account:   accountName,
		container: container,
	}, nil
}

// Upload stores the image as a block blob under folder/fileName and returns
// the blob URL. The blob name doubles as the asset id.
func (u *AzureUploader) Upload(ctx context.Context, data []byte, fileName string, folder string) (*models.UploadResult, error) {
	if len(data) == 0 {
		return nil, apperrors.NewValidationError("image data is empty", nil)
	}

	blobName := fileName
	if folder != "" {
		blobName = strings.TrimSuffix(folder, "/") + "/" + fileName
	}

	if _, err := u.client.UploadBuffer(ctx, u.container, blobName, data, nil); err != nil {
		return nil, apperrors.NewUploadError(err.Error(), err)
	}

	return &models.UploadResult{
		Success:  true,
		URL:      fmt.Sprintf("https://%s.blob.core.windows.net/%s/%s", u.account, u.container, blobName),
		AssetID:  blobName,
		FileName: fileName,
		Size:     int64(len(data)),
		Folder:   folder,
	}, nil
}
