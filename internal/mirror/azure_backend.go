package mirror

import (
	"context"
	"errors"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

// AzureBackend is a Backend over an Azure Blob Storage container, intended
// for the mirror tier.
type AzureBackend struct {
	client    *azblob.Client
	container string
	prefix    string
	label     string
}

// NewAzureBackend wraps an azblob.Client for container, with blob names
// rooted at prefix.
func NewAzureBackend(label string, client *azblob.Client, container, prefix string) *AzureBackend {
	return &AzureBackend{client: client, container: container, prefix: prefix, label: label}
}

func (b *AzureBackend) blobName(id string) string {
	if b.prefix == "" {
		return id
	}
	return b.prefix + "/" + id
}

func (b *AzureBackend) Label() string { return b.label }

func (b *AzureBackend) ReadAll(ctx context.Context, id string) ([]byte, bool, error) {
	resp, err := b.client.DownloadStream(ctx, b.container, b.blobName(id), nil)
	if err != nil {
		if isBlobNotFound(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (b *AzureBackend) Write(ctx context.Context, id string, data []byte) error {
	_, err := b.client.UploadBuffer(ctx, b.container, b.blobName(id), data, nil)
	return err
}

func (b *AzureBackend) Delete(ctx context.Context, id string) error {
	_, err := b.client.DeleteBlob(ctx, b.container, b.blobName(id), nil)
	if err != nil && isBlobNotFound(err) {
		return nil
	}
	return err
}

func (b *AzureBackend) Exists(ctx context.Context, id string) (bool, error) {
	_, err := b.client.ServiceClient().NewContainerClient(b.container).NewBlobClient(b.blobName(id)).GetProperties(ctx, nil)
	if err != nil {
		if isBlobNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (b *AzureBackend) Size(ctx context.Context, id string) (int64, bool, error) {
	props, err := b.client.ServiceClient().NewContainerClient(b.container).NewBlobClient(b.blobName(id)).GetProperties(ctx, nil)
	if err != nil {
		if isBlobNotFound(err) {
			return 0, false, nil
		}
		return 0, false, err
	}
	if props.ContentLength == nil {
		return 0, true, nil
	}
	return *props.ContentLength, true, nil
}

func isBlobNotFound(err error) bool {
	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		return respErr.ErrorCode == string(bloberror.BlobNotFound)
	}
	return false
}
