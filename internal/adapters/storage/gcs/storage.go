package gcs

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"cloud.google.com/go/storage"
	portssvc "github.com/SscSPs/inkpress/internal/core/ports/services"
	"google.golang.org/api/option"
)

// NewClient creates a Google Cloud Storage client. If credsPath is empty, ADC is used.
func NewClient(ctx context.Context, credsPath string) (*storage.Client, error) {
	if credsPath == "" {
		return storage.NewClient(ctx)
	}
	return storage.NewClient(ctx, option.WithCredentialsFile(credsPath))
}

// ObjectStorage writes uploads to a single bucket. Objects are expected to be
// publicly readable through bucket-level IAM.
type ObjectStorage struct {
	client *storage.Client
	bucket string
}

func NewObjectStorage(client *storage.Client, bucket string) *ObjectStorage {
	return &ObjectStorage{client: client, bucket: bucket}
}

var _ portssvc.ObjectStorage = (*ObjectStorage)(nil)

func (s *ObjectStorage) Put(ctx context.Context, objectName, contentType string, r io.Reader) (string, error) {
	wc := s.client.Bucket(s.bucket).Object(objectName).NewWriter(ctx)
	wc.ContentType = contentType
	wc.CacheControl = "public, max-age=31536000, immutable"
	wc.ChunkSize = 0 // uploads are small; send in one request

	if _, err := io.Copy(wc, r); err != nil {
		_ = wc.Close()
		return "", fmt.Errorf("failed to write %s: %w", objectName, err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize %s: %w", objectName, err)
	}
	return PublicURL(s.bucket, objectName), nil
}

// PublicURL builds the public URL of an object.
func PublicURL(bucket, objectName string) string {
	return (&url.URL{
		Scheme: "https",
		Host:   "storage.googleapis.com",
		Path:   "/" + bucket + "/" + objectName,
	}).String()
}
