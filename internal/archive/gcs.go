package archive

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"
)

// GCSArchive uploads payloads to a Google Cloud Storage bucket.
// Authentication comes from Application Default Credentials.
type GCSArchive struct {
	client *storage.Client
	bucket string
	logger *zap.Logger
}

// NewGCSArchive creates the client and verifies the bucket is reachable,
// failing fast on misconfiguration.
func NewGCSArchive(ctx context.Context, bucket string, logger *zap.Logger) (*GCSArchive, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create GCS client: %w", err)
	}
	if _, err := client.Bucket(bucket).Attrs(ctx); err != nil {
		if closeErr := client.Close(); closeErr != nil {
			logger.Warn("Failed to close GCS client after bucket check failure", zap.Error(closeErr))
		}
		return nil, fmt.Errorf("get GCS bucket %q attributes: %w", bucket, err)
	}
	return &GCSArchive{client: client, bucket: bucket, logger: logger}, nil
}

// Archive uploads one payload and returns its gs:// URI.
func (a *GCSArchive) Archive(ctx context.Context, path string, data []byte) (string, error) {
	wc := a.client.Bucket(a.bucket).Object(path).NewWriter(ctx)
	if _, err := wc.Write(data); err != nil {
		if closeErr := wc.Close(); closeErr != nil {
			a.logger.Warn("Failed to close GCS writer after write failure", zap.Error(closeErr))
		}
		return "", fmt.Errorf("write GCS object %s: %w", path, err)
	}
	// Close finalizes the upload.
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("close GCS writer for object %s: %w", path, err)
	}
	return fmt.Sprintf("gs://%s/%s", a.bucket, path), nil
}

// Close releases the underlying client.
func (a *GCSArchive) Close() error {
	return a.client.Close()
}
