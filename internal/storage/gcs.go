package storage

import (
	"context"
	"fmt"

	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// GCSStorage stores objects in a Google Cloud Storage bucket through the
// Firebase admin SDK.
type GCSStorage struct {
	bucket     *gcs.BucketHandle
	bucketName string
	logger     *zap.Logger
}

// NewGCSStorage initializes the Firebase app with the given service account
// credentials and resolves the default bucket.
func NewGCSStorage(ctx context.Context, bucketName, credentialsFile string, logger *zap.Logger) (*GCSStorage, error) {
	opt := option.WithCredentialsFile(credentialsFile)
	app, err := firebase.NewApp(ctx, &firebase.Config{StorageBucket: bucketName}, opt)
	if err != nil {
		return nil, fmt.Errorf("initializing firebase app: %w", err)
	}

	client, err := app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("initializing storage client: %w", err)
	}

	bucket, err := client.DefaultBucket()
	if err != nil {
		return nil, fmt.Errorf("resolving default bucket: %w", err)
	}

	logger.Info("object storage ready", zap.String("bucket", bucketName))
	return &GCSStorage{bucket: bucket, bucketName: bucketName, logger: logger}, nil
}

// Upload writes the object and returns its public download URL.
func (s *GCSStorage) Upload(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	w := s.bucket.Object(path).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		w.Close()
		return "", fmt.Errorf("writing object %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalizing object %s: %w", path, err)
	}

	url := fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucketName, path)
	s.logger.Debug("object uploaded", zap.String("path", path), zap.Int("bytes", len(data)))
	return url, nil
}
