// Package storage uploads product images to an S3-compatible bucket and
// hands back an opaque object key. The rest of the system stores the key on
// the product and never interprets file contents.
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appconfig "rental-backend/internal/config"
)

var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

type ImageStore struct {
	client *s3.Client
	bucket string
}

// NewImageStore builds an image store from the storage config. Returns nil
// when no bucket is configured; callers treat a nil store as "uploads
// disabled" and keep working.
func NewImageStore(cfg *appconfig.Config) (*ImageStore, error) {
	if cfg.Storage.Bucket == "" {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.Storage.AccessKey,
			cfg.Storage.SecretKey,
			"",
		)),
		awsconfig.WithRegion(cfg.Storage.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to configure image storage: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
		}
	})

	return &ImageStore{client: client, bucket: cfg.Storage.Bucket}, nil
}

// AllowedFile reports whether a filename has an accepted image extension.
func AllowedFile(filename string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// Upload stores an image under uploads/<productCode>_<filename> and returns
// the object key.
func (s *ImageStore) Upload(ctx context.Context, productCode, filename, contentType string, body io.Reader) (string, error) {
	if !AllowedFile(filename) {
		return "", fmt.Errorf("file type not allowed: %s", filename)
	}

	key := fmt.Sprintf("uploads/%s_%s", productCode, filepath.Base(filename))
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	return key, nil
}

// Fetch streams an image back for serving. The caller must close the reader.
func (s *ImageStore) Fetch(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}
	return out.Body, nil
}
