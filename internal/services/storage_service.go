package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	objectKeyPrefix = "csv-files/"
	signedURLExpiry = 7 * 24 * time.Hour
)

// StorageService stores transformed artifacts in an S3-compatible bucket and
// hands out presigned download URLs valid for one week.
type StorageService struct {
	client *minio.Client
	bucket string
}

func NewStorageService(endpoint, region, accessKey, secretKey, bucket string, useSSL bool) (*StorageService, error) {
	if endpoint == "" {
		return nil, errors.New("endpoint is empty")
	}
	if accessKey == "" {
		return nil, errors.New("access key is empty")
	}
	if secretKey == "" {
		return nil, errors.New("secret key is empty")
	}
	if bucket == "" {
		return nil, errors.New("bucket is empty")
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}

	return &StorageService{client: client, bucket: bucket}, nil
}

func (s *StorageService) Upload(ctx context.Context, localPath string, logicalName string) (string, error) {
	if s == nil {
		return "", errors.New("storage service is nil")
	}
	if localPath == "" {
		return "", errors.New("local path is empty")
	}
	if logicalName == "" {
		return "", errors.New("logical name is empty")
	}

	key := objectKeyPrefix + logicalName
	_, err := s.client.FPutObject(ctx, s.bucket, key, localPath, minio.PutObjectOptions{
		ContentType: "text/csv",
	})
	if err != nil {
		return "", fmt.Errorf("upload object: %w", err)
	}

	return s.presign(ctx, key)
}

func (s *StorageService) RegenerateSignedURL(ctx context.Context, key string) (string, error) {
	if s == nil {
		return "", errors.New("storage service is nil")
	}
	if key == "" {
		return "", errors.New("key is empty")
	}

	return s.presign(ctx, fullObjectKey(key))
}

func (s *StorageService) DeleteObject(ctx context.Context, key string) error {
	if s == nil {
		return errors.New("storage service is nil")
	}
	if key == "" {
		return errors.New("key is empty")
	}

	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete object: %w", err)
	}

	return nil
}

func (s *StorageService) presign(ctx context.Context, key string) (string, error) {
	signed, err := s.client.PresignedGetObject(ctx, s.bucket, key, signedURLExpiry, nil)
	if err != nil {
		return "", fmt.Errorf("presign object: %w", err)
	}

	return signed.String(), nil
}

// fullObjectKey tolerates callers passing either the bare logical name or the
// already-prefixed bucket key.
func fullObjectKey(key string) string {
	if strings.HasPrefix(key, objectKeyPrefix) {
		return key
	}
	return objectKeyPrefix + key
}
