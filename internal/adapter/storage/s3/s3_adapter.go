package s3

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/platform/logger"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type S3Storage struct {
	client *minio.Client
	bucket string
	logger *logger.Logger
}

// NewS3Storage connects to MinIO and makes sure the bucket exists.
func NewS3Storage(ctx context.Context, endpoint, accessKey, secretKey, bucketName string, useSSL bool, log *logger.Logger) (*S3Storage, error) {
	log.Info("Initializing S3 MinIO Storage", "endpoint", endpoint, "bucket", bucketName, "use_ssl", useSSL)

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		log.Error("S3Storage: failed to create MinIO client", "endpoint", endpoint, "error", err)
		return nil, fmt.Errorf("failed to create minio client for endpoint %s: %w", endpoint, err)
	}

	exists, err := client.BucketExists(ctx, bucketName)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", bucketName, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
			log.Error("S3Storage: failed to make bucket", "bucket", bucketName, "error", err)
			return nil, fmt.Errorf("make bucket %s: %w", bucketName, err)
		}
		log.Info("S3Storage: bucket created", "bucket", bucketName)
	}

	return &S3Storage{client: client, bucket: bucketName, logger: log}, nil
}

// Upload writes data to <pathPrefix>/<fileName> and returns the object URL.
func (s *S3Storage) Upload(ctx context.Context, pathPrefix, fileName, contentType string, data []byte) (string, error) {
	key := objectKey(pathPrefix, fileName)

	info, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		s.logger.Error("S3Storage.Upload: PutObject failed", "bucket", s.bucket, "key", key, "error", err)
		return "", fmt.Errorf("failed to upload object %s to bucket %s: %w", key, s.bucket, err)
	}
	s.logger.Debug("S3Storage.Upload: file uploaded", "key", info.Key, "etag", info.ETag, "size", info.Size)

	return objectURL(s.client.EndpointURL().String(), s.bucket, key), nil
}

func objectKey(prefix, name string) string {
	return path.Join(prefix, path.Base(name))
}

func objectURL(endpoint, bucket, key string) string {
	return fmt.Sprintf("%s/%s/%s", endpoint, bucket, key)
}
