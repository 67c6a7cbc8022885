package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"dms/internal/config"
)

const bucketCheckTimeout = 10 * time.Second

// minioStorage keeps document bodies in a single MinIO/S3 bucket.
// It is safe for concurrent use by multiple goroutines.
type minioStorage struct {
	client *minio.Client
	bucket string
}

var _ Storage = (*minioStorage)(nil)

func validateMinIOConfig(cfg config.MinIOConfig) error {
	var errs []error
	if cfg.Endpoint == "" {
		errs = append(errs, errors.New("minio endpoint is required"))
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		errs = append(errs, errors.New("minio credentials are required"))
	}
	if cfg.Bucket == "" {
		errs = append(errs, errors.New("minio bucket is required"))
	}
	return errors.Join(errs...)
}

// NewMinIO connects to the object store and creates the bucket on first start.
func NewMinIO(ctx context.Context, cfg config.MinIOConfig, logger *zap.Logger) (Storage, error) {
	if err := validateMinIOConfig(cfg); err != nil {
		return nil, err
	}

	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	created, err := ensureBucket(ctx, cli, cfg.Bucket)
	if err != nil {
		return nil, err
	}
	logger.Info("object_storage_ready",
		zap.String("endpoint", cfg.Endpoint),
		zap.String("bucket", cfg.Bucket),
		zap.Bool("bucket_created", created),
	)
	return &minioStorage{client: cli, bucket: cfg.Bucket}, nil
}

func ensureBucket(ctx context.Context, cli *minio.Client, bucket string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, bucketCheckTimeout)
	defer cancel()

	exists, err := cli.BucketExists(ctx, bucket)
	if err != nil {
		return false, fmt.Errorf("check bucket %q: %w", bucket, err)
	}
	if exists {
		return false, nil
	}
	if err := cli.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		return false, fmt.Errorf("create bucket %q: %w", bucket, err)
	}
	return true, nil
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}

func (m *minioStorage) Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error) {
	uploaded, err := m.client.PutObject(ctx, m.bucket, key, r, opt.Size, minio.PutObjectOptions{
		ContentType:  opt.ContentType,
		UserMetadata: opt.Metadata,
	})
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("put object %s: %w", key, err)
	}
	// PutObject does not report a modification time.
	return ObjectInfo{
		Key:          key,
		Size:         uploaded.Size,
		ETag:         uploaded.ETag,
		ContentType:  opt.ContentType,
		LastModified: time.Now(),
		Metadata:     opt.Metadata,
	}, nil
}

func (m *minioStorage) Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, ObjectInfo{}, fmt.Errorf("get object %s: %w", key, err)
	}
	// GetObject is lazy; Stat surfaces a missing key.
	st, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		if isNoSuchKey(err) {
			return nil, ObjectInfo{}, fmt.Errorf("%w: %s", ErrObjectNotFound, key)
		}
		return nil, ObjectInfo{}, fmt.Errorf("stat object %s: %w", key, err)
	}
	return obj, ObjectInfo{
		Key:          key,
		Size:         st.Size,
		ETag:         st.ETag,
		ContentType:  st.ContentType,
		LastModified: st.LastModified,
		Metadata:     st.UserMetadata,
	}, nil
}

func (m *minioStorage) Delete(ctx context.Context, key string) error {
	err := m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{})
	if err != nil && !isNoSuchKey(err) {
		return fmt.Errorf("remove object %s: %w", key, err)
	}
	return nil
}
