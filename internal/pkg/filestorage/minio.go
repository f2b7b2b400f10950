package filestorage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/bmvt/backend/internal/pkg/logger"
)

// MinIOConfig holds the object store settings.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// MinIOStorage keeps uploads in a bucket under the key <resource>/<name>.
type MinIOStorage struct {
	client *minio.Client
	bucket string
	now    func() time.Time
}

// NewMinIOStorage connects to the object store and ensures the bucket exists.
func NewMinIOStorage(ctx context.Context, cfg MinIOConfig) (*MinIOStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	s := &MinIOStorage{client: client, bucket: cfg.Bucket, now: time.Now}
	if err := s.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *MinIOStorage) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
		}
		logger.Info().Str("bucket", s.bucket).Msg("Bucket created")
	}
	return nil
}

// Save streams the upload into the bucket.
func (s *MinIOStorage) Save(ctx context.Context, resource string, fileHeader *multipart.FileHeader) (*StoredFile, error) {
	if fileHeader == nil {
		return nil, errors.New("no file")
	}
	if !ValidResource(resource) {
		return nil, fmt.Errorf("invalid resource %q", resource)
	}

	src, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	name := GenerateName(s.now(), fileHeader.Filename)
	key := resource + "/" + name
	contentType := fileHeader.Header.Get("Content-Type")
	info, err := s.client.PutObject(ctx, s.bucket, key, src, fileHeader.Size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		logger.Error().Err(err).Str("key", key).Msg("Failed to upload object")
		return nil, fmt.Errorf("failed to upload file %s: %w", key, err)
	}

	return &StoredFile{
		Name:         name,
		OriginalName: fileHeader.Filename,
		PublicPath:   PublicPath(resource, name),
		ContentType:  contentType,
		Size:         info.Size,
	}, nil
}

// Remove deletes the object behind publicPath. RemoveObject already
// succeeds for missing keys.
func (s *MinIOStorage) Remove(ctx context.Context, publicPath string) error {
	key, ok := ObjectKey(publicPath)
	if !ok {
		return nil
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}

// Open returns the object content and its content type.
func (s *MinIOStorage) Open(ctx context.Context, publicPath string) (io.ReadCloser, string, error) {
	key, ok := ObjectKey(publicPath)
	if !ok {
		return nil, "", ErrNotFound
	}
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", fmt.Errorf("failed to get object %s: %w", key, err)
	}
	stat, err := obj.Stat()
	if err != nil {
		obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("failed to stat object %s: %w", key, err)
	}
	return obj, stat.ContentType, nil
}
