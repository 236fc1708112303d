package s3

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// Store keeps images in an S3 compatible bucket. The object key is the public id.
type Store struct {
	client   *minio.Client
	bucket   string
	endpoint string
	logger   *logger.Logger
}

func New(endpoint, accessKey, secretKey, bucket string, useSSL bool, log *logger.Logger) (*Store, error) {
	log = log.Named("S3Store")
	log.Info("Initializing S3 storage", zap.String("endpoint", endpoint), zap.String("bucket", bucket), zap.Bool("use_ssl", useSSL))

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client for endpoint %s: %w", endpoint, err)
	}

	ctx := context.Background()
	if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		exists, errExists := client.BucketExists(ctx, bucket)
		if errExists != nil || !exists {
			return nil, fmt.Errorf("failed to make/verify bucket %s: (make: %v / exists_check: %v)", bucket, err, errExists)
		}
		log.Info("Bucket already exists", zap.String("bucket", bucket))
	}

	return &Store{
		client:   client,
		bucket:   bucket,
		endpoint: client.EndpointURL().String(),
		logger:   log,
	}, nil
}

// objectKey builds folder/<uuid><ext>, keeping the original extension.
func objectKey(folder, filename string) string {
	name := uuid.NewString() + strings.ToLower(filepath.Ext(filename))
	if folder == "" {
		return name
	}
	return path.Join(folder, name)
}

func (s *Store) Upload(ctx context.Context, folder string, file domain.LocalFile) (domain.Asset, error) {
	key := objectKey(folder, file.Filename)
	info, err := s.client.FPutObject(ctx, s.bucket, key, file.Path, minio.PutObjectOptions{
		ContentType:  file.ContentType,
		UserMetadata: map[string]string{"original-filename": file.Filename},
	})
	if err != nil {
		return domain.Asset{}, fmt.Errorf("failed to upload object %s to bucket %s: %w", key, s.bucket, err)
	}
	s.logger.Debug("Object uploaded", zap.String("key", info.Key), zap.Int64("size", info.Size))

	return domain.Asset{
		URL:      fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, key),
		PublicID: key,
	}, nil
}

func (s *Store) Delete(ctx context.Context, publicID string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, publicID, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove object %s from bucket %s: %w", publicID, s.bucket, err)
	}
	return nil
}
