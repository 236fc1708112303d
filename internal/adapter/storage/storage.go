package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/storage/cloudinary"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/storage/s3"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/config"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

const tracerName = "marketplace-service/storage"

// New builds the image store selected by cfg.Provider wrapped with timeouts,
// metrics and tracing.
func New(cfg config.StorageConfig, m *metrics.MetricsManager, log *logger.Logger) (*InstrumentedStore, error) {
	var (
		backend domain.ImageStore
		err     error
	)
	switch cfg.Provider {
	case config.StorageCloudinary:
		backend, err = cloudinary.New(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder, log)
	case config.StorageS3:
		backend, err = s3.New(cfg.S3Endpoint, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3UseSSL, log)
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return NewInstrumented(backend, cfg.Provider, cfg.Timeout, m, log), nil
}

// InstrumentedStore decorates an ImageStore. Every backend error is wrapped
// with domain.ErrStorage.
type InstrumentedStore struct {
	next     domain.ImageStore
	provider string
	timeout  time.Duration
	metrics  *metrics.MetricsManager
	logger   *logger.Logger
}

func NewInstrumented(next domain.ImageStore, provider string, timeout time.Duration, m *metrics.MetricsManager, log *logger.Logger) *InstrumentedStore {
	return &InstrumentedStore{
		next:     next,
		provider: provider,
		timeout:  timeout,
		metrics:  m,
		logger:   log.Named("ImageStore"),
	}
}

func (s *InstrumentedStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *InstrumentedStore) observe(op string, err error) {
	if s.metrics == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	s.metrics.StorageOperationsTotal.WithLabelValues(op, result).Inc()
}

func (s *InstrumentedStore) Upload(ctx context.Context, folder string, file domain.LocalFile) (domain.Asset, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "storage.Upload")
	defer span.End()
	span.SetAttributes(
		attribute.String("storage.provider", s.provider),
		attribute.String("storage.folder", folder),
		attribute.Int64("file.size", file.Size),
	)

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	asset, err := s.next.Upload(ctx, folder, file)
	s.observe("upload", err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "upload failed")
		s.logger.Error("Image upload failed",
			zap.String("provider", s.provider),
			zap.String("filename", file.Filename),
			zap.Error(err),
		)
		return domain.Asset{}, fmt.Errorf("%w: upload %s: %v", domain.ErrStorage, file.Filename, err)
	}
	s.logger.Debug("Image uploaded",
		zap.String("public_id", asset.PublicID),
		zap.Duration("took", time.Since(start)),
	)
	return asset, nil
}

func (s *InstrumentedStore) Delete(ctx context.Context, publicID string) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "storage.Delete")
	defer span.End()
	span.SetAttributes(attribute.String("storage.public_id", publicID))

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	err := s.next.Delete(ctx, publicID)
	s.observe("delete", err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete failed")
		s.logger.Warn("Image delete failed", zap.String("public_id", publicID), zap.Error(err))
		return fmt.Errorf("%w: delete %s: %v", domain.ErrStorage, publicID, err)
	}
	return nil
}
