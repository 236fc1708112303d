package usecase

import (
	"context"
	"fmt"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"go.uber.org/zap"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Upload folders inside the image store.
const (
	folderItems      = "items"
	folderCategories = "categories"
	folderAvatars    = "avatars"
)

// Pagination describes one page of a list result.
type Pagination struct {
	Page  int
	Limit int
	Total int64
}

// Pages is the number of pages needed for Total at Limit per page.
func (p Pagination) Pages() int {
	if p.Limit <= 0 || p.Total <= 0 {
		return 0
	}
	return int((p.Total + int64(p.Limit) - 1) / int64(p.Limit))
}

// NormalizePage applies defaults and caps the limit.
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}

func requireUser(actor domain.Actor) error {
	if actor.IsAnonymous() {
		return domain.ErrUnauthorized
	}
	return nil
}

func requireAdmin(actor domain.Actor) error {
	if actor.IsAnonymous() {
		return domain.ErrUnauthorized
	}
	if !actor.IsAdmin() {
		return fmt.Errorf("%w: admin role required", domain.ErrForbidden)
	}
	return nil
}

// events publishes domain events. A nil publisher turns publishing off.
type events struct {
	pub    domain.EventPublisher
	logger *logger.Logger
}

func (e events) publish(ctx context.Context, subject string, data interface{}) {
	if e.pub == nil {
		return
	}
	if err := e.pub.Publish(ctx, subject, data); err != nil {
		e.logger.Warn("Failed to publish event", zap.String("subject", subject), zap.Error(err))
	}
}

// uploadAll stores every file in folder. On failure the files already stored are removed again.
func uploadAll(ctx context.Context, store domain.ImageStore, folder string, files []domain.LocalFile, log *logger.Logger) ([]domain.Asset, error) {
	assets := make([]domain.Asset, 0, len(files))
	for _, f := range files {
		a, err := store.Upload(ctx, folder, f)
		if err != nil {
			ids := make([]string, len(assets))
			for k, done := range assets {
				ids[k] = done.PublicID
			}
			deleteAssets(context.WithoutCancel(ctx), store, ids, log)
			return nil, err
		}
		assets = append(assets, a)
	}
	return assets, nil
}

// deleteAssets removes stored files best-effort. Orphaned assets are only logged.
func deleteAssets(ctx context.Context, store domain.ImageStore, publicIDs []string, log *logger.Logger) {
	for _, id := range publicIDs {
		if id == "" {
			continue
		}
		if err := store.Delete(ctx, id); err != nil {
			log.Warn("Failed to delete stored asset", zap.String("public_id", id), zap.Error(err))
		}
	}
}

func imagesFromAssets(assets []domain.Asset) []domain.Image {
	images := make([]domain.Image, len(assets))
	for k, a := range assets {
		images[k] = domain.Image{Asset: a}
	}
	return images
}
