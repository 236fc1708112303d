package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/metrics"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ItemUsecase implements the owner and public side of the item catalogue.
type ItemUsecase struct {
	items      domain.ItemRepository
	categories domain.CategoryRepository
	store      domain.ImageStore
	cache      domain.ItemCache
	events     events
	metrics    *metrics.MetricsManager
	logger     *logger.Logger
	now        func() time.Time
}

// NewItemUsecase wires the usecase. cache, pub and m may be nil.
func NewItemUsecase(
	items domain.ItemRepository,
	categories domain.CategoryRepository,
	store domain.ImageStore,
	cache domain.ItemCache,
	pub domain.EventPublisher,
	m *metrics.MetricsManager,
	log *logger.Logger,
) *ItemUsecase {
	log = log.Named("ItemUsecase")
	return &ItemUsecase{
		items:      items,
		categories: categories,
		store:      store,
		cache:      cache,
		events:     events{pub: pub, logger: log},
		metrics:    m,
		logger:     log,
		now:        time.Now,
	}
}

// CreateItemInput carries a new listing. Images may be already hosted assets,
// spooled files to upload, or both.
type CreateItemInput struct {
	Details domain.ItemDetails
	Images  []domain.Image
	Files   []domain.LocalFile
}

func (uc *ItemUsecase) Create(ctx context.Context, actor domain.Actor, in CreateItemInput) (*domain.Item, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	total := len(in.Images) + len(in.Files)
	if total == 0 {
		return nil, fmt.Errorf("%w: at least one image is required", domain.ErrInvalidInput)
	}
	if total > domain.MaxItemImages {
		return nil, fmt.Errorf("%w: an item can have at most %d images", domain.ErrInvalidInput, domain.MaxItemImages)
	}
	for _, img := range in.Images {
		if img.URL == "" || img.PublicID == "" {
			return nil, fmt.Errorf("%w: images need url and publicId", domain.ErrInvalidInput)
		}
	}
	if err := in.Details.Validate(); err != nil {
		return nil, err
	}
	if err := uc.checkCategory(ctx, in.Details.Category); err != nil {
		return nil, err
	}

	assets, err := uploadAll(ctx, uc.store, folderItems, in.Files, uc.logger)
	if err != nil {
		return nil, err
	}
	uploaded := make([]string, len(assets))
	for k, a := range assets {
		uploaded[k] = a.PublicID
	}

	images := append(append([]domain.Image(nil), in.Images...), imagesFromAssets(assets)...)
	item, err := domain.NewItem(actor.UserID, in.Details, images, uc.now())
	if err != nil {
		deleteAssets(context.WithoutCancel(ctx), uc.store, uploaded, uc.logger)
		return nil, err
	}
	if err := uc.items.Create(ctx, item); err != nil {
		deleteAssets(context.WithoutCancel(ctx), uc.store, uploaded, uc.logger)
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.ItemsCreatedTotal.Inc()
	}
	uc.events.publish(ctx, domain.SubjectItemCreated, domain.NewItemEvent(item, "", actor.UserID, item.CreatedAt))
	uc.logger.Info("Item created",
		zap.String("item_id", item.ID.Hex()),
		zap.String("owner", item.Owner),
		zap.String("type", string(item.Type())),
	)
	return item, nil
}

func (uc *ItemUsecase) checkCategory(ctx context.Context, id primitive.ObjectID) error {
	cat, err := uc.categories.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: category does not exist", domain.ErrInvalidInput)
		}
		return err
	}
	if !cat.IsActive {
		return fmt.Errorf("%w: category %q is not active", domain.ErrInvalidInput, cat.Name)
	}
	return nil
}

// Get returns the item if actor may see it. Hidden items look like missing ones.
func (uc *ItemUsecase) Get(ctx context.Context, actor domain.Actor, id primitive.ObjectID) (*domain.Item, error) {
	item, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !item.VisibleTo(actor, uc.now()) {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

// load reads through the cache.
func (uc *ItemUsecase) load(ctx context.Context, id primitive.ObjectID) (*domain.Item, error) {
	if uc.cache != nil {
		item, err := uc.cache.Get(ctx, id)
		if err == nil {
			return item, nil
		}
		if !errors.Is(err, domain.ErrCacheMiss) {
			uc.logger.Warn("Item cache read failed", zap.String("item_id", id.Hex()), zap.Error(err))
		}
	}

	item, err := uc.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if uc.cache != nil {
		if err := uc.cache.Set(ctx, item); err != nil {
			uc.logger.Warn("Item cache write failed", zap.String("item_id", id.Hex()), zap.Error(err))
		}
	}
	return item, nil
}

func (uc *ItemUsecase) invalidate(ctx context.Context, id primitive.ObjectID) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Delete(ctx, id); err != nil {
		uc.logger.Warn("Item cache invalidation failed", zap.String("item_id", id.Hex()), zap.Error(err))
	}
}

// List returns the public catalogue. Admins may ask for any status, in which
// case the visibility window is not applied.
func (uc *ItemUsecase) List(ctx context.Context, actor domain.Actor, f domain.ItemFilter) ([]*domain.Item, Pagination, error) {
	if f.Sort != "" && !f.Sort.IsValid() {
		return nil, Pagination{}, fmt.Errorf("%w: unknown sort %q", domain.ErrInvalidInput, f.Sort)
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return nil, Pagination{}, fmt.Errorf("%w: minPrice cannot exceed maxPrice", domain.ErrInvalidInput)
	}
	for _, s := range f.Statuses {
		if !s.IsValid() {
			return nil, Pagination{}, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, s)
		}
	}
	f.Owner = ""
	if !actor.IsAdmin() || len(f.Statuses) == 0 {
		now := uc.now()
		f.Statuses = []domain.ItemStatus{domain.ItemStatusActive}
		f.VisibleAt = &now
	}
	return uc.list(ctx, f)
}

// Search runs a full text query over the public catalogue.
func (uc *ItemUsecase) Search(ctx context.Context, f domain.ItemFilter) ([]*domain.Item, Pagination, error) {
	f.Query = strings.TrimSpace(f.Query)
	if f.Query == "" {
		return nil, Pagination{}, fmt.Errorf("%w: search query is required", domain.ErrInvalidInput)
	}
	if f.Sort != "" && !f.Sort.IsValid() {
		return nil, Pagination{}, fmt.Errorf("%w: unknown sort %q", domain.ErrInvalidInput, f.Sort)
	}
	now := uc.now()
	f.Owner = ""
	f.Statuses = []domain.ItemStatus{domain.ItemStatusActive}
	f.VisibleAt = &now
	return uc.list(ctx, f)
}

// ListMine lists the actor's own items in any status.
func (uc *ItemUsecase) ListMine(ctx context.Context, actor domain.Actor, statuses []domain.ItemStatus, page, limit int) ([]*domain.Item, Pagination, error) {
	if err := requireUser(actor); err != nil {
		return nil, Pagination{}, err
	}
	for _, s := range statuses {
		if !s.IsValid() {
			return nil, Pagination{}, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, s)
		}
	}
	return uc.list(ctx, domain.ItemFilter{
		Owner:    actor.UserID,
		Statuses: statuses,
		Sort:     domain.SortNewest,
		Page:     page,
		Limit:    limit,
	})
}

func (uc *ItemUsecase) list(ctx context.Context, f domain.ItemFilter) ([]*domain.Item, Pagination, error) {
	f.Page, f.Limit = NormalizePage(f.Page, f.Limit)
	items, total, err := uc.items.List(ctx, f)
	if err != nil {
		return nil, Pagination{}, err
	}
	return items, Pagination{Page: f.Page, Limit: f.Limit, Total: total}, nil
}

// loadOwned fetches the item from the database for a write by its owner.
func (uc *ItemUsecase) loadOwned(ctx context.Context, actor domain.Actor, id primitive.ObjectID) (*domain.Item, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	item, err := uc.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !item.IsOwnedBy(actor.UserID) {
		uc.logger.Warn("User forbidden to modify item",
			zap.String("item_id", id.Hex()),
			zap.String("owner", item.Owner),
			zap.String("requesting_user", actor.UserID),
		)
		return nil, fmt.Errorf("%w: only the owner can modify this item", domain.ErrForbidden)
	}
	return item, nil
}

// save persists item guarded by its previous status and emits the status change, if any.
func (uc *ItemUsecase) save(ctx context.Context, item *domain.Item, prev domain.ItemStatus, actor string, subject string) error {
	if err := uc.items.Update(ctx, item, prev); err != nil {
		return err
	}
	uc.invalidate(ctx, item.ID)
	if prev != item.Status {
		recordTransition(uc.metrics, prev, item.Status)
		if subject == "" {
			subject = domain.SubjectItemStatusChanged
		}
	}
	if subject != "" {
		uc.events.publish(ctx, subject, domain.NewItemEvent(item, prev, actor, item.UpdatedAt))
	}
	return nil
}

func recordTransition(m *metrics.MetricsManager, from, to domain.ItemStatus) {
	if m == nil || from == to {
		return
	}
	m.ItemTransitionsTotal.WithLabelValues(string(from), string(to)).Inc()
}

// Update replaces the editable fields. Approved or rejected items go back to pending.
func (uc *ItemUsecase) Update(ctx context.Context, actor domain.Actor, id primitive.ObjectID, details domain.ItemDetails) (*domain.Item, error) {
	item, err := uc.loadOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if details.Category != item.Category {
		if err := uc.checkCategory(ctx, details.Category); err != nil {
			return nil, err
		}
	}
	prev := item.Status
	if err := item.ApplyDetails(details, uc.now()); err != nil {
		return nil, err
	}
	if err := uc.save(ctx, item, prev, actor.UserID, ""); err != nil {
		return nil, err
	}
	uc.logger.Info("Item updated", zap.String("item_id", id.Hex()), zap.String("status", string(item.Status)))
	return item, nil
}

// Delete removes the item for its owner or an admin, then its stored images.
func (uc *ItemUsecase) Delete(ctx context.Context, actor domain.Actor, id primitive.ObjectID) error {
	if err := requireUser(actor); err != nil {
		return err
	}
	item, err := uc.items.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !item.IsOwnedBy(actor.UserID) && !actor.IsAdmin() {
		return fmt.Errorf("%w: only the owner or an admin can delete this item", domain.ErrForbidden)
	}
	if err := uc.items.Delete(ctx, id); err != nil {
		return err
	}
	uc.invalidate(ctx, id)
	deleteAssets(context.WithoutCancel(ctx), uc.store, item.AssetIDs(), uc.logger)

	uc.events.publish(ctx, domain.SubjectItemDeleted, domain.NewItemEvent(item, item.Status, actor.UserID, uc.now()))
	uc.logger.Info("Item deleted", zap.String("item_id", id.Hex()), zap.String("by", actor.UserID))
	return nil
}

func (uc *ItemUsecase) ToggleStatus(ctx context.Context, actor domain.Actor, id primitive.ObjectID) (*domain.Item, error) {
	item, err := uc.loadOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	prev := item.Status
	if err := item.ToggleStatus(uc.now()); err != nil {
		return nil, err
	}
	if err := uc.save(ctx, item, prev, actor.UserID, domain.SubjectItemStatusChanged); err != nil {
		return nil, err
	}
	return item, nil
}

func (uc *ItemUsecase) MarkSold(ctx context.Context, actor domain.Actor, id primitive.ObjectID) (*domain.Item, error) {
	item, err := uc.loadOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	prev := item.Status
	if err := item.MarkSold(uc.now()); err != nil {
		return nil, err
	}
	if err := uc.save(ctx, item, prev, actor.UserID, domain.SubjectItemSold); err != nil {
		return nil, err
	}
	return item, nil
}

// Submit sends a draft to moderation.
func (uc *ItemUsecase) Submit(ctx context.Context, actor domain.Actor, id primitive.ObjectID) (*domain.Item, error) {
	item, err := uc.loadOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	prev := item.Status
	if err := item.Submit(uc.now()); err != nil {
		return nil, err
	}
	if err := uc.save(ctx, item, prev, actor.UserID, domain.SubjectItemStatusChanged); err != nil {
		return nil, err
	}
	return item, nil
}

// IncrementStat bumps a counter atomically. Cached copies keep their older
// counters until they expire.
func (uc *ItemUsecase) IncrementStat(ctx context.Context, id primitive.ObjectID, stat domain.StatType) (domain.Stats, error) {
	if !stat.IsValid() {
		return domain.Stats{}, fmt.Errorf("%w: stat type must be views, phones or chats", domain.ErrInvalidInput)
	}
	return uc.items.IncrementStat(ctx, id, stat)
}

func (uc *ItemUsecase) AddImages(ctx context.Context, actor domain.Actor, id primitive.ObjectID, files []domain.LocalFile) (*domain.Item, error) {
	item, err := uc.loadOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no images provided", domain.ErrInvalidInput)
	}
	if len(item.Images)+len(files) > domain.MaxItemImages {
		return nil, fmt.Errorf("%w: an item can have at most %d images", domain.ErrInvalidInput, domain.MaxItemImages)
	}

	assets, err := uploadAll(ctx, uc.store, folderItems, files, uc.logger)
	if err != nil {
		return nil, err
	}
	rollback := func() {
		ids := make([]string, len(assets))
		for k, a := range assets {
			ids[k] = a.PublicID
		}
		deleteAssets(context.WithoutCancel(ctx), uc.store, ids, uc.logger)
	}

	prev := item.Status
	if err := item.AddImages(imagesFromAssets(assets), uc.now()); err != nil {
		rollback()
		return nil, err
	}
	if err := uc.save(ctx, item, prev, actor.UserID, ""); err != nil {
		rollback()
		return nil, err
	}
	return item, nil
}

// RemoveImage drops one image and deletes its stored file. The last image stays.
func (uc *ItemUsecase) RemoveImage(ctx context.Context, actor domain.Actor, id primitive.ObjectID, publicID string) (*domain.Item, error) {
	item, err := uc.loadOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	prev := item.Status
	removed, err := item.RemoveImage(publicID, uc.now())
	if err != nil {
		return nil, err
	}
	if err := uc.save(ctx, item, prev, actor.UserID, ""); err != nil {
		return nil, err
	}
	deleteAssets(context.WithoutCancel(ctx), uc.store, []string{removed.PublicID}, uc.logger)
	return item, nil
}

func (uc *ItemUsecase) SetMainImage(ctx context.Context, actor domain.Actor, id primitive.ObjectID, publicID string) (*domain.Item, error) {
	item, err := uc.loadOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	prev := item.Status
	if err := item.SetMainImage(publicID, uc.now()); err != nil {
		return nil, err
	}
	if err := uc.save(ctx, item, prev, actor.UserID, ""); err != nil {
		return nil, err
	}
	return item, nil
}

// ExpireEnded closes listings whose visibility window has passed. Used by the scheduler.
func (uc *ItemUsecase) ExpireEnded(ctx context.Context) (int64, error) {
	now := uc.now()
	ids, err := uc.items.ExpireEnded(ctx, now)
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		uc.invalidate(ctx, id)
	}
	n := int64(len(ids))
	if n > 0 {
		if uc.metrics != nil {
			uc.metrics.ExpiredItemsTotal.Add(float64(n))
		}
		uc.events.publish(ctx, domain.SubjectItemsExpired, domain.ItemsExpiredEvent{Count: n, OccurredAt: now})
		uc.logger.Info("Expired listings", zap.Int64("count", n))
	}
	return n, nil
}
