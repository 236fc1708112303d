package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/metrics"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// CategoryUsecase manages the category tree.
type CategoryUsecase struct {
	categories domain.CategoryRepository
	items      domain.ItemRepository
	tx         domain.TxManager
	store      domain.ImageStore
	cache      domain.ItemCache
	events     events
	metrics    *metrics.MetricsManager
	logger     *logger.Logger
	now        func() time.Time
}

func NewCategoryUsecase(
	categories domain.CategoryRepository,
	items domain.ItemRepository,
	tx domain.TxManager,
	store domain.ImageStore,
	cache domain.ItemCache,
	pub domain.EventPublisher,
	m *metrics.MetricsManager,
	log *logger.Logger,
) *CategoryUsecase {
	log = log.Named("CategoryUsecase")
	return &CategoryUsecase{
		categories: categories,
		items:      items,
		tx:         tx,
		store:      store,
		cache:      cache,
		events:     events{pub: pub, logger: log},
		metrics:    m,
		logger:     log,
		now:        time.Now,
	}
}

// CreateCategoryInput carries a new category. Exactly one of Icon and IconFile is used;
// IconFile wins when both are set.
type CreateCategoryInput struct {
	Details  domain.CategoryDetails
	Icon     domain.Asset
	IconFile *domain.LocalFile
}

func (uc *CategoryUsecase) Create(ctx context.Context, actor domain.Actor, in CreateCategoryInput) (*domain.Category, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if in.Details.Parent != nil {
		if err := uc.checkParent(ctx, primitive.NilObjectID, *in.Details.Parent); err != nil {
			return nil, err
		}
	}

	icon := in.Icon
	uploaded := ""
	if in.IconFile != nil {
		a, err := uc.store.Upload(ctx, folderCategories, *in.IconFile)
		if err != nil {
			return nil, err
		}
		icon, uploaded = a, a.PublicID
	}

	c, err := domain.NewCategory(in.Details, icon, uc.now())
	if err == nil {
		err = uc.categories.Create(ctx, c)
	}
	if err != nil {
		deleteAssets(context.WithoutCancel(ctx), uc.store, []string{uploaded}, uc.logger)
		return nil, err
	}
	uc.logger.Info("Category created", zap.String("category_id", c.ID.Hex()), zap.String("slug", c.Slug))
	return c, nil
}

// Get resolves an id or a slug. Inactive categories are hidden from non-admins.
func (uc *CategoryUsecase) Get(ctx context.Context, actor domain.Actor, idOrSlug string) (*domain.Category, error) {
	var (
		c   *domain.Category
		err error
	)
	if id, perr := primitive.ObjectIDFromHex(idOrSlug); perr == nil {
		c, err = uc.categories.GetByID(ctx, id)
	} else {
		c, err = uc.categories.GetBySlug(ctx, idOrSlug)
	}
	if err != nil {
		return nil, err
	}
	if !c.IsActive && !actor.IsAdmin() {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

// List returns active categories; admins may include inactive ones.
func (uc *CategoryUsecase) List(ctx context.Context, actor domain.Actor, includeInactive bool) ([]*domain.Category, error) {
	return uc.categories.List(ctx, !(includeInactive && actor.IsAdmin()))
}

func (uc *CategoryUsecase) Tree(ctx context.Context) ([]*domain.CategoryNode, error) {
	list, err := uc.categories.List(ctx, true)
	if err != nil {
		return nil, err
	}
	return domain.BuildTree(list), nil
}

func (uc *CategoryUsecase) Update(ctx context.Context, actor domain.Actor, id primitive.ObjectID, d domain.CategoryDetails) (*domain.Category, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	c, err := uc.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.Parent != nil && (c.Parent == nil || *c.Parent != *d.Parent) {
		if err := uc.checkParent(ctx, id, *d.Parent); err != nil {
			return nil, err
		}
	}
	if err := c.Apply(d, uc.now()); err != nil {
		return nil, err
	}
	if err := uc.categories.Update(ctx, c); err != nil {
		return nil, err
	}
	uc.logger.Info("Category updated", zap.String("category_id", id.Hex()))
	return c, nil
}

// checkParent requires parent to exist and, for an existing category, not to
// sit inside its subtree.
func (uc *CategoryUsecase) checkParent(ctx context.Context, id, parent primitive.ObjectID) error {
	if parent == id {
		return fmt.Errorf("%w: a category cannot be its own parent", domain.ErrInvalidInput)
	}
	if _, err := uc.categories.GetByID(ctx, parent); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: parent category does not exist", domain.ErrInvalidInput)
		}
		return err
	}
	if id.IsZero() {
		return nil
	}

	all, err := uc.categories.List(ctx, false)
	if err != nil {
		return err
	}
	parents := make(map[primitive.ObjectID]*primitive.ObjectID, len(all))
	for _, c := range all {
		parents[c.ID] = c.Parent
	}
	for cur, steps := &parent, 0; cur != nil && steps <= len(all); cur, steps = parents[*cur], steps+1 {
		if *cur == id {
			return fmt.Errorf("%w: moving the category under its own descendant would create a cycle", domain.ErrInvalidInput)
		}
	}
	return nil
}

func (uc *CategoryUsecase) ToggleStatus(ctx context.Context, actor domain.Actor, id primitive.ObjectID) (*domain.Category, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	c, err := uc.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.IsActive = !c.IsActive
	c.UpdatedAt = uc.now()
	if err := uc.categories.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ReplaceIcon uploads a new icon and removes the previous file.
func (uc *CategoryUsecase) ReplaceIcon(ctx context.Context, actor domain.Actor, id primitive.ObjectID, file domain.LocalFile) (*domain.Category, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	c, err := uc.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	icon, err := uc.store.Upload(ctx, folderCategories, file)
	if err != nil {
		return nil, err
	}
	old := c.Icon.PublicID
	c.Icon = icon
	c.UpdatedAt = uc.now()
	if err := uc.categories.Update(ctx, c); err != nil {
		deleteAssets(context.WithoutCancel(ctx), uc.store, []string{icon.PublicID}, uc.logger)
		return nil, err
	}
	deleteAssets(context.WithoutCancel(ctx), uc.store, []string{old}, uc.logger)
	return c, nil
}

// DeleteResult summarises a category deletion.
type DeleteResult struct {
	CategoriesDeleted int64
	ItemsDeleted      int64
}

// Delete removes a category. Without force it refuses when the category has
// subcategories or items. With force the whole subtree and its items go in one
// transaction; stored files are removed after the commit.
func (uc *CategoryUsecase) Delete(ctx context.Context, actor domain.Actor, id primitive.ObjectID, force bool) (*DeleteResult, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	root, err := uc.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !force {
		children, err := uc.categories.ChildIDs(ctx, []primitive.ObjectID{id})
		if err != nil {
			return nil, err
		}
		items, err := uc.items.CountByCategories(ctx, []primitive.ObjectID{id})
		if err != nil {
			return nil, err
		}
		if len(children) > 0 || items > 0 {
			return nil, &domain.DeleteBlockedError{
				HasSubcategories:   len(children) > 0,
				HasItems:           items > 0,
				SubcategoriesCount: int64(len(children)),
				ItemsCount:         items,
			}
		}
	}

	var (
		result   DeleteResult
		assets   []string
		itemIDs  []primitive.ObjectID
		removed  []primitive.ObjectID
		rootIcon = root.Icon.PublicID
	)
	err = uc.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		// Retried transactions start from scratch.
		result, assets, itemIDs, removed = DeleteResult{}, nil, nil, nil

		levels, err := uc.subtree(txCtx, id)
		if err != nil {
			return err
		}
		all := []primitive.ObjectID{id}
		for _, lvl := range levels {
			all = append(all, lvl...)
		}

		refs, err := uc.items.RefsByCategories(txCtx, all)
		if err != nil {
			return err
		}
		for _, r := range refs {
			itemIDs = append(itemIDs, r.ID)
			assets = append(assets, r.AssetIDs...)
		}
		if len(all) > 1 {
			descendants, err := uc.categories.GetMany(txCtx, all[1:])
			if err != nil {
				return err
			}
			for _, c := range descendants {
				assets = append(assets, c.Icon.PublicID)
			}
		}

		if result.ItemsDeleted, err = uc.items.DeleteByCategories(txCtx, all); err != nil {
			return err
		}
		// Deepest level first so no stored category ever points at a deleted parent.
		for k := len(levels) - 1; k >= 0; k-- {
			n, err := uc.categories.DeleteMany(txCtx, levels[k])
			if err != nil {
				return err
			}
			result.CategoriesDeleted += n
		}
		n, err := uc.categories.DeleteMany(txCtx, []primitive.ObjectID{id})
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.ErrNotFound
		}
		result.CategoriesDeleted += n
		removed = all
		return nil
	})
	if err != nil {
		uc.logger.Error("Category delete failed", zap.String("category_id", id.Hex()), zap.Bool("force", force), zap.Error(err))
		return nil, err
	}

	cleanup := context.WithoutCancel(ctx)
	deleteAssets(cleanup, uc.store, append(assets, rootIcon), uc.logger)
	if uc.cache != nil {
		for _, itemID := range itemIDs {
			if err := uc.cache.Delete(cleanup, itemID); err != nil {
				uc.logger.Warn("Item cache invalidation failed", zap.String("item_id", itemID.Hex()), zap.Error(err))
			}
		}
	}

	mode := "plain"
	if force {
		mode = "cascade"
	}
	if uc.metrics != nil {
		uc.metrics.CategoryDeletesTotal.WithLabelValues(mode).Inc()
	}
	ids := make([]string, len(removed))
	for k, r := range removed {
		ids[k] = r.Hex()
	}
	uc.events.publish(ctx, domain.SubjectCategoryDeleted, domain.CategoryDeletedEvent{
		CategoryIDs:  ids,
		ItemsDeleted: result.ItemsDeleted,
		Forced:       force,
		Actor:        actor.UserID,
		OccurredAt:   uc.now(),
	})
	uc.logger.Info("Category deleted",
		zap.String("category_id", id.Hex()),
		zap.String("mode", mode),
		zap.Int64("categories", result.CategoriesDeleted),
		zap.Int64("items", result.ItemsDeleted),
	)
	return &result, nil
}

// subtree returns the descendants of id grouped by depth, nearest level first.
func (uc *CategoryUsecase) subtree(ctx context.Context, id primitive.ObjectID) ([][]primitive.ObjectID, error) {
	var levels [][]primitive.ObjectID
	seen := map[primitive.ObjectID]bool{id: true}
	frontier := []primitive.ObjectID{id}
	for len(frontier) > 0 {
		children, err := uc.categories.ChildIDs(ctx, frontier)
		if err != nil {
			return nil, err
		}
		var next []primitive.ObjectID
		for _, c := range children {
			if !seen[c] {
				seen[c] = true
				next = append(next, c)
			}
		}
		if len(next) > 0 {
			levels = append(levels, next)
		}
		frontier = next
	}
	return levels, nil
}
