package domain

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ItemSort orders item listings.
type ItemSort string

const (
	SortNewest    ItemSort = "newest"
	SortOldest    ItemSort = "oldest"
	SortPriceAsc  ItemSort = "price_asc"
	SortPriceDesc ItemSort = "price_desc"
	SortPopular   ItemSort = "popular"
)

func (s ItemSort) IsValid() bool {
	switch s {
	case SortNewest, SortOldest, SortPriceAsc, SortPriceDesc, SortPopular:
		return true
	}
	return false
}

// ItemFilter holds parameters for querying items.
type ItemFilter struct {
	Owner      string
	Statuses   []ItemStatus
	Categories []primitive.ObjectID
	Type       ItemType
	Condition  ItemCondition
	Size       string
	MinPrice   *float64
	MaxPrice   *float64
	Featured   *bool
	// VisibleAt restricts results to items whose visibility window contains the instant.
	VisibleAt *time.Time
	// Query runs a full text search over title, description and brand.
	Query string
	Sort  ItemSort
	Page  int
	Limit int
}

// ItemRef identifies an item and the stored files it owns.
type ItemRef struct {
	ID       primitive.ObjectID
	AssetIDs []string
}

type ItemRepository interface {
	Create(ctx context.Context, item *Item) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*Item, error)
	// Update persists item only if its stored status still equals expected.
	// ErrConflict is returned when another writer changed the status first.
	Update(ctx context.Context, item *Item, expected ItemStatus) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	List(ctx context.Context, filter ItemFilter) ([]*Item, int64, error)
	IncrementStat(ctx context.Context, id primitive.ObjectID, stat StatType) (Stats, error)

	CountByCategories(ctx context.Context, categoryIDs []primitive.ObjectID) (int64, error)
	RefsByCategories(ctx context.Context, categoryIDs []primitive.ObjectID) ([]ItemRef, error)
	DeleteByCategories(ctx context.Context, categoryIDs []primitive.ObjectID) (int64, error)

	// ExpireEnded moves active and inactive items whose visibility ended before now
	// to expired and returns their ids.
	ExpireEnded(ctx context.Context, now time.Time) ([]primitive.ObjectID, error)
}

type CategoryRepository interface {
	Create(ctx context.Context, c *Category) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*Category, error)
	GetBySlug(ctx context.Context, slug string) (*Category, error)
	Update(ctx context.Context, c *Category) error
	List(ctx context.Context, activeOnly bool) ([]*Category, error)
	ChildIDs(ctx context.Context, parentIDs []primitive.ObjectID) ([]primitive.ObjectID, error)
	GetMany(ctx context.Context, ids []primitive.ObjectID) ([]*Category, error)
	DeleteMany(ctx context.Context, ids []primitive.ObjectID) (int64, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	List(ctx context.Context, recipient string, unreadOnly bool, page, limit int) ([]*Notification, int64, error)
	CountUnread(ctx context.Context, recipient string) (int64, error)
	MarkRead(ctx context.Context, id primitive.ObjectID, recipient string, at time.Time) (*Notification, error)
	MarkAllRead(ctx context.Context, recipient string, at time.Time) (int64, error)
	Delete(ctx context.Context, id primitive.ObjectID, recipient string) error
	DeleteRead(ctx context.Context, recipient string) (int64, error)
}

type ProfileRepository interface {
	Create(ctx context.Context, p *Profile) error
	GetByUserID(ctx context.Context, userID string) (*Profile, error)
	Update(ctx context.Context, p *Profile) error
	Delete(ctx context.Context, userID string) error
}

// PopularCategory is a category ranked by the number of its active items.
type PopularCategory struct {
	Category   *Category
	ItemsCount int64
	TotalViews int64
	Items      []*Item
}

// Dashboard is the admin overview of the catalogue.
type Dashboard struct {
	TotalItems      int64
	ByStatus        map[ItemStatus]int64
	ByType          map[ItemType]int64
	Totals          Stats
	CreatedLast7d   int64
	OldestPending   *time.Time
	CategoriesTotal int64
	TopCategories   []PopularCategory
}

// StatsRepository runs the aggregation pipelines behind popularity and dashboard views.
type StatsRepository interface {
	// PopularCategories counts only active items whose visibility window contains now.
	PopularCategories(ctx context.Context, now time.Time, limit, itemsPerCategory int) ([]PopularCategory, error)
	Dashboard(ctx context.Context, now time.Time) (*Dashboard, error)
}

// TxManager runs fn inside a database transaction. Repository calls made with
// the context passed to fn take part in it.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// LocalFile is an uploaded file spooled to disk.
type LocalFile struct {
	Path        string
	Filename    string
	ContentType string
	Size        int64
}

// ImageStore keeps image files and addresses them by public id.
type ImageStore interface {
	Upload(ctx context.Context, folder string, file LocalFile) (Asset, error)
	Delete(ctx context.Context, publicID string) error
}

// EventPublisher emits domain events for other services.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
}

// ItemCache is a read-through cache for single items.
type ItemCache interface {
	Get(ctx context.Context, id primitive.ObjectID) (*Item, error)
	Set(ctx context.Context, item *Item) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// Mailer sends transactional emails.
type Mailer interface {
	SendModerationResult(ctx context.Context, to string, item *Item) error
}
