package usecase

import (
	"context"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MockItemRepository struct{ mock.Mock }

func (m *MockItemRepository) Create(ctx context.Context, item *domain.Item) error {
	return m.Called(ctx, item).Error(0)
}
func (m *MockItemRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Item), args.Error(1)
}
func (m *MockItemRepository) Update(ctx context.Context, item *domain.Item, expected domain.ItemStatus) error {
	return m.Called(ctx, item, expected).Error(0)
}
func (m *MockItemRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return m.Called(ctx, id).Error(0)
}
func (m *MockItemRepository) List(ctx context.Context, filter domain.ItemFilter) ([]*domain.Item, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*domain.Item), args.Get(1).(int64), args.Error(2)
}
func (m *MockItemRepository) IncrementStat(ctx context.Context, id primitive.ObjectID, stat domain.StatType) (domain.Stats, error) {
	args := m.Called(ctx, id, stat)
	return args.Get(0).(domain.Stats), args.Error(1)
}
func (m *MockItemRepository) CountByCategories(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockItemRepository) RefsByCategories(ctx context.Context, ids []primitive.ObjectID) ([]domain.ItemRef, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ItemRef), args.Error(1)
}
func (m *MockItemRepository) DeleteByCategories(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockItemRepository) ExpireEnded(ctx context.Context, now time.Time) ([]primitive.ObjectID, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]primitive.ObjectID), args.Error(1)
}

type MockCategoryRepository struct{ mock.Mock }

func (m *MockCategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	return m.Called(ctx, c).Error(0)
}
func (m *MockCategoryRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}
func (m *MockCategoryRepository) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}
func (m *MockCategoryRepository) Update(ctx context.Context, c *domain.Category) error {
	return m.Called(ctx, c).Error(0)
}
func (m *MockCategoryRepository) List(ctx context.Context, activeOnly bool) ([]*domain.Category, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Category), args.Error(1)
}
func (m *MockCategoryRepository) ChildIDs(ctx context.Context, parents []primitive.ObjectID) ([]primitive.ObjectID, error) {
	args := m.Called(ctx, parents)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]primitive.ObjectID), args.Error(1)
}
func (m *MockCategoryRepository) GetMany(ctx context.Context, ids []primitive.ObjectID) ([]*domain.Category, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Category), args.Error(1)
}
func (m *MockCategoryRepository) DeleteMany(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

type MockNotificationRepository struct{ mock.Mock }

func (m *MockNotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	return m.Called(ctx, n).Error(0)
}
func (m *MockNotificationRepository) List(ctx context.Context, recipient string, unreadOnly bool, page, limit int) ([]*domain.Notification, int64, error) {
	args := m.Called(ctx, recipient, unreadOnly, page, limit)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*domain.Notification), args.Get(1).(int64), args.Error(2)
}
func (m *MockNotificationRepository) CountUnread(ctx context.Context, recipient string) (int64, error) {
	args := m.Called(ctx, recipient)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockNotificationRepository) MarkRead(ctx context.Context, id primitive.ObjectID, recipient string, at time.Time) (*domain.Notification, error) {
	args := m.Called(ctx, id, recipient, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Notification), args.Error(1)
}
func (m *MockNotificationRepository) MarkAllRead(ctx context.Context, recipient string, at time.Time) (int64, error) {
	args := m.Called(ctx, recipient, at)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockNotificationRepository) Delete(ctx context.Context, id primitive.ObjectID, recipient string) error {
	return m.Called(ctx, id, recipient).Error(0)
}
func (m *MockNotificationRepository) DeleteRead(ctx context.Context, recipient string) (int64, error) {
	args := m.Called(ctx, recipient)
	return args.Get(0).(int64), args.Error(1)
}

type MockProfileRepository struct{ mock.Mock }

func (m *MockProfileRepository) Create(ctx context.Context, p *domain.Profile) error {
	return m.Called(ctx, p).Error(0)
}
func (m *MockProfileRepository) GetByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}
func (m *MockProfileRepository) Update(ctx context.Context, p *domain.Profile) error {
	return m.Called(ctx, p).Error(0)
}
func (m *MockProfileRepository) Delete(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

type MockStatsRepository struct{ mock.Mock }

func (m *MockStatsRepository) PopularCategories(ctx context.Context, now time.Time, limit, itemsPerCategory int) ([]domain.PopularCategory, error) {
	args := m.Called(ctx, now, limit, itemsPerCategory)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PopularCategory), args.Error(1)
}
func (m *MockStatsRepository) Dashboard(ctx context.Context, now time.Time) (*domain.Dashboard, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Dashboard), args.Error(1)
}

type MockImageStore struct{ mock.Mock }

func (m *MockImageStore) Upload(ctx context.Context, folder string, file domain.LocalFile) (domain.Asset, error) {
	args := m.Called(ctx, folder, file)
	return args.Get(0).(domain.Asset), args.Error(1)
}
func (m *MockImageStore) Delete(ctx context.Context, publicID string) error {
	return m.Called(ctx, publicID).Error(0)
}

type MockPublisher struct{ mock.Mock }

func (m *MockPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	return m.Called(ctx, subject, data).Error(0)
}

type MockItemCache struct{ mock.Mock }

func (m *MockItemCache) Get(ctx context.Context, id primitive.ObjectID) (*domain.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Item), args.Error(1)
}
func (m *MockItemCache) Set(ctx context.Context, item *domain.Item) error {
	return m.Called(ctx, item).Error(0)
}
func (m *MockItemCache) Delete(ctx context.Context, id primitive.ObjectID) error {
	return m.Called(ctx, id).Error(0)
}

type MockMailer struct{ mock.Mock }

func (m *MockMailer) SendModerationResult(ctx context.Context, to string, item *domain.Item) error {
	return m.Called(ctx, to, item).Error(0)
}

// fakeTx runs fn inline and records that a transaction was used.
type fakeTx struct{ calls int }

func (f *fakeTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

var (
	testNow   = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)
	owner     = domain.Actor{UserID: "owner-1", Role: domain.RoleUser}
	stranger  = domain.Actor{UserID: "user-2", Role: domain.RoleUser}
	admin     = domain.Actor{UserID: "admin-1", Role: domain.RoleAdmin}
	anonymous = domain.Actor{}
)

func fixedNow() time.Time { return testNow }

func testDetails(category primitive.ObjectID) domain.ItemDetails {
	return domain.ItemDetails{
		Category:    category,
		Title:       "Wool coat",
		Description: "Warm, worn one season",
		Condition:   domain.ConditionGood,
		Size:        "L",
		Offer:       domain.SellOffer{Price: domain.Price{Amount: 2500, Currency: "UAH"}},
	}
}

func testItem(status domain.ItemStatus) *domain.Item {
	end := testNow.Add(24 * time.Hour)
	return &domain.Item{
		ID:          primitive.NewObjectID(),
		Owner:       owner.UserID,
		Category:    primitive.NewObjectID(),
		Title:       "Wool coat",
		Description: "Warm, worn one season",
		Condition:   domain.ConditionGood,
		Offer:       domain.SellOffer{Price: domain.Price{Amount: 2500, Currency: "UAH"}},
		Images: []domain.Image{
			{Asset: domain.Asset{URL: "https://img/a", PublicID: "items/a"}, IsMain: true},
			{Asset: domain.Asset{URL: "https://img/b", PublicID: "items/b"}},
		},
		Status:     status,
		Visibility: domain.Visibility{StartDate: testNow.Add(-time.Hour), EndDate: &end},
		CreatedAt:  testNow.Add(-time.Hour),
		UpdatedAt:  testNow.Add(-time.Hour),
	}
}
