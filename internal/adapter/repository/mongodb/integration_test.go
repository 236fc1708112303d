//go:build integration

package mongodb

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/config"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const testDatabase = "marketplace_integration"

var (
	testClient *mongo.Client
	testDB     *mongo.Database
	testLogger = logger.NewNop()
)

// TestMain starts a single node replica set so transactions are available.
func TestMain(m *testing.M) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		log.Fatalf("Could not construct pool: %s", err)
	}
	if err := pool.Client.Ping(); err != nil {
		log.Fatalf("Could not connect to Docker: %s", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mongo",
		Tag:        "6.0",
		Cmd:        []string{"--replSet", "rs0", "--bind_ip_all"},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		log.Fatalf("Could not start MongoDB resource: %s", err)
	}
	_ = resource.Expire(300)

	uri := fmt.Sprintf("mongodb://%s/?directConnection=true", resource.GetHostPort("27017/tcp"))
	pool.MaxWait = 2 * time.Minute
	if err := pool.Retry(func() error {
		client, err := Connect(config.MongoConfig{URI: uri, Database: testDatabase, ConnectTimeout: 5 * time.Second}, testLogger)
		if err != nil {
			return err
		}
		testClient = client
		return nil
	}); err != nil {
		log.Fatalf("Could not connect to MongoDB: %s", err)
	}

	initiate := bson.D{{Key: "replSetInitiate", Value: bson.M{
		"_id":     "rs0",
		"members": bson.A{bson.M{"_id": 0, "host": "localhost:27017"}},
	}}}
	if err := testClient.Database("admin").RunCommand(context.Background(), initiate).Err(); err != nil {
		log.Fatalf("Could not initiate replica set: %s", err)
	}
	if err := pool.Retry(func() error {
		var status struct {
			IsWritablePrimary bool `bson:"isWritablePrimary"`
		}
		if err := testClient.Database("admin").RunCommand(context.Background(), bson.D{{Key: "hello", Value: 1}}).Decode(&status); err != nil {
			return err
		}
		if !status.IsWritablePrimary {
			return errors.New("replica set has no primary yet")
		}
		return nil
	}); err != nil {
		log.Fatalf("Replica set did not elect a primary: %s", err)
	}
	testDB = testClient.Database(testDatabase)

	code := m.Run()

	_ = testClient.Disconnect(context.Background())
	if err := pool.Purge(resource); err != nil {
		log.Fatalf("Could not purge MongoDB resource: %s", err)
	}
	os.Exit(code)
}

func clearCollections(t *testing.T) {
	t.Helper()
	for _, name := range []string{itemCollectionName, categoryCollectionName, notificationCollectionName} {
		_, err := testDB.Collection(name).DeleteMany(context.Background(), bson.M{})
		require.NoError(t, err)
	}
}

func seedItem(t *testing.T, repo *ItemRepository, category primitive.ObjectID, status domain.ItemStatus, price float64, end time.Time) *domain.Item {
	t.Helper()
	return seedItemWindow(t, repo, category, status, price, time.Now().Add(-time.Hour), end)
}

func seedItemWindow(t *testing.T, repo *ItemRepository, category primitive.ObjectID, status domain.ItemStatus, price float64, start, end time.Time) *domain.Item {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Millisecond)
	item := &domain.Item{
		ID:          primitive.NewObjectID(),
		Owner:       "owner-1",
		Category:    category,
		Title:       "Wool coat",
		Description: "Warm and heavy",
		Condition:   domain.ConditionGood,
		Offer:       domain.SellOffer{Price: domain.Price{Amount: price, Currency: "UAH"}},
		Images:      []domain.Image{{Asset: domain.Asset{URL: "https://img/1", PublicID: "items/" + primitive.NewObjectID().Hex()}, IsMain: true}},
		Status:      status,
		Visibility:  domain.Visibility{StartDate: start.UTC().Truncate(time.Millisecond), EndDate: &end},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, repo.Create(context.Background(), item))
	return item
}

func seedCategory(t *testing.T, repo *CategoryRepository, name string, parent *primitive.ObjectID) *domain.Category {
	t.Helper()
	c, err := domain.NewCategory(domain.CategoryDetails{Name: name, Parent: parent},
		domain.Asset{URL: "https://img/icon", PublicID: "categories/" + name}, time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), c))
	return c
}

func TestItemRepository_UpdateGuardsStatus(t *testing.T) {
	clearCollections(t)
	ctx := context.Background()
	repo, err := NewItemRepository(testDB, testLogger)
	require.NoError(t, err)

	item := seedItem(t, repo, primitive.NewObjectID(), domain.ItemStatusPending, 1000, time.Now().Add(24*time.Hour))

	item.Status = domain.ItemStatusActive
	require.NoError(t, repo.Update(ctx, item, domain.ItemStatusPending))

	item.Status = domain.ItemStatusModerated
	err = repo.Update(ctx, item, domain.ItemStatusPending)
	assert.ErrorIs(t, err, domain.ErrConflict)

	stored, err := repo.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ItemStatusActive, stored.Status)
	assert.Equal(t, item.Offer, stored.Offer)

	_, err = repo.GetByID(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestItemRepository_ListFilters(t *testing.T) {
	clearCollections(t)
	ctx := context.Background()
	repo, err := NewItemRepository(testDB, testLogger)
	require.NoError(t, err)

	category := primitive.NewObjectID()
	future := time.Now().Add(24 * time.Hour)
	cheap := seedItem(t, repo, category, domain.ItemStatusActive, 100, future)
	seedItem(t, repo, category, domain.ItemStatusActive, 900, future)
	seedItem(t, repo, category, domain.ItemStatusDraft, 50, future)
	seedItem(t, repo, category, domain.ItemStatusActive, 60, time.Now().Add(-time.Minute))

	now := time.Now()
	maxPrice := 500.0
	items, total, err := repo.List(ctx, domain.ItemFilter{
		Statuses:   []domain.ItemStatus{domain.ItemStatusActive},
		Categories: []primitive.ObjectID{category},
		MaxPrice:   &maxPrice,
		VisibleAt:  &now,
		Sort:       domain.SortPriceAsc,
		Page:       1,
		Limit:      10,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, cheap.ID, items[0].ID)
}

func TestItemRepository_IncrementAndExpire(t *testing.T) {
	clearCollections(t)
	ctx := context.Background()
	repo, err := NewItemRepository(testDB, testLogger)
	require.NoError(t, err)

	live := seedItem(t, repo, primitive.NewObjectID(), domain.ItemStatusActive, 100, time.Now().Add(time.Hour))
	ended := seedItem(t, repo, primitive.NewObjectID(), domain.ItemStatusInactive, 100, time.Now().Add(-time.Hour))

	for i := 0; i < 3; i++ {
		_, err := repo.IncrementStat(ctx, live.ID, domain.StatViews)
		require.NoError(t, err)
	}
	stats, err := repo.IncrementStat(ctx, live.ID, domain.StatPhones)
	require.NoError(t, err)
	assert.Equal(t, domain.Stats{Views: 3, Phones: 1}, stats)

	expired, err := repo.ExpireEnded(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{ended.ID}, expired)

	got, err := repo.GetByID(ctx, ended.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ItemStatusExpired, got.Status)
	got, err = repo.GetByID(ctx, live.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ItemStatusActive, got.Status)
}

func TestTxManager_RollsBackOnError(t *testing.T) {
	clearCollections(t)
	ctx := context.Background()
	items, err := NewItemRepository(testDB, testLogger)
	require.NoError(t, err)
	categories, err := NewCategoryRepository(testDB, testLogger)
	require.NoError(t, err)
	tx := NewTxManager(testClient, testLogger)

	root := seedCategory(t, categories, "Outerwear", nil)
	child := seedCategory(t, categories, "Coats", &root.ID)
	seedItem(t, items, child.ID, domain.ItemStatusActive, 100, time.Now().Add(time.Hour))

	boom := errors.New("boom")
	err = tx.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := items.DeleteByCategories(ctx, []primitive.ObjectID{root.ID, child.ID}); err != nil {
			return err
		}
		if _, err := categories.DeleteMany(ctx, []primitive.ObjectID{child.ID, root.ID}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	n, err := items.CountByCategories(ctx, []primitive.ObjectID{child.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	children, err := categories.ChildIDs(ctx, []primitive.ObjectID{root.ID})
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{child.ID}, children)

	err = tx.WithTransaction(ctx, func(ctx context.Context) error {
		_, err := categories.DeleteMany(ctx, []primitive.ObjectID{child.ID, root.ID})
		return err
	})
	require.NoError(t, err)
	_, err = categories.GetByID(ctx, root.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStatsRepository_PopularCategories(t *testing.T) {
	clearCollections(t)
	ctx := context.Background()
	items, err := NewItemRepository(testDB, testLogger)
	require.NoError(t, err)
	categories, err := NewCategoryRepository(testDB, testLogger)
	require.NoError(t, err)
	stats := NewStatsRepository(testDB, testLogger)

	shoes := seedCategory(t, categories, "Shoes", nil)
	bags := seedCategory(t, categories, "Bags", nil)
	future := time.Now().Add(time.Hour)
	for i := 0; i < 3; i++ {
		seedItem(t, items, shoes.ID, domain.ItemStatusActive, 100, future)
	}
	seedItem(t, items, bags.ID, domain.ItemStatusActive, 100, future)
	seedItem(t, items, bags.ID, domain.ItemStatusDraft, 100, future)
	// Active but outside their visibility window.
	seedItemWindow(t, items, bags.ID, domain.ItemStatusActive, 100, time.Now().Add(24*time.Hour), time.Now().Add(48*time.Hour))
	seedItemWindow(t, items, bags.ID, domain.ItemStatusActive, 100, time.Now().Add(-48*time.Hour), time.Now().Add(-time.Hour))

	popular, err := stats.PopularCategories(ctx, time.Now(), 5, 2)
	require.NoError(t, err)
	require.Len(t, popular, 2)
	assert.Equal(t, shoes.ID, popular[0].Category.ID)
	assert.EqualValues(t, 3, popular[0].ItemsCount)
	assert.Len(t, popular[0].Items, 2)
	assert.EqualValues(t, 1, popular[1].ItemsCount)
	require.Len(t, popular[1].Items, 1)
	assert.True(t, popular[1].Items[0].Visibility.Open(time.Now()))
}

func TestNotificationRepository_ReadFlow(t *testing.T) {
	clearCollections(t)
	ctx := context.Background()
	repo, err := NewNotificationRepository(testDB, testLogger)
	require.NoError(t, err)

	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		n, err := domain.NewNotification("user-1", domain.NotificationSystem, "Hello", fmt.Sprintf("message %d", i), nil, now)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, n))
	}

	unread, err := repo.CountUnread(ctx, "user-1")
	require.NoError(t, err)
	assert.EqualValues(t, 3, unread)

	updated, err := repo.MarkAllRead(ctx, "user-1", now)
	require.NoError(t, err)
	assert.EqualValues(t, 3, updated)

	deleted, err := repo.DeleteRead(ctx, "user-1")
	require.NoError(t, err)
	assert.EqualValues(t, 3, deleted)

	list, total, err := repo.List(ctx, "user-1", false, 1, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, list)
}
