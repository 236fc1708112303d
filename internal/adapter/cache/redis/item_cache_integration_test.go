//go:build integration

package redis

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/repository/mongodb"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/config"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var testRedis *redis.Client

func TestMain(m *testing.M) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		log.Fatalf("Could not construct pool: %s", err)
	}
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "redis",
		Tag:        "7-alpine",
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		log.Fatalf("Could not start Redis resource: %s", err)
	}

	cfg := config.RedisConfig{Address: resource.GetHostPort("6379/tcp")}
	if err := pool.Retry(func() error {
		testRedis, err = NewRedisClient(cfg, logger.NewNop())
		return err
	}); err != nil {
		log.Fatalf("Could not connect to Redis: %s", err)
	}

	code := m.Run()

	_ = testRedis.Close()
	if err := pool.Purge(resource); err != nil {
		log.Fatalf("Could not purge Redis resource: %s", err)
	}
	os.Exit(code)
}

func TestItemCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	cache := NewItemCache(testRedis, mongodb.ItemCodec{}, time.Minute, logger.NewNop())

	now := time.Now().UTC().Truncate(time.Millisecond)
	item := &domain.Item{
		ID:        primitive.NewObjectID(),
		Owner:     "owner-1",
		Category:  primitive.NewObjectID(),
		Title:     "Canvas tote",
		Condition: domain.ConditionNew,
		Offer: domain.RentOffer{Details: domain.RentDetails{
			Duration:         domain.RentPerWeek,
			PricePerUnit:     150,
			AvailabilityDate: now,
		}},
		Status:     domain.ItemStatusActive,
		Visibility: domain.Visibility{StartDate: now},
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	_, err := cache.Get(ctx, item.ID)
	assert.ErrorIs(t, err, domain.ErrCacheMiss)

	require.NoError(t, cache.Set(ctx, item))
	got, err := cache.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, item.Offer, got.Offer)
	assert.Equal(t, item.Title, got.Title)

	ttl, err := testRedis.TTL(ctx, itemKey(item.ID)).Result()
	require.NoError(t, err)
	assert.InDelta(t, time.Minute.Seconds(), ttl.Seconds(), 2)

	require.NoError(t, cache.Delete(ctx, item.ID))
	_, err = cache.Get(ctx, item.ID)
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestItemCache_DropsCorruptEntries(t *testing.T) {
	ctx := context.Background()
	cache := NewItemCache(testRedis, mongodb.ItemCodec{}, time.Minute, logger.NewNop())
	id := primitive.NewObjectID()

	require.NoError(t, testRedis.Set(ctx, itemKey(id), "not bson", time.Minute).Err())
	_, err := cache.Get(ctx, id)
	assert.ErrorIs(t, err, domain.ErrCacheMiss)

	exists, err := testRedis.Exists(ctx, itemKey(id)).Result()
	require.NoError(t, err)
	assert.Zero(t, exists)
}
