package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const itemKeyPrefix = "marketplace:item:"

// ItemCodec turns items into cache payloads and back.
type ItemCodec interface {
	Marshal(item *domain.Item) ([]byte, error)
	Unmarshal(data []byte) (*domain.Item, error)
}

type ItemCache struct {
	client *redis.Client
	codec  ItemCodec
	ttl    time.Duration
	logger *logger.Logger
}

func NewItemCache(client *redis.Client, codec ItemCodec, ttl time.Duration, log *logger.Logger) *ItemCache {
	return &ItemCache{
		client: client,
		codec:  codec,
		ttl:    ttl,
		logger: log.Named("ItemCache"),
	}
}

func itemKey(id primitive.ObjectID) string {
	return itemKeyPrefix + id.Hex()
}

// Get returns domain.ErrCacheMiss when the key is absent or the payload is unreadable.
func (c *ItemCache) Get(ctx context.Context, id primitive.ObjectID) (*domain.Item, error) {
	key := itemKey(id)
	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrCacheMiss
		}
		c.logger.Error("Redis Get operation failed", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("item cache get %s: %w", key, err)
	}

	item, err := c.codec.Unmarshal(val)
	if err != nil {
		c.logger.Warn("Dropping undecodable cache entry", zap.String("key", key), zap.Error(err))
		_ = c.Delete(ctx, id)
		return nil, domain.ErrCacheMiss
	}
	return item, nil
}

func (c *ItemCache) Set(ctx context.Context, item *domain.Item) error {
	if item == nil || item.ID.IsZero() {
		return errors.New("cannot cache nil item or item with empty id")
	}
	data, err := c.codec.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to marshal item %s: %w", item.ID.Hex(), err)
	}

	key := itemKey(item.ID)
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Error("Redis Set operation failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("item cache set %s: %w", key, err)
	}
	c.logger.Debug("Cached item", zap.String("key", key), zap.Duration("ttl", c.ttl))
	return nil
}

func (c *ItemCache) Delete(ctx context.Context, id primitive.ObjectID) error {
	key := itemKey(id)
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Error("Redis Del operation failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("item cache delete %s: %w", key, err)
	}
	return nil
}
