package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const notificationCollectionName = "notifications"

type NotificationRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

func NewNotificationRepository(db *mongo.Database, log *logger.Logger) (*NotificationRepository, error) {
	collection := db.Collection(notificationCollectionName)
	log = log.Named("NotificationRepository")

	ensureIndexes(collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "recipient", Value: 1}, {Key: "isRead", Value: 1}, {Key: "createdAt", Value: -1}}},
	}, log)

	return &NotificationRepository{collection: collection, logger: log}, nil
}

func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	doc := fromDomainNotification(n)
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
		n.ID = doc.ID
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		r.logger.Error("Failed to insert notification", zap.String("recipient", n.Recipient), zap.Error(err))
		return fmt.Errorf("db insert failed: %w", err)
	}
	return nil
}

func recipientFilter(recipient string, unreadOnly bool) bson.M {
	f := bson.M{"recipient": recipient}
	if unreadOnly {
		f["isRead"] = false
	}
	return f
}

func (r *NotificationRepository) List(ctx context.Context, recipient string, unreadOnly bool, page, limit int) ([]*domain.Notification, int64, error) {
	filter := recipientFilter(recipient, unreadOnly)
	opts := paginate(options.Find(), page, limit).SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to list notifications", zap.String("recipient", recipient), zap.Error(err))
		return nil, 0, fmt.Errorf("db find failed: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*notificationDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("db cursor all failed: %w", err)
	}
	out := make([]*domain.Notification, len(docs))
	for k, d := range docs {
		out[k] = d.toDomain()
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("db count failed: %w", err)
	}
	return out, total, nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, recipient string) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, recipientFilter(recipient, true))
	if err != nil {
		return 0, fmt.Errorf("db count failed: %w", err)
	}
	return n, nil
}

// MarkRead is scoped to the recipient so users cannot touch each other's notifications.
func (r *NotificationRepository) MarkRead(ctx context.Context, id primitive.ObjectID, recipient string, at time.Time) (*domain.Notification, error) {
	var doc notificationDocument
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "recipient": recipient},
		bson.M{"$set": bson.M{"isRead": true, "readAt": at}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("db update failed: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, recipient string, at time.Time) (int64, error) {
	res, err := r.collection.UpdateMany(ctx,
		recipientFilter(recipient, true),
		bson.M{"$set": bson.M{"isRead": true, "readAt": at}},
	)
	if err != nil {
		return 0, fmt.Errorf("db update many failed: %w", err)
	}
	return res.ModifiedCount, nil
}

func (r *NotificationRepository) Delete(ctx context.Context, id primitive.ObjectID, recipient string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "recipient": recipient})
	if err != nil {
		return fmt.Errorf("db delete failed: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *NotificationRepository) DeleteRead(ctx context.Context, recipient string) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"recipient": recipient, "isRead": true})
	if err != nil {
		return 0, fmt.Errorf("db delete many failed: %w", err)
	}
	return res.DeletedCount, nil
}
