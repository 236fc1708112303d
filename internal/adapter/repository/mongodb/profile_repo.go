package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const profileCollectionName = "profiles"

type ProfileRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

func NewProfileRepository(db *mongo.Database, log *logger.Logger) (*ProfileRepository, error) {
	collection := db.Collection(profileCollectionName)
	log = log.Named("ProfileRepository")

	ensureIndexes(collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user", Value: 1}}, Options: options.Index().SetUnique(true)},
	}, log)

	return &ProfileRepository{collection: collection, logger: log}, nil
}

func (r *ProfileRepository) Create(ctx context.Context, p *domain.Profile) error {
	doc := fromDomainProfile(p)
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
		p.ID = doc.ID
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: profile for user %s already exists", domain.ErrConflict, p.UserID)
		}
		r.logger.Error("Failed to insert profile", zap.String("user_id", p.UserID), zap.Error(err))
		return fmt.Errorf("db insert failed: %w", err)
	}
	return nil
}

func (r *ProfileRepository) GetByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	var doc profileDocument
	if err := r.collection.FindOne(ctx, bson.M{"user": userID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("Failed to get profile", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("db findone failed: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ProfileRepository) Update(ctx context.Context, p *domain.Profile) error {
	doc := fromDomainProfile(p)
	res, err := r.collection.ReplaceOne(ctx, bson.M{"user": doc.UserID}, doc)
	if err != nil {
		r.logger.Error("Failed to update profile", zap.String("user_id", doc.UserID), zap.Error(err))
		return fmt.Errorf("db replace failed: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ProfileRepository) Delete(ctx context.Context, userID string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"user": userID})
	if err != nil {
		return fmt.Errorf("db delete failed: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}
