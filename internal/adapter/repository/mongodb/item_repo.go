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

const itemCollectionName = "items"

// ItemRepository implements domain.ItemRepository using MongoDB.
type ItemRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

func NewItemRepository(db *mongo.Database, log *logger.Logger) (*ItemRepository, error) {
	collection := db.Collection(itemCollectionName)
	log = log.Named("ItemRepository")

	ensureIndexes(collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "visibility.startDate", Value: 1}, {Key: "visibility.endDate", Value: 1}}},
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "owner", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "listPrice", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{
			Keys: bson.D{{Key: "title", Value: "text"}, {Key: "description", Value: "text"}, {Key: "brand", Value: "text"}},
			Options: options.Index().
				SetName("item_text").
				SetWeights(bson.D{{Key: "title", Value: 10}, {Key: "brand", Value: 5}, {Key: "description", Value: 1}}).
				SetDefaultLanguage("none"),
		},
	}, log)

	return &ItemRepository{collection: collection, logger: log}, nil
}

func (r *ItemRepository) Create(ctx context.Context, item *domain.Item) error {
	doc := fromDomainItem(item)
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
		item.ID = doc.ID
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: item %s already exists", domain.ErrConflict, doc.ID.Hex())
		}
		r.logger.Error("Failed to insert item", zap.Error(err))
		return fmt.Errorf("db insert failed: %w", err)
	}
	r.logger.Debug("Item created", zap.String("item_id", doc.ID.Hex()), zap.String("owner", doc.Owner))
	return nil
}

func (r *ItemRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Item, error) {
	var doc itemDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("Failed to get item", zap.String("item_id", id.Hex()), zap.Error(err))
		return nil, fmt.Errorf("db findone failed: %w", err)
	}
	return doc.toDomain(), nil
}

// Update replaces every field except the counters, which are only ever changed with $inc.
func (r *ItemRepository) Update(ctx context.Context, item *domain.Item, expected domain.ItemStatus) error {
	doc := fromDomainItem(item)
	set := bson.M{
		"category":        doc.Category,
		"title":           doc.Title,
		"description":     doc.Description,
		"condition":       doc.Condition,
		"size":            doc.Size,
		"brand":           doc.Brand,
		"location":        doc.Location,
		"type":            doc.Type,
		"listPrice":       doc.ListPrice,
		"images":          doc.Images,
		"status":          doc.Status,
		"visibility":      doc.Visibility,
		"moderationInfo":  doc.ModerationInfo,
		"revisionHistory": doc.RevisionHistory,
		"updatedAt":       doc.UpdatedAt,
	}
	unset := bson.M{}
	for field, block := range map[string]interface{}{
		"price":           doc.Price,
		"rentDetails":     doc.RentDetails,
		"exchangeDetails": doc.ExchangeDetails,
	} {
		if isNilBlock(block) {
			unset[field] = ""
		} else {
			set[field] = block
		}
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": doc.ID, "status": string(expected)}, update)
	if err != nil {
		r.logger.Error("Failed to update item", zap.String("item_id", doc.ID.Hex()), zap.Error(err))
		return fmt.Errorf("db update failed: %w", err)
	}
	if res.MatchedCount == 0 {
		n, err := r.collection.CountDocuments(ctx, bson.M{"_id": doc.ID})
		if err != nil {
			return fmt.Errorf("db count failed: %w", err)
		}
		if n == 0 {
			return domain.ErrNotFound
		}
		r.logger.Warn("Item status changed concurrently",
			zap.String("item_id", doc.ID.Hex()),
			zap.String("expected_status", string(expected)),
		)
		return fmt.Errorf("%w: item %s is no longer %s", domain.ErrConflict, doc.ID.Hex(), expected)
	}
	return nil
}

func isNilBlock(v interface{}) bool {
	switch b := v.(type) {
	case *priceDocument:
		return b == nil
	case *rentDetailsDocument:
		return b == nil
	case *exchangeDetailsDocument:
		return b == nil
	}
	return v == nil
}

func (r *ItemRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		r.logger.Error("Failed to delete item", zap.String("item_id", id.Hex()), zap.Error(err))
		return fmt.Errorf("db delete failed: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// buildItemQuery translates the filter into a Mongo query document.
func buildItemQuery(f domain.ItemFilter) bson.M {
	q := bson.M{}
	if f.Owner != "" {
		q["owner"] = f.Owner
	}
	switch len(f.Statuses) {
	case 0:
	case 1:
		q["status"] = string(f.Statuses[0])
	default:
		statuses := make([]string, len(f.Statuses))
		for k, s := range f.Statuses {
			statuses[k] = string(s)
		}
		q["status"] = bson.M{"$in": statuses}
	}
	switch len(f.Categories) {
	case 0:
	case 1:
		q["category"] = f.Categories[0]
	default:
		q["category"] = bson.M{"$in": f.Categories}
	}
	if f.Type != "" {
		q["type"] = string(f.Type)
	}
	if f.Condition != "" {
		q["condition"] = string(f.Condition)
	}
	if f.Size != "" {
		q["size"] = f.Size
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		price := bson.M{}
		if f.MinPrice != nil {
			price["$gte"] = *f.MinPrice
		}
		if f.MaxPrice != nil {
			price["$lte"] = *f.MaxPrice
		}
		q["listPrice"] = price
	}
	if f.Featured != nil {
		q["visibility.isFeatured"] = *f.Featured
	}
	if f.VisibleAt != nil {
		visibleAt(q, *f.VisibleAt)
	}
	if f.Query != "" {
		q["$text"] = bson.M{"$search": f.Query}
	}
	return q
}

// visibleAt restricts q to items whose visibility window contains at.
func visibleAt(q bson.M, at time.Time) {
	q["visibility.startDate"] = bson.M{"$lte": at}
	q["$or"] = bson.A{
		bson.M{"visibility.endDate": bson.M{"$exists": false}},
		bson.M{"visibility.endDate": nil},
		bson.M{"visibility.endDate": bson.M{"$gt": at}},
	}
}

func itemSort(f domain.ItemFilter) bson.D {
	switch f.Sort {
	case domain.SortOldest:
		return bson.D{{Key: "createdAt", Value: 1}}
	case domain.SortPriceAsc:
		return bson.D{{Key: "listPrice", Value: 1}, {Key: "createdAt", Value: -1}}
	case domain.SortPriceDesc:
		return bson.D{{Key: "listPrice", Value: -1}, {Key: "createdAt", Value: -1}}
	case domain.SortPopular:
		return bson.D{{Key: "stats.views", Value: -1}, {Key: "createdAt", Value: -1}}
	}
	if f.Query != "" {
		return bson.D{{Key: "score", Value: bson.M{"$meta": "textScore"}}, {Key: "createdAt", Value: -1}}
	}
	// Featured and urgent listings float to the top of the default order.
	return bson.D{
		{Key: "visibility.isFeatured", Value: -1},
		{Key: "visibility.isUrgent", Value: -1},
		{Key: "createdAt", Value: -1},
	}
}

func (r *ItemRepository) List(ctx context.Context, f domain.ItemFilter) ([]*domain.Item, int64, error) {
	query := buildItemQuery(f)
	findOptions := paginate(options.Find(), f.Page, f.Limit).SetSort(itemSort(f))
	if f.Query != "" && f.Sort == "" {
		findOptions.SetProjection(bson.M{"score": bson.M{"$meta": "textScore"}})
	}

	cursor, err := r.collection.Find(ctx, query, findOptions)
	if err != nil {
		r.logger.Error("Failed to list items", zap.Any("filter", f), zap.Error(err))
		return nil, 0, fmt.Errorf("db find failed: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*itemDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("db cursor all failed: %w", err)
	}
	items := make([]*domain.Item, len(docs))
	for k, doc := range docs {
		items[k] = doc.toDomain()
	}

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("db count failed: %w", err)
	}
	return items, total, nil
}

func (r *ItemRepository) IncrementStat(ctx context.Context, id primitive.ObjectID, stat domain.StatType) (domain.Stats, error) {
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"stats": 1})

	var doc struct {
		Stats statsDocument `bson:"stats"`
	}
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"stats." + string(stat): 1}},
		opts,
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Stats{}, domain.ErrNotFound
		}
		r.logger.Error("Failed to increment item stat", zap.String("item_id", id.Hex()), zap.String("stat", string(stat)), zap.Error(err))
		return domain.Stats{}, fmt.Errorf("db increment failed: %w", err)
	}
	return domain.Stats(doc.Stats), nil
}

func (r *ItemRepository) CountByCategories(ctx context.Context, categoryIDs []primitive.ObjectID) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"category": bson.M{"$in": categoryIDs}})
	if err != nil {
		return 0, fmt.Errorf("db count failed: %w", err)
	}
	return n, nil
}

func (r *ItemRepository) RefsByCategories(ctx context.Context, categoryIDs []primitive.ObjectID) ([]domain.ItemRef, error) {
	cursor, err := r.collection.Find(ctx,
		bson.M{"category": bson.M{"$in": categoryIDs}},
		options.Find().SetProjection(bson.M{"_id": 1, "images.public_id": 1}),
	)
	if err != nil {
		return nil, fmt.Errorf("db find failed: %w", err)
	}
	defer cursor.Close(ctx)

	var refs []domain.ItemRef
	for cursor.Next(ctx) {
		var doc struct {
			ID     primitive.ObjectID `bson:"_id"`
			Images []imageDocument    `bson:"images"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("db decode failed: %w", err)
		}
		ref := domain.ItemRef{ID: doc.ID}
		for _, img := range doc.Images {
			if img.PublicID != "" {
				ref.AssetIDs = append(ref.AssetIDs, img.PublicID)
			}
		}
		refs = append(refs, ref)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("db cursor failed: %w", err)
	}
	return refs, nil
}

func (r *ItemRepository) DeleteByCategories(ctx context.Context, categoryIDs []primitive.ObjectID) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"category": bson.M{"$in": categoryIDs}})
	if err != nil {
		r.logger.Error("Failed to delete items by categories", zap.Int("categories", len(categoryIDs)), zap.Error(err))
		return 0, fmt.Errorf("db delete many failed: %w", err)
	}
	return res.DeletedCount, nil
}

func (r *ItemRepository) ExpireEnded(ctx context.Context, now time.Time) ([]primitive.ObjectID, error) {
	statuses := make([]string, len(domain.ExpirableStatuses))
	for k, s := range domain.ExpirableStatuses {
		statuses[k] = string(s)
	}
	filter := bson.M{
		"status":             bson.M{"$in": statuses},
		"visibility.endDate": bson.M{"$lte": now},
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		r.logger.Error("Failed to find ended items", zap.Error(err))
		return nil, fmt.Errorf("db find failed: %w", err)
	}
	var refs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &refs); err != nil {
		return nil, fmt.Errorf("db cursor all failed: %w", err)
	}
	if len(refs) == 0 {
		return nil, nil
	}
	ids := make([]primitive.ObjectID, len(refs))
	for k, ref := range refs {
		ids[k] = ref.ID
	}

	// The status filter is repeated so items changed since the find are left alone.
	filter["_id"] = bson.M{"$in": ids}
	if _, err := r.collection.UpdateMany(ctx, filter,
		bson.M{"$set": bson.M{"status": string(domain.ItemStatusExpired), "updatedAt": now}},
	); err != nil {
		r.logger.Error("Failed to expire items", zap.Int("count", len(ids)), zap.Error(err))
		return nil, fmt.Errorf("db update many failed: %w", err)
	}
	return ids, nil
}
