package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const dashboardTopCategories = 5

// StatsRepository runs read-only aggregations across items and categories.
type StatsRepository struct {
	items      *mongo.Collection
	categories *mongo.Collection
	logger     *logger.Logger
}

func NewStatsRepository(db *mongo.Database, log *logger.Logger) *StatsRepository {
	return &StatsRepository{
		items:      db.Collection(itemCollectionName),
		categories: db.Collection(categoryCollectionName),
		logger:     log.Named("StatsRepository"),
	}
}

// onDisplay matches the items anonymous visitors can see at now.
func onDisplay(now time.Time) bson.M {
	q := bson.M{"status": string(domain.ItemStatusActive)}
	visibleAt(q, now)
	return q
}

func withExpr(q bson.M, expr bson.M) bson.M {
	q["$expr"] = expr
	return q
}

type popularCategoryRow struct {
	ItemsCount int64            `bson:"itemsCount"`
	TotalViews int64            `bson:"totalViews"`
	Category   categoryDocument `bson:"category"`
	Items      []*itemDocument  `bson:"items"`
}

func (r *StatsRepository) PopularCategories(ctx context.Context, now time.Time, limit, itemsPerCategory int) ([]domain.PopularCategory, error) {
	if limit <= 0 {
		return nil, nil
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: onDisplay(now)}},
		{{Key: "$group", Value: bson.M{
			"_id":        "$category",
			"itemsCount": bson.M{"$sum": 1},
			"totalViews": bson.M{"$sum": "$stats.views"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "itemsCount", Value: -1}, {Key: "totalViews", Value: -1}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         categoryCollectionName,
			"localField":   "_id",
			"foreignField": "_id",
			"as":           "category",
		}}},
		{{Key: "$unwind", Value: "$category"}},
		{{Key: "$match", Value: bson.M{"category.isActive": true}}},
		{{Key: "$limit", Value: limit}},
	}
	if itemsPerCategory > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$lookup", Value: bson.M{
			"from": itemCollectionName,
			"let":  bson.M{"cid": "$_id"},
			"pipeline": mongo.Pipeline{
				{{Key: "$match", Value: withExpr(onDisplay(now), bson.M{"$eq": bson.A{"$category", "$$cid"}})}},
				{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
				{{Key: "$limit", Value: itemsPerCategory}},
			},
			"as": "items",
		}}})
	}

	cursor, err := r.items.Aggregate(ctx, pipeline)
	if err != nil {
		r.logger.Error("Popular categories aggregation failed", zap.Error(err))
		return nil, fmt.Errorf("db aggregate failed: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []popularCategoryRow
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("db cursor all failed: %w", err)
	}

	out := make([]domain.PopularCategory, len(rows))
	for k, row := range rows {
		pc := domain.PopularCategory{
			Category:   row.Category.toDomain(),
			ItemsCount: row.ItemsCount,
			TotalViews: row.TotalViews,
		}
		for _, d := range row.Items {
			pc.Items = append(pc.Items, d.toDomain())
		}
		out[k] = pc
	}
	return out, nil
}

type countRow struct {
	N int64 `bson:"n"`
}

type groupRow struct {
	ID string `bson:"_id"`
	N  int64  `bson:"n"`
}

type dashboardFacets struct {
	Total         []countRow      `bson:"total"`
	ByStatus      []groupRow      `bson:"byStatus"`
	ByType        []groupRow      `bson:"byType"`
	Totals        []statsDocument `bson:"totals"`
	Recent        []countRow      `bson:"recent"`
	OldestPending []struct {
		CreatedAt time.Time `bson:"createdAt"`
	} `bson:"oldestPending"`
}

func (r *StatsRepository) Dashboard(ctx context.Context, now time.Time) (*domain.Dashboard, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$facet", Value: bson.M{
			"total":    bson.A{bson.M{"$count": "n"}},
			"byStatus": bson.A{bson.M{"$group": bson.M{"_id": "$status", "n": bson.M{"$sum": 1}}}},
			"byType":   bson.A{bson.M{"$group": bson.M{"_id": "$type", "n": bson.M{"$sum": 1}}}},
			"totals": bson.A{bson.M{"$group": bson.M{
				"_id":    nil,
				"views":  bson.M{"$sum": "$stats.views"},
				"phones": bson.M{"$sum": "$stats.phones"},
				"chats":  bson.M{"$sum": "$stats.chats"},
			}}},
			"recent": bson.A{
				bson.M{"$match": bson.M{"createdAt": bson.M{"$gte": now.AddDate(0, 0, -7)}}},
				bson.M{"$count": "n"},
			},
			"oldestPending": bson.A{
				bson.M{"$match": bson.M{"status": string(domain.ItemStatusPending)}},
				bson.M{"$sort": bson.M{"createdAt": 1}},
				bson.M{"$limit": 1},
				bson.M{"$project": bson.M{"createdAt": 1}},
			},
		}}},
	}

	cursor, err := r.items.Aggregate(ctx, pipeline)
	if err != nil {
		r.logger.Error("Dashboard aggregation failed", zap.Error(err))
		return nil, fmt.Errorf("db aggregate failed: %w", err)
	}
	defer cursor.Close(ctx)

	var facets []dashboardFacets
	if err := cursor.All(ctx, &facets); err != nil {
		return nil, fmt.Errorf("db cursor all failed: %w", err)
	}

	d := &domain.Dashboard{
		ByStatus: make(map[domain.ItemStatus]int64),
		ByType:   make(map[domain.ItemType]int64),
	}
	if len(facets) > 0 {
		f := facets[0]
		if len(f.Total) > 0 {
			d.TotalItems = f.Total[0].N
		}
		for _, g := range f.ByStatus {
			d.ByStatus[domain.ItemStatus(g.ID)] = g.N
		}
		for _, g := range f.ByType {
			d.ByType[domain.ItemType(g.ID)] = g.N
		}
		if len(f.Totals) > 0 {
			d.Totals = domain.Stats(f.Totals[0])
		}
		if len(f.Recent) > 0 {
			d.CreatedLast7d = f.Recent[0].N
		}
		if len(f.OldestPending) > 0 {
			t := f.OldestPending[0].CreatedAt
			d.OldestPending = &t
		}
	}

	d.CategoriesTotal, err = r.categories.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("db count failed: %w", err)
	}
	d.TopCategories, err = r.PopularCategories(ctx, now, dashboardTopCategories, 0)
	if err != nil {
		return nil, err
	}
	return d, nil
}
