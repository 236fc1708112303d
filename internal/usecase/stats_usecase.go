package usecase

import (
	"context"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
)

const (
	defaultPopularLimit = 10
	maxPopularLimit     = 50
	defaultItemsLimit   = 4
	maxItemsLimit       = 20
)

// StatsUsecase serves the aggregation backed views.
type StatsUsecase struct {
	stats  domain.StatsRepository
	logger *logger.Logger
	now    func() time.Time
}

func NewStatsUsecase(stats domain.StatsRepository, log *logger.Logger) *StatsUsecase {
	return &StatsUsecase{stats: stats, logger: log.Named("StatsUsecase"), now: time.Now}
}

func clamp(v, def, max int) int {
	if v < 1 {
		return def
	}
	if v > max {
		return max
	}
	return v
}

// PopularCategories ranks active categories by the number of items currently on display.
func (uc *StatsUsecase) PopularCategories(ctx context.Context, limit int) ([]domain.PopularCategory, error) {
	return uc.stats.PopularCategories(ctx, uc.now(), clamp(limit, defaultPopularLimit, maxPopularLimit), 0)
}

// PopularWithItems is PopularCategories plus the most recent active items of each category.
func (uc *StatsUsecase) PopularWithItems(ctx context.Context, limit, itemsLimit int) ([]domain.PopularCategory, error) {
	return uc.stats.PopularCategories(ctx, uc.now(),
		clamp(limit, defaultPopularLimit, maxPopularLimit),
		clamp(itemsLimit, defaultItemsLimit, maxItemsLimit),
	)
}

func (uc *StatsUsecase) Dashboard(ctx context.Context, actor domain.Actor) (*domain.Dashboard, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return uc.stats.Dashboard(ctx, uc.now())
}
