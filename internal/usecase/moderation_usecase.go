package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/metrics"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// MaxBulkModeration caps the ids accepted by one bulk request.
const MaxBulkModeration = 100

// ModerationUsecase applies admin decisions to items and tells the owners.
type ModerationUsecase struct {
	items         domain.ItemRepository
	notifications domain.NotificationRepository
	profiles      domain.ProfileRepository
	mailer        domain.Mailer
	cache         domain.ItemCache
	events        events
	metrics       *metrics.MetricsManager
	logger        *logger.Logger
	now           func() time.Time
}

// NewModerationUsecase wires the usecase. mailer, cache, pub and m may be nil.
func NewModerationUsecase(
	items domain.ItemRepository,
	notifications domain.NotificationRepository,
	profiles domain.ProfileRepository,
	mailer domain.Mailer,
	cache domain.ItemCache,
	pub domain.EventPublisher,
	m *metrics.MetricsManager,
	log *logger.Logger,
) *ModerationUsecase {
	log = log.Named("ModerationUsecase")
	return &ModerationUsecase{
		items:         items,
		notifications: notifications,
		profiles:      profiles,
		mailer:        mailer,
		cache:         cache,
		events:        events{pub: pub, logger: log},
		metrics:       m,
		logger:        log,
		now:           time.Now,
	}
}

// Moderate records the first decision on a pending item and notifies its owner.
func (uc *ModerationUsecase) Moderate(ctx context.Context, actor domain.Actor, id primitive.ObjectID, d domain.ModerationDecision) (*domain.Item, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return uc.moderate(ctx, actor, id, d)
}

func (uc *ModerationUsecase) moderate(ctx context.Context, actor domain.Actor, id primitive.ObjectID, d domain.ModerationDecision) (*domain.Item, error) {
	item, err := uc.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	prev := item.Status
	if err := item.Moderate(actor.UserID, d, uc.now()); err != nil {
		return nil, err
	}
	if err := uc.persist(ctx, item, prev); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.ItemModerationsTotal.WithLabelValues(string(item.Status)).Inc()
	}
	uc.notifyOwner(ctx, item, false)
	uc.events.publish(ctx, domain.SubjectItemModerated, domain.NewItemEvent(item, prev, actor.UserID, item.UpdatedAt))
	uc.logger.Info("Item moderated",
		zap.String("item_id", id.Hex()),
		zap.String("status", string(item.Status)),
		zap.String("moderator", actor.UserID),
	)
	return item, nil
}

// Revise overrides an earlier decision. The owner is notified only when notify is set.
func (uc *ModerationUsecase) Revise(ctx context.Context, actor domain.Actor, id primitive.ObjectID, d domain.ModerationDecision, notify bool) (*domain.Item, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	item, err := uc.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	prev := item.Status
	rev, err := item.Revise(actor.UserID, d, uc.now())
	if err != nil {
		return nil, err
	}
	if err := uc.persist(ctx, item, prev); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.ItemModerationsTotal.WithLabelValues(string(item.Status)).Inc()
	}
	if notify {
		uc.notifyOwner(ctx, item, true)
	}
	uc.events.publish(ctx, domain.SubjectItemRevised, domain.NewItemEvent(item, prev, actor.UserID, rev.RevisedAt))
	uc.logger.Info("Moderation revised",
		zap.String("item_id", id.Hex()),
		zap.String("from", string(rev.PreviousStatus)),
		zap.String("to", string(rev.NewStatus)),
		zap.Bool("notified", notify),
	)
	return item, nil
}

// BulkResult is the outcome of one id in a bulk moderation.
type BulkResult struct {
	ID     string
	Status domain.ItemStatus
	Err    error
}

// BulkModerate applies one decision to many pending items. Failures are
// reported per id and do not stop the batch.
func (uc *ModerationUsecase) BulkModerate(ctx context.Context, actor domain.Actor, ids []string, d domain.ModerationDecision) ([]BulkResult, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: ids are required", domain.ErrInvalidInput)
	}
	if len(ids) > MaxBulkModeration {
		return nil, fmt.Errorf("%w: at most %d ids per request", domain.ErrInvalidInput, MaxBulkModeration)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}

	results := make([]BulkResult, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	failed := 0
	for _, raw := range ids {
		if seen[raw] {
			continue
		}
		seen[raw] = true

		res := BulkResult{ID: raw}
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			res.Err = fmt.Errorf("%w: invalid id", domain.ErrInvalidInput)
		} else if item, err := uc.moderate(ctx, actor, id, d); err != nil {
			res.Err = err
		} else {
			res.Status = item.Status
		}
		if res.Err != nil {
			failed++
		}
		results = append(results, res)
	}
	uc.logger.Info("Bulk moderation finished",
		zap.Int("requested", len(ids)),
		zap.Int("failed", failed),
		zap.String("moderator", actor.UserID),
	)
	return results, nil
}

func (uc *ModerationUsecase) persist(ctx context.Context, item *domain.Item, prev domain.ItemStatus) error {
	if err := uc.items.Update(ctx, item, prev); err != nil {
		return err
	}
	if uc.cache != nil {
		if err := uc.cache.Delete(ctx, item.ID); err != nil {
			uc.logger.Warn("Item cache invalidation failed", zap.String("item_id", item.ID.Hex()), zap.Error(err))
		}
	}
	recordTransition(uc.metrics, prev, item.Status)
	return nil
}

// notifyOwner stores the in-app notice and emails the owner if they opted in.
// Failures are logged; the decision itself is already saved.
func (uc *ModerationUsecase) notifyOwner(ctx context.Context, item *domain.Item, revised bool) {
	n, err := domain.ModerationNotice(item, revised, uc.now())
	if err != nil {
		uc.logger.Error("Failed to build moderation notice", zap.String("item_id", item.ID.Hex()), zap.Error(err))
		return
	}
	if err := uc.notifications.Create(ctx, n); err != nil {
		uc.logger.Error("Failed to store moderation notice", zap.String("item_id", item.ID.Hex()), zap.Error(err))
	}

	if uc.mailer == nil || uc.profiles == nil {
		return
	}
	profile, err := uc.profiles.GetByUserID(ctx, item.Owner)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			uc.logger.Warn("Failed to load owner profile for email", zap.String("owner", item.Owner), zap.Error(err))
		}
		return
	}
	if !profile.WantsEmail() {
		return
	}
	if err := uc.mailer.SendModerationResult(ctx, profile.Contact.Email, item); err != nil {
		uc.logger.Warn("Failed to send moderation email", zap.String("owner", item.Owner), zap.Error(err))
	}
}
