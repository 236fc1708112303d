package usecase

import (
	"context"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type NotificationUsecase struct {
	repo   domain.NotificationRepository
	logger *logger.Logger
	now    func() time.Time
}

func NewNotificationUsecase(repo domain.NotificationRepository, log *logger.Logger) *NotificationUsecase {
	return &NotificationUsecase{repo: repo, logger: log.Named("NotificationUsecase"), now: time.Now}
}

// List returns the caller's notifications, newest first.
func (uc *NotificationUsecase) List(ctx context.Context, actor domain.Actor, unreadOnly bool, page, limit int) ([]*domain.Notification, Pagination, error) {
	if err := requireUser(actor); err != nil {
		return nil, Pagination{}, err
	}
	page, limit = NormalizePage(page, limit)
	list, total, err := uc.repo.List(ctx, actor.UserID, unreadOnly, page, limit)
	if err != nil {
		return nil, Pagination{}, err
	}
	return list, Pagination{Page: page, Limit: limit, Total: total}, nil
}

func (uc *NotificationUsecase) UnreadCount(ctx context.Context, actor domain.Actor) (int64, error) {
	if err := requireUser(actor); err != nil {
		return 0, err
	}
	return uc.repo.CountUnread(ctx, actor.UserID)
}

func (uc *NotificationUsecase) MarkRead(ctx context.Context, actor domain.Actor, id primitive.ObjectID) (*domain.Notification, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	return uc.repo.MarkRead(ctx, id, actor.UserID, uc.now())
}

func (uc *NotificationUsecase) MarkAllRead(ctx context.Context, actor domain.Actor) (int64, error) {
	if err := requireUser(actor); err != nil {
		return 0, err
	}
	return uc.repo.MarkAllRead(ctx, actor.UserID, uc.now())
}

func (uc *NotificationUsecase) Delete(ctx context.Context, actor domain.Actor, id primitive.ObjectID) error {
	if err := requireUser(actor); err != nil {
		return err
	}
	return uc.repo.Delete(ctx, id, actor.UserID)
}

// DeleteRead removes every notification the caller has already read.
func (uc *NotificationUsecase) DeleteRead(ctx context.Context, actor domain.Actor) (int64, error) {
	if err := requireUser(actor); err != nil {
		return 0, err
	}
	return uc.repo.DeleteRead(ctx, actor.UserID)
}

// SendSystemInput is an admin message to one user.
type SendSystemInput struct {
	Recipient string
	Title     string
	Message   string
	Item      *primitive.ObjectID
}

func (uc *NotificationUsecase) SendSystem(ctx context.Context, actor domain.Actor, in SendSystemInput) (*domain.Notification, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	n, err := domain.NewNotification(in.Recipient, domain.NotificationSystem, in.Title, in.Message, in.Item, uc.now())
	if err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, n); err != nil {
		return nil, err
	}
	uc.logger.Info("System notification sent", zap.String("recipient", in.Recipient), zap.String("admin", actor.UserID))
	return n, nil
}
