package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"go.uber.org/zap"
)

// ProfileUsecase manages the caller's own profile. Other users only ever see PublicView.
type ProfileUsecase struct {
	repo   domain.ProfileRepository
	store  domain.ImageStore
	logger *logger.Logger
	now    func() time.Time
}

func NewProfileUsecase(repo domain.ProfileRepository, store domain.ImageStore, log *logger.Logger) *ProfileUsecase {
	return &ProfileUsecase{repo: repo, store: store, logger: log.Named("ProfileUsecase"), now: time.Now}
}

// Create fails with ErrConflict when the caller already has a profile.
func (uc *ProfileUsecase) Create(ctx context.Context, actor domain.Actor, d domain.ProfileDetails) (*domain.Profile, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	p, err := domain.NewProfile(actor.UserID, d, uc.now())
	if err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	uc.logger.Info("Profile created", zap.String("user_id", actor.UserID))
	return p, nil
}

func (uc *ProfileUsecase) GetMine(ctx context.Context, actor domain.Actor) (*domain.Profile, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	return uc.repo.GetByUserID(ctx, actor.UserID)
}

func (uc *ProfileUsecase) GetPublic(ctx context.Context, userID string) (*domain.Profile, error) {
	p, err := uc.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return p.PublicView(), nil
}

func (uc *ProfileUsecase) Update(ctx context.Context, actor domain.Actor, d domain.ProfileDetails) (*domain.Profile, error) {
	return uc.mutate(ctx, actor, func(p *domain.Profile, now time.Time) error {
		return p.Apply(d, now)
	})
}

// PreferencesPatch changes only the fields that are set.
type PreferencesPatch struct {
	EmailNotifications *bool
	PushNotifications  *bool
	ShowPhone          *bool
	Language           *string
}

func (uc *ProfileUsecase) UpdatePreferences(ctx context.Context, actor domain.Actor, patch PreferencesPatch) (*domain.Profile, error) {
	return uc.mutate(ctx, actor, func(p *domain.Profile, now time.Time) error {
		if patch.EmailNotifications != nil {
			p.Preferences.EmailNotifications = *patch.EmailNotifications
		}
		if patch.PushNotifications != nil {
			p.Preferences.PushNotifications = *patch.PushNotifications
		}
		if patch.ShowPhone != nil {
			p.Preferences.ShowPhone = *patch.ShowPhone
		}
		if patch.Language != nil {
			lang := strings.TrimSpace(*patch.Language)
			if lang == "" {
				return fmt.Errorf("%w: language cannot be empty", domain.ErrInvalidInput)
			}
			p.Preferences.Language = lang
		}
		p.UpdatedAt = now
		return nil
	})
}

type SocialPatch struct {
	Facebook  *bool
	Instagram *bool
	Telegram  *bool
}

func (uc *ProfileUsecase) UpdateSocial(ctx context.Context, actor domain.Actor, patch SocialPatch) (*domain.Profile, error) {
	return uc.mutate(ctx, actor, func(p *domain.Profile, now time.Time) error {
		if patch.Facebook != nil {
			p.Social.Facebook = *patch.Facebook
		}
		if patch.Instagram != nil {
			p.Social.Instagram = *patch.Instagram
		}
		if patch.Telegram != nil {
			p.Social.Telegram = *patch.Telegram
		}
		p.UpdatedAt = now
		return nil
	})
}

// UploadAvatar stores a new avatar and removes the previous one once the profile is saved.
func (uc *ProfileUsecase) UploadAvatar(ctx context.Context, actor domain.Actor, file domain.LocalFile) (*domain.Profile, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	p, err := uc.repo.GetByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	asset, err := uc.store.Upload(ctx, folderAvatars, file)
	if err != nil {
		return nil, err
	}
	var old string
	if p.Avatar != nil {
		old = p.Avatar.PublicID
	}
	p.Avatar = &asset
	p.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, p); err != nil {
		deleteAssets(context.WithoutCancel(ctx), uc.store, []string{asset.PublicID}, uc.logger)
		return nil, err
	}
	deleteAssets(context.WithoutCancel(ctx), uc.store, []string{old}, uc.logger)
	return p, nil
}

func (uc *ProfileUsecase) Delete(ctx context.Context, actor domain.Actor) error {
	if err := requireUser(actor); err != nil {
		return err
	}
	p, err := uc.repo.GetByUserID(ctx, actor.UserID)
	if err != nil {
		return err
	}
	if err := uc.repo.Delete(ctx, actor.UserID); err != nil {
		return err
	}
	if p.Avatar != nil {
		deleteAssets(context.WithoutCancel(ctx), uc.store, []string{p.Avatar.PublicID}, uc.logger)
	}
	uc.logger.Info("Profile deleted", zap.String("user_id", actor.UserID))
	return nil
}

func (uc *ProfileUsecase) mutate(ctx context.Context, actor domain.Actor, fn func(p *domain.Profile, now time.Time) error) (*domain.Profile, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	p, err := uc.repo.GetByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if err := fn(p, uc.now()); err != nil {
		return nil, err
	}
	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
