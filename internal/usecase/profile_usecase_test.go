package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newProfileUsecase() (*ProfileUsecase, *MockProfileRepository, *MockImageStore) {
	repo := new(MockProfileRepository)
	store := new(MockImageStore)
	uc := NewProfileUsecase(repo, store, logger.NewNop())
	uc.now = fixedNow
	return uc, repo, store
}

func storedProfile() *domain.Profile {
	return &domain.Profile{
		UserID:      owner.UserID,
		FirstName:   "Olena",
		DisplayName: "Olena",
		Contact:     domain.Contact{Email: "olena@example.com", Phone: "+380501112233", City: "Lviv"},
		Preferences: domain.DefaultPreferences(),
	}
}

func TestProfileUsecase_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates with default preferences", func(t *testing.T) {
		uc, repo, _ := newProfileUsecase()
		repo.On("Create", ctx, mock.AnythingOfType("*domain.Profile")).Return(nil).Once()

		p, err := uc.Create(ctx, owner, domain.ProfileDetails{FirstName: "Olena", LastName: "K"})
		require.NoError(t, err)
		assert.Equal(t, owner.UserID, p.UserID)
		assert.Equal(t, "Olena K", p.DisplayName)
		assert.True(t, p.Preferences.EmailNotifications)
	})

	t.Run("second profile conflicts", func(t *testing.T) {
		uc, repo, _ := newProfileUsecase()
		repo.On("Create", ctx, mock.Anything).Return(domain.ErrConflict).Once()

		_, err := uc.Create(ctx, owner, domain.ProfileDetails{FirstName: "Olena"})
		assert.ErrorIs(t, err, domain.ErrConflict)
	})
}

func TestProfileUsecase_GetPublicHidesContact(t *testing.T) {
	ctx := context.Background()
	uc, repo, _ := newProfileUsecase()
	repo.On("GetByUserID", ctx, owner.UserID).Return(storedProfile(), nil).Once()

	p, err := uc.GetPublic(ctx, owner.UserID)
	require.NoError(t, err)
	assert.Empty(t, p.Contact.Email)
	assert.Empty(t, p.Contact.Phone)
	assert.Equal(t, "Lviv", p.Contact.City)
}

func TestProfileUsecase_Patches(t *testing.T) {
	ctx := context.Background()
	uc, repo, _ := newProfileUsecase()
	p := storedProfile()
	repo.On("GetByUserID", ctx, owner.UserID).Return(p, nil)
	repo.On("Update", ctx, p).Return(nil)

	show, lang := true, "en"
	got, err := uc.UpdatePreferences(ctx, owner, PreferencesPatch{ShowPhone: &show, Language: &lang})
	require.NoError(t, err)
	assert.True(t, got.Preferences.ShowPhone)
	assert.True(t, got.Preferences.EmailNotifications)
	assert.Equal(t, "en", got.Preferences.Language)
	assert.Equal(t, testNow, got.UpdatedAt)

	empty := " "
	_, err = uc.UpdatePreferences(ctx, owner, PreferencesPatch{Language: &empty})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	yes := true
	got, err = uc.UpdateSocial(ctx, owner, SocialPatch{Telegram: &yes})
	require.NoError(t, err)
	assert.True(t, got.Social.Telegram)
	assert.False(t, got.Social.Facebook)
}

func TestProfileUsecase_UploadAvatar(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces and deletes the old avatar", func(t *testing.T) {
		uc, repo, store := newProfileUsecase()
		p := storedProfile()
		p.Avatar = &domain.Asset{URL: "https://img/old", PublicID: "avatars/old"}
		file := domain.LocalFile{Filename: "me.jpg"}

		repo.On("GetByUserID", ctx, owner.UserID).Return(p, nil).Once()
		store.On("Upload", ctx, folderAvatars, file).Return(domain.Asset{URL: "https://img/new", PublicID: "avatars/new"}, nil).Once()
		repo.On("Update", ctx, p).Return(nil).Once()
		store.On("Delete", mock.Anything, "avatars/old").Return(nil).Once()

		got, err := uc.UploadAvatar(ctx, owner, file)
		require.NoError(t, err)
		assert.Equal(t, "avatars/new", got.Avatar.PublicID)
		store.AssertExpectations(t)
	})

	t.Run("failed save removes the new upload", func(t *testing.T) {
		uc, repo, store := newProfileUsecase()
		p := storedProfile()
		file := domain.LocalFile{Filename: "me.jpg"}

		repo.On("GetByUserID", ctx, owner.UserID).Return(p, nil).Once()
		store.On("Upload", ctx, folderAvatars, file).Return(domain.Asset{URL: "https://img/new", PublicID: "avatars/new"}, nil).Once()
		repo.On("Update", ctx, p).Return(errors.New("db down")).Once()
		store.On("Delete", mock.Anything, "avatars/new").Return(nil).Once()

		_, err := uc.UploadAvatar(ctx, owner, file)
		require.Error(t, err)
		store.AssertExpectations(t)
	})
}

func TestProfileUsecase_Delete(t *testing.T) {
	ctx := context.Background()
	uc, repo, store := newProfileUsecase()
	p := storedProfile()
	p.Avatar = &domain.Asset{PublicID: "avatars/me"}

	repo.On("GetByUserID", ctx, owner.UserID).Return(p, nil).Once()
	repo.On("Delete", ctx, owner.UserID).Return(nil).Once()
	store.On("Delete", mock.Anything, "avatars/me").Return(nil).Once()

	require.NoError(t, uc.Delete(ctx, owner))
	store.AssertExpectations(t)

	assert.ErrorIs(t, uc.Delete(ctx, anonymous), domain.ErrUnauthorized)
}
