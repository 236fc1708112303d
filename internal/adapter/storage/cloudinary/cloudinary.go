package cloudinary

import (
	"context"
	"errors"
	"fmt"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	cld "github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"
)

// uploadAPI is the part of the Cloudinary upload API the store uses.
type uploadAPI interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

// Store keeps images on Cloudinary. Public ids are Cloudinary public ids.
type Store struct {
	api        uploadAPI
	rootFolder string
	logger     *logger.Logger
}

func New(cloudName, apiKey, apiSecret, rootFolder string, log *logger.Logger) (*Store, error) {
	client, err := cld.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudinary client: %w", err)
	}
	log.Info("Initialized Cloudinary storage", zap.String("cloud_name", cloudName), zap.String("folder", rootFolder))
	return newStore(&client.Upload, rootFolder, log), nil
}

func newStore(api uploadAPI, rootFolder string, log *logger.Logger) *Store {
	return &Store{api: api, rootFolder: rootFolder, logger: log.Named("CloudinaryStore")}
}

func (s *Store) folder(sub string) string {
	switch {
	case s.rootFolder == "":
		return sub
	case sub == "":
		return s.rootFolder
	}
	return s.rootFolder + "/" + sub
}

func (s *Store) Upload(ctx context.Context, folder string, file domain.LocalFile) (domain.Asset, error) {
	res, err := s.api.Upload(ctx, file.Path, uploader.UploadParams{
		Folder:       s.folder(folder),
		ResourceType: "image",
	})
	if err != nil {
		return domain.Asset{}, fmt.Errorf("cloudinary upload: %w", err)
	}
	if res.Error.Message != "" {
		return domain.Asset{}, fmt.Errorf("cloudinary upload: %s", res.Error.Message)
	}
	if res.SecureURL == "" || res.PublicID == "" {
		return domain.Asset{}, errors.New("cloudinary upload: empty url or public id in response")
	}
	return domain.Asset{URL: res.SecureURL, PublicID: res.PublicID}, nil
}

// Delete treats an already missing asset as deleted.
func (s *Store) Delete(ctx context.Context, publicID string) error {
	res, err := s.api.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("cloudinary destroy: %w", err)
	}
	if res.Error.Message != "" {
		return fmt.Errorf("cloudinary destroy: %s", res.Error.Message)
	}
	if res.Result != "ok" && res.Result != "not found" {
		return fmt.Errorf("cloudinary destroy: unexpected result %q", res.Result)
	}
	if res.Result == "not found" {
		s.logger.Debug("Asset already absent", zap.String("public_id", publicID))
	}
	return nil
}
