package usecase

import (
	"context"
	"fmt"
	"path"

	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/listing/form"
	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/platform/logger"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type PhotoUsecase struct {
	storage domain.Storage
	logger  *logger.Logger
}

func NewPhotoUsecase(storage domain.Storage, log *logger.Logger) *PhotoUsecase {
	return &PhotoUsecase{storage: storage, logger: log}
}

// UploadAll stores every attachment under listings/<userID> and returns the
// URLs in the same order. Any failure fails the whole set.
func (uc *PhotoUsecase) UploadAll(ctx context.Context, userID string, images []form.Attachment) ([]string, error) {
	if len(images) == 0 {
		return nil, nil
	}
	prefix := "listings/" + userID
	urls := make([]string, len(images))

	g, gctx := errgroup.WithContext(ctx)
	for i, img := range images {
		g.Go(func() error {
			url, err := uc.storage.Upload(gctx, prefix, objectName(img.Name), img.ContentType, img.Data)
			if err != nil {
				return fmt.Errorf("%s: %w", img.Name, err)
			}
			urls[i] = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		uc.logger.Error("PhotoUsecase.UploadAll: upload failed", "user_id", userID, "count", len(images), "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrUploadFailed, err)
	}
	uc.logger.Info("PhotoUsecase.UploadAll: images uploaded", "user_id", userID, "count", len(urls))
	return urls, nil
}

func objectName(name string) string {
	ext := path.Ext(name)
	if ext == "" {
		ext = ".jpg"
	}
	return uuid.NewString() + ext
}
