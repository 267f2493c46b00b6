package image

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andreyxaxa/Image-Tagger/internal/entity"
	"github.com/andreyxaxa/Image-Tagger/internal/repo"
	"github.com/andreyxaxa/Image-Tagger/pkg/logger"
	"github.com/andreyxaxa/Image-Tagger/pkg/types/errs"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type ImageUseCase struct {
	imageRepo     repo.ImageRepo
	metadataRepo  repo.ImageMetadataRepo
	presignExpiry time.Duration
	validate      *validator.Validate

	logger logger.Interface
}

func New(
	imageRepo repo.ImageRepo,
	metadataRepo repo.ImageMetadataRepo,
	presignExpiry time.Duration,
	l logger.Interface,
) *ImageUseCase {
	return &ImageUseCase{
		imageRepo:     imageRepo,
		metadataRepo:  metadataRepo,
		presignExpiry: presignExpiry,
		validate:      newValidator(),
		logger:        l,
	}
}

func (uc *ImageUseCase) RequestUpload(ctx context.Context, fileName, fileType string) (*entity.UploadTicket, error) {
	// 1. validation, nothing is created for bad input
	if err := uc.validateUpload(fileName, fileType); err != nil {
		return nil, fmt.Errorf("ImageUseCase - RequestUpload - uc.validateUpload: %w", err)
	}

	imageID := uuid.NewString()
	storageKey := entity.EncodeStorageKey(imageID, fileName)

	// 2. presigned PUT scoped to key and content type
	url, err := uc.imageRepo.PresignUpload(ctx, storageKey, fileType, uc.presignExpiry)
	if err != nil {
		return nil, fmt.Errorf("ImageUseCase - RequestUpload - uc.imageRepo.PresignUpload: %w: %w", errs.ErrStorageBackend, err)
	}

	// 3. PENDING record. The URL is already issued and cannot be revoked if this fails.
	image := &entity.Image{
		ImageID:    imageID,
		StorageKey: storageKey,
		FileName:   fileName,
		FileType:   fileType,
		Status:     entity.Pending,
		Tags:       []string{},
		CreatedAt:  time.Now().UTC(),
	}

	if err := uc.metadataRepo.Create(ctx, image); err != nil {
		return nil, fmt.Errorf("ImageUseCase - RequestUpload - uc.metadataRepo.Create: %w: %w", errs.ErrPersistence, err)
	}

	return &entity.UploadTicket{
		PresignedURL: url,
		ImageID:      imageID,
		ExpiresIn:    uc.presignExpiry,
	}, nil
}

func (uc *ImageUseCase) GetStatus(ctx context.Context, imageID string) (*entity.Image, error) {
	if imageID == "" {
		return nil, fmt.Errorf("ImageUseCase - GetStatus: %w: imageId is required", errs.ErrValidation)
	}

	image, err := uc.metadataRepo.GetByID(ctx, imageID)
	if err != nil {
		if errors.Is(err, errs.ErrRecordNotFound) {
			return nil, fmt.Errorf("ImageUseCase - GetStatus - uc.metadataRepo.GetByID: %w", err)
		}
		return nil, fmt.Errorf("ImageUseCase - GetStatus - uc.metadataRepo.GetByID: %w: %w", errs.ErrBackendQuery, err)
	}

	uc.decorate(image)

	return image, nil
}

func (uc *ImageUseCase) Search(ctx context.Context, keywords []string) ([]*entity.Image, error) {
	keywords, err := normalizeKeywords(keywords)
	if err != nil {
		return nil, fmt.Errorf("ImageUseCase - Search - normalizeKeywords: %w", err)
	}

	images, err := uc.metadataRepo.Search(ctx, keywords)
	if err != nil {
		return nil, fmt.Errorf("ImageUseCase - Search - uc.metadataRepo.Search: %w: %w", errs.ErrBackendQuery, err)
	}

	if images == nil {
		images = []*entity.Image{}
	}
	for _, image := range images {
		uc.decorate(image)
	}

	uc.logger.Debug("ImageUseCase - Search - keywords=%v found=%d", keywords, len(images))

	return images, nil
}

func (uc *ImageUseCase) decorate(image *entity.Image) {
	if image.Tags == nil {
		image.Tags = []string{}
	}
	image.ImageURL = uc.imageRepo.PublicURL(image.StorageKey)
}
