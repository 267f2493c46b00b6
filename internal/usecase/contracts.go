package usecase

import (
	"context"

	"github.com/andreyxaxa/Image-Tagger/internal/entity"
)

type (
	ImageUseCase interface {
		RequestUpload(ctx context.Context, fileName, fileType string) (*entity.UploadTicket, error)
		GetStatus(ctx context.Context, imageID string) (*entity.Image, error)
		Search(ctx context.Context, keywords []string) ([]*entity.Image, error)
	}

	LabelerUseCase interface {
		Label(ctx context.Context, ref entity.ObjectRef) (*entity.LabelResult, error)
	}
)
