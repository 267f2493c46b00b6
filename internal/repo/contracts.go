package repo

import (
	"context"
	"time"

	"github.com/andreyxaxa/Image-Tagger/internal/entity"
)

type (
	ImageRepo interface {
		PresignUpload(ctx context.Context, key, contentType string, expires time.Duration) (string, error)
		DownloadBytes(ctx context.Context, ref entity.ObjectRef) ([]byte, error)
		PublicURL(key string) string
	}

	ImageMetadataRepo interface {
		Create(ctx context.Context, image *entity.Image) error
		GetByID(ctx context.Context, id string) (*entity.Image, error)
		// Search returns COMPLETED images whose tags contain every keyword.
		Search(ctx context.Context, keywords []string) ([]*entity.Image, error)
		// MarkCompleted applies only to PENDING or COMPLETED records.
		MarkCompleted(ctx context.Context, id string, tags []string, at time.Time) error
		// MarkFailed applies only to PENDING records.
		MarkFailed(ctx context.Context, id, reason string, at time.Time) error
	}
)
