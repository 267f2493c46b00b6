// Package testutil holds testify mocks for the repo and infrastructure contracts.
package testutil

import (
	"context"
	"time"

	"github.com/andreyxaxa/Image-Tagger/internal/entity"
	"github.com/andreyxaxa/Image-Tagger/internal/infrastructure"
	"github.com/andreyxaxa/Image-Tagger/internal/repo"
	"github.com/andreyxaxa/Image-Tagger/internal/usecase"
	"github.com/stretchr/testify/mock"
)

var (
	_ repo.ImageRepo                = (*ImageRepo)(nil)
	_ repo.ImageMetadataRepo        = (*MetadataRepo)(nil)
	_ infrastructure.LabelDetector  = (*Detector)(nil)
	_ infrastructure.ImageProcessor = (*Processor)(nil)
	_ usecase.ImageUseCase          = (*ImageUseCase)(nil)
	_ usecase.LabelerUseCase        = (*LabelerUseCase)(nil)
)

type ImageRepo struct{ mock.Mock }

func (m *ImageRepo) PresignUpload(ctx context.Context, key, contentType string, expires time.Duration) (string, error) {
	args := m.Called(ctx, key, contentType, expires)
	return args.String(0), args.Error(1)
}

func (m *ImageRepo) DownloadBytes(ctx context.Context, ref entity.ObjectRef) ([]byte, error) {
	args := m.Called(ctx, ref)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

func (m *ImageRepo) PublicURL(key string) string {
	return "https://cdn.test/" + key
}

type MetadataRepo struct{ mock.Mock }

func (m *MetadataRepo) Create(ctx context.Context, image *entity.Image) error {
	return m.Called(ctx, image).Error(0)
}

func (m *MetadataRepo) GetByID(ctx context.Context, id string) (*entity.Image, error) {
	args := m.Called(ctx, id)
	image, _ := args.Get(0).(*entity.Image)
	return image, args.Error(1)
}

func (m *MetadataRepo) Search(ctx context.Context, keywords []string) ([]*entity.Image, error) {
	args := m.Called(ctx, keywords)
	images, _ := args.Get(0).([]*entity.Image)
	return images, args.Error(1)
}

func (m *MetadataRepo) MarkCompleted(ctx context.Context, id string, tags []string, at time.Time) error {
	return m.Called(ctx, id, tags, at).Error(0)
}

func (m *MetadataRepo) MarkFailed(ctx context.Context, id, reason string, at time.Time) error {
	return m.Called(ctx, id, reason, at).Error(0)
}

type Detector struct{ mock.Mock }

func (m *Detector) DetectObjectLabels(ctx context.Context, ref entity.ObjectRef, maxLabels int32, minConfidence float32) ([]entity.Label, error) {
	args := m.Called(ctx, ref, maxLabels, minConfidence)
	labels, _ := args.Get(0).([]entity.Label)
	return labels, args.Error(1)
}

func (m *Detector) DetectBytesLabels(ctx context.Context, data []byte, maxLabels int32, minConfidence float32) ([]entity.Label, error) {
	args := m.Called(ctx, data, maxLabels, minConfidence)
	labels, _ := args.Get(0).([]entity.Label)
	return labels, args.Error(1)
}

type Processor struct{ mock.Mock }

func (m *Processor) FitBytes(ctx context.Context, data []byte, maxBytes int) ([]byte, error) {
	args := m.Called(ctx, data, maxBytes)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

type ImageUseCase struct{ mock.Mock }

func (m *ImageUseCase) RequestUpload(ctx context.Context, fileName, fileType string) (*entity.UploadTicket, error) {
	args := m.Called(ctx, fileName, fileType)
	t, _ := args.Get(0).(*entity.UploadTicket)
	return t, args.Error(1)
}

func (m *ImageUseCase) GetStatus(ctx context.Context, imageID string) (*entity.Image, error) {
	args := m.Called(ctx, imageID)
	image, _ := args.Get(0).(*entity.Image)
	return image, args.Error(1)
}

func (m *ImageUseCase) Search(ctx context.Context, keywords []string) ([]*entity.Image, error) {
	args := m.Called(ctx, keywords)
	images, _ := args.Get(0).([]*entity.Image)
	return images, args.Error(1)
}

type LabelerUseCase struct{ mock.Mock }

func (m *LabelerUseCase) Label(ctx context.Context, ref entity.ObjectRef) (*entity.LabelResult, error) {
	args := m.Called(ctx, ref)
	res, _ := args.Get(0).(*entity.LabelResult)
	return res, args.Error(1)
}
