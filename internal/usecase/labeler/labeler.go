package labeler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andreyxaxa/Image-Tagger/internal/entity"
	"github.com/andreyxaxa/Image-Tagger/internal/infrastructure"
	"github.com/andreyxaxa/Image-Tagger/internal/repo"
	"github.com/andreyxaxa/Image-Tagger/pkg/logger"
	"github.com/andreyxaxa/Image-Tagger/pkg/types/errs"
)

type Options struct {
	MinConfidence float32
	MaxLabels     int32
	MaxTags       int
	// InlineBytes makes the worker download the object and send its bytes,
	// for stores the labeling service cannot read from.
	InlineBytes    bool
	MaxInlineBytes int
}

type LabelerUseCase struct {
	detector     infrastructure.LabelDetector
	processor    infrastructure.ImageProcessor
	imageRepo    repo.ImageRepo
	metadataRepo repo.ImageMetadataRepo
	opts         Options

	logger logger.Interface
}

func New(
	detector infrastructure.LabelDetector,
	processor infrastructure.ImageProcessor,
	imageRepo repo.ImageRepo,
	metadataRepo repo.ImageMetadataRepo,
	opts Options,
	l logger.Interface,
) *LabelerUseCase {
	return &LabelerUseCase{
		detector:     detector,
		processor:    processor,
		imageRepo:    imageRepo,
		metadataRepo: metadataRepo,
		opts:         opts,
		logger:       l,
	}
}

func (uc *LabelerUseCase) Label(ctx context.Context, ref entity.ObjectRef) (*entity.LabelResult, error) {
	if ref.Key == "" {
		return nil, fmt.Errorf("LabelerUseCase - Label: %w: empty object key", errs.ErrMalformedEvent)
	}

	// 1. id from the shared key codec
	imageID, err := entity.DecodeStorageKey(ref.Key)
	if err != nil {
		return nil, fmt.Errorf("LabelerUseCase - Label - entity.DecodeStorageKey: %w", err)
	}

	// 2. labels
	labels, err := uc.detect(ctx, ref)
	if err != nil {
		markErr := uc.markFailed(ctx, imageID, err)
		if errors.Is(markErr, errs.ErrInvalidTransition) {
			// an earlier delivery already settled the record
			uc.logger.Warn("LabelerUseCase - Label - detect failed after record settled, imageId=%s: %v", imageID, err)

			return uc.settled(ctx, imageID)
		}

		return nil, fmt.Errorf("LabelerUseCase - Label - uc.detect: %w: %w", errs.ErrLabelingService, err)
	}

	// 3. tags
	tags := ProcessLabels(labels, uc.opts.MinConfidence, uc.opts.MaxTags)
	if len(tags) == 0 {
		uc.logger.Warn("LabelerUseCase - Label - no tags with sufficient confidence, imageId=%s", imageID)
	}

	// 4. PENDING -> COMPLETED
	err = uc.metadataRepo.MarkCompleted(ctx, imageID, tags, time.Now().UTC())
	if err != nil {
		if errors.Is(err, errs.ErrInvalidTransition) {
			// duplicate delivery after the record reached FAILED
			uc.logger.Warn("LabelerUseCase - Label - skipped, imageId=%s: %v", imageID, err)

			return &entity.LabelResult{ImageID: imageID, Status: entity.Failed, Tags: []string{}}, nil
		}
		return nil, fmt.Errorf("LabelerUseCase - Label - uc.metadataRepo.MarkCompleted: %w: %w", errs.ErrPersistence, err)
	}

	uc.logger.Info("LabelerUseCase - Label - imageId=%s labels=%d tags=%v", imageID, len(labels), tags)

	return &entity.LabelResult{ImageID: imageID, Status: entity.Completed, Tags: tags}, nil
}

func (uc *LabelerUseCase) detect(ctx context.Context, ref entity.ObjectRef) ([]entity.Label, error) {
	if !uc.opts.InlineBytes {
		return uc.detector.DetectObjectLabels(ctx, ref, uc.opts.MaxLabels, uc.opts.MinConfidence)
	}

	data, err := uc.imageRepo.DownloadBytes(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("uc.imageRepo.DownloadBytes: %w", err)
	}

	data, err = uc.processor.FitBytes(ctx, data, uc.opts.MaxInlineBytes)
	if err != nil {
		return nil, fmt.Errorf("uc.processor.FitBytes: %w", err)
	}

	return uc.detector.DetectBytesLabels(ctx, data, uc.opts.MaxLabels, uc.opts.MinConfidence)
}

func (uc *LabelerUseCase) markFailed(ctx context.Context, imageID string, cause error) error {
	err := uc.metadataRepo.MarkFailed(ctx, imageID, cause.Error(), time.Now().UTC())
	if err != nil && !errors.Is(err, errs.ErrInvalidTransition) {
		uc.logger.Error(err, "LabelerUseCase - markFailed - uc.metadataRepo.MarkFailed, imageId=%s", imageID)
	}

	return err
}

// settled reports the stored outcome of a record another delivery has finished.
func (uc *LabelerUseCase) settled(ctx context.Context, imageID string) (*entity.LabelResult, error) {
	image, err := uc.metadataRepo.GetByID(ctx, imageID)
	if err != nil {
		return nil, fmt.Errorf("LabelerUseCase - settled - uc.metadataRepo.GetByID: %w: %w", errs.ErrPersistence, err)
	}

	tags := image.Tags
	if tags == nil {
		tags = []string{}
	}

	return &entity.LabelResult{ImageID: imageID, Status: image.Status, Tags: tags}, nil
}
