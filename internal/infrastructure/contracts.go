package infrastructure

import (
	"context"

	"github.com/andreyxaxa/Image-Tagger/internal/entity"
	"github.com/segmentio/kafka-go"
)

type (
	// LabelDetector asks the labeling service for labels of an image, either by
	// object reference or by raw bytes.
	LabelDetector interface {
		DetectObjectLabels(ctx context.Context, ref entity.ObjectRef, maxLabels int32, minConfidence float32) ([]entity.Label, error)
		DetectBytesLabels(ctx context.Context, data []byte, maxLabels int32, minConfidence float32) ([]entity.Label, error)
	}

	ImageProcessor interface {
		// FitBytes re-encodes the image so it is at most maxBytes long. Smaller input is returned unchanged.
		FitBytes(ctx context.Context, data []byte, maxBytes int) ([]byte, error)
	}

	// EventConsumer delivers bucket notifications at least once.
	EventConsumer interface {
		ReadEvent(ctx context.Context) (kafka.Message, error)
		CommitEvent(ctx context.Context, event kafka.Message) error
		Close() error
	}
)
