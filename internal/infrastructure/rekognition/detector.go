package rekognition

import (
	"context"
	"fmt"

	"github.com/andreyxaxa/Image-Tagger/internal/entity"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
)

// MaxInlineBytes is the largest image DetectLabels accepts as raw bytes.
const MaxInlineBytes = 5 * 1024 * 1024

type API interface {
	DetectLabels(ctx context.Context, params *rekognition.DetectLabelsInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectLabelsOutput, error)
}

type Detector struct {
	api API
}

func New(api API) *Detector {
	return &Detector{api: api}
}

func (d *Detector) DetectObjectLabels(ctx context.Context, ref entity.ObjectRef, maxLabels int32, minConfidence float32) ([]entity.Label, error) {
	labels, err := d.detect(ctx, &types.Image{
		S3Object: &types.S3Object{
			Bucket: aws.String(ref.Bucket),
			Name:   aws.String(ref.Key),
		},
	}, maxLabels, minConfidence)
	if err != nil {
		return nil, fmt.Errorf("Detector - DetectObjectLabels - d.detect: %w", err)
	}

	return labels, nil
}

func (d *Detector) DetectBytesLabels(ctx context.Context, data []byte, maxLabels int32, minConfidence float32) ([]entity.Label, error) {
	if len(data) > MaxInlineBytes {
		return nil, fmt.Errorf("Detector - DetectBytesLabels: image is %d bytes, limit is %d", len(data), MaxInlineBytes)
	}

	labels, err := d.detect(ctx, &types.Image{Bytes: data}, maxLabels, minConfidence)
	if err != nil {
		return nil, fmt.Errorf("Detector - DetectBytesLabels - d.detect: %w", err)
	}

	return labels, nil
}

func (d *Detector) detect(ctx context.Context, image *types.Image, maxLabels int32, minConfidence float32) ([]entity.Label, error) {
	out, err := d.api.DetectLabels(ctx, &rekognition.DetectLabelsInput{
		Image:         image,
		MaxLabels:     aws.Int32(maxLabels),
		MinConfidence: aws.Float32(minConfidence),
	})
	if err != nil {
		return nil, fmt.Errorf("d.api.DetectLabels: %w", err)
	}

	labels := make([]entity.Label, 0, len(out.Labels))
	for _, l := range out.Labels {
		labels = append(labels, entity.Label{
			Name:       aws.ToString(l.Name),
			Confidence: aws.ToFloat32(l.Confidence),
		})
	}

	return labels, nil
}
