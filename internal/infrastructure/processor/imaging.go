package processor

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

const (
	jpegQuality  = 85
	minDimension = 32
	// shrink a little more than the byte ratio suggests so most images fit in one pass
	shrinkMargin = 0.9
)

type ImageProcessor struct {
}

func New() *ImageProcessor {
	return &ImageProcessor{}
}

func (p *ImageProcessor) FitBytes(ctx context.Context, data []byte, maxBytes int) ([]byte, error) {
	if len(data) <= maxBytes {
		return data, nil
	}

	img, err := decodeImage(data)
	if err != nil {
		return nil, fmt.Errorf("ImageProcessor - FitBytes - decodeImage: %w", err)
	}

	size := len(data)
	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("ImageProcessor - FitBytes: %w", err)
		}

		scale := math.Sqrt(float64(maxBytes)/float64(size)) * shrinkMargin
		bounds := img.Bounds()
		width := int(float64(bounds.Dx()) * scale)
		height := int(float64(bounds.Dy()) * scale)
		if width < minDimension || height < minDimension {
			return nil, fmt.Errorf("ImageProcessor - FitBytes: cannot fit %dx%d image into %d bytes", bounds.Dx(), bounds.Dy(), maxBytes)
		}

		img = imaging.Fit(img, width, height, imaging.Lanczos)

		res, err := encodeJPEG(img)
		if err != nil {
			return nil, fmt.Errorf("ImageProcessor - FitBytes - encodeJPEG: %w", err)
		}

		if len(res) <= maxBytes {
			return res, nil
		}
		size = len(res)
	}
}

func decodeImage(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("ImageProcessor - decodeImage - imaging.Decode: %w", err)
	}

	return img, nil
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer

	err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality))
	if err != nil {
		return nil, fmt.Errorf("ImageProcessor - encodeJPEG - imaging.Encode: %w", err)
	}

	return buf.Bytes(), nil
}
