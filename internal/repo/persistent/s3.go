package persistent

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/andreyxaxa/Image-Tagger/internal/entity"
	"github.com/andreyxaxa/Image-Tagger/pkg/awsclient"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type ImageRepo struct {
	*awsclient.Client
	bucket  string
	baseURL string
}

// NewImageRepo builds public object URLs from endpoint when set, virtual-host AWS URLs otherwise.
func NewImageRepo(c *awsclient.Client, bucket, region, endpoint string) *ImageRepo {
	baseURL := fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	if endpoint != "" {
		baseURL = strings.TrimRight(endpoint, "/") + "/" + bucket
	}

	return &ImageRepo{c, bucket, baseURL}
}

func (r *ImageRepo) PresignUpload(ctx context.Context, key, contentType string, expires time.Duration) (string, error) {
	req, err := r.Presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return "", fmt.Errorf("ImageRepo - PresignUpload - r.Presign.PresignPutObject: %w", err)
	}

	return req.URL, nil
}

func (r *ImageRepo) DownloadBytes(ctx context.Context, ref entity.ObjectRef) ([]byte, error) {
	bucket := ref.Bucket
	if bucket == "" {
		bucket = r.bucket
	}

	result, err := r.S3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(ref.Key),
	})
	if err != nil {
		return nil, fmt.Errorf("ImageRepo - DownloadBytes - r.S3.GetObject: %w", err)
	}
	defer result.Body.Close()

	b, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("ImageRepo - DownloadBytes - io.ReadAll: %w", err)
	}

	return b, nil
}

func (r *ImageRepo) PublicURL(key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}

	return r.baseURL + "/" + strings.Join(segments, "/")
}
