// Package tagclient is a Go client for the image tagger HTTP API.
package tagclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	_defaultTimeout    = 30 * time.Second
	_defaultRetryCount = 2
)

type Client struct {
	timeout    time.Duration
	retryCount int

	rc *resty.Client
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		timeout:    _defaultTimeout,
		retryCount: _defaultRetryCount,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.rc = resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(c.timeout).
		SetRetryCount(c.retryCount).
		AddRetryCondition(retryIdempotent).
		SetHeader("Accept", "application/json")

	return c
}

// RequestUpload asks the API for a presigned upload URL.
func (c *Client) RequestUpload(ctx context.Context, fileName, fileType string) (*UploadTicket, error) {
	var ticket UploadTicket

	resp, err := c.rc.R().
		SetContext(ctx).
		SetBody(map[string]string{"fileName": fileName, "fileType": fileType}).
		SetResult(&ticket).
		SetError(&APIError{}).
		Post("/api/generate-upload-url")
	if err := check(resp, err); err != nil {
		return nil, fmt.Errorf("tagclient - RequestUpload: %w", err)
	}

	return &ticket, nil
}

// Upload PUTs the bytes to a presigned URL. contentType must match the one the URL was issued for.
func (c *Client) Upload(ctx context.Context, presignedURL, contentType string, data []byte) error {
	resp, err := c.rc.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetBody(data).
		Put(presignedURL)
	if err != nil {
		return fmt.Errorf("tagclient - Upload: %w", err)
	}

	if resp.IsError() {
		return fmt.Errorf("tagclient - Upload: storage returned %d", resp.StatusCode())
	}

	return nil
}

func (c *Client) GetStatus(ctx context.Context, imageID string) (*Image, error) {
	var image Image

	resp, err := c.rc.R().
		SetContext(ctx).
		SetPathParam("imageId", imageID).
		SetResult(&image).
		SetError(&APIError{}).
		Get("/api/status/{imageId}")
	if err := check(resp, err); err != nil {
		return nil, fmt.Errorf("tagclient - GetStatus: %w", err)
	}

	if image.Tags == nil {
		image.Tags = []string{}
	}

	return &image, nil
}

// Search returns labeled images carrying every keyword.
func (c *Client) Search(ctx context.Context, keywords []string) ([]Image, error) {
	var out searchResponse

	resp, err := c.rc.R().
		SetContext(ctx).
		SetQueryParam("q", strings.Join(keywords, " ")).
		SetResult(&out).
		SetError(&APIError{}).
		Get("/api/search")
	if err := check(resp, err); err != nil {
		return nil, fmt.Errorf("tagclient - Search: %w", err)
	}

	if out.Images == nil {
		out.Images = []Image{}
	}

	return out.Images, nil
}

// retryIdempotent never retries POST, a retried upload request would create a second record.
func retryIdempotent(r *resty.Response, err error) bool {
	if r == nil || r.Request == nil || r.Request.Method == http.MethodPost {
		return false
	}

	return err != nil || r.StatusCode() >= http.StatusInternalServerError
}

func check(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}

	if !resp.IsError() {
		return nil
	}

	if apiErr, ok := resp.Error().(*APIError); ok && apiErr.Message != "" {
		if apiErr.Status == 0 {
			apiErr.Status = resp.StatusCode()
		}

		return apiErr
	}

	return &APIError{Message: http.StatusText(resp.StatusCode()), Status: resp.StatusCode()}
}
