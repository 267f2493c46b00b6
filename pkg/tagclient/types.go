package tagclient

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/andreyxaxa/Image-Tagger/pkg/types/errs"
)

var (
	ErrBusy           = errors.New("an upload is already in progress")
	ErrPollTimeout    = errors.New("timed out waiting for labels")
	ErrLabelingFailed = errors.New("labeling failed")
)

const (
	StatusPending   = "PENDING"
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
)

type UploadTicket struct {
	PresignedURL string `json:"presignedUrl"`
	ImageID      string `json:"imageId"`
	ExpiresIn    int    `json:"expiresIn"`
}

type Image struct {
	ImageID       string     `json:"imageId"`
	StorageKey    string     `json:"storageKey"`
	FileName      string     `json:"fileName"`
	FileType      string     `json:"fileType"`
	Status        string     `json:"status"`
	Tags          []string   `json:"tags"`
	FailureReason string     `json:"failureReason,omitempty"`
	ImageURL      string     `json:"imageUrl,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	LabeledAt     *time.Time `json:"labeledAt,omitempty"`
}

type searchResponse struct {
	Images []Image `json:"images"`
}

// APIError is the {"error","status"} body the API returns on failure.
type APIError struct {
	Message string `json:"error"`
	Status  int    `json:"status"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Is lets callers match 400 and 404 against the shared sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case errs.ErrValidation:
		return e.Status == http.StatusBadRequest
	case errs.ErrRecordNotFound:
		return e.Status == http.StatusNotFound
	}

	return false
}
