package entity

import (
	"time"
)

type Image struct {
	ImageID    string `json:"imageId" dynamodbav:"imageId"`
	StorageKey string `json:"storageKey" dynamodbav:"storageKey"`

	FileName string `json:"fileName" dynamodbav:"fileName"`
	FileType string `json:"fileType" dynamodbav:"fileType"`
	Status   Status `json:"status" dynamodbav:"status"` // PENDING, COMPLETED, FAILED

	// Tags is always a list, even when the record was stored with a string set or without tags.
	Tags          []string `json:"tags" dynamodbav:"-"`
	FailureReason string   `json:"failureReason,omitempty" dynamodbav:"failureReason,omitempty"`
	ImageURL      string   `json:"imageUrl,omitempty" dynamodbav:"-"`

	CreatedAt time.Time  `json:"createdAt" dynamodbav:"createdAt"`
	LabeledAt *time.Time `json:"labeledAt,omitempty" dynamodbav:"labeledAt,omitempty"`
}

// UploadTicket is what the client receives to upload straight to storage.
type UploadTicket struct {
	PresignedURL string
	ImageID      string
	ExpiresIn    time.Duration
}

// ObjectRef points at an object in a bucket.
type ObjectRef struct {
	Bucket string
	Key    string
}
