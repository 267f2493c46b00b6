package kafka

import (
	"encoding/json"
	"fmt"

	"github.com/andreyxaxa/Image-Tagger/internal/controller/notification"
	"github.com/andreyxaxa/Image-Tagger/internal/entity"
	"github.com/andreyxaxa/Image-Tagger/pkg/types/errs"
	"github.com/aws/aws-lambda-go/events"
)

// BucketNotification is the message an S3-compatible store publishes to Kafka.
// MinIO wraps the regular S3 event records with the event name and "bucket/key".
type BucketNotification struct {
	EventName string `json:"EventName"`
	Key       string `json:"Key"`

	events.S3Event
}

func decodeNotification(value []byte) ([]entity.ObjectRef, error) {
	var payload BucketNotification
	if err := json.Unmarshal(value, &payload); err != nil {
		return nil, fmt.Errorf("decodeNotification - json.Unmarshal: %w: %w", errs.ErrMalformedEvent, err)
	}

	if payload.EventName == notification.TestEventName {
		return nil, nil
	}

	if len(payload.Records) == 0 {
		return nil, fmt.Errorf("decodeNotification: %w: no records", errs.ErrMalformedEvent)
	}

	refs, err := notification.ObjectRefs(payload.S3Event)
	if err != nil {
		return nil, fmt.Errorf("decodeNotification - notification.ObjectRefs: %w", err)
	}

	return refs, nil
}
