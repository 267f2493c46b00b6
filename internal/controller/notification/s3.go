// Package notification turns storage "object created" notifications into object references.
package notification

import (
	"fmt"
	"strings"

	"github.com/andreyxaxa/Image-Tagger/internal/entity"
	"github.com/andreyxaxa/Image-Tagger/pkg/types/errs"
	"github.com/aws/aws-lambda-go/events"
)

// TestEventName is sent by S3 once when a notification target is configured.
const TestEventName = "s3:TestEvent"

// ObjectRefs extracts the created objects from an S3 event. Records for other event
// types are skipped. Keys arrive URL-encoded and are decoded here.
func ObjectRefs(ev events.S3Event) ([]entity.ObjectRef, error) {
	refs := make([]entity.ObjectRef, 0, len(ev.Records))

	for i, rec := range ev.Records {
		// AWS sends "ObjectCreated:Put", MinIO "s3:ObjectCreated:Put"
		if rec.EventName != "" && !strings.Contains(rec.EventName, "ObjectCreated") {
			continue
		}

		ref, err := ObjectRef(rec)
		if err != nil {
			return nil, fmt.Errorf("ObjectRefs - record %d: %w", i, err)
		}

		refs = append(refs, ref)
	}

	return refs, nil
}

func ObjectRef(rec events.S3EventRecord) (entity.ObjectRef, error) {
	if rec.S3.Bucket.Name == "" || rec.S3.Object.Key == "" {
		return entity.ObjectRef{}, fmt.Errorf("ObjectRef: %w: record has no bucket or key", errs.ErrMalformedEvent)
	}

	key, err := entity.UnescapeNotificationKey(rec.S3.Object.Key)
	if err != nil {
		return entity.ObjectRef{}, fmt.Errorf("ObjectRef: %w", err)
	}

	return entity.ObjectRef{Bucket: rec.S3.Bucket.Name, Key: key}, nil
}
