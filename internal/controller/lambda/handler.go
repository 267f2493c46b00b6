// Package lambda adapts the labeler to AWS Lambda triggers: S3 notifications
// delivered directly or through an SQS queue.
package lambda

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/andreyxaxa/Image-Tagger/internal/controller/notification"
	"github.com/andreyxaxa/Image-Tagger/internal/entity"
	"github.com/andreyxaxa/Image-Tagger/internal/usecase"
	"github.com/andreyxaxa/Image-Tagger/pkg/logger"
	"github.com/andreyxaxa/Image-Tagger/pkg/types/errs"
	"github.com/aws/aws-lambda-go/events"
)

const (
	eventSourceSQS = "aws:sqs"
	eventSourceS3  = "aws:s3"
)

type Handler struct {
	lbl    usecase.LabelerUseCase
	logger logger.Interface
}

func New(lbl usecase.LabelerUseCase, l logger.Interface) *Handler {
	return &Handler{lbl: lbl, logger: l}
}

// s3TestEvent is what S3 publishes when a notification target is first configured.
type s3TestEvent struct {
	Event string `json:"Event"`
}

// Handle is the Lambda entry point.
func (h *Handler) Handle(ctx context.Context, event json.RawMessage) (interface{}, error) {
	// SQS
	var sqsEvent events.SQSEvent
	if err := json.Unmarshal(event, &sqsEvent); err == nil {
		if len(sqsEvent.Records) > 0 && sqsEvent.Records[0].EventSource == eventSourceSQS {
			return h.HandleSQSEvent(ctx, sqsEvent), nil
		}
	}

	// S3
	var s3Event events.S3Event
	if err := json.Unmarshal(event, &s3Event); err == nil {
		if len(s3Event.Records) > 0 && s3Event.Records[0].EventSource == eventSourceS3 {
			return nil, h.HandleS3Event(ctx, s3Event)
		}
	}

	if isTestEvent([]byte(event)) {
		h.logger.Info("lambda - Handle - s3 test event ignored")

		return nil, nil
	}

	return nil, fmt.Errorf("lambda - Handle: %w: unsupported event", errs.ErrMalformedEvent)
}

// HandleS3Event labels every created object. Retryable failures are returned
// so the invocation is retried by Lambda. Malformed notifications are logged
// and dropped, a retry would see the same payload.
func (h *Handler) HandleS3Event(ctx context.Context, e events.S3Event) error {
	refs, err := notification.ObjectRefs(e)
	if err != nil {
		h.logger.Error(err, "lambda - HandleS3Event - dropping notification")

		return nil
	}

	var errList []error
	for _, ref := range refs {
		err := h.label(ctx, ref)
		if err == nil {
			continue
		}

		if errors.Is(err, errs.ErrMalformedEvent) {
			h.logger.Warn("lambda - HandleS3Event - dropping key=%s: %v", ref.Key, err)

			continue
		}

		errList = append(errList, err)
	}

	return errors.Join(errList...)
}

// HandleSQSEvent reports failed messages as batch item failures so only those are redriven.
// Malformed messages are dropped, retrying them cannot help.
func (h *Handler) HandleSQSEvent(ctx context.Context, e events.SQSEvent) events.SQSEventResponse {
	var resp events.SQSEventResponse

	for _, record := range e.Records {
		err := h.handleSQSMessage(ctx, record)
		if err == nil {
			continue
		}

		if errors.Is(err, errs.ErrMalformedEvent) {
			h.logger.Error(err, "lambda - HandleSQSEvent - dropping message %s", record.MessageId)

			continue
		}

		resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{ItemIdentifier: record.MessageId})
	}

	return resp
}

func (h *Handler) handleSQSMessage(ctx context.Context, record events.SQSMessage) error {
	body := []byte(record.Body)

	if isTestEvent(body) {
		return nil
	}

	var s3Event events.S3Event
	if err := json.Unmarshal(body, &s3Event); err != nil {
		return fmt.Errorf("lambda - handleSQSMessage - json.Unmarshal: %w: %w", errs.ErrMalformedEvent, err)
	}

	if len(s3Event.Records) == 0 {
		return fmt.Errorf("lambda - handleSQSMessage: %w: no records", errs.ErrMalformedEvent)
	}

	return h.HandleS3Event(ctx, s3Event)
}

func (h *Handler) label(ctx context.Context, ref entity.ObjectRef) error {
	res, err := h.lbl.Label(ctx, ref)
	if err != nil {
		h.logger.Error(err, "lambda - label - key=%s", ref.Key)

		return fmt.Errorf("lambda - label - h.lbl.Label: %w", err)
	}

	h.logger.Info("lambda - label - imageId=%s status=%s tags=%d", res.ImageID, res.Status, len(res.Tags))

	return nil
}

func isTestEvent(body []byte) bool {
	var test s3TestEvent
	if err := json.Unmarshal(body, &test); err != nil {
		return false
	}

	return test.Event == notification.TestEventName
}
