package tagclient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/andreyxaxa/Image-Tagger/pkg/types/errs"
	"github.com/gabriel-vasile/mimetype"
)

const (
	_defaultPollInterval    = 3 * time.Second
	_defaultMaxPollAttempts = 100
	_defaultPollTimeout     = 5 * time.Minute
	_defaultResetDelay      = 2 * time.Second
	_defaultMaxFileSize     = 10 * 1024 * 1024
)

// AllowedFileTypes must stay in line with what the API accepts.
var AllowedFileTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

type State int

const (
	Idle State = iota
	Uploading
	Polling
	Completed
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Uploading:
		return "uploading"
	case Polling:
		return "polling"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	}

	return fmt.Sprintf("State(%d)", int(s))
}

type Transition struct {
	From, To State
	ImageID  string
	Image    *Image // set on Completed
	Err      error  // set on Failed
}

// API is the part of Client the tracker drives.
type API interface {
	RequestUpload(ctx context.Context, fileName, fileType string) (*UploadTicket, error)
	Upload(ctx context.Context, presignedURL, contentType string, data []byte) error
	GetStatus(ctx context.Context, imageID string) (*Image, error)
}

// Tracker runs one upload at a time through Idle, Uploading, Polling and
// Completed or Failed, and goes back to Idle after ResetDelay.
type Tracker struct {
	api API

	pollInterval    time.Duration
	maxPollAttempts int
	pollTimeout     time.Duration
	resetDelay      time.Duration
	maxFileSize     int
	listeners       []func(Transition)

	mu         sync.Mutex
	state      State
	resetTimer *time.Timer
}

func NewTracker(api API, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		api:             api,
		pollInterval:    _defaultPollInterval,
		maxPollAttempts: _defaultMaxPollAttempts,
		pollTimeout:     _defaultPollTimeout,
		resetDelay:      _defaultResetDelay,
		maxFileSize:     _defaultMaxFileSize,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.state
}

// UploadFile validates data, uploads it and waits for labels.
// The returned image is COMPLETED. Validation failures leave the tracker Idle.
func (t *Tracker) UploadFile(ctx context.Context, fileName string, data []byte) (*Image, error) {
	fileType, err := t.validate(data)
	if err != nil {
		return nil, fmt.Errorf("Tracker - UploadFile - t.validate: %w", err)
	}

	if !t.begin() {
		return nil, fmt.Errorf("Tracker - UploadFile: %w", ErrBusy)
	}

	// 1. presigned url
	ticket, err := t.api.RequestUpload(ctx, fileName, fileType)
	if err != nil {
		return nil, t.fail("", fmt.Errorf("Tracker - UploadFile - t.api.RequestUpload: %w", err))
	}

	// 2. bytes straight to storage
	err = t.api.Upload(ctx, ticket.PresignedURL, fileType, data)
	if err != nil {
		return nil, t.fail(ticket.ImageID, fmt.Errorf("Tracker - UploadFile - t.api.Upload: %w", err))
	}

	t.transition(Transition{From: Uploading, To: Polling, ImageID: ticket.ImageID})

	// 3. wait for the labeler
	image, err := t.poll(ctx, ticket.ImageID)
	if err != nil {
		return nil, t.fail(ticket.ImageID, fmt.Errorf("Tracker - UploadFile - t.poll: %w", err))
	}

	t.finish(Transition{From: Polling, To: Completed, ImageID: ticket.ImageID, Image: image})

	return image, nil
}

func (t *Tracker) validate(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: file is empty", errs.ErrValidation)
	}

	if len(data) > t.maxFileSize {
		return "", fmt.Errorf("%w: file exceeds %d bytes", errs.ErrValidation, t.maxFileSize)
	}

	mt := mimetype.Detect(data)
	if !mimetype.EqualsAny(mt.String(), AllowedFileTypes...) {
		return "", fmt.Errorf("%w: file type %s is not one of %s", errs.ErrValidation, mt.String(), strings.Join(AllowedFileTypes, ", "))
	}

	return mt.String(), nil
}

// poll fetches the status every pollInterval until a terminal status,
// maxPollAttempts fetches or pollTimeout, whichever comes first.
func (t *Tracker) poll(ctx context.Context, imageID string) (*Image, error) {
	pollCtx, cancel := context.WithTimeout(ctx, t.pollTimeout)
	defer cancel()

	ticker := time.NewTicker(t.pollInterval)
	defer ticker.Stop()

	for attempt := 1; attempt <= t.maxPollAttempts; attempt++ {
		select {
		case <-pollCtx.Done():
			if ctx.Err() == nil && errors.Is(pollCtx.Err(), context.DeadlineExceeded) {
				return nil, ErrPollTimeout
			}

			return nil, ctx.Err()
		case <-ticker.C:
		}

		image, err := t.api.GetStatus(pollCtx, imageID)
		if err != nil {
			return nil, fmt.Errorf("attempt %d: %w", attempt, err)
		}

		switch image.Status {
		case StatusCompleted:
			return image, nil
		case StatusFailed:
			reason := image.FailureReason
			if reason == "" {
				reason = "no reason given"
			}

			return nil, fmt.Errorf("%w: %s", ErrLabelingFailed, reason)
		}
	}

	return nil, ErrPollTimeout
}

// begin claims the tracker, the check and the move to Uploading happen under one lock.
func (t *Tracker) begin() bool {
	t.mu.Lock()
	if t.state != Idle {
		t.mu.Unlock()

		return false
	}
	t.state = Uploading
	listeners := t.listeners
	t.mu.Unlock()

	notify(listeners, Transition{From: Idle, To: Uploading})

	return true
}

func (t *Tracker) fail(imageID string, err error) error {
	t.finish(Transition{From: t.State(), To: Failed, ImageID: imageID, Err: err})

	return err
}

// finish moves to a terminal state and schedules the reset to Idle.
func (t *Tracker) finish(tr Transition) {
	t.transition(tr)

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.resetTimer != nil {
		t.resetTimer.Stop()
	}

	t.resetTimer = time.AfterFunc(t.resetDelay, func() {
		t.transition(Transition{From: tr.To, To: Idle, ImageID: tr.ImageID})
	})
}

func (t *Tracker) transition(tr Transition) {
	t.mu.Lock()
	t.state = tr.To
	listeners := t.listeners
	t.mu.Unlock()

	notify(listeners, tr)
}

func notify(listeners []func(Transition), tr Transition) {
	for _, fn := range listeners {
		fn(tr)
	}
}
