package tagclient

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/andreyxaxa/Image-Tagger/pkg/types/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))

	return buf.Bytes()
}

type recorder struct {
	mu     sync.Mutex
	states []State
}

func (r *recorder) record(tr Transition) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.states = append(r.states, tr.To)
}

func (r *recorder) get() []State {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]State(nil), r.states...)
}

func newTestTracker(f *fakeAPI, rec *recorder, opts ...TrackerOption) *Tracker {
	opts = append([]TrackerOption{
		PollInterval(5 * time.Millisecond),
		ResetDelay(20 * time.Millisecond),
		OnTransition(rec.record),
	}, opts...)

	return NewTracker(New(f.URL, RetryCount(0)), opts...)
}

func TestTracker_Completed(t *testing.T) {
	f := newFakeAPI(t)
	f.pendingPolls = 2
	rec := &recorder{}
	tr := newTestTracker(f, rec)

	img, err := tr.UploadFile(context.Background(), "beach.png", pngBytes(t))

	require.NoError(t, err)
	assert.Equal(t, []string{"beach", "sunset"}, img.Tags)
	assert.EqualValues(t, 3, f.polls.Load())
	assert.Equal(t, Completed, tr.State())

	f.mu.Lock()
	assert.Equal(t, "image/png", f.contentType)
	f.mu.Unlock()

	assert.Eventually(t, func() bool { return tr.State() == Idle }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []State{Uploading, Polling, Completed, Idle}, rec.get())
}

func TestTracker_LabelingFailed(t *testing.T) {
	f := newFakeAPI(t)
	f.finalStatus = StatusFailed
	rec := &recorder{}
	tr := newTestTracker(f, rec)

	_, err := tr.UploadFile(context.Background(), "x.png", pngBytes(t))

	require.ErrorIs(t, err, ErrLabelingFailed)
	assert.Contains(t, err.Error(), "InvalidImageFormatException")
	assert.Equal(t, Failed, tr.State())
	assert.Eventually(t, func() bool { return tr.State() == Idle }, time.Second, 5*time.Millisecond)
}

func TestTracker_MaxPollAttempts(t *testing.T) {
	f := newFakeAPI(t)
	f.pendingPolls = 1000
	rec := &recorder{}
	tr := newTestTracker(f, rec, MaxPollAttempts(3))

	_, err := tr.UploadFile(context.Background(), "x.png", pngBytes(t))

	require.ErrorIs(t, err, ErrPollTimeout)
	assert.EqualValues(t, 3, f.polls.Load())
	assert.Equal(t, []State{Uploading, Polling, Failed}, rec.get()[:3])
}

func TestTracker_PollTimeout(t *testing.T) {
	f := newFakeAPI(t)
	f.pendingPolls = 1000
	tr := newTestTracker(f, &recorder{}, PollTimeout(30*time.Millisecond))

	_, err := tr.UploadFile(context.Background(), "x.png", pngBytes(t))

	require.ErrorIs(t, err, ErrPollTimeout)
}

func TestTracker_CallerCancel(t *testing.T) {
	f := newFakeAPI(t)
	f.pendingPolls = 1000
	tr := newTestTracker(f, &recorder{})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := tr.UploadFile(ctx, "x.png", pngBytes(t))

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPollTimeout)
	assert.Equal(t, Failed, tr.State())
}

func TestTracker_ValidationKeepsIdle(t *testing.T) {
	f := newFakeAPI(t)
	rec := &recorder{}
	tr := newTestTracker(f, rec, MaxFileSize(64))

	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "not an image", data: []byte("hello, plain text")},
		{name: "too large", data: append(pngBytes(t), make([]byte, 64)...)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tr.UploadFile(context.Background(), "x.png", tt.data)

			require.ErrorIs(t, err, errs.ErrValidation)
			assert.Equal(t, Idle, tr.State())
		})
	}

	assert.Empty(t, rec.get())
}

func TestTracker_Busy(t *testing.T) {
	f := newFakeAPI(t)
	f.pendingPolls = 1000
	tr := newTestTracker(f, &recorder{}, PollInterval(50*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = tr.UploadFile(ctx, "x.png", pngBytes(t))
	}()

	require.Eventually(t, func() bool { return tr.State() == Polling }, time.Second, time.Millisecond)

	_, err := tr.UploadFile(context.Background(), "y.png", pngBytes(t))
	require.ErrorIs(t, err, ErrBusy)

	cancel()
	<-done
}

func TestTracker_UploadRejected(t *testing.T) {
	f := newFakeAPI(t)
	tr := newTestTracker(f, &recorder{})

	_, err := tr.UploadFile(context.Background(), "", pngBytes(t))

	require.ErrorIs(t, err, errs.ErrValidation)
	assert.Equal(t, Failed, tr.State())
}
