package kafka

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/andreyxaxa/Image-Tagger/internal/infrastructure"
	"github.com/andreyxaxa/Image-Tagger/internal/usecase"
	"github.com/andreyxaxa/Image-Tagger/pkg/logger"
	"github.com/andreyxaxa/Image-Tagger/pkg/types/errs"
	"github.com/segmentio/kafka-go"
)

const _maxRetryBackoff = 30 * time.Second

var errPanic = errors.New("panic while handling notification")

// KafkaController labels images announced by bucket notifications.
type KafkaController struct {
	lbl    usecase.LabelerUseCase
	ec     infrastructure.EventConsumer
	logger logger.Interface

	commitTimeout  time.Duration
	processTimeout time.Duration
	retryBackoff   time.Duration

	workers int
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	started atomic.Bool
}

func New(
	lbl usecase.LabelerUseCase,
	ec infrastructure.EventConsumer,
	l logger.Interface,
	commitTimeout time.Duration,
	processTimeout time.Duration,
	retryBackoff time.Duration,
	workers int,
) *KafkaController {
	if workers < 1 {
		workers = 1
	}
	if retryBackoff <= 0 {
		retryBackoff = time.Second
	}

	return &KafkaController{
		lbl:            lbl,
		ec:             ec,
		logger:         l,
		commitTimeout:  commitTimeout,
		processTimeout: processTimeout,
		retryBackoff:   retryBackoff,
		workers:        workers,
	}
}

func (c *KafkaController) Start(ctx context.Context) error {
	if !c.started.CompareAndSwap(false, true) {
		return fmt.Errorf("KafkaController - Start - controller already started")
	}

	c.ctx, c.cancel = context.WithCancel(ctx)

	tasks := make(chan kafka.Message, c.workers*2)

	for i := 0; i < c.workers; i++ {
		c.wg.Add(1)
		go c.worker(tasks)
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer close(tasks)

		for {
			select {
			case <-c.ctx.Done():
				return
			default:
				event, err := c.ec.ReadEvent(c.ctx)
				if err != nil {
					if !errors.Is(err, context.Canceled) {
						c.logger.Error(err, "KafkaController - Start - c.ec.ReadEvent")
					}
					continue
				}

				select {
				case tasks <- event:
				case <-c.ctx.Done():
					return
				}
			}
		}
	}()

	return nil
}

// handle labels every object in the notification. The first failure stops the batch.
func (c *KafkaController) handle(ctx context.Context, event kafka.Message) error {
	refs, err := decodeNotification(event.Value)
	if err != nil {
		return fmt.Errorf("KafkaController - handle - decodeNotification: %w", err)
	}

	for _, ref := range refs {
		res, err := c.lbl.Label(ctx, ref)
		if err != nil {
			return fmt.Errorf("KafkaController - handle - c.lbl.Label %s: %w", ref.Key, err)
		}

		c.logger.Info("KafkaController - handle - imageId=%s status=%s tags=%d", res.ImageID, res.Status, len(res.Tags))
	}

	return nil
}

func (c *KafkaController) worker(tasks <-chan kafka.Message) {
	defer c.wg.Done()

	for event := range tasks {
		if !c.process(event) {
			continue
		}

		commitCtx, commitCancel := context.WithTimeout(c.ctx, c.commitTimeout)
		err := c.ec.CommitEvent(commitCtx, event)
		commitCancel()
		if err != nil {
			c.logger.Error(err, "KafkaController - worker - c.ec.CommitEvent")
		}
	}
}

// process handles event until it succeeds or fails for good, and reports
// whether it may be committed. Transient failures are retried with backoff;
// shutdown leaves the event uncommitted so it is read again.
func (c *KafkaController) process(event kafka.Message) bool {
	backoff := c.retryBackoff

	for attempt := 1; ; attempt++ {
		processCtx, processCancel := context.WithTimeout(c.ctx, c.processTimeout)
		err := c.safeHandle(processCtx, event)
		processCancel()

		if err == nil {
			return true
		}

		// redelivery cannot fix a malformed notification or a failed labeling
		// call, the record already says FAILED in the latter case
		if !retryable(err) {
			c.logger.Error(err, "KafkaController - process - c.handle, partition=%d offset=%d", event.Partition, event.Offset)

			return true
		}

		c.logger.Warn("KafkaController - process - attempt %d failed, retrying in %s, partition=%d offset=%d: %v",
			attempt, backoff, event.Partition, event.Offset, err)

		select {
		case <-c.ctx.Done():
			return false
		case <-time.After(backoff):
		}

		backoff = min(backoff*2, _maxRetryBackoff)
	}
}

func (c *KafkaController) safeHandle(ctx context.Context, event kafka.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errPanic, r)
		}
	}()

	return c.handle(ctx, event)
}

func retryable(err error) bool {
	return !errors.Is(err, errs.ErrMalformedEvent) &&
		!errors.Is(err, errs.ErrLabelingService) &&
		!errors.Is(err, errPanic)
}

func (c *KafkaController) Shutdown(ctx context.Context) error {
	if !c.started.Load() {
		return nil
	}

	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})

	go func() {
		c.wg.Wait()
		if err := c.ec.Close(); err != nil {
			c.logger.Error(err, "KafkaController - Shutdown - c.ec.Close")
		}
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("KafkaController - Shutdown: %w", ctx.Err())
	}
}
