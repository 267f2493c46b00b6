package kafka

import (
	"context"
	"fmt"
	"sync"

	"github.com/andreyxaxa/Image-Tagger/pkg/kafka/consumer"
	"github.com/segmentio/kafka-go"
)

// Reader is the part of *kafka.Reader the consumer needs.
type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type partitionKey struct {
	topic     string
	partition int
}

type inflight struct {
	msg  kafka.Message
	done bool
}

// EventConsumer hands out notifications to concurrent workers and commits a
// partition only up to its oldest unfinished message. A message that is never
// finished holds the partition's committed offset in place, so it is read
// again after a restart or rebalance.
type EventConsumer struct {
	reader Reader

	mu      sync.Mutex
	fetched map[partitionKey][]*inflight // fetch order, which is offset order per partition
}

func NewEventConsumer(c *consumer.Consumer) *EventConsumer {
	return newEventConsumer(c.Reader)
}

func newEventConsumer(r Reader) *EventConsumer {
	return &EventConsumer{
		reader:  r,
		fetched: make(map[partitionKey][]*inflight),
	}
}

func (ec *EventConsumer) ReadEvent(ctx context.Context) (kafka.Message, error) {
	msg, err := ec.reader.FetchMessage(ctx)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("EventConsumer - ReadEvent - ec.reader.FetchMessage: %w", err)
	}

	key := partitionKey{msg.Topic, msg.Partition}

	ec.mu.Lock()
	ec.fetched[key] = append(ec.fetched[key], &inflight{msg: msg})
	ec.mu.Unlock()

	return msg, nil
}

// CommitEvent marks event finished. The partition offset moves only over the
// finished prefix, so it never skips a message still being handled or retried.
func (ec *EventConsumer) CommitEvent(ctx context.Context, event kafka.Message) error {
	last, ok := ec.finish(event)
	if !ok {
		return nil
	}

	err := ec.reader.CommitMessages(ctx, last)
	if err != nil {
		return fmt.Errorf("EventConsumer - CommitEvent - ec.reader.CommitMessages: %w", err)
	}

	return nil
}

// finish returns the newest message of the finished prefix, if the prefix grew.
func (ec *EventConsumer) finish(event kafka.Message) (kafka.Message, bool) {
	key := partitionKey{event.Topic, event.Partition}

	ec.mu.Lock()
	defer ec.mu.Unlock()

	queue := ec.fetched[key]
	for _, f := range queue {
		if f.msg.Offset == event.Offset {
			f.done = true
			break
		}
	}

	n := 0
	for n < len(queue) && queue[n].done {
		n++
	}

	if n == 0 {
		return kafka.Message{}, false
	}

	last := queue[n-1].msg
	ec.fetched[key] = queue[n:]

	return last, true
}

func (ec *EventConsumer) Close() error {
	err := ec.reader.Close()
	if err != nil {
		return fmt.Errorf("EventConsumer - Close: %w", err)
	}

	return nil
}
