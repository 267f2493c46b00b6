package consumer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	_defaultConnAttempts = 10
	_defaultConnTimeout  = time.Second
	_defaultMaxWait      = time.Second
)

type Consumer struct {
	connAttempts int
	connTimeout  time.Duration
	startOffset  int64
	maxWait      time.Duration

	brokers []string
	groupID string
	topic   string

	Reader *kafka.Reader
}

func New(ctx context.Context, brokers []string, groupID, topic string, opts ...Option) (*Consumer, error) {
	if len(brokers) == 0 {
		return nil, errors.New("Kafka Consumer - New - no brokers")
	}

	c := &Consumer{
		connAttempts: _defaultConnAttempts,
		connTimeout:  _defaultConnTimeout,
		startOffset:  kafka.FirstOffset,
		maxWait:      _defaultMaxWait,
		brokers:      brokers,
		groupID:      groupID,
		topic:        topic,
	}

	for _, opt := range opts {
		opt(c)
	}

	var err error

	for c.connAttempts > 0 {
		err = c.ping(ctx)
		if err == nil {
			break
		}

		log.Printf("Kafka consumer is trying to connect, attempts left: %d", c.connAttempts)

		time.Sleep(c.connTimeout)

		c.connAttempts--
	}

	if err != nil {
		return nil, fmt.Errorf("Kafka Consumer - New - connAttempts == 0: %w", err)
	}

	// notifications are small JSON documents, no point batching them up
	c.Reader = kafka.NewReader(kafka.ReaderConfig{
		Brokers:     c.brokers,
		GroupID:     c.groupID,
		Topic:       c.topic,
		StartOffset: c.startOffset,
		MinBytes:    1,
		MaxBytes:    1e6,
		MaxWait:     c.maxWait,
	})

	return c, nil
}

// ping succeeds as soon as one broker answers.
func (c *Consumer) ping(ctx context.Context) error {
	var errList []error

	for _, broker := range c.brokers {
		conn, err := kafka.DialContext(ctx, "tcp", broker)
		if err != nil {
			errList = append(errList, fmt.Errorf("Kafka Consumer - kafka.DialContext %s: %w", broker, err))

			continue
		}

		_, err = conn.Brokers()
		conn.Close()
		if err != nil {
			errList = append(errList, fmt.Errorf("Kafka Consumer - conn.Brokers %s: %w", broker, err))

			continue
		}

		return nil
	}

	return errors.Join(errList...)
}

func (c *Consumer) Close() error {
	if c.Reader != nil {
		return c.Reader.Close()
	}
	return nil
}
