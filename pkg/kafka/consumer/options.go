package consumer

import "time"

type Option func(*Consumer)

func ConnAttempts(attempts int) Option {
	return func(c *Consumer) {
		c.connAttempts = attempts
	}
}

func ConnTimeout(timeout time.Duration) Option {
	return func(c *Consumer) {
		c.connTimeout = timeout
	}
}

// StartOffset applies to groups without a committed offset: kafka.FirstOffset or kafka.LastOffset.
func StartOffset(offset int64) Option {
	return func(c *Consumer) {
		c.startOffset = offset
	}
}

// MaxWait bounds how long a fetch waits for new notifications.
func MaxWait(d time.Duration) Option {
	return func(c *Consumer) {
		c.maxWait = d
	}
}
