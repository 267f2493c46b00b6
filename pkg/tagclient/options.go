package tagclient

import "time"

type Option func(*Client)

func Timeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// RetryCount retries GET and PUT requests that fail on the transport or with a 5xx.
func RetryCount(count int) Option {
	return func(c *Client) {
		c.retryCount = count
	}
}

type TrackerOption func(*Tracker)

func PollInterval(d time.Duration) TrackerOption {
	return func(t *Tracker) {
		t.pollInterval = d
	}
}

func MaxPollAttempts(n int) TrackerOption {
	return func(t *Tracker) {
		t.maxPollAttempts = n
	}
}

func PollTimeout(d time.Duration) TrackerOption {
	return func(t *Tracker) {
		t.pollTimeout = d
	}
}

// ResetDelay is how long a finished upload stays visible before the tracker goes back to Idle.
func ResetDelay(d time.Duration) TrackerOption {
	return func(t *Tracker) {
		t.resetDelay = d
	}
}

func MaxFileSize(size int) TrackerOption {
	return func(t *Tracker) {
		t.maxFileSize = size
	}
}

// OnTransition registers a listener called synchronously on every state change.
func OnTransition(fn func(Transition)) TrackerOption {
	return func(t *Tracker) {
		t.listeners = append(t.listeners, fn)
	}
}
