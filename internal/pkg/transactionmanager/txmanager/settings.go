package txmanager

import "time"

// Settings are passed to the transaction factory on every Do call. nil is allowed.
type Settings interface {
	// Timeout bounds the whole transaction, zero means no limit
	Timeout() time.Duration
}

type settings struct {
	timeout time.Duration
}

func (s *settings) Timeout() time.Duration {
	return s.timeout
}

type Option func(s *settings)

func WithTimeout(timeout time.Duration) Option {
	return func(s *settings) {
		s.timeout = timeout
	}
}

func NewSettings(opts ...Option) Settings {
	s := &settings{}

	for _, opt := range opts {
		opt(s)
	}

	return s
}
