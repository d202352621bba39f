package shutdown

import (
	"context"
	"io"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Shutdownable is anything that releases its resources on Shutdown.
type Shutdownable interface {
	Shutdown(ctx context.Context) error
}

type Func func(ctx context.Context) error

func (f Func) Shutdown(ctx context.Context) error {
	return f(ctx)
}

func FromCloser(c io.Closer) Shutdownable {
	return Func(func(context.Context) error {
		return c.Close()
	})
}

// FromStopper wraps types like the gRPC server or the ttl cache that stop without an error.
func FromStopper(stop func()) Shutdownable {
	return Func(func(context.Context) error {
		stop()

		return nil
	})
}

type Shutdowner struct {
	mx         sync.Mutex
	toShutdown []Shutdownable
}

func NewShutdowner(toShutdown ...Shutdownable) *Shutdowner {
	return &Shutdowner{toShutdown: toShutdown}
}

// Add registers more resources to release.
func (s *Shutdowner) Add(toShutdown ...Shutdownable) {
	s.mx.Lock()
	defer s.mx.Unlock()

	s.toShutdown = append(s.toShutdown, toShutdown...)
}

// Shutdown releases every registered resource concurrently and returns the first error.
func (s *Shutdowner) Shutdown(ctx context.Context) error {
	s.mx.Lock()
	toShutdown := s.toShutdown
	s.toShutdown = nil
	s.mx.Unlock()

	groupErr := errgroup.Group{}

	for _, c := range toShutdown {
		groupErr.Go(func() error {
			return c.Shutdown(ctx)
		})
	}

	return groupErr.Wait()
}
