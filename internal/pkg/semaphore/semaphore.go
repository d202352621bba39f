package semaphore

import "context"

// Semaphore bounds the number of goroutines doing some work at once.
type Semaphore struct {
	c chan struct{}
}

func New(n int64) *Semaphore {
	return &Semaphore{
		c: make(chan struct{}, n),
	}
}

// Acquire blocks until a slot is free. It returns false when ctx is done first.
func (s *Semaphore) Acquire(ctx context.Context) bool {
	select {
	case s.c <- struct{}{}:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *Semaphore) Release() {
	<-s.c
}
