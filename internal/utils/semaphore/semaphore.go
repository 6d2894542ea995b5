// Package semaphore caps how many callers hold a slot at once.
package semaphore

import (
	"context"
	"errors"
	"fmt"
)

var ErrAcquireTimeout = errors.New("semaphore acquire timeout exceeded")

type Semaphore struct {
	semaCh chan struct{}
}

func New(maxRequestCount uint64) *Semaphore {
	if maxRequestCount == 0 {
		maxRequestCount = 1
	}
	return &Semaphore{
		semaCh: make(chan struct{}, maxRequestCount),
	}
}

// Acquire blocks until a slot is free or ctx is done.
func (s *Semaphore) Acquire(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrAcquireTimeout, ctx.Err())
	case s.semaCh <- struct{}{}:
		return nil
	}
}

func (s *Semaphore) Release() {
	<-s.semaCh
}

func (s *Semaphore) InUse() int {
	return len(s.semaCh)
}
