package semaphore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSemaphore_Acquire_Release(t *testing.T) {
	s := New(1)
	require.NoError(t, s.Acquire(context.Background()))
	assert.Equal(t, 1, s.InUse())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.Acquire(ctx), ErrAcquireTimeout)

	s.Release()
	assert.Equal(t, 0, s.InUse())
	require.NoError(t, s.Acquire(context.Background()))
}

func TestSemaphore_Acquire_context(t *testing.T) {
	s := New(2)
	require.NoError(t, s.Acquire(context.Background()))
	require.NoError(t, s.Acquire(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := s.Acquire(ctx)
	assert.ErrorIs(t, err, ErrAcquireTimeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	canceled, cancelNow := context.WithCancel(context.Background())
	cancelNow()
	err = s.Acquire(canceled)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSemaphore_Acquire_waits_for_release(t *testing.T) {
	s := New(1)
	require.NoError(t, s.Acquire(context.Background()))

	go func() {
		time.Sleep(10 * time.Millisecond)
		s.Release()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Acquire(ctx))
	assert.Equal(t, 1, s.InUse())
}

func TestSemaphore_zero_capacity(t *testing.T) {
	s := New(0)
	require.NoError(t, s.Acquire(context.Background()))
	s.Release()
}
