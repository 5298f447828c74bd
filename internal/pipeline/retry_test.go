package pipeline

import (
	"context"
	stdliberrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errFlaky = stdliberrors.New("flaky")

func TestRetry_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	var notified []int
	v, err := RetryWithData(context.Background(), FixedInterval("test", 3, time.Millisecond), func(ctx context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, errFlaky
		}
		return calls, nil
	}, func(err error, attempt int, next time.Duration) {
		notified = append(notified, attempt)
		assert.ErrorIs(t, err, errFlaky)
		assert.Equal(t, time.Millisecond, next)
	})

	require.NoError(t, err)
	assert.Equal(t, 3, v)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, notified)
}

func TestRetry_ExhaustsFixedAttempts(t *testing.T) {
	calls := 0
	_, err := RetryWithData(context.Background(), FixedInterval("test", 3, time.Millisecond), func(ctx context.Context) (int, error) {
		calls++
		return 0, errFlaky
	}, nil)

	assert.ErrorIs(t, err, errFlaky)
	assert.Equal(t, 3, calls)
}

func TestRetry_NonRetryableStopsImmediately(t *testing.T) {
	fatal := stdliberrors.New("fatal")
	p := FixedInterval("test", 5, time.Millisecond)
	p.Retryable = func(err error) bool { return !stdliberrors.Is(err, fatal) }

	calls := 0
	_, err := RetryWithData(context.Background(), p, func(ctx context.Context) (int, error) {
		calls++
		return 0, fatal
	}, nil)

	assert.Equal(t, fatal, err)
	assert.Equal(t, 1, calls)
}

func TestRetry_UnboundedEventuallySucceeds(t *testing.T) {
	p := UnboundedExponential("listing", time.Millisecond, 4*time.Millisecond, 2)
	require.True(t, p.Unbounded())

	calls := 0
	var delays []time.Duration
	v, err := RetryWithData(context.Background(), p, func(ctx context.Context) (string, error) {
		calls++
		if calls <= 5 {
			return "", errFlaky
		}
		return "page", nil
	}, func(_ error, _ int, next time.Duration) {
		delays = append(delays, next)
	})

	require.NoError(t, err)
	assert.Equal(t, "page", v)
	assert.Equal(t, 6, calls)
	assert.Equal(t, []time.Duration{
		time.Millisecond, 2 * time.Millisecond, 4 * time.Millisecond, 4 * time.Millisecond, 4 * time.Millisecond,
	}, delays)
}

func TestRetry_UnboundedStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := UnboundedExponential("listing", time.Millisecond, time.Millisecond, 1)

	var mu sync.Mutex
	calls := 0
	_, err := RetryWithData(ctx, p, func(ctx context.Context) (int, error) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls == 4 {
			cancel()
		}
		return 0, errFlaky
	}, nil)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 4, calls)
}

func TestRetry_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	_, err := RetryWithData(ctx, FixedInterval("test", 3, time.Millisecond), func(ctx context.Context) (int, error) {
		called = true
		return 1, nil
	}, nil)

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestThrottle_SpacesCalls(t *testing.T) {
	th := NewThrottle(20 * time.Millisecond)
	assert.Equal(t, 20*time.Millisecond, th.Interval())

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, th.Wait(context.Background()))
	}
	assert.GreaterOrEqual(t, time.Since(start), 35*time.Millisecond)
}

func TestThrottle_DisabledDoesNotBlock(t *testing.T) {
	th := NewThrottle(0)
	start := time.Now()
	for i := 0; i < 100; i++ {
		require.NoError(t, th.Wait(context.Background()))
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestThrottle_HonoursContext(t *testing.T) {
	th := NewThrottle(time.Hour)
	require.NoError(t, th.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, th.Wait(ctx))
}

//Personal.AI order the ending
