package queue

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/button-presser/internal/domain/actuator"
)

// TestQueue_FIFO checks single-sender ordering and Len bookkeeping.
func TestQueue_FIFO(t *testing.T) {
	t.Parallel()

	q := New()

	for i := range 5 {
		require.NoError(t, q.Send(fmt.Sprint(i)))
	}

	require.Equal(t, 5, q.Len())

	for i := range 5 {
		trigger, err := q.Receive(context.Background())
		require.NoError(t, err)
		require.Equal(t, fmt.Sprint(i), trigger.Source)
		require.False(t, trigger.EnqueuedAt.IsZero())
	}

	require.Zero(t, q.Len())
}

// TestQueue_ReceiveWaits verifies Receive suspends until a trigger arrives.
func TestQueue_ReceiveWaits(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		q := New()
		got := make(chan domain.Trigger, 1)

		go func() {
			trigger, err := q.Receive(context.Background())
			if err == nil {
				got <- trigger
			}
		}()

		synctest.Wait()
		require.Empty(t, got)

		time.Sleep(time.Second)
		require.NoError(t, q.Send("http"))

		synctest.Wait()

		trigger := <-got
		require.Equal(t, "http", trigger.Source)
	})
}

// TestQueue_CloseDrains ensures accepted triggers survive Close and later sends fail.
func TestQueue_CloseDrains(t *testing.T) {
	t.Parallel()

	q := New()
	require.NoError(t, q.Send("a"))
	require.NoError(t, q.Send("b"))

	q.Close()

	require.ErrorIs(t, q.Send("c"), domain.ErrChannelClosed)

	for _, want := range []string{"a", "b"} {
		trigger, err := q.Receive(context.Background())
		require.NoError(t, err)
		require.Equal(t, want, trigger.Source)
	}

	_, err := q.Receive(context.Background())
	require.ErrorIs(t, err, domain.ErrChannelClosed)
}

// TestQueue_CloseWakesReceiver checks a blocked receiver returns on Close.
func TestQueue_CloseWakesReceiver(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		q := New()
		done := make(chan error, 1)

		go func() {
			_, err := q.Receive(context.Background())
			done <- err
		}()

		synctest.Wait()
		q.Close()

		require.ErrorIs(t, <-done, domain.ErrChannelClosed)
	})
}

// TestQueue_ReceiveContextCanceled returns the context error when nothing arrives.
func TestQueue_ReceiveContextCanceled(t *testing.T) {
	t.Parallel()

	q := New()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := q.Receive(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

// TestQueue_ConcurrentSenders checks nothing is dropped and per-sender order holds.
func TestQueue_ConcurrentSenders(t *testing.T) {
	t.Parallel()

	const (
		senders   = 8
		perSender = 200
	)

	q := New()

	var wg sync.WaitGroup

	for s := range senders {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for i := range perSender {
				if err := q.Send(fmt.Sprintf("%d:%d", s, i)); err != nil {
					t.Errorf("send: %v", err)
				}
			}
		}()
	}

	wg.Wait()

	next := make(map[int]int, senders)

	for range senders * perSender {
		trigger, err := q.Receive(context.Background())
		require.NoError(t, err)

		var s, i int

		_, err = fmt.Sscanf(trigger.Source, "%d:%d", &s, &i)
		require.NoError(t, err)
		require.Equal(t, next[s], i, "sender %d reordered", s)

		next[s]++
	}

	require.Zero(t, q.Len())
}

// TestQueue_CanceledContextWinsOverPending keeps pending triggers when the consumer stops.
func TestQueue_CanceledContextWinsOverPending(t *testing.T) {
	t.Parallel()

	q := New()
	require.NoError(t, q.Send("a"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := q.Receive(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, q.Len())
}
