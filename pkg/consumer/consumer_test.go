package consumer

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/krancour/dqueue/pkg/queue"
	"github.com/krancour/dqueue/pkg/queue/memory"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

// syncBuffer is a bytes.Buffer that is safe for concurrent writers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return strings.Split(strings.TrimSpace(s.buf.String()), "\n")
}

// recordingObserver remembers everything it's told.
type recordingObserver struct {
	mu      sync.Mutex
	started int
	items   []int
	states  []State
	stopErr error
	stopped int
}

func (r *recordingObserver) ConsumerStarted(string, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started++
}

func (r *recordingObserver) ItemConsumed(_, _ string, item int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, item)
}

func (r *recordingObserver) StateChanged(_, _ string, state State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, state)
}

func (r *recordingObserver) ConsumerStopped(_, _ string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped++
	r.stopErr = err
}

// flakyQueue wraps a queue and fails a configurable number of pushes.
type flakyQueue struct {
	queue.Queue
	failPushes int
	pushes     int
}

func (f *flakyQueue) Push(ctx context.Context, item int) error {
	f.pushes++
	if f.pushes <= f.failPushes {
		return &queue.ErrQueueUnavailable{
			Queue: f.Name(),
			Cause: errors.New("connection reset"),
		}
	}
	return f.Queue.Push(ctx, item)
}

// brokenQueue fails every pop.
type brokenQueue struct {
	queue.Queue
}

func (b *brokenQueue) Pop(context.Context) (int, error) {
	return 0, &queue.ErrQueueUnavailable{
		Queue: b.Name(),
		Cause: errors.New("connection refused"),
	}
}

func zeroDelay() *time.Duration {
	var d time.Duration
	return &d
}

func fillQueue(t *testing.T, q queue.Queue, items ...int) {
	for _, item := range items {
		require.NoError(t, q.Push(context.Background(), item))
	}
}

func peekAll(t *testing.T, q memory.Queue) []int {
	items, err := q.Peek(context.Background(), -1)
	require.NoError(t, err)
	return items
}

func TestOptionsApplyDefaults(t *testing.T) {
	negative := -time.Second
	tooLong := 2 * time.Hour
	var zeroAttempts uint8
	var tooManyAttempts uint8 = 50
	testCases := []struct {
		name       string
		options    Options
		assertions func(t *testing.T, options Options)
	}{
		{
			name: "all defaults",
			assertions: func(t *testing.T, options Options) {
				require.Equal(t, 5*time.Second, *options.ProcessingDelay)
				require.Equal(t, uint8(3), *options.RepushMaxAttempts)
				require.Equal(t, 10*time.Second, *options.RepushMaxBackoff)
				require.NotNil(t, options.Output)
				require.NotNil(t, options.Observer)
			},
		},
		{
			name: "below min",
			options: Options{
				ProcessingDelay:   &negative,
				RepushMaxAttempts: &zeroAttempts,
				RepushMaxBackoff:  &negative,
			},
			assertions: func(t *testing.T, options Options) {
				require.Equal(t, time.Duration(0), *options.ProcessingDelay)
				require.Equal(t, uint8(1), *options.RepushMaxAttempts)
				require.Equal(t, time.Second, *options.RepushMaxBackoff)
			},
		},
		{
			name: "above max",
			options: Options{
				ProcessingDelay:   &tooLong,
				RepushMaxAttempts: &tooManyAttempts,
				RepushMaxBackoff:  &tooLong,
			},
			assertions: func(t *testing.T, options Options) {
				require.Equal(t, time.Hour, *options.ProcessingDelay)
				require.Equal(t, uint8(10), *options.RepushMaxAttempts)
				require.Equal(t, time.Minute, *options.RepushMaxBackoff)
			},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			testCase.options.applyDefaults()
			testCase.assertions(t, testCase.options)
		})
	}
}

func TestRun(t *testing.T) {
	testCases := []struct {
		name       string
		items      []int
		assertions func(
			t *testing.T,
			output []string,
			remaining []int,
			c Consumer,
			observer *recordingObserver,
			err error,
		)
	}{
		{
			name:  "items then sentinel",
			items: []int{1, 2, 3, queue.Sentinel},
			assertions: func(
				t *testing.T,
				output []string,
				remaining []int,
				c Consumer,
				observer *recordingObserver,
				err error,
			) {
				require.NoError(t, err)
				require.Equal(
					t,
					[]string{
						"Consumed: 1",
						"Consumed: 2",
						"Consumed: 3",
						"Consumed: -1",
						"Consumer Finished!",
					},
					output,
				)
				// The sentinel was re-pushed exactly once
				require.Equal(t, []int{queue.Sentinel}, remaining)
				require.Equal(t, uint64(3), c.Consumed())
				require.Equal(t, StateDone, c.State())
				require.Equal(t, []int{1, 2, 3}, observer.items)
				require.Equal(
					t,
					[]State{StateRunning, StateShuttingDown, StateDone},
					observer.states,
				)
				require.Equal(t, 1, observer.started)
				require.Equal(t, 1, observer.stopped)
				require.NoError(t, observer.stopErr)
			},
		},
		{
			name:  "sentinel only",
			items: []int{queue.Sentinel},
			assertions: func(
				t *testing.T,
				output []string,
				remaining []int,
				c Consumer,
				_ *recordingObserver,
				err error,
			) {
				require.NoError(t, err)
				require.Equal(
					t,
					[]string{"Consumed: -1", "Consumer Finished!"},
					output,
				)
				require.Equal(t, []int{queue.Sentinel}, remaining)
				require.Zero(t, c.Consumed())
				require.Equal(t, StateDone, c.State())
			},
		},
		{
			name:  "items after sentinel are left alone",
			items: []int{1, queue.Sentinel, 2},
			assertions: func(
				t *testing.T,
				output []string,
				remaining []int,
				c Consumer,
				_ *recordingObserver,
				err error,
			) {
				require.NoError(t, err)
				require.Equal(
					t,
					[]string{"Consumed: 1", "Consumed: -1", "Consumer Finished!"},
					output,
				)
				// The re-pushed sentinel lands at the tail
				require.Equal(t, []int{2, queue.Sentinel}, remaining)
			},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			q := memory.NewQueue("queue")
			fillQueue(t, q, testCase.items...)
			output := &syncBuffer{}
			observer := &recordingObserver{}
			c := NewConsumer(
				q,
				&Options{
					ProcessingDelay: zeroDelay(),
					Output:          output,
					Observer:        observer,
				},
			)
			err := c.Run(context.Background())
			testCase.assertions(
				t,
				output.Lines(),
				peekAll(t, q),
				c,
				observer,
				err,
			)
		})
	}
}

func TestRunIdempotentAgainstSentinel(t *testing.T) {
	q := memory.NewQueue("queue")
	fillQueue(t, q, queue.Sentinel)
	// Each fresh consumer run against a sentinel-only queue shuts down at once
	// and leaves the queue exactly as it found it.
	for i := 0; i < 3; i++ {
		output := &syncBuffer{}
		c := NewConsumer(
			q,
			&Options{ProcessingDelay: zeroDelay(), Output: output},
		)
		require.NoError(t, c.Run(context.Background()))
		require.Equal(
			t,
			[]string{"Consumed: -1", "Consumer Finished!"},
			output.Lines(),
		)
		require.Equal(t, []int{queue.Sentinel}, peekAll(t, q))
	}
}

func TestRunOnlyOnce(t *testing.T) {
	q := memory.NewQueue("queue")
	fillQueue(t, q, queue.Sentinel)
	c := NewConsumer(
		q,
		&Options{ProcessingDelay: zeroDelay(), Output: &syncBuffer{}},
	)
	require.NoError(t, c.Run(context.Background()))
	err := c.Run(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "already been run")
	require.Equal(t, StateDone, c.State())
}

func TestRunParksOnEmptyQueue(t *testing.T) {
	q := memory.NewQueue("queue")
	output := &syncBuffer{}
	c := NewConsumer(
		q,
		&Options{ProcessingDelay: zeroDelay(), Output: output},
	)
	errCh := make(chan error)
	go func() {
		errCh <- c.Run(context.Background())
	}()
	// The consumer should be parked inside Pop, not spinning
	require.Eventually(
		t,
		func() bool { return q.Waiting() == 1 },
		time.Second,
		5*time.Millisecond,
	)
	require.Equal(t, StateRunning, c.State())
	select {
	case err := <-errCh:
		require.Failf(t, "consumer returned early", "error: %v", err)
	case <-time.After(50 * time.Millisecond):
	}
	require.Equal(t, 1, q.Waiting())
	// Another actor pushes; the consumer resumes
	fillQueue(t, q, 7, queue.Sentinel)
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(time.Second):
		require.Fail(t, "timed out waiting for consumer to finish")
	}
	require.Equal(
		t,
		[]string{"Consumed: 7", "Consumed: -1", "Consumer Finished!"},
		output.Lines(),
	)
}

func TestRunPacesItems(t *testing.T) {
	const delay = 40 * time.Millisecond
	q := memory.NewQueue("queue")
	fillQueue(t, q, 1, 2, 3, queue.Sentinel)
	d := delay
	c := NewConsumer(
		q,
		&Options{ProcessingDelay: &d, Output: &syncBuffer{}},
	)
	start := time.Now()
	require.NoError(t, c.Run(context.Background()))
	// A pause follows each of the three real items
	require.True(t, time.Since(start) >= 3*delay-5*time.Millisecond)
}

// stampedWriter records when each line was written.
type stampedWriter struct {
	mu    sync.Mutex
	lines []string
	times []time.Time
}

func (s *stampedWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, strings.TrimSpace(string(p)))
	s.times = append(s.times, time.Now())
	return len(p), nil
}

func TestRunPausesAfterEveryItemFollowingParking(t *testing.T) {
	const delay = 100 * time.Millisecond
	q := memory.NewQueue("queue")
	output := &stampedWriter{}
	d := delay
	c := NewConsumer(q, &Options{ProcessingDelay: &d, Output: output})
	errCh := make(chan error, 1)
	go func() {
		errCh <- c.Run(context.Background())
	}()
	require.Eventually(
		t,
		func() bool { return q.Waiting() == 1 },
		time.Second,
		5*time.Millisecond,
	)
	// Stay parked for well over one delay
	time.Sleep(3 * delay)
	fillQueue(t, q, 1, 2, 3, queue.Sentinel)
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		require.Fail(t, "timed out waiting for consumer to finish")
	}

	output.mu.Lock()
	defer output.mu.Unlock()
	require.Equal(
		t,
		[]string{
			"Consumed: 1",
			"Consumed: 2",
			"Consumed: 3",
			"Consumed: -1",
			"Consumer Finished!",
		},
		output.lines,
	)
	for i := 1; i < 4; i++ {
		gap := output.times[i].Sub(output.times[i-1])
		require.True(
			t,
			gap >= delay-10*time.Millisecond,
			"gap between %q and %q was only %s",
			output.lines[i-1],
			output.lines[i],
			gap,
		)
	}
}

func TestRunHandler(t *testing.T) {
	q := memory.NewQueue("queue")
	fillQueue(t, q, 1, 2, queue.Sentinel)
	var handled []int
	c := NewConsumer(
		q,
		&Options{
			ProcessingDelay: zeroDelay(),
			Output:          &syncBuffer{},
			Handler: func(_ context.Context, item int) error {
				handled = append(handled, item)
				// Handler errors are not fatal
				return errors.New("something went wrong")
			},
		},
	)
	require.NoError(t, c.Run(context.Background()))
	require.Equal(t, []int{1, 2}, handled)
	require.Equal(t, uint64(2), c.Consumed())
}

func TestRunCanceledWhileParked(t *testing.T) {
	q := memory.NewQueue("queue")
	observer := &recordingObserver{}
	c := NewConsumer(
		q,
		&Options{
			ProcessingDelay: zeroDelay(),
			Output:          &syncBuffer{},
			Observer:        observer,
		},
	)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error)
	go func() {
		errCh <- c.Run(ctx)
	}()
	require.Eventually(
		t,
		func() bool { return q.Waiting() == 1 },
		time.Second,
		5*time.Millisecond,
	)
	cancel()
	err := <-errCh
	require.Error(t, err)
	target := &queue.ErrInterruptedWait{}
	require.True(t, errors.As(err, &target))
	require.Equal(t, StateFailed, c.State())
	require.Equal(t, 1, observer.stopped)
	require.Error(t, observer.stopErr)
}

func TestRunCanceledWhilePacing(t *testing.T) {
	q := memory.NewQueue("queue")
	fillQueue(t, q, 1, queue.Sentinel)
	delay := time.Hour
	c := NewConsumer(
		q,
		&Options{ProcessingDelay: &delay, Output: &syncBuffer{}},
	)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := c.Run(ctx)
	require.Error(t, err)
	target := &queue.ErrInterruptedWait{}
	require.True(t, errors.As(err, &target))
	require.Equal(t, uint64(1), c.Consumed())
	// The sentinel was never reached
	require.Equal(t, []int{queue.Sentinel}, peekAll(t, q))
}

func TestRunPopFailureIsFatal(t *testing.T) {
	q := &brokenQueue{Queue: memory.NewQueue("queue")}
	output := &syncBuffer{}
	c := NewConsumer(
		q,
		&Options{ProcessingDelay: zeroDelay(), Output: output},
	)
	err := c.Run(context.Background())
	require.Error(t, err)
	target := &queue.ErrQueueUnavailable{}
	require.True(t, errors.As(err, &target))
	require.Equal(t, StateFailed, c.State())
	require.Equal(t, []string{""}, output.Lines())
}

func TestRunRepushRetried(t *testing.T) {
	inner := memory.NewQueue("queue")
	fillQueue(t, inner, queue.Sentinel)
	q := &flakyQueue{Queue: inner, failPushes: 1}
	var attempts uint8 = 2
	backoff := time.Second
	c := NewConsumer(
		q,
		&Options{
			ProcessingDelay:   zeroDelay(),
			RepushMaxAttempts: &attempts,
			RepushMaxBackoff:  &backoff,
			Output:            &syncBuffer{},
		},
	)
	require.NoError(t, c.Run(context.Background()))
	require.Equal(t, 2, q.pushes)
	require.Equal(t, []int{queue.Sentinel}, peekAll(t, inner))
}

func TestRunRepushFailure(t *testing.T) {
	q := memory.NewQueue("queue")
	fillQueue(t, q, queue.Sentinel)
	output := &syncBuffer{}
	c := NewConsumer(
		q,
		&Options{ProcessingDelay: zeroDelay(), Output: output},
	)
	c.(*consumer).repush = func() error {
		return errors.New("connection reset")
	}
	err := c.Run(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to re-push sentinel")
	require.Equal(t, StateFailed, c.State())
	require.Equal(t, []string{"Consumed: -1"}, output.Lines())
}
