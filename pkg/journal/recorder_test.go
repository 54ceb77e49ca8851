package journal

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/krancour/dqueue/pkg/consumer"
	"github.com/krancour/dqueue/pkg/queue"
	"github.com/krancour/dqueue/pkg/queue/memory"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory Store.
type fakeStore struct {
	mu   sync.Mutex
	runs map[string]*Run
	err  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{runs: map[string]*Run{}}
}

func (f *fakeStore) CreateRun(_ context.Context, run Run) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.runs[run.ID] = &run
	return nil
}

func (f *fakeStore) UpdateRunState(
	_ context.Context,
	id string,
	state consumer.State,
) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.runs[id].State = state
	if state == consumer.StateDone {
		f.runs[id].SentinelRepushed = true
	}
	return nil
}

func (f *fakeStore) IncrementItemsConsumed(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.runs[id].ItemsConsumed++
	return nil
}

func (f *fakeStore) EndRun(
	_ context.Context,
	id string,
	ended time.Time,
	errMsg string,
) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.runs[id].Ended = &ended
	f.runs[id].Error = errMsg
	return nil
}

func (f *fakeStore) ListRuns(
	_ context.Context,
	queueName string,
	_ int64,
) ([]Run, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	runs := []Run{}
	for _, run := range f.runs {
		if queueName == "" || run.Queue == queueName {
			runs = append(runs, *run)
		}
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Started.After(runs[j].Started)
	})
	return runs, nil
}

type discard struct{}

func (discard) Write(p []byte) (int, error) {
	return len(p), nil
}

func TestRecorderSuccessfulRun(t *testing.T) {
	store := newFakeStore()
	recorder := NewRecorder(store)
	testTime := time.Date(2020, time.March, 1, 0, 0, 0, 0, time.UTC)
	recorder.now = func() time.Time { return testTime }

	q := memory.NewQueue("queue")
	for _, item := range []int{1, 2, queue.Sentinel} {
		require.NoError(t, q.Push(context.Background(), item))
	}
	var delay time.Duration
	c := consumer.NewConsumer(
		q,
		&consumer.Options{
			ProcessingDelay: &delay,
			Output:          discard{},
			Observer:        recorder,
		},
	)
	require.NoError(t, c.Run(context.Background()))

	runs, err := store.ListRuns(context.Background(), "queue", 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	run := runs[0]
	require.Equal(t, c.ID(), run.ID)
	require.Equal(t, "queue", run.Queue)
	require.Equal(t, consumer.StateDone, run.State)
	require.Equal(t, int64(2), run.ItemsConsumed)
	require.True(t, run.SentinelRepushed)
	require.Equal(t, testTime, run.Started)
	require.NotNil(t, run.Ended)
	require.Empty(t, run.Error)
}

func TestRecorderFailedRun(t *testing.T) {
	store := newFakeStore()
	recorder := NewRecorder(store)
	recorder.ConsumerStarted("abc", "queue")
	recorder.StateChanged("abc", "queue", consumer.StateRunning)
	recorder.StateChanged("abc", "queue", consumer.StateFailed)
	recorder.ConsumerStopped("abc", "queue", errors.New("connection refused"))
	run := store.runs["abc"]
	require.Equal(t, consumer.StateFailed, run.State)
	require.False(t, run.SentinelRepushed)
	require.Equal(t, "connection refused", run.Error)
}

func TestRecorderStoreErrorsAreNotFatal(t *testing.T) {
	store := newFakeStore()
	store.err = errors.New("mongo is down")
	recorder := NewRecorder(store)
	q := memory.NewQueue("queue")
	require.NoError(t, q.Push(context.Background(), queue.Sentinel))
	var delay time.Duration
	c := consumer.NewConsumer(
		q,
		&consumer.Options{
			ProcessingDelay: &delay,
			Output:          discard{},
			Observer:        recorder,
		},
	)
	require.NoError(t, c.Run(context.Background()))
	require.Equal(t, consumer.StateDone, c.State())
	require.Empty(t, store.runs)
}
