package main

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (l *lockedBuffer) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buf.Write(p)
}

func (l *lockedBuffer) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buf.String()
}

func TestRunDemo(t *testing.T) {
	out := &lockedBuffer{}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, runDemo(ctx, out, 5, 3, 0))

	output := out.String()
	for _, item := range []string{"1", "2", "3", "4", "5"} {
		require.Equal(
			t,
			1,
			strings.Count(output, "Consumed: "+item+"\n"),
			"item %s", item,
		)
	}
	// Every consumer sees the sentinel exactly once
	require.Equal(t, 3, strings.Count(output, "Consumed: -1\n"))
	require.Equal(t, 3, strings.Count(output, "Consumer Finished!\n"))
	require.True(
		t,
		strings.HasSuffix(output, "Remaining on queue: <sentinel>\n"),
	)
}
