package relay

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/jobwatch/internal/types"
)

func queueEntry(id string) types.QueueEntry {
	return types.QueueEntry{
		Job: types.JobPostingRecord{
			PlatformJobID: id,
			SourceURL:     "https://www.linkedin.com/jobs/view/" + id + "/",
			Platform:      types.PlatformLinkedIn,
			Title:         types.StrPtr("Engineer"),
		},
		CapturedAt: time.Now().UTC(),
	}
}

func TestMemoryQueueFIFO(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue(5)

	require.NoError(t, q.Append(ctx, queueEntry("1")))
	require.NoError(t, q.Append(ctx, queueEntry("2")))

	entries, err := q.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "1", entries[0].Job.PlatformJobID)
	assert.Equal(t, "2", entries[1].Job.PlatformJobID)

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestMemoryQueueEvictsOldest(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue(3)

	for i := 1; i <= 5; i++ {
		require.NoError(t, q.Append(ctx, queueEntry(fmt.Sprintf("%d", i))))
	}

	entries, err := q.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "3", entries[0].Job.PlatformJobID)
	assert.Equal(t, "5", entries[2].Job.PlatformJobID)
}

func TestMemoryQueueClear(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue(3)
	require.NoError(t, q.Append(ctx, queueEntry("1")))
	require.NoError(t, q.Clear(ctx))

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMemoryQueueDefaultCap(t *testing.T) {
	q := NewMemoryQueue(0)
	assert.Equal(t, DefaultQueueCap, q.cap)
}

func newTestRedisQueue(t *testing.T, cap int) (*RedisQueue, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	q, err := NewRedisQueue(context.Background(), "redis://"+srv.Addr(), "test:fallback", cap)
	require.NoError(t, err)
	t.Cleanup(func() { _ = q.Close() })
	return q, srv
}

func TestRedisQueueRoundTrip(t *testing.T) {
	ctx := context.Background()
	q, _ := newTestRedisQueue(t, 10)

	require.NoError(t, q.Append(ctx, queueEntry("100")))
	require.NoError(t, q.Append(ctx, queueEntry("200")))

	entries, err := q.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "100", entries[0].Job.PlatformJobID)
	assert.Equal(t, "200", entries[1].Job.PlatformJobID)

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRedisQueueCapNeverExceeded(t *testing.T) {
	ctx := context.Background()
	q, _ := newTestRedisQueue(t, 3)

	for i := 1; i <= 10; i++ {
		require.NoError(t, q.Append(ctx, queueEntry(fmt.Sprintf("%d", i))))
		n, err := q.Len(ctx)
		require.NoError(t, err)
		assert.LessOrEqual(t, n, 3)
	}

	entries, err := q.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "8", entries[0].Job.PlatformJobID)
	assert.Equal(t, "10", entries[2].Job.PlatformJobID)
}

func TestRedisQueueSkipsCorruptEntries(t *testing.T) {
	ctx := context.Background()
	q, srv := newTestRedisQueue(t, 10)

	require.NoError(t, q.Append(ctx, queueEntry("1")))
	_, err := srv.Push("test:fallback", "{broken")
	require.NoError(t, err)
	require.NoError(t, q.Append(ctx, queueEntry("2")))

	entries, err := q.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "1", entries[0].Job.PlatformJobID)
	assert.Equal(t, "2", entries[1].Job.PlatformJobID)
}

func TestRedisQueueClear(t *testing.T) {
	ctx := context.Background()
	q, _ := newTestRedisQueue(t, 10)

	require.NoError(t, q.Append(ctx, queueEntry("1")))
	require.NoError(t, q.Clear(ctx))

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestNewRedisQueueBadURL(t *testing.T) {
	_, err := NewRedisQueue(context.Background(), "not-a-url", "", 0)
	assert.Error(t, err)
}
