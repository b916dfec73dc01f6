package watch

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/jobwatch/internal/capture"
	"github.com/jonathan/jobwatch/internal/types"
)

// fakeSource is an in-memory DocumentSource driven by the test.
type fakeSource struct {
	mu       sync.Mutex
	location string
	html     string
	changes  chan struct{}
}

func newFakeSource(location string) *fakeSource {
	return &fakeSource{location: location, changes: make(chan struct{}, 16)}
}

func (f *fakeSource) Location() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.location, nil
}

func (f *fakeSource) HTML() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.html, nil
}

func (f *fakeSource) Changes() <-chan struct{} { return f.changes }

func (f *fakeSource) Notify(string) error { return nil }

func (f *fakeSource) Close() error { return nil }

// navigate updates the location and emits a mutation notification, the way an
// SPA route change manifests.
func (f *fakeSource) navigate(location string) {
	f.mu.Lock()
	f.location = location
	f.mu.Unlock()
	f.changes <- struct{}{}
}

// mutate emits a content change without a location change.
func (f *fakeSource) mutate() { f.changes <- struct{}{} }

func testWatcher(source *fakeSource, extract capture.ExtractFunc, finalize capture.FinalizeFunc) *Watcher {
	machine := capture.New(capture.Config{
		InitialDelay: 10 * time.Millisecond,
		RetryDelay:   10 * time.Millisecond,
		MaxRetries:   2,
	}, extract, finalize)
	return New(Config{DebounceDelay: 20 * time.Millisecond}, source, machine)
}

func viableRecord(url string) *types.JobPostingRecord {
	return &types.JobPostingRecord{
		PlatformJobID: "4012345678",
		SourceURL:     url,
		Platform:      types.PlatformLinkedIn,
		Title:         types.StrPtr("Backend Engineer"),
	}
}

func runWatcher(t *testing.T, w *Watcher) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return cancel
}

func TestWatcherInitialPassArmsOnPostingURL(t *testing.T) {
	url := "https://www.linkedin.com/jobs/view/4012345678/"
	source := newFakeSource(url)

	var finalized atomic.Int32
	w := testWatcher(source,
		func() (*types.JobPostingRecord, error) { return viableRecord(url), nil },
		func(*types.JobPostingRecord) { finalized.Add(1) })

	runWatcher(t, w)

	require.Eventually(t, func() bool { return finalized.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestWatcherArmsAfterNavigation(t *testing.T) {
	source := newFakeSource("https://www.linkedin.com/jobs/search/?keywords=go")

	var finalized atomic.Int32
	url := "https://www.linkedin.com/jobs/view/4012345678/"
	w := testWatcher(source,
		func() (*types.JobPostingRecord, error) { return viableRecord(url), nil },
		func(*types.JobPostingRecord) { finalized.Add(1) })

	runWatcher(t, w)

	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int32(0), finalized.Load())

	source.navigate(url)
	require.Eventually(t, func() bool { return finalized.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestWatcherIgnoresMutationsWithoutLocationChange(t *testing.T) {
	source := newFakeSource("https://www.linkedin.com/feed/")

	var extracts atomic.Int32
	w := testWatcher(source,
		func() (*types.JobPostingRecord, error) {
			extracts.Add(1)
			return nil, nil
		}, nil)

	runWatcher(t, w)

	for i := 0; i < 5; i++ {
		source.mutate()
	}
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(0), extracts.Load())
}

func TestWatcherDebouncesRapidNavigations(t *testing.T) {
	source := newFakeSource("https://www.linkedin.com/feed/")

	var extracts atomic.Int32
	var finalized atomic.Int32
	url := "https://www.linkedin.com/jobs/view/4012345678/"
	w := testWatcher(source,
		func() (*types.JobPostingRecord, error) {
			extracts.Add(1)
			return viableRecord(url), nil
		},
		func(*types.JobPostingRecord) { finalized.Add(1) })

	runWatcher(t, w)

	// Three location changes inside the debounce window: only the last one is
	// classified.
	source.navigate("https://www.linkedin.com/jobs/view/1111111111/")
	source.navigate("https://www.linkedin.com/jobs/view/2222222222/")
	source.navigate(url)

	require.Eventually(t, func() bool { return finalized.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), extracts.Load())
	assert.Equal(t, int32(1), finalized.Load())
}

func TestWatcherDisarmsOnLeavingPostingView(t *testing.T) {
	url := "https://www.linkedin.com/jobs/view/4012345678/"
	source := newFakeSource(url)

	var extracts atomic.Int32
	w := testWatcher(source,
		func() (*types.JobPostingRecord, error) {
			extracts.Add(1)
			return nil, nil // never ready, keeps retrying until disarmed
		}, nil)

	runWatcher(t, w)

	require.Eventually(t, func() bool { return extracts.Load() >= 1 }, time.Second, 5*time.Millisecond)

	source.navigate("https://www.linkedin.com/feed/")
	time.Sleep(40 * time.Millisecond) // let the debounce fire and disarm

	settled := extracts.Load()
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, settled, extracts.Load())
}

func TestWatcherMarkerFallbackClassifiesPosting(t *testing.T) {
	// URL carries no job id, but the rendered document contains a posting
	// detail marker.
	url := "https://www.linkedin.com/jobs/collections/recommended/"
	source := newFakeSource("about:blank")
	source.html = `<html><body><div class="jobs-unified-top-card"><h1>Backend Engineer</h1></div></body></html>`

	var finalized atomic.Int32
	w := testWatcher(source,
		func() (*types.JobPostingRecord, error) { return viableRecord(url), nil },
		func(*types.JobPostingRecord) { finalized.Add(1) })

	runWatcher(t, w)

	source.navigate(url)
	require.Eventually(t, func() bool { return finalized.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestWatcherRunReturnsWhenChangesClose(t *testing.T) {
	source := newFakeSource("https://www.linkedin.com/feed/")
	w := testWatcher(source, func() (*types.JobPostingRecord, error) { return nil, nil }, nil)

	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(context.Background()) }()

	close(source.changes)
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after change channel closed")
	}
}

func TestWatcherRunReturnsOnContextCancel(t *testing.T) {
	source := newFakeSource("https://www.linkedin.com/feed/")
	w := testWatcher(source, func() (*types.JobPostingRecord, error) { return nil, nil }, nil)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	cancel()
	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
