package capture

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/jobwatch/internal/types"
)

func testConfig() Config {
	return Config{
		InitialDelay: 20 * time.Millisecond,
		RetryDelay:   10 * time.Millisecond,
		MaxRetries:   5,
	}
}

func testRecord(id, url string) *types.JobPostingRecord {
	return &types.JobPostingRecord{
		PlatformJobID: id,
		SourceURL:     url,
		Platform:      types.PlatformLinkedIn,
		Title:         types.StrPtr("Backend Engineer"),
	}
}

func TestMachineFinalizesAfterRetries(t *testing.T) {
	const readyOnAttempt = 3

	var attempts atomic.Int32
	var finalized atomic.Int32
	var got *types.JobPostingRecord

	m := New(testConfig(),
		func() (*types.JobPostingRecord, error) {
			if attempts.Add(1) < readyOnAttempt {
				return nil, nil
			}
			return testRecord("111", "https://example.com/jobs/view/111"), nil
		},
		func(r *types.JobPostingRecord) {
			finalized.Add(1)
			got = r
		})

	m.Arm(1, "https://example.com/jobs/view/111")

	require.Eventually(t, func() bool { return finalized.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(readyOnAttempt), attempts.Load())
	assert.Equal(t, "111", got.PlatformJobID)
	assert.Equal(t, "111", m.LastCapturedID())
	assert.Equal(t, StateIdle, m.State())

	// No further attempts after finalization.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(readyOnAttempt), attempts.Load())
	assert.Equal(t, int32(1), finalized.Load())
}

func TestMachineExhaustsWhenNeverReady(t *testing.T) {
	cfg := testConfig()

	var attempts atomic.Int32
	var finalized atomic.Int32

	m := New(cfg,
		func() (*types.JobPostingRecord, error) {
			attempts.Add(1)
			return nil, nil
		},
		func(*types.JobPostingRecord) { finalized.Add(1) })

	m.Arm(1, "https://example.com/jobs/view/222")

	// Initial attempt plus MaxRetries retries, then the machine gives up.
	want := int32(cfg.MaxRetries + 1)
	require.Eventually(t, func() bool { return attempts.Load() == want }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, want, attempts.Load())
	assert.Equal(t, int32(0), finalized.Load())
	assert.Equal(t, StateIdle, m.State())
}

func TestMachineExtractionErrorRetries(t *testing.T) {
	var attempts atomic.Int32
	var finalized atomic.Int32

	m := New(testConfig(),
		func() (*types.JobPostingRecord, error) {
			if attempts.Add(1) == 1 {
				return nil, assert.AnError
			}
			return testRecord("333", "https://example.com/jobs/view/333"), nil
		},
		func(*types.JobPostingRecord) { finalized.Add(1) })

	m.Arm(1, "https://example.com/jobs/view/333")

	require.Eventually(t, func() bool { return finalized.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(2), attempts.Load())
}

func TestMachineCapturedURLIsNoOp(t *testing.T) {
	url := "https://example.com/jobs/view/444"

	var attempts atomic.Int32
	var finalized atomic.Int32

	m := New(testConfig(),
		func() (*types.JobPostingRecord, error) {
			attempts.Add(1)
			return testRecord("444", url), nil
		},
		func(*types.JobPostingRecord) { finalized.Add(1) })

	m.Arm(1, url)
	require.Eventually(t, func() bool { return finalized.Load() == 1 }, time.Second, 5*time.Millisecond)

	// Re-arming for the same URL must not schedule anything.
	m.Arm(2, url)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), attempts.Load())
	assert.Equal(t, int32(1), finalized.Load())
	assert.Equal(t, StateIdle, m.State())
}

func TestMachineDedupsByJobID(t *testing.T) {
	// Same posting reached under two URL shapes: finalize once, dedup the
	// second by platform job id.
	var finalized atomic.Int32

	urls := []string{
		"https://example.com/jobs/view/555",
		"https://example.com/jobs/search?currentJobId=555",
	}
	var idx atomic.Int32

	m := New(testConfig(),
		func() (*types.JobPostingRecord, error) {
			i := idx.Load()
			return testRecord("555", urls[i]), nil
		},
		func(*types.JobPostingRecord) { finalized.Add(1) })

	m.Arm(1, urls[0])
	require.Eventually(t, func() bool { return finalized.Load() == 1 }, time.Second, 5*time.Millisecond)

	idx.Store(1)
	m.Arm(2, urls[1])
	require.Eventually(t, func() bool { return m.State() == StateIdle }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)

	assert.Equal(t, int32(1), finalized.Load())
	assert.Equal(t, "555", m.LastCapturedID())
}

func TestMachineLastTriggerWins(t *testing.T) {
	// A second navigation before the first attempt fires replaces the pending
	// work entirely: exactly one attempt, for the newest navigation.
	var attempts atomic.Int32
	var finalized atomic.Int32

	m := New(testConfig(),
		func() (*types.JobPostingRecord, error) {
			attempts.Add(1)
			return testRecord("777", "https://example.com/jobs/view/777"), nil
		},
		func(*types.JobPostingRecord) { finalized.Add(1) })

	m.Arm(1, "https://example.com/jobs/view/666")
	m.Arm(2, "https://example.com/jobs/view/777")

	require.Eventually(t, func() bool { return finalized.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), attempts.Load())
	assert.Equal(t, int32(1), finalized.Load())
}

func TestMachineSameSeqDuplicateTriggerIgnored(t *testing.T) {
	var attempts atomic.Int32

	m := New(testConfig(),
		func() (*types.JobPostingRecord, error) {
			attempts.Add(1)
			return testRecord("888", "https://example.com/jobs/view/888"), nil
		},
		nil)

	m.Arm(1, "https://example.com/jobs/view/888")
	m.Arm(1, "https://example.com/jobs/view/888")

	require.Eventually(t, func() bool { return attempts.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestMachineDisarmDuringExtractionDiscardsResult(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var finalized atomic.Int32

	m := New(testConfig(),
		func() (*types.JobPostingRecord, error) {
			close(started)
			<-release
			return testRecord("123", "https://example.com/jobs/view/123"), nil
		},
		func(*types.JobPostingRecord) { finalized.Add(1) })

	m.Arm(1, "https://example.com/jobs/view/123")

	<-started
	m.Disarm()
	close(release)

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), finalized.Load())
	assert.Equal(t, StateIdle, m.State())
	assert.Empty(t, m.LastCapturedID())
}

func TestMachineDisarmCancelsPending(t *testing.T) {
	var attempts atomic.Int32

	m := New(testConfig(),
		func() (*types.JobPostingRecord, error) {
			attempts.Add(1)
			return nil, nil
		},
		nil)

	m.Arm(1, "https://example.com/jobs/view/999")
	m.Disarm()

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), attempts.Load())
	assert.Equal(t, StateIdle, m.State())
}
