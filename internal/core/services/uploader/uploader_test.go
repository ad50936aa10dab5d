package uploader

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/neuralsense/fusion/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	mu       sync.Mutex
	calls    int
	failN    int // first failN calls fail
	received [][]byte
}

func (f *fakeClient) Upload(ctx context.Context, batch []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.received = append(f.received, batch)
	if f.calls <= f.failN {
		return errors.New("boom")
	}
	return nil
}

type fakeSink struct {
	mu     sync.Mutex
	failed []domain.FailedUpload
}

func (f *fakeSink) WriteAssignment(domain.ZoneAssignment) error { return nil }
func (f *fakeSink) WriteUncertain(domain.Uncertain) error       { return nil }
func (f *fakeSink) WriteTransition(domain.Transition) error     { return nil }
func (f *fakeSink) WriteDwell(domain.Dwell) error                { return nil }
func (f *fakeSink) WriteError(domain.ErrorRecord) error          { return nil }
func (f *fakeSink) WriteFailedUpload(u domain.FailedUpload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failed = append(f.failed, u)
	return nil
}
func (f *fakeSink) Close() error { return nil }

func TestUploader_FlushesOnBatchSize(t *testing.T) {
	client := &fakeClient{}
	sink := &fakeSink{}
	u := New(Config{QueueSize: 10, BatchSize: 2, Interval: time.Hour, MaxRetries: 0}, client, sink)

	ctx, cancel := context.WithCancel(context.Background())
	u.Start(ctx)
	defer cancel()

	u.Enqueue(domain.ZoneAssignment{DeviceID: "a"})
	u.Enqueue(domain.ZoneAssignment{DeviceID: "b"})

	require.Eventually(t, func() bool {
		client.mu.Lock()
		defer client.mu.Unlock()
		return client.calls == 1
	}, time.Second, 10*time.Millisecond)
}

func TestUploader_ExhaustedRetriesWritesFailedUpload(t *testing.T) {
	client := &fakeClient{failN: 10}
	sink := &fakeSink{}
	u := New(Config{QueueSize: 10, BatchSize: 1, Interval: time.Hour, MaxRetries: 1}, client, sink)

	ctx, cancel := context.WithCancel(context.Background())
	u.Start(ctx)
	defer cancel()

	u.Enqueue(domain.ZoneAssignment{DeviceID: "a"})

	require.Eventually(t, func() bool {
		sink.mu.Lock()
		defer sink.mu.Unlock()
		return len(sink.failed) == 1
	}, 3*time.Second, 10*time.Millisecond)
}

func TestUploader_DisabledDropsEnqueues(t *testing.T) {
	client := &fakeClient{}
	sink := &fakeSink{}
	u := New(Config{QueueSize: 10, BatchSize: 1, Interval: time.Hour, MaxRetries: 0}, client, sink)
	u.SetEnabled(false)
	u.Enqueue(domain.ZoneAssignment{DeviceID: "a"})
	assert.Len(t, u.queue, 0)
}
