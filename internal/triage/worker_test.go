package triage

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProcessor struct {
	mu      sync.Mutex
	calls   []string
	reply   string
	handErr error
}

func (p *stubProcessor) Handle(_ context.Context, conversationID, message string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, conversationID+"|"+message)
	return p.reply, p.handErr
}

type stubJobUpdater struct {
	mu        sync.Mutex
	completed []string
	failed    []string
	replies   map[string]string
}

func newStubJobUpdater() *stubJobUpdater {
	return &stubJobUpdater{replies: make(map[string]string)}
}

func (j *stubJobUpdater) MarkCompleted(_ context.Context, jobID, reply, _ string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.completed = append(j.completed, jobID)
	j.replies[jobID] = reply
	return nil
}

func (j *stubJobUpdater) MarkFailed(_ context.Context, jobID string, _ string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.failed = append(j.failed, jobID)
	return nil
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestWorkerProcessesMessageJob(t *testing.T) {
	queue := NewMemoryQueue(8)
	processor := &stubProcessor{reply: "tudo certo"}
	jobs := newStubJobUpdater()
	worker := NewWorker(processor, queue, jobs, nil, WithWorkerCount(1), WithReceiveWaitSeconds(1))

	publisher := NewPublisher(queue, nil)
	require.NoError(t, publisher.EnqueueMessage(context.Background(), "job-1", "conv-1", "olá"))

	ctx, cancel := context.WithCancel(context.Background())
	worker.Start(ctx)

	waitFor(t, func() bool {
		jobs.mu.Lock()
		defer jobs.mu.Unlock()
		return len(jobs.completed) == 1
	})
	cancel()
	worker.Wait()

	processor.mu.Lock()
	defer processor.mu.Unlock()
	assert.Equal(t, []string{"conv-1|olá"}, processor.calls)
	assert.Equal(t, "tudo certo", jobs.replies["job-1"])
}

func TestWorkerMarksFailedJobs(t *testing.T) {
	queue := NewMemoryQueue(8)
	processor := &stubProcessor{handErr: errors.New("redis down")}
	jobs := newStubJobUpdater()
	worker := NewWorker(processor, queue, jobs, nil, WithWorkerCount(1), WithReceiveWaitSeconds(1))

	publisher := NewPublisher(queue, nil)
	require.NoError(t, publisher.EnqueueMessage(context.Background(), "job-1", "conv-1", "olá"))

	ctx, cancel := context.WithCancel(context.Background())
	worker.Start(ctx)

	waitFor(t, func() bool {
		jobs.mu.Lock()
		defer jobs.mu.Unlock()
		return len(jobs.failed) == 1
	})
	cancel()
	worker.Wait()
}

func TestWorkerSkipsTrackingWhenDisabled(t *testing.T) {
	queue := NewMemoryQueue(8)
	processor := &stubProcessor{reply: "ok"}
	jobs := newStubJobUpdater()
	worker := NewWorker(processor, queue, jobs, nil, WithWorkerCount(1), WithReceiveWaitSeconds(1))

	publisher := NewPublisher(queue, nil)
	require.NoError(t, publisher.EnqueueMessage(context.Background(), "job-1", "conv-1", "olá", WithoutJobTracking()))

	ctx, cancel := context.WithCancel(context.Background())
	worker.Start(ctx)

	waitFor(t, func() bool {
		processor.mu.Lock()
		defer processor.mu.Unlock()
		return len(processor.calls) == 1
	})
	cancel()
	worker.Wait()

	jobs.mu.Lock()
	defer jobs.mu.Unlock()
	assert.Empty(t, jobs.completed)
	assert.Empty(t, jobs.failed)
}

func TestWorkerIgnoresMalformedPayloads(t *testing.T) {
	queue := NewMemoryQueue(8)
	processor := &stubProcessor{reply: "ok"}
	worker := NewWorker(processor, queue, nil, nil, WithWorkerCount(1), WithReceiveWaitSeconds(1))

	require.NoError(t, queue.Send(context.Background(), "not-json"))

	publisher := NewPublisher(queue, nil)
	require.NoError(t, publisher.EnqueueMessage(context.Background(), "job-2", "conv-2", "oi", WithoutJobTracking()))

	ctx, cancel := context.WithCancel(context.Background())
	worker.Start(ctx)

	waitFor(t, func() bool {
		processor.mu.Lock()
		defer processor.mu.Unlock()
		return len(processor.calls) == 1
	})
	cancel()
	worker.Wait()

	processor.mu.Lock()
	defer processor.mu.Unlock()
	assert.Equal(t, []string{"conv-2|oi"}, processor.calls)
}

func TestMemoryQueueReceiveTimesOut(t *testing.T) {
	queue := NewMemoryQueue(1)

	start := time.Now()
	messages, err := queue.Receive(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.Empty(t, messages)
	assert.GreaterOrEqual(t, time.Since(start), time.Second)
}

func TestMemoryQueueBatchesMessages(t *testing.T) {
	queue := NewMemoryQueue(8)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, queue.Send(ctx, "body"))
	}

	messages, err := queue.Receive(ctx, 10, 1)
	require.NoError(t, err)
	assert.Len(t, messages, 3)
}
