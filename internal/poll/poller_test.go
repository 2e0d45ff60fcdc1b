package poll_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"reviewd/internal/config"
	"reviewd/internal/domain"
	"reviewd/internal/poll"
	"reviewd/internal/port"
	"reviewd/internal/review"
	"reviewd/internal/urlcanon"
	"reviewd/mocks"
)

func testNormalizer() *review.Normalizer {
	canon := urlcanon.New(&config.CanonConfig{Origin: "https://review.example.com"})
	return review.NewNormalizer(canon, nil)
}

func fastConfig() poll.Config {
	return poll.Config{
		Interval:        5 * time.Millisecond,
		EmptyRetryDelay: 5 * time.Millisecond,
		MaxEmptyRetries: 2,
	}
}

// terminalRecorder captures the terminal callback.
type terminalRecorder struct {
	mu    sync.Mutex
	snaps []poll.Snapshot
	ch    chan poll.Snapshot
}

func newTerminalRecorder() *terminalRecorder {
	return &terminalRecorder{ch: make(chan poll.Snapshot, 1)}
}

func (r *terminalRecorder) record(snap poll.Snapshot) {
	r.mu.Lock()
	r.snaps = append(r.snaps, snap)
	r.mu.Unlock()
	r.ch <- snap
}

func (r *terminalRecorder) wait(t *testing.T) poll.Snapshot {
	t.Helper()
	select {
	case snap := <-r.ch:
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("terminal callback never fired")
		return poll.Snapshot{}
	}
}

func (r *terminalRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.snaps)
}

func materialsPayload() json.RawMessage {
	return json.RawMessage(`{"materials": [{"id": "m1", "status": "success"}]}`)
}

func TestPoller_CompletesOnFirstPoll(t *testing.T) {
	backend := new(mocks.MockReviewBackend)
	backend.On("Status", mock.Anything, "job-1").
		Return(&port.JobStatus{State: domain.JobCompleted}, nil).Once()
	backend.On("Result", mock.Anything, "job-1").
		Return(materialsPayload(), nil).Once()

	rec := newTerminalRecorder()
	p := poll.New("job-1", backend, testNormalizer(), fastConfig(), rec.record)
	p.Start(context.Background())
	defer p.Stop()

	snap := rec.wait(t)

	assert.Equal(t, poll.StateCompleted, snap.State)
	require.NotNil(t, snap.Result)
	assert.Len(t, snap.Result.Materials, 1)
	assert.Equal(t, domain.StatusPassed, snap.Result.Aggregate.Status)
	backend.AssertExpectations(t)
}

func TestPoller_PollsUntilCompleted(t *testing.T) {
	backend := new(mocks.MockReviewBackend)
	backend.On("Status", mock.Anything, "job-1").
		Return(&port.JobStatus{State: domain.JobProcessing}, nil).Twice()
	backend.On("Status", mock.Anything, "job-1").
		Return(&port.JobStatus{State: domain.JobCompleted}, nil).Once()
	backend.On("Result", mock.Anything, "job-1").
		Return(materialsPayload(), nil).Once()

	rec := newTerminalRecorder()
	p := poll.New("job-1", backend, testNormalizer(), fastConfig(), rec.record)
	p.Start(context.Background())
	defer p.Stop()

	snap := rec.wait(t)

	assert.Equal(t, poll.StateCompleted, snap.State)
	backend.AssertExpectations(t)
}

func TestPoller_EmptyResultRetriesThenSucceeds(t *testing.T) {
	backend := new(mocks.MockReviewBackend)
	backend.On("Status", mock.Anything, "job-1").
		Return(&port.JobStatus{State: domain.JobCompleted}, nil)
	// First result is completed-but-empty; the retry materializes.
	backend.On("Result", mock.Anything, "job-1").
		Return(json.RawMessage(`{"materials": []}`), nil).Once()
	backend.On("Result", mock.Anything, "job-1").
		Return(materialsPayload(), nil).Once()

	rec := newTerminalRecorder()
	p := poll.New("job-1", backend, testNormalizer(), fastConfig(), rec.record)
	p.Start(context.Background())
	defer p.Stop()

	snap := rec.wait(t)

	assert.Equal(t, poll.StateCompleted, snap.State)
	assert.Equal(t, 1, snap.EmptyRetries)
	backend.AssertExpectations(t)
}

func TestPoller_EmptyResultExhaustsRetries(t *testing.T) {
	backend := new(mocks.MockReviewBackend)
	backend.On("Status", mock.Anything, "job-1").
		Return(&port.JobStatus{State: domain.JobCompleted}, nil)
	backend.On("Result", mock.Anything, "job-1").
		Return(json.RawMessage(`{"materials": []}`), nil)

	rec := newTerminalRecorder()
	p := poll.New("job-1", backend, testNormalizer(), fastConfig(), rec.record)
	p.Start(context.Background())
	defer p.Stop()

	snap := rec.wait(t)

	assert.Equal(t, poll.StateFailed, snap.State)
	assert.Contains(t, snap.FailureReason, domain.ErrResultNotReady.Error())
	// MaxEmptyRetries=2: the initial fetch plus two retries.
	backend.AssertNumberOfCalls(t, "Result", 3)
}

func TestPoller_BackendFailureIsTerminal(t *testing.T) {
	backend := new(mocks.MockReviewBackend)
	backend.On("Status", mock.Anything, "job-1").
		Return(&port.JobStatus{State: domain.JobFailed, Message: "ocr backend down"}, nil).Once()

	rec := newTerminalRecorder()
	p := poll.New("job-1", backend, testNormalizer(), fastConfig(), rec.record)
	p.Start(context.Background())
	defer p.Stop()

	snap := rec.wait(t)

	assert.Equal(t, poll.StateFailed, snap.State)
	assert.Equal(t, "ocr backend down", snap.FailureReason)
	// One-shot: a failed poller never issues another request.
	time.Sleep(30 * time.Millisecond)
	backend.AssertNumberOfCalls(t, "Status", 1)
	assert.Equal(t, 1, rec.count())
}

func TestPoller_AuthErrorSurfacesInFailureReason(t *testing.T) {
	backend := new(mocks.MockReviewBackend)
	backend.On("Status", mock.Anything, "job-1").
		Return(nil, domain.ErrAuthRequired).Once()

	rec := newTerminalRecorder()
	p := poll.New("job-1", backend, testNormalizer(), fastConfig(), rec.record)
	p.Start(context.Background())
	defer p.Stop()

	snap := rec.wait(t)

	assert.Equal(t, poll.StateFailed, snap.State)
	assert.Contains(t, snap.FailureReason, domain.ErrAuthRequired.Error())
}

func TestPoller_StopSuppressesTerminalCallback(t *testing.T) {
	release := make(chan struct{})
	backend := new(mocks.MockReviewBackend)
	backend.On("Status", mock.Anything, "job-1").
		Run(func(mock.Arguments) { <-release }).
		Return(&port.JobStatus{State: domain.JobCompleted}, nil).Maybe()
	backend.On("Result", mock.Anything, "job-1").
		Return(materialsPayload(), nil).Maybe()

	rec := newTerminalRecorder()
	p := poll.New("job-1", backend, testNormalizer(), fastConfig(), rec.record)
	p.Start(context.Background())

	go func() {
		time.Sleep(10 * time.Millisecond)
		close(release)
	}()
	p.Stop()

	assert.Equal(t, 0, rec.count())
}

func TestPoller_StartTwiceIsNoop(t *testing.T) {
	backend := new(mocks.MockReviewBackend)
	backend.On("Status", mock.Anything, "job-1").
		Return(&port.JobStatus{State: domain.JobCompleted}, nil).Once()
	backend.On("Result", mock.Anything, "job-1").
		Return(materialsPayload(), nil).Once()

	rec := newTerminalRecorder()
	p := poll.New("job-1", backend, testNormalizer(), fastConfig(), rec.record)
	p.Start(context.Background())
	p.Start(context.Background())
	defer p.Stop()

	rec.wait(t)
	backend.AssertNumberOfCalls(t, "Status", 1)
}

func TestPoller_StatusErrorMessageFallsBackToJobFailed(t *testing.T) {
	backend := new(mocks.MockReviewBackend)
	backend.On("Status", mock.Anything, "job-1").
		Return(&port.JobStatus{State: domain.JobFailed}, nil).Once()

	rec := newTerminalRecorder()
	p := poll.New("job-1", backend, testNormalizer(), fastConfig(), rec.record)
	p.Start(context.Background())
	defer p.Stop()

	snap := rec.wait(t)

	assert.Equal(t, poll.StateFailed, snap.State)
	assert.Equal(t, domain.ErrJobFailed.Error(), snap.FailureReason)
}
