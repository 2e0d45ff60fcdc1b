package service

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"reviewd/internal/domain"
	"reviewd/internal/poll"
	"reviewd/internal/port"
	"reviewd/internal/review"
)

// RegisterReviewInput is the DTO for registering a review job.
type RegisterReviewInput struct {
	ExternalJobID string
	Name          string
}

// ReviewSnapshot combines the persisted job record with the live polling
// state, when a poller is running for the job.
type ReviewSnapshot struct {
	Job       domain.ReviewJob     `json:"job"`
	PollState poll.State           `json:"poll_state"`
	Result    *domain.ReviewResult `json:"result,omitempty"`
}

// ReviewService defines the review job management contract.
type ReviewService interface {
	Register(ctx context.Context, input *RegisterReviewInput) (*domain.ReviewJob, error)
	Get(ctx context.Context, id uuid.UUID) (*ReviewSnapshot, error)
	List(ctx context.Context, offset, limit int) ([]domain.ReviewJob, int, error)
	Retry(ctx context.Context, id uuid.UUID) (*domain.ReviewJob, error)
	Teardown(ctx context.Context, id uuid.UUID) error
	ActivePolls() int
	Shutdown()
}

type reviewService struct {
	jobRepo    port.ReviewJobRepository
	backend    port.ReviewBackend
	normalizer *review.Normalizer
	pollCfg    poll.Config

	mu      sync.Mutex
	pollers map[uuid.UUID]*poll.Poller
}

// NewReviewService creates a new ReviewService implementation.
func NewReviewService(
	jobRepo port.ReviewJobRepository,
	backend port.ReviewBackend,
	normalizer *review.Normalizer,
	pollCfg poll.Config,
) ReviewService {
	return &reviewService{
		jobRepo:    jobRepo,
		backend:    backend,
		normalizer: normalizer,
		pollCfg:    pollCfg,
		pollers:    make(map[uuid.UUID]*poll.Poller),
	}
}

func (s *reviewService) Register(ctx context.Context, input *RegisterReviewInput) (*domain.ReviewJob, error) {
	job := &domain.ReviewJob{
		ID:            uuid.New(),
		ExternalJobID: input.ExternalJobID,
		Name:          input.Name,
		State:         domain.JobProcessing,
		OverallStatus: domain.StatusLoading,
	}
	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, err
	}

	s.startPoller(job)
	return job, nil
}

func (s *reviewService) Get(ctx context.Context, id uuid.UUID) (*ReviewSnapshot, error) {
	job, err := s.jobRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	snapshot := &ReviewSnapshot{Job: *job, PollState: poll.StateIdle}

	s.mu.Lock()
	poller := s.pollers[id]
	s.mu.Unlock()

	if poller != nil {
		live := poller.Snapshot()
		snapshot.PollState = live.State
		snapshot.Result = live.Result
	} else if len(job.Result) > 0 {
		// No live poller (e.g. after a restart): fall back to the
		// persisted canonical result.
		var result domain.ReviewResult
		if err := json.Unmarshal(job.Result, &result); err == nil {
			snapshot.Result = &result
		}
	}
	return snapshot, nil
}

func (s *reviewService) List(ctx context.Context, offset, limit int) ([]domain.ReviewJob, int, error) {
	return s.jobRepo.List(ctx, offset, limit)
}

// Retry restarts polling for a failed job. Nothing but the external job ID
// is needed to resume; the old poller is discarded wholesale.
func (s *reviewService) Retry(ctx context.Context, id uuid.UUID) (*domain.ReviewJob, error) {
	job, err := s.jobRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.State != domain.JobFailed {
		return nil, domain.ErrJobNotTerminal
	}

	s.stopPoller(id)

	job.State = domain.JobProcessing
	job.OverallStatus = domain.StatusLoading
	job.FailureReason = ""
	if err := s.jobRepo.UpdateOutcome(ctx, job); err != nil {
		return nil, err
	}

	s.startPoller(job)
	return job, nil
}

func (s *reviewService) Teardown(ctx context.Context, id uuid.UUID) error {
	s.stopPoller(id)
	return s.jobRepo.Delete(ctx, id)
}

// ActivePolls reports the number of jobs whose poll loop has not yet
// reached a terminal state.
func (s *reviewService) ActivePolls() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, p := range s.pollers {
		switch p.Snapshot().State {
		case poll.StateCompleted, poll.StateFailed:
		default:
			n++
		}
	}
	return n
}

// Shutdown stops all live pollers and blocks until their loops exit.
func (s *reviewService) Shutdown() {
	s.mu.Lock()
	pollers := make([]*poll.Poller, 0, len(s.pollers))
	for _, p := range s.pollers {
		pollers = append(pollers, p)
	}
	s.pollers = make(map[uuid.UUID]*poll.Poller)
	s.mu.Unlock()

	for _, p := range pollers {
		p.Stop()
	}
}

func (s *reviewService) startPoller(job *domain.ReviewJob) {
	jobID := job.ID
	poller := poll.New(job.ExternalJobID, s.backend, s.normalizer, s.pollCfg, func(snap poll.Snapshot) {
		s.persistOutcome(jobID, snap)
	})

	s.mu.Lock()
	s.pollers[jobID] = poller
	s.mu.Unlock()

	// Pollers outlive the registering request.
	poller.Start(context.Background())
}

func (s *reviewService) stopPoller(id uuid.UUID) {
	s.mu.Lock()
	poller := s.pollers[id]
	delete(s.pollers, id)
	s.mu.Unlock()

	if poller != nil {
		poller.Stop()
	}
}

// persistOutcome records a terminal poll outcome on the job registry.
func (s *reviewService) persistOutcome(id uuid.UUID, snap poll.Snapshot) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	job, err := s.jobRepo.GetByID(ctx, id)
	if err != nil {
		log.Printf("reviewService: loading job %s for outcome: %v", id, err)
		return
	}

	switch snap.State {
	case poll.StateCompleted:
		job.State = domain.JobCompleted
		if snap.Result != nil {
			job.OverallStatus = snap.Result.Aggregate.Status
			job.Progress = snap.Result.Aggregate.Progress
			job.Summary = snap.Result.Aggregate.Summary
			job.IssueCount = snap.Result.Aggregate.IssueCount
			if data, err := json.Marshal(snap.Result); err == nil {
				job.Result = data
			}
		}
		job.FailureReason = ""
	case poll.StateFailed:
		job.State = domain.JobFailed
		job.OverallStatus = domain.StatusError
		job.FailureReason = snap.FailureReason
	default:
		return
	}

	if err := s.jobRepo.UpdateOutcome(ctx, job); err != nil {
		log.Printf("reviewService: persisting outcome for job %s: %v", id, err)
	}
}
