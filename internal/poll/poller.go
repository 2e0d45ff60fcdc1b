package poll

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"reviewd/internal/domain"
	"reviewd/internal/port"
	"reviewd/internal/review"
)

// State is the poller lifecycle state.
type State string

const (
	StateIdle           State = "idle"
	StatePolling        State = "polling"
	StateCompletedEmpty State = "completed_empty"
	StateCompleted      State = "completed"
	StateFailed         State = "failed"
)

// Config holds poller timing. Zero values fall back to the long-standing
// client literals: 2000 ms between polls and 3000 ms before re-polling a
// completed-but-empty result.
type Config struct {
	Interval        time.Duration
	EmptyRetryDelay time.Duration
	MaxEmptyRetries int
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = 2000 * time.Millisecond
	}
	if c.EmptyRetryDelay <= 0 {
		c.EmptyRetryDelay = 3000 * time.Millisecond
	}
	if c.MaxEmptyRetries <= 0 {
		c.MaxEmptyRetries = 5
	}
	return c
}

// Snapshot is the poller's externally visible state. Result is set only in
// StateCompleted; FailureReason only in StateFailed.
type Snapshot struct {
	State         State
	EmptyRetries  int
	Result        *domain.ReviewResult
	FailureReason string
}

// Poller drives one review job from registration to a terminal outcome.
//
// A single goroutine owns the whole loop, so at most one backend request is
// ever outstanding per job and normalization runs exactly once per
// successful terminal fetch. A poller is one-shot: after Completed or
// Failed it never polls again; manual retry means building a new one.
type Poller struct {
	jobID      string
	backend    port.ReviewBackend
	normalizer *review.Normalizer
	cfg        Config
	onTerminal func(Snapshot)

	mu        sync.RWMutex
	snap      Snapshot
	destroyed bool
	started   bool
	cancel    context.CancelFunc
	done      chan struct{}
}

// New creates a poller for one external job ID. onTerminal, if non-nil, is
// invoked once when the poller reaches Completed or Failed; it is never
// invoked after Stop.
func New(jobID string, backend port.ReviewBackend, normalizer *review.Normalizer, cfg Config, onTerminal func(Snapshot)) *Poller {
	return &Poller{
		jobID:      jobID,
		backend:    backend,
		normalizer: normalizer,
		cfg:        cfg.withDefaults(),
		onTerminal: onTerminal,
		snap:       Snapshot{State: StateIdle},
		done:       make(chan struct{}),
	}
}

// Start launches the polling loop. The first status fetch is issued
// immediately. Starting twice is a no-op.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started || p.destroyed {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.snap = Snapshot{State: StatePolling}
	ctx, p.cancel = context.WithCancel(ctx)
	p.mu.Unlock()

	go p.run(ctx)
}

// Stop tears the poller down: pending timers are released, no further
// fetch is scheduled, and the terminal callback will not fire. An in-flight
// request is not interrupted; the loop observes cancellation at the next
// suspension point. Stop blocks until the loop has exited.
func (p *Poller) Stop() {
	p.mu.Lock()
	p.destroyed = true
	cancel := p.cancel
	started := p.started
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if started {
		<-p.done
	}
}

// Snapshot returns the current externally visible state.
func (p *Poller) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snap
}

func (p *Poller) run(ctx context.Context) {
	defer close(p.done)

	emptyRetries := 0
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		status, err := p.backend.Status(ctx, p.jobID)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.fail(err)
			return
		}

		switch status.State {
		case domain.JobFailed:
			reason := status.Message
			if reason == "" {
				reason = domain.ErrJobFailed.Error()
			}
			p.fail(errors.New(reason))
			return

		case domain.JobCompleted:
			raw, err := p.backend.Result(ctx, p.jobID)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				p.fail(err)
				return
			}

			result := p.normalizer.NormalizeResult(raw)
			if len(result.Materials) == 0 {
				// Terminal-success with no materials means "not yet
				// materialized", not success. Re-poll after the empty
				// retry delay, up to the configured bound.
				if emptyRetries >= p.cfg.MaxEmptyRetries {
					p.fail(fmt.Errorf("%w after %d retries", domain.ErrResultNotReady, emptyRetries))
					return
				}
				emptyRetries++
				p.update(Snapshot{State: StateCompletedEmpty, EmptyRetries: emptyRetries})
				log.Printf("poll: job %s completed with empty result, retry %d/%d in %s",
					p.jobID, emptyRetries, p.cfg.MaxEmptyRetries, p.cfg.EmptyRetryDelay)
				timer.Reset(p.cfg.EmptyRetryDelay)
				continue
			}

			p.finish(Snapshot{State: StateCompleted, EmptyRetries: emptyRetries, Result: &result})
			return

		default:
			p.update(Snapshot{State: StatePolling, EmptyRetries: emptyRetries})
			timer.Reset(p.cfg.Interval)
		}
	}
}

func (p *Poller) fail(err error) {
	log.Printf("poll: job %s failed: %v", p.jobID, err)
	p.finish(Snapshot{State: StateFailed, FailureReason: err.Error()})
}

// update mutates the snapshot unless the poller was torn down.
func (p *Poller) update(snap Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.destroyed {
		return
	}
	p.snap = snap
}

// finish records a terminal snapshot and fires the terminal callback.
// A destroyed poller records nothing and notifies nobody.
func (p *Poller) finish(snap Snapshot) {
	p.mu.Lock()
	if p.destroyed {
		p.mu.Unlock()
		return
	}
	p.snap = snap
	callback := p.onTerminal
	p.mu.Unlock()

	if callback != nil {
		callback(snap)
	}
}
