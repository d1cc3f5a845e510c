package matching

import (
	"context"
	"sync"
	"time"

	"silleShop/pkg/logger"

	"golang.org/x/sync/semaphore"
)

// Recomputer executes one full match recomputation for a user.
type Recomputer interface {
	RecomputeUser(ctx context.Context, userID uint) error
}

// TriggerSource drains committed recompute triggers. Implementations must
// only ever return triggers whose originating transaction has committed.
type TriggerSource interface {
	ClaimPending(ctx context.Context) ([]uint, error)
}

type runState int

const (
	stateIdle runState = iota
	stateScheduled
	stateRunning
)

type userEntry struct {
	state    runState
	followUp bool
}

// Coordinator owns the per-user recompute state machine. A user is never
// recomputed concurrently with itself; different users run in parallel on a
// bounded worker pool. Triggers arriving while a job is scheduled are
// absorbed; triggers arriving while it runs leave exactly one follow-up.
type Coordinator struct {
	recomputer Recomputer
	triggers   TriggerSource
	cfg        Config

	sem *semaphore.Weighted

	mu     sync.Mutex
	states map[uint]*userEntry

	notify chan struct{}
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewCoordinator(recomputer Recomputer, triggers TriggerSource, cfg Config) *Coordinator {
	cfg = cfg.withDefaults()
	return &Coordinator{
		recomputer: recomputer,
		triggers:   triggers,
		cfg:        cfg,
		sem:        semaphore.NewWeighted(int64(cfg.Workers)),
		states:     make(map[uint]*userEntry),
		notify:     make(chan struct{}, 1),
	}
}

// Start launches the trigger poller. Call Stop to drain in-flight jobs.
func (c *Coordinator) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)

	c.wg.Add(1)
	go c.pollLoop(ctx)
}

// Stop stops the poller and waits for running jobs to finish. Running jobs
// are never preempted mid-computation.
func (c *Coordinator) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
}

// Notify nudges the poller so a freshly committed trigger is picked up
// before the next poll tick. Never blocks.
func (c *Coordinator) Notify() {
	select {
	case c.notify <- struct{}{}:
	default:
	}
}

func (c *Coordinator) pollLoop(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for {
		c.drainTriggers(ctx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-c.notify:
		}
	}
}

func (c *Coordinator) drainTriggers(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	userIDs, err := c.triggers.ClaimPending(ctx)
	if err != nil {
		logger.Warn("failed to claim recompute triggers", err)
		return
	}

	for _, userID := range userIDs {
		c.Trigger(ctx, userID)
	}
}

// Trigger moves a user into the scheduled state. The call returns
// immediately; the work runs on the pool.
func (c *Coordinator) Trigger(ctx context.Context, userID uint) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.states[userID]
	if !ok {
		entry = &userEntry{}
		c.states[userID] = entry
	}

	switch entry.state {
	case stateIdle:
		entry.state = stateScheduled
		c.spawn(ctx, userID)
	case stateScheduled:
		// already pending with the latest committed inputs
		TriggersCoalescedTotal.Inc()
	case stateRunning:
		if entry.followUp {
			TriggersCoalescedTotal.Inc()
			return
		}
		entry.followUp = true
	}
}

// spawn must be called with c.mu held.
func (c *Coordinator) spawn(ctx context.Context, userID uint) {
	c.wg.Add(1)
	go c.run(ctx, userID)
}

func (c *Coordinator) run(ctx context.Context, userID uint) {
	defer c.wg.Done()

	if err := c.sem.Acquire(ctx, 1); err != nil {
		// shutdown while queued; the durable trigger was already consumed,
		// so reschedule on next start is up to the caller writing a new one
		c.clear(userID)
		return
	}
	defer c.sem.Release(1)

	c.mu.Lock()
	entry := c.states[userID]
	entry.state = stateRunning
	c.mu.Unlock()

	start := time.Now()
	err := c.executeWithRetry(ctx, userID)
	RecomputeDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		RecomputeTotal.WithLabelValues("failed").Inc()
		logger.Error("match recompute failed, keeping previous scores",
			"user_id", userID,
			"error", err,
		)
	} else {
		RecomputeTotal.WithLabelValues("success").Inc()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if entry.followUp && ctx.Err() == nil {
		entry.followUp = false
		entry.state = stateScheduled
		c.spawn(ctx, userID)
		return
	}
	delete(c.states, userID)
}

func (c *Coordinator) executeWithRetry(ctx context.Context, userID uint) error {
	var lastErr error

	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		lastErr = c.recomputer.RecomputeUser(ctx, userID)
		if lastErr == nil {
			return nil
		}
		if !IsTransient(lastErr) {
			return lastErr
		}

		RecomputeRetries.Inc()
		logger.Warn("transient recompute failure",
			"user_id", userID,
			"attempt", attempt,
			"error", lastErr,
		)

		if attempt == c.cfg.MaxAttempts {
			break
		}

		backoff := time.Duration(attempt) * c.cfg.RetryBackoff
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}

	return fatalErr("recompute retry ceiling", lastErr)
}

func (c *Coordinator) clear(userID uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.states, userID)
}
