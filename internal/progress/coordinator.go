package progress

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/adameda/revisia/internal/domain"
)

// State is the lifecycle of one generation request.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Renderer is the progress indicator. Mounted lets the coordinator no-op
// instead of touching a torn-down target when a late response arrives.
type Renderer interface {
	Mounted() bool
	Render(percent int, label string)
	Dismiss()
}

// QuotaDisplay receives the remaining generation allowance; it is fed on
// both success and failure paths, since a rate-limit response legitimately
// carries an updated quota alongside the error.
type QuotaDisplay interface {
	ShowQuota(remaining int)
}

// NotificationSink receives terminal messages, decoupled from the bar itself.
type NotificationSink interface {
	Success(message string)
	Failure(message string)
}

// Generator issues the real generation request. At most one is in flight per
// coordinator.
type Generator interface {
	Generate(ctx context.Context, documentID string) (domain.GenerationResult, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, documentID string) (domain.GenerationResult, error)

func (f GeneratorFunc) Generate(ctx context.Context, documentID string) (domain.GenerationResult, error) {
	return f(ctx, documentID)
}

// Coordinator races the simulated progress timeline against the real
// generation call and reconciles them into one monotonic rendered value.
// While running it renders the simulator's percent and label; the instant
// the real call terminates the simulator is stopped, and only then is a
// terminal state entered, so no stray tick can overwrite a terminal render.
// One coordinator serves exactly one request; build a new one to retry.
type Coordinator struct {
	generator  Generator
	renderer   Renderer
	quota      QuotaDisplay
	notify     NotificationSink
	milestones []Milestone
	interval   time.Duration
	dwell      time.Duration
	sleep      func(time.Duration)

	mu        sync.Mutex
	state     State
	percent   int
	cancelSim context.CancelFunc
	simDone   chan struct{}
	done      chan struct{}
}

func NewCoordinator(gen Generator, renderer Renderer, quota QuotaDisplay, notify NotificationSink) *Coordinator {
	return &Coordinator{
		generator:  gen,
		renderer:   renderer,
		quota:      quota,
		notify:     notify,
		milestones: DefaultMilestones(),
		interval:   100 * time.Millisecond,
		dwell:      time.Second,
		sleep:      time.Sleep,
	}
}

// NewCoordinatorWithTiming is test-only for deterministic, fast timelines.
func NewCoordinatorWithTiming(gen Generator, renderer Renderer, quota QuotaDisplay, notify NotificationSink,
	milestones []Milestone, interval, dwell time.Duration, sleep func(time.Duration)) *Coordinator {
	c := NewCoordinator(gen, renderer, quota, notify)
	c.milestones = milestones
	c.interval = interval
	c.dwell = dwell
	if sleep != nil {
		c.sleep = sleep
	}
	return c
}

// Start launches the simulator and the real generation request concurrently.
// It can succeed once; any later call is rejected. Debouncing repeated
// clicks is the trigger's responsibility, this only guards the state machine.
func (c *Coordinator) Start(ctx context.Context, documentID string) error {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return domain.ErrGenerationInFlight
	}
	c.state = StateRunning
	simCtx, cancel := context.WithCancel(ctx)
	c.cancelSim = cancel
	c.simDone = make(chan struct{})
	c.done = make(chan struct{})
	sim := NewSimulator(c.milestones, c.interval)
	c.mu.Unlock()

	go func() {
		defer close(c.simDone)
		sim.Run(simCtx, c.handleTick)
	}()
	go c.run(ctx, documentID)
	return nil
}

// State returns the current lifecycle state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Percent returns the last rendered percent.
func (c *Coordinator) Percent() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.percent
}

// Wait blocks until the terminal sequence, including the completion dwell,
// has finished. Returns immediately if Start was never called.
func (c *Coordinator) Wait() {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Finished reports whether the terminal sequence, including the dwell, has
// run to completion. A coordinator that was never started is not finished.
func (c *Coordinator) Finished() bool {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	if done == nil {
		return false
	}
	select {
	case <-done:
		return true
	default:
		return false
	}
}

// Close stops the simulator on early teardown, e.g. page navigation. The
// generation request itself is not cancellable once issued; a late response
// is absorbed by the state machine and the renderer's Mounted check.
func (c *Coordinator) Close() {
	c.mu.Lock()
	cancel := c.cancelSim
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (c *Coordinator) handleTick(snap Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateRunning {
		return
	}
	if snap.Percent > c.percent {
		c.percent = snap.Percent
	}
	// The real question count is only learned from the response, so labels
	// rendered while running always carry the generic placeholder expansion.
	c.renderLocked(ExpandLabel(snap.Label, 0))
}

func (c *Coordinator) renderLocked(label string) {
	if !c.renderer.Mounted() {
		return
	}
	c.renderer.Render(c.percent, label)
}

func (c *Coordinator) run(ctx context.Context, documentID string) {
	defer close(c.done)

	result, err := c.generator.Generate(ctx, documentID)

	// Stop the simulator and wait it out before entering a terminal state.
	c.cancelSim()
	<-c.simDone

	if err != nil {
		c.fail(err)
		return
	}
	c.succeed(result)
}

func (c *Coordinator) fail(err error) {
	c.mu.Lock()
	c.state = StateFailed
	c.mu.Unlock()

	message := "Quiz generation failed. Please try again."
	var genErr *domain.GenerationError
	if errors.As(err, &genErr) {
		if genErr.Message != "" {
			message = genErr.Message
		}
		if genErr.QuotaRemaining != nil && c.quota != nil {
			c.quota.ShowQuota(*genErr.QuotaRemaining)
		}
	}
	// The bar never reaches 100 on failure; the indicator is torn down and
	// the error goes through the notification sink instead.
	if c.renderer.Mounted() {
		c.renderer.Dismiss()
	}
	if c.notify != nil {
		c.notify.Failure(message)
	}
}

func (c *Coordinator) succeed(result domain.GenerationResult) {
	c.mu.Lock()
	c.state = StateSucceeded
	c.percent = 100
	c.renderLocked(ExpandLabel("Generated "+CountToken+" questions", result.QuestionCount))
	c.mu.Unlock()

	if result.QuotaRemaining != nil && c.quota != nil {
		c.quota.ShowQuota(*result.QuotaRemaining)
	}
	if c.notify != nil {
		c.notify.Success(fmt.Sprintf("%d questions generated", result.QuestionCount))
	}

	// Hold the full bar briefly so completion reads as completion, not as
	// the indicator vanishing.
	c.sleep(c.dwell)
	if c.renderer.Mounted() {
		c.renderer.Dismiss()
	}
}
