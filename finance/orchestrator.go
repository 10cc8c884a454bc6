/*
orchestrator.go - Join/state machine feeding the projection engine

PURPOSE:
  Three inputs arrive asynchronously and independently: categories,
  salaries, and user settings. Each may resolve (and re-resolve) at any
  time, in any order. The orchestrator joins them, consults the run gate,
  and dispatches a projection exactly once per qualifying input change.

STATES:
  Idle            nothing has arrived yet
  AwaitingInputs  at least one input arrived, not all three
  Gated           all three present, run gate fails (not enough data)
  Running         dispatched, waiting for the engine
  Complete        latest dispatch produced a trajectory
  Failed          latest dispatch errored (distinct from Gated)

ORDERING GUARANTEE:
  Within one reaction, the loading-flag clear is signaled strictly before
  the dispatch. Across reactions nothing is guaranteed: a later dispatch
  supersedes an earlier one.

STALE RESULTS:
  Every dispatch carries a generation number. A result is applied only if
  its generation is still the latest; anything older is discarded. This is
  what makes overlapping async runs safe (last dispatch wins, not last
  arrival).

RE-TRIGGERING:
  Every qualifying input change re-dispatches, with no content-equality
  memoization. Re-setting identical collections recomputes the trajectory.

EXAMPLE:
  orch := finance.NewOrchestrator(engine)
  go func() { orch.SetCategories(ctx, fetchCategories()) }()
  go func() { orch.SetSalaries(ctx, fetchSalaries()) }()
  go func() { orch.SetSettings(ctx, fetchSettings()) }()
  // once all three land: orch.State() is Complete/Gated/Failed

SEE ALSO:
  - gate.go: the pass/fail predicate
  - engine.go: the dispatched strategy
*/
package finance

import (
	"context"
	"sync"
)

// =============================================================================
// STATES
// =============================================================================

type RunState string

const (
	StateIdle           RunState = "idle"
	StateAwaitingInputs RunState = "awaiting_inputs"
	StateGated          RunState = "gated"
	StateRunning        RunState = "running"
	StateComplete       RunState = "complete"
	StateFailed         RunState = "failed"
)

// Settings is the user-settings input to the join: the account defaults
// plus the requested horizon.
type Settings struct {
	User  User
	Years int
}

// =============================================================================
// ORCHESTRATOR
// =============================================================================

// Orchestrator owns the single mutable result slot and the loading flag.
// Reactions are serialized under one mutex; the engine call itself runs
// synchronously by default or on a goroutine when Async is set.
type Orchestrator struct {
	engine Engine

	// Async dispatches engine runs on their own goroutine. Results are
	// reconciled by generation either way.
	Async bool

	// OnLoading, when set, observes the loading flag. It is invoked with
	// false strictly before each dispatch.
	OnLoading func(loading bool)

	mu         sync.Mutex
	categories []NormalizedCategory
	salaries   []NormalizedSalary
	settings   *Settings

	catsPresent bool
	salsPresent bool

	state      RunState
	loading    bool
	generation uint64
	trajectory Trajectory
	runErr     error
	done       chan struct{} // closed when a dispatch concludes; replaced per run
}

// NewOrchestrator creates an idle orchestrator around the given engine.
func NewOrchestrator(engine Engine) *Orchestrator {
	return &Orchestrator{
		engine:  engine,
		state:   StateIdle,
		loading: true,
	}
}

// SetCategories records a categories arrival (or re-arrival) and reacts.
func (o *Orchestrator) SetCategories(ctx context.Context, categories []NormalizedCategory) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.categories = categories
	o.catsPresent = true
	o.react(ctx)
}

// SetSalaries records a salaries arrival (or re-arrival) and reacts.
func (o *Orchestrator) SetSalaries(ctx context.Context, salaries []NormalizedSalary) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.salaries = salaries
	o.salsPresent = true
	o.react(ctx)
}

// SetSettings records a user-settings arrival (or re-arrival) and reacts.
func (o *Orchestrator) SetSettings(ctx context.Context, settings Settings) {
	o.mu.Lock()
	defer o.mu.Unlock()
	s := settings
	o.settings = &s
	o.react(ctx)
}

// react is the single transition function. Caller holds o.mu.
func (o *Orchestrator) react(ctx context.Context) {
	if !o.catsPresent || !o.salsPresent || o.settings == nil {
		o.state = StateAwaitingInputs
		return
	}

	if !ShouldRun(o.categories, o.salaries) {
		o.state = StateGated
		return
	}

	// Loading clear happens-before the dispatch, always.
	o.loading = false
	if o.OnLoading != nil {
		o.OnLoading(false)
	}

	o.generation++
	gen := o.generation
	o.state = StateRunning
	o.done = make(chan struct{})
	done := o.done

	input := Input{
		Categories:   o.categories,
		Salaries:     o.salaries,
		Years:        o.settings.Years,
		InvestPerc:   o.settings.User.InvestPerc,
		IndexReturn:  o.settings.User.IndexReturn,
		BaseCurrency: o.settings.User.Currency,
	}

	if o.Async {
		go func() {
			traj, err := o.engine.Project(ctx, input)
			o.mu.Lock()
			o.apply(gen, traj, err, done)
			o.mu.Unlock()
		}()
		return
	}

	traj, err := o.engine.Project(ctx, input)
	o.apply(gen, traj, err, done)
}

// apply reconciles an engine result. Caller holds o.mu. Stale generations
// are discarded: the result slot is last-dispatch-wins.
func (o *Orchestrator) apply(gen uint64, traj Trajectory, err error, done chan struct{}) {
	defer close(done)
	if gen != o.generation {
		return
	}
	if err != nil {
		o.state = StateFailed
		o.runErr = err
		o.trajectory = nil
		return
	}
	o.state = StateComplete
	o.runErr = nil
	o.trajectory = traj
}

// =============================================================================
// OBSERVER SIDE - What presentation reads
// =============================================================================

// State returns the current lifecycle state.
func (o *Orchestrator) State() RunState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Loading reports whether the orchestrator is still before its first
// qualifying reaction.
func (o *Orchestrator) Loading() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.loading
}

// Result returns the latest trajectory, or nil before the first successful
// run (and after a failure).
func (o *Orchestrator) Result() Trajectory {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.trajectory
}

// Err returns the error from the latest dispatch, or nil.
func (o *Orchestrator) Err() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.runErr
}

// Wait blocks until the most recent dispatch concludes. Returns immediately
// when nothing has been dispatched. Only meaningful with Async set.
func (o *Orchestrator) Wait() {
	o.mu.Lock()
	done := o.done
	o.mu.Unlock()
	if done == nil {
		return
	}
	<-done
}
