package finance_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian/forecast-engine/finance"
)

// =============================================================================
// FAKE ENGINES
// =============================================================================

// recordingEngine records every dispatch and returns a canned trajectory.
type recordingEngine struct {
	mu     sync.Mutex
	inputs []finance.Input
	events *[]string // shared event log, appended under mu
	err    error
}

func (e *recordingEngine) Project(_ context.Context, in finance.Input) (finance.Trajectory, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.inputs = append(e.inputs, in)
	if e.events != nil {
		*e.events = append(*e.events, "dispatch")
	}
	if e.err != nil {
		return nil, e.err
	}
	return finance.Trajectory{{Year: 0, Balance: decimal.NewFromInt(int64(len(e.inputs)))}}, nil
}

func (e *recordingEngine) calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.inputs)
}

// blockingEngine parks every call until its release channel is fed.
type blockingEngine struct {
	mu    sync.Mutex
	calls []chan finance.Trajectory
}

func (e *blockingEngine) Project(_ context.Context, _ finance.Input) (finance.Trajectory, error) {
	release := make(chan finance.Trajectory)
	e.mu.Lock()
	e.calls = append(e.calls, release)
	e.mu.Unlock()
	return <-release, nil
}

func (e *blockingEngine) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.calls)
}

func (e *blockingEngine) release(i int, traj finance.Trajectory) {
	e.mu.Lock()
	release := e.calls[i]
	e.mu.Unlock()
	release <- traj
}

// =============================================================================
// TEST FIXTURES
// =============================================================================

func oneCategory() []finance.NormalizedCategory {
	return []finance.NormalizedCategory{{Category: finance.Category{ID: "cat-1"}}}
}

func oneSalary() []finance.NormalizedSalary {
	return []finance.NormalizedSalary{{Salary: finance.Salary{ID: "sal-1"}}}
}

func settings(years int) finance.Settings {
	return finance.Settings{
		User: finance.User{
			ID:          "user-1",
			Currency:    finance.CurrencyUSD,
			InvestPerc:  decimal.NewFromFloat(0.5),
			IndexReturn: decimal.NewFromFloat(0.05),
		},
		Years: years,
	}
}

// =============================================================================
// JOIN BEHAVIOR
// =============================================================================

func TestOrchestrator_NoDispatchBeforeAllThreeInputs(t *testing.T) {
	ctx := context.Background()
	engine := &recordingEngine{}
	orch := finance.NewOrchestrator(engine)

	orch.SetCategories(ctx, oneCategory())
	assert.Equal(t, finance.StateAwaitingInputs, orch.State())
	assert.Equal(t, 0, engine.calls())

	orch.SetSalaries(ctx, oneSalary())
	assert.Equal(t, finance.StateAwaitingInputs, orch.State())
	assert.Equal(t, 0, engine.calls())

	orch.SetSettings(ctx, settings(10))
	assert.Equal(t, finance.StateComplete, orch.State())
	assert.Equal(t, 1, engine.calls(), "exactly one dispatch once all inputs are present")
}

func TestOrchestrator_ArrivalOrderIrrelevant(t *testing.T) {
	ctx := context.Background()
	engine := &recordingEngine{}
	orch := finance.NewOrchestrator(engine)

	orch.SetSettings(ctx, settings(10))
	orch.SetSalaries(ctx, oneSalary())
	assert.Equal(t, 0, engine.calls())

	orch.SetCategories(ctx, oneCategory())
	assert.Equal(t, 1, engine.calls())
	assert.Equal(t, finance.StateComplete, orch.State())
}

func TestOrchestrator_GatedWhenCollectionsEmpty(t *testing.T) {
	ctx := context.Background()
	engine := &recordingEngine{}
	orch := finance.NewOrchestrator(engine)

	orch.SetCategories(ctx, []finance.NormalizedCategory{})
	orch.SetSalaries(ctx, oneSalary())
	orch.SetSettings(ctx, settings(10))

	assert.Equal(t, finance.StateGated, orch.State())
	assert.Equal(t, 0, engine.calls(), "no dispatch while gated")
	assert.Nil(t, orch.Result())

	// Categories re-resolve non-empty: the gate passes and one dispatch fires.
	orch.SetCategories(ctx, oneCategory())
	assert.Equal(t, finance.StateComplete, orch.State())
	assert.Equal(t, 1, engine.calls())
}

func TestOrchestrator_LoadingClearPrecedesDispatch(t *testing.T) {
	ctx := context.Background()
	var events []string
	engine := &recordingEngine{events: &events}
	orch := finance.NewOrchestrator(engine)
	orch.OnLoading = func(loading bool) {
		if !loading {
			events = append(events, "loading-clear")
		}
	}

	require.True(t, orch.Loading())

	orch.SetCategories(ctx, oneCategory())
	orch.SetSalaries(ctx, oneSalary())
	orch.SetSettings(ctx, settings(10))

	require.Len(t, events, 2)
	assert.Equal(t, []string{"loading-clear", "dispatch"}, events)
	assert.False(t, orch.Loading())
}

func TestOrchestrator_EveryQualifyingChangeRedispatches(t *testing.T) {
	ctx := context.Background()
	engine := &recordingEngine{}
	orch := finance.NewOrchestrator(engine)

	orch.SetCategories(ctx, oneCategory())
	orch.SetSalaries(ctx, oneSalary())
	orch.SetSettings(ctx, settings(10))
	require.Equal(t, 1, engine.calls())

	// Identical settings again: no content memoization, fresh dispatch.
	orch.SetSettings(ctx, settings(10))
	assert.Equal(t, 2, engine.calls())

	// Horizon change: fresh dispatch with the new years value.
	orch.SetSettings(ctx, settings(25))
	require.Equal(t, 3, engine.calls())
	assert.Equal(t, 25, engine.inputs[2].Years)
}

func TestOrchestrator_AssemblesInputFromSettings(t *testing.T) {
	ctx := context.Background()
	engine := &recordingEngine{}
	orch := finance.NewOrchestrator(engine)

	orch.SetCategories(ctx, oneCategory())
	orch.SetSalaries(ctx, oneSalary())
	orch.SetSettings(ctx, settings(15))

	require.Equal(t, 1, engine.calls())
	in := engine.inputs[0]
	assert.Equal(t, 15, in.Years)
	assert.Equal(t, finance.CurrencyUSD, in.BaseCurrency)
	assert.True(t, in.InvestPerc.Equal(decimal.NewFromFloat(0.5)))
	assert.True(t, in.IndexReturn.Equal(decimal.NewFromFloat(0.05)))
	assert.Len(t, in.Categories, 1)
	assert.Len(t, in.Salaries, 1)
}

// =============================================================================
// FAILURE + SUPERSESSION
// =============================================================================

func TestOrchestrator_EngineFailureIsDistinctFromGated(t *testing.T) {
	ctx := context.Background()
	engine := &recordingEngine{err: errors.New("boom")}
	orch := finance.NewOrchestrator(engine)

	orch.SetCategories(ctx, oneCategory())
	orch.SetSalaries(ctx, oneSalary())
	orch.SetSettings(ctx, settings(10))

	assert.Equal(t, finance.StateFailed, orch.State())
	assert.EqualError(t, orch.Err(), "boom")
	assert.Nil(t, orch.Result())
}

func TestOrchestrator_StaleResultDiscarded(t *testing.T) {
	ctx := context.Background()
	engine := &blockingEngine{}
	orch := finance.NewOrchestrator(engine)
	orch.Async = true

	orch.SetCategories(ctx, oneCategory())
	orch.SetSalaries(ctx, oneSalary())
	orch.SetSettings(ctx, settings(10))

	// Second qualifying change while the first run is still in flight.
	orch.SetSettings(ctx, settings(20))
	require.Eventually(t, func() bool { return engine.callCount() == 2 },
		time.Second, time.Millisecond, "both dispatches should be in flight")

	// The superseded run resolves first; its result must be discarded.
	stale := finance.Trajectory{{Year: 0, Balance: decimal.NewFromInt(-1)}}
	engine.release(0, stale)

	require.Eventually(t, func() bool { return orch.State() == finance.StateRunning },
		time.Second, time.Millisecond)
	assert.Nil(t, orch.Result(), "stale trajectory must not land in the result slot")

	latest := finance.Trajectory{{Year: 0, Balance: decimal.NewFromInt(42)}}
	engine.release(1, latest)
	orch.Wait()

	assert.Equal(t, finance.StateComplete, orch.State())
	require.Len(t, orch.Result(), 1)
	assert.True(t, orch.Result()[0].Balance.Equal(decimal.NewFromInt(42)))
}
