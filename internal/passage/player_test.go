package passage

import (
	"testing"
	"time"

	"KeikoHub/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testPassage(n int) *entity.Passage {
	techniques := make([]entity.Technique, n)
	for i := range techniques {
		techniques[i] = entity.Technique{
			Position:  entity.StandingStance,
			Attack:    "Shomen uchi",
			Technique: string(rune('A' + i)),
			Order:     i + 1,
		}
	}
	return &entity.Passage{
		ID:         "01JTESTPASSAGE",
		Grade:      "1er Dan",
		Techniques: techniques,
		Duration:   10,
		Filters:    entity.PassageFilters{IncludeRandori: true},
	}
}

// newTestPlayer uses an interval long enough that only tick() moves the clock.
func newTestPlayer(t *testing.T, opts ...PlayerOption) *Player {
	t.Helper()
	p := NewPlayer(quietLogger(), append([]PlayerOption{WithTickInterval(time.Hour)}, opts...)...)
	t.Cleanup(p.Stop)
	return p
}

func TestPlayer_Idle(t *testing.T) {
	p := newTestPlayer(t)

	_, ok := p.CurrentTechnique()
	assert.False(t, ok)
	assert.False(t, p.Advance())
	assert.Equal(t, entity.PassageState{}, p.State())
	assert.Equal(t, 0, p.RemainingTime())

	_, ok = p.Summary()
	assert.False(t, ok)

	assert.ErrorIs(t, p.Start(nil), ErrEmptyPassage)
	assert.ErrorIs(t, p.Start(&entity.Passage{}), ErrEmptyPassage)
}

func TestPlayer_Start(t *testing.T) {
	p := newTestPlayer(t)
	require.NoError(t, p.Start(testPassage(3)))

	state := p.State()
	assert.True(t, state.IsPlaying)
	assert.False(t, state.IsPaused)
	assert.Equal(t, 0, state.CurrentTechniqueIndex)
	assert.Equal(t, 0, state.ElapsedTime)
	assert.Equal(t, 0.0, state.Progress)

	current, ok := p.CurrentTechnique()
	require.True(t, ok)
	assert.Equal(t, "A", current.Technique)
}

func TestPlayer_PauseResume(t *testing.T) {
	p := newTestPlayer(t)
	require.NoError(t, p.Start(testPassage(3)))

	p.tick()
	p.tick()
	assert.Equal(t, 2, p.State().ElapsedTime)

	p.Pause()
	assert.True(t, p.State().IsPaused)
	p.tick()
	p.tick()
	assert.Equal(t, 2, p.State().ElapsedTime, "paused ticks must not count")

	p.Pause()
	assert.True(t, p.State().IsPaused)

	p.Resume()
	assert.False(t, p.State().IsPaused)
	p.tick()
	assert.Equal(t, 3, p.State().ElapsedTime)

	p.Resume()
	assert.False(t, p.State().IsPaused)
	assert.Equal(t, 10*60-3, p.RemainingTime())
}

func TestPlayer_Completion(t *testing.T) {
	completedAt := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	p := newTestPlayer(t, WithPlayerClock(func() time.Time { return completedAt }))

	const n = 4
	passage := testPassage(n)
	require.NoError(t, p.Start(passage))

	for i := 1; i < n; i++ {
		require.True(t, p.Advance())
		state := p.State()
		assert.Equal(t, i, state.CurrentTechniqueIndex)
		assert.InDelta(t, float64(i)/n*100, state.Progress, 0.0001)
		assert.False(t, state.Completed())
	}

	require.True(t, p.Advance())
	state := p.State()
	assert.False(t, state.IsPlaying)
	assert.False(t, state.IsPaused)
	assert.Equal(t, n-1, state.CurrentTechniqueIndex)
	assert.Equal(t, 100.0, state.Progress)
	require.NotNil(t, state.CurrentPassage.CompletedAt)
	assert.Equal(t, completedAt, *state.CurrentPassage.CompletedAt)
	assert.True(t, state.Completed())
	assert.True(t, passage.IsCompleted())

	assert.False(t, p.Advance())
	assert.Equal(t, state, p.State())

	p.tick()
	assert.Equal(t, state.ElapsedTime, p.State().ElapsedTime)
}

func TestPlayer_AdvanceWhilePaused(t *testing.T) {
	p := newTestPlayer(t)
	require.NoError(t, p.Start(testPassage(2)))

	p.Pause()
	require.True(t, p.Advance())
	state := p.State()
	assert.True(t, state.IsPaused)
	assert.Equal(t, 1, state.CurrentTechniqueIndex)

	require.True(t, p.Advance())
	assert.True(t, p.State().Completed())
}

func TestPlayer_RestartResetsEverything(t *testing.T) {
	p := newTestPlayer(t)
	require.NoError(t, p.Start(testPassage(2)))
	p.tick()
	p.Advance()
	p.Advance()
	require.True(t, p.State().Completed())

	require.NoError(t, p.Start(testPassage(3)))
	state := p.State()
	assert.True(t, state.IsPlaying)
	assert.Equal(t, 0, state.CurrentTechniqueIndex)
	assert.Equal(t, 0, state.ElapsedTime)
	assert.Nil(t, state.CurrentPassage.CompletedAt)
}

func TestPlayer_Summary(t *testing.T) {
	p := newTestPlayer(t)
	require.NoError(t, p.Start(testPassage(3)))
	for range 5 {
		p.tick()
	}

	summary, ok := p.Summary()
	require.True(t, ok)
	assert.Equal(t, entity.PassageSummary{TotalTechniques: 3, Duration: 5, IncludeRandori: true}, summary)
}

func TestPlayer_Subscribe(t *testing.T) {
	p := newTestPlayer(t)
	states, cancel := p.Subscribe()

	initial := <-states
	assert.Nil(t, initial.CurrentPassage)

	require.NoError(t, p.Start(testPassage(3)))
	p.Advance()
	p.Advance()

	latest := <-states
	assert.Equal(t, 2, latest.CurrentTechniqueIndex, "lagging subscriber should get the latest state")

	cancel()
	cancel()
	_, open := <-states
	assert.False(t, open)
}

func TestPlayer_TickerRuns(t *testing.T) {
	ticks := make(chan entity.PassageState, 16)
	p := NewPlayer(quietLogger(),
		WithTickInterval(5*time.Millisecond),
		WithTickHook(func(s entity.PassageState) {
			select {
			case ticks <- s:
			default:
			}
		}))
	require.NoError(t, p.Start(testPassage(2)))

	select {
	case s := <-ticks:
		assert.GreaterOrEqual(t, s.ElapsedTime, 1)
	case <-time.After(2 * time.Second):
		t.Fatal("ticker never fired")
	}

	p.Stop()
	assert.False(t, p.State().IsPlaying)
}
