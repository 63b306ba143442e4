package passage

import (
	"errors"
	"sync"
	"time"

	"KeikoHub/internal/entity"

	"github.com/sirupsen/logrus"
)

var ErrEmptyPassage = errors.New("passage has no techniques")

// Player owns the playback state of one passage at a time. The elapsed-time ticker
// runs on its own goroutine; pausing gates its effect instead of stopping it.
type Player struct {
	log      *logrus.Logger
	now      func() time.Time
	interval time.Duration
	onTick   func(entity.PassageState)

	mu    sync.Mutex
	state entity.PassageState
	gen   int
	stop  chan struct{}
	done  chan struct{}

	subs    map[int]chan entity.PassageState
	nextSub int
}

type PlayerOption func(*Player)

func WithPlayerClock(now func() time.Time) PlayerOption {
	return func(p *Player) {
		p.now = now
	}
}

func WithTickInterval(d time.Duration) PlayerOption {
	return func(p *Player) {
		p.interval = d
	}
}

// WithTickHook registers fn to run after every tick that advanced the elapsed time.
func WithTickHook(fn func(entity.PassageState)) PlayerOption {
	return func(p *Player) {
		p.onTick = fn
	}
}

func NewPlayer(log *logrus.Logger, opts ...PlayerOption) *Player {
	p := &Player{
		log:      log,
		now:      time.Now,
		interval: time.Second,
		subs:     make(map[int]chan entity.PassageState),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.log == nil {
		p.log = logrus.StandardLogger()
	}
	return p
}

// Start resets the playback onto passage and starts the ticker. A passage already
// playing is abandoned.
func (p *Player) Start(passage *entity.Passage) error {
	if passage == nil || len(passage.Techniques) == 0 {
		return ErrEmptyPassage
	}

	p.mu.Lock()
	p.haltTickerLocked()

	p.gen++
	p.state = entity.PassageState{
		CurrentPassage:        passage,
		CurrentTechniqueIndex: 0,
		IsPlaying:             true,
		IsPaused:              false,
		ElapsedTime:           0,
		Progress:              0,
	}
	p.stop = make(chan struct{})
	p.done = make(chan struct{})
	go p.run(p.gen, p.stop, p.done)

	p.publishLocked()
	p.mu.Unlock()

	p.log.WithFields(logrus.Fields{
		"passage_id": passage.ID,
		"techniques": len(passage.Techniques),
	}).Debug("Passage started")

	return nil
}

func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.state.IsPlaying || p.state.IsPaused {
		return
	}
	p.state.IsPaused = true
	p.publishLocked()
}

func (p *Player) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.state.IsPlaying || !p.state.IsPaused {
		return
	}
	p.state.IsPaused = false
	p.publishLocked()
}

// Advance moves to the next technique and reports whether anything changed. Passing
// the last technique completes the passage; once completed it is a no-op.
func (p *Player) Advance() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.state.IsPlaying || p.state.CurrentPassage == nil {
		return false
	}

	total := len(p.state.CurrentPassage.Techniques)
	if p.state.CurrentTechniqueIndex+1 < total {
		p.state.CurrentTechniqueIndex++
		p.state.Progress = float64(p.state.CurrentTechniqueIndex) / float64(total) * 100
		p.publishLocked()
		return true
	}

	p.haltTickerLocked()
	p.state.IsPlaying = false
	p.state.IsPaused = false
	p.state.CurrentTechniqueIndex = total - 1
	p.state.Progress = 100
	if p.state.CurrentPassage.CompletedAt == nil {
		completedAt := p.now()
		p.state.CurrentPassage.CompletedAt = &completedAt
	}
	p.publishLocked()

	p.log.WithFields(logrus.Fields{
		"passage_id": p.state.CurrentPassage.ID,
		"elapsed":    p.state.ElapsedTime,
	}).Debug("Passage completed")

	return true
}

// Stop halts the ticker and waits for it to exit. The passage is left as is.
func (p *Player) Stop() {
	p.mu.Lock()
	done := p.done
	p.haltTickerLocked()
	if p.state.IsPlaying {
		p.state.IsPlaying = false
		p.state.IsPaused = false
		p.publishLocked()
	}
	p.mu.Unlock()

	if done != nil {
		<-done
	}
}

func (p *Player) CurrentTechnique() (entity.Technique, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state.CurrentPassage == nil {
		return entity.Technique{}, false
	}
	return p.state.CurrentPassage.Techniques[p.state.CurrentTechniqueIndex], true
}

// State returns a snapshot safe to read after the lock is released.
func (p *Player) State() entity.PassageState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

// RemainingTime is the configured duration minus the elapsed time, in seconds.
func (p *Player) RemainingTime() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state.CurrentPassage == nil {
		return 0
	}
	return max(p.state.CurrentPassage.Duration*60-p.state.ElapsedTime, 0)
}

func (p *Player) Summary() (entity.PassageSummary, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state.CurrentPassage == nil {
		return entity.PassageSummary{}, false
	}
	return entity.PassageSummary{
		TotalTechniques: len(p.state.CurrentPassage.Techniques),
		Duration:        p.state.ElapsedTime,
		IncludeRandori:  p.state.CurrentPassage.Filters.IncludeRandori,
	}, true
}

// Subscribe returns a stream of state snapshots. A slow subscriber only misses
// intermediate snapshots, never the latest one.
func (p *Player) Subscribe() (<-chan entity.PassageState, func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextSub
	p.nextSub++
	ch := make(chan entity.PassageState, 1)
	p.subs[id] = ch
	ch <- p.snapshotLocked()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			delete(p.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

func (p *Player) run(gen int, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			p.tickFor(gen)
		}
	}
}

func (p *Player) tick() {
	p.mu.Lock()
	gen := p.gen
	p.mu.Unlock()
	p.tickFor(gen)
}

func (p *Player) tickFor(gen int) {
	p.mu.Lock()
	if gen != p.gen || !p.state.IsPlaying || p.state.IsPaused {
		p.mu.Unlock()
		return
	}
	p.state.ElapsedTime++
	p.publishLocked()
	snapshot := p.snapshotLocked()
	p.mu.Unlock()

	if p.onTick != nil {
		p.onTick(snapshot)
	}
}

func (p *Player) haltTickerLocked() {
	if p.stop != nil {
		close(p.stop)
		p.stop = nil
	}
}

func (p *Player) snapshotLocked() entity.PassageState {
	s := p.state
	if s.CurrentPassage != nil {
		cp := *s.CurrentPassage
		s.CurrentPassage = &cp
	}
	return s
}

func (p *Player) publishLocked() {
	snapshot := p.snapshotLocked()
	for _, ch := range p.subs {
		select {
		case ch <- snapshot:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snapshot:
		default:
		}
	}
}
