package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"KeikoHub/internal/announcer"
	"KeikoHub/internal/entity"
	"KeikoHub/internal/passage"

	"github.com/sirupsen/logrus"
)

var (
	ErrSessionClosed  = errors.New("session closed")
	ErrUnknownCommand = errors.New("unknown command")
)

type Config struct {
	Passage  *entity.Passage
	Voices   announcer.Voices
	Audio    announcer.AudioPlayer
	Resolver announcer.CueResolver
	// Splitter splits weapons attack keys, usually the curriculum index's.
	Splitter func(key string) (weapon, attack string)
	Emit     func(Event) error
	// OnComplete runs once when the last technique is passed.
	OnComplete   func(p *entity.Passage, summary entity.PassageSummary)
	TickInterval time.Duration
}

// Session plays one passage: it announces each technique and advances when the
// countdown between techniques runs out.
type Session struct {
	cfg       Config
	player    *passage.Player
	announcer *announcer.Announcer
	log       *logrus.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// advanceMu serialises advances so a skip and an expiring countdown cannot both
	// move past the same technique.
	advanceMu sync.Mutex

	mu             sync.Mutex
	countdown      int
	countdownFor   int
	cancelAnnounce context.CancelFunc
	announceDone   chan struct{}
	unsubscribe    func()
	started        bool
	finished       bool
	done           chan struct{}
	closeOnce      sync.Once
}

func New(cfg Config, log *logrus.Logger) *Session {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}

	s := &Session{
		cfg:  cfg,
		log:  log,
		done: make(chan struct{}),
	}

	var opts []announcer.Option
	if cfg.Splitter != nil {
		opts = append(opts, announcer.WithWeaponSplitter(cfg.Splitter))
	}
	s.announcer = announcer.New(cfg.Audio, cfg.Resolver, log, opts...)
	s.player = passage.NewPlayer(log,
		passage.WithTickInterval(cfg.TickInterval),
		passage.WithTickHook(s.onTick))

	return s
}

// Start begins playback and announces the first technique.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return fmt.Errorf("session for passage %s already started", s.cfg.Passage.ID)
	}
	s.started = true
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.countdown = s.cfg.Passage.TimeBetweenTechniques
	s.countdownFor = 0
	s.mu.Unlock()

	s.announcer.Reset()

	states, unsubscribe := s.player.Subscribe()
	s.mu.Lock()
	s.unsubscribe = unsubscribe
	s.mu.Unlock()

	s.wg.Add(1)
	go s.forward(states)

	if err := s.player.Start(s.cfg.Passage); err != nil {
		s.Close()
		return err
	}

	s.log.WithFields(logrus.Fields{
		"passage_id": s.cfg.Passage.ID,
		"grade":      s.cfg.Passage.Grade,
	}).Info("Live session started")

	s.announceCurrent()
	return nil
}

// Handle applies a client command.
func (s *Session) Handle(cmd Command) error {
	select {
	case <-s.done:
		return ErrSessionClosed
	default:
	}

	switch cmd {
	case CommandPause:
		s.player.Pause()
	case CommandResume:
		s.player.Resume()
	case CommandSkip:
		s.advanceFrom(s.player.State().CurrentTechniqueIndex)
	case CommandStop:
		s.Close()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd)
	}
	return nil
}

func (s *Session) State() entity.PassageState {
	return s.player.State()
}

func (s *Session) Passage() *entity.Passage {
	return s.cfg.Passage
}

// Done is closed once the passage completes or the session is closed.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Close stops playback and waits for the session goroutines. It must not be called
// from an Emit or OnComplete callback.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		if s.cancel != nil {
			s.cancel()
		}
		if s.cancelAnnounce != nil {
			s.cancelAnnounce()
		}
		unsubscribe := s.unsubscribe
		s.mu.Unlock()

		s.player.Stop()
		if unsubscribe != nil {
			unsubscribe()
		}
		s.wg.Wait()
		s.markDone()

		s.log.WithFields(logrus.Fields{
			"passage_id": s.cfg.Passage.ID,
		}).Debug("Live session closed")
	})
}

// onTick counts down the technique the tick was measured on. Ticks for a technique
// already left behind are dropped.
func (s *Session) onTick(state entity.PassageState) {
	s.mu.Lock()
	if state.CurrentTechniqueIndex != s.countdownFor {
		s.mu.Unlock()
		return
	}
	s.countdown--
	expired := s.countdown <= 0
	s.mu.Unlock()

	if expired {
		s.advanceFrom(state.CurrentTechniqueIndex)
	}
}

// advanceFrom moves past technique from, unless the session is no longer on it.
func (s *Session) advanceFrom(from int) {
	s.advanceMu.Lock()
	defer s.advanceMu.Unlock()

	s.mu.Lock()
	if s.finished || s.ctx == nil || s.ctx.Err() != nil {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	if s.player.State().CurrentTechniqueIndex != from {
		return
	}

	s.mu.Lock()
	if s.cancelAnnounce != nil {
		s.cancelAnnounce()
	}
	s.mu.Unlock()

	if !s.player.Advance() {
		return
	}

	state := s.player.State()
	if state.Completed() {
		s.finish()
		return
	}

	s.mu.Lock()
	s.countdown = s.cfg.Passage.TimeBetweenTechniques
	s.countdownFor = state.CurrentTechniqueIndex
	s.mu.Unlock()

	s.announceCurrent()
}

func (s *Session) finish() {
	s.mu.Lock()
	if s.finished {
		s.mu.Unlock()
		return
	}
	s.finished = true
	s.mu.Unlock()

	summary, _ := s.player.Summary()
	state := s.player.State()

	s.emit(Event{Type: EventCompleted, State: &state, Summary: &summary})
	if s.cfg.OnComplete != nil {
		s.cfg.OnComplete(state.CurrentPassage, summary)
	}

	s.log.WithFields(logrus.Fields{
		"passage_id": s.cfg.Passage.ID,
		"techniques": summary.TotalTechniques,
		"elapsed":    summary.Duration,
	}).Info("Live session completed")

	s.markDone()
}

// announceCurrent announces the current technique once the previous announcement,
// already cancelled, has returned, so cues never overlap.
func (s *Session) announceCurrent() {
	technique, ok := s.player.CurrentTechnique()
	if !ok {
		return
	}

	s.mu.Lock()
	if s.ctx.Err() != nil {
		s.mu.Unlock()
		return
	}
	if s.cancelAnnounce != nil {
		s.cancelAnnounce()
	}
	ctx, cancel := context.WithCancel(s.ctx)
	s.cancelAnnounce = cancel
	previous := s.announceDone
	done := make(chan struct{})
	s.announceDone = done
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		defer close(done)
		defer cancel()

		if previous != nil {
			<-previous
		}

		err := s.announcer.Announce(ctx, technique, s.cfg.Voices)
		if err == nil || errors.Is(err, context.Canceled) {
			return
		}

		var annErr *announcer.AnnouncementError
		if errors.As(err, &annErr) {
			s.emit(Event{Type: EventAnnouncementError, Technique: &technique, Error: err.Error()})
		}
		s.log.WithFields(logrus.Fields{
			"passage_id": s.cfg.Passage.ID,
			"technique":  technique.Key().String(),
			"voice":      s.cfg.Voices.Technique,
			"error":      err.Error(),
		}).Error("Failed to announce technique")
	}()
}

func (s *Session) forward(states <-chan entity.PassageState) {
	defer s.wg.Done()

	for state := range states {
		if state.CurrentPassage == nil {
			continue
		}
		s.mu.Lock()
		countdown := s.countdown
		s.mu.Unlock()

		st := state
		s.emit(Event{
			Type:      EventState,
			State:     &st,
			Countdown: max(countdown, 0),
			Remaining: max(st.CurrentPassage.Duration*60-st.ElapsedTime, 0),
		})
	}
}

func (s *Session) emit(ev Event) {
	if s.cfg.Emit == nil {
		return
	}
	if err := s.cfg.Emit(ev); err != nil {
		s.log.WithFields(logrus.Fields{
			"passage_id": s.cfg.Passage.ID,
			"event":      ev.Type,
			"error":      err.Error(),
		}).Warn("Failed to emit session event")
	}
}

func (s *Session) markDone() {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.done:
	default:
		close(s.done)
	}
}
