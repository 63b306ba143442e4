package announcer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"KeikoHub/internal/curriculum"
	"KeikoHub/internal/entity"

	"github.com/sirupsen/logrus"
)

type Segment string

const (
	SegmentPosition  Segment = "position"
	SegmentAttack    Segment = "attack"
	SegmentTechnique Segment = "technique"
)

type Cue struct {
	Segment Segment `json:"segment"`
	Text    string  `json:"text"`
}

// Resource is a resolved cue ready to be played.
type Resource struct {
	Cue   Cue    `json:"cue"`
	Voice string `json:"voice"`
	Path  string `json:"path"`
}

// AudioPlayer plays one resource to completion. Stop must halt and rewind whatever
// is playing so the next Play starts from the beginning.
type AudioPlayer interface {
	Play(ctx context.Context, res Resource) error
	Stop()
}

type CueResolver interface {
	Resolve(cue, voice string) (string, error)
}

// Voices selects a voice per segment.
type Voices struct {
	Position  string `json:"position"`
	Attack    string `json:"attack"`
	Technique string `json:"technique"`
}

func UniformVoices(voice string) Voices {
	return Voices{Position: voice, Attack: voice, Technique: voice}
}

func (v Voices) For(segment Segment) string {
	switch segment {
	case SegmentPosition:
		return v.Position
	case SegmentAttack:
		return v.Attack
	default:
		return v.Technique
	}
}

type memory struct {
	position  string
	attack    string
	technique string
}

type Announcer struct {
	player   AudioPlayer
	resolver CueResolver
	split    func(key string) (weapon, attack string)
	log      *logrus.Logger

	mu      sync.Mutex
	last    memory
	hasLast bool
}

type Option func(*Announcer)

// WithWeaponSplitter sets how a weapons attack key splits into weapon and attack.
func WithWeaponSplitter(split func(key string) (weapon, attack string)) Option {
	return func(a *Announcer) {
		a.split = split
	}
}

func New(player AudioPlayer, resolver CueResolver, log *logrus.Logger, opts ...Option) *Announcer {
	a := &Announcer{
		player:   player,
		resolver: resolver,
		split:    curriculum.SplitWeaponKey,
		log:      log,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.log == nil {
		a.log = logrus.StandardLogger()
	}
	return a
}

// Reset forgets the last announcement so the next technique is announced in full.
func (a *Announcer) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.last = memory{}
	a.hasLast = false
}

// Plan returns the cues Announce would play for t, in playback order.
func (a *Announcer) Plan(t entity.Technique) []Cue {
	a.mu.Lock()
	last, hasLast := a.last, a.hasLast
	a.mu.Unlock()

	cues, _ := a.plan(t, last, hasLast)
	return cues
}

// Announce plays the cues for t one after the other. Position and attack failures
// are logged and skipped; a technique-name failure is returned as an
// *AnnouncementError. The memory only moves forward when the call succeeds.
func (a *Announcer) Announce(ctx context.Context, t entity.Technique, voices Voices) error {
	a.mu.Lock()
	last, hasLast := a.last, a.hasLast
	a.mu.Unlock()

	cues, next := a.plan(t, last, hasLast)

	for _, cue := range cues {
		if err := ctx.Err(); err != nil {
			a.player.Stop()
			return err
		}

		voice := voices.For(cue.Segment)
		err := a.play(ctx, cue, voice)
		if err == nil {
			continue
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			a.player.Stop()
			return ctxErr
		}

		if cue.Segment == SegmentTechnique {
			return &AnnouncementError{Technique: t, Voice: voice, Cue: cue, Err: err}
		}

		a.log.WithFields(logrus.Fields{
			"segment":   cue.Segment,
			"cue":       cue.Text,
			"voice":     voice,
			"technique": t.Key().String(),
			"error":     err.Error(),
		}).Warn("Skipping audio cue")
	}

	a.mu.Lock()
	a.last, a.hasLast = next, true
	a.mu.Unlock()

	return nil
}

func (a *Announcer) play(ctx context.Context, cue Cue, voice string) error {
	path, err := a.resolver.Resolve(cue.Text, voice)
	if err != nil {
		return err
	}

	err = a.player.Play(ctx, Resource{Cue: cue, Voice: voice, Path: path})
	if err == nil || errors.Is(err, ErrAudioPlayback) || ctx.Err() != nil {
		return err
	}
	return fmt.Errorf("%w: %w", ErrAudioPlayback, err)
}

func (a *Announcer) plan(t entity.Technique, last memory, hasLast bool) ([]Cue, memory) {
	if t.IsRandori() {
		next := memory{position: entity.RandoriName, technique: entity.RandoriName}
		if hasLast && last.technique == entity.RandoriName {
			return nil, next
		}
		return []Cue{{Segment: SegmentTechnique, Text: entity.RandoriName}}, next
	}

	current := a.effective(t)

	var cues []Cue
	switch {
	case !hasLast || current.position != last.position:
		cues = append(cues, Cue{Segment: SegmentPosition, Text: current.position})
		cues = appendAttack(cues, current.attack)
		cues = append(cues, Cue{Segment: SegmentTechnique, Text: current.technique})
	case current.attack != last.attack:
		cues = appendAttack(cues, current.attack)
		cues = append(cues, Cue{Segment: SegmentTechnique, Text: current.technique})
	case current.technique != last.technique:
		cues = append(cues, Cue{Segment: SegmentTechnique, Text: current.technique})
	}

	return cues, current
}

// effective replaces the weapons position by the weapon itself; bare weapon entries
// have no attack level.
func (a *Announcer) effective(t entity.Technique) memory {
	if t.Position != entity.Weapons {
		return memory{
			position:  t.Position.SpokenName(),
			attack:    t.Attack,
			technique: t.Technique,
		}
	}

	weapon, attack := a.split(t.Attack)
	return memory{
		position:  weapon,
		attack:    attack,
		technique: t.Technique,
	}
}

func appendAttack(cues []Cue, attack string) []Cue {
	if attack == "" {
		return cues
	}
	return append(cues, Cue{Segment: SegmentAttack, Text: attack})
}
