package announcer

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"KeikoHub/internal/entity"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPlayer struct {
	mu     sync.Mutex
	played []Resource
	stops  int
	fail   map[string]error
	block  map[string]bool
}

func (p *recordingPlayer) Play(ctx context.Context, res Resource) error {
	p.mu.Lock()
	p.played = append(p.played, res)
	err := p.fail[res.Cue.Text]
	block := p.block[res.Cue.Text]
	p.mu.Unlock()

	if block {
		<-ctx.Done()
		return ctx.Err()
	}
	return err
}

func (p *recordingPlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stops++
}

func (p *recordingPlayer) texts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.played))
	for _, r := range p.played {
		out = append(out, r.Cue.Text)
	}
	return out
}

func (p *recordingPlayer) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.played = nil
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestAnnouncer(opts ...Option) (*Announcer, *recordingPlayer) {
	player := &recordingPlayer{fail: map[string]error{}, block: map[string]bool{}}
	return New(player, NewResolver("assets/audio"), quietLogger(), opts...), player
}

var voices = UniformVoices("French/Male1")

func announce(t *testing.T, a *Announcer, p *recordingPlayer, tech entity.Technique) []string {
	t.Helper()
	p.reset()
	require.NoError(t, a.Announce(context.Background(), tech, voices))
	return p.texts()
}

func TestAnnouncer_SamePositionAndAttack(t *testing.T) {
	a, p := newTestAnnouncer()

	first := entity.Technique{Position: entity.KneelingStance, Attack: "Front strike", Technique: "First control"}
	second := entity.Technique{Position: entity.KneelingStance, Attack: "Front strike", Technique: "Second control"}

	assert.Equal(t, []string{"Suwari waza", "Front strike", "First control"}, announce(t, a, p, first))
	assert.Equal(t, []string{"Second control"}, announce(t, a, p, second))
}

func TestAnnouncer_PositionChangeForcesLowerLevels(t *testing.T) {
	a, p := newTestAnnouncer()

	first := entity.Technique{Position: entity.KneelingStance, Attack: "Front strike", Technique: "First control"}
	second := entity.Technique{Position: entity.HalfStandingStance, Attack: "Front strike", Technique: "First control"}

	announce(t, a, p, first)
	assert.Equal(t, []string{"Hanmi handachi waza", "Front strike", "First control"}, announce(t, a, p, second))
}

func TestAnnouncer_AttackChange(t *testing.T) {
	a, p := newTestAnnouncer()

	announce(t, a, p, entity.Technique{Position: entity.StandingStance, Attack: "Shomen uchi", Technique: "Ikkyo"})
	assert.Equal(t, []string{"Yokomen uchi", "Ikkyo"},
		announce(t, a, p, entity.Technique{Position: entity.StandingStance, Attack: "Yokomen uchi", Technique: "Ikkyo"}))
}

func TestAnnouncer_RepeatedTechniqueIsSilent(t *testing.T) {
	a, p := newTestAnnouncer()
	tech := entity.Technique{Position: entity.StandingStance, Attack: "Shomen uchi", Technique: "Ikkyo"}

	announce(t, a, p, tech)
	assert.Empty(t, announce(t, a, p, tech))
}

func TestAnnouncer_Randori(t *testing.T) {
	a, p := newTestAnnouncer()

	announce(t, a, p, entity.Technique{Position: entity.StandingStance, Attack: "Shomen uchi", Technique: "Ikkyo"})
	assert.Equal(t, []string{"Randori"}, announce(t, a, p, entity.NewRandori()))
	assert.Empty(t, announce(t, a, p, entity.NewRandori()))

	a.Reset()
	assert.Equal(t, []string{"Randori"}, announce(t, a, p, entity.NewRandori()))
}

func TestAnnouncer_Weapons(t *testing.T) {
	split := func(key string) (string, string) {
		if key == "Jo dori" || key == "Ken tai ken" {
			return key, ""
		}
		if key == "Tanto dori-Shomen uchi" {
			return "Tanto dori", "Shomen uchi"
		}
		return key, ""
	}
	a, p := newTestAnnouncer(WithWeaponSplitter(split))

	t.Run("compound weapon key", func(t *testing.T) {
		assert.Equal(t, []string{"Tanto dori", "Shomen uchi", "Gokyo"},
			announce(t, a, p, entity.Technique{Position: entity.Weapons, Attack: "Tanto dori-Shomen uchi", Technique: "Gokyo"}))
	})

	t.Run("bare weapon has no attack level", func(t *testing.T) {
		assert.Equal(t, []string{"Jo dori", "Kote gaeshi"},
			announce(t, a, p, entity.Technique{Position: entity.Weapons, Attack: "Jo dori", Technique: "Kote gaeshi"}))
		assert.Equal(t, []string{"Shiho nage"},
			announce(t, a, p, entity.Technique{Position: entity.Weapons, Attack: "Jo dori", Technique: "Shiho nage"}))
	})

	t.Run("weapon change", func(t *testing.T) {
		assert.Equal(t, []string{"Ken tai ken", "Jiyu waza"},
			announce(t, a, p, entity.Technique{Position: entity.Weapons, Attack: "Ken tai ken", Technique: "Jiyu waza"}))
	})
}

func TestAnnouncer_DefaultSplitter(t *testing.T) {
	a, p := newTestAnnouncer()
	assert.Equal(t, []string{"Tanto dori", "Tsuki", "Kote gaeshi"},
		announce(t, a, p, entity.Technique{Position: entity.Weapons, Attack: "Tanto dori-Tsuki", Technique: "Kote gaeshi"}))
}

func TestAnnouncer_FailureIsolation(t *testing.T) {
	tech := entity.Technique{Position: entity.KneelingStance, Attack: "Shomen uchi", Technique: "Ikkyo"}

	t.Run("position and attack failures are swallowed", func(t *testing.T) {
		a, p := newTestAnnouncer()
		p.fail["Suwari waza"] = errors.New("decode error")
		p.fail["Shomen uchi"] = errors.New("decode error")

		require.NoError(t, a.Announce(context.Background(), tech, voices))
		assert.Equal(t, []string{"Suwari waza", "Shomen uchi", "Ikkyo"}, p.texts())

		p.reset()
		require.NoError(t, a.Announce(context.Background(), tech, voices))
		assert.Empty(t, p.texts(), "memory should have moved forward")
	})

	t.Run("technique failure propagates", func(t *testing.T) {
		a, p := newTestAnnouncer()
		p.fail["Ikkyo"] = errors.New("decode error")

		err := a.Announce(context.Background(), tech, voices)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrAudioPlayback)

		var annErr *AnnouncementError
		require.ErrorAs(t, err, &annErr)
		assert.Equal(t, tech, annErr.Technique)
		assert.Equal(t, "French/Male1", annErr.Voice)
		assert.Equal(t, SegmentTechnique, annErr.Cue.Segment)

		assert.Len(t, a.Plan(tech), 3, "memory must not move after a failure")
	})

	t.Run("resolution failure of the technique", func(t *testing.T) {
		a, _ := newTestAnnouncer()

		err := a.Announce(context.Background(), tech, Voices{Position: "French/Male1", Attack: "French/Male1", Technique: "bad"})
		assert.ErrorIs(t, err, ErrAudioResolution)
		assert.NotErrorIs(t, err, ErrAudioPlayback)
	})

	t.Run("resolution failure of the position", func(t *testing.T) {
		a, p := newTestAnnouncer()

		err := a.Announce(context.Background(), tech, Voices{Position: "", Attack: "French/Male1", Technique: "French/Male1"})
		require.NoError(t, err)
		assert.Equal(t, []string{"Shomen uchi", "Ikkyo"}, p.texts())
	})
}

func TestAnnouncer_Cancellation(t *testing.T) {
	a, p := newTestAnnouncer()
	p.block["Shomen uchi"] = true
	tech := entity.Technique{Position: entity.KneelingStance, Attack: "Shomen uchi", Technique: "Ikkyo"}

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		errc <- a.Announce(ctx, tech, voices)
	}()

	require.Eventually(t, func() bool {
		return len(p.texts()) == 2
	}, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("announce did not return after cancellation")
	}

	assert.Equal(t, []string{"Suwari waza", "Shomen uchi"}, p.texts(), "technique cue must not play")
	assert.Equal(t, 1, p.stops)
	assert.Len(t, a.Plan(tech), 3)
}

func TestAnnouncer_AlreadyCancelled(t *testing.T) {
	a, p := newTestAnnouncer()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := a.Announce(ctx, entity.Technique{Position: entity.StandingStance, Attack: "Tsuki", Technique: "Ikkyo"}, voices)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, p.texts())
}

func TestAnnouncer_ResourcePaths(t *testing.T) {
	a, p := newTestAnnouncer()
	require.NoError(t, a.Announce(context.Background(),
		entity.Technique{Position: entity.StandingStance, Attack: "Ai hanmi katate dori", Technique: "Irimi nage"},
		Voices{Position: "French/Male1", Attack: "French/Female2", Technique: "Japanese/Male3"}))

	require.Len(t, p.played, 3)
	assert.Equal(t, "assets/audio/French/Male1/tachi_waza.mp3", p.played[0].Path)
	assert.Equal(t, "assets/audio/French/Female2/ai_hanmi_katate_dori.mp3", p.played[1].Path)
	assert.Equal(t, "assets/audio/Japanese/Male3/irimi_nage.mp3", p.played[2].Path)
	assert.Equal(t, "Japanese/Male3", p.played[2].Voice)
}
