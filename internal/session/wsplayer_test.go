package session

import (
	"context"
	"testing"
	"time"

	"KeikoHub/internal/announcer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSinkPlayer(timeout time.Duration) (*WSPlayer, chan Event) {
	sent := make(chan Event, 8)
	return NewWSPlayer(func(ev Event) error {
		sent <- ev
		return nil
	}, timeout), sent
}

var testResource = announcer.Resource{
	Cue:   announcer.Cue{Segment: announcer.SegmentTechnique, Text: "Ikkyo"},
	Voice: "French/Male1",
	Path:  "/audio/French/Male1/ikkyo.mp3",
}

func TestWSPlayer(t *testing.T) {
	t.Run("cue ended", func(t *testing.T) {
		p, sent := newSinkPlayer(time.Second)
		errc := make(chan error, 1)
		go func() { errc <- p.Play(context.Background(), testResource) }()

		ev := <-sent
		assert.Equal(t, EventCue, ev.Type)
		require.NotNil(t, ev.Cue)
		assert.Equal(t, testResource.Path, ev.Cue.Path)

		p.Ack("unknown", "")
		p.Ack(ev.CueID, "")
		assert.NoError(t, <-errc)
	})

	t.Run("cue error", func(t *testing.T) {
		p, sent := newSinkPlayer(time.Second)
		errc := make(chan error, 1)
		go func() { errc <- p.Play(context.Background(), testResource) }()

		ev := <-sent
		p.Ack(ev.CueID, "NotAllowedError")
		err := <-errc
		assert.ErrorIs(t, err, announcer.ErrAudioPlayback)
		assert.Contains(t, err.Error(), "NotAllowedError")
	})

	t.Run("timeout", func(t *testing.T) {
		p, _ := newSinkPlayer(10 * time.Millisecond)
		err := p.Play(context.Background(), testResource)
		assert.ErrorIs(t, err, announcer.ErrAudioPlayback)
	})

	t.Run("cancelled", func(t *testing.T) {
		p, sent := newSinkPlayer(time.Second)
		ctx, cancel := context.WithCancel(context.Background())
		errc := make(chan error, 1)
		go func() { errc <- p.Play(ctx, testResource) }()

		<-sent
		cancel()
		assert.ErrorIs(t, <-errc, context.Canceled)
	})

	t.Run("stop", func(t *testing.T) {
		p, sent := newSinkPlayer(time.Second)
		p.Stop()
		assert.Equal(t, EventStopAudio, (<-sent).Type)
	})
}
