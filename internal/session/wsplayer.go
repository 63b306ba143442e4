package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"KeikoHub/internal/announcer"
)

const defaultCueTimeout = 15 * time.Second

// WSPlayer plays cues on the remote client: each cue is sent as an event and the
// call waits for the client to report the end of playback.
type WSPlayer struct {
	send    func(Event) error
	timeout time.Duration

	mu      sync.Mutex
	seq     int
	pending map[string]chan error
}

func NewWSPlayer(send func(Event) error, timeout time.Duration) *WSPlayer {
	if timeout <= 0 {
		timeout = defaultCueTimeout
	}
	return &WSPlayer{
		send:    send,
		timeout: timeout,
		pending: make(map[string]chan error),
	}
}

func (p *WSPlayer) Play(ctx context.Context, res announcer.Resource) error {
	p.mu.Lock()
	p.seq++
	id := strconv.Itoa(p.seq)
	reply := make(chan error, 1)
	p.pending[id] = reply
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		delete(p.pending, id)
		p.mu.Unlock()
	}()

	cue := res
	if err := p.send(Event{Type: EventCue, CueID: id, Cue: &cue}); err != nil {
		return fmt.Errorf("%w: sending cue: %w", announcer.ErrAudioPlayback, err)
	}

	timer := time.NewTimer(p.timeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-reply:
		return err
	case <-timer.C:
		return fmt.Errorf("%w: no reply for cue %q after %s", announcer.ErrAudioPlayback, res.Cue.Text, p.timeout)
	}
}

// Stop asks the client to halt and rewind the current cue.
func (p *WSPlayer) Stop() {
	_ = p.send(Event{Type: EventStopAudio})
}

// Ack delivers the client's report for a cue. Unknown or late ids are ignored.
func (p *WSPlayer) Ack(cueID, errMsg string) {
	p.mu.Lock()
	reply, ok := p.pending[cueID]
	p.mu.Unlock()
	if !ok {
		return
	}

	var err error
	if errMsg != "" {
		err = fmt.Errorf("%w: %w", announcer.ErrAudioPlayback, errors.New(errMsg))
	}

	select {
	case reply <- err:
	default:
	}
}
