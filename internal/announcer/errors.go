package announcer

import (
	"errors"
	"fmt"

	"KeikoHub/internal/entity"
)

var (
	// ErrAudioResolution is deterministic: retrying the same cue and voice fails again.
	ErrAudioResolution = errors.New("audio resolution failed")
	ErrAudioPlayback   = errors.New("audio playback failed")
)

// AnnouncementError reports a technique-name cue that could not be played.
type AnnouncementError struct {
	Technique entity.Technique
	Voice     string
	Cue       Cue
	Err       error
}

func (e *AnnouncementError) Error() string {
	return fmt.Sprintf("announcing %q (%s, %s) with voice %s: %v",
		e.Cue.Text, e.Technique.Position, e.Technique.Attack, e.Voice, e.Err)
}

func (e *AnnouncementError) Unwrap() error {
	return e.Err
}
