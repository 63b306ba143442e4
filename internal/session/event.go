package session

import (
	"KeikoHub/internal/announcer"
	"KeikoHub/internal/entity"
)

type EventType string

const (
	EventState             EventType = "state"
	EventCue               EventType = "cue"
	EventStopAudio         EventType = "stop_audio"
	EventAnnouncementError EventType = "announcement_error"
	EventCompleted         EventType = "completed"
	EventError             EventType = "error"
)

// Event is pushed to the client driving the session.
type Event struct {
	Type      EventType              `json:"type"`
	State     *entity.PassageState   `json:"state,omitempty"`
	Countdown int                    `json:"countdown,omitempty"`
	Remaining int                    `json:"remaining,omitempty"`
	CueID     string                 `json:"cue_id,omitempty"`
	Cue       *announcer.Resource    `json:"cue,omitempty"`
	Technique *entity.Technique      `json:"technique,omitempty"`
	Summary   *entity.PassageSummary `json:"summary,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

type Command string

const (
	CommandPause  Command = "pause"
	CommandResume Command = "resume"
	CommandSkip   Command = "skip"
	CommandStop   Command = "stop"
)

type MessageType string

const (
	MessageCommand  MessageType = "command"
	MessageCueEnded MessageType = "cue_ended"
	MessageCueError MessageType = "cue_error"
)

// Message is sent by the client: playback commands and cue acknowledgements.
type Message struct {
	Type    MessageType `json:"type"`
	Command Command     `json:"command,omitempty"`
	CueID   string      `json:"cue_id,omitempty"`
	Error   string      `json:"error,omitempty"`
}
