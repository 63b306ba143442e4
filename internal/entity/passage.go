package entity

import (
	"slices"
	"time"
)

// PassageFilters restricts the candidate techniques of a grade. Empty lists mean
// "no restriction", never "nothing allowed".
type PassageFilters struct {
	Positions      []Position `json:"positions"`
	Attacks        []string   `json:"attacks"`
	Techniques     []string   `json:"techniques"`
	IncludeWeapons bool       `json:"include_weapons"`
	IncludeRandori bool       `json:"include_randori"`
}

func (f PassageFilters) HasPosition(p Position) bool {
	return slices.Contains(f.Positions, p)
}

type PassageMode string

const (
	PassageModeClassic  PassageMode = "classique"
	PassageModeRandom   PassageMode = "aleatoire"
	PassageModeRevision PassageMode = "revision"
)

type PassageConfig struct {
	Duration              int         `json:"duration" validate:"omitempty,min=5,max=60"`
	TimeBetweenTechniques int         `json:"time_between_techniques" validate:"omitempty,min=5,max=120"`
	Voice                 string      `json:"voice" validate:"omitempty,voice"`
	Mode                  PassageMode `json:"mode" validate:"omitempty,oneof=classique aleatoire revision"`
	WeaponTime            int         `json:"weapon_time" validate:"omitempty,min=1,max=10"`
	IncludeWeaponTime     bool        `json:"include_weapon_time"`
	RandoriTime           int         `json:"randori_time" validate:"omitempty,min=1,max=10"`
	IncludeRandoriTime    bool        `json:"include_randori_time"`

	// Selection drives the revision mode.
	Selection *HierarchicalSelection `json:"selection,omitempty"`
}

const (
	DefaultDuration              = 10
	DefaultTimeBetweenTechniques = 20
	DefaultWeaponTime            = 5
	DefaultRandoriTime           = 3
	DefaultVoice                 = "French/Male1"
)

// WithDefaults fills zero values with the application defaults.
func (c PassageConfig) WithDefaults() PassageConfig {
	if c.Duration == 0 {
		c.Duration = DefaultDuration
	}
	if c.TimeBetweenTechniques == 0 {
		c.TimeBetweenTechniques = DefaultTimeBetweenTechniques
	}
	if c.Voice == "" {
		c.Voice = DefaultVoice
	}
	if c.Mode == "" {
		c.Mode = PassageModeClassic
	}
	if c.WeaponTime == 0 {
		c.WeaponTime = DefaultWeaponTime
	}
	if c.RandoriTime == 0 {
		c.RandoriTime = DefaultRandoriTime
	}
	return c
}

type Passage struct {
	ID                    string         `json:"id"`
	Grade                 string         `json:"grade"`
	Techniques            []Technique    `json:"techniques"`
	Duration              int            `json:"duration"`
	TimeBetweenTechniques int            `json:"time_between_techniques"`
	Voice                 string         `json:"voice"`
	Mode                  PassageMode    `json:"mode"`
	Filters               PassageFilters `json:"filters"`
	CreatedAt             time.Time      `json:"created_at"`
	CompletedAt           *time.Time     `json:"completed_at"`
	ExportLocation        string         `json:"export_location,omitempty"`
}

func (p *Passage) IsCompleted() bool {
	return p != nil && p.CompletedAt != nil
}

type PassageState struct {
	CurrentPassage        *Passage `json:"current_passage"`
	CurrentTechniqueIndex int      `json:"current_technique_index"`
	IsPlaying             bool     `json:"is_playing"`
	IsPaused              bool     `json:"is_paused"`
	ElapsedTime           int      `json:"elapsed_time"`
	Progress              float64  `json:"progress"`
}

// Completed reports whether the state encodes a finished passage.
func (s PassageState) Completed() bool {
	if s.CurrentPassage == nil || len(s.CurrentPassage.Techniques) == 0 {
		return false
	}
	return s.CurrentPassage.IsCompleted() && !s.IsPlaying && !s.IsPaused &&
		s.CurrentTechniqueIndex == len(s.CurrentPassage.Techniques)-1
}

type PassageSummary struct {
	TotalTechniques int  `json:"total_techniques"`
	Duration        int  `json:"duration"`
	IncludeRandori  bool `json:"include_randori"`
}

// HierarchicalSelection is the user's revision selection for a grade.
// SelectedAttacks is keyed by position, SelectedTechniques by "<position>-<attack>".
type HierarchicalSelection struct {
	Grade              string                `json:"grade"`
	SelectedPositions  []Position            `json:"selected_positions"`
	SelectedAttacks    map[Position][]string `json:"selected_attacks"`
	SelectedTechniques map[string][]string   `json:"selected_techniques"`
}

func SelectionTechniqueKey(position Position, attack string) string {
	return string(position) + "-" + attack
}
