package entity

import "time"

// PassageRecord is a completed passage kept in the training history.
type PassageRecord struct {
	ID              string      `json:"id"`
	Grade           string      `json:"grade"`
	Mode            PassageMode `json:"mode"`
	Voice           string      `json:"voice"`
	Duration        int         `json:"duration"`
	TotalTechniques int         `json:"total_techniques"`
	IncludeRandori  bool        `json:"include_randori"`
	Techniques      []Technique `json:"techniques"`
	CreatedAt       time.Time   `json:"created_at"`
	CompletedAt     time.Time   `json:"completed_at"`
}

// NewPassageRecord snapshots a completed passage. CompletedAt falls back to now when
// the passage carries no completion time.
func NewPassageRecord(p *Passage, summary PassageSummary, now time.Time) PassageRecord {
	completed := now
	if p.CompletedAt != nil {
		completed = *p.CompletedAt
	}
	return PassageRecord{
		ID:              p.ID,
		Grade:           p.Grade,
		Mode:            p.Mode,
		Voice:           p.Voice,
		Duration:        summary.Duration,
		TotalTechniques: summary.TotalTechniques,
		IncludeRandori:  summary.IncludeRandori,
		Techniques:      p.Techniques,
		CreatedAt:       p.CreatedAt,
		CompletedAt:     completed,
	}
}
