package passage

import "KeikoHub/internal/entity"

type FiltersRequest struct {
	Positions      []string `json:"positions" validate:"omitempty,dive,position"`
	Attacks        []string `json:"attacks"`
	Techniques     []string `json:"techniques"`
	IncludeWeapons bool     `json:"include_weapons"`
	IncludeRandori bool     `json:"include_randori"`
}

type GeneratePassageRequest struct {
	Grade   string               `json:"grade" validate:"required"`
	Filters FiltersRequest       `json:"filters"`
	Config  entity.PassageConfig `json:"config"`
}

type PassageSummaryResponse struct {
	TotalTechniques   int    `json:"total_techniques"`
	EstimatedCapacity int    `json:"estimated_capacity"`
	Duration          string `json:"duration"`
	IncludeRandori    bool   `json:"include_randori"`
}

type PassageResponse struct {
	Passage         *entity.Passage        `json:"passage"`
	Summary         PassageSummaryResponse `json:"summary"`
	Ticket          string                 `json:"ticket,omitempty"`
	TicketExpiresAt int64                  `json:"ticket_expires_at,omitempty"`
}

type ExportResponse struct {
	FileName string `json:"file_name"`
	Location string `json:"location"`
	URL      string `json:"url"`
}

type HistoryRequest struct {
	Grade string `query:"grade"`
	Limit int    `query:"limit" validate:"omitempty,min=1,max=100"`
}

type HistoryResponse struct {
	Records []entity.PassageRecord `json:"records"`
}
