package curriculum

type GradesResponse struct {
	Grades []string `json:"grades"`
}

type PositionResponse struct {
	Position string `json:"position"`
	Label    string `json:"label"`
}

type PositionsResponse struct {
	Grade     string             `json:"grade"`
	Positions []PositionResponse `json:"positions"`
}

type AttacksResponse struct {
	Grade    string   `json:"grade"`
	Position string   `json:"position"`
	Attacks  []string `json:"attacks"`
}

type TechniquesRequest struct {
	Grade    string `json:"grade" validate:"required"`
	Position string `json:"position" validate:"required,position"`
	Attack   string `json:"attack" validate:"required"`
}

type TechniquesResponse struct {
	Grade      string   `json:"grade"`
	Position   string   `json:"position"`
	Attack     string   `json:"attack"`
	Techniques []string `json:"techniques"`
}

type VideosRequest struct {
	Attack    string `json:"attack" query:"attack" validate:"required"`
	Technique string `json:"technique" query:"technique" validate:"required"`
}

type VideosResponse struct {
	Attack    string   `json:"attack"`
	Technique string   `json:"technique"`
	Videos    []string `json:"videos"`
}

type VoiceResponse struct {
	Ref      string `json:"ref"`
	ID       string `json:"id"`
	Label    string `json:"label"`
	Language string `json:"language"`
	Gender   string `json:"gender"`
}

type VoicesResponse struct {
	Voices []VoiceResponse `json:"voices"`
}
