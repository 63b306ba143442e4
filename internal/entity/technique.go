package entity

type Position string

const (
	KneelingStance     Position = "Suwariwaza"
	HalfStandingStance Position = "Hanmi Handachi"
	StandingStance     Position = "Tachiwaza"
	Weapons            Position = "Armes"
)

// CanonicalPositions is the fixed order in which positions appear in a passage.
var CanonicalPositions = []Position{
	KneelingStance,
	HalfStandingStance,
	StandingStance,
	Weapons,
}

var positionRank = map[Position]int{
	KneelingStance:     0,
	HalfStandingStance: 1,
	StandingStance:     2,
	Weapons:            3,
}

var positionSpokenNames = map[Position]string{
	KneelingStance:     "Suwari waza",
	HalfStandingStance: "Hanmi handachi waza",
	StandingStance:     "Tachi waza",
	Weapons:            "Armes",
}

func (p Position) IsValid() bool {
	_, ok := positionRank[p]
	return ok
}

// Rank returns the canonical rank of p, or -1 when p is unknown.
func (p Position) Rank() int {
	rank, ok := positionRank[p]
	if !ok {
		return -1
	}
	return rank
}

// SpokenName is the cue announced for the position.
func (p Position) SpokenName() string {
	if name, ok := positionSpokenNames[p]; ok {
		return name
	}
	return string(p)
}

func (p Position) String() string {
	return string(p)
}

const (
	// RandoriName marks the synthetic free-sparring entry closing a passage.
	RandoriName = "Randori"
	// FreePracticeTechnique names the single unit emitted for an attack without techniques.
	FreePracticeTechnique = "Jiyu waza"
)

type Technique struct {
	Attack    string   `json:"attack"`
	Technique string   `json:"technique"`
	Position  Position `json:"position"`
	Order     int      `json:"order"`
	VideoRefs []string `json:"video_refs"`
}

// Key identifies a technique inside a passage.
type TechniqueKey struct {
	Attack    string
	Technique string
	Position  Position
}

func (k TechniqueKey) String() string {
	return string(k.Position) + "|" + k.Attack + "|" + k.Technique
}

func (t Technique) Key() TechniqueKey {
	return TechniqueKey{
		Attack:    t.Attack,
		Technique: t.Technique,
		Position:  t.Position,
	}
}

func (t Technique) IsRandori() bool {
	return t.Attack == RandoriName && t.Technique == RandoriName
}

func NewRandori() Technique {
	return Technique{
		Attack:    RandoriName,
		Technique: RandoriName,
		Position:  Weapons,
		VideoRefs: nil,
	}
}
