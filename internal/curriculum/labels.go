package curriculum

import (
	"strings"
	"unicode"

	"KeikoHub/internal/entity"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// positionAliases maps a folded label to its position tag. Labels are folded by
// foldLabel before lookup, so "Hanmi Handachi Waza" and "hanmi-handachi" both match.
var positionAliases = map[string]entity.Position{
	"suwariwaza":         entity.KneelingStance,
	"suwari":             entity.KneelingStance,
	"kneeling":           entity.KneelingStance,
	"kneelingstance":     entity.KneelingStance,
	"hanmihandachi":      entity.HalfStandingStance,
	"hanmihandachiwaza":  entity.HalfStandingStance,
	"halfstanding":       entity.HalfStandingStance,
	"halfstandingstance": entity.HalfStandingStance,
	"tachiwaza":          entity.StandingStance,
	"standing":           entity.StandingStance,
	"standingstance":     entity.StandingStance,
	"armes":              entity.Weapons,
	"arme":               entity.Weapons,
	"bukiwaza":           entity.Weapons,
	"weapons":            entity.Weapons,
	"weapon":             entity.Weapons,
}

// ParsePosition resolves a display label or a position tag to its tag.
func ParsePosition(label string) (entity.Position, bool) {
	if p := entity.Position(label); p.IsValid() {
		return p, true
	}
	p, ok := positionAliases[foldLabel(label)]
	return p, ok
}

func foldLabel(label string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, label)
	if err != nil {
		folded = label
	}

	var b strings.Builder
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
