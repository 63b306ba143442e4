package passage

import (
	"fmt"
	"strings"

	"KeikoHub/internal/entity"
)

// ExportFileName is the download name of a passage export.
func ExportFileName(p *entity.Passage) string {
	return fmt.Sprintf("passage-%s.txt", p.ID)
}

// FormatText renders a passage as the plain-text sheet students print or share:
// a header, then one numbered line per technique followed by its video links.
func FormatText(p *entity.Passage) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Passage de grade : %s\n", p.Grade)
	fmt.Fprintf(&b, "Date : %s\n", p.CreatedAt.Format("02/01/2006 15:04"))
	fmt.Fprintf(&b, "Durée : %d min\n", p.Duration)
	fmt.Fprintf(&b, "Temps entre techniques : %d s\n", p.TimeBetweenTechniques)
	fmt.Fprintf(&b, "Mode : %s\n", p.Mode)
	fmt.Fprintf(&b, "Techniques : %d\n\n", len(p.Techniques))

	width := 2
	if n := len(p.Techniques); n >= 100 {
		width = len(fmt.Sprint(n))
	}

	for i, t := range p.Techniques {
		if t.IsRandori() {
			fmt.Fprintf(&b, "%0*d. %s\n", width, i+1, entity.RandoriName)
			continue
		}
		fmt.Fprintf(&b, "%0*d. %s — %s — %s\n", width, i+1, t.Position.SpokenName(), t.Attack, t.Technique)
		for _, ref := range t.VideoRefs {
			fmt.Fprintf(&b, "    %s\n", ref)
		}
	}

	return b.String()
}
