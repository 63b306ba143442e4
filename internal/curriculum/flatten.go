package curriculum

import (
	"slices"
	"strings"

	"KeikoHub/internal/entity"
)

// Flatten projects a grade into its candidate techniques under the filters. Order
// holds a sequential placeholder; the generator renumbers. Unknown grades yield an
// empty slice.
func (x *Index) Flatten(grade string, filters entity.PassageFilters) []entity.Technique {
	out := make([]entity.Technique, 0)
	available := x.PositionsForGrade(grade)

	for _, position := range available {
		if !positionSelected(position, filters) {
			continue
		}

		for _, attack := range x.AttacksFor(grade, position) {
			if !attackSelected(attack, filters.Attacks) {
				continue
			}

			techniques := x.TechniquesFor(grade, position, attack)
			if len(techniques) == 0 {
				techniques = []string{entity.FreePracticeTechnique}
			}

			for _, name := range techniques {
				if len(filters.Techniques) > 0 && !slices.Contains(filters.Techniques, name) {
					continue
				}
				out = append(out, entity.Technique{
					Attack:    attack,
					Technique: name,
					Position:  position,
					Order:     len(out) + 1,
					VideoRefs: x.VideoRefsFor(attack, name),
				})
			}
		}
	}

	return out
}

// FlattenSelection restricts Flatten to a revision selection. An empty level keeps
// everything below its selected parent.
func (x *Index) FlattenSelection(grade string, filters entity.PassageFilters, selection entity.HierarchicalSelection) []entity.Technique {
	if slices.Contains(selection.SelectedPositions, entity.Weapons) {
		filters.IncludeWeapons = true
	}

	candidates := x.Flatten(grade, filters)
	out := make([]entity.Technique, 0, len(candidates))

	for _, t := range candidates {
		if len(selection.SelectedPositions) > 0 && !slices.Contains(selection.SelectedPositions, t.Position) {
			continue
		}
		if attacks := selection.SelectedAttacks[t.Position]; len(attacks) > 0 && !slices.Contains(attacks, t.Attack) {
			continue
		}
		key := entity.SelectionTechniqueKey(t.Position, t.Attack)
		if names := selection.SelectedTechniques[key]; len(names) > 0 && !slices.Contains(names, t.Technique) {
			continue
		}
		t.Order = len(out) + 1
		out = append(out, t)
	}

	return out
}

func positionSelected(position entity.Position, filters entity.PassageFilters) bool {
	if position == entity.Weapons {
		return filters.IncludeWeapons || filters.HasPosition(entity.Weapons)
	}
	return len(filters.Positions) == 0 || filters.HasPosition(position)
}

// attackSelected matches by substring so "Tanto dori-Shomen uchi" is kept by a
// "Shomen uchi" filter.
func attackSelected(attack string, wanted []string) bool {
	restricted := false
	for _, w := range wanted {
		if strings.TrimSpace(w) == "" {
			continue
		}
		restricted = true
		if strings.Contains(attack, w) {
			return true
		}
	}
	return !restricted
}
