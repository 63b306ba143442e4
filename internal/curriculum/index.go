package curriculum

import (
	"slices"
	"sort"
	"strings"

	"KeikoHub/internal/entity"

	"github.com/sirupsen/logrus"
)

// Index answers curriculum lookups. Every lookup is permissive: unknown grades,
// positions or attacks produce empty results, never errors.
type Index struct {
	grades []*Grade
	byName map[string]*Grade
	videos map[string][]string

	// compound weapon names, longest first so prefixes never shadow longer names
	compoundWeapons []string
	bareWeapons     map[string]struct{}

	log *logrus.Logger
}

func NewIndex(grades []*Grade, videos map[string][]string, log *logrus.Logger) *Index {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if videos == nil {
		videos = make(map[string][]string)
	}

	idx := &Index{
		grades:      grades,
		byName:      make(map[string]*Grade, len(grades)),
		videos:      videos,
		bareWeapons: make(map[string]struct{}),
		log:         log,
	}

	compound := make(map[string]struct{})
	for _, g := range grades {
		if _, dup := idx.byName[g.Name]; !dup {
			idx.byName[g.Name] = g
		}
		block, ok := g.positions[entity.Weapons]
		if !ok {
			continue
		}
		for _, e := range block.Entries {
			if e.Compound() {
				compound[e.Key] = struct{}{}
			} else {
				idx.bareWeapons[e.Key] = struct{}{}
			}
		}
	}

	for name := range compound {
		idx.compoundWeapons = append(idx.compoundWeapons, name)
	}
	sort.Slice(idx.compoundWeapons, func(i, j int) bool {
		a, b := idx.compoundWeapons[i], idx.compoundWeapons[j]
		if len(a) != len(b) {
			return len(a) > len(b)
		}
		return a < b
	})

	return idx
}

func (x *Index) Grades() []string {
	out := make([]string, 0, len(x.grades))
	seen := make(map[string]struct{}, len(x.grades))
	for _, g := range x.grades {
		if _, dup := seen[g.Name]; dup {
			continue
		}
		seen[g.Name] = struct{}{}
		out = append(out, g.Name)
	}
	return out
}

func (x *Index) HasGrade(grade string) bool {
	return x.grade(grade) != nil
}

func (x *Index) grade(name string) *Grade {
	if x == nil {
		return nil
	}
	return x.byName[strings.TrimSpace(name)]
}

func (x *Index) block(grade string, position entity.Position) *positionBlock {
	g := x.grade(grade)
	if g == nil {
		return nil
	}
	return g.positions[position]
}

// PositionsForGrade returns, in canonical order, the positions holding at least one
// attack for the grade.
func (x *Index) PositionsForGrade(grade string) []entity.Position {
	g := x.grade(grade)
	if g == nil {
		return []entity.Position{}
	}

	out := make([]entity.Position, 0, len(entity.CanonicalPositions))
	for _, p := range entity.CanonicalPositions {
		if len(x.AttacksFor(grade, p)) > 0 {
			out = append(out, p)
		}
	}
	return out
}

// AttacksFor lists the selectable attacks of a grade and position in document
// order. Compound entries flatten to "<weapon>-<attack>"; plain entries keep their
// key even when their technique list is empty, since that is a free-practice unit.
func (x *Index) AttacksFor(grade string, position entity.Position) []string {
	block := x.block(grade, position)
	if block == nil {
		return []string{}
	}

	out := make([]string, 0, len(block.Entries))
	seen := make(map[string]struct{}, len(block.Entries))
	add := func(attack string) {
		if _, dup := seen[attack]; dup {
			return
		}
		seen[attack] = struct{}{}
		out = append(out, attack)
	}

	for _, e := range block.Entries {
		if !e.Compound() {
			add(e.Key)
			continue
		}
		for _, sub := range e.Attacks {
			add(compoundKey(e.Key, sub.Name))
		}
	}
	return out
}

// TechniquesFor resolves the technique names of an attack. Compound keys are
// matched against the weapon entries of the position before splitting.
func (x *Index) TechniquesFor(grade string, position entity.Position, attack string) []string {
	block := x.block(grade, position)
	if block == nil {
		return []string{}
	}

	for _, e := range block.Entries {
		if !e.Compound() && e.Key == attack {
			return slices.Clone(e.Techniques)
		}
	}

	for _, e := range block.Entries {
		if !e.Compound() {
			continue
		}
		rest, ok := strings.CutPrefix(attack, e.Key+"-")
		if !ok {
			continue
		}
		for _, sub := range e.Attacks {
			if sub.Name == rest {
				return slices.Clone(sub.Techniques)
			}
		}
	}

	return []string{}
}

// VideoRefsFor returns the demonstration videos of a technique, or nil when the
// video index has no entry for it. Weapon-style attacks are looked up without their
// weapon prefix.
func (x *Index) VideoRefsFor(attack, technique string) []string {
	if x == nil {
		return nil
	}

	lookup := attack
	if _, bare := x.bareWeapons[attack]; !bare {
		if _, sub, ok := x.splitCompound(attack); ok {
			lookup = sub
		}
	}

	refs, ok := x.videos[lookup+"-"+technique]
	if !ok {
		return nil
	}
	return append(make([]string, 0, len(refs)), refs...)
}

// SplitWeaponKey splits a weapons attack key into the weapon name and the
// sub-attack. Bare weapon entries return an empty attack. Unknown keys are split on
// their first "-".
func (x *Index) SplitWeaponKey(key string) (weapon, attack string) {
	if x != nil {
		if _, ok := x.bareWeapons[key]; ok {
			return key, ""
		}
		if w, sub, ok := x.splitCompound(key); ok {
			return w, sub
		}
	}
	return SplitWeaponKey(key)
}

// SplitWeaponKey splits on the first "-" only.
func SplitWeaponKey(key string) (weapon, attack string) {
	before, after, found := strings.Cut(key, "-")
	if !found {
		return key, ""
	}
	return before, after
}

func (x *Index) splitCompound(key string) (weapon, attack string, ok bool) {
	for _, w := range x.compoundWeapons {
		if rest, found := strings.CutPrefix(key, w+"-"); found && rest != "" {
			return w, rest, true
		}
	}
	return "", "", false
}

// Cues lists every distinct spoken cue reachable from the curriculum: position names,
// weapon names, attacks and techniques.
func (x *Index) Cues() []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(s string) {
		if s == "" {
			return
		}
		if _, dup := seen[s]; dup {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	for _, p := range entity.CanonicalPositions[:3] {
		add(p.SpokenName())
	}
	for _, g := range x.grades {
		for _, p := range entity.CanonicalPositions {
			block, ok := g.positions[p]
			if !ok {
				continue
			}
			for _, e := range block.Entries {
				add(e.Key)
				if len(e.Techniques) == 0 && !e.Compound() {
					add(entity.FreePracticeTechnique)
				}
				for _, t := range e.Techniques {
					add(t)
				}
				for _, sub := range e.Attacks {
					add(sub.Name)
					for _, t := range sub.Techniques {
						add(t)
					}
				}
			}
		}
	}
	add(entity.RandoriName)
	return out
}

func compoundKey(weapon, attack string) string {
	return weapon + "-" + attack
}
