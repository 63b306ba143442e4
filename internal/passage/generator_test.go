package passage

import (
	"io"
	"math/rand/v2"
	"slices"
	"testing"
	"time"

	"KeikoHub/internal/entity"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	grades    map[string][]entity.Technique
	selection *entity.HierarchicalSelection
}

func (f *fakeCatalog) Flatten(grade string, filters entity.PassageFilters) []entity.Technique {
	var out []entity.Technique
	for _, t := range f.grades[grade] {
		if t.Position == entity.Weapons && !filters.IncludeWeapons {
			continue
		}
		if len(filters.Positions) > 0 && t.Position != entity.Weapons && !filters.HasPosition(t.Position) {
			continue
		}
		if len(filters.Techniques) > 0 && !slices.Contains(filters.Techniques, t.Technique) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func (f *fakeCatalog) FlattenSelection(grade string, filters entity.PassageFilters, selection entity.HierarchicalSelection) []entity.Technique {
	f.selection = &selection
	var out []entity.Technique
	for _, t := range f.Flatten(grade, filters) {
		if slices.Contains(selection.SelectedPositions, t.Position) {
			out = append(out, t)
		}
	}
	return out
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func tech(position entity.Position, attack, name string) entity.Technique {
	return entity.Technique{Position: position, Attack: attack, Technique: name}
}

// grade is listed out of canonical order on purpose and carries one duplicate.
func testCatalog() *fakeCatalog {
	return &fakeCatalog{grades: map[string][]entity.Technique{
		"1er Dan": {
			tech(entity.Weapons, "Tanto dori-Tsuki", "Kote gaeshi"),
			tech(entity.StandingStance, "Shomen uchi", "Ikkyo"),
			tech(entity.StandingStance, "Shomen uchi", "Irimi nage"),
			tech(entity.KneelingStance, "Shomen uchi", "Ikkyo"),
			tech(entity.KneelingStance, "Shomen uchi", "Nikyo"),
			tech(entity.HalfStandingStance, "Katate dori", "Shiho nage"),
			tech(entity.StandingStance, "Yokomen uchi", "Shiho nage"),
			tech(entity.KneelingStance, "Shomen uchi", "Ikkyo"),
			tech(entity.StandingStance, "Tsuki", "Kote gaeshi"),
			tech(entity.Weapons, "Jo dori", "Shiho nage"),
		},
	}}
}

func uniqueKeys(techniques []entity.Technique) map[entity.TechniqueKey]int {
	out := make(map[entity.TechniqueKey]int)
	for _, t := range techniques {
		out[t.Key()]++
	}
	return out
}

func TestGenerator_Properties(t *testing.T) {
	catalog := testCatalog()

	filterSets := map[string]entity.PassageFilters{
		"no filters":      {},
		"with weapons":    {IncludeWeapons: true},
		"with randori":    {IncludeRandori: true},
		"weapons+randori": {IncludeWeapons: true, IncludeRandori: true},
		"standing only":   {Positions: []entity.Position{entity.StandingStance}},
	}

	for name, filters := range filterSets {
		t.Run(name, func(t *testing.T) {
			candidates := uniqueKeys(catalog.Flatten("1er Dan", filters))

			for seed := uint64(0); seed < 50; seed++ {
				gen := NewGenerator(catalog, quietLogger(), WithRand(rand.New(rand.NewPCG(seed, seed+1))))
				p, err := gen.Generate("1er Dan", filters, entity.PassageConfig{})
				require.NoError(t, err)

				techniques := p.Techniques
				if filters.IncludeRandori {
					require.NotEmpty(t, techniques)
					last := techniques[len(techniques)-1]
					assert.True(t, last.IsRandori())
					assert.Equal(t, entity.Weapons, last.Position)
					assert.Nil(t, last.VideoRefs)
					techniques = techniques[:len(techniques)-1]
				}

				got := uniqueKeys(techniques)
				assert.Len(t, got, len(techniques), "duplicate technique in passage")
				assert.Len(t, got, len(candidates))
				for key := range candidates {
					assert.Contains(t, got, key)
				}

				for i := 1; i < len(p.Techniques); i++ {
					assert.LessOrEqual(t, p.Techniques[i-1].Position.Rank(), p.Techniques[i].Position.Rank())
				}
				for i, tech := range p.Techniques {
					assert.Equal(t, i+1, tech.Order)
				}
			}
		})
	}
}

func TestGenerator_ShufflesWithinGroups(t *testing.T) {
	catalog := testCatalog()
	orders := make(map[string]struct{})

	for seed := uint64(0); seed < 30; seed++ {
		gen := NewGenerator(catalog, quietLogger(), WithRand(rand.New(rand.NewPCG(seed, 7))))
		p, err := gen.Generate("1er Dan", entity.PassageFilters{Positions: []entity.Position{entity.StandingStance}}, entity.PassageConfig{})
		require.NoError(t, err)

		var key string
		for _, tech := range p.Techniques {
			key += tech.Key().String() + ";"
		}
		orders[key] = struct{}{}
	}

	assert.Greater(t, len(orders), 1, "standing group was never reordered")
}

func TestGenerator_SameSeedSamePassage(t *testing.T) {
	catalog := testCatalog()
	filters := entity.PassageFilters{IncludeWeapons: true}

	a, err := NewGenerator(catalog, quietLogger(), WithRand(rand.New(rand.NewPCG(42, 42)))).Generate("1er Dan", filters, entity.PassageConfig{})
	require.NoError(t, err)
	b, err := NewGenerator(catalog, quietLogger(), WithRand(rand.New(rand.NewPCG(42, 42)))).Generate("1er Dan", filters, entity.PassageConfig{})
	require.NoError(t, err)

	assert.Equal(t, a.Techniques, b.Techniques)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestGenerator_Metadata(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	gen := NewGenerator(testCatalog(), quietLogger(), WithClock(func() time.Time { return now }))

	filters := entity.PassageFilters{IncludeWeapons: true}
	p, err := gen.Generate("1er Dan", filters, entity.PassageConfig{Duration: 15, Voice: "French/Female2"})
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "1er Dan", p.Grade)
	assert.Equal(t, now, p.CreatedAt)
	assert.Nil(t, p.CompletedAt)
	assert.Equal(t, 15, p.Duration)
	assert.Equal(t, entity.DefaultTimeBetweenTechniques, p.TimeBetweenTechniques)
	assert.Equal(t, "French/Female2", p.Voice)
	assert.Equal(t, entity.PassageModeClassic, p.Mode)
	assert.Equal(t, filters, p.Filters)
}

func TestGenerator_NoTechniques(t *testing.T) {
	gen := NewGenerator(testCatalog(), quietLogger())

	t.Run("filters exclude everything", func(t *testing.T) {
		_, err := gen.Generate("1er Dan", entity.PassageFilters{Techniques: []string{"Hiji kime osae"}, IncludeRandori: true}, entity.PassageConfig{})
		require.ErrorIs(t, err, ErrNoTechniquesAvailable)
		assert.Contains(t, err.Error(), "1er Dan")
	})

	t.Run("unknown grade", func(t *testing.T) {
		_, err := gen.Generate("7e Dan", entity.PassageFilters{}, entity.PassageConfig{})
		require.ErrorIs(t, err, ErrNoTechniquesAvailable)
		assert.Contains(t, err.Error(), "7e Dan")
	})
}

func TestGenerator_RevisionMode(t *testing.T) {
	t.Run("uses the selection", func(t *testing.T) {
		catalog := testCatalog()
		gen := NewGenerator(catalog, quietLogger())

		p, err := gen.Generate("1er Dan", entity.PassageFilters{}, entity.PassageConfig{
			Mode: entity.PassageModeRevision,
			Selection: &entity.HierarchicalSelection{
				Grade:             "1er Dan",
				SelectedPositions: []entity.Position{entity.HalfStandingStance},
			},
		})
		require.NoError(t, err)

		require.NotNil(t, catalog.selection)
		assert.Equal(t, entity.PassageModeRevision, p.Mode)
		require.Len(t, p.Techniques, 1)
		assert.Equal(t, "Shiho nage", p.Techniques[0].Technique)
	})

	t.Run("falls back without a selection", func(t *testing.T) {
		catalog := testCatalog()
		p, err := NewGenerator(catalog, quietLogger()).Generate("1er Dan", entity.PassageFilters{}, entity.PassageConfig{Mode: entity.PassageModeRevision})
		require.NoError(t, err)

		assert.Nil(t, catalog.selection)
		assert.Equal(t, entity.PassageModeRandom, p.Mode)
	})

	t.Run("falls back on a grade mismatch", func(t *testing.T) {
		catalog := testCatalog()
		p, err := NewGenerator(catalog, quietLogger()).Generate("1er Dan", entity.PassageFilters{}, entity.PassageConfig{
			Mode:      entity.PassageModeRevision,
			Selection: &entity.HierarchicalSelection{Grade: "2e Kyū"},
		})
		require.NoError(t, err)

		assert.Nil(t, catalog.selection)
		assert.Equal(t, entity.PassageModeRandom, p.Mode)
	})
}

func TestEstimateCapacity(t *testing.T) {
	tests := []struct {
		name   string
		config entity.PassageConfig
		want   int
	}{
		{"defaults", entity.PassageConfig{}, 30},
		{"weapon slot reserved", entity.PassageConfig{IncludeWeaponTime: true}, 15},
		{"both slots reserved", entity.PassageConfig{Duration: 20, IncludeWeaponTime: true, IncludeRandoriTime: true, TimeBetweenTechniques: 30}, 24},
		{"nothing left", entity.PassageConfig{Duration: 5, WeaponTime: 5, IncludeWeaponTime: true}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EstimateCapacity(tt.config))
		})
	}
}
