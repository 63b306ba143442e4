package passage

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"KeikoHub/internal/entity"
	"KeikoHub/pkg/utils"

	"github.com/sirupsen/logrus"
)

var ErrNoTechniquesAvailable = errors.New("no techniques available")

// Catalog is the part of the curriculum index the generator draws candidates from.
type Catalog interface {
	Flatten(grade string, filters entity.PassageFilters) []entity.Technique
	FlattenSelection(grade string, filters entity.PassageFilters, selection entity.HierarchicalSelection) []entity.Technique
}

type Generator struct {
	catalog Catalog
	log     *logrus.Logger
	utils   utils.IUtils
	now     func() time.Time

	mu  sync.Mutex
	rnd *rand.Rand
}

type GeneratorOption func(*Generator)

// WithRand makes shuffles reproducible.
func WithRand(rnd *rand.Rand) GeneratorOption {
	return func(g *Generator) {
		g.rnd = rnd
	}
}

func WithClock(now func() time.Time) GeneratorOption {
	return func(g *Generator) {
		g.now = now
	}
}

func NewGenerator(catalog Catalog, log *logrus.Logger, opts ...GeneratorOption) *Generator {
	g := &Generator{
		catalog: catalog,
		log:     log,
		utils:   utils.New(),
		now:     time.Now,
		rnd:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.log == nil {
		g.log = logrus.StandardLogger()
	}
	return g
}

// Generate builds a passage for the grade. Techniques are grouped by position in
// canonical order and shuffled inside each group. It fails with
// ErrNoTechniquesAvailable when the filters leave nothing to practice.
func (g *Generator) Generate(grade string, filters entity.PassageFilters, config entity.PassageConfig) (*entity.Passage, error) {
	config = config.WithDefaults()
	mode := g.effectiveMode(grade, config)

	var candidates []entity.Technique
	if mode == entity.PassageModeRevision {
		candidates = g.catalog.FlattenSelection(grade, filters, *config.Selection)
	} else {
		candidates = g.catalog.Flatten(grade, filters)
	}

	techniques := g.arrange(candidates)
	if len(techniques) == 0 {
		return nil, fmt.Errorf("%w for grade %q with the selected filters", ErrNoTechniquesAvailable, grade)
	}

	if filters.IncludeRandori {
		techniques = append(techniques, entity.NewRandori())
	}
	for i := range techniques {
		techniques[i].Order = i + 1
	}

	createdAt := g.now()
	id, err := g.utils.NewULIDFromTimestamp(createdAt)
	if err != nil {
		return nil, fmt.Errorf("generating passage id: %w", err)
	}

	return &entity.Passage{
		ID:                    id,
		Grade:                 grade,
		Techniques:            techniques,
		Duration:              config.Duration,
		TimeBetweenTechniques: config.TimeBetweenTechniques,
		Voice:                 config.Voice,
		Mode:                  mode,
		Filters:               filters,
		CreatedAt:             createdAt,
		CompletedAt:           nil,
	}, nil
}

// effectiveMode downgrades revision to random when the selection cannot be used.
func (g *Generator) effectiveMode(grade string, config entity.PassageConfig) entity.PassageMode {
	if config.Mode != entity.PassageModeRevision {
		return config.Mode
	}

	switch {
	case config.Selection == nil:
		g.log.WithFields(logrus.Fields{
			"grade": grade,
		}).Warn("No revision selection, falling back to random mode")
		return entity.PassageModeRandom
	case config.Selection.Grade != grade:
		g.log.WithFields(logrus.Fields{
			"grade":           grade,
			"selection_grade": config.Selection.Grade,
		}).Warn("Revision selection belongs to another grade, falling back to random mode")
		return entity.PassageModeRandom
	}
	return entity.PassageModeRevision
}

func (g *Generator) arrange(candidates []entity.Technique) []entity.Technique {
	groups := make(map[entity.Position][]entity.Technique, len(entity.CanonicalPositions))
	for _, t := range candidates {
		if !t.Position.IsValid() {
			continue
		}
		groups[t.Position] = append(groups[t.Position], t)
	}

	out := make([]entity.Technique, 0, len(candidates))
	seen := make(map[entity.TechniqueKey]struct{}, len(candidates))

	g.mu.Lock()
	defer g.mu.Unlock()

	for _, position := range entity.CanonicalPositions {
		group := groups[position]
		if len(group) == 0 {
			continue
		}

		g.rnd.Shuffle(len(group), func(i, j int) {
			group[i], group[j] = group[j], group[i]
		})

		for _, t := range group {
			if _, dup := seen[t.Key()]; dup {
				continue
			}
			seen[t.Key()] = struct{}{}
			out = append(out, t)
		}
	}

	return out
}

// EstimateCapacity is how many techniques fit the configured duration once the
// weapon and randori slots are reserved. Informational only.
func EstimateCapacity(config entity.PassageConfig) int {
	config = config.WithDefaults()

	available := config.Duration * 60
	if config.IncludeWeaponTime {
		available -= config.WeaponTime * 60
	}
	if config.IncludeRandoriTime {
		available -= config.RandoriTime * 60
	}
	if available <= 0 || config.TimeBetweenTechniques <= 0 {
		return 0
	}
	return available / config.TimeBetweenTechniques
}
