package curriculumService

import (
	"context"

	curriculumCore "KeikoHub/internal/curriculum"
	"KeikoHub/internal/entity"

	"github.com/sirupsen/logrus"
)

type ICurriculumService interface {
	GetGrades(ctx context.Context) ([]string, error)
	GetPositions(ctx context.Context, grade string) ([]entity.Position, error)
	GetAttacks(ctx context.Context, grade string, position string) (entity.Position, []string, error)
	GetTechniques(ctx context.Context, grade string, position string, attack string) (entity.Position, []string, error)
	GetVideos(ctx context.Context, attack string, technique string) ([]string, error)
	GetVoices(ctx context.Context) ([]entity.Voice, error)
}

// IndexProvider hands out the current curriculum index.
type IndexProvider interface {
	Get(ctx context.Context) (*curriculumCore.Index, error)
}

type VoiceCatalog interface {
	All() ([]entity.Voice, error)
}

type curriculumService struct {
	log     *logrus.Logger
	indexes IndexProvider
	voices  VoiceCatalog
}

func NewCurriculumService(log *logrus.Logger, indexes IndexProvider, voices VoiceCatalog) ICurriculumService {
	return &curriculumService{
		log:     log,
		indexes: indexes,
		voices:  voices,
	}
}
