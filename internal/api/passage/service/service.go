package passageService

import (
	"context"
	"time"

	"KeikoHub/internal/announcer"
	"KeikoHub/internal/api/passage"
	passageRepository "KeikoHub/internal/api/passage/repository"
	curriculumCore "KeikoHub/internal/curriculum"
	"KeikoHub/internal/entity"
	passageCore "KeikoHub/internal/passage"
	"KeikoHub/internal/session"
	"KeikoHub/pkg/redis"
	"KeikoHub/pkg/s3"
	"KeikoHub/pkg/utils"

	"github.com/sirupsen/logrus"
)

type IPassageService interface {
	GeneratePassage(ctx context.Context, req passage.GeneratePassageRequest) (passage.PassageResponse, error)
	GetPassage(ctx context.Context, id string) (*entity.Passage, error)
	ExportPassage(ctx context.Context, id string) (string, []byte, error)
	UploadExport(ctx context.Context, id string) (passage.ExportResponse, error)
	DiscardPassage(ctx context.Context, id string) error
	GetHistory(ctx context.Context, req passage.HistoryRequest) ([]entity.PassageRecord, error)
	RecordCompletion(ctx context.Context, p *entity.Passage, summary entity.PassageSummary) error
	OpenSession(ctx context.Context, id string, audio announcer.AudioPlayer, emit func(session.Event) error) (*session.Session, error)
	CloseSession(s *session.Session)
}

type IndexProvider interface {
	Get(ctx context.Context) (*curriculumCore.Index, error)
}

type VoiceCatalog interface {
	Find(ref string) (entity.Voice, error)
}

type Options struct {
	// Ticket TTL for the live session websocket.
	TicketTTL time.Duration
	// PassageTTL bounds how long generated passages stay retrievable.
	PassageTTL time.Duration
	// TickInterval is the length of one countdown second in live sessions.
	TickInterval time.Duration
	// NewGenerator builds the generator for one request.
	NewGenerator func(catalog passageCore.Catalog, log *logrus.Logger) *passageCore.Generator
}

type passageService struct {
	log      *logrus.Logger
	indexes  IndexProvider
	cache    redis.IRedis
	repo     passageRepository.Repository
	s3       s3.ItfS3
	voices   VoiceCatalog
	resolver announcer.CueResolver
	sessions *session.Manager
	utils    utils.IUtils
	opts     Options
}

// NewPassageService wires the passage use cases. repo and s3 may be nil: history and
// uploads then answer with "not configured" errors.
func NewPassageService(
	log *logrus.Logger,
	indexes IndexProvider,
	cache redis.IRedis,
	repo passageRepository.Repository,
	s3 s3.ItfS3,
	voices VoiceCatalog,
	resolver announcer.CueResolver,
	sessions *session.Manager,
	utils utils.IUtils,
	opts Options,
) IPassageService {
	if opts.PassageTTL <= 0 {
		opts.PassageTTL = redis.DefaultPassageTTL
	}
	if opts.NewGenerator == nil {
		opts.NewGenerator = func(catalog passageCore.Catalog, log *logrus.Logger) *passageCore.Generator {
			return passageCore.NewGenerator(catalog, log)
		}
	}

	return &passageService{
		log:      log,
		indexes:  indexes,
		cache:    cache,
		repo:     repo,
		s3:       s3,
		voices:   voices,
		resolver: resolver,
		sessions: sessions,
		utils:    utils,
		opts:     opts,
	}
}
