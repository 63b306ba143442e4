package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"KeikoHub/database/postgres"
	"KeikoHub/internal/announcer"
	curriculumHandler "KeikoHub/internal/api/curriculum/handler"
	curriculumService "KeikoHub/internal/api/curriculum/service"
	passageHandler "KeikoHub/internal/api/passage/handler"
	passageRepository "KeikoHub/internal/api/passage/repository"
	passageService "KeikoHub/internal/api/passage/service"
	curriculumCore "KeikoHub/internal/curriculum"
	"KeikoHub/internal/middleware"
	"KeikoHub/internal/session"
	"KeikoHub/pkg/audio"
	"KeikoHub/pkg/redis"
	"KeikoHub/pkg/s3"
	"KeikoHub/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type ServerOption func(*Server) error

type Server struct {
	engine       *fiber.App
	db           *sqlx.DB
	log          *logrus.Logger
	middleware   middleware.Middleware
	validator    *validator.Validate
	utils        utils.IUtils
	handlers     []handler
	curriculum   *curriculumCore.Loader
	watcher      *curriculumCore.Watcher
	voices       *audio.VoiceCatalog
	resolver     *announcer.Resolver
	redisServer  redis.IRedis
	s3Client     s3.ItfS3
	sessions     *session.Manager
	tickInterval time.Duration
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if server.curriculum == nil {
		return nil, fmt.Errorf("curriculum is required")
	}
	if server.redisServer == nil {
		return nil, fmt.Errorf("redis is required")
	}
	if server.middleware == nil {
		server.middleware = middleware.New(server.log)
	}
	if server.validator == nil {
		server.validator = NewValidator()
	}
	if server.utils == nil {
		server.utils = utils.New()
	}
	if server.voices == nil {
		server.voices = audio.NewVoiceCatalog("")
	}
	if server.resolver == nil {
		server.resolver = announcer.NewResolver(getEnv("AUDIO_BASE_PATH", "/assets/audio"))
	}
	if server.sessions == nil {
		server.sessions = session.NewManager(server.log)
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log)
		return nil
	}
}

// WithCurriculum loads the curriculum documents eagerly so a broken document fails
// the start instead of the first request.
func WithCurriculum(curriculumPath, videosPath string) ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before curriculum")
		}
		loader := curriculumCore.NewLoader(curriculumPath, videosPath, s.log)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := loader.Get(ctx); err != nil {
			return fmt.Errorf("failed to load curriculum: %w", err)
		}

		s.curriculum = loader
		return nil
	}
}

// WithCurriculumWatcher reloads the curriculum when its documents change on disk.
func WithCurriculumWatcher() ServerOption {
	return func(s *Server) error {
		if s.curriculum == nil {
			return fmt.Errorf("curriculum must be loaded before its watcher")
		}
		watcher, err := curriculumCore.NewWatcher(s.curriculum, s.log)
		if err != nil {
			return fmt.Errorf("failed to watch curriculum: %w", err)
		}
		s.watcher = watcher
		return nil
	}
}

func WithVoiceCatalog(path string) ServerOption {
	return func(s *Server) error {
		catalog := audio.NewVoiceCatalog(path)
		if _, err := catalog.All(); err != nil {
			return fmt.Errorf("failed to load voices: %w", err)
		}
		s.voices = catalog
		return nil
	}
}

func WithAudioBasePath(base string) ServerOption {
	return func(s *Server) error {
		s.resolver = announcer.NewResolver(base)
		return nil
	}
}

func WithRedisServer(redisServer redis.IRedis) ServerOption {
	return func(s *Server) error {
		s.redisServer = redisServer
		return nil
	}
}

// WithDatabase enables the passage history. Without DB_NAME the history is disabled.
func WithDatabase() ServerOption {
	return func(s *Server) error {
		if os.Getenv("DB_NAME") == "" {
			if s.log != nil {
				s.log.Warn("DB_NAME not set, passage history disabled")
			}
			return nil
		}

		db, err := postgres.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to connect to database: %v", err)
			}
			return fmt.Errorf("failed to create database connection: %w", err)
		}
		s.db = db
		return nil
	}
}

// WithS3Client enables export uploads. Without AWS_BUCKET_NAME uploads are disabled.
func WithS3Client() ServerOption {
	return func(s *Server) error {
		client, err := s3.New()
		if errors.Is(err, s3.ErrBucketNotConfigured) {
			if s.log != nil {
				s.log.Warn("AWS_BUCKET_NAME not set, export uploads disabled")
			}
			return nil
		}
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to initialize S3 client: %v", err)
			}
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		s.s3Client = client
		return nil
	}
}

func WithSessionManager(manager *session.Manager) ServerOption {
	return func(s *Server) error {
		s.sessions = manager
		return nil
	}
}

// WithTickInterval shortens the live session clock, used by end-to-end tests.
func WithTickInterval(d time.Duration) ServerOption {
	return func(s *Server) error {
		s.tickInterval = d
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New()
		return nil
	}
}

func (s *Server) RegisterHandler() error {
	// Curriculum Domain
	curriculumServices := curriculumService.NewCurriculumService(s.log, s.curriculum, s.voices)
	curriculumHandlers := curriculumHandler.New(s.log, s.validator, s.middleware, curriculumServices)

	// Passage Domain
	var passageRepo passageRepository.Repository
	if s.db != nil {
		passageRepo = passageRepository.New(s.db, s.log)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := passageRepo.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("failed to prepare passage history: %w", err)
		}
	}

	passageServices := passageService.NewPassageService(
		s.log, s.curriculum, s.redisServer, passageRepo, s.s3Client,
		s.voices, s.resolver, s.sessions, s.utils,
		passageService.Options{TickInterval: s.tickInterval},
	)
	passageHandlers := passageHandler.New(s.log, s.validator, s.middleware, passageServices)

	s.setupHealthCheck()
	s.handlers = append(s.handlers, curriculumHandlers, passageHandlers)
	return nil
}

func (s *Server) Run() error {
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(s.middleware.NewLoggingMiddleware())
	router := s.engine.Group("/api/v1")

	for _, h := range s.handlers {
		h.Start(router)
	}

	if s.watcher != nil {
		s.watcher.Start(context.Background())
	}

	port := getEnv("APP_PORT", "3000")
	return s.engine.Listen(fmt.Sprintf(":%s", port))
}

// Shutdown closes the live sessions first so clients get their last events, then
// stops the listener and releases the backends.
func (s *Server) Shutdown(ctx context.Context) error {
	s.sessions.CloseAll()

	var errs []error
	if s.watcher != nil {
		errs = append(errs, s.watcher.Stop())
	}
	errs = append(errs, s.engine.ShutdownWithContext(ctx))
	if s.db != nil {
		errs = append(errs, s.db.Close())
	}
	return errors.Join(errs...)
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/", func(ctx *fiber.Ctx) error {
		c, cancel := context.WithTimeout(ctx.UserContext(), 2*time.Second)
		defer cancel()

		status := fiber.Map{
			"message": "Server is Healthy!",
			"redis":   "ok",
		}
		if err := s.redisServer.Ping(c); err != nil {
			status["redis"] = "unreachable"
		}
		return ctx.JSON(status)
	})
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
