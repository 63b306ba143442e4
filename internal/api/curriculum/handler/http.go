package curriculumHandler

import (
	curriculumService "KeikoHub/internal/api/curriculum/service"
	"KeikoHub/internal/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type CurriculumHandler struct {
	log               *logrus.Logger
	validator         *validator.Validate
	middleware        middleware.Middleware
	curriculumService curriculumService.ICurriculumService
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	curriculumService curriculumService.ICurriculumService,
) *CurriculumHandler {
	return &CurriculumHandler{
		log:               log,
		validator:         validate,
		middleware:        middleware,
		curriculumService: curriculumService,
	}
}

func (h *CurriculumHandler) Start(srv fiber.Router) {
	curriculum := srv.Group("/curriculum")

	curriculum.Get("/grades", h.middleware.NewRateLimiter, h.GetGrades)
	curriculum.Get("/grades/:grade/positions", h.middleware.NewRateLimiter, h.GetPositions)
	curriculum.Get("/grades/:grade/positions/:position/attacks", h.middleware.NewRateLimiter, h.GetAttacks)
	curriculum.Get("/grades/:grade/positions/:position/techniques", h.middleware.NewRateLimiter, h.GetTechniques)
	curriculum.Get("/videos", h.middleware.NewRateLimiter, h.GetVideos)
	curriculum.Get("/voices", h.middleware.NewRateLimiter, h.GetVoices)
}
