package passageHandler

import (
	passageService "KeikoHub/internal/api/passage/service"
	"KeikoHub/internal/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

type PassageHandler struct {
	log            *logrus.Logger
	validator      *validator.Validate
	middleware     middleware.Middleware
	passageService passageService.IPassageService
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	passageService passageService.IPassageService,
) *PassageHandler {
	return &PassageHandler{
		log:            log,
		validator:      validate,
		middleware:     middleware,
		passageService: passageService,
	}
}

func (h *PassageHandler) Start(srv fiber.Router) {
	srv.Post("/passages", h.middleware.NewRateLimiter, h.GeneratePassage)

	passages := srv.Group("/passages")
	passages.Get("/history", h.middleware.NewRateLimiter, h.GetHistory)
	passages.Get("/:id", h.middleware.NewRateLimiter, h.GetPassage)
	passages.Delete("/:id", h.middleware.NewRateLimiter, h.middleware.NewTicketMiddleware, h.DiscardPassage)
	passages.Get("/:id/export", h.middleware.NewRateLimiter, h.ExportPassage)
	passages.Get("/:id/ws", h.middleware.NewTicketMiddleware, h.RequireUpgrade, websocket.New(h.LiveSession))
}
