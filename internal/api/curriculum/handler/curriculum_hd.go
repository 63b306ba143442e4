package curriculumHandler

import (
	"context"
	"net/url"
	"strings"
	"time"

	"KeikoHub/internal/api/curriculum"
	contextPkg "KeikoHub/pkg/context"
	"KeikoHub/pkg/handlerUtil"
	"KeikoHub/pkg/log"

	"github.com/gofiber/fiber/v2"
)

const requestTimeout = 5 * time.Second

// pathParam returns a decoded route parameter; grade names carry spaces and accents.
func pathParam(ctx *fiber.Ctx, name string) string {
	raw := ctx.Params(name)
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		decoded = raw
	}
	return strings.TrimSpace(decoded)
}

func (h *CurriculumHandler) GetGrades(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), requestTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	grades, err := h.curriculumService.GetGrades(c)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_grades")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, curriculum.GradesResponse{Grades: grades})
	}
}

func (h *CurriculumHandler) GetPositions(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), requestTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)
	grade := pathParam(ctx, "grade")

	positions, err := h.curriculumService.GetPositions(c, grade)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_positions")
	}

	res := curriculum.PositionsResponse{
		Grade:     grade,
		Positions: make([]curriculum.PositionResponse, 0, len(positions)),
	}
	for _, p := range positions {
		res.Positions = append(res.Positions, curriculum.PositionResponse{
			Position: string(p),
			Label:    p.SpokenName(),
		})
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, res)
	}
}

func (h *CurriculumHandler) GetAttacks(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), requestTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)
	grade := pathParam(ctx, "grade")

	position, attacks, err := h.curriculumService.GetAttacks(c, grade, pathParam(ctx, "position"))
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_attacks")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, curriculum.AttacksResponse{
			Grade:    grade,
			Position: string(position),
			Attacks:  attacks,
		})
	}
}

func (h *CurriculumHandler) GetTechniques(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), requestTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	req := curriculum.TechniquesRequest{
		Grade:    pathParam(ctx, "grade"),
		Position: pathParam(ctx, "position"),
		Attack:   strings.TrimSpace(ctx.Query("attack")),
	}
	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"grade":      req.Grade,
		"attack":     req.Attack,
	}).Debug("Processing get techniques request")

	position, techniques, err := h.curriculumService.GetTechniques(c, req.Grade, req.Position, req.Attack)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_techniques")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, curriculum.TechniquesResponse{
			Grade:      req.Grade,
			Position:   string(position),
			Attack:     req.Attack,
			Techniques: techniques,
		})
	}
}

func (h *CurriculumHandler) GetVideos(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), requestTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	var req curriculum.VideosRequest
	if err := ctx.QueryParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}
	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	videos, err := h.curriculumService.GetVideos(c, req.Attack, req.Technique)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_videos")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, curriculum.VideosResponse{
			Attack:    req.Attack,
			Technique: req.Technique,
			Videos:    videos,
		})
	}
}

func (h *CurriculumHandler) GetVoices(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), requestTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	voices, err := h.curriculumService.GetVoices(c)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_voices")
	}

	res := curriculum.VoicesResponse{Voices: make([]curriculum.VoiceResponse, 0, len(voices))}
	for _, v := range voices {
		res.Voices = append(res.Voices, curriculum.VoiceResponse{
			Ref:      v.Ref(),
			ID:       v.ID,
			Label:    v.Label,
			Language: v.Language,
			Gender:   v.Gender,
		})
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, res)
	}
}
