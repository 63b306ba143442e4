package passageHandler

import (
	"context"
	"errors"
	"time"

	"KeikoHub/internal/api/passage"
	contextPkg "KeikoHub/pkg/context"
	"KeikoHub/pkg/handlerUtil"
	"KeikoHub/pkg/log"

	"github.com/gofiber/fiber/v2"
)

const requestTimeout = 10 * time.Second

func (h *PassageHandler) GeneratePassage(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), requestTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing generate passage request")

	var req passage.GeneratePassageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	res, err := h.passageService.GeneratePassage(c, req)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "generate_passage")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusCreated, res)
	}
}

func (h *PassageHandler) GetPassage(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), requestTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	id := ctx.Params("id")
	if id == "" {
		return errHandler.HandleValidationError(ctx, requestID,
			errors.New("passage ID is required"), ctx.Path())
	}

	p, err := h.passageService.GetPassage(c, id)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_passage")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, p)
	}
}

// DiscardPassage forgets a passage for the holder of its ticket.
func (h *PassageHandler) DiscardPassage(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), requestTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	if err := h.passageService.DiscardPassage(c, h.middleware.GetPassageID(ctx)); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "discard_passage")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusNoContent, nil)
	}
}

// ExportPassage downloads the text sheet of a passage, or stores it on S3 and
// returns its links when called with upload=true.
func (h *PassageHandler) ExportPassage(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), requestTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)
	id := ctx.Params("id")

	if ctx.QueryBool("upload") {
		res, err := h.passageService.UploadExport(c, id)
		if err != nil {
			return errHandler.Handle(ctx, requestID, err, ctx.Path(), "upload_export")
		}

		select {
		case <-c.Done():
			return errHandler.HandleRequestTimeout(ctx)
		default:
			return errHandler.HandleSuccess(ctx, fiber.StatusCreated, res)
		}
	}

	fileName, content, err := h.passageService.ExportPassage(c, id)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "export_passage")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		ctx.Attachment(fileName)
		ctx.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")
		return ctx.Status(fiber.StatusOK).Send(content)
	}
}

func (h *PassageHandler) GetHistory(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), requestTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	var req passage.HistoryRequest
	if err := ctx.QueryParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}
	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	records, err := h.passageService.GetHistory(c, req)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_history")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, passage.HistoryResponse{Records: records})
	}
}
