package handlerUtil

import (
	"context"
	"errors"

	jwtPkg "KeikoHub/pkg/jwt"
	"KeikoHub/pkg/log"
	"KeikoHub/pkg/redis"
	"KeikoHub/pkg/response"

	passageCore "KeikoHub/internal/passage"
	"KeikoHub/internal/session"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

type ErrorHandler struct {
	logger *logrus.Logger
}

func New(logger *logrus.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger: logger,
	}
}

func (h *ErrorHandler) Handle(c *fiber.Ctx, requestID string, err error, path string, operation string) error {
	fields := log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       path,
		"operation":  operation,
	}

	// checked before response.Error so the grade named in the message survives
	if errors.Is(err, passageCore.ErrNoTechniquesAvailable) {
		h.logger.WithFields(fields).Warn("No techniques match the request")
		return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{
			Error: err.Error(),
			Code:  "NO_TECHNIQUES",
		})
	}

	var respErr *response.Error
	if errors.As(err, &respErr) {
		fields["code"] = respErr.Code
		h.logger.WithFields(fields).Warn("Operation failed with error response")
		return c.Status(respErr.Code).JSON(fiber.Map{"error": err.Error()})
	}

	if errors.Is(err, redis.ErrPassageNotFound) {
		h.logger.WithFields(fields).Warn("Passage not found")
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error: "Passage not found or expired",
			Code:  "PASSAGE_NOT_FOUND",
		})
	}

	if errors.Is(err, jwtPkg.ErrMissingTicket) || errors.Is(err, jwtPkg.ErrInvalidTicket) || errors.Is(err, jwtPkg.ErrTicketPassage) {
		h.logger.WithFields(fields).Warn("Passage ticket rejected")
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error: "Unauthorized, passage ticket invalid or expired",
			Code:  "INVALID_TICKET",
		})
	}

	if errors.Is(err, session.ErrSessionClosed) {
		h.logger.WithFields(fields).Warn("Session already closed")
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{
			Error: "Session already closed",
			Code:  "SESSION_CLOSED",
		})
	}

	if errors.Is(err, context.DeadlineExceeded) {
		h.logger.WithFields(fields).Warn("Operation timed out")
		return h.HandleRequestTimeout(c)
	}

	traceID := log.ErrorWithTraceID(h.logger, fields, "Unexpected error")

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":    "An unexpected error occurred",
		"trace_id": traceID,
	})
}

func (h *ErrorHandler) HandleValidationError(c *fiber.Ctx, requestID string, err error, path string) error {
	h.logger.WithFields(log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       path,
	}).Warn("Validation failed")

	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": "Validation failed: " + err.Error(),
		"code":  "VALIDATION_ERROR",
	})
}

func (h *ErrorHandler) HandleRequestTimeout(c *fiber.Ctx) error {
	return c.Status(fiber.StatusRequestTimeout).JSON(utils.StatusMessage(fiber.StatusRequestTimeout))
}

func (h *ErrorHandler) HandleSuccess(c *fiber.Ctx, statusCode int, data interface{}) error {
	if data == nil {
		return c.SendStatus(statusCode)
	}
	return c.Status(statusCode).JSON(data)
}
