package middleware

import (
	jwtPkg "KeikoHub/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const PassageIDKey = "passage_id"

// NewTicketMiddleware admits a request only with a valid ticket issued for the passage
// named by the :id route parameter.
func (m *middleware) NewTicketMiddleware(ctx *fiber.Ctx) error {
	passageID := ctx.Params("id")

	passageFromTicket, err := jwtPkg.VerifyTicket(jwtPkg.TicketFromRequest(ctx))
	if err != nil {
		m.log.WithFields(logrus.Fields{
			"path":      ctx.Path(),
			"client_ip": ctx.IP(),
			"error":     err.Error(),
		}).Warn("Ticket verification failed")
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized, passage ticket invalid or expired",
			"code":  "INVALID_TICKET",
		})
	}

	if passageID != "" && passageFromTicket != passageID {
		m.log.WithFields(logrus.Fields{
			"path":          ctx.Path(),
			"passage_id":    passageID,
			"ticket_target": passageFromTicket,
		}).Warn("Ticket issued for another passage")
		return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": jwtPkg.ErrTicketPassage.Error(),
			"code":  "TICKET_PASSAGE_MISMATCH",
		})
	}

	ctx.Locals(PassageIDKey, passageFromTicket)
	return ctx.Next()
}
