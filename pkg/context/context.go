package context

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

type key string

const (
	RequestIDKey key = "request_id"
	PassageIDKey key = "passage_id"
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

func GetRequestID(ctx context.Context) string {
	requestID, ok := ctx.Value(RequestIDKey).(string)
	if !ok || requestID == "" {
		return "unknown"
	}
	return requestID
}

func WithPassageID(ctx context.Context, passageID string) context.Context {
	return context.WithValue(ctx, PassageIDKey, passageID)
}

func GetPassageID(ctx context.Context) (string, bool) {
	passageID, ok := ctx.Value(PassageIDKey).(string)
	return passageID, ok && passageID != ""
}

// FromFiberCtx carries the request id of a fiber request, and the passage id a
// ticket admitted it for, into a fresh context. fiber recycles its Ctx, so nothing
// else of it may outlive the handler.
func FromFiberCtx(c *fiber.Ctx) context.Context {
	ctx := context.Background()

	requestID, ok := c.Locals("X-Request-ID").(string)
	if !ok || requestID == "" {
		requestID = c.Get("X-Request-ID")

		if requestID == "" {
			requestID = "unknown"
		}
	}

	ctx = WithRequestID(ctx, requestID)
	if passageID, ok := c.Locals(string(PassageIDKey)).(string); ok && passageID != "" {
		ctx = WithPassageID(ctx, passageID)
	}
	return ctx
}
