package serverutils

import (
	"errors"

	"ai-chat-be/internal/apperr"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware translates errors returned by handlers into the
// JSON notice shape the client renders. Untyped errors are reported as
// transport failures so the client shows its retry affordance instead of
// a blank screen.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(fiber.Map{
				"success": false,
				"code":    fiberErr.Code,
				"message": fiberErr.Message,
			})
		}

		kind := apperr.KindOf(err)
		status := apperr.HTTPStatus(kind)
		return ctx.Status(status).JSON(fiber.Map{
			"success": false,
			"code":    status,
			"kind":    string(kind),
			"message": apperr.MessageOf(err),
		})
	}
}
