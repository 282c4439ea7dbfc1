package controller

import (
	"ai-chat-be/internal/pkg/serverutils"
	"ai-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ITenantController interface {
	RegisterRoutes(r fiber.Router)
	Status(ctx *fiber.Ctx) error
	Retry(ctx *fiber.Ctx) error
	Dismiss(ctx *fiber.Ctx) error
}

type tenantController struct {
	service service.ITenantService
}

func NewTenantController(service service.ITenantService) ITenantController {
	return &tenantController{service: service}
}

func (c *tenantController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/tenant")
	h.Use(serverutils.JwtMiddleware)
	h.Get("/status", c.Status)
	h.Post("/retry", c.Retry)
	h.Post("/dismiss", c.Dismiss)
}

// Status is polled by the client while its workspace is provisioning;
// every poll is one estimator tick.
func (c *tenantController) Status(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	res, err := c.service.Status(ctx.Context(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Workspace status", res))
}

func (c *tenantController) Retry(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	res, err := c.service.Retry(ctx.Context(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Workspace provisioning restarted", res))
}

func (c *tenantController) Dismiss(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	if err := c.service.Dismiss(ctx.Context(), userId); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Noted, continuing anyway", nil))
}
