package controller

import (
	"fmt"

	"meal-ordering-be/internal/dto"
	"meal-ordering-be/internal/pkg/serverutils"
	"meal-ordering-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAdminController interface {
	RegisterRoutes(r fiber.Router, authMiddleware fiber.Handler)
	GetDashboardStats(ctx *fiber.Ctx) error
	Export(ctx *fiber.Ctx) error

	GetAllUsers(ctx *fiber.Ctx) error
	UpdateUser(ctx *fiber.Ctx) error

	GetAllPlans(ctx *fiber.Ctx) error
	CreatePlan(ctx *fiber.Ctx) error
	DeactivatePlan(ctx *fiber.Ctx) error

	// Refund Management
	GetRefunds(ctx *fiber.Ctx) error
	ApproveRefund(ctx *fiber.Ctx) error
	RejectRefund(ctx *fiber.Ctx) error

	// Subscription Management
	GetSubscriptions(ctx *fiber.Ctx) error
	CancelSubscription(ctx *fiber.Ctx) error

	GetLogs(ctx *fiber.Ctx) error
	GetLogDetail(ctx *fiber.Ctx) error
}

type adminController struct {
	service        service.IAdminService
	catalogService service.ICatalogService
}

func NewAdminController(service service.IAdminService, catalogService service.ICatalogService) IAdminController {
	return &adminController{
		service:        service,
		catalogService: catalogService,
	}
}

func (c *adminController) RegisterRoutes(r fiber.Router, authMiddleware fiber.Handler) {
	h := r.Group("/admin", authMiddleware, serverutils.AdminOnly)

	// Dashboard
	h.Get("/dashboard", c.GetDashboardStats)
	h.Get("/export", c.Export)

	// Users
	h.Get("/users", c.GetAllUsers)
	h.Patch("/users/:id", c.UpdateUser)

	// Plan Management
	h.Get("/plans", c.GetAllPlans)
	h.Post("/plans", c.CreatePlan)
	h.Post("/plans/:id/deactivate", c.DeactivatePlan)

	// Refund Management
	h.Get("/refunds", c.GetRefunds)
	h.Post("/refunds/:id/approve", c.ApproveRefund)
	h.Post("/refunds/:id/reject", c.RejectRefund)

	// Subscription Management
	h.Get("/subscriptions", c.GetSubscriptions)
	h.Post("/subscriptions/:id/cancel", c.CancelSubscription)

	// Logs
	h.Get("/logs", c.GetLogs)
	h.Get("/logs/:id", c.GetLogDetail)
}

func (c *adminController) GetDashboardStats(ctx *fiber.Ctx) error {
	admin, err := serverutils.PrincipalFrom(ctx)
	if err != nil {
		return serverutils.WriteError(ctx, err)
	}
	stats, err := c.service.GetDashboardStats(ctx.UserContext(), admin)
	if err != nil {
		return serverutils.WriteError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Dashboard stats", stats))
}

func (c *adminController) Export(ctx *fiber.Ctx) error {
	admin, err := serverutils.PrincipalFrom(ctx)
	if err != nil {
		return serverutils.WriteError(ctx, err)
	}
	kind := ctx.Query("type")

	rows, err := c.service.Export(ctx.UserContext(), admin, kind)
	if err != nil {
		return serverutils.WriteError(ctx, err)
	}
	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s.json"`, kind))
	return ctx.JSON(rows)
}

func (c *adminController) GetAllUsers(ctx *fiber.Ctx) error {
	admin, err := serverutils.PrincipalFrom(ctx)
	if err != nil {
		return serverutils.WriteError(ctx, err)
	}
	var query dto.AdminUserListQuery
	if err := ctx.QueryParser(&query); err != nil {
		return serverutils.WriteError(ctx, err)
	}

	res, err := c.service.GetAllUsers(ctx.UserContext(), admin, query)
	if err != nil {
		return serverutils.WriteError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Users retrieved", res))
}

func (c *adminController) UpdateUser(ctx *fiber.Ctx) error {
	admin, err := serverutils.PrincipalFrom(ctx)
	if err != nil {
		return serverutils.WriteError(ctx, err)
	}
	userId, err := pathID(ctx, "id")
	if err != nil {
		return serverutils.WriteError(ctx, err)
	}
	var req dto.AdminUpdateUserRequest
	if err := bind(ctx, &req); err != nil {
		return serverutils.WriteError(ctx, err)
	}

	res, err := c.service.UpdateUser(ctx.UserContext(), admin, userId, req)
	if err != nil {
		return serverutils.WriteError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("User updated", res))
}

func (c *adminController) GetAllPlans(ctx *fiber.Ctx) error {
	plans, err := c.catalogService.ListAllPlans(ctx.UserContext())
	if err != nil {
		return serverutils.WriteError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Plans retrieved", plans))
}

func (c *adminController) CreatePlan(ctx *fiber.Ctx) error {
	admin, err := serverutils.PrincipalFrom(ctx)
	if err != nil {
		return serverutils.WriteError(ctx, err)
	}
	var req dto.AdminCreatePlanRequest
	if err := bind(ctx, &req); err != nil {
		return serverutils.WriteError(ctx, err)
	}

	res, err := c.catalogService.CreatePlan(ctx.UserContext(), admin, req)
	if err != nil {
		return serverutils.WriteError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Plan created", res))
}

func (c *adminController) DeactivatePlan(ctx *fiber.Ctx) error {
	admin, err := serverutils.PrincipalFrom(ctx)
	if err != nil {
		return serverutils.WriteError(ctx, err)
	}
	planId, err := pathID(ctx, "id")
	if err != nil {
		return serverutils.WriteError(ctx, err)
	}

	res, err := c.catalogService.DeactivatePlan(ctx.UserContext(), admin, planId)
	if err != nil {
		return serverutils.WriteError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Plan deactivated", res))
}

func (c *adminController) GetRefunds(ctx *fiber.Ctx) error {
	admin, err := serverutils.PrincipalFrom(ctx)
	if err != nil {
		return serverutils.WriteError(ctx, err)
	}
	var query dto.PageQuery
	if err := ctx.QueryParser(&query); err != nil {
		return serverutils.WriteError(ctx, err)
	}

	res, err := c.service.GetRefunds(ctx.UserContext(), admin, query)
	if err != nil {
		return serverutils.WriteError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Refund requests", res))
}

func (c *adminController) ApproveRefund(ctx *fiber.Ctx) error {
	admin, err := serverutils.PrincipalFrom(ctx)
	if err != nil {
		return serverutils.WriteError(ctx, err)
	}
	refundId, err := pathID(ctx, "id")
	if err != nil {
		return serverutils.WriteError(ctx, err)
	}

	res, err := c.service.ApproveRefund(ctx.UserContext(), admin, refundId)
	if err != nil {
		return serverutils.WriteError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Refund approved", res))
}

func (c *adminController) RejectRefund(ctx *fiber.Ctx) error {
	admin, err := serverutils.PrincipalFrom(ctx)
	if err != nil {
		return serverutils.WriteError(ctx, err)
	}
	refundId, err := pathID(ctx, "id")
	if err != nil {
		return serverutils.WriteError(ctx, err)
	}

	res, err := c.service.RejectRefund(ctx.UserContext(), admin, refundId)
	if err != nil {
		return serverutils.WriteError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Refund rejected", res))
}

func (c *adminController) GetSubscriptions(ctx *fiber.Ctx) error {
	admin, err := serverutils.PrincipalFrom(ctx)
	if err != nil {
		return serverutils.WriteError(ctx, err)
	}
	var query dto.PageQuery
	if err := ctx.QueryParser(&query); err != nil {
		return serverutils.WriteError(ctx, err)
	}

	res, err := c.service.GetSubscriptions(ctx.UserContext(), admin, query)
	if err != nil {
		return serverutils.WriteError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Subscriptions", res))
}

func (c *adminController) CancelSubscription(ctx *fiber.Ctx) error {
	admin, err := serverutils.PrincipalFrom(ctx)
	if err != nil {
		return serverutils.WriteError(ctx, err)
	}
	subscriptionId, err := pathID(ctx, "id")
	if err != nil {
		return serverutils.WriteError(ctx, err)
	}

	res, err := c.service.CancelSubscription(ctx.UserContext(), admin, subscriptionId)
	if err != nil {
		return serverutils.WriteError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Subscription cancelled", res))
}

func (c *adminController) GetLogs(ctx *fiber.Ctx) error {
	admin, err := serverutils.PrincipalFrom(ctx)
	if err != nil {
		return serverutils.WriteError(ctx, err)
	}
	var query dto.PageQuery
	if err := ctx.QueryParser(&query); err != nil {
		return serverutils.WriteError(ctx, err)
	}

	logs, err := c.service.GetSystemLogs(ctx.UserContext(), admin, query)
	if err != nil {
		return serverutils.WriteError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("System logs", logs))
}

func (c *adminController) GetLogDetail(ctx *fiber.Ctx) error {
	admin, err := serverutils.PrincipalFrom(ctx)
	if err != nil {
		return serverutils.WriteError(ctx, err)
	}

	entry, err := c.service.GetLogDetail(ctx.UserContext(), admin, ctx.Params("id"))
	if err != nil {
		return serverutils.WriteError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Log detail", entry))
}
