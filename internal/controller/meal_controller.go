package controller

import (
	"meal-ordering-be/internal/dto"
	"meal-ordering-be/internal/pkg/serverutils"
	"meal-ordering-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IMealController interface {
	RegisterRoutes(r fiber.Router, authMiddleware fiber.Handler)
	BookMeal(ctx *fiber.Ctx) error
	GetHistory(ctx *fiber.Ctx) error
	CancelMeal(ctx *fiber.Ctx) error
	BookSubscription(ctx *fiber.Ctx) error
	GetCurrentSubscription(ctx *fiber.Ctx) error
	GetDashboard(ctx *fiber.Ctx) error
}

type mealController struct {
	service service.IMealService
}

func NewMealController(service service.IMealService) IMealController {
	return &mealController{service: service}
}

func (c *mealController) RegisterRoutes(r fiber.Router, authMiddleware fiber.Handler) {
	meals := r.Group("/meals", authMiddleware)
	meals.Post("/", c.BookMeal)
	meals.Get("/", c.GetHistory)
	meals.Post("/:id/cancel", c.CancelMeal)

	subs := r.Group("/subscriptions", authMiddleware)
	subs.Post("/", c.BookSubscription)
	subs.Get("/current", c.GetCurrentSubscription)

	r.Get("/dashboard", authMiddleware, c.GetDashboard)
}

func (c *mealController) BookMeal(ctx *fiber.Ctx) error {
	principal, err := serverutils.PrincipalFrom(ctx)
	if err != nil {
		return serverutils.WriteError(ctx, err)
	}
	var req dto.BookMealRequest
	if err := bind(ctx, &req); err != nil {
		return serverutils.WriteError(ctx, err)
	}

	res, err := c.service.BookMeal(ctx.UserContext(), principal, req)
	if err != nil {
		return serverutils.WriteError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Meal booked, payment required", res))
}

func (c *mealController) GetHistory(ctx *fiber.Ctx) error {
	principal, err := serverutils.PrincipalFrom(ctx)
	if err != nil {
		return serverutils.WriteError(ctx, err)
	}
	var query dto.MealHistoryQuery
	if err := ctx.QueryParser(&query); err != nil {
		return serverutils.WriteError(ctx, err)
	}
	if err := serverutils.ValidateRequest(query); err != nil {
		return serverutils.WriteError(ctx, err)
	}

	res, err := c.service.GetHistory(ctx.UserContext(), principal, query)
	if err != nil {
		return serverutils.WriteError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Meal history", res))
}

func (c *mealController) CancelMeal(ctx *fiber.Ctx) error {
	principal, err := serverutils.PrincipalFrom(ctx)
	if err != nil {
		return serverutils.WriteError(ctx, err)
	}
	mealId, err := pathID(ctx, "id")
	if err != nil {
		return serverutils.WriteError(ctx, err)
	}

	res, err := c.service.CancelMeal(ctx.UserContext(), principal, mealId)
	if err != nil {
		return serverutils.WriteError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse(res.RefundMessage, res))
}

func (c *mealController) BookSubscription(ctx *fiber.Ctx) error {
	principal, err := serverutils.PrincipalFrom(ctx)
	if err != nil {
		return serverutils.WriteError(ctx, err)
	}
	var req dto.BookSubscriptionRequest
	if err := bind(ctx, &req); err != nil {
		return serverutils.WriteError(ctx, err)
	}

	res, err := c.service.BookSubscription(ctx.UserContext(), principal, req)
	if err != nil {
		return serverutils.WriteError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Subscription booked", res))
}

func (c *mealController) GetCurrentSubscription(ctx *fiber.Ctx) error {
	principal, err := serverutils.PrincipalFrom(ctx)
	if err != nil {
		return serverutils.WriteError(ctx, err)
	}

	res, err := c.service.GetCurrentSubscription(ctx.UserContext(), principal)
	if err != nil {
		return serverutils.WriteError(ctx, err)
	}
	if res == nil {
		return ctx.JSON(serverutils.SuccessResponse[*dto.SubscriptionResponse]("No active subscription", nil))
	}
	return ctx.JSON(serverutils.SuccessResponse("Current subscription", res))
}

func (c *mealController) GetDashboard(ctx *fiber.Ctx) error {
	principal, err := serverutils.PrincipalFrom(ctx)
	if err != nil {
		return serverutils.WriteError(ctx, err)
	}

	res, err := c.service.GetDashboard(ctx.UserContext(), principal)
	if err != nil {
		return serverutils.WriteError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Dashboard", res))
}
