package controller

import (
	"meal-ordering-be/internal/dto"
	"meal-ordering-be/internal/pkg/logger"
	"meal-ordering-be/internal/pkg/serverutils"
	"meal-ordering-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IPaymentController interface {
	RegisterRoutes(r fiber.Router, authMiddleware fiber.Handler)
	Webhook(ctx *fiber.Ctx) error
	MealCheckout(ctx *fiber.Ctx) error
	SubscriptionCheckout(ctx *fiber.Ctx) error
	MealPaymentSuccess(ctx *fiber.Ctx) error
	RequestRefund(ctx *fiber.Ctx) error
}

type paymentController struct {
	service service.IPaymentService
	logger  logger.ILogger
}

func NewPaymentController(service service.IPaymentService, logger logger.ILogger) IPaymentController {
	return &paymentController{service: service, logger: logger}
}

func (c *paymentController) RegisterRoutes(r fiber.Router, authMiddleware fiber.Handler) {
	h := r.Group("/payment")
	h.Post("/notification", c.Webhook)

	// Protected Routes
	h.Post("/meals/:id/checkout", authMiddleware, c.MealCheckout)
	h.Get("/meals/:id/success", authMiddleware, c.MealPaymentSuccess)
	h.Post("/subscriptions/:id/checkout", authMiddleware, c.SubscriptionCheckout)

	r.Post("/refunds", authMiddleware, c.RequestRefund)
}

// Webhook answers 2xx once a notification is applied or recognised as a replay.
// Anything else makes the processor retry.
func (c *paymentController) Webhook(ctx *fiber.Ctx) error {
	result, err := c.service.HandleNotification(ctx.UserContext(), ctx.Body())
	if err != nil {
		c.logger.Warn("WEBHOOK", "Notification rejected", map[string]interface{}{
			"ip":    ctx.IP(),
			"error": err.Error(),
		})
		return serverutils.WriteError(ctx, err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Notification processed", fiber.Map{
		"event_id":  result.EventId,
		"type":      result.Type,
		"duplicate": result.Duplicate,
		"ignored":   result.Ignored,
	}))
}

func (c *paymentController) MealCheckout(ctx *fiber.Ctx) error {
	principal, err := serverutils.PrincipalFrom(ctx)
	if err != nil {
		return serverutils.WriteError(ctx, err)
	}
	mealId, err := pathID(ctx, "id")
	if err != nil {
		return serverutils.WriteError(ctx, err)
	}

	res, err := c.service.BeginMealCheckout(ctx.UserContext(), principal, mealId)
	if err != nil {
		return serverutils.WriteError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Checkout ready", res))
}

func (c *paymentController) SubscriptionCheckout(ctx *fiber.Ctx) error {
	principal, err := serverutils.PrincipalFrom(ctx)
	if err != nil {
		return serverutils.WriteError(ctx, err)
	}
	subscriptionId, err := pathID(ctx, "id")
	if err != nil {
		return serverutils.WriteError(ctx, err)
	}
	var req dto.SubscriptionCheckoutRequest
	if err := bind(ctx, &req); err != nil {
		return serverutils.WriteError(ctx, err)
	}

	res, err := c.service.BeginSubscriptionCheckout(ctx.UserContext(), principal, subscriptionId, req)
	if err != nil {
		return serverutils.WriteError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Checkout ready", res))
}

// MealPaymentSuccess is hit when the user returns from the processor's finish page.
func (c *paymentController) MealPaymentSuccess(ctx *fiber.Ctx) error {
	principal, err := serverutils.PrincipalFrom(ctx)
	if err != nil {
		return serverutils.WriteError(ctx, err)
	}
	mealId, err := pathID(ctx, "id")
	if err != nil {
		return serverutils.WriteError(ctx, err)
	}

	res, err := c.service.ConfirmMealPayment(ctx.UserContext(), principal, mealId)
	if err != nil {
		return serverutils.WriteError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Meal confirmed", res))
}

func (c *paymentController) RequestRefund(ctx *fiber.Ctx) error {
	principal, err := serverutils.PrincipalFrom(ctx)
	if err != nil {
		return serverutils.WriteError(ctx, err)
	}
	var req dto.UserRefundRequest
	if err := bind(ctx, &req); err != nil {
		return serverutils.WriteError(ctx, err)
	}

	res, err := c.service.RequestRefund(ctx.UserContext(), principal, req)
	if err != nil {
		return serverutils.WriteError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse(res.Message, res))
}
