package controller

import (
	"meal-ordering-be/internal/dto"
	"meal-ordering-be/internal/pkg/serverutils"
	"meal-ordering-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAuthController interface {
	RegisterRoutes(r fiber.Router)
	Login(ctx *fiber.Ctx) error
}

type authController struct {
	authService service.IAuthService
}

func NewAuthController(authService service.IAuthService) IAuthController {
	return &authController{authService: authService}
}

func (c *authController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/auth")
	h.Post("/login", c.Login)
}

func (c *authController) Login(ctx *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := bind(ctx, &req); err != nil {
		return serverutils.WriteError(ctx, err)
	}

	res, err := c.authService.Login(ctx.UserContext(), &req)
	if err != nil {
		return serverutils.WriteError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Login successful", res))
}
