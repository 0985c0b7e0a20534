package controller

import (
	"meal-ordering-be/internal/pkg/serverutils"
	"meal-ordering-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IPlanController interface {
	RegisterRoutes(api fiber.Router)
	GetActivePlans(ctx *fiber.Ctx) error
}

type planController struct {
	catalogService service.ICatalogService
}

func NewPlanController(catalogService service.ICatalogService) IPlanController {
	return &planController{catalogService: catalogService}
}

func (c *planController) RegisterRoutes(api fiber.Router) {
	api.Get("/plans", c.GetActivePlans)
}

// GetActivePlans lists the purchasable catalog, cheapest first.
func (c *planController) GetActivePlans(ctx *fiber.Ctx) error {
	plans, err := c.catalogService.ListActivePlans(ctx.UserContext())
	if err != nil {
		return serverutils.WriteError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Plans retrieved", plans))
}
