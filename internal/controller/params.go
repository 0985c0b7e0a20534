package controller

import (
	"meal-ordering-be/internal/pkg/apperror"
	"meal-ordering-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func pathID(ctx *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params(name))
	if err != nil {
		return uuid.Nil, apperror.WithMessage(apperror.ErrInvalidInput, "invalid "+name+" format")
	}
	return id, nil
}

// bind parses and validates a JSON body.
func bind(ctx *fiber.Ctx, req interface{}) error {
	if err := ctx.BodyParser(req); err != nil {
		return apperror.WithMessage(apperror.ErrInvalidInput, "invalid request body")
	}
	return serverutils.ValidateRequest(req)
}
