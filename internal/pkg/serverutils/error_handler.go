package serverutils

import (
	"errors"

	"meal-ordering-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

// StatusFor maps an error onto an HTTP status by its kind.
func StatusFor(err error) int {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code
	}

	switch apperror.KindOf(err) {
	case apperror.KindValidation:
		return fiber.StatusBadRequest
	case apperror.KindUnauthenticated:
		return fiber.StatusUnauthorized
	case apperror.KindForbidden:
		return fiber.StatusForbidden
	case apperror.KindNotFound:
		return fiber.StatusNotFound
	case apperror.KindConflict:
		return fiber.StatusConflict
	case apperror.KindExternal:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// WriteError renders err in the standard envelope. Internal details are not leaked.
func WriteError(ctx *fiber.Ctx, err error) error {
	status := StatusFor(err)
	resp := ErrorResponse(status, err.Error())

	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		resp.ErrorCode = appErr.Code
	}
	if status == fiber.StatusInternalServerError {
		resp.Message = "internal server error"
		if appErr != nil {
			resp.Message = appErr.Message
		}
	}
	return ctx.Status(status).JSON(resp)
}

// ErrorHandler is installed as fiber's app-level error handler.
func ErrorHandler(ctx *fiber.Ctx, err error) error {
	return WriteError(ctx, err)
}

// ErrorHandlerMiddleware renders errors returned by downstream handlers.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if err := ctx.Next(); err != nil {
			return WriteError(ctx, err)
		}
		return nil
	}
}
