package serverutils

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"meal-ordering-be/internal/entity"
	"meal-ordering-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newTestApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	auth := JwtMiddleware(testSecret)
	app.Get("/me", auth, func(ctx *fiber.Ctx) error {
		p, err := PrincipalFrom(ctx)
		if err != nil {
			return err
		}
		return ctx.JSON(SuccessResponse("me", p.UserId.String()))
	})
	app.Get("/admin", auth, AdminOnly, func(ctx *fiber.Ctx) error {
		return ctx.JSON(SuccessResponse[any]("ok", nil))
	})
	app.Get("/empty", func(ctx *fiber.Ctx) error {
		return ctx.JSON(SuccessResponse("nothing yet", []string{}))
	})
	app.Get("/conflict", func(ctx *fiber.Ctx) error {
		return apperror.ErrDuplicateBooking
	})
	return app
}

type envelope struct {
	ErrorBody
	Data any `json:"data"`
}

func decode(t *testing.T, body io.Reader) envelope {
	var resp envelope
	require.NoError(t, json.NewDecoder(body).Decode(&resp))
	return resp
}

func TestJwtMiddlewareStoresPrincipal(t *testing.T) {
	app := newTestApp()
	userId := uuid.New()
	token, err := GenerateToken(testSecret, userId, entity.UserRoleStudent, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
	assert.Equal(t, userId.String(), decode(t, res.Body).Data)
}

func TestJwtMiddlewareRejectsMissingAndForeignTokens(t *testing.T) {
	app := newTestApp()

	res, err := app.Test(httptest.NewRequest("GET", "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)

	token, _ := GenerateToken("other-secret", uuid.New(), entity.UserRoleStudent, time.Hour)
	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	res, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
}

func TestAdminOnly(t *testing.T) {
	app := newTestApp()

	studentToken, _ := GenerateToken(testSecret, uuid.New(), entity.UserRoleStudent, time.Hour)
	req := httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+studentToken)
	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, res.StatusCode)
	assert.Equal(t, "ADMIN_ONLY", decode(t, res.Body).ErrorCode)

	adminToken, _ := GenerateToken(testSecret, uuid.New(), entity.UserRoleAdmin, time.Hour)
	req = httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	res, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
}

func TestErrorHandlerMapsKinds(t *testing.T) {
	app := newTestApp()
	res, err := app.Test(httptest.NewRequest("GET", "/conflict", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, res.StatusCode)

	body := decode(t, res.Body)
	assert.False(t, body.Success)
	assert.Equal(t, "DUPLICATE_BOOKING", body.ErrorCode)

	assert.Equal(t, fiber.StatusBadGateway, StatusFor(apperror.ErrRefundFailed))
	assert.Equal(t, fiber.StatusNotFound, StatusFor(apperror.ErrMealNotFound))
}

func TestSuccessResponseKeepsEmptyData(t *testing.T) {
	app := newTestApp()
	res, err := app.Test(httptest.NewRequest("GET", "/empty", nil))
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(res.Body).Decode(&raw))
	assert.JSONEq(t, `[]`, string(raw["data"]))
}

func TestErrorResponseOmitsData(t *testing.T) {
	app := newTestApp()
	res, err := app.Test(httptest.NewRequest("GET", "/conflict", nil))
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(res.Body).Decode(&raw))
	assert.NotContains(t, raw, "data")
	assert.JSONEq(t, `"DUPLICATE_BOOKING"`, string(raw["error_code"]))
}

func TestValidateRequestReportsFields(t *testing.T) {
	type bookMeal struct {
		MealType string `validate:"required,oneof=breakfast lunch dinner"`
		MealDate string `validate:"required,datetime=2006-01-02"`
	}

	err := ValidateRequest(bookMeal{MealType: "brunch", MealDate: "06/01/2024"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	assert.Contains(t, err.Error(), "meal_type must be one of")
	assert.Contains(t, err.Error(), "meal_date must match")

	assert.NoError(t, ValidateRequest(bookMeal{MealType: "lunch", MealDate: "2024-06-01"}))
}
