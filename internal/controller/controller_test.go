package controller

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"meal-ordering-be/internal/entity"
	"meal-ordering-be/internal/pkg/locker"
	"meal-ordering-be/internal/pkg/logger"
	"meal-ordering-be/internal/pkg/serverutils"
	"meal-ordering-be/internal/repository/memory"
	"meal-ordering-be/internal/repository/unitofwork"
	"meal-ordering-be/internal/service"
	"meal-ordering-be/internal/testsupport"
	"meal-ordering-be/pkg/admin/dashboard"
	adminEvents "meal-ordering-be/pkg/admin/events"
	"meal-ordering-be/pkg/admin/plan"
	"meal-ordering-be/pkg/admin/refund"
	"meal-ordering-be/pkg/admin/subscription"
	"meal-ordering-be/pkg/admin/user"
	"meal-ordering-be/pkg/booking"
	"meal-ordering-be/pkg/events"
	"meal-ordering-be/pkg/payment"
	"meal-ordering-be/pkg/payment/paymenttest"
	"meal-ordering-be/pkg/reconcile"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "controller-secret"

var clockNow = time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)

type harness struct {
	app     *fiber.App
	factory unitofwork.RepositoryFactory
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	factory := testsupport.NewFactory(t)
	clock := func() time.Time { return clockNow }
	log := logger.NewNopLogger()
	recorder := events.NewRecorder()
	adminPublisher := adminEvents.NewBusPublisher(recorder, log)
	l := locker.NewMemoryLocker()

	reconciler := reconcile.NewReconciler(paymenttest.NewGateway(), l, recorder, log, reconcile.WithClock(clock))
	engine := booking.NewEngine(l, recorder, reconciler, log, booking.WithClock(clock), booking.WithLocation(time.UTC))
	catalog := service.NewCatalogService(factory, plan.NewManager(log, adminPublisher, clock), memory.NewPlanCache(time.Minute))
	admin := service.NewAdminService(factory, log,
		user.NewManager(log, adminPublisher, clock),
		subscription.NewManager(log, adminPublisher, clock),
		refund.NewProcessor(log, adminPublisher, reconciler, l, clock),
		dashboard.NewAggregator(log, clock, time.UTC),
	)

	app := fiber.New(fiber.Config{ErrorHandler: serverutils.ErrorHandler})
	api := app.Group("/api")
	auth := serverutils.JwtMiddleware(secret)

	NewAuthController(service.NewAuthService(factory, log, secret, time.Hour)).RegisterRoutes(api)
	NewPlanController(catalog).RegisterRoutes(api)
	NewMealController(service.NewMealService(factory, engine)).RegisterRoutes(api, auth)
	NewPaymentController(service.NewPaymentService(factory, reconciler), log).RegisterRoutes(api, auth)
	NewAdminController(admin, catalog).RegisterRoutes(api, auth)

	return &harness{app: app, factory: factory}
}

func (h *harness) token(t *testing.T, role entity.UserRole) string {
	t.Helper()
	u := testsupport.SeedUser(t, h.factory, role)
	token, err := serverutils.GenerateToken(secret, u.Id, u.Role, time.Hour)
	require.NoError(t, err)
	return token
}

type envelope struct {
	Success   bool            `json:"success"`
	Code      int             `json:"code"`
	Message   string          `json:"message"`
	ErrorCode string          `json:"error_code"`
	Data      json.RawMessage `json:"data"`
}

func (h *harness) do(t *testing.T, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func TestBookAndCancelOverHTTP(t *testing.T) {
	h := newHarness(t)
	token := h.token(t, entity.UserRoleStudent)

	status, env := h.do(t, http.MethodPost, "/api/meals", token, map[string]string{
		"meal_type": "lunch",
		"meal_date": "2024-01-02",
	})
	require.Equal(t, http.StatusCreated, status, env.Message)

	var booked struct {
		Meal struct {
			Id     string `json:"id"`
			Status string `json:"status"`
		} `json:"meal"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &booked))
	assert.Equal(t, "pending", booked.Meal.Status)

	status, env = h.do(t, http.MethodPost, "/api/meals", token, map[string]string{
		"meal_type": "lunch",
		"meal_date": "2024-01-02",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "DUPLICATE_BOOKING", env.ErrorCode)

	status, _ = h.do(t, http.MethodPost, "/api/meals/"+booked.Meal.Id+"/cancel", token, nil)
	assert.Equal(t, http.StatusOK, status)

	status, env = h.do(t, http.MethodPost, "/api/meals/"+booked.Meal.Id+"/cancel", token, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "ALREADY_CANCELLED", env.ErrorCode)
}

func TestRequestValidationIsReported(t *testing.T) {
	h := newHarness(t)
	token := h.token(t, entity.UserRoleStudent)

	status, env := h.do(t, http.MethodPost, "/api/meals", token, map[string]string{"meal_type": "brunch"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_INPUT", env.ErrorCode)
	assert.Contains(t, env.Message, "meal_type")

	status, env = h.do(t, http.MethodPost, "/api/meals/not-a-uuid/cancel", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid id format", env.Message)
}

func TestBearerTokenRequired(t *testing.T) {
	h := newHarness(t)

	status, env := h.do(t, http.MethodGet, "/api/meals", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHENTICATED", env.ErrorCode)

	status, _ = h.do(t, http.MethodGet, "/api/meals", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	h := newHarness(t)

	status, env := h.do(t, http.MethodGet, "/api/admin/dashboard", h.token(t, entity.UserRoleStaff), nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "ADMIN_ONLY", env.ErrorCode)

	status, _ = h.do(t, http.MethodGet, "/api/admin/dashboard", h.token(t, entity.UserRoleAdmin), nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestAdminPlanLifecycleOverHTTP(t *testing.T) {
	h := newHarness(t)
	admin := h.token(t, entity.UserRoleAdmin)

	status, env := h.do(t, http.MethodPost, "/api/admin/plans", admin, map[string]interface{}{
		"name":           "Weekly",
		"price":          "70.00",
		"duration_days":  7,
		"meals_included": 21,
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	var created struct {
		Id string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))

	status, env = h.do(t, http.MethodGet, "/api/plans", "", nil)
	require.Equal(t, http.StatusOK, status)
	var plans []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &plans))
	assert.Len(t, plans, 1)

	status, _ = h.do(t, http.MethodPost, "/api/admin/plans/"+created.Id+"/deactivate", admin, nil)
	require.Equal(t, http.StatusOK, status)

	_, env = h.do(t, http.MethodGet, "/api/plans", "", nil)
	require.NoError(t, json.Unmarshal(env.Data, &plans))
	assert.Empty(t, plans)
}

func TestWebhookRejectsForgedNotification(t *testing.T) {
	h := newHarness(t)

	status, env := h.do(t, http.MethodPost, "/api/payment/notification", "", map[string]string{
		"id":        "evt-1",
		"type":      string(payment.EventCheckoutCompleted),
		"reference": "nope",
		"signature": "forged",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_SIGNATURE", env.ErrorCode)
}

func TestLoginRejectsUnknownAccount(t *testing.T) {
	h := newHarness(t)

	status, env := h.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "ghost@campus.test",
		"password": "whatever",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHENTICATED", env.ErrorCode)
}
