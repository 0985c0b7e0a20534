package integration

import (
	"encoding/json"
	"testing"

	"meal-ordering-be/internal/entity"
	"meal-ordering-be/internal/model"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminAuth(t *testing.T) {
	app, db := newApp(t)

	admin := seedAccount(t, db, entity.UserRoleAdmin)
	student := seedAccount(t, db, entity.UserRoleStudent)

	adminToken := login(t, app, admin.Email)
	studentToken := login(t, app, student.Email)

	t.Run("admin reaches the dashboard", func(t *testing.T) {
		status, env := call(t, app, fiber.MethodGet, "/api/admin/dashboard", adminToken, nil)
		assert.Equal(t, fiber.StatusOK, status, env.Message)
		assert.True(t, env.Success)
	})

	t.Run("student is rejected", func(t *testing.T) {
		status, _ := call(t, app, fiber.MethodGet, "/api/admin/dashboard", studentToken, nil)
		assert.Equal(t, fiber.StatusForbidden, status)
	})

	t.Run("missing token is rejected", func(t *testing.T) {
		status, _ := call(t, app, fiber.MethodGet, "/api/admin/dashboard", "", nil)
		assert.Equal(t, fiber.StatusUnauthorized, status)
	})

	t.Run("wrong password is rejected", func(t *testing.T) {
		status, env := call(t, app, fiber.MethodPost, "/api/auth/login", "", map[string]string{
			"email":    admin.Email,
			"password": "not-the-password",
		})
		assert.Equal(t, fiber.StatusUnauthorized, status)
		assert.False(t, env.Success)
	})

	t.Run("login records last login", func(t *testing.T) {
		var stored model.User
		require.NoError(t, db.First(&stored, "id = ?", admin.Id).Error)
		assert.NotNil(t, stored.LastLoginAt)
	})

	t.Run("health is public", func(t *testing.T) {
		status, env := call(t, app, fiber.MethodGet, "/health", "", nil)
		assert.Equal(t, fiber.StatusOK, status)

		var body struct {
			Environment string `json:"environment"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &body))
		assert.NotEmpty(t, body.Environment)
	})
}
