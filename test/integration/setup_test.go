package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"meal-ordering-be/internal/bootstrap"
	"meal-ordering-be/internal/config"
	"meal-ordering-be/internal/entity"
	"meal-ordering-be/internal/model"
	"meal-ordering-be/internal/server"
	"meal-ordering-be/pkg/database"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testPassword = "integration123"

// connect opens and migrates the database named by DB_CONNECTION_STRING,
// skipping the test when it is not configured.
func connect(t *testing.T) (*gorm.DB, *config.Config) {
	t.Helper()

	// Load .env from root because tests run in the package dir
	if err := godotenv.Load("../../.env"); err != nil {
		t.Logf("No ../../.env file found, using system env")
	}
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}
	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = "integration-secret"
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, database.DefaultOptions())
	require.NoError(t, err, "connect to DB")
	require.NoError(t, database.MigratePostgres(db, model.All()...))
	return db, cfg
}

func newApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	db, cfg := connect(t)
	container := bootstrap.NewContainer(db, cfg)
	t.Cleanup(container.Close)
	return server.New(cfg, container).GetApp(), db
}

// seedAccount inserts a user that can log in with testPassword and is removed after the test.
func seedAccount(t *testing.T, db *gorm.DB, role entity.UserRole) *model.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	hashStr := string(hash)

	handle := uuid.NewString()[:8]
	user := &model.User{
		Username:     "it_" + handle,
		Email:        "it-" + handle + "@campus.test",
		FullName:     "Integration " + handle,
		PasswordHash: &hashStr,
		Role:         string(role),
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)
	t.Cleanup(func() {
		db.Exec("DELETE FROM refund_requests WHERE user_id = ?", user.Id)
		db.Exec("DELETE FROM payments WHERE user_id = ?", user.Id)
		db.Exec("DELETE FROM meals WHERE user_id = ?", user.Id)
		db.Exec("DELETE FROM subscriptions WHERE user_id = ?", user.Id)
		db.Delete(&model.User{}, "id = ?", user.Id)
	})
	return user
}

type envelope struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	ErrorCode string          `json:"error_code"`
	Data      json.RawMessage `json:"data"`
}

func call(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, envelope) {
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

	resp, err := app.Test(req, -1)
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

func login(t *testing.T, app *fiber.App, email string) string {
	t.Helper()

	status, env := call(t, app, fiber.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    email,
		"password": testPassword,
	})
	require.Equal(t, fiber.StatusOK, status, env.Message)

	var res struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	require.NotEmpty(t, res.AccessToken)
	return res.AccessToken
}
