package serverutils

import (
	"time"

	"meal-ordering-be/internal/entity"
	"meal-ordering-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const principalKey = "principal"

// JwtMiddleware verifies the bearer token and stores the caller's Principal in locals.
func JwtMiddleware(secret string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		authHeader := ctx.Get("Authorization")
		if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
			return WriteError(ctx, apperror.WithMessage(apperror.ErrUnauthenticated, "missing token"))
		}
		tokenStr := authHeader[7:]

		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			return WriteError(ctx, apperror.WithMessage(apperror.ErrUnauthenticated, "invalid token"))
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return WriteError(ctx, apperror.WithMessage(apperror.ErrUnauthenticated, "invalid claims"))
		}

		userIdStr, _ := claims["user_id"].(string)
		userId, err := uuid.Parse(userIdStr)
		if err != nil {
			return WriteError(ctx, apperror.WithMessage(apperror.ErrUnauthenticated, "invalid subject"))
		}
		role, _ := claims["role"].(string)
		if role == "" {
			role = string(entity.UserRoleStudent)
		}

		ctx.Locals("user_id", userIdStr)
		ctx.Locals(principalKey, entity.Principal{UserId: userId, Role: entity.UserRole(role)})
		return ctx.Next()
	}
}

// AdminOnly must run after JwtMiddleware.
func AdminOnly(ctx *fiber.Ctx) error {
	principal, err := PrincipalFrom(ctx)
	if err != nil {
		return WriteError(ctx, err)
	}
	if !principal.IsAdmin() {
		return WriteError(ctx, apperror.ErrAdminOnly)
	}
	return ctx.Next()
}

func PrincipalFrom(ctx *fiber.Ctx) (entity.Principal, error) {
	principal, ok := ctx.Locals(principalKey).(entity.Principal)
	if !ok {
		return entity.Principal{}, apperror.ErrUnauthenticated
	}
	return principal, nil
}

// GenerateToken issues an HS256 token carrying user_id and role.
func GenerateToken(secret string, userId uuid.UUID, role entity.UserRole, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userId.String(),
		"role":    string(role),
		"exp":     time.Now().Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
