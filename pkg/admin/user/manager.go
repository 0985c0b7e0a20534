package user

import (
	"context"
	"strings"
	"time"

	"meal-ordering-be/internal/dto"
	"meal-ordering-be/internal/entity"
	"meal-ordering-be/internal/pkg/apperror"
	"meal-ordering-be/internal/pkg/logger"
	"meal-ordering-be/internal/repository/specification"
	"meal-ordering-be/internal/repository/unitofwork"
	adminEvents "meal-ordering-be/pkg/admin/events"

	"github.com/google/uuid"
)

const DefaultPageSize = 20

// Manager handles user-related admin operations
type Manager struct {
	logger    logger.ILogger
	publisher adminEvents.Publisher
	now       func() time.Time
}

// NewManager creates a new user manager
func NewManager(logger logger.ILogger, publisher adminEvents.Publisher, now func() time.Time) *Manager {
	if now == nil {
		now = time.Now
	}
	return &Manager{
		logger:    logger,
		publisher: publisher,
		now:       now,
	}
}

// FindAll returns one page of users matching search on username or email, plus the total match count.
func (m *Manager) FindAll(ctx context.Context, uow unitofwork.UnitOfWork, page, limit int, search string) ([]*entity.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}

	filter := specification.UserSearch{Query: search}
	total, err := uow.UserRepository().Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	users, err := uow.UserRepository().FindAll(ctx,
		filter,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: (page - 1) * limit},
	)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// Update applies the admin's edits to a user. Only provided fields change.
func (m *Manager) Update(ctx context.Context, uow unitofwork.UnitOfWork, admin entity.Principal, userId uuid.UUID, req dto.AdminUpdateUserRequest) (*entity.User, error) {
	if !admin.IsAdmin() {
		return nil, apperror.ErrAdminOnly
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	// 1. Find the user
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId}, specification.ForUpdate{})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.ErrUserNotFound
	}

	// 2. Identity fields must stay unique
	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if username == "" {
			return nil, apperror.WithMessage(apperror.ErrInvalidInput, "username cannot be empty")
		}
		if username != user.Username {
			taken, err := uow.UserRepository().FindOne(ctx, specification.ByUsername{Username: username})
			if err != nil {
				return nil, err
			}
			if taken != nil {
				return nil, apperror.ErrUsernameTaken
			}
			user.Username = username
		}
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email == "" {
			return nil, apperror.WithMessage(apperror.ErrInvalidInput, "email cannot be empty")
		}
		if email != user.Email {
			taken, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: email})
			if err != nil {
				return nil, err
			}
			if taken != nil {
				return nil, apperror.ErrEmailTaken
			}
			user.Email = email
		}
	}

	// 3. Role and access
	if req.Role != nil {
		role := entity.UserRole(*req.Role)
		switch role {
		case entity.UserRoleStudent, entity.UserRoleStaff, entity.UserRoleAdmin:
			user.Role = role
		default:
			return nil, apperror.WithMessage(apperror.ErrInvalidInput, "role must be student, staff or admin")
		}
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	// 4. Persist
	user.UpdatedAt = m.now().UTC()
	if err := uow.UserRepository().Update(ctx, user); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	m.logger.Info("ADMIN", "User updated", map[string]interface{}{
		"user_id":   user.Id.String(),
		"role":      string(user.Role),
		"is_active": user.IsActive,
		"admin_id":  admin.UserId.String(),
	})
	m.publisher.PublishUserUpdated(ctx, user, admin.UserId)
	return user, nil
}
