package service

import (
	"context"
	"strings"
	"time"

	"meal-ordering-be/internal/dto"
	"meal-ordering-be/internal/pkg/apperror"
	"meal-ordering-be/internal/pkg/logger"
	"meal-ordering-be/internal/pkg/serverutils"
	"meal-ordering-be/internal/repository/specification"
	"meal-ordering-be/internal/repository/unitofwork"

	"golang.org/x/crypto/bcrypt"
)

var errBadCredentials = apperror.WithMessage(apperror.ErrUnauthenticated, "invalid email or password")

// IAuthService issues bearer tokens. Registration and account recovery live outside this service.
type IAuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
}

type authService struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
	jwtSecret  string
	tokenTTL   time.Duration
}

func NewAuthService(uowFactory unitofwork.RepositoryFactory, logger logger.ILogger, jwtSecret string, tokenTTL time.Duration) IAuthService {
	return &authService{
		uowFactory: uowFactory,
		logger:     logger,
		jwtSecret:  jwtSecret,
		tokenTTL:   tokenTTL,
	}
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: strings.ToLower(strings.TrimSpace(req.Email))})
	if err != nil {
		return nil, err
	}
	if user == nil || user.PasswordHash == nil {
		return nil, errBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errBadCredentials
	}
	if !user.IsActive {
		return nil, apperror.WithMessage(apperror.ErrUnauthenticated, "account is disabled")
	}

	token, err := serverutils.GenerateToken(s.jwtSecret, user.Id, user.Role, s.tokenTTL)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user.LastLoginAt = &now
	if err := uow.UserRepository().Update(ctx, user); err != nil {
		s.logger.Warn("AUTH", "Failed to record login time", map[string]interface{}{"user_id": user.Id.String(), "error": err.Error()})
	}

	s.logger.Info("AUTH", "User logged in", map[string]interface{}{"user_id": user.Id.String(), "role": string(user.Role)})
	return &dto.LoginResponse{
		AccessToken: token,
		User: dto.UserDTO{
			Id:       user.Id,
			Username: user.Username,
			Email:    user.Email,
			FullName: user.FullName,
			Role:     string(user.Role),
		},
	}, nil
}
