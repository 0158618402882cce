package services

import (
	"errors"

	"bidpilot_backend/internal/auth"
	"bidpilot_backend/internal/email"
	"bidpilot_backend/internal/logger"
	"bidpilot_backend/internal/models"
	"bidpilot_backend/internal/repositories"
	"bidpilot_backend/internal/services/dto"
	"bidpilot_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type AuthService interface {
	Register(db *gorm.DB, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(db *gorm.DB, req *dto.LoginRequest) (*dto.AuthResponse, error)
	GetUser(db *gorm.DB, id string) (*dto.UserInfo, error)
}

type authService struct {
	userRepo repositories.UserRepository
	email    email.Provider
}

func NewAuthService(userRepo repositories.UserRepository, emailProvider email.Provider) AuthService {
	return &authService{
		userRepo: userRepo,
		email:    emailProvider,
	}
}

func (s *authService) Register(db *gorm.DB, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, apperrors.NewBadRequestError(err.Error())
	}

	role := models.UserRoleUser
	if req.Role != "" {
		role = models.UserRole(req.Role)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: hash,
		FullName:     req.FullName,
		Role:         role,
		TenantID:     req.TenantID,
	}

	if err := s.userRepo.CreateUser(db, user); err != nil {
		if errors.Is(err, repositories.ErrUserAlreadyExists) {
			return nil, apperrors.ErrAlreadyExists(err)
		}
		return nil, err
	}

	// Приветственное письмо не должно блокировать регистрацию
	go func() {
		if err := s.email.SendWelcome(user.Email, user.FullName); err != nil {
			logger.Warn("welcome email failed", "email", user.Email, "error", err.Error())
		}
	}()

	return s.buildAuthResponse(user)
}

func (s *authService) Login(db *gorm.DB, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindUserByEmail(db, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.New(apperrors.CodeInvalidCredentials, "auth", "Invalid email or password", 401)
		}
		return nil, err
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, apperrors.New(apperrors.CodeInvalidCredentials, "auth", "Invalid email or password", 401)
	}

	if !user.IsActive {
		return nil, apperrors.NewForbiddenError("Account is deactivated")
	}

	if err := s.userRepo.UpdateLastLogin(db, user.ID); err != nil {
		logger.Warn("failed to update last login", "user_id", user.ID, "error", err.Error())
	}

	return s.buildAuthResponse(user)
}

func (s *authService) GetUser(db *gorm.DB, id string) (*dto.UserInfo, error) {
	user, err := s.userRepo.FindUserByID(db, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, err
	}
	info := buildUserInfo(user)
	return &info, nil
}

func (s *authService) buildAuthResponse(user *models.User) (*dto.AuthResponse, error) {
	token, err := auth.GenerateToken(user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		Token: token,
		User:  buildUserInfo(user),
	}, nil
}

func buildUserInfo(user *models.User) dto.UserInfo {
	return dto.UserInfo{
		ID:       user.ID,
		Email:    user.Email,
		FullName: user.FullName,
		Role:     string(user.Role),
		TenantID: user.TenantID,
	}
}
