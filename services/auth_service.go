package services

import (
	"context"
	"errors"
	"strings"

	"storefront-service/models"
	"storefront-service/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthService defines the interface for the identity subsystem: sign
// up, sign in and principal resolution.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*models.User, *ServiceError)
	Login(ctx context.Context, email, password string) (string, *ServiceError)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, *ServiceError)
	SeedAdmin(ctx context.Context, email, password string) error
}

type authServiceImpl struct {
	userRepo     repository.UserRepository
	tokenService TokenService
	logger       *zap.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, tokenService TokenService, logger *zap.Logger) AuthService {
	return &authServiceImpl{
		userRepo:     userRepo,
		tokenService: tokenService,
		logger:       logger,
	}
}

// Register creates a Customer account with a bcrypt-hashed password.
func (s *authServiceImpl) Register(ctx context.Context, name, email, password string) (*models.User, *ServiceError) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, &ServiceError{StatusCode: 400, Message: "Email and password are required"}
	}
	if len(password) < 8 {
		return nil, &ServiceError{StatusCode: 400, Message: "Password must be at least 8 characters long"}
	}

	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, &ServiceError{StatusCode: 409, Message: "Email already exists"}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("Failed to check email", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to create account"}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("Failed to hash password", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to create account"}
	}

	user := &models.User{
		Email:    email,
		Password: string(hashed),
		Name:     name,
		Role:     models.RoleCustomer,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if strings.Contains(err.Error(), "duplicate") || strings.Contains(err.Error(), "unique") {
			return nil, &ServiceError{StatusCode: 409, Message: "Email already exists"}
		}
		s.logger.Error("Failed to create user", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to create account"}
	}

	s.logger.Info("User registered", zap.String("user_id", user.ID.String()))
	return user, nil
}

// Login verifies the credential pair and returns a signed token. The
// same message covers unknown email and wrong password.
func (s *authServiceImpl) Login(ctx context.Context, email, password string) (string, *ServiceError) {
	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", &ServiceError{StatusCode: 401, Message: "Invalid email or password"}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", &ServiceError{StatusCode: 401, Message: "Invalid email or password"}
	}

	token, err := s.tokenService.GenerateToken(user.ID.String(), user.Email, user.Role)
	if err != nil {
		s.logger.Error("Failed to sign token", zap.String("user_id", user.ID.String()), zap.Error(err))
		return "", &ServiceError{StatusCode: 500, Message: "Failed to sign in"}
	}
	return token, nil
}

func (s *authServiceImpl) GetUser(ctx context.Context, id uuid.UUID) (*models.User, *ServiceError) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ServiceError{StatusCode: 404, Message: "User not found"}
		}
		s.logger.Error("Failed to load user", zap.String("user_id", id.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to load user"}
	}
	return user, nil
}

// SeedAdmin ensures an admin account exists for the given credentials.
// An existing user with that email is promoted to Admin instead.
func (s *authServiceImpl) SeedAdmin(ctx context.Context, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil {
		if user.Role == models.RoleAdmin {
			return nil
		}
		user.Role = models.RoleAdmin
		return s.userRepo.Update(ctx, user)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := &models.User{
		Email:    email,
		Password: string(hashed),
		Name:     "Administrator",
		Role:     models.RoleAdmin,
	}
	if err := s.userRepo.Create(ctx, admin); err != nil {
		return err
	}

	s.logger.Info("Admin account seeded", zap.String("email", email))
	return nil
}
