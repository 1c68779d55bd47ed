package usecase

import (
	"context"
	"strings"
	"time"

	"pressing-booking/internal/data/entity"
	"pressing-booking/internal/data/repository"
	"pressing-booking/internal/dto/request"
	"pressing-booking/internal/dto/response"
	"pressing-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Register(ctx context.Context, req *request.RegisterRequest) (*response.AuthResponse, error)
	Login(ctx context.Context, req *request.LoginRequest, userAgent, ipAddress string) (*response.AuthResponse, error)
	Logout(ctx context.Context, token string) error
}

type authService struct {
	repo   *repository.Repository
	config *utils.Config
	log    *zap.Logger
}

func NewAuthService(repo *repository.Repository, config *utils.Config, log *zap.Logger) AuthService {
	return &authService{
		repo:   repo,
		config: config,
		log:    log.With(zap.String("service", "auth")),
	}
}

func (s *authService) Register(ctx context.Context, req *request.RegisterRequest) (*response.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, transient(err)
	}

	now := time.Now()
	user := &entity.User{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        email,
		PasswordHash: string(hash),
		Phone:        req.Phone,
		Role:         entity.RoleCustomer,
		IsActive:     true,
	}

	created, err := s.repo.User.CreateIfAbsent(ctx, user)
	if err != nil {
		return nil, transient(err)
	}
	if !created {
		return nil, newValidationError("email already registered", map[string]string{
			"email": "an account with this email already exists",
		})
	}

	s.log.Info("User registered",
		zap.String("user_id", user.ID.String()),
	)

	return &response.AuthResponse{
		UserID:    user.ID.String(),
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
	}, nil
}

func (s *authService) Login(ctx context.Context, req *request.LoginRequest, userAgent, ipAddress string) (*response.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.repo.User.FindByEmail(ctx, email)
	if err != nil {
		return nil, transient(err)
	}
	// Same rejection for unknown email and bad password.
	if user == nil || !user.IsActive {
		return nil, &AuthorizationError{Message: "invalid email or password"}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, &AuthorizationError{Message: "invalid email or password"}
	}

	now := time.Now()
	expiresAt := now.Add(time.Duration(s.config.Session.ExpiryHours) * time.Hour)
	session := &entity.Session{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: now,
		},
		UserID:    user.ID,
		Token:     utils.GenerateSessionToken(),
		ExpiresAt: expiresAt,
	}
	if userAgent != "" {
		session.UserAgent = &userAgent
	}
	if ipAddress != "" {
		session.IPAddress = &ipAddress
	}

	if err := s.repo.Session.Create(ctx, session); err != nil {
		return nil, transient(err)
	}

	s.log.Info("User logged in",
		zap.String("user_id", user.ID.String()),
	)

	token := session.Token.String()
	return &response.AuthResponse{
		UserID:    user.ID.String(),
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Token:     &token,
		ExpiresAt: &expiresAt,
	}, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	if err := s.repo.Session.Revoke(ctx, token); err != nil {
		return transient(err)
	}
	return nil
}
