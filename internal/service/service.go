package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/debttrack/debt-service/internal/apperr"
	"github.com/debttrack/debt-service/internal/config"
	"github.com/debttrack/debt-service/internal/models"
	"github.com/debttrack/debt-service/internal/repository"
	"github.com/debttrack/debt-service/internal/utils"
	"github.com/debttrack/debt-service/internal/utils/email"
)

const minPasswordLen = 6

// Service handles business logic
type Service struct {
	repo   *repository.Repository
	log    *logrus.Logger
	config *config.Config
	mailer *email.Sender
}

// NewService initializes a new service
func NewService(repo *repository.Repository, log *logrus.Logger, cfg *config.Config, mailer *email.Sender) *Service {
	return &Service{repo: repo, log: log, config: cfg, mailer: mailer}
}

// Register creates a new user with hashed password and signs them in
func (s *Service) Register(ctx context.Context, username, emailAddr, password string) (*models.User, string, error) {
	if len(password) < minPasswordLen {
		return nil, "", apperr.Validationf("password", "must be at least %d characters", minPasswordLen)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        emailAddr,
		PasswordHash: string(hashedPassword),
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return nil, "", err
	}

	s.log.Infof("User registered: %s", user.Email)
	return user, token, nil
}

// Login authenticates a user and returns a JWT token
func (s *Service) Login(ctx context.Context, emailAddr, password string) (*models.User, string, error) {
	user, err := s.repo.FindUserByEmail(ctx, emailAddr)
	if err != nil {
		return nil, "", apperr.Authf("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", apperr.Authf("invalid credentials")
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return nil, "", err
	}

	s.log.Infof("User logged in: %s", user.Email)
	return user, token, nil
}

// CurrentUser returns the authenticated user's profile
func (s *Service) CurrentUser(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.repo.FindUserByID(ctx, userID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.Authf("user no longer exists")
	}
	return user, err
}

// ResetPassword emails a single-use reset link. To avoid leaking which emails
// are registered, an unknown address is treated as success.
func (s *Service) ResetPassword(ctx context.Context, emailAddr string) error {
	user, err := s.repo.FindUserByEmail(ctx, emailAddr)
	if errors.Is(err, apperr.ErrNotFound) {
		s.log.Infof("Password reset requested for unknown email: %s", emailAddr)
		return nil
	}
	if err != nil {
		return err
	}

	token, err := utils.GenerateToken(32)
	if err != nil {
		return err
	}
	reset := &models.PasswordReset{
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: time.Now().Add(s.config.ResetTokenTTL),
	}
	if err := s.repo.CreatePasswordReset(ctx, reset); err != nil {
		return err
	}

	if err := s.mailer.SendPasswordReset(user.Email, user.Username, token); err != nil {
		return err
	}
	s.log.Infof("Password reset email sent: %s", user.Email)
	return nil
}

// UpdatePasswordWithToken consumes a reset token and stores the new password
func (s *Service) UpdatePasswordWithToken(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < minPasswordLen {
		return apperr.Validationf("password", "must be at least %d characters", minPasswordLen)
	}

	userID, err := s.repo.ConsumePasswordReset(ctx, token, time.Now())
	if err != nil {
		return err
	}
	return s.setPassword(ctx, userID, newPassword)
}

// UpdatePassword changes the password of an authenticated user
func (s *Service) UpdatePassword(ctx context.Context, userID int64, newPassword string) error {
	if len(newPassword) < minPasswordLen {
		return apperr.Validationf("password", "must be at least %d characters", minPasswordLen)
	}
	return s.setPassword(ctx, userID, newPassword)
}

func (s *Service) setPassword(ctx context.Context, userID int64, newPassword string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.repo.UpdateUserPassword(ctx, userID, string(hashedPassword)); err != nil {
		return err
	}
	s.log.Infof("Password updated for user %d", userID)
	return nil
}

func (s *Service) issueToken(userID int64) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   fmt.Sprintf("%d", userID),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.config.JWTTTL)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	})
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}
