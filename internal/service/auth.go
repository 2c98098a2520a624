package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shenikar/rapid_response_hub/internal/auth"
	"github.com/shenikar/rapid_response_hub/internal/models"
	"github.com/sirupsen/logrus"
)

const minPasswordLength = 6

// UserRepository определяет контракт для хранения пользователей
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ListByRole(ctx context.Context, role models.Role) ([]*models.User, error)
	UpdateCredentials(ctx context.Context, user *models.User) error
}

// AuthService определяет контракт для регистрации и входа
type AuthService interface {
	Register(ctx context.Context, reg models.Registration) (*models.AuthResult, error)
	Login(ctx context.Context, email, password string) (*models.AuthResult, error)
	Me(ctx context.Context, actor models.Actor) (*models.User, error)
	CreateAdmin(ctx context.Context, name, email, password string) (*models.User, error)
}

type authService struct {
	users    UserRepository
	tokens   *auth.TokenManager
	notifier Notifier
	logger   *logrus.Logger
}

func NewAuthService(users UserRepository, tokens *auth.TokenManager, notifier Notifier, logger *logrus.Logger) AuthService {
	return &authService{
		users:    users,
		tokens:   tokens,
		notifier: notifier,
		logger:   logger,
	}
}

// Register создает пользователя с ролью citizen и сразу выдает токен
func (s *authService) Register(ctx context.Context, reg models.Registration) (*models.AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(reg.Email))
	log := s.logger.WithFields(logrus.Fields{
		"service": "auth",
		"method":  "Register",
		"email":   email,
	})

	name := strings.TrimSpace(reg.Name)
	if name == "" || email == "" || len(reg.Password) < minPasswordLength {
		return nil, fmt.Errorf("service: name, email and a password of at least %d characters are required: %w", minPasswordLength, models.ErrInvalidInput)
	}

	hash, err := auth.HashPassword(reg.Password)
	if err != nil {
		log.WithError(err).Error("Failed to hash password")
		return nil, fmt.Errorf("service: could not hash password: %w", err)
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleCitizen,
		Phone:        reg.Phone,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, models.ErrEmailTaken) {
			log.Warn("Registration with an existing email")
		} else {
			log.WithError(err).Error("Failed to create user in repository")
		}
		return nil, fmt.Errorf("service: could not register user: %w", err)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		log.WithError(err).Error("Failed to issue token")
		return nil, fmt.Errorf("service: could not issue token: %w", err)
	}

	if !s.notifier.SendWelcome(ctx, user.Email, user.DisplayName()) {
		log.Debug("Welcome email was not sent")
	}

	log.WithField("user_id", user.ID).Info("User registered")
	return &models.AuthResult{Token: token, User: user}, nil
}

// Login проверяет пароль и выдает токен. Неизвестный email и неверный пароль неразличимы
func (s *authService) Login(ctx context.Context, email, password string) (*models.AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	log := s.logger.WithFields(logrus.Fields{
		"service": "auth",
		"method":  "Login",
		"email":   email,
	})

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, models.ErrNotFound) {
		log.Warn("Login with unknown email")
		return nil, models.ErrInvalidCredentials
	}
	if err != nil {
		log.WithError(err).Error("Failed to load user")
		return nil, fmt.Errorf("service: could not load user: %w", err)
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		log.Warn("Login with wrong password")
		return nil, models.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		log.WithError(err).Error("Failed to issue token")
		return nil, fmt.Errorf("service: could not issue token: %w", err)
	}

	log.WithField("user_id", user.ID).Info("User logged in")
	return &models.AuthResult{Token: token, User: user}, nil
}

func (s *authService) Me(ctx context.Context, actor models.Actor) (*models.User, error) {
	user, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("service: could not load user: %w", err)
	}
	return user, nil
}

// CreateAdmin создает администратора или повышает существующего пользователя
// и задает ему новый пароль
func (s *authService) CreateAdmin(ctx context.Context, name, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	log := s.logger.WithFields(logrus.Fields{
		"service": "auth",
		"method":  "CreateAdmin",
		"email":   email,
	})

	if email == "" || len(password) < minPasswordLength {
		return nil, fmt.Errorf("service: email and a password of at least %d characters are required: %w", minPasswordLength, models.ErrInvalidInput)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("service: could not hash password: %w", err)
	}

	user, err := s.users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, models.ErrNotFound):
		user = &models.User{
			Name:         strings.TrimSpace(name),
			Email:        email,
			PasswordHash: hash,
			Role:         models.RoleAdmin,
		}
		if user.Name == "" {
			user.Name = "Admin"
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("service: could not create admin: %w", err)
		}
		log.WithField("user_id", user.ID).Info("Admin created")
		return user, nil
	case err != nil:
		return nil, fmt.Errorf("service: could not load user: %w", err)
	}

	user.Role = models.RoleAdmin
	user.PasswordHash = hash
	if n := strings.TrimSpace(name); n != "" {
		user.Name = n
	}
	if err := s.users.UpdateCredentials(ctx, user); err != nil {
		return nil, fmt.Errorf("service: could not promote user: %w", err)
	}
	log.WithField("user_id", user.ID).Info("Existing user promoted to admin")
	return user, nil
}
