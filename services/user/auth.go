package user

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"ambulink/database"
	"ambulink/models"
	"ambulink/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

// Register creates a patient or driver account and signs the caller in.
func (s *DefaultUserService) Register(ctx context.Context, input models.RegisterInput) (*models.AuthResponse, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = normalizeEmail(input.Email)
	input.Phone = strings.TrimSpace(input.Phone)

	if input.Name == "" || input.Email == "" || input.Phone == "" || input.Password == "" {
		return nil, utils.NewValidationError("name, email, phone and password are required")
	}
	if _, err := mail.ParseAddress(input.Email); err != nil {
		return nil, utils.NewValidationError("invalid email address")
	}
	if len(input.Password) < minPasswordLength {
		return nil, utils.NewValidationError("password must be at least %d characters", minPasswordLength)
	}
	if input.Role == "" {
		input.Role = models.RolePatient
	}
	if input.Role != models.RolePatient && input.Role != models.RoleDriver {
		return nil, utils.NewValidationError("role must be patient or driver")
	}

	user, err := s.createAccount(ctx, input)
	if err != nil {
		return nil, err
	}
	utils.GetLogger().Info("account registered", zap.String("userId", user.ID), zap.String("role", string(user.Role)))
	return s.authResponse(user)
}

// Login verifies the credentials and issues a token.
func (s *DefaultUserService) Login(ctx context.Context, input models.LoginInput) (*models.AuthResponse, error) {
	email := normalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return nil, utils.NewValidationError("email and password are required")
	}

	user, err := s.Repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, utils.NewAuthenticationError("invalid email or password")
		}
		utils.GetLogger().Error("Login: failed to fetch user", zap.Error(err))
		return nil, utils.NewDependencyError("authentication failed, please try again", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, utils.NewAuthenticationError("invalid email or password")
	}
	return s.authResponse(user)
}

// EnsureAdmin creates the admin account used to operate the dispatch desk.
func (s *DefaultUserService) EnsureAdmin(ctx context.Context, name, email, password string) (*models.User, error) {
	existing, err := s.Repo.FindByEmail(ctx, normalizeEmail(email))
	if err == nil {
		if existing.Role != models.RoleAdmin {
			return nil, utils.NewConflictError("%s is already registered as %s", email, existing.Role)
		}
		return existing, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, utils.NewDependencyError("failed to look up admin", err)
	}
	if len(password) < minPasswordLength {
		return nil, utils.NewValidationError("password must be at least %d characters", minPasswordLength)
	}
	return s.createAccount(ctx, models.RegisterInput{
		Name:     name,
		Email:    normalizeEmail(email),
		Password: password,
		Role:     models.RoleAdmin,
	})
}

func (s *DefaultUserService) createAccount(ctx context.Context, input models.RegisterInput) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, utils.NewDependencyError("failed to hash password", err)
	}

	user := &models.User{
		ID:            uuid.New().String(),
		Role:          input.Role,
		Name:          input.Name,
		Email:         input.Email,
		Phone:         input.Phone,
		PasswordHash:  string(hash),
		VehicleNumber: strings.TrimSpace(input.VehicleNumber),
		// New drivers start accepting bookings immediately.
		Available: input.Role == models.RoleDriver,
	}
	if err := s.Repo.Create(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, utils.NewConflictError("an account with this email already exists")
		}
		return nil, utils.NewDependencyError("registration failed, please try again", err)
	}
	return user, nil
}

func (s *DefaultUserService) authResponse(user *models.User) (*models.AuthResponse, error) {
	token, err := utils.GenerateToken(user, s.TokenTTL)
	if err != nil {
		return nil, utils.NewDependencyError("failed to issue token", err)
	}
	return &models.AuthResponse{Token: token, User: user.Redacted()}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
