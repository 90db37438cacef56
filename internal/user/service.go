package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/calmora/wellness-booking-backend/internal/auth"
	"github.com/calmora/wellness-booking-backend/internal/mail"
)

// RegisterRequest carries the fields needed to create a customer account.
type RegisterRequest struct {
	Email    string
	Username string
	Password string
	FullName string
	Phone    string
}

// UpdateProfileRequest carries the mutable profile fields.
type UpdateProfileRequest struct {
	FullName *string
	Phone    *string
}

// Service defines business logic related to users.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*User, error)
	Login(ctx context.Context, email, password string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	UpdateProfile(ctx context.Context, id string, req UpdateProfileRequest) (*User, error)
	ListCustomers(ctx context.Context, page, pageSize int) ([]*User, int, error)
	CountCustomers(ctx context.Context) (int, error)

	// EnsureAdmin creates the admin account if it does not exist yet.
	// Called once at startup when bootstrap credentials are configured.
	EnsureAdmin(ctx context.Context, email, password string) error
}

type service struct {
	repo   Repository
	hasher auth.PasswordHasher
	mailer mail.Mailer
	logger *zap.Logger

	minPasswordLength int
}

// NewService creates a new user Service.
func NewService(repo Repository, hasher auth.PasswordHasher, mailer mail.Mailer, logger *zap.Logger) Service {
	return &service{
		repo:              repo,
		hasher:            hasher,
		mailer:            mailer,
		logger:            logger,
		minPasswordLength: 6,
	}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	cleanEmail := normalizeEmail(req.Email)
	if cleanEmail == "" {
		return nil, ErrEmailRequired
	}

	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}

	if len(req.Password) < s.minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	// Check if email is already used.
	_, err := s.repo.GetByEmail(ctx, cleanEmail)
	if err == nil {
		// Found an existing user.
		return nil, ErrEmailAlreadyUsed
	}
	// If the error is something other than "not found", propagate it.
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing email: %w", err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &User{
		Email:        cleanEmail,
		Username:     username,
		PasswordHash: hash,
		FullName:     optional(req.FullName),
		Phone:        optional(req.Phone),
		Role:         RoleCustomer,
		IsActive:     true,
	}

	// The unique constraints still guard against a concurrent register
	// with the same email or username.
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	greeting := username
	if u.FullName != nil {
		greeting = *u.FullName
	}
	if err := s.mailer.Send(ctx, u.Email,
		"Welcome to the Wellness Platform!",
		fmt.Sprintf("Hi %s, welcome to our wellness community!", greeting),
	); err != nil {
		s.logger.Warn("welcome email failed", zap.String("user_id", u.ID), zap.Error(err))
	}

	return u, nil
}

func (s *service) Login(ctx context.Context, email, password string) (*User, error) {
	cleanEmail := normalizeEmail(email)
	if cleanEmail == "" || strings.TrimSpace(password) == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := s.repo.GetByEmail(ctx, cleanEmail)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to fetch user by email: %w", err)
	}

	if !u.IsActive {
		return nil, ErrInactiveUser
	}

	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	return u, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) UpdateProfile(ctx context.Context, id string, req UpdateProfileRequest) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		u.FullName = optional(*req.FullName)
	}
	if req.Phone != nil {
		u.Phone = optional(*req.Phone)
	}

	if err := s.repo.UpdateProfile(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

func (s *service) ListCustomers(ctx context.Context, page, pageSize int) ([]*User, int, error) {
	return s.repo.List(ctx, Filter{
		Role:     RoleCustomer,
		Page:     page,
		PageSize: pageSize,
	})
}

func (s *service) CountCustomers(ctx context.Context) (int, error) {
	return s.repo.CountByRole(ctx, RoleCustomer)
}

func (s *service) EnsureAdmin(ctx context.Context, email, password string) error {
	cleanEmail := normalizeEmail(email)

	_, err := s.repo.GetByEmail(ctx, cleanEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("failed to check admin account: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &User{
		Email:        cleanEmail,
		Username:     "admin",
		PasswordHash: hash,
		Role:         RoleAdmin,
		IsActive:     true,
	}

	if err := s.repo.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to create admin account: %w", err)
	}

	s.logger.Info("admin account created", zap.String("email", cleanEmail))
	return nil
}

// normalizeEmail trims spaces and lowercases the email.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// optional returns nil for blank strings so empty fields store as NULL.
func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
