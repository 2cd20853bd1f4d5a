package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"checkup-reservation/internal/domain"
	"checkup-reservation/internal/metrics"
	"checkup-reservation/internal/repository"
)

// UserService describes user lifecycle operations.
type UserService interface {
	Signup(ctx context.Context, employeeNo, name, email, password string) (int64, error)
	Authenticate(ctx context.Context, employeeNo, password string) (*domain.User, error)
	EnsureAdmin(ctx context.Context, employeeNo, name, email, password string) (bool, error)
	GetByEmployeeNo(ctx context.Context, employeeNo string) (*domain.User, error)
}

type userService struct {
	users    repository.UserRepository
	hashCost int
}

// UserOption tweaks a UserService.
type UserOption func(*userService)

// WithHashCost overrides the bcrypt cost.
func WithHashCost(cost int) UserOption {
	return func(s *userService) {
		s.hashCost = cost
	}
}

func NewUserService(users repository.UserRepository, opts ...UserOption) UserService {
	s := &userService{
		users:    users,
		hashCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *userService) Signup(ctx context.Context, employeeNo, name, email, password string) (int64, error) {
	user, err := s.newUser(ctx, employeeNo, name, email, password, domain.RoleUser)
	if err != nil {
		return 0, err
	}
	metrics.IncSignup()
	return user.ID, nil
}

// EnsureAdmin creates an ADMIN account unless the employee number is already taken.
func (s *userService) EnsureAdmin(ctx context.Context, employeeNo, name, email, password string) (bool, error) {
	exists, err := s.users.ExistsByEmployeeNo(ctx, strings.TrimSpace(employeeNo))
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	if _, err := s.newUser(ctx, employeeNo, name, email, password, domain.RoleAdmin); err != nil {
		return false, err
	}
	return true, nil
}

func (s *userService) newUser(ctx context.Context, employeeNo, name, email, password string, role domain.Role) (*domain.User, error) {
	employeeNo = strings.TrimSpace(employeeNo)
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if employeeNo == "" || name == "" || email == "" || password == "" {
		return nil, ErrInvalidSignup
	}

	exists, err := s.users.ExistsByEmployeeNo(ctx, employeeNo)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateEmployeeNo
	}

	exists, err = s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateEmail
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		EmployeeNo:   employeeNo,
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}

	// the unique columns still guard against a concurrent signup racing past the checks
	if _, err := s.users.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateEmployeeNo):
			return nil, ErrDuplicateEmployeeNo
		case errors.Is(err, repository.ErrDuplicateEmail):
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) Authenticate(ctx context.Context, employeeNo, password string) (*domain.User, error) {
	employeeNo = strings.TrimSpace(employeeNo)
	if employeeNo == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmployeeNo(ctx, employeeNo)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return sanitizeUser(user), nil
}

func (s *userService) GetByEmployeeNo(ctx context.Context, employeeNo string) (*domain.User, error) {
	user, err := s.users.GetByEmployeeNo(ctx, employeeNo)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return sanitizeUser(user), nil
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	clone := *user
	clone.PasswordHash = ""
	return &clone
}
