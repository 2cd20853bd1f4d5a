package repository

import (
	"context"

	"checkup-reservation/internal/domain"
)

// UserRepository defines persistence operations for User entities.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) (int64, error)
	GetByEmployeeNo(ctx context.Context, employeeNo string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	ExistsByEmployeeNo(ctx context.Context, employeeNo string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
