package repository

import (
	"context"
	"time"

	"checkup-reservation/internal/domain"
)

// ReservationRepository exposes persistence operations for reservations.
type ReservationRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, reservation *domain.Reservation) (int64, error)
	ExistsReserved(ctx context.Context, date time.Time, slot string) (bool, error)
	GetByIDAndUser(ctx context.Context, id, userID int64) (*domain.Reservation, error)
	UpdateStatus(ctx context.Context, id int64, status domain.ReservationStatus) error
	ListByUser(ctx context.Context, userID int64) ([]domain.Reservation, error)
	ReservedSlots(ctx context.Context, date time.Time) ([]string, error)
	ListRoster(ctx context.Context, date time.Time) ([]domain.RosterEntry, error)
}
