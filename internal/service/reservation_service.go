package service

import (
	"context"
	"errors"
	"time"

	"checkup-reservation/internal/domain"
	"checkup-reservation/internal/metrics"
	"checkup-reservation/internal/repository"
)

// ReservationView is the caller-facing shape of a reservation.
type ReservationView struct {
	ID          int64
	CheckupDate string
	TimeSlot    string
	Status      string
}

// ReservationService books, lists and cancels checkup slots.
type ReservationService interface {
	Create(ctx context.Context, employeeNo, checkupDate, timeSlot string) (int64, error)
	ListMine(ctx context.Context, employeeNo string) ([]ReservationView, error)
	Cancel(ctx context.Context, reservationID int64, employeeNo string) error
	AvailableSlots(ctx context.Context, checkupDate string) ([]string, error)
}

type reservationService struct {
	reservations repository.ReservationRepository
	users        repository.UserRepository
}

func NewReservationService(reservations repository.ReservationRepository, users repository.UserRepository) ReservationService {
	return &reservationService{
		reservations: reservations,
		users:        users,
	}
}

func (s *reservationService) Create(ctx context.Context, employeeNo, checkupDate, timeSlot string) (int64, error) {
	user, err := s.findUser(ctx, employeeNo)
	if err != nil {
		return 0, err
	}

	date, err := parseDate(checkupDate)
	if err != nil {
		return 0, err
	}
	if !domain.ValidTimeSlot(timeSlot) {
		return 0, ErrInvalidTimeSlot
	}

	exists, err := s.reservations.ExistsReserved(ctx, date, timeSlot)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, ErrSlotAlreadyBooked
	}

	reservation := &domain.Reservation{
		UserID:      user.ID,
		CheckupDate: date,
		TimeSlot:    timeSlot,
		Status:      domain.ReservationStatusReserved,
	}
	// a concurrent booking can pass the check above; the unique index decides
	if _, err := s.reservations.Create(ctx, reservation); err != nil {
		if errors.Is(err, repository.ErrSlotTaken) {
			return 0, ErrSlotAlreadyBooked
		}
		return 0, err
	}

	metrics.IncReservationCreated()
	return reservation.ID, nil
}

func (s *reservationService) ListMine(ctx context.Context, employeeNo string) ([]ReservationView, error) {
	user, err := s.findUser(ctx, employeeNo)
	if err != nil {
		return nil, err
	}

	reservations, err := s.reservations.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	views := make([]ReservationView, len(reservations))
	for i, r := range reservations {
		views[i] = ReservationView{
			ID:          r.ID,
			CheckupDate: domain.FormatCheckupDate(r.CheckupDate),
			TimeSlot:    r.TimeSlot,
			Status:      string(r.Status),
		}
	}
	return views, nil
}

// Cancel marks the caller's reservation CANCELED. Cancelling twice succeeds.
func (s *reservationService) Cancel(ctx context.Context, reservationID int64, employeeNo string) error {
	user, err := s.findUser(ctx, employeeNo)
	if err != nil {
		return err
	}

	reservation, err := s.reservations.GetByIDAndUser(ctx, reservationID, user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrReservationNotFoundOrNotOwned
		}
		return err
	}

	reservation.Cancel()
	if err := s.reservations.UpdateStatus(ctx, reservation.ID, reservation.Status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrReservationNotFoundOrNotOwned
		}
		return err
	}

	metrics.IncReservationCanceled()
	return nil
}

func (s *reservationService) AvailableSlots(ctx context.Context, checkupDate string) ([]string, error) {
	date, err := parseDate(checkupDate)
	if err != nil {
		return nil, err
	}

	reserved, err := s.reservations.ReservedSlots(ctx, date)
	if err != nil {
		return nil, err
	}
	taken := make(map[string]struct{}, len(reserved))
	for _, slot := range reserved {
		taken[slot] = struct{}{}
	}

	available := []string{}
	for _, slot := range domain.CanonicalSlots() {
		if _, ok := taken[slot]; !ok {
			available = append(available, slot)
		}
	}
	return available, nil
}

func (s *reservationService) findUser(ctx context.Context, employeeNo string) (*domain.User, error) {
	user, err := s.users.GetByEmployeeNo(ctx, employeeNo)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func parseDate(value string) (time.Time, error) {
	date, err := domain.ParseCheckupDate(value)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return date, nil
}
