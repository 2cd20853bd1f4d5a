package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"checkup-reservation/internal/domain"
	"checkup-reservation/internal/repository"
)

const createReservationsTable = `
CREATE TABLE IF NOT EXISTS reservations (
	id BIGSERIAL PRIMARY KEY,
	user_id BIGINT NOT NULL REFERENCES users(id),
	checkup_date DATE NOT NULL,
	time_slot VARCHAR(20) NOT NULL,
	status VARCHAR(10) NOT NULL CHECK (status IN ('RESERVED', 'CANCELED')),
	created_at TIMESTAMP WITH TIME ZONE NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reservations_user_id ON reservations(user_id);
CREATE UNIQUE INDEX IF NOT EXISTS uk_reservation_date_slot_reserved
	ON reservations(checkup_date, time_slot)
	WHERE status = 'RESERVED';
`

// ReservationRepository stores reservations in PostgreSQL.
type ReservationRepository struct {
	pool *pgxpool.Pool
}

func NewReservationRepository(pool *pgxpool.Pool) repository.ReservationRepository {
	return &ReservationRepository{pool: pool}
}

func (r *ReservationRepository) Init(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, createReservationsTable); err != nil {
		return fmt.Errorf("create reservations table: %w", err)
	}
	return nil
}

func (r *ReservationRepository) Create(ctx context.Context, reservation *domain.Reservation) (int64, error) {
	if reservation.Status == "" {
		reservation.Status = domain.ReservationStatusReserved
	}
	if reservation.CreatedAt.IsZero() {
		reservation.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO reservations (user_id, checkup_date, time_slot, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := r.pool.QueryRow(ctx, query,
		reservation.UserID,
		reservation.CheckupDate,
		reservation.TimeSlot,
		string(reservation.Status),
		reservation.CreatedAt,
	).Scan(&reservation.ID)
	if err != nil {
		if _, ok := uniqueConstraint(err); ok {
			return 0, repository.ErrSlotTaken
		}
		return 0, fmt.Errorf("failed to create reservation: %w", err)
	}
	return reservation.ID, nil
}

func (r *ReservationRepository) ExistsReserved(ctx context.Context, date time.Time, slot string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM reservations
			WHERE checkup_date = $1 AND time_slot = $2 AND status = $3
		)
	`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, date, slot, string(domain.ReservationStatusReserved)).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check reservation: %w", err)
	}
	return exists, nil
}

func (r *ReservationRepository) GetByIDAndUser(ctx context.Context, id, userID int64) (*domain.Reservation, error) {
	query := `
		SELECT id, user_id, checkup_date, time_slot, status, created_at
		FROM reservations
		WHERE id = $1 AND user_id = $2
	`
	return scanReservation(r.pool.QueryRow(ctx, query, id, userID))
}

func (r *ReservationRepository) UpdateStatus(ctx context.Context, id int64, status domain.ReservationStatus) error {
	tag, err := r.pool.Exec(ctx, `UPDATE reservations SET status = $1 WHERE id = $2`, string(status), id)
	if err != nil {
		if _, ok := uniqueConstraint(err); ok {
			return repository.ErrSlotTaken
		}
		return fmt.Errorf("failed to update reservation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ReservationRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Reservation, error) {
	query := `
		SELECT id, user_id, checkup_date, time_slot, status, created_at
		FROM reservations
		WHERE user_id = $1
		ORDER BY checkup_date ASC, id ASC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	defer rows.Close()

	reservations := []domain.Reservation{}
	for rows.Next() {
		reservation, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, *reservation)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reservations: %w", err)
	}
	return reservations, nil
}

func (r *ReservationRepository) ReservedSlots(ctx context.Context, date time.Time) ([]string, error) {
	query := `
		SELECT time_slot
		FROM reservations
		WHERE checkup_date = $1 AND status = $2
	`
	rows, err := r.pool.Query(ctx, query, date, string(domain.ReservationStatusReserved))
	if err != nil {
		return nil, fmt.Errorf("failed to list reserved slots: %w", err)
	}
	slots, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan reserved slots: %w", err)
	}
	return slots, nil
}

func (r *ReservationRepository) ListRoster(ctx context.Context, date time.Time) ([]domain.RosterEntry, error) {
	query := `
		SELECT r.id, r.time_slot, u.employee_no, u.name, u.email
		FROM reservations r
		JOIN users u ON u.id = r.user_id
		WHERE r.checkup_date = $1 AND r.status = $2
		ORDER BY r.time_slot ASC, r.id ASC
	`
	rows, err := r.pool.Query(ctx, query, date, string(domain.ReservationStatusReserved))
	if err != nil {
		return nil, fmt.Errorf("failed to list roster: %w", err)
	}
	defer rows.Close()

	var entries []domain.RosterEntry
	for rows.Next() {
		var entry domain.RosterEntry
		if err := rows.Scan(&entry.ReservationID, &entry.TimeSlot, &entry.EmployeeNo, &entry.Name, &entry.Email); err != nil {
			return nil, fmt.Errorf("failed to scan roster entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating roster: %w", err)
	}
	return entries, nil
}

func scanReservation(row pgx.Row) (*domain.Reservation, error) {
	var (
		reservation domain.Reservation
		status      string
	)
	err := row.Scan(
		&reservation.ID,
		&reservation.UserID,
		&reservation.CheckupDate,
		&reservation.TimeSlot,
		&status,
		&reservation.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan reservation: %w", err)
	}
	reservation.CheckupDate = reservation.CheckupDate.UTC()
	reservation.Status = domain.ReservationStatus(status)
	return &reservation, nil
}
