package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"checkup-reservation/internal/domain"
	"checkup-reservation/internal/repository"
)

// The partial unique index keeps at most one RESERVED row per date and slot;
// canceled rows never collide with each other or with a new booking.
const createReservationsTable = `
CREATE TABLE IF NOT EXISTS reservations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	checkup_date TEXT NOT NULL,
	time_slot TEXT NOT NULL,
	status TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	FOREIGN KEY(user_id) REFERENCES users(id)
);
CREATE INDEX IF NOT EXISTS idx_reservations_user_id ON reservations(user_id);
CREATE UNIQUE INDEX IF NOT EXISTS uk_reservation_date_slot_reserved
	ON reservations(checkup_date, time_slot)
	WHERE status = 'RESERVED';
`

type ReservationRepository struct {
	db *sql.DB
}

func NewReservationRepository(db *sql.DB) repository.ReservationRepository {
	return &ReservationRepository{db: db}
}

func (r *ReservationRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createReservationsTable); err != nil {
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

	res, err := r.db.ExecContext(ctx, `
INSERT INTO reservations (user_id, checkup_date, time_slot, status, created_at)
VALUES (?, ?, ?, ?, ?)`,
		reservation.UserID,
		domain.FormatCheckupDate(reservation.CheckupDate),
		reservation.TimeSlot,
		string(reservation.Status),
		reservation.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, repository.ErrSlotTaken
		}
		return 0, fmt.Errorf("insert reservation: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reservation last insert id: %w", err)
	}
	reservation.ID = id
	return id, nil
}

func (r *ReservationRepository) ExistsReserved(ctx context.Context, date time.Time, slot string) (bool, error) {
	var found int
	err := r.db.QueryRowContext(ctx, `
SELECT EXISTS(
	SELECT 1 FROM reservations
	WHERE checkup_date = ? AND time_slot = ? AND status = ?
)`,
		domain.FormatCheckupDate(date),
		slot,
		string(domain.ReservationStatusReserved),
	).Scan(&found)
	if err != nil {
		return false, fmt.Errorf("check reservation exists: %w", err)
	}
	return found == 1, nil
}

func (r *ReservationRepository) GetByIDAndUser(ctx context.Context, id, userID int64) (*domain.Reservation, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, user_id, checkup_date, time_slot, status, created_at
FROM reservations
WHERE id = ? AND user_id = ?`,
		id,
		userID,
	)
	return scanReservation(row)
}

func (r *ReservationRepository) UpdateStatus(ctx context.Context, id int64, status domain.ReservationStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE reservations SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrSlotTaken
		}
		return fmt.Errorf("update reservation status: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reservation update rows affected: %w", err)
	}
	if aff == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ReservationRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Reservation, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, user_id, checkup_date, time_slot, status, created_at
FROM reservations
WHERE user_id = ?
ORDER BY checkup_date ASC, id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query reservations: %w", err)
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

	return reservations, rows.Err()
}

func (r *ReservationRepository) ReservedSlots(ctx context.Context, date time.Time) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT time_slot
FROM reservations
WHERE checkup_date = ? AND status = ?`,
		domain.FormatCheckupDate(date),
		string(domain.ReservationStatusReserved),
	)
	if err != nil {
		return nil, fmt.Errorf("query reserved slots: %w", err)
	}
	defer rows.Close()

	var slots []string
	for rows.Next() {
		var slot string
		if err := rows.Scan(&slot); err != nil {
			return nil, fmt.Errorf("scan reserved slot: %w", err)
		}
		slots = append(slots, slot)
	}

	return slots, rows.Err()
}

func (r *ReservationRepository) ListRoster(ctx context.Context, date time.Time) ([]domain.RosterEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT r.id, r.time_slot, u.employee_no, u.name, u.email
FROM reservations r
JOIN users u ON u.id = r.user_id
WHERE r.checkup_date = ? AND r.status = ?
ORDER BY r.time_slot ASC, r.id ASC`,
		domain.FormatCheckupDate(date),
		string(domain.ReservationStatusReserved),
	)
	if err != nil {
		return nil, fmt.Errorf("query roster: %w", err)
	}
	defer rows.Close()

	var entries []domain.RosterEntry
	for rows.Next() {
		var entry domain.RosterEntry
		if err := rows.Scan(&entry.ReservationID, &entry.TimeSlot, &entry.EmployeeNo, &entry.Name, &entry.Email); err != nil {
			return nil, fmt.Errorf("scan roster entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

func scanReservation(scanner interface {
	Scan(dest ...any) error
}) (*domain.Reservation, error) {
	var (
		reservation domain.Reservation
		checkupDate string
		status      string
	)

	if err := scanner.Scan(
		&reservation.ID,
		&reservation.UserID,
		&checkupDate,
		&reservation.TimeSlot,
		&status,
		&reservation.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan reservation: %w", err)
	}

	date, err := domain.ParseCheckupDate(checkupDate)
	if err != nil {
		return nil, fmt.Errorf("stored reservation %d: %w", reservation.ID, err)
	}
	reservation.CheckupDate = date
	reservation.Status = domain.ReservationStatus(status)
	return &reservation, nil
}
