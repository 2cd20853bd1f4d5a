package domain

import (
	"fmt"
	"regexp"
	"time"
)

type ReservationStatus string

const (
	ReservationStatusReserved ReservationStatus = "RESERVED"
	ReservationStatusCanceled ReservationStatus = "CANCELED"
)

// DateLayout is the wire and storage format of a checkup date.
const DateLayout = "2006-01-02"

const (
	firstSlotHour = 9
	lastSlotHour  = 17
)

var (
	datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	slotPattern = regexp.MustCompile(`^\d{2}:\d{2}-\d{2}:\d{2}$`)
)

// Reservation is a booked checkup slot owned by a single user.
type Reservation struct {
	ID          int64
	UserID      int64
	CheckupDate time.Time
	TimeSlot    string
	Status      ReservationStatus
	CreatedAt   time.Time
}

// Cancel moves the reservation to CANCELED regardless of its current status.
func (r *Reservation) Cancel() {
	r.Status = ReservationStatusCanceled
}

// RosterEntry is a reserved slot joined with the employee holding it.
type RosterEntry struct {
	ReservationID int64
	TimeSlot      string
	EmployeeNo    string
	Name          string
	Email         string
}

// ParseCheckupDate parses a YYYY-MM-DD date into midnight UTC.
func ParseCheckupDate(value string) (time.Time, error) {
	if !datePattern.MatchString(value) {
		return time.Time{}, fmt.Errorf("checkup date %q must be YYYY-MM-DD", value)
	}
	date, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse checkup date %q: %w", value, err)
	}
	return date, nil
}

// FormatCheckupDate renders a checkup date as YYYY-MM-DD.
func FormatCheckupDate(date time.Time) string {
	return date.Format(DateLayout)
}

// ValidTimeSlot reports whether slot has the HH:MM-HH:MM shape.
func ValidTimeSlot(slot string) bool {
	return slotPattern.MatchString(slot)
}

// CanonicalSlots returns the hourly slots of an operating day in ascending order.
func CanonicalSlots() []string {
	slots := make([]string, 0, lastSlotHour-firstSlotHour)
	for hour := firstSlotHour; hour < lastSlotHour; hour++ {
		slots = append(slots, fmt.Sprintf("%02d:00-%02d:00", hour, hour+1))
	}
	return slots
}

// ValidCheckupDate reports whether value has the YYYY-MM-DD shape.
func ValidCheckupDate(value string) bool {
	return datePattern.MatchString(value)
}
