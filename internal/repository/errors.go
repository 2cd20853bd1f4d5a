package repository

import "errors"

var (
	ErrNotFound            = errors.New("record not found")
	ErrDuplicateEmployeeNo = errors.New("employee number already exists")
	ErrDuplicateEmail      = errors.New("email already exists")
	// ErrSlotTaken is returned when a RESERVED reservation already holds the date and slot.
	ErrSlotTaken = errors.New("time slot already reserved")
)
