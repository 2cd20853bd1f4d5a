package service

import "errors"

// Client errors. They are caused by the request and are safe to show to the caller.
var (
	ErrInvalidSignup                 = errors.New("employee number, name, email and password are required")
	ErrDuplicateEmployeeNo           = errors.New("employee number is already registered")
	ErrDuplicateEmail                = errors.New("email is already registered")
	ErrInvalidCredentials            = errors.New("invalid credentials")
	ErrUserNotFound                  = errors.New("no user with this employee number")
	ErrInvalidDate                   = errors.New("checkup date must be in YYYY-MM-DD format")
	ErrInvalidTimeSlot               = errors.New("time slot must be in HH:MM-HH:MM format")
	ErrSlotAlreadyBooked             = errors.New("this time slot is already reserved")
	ErrReservationNotFoundOrNotOwned = errors.New("reservation does not exist or is not yours")
)

var clientErrors = []error{
	ErrInvalidSignup,
	ErrDuplicateEmployeeNo,
	ErrDuplicateEmail,
	ErrInvalidCredentials,
	ErrUserNotFound,
	ErrInvalidDate,
	ErrInvalidTimeSlot,
	ErrSlotAlreadyBooked,
	ErrReservationNotFoundOrNotOwned,
}

// IsClientError reports whether err is one of the errors above.
func IsClientError(err error) bool {
	for _, target := range clientErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
