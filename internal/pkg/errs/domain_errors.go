package errs

import "errors"

// Domain-specific sentinel errors shared across usecase layers
var (
	// Booking errors
	ErrCapacityExceeded    = errors.New("capacity exceeded for date")
	ErrDuplicateBooking    = errors.New("duplicate booking")
	ErrInvalidDate         = errors.New("invalid booking date")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrInvalidTransition   = errors.New("invalid reservation transition")

	// Volunteer errors
	ErrVolunteerNotFound  = errors.New("volunteer not found")
	ErrVolunteerInactive  = errors.New("volunteer is inactive")
	ErrDuplicateVolunteer = errors.New("volunteer already registered")

	// Notification errors
	ErrNotificationDelivery = errors.New("notification delivery failed")
	ErrMailerNotConfigured  = errors.New("mailer is not configured")

	// Policy errors
	ErrPolicyNotFound = errors.New("capacity policy not found")
	ErrInvalidPolicy  = errors.New("invalid capacity policy")

	// Validation errors
	ErrDomainValidation = errors.New("domain validation error")

	// Operation errors
	ErrDatabaseOperationFailed = errors.New("database operation failed")
)
