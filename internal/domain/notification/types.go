package notification

// Type identifies what event a notification reports.
type Type string

const (
	TypeNewReservation     Type = "new_reservation"
	TypeConfirmation       Type = "confirmation"
	TypeCancellation       Type = "cancellation"
	TypeUnfilledSlotsAlert Type = "unfilled_slots_alert"
	TypeTest               Type = "test"
)

func (t Type) String() string {
	return string(t)
}

func (t Type) IsValid() bool {
	switch t {
	case TypeNewReservation, TypeConfirmation, TypeCancellation, TypeUnfilledSlotsAlert, TypeTest:
		return true
	default:
		return false
	}
}

// Status is the delivery attempt state machine. sent and failed are
// terminal; a terminal attempt never transitions again.
type Status string

const (
	StatusPending  Status = "pending"
	StatusRetrying Status = "retrying"
	StatusSent     Status = "sent"
	StatusFailed   Status = "failed"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusRetrying, StatusSent, StatusFailed:
		return true
	default:
		return false
	}
}

func (s Status) IsTerminal() bool {
	return s == StatusSent || s == StatusFailed
}
