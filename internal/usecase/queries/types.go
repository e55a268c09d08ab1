package queries

import (
	"time"

	"github.com/google/uuid"
)

type ReservationView struct {
	ID             uuid.UUID  `json:"id"`
	VolunteerID    uuid.UUID  `json:"volunteer_id"`
	VolunteerEmail string     `json:"volunteer_email"`
	VolunteerName  string     `json:"volunteer_name"`
	Date           time.Time  `json:"date"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	ConfirmedAt    *time.Time `json:"confirmed_at,omitempty"`
}

type DeliveryAttemptView struct {
	ID                uuid.UUID         `json:"id"`
	Recipient         string            `json:"recipient"`
	Type              string            `json:"type"`
	Subject           string            `json:"subject"`
	Status            string            `json:"status"`
	ProviderMessageID *string           `json:"provider_message_id,omitempty"`
	ErrorMessage      *string           `json:"error_message,omitempty"`
	RetryCount        int               `json:"retry_count"`
	RelatedID         *string           `json:"related_id,omitempty"`
	Metadata          map[string]string `json:"metadata,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	SentAt            *time.Time        `json:"sent_at,omitempty"`
}

type VolunteerView struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type PolicyView struct {
	MaxPerDay       int       `json:"max_per_day"`
	NotifyLeadHours int       `json:"notify_lead_hours"`
	ServiceStart    time.Time `json:"service_start"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// DayFillView reports how full one service day is.
type DayFillView struct {
	Date        time.Time `json:"date"`
	ActiveCount int       `json:"active_count"`
	MaxPerDay   int       `json:"max_per_day"`
}

func (v DayFillView) OpenSlots() int {
	open := v.MaxPerDay - v.ActiveCount
	if open < 0 {
		return 0
	}
	return open
}
