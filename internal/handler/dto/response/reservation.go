package response

import (
	"time"

	"volunteer-slots/internal/usecase/commands"
	"volunteer-slots/internal/usecase/queries"

	"github.com/google/uuid"
)

type ReservationResponse struct {
	ID             uuid.UUID  `json:"id"`
	VolunteerID    uuid.UUID  `json:"volunteer_id"`
	VolunteerEmail string     `json:"volunteer_email"`
	VolunteerName  string     `json:"volunteer_name"`
	Date           string     `json:"date"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	ConfirmedAt    *time.Time `json:"confirmed_at,omitempty"`
}

type DecisionResponse struct {
	Reservation *ReservationResponse `json:"reservation"`
	EmailSent   bool                 `json:"email_sent"`
	MessageID   string               `json:"message_id,omitempty"`
}

func FromReservationView(rm *queries.ReservationView) *ReservationResponse {
	return &ReservationResponse{
		ID:             rm.ID,
		VolunteerID:    rm.VolunteerID,
		VolunteerEmail: rm.VolunteerEmail,
		VolunteerName:  rm.VolunteerName,
		Date:           rm.Date.Format(time.DateOnly),
		Status:         rm.Status,
		CreatedAt:      rm.CreatedAt,
		ConfirmedAt:    rm.ConfirmedAt,
	}
}

func FromReservationViews(rms []*queries.ReservationView) []*ReservationResponse {
	out := make([]*ReservationResponse, 0, len(rms))
	for _, rm := range rms {
		out = append(out, FromReservationView(rm))
	}
	return out
}

func FromDecisionResult(res *commands.DecisionResult) *DecisionResponse {
	return &DecisionResponse{
		Reservation: FromReservationView(res.Reservation),
		EmailSent:   res.EmailSent,
		MessageID:   res.MessageID,
	}
}
