package request

import (
	"time"

	"volunteer-slots/internal/domain/reservation"
)

type CreateReservationRequest struct {
	// Date is the requested service day, e.g. "2026-09-03".
	Date string `json:"date" binding:"required"`
}

func (r CreateReservationRequest) ToServiceDate() (reservation.ServiceDate, error) {
	t, err := time.Parse(time.DateOnly, r.Date)
	if err != nil {
		return reservation.ServiceDate{}, err
	}
	return reservation.NewServiceDate(t)
}

type DecisionRequest struct {
	Decision string `json:"decision" binding:"required,oneof=confirm cancel"`
}
