package response

import (
	"time"

	"volunteer-slots/internal/usecase/commands"
	"volunteer-slots/internal/usecase/queries"

	"github.com/google/uuid"
)

type PolicyResponse struct {
	MaxPerDay       int       `json:"max_per_day"`
	NotifyLeadHours int       `json:"notify_lead_hours"`
	ServiceStart    time.Time `json:"service_start"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func FromPolicyView(pm *queries.PolicyView) *PolicyResponse {
	return &PolicyResponse{
		MaxPerDay:       pm.MaxPerDay,
		NotifyLeadHours: pm.NotifyLeadHours,
		ServiceStart:    pm.ServiceStart,
		UpdatedAt:       pm.UpdatedAt,
	}
}

type DeliveryAttemptResponse struct {
	ID                uuid.UUID  `json:"id"`
	Recipient         string     `json:"recipient"`
	Type              string     `json:"type"`
	Subject           string     `json:"subject"`
	Status            string     `json:"status"`
	ProviderMessageID *string    `json:"provider_message_id,omitempty"`
	ErrorMessage      *string    `json:"error_message,omitempty"`
	RetryCount        int        `json:"retry_count"`
	RelatedID         *string    `json:"related_id,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	SentAt            *time.Time `json:"sent_at,omitempty"`
}

func FromDeliveryAttemptView(dm *queries.DeliveryAttemptView) *DeliveryAttemptResponse {
	return &DeliveryAttemptResponse{
		ID:                dm.ID,
		Recipient:         dm.Recipient,
		Type:              dm.Type,
		Subject:           dm.Subject,
		Status:            dm.Status,
		ProviderMessageID: dm.ProviderMessageID,
		ErrorMessage:      dm.ErrorMessage,
		RetryCount:        dm.RetryCount,
		RelatedID:         dm.RelatedID,
		CreatedAt:         dm.CreatedAt,
		SentAt:            dm.SentAt,
	}
}

func FromDeliveryAttemptViews(dms []*queries.DeliveryAttemptView) []*DeliveryAttemptResponse {
	out := make([]*DeliveryAttemptResponse, 0, len(dms))
	for _, dm := range dms {
		out = append(out, FromDeliveryAttemptView(dm))
	}
	return out
}

type UnfilledCheckResponse struct {
	Skipped     bool   `json:"skipped"`
	Alerted     bool   `json:"alerted"`
	Date        string `json:"date,omitempty"`
	ActiveCount int    `json:"active_count"`
	MaxPerDay   int    `json:"max_per_day"`
	OpenSlots   int    `json:"open_slots"`
}

func FromUnfilledCheckResult(res *commands.UnfilledCheckResult) *UnfilledCheckResponse {
	resp := &UnfilledCheckResponse{
		Skipped:     res.Skipped,
		Alerted:     res.Alerted,
		ActiveCount: res.Fill.ActiveCount,
		MaxPerDay:   res.Fill.MaxPerDay,
		OpenSlots:   res.Fill.OpenSlots(),
	}
	if !res.Fill.Date.IsZero() {
		resp.Date = res.Fill.Date.Format(time.DateOnly)
	}
	return resp
}

type SendResultResponse struct {
	Status    string `json:"status"`
	MessageID string `json:"message_id,omitempty"`
	AttemptID string `json:"attempt_id,omitempty"`
	LastError string `json:"last_error,omitempty"`
}

func FromSendResult(res *commands.SendResult) *SendResultResponse {
	resp := &SendResultResponse{
		Status:    string(res.Status),
		MessageID: res.MessageID,
		LastError: res.LastError,
	}
	if res.AttemptID != uuid.Nil {
		resp.AttemptID = res.AttemptID.String()
	}
	return resp
}
