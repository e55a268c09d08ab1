package request

type UpdatePolicyRequest struct {
	MaxPerDay       int `json:"max_per_day" binding:"required,min=1"`
	NotifyLeadHours int `json:"notify_lead_hours" binding:"min=0"`
}

type TestNotificationRequest struct {
	Recipient string `json:"recipient" binding:"required,email"`
}
