package request

import "strings"

type RegisterVolunteerRequest struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone,omitempty"`
}

func (r RegisterVolunteerRequest) Normalized() RegisterVolunteerRequest {
	return RegisterVolunteerRequest{
		Email: strings.TrimSpace(r.Email),
		Name:  strings.TrimSpace(r.Name),
		Phone: strings.TrimSpace(r.Phone),
	}
}

type UpdateVolunteerRequest struct {
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone,omitempty"`
}

func (r UpdateVolunteerRequest) Normalized() UpdateVolunteerRequest {
	return UpdateVolunteerRequest{
		Name:  strings.TrimSpace(r.Name),
		Phone: strings.TrimSpace(r.Phone),
	}
}
