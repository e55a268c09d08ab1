package response

import (
	"time"

	"volunteer-slots/internal/usecase/queries"

	"github.com/google/uuid"
)

type VolunteerResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func FromVolunteerView(vm *queries.VolunteerView) *VolunteerResponse {
	return &VolunteerResponse{
		ID:        vm.ID,
		Email:     vm.Email,
		Name:      vm.Name,
		Phone:     vm.Phone,
		Status:    vm.Status,
		CreatedAt: vm.CreatedAt,
	}
}
