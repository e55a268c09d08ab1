package volunteer

import (
	"time"

	"github.com/google/uuid"
)

type Volunteer struct {
	id        uuid.UUID
	email     Email
	name      Name
	phone     string
	status    Status
	createdAt time.Time
	updatedAt time.Time
}

func NewVolunteer(email Email, name Name, phone string, now time.Time) *Volunteer {
	return &Volunteer{
		id:        uuid.New(),
		email:     email,
		name:      name,
		phone:     phone,
		status:    StatusActive,
		createdAt: now,
		updatedAt: now,
	}
}

func ReconstructVolunteer(
	id uuid.UUID,
	email Email,
	name Name,
	phone string,
	status Status,
	createdAt, updatedAt time.Time,
) *Volunteer {
	return &Volunteer{
		id:        id,
		email:     email,
		name:      name,
		phone:     phone,
		status:    status,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// UpdateProfile mutates the volunteer-editable fields. Email is identity
// and never changes.
func (v *Volunteer) UpdateProfile(name Name, phone string, now time.Time) {
	v.name = name
	v.phone = phone
	v.updatedAt = now
}

// Deactivate is the only removal this core supports; volunteers are never
// physically deleted.
func (v *Volunteer) Deactivate(now time.Time) {
	v.status = StatusInactive
	v.updatedAt = now
}

func (v *Volunteer) IsActive() bool {
	return v.status == StatusActive
}

func (v *Volunteer) ID() uuid.UUID       { return v.id }
func (v *Volunteer) Email() Email        { return v.email }
func (v *Volunteer) Name() Name          { return v.name }
func (v *Volunteer) Phone() string       { return v.phone }
func (v *Volunteer) Status() Status      { return v.status }
func (v *Volunteer) CreatedAt() time.Time { return v.createdAt }
func (v *Volunteer) UpdatedAt() time.Time { return v.updatedAt }
