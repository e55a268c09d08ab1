package policy

import (
	"errors"
	"time"
)

var (
	ErrInvalidMaxPerDay = errors.New("max per day must be at least 1")
	ErrInvalidLeadHours = errors.New("notify lead hours cannot be negative")
	ErrZeroServiceStart = errors.New("service start is required")
)

// CapacityPolicy is the admin-mutable singleton gating the booking path.
// It is read on every reserve, so callers cache it with a short TTL.
type CapacityPolicy struct {
	maxPerDay       int
	notifyLeadHours int
	serviceStart    time.Time
	updatedAt       time.Time
}

func NewCapacityPolicy(maxPerDay, notifyLeadHours int, serviceStart time.Time, now time.Time) (*CapacityPolicy, error) {
	if maxPerDay < 1 {
		return nil, ErrInvalidMaxPerDay
	}
	if notifyLeadHours < 0 {
		return nil, ErrInvalidLeadHours
	}
	if serviceStart.IsZero() {
		return nil, ErrZeroServiceStart
	}
	return &CapacityPolicy{
		maxPerDay:       maxPerDay,
		notifyLeadHours: notifyLeadHours,
		serviceStart:    serviceStart,
		updatedAt:       now,
	}, nil
}

func ReconstructCapacityPolicy(maxPerDay, notifyLeadHours int, serviceStart, updatedAt time.Time) *CapacityPolicy {
	return &CapacityPolicy{
		maxPerDay:       maxPerDay,
		notifyLeadHours: notifyLeadHours,
		serviceStart:    serviceStart,
		updatedAt:       updatedAt,
	}
}

func (p *CapacityPolicy) MaxPerDay() int          { return p.maxPerDay }
func (p *CapacityPolicy) NotifyLeadHours() int    { return p.notifyLeadHours }
func (p *CapacityPolicy) ServiceStart() time.Time { return p.serviceStart }
func (p *CapacityPolicy) UpdatedAt() time.Time    { return p.updatedAt }
