package notification

import (
	"errors"
	"strings"
)

var (
	ErrEmptyRecipient = errors.New("recipient is required")
	ErrEmptySubject   = errors.New("subject is required")
	ErrInvalidType    = errors.New("invalid notification type")
)

// Request is an ephemeral description of one outbound notification,
// constructed per event and consumed by the dispatch pipeline.
type Request struct {
	Recipient string
	Type      Type
	RelatedID string
	Subject   string
	BodyHTML  string
	Metadata  map[string]string
}

func (r Request) Validate() error {
	if strings.TrimSpace(r.Recipient) == "" {
		return ErrEmptyRecipient
	}
	if !r.Type.IsValid() {
		return ErrInvalidType
	}
	if strings.TrimSpace(r.Subject) == "" {
		return ErrEmptySubject
	}
	return nil
}

// Deduplicable reports whether this request carries a well-formed
// correlation key. Requests without one are always dispatched.
func (r Request) Deduplicable() bool {
	return IsValidCorrelationKey(r.RelatedID)
}
