package domain

import (
	"time"

	"github.com/google/uuid"
)

// OnboardingEvent is published after each onboarding step so a client can
// follow a long-running submission.
type OnboardingEvent struct {
	Type       string    `json:"type"` // "step", "completed", "failed"
	OwnerID    uuid.UUID `json:"owner_id"`
	License    string    `json:"fssai_license"`
	BusinessID int64     `json:"business_id,omitempty"`
	Op         string    `json:"op,omitempty"`
	Index      int       `json:"index"`
	Detail     string    `json:"detail,omitempty"`
	At         time.Time `json:"at"`
}
