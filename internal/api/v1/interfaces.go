package v1

import (
	"context"

	"github.com/gosuda/safeplate/internal/domain"
	"github.com/gosuda/safeplate/internal/onboarding"
)

// DataStore abstracts the repository accessor pattern for handler testing.
// *postgres.Store satisfies this interface.
type DataStore interface {
	Businesses() domain.BusinessRepository
	TeamMembers() domain.TeamMemberRepository
	FacilityPhotos() domain.FacilityPhotoRepository
	Audit() domain.AuditRepository
}

// Onboarder abstracts the onboarding run for handler testing.
// *onboarding.Service satisfies this interface.
type Onboarder interface {
	Onboard(ctx context.Context, identity domain.Identity, sub *domain.Submission) (*onboarding.Result, error)
}
