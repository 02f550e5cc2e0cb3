package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Business is the root record created by onboarding. ID is assigned by the
// record store on insert; OwnerID is set once and never changes.
// FSSAILicense is the primary license and is unique across businesses.
type Business struct {
	ID             int64     `json:"id"`
	OwnerID        uuid.UUID `json:"owner_id"`
	Name           string    `json:"name"`
	Address        string    `json:"address"`
	Phone          string    `json:"phone"`
	Email          string    `json:"email"`
	LicenseNumber  string    `json:"license_number,omitempty"`
	FSSAILicense   string    `json:"fssai_license"`
	BusinessType   string    `json:"business_type,omitempty"`
	OwnerName      string    `json:"owner_name,omitempty"`
	TradeLicense   string    `json:"trade_license,omitempty"`
	GSTNumber      string    `json:"gst_number,omitempty"`
	FireSafetyCert string    `json:"fire_safety_cert,omitempty"`
	LiquorLicense  string    `json:"liquor_license,omitempty"` // optional
	MusicLicense   string    `json:"music_license,omitempty"`  // optional
	LogoURL        string    `json:"logo_url"`
	OwnerPhotoURL  string    `json:"owner_photo_url"`
	CreatedAt      time.Time `json:"created_at"`
}

// TeamMember belongs to exactly one Business. Position is the zero-based
// index of the member in the submitted list.
type TeamMember struct {
	ID         int64     `json:"id"`
	BusinessID int64     `json:"business_id"`
	Name       string    `json:"name"`
	Role       string    `json:"role"`
	PhotoURL   string    `json:"photo_url"`
	Position   int       `json:"position"`
	CreatedAt  time.Time `json:"created_at"`
}

// FacilityPhoto belongs to exactly one Business.
type FacilityPhoto struct {
	ID         int64     `json:"id"`
	BusinessID int64     `json:"business_id"`
	AreaName   string    `json:"area_name"`
	PhotoURL   string    `json:"photo_url"`
	Position   int       `json:"position"`
	CreatedAt  time.Time `json:"created_at"`
}

// BusinessRepository persists business records. Create must populate ID and
// CreatedAt from the inserted row, or fail with ErrNoRowReturned.
type BusinessRepository interface {
	Create(ctx context.Context, b *Business) error
	GetByID(ctx context.Context, id int64) (*Business, error)
	GetByFSSAILicense(ctx context.Context, license string) (*Business, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Business, error)
}

type TeamMemberRepository interface {
	Create(ctx context.Context, m *TeamMember) error
	ListByBusiness(ctx context.Context, businessID int64) ([]*TeamMember, error)
}

type FacilityPhotoRepository interface {
	Create(ctx context.Context, p *FacilityPhoto) error
	ListByBusiness(ctx context.Context, businessID int64) ([]*FacilityPhoto, error)
}
