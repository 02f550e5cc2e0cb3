package domain

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

// File is an uploaded file part. Open is called once, when the file is
// streamed to the blob store.
type File struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// Present reports whether the file part was supplied.
func (f *File) Present() bool {
	return f != nil && f.Open != nil
}

// Submission is the inbound onboarding payload. Team and facility data keep
// the parallel-list wire shape; Entries correlates them into records.
type Submission struct {
	BusinessName   string
	Address        string
	Phone          string
	Email          string
	LicenseNumber  string
	FSSAILicense   string
	BusinessType   string
	OwnerName      string
	TradeLicense   string
	GSTNumber      string
	FireSafetyCert string
	LiquorLicense  string
	MusicLicense   string

	Logo       *File
	OwnerPhoto *File

	TeamNames  []string
	TeamRoles  []string
	TeamPhotos []*File

	FacilityAreas  []string
	FacilityPhotos []*File
}

// TeamMemberEntry is one correlated team member from a submission.
type TeamMemberEntry struct {
	Name  string
	Role  string
	Photo *File
}

// FacilityEntry is one correlated facility photo from a submission.
type FacilityEntry struct {
	AreaName string
	Photo    *File
}

// ValidationError describes a submission rejected before any side effect.
// Index is -1 unless a single list entry is at fault.
type ValidationError struct {
	Fields []string
	Index  int
	Reason string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) > 0 && e.Index < 0 {
		return e.Reason + ": " + strings.Join(e.Fields, ", ")
	}
	return e.Reason
}

// Validate checks the required scalar fields and the logo and owner photo.
// The FSSAI license is the primary license; license_number is stored as
// given. Every missing field is reported, in form order.
func (s *Submission) Validate() error {
	required := []struct {
		field string
		value string
	}{
		{"business_name", s.BusinessName},
		{"address", s.Address},
		{"phone", s.Phone},
		{"email", s.Email},
		{"fssai_license", s.FSSAILicense},
	}

	var missing []string
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.field)
		}
	}
	if !s.Logo.Present() {
		missing = append(missing, "business_logo")
	}
	if !s.OwnerPhoto.Present() {
		missing = append(missing, "owner_photo")
	}

	if len(missing) > 0 {
		return &ValidationError{Fields: missing, Index: -1, Reason: "missing required fields"}
	}

	return nil
}

// Entries correlates the parallel team and facility lists into ordered
// entries. Lists in a group must have identical lengths and every entry
// must be complete.
func (s *Submission) Entries() ([]TeamMemberEntry, []FacilityEntry, error) {
	if len(s.TeamNames) != len(s.TeamRoles) || len(s.TeamNames) != len(s.TeamPhotos) {
		return nil, nil, &ValidationError{
			Fields: []string{"team_member_names", "team_member_roles", "team_member_photos"},
			Index:  -1,
			Reason: "mismatched team member data",
		}
	}
	if len(s.FacilityAreas) != len(s.FacilityPhotos) {
		return nil, nil, &ValidationError{
			Fields: []string{"facility_photo_area_names", "facility_photos"},
			Index:  -1,
			Reason: "mismatched facility data",
		}
	}

	team := make([]TeamMemberEntry, 0, len(s.TeamNames))
	for i := range s.TeamNames {
		e := TeamMemberEntry{
			Name:  strings.TrimSpace(s.TeamNames[i]),
			Role:  strings.TrimSpace(s.TeamRoles[i]),
			Photo: s.TeamPhotos[i],
		}
		switch {
		case e.Name == "":
			return nil, nil, entryError("team_member_names", i, "team member %d: name is required")
		case e.Role == "":
			return nil, nil, entryError("team_member_roles", i, "team member %d: role is required")
		case !e.Photo.Present():
			return nil, nil, entryError("team_member_photos", i, "team member %d: photo is required")
		}
		team = append(team, e)
	}

	facilities := make([]FacilityEntry, 0, len(s.FacilityAreas))
	for i := range s.FacilityAreas {
		e := FacilityEntry{
			AreaName: strings.TrimSpace(s.FacilityAreas[i]),
			Photo:    s.FacilityPhotos[i],
		}
		switch {
		case e.AreaName == "":
			return nil, nil, entryError("facility_photo_area_names", i, "facility photo %d: area name is required")
		case !e.Photo.Present():
			return nil, nil, entryError("facility_photos", i, "facility photo %d: photo is required")
		}
		facilities = append(facilities, e)
	}

	return team, facilities, nil
}

// Business builds the record to insert for this submission.
func (s *Submission) Business(ownerID uuid.UUID, logoURL, ownerPhotoURL string) *Business {
	return &Business{
		OwnerID:        ownerID,
		Name:           strings.TrimSpace(s.BusinessName),
		Address:        strings.TrimSpace(s.Address),
		Phone:          strings.TrimSpace(s.Phone),
		Email:          strings.TrimSpace(s.Email),
		LicenseNumber:  strings.TrimSpace(s.LicenseNumber),
		FSSAILicense:   strings.TrimSpace(s.FSSAILicense),
		BusinessType:   strings.TrimSpace(s.BusinessType),
		OwnerName:      strings.TrimSpace(s.OwnerName),
		TradeLicense:   strings.TrimSpace(s.TradeLicense),
		GSTNumber:      strings.TrimSpace(s.GSTNumber),
		FireSafetyCert: strings.TrimSpace(s.FireSafetyCert),
		LiquorLicense:  strings.TrimSpace(s.LiquorLicense),
		MusicLicense:   strings.TrimSpace(s.MusicLicense),
		LogoURL:        logoURL,
		OwnerPhotoURL:  ownerPhotoURL,
	}
}

// SplitList splits a comma-separated form value. A blank value is an empty
// list; elements are trimmed but kept, so "a,,b" has three entries.
func SplitList(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func entryError(field string, index int, format string) *ValidationError {
	return &ValidationError{
		Fields: []string{field},
		Index:  index,
		Reason: fmt.Sprintf(format, index),
	}
}
