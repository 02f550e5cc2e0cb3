package onboarding

import "time"

// Sub-operation names used in steps, errors and events.
const (
	OpValidate            = "validate submission"
	OpLock                = "lock license"
	OpCheckDuplicate      = "check duplicate license"
	OpUploadLogo          = "upload logo"
	OpUploadOwnerPhoto    = "upload owner photo"
	OpInsertBusiness      = "insert business"
	OpUploadTeamPhoto     = "upload team member photo"
	OpInsertTeamMember    = "insert team member"
	OpUploadFacilityPhoto = "upload facility photo"
	OpInsertFacilityPhoto = "insert facility photo"
)

// Step is one completed side effect. Ref is the blob name for uploads and
// the record id for inserts.
type Step struct {
	Op    string    `json:"op"`
	Index int       `json:"index"`
	Ref   string    `json:"ref"`
	At    time.Time `json:"at"`
}

// Progress is the step log of one onboarding run. Nothing is rolled back
// on failure, so after a partial run it lists exactly the blobs and rows
// that exist and need finishing or cleanup.
type Progress struct {
	BusinessID       int64    `json:"business_id,omitempty"`
	Blobs            []string `json:"blobs,omitempty"`
	TeamMemberIDs    []int64  `json:"team_member_ids,omitempty"`
	FacilityPhotoIDs []int64  `json:"facility_photo_ids,omitempty"`
	Steps            []Step   `json:"steps"`
}

func (p *Progress) uploaded(op string, index int, name string, at time.Time) {
	p.Blobs = append(p.Blobs, name)
	p.Steps = append(p.Steps, Step{Op: op, Index: index, Ref: name, At: at})
}

func (p *Progress) inserted(op string, index int, id int64, at time.Time) {
	switch op {
	case OpInsertBusiness:
		p.BusinessID = id
	case OpInsertTeamMember:
		p.TeamMemberIDs = append(p.TeamMemberIDs, id)
	case OpInsertFacilityPhoto:
		p.FacilityPhotoIDs = append(p.FacilityPhotoIDs, id)
	}
	p.Steps = append(p.Steps, Step{Op: op, Index: index, Ref: formatID(id), At: at})
}

// snapshot copies the log so a returned error is not aliased by later steps.
func (p *Progress) snapshot() *Progress {
	cp := &Progress{BusinessID: p.BusinessID}
	cp.Blobs = append(cp.Blobs, p.Blobs...)
	cp.TeamMemberIDs = append(cp.TeamMemberIDs, p.TeamMemberIDs...)
	cp.FacilityPhotoIDs = append(cp.FacilityPhotoIDs, p.FacilityPhotoIDs...)
	cp.Steps = append(make([]Step, 0, len(p.Steps)), p.Steps...)
	return cp
}
