package v1_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/safeplate/internal/domain"
	"github.com/gosuda/safeplate/internal/onboarding"
	"github.com/gosuda/safeplate/internal/server/middleware"
)

// ---------------------------------------------------------------------------
// Context helpers: inject the caller identity for DoCtx
// ---------------------------------------------------------------------------

func ownerCtx(userID uuid.UUID) context.Context {
	return middleware.WithIdentity(context.Background(), domain.Identity{UserID: userID, Role: domain.RoleBusiness})
}

func adminCtx() context.Context {
	return middleware.WithIdentity(context.Background(), domain.Identity{UserID: uuid.New(), Role: domain.RoleAdmin})
}

// ---------------------------------------------------------------------------
// Multipart helper
// ---------------------------------------------------------------------------

type formFile struct {
	field       string
	filename    string
	contentType string
	content     string
}

// multipartBody encodes fields and files and returns the body with its
// Content-Type header line for humatest.
func multipartBody(t *testing.T, fields map[string]string, files []formFile) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+f.field+`"; filename="`+f.filename+`"`)
		h.Set("Content-Type", f.contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	return &buf, "Content-Type: " + w.FormDataContentType()
}

// ---------------------------------------------------------------------------
// Mock DataStore
// ---------------------------------------------------------------------------

type mockDataStore struct {
	businesses     domain.BusinessRepository
	teamMembers    domain.TeamMemberRepository
	facilityPhotos domain.FacilityPhotoRepository
	audit          domain.AuditRepository
}

func (m *mockDataStore) Businesses() domain.BusinessRepository          { return m.businesses }
func (m *mockDataStore) TeamMembers() domain.TeamMemberRepository       { return m.teamMembers }
func (m *mockDataStore) FacilityPhotos() domain.FacilityPhotoRepository { return m.facilityPhotos }
func (m *mockDataStore) Audit() domain.AuditRepository                  { return m.audit }

// ---------------------------------------------------------------------------
// Mock BusinessRepository
// ---------------------------------------------------------------------------

type mockBusinessRepo struct {
	createFunc      func(ctx context.Context, b *domain.Business) error
	getByIDFunc     func(ctx context.Context, id int64) (*domain.Business, error)
	getByFSSAIFunc  func(ctx context.Context, license string) (*domain.Business, error)
	listByOwnerFunc func(ctx context.Context, ownerID uuid.UUID) ([]*domain.Business, error)
}

func (m *mockBusinessRepo) Create(ctx context.Context, b *domain.Business) error {
	return m.createFunc(ctx, b)
}

func (m *mockBusinessRepo) GetByID(ctx context.Context, id int64) (*domain.Business, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockBusinessRepo) GetByFSSAILicense(ctx context.Context, license string) (*domain.Business, error) {
	return m.getByFSSAIFunc(ctx, license)
}

func (m *mockBusinessRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Business, error) {
	return m.listByOwnerFunc(ctx, ownerID)
}

// ---------------------------------------------------------------------------
// Mock TeamMemberRepository / FacilityPhotoRepository
// ---------------------------------------------------------------------------

type mockTeamMemberRepo struct {
	createFunc         func(ctx context.Context, m *domain.TeamMember) error
	listByBusinessFunc func(ctx context.Context, businessID int64) ([]*domain.TeamMember, error)
}

func (m *mockTeamMemberRepo) Create(ctx context.Context, tm *domain.TeamMember) error {
	return m.createFunc(ctx, tm)
}

func (m *mockTeamMemberRepo) ListByBusiness(ctx context.Context, businessID int64) ([]*domain.TeamMember, error) {
	return m.listByBusinessFunc(ctx, businessID)
}

type mockFacilityPhotoRepo struct {
	createFunc         func(ctx context.Context, p *domain.FacilityPhoto) error
	listByBusinessFunc func(ctx context.Context, businessID int64) ([]*domain.FacilityPhoto, error)
}

func (m *mockFacilityPhotoRepo) Create(ctx context.Context, p *domain.FacilityPhoto) error {
	return m.createFunc(ctx, p)
}

func (m *mockFacilityPhotoRepo) ListByBusiness(ctx context.Context, businessID int64) ([]*domain.FacilityPhoto, error) {
	return m.listByBusinessFunc(ctx, businessID)
}

type mockAuditRepo struct {
	recordFunc         func(ctx context.Context, entry *domain.AuditEntry) error
	listByResourceFunc func(ctx context.Context, resource, resourceID string) ([]*domain.AuditEntry, error)
}

func (m *mockAuditRepo) Record(ctx context.Context, entry *domain.AuditEntry) error {
	return m.recordFunc(ctx, entry)
}

func (m *mockAuditRepo) ListByResource(ctx context.Context, resource, resourceID string) ([]*domain.AuditEntry, error) {
	return m.listByResourceFunc(ctx, resource, resourceID)
}

// ---------------------------------------------------------------------------
// Mock Onboarder
// ---------------------------------------------------------------------------

type mockOnboarder struct {
	onboardFunc func(ctx context.Context, identity domain.Identity, sub *domain.Submission) (*onboarding.Result, error)
}

func (m *mockOnboarder) Onboard(ctx context.Context, identity domain.Identity, sub *domain.Submission) (*onboarding.Result, error) {
	return m.onboardFunc(ctx, identity, sub)
}
