package v1_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/gosuda/safeplate/internal/api/v1"
	"github.com/gosuda/safeplate/internal/domain"
	"github.com/gosuda/safeplate/internal/onboarding"
)

const maxBody = 8 << 20

func cafeFields() map[string]string {
	return map[string]string{
		"business_name":             "Cafe A",
		"address":                   "1 Main St",
		"phone":                     "555-0100",
		"email":                     "a@cafe.test",
		"license_number":            "LIC-1",
		"fssai_license":             "FSSAI-1",
		"gst_number":                "GST-9",
		"team_member_names":         "Ann, Bob",
		"team_member_roles":         "Chef,Waiter",
		"facility_photo_area_names": "Kitchen",
	}
}

func cafeFiles() []formFile {
	return []formFile{
		{field: "business_logo", filename: "logo.PNG", contentType: "image/png", content: "logo-bytes"},
		{field: "owner_photo", filename: "owner.jpg", contentType: "image/jpeg", content: "owner-bytes"},
		{field: "team_member_photos", filename: "ann.jpg", contentType: "image/jpeg", content: "ann"},
		{field: "team_member_photos", filename: "bob.jpg", contentType: "image/jpeg", content: "bob"},
		{field: "facility_photos", filename: "kitchen.jpg", contentType: "image/jpeg", content: "kitchen"},
	}
}

func readFile(t *testing.T, f *domain.File) string {
	t.Helper()

	require.True(t, f.Present())
	rc, err := f.Open()
	require.NoError(t, err)
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(b)
}

// ---------------------------------------------------------------------------
// TestOnboardBusiness
// ---------------------------------------------------------------------------

func TestOnboardBusiness_HappyPath(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	_, api := humatest.New(t)

	var called bool
	svc := &mockOnboarder{
		onboardFunc: func(_ context.Context, id domain.Identity, sub *domain.Submission) (*onboarding.Result, error) {
			called = true
			assert.Equal(t, userID, id.UserID)
			assert.Equal(t, domain.RoleBusiness, id.Role)

			assert.Equal(t, "Cafe A", sub.BusinessName)
			assert.Equal(t, "LIC-1", sub.LicenseNumber)
			assert.Equal(t, "FSSAI-1", sub.FSSAILicense)
			assert.Equal(t, "GST-9", sub.GSTNumber)
			assert.Empty(t, sub.LiquorLicense)
			assert.Equal(t, []string{"Ann", "Bob"}, sub.TeamNames)
			assert.Equal(t, []string{"Chef", "Waiter"}, sub.TeamRoles)
			assert.Equal(t, []string{"Kitchen"}, sub.FacilityAreas)

			assert.Equal(t, "logo.PNG", sub.Logo.Filename)
			assert.Equal(t, "image/png", sub.Logo.ContentType)
			assert.Equal(t, "logo-bytes", readFile(t, sub.Logo))
			assert.Equal(t, "owner-bytes", readFile(t, sub.OwnerPhoto))

			require.Len(t, sub.TeamPhotos, 2)
			assert.Equal(t, "ann", readFile(t, sub.TeamPhotos[0]))
			assert.Equal(t, "bob", readFile(t, sub.TeamPhotos[1]))
			require.Len(t, sub.FacilityPhotos, 1)
			assert.Equal(t, "kitchen.jpg", sub.FacilityPhotos[0].Filename)

			return &onboarding.Result{
				Business:       &domain.Business{ID: 42},
				TeamMembers:    []*domain.TeamMember{{ID: 7}, {ID: 8}},
				FacilityPhotos: []*domain.FacilityPhoto{{ID: 9}},
				Progress:       &onboarding.Progress{},
			}, nil
		},
	}
	v1.RegisterOnboardingRoutes(api, svc, maxBody)

	body, contentType := multipartBody(t, cafeFields(), cafeFiles())
	resp := api.PostCtx(ownerCtx(userID), "/businesses/onboard", contentType, body)

	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	assert.True(t, called, "Onboard must be invoked")

	var out struct {
		BusinessID       int64   `json:"business_id"`
		TeamMemberIDs    []int64 `json:"team_member_ids"`
		FacilityPhotoIDs []int64 `json:"facility_photo_ids"`
		Message          string  `json:"message"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, int64(42), out.BusinessID)
	assert.Equal(t, []int64{7, 8}, out.TeamMemberIDs)
	assert.Equal(t, []int64{9}, out.FacilityPhotoIDs)
	assert.NotEmpty(t, out.Message)
}

func TestOnboardBusiness_EmptyListsAreNoEntries(t *testing.T) {
	t.Parallel()

	_, api := humatest.New(t)
	svc := &mockOnboarder{
		onboardFunc: func(_ context.Context, _ domain.Identity, sub *domain.Submission) (*onboarding.Result, error) {
			assert.Empty(t, sub.TeamNames)
			assert.Empty(t, sub.TeamRoles)
			assert.Empty(t, sub.TeamPhotos)
			assert.Empty(t, sub.FacilityAreas)
			assert.Empty(t, sub.FacilityPhotos)
			return &onboarding.Result{Business: &domain.Business{ID: 1}, Progress: &onboarding.Progress{}}, nil
		},
	}
	v1.RegisterOnboardingRoutes(api, svc, maxBody)

	fields := cafeFields()
	fields["team_member_names"] = ""
	fields["team_member_roles"] = " "
	delete(fields, "facility_photo_area_names")
	body, contentType := multipartBody(t, fields, cafeFiles()[:2])

	resp := api.PostCtx(ownerCtx(uuid.New()), "/businesses/onboard", contentType, body)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, []any{}, out["team_member_ids"])
	assert.Equal(t, []any{}, out["facility_photo_ids"])
}

func TestOnboardBusiness_NoIdentityPassesZeroIdentity(t *testing.T) {
	t.Parallel()

	_, api := humatest.New(t)
	svc := &mockOnboarder{
		onboardFunc: func(_ context.Context, id domain.Identity, _ *domain.Submission) (*onboarding.Result, error) {
			assert.False(t, id.Valid())
			return nil, &onboarding.Error{
				Kind:   onboarding.KindUnauthorized,
				Op:     onboarding.OpValidate,
				Index:  -1,
				Detail: "authenticated identity is required",
				Err:    domain.ErrUnauthorized,
			}
		},
	}
	v1.RegisterOnboardingRoutes(api, svc, maxBody)

	body, contentType := multipartBody(t, cafeFields(), cafeFiles())
	resp := api.PostCtx(context.Background(), "/businesses/onboard", contentType, body)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestOnboardBusiness_ErrorMapping(t *testing.T) {
	t.Parallel()

	partial := &onboarding.Progress{
		BusinessID:    42,
		Blobs:         []string{"uploads/business_LIC-1_logo.png"},
		TeamMemberIDs: []int64{7},
		Steps: []onboarding.Step{
			{Op: onboarding.OpUploadLogo, Index: -1, Ref: "uploads/business_LIC-1_logo.png"},
			{Op: onboarding.OpInsertBusiness, Index: -1, Ref: "42"},
			{Op: onboarding.OpInsertTeamMember, Index: 0, Ref: "7"},
		},
	}

	tests := []struct {
		name         string
		err          error
		wantStatus   int
		wantProgress bool
		wantLocation string
	}{
		{
			name: "missing fields",
			err: &onboarding.Error{
				Kind: onboarding.KindInvalidSubmission, Op: onboarding.OpValidate, Field: "email,business_logo", Index: -1,
				Err: &domain.ValidationError{Fields: []string{"email", "business_logo"}, Index: -1, Reason: "missing required fields"},
			},
			wantStatus:   http.StatusBadRequest,
			wantLocation: "body.business_logo",
		},
		{
			name: "entry error names index",
			err: &onboarding.Error{
				Kind: onboarding.KindInvalidSubmission, Op: onboarding.OpValidate, Field: "team_member_roles", Index: 1,
				Err: &domain.ValidationError{Fields: []string{"team_member_roles"}, Index: 1, Reason: "team member 1: role is required"},
			},
			wantStatus:   http.StatusBadRequest,
			wantLocation: "body.team_member_roles[1]",
		},
		{
			name: "duplicate license",
			err: &onboarding.Error{
				Kind: onboarding.KindInvalidSubmission, Op: onboarding.OpCheckDuplicate, Field: "fssai_license", Index: -1,
				Detail: "a business with this license is already registered",
				Err:    fmt.Errorf("business 1: %w", domain.ErrConflict),
			},
			wantStatus: http.StatusConflict,
		},
		{
			name: "storage failure mid sequence",
			err: &onboarding.Error{
				Kind: onboarding.KindStorageFailure, Op: onboarding.OpUploadTeamPhoto, Field: "team_member_photos", Index: 1,
				Progress: partial, Err: io.ErrUnexpectedEOF,
			},
			wantStatus:   http.StatusBadGateway,
			wantProgress: true,
		},
		{
			name: "persistence failure",
			err: &onboarding.Error{
				Kind: onboarding.KindPersistenceFailure, Op: onboarding.OpInsertTeamMember, Index: 1,
				Progress: partial, Err: io.ErrClosedPipe,
			},
			wantStatus:   http.StatusInternalServerError,
			wantProgress: true,
		},
		{
			name: "persistence conflict",
			err: &onboarding.Error{
				Kind: onboarding.KindPersistenceFailure, Op: onboarding.OpInsertBusiness, Index: -1,
				Progress: &onboarding.Progress{}, Err: fmt.Errorf("businesses_fssai_license_key: %w", domain.ErrConflict),
			},
			wantStatus: http.StatusConflict,
		},
		{
			name:       "unexpected",
			err:        &onboarding.Error{Kind: onboarding.KindUnexpected, Op: onboarding.OpUploadLogo, Index: -1, Detail: "panic: boom"},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "untyped error",
			err:        io.EOF,
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, api := humatest.New(t)
			svc := &mockOnboarder{
				onboardFunc: func(context.Context, domain.Identity, *domain.Submission) (*onboarding.Result, error) {
					return nil, tc.err
				},
			}
			v1.RegisterOnboardingRoutes(api, svc, maxBody)

			body, contentType := multipartBody(t, cafeFields(), cafeFiles())
			resp := api.PostCtx(ownerCtx(uuid.New()), "/businesses/onboard", contentType, body)
			require.Equal(t, tc.wantStatus, resp.Code, resp.Body.String())

			var problem huma.ErrorModel
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&problem))
			assert.NotEmpty(t, problem.Detail)
			assert.NotContains(t, problem.Detail, "panic", "internal details stay in the logs")

			locations := make(map[string]*huma.ErrorDetail, len(problem.Errors))
			for _, d := range problem.Errors {
				locations[d.Location] = d
			}
			if tc.wantLocation != "" {
				assert.Contains(t, locations, tc.wantLocation)
			}

			progress, ok := locations["progress"]
			assert.Equal(t, tc.wantProgress, ok)
			if tc.wantProgress {
				raw, err := json.Marshal(progress.Value)
				require.NoError(t, err)
				var p onboarding.Progress
				require.NoError(t, json.Unmarshal(raw, &p))
				assert.Equal(t, int64(42), p.BusinessID)
				assert.Equal(t, []int64{7}, p.TeamMemberIDs)
				assert.Len(t, p.Steps, 3)
			}
		})
	}
}
