package v1

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/safeplate/internal/domain"
	"github.com/gosuda/safeplate/internal/onboarding"
	"github.com/gosuda/safeplate/internal/server/middleware"
)

type OnboardBusinessInput struct {
	RawBody multipart.Form
}

type OnboardBusinessOutput struct {
	Body struct {
		BusinessID       int64   `json:"business_id" doc:"ID of the new business"`
		TeamMemberIDs    []int64 `json:"team_member_ids" doc:"Inserted team member IDs in submitted order"`
		FacilityPhotoIDs []int64 `json:"facility_photo_ids" doc:"Inserted facility photo IDs in submitted order"`
		Message          string  `json:"message"`
	}
}

// RegisterOnboardingRoutes registers the multipart onboarding endpoint.
// maxBodyBytes bounds the whole form including every file part.
func RegisterOnboardingRoutes(api huma.API, svc Onboarder, maxBodyBytes int64) {
	huma.Register(api, huma.Operation{
		OperationID:   "onboard-business",
		Method:        http.MethodPost,
		Path:          "/businesses/onboard",
		Summary:       "Onboard a food-service business",
		Description:   "Uploads the logo, owner photo, team and facility photos and creates the business records.",
		Tags:          []string{"Businesses"},
		MaxBodyBytes:  maxBodyBytes,
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *OnboardBusinessInput) (*OnboardBusinessOutput, error) {
		form := &input.RawBody
		defer func() {
			if err := form.RemoveAll(); err != nil {
				log.Warn().Err(err).Msg("onboard: failed to remove multipart staging files")
			}
		}()

		// A missing identity is left to the service, which rejects it as unauthorized.
		identity, _ := middleware.IdentityFromContext(ctx)

		res, err := svc.Onboard(ctx, identity, submissionFromForm(form))
		if err != nil {
			return nil, onboardingError(err)
		}

		out := &OnboardBusinessOutput{}
		out.Body.BusinessID = res.BusinessID()
		out.Body.TeamMemberIDs = make([]int64, 0, len(res.TeamMembers))
		for _, m := range res.TeamMembers {
			out.Body.TeamMemberIDs = append(out.Body.TeamMemberIDs, m.ID)
		}
		out.Body.FacilityPhotoIDs = make([]int64, 0, len(res.FacilityPhotos))
		for _, p := range res.FacilityPhotos {
			out.Body.FacilityPhotoIDs = append(out.Body.FacilityPhotoIDs, p.ID)
		}
		out.Body.Message = "Business onboarded successfully"

		return out, nil
	})
}

// submissionFromForm maps the multipart form onto a Submission. Names,
// roles and area names arrive as comma-separated values; photos as
// repeated file parts in the same order.
func submissionFromForm(form *multipart.Form) *domain.Submission {
	value := func(key string) string {
		if vs := form.Value[key]; len(vs) > 0 {
			return vs[0]
		}
		return ""
	}

	return &domain.Submission{
		BusinessName:   value("business_name"),
		Address:        value("address"),
		Phone:          value("phone"),
		Email:          value("email"),
		LicenseNumber:  value("license_number"),
		FSSAILicense:   value("fssai_license"),
		BusinessType:   value("business_type"),
		OwnerName:      value("owner_name"),
		TradeLicense:   value("trade_license"),
		GSTNumber:      value("gst_number"),
		FireSafetyCert: value("fire_safety_cert"),
		LiquorLicense:  value("liquor_license"),
		MusicLicense:   value("music_license"),

		Logo:       firstFile(form, "business_logo"),
		OwnerPhoto: firstFile(form, "owner_photo"),

		TeamNames:  domain.SplitList(value("team_member_names")),
		TeamRoles:  domain.SplitList(value("team_member_roles")),
		TeamPhotos: files(form, "team_member_photos"),

		FacilityAreas:  domain.SplitList(value("facility_photo_area_names")),
		FacilityPhotos: files(form, "facility_photos"),
	}
}

func firstFile(form *multipart.Form, key string) *domain.File {
	fhs := form.File[key]
	if len(fhs) == 0 {
		return nil
	}
	return toFile(fhs[0])
}

func files(form *multipart.Form, key string) []*domain.File {
	fhs := form.File[key]
	if len(fhs) == 0 {
		return nil
	}
	out := make([]*domain.File, 0, len(fhs))
	for _, fh := range fhs {
		out = append(out, toFile(fh))
	}
	return out
}

func toFile(fh *multipart.FileHeader) *domain.File {
	return &domain.File{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// onboardingError maps an onboarding failure to an HTTP problem. Failures
// after the first side effect carry the step log so the client can see
// which records exist.
func onboardingError(err error) error {
	var oe *onboarding.Error
	if !errors.As(err, &oe) {
		return huma.Error500InternalServerError("onboarding failed")
	}

	var details []error
	if oe.Field != "" {
		for _, field := range strings.Split(oe.Field, ",") {
			loc := "body." + field
			if oe.Index >= 0 {
				loc += "[" + strconv.Itoa(oe.Index) + "]"
			}
			details = append(details, &huma.ErrorDetail{Message: oe.Kind.String(), Location: loc})
		}
	}
	if oe.Progress != nil && len(oe.Progress.Steps) > 0 {
		details = append(details, &huma.ErrorDetail{
			Message:  "completed steps were not rolled back",
			Location: "progress",
			Value:    oe.Progress,
		})
	}

	conflict := errors.Is(err, domain.ErrConflict)

	switch oe.Kind {
	case onboarding.KindUnauthorized:
		return huma.Error401Unauthorized(clientMessage(oe), details...)
	case onboarding.KindInvalidSubmission:
		if conflict {
			return huma.Error409Conflict(clientMessage(oe), details...)
		}
		return huma.Error400BadRequest(clientMessage(oe), details...)
	case onboarding.KindStorageFailure:
		return huma.Error502BadGateway(oe.Op+": media storage failed", details...)
	case onboarding.KindPersistenceFailure:
		if conflict {
			return huma.Error409Conflict(oe.Op+": record already exists", details...)
		}
		return huma.Error500InternalServerError(oe.Op+": database write failed", details...)
	default:
		return huma.Error500InternalServerError("onboarding failed unexpectedly", details...)
	}
}

// clientMessage is the message for failures caused by the caller.
func clientMessage(oe *onboarding.Error) string {
	switch {
	case oe.Detail != "":
		return oe.Detail
	case oe.Err != nil:
		return oe.Err.Error()
	default:
		return oe.Kind.String()
	}
}
