package v1

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strconv"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/safeplate/internal/domain"
	"github.com/gosuda/safeplate/internal/server/middleware"
)

type ListBusinessesInput struct {
	OwnerID string `query:"owner_id" doc:"Owner to list (admin only, defaults to the caller)"`
}

type ListBusinessesOutput struct {
	Body []*domain.Business
}

type BusinessIDInput struct {
	ID int64 `path:"id" minimum:"1" doc:"Business ID"`
}

type BusinessDetail struct {
	domain.Business
	TeamMembers    []*domain.TeamMember    `json:"team_members"`
	FacilityPhotos []*domain.FacilityPhoto `json:"facility_photos"`
}

type GetBusinessOutput struct {
	Body *BusinessDetail
}

type ListTeamMembersOutput struct {
	Body []*domain.TeamMember
}

type ListFacilityPhotosOutput struct {
	Body []*domain.FacilityPhoto
}

type ListAuditOutput struct {
	Body []*domain.AuditEntry
}

func RegisterBusinessRoutes(api huma.API, store DataStore) {
	huma.Register(api, huma.Operation{
		OperationID: "list-businesses",
		Method:      http.MethodGet,
		Path:        "/businesses",
		Summary:     "List businesses owned by the caller",
		Tags:        []string{"Businesses"},
	}, func(ctx context.Context, input *ListBusinessesInput) (*ListBusinessesOutput, error) {
		id, ok := middleware.IdentityFromContext(ctx)
		if !ok {
			return nil, huma.Error401Unauthorized("authentication required")
		}

		ownerID := id.UserID
		if input.OwnerID != "" {
			if id.Role != domain.RoleAdmin {
				return nil, huma.Error403Forbidden("only admins can list other owners")
			}
			parsed, err := uuid.Parse(input.OwnerID)
			if err != nil {
				return nil, huma.Error400BadRequest("invalid owner_id")
			}
			ownerID = parsed
		}

		businesses, err := store.Businesses().ListByOwner(ctx, ownerID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list businesses", err)
		}
		if businesses == nil {
			businesses = []*domain.Business{}
		}

		return &ListBusinessesOutput{Body: businesses}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-business",
		Method:      http.MethodGet,
		Path:        "/businesses/{id}",
		Summary:     "Get a business with its team and facility photos",
		Tags:        []string{"Businesses"},
	}, func(ctx context.Context, input *BusinessIDInput) (*GetBusinessOutput, error) {
		b, err := visibleBusiness(ctx, store, input.ID)
		if err != nil {
			return nil, err
		}

		members, err := store.TeamMembers().ListByBusiness(ctx, b.ID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list team members", err)
		}
		photos, err := store.FacilityPhotos().ListByBusiness(ctx, b.ID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list facility photos", err)
		}

		return &GetBusinessOutput{Body: &BusinessDetail{
			Business:       *b,
			TeamMembers:    nonNil(members),
			FacilityPhotos: nonNil(photos),
		}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-team-members",
		Method:      http.MethodGet,
		Path:        "/businesses/{id}/team-members",
		Summary:     "List a business's team members in submitted order",
		Tags:        []string{"Businesses"},
	}, func(ctx context.Context, input *BusinessIDInput) (*ListTeamMembersOutput, error) {
		if _, err := visibleBusiness(ctx, store, input.ID); err != nil {
			return nil, err
		}

		members, err := store.TeamMembers().ListByBusiness(ctx, input.ID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list team members", err)
		}

		return &ListTeamMembersOutput{Body: nonNil(members)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-facility-photos",
		Method:      http.MethodGet,
		Path:        "/businesses/{id}/facility-photos",
		Summary:     "List a business's facility photos in submitted order",
		Tags:        []string{"Businesses"},
	}, func(ctx context.Context, input *BusinessIDInput) (*ListFacilityPhotosOutput, error) {
		if _, err := visibleBusiness(ctx, store, input.ID); err != nil {
			return nil, err
		}

		photos, err := store.FacilityPhotos().ListByBusiness(ctx, input.ID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list facility photos", err)
		}

		return &ListFacilityPhotosOutput{Body: nonNil(photos)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-business-audit",
		Method:      http.MethodGet,
		Path:        "/businesses/{id}/audit",
		Summary:     "List onboarding audit entries for a business, newest first",
		Description: "Includes failed runs recorded under the FSSAI license before the business row existed. Admin only.",
		Tags:        []string{"Businesses"},
	}, func(ctx context.Context, input *BusinessIDInput) (*ListAuditOutput, error) {
		caller, ok := middleware.IdentityFromContext(ctx)
		if !ok {
			return nil, huma.Error401Unauthorized("authentication required")
		}
		if caller.Role != domain.RoleAdmin {
			return nil, huma.Error403Forbidden("only admins can read the audit trail")
		}

		b, err := visibleBusiness(ctx, store, input.ID)
		if err != nil {
			return nil, err
		}

		entries, err := store.Audit().ListByResource(ctx, domain.AuditResourceBusiness, strconv.FormatInt(b.ID, 10))
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list audit entries", err)
		}
		if b.FSSAILicense != "" {
			before, err := store.Audit().ListByResource(ctx, domain.AuditResourceBusiness, b.FSSAILicense)
			if err != nil {
				return nil, huma.Error500InternalServerError("failed to list audit entries", err)
			}
			entries = append(entries, before...)
		}
		slices.SortStableFunc(entries, func(x, y *domain.AuditEntry) int {
			return y.CreatedAt.Compare(x.CreatedAt)
		})

		return &ListAuditOutput{Body: nonNil(entries)}, nil
	})
}

// visibleBusiness loads a business the caller may see. Businesses of other
// owners are reported as not found unless the caller is an admin.
func visibleBusiness(ctx context.Context, store DataStore, id int64) (*domain.Business, error) {
	caller, ok := middleware.IdentityFromContext(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("authentication required")
	}

	b, err := store.Businesses().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, huma.Error404NotFound("business not found")
		}
		return nil, huma.Error500InternalServerError("failed to get business", err)
	}
	if b.OwnerID != caller.UserID && caller.Role != domain.RoleAdmin {
		return nil, huma.Error404NotFound("business not found")
	}

	return b, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
