package client

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/attendo/attendo/pkg/domain"
)

const organizationPath = "/Organization"

// CreateOrganizationRequest is the payload for creating an organization.
type CreateOrganizationRequest struct {
	OrganizationName string `json:"organizationName" validate:"required"`
	OrganizationType string `json:"organizationType" validate:"required"`
	ContactEmail     string `json:"conatactEmail" validate:"required,email"`
}

// UpdateOrganizationRequest carries the same fields as a create.
type UpdateOrganizationRequest = CreateOrganizationRequest

// AddMemberRequest creates an account inside an organization.
type AddMemberRequest struct {
	OrganizationID  int    `json:"organizationId" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	FullName        string `json:"fullName" validate:"required"`
	UserName        string `json:"userName" validate:"required"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	Role            string `json:"role" validate:"required,oneof=Admin User"`
}

// OrganizationService manages organizations and their members.
type OrganizationService struct {
	c *Client
}

func organizationByID(id int) string {
	return organizationPath + "/" + strconv.Itoa(id)
}

// Create creates an organization owned by the caller.
func (s *OrganizationService) Create(ctx context.Context, req CreateOrganizationRequest) (*Envelope[domain.Organization], error) {
	if err := Validate(req); err != nil {
		return nil, fmt.Errorf("client.Organizations.Create: %w", err)
	}
	env, err := call[domain.Organization](ctx, s.c, http.MethodPost, organizationPath+"/create-organization", req)
	if err != nil {
		return nil, fmt.Errorf("client.Organizations.Create: %w", err)
	}
	return env, nil
}

// Get fetches one organization with its stats.
func (s *OrganizationService) Get(ctx context.Context, id int) (*Envelope[domain.Organization], error) {
	env, err := call[domain.Organization](ctx, s.c, http.MethodGet, organizationByID(id), nil)
	if err != nil {
		return nil, fmt.Errorf("client.Organizations.Get: %w", err)
	}
	return env, nil
}

// ListMine returns the organizations the caller belongs to.
func (s *OrganizationService) ListMine(ctx context.Context) (*Envelope[[]domain.Organization], error) {
	env, err := call[[]domain.Organization](ctx, s.c, http.MethodGet, organizationPath+"/user-orgs", nil)
	if err != nil {
		return nil, fmt.Errorf("client.Organizations.ListMine: %w", err)
	}
	return env, nil
}

// Update replaces an organization's editable fields.
func (s *OrganizationService) Update(ctx context.Context, id int, req UpdateOrganizationRequest) (*Envelope[domain.Organization], error) {
	if err := Validate(req); err != nil {
		return nil, fmt.Errorf("client.Organizations.Update: %w", err)
	}
	env, err := call[domain.Organization](ctx, s.c, http.MethodPut, organizationByID(id), req)
	if err != nil {
		return nil, fmt.Errorf("client.Organizations.Update: %w", err)
	}
	return env, nil
}

// Delete removes an organization.
func (s *OrganizationService) Delete(ctx context.Context, id int) (*Envelope[NoData], error) {
	env, err := call[NoData](ctx, s.c, http.MethodDelete, organizationByID(id), nil)
	if err != nil {
		return nil, fmt.Errorf("client.Organizations.Delete: %w", err)
	}
	return env, nil
}

// AddMember creates a member account in an organization.
func (s *OrganizationService) AddMember(ctx context.Context, req AddMemberRequest) (*Envelope[NoData], error) {
	if err := Validate(req); err != nil {
		return nil, fmt.Errorf("client.Organizations.AddMember: %w", err)
	}
	env, err := call[NoData](ctx, s.c, http.MethodPost, organizationPath+"/add-member", req)
	if err != nil {
		return nil, fmt.Errorf("client.Organizations.AddMember: %w", err)
	}
	return env, nil
}

// ListMembers returns the accounts attached to an organization.
func (s *OrganizationService) ListMembers(ctx context.Context, id int) (*Envelope[[]domain.Member], error) {
	env, err := call[[]domain.Member](ctx, s.c, http.MethodGet, organizationByID(id)+"/users", nil)
	if err != nil {
		return nil, fmt.Errorf("client.Organizations.ListMembers: %w", err)
	}
	return env, nil
}

// GenerateAPIKey rotates the organization's integration key. Any previous key
// stops working.
func (s *OrganizationService) GenerateAPIKey(ctx context.Context, id int) (*Envelope[domain.APIKey], error) {
	env, err := call[domain.APIKey](ctx, s.c, http.MethodPost, organizationByID(id)+"/generate-api-key", nil)
	if err != nil {
		return nil, fmt.Errorf("client.Organizations.GenerateAPIKey: %w", err)
	}
	return env, nil
}

// ListEvents returns the organization's activity feed.
func (s *OrganizationService) ListEvents(ctx context.Context, id int) (*Envelope[[]domain.Event], error) {
	env, err := call[[]domain.Event](ctx, s.c, http.MethodGet, organizationByID(id)+"/events", nil)
	if err != nil {
		return nil, fmt.Errorf("client.Organizations.ListEvents: %w", err)
	}
	return env, nil
}
