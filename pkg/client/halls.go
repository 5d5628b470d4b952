package client

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/attendo/attendo/pkg/domain"
)

const hallPath = "/Hall"

// CreateHallRequest is the payload for creating a hall.
type CreateHallRequest struct {
	HallName       string  `json:"hallName" validate:"required"`
	Capacity       int     `json:"capacity" validate:"gt=0"`
	HallArea       float64 `json:"hallArea" validate:"gt=0"`
	OrganizationID int     `json:"organizationId" validate:"required"`
}

// UpdateHallRequest is the payload for updating a hall.
type UpdateHallRequest struct {
	HallName string  `json:"hallName" validate:"required"`
	Capacity int     `json:"capacity" validate:"gt=0"`
	HallArea float64 `json:"hallArea" validate:"gt=0"`
}

// HallService manages the halls of an organization.
type HallService struct {
	c *Client
}

func hallByID(id int) string {
	return hallPath + "/" + strconv.Itoa(id)
}

// Create creates a hall. OrganizationID is required and checked before any
// request is made.
func (s *HallService) Create(ctx context.Context, req CreateHallRequest) (*Envelope[domain.Hall], error) {
	if err := Validate(req); err != nil {
		return nil, fmt.Errorf("client.Halls.Create: %w", err)
	}
	env, err := call[domain.Hall](ctx, s.c, http.MethodPost, hallPath+"/create-hall", req)
	if err != nil {
		return nil, fmt.Errorf("client.Halls.Create: %w", err)
	}
	return env, nil
}

// ListByOrganization returns every hall of an organization.
func (s *HallService) ListByOrganization(ctx context.Context, organizationID int) (*Envelope[[]domain.Hall], error) {
	env, err := call[[]domain.Hall](ctx, s.c, http.MethodGet, hallPath+"/get-all-halls/"+strconv.Itoa(organizationID), nil)
	if err != nil {
		return nil, fmt.Errorf("client.Halls.ListByOrganization: %w", err)
	}
	return env, nil
}

// Get fetches one hall.
func (s *HallService) Get(ctx context.Context, id int) (*Envelope[domain.Hall], error) {
	env, err := call[domain.Hall](ctx, s.c, http.MethodGet, hallByID(id), nil)
	if err != nil {
		return nil, fmt.Errorf("client.Halls.Get: %w", err)
	}
	return env, nil
}

// Update replaces a hall's editable fields.
func (s *HallService) Update(ctx context.Context, id int, req UpdateHallRequest) (*Envelope[domain.Hall], error) {
	if err := Validate(req); err != nil {
		return nil, fmt.Errorf("client.Halls.Update: %w", err)
	}
	env, err := call[domain.Hall](ctx, s.c, http.MethodPut, hallByID(id), req)
	if err != nil {
		return nil, fmt.Errorf("client.Halls.Update: %w", err)
	}
	return env, nil
}

// Delete removes a hall.
func (s *HallService) Delete(ctx context.Context, id int) (*Envelope[NoData], error) {
	env, err := call[NoData](ctx, s.c, http.MethodDelete, hallByID(id), nil)
	if err != nil {
		return nil, fmt.Errorf("client.Halls.Delete: %w", err)
	}
	return env, nil
}
