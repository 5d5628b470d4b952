package client

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/attendo/attendo/pkg/domain"
)

const sessionPath = "/Session"

// CreateSessionRequest is the payload for creating a session.
type CreateSessionRequest struct {
	OrganizationID int         `json:"organizationId" validate:"required"`
	CreatedBy      string      `json:"createdBy"`
	SessionName    string      `json:"sessionName" validate:"required"`
	ConnectionType string      `json:"connectionType" validate:"required"`
	Longitude      float64     `json:"longitude" validate:"gte=-180,lte=180"`
	Latitude       float64     `json:"latitude" validate:"gte=-90,lte=90"`
	AllowedRadius  float64     `json:"allowedRadius" validate:"gt=0"`
	NetworkSSID    string      `json:"networkSSID"`
	NetworkBSSID   string      `json:"networkBSSID"`
	StartAt        domain.Time `json:"startAt"`
	EndAt          domain.Time `json:"endAt"`
	HallID         int         `json:"hallId" validate:"required"`
}

// UpdateSessionRequest is the payload for updating a session.
type UpdateSessionRequest struct {
	SessionName    string      `json:"sessionName" validate:"required"`
	ConnectionType string      `json:"connectionType" validate:"required"`
	Longitude      float64     `json:"longitude" validate:"gte=-180,lte=180"`
	Latitude       float64     `json:"latitude" validate:"gte=-90,lte=90"`
	AllowedRadius  float64     `json:"allowedRadius" validate:"gt=0"`
	NetworkSSID    string      `json:"networkSSID"`
	NetworkBSSID   string      `json:"networkBSSID"`
	StartAt        domain.Time `json:"startAt"`
	EndAt          domain.Time `json:"endAt"`
	HallID         int         `json:"hallId" validate:"required"`
}

// SessionService manages sessions and reads their attendance.
type SessionService struct {
	c *Client
}

func sessionByID(id int) string {
	return sessionPath + "/" + strconv.Itoa(id)
}

// Create creates a session. The API returns no data on success.
func (s *SessionService) Create(ctx context.Context, req CreateSessionRequest) (*Envelope[NoData], error) {
	if err := Validate(req); err != nil {
		return nil, fmt.Errorf("client.Sessions.Create: %w", err)
	}
	env, err := call[NoData](ctx, s.c, http.MethodPost, sessionPath+"/Create-Session", req)
	if err != nil {
		return nil, fmt.Errorf("client.Sessions.Create: %w", err)
	}
	return env, nil
}

// List returns every session visible to the caller.
func (s *SessionService) List(ctx context.Context) (*Envelope[[]domain.Session], error) {
	env, err := call[[]domain.Session](ctx, s.c, http.MethodGet, sessionPath+"/get-all-sessions", nil)
	if err != nil {
		return nil, fmt.Errorf("client.Sessions.List: %w", err)
	}
	return env, nil
}

// Get fetches one session.
func (s *SessionService) Get(ctx context.Context, id int) (*Envelope[domain.Session], error) {
	env, err := call[domain.Session](ctx, s.c, http.MethodGet, sessionByID(id), nil)
	if err != nil {
		return nil, fmt.Errorf("client.Sessions.Get: %w", err)
	}
	return env, nil
}

// ListByHall returns the sessions held in a hall.
func (s *SessionService) ListByHall(ctx context.Context, hallID int) (*Envelope[[]domain.Session], error) {
	env, err := call[[]domain.Session](ctx, s.c, http.MethodGet, sessionPath+"/hall/"+strconv.Itoa(hallID), nil)
	if err != nil {
		return nil, fmt.Errorf("client.Sessions.ListByHall: %w", err)
	}
	return env, nil
}

// Update replaces a session's editable fields.
func (s *SessionService) Update(ctx context.Context, id int, req UpdateSessionRequest) (*Envelope[domain.Session], error) {
	if err := Validate(req); err != nil {
		return nil, fmt.Errorf("client.Sessions.Update: %w", err)
	}
	env, err := call[domain.Session](ctx, s.c, http.MethodPut, sessionByID(id), req)
	if err != nil {
		return nil, fmt.Errorf("client.Sessions.Update: %w", err)
	}
	return env, nil
}

// Delete removes a session.
func (s *SessionService) Delete(ctx context.Context, id int) (*Envelope[NoData], error) {
	env, err := call[NoData](ctx, s.c, http.MethodDelete, sessionByID(id), nil)
	if err != nil {
		return nil, fmt.Errorf("client.Sessions.Delete: %w", err)
	}
	return env, nil
}

// Attendance returns the attendance records of a session as members see them.
func (s *SessionService) Attendance(ctx context.Context, id int) (*Envelope[[]domain.AttendanceRecord], error) {
	env, err := call[[]domain.AttendanceRecord](ctx, s.c, http.MethodGet, sessionByID(id)+"/attendance", nil)
	if err != nil {
		return nil, fmt.Errorf("client.Sessions.Attendance: %w", err)
	}
	return env, nil
}

// AttendanceInternal returns the admin view of a session's attendance,
// including verification type and match score.
func (s *SessionService) AttendanceInternal(ctx context.Context, id int) (*Envelope[[]domain.AttendanceRecord], error) {
	env, err := call[[]domain.AttendanceRecord](ctx, s.c, http.MethodGet, sessionByID(id)+"/attendance/internal", nil)
	if err != nil {
		return nil, fmt.Errorf("client.Sessions.AttendanceInternal: %w", err)
	}
	return env, nil
}

// ExportAttendanceCSVInternal downloads the session's attendance as CSV. The
// body is returned verbatim; a structured rejection comes back as *HTTPError.
func (s *SessionService) ExportAttendanceCSVInternal(ctx context.Context, id int) ([]byte, error) {
	method, path := http.MethodGet, sessionByID(id)+"/csv/internal"
	raw, err := s.c.Send(ctx, method, path, nil)
	if err != nil {
		return nil, fmt.Errorf("client.Sessions.ExportAttendanceCSVInternal: %w", err)
	}
	if isSuccess(raw.StatusCode) {
		return raw.Body, nil
	}
	message, errs, ok := parseFailure(raw.Body)
	if !ok {
		return nil, fmt.Errorf("client.Sessions.ExportAttendanceCSVInternal: %w",
			&TransportError{Method: method, Path: path, StatusCode: raw.StatusCode, Err: fmt.Errorf("%s", snippet(raw.Body))})
	}
	return nil, fmt.Errorf("client.Sessions.ExportAttendanceCSVInternal: %w",
		&HTTPError{StatusCode: raw.StatusCode, Message: message, Errors: errs})
}

// CSVFileName is the conventional download name for a session export.
func CSVFileName(sessionID int) string {
	return "attendance-" + strconv.Itoa(sessionID) + ".csv"
}
