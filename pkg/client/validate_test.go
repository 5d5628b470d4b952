package client

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/attendo/attendo/pkg/domain"
)

func TestValidate(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		req  any
		want []string
	}{
		{
			name: "valid login",
			req:  LoginRequest{Email: "a@b.io", Password: "x"},
		},
		{
			name: "login bad email",
			req:  LoginRequest{Email: "nope", Password: "x"},
			want: []string{"email must be a valid email"},
		},
		{
			name: "register mismatches",
			req: RegisterRequest{
				FullName:        "Ada",
				UserName:        "ada",
				Email:           "a@b.io",
				ConfirmEmail:    "b@b.io",
				PhoneNumber:     "1",
				Password:        "secret1",
				ConfirmPassword: "secret2",
				Role:            "Owner",
			},
			want: []string{
				"confirmEmail must match email",
				"confirmPassword must match password",
				"role must be one of Admin, User",
			},
		},
		{
			name: "short password",
			req:  ResetPasswordRequest{Email: "a@b.io", OTP: "1", NewPassword: "abc"},
			want: []string{"newPassword must be at least 6 characters"},
		},
		{
			name: "hall",
			req:  CreateHallRequest{Capacity: 0, HallArea: 10, OrganizationID: 1},
			want: []string{"hallName is required", "capacity must be greater than 0"},
		},
		{
			name: "session coordinates",
			req: UpdateSessionRequest{
				SessionName:    "s",
				ConnectionType: domain.ConnectionLocation,
				Latitude:       91,
				Longitude:      -181,
				AllowedRadius:  5,
				StartAt:        domain.Time{Time: start},
				EndAt:          domain.Time{Time: start.Add(time.Hour)},
				HallID:         1,
			},
			want: []string{"longitude must be at least -180", "latitude must be at most 90"},
		},
		{
			name: "session window missing",
			req: UpdateSessionRequest{
				SessionName:    "s",
				ConnectionType: domain.ConnectionWiFi,
				AllowedRadius:  5,
				HallID:         1,
			},
			want: []string{"startAt is required", "endAt is required"},
		},
		{
			name: "session window inverted",
			req: CreateSessionRequest{
				OrganizationID: 1,
				SessionName:    "s",
				ConnectionType: domain.ConnectionWiFi,
				AllowedRadius:  5,
				StartAt:        domain.Time{Time: start},
				EndAt:          domain.Time{Time: start},
				HallID:         1,
			},
			want: []string{"endAt must be after startAt"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.req)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("Validate() error: %v", err)
				}
				return
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("Validate() = %v, want *ValidationError", err)
			}
			if got := ve.Messages(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Messages() = %q, want %q", got, tt.want)
			}
		})
	}
}
