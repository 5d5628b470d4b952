package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestValidRole(t *testing.T) {
	tests := []struct {
		name  string
		role  string
		valid bool
	}{
		{"admin", "Admin", true},
		{"user", "User", true},
		{"empty", "", false},
		{"lowercase", "admin", false},
		{"unknown", "Owner", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidRole(tt.role); got != tt.valid {
				t.Errorf("ValidRole(%q) = %v, want %v", tt.role, got, tt.valid)
			}
		})
	}
}

func TestSessionActive(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s := Session{StartAt: Time{start}, EndAt: Time{start.Add(time.Hour)}}

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"before", start.Add(-time.Minute), false},
		{"at start", start, true},
		{"middle", start.Add(30 * time.Minute), true},
		{"at end", start.Add(time.Hour), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Active(tt.now); got != tt.want {
				t.Errorf("Active(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestOrganizationKeepsAPISpelling(t *testing.T) {
	var org Organization
	if err := json.Unmarshal([]byte(`{"organizationId":7,"conatactEmail":"ops@example.com"}`), &org); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if org.ContactEmail != "ops@example.com" {
		t.Errorf("ContactEmail = %q, want %q", org.ContactEmail, "ops@example.com")
	}
}

func TestAttendanceRecordNullMatchScore(t *testing.T) {
	var recs []AttendanceRecord
	body := `[{"userId":"u1","verificationType":"Face","matchScore":97.5},{"userId":"u2","verificationType":"Network","matchScore":null}]`
	if err := json.Unmarshal([]byte(body), &recs); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if recs[0].MatchScore == nil || *recs[0].MatchScore != 97.5 {
		t.Errorf("recs[0].MatchScore = %v, want 97.5", recs[0].MatchScore)
	}
	if recs[1].MatchScore != nil {
		t.Errorf("recs[1].MatchScore = %v, want nil", *recs[1].MatchScore)
	}
}

func TestTimeUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want time.Time
	}{
		{"rfc3339", `"2026-03-01T09:00:00Z"`, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)},
		{"offset", `"2026-03-01T09:00:00+02:00"`, time.Date(2026, 3, 1, 7, 0, 0, 0, time.UTC)},
		{"no offset", `"2026-03-01T09:00:00"`, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)},
		{"fraction no offset", `"2026-03-01T09:00:00.1234567"`, time.Date(2026, 3, 1, 9, 0, 0, 123456700, time.UTC)},
		{"minutes only", `"2026-03-01T09:00"`, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)},
		{"null", `null`, time.Time{}},
		{"empty", `""`, time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Time
			if err := json.Unmarshal([]byte(tt.in), &got); err != nil {
				t.Fatalf("Unmarshal(%s): %v", tt.in, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Unmarshal(%s) = %v, want %v", tt.in, got.Time, tt.want)
			}
		})
	}
}

func TestTimeUnmarshalRejectsGarbage(t *testing.T) {
	var got Time
	for _, in := range []string{`"yesterday"`, `12`} {
		if err := json.Unmarshal([]byte(in), &got); err == nil {
			t.Errorf("Unmarshal(%s) succeeded, want error", in)
		}
	}
}

func TestTimeMarshal(t *testing.T) {
	b, err := json.Marshal(Time{time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(b) != `"2026-03-01T09:30:00Z"` {
		t.Errorf("Marshal = %s, want %q", b, "2026-03-01T09:30:00Z")
	}
	b, err = json.Marshal(Time{})
	if err != nil {
		t.Fatalf("Marshal zero: %v", err)
	}
	if string(b) != "null" {
		t.Errorf("Marshal zero = %s, want null", b)
	}
}
