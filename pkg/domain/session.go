package domain

import "time"

// Connection types a session can require for check-in.
const (
	ConnectionWiFi     = "WiFi"
	ConnectionLocation = "Location"
)

// ConnectionTypes is the cycle order used by forms.
var ConnectionTypes = []string{ConnectionWiFi, ConnectionLocation}

// Session is a time-boxed attendance window in a hall. Check-in is verified
// remotely against the geofence (Latitude, Longitude, AllowedRadius) and the
// network fingerprint (NetworkSSID, NetworkBSSID).
type Session struct {
	SessionID      int     `json:"sessionId"`
	OrganizationID int     `json:"organizationId"`
	CreatedBy      string  `json:"createdBy"`
	SessionName    string  `json:"sessionName"`
	CreatedAt      Time    `json:"createdAt"`
	ConnectionType string  `json:"connectionType"`
	Longitude      float64 `json:"longitude"`
	Latitude       float64 `json:"latitude"`
	AllowedRadius  float64 `json:"allowedRadius"`
	NetworkSSID    string  `json:"networkSSID"`
	NetworkBSSID   string  `json:"networkBSSID"`
	StartAt        Time    `json:"startAt"`
	EndAt          Time    `json:"endAt"`
	HallID         int     `json:"hallId"`
}

// Active reports whether now falls inside [StartAt, EndAt).
func (s Session) Active(now time.Time) bool {
	return !now.Before(s.StartAt.Time) && now.Before(s.EndAt.Time)
}
