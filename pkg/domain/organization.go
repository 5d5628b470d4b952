package domain

// Organization is a tenant that owns halls, sessions, and members.
type Organization struct {
	OrganizationID   int    `json:"organizationId"`
	OrganizationName string `json:"organizationName"`
	OrganizationType string `json:"organizationType"`
	ContactEmail     string `json:"conatactEmail"` // API spelling
	OrganizationCode int    `json:"organizationCode"`
	CreatedAt        Time   `json:"createdAt"`
}

// APIKey is returned when an organization rotates its integration key.
type APIKey struct {
	APIKey string `json:"apiKey"`
}

// Event is one entry in an organization's activity feed.
type Event struct {
	ID        int    `json:"id"`
	Type      string `json:"type"`
	Message   string `json:"message"`
	CreatedAt Time   `json:"createdAt"`
}
