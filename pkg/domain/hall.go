package domain

// Hall is a physical room where sessions take place.
type Hall struct {
	ID             int     `json:"id"`
	HallName       string  `json:"hallName"`
	Capacity       int     `json:"capacity"`
	HallArea       float64 `json:"hallArea"`
	OrganizationID int     `json:"organizationId"`
}
