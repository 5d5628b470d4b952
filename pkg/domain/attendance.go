package domain

// VerificationFace marks a check-in verified by face match.
const VerificationFace = "Face"

// AttendanceRecord is one verified check-in for a session.
type AttendanceRecord struct {
	UserID           string   `json:"userId"`
	FullName         string   `json:"fullName"`
	UserName         string   `json:"userName"`
	TimeStamp        Time     `json:"timeStamp"`
	VerificationType string   `json:"verificationType"`
	MatchScore       *float64 `json:"matchScore"` // nil when not face-verified
}
