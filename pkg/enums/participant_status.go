package enums

import "fmt"

// ParticipantStatus records a buyer's informational commitment level. It never
// feeds quantity aggregation or status transitions.
type ParticipantStatus string

const (
	ParticipantStatusInterested ParticipantStatus = "interested"
	ParticipantStatusCommitted  ParticipantStatus = "committed"
	ParticipantStatusPaid       ParticipantStatus = "paid"
)

var validParticipantStatuses = []ParticipantStatus{
	ParticipantStatusInterested,
	ParticipantStatusCommitted,
	ParticipantStatusPaid,
}

// String implements fmt.Stringer.
func (p ParticipantStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known ParticipantStatus.
func (p ParticipantStatus) IsValid() bool {
	for _, candidate := range validParticipantStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseParticipantStatus converts raw input into a ParticipantStatus.
func ParseParticipantStatus(value string) (ParticipantStatus, error) {
	for _, candidate := range validParticipantStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid participant status %q", value)
}
