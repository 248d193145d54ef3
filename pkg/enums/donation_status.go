package enums

import "fmt"

// DonationStatus tracks a donation through checkout.
type DonationStatus string

const (
	DonationStatusPending   DonationStatus = "pending"
	DonationStatusCompleted DonationStatus = "completed"
	DonationStatusExpired   DonationStatus = "expired"
	DonationStatusRefunded  DonationStatus = "refunded"
)

var validDonationStatuses = []DonationStatus{
	DonationStatusPending,
	DonationStatusCompleted,
	DonationStatusExpired,
	DonationStatusRefunded,
}

// String implements fmt.Stringer.
func (s DonationStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known DonationStatus.
func (s DonationStatus) IsValid() bool {
	for _, candidate := range validDonationStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is allowed out of pending.
func (s DonationStatus) IsTerminal() bool {
	return s != DonationStatusPending && s.IsValid()
}

// ParseDonationStatus converts raw input into a DonationStatus.
func ParseDonationStatus(value string) (DonationStatus, error) {
	for _, candidate := range validDonationStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid donation status %q", value)
}
