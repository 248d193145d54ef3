package enums

import "strings"

// DonationFrequency selects between a single charge and a monthly subscription.
type DonationFrequency string

const (
	DonationFrequencyOneTime DonationFrequency = "one-time"
	DonationFrequencyMonthly DonationFrequency = "monthly"
)

// String implements fmt.Stringer.
func (f DonationFrequency) String() string {
	return string(f)
}

// IsRecurring reports whether the donation should be billed as a subscription.
func (f DonationFrequency) IsRecurring() bool {
	return f == DonationFrequencyMonthly
}

// NormalizeDonationFrequency maps anything other than "monthly" to one-time.
func NormalizeDonationFrequency(value string) DonationFrequency {
	if strings.EqualFold(strings.TrimSpace(value), string(DonationFrequencyMonthly)) {
		return DonationFrequencyMonthly
	}
	return DonationFrequencyOneTime
}
