package enums

// NotificationKind identifies the transactional email sent after payment.
type NotificationKind string

const (
	NotificationKindOrderReceipt      NotificationKind = "order_receipt"
	NotificationKindDonationThankYou  NotificationKind = "donation_thank_you"
	NotificationKindSubscriptionStart NotificationKind = "donation_subscription_started"
)

// String implements fmt.Stringer.
func (k NotificationKind) String() string {
	return string(k)
}
