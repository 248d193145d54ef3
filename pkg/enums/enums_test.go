package enums

import "testing"

func TestNormalizeDonationFrequency(t *testing.T) {
	cases := map[string]DonationFrequency{
		"monthly":   DonationFrequencyMonthly,
		" Monthly ": DonationFrequencyMonthly,
		"one-time":  DonationFrequencyOneTime,
		"weekly":    DonationFrequencyOneTime,
		"":          DonationFrequencyOneTime,
	}
	for in, want := range cases {
		if got := NormalizeDonationFrequency(in); got != want {
			t.Fatalf("NormalizeDonationFrequency(%q) = %q, want %q", in, got, want)
		}
	}
	if !DonationFrequencyMonthly.IsRecurring() || DonationFrequencyOneTime.IsRecurring() {
		t.Fatalf("unexpected recurring flags")
	}
}

func TestLedgerStatusesTerminal(t *testing.T) {
	if OrderStatusPending.IsTerminal() {
		t.Fatalf("pending order must not be terminal")
	}
	for _, s := range []OrderStatus{OrderStatusPaid, OrderStatusCancelled, OrderStatusRefunded} {
		if !s.IsTerminal() {
			t.Fatalf("%s should be terminal", s)
		}
	}
	if DonationStatusPending.IsTerminal() {
		t.Fatalf("pending donation must not be terminal")
	}
	for _, s := range []DonationStatus{DonationStatusCompleted, DonationStatusExpired, DonationStatusRefunded} {
		if !s.IsTerminal() {
			t.Fatalf("%s should be terminal", s)
		}
	}
	if OrderStatus("shipped").IsTerminal() {
		t.Fatalf("unknown statuses are not terminal")
	}
}

func TestParseStatuses(t *testing.T) {
	if s, err := ParseOrderStatus("paid"); err != nil || s != OrderStatusPaid {
		t.Fatalf("unexpected parse result %q %v", s, err)
	}
	if _, err := ParseOrderStatus("completed"); err == nil {
		t.Fatalf("orders use paid, not completed")
	}
	if s, err := ParseDonationStatus("expired"); err != nil || s != DonationStatusExpired {
		t.Fatalf("unexpected parse result %q %v", s, err)
	}
	if _, err := ParseMemberRole("root"); err == nil {
		t.Fatalf("expected invalid role error")
	}
}

func TestParseCurrencyIgnoresCase(t *testing.T) {
	c, err := ParseCurrency(" USD ")
	if err != nil || c != CurrencyUSD {
		t.Fatalf("unexpected currency %q %v", c, err)
	}
	if _, err := ParseCurrency("btc"); err == nil {
		t.Fatalf("expected unsupported currency error")
	}
}
