package enums

// LedgerKind names the two record variants tracked through checkout.
type LedgerKind string

const (
	LedgerKindOrder    LedgerKind = "order"
	LedgerKindDonation LedgerKind = "donation"
)

// String implements fmt.Stringer.
func (k LedgerKind) String() string {
	return string(k)
}
