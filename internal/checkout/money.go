package checkout

import (
	"errors"

	"github.com/shopspring/decimal"
)

// MaxChargeCents is the largest amount Stripe accepts for a single charge
// (eight digits of minor units).
const MaxChargeCents int64 = 99_999_999

var (
	hundred = decimal.NewFromInt(100)
	ceiling = decimal.NewFromInt(MaxChargeCents)

	errAmountTooLarge = errors.New("amount exceeds the maximum chargeable amount")
)

// ToMinorUnits converts a major-unit amount to integer cents, rounding half
// away from zero. Amounts whose magnitude exceeds MaxChargeCents are refused
// before the conversion so they cannot wrap.
func ToMinorUnits(amount decimal.Decimal) (int64, error) {
	cents := amount.Mul(hundred).Round(0)
	if cents.Abs().GreaterThan(ceiling) {
		return 0, errAmountTooLarge
	}
	return cents.IntPart(), nil
}

// FromMinorUnits renders cents back as a major-unit decimal.
func FromMinorUnits(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// lineTotal multiplies a non-negative unit price by a positive quantity,
// refusing results above MaxChargeCents.
func lineTotal(unitCents int64, quantity int) (int64, error) {
	if unitCents == 0 {
		return 0, nil
	}
	if int64(quantity) > MaxChargeCents/unitCents {
		return 0, errAmountTooLarge
	}
	return unitCents * int64(quantity), nil
}

// addCharge sums two non-negative charges, refusing results above
// MaxChargeCents.
func addCharge(total, amount int64) (int64, error) {
	if amount > MaxChargeCents-total {
		return 0, errAmountTooLarge
	}
	return total + amount, nil
}
