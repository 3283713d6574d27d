package domain

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	dErrors "surety/pkg/domain-errors"
)

// AmountScale is the number of fractional digits carried by every monetary value.
const AmountScale = 6

// Amount is a non-negative fixed-point value held as integer micro-units.
// Arithmetic on Amount never touches floating point.
type Amount struct {
	micros int64
}

// Zero is the zero amount.
var Zero = Amount{}

// AmountFromMicros builds an Amount from micro-units.
func AmountFromMicros(micros int64) Amount {
	return Amount{micros: micros}
}

// ParseAmount parses a decimal string such as "100" or "85.000000".
// Values with more than six fractional digits or below zero are rejected.
func ParseAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Zero, dErrors.New(dErrors.CodeInvalidAmount, "amount must be a decimal number")
	}
	return AmountFromDecimal(d)
}

// MustParseAmount is for tests and static configuration.
func MustParseAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// AmountFromDecimal converts a decimal, enforcing scale and sign.
func AmountFromDecimal(d decimal.Decimal) (Amount, error) {
	if d.IsNegative() {
		return Zero, dErrors.New(dErrors.CodeInvalidAmount, "amount must not be negative")
	}
	scaled := d.Shift(AmountScale)
	if !scaled.Equal(scaled.Truncate(0)) {
		return Zero, dErrors.New(dErrors.CodeInvalidAmount, "amount supports at most 6 fractional digits")
	}
	bi := scaled.BigInt()
	if !bi.IsInt64() {
		return Zero, dErrors.New(dErrors.CodeInvalidAmount, "amount is too large")
	}
	return Amount{micros: bi.Int64()}, nil
}

func (a Amount) Micros() int64 { return a.micros }

func (a Amount) Decimal() decimal.Decimal { return decimal.New(a.micros, -AmountScale) }

// String renders the wire format: exactly six fractional digits.
func (a Amount) String() string { return a.Decimal().StringFixed(AmountScale) }

func (a Amount) IsZero() bool { return a.micros == 0 }

func (a Amount) IsPositive() bool { return a.micros > 0 }

// Add is for sums bounded by a parsed amount, such as the parts of a split.
// Balances that accumulate use CheckedAdd.
func (a Amount) Add(b Amount) Amount { return Amount{micros: a.micros + b.micros} }

// CheckedAdd fails with InvalidAmount when the sum does not fit in micro-units.
func (a Amount) CheckedAdd(b Amount) (Amount, error) {
	if b.micros > math.MaxInt64-a.micros {
		return Zero, dErrors.New(dErrors.CodeInvalidAmount, "amount exceeds the maximum balance")
	}
	return Amount{micros: a.micros + b.micros}, nil
}

func (a Amount) Cmp(b Amount) int {
	switch {
	case a.micros < b.micros:
		return -1
	case a.micros > b.micros:
		return 1
	}
	return 0
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts both quoted decimal strings and bare JSON numbers.
func (a *Amount) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*a = Zero
		return nil
	}
	var s string
	if strings.HasPrefix(raw, `"`) {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	} else {
		s = raw
	}
	parsed, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
