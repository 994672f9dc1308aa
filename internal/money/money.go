package money

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrOutOfRange    = errors.New("amount out of range")
)

// amountPattern accepts exactly two fraction digits: "1000.00" but not "1000", "1000.000" or "1000.00.00".
var amountPattern = regexp.MustCompile(`^\d+\.\d{2}$`)

func ValidAmount(input string) bool {
	return amountPattern.MatchString(input)
}

// ParseCents converts a "1234.56" amount into minor units without going through floats.
func ParseCents(input string) (int64, error) {
	if !ValidAmount(input) {
		return 0, ErrInvalidAmount
	}
	whole, frac, _ := strings.Cut(input, ".")
	wholeValue, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || wholeValue > (math.MaxInt64-99)/100 {
		return 0, ErrOutOfRange
	}
	fracValue, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return wholeValue*100 + fracValue, nil
}

func FormatMinor(value int64) string {
	negative := value < 0
	if negative {
		value = -value
	}
	formatted := fmt.Sprintf("%d.%02d", value/100, value%100)
	if negative {
		return "-" + formatted
	}
	return formatted
}

// Convert applies rate to an amount in minor units, rounding half away from zero.
func Convert(cents int64, rate decimal.Decimal) int64 {
	return decimal.NewFromInt(cents).Mul(rate).Round(0).IntPart()
}

// RateToCents stores a rate with two fraction digits as an integer.
func RateToCents(rate decimal.Decimal) int64 {
	return rate.Shift(2).Round(0).IntPart()
}

func RateFromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
