package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Formatter converts amounts held in the smallest currency unit to and from
// display strings. MinorUnits is the number of decimal places between the
// stored unit and the display unit (0 when amounts are whole rupees).
type Formatter struct {
	Symbol     string
	MinorUnits int32
}

// Rupees is the default formatter: whole-rupee amounts.
var Rupees = Formatter{Symbol: "₹", MinorUnits: 0}

// Decimal returns amount in display units.
func (f Formatter) Decimal(amount int64) decimal.Decimal {
	return decimal.New(amount, -f.MinorUnits)
}

// Plain renders amount without symbol or grouping, e.g. "1234567" or "12.50".
func (f Formatter) Plain(amount int64) string {
	return f.Decimal(amount).StringFixed(f.MinorUnits)
}

// Format renders amount with the currency symbol and Indian digit grouping,
// e.g. "₹12,34,567".
func (f Formatter) Format(amount int64) string {
	s := f.Plain(amount)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, hasFrac := strings.Cut(s, ".")
	out := sign + f.Symbol + groupIndian(intPart)
	if hasFrac {
		out += "." + frac
	}
	return out
}

// Parse reads a display-unit amount such as "150" or "12.50" and returns it
// in the smallest unit. More decimal places than MinorUnits is an error.
func (f Formatter) Parse(s string) (int64, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), f.Symbol))
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, errors.New("empty amount")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	scaled := d.Shift(f.MinorUnits)
	if !scaled.Equal(scaled.Truncate(0)) {
		return 0, fmt.Errorf("amount %q has more than %d decimal places", s, f.MinorUnits)
	}
	if scaled.Abs().GreaterThan(decimal.NewFromInt(maxAmount)) {
		return 0, fmt.Errorf("amount %q out of range", s)
	}
	return scaled.IntPart(), nil
}

const maxAmount = 1<<62 - 1

// groupIndian inserts commas in the lakh/crore style: the last three digits
// form one group, every earlier group has two digits.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}
	return strings.Join(append(groups, tail), ",")
}
