package money

import "time"

// DateLayout is the day-first display format used on passbooks and exports.
const DateLayout = "02/01/2006"

// FormatDate renders t as dd/mm/yyyy in loc. A zero time renders as "".
func FormatDate(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(DateLayout)
}
